package dietplan

import "strings"

// Plan is the display view of a model response: the first non-blank line is
// the intro, every following non-blank line is one meal paragraph.
type Plan struct {
	Intro string   `json:"intro"`
	Meals []string `json:"meals"`
}

// ParsePlan splits text on newlines and drops blank lines. It reports false
// when nothing is left to show.
func ParsePlan(text string) (Plan, bool) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return Plan{}, false
	}
	return Plan{Intro: lines[0], Meals: lines[1:]}, true
}
