package dietplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePlan(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   Plan
		wantOK bool
	}{
		{
			name:   "blank lines dropped",
			text:   "Line1\nLine2\n\nLine3",
			want:   Plan{Intro: "Line1", Meals: []string{"Line2", "Line3"}},
			wantOK: true,
		},
		{
			name:   "intro only",
			text:   "Just one line",
			want:   Plan{Intro: "Just one line", Meals: []string{}},
			wantOK: true,
		},
		{
			name:   "whitespace lines dropped, content kept verbatim",
			text:   "\n  \nIntro\n\t\n  - Oats 50g, 6g protein, 190 kcal\n",
			want:   Plan{Intro: "Intro", Meals: []string{"  - Oats 50g, 6g protein, 190 kcal"}},
			wantOK: true,
		},
		{
			name: "empty",
			text: "",
		},
		{
			name: "only blank lines",
			text: "\n \n\t\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePlan(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSnapshotPlanOnlyWhenCompleted(t *testing.T) {
	s := Snapshot{State: State{Phase: Completed, Response: "Line1\nLine2\n\nLine3"}}
	plan, ok := s.Plan()
	assert.True(t, ok)
	assert.Equal(t, "Line1", plan.Intro)
	assert.Equal(t, []string{"Line2", "Line3"}, plan.Meals)

	_, ok = Snapshot{State: State{Phase: Completed, Response: ""}}.Plan()
	assert.False(t, ok, "an empty response has no plan pane")

	_, ok = Snapshot{State: State{Phase: Failed, Message: FailureMessage}}.Plan()
	assert.False(t, ok)
}
