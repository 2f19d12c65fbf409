/*
Package dietplan holds the Diet Wallah form: its inputs, the prompt built
from them, the submission lifecycle, and the line-based view of the
returned plan.
*/
package dietplan

import "errors"

// ErrUnknownField is returned when a field key is not one of the form's inputs.
var ErrUnknownField = errors.New("unknown form field")

// Field keys, as posted by the form and accepted by the JSON API.
const (
	FieldName              = "name"
	FieldAge               = "age"
	FieldHeight            = "height"
	FieldWeight            = "weight"
	FieldDietaryPreference = "dietaryPreference"
	FieldHealthGoal        = "healthGoal"
	FieldExerciseFrequency = "exerciseFrequency"
	FieldAllergies         = "allergies"
)

// Dietary preference values offered by the select input.
const (
	Vegetarian    = "vegetarian"
	NonVegetarian = "non-vegetarian"
)

// FormInputs is the raw form state. Numeric fields stay strings: nothing is
// coerced or range-checked.
type FormInputs struct {
	Name              string `json:"name" form:"name"`
	Age               string `json:"age" form:"age"`
	Height            string `json:"height" form:"height"`
	Weight            string `json:"weight" form:"weight"`
	DietaryPreference string `json:"dietaryPreference" form:"dietaryPreference"`
	HealthGoal        string `json:"healthGoal" form:"healthGoal"`
	ExerciseFrequency string `json:"exerciseFrequency" form:"exerciseFrequency"`
	Allergies         string `json:"allergies" form:"allergies"`
}

// DefaultInputs returns the initial form state.
func DefaultInputs() FormInputs {
	return FormInputs{DietaryPreference: Vegetarian}
}

// With returns a copy of f with the named field replaced.
func (f FormInputs) With(name, value string) (FormInputs, error) {
	p, ok := f.field(name)
	if !ok {
		return f, ErrUnknownField
	}
	*p = value
	return f, nil
}

// Get returns the value of the named field.
func (f FormInputs) Get(name string) (string, error) {
	p, ok := f.field(name)
	if !ok {
		return "", ErrUnknownField
	}
	return *p, nil
}

// field resolves a key to the backing struct field of the receiver copy.
func (f *FormInputs) field(name string) (*string, bool) {
	switch name {
	case FieldName:
		return &f.Name, true
	case FieldAge:
		return &f.Age, true
	case FieldHeight:
		return &f.Height, true
	case FieldWeight:
		return &f.Weight, true
	case FieldDietaryPreference:
		return &f.DietaryPreference, true
	case FieldHealthGoal:
		return &f.HealthGoal, true
	case FieldExerciseFrequency:
		return &f.ExerciseFrequency, true
	case FieldAllergies:
		return &f.Allergies, true
	}
	return nil, false
}

// InputKind tells the template which control to draw.
type InputKind string

const (
	KindText     InputKind = "text"
	KindNumber   InputKind = "number"
	KindSelect   InputKind = "select"
	KindTextarea InputKind = "textarea"
)

// Option is one entry of a select input.
type Option struct {
	Value string
	Label string
}

// FieldSpec describes how a field is presented.
type FieldSpec struct {
	Key         string
	Label       string
	Kind        InputKind
	Placeholder string
	Options     []Option
}

// Fields lists the form inputs in display order.
var Fields = []FieldSpec{
	{Key: FieldName, Label: "Name", Kind: KindText, Placeholder: "Your Name"},
	{Key: FieldAge, Label: "Age", Kind: KindNumber, Placeholder: "Your Age"},
	{Key: FieldHeight, Label: "Height (in cm)", Kind: KindNumber, Placeholder: "Your Height"},
	{Key: FieldWeight, Label: "Weight (in kg)", Kind: KindNumber, Placeholder: "Your Weight"},
	{Key: FieldDietaryPreference, Label: "Dietary Preference", Kind: KindSelect, Options: []Option{
		{Value: Vegetarian, Label: "Vegetarian"},
		{Value: NonVegetarian, Label: "Non-Vegetarian"},
	}},
	{Key: FieldHealthGoal, Label: "Health Goal", Kind: KindText, Placeholder: "Your Health Goal"},
	{Key: FieldExerciseFrequency, Label: "Exercise Frequency", Kind: KindText, Placeholder: "Exercise Frequency"},
	{Key: FieldAllergies, Label: "Allergies (if any)", Kind: KindTextarea, Placeholder: "Any allergies?"},
}

// IsField reports whether name is a known field key.
func IsField(name string) bool {
	var f FormInputs
	_, ok := f.field(name)
	return ok
}
