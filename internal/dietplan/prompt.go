package dietplan

import "fmt"

/*
PromptTemplate asks the model for a diet chart built from the eight form
inputs, in field order. The last two sentences tell the model to leave out
its usual closing disclaimers.
*/
const PromptTemplate = `Hello there! To tailor a personalized diet chart for you, I'll need some essential details. Please provide the following information:

Name: %s
Age:  %s
Height (in cm): %s
Weight (in kg): %s
Dietary Preference: Are you vegetarian or non-vegetarian? %s
Health Goal: %s
Exercise Frequency: How often do you engage in physical activity? (e.g., daily, 3-4 times a week, rarely) %s
Allergies: Do you have any food allergies or intolerances? If yes, please specify. %s
Based on this information, I'll create a well-organized diet chart for you. The chart will include details such as food items, portion sizes, protein content (in grams), and calorie count for each item. Don't include this - You can also consult with a nutritionist or dietitian for further guidance. Don't include - Please let me know if you have any specific preferences or dietary restrictions for further customization.`

// BuildPrompt fills the template. Empty fields are sent as-is.
func BuildPrompt(in FormInputs) string {
	return fmt.Sprintf(
		PromptTemplate,
		in.Name,
		in.Age,
		in.Height,
		in.Weight,
		in.DietaryPreference,
		in.HealthGoal,
		in.ExerciseFrequency,
		in.Allergies,
	)
}
