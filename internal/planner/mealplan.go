package planner

import "smart-pantry/internal/recipe"

// DaysInPlan is the length of the rolling plan.
const DaysInPlan = 7

// DateLayout is the format of DayPlan.Date.
const DateLayout = "2006-01-02"

// MealPlanItem is one scheduled meal.
type MealPlanItem struct {
	ID     string                  `json:"id"`
	Recipe recipe.StructuredRecipe `json:"recipe"`
}

// DayPlan holds the meals of a single calendar day in display order.
type DayPlan struct {
	Date    string         `json:"date"`
	DayName string         `json:"dayName"`
	Meals   []MealPlanItem `json:"meals"`
}

// Plan is the weekly plan, day 0 being the first day of the week it was created.
type Plan []DayPlan
