package planner

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"smart-pantry/internal/pantry"
	"smart-pantry/internal/recipe"
)

// ErrInvalidIndex is returned when a day or meal index does not exist in the plan.
var ErrInvalidIndex = errors.New("invalid day or meal index")

// NewWeek builds seven consecutive local-calendar days starting at today,
// each with an empty meal list.
func NewWeek(today time.Time) Plan {
	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, today.Location())

	plan := make(Plan, DaysInPlan)
	for i := range plan {
		day := start.AddDate(0, 0, i)
		plan[i] = DayPlan{
			Date:    day.Format(DateLayout),
			DayName: day.Weekday().String(),
			Meals:   []MealPlanItem{},
		}
	}
	return plan
}

// NeedsInit reports whether the stored plan must be generated. Only a plan
// with no days qualifies; days without meals are left alone.
func NeedsInit(p Plan) bool {
	return len(p) == 0
}

// Clone deep-copies the plan so callers can mutate a snapshot.
func (p Plan) Clone() Plan {
	if p == nil {
		return nil
	}
	out := make(Plan, len(p))
	for i, day := range p {
		out[i] = DayPlan{Date: day.Date, DayName: day.DayName, Meals: make([]MealPlanItem, len(day.Meals))}
		copy(out[i].Meals, day.Meals)
	}
	return out
}

// Add schedules r on day 0 and returns the resulting plan and the new meal.
func (p Plan) Add(r recipe.StructuredRecipe) (Plan, MealPlanItem, error) {
	if len(p) == 0 {
		return p, MealPlanItem{}, ErrInvalidIndex
	}
	item := MealPlanItem{ID: uuid.NewString(), Recipe: r}
	out := p.Clone()
	out[0].Meals = append(out[0].Meals, item)
	return out, item, nil
}

// Move removes the meal at (srcDay, srcMeal) and appends it to dstDay. Moving
// within the same day sends the meal to the end of that day.
func (p Plan) Move(srcDay, srcMeal, dstDay int) (Plan, error) {
	if !p.validMeal(srcDay, srcMeal) || !p.validDay(dstDay) {
		return p, ErrInvalidIndex
	}
	out := p.Clone()
	meal := out[srcDay].Meals[srcMeal]
	out[srcDay].Meals = removeAt(out[srcDay].Meals, srcMeal)
	out[dstDay].Meals = append(out[dstDay].Meals, meal)
	return out, nil
}

// Remove deletes the meal at (day, meal).
func (p Plan) Remove(day, meal int) (Plan, error) {
	if !p.validMeal(day, meal) {
		return p, ErrInvalidIndex
	}
	out := p.Clone()
	out[day].Meals = removeAt(out[day].Meals, meal)
	return out, nil
}

// Ingredients flattens the ingredients of every scheduled meal.
func (p Plan) Ingredients() []string {
	var all []string
	for _, day := range p {
		for _, meal := range day.Meals {
			all = append(all, meal.Recipe.Ingredients...)
		}
	}
	return all
}

// Missing lists the distinct plan ingredients the inventory does not cover.
func (p Plan) Missing(inventory []pantry.Item) []string {
	return pantry.MissingIngredients(p.Ingredients(), inventory)
}

// MealCount returns the number of meals across all days.
func (p Plan) MealCount() int {
	n := 0
	for _, day := range p {
		n += len(day.Meals)
	}
	return n
}

func (p Plan) validDay(day int) bool {
	return day >= 0 && day < len(p)
}

func (p Plan) validMeal(day, meal int) bool {
	return p.validDay(day) && meal >= 0 && meal < len(p[day].Meals)
}

func removeAt(meals []MealPlanItem, i int) []MealPlanItem {
	out := make([]MealPlanItem, 0, len(meals)-1)
	out = append(out, meals[:i]...)
	return append(out, meals[i+1:]...)
}
