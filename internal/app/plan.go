package app

import (
	"context"

	"smart-pantry/internal/planner"
	"smart-pantry/internal/recipe"
	"smart-pantry/internal/storage"
)

// CommunityPlaceholder describes a community recipe scheduled without details.
var CommunityPlaceholder = recipe.StructuredRecipe{
	Description:  "Community favorite",
	Ingredients:  []string{"View details to see ingredients"},
	Instructions: []string{},
	CookTime:     "30-45m",
}

// ScheduleRecipe appends r to today's meals.
func (a *App) ScheduleRecipe(ctx context.Context, r recipe.StructuredRecipe) (planner.MealPlanItem, error) {
	var item planner.MealPlanItem
	err := a.update(ctx, func(s *State) error {
		next, it, err := s.MealPlan.Add(r)
		if err != nil {
			return err
		}
		s.MealPlan, item = next, it
		return nil
	}, storage.KeyMealPlan)
	return item, err
}

// ScheduleByTitle schedules a saved recipe, or a placeholder for titles only
// known from community ratings.
func (a *App) ScheduleByTitle(ctx context.Context, title string) (planner.MealPlanItem, error) {
	r := CommunityPlaceholder
	r.Title = title
	if saved, ok := recipe.FindByTitle(a.Snapshot().SavedRecipes, title); ok {
		r = saved.StructuredRecipe
	}
	return a.ScheduleRecipe(ctx, r)
}

// MoveMeal moves a meal to the end of another day as one transition.
func (a *App) MoveMeal(ctx context.Context, srcDay, srcMeal, dstDay int) error {
	return a.update(ctx, func(s *State) error {
		next, err := s.MealPlan.Move(srcDay, srcMeal, dstDay)
		s.MealPlan = next
		return err
	}, storage.KeyMealPlan)
}

// RemoveMeal deletes a scheduled meal.
func (a *App) RemoveMeal(ctx context.Context, day, meal int) error {
	return a.update(ctx, func(s *State) error {
		next, err := s.MealPlan.Remove(day, meal)
		s.MealPlan = next
		return err
	}, storage.KeyMealPlan)
}
