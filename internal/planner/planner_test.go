package planner

import (
	"errors"
	"testing"
	"time"

	"smart-pantry/internal/pantry"
	"smart-pantry/internal/recipe"
)

func TestNewWeek(t *testing.T) {
	today := time.Date(2025, 2, 26, 18, 30, 0, 0, time.Local)
	plan := NewWeek(today)

	if len(plan) != DaysInPlan {
		t.Fatalf("Expected %d days, got %d", DaysInPlan, len(plan))
	}

	wantDates := []string{"2025-02-26", "2025-02-27", "2025-02-28", "2025-03-01", "2025-03-02", "2025-03-03", "2025-03-04"}
	for i, day := range plan {
		if day.Date != wantDates[i] {
			t.Errorf("Day %d: expected date %s, got %s", i, wantDates[i], day.Date)
		}
		if day.Meals == nil || len(day.Meals) != 0 {
			t.Errorf("Day %d: expected an empty meal list, got %v", i, day.Meals)
		}
	}
	if plan[0].DayName != "Wednesday" {
		t.Errorf("Expected first day to be Wednesday, got %s", plan[0].DayName)
	}
	if plan[3].DayName != "Saturday" {
		t.Errorf("Expected fourth day to be Saturday, got %s", plan[3].DayName)
	}
}

func TestNeedsInit(t *testing.T) {
	if !NeedsInit(nil) {
		t.Error("Expected an absent plan to need initialisation")
	}
	if NeedsInit(NewWeek(time.Now())) {
		t.Error("Expected a plan with empty days not to be re-initialised")
	}
}

func weekWithMeals(t *testing.T) Plan {
	t.Helper()
	plan := NewWeek(time.Now())
	for _, title := range []string{"Soup", "Salad", "Stew"} {
		var err error
		plan, _, err = plan.Add(recipe.StructuredRecipe{Title: title, Ingredients: []string{title + " base", "salt"}})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	return plan
}

func TestAdd(t *testing.T) {
	plan := NewWeek(time.Now())
	next, item, err := plan.Add(recipe.StructuredRecipe{Title: "Omelette"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(next[0].Meals) != 1 || next[0].Meals[0].ID != item.ID {
		t.Errorf("Expected the meal to be appended to day 0, got %+v", next[0].Meals)
	}
	if len(plan[0].Meals) != 0 {
		t.Error("Expected the original plan to be left untouched")
	}

	if _, _, err := Plan(nil).Add(recipe.StructuredRecipe{}); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("Expected ErrInvalidIndex on an empty plan, got %v", err)
	}
}

func TestMove(t *testing.T) {
	plan := weekWithMeals(t)
	moved := plan[0].Meals[1]

	next, err := plan.Move(0, 1, 4)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	if got := len(next[0].Meals); got != len(plan[0].Meals)-1 {
		t.Errorf("Expected source day to shrink by 1, got %d meals", got)
	}
	if got := len(next[4].Meals); got != len(plan[4].Meals)+1 {
		t.Errorf("Expected target day to grow by 1, got %d meals", got)
	}
	if next.MealCount() != plan.MealCount() {
		t.Errorf("Expected total meal count %d, got %d", plan.MealCount(), next.MealCount())
	}
	if last := next[4].Meals[len(next[4].Meals)-1]; last.ID != moved.ID {
		t.Errorf("Expected moved meal %s at the end of the target day, got %s", moved.ID, last.ID)
	}
	if next[0].Meals[1].Recipe.Title != "Stew" {
		t.Errorf("Expected later meals to shift down, got %s", next[0].Meals[1].Recipe.Title)
	}

	t.Run("SameDay", func(t *testing.T) {
		same, err := plan.Move(0, 0, 0)
		if err != nil {
			t.Fatalf("Move failed: %v", err)
		}
		if same[0].Meals[2].ID != plan[0].Meals[0].ID {
			t.Error("Expected the meal to move to the end of the same day")
		}
	})

	t.Run("InvalidIndices", func(t *testing.T) {
		for _, idx := range [][3]int{{-1, 0, 1}, {0, 3, 1}, {0, 0, 7}, {1, 0, 2}, {7, 0, 0}} {
			got, err := plan.Move(idx[0], idx[1], idx[2])
			if !errors.Is(err, ErrInvalidIndex) {
				t.Errorf("Move%v: expected ErrInvalidIndex, got %v", idx, err)
			}
			if got.MealCount() != plan.MealCount() {
				t.Errorf("Move%v: expected plan to be unchanged", idx)
			}
		}
	})
}

func TestRemove(t *testing.T) {
	plan := weekWithMeals(t)

	next, err := plan.Remove(0, 0)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if next.MealCount() != 2 {
		t.Errorf("Expected 2 meals, got %d", next.MealCount())
	}
	if _, err := plan.Remove(2, 0); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("Expected ErrInvalidIndex, got %v", err)
	}
}

func TestMissing(t *testing.T) {
	plan := weekWithMeals(t)
	plan, _ = plan.Move(0, 0, 3)

	got := plan.Missing([]pantry.Item{{Name: "Salt"}, {Name: "salad"}})
	want := []string{"Stew base", "Soup base"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
			break
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	plan := weekWithMeals(t)
	c := plan.Clone()
	c[0].Meals[0].Recipe.Title = "Changed"
	if plan[0].Meals[0].Recipe.Title == "Changed" {
		t.Error("Expected Clone to copy meal slices")
	}
}
