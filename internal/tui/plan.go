package tui

import (
	"fmt"

	"smart-pantry/internal/pantry"
	"smart-pantry/internal/planner"
	"smart-pantry/internal/recipe"
)

// RenderPlan draws the week with the ingredients still missing.
func RenderPlan(plan planner.Plan, missing []string) string {
	lines := []string{titleStyle.Render("Weekly Meal Plan"), ""}
	for i, day := range plan {
		lines = append(lines, accentStyle.Render(fmt.Sprintf("%d %s", i+1, day.DayName))+" "+mutedStyle.Render(day.Date))
		if len(day.Meals) == 0 {
			lines = append(lines, mutedStyle.Render("    nothing planned"))
		}
		for j, meal := range day.Meals {
			line := fmt.Sprintf("    %d. %s", j+1, meal.Recipe.Title)
			if meal.Recipe.CookTime != "" {
				line += mutedStyle.Render(" (" + meal.Recipe.CookTime + ")")
			}
			lines = append(lines, line)
		}
	}

	lines = append(lines, "")
	if len(missing) == 0 {
		lines = append(lines, successStyle.Render("✔ Your pantry covers every planned meal"))
	} else {
		lines = append(lines, pendingStyle.Render(fmt.Sprintf("Missing (%d)", len(missing))))
		for _, m := range missing {
			lines = append(lines, "  • "+m)
		}
	}
	return Panel(lines)
}

// RenderMissing lists ingredients to buy.
func RenderMissing(missing []string) string {
	if len(missing) == 0 {
		return successStyle.Render("✔ Nothing missing")
	}
	lines := []string{pendingStyle.Render(fmt.Sprintf("Missing (%d)", len(missing)))}
	for _, m := range missing {
		lines = append(lines, "  • "+m)
	}
	return Panel(lines)
}

// RenderPantry lists the inventory with categories.
func RenderPantry(items []pantry.Item) string {
	lines := []string{titleStyle.Render(fmt.Sprintf("Pantry (%d)", len(items)))}
	for i, item := range items {
		line := fmt.Sprintf("%d. %s", i+1, item.Name)
		if item.Category != "" {
			line += mutedStyle.Render(" · " + item.Category)
		}
		if item.QuantityEstimate != "" {
			line += mutedStyle.Render(" · " + item.QuantityEstimate)
		}
		lines = append(lines, line)
	}
	return Panel(lines)
}

// RenderRecipes lists search results with the ingredients the pantry lacks.
func RenderRecipes(res recipe.SearchResult, inventory []pantry.Item) string {
	if len(res.Recipes) == 0 {
		lines := []string{pendingStyle.Render("No structured recipes found")}
		if res.RawText != "" {
			lines = append(lines, "", res.RawText)
		}
		for _, c := range res.Citations {
			lines = append(lines, mutedStyle.Render("  ↳ "+c.URI))
		}
		return Panel(lines)
	}

	var lines []string
	for i, r := range res.Recipes {
		if i > 0 {
			lines = append(lines, "")
		}
		head := titleStyle.Render(fmt.Sprintf("%d. %s", i+1, r.Title))
		if r.CookTime != "" {
			head += mutedStyle.Render(" (" + r.CookTime + ")")
		}
		lines = append(lines, head)
		if r.Description != "" {
			lines = append(lines, r.Description)
		}
		for _, ing := range r.Ingredients {
			mark := successStyle.Render(boxChecked)
			if len(pantry.MissingIngredients([]string{ing}, inventory)) > 0 {
				mark = pendingStyle.Render(boxUnchecked)
			}
			lines = append(lines, "  "+mark+" "+ing)
		}
	}
	for _, c := range res.Citations {
		lines = append(lines, mutedStyle.Render("  ↳ "+c.URI))
	}
	return Panel(lines)
}
