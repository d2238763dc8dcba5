package telegram

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"smart-pantry/internal/app"
	"smart-pantry/internal/household"
	"smart-pantry/internal/metrics"
	"smart-pantry/internal/pantry"
	"smart-pantry/internal/planner"
	"smart-pantry/internal/rating"
	"smart-pantry/internal/recipe"
	"smart-pantry/internal/shopping"
)

// maxRawText caps the unparsed collaborator answer echoed back to the chat.
const maxRawText = 1500

const helpText = `🥫 *Smart Pantry*

*Pantry*
/pantry - list your pantry
/add name | category | quantity - add an item
/remove n - remove item n
/buymore n - put pantry item n on the shopping list
Send a photo of your groceries to add them automatically.

*Shopping*
/shopping - show the list
/buy name - add an item
/check n, /uncheck n, /drop n - tick, untick or delete item n
/checkout - move ticked items into the pantry

*Recipes*
/search query - find recipes on the web
/cook [strict] [time=30] [max=5] [units=standard] [restrictions] - ideas from your pantry
/save n - save result n of the last search
/saved, /unsave n - your collection
Send a recipe link to import it.

*Plan*
/plan - this week's meals
/schedule n or /schedule title - add a meal for today
/move day meal day - move a meal
/unplan day meal - remove a meal
/missing - ingredients you still need
/tobuy [n] - add missing ingredients of the plan or of result n to the list

*Community*
/rate stars title | comment - rate a recipe
/community - top rated recipes

*Household*
/household - members
/invite email, /kick n, /join token

/login [email], /theme, /logout, /help`

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// formatError renders a failed action. Expected precondition failures get a
// plain sentence, anything else the error text in a code block.
func formatError(err error) string {
	switch {
	case errors.Is(err, app.ErrNotAuthenticated):
		return "🔒 Please /login first."
	case errors.Is(err, app.ErrBusy):
		return "⏳ Still working on your previous request."
	case errors.Is(err, app.ErrUnavailable):
		return "🚫 This feature is not configured on this bot."
	case errors.Is(err, errBadArgs):
		return "🤔 " + esc(err.Error()) + "\nSee /help."
	}
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	return fmt.Sprintf("❌ *Error:*\n```\n%v\n```", safeErr)
}

func formatPantry(items []pantry.Item) string {
	if len(items) == 0 {
		return "🥫 Your pantry is empty. Add items with /add or send a photo."
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🥫 *Pantry* (%d items)\n\n", len(items)))
	for i, item := range items {
		sb.WriteString(fmt.Sprintf("%d. %s", i+1, esc(item.Name)))
		if details := itemDetails(item); details != "" {
			sb.WriteString(" _(" + esc(details) + ")_")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func itemDetails(item pantry.Item) string {
	var parts []string
	if item.Category != "" {
		parts = append(parts, item.Category)
	}
	if item.QuantityEstimate != "" {
		parts = append(parts, item.QuantityEstimate)
	}
	return strings.Join(parts, ", ")
}

func formatScan(items []pantry.Item) string {
	if len(items) == 0 {
		return "📸 No food items recognised in that photo."
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📸 Added %d items to your pantry:\n", len(items)))
	for _, item := range items {
		sb.WriteString("• " + esc(item.Name))
		if details := itemDetails(item); details != "" {
			sb.WriteString(" (" + esc(details) + ")")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatShopping(list []shopping.Item) string {
	if len(list) == 0 {
		return "🛒 Your shopping list is empty."
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🛒 *Shopping List* (%d/%d checked)\n\n", shopping.CheckedCount(list), len(list)))
	for i, item := range list {
		box := "⬜"
		if item.Checked {
			box = "✅"
		}
		sb.WriteString(fmt.Sprintf("%d. %s %s", i+1, box, esc(item.Name)))
		if item.Category != "" && item.Category != shopping.CategoryManual {
			sb.WriteString(" _(" + esc(item.Category) + ")_")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatRecipes lists search results with what the pantry is missing for each
// and their community rating.
func formatRecipes(res recipe.SearchResult, inventory []pantry.Item, ratings []rating.Rating) string {
	var sb strings.Builder
	switch {
	case len(res.Recipes) > 0:
		sb.WriteString("🍳 *Recipes*\n\n")
		for i, r := range res.Recipes {
			sb.WriteString(fmt.Sprintf("*%d. %s*", i+1, esc(r.Title)))
			if r.CookTime != "" {
				sb.WriteString(" (" + esc(r.CookTime) + ")")
			}
			if stats, ok := rating.ForTitle(ratings, r.Title); ok {
				sb.WriteString(fmt.Sprintf(" ⭐ %s", stats.AverageText()))
			}
			sb.WriteString("\n")
			if r.Description != "" {
				sb.WriteString(esc(r.Description) + "\n")
			}
			if len(r.Ingredients) > 0 {
				sb.WriteString("_Ingredients:_ " + esc(strings.Join(r.Ingredients, ", ")) + "\n")
			}
			if missing := pantry.MissingIngredients(r.Ingredients, inventory); len(missing) > 0 {
				sb.WriteString("⚠️ _Missing:_ " + esc(strings.Join(missing, ", ")) + "\n")
			} else {
				sb.WriteString("✅ You have everything\n")
			}
			sb.WriteString("\n")
		}
		sb.WriteString("/save n, /schedule n or /tobuy n")
	case res.RawText != "":
		raw := res.RawText
		if len([]rune(raw)) > maxRawText {
			raw = string([]rune(raw)[:maxRawText]) + "…"
		}
		sb.WriteString("🤷 I couldn't read structured recipes. Here is the answer:\n\n")
		sb.WriteString(esc(raw))
	default:
		sb.WriteString("🤷 No recipes found.")
	}

	if len(res.Citations) > 0 {
		sb.WriteString("\n\n🔗 *Sources*\n")
		for _, c := range res.Citations {
			title := c.Title
			if title == "" {
				title = c.URI
			}
			sb.WriteString(fmt.Sprintf("• %s: %s\n", esc(title), c.URI))
		}
	}
	return sb.String()
}

func formatSaved(saved []recipe.SavedRecipe) string {
	if len(saved) == 0 {
		return "📚 No saved recipes yet. Use /save after a search or send a recipe link."
	}
	var sb strings.Builder
	sb.WriteString("📚 *Saved Recipes*\n\n")
	for i, r := range saved {
		sb.WriteString(fmt.Sprintf("%d. %s", i+1, esc(r.Title)))
		if r.CookTime != "" {
			sb.WriteString(" (" + esc(r.CookTime) + ")")
		}
		sb.WriteString(" · saved " + r.DateSaved.Format(planner.DateLayout) + "\n")
	}
	return sb.String()
}

// formatPlanMarkdownParts renders the week and, separately, the ingredients
// the pantry does not cover.
func formatPlanMarkdownParts(plan planner.Plan, missing []string) (string, string) {
	var pb strings.Builder
	pb.WriteString("📅 *Weekly Meal Plan*\n\n")

	for _, dp := range plan {
		pb.WriteString(fmt.Sprintf("*%s* %s\n", dp.DayName, dp.Date))
		if len(dp.Meals) == 0 {
			pb.WriteString("  _nothing planned_\n")
		}
		for i, meal := range dp.Meals {
			pb.WriteString(fmt.Sprintf("  %d. %s", i+1, esc(meal.Recipe.Title)))
			if meal.Recipe.CookTime != "" {
				pb.WriteString(fmt.Sprintf(" (%s)", esc(meal.Recipe.CookTime)))
			}
			pb.WriteString("\n")
		}
		pb.WriteString("\n")
	}
	pb.WriteString(fmt.Sprintf("🍽 *Meals:* %d", plan.MealCount()))

	var sb strings.Builder
	if len(missing) == 0 {
		sb.WriteString("✅ Your pantry covers every planned meal.")
		return pb.String(), sb.String()
	}
	sb.WriteString("🛒 *Missing Ingredients*\n\n")
	for _, item := range missing {
		sb.WriteString(fmt.Sprintf("• %s\n", esc(item)))
	}
	sb.WriteString("\n/tobuy adds them to your shopping list.")

	return pb.String(), sb.String()
}

func formatLeaderboard(stats []rating.Stats) string {
	if len(stats) == 0 {
		return "🏆 No ratings yet. Be the first with /rate."
	}
	var sb strings.Builder
	sb.WriteString("🏆 *Community Favorites*\n\n")
	for i, s := range stats {
		noun := "ratings"
		if s.Count == 1 {
			noun = "rating"
		}
		sb.WriteString(fmt.Sprintf("%d. %s ⭐ %s (%d %s)\n", i+1, esc(s.Title), s.AverageText(), s.Count, noun))
		if s.LatestComment != "" {
			line := fmt.Sprintf("   _\"%s\"_", esc(s.LatestComment))
			if s.LatestCommentBy != "" {
				line += " · " + esc(s.LatestCommentBy)
			}
			sb.WriteString(line + "\n")
		}
	}
	return sb.String()
}

func formatHousehold(h household.Household) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏠 *%s*\n\n", esc(h.Name)))
	if len(h.Members) == 0 {
		sb.WriteString("_No members yet._")
		return sb.String()
	}
	for i, m := range h.Members {
		sb.WriteString(fmt.Sprintf("%d. %s (%s) · %s · %s\n", i+1, esc(m.Name), esc(m.Email), m.Role, m.Status))
	}
	return sb.String()
}

func formatUsage(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))
	return sb.String()
}
