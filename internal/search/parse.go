package search

import (
	"encoding/json"
	"regexp"
	"strings"

	"smart-pantry/internal/recipe"
)

var (
	leadingFence  = regexp.MustCompile("^```(?:json|JSON)?\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")
)

// StripCodeFence removes a surrounding markdown code fence, if any.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = leadingFence.ReplaceAllString(s, "")
	return trailingFence.ReplaceAllString(s, "")
}

type recipesPayload struct {
	Recipes []recipe.StructuredRecipe `json:"recipes"`
}

// DecodeRecipes parses a {"recipes": [...]} payload. Fences are stripped
// first; when that fails the outermost {...} span is tried, which copes with
// prose around the JSON. It reports false when nothing parses.
func DecodeRecipes(raw string) ([]recipe.StructuredRecipe, bool) {
	text := StripCodeFence(raw)

	var p recipesPayload
	if err := json.Unmarshal([]byte(text), &p); err == nil {
		return p.Recipes, true
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &p); err != nil {
		return nil, false
	}
	return p.Recipes, true
}
