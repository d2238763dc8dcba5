package recipe

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrAlreadySaved is returned when a recipe with the same title is already saved.
var ErrAlreadySaved = errors.New("recipe already saved")

// ErrNotFound is returned when no saved recipe has the requested id.
var ErrNotFound = errors.New("saved recipe not found")

// StructuredRecipe is a recipe as returned by the AI collaborator. The title is
// its natural key.
type StructuredRecipe struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	CookTime     string   `json:"cookTime"`
}

// SavedRecipe is a StructuredRecipe kept in the user's collection.
type SavedRecipe struct {
	StructuredRecipe
	ID               string    `json:"id"`
	DateSaved        time.Time `json:"dateSaved"`
	ImagePlaceholder string    `json:"imagePlaceholder"`
}

// Citation is a web source the collaborator grounded its answer on.
type Citation struct {
	URI   string `json:"uri"`
	Title string `json:"title,omitempty"`
}

// SearchResult is the normalised response of both search modes.
type SearchResult struct {
	Recipes   []StructuredRecipe `json:"recipes"`
	Citations []Citation         `json:"citations,omitempty"`
	// RawText is the unparsed collaborator answer, kept when parsing failed.
	RawText string `json:"rawText,omitempty"`
}

// TitleKey normalises a title for every title-keyed lookup.
func TitleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// SameTitle reports whether two titles refer to the same recipe.
func SameTitle(a, b string) bool {
	return TitleKey(a) == TitleKey(b)
}

// IsSaved reports whether a recipe with this title is in the collection.
func IsSaved(saved []SavedRecipe, title string) bool {
	for _, s := range saved {
		if SameTitle(s.Title, title) {
			return true
		}
	}
	return false
}

// Save appends r to the collection unless its title is already present.
// The input slice is never modified.
func Save(saved []SavedRecipe, r StructuredRecipe, now time.Time) ([]SavedRecipe, SavedRecipe, error) {
	if IsSaved(saved, r.Title) {
		return saved, SavedRecipe{}, ErrAlreadySaved
	}
	s := SavedRecipe{
		StructuredRecipe: r,
		ID:               uuid.NewString(),
		DateSaved:        now,
		ImagePlaceholder: placeholderFor(r.Title),
	}
	out := make([]SavedRecipe, 0, len(saved)+1)
	out = append(out, saved...)
	return append(out, s), s, nil
}

// Unsave removes the saved recipe with the given id.
func Unsave(saved []SavedRecipe, id string) ([]SavedRecipe, error) {
	for i, s := range saved {
		if s.ID != id {
			continue
		}
		out := make([]SavedRecipe, 0, len(saved)-1)
		out = append(out, saved[:i]...)
		return append(out, saved[i+1:]...), nil
	}
	return saved, ErrNotFound
}

// FindByTitle looks a saved recipe up by normalised title.
func FindByTitle(saved []SavedRecipe, title string) (SavedRecipe, bool) {
	for _, s := range saved {
		if SameTitle(s.Title, title) {
			return s, true
		}
	}
	return SavedRecipe{}, false
}

// Dedupe drops later recipes whose title repeats an earlier one and keeps at most limit.
func Dedupe(recipes []StructuredRecipe, limit int) []StructuredRecipe {
	seen := make(map[string]bool, len(recipes))
	out := make([]StructuredRecipe, 0, len(recipes))
	for _, r := range recipes {
		key := TitleKey(r.Title)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// placeholderFor picks a stable image seed from the title.
func placeholderFor(title string) string {
	return "https://picsum.photos/seed/" + url.PathEscape(strings.ReplaceAll(TitleKey(title), " ", "-")) + "/400/300"
}
