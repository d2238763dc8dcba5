// Package rating records recipe ratings and aggregates them per title for the
// community leaderboard.
package rating

import (
	"fmt"
	"html"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"smart-pantry/internal/recipe"
)

var (
	validate = validator.New()
	policy   = bluemonday.StrictPolicy()
)

// Rating is a single append-only star rating.
type Rating struct {
	ID          string    `json:"id"`
	RecipeTitle string    `json:"recipeTitle" validate:"required"`
	Stars       int       `json:"rating" validate:"min=1,max=5"`
	Comment     string    `json:"comment"`
	UserName    string    `json:"userName"`
	Date        time.Time `json:"date"`
}

// New validates and builds a rating. Markup in the comment and user name is stripped.
func New(title string, stars int, comment, userName string, now time.Time) (Rating, error) {
	r := Rating{
		ID:          uuid.NewString(),
		RecipeTitle: strings.TrimSpace(title),
		Stars:       stars,
		Comment:     clean(comment),
		UserName:    clean(userName),
		Date:        now,
	}
	if err := validate.Struct(r); err != nil {
		return Rating{}, fmt.Errorf("invalid rating: %w", err)
	}
	return r, nil
}

// clean strips markup; entities are unescaped again because ratings are
// rendered as plain text.
func clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}

// Add prepends r so the list runs from newest to oldest.
func Add(ratings []Rating, r Rating) []Rating {
	out := make([]Rating, 0, len(ratings)+1)
	out = append(out, r)
	return append(out, ratings...)
}

// Stats summarises the ratings of one recipe title.
type Stats struct {
	Title           string
	Average         float64
	Count           int
	LatestComment   string
	LatestCommentBy string
}

// AverageText formats the average with one decimal place.
func (s Stats) AverageText() string {
	return fmt.Sprintf("%.1f", s.Average)
}

// Aggregate groups ratings by normalised title in first-seen order.
func Aggregate(ratings []Rating) []Stats {
	type group struct {
		stats Stats
		total int
	}
	index := map[string]int{}
	var groups []*group

	for _, r := range ratings {
		key := recipe.TitleKey(r.RecipeTitle)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, &group{stats: Stats{Title: r.RecipeTitle}})
		}
		g := groups[i]
		g.total += r.Stars
		g.stats.Count++
		if g.stats.LatestComment == "" && r.Comment != "" {
			g.stats.LatestComment = r.Comment
			g.stats.LatestCommentBy = r.UserName
		}
	}

	out := make([]Stats, len(groups))
	for i, g := range groups {
		g.stats.Average = math.Round(float64(g.total)/float64(g.stats.Count)*10) / 10
		out[i] = g.stats
	}
	return out
}

// Leaderboard sorts aggregated titles by average, then count, then title.
func Leaderboard(ratings []Rating) []Stats {
	stats := Aggregate(ratings)
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Average != stats[j].Average {
			return stats[i].Average > stats[j].Average
		}
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return recipe.TitleKey(stats[i].Title) < recipe.TitleKey(stats[j].Title)
	})
	return stats
}

// ForTitle returns the stats of a single title.
func ForTitle(ratings []Rating, title string) (Stats, bool) {
	key := recipe.TitleKey(title)
	for _, s := range Aggregate(ratings) {
		if recipe.TitleKey(s.Title) == key {
			return s, true
		}
	}
	return Stats{}, false
}
