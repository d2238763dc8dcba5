package search

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

// RecipeCount is how many recipes every search asks for and returns at most.
const RecipeCount = 3

// Staples are assumed on hand in strict mode.
var Staples = []string{"oil", "salt", "pepper", "water"}

//go:embed specific_prompt.md
var specificPrompt string

//go:embed generative_prompt.md
var generativePrompt string

//go:embed scan_prompt.md
var scanPrompt string

var (
	specificTmpl   = template.Must(template.New("specific").Parse(specificPrompt))
	generativeTmpl = template.Must(template.New("generative").Parse(generativePrompt))
)

type promptData struct {
	Count              int
	Query              string
	Restrictions       string
	Ingredients        string
	Strict             bool
	Staples            string
	MaxCookTimeMinutes int
	MaxIngredients     int
	Measurement        Measurement
}

// BuildPrompt renders the prompt for the request's mode.
func BuildPrompt(req Request) (string, error) {
	data := promptData{
		Count:              RecipeCount,
		Query:              strings.TrimSpace(req.Query),
		Restrictions:       strings.TrimSpace(req.Restrictions),
		Ingredients:        strings.Join(req.pantryNames(), ", "),
		Strict:             req.StrictMode,
		Staples:            strings.Join(Staples, ", "),
		MaxCookTimeMinutes: req.MaxCookTimeMinutes,
		MaxIngredients:     req.MaxIngredients,
		Measurement:        req.measurement(),
	}

	tmpl := generativeTmpl
	if req.Mode() == ModeSpecific {
		tmpl = specificTmpl
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", req.Mode(), err)
	}
	return buf.String(), nil
}
