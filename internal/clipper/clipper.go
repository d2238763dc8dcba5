package clipper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"smart-pantry/internal/llm"
	"smart-pantry/internal/recipe"
	"smart-pantry/internal/search"
	"smart-pantry/internal/shared"
)

const AgentClipper = "Clipper"

// maxContentRunes caps the page text sent to the model.
const maxContentRunes = 20000

// ErrNoRecipe is returned when the page does not yield a titled recipe.
var ErrNoRecipe = errors.New("no recipe found on page")

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	textGen    llm.TextGenerator
	httpClient *http.Client
}

// ClipResult is the extracted recipe plus execution metadata.
type ClipResult struct {
	Recipe recipe.StructuredRecipe
	Meta   shared.AgentMeta
}

// NewClipper creates a new Clipper instance.
func NewClipper(textGen llm.TextGenerator) *Clipper {
	return &Clipper{
		textGen:    textGen,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// ClipURL fetches the URL and extracts a structured recipe using AI.
func (c *Clipper) ClipURL(ctx context.Context, url string) (ClipResult, error) {
	// 1. Fetch and Clean HTML
	content, err := c.fetchAndCleanHTML(ctx, url)
	if err != nil {
		return ClipResult{}, fmt.Errorf("failed to fetch content: %w", err)
	}

	// 2. Extract Data
	prompt := fmt.Sprintf(`
You are a recipe extraction expert. Extract the recipe details from the following page content.
Return the result strictly as a JSON object with this structure:
{
  "title": "Recipe Title",
  "description": "One or two sentences",
  "ingredients": ["quantity + item", "..."],
  "instructions": ["Step 1 description", "Step 2 description"],
  "cookTime": "e.g. 30 mins"
}
If the page contains no recipe, return {"title": ""}.

Page Content:
%s
`, content)

	start := time.Now()
	resp, err := c.textGen.GenerateContent(ctx, prompt)
	meta := shared.AgentMeta{AgentName: AgentClipper, Usage: resp.Usage, Latency: time.Since(start)}
	if err != nil {
		return ClipResult{Meta: meta}, fmt.Errorf("ai extraction failed: %w", err)
	}

	extracted, err := decodeRecipe(resp.Content)
	if err != nil {
		return ClipResult{Meta: meta}, fmt.Errorf("failed to parse AI response: %w", err)
	}
	if strings.TrimSpace(extracted.Title) == "" {
		return ClipResult{Meta: meta}, ErrNoRecipe
	}
	extracted.Title = strings.TrimSpace(extracted.Title)

	return ClipResult{Recipe: extracted, Meta: meta}, nil
}

func (c *Clipper) fetchAndCleanHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if runes := []rune(text); len(runes) > maxContentRunes {
		text = string(runes[:maxContentRunes])
	}
	return text, nil
}

func decodeRecipe(raw string) (recipe.StructuredRecipe, error) {
	text := search.StripCodeFence(raw)

	var r recipe.StructuredRecipe
	err := json.Unmarshal([]byte(text), &r)
	if err == nil {
		return r, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return r, err
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &r); err != nil {
		return r, err
	}
	return r, nil
}
