package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"smart-pantry/internal/llm"
	"smart-pantry/internal/recipe"
	"smart-pantry/internal/shared"
)

const (
	AgentRecipeSearch    = "RecipeSearch"
	AgentRecipeGenerator = "RecipeGenerator"
)

// ErrNothingToSearch is returned for a generative search with an empty pantry.
var ErrNothingToSearch = errors.New("no query and no pantry items to search with")

// Result is a normalised search result plus execution metadata.
type Result struct {
	recipe.SearchResult
	Meta shared.AgentMeta
}

// Searcher routes requests to the grounded or the structured collaborator.
type Searcher struct {
	grounded   llm.GroundedGenerator
	structured llm.StructuredGenerator
	log        *zap.Logger
}

func NewSearcher(grounded llm.GroundedGenerator, structured llm.StructuredGenerator, log *zap.Logger) *Searcher {
	return &Searcher{grounded: grounded, structured: structured, log: log}
}

// Search runs the request. Transport failures are returned; an unparseable
// answer yields zero recipes with citations preserved.
func (s *Searcher) Search(ctx context.Context, req Request) (Result, error) {
	mode := req.Mode()
	if mode == ModeGenerative && len(req.pantryNames()) == 0 {
		return Result{}, ErrNothingToSearch
	}

	prompt, err := BuildPrompt(req)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	var resp llm.ContentResponse
	agent := AgentRecipeGenerator
	if mode == ModeSpecific {
		agent = AgentRecipeSearch
		resp, err = s.grounded.GenerateGrounded(ctx, prompt)
	} else {
		resp, err = s.structured.GenerateStructured(ctx, prompt, recipesSchema)
	}
	meta := shared.AgentMeta{AgentName: agent, Usage: resp.Usage, Latency: time.Since(start)}
	if err != nil {
		return Result{Meta: meta}, fmt.Errorf("%s search failed: %w", mode, err)
	}

	result := Result{Meta: meta}
	result.Citations = citations(resp.Sources)

	recipes, ok := DecodeRecipes(resp.Content)
	if !ok {
		s.log.Warn("unparseable recipe payload",
			zap.String("mode", mode.String()),
			zap.Int("length", len(resp.Content)),
		)
		result.RawText = resp.Content
		result.Recipes = []recipe.StructuredRecipe{}
		return result, nil
	}

	result.Recipes = recipe.Dedupe(recipes, RecipeCount)
	return result, nil
}

// citations converts grounding chunks, dropping repeated URIs.
func citations(sources []llm.GroundingChunk) []recipe.Citation {
	if len(sources) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(sources))
	out := make([]recipe.Citation, 0, len(sources))
	for _, src := range sources {
		if src.URI == "" || seen[src.URI] {
			continue
		}
		seen[src.URI] = true
		out = append(out, recipe.Citation{URI: src.URI, Title: src.Title})
	}
	return out
}
