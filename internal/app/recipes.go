package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"smart-pantry/internal/pantry"
	"smart-pantry/internal/recipe"
	"smart-pantry/internal/search"
	"smart-pantry/internal/storage"
)

// SearchRecipes runs a search. A generative request without an explicit
// pantry uses the current inventory. The result is kept as LastSearch.
func (a *App) SearchRecipes(ctx context.Context, req search.Request) (recipe.SearchResult, error) {
	if a.deps.Searcher == nil {
		return recipe.SearchResult{}, ErrUnavailable
	}
	if err := a.begin(OpSearch); err != nil {
		return recipe.SearchResult{}, err
	}

	if req.Mode() == search.ModeGenerative && req.Pantry == nil {
		req.Pantry = pantry.Names(a.Snapshot().Inventory)
	}

	res, err := a.deps.Searcher.Search(ctx, req)
	a.record(ctx, res.Meta, err)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.fail(OpSearch, err)
		return recipe.SearchResult{}, err
	}
	next := a.state.Clone()
	next.LastSearch = res.SearchResult
	a.commit(ctx, next)
	a.ops[OpSearch] = StatusSuccess
	return res.SearchResult, nil
}

// SaveRecipe adds r to the collection. A title that is already saved gives
// recipe.ErrAlreadySaved and leaves the collection unchanged.
func (a *App) SaveRecipe(ctx context.Context, r recipe.StructuredRecipe) (recipe.SavedRecipe, error) {
	var saved recipe.SavedRecipe
	err := a.update(ctx, func(s *State) error {
		next, sr, err := recipe.Save(s.SavedRecipes, r, a.deps.Clock())
		if err != nil {
			return err
		}
		s.SavedRecipes, saved = next, sr
		return nil
	}, storage.KeySavedRecipes)
	return saved, err
}

// UnsaveRecipe removes a saved recipe. Ratings and scheduled meals with the
// same title are left alone.
func (a *App) UnsaveRecipe(ctx context.Context, id string) error {
	return a.update(ctx, func(s *State) error {
		next, err := recipe.Unsave(s.SavedRecipes, id)
		s.SavedRecipes = next
		return err
	}, storage.KeySavedRecipes)
}

// ImportRecipe extracts a recipe from a web page and saves it.
func (a *App) ImportRecipe(ctx context.Context, url string) (recipe.SavedRecipe, error) {
	if a.deps.Importer == nil {
		return recipe.SavedRecipe{}, ErrUnavailable
	}
	if err := a.begin(OpImport); err != nil {
		return recipe.SavedRecipe{}, err
	}

	res, err := a.deps.Importer.ClipURL(ctx, url)
	a.record(ctx, res.Meta, err)
	if err != nil {
		a.log.Warn("recipe import failed", zap.String("url", url), zap.Error(err))
		err = fmt.Errorf("recipe import failed: %w", err)
		a.settle(OpImport, err)
		return recipe.SavedRecipe{}, err
	}

	saved, err := a.SaveRecipe(ctx, res.Recipe)
	a.settle(OpImport, err)
	return saved, err
}
