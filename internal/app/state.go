package app

import (
	"smart-pantry/internal/household"
	"smart-pantry/internal/pantry"
	"smart-pantry/internal/planner"
	"smart-pantry/internal/rating"
	"smart-pantry/internal/recipe"
	"smart-pantry/internal/session"
	"smart-pantry/internal/shopping"
	"smart-pantry/internal/storage"
)

// State is everything the user sees. Only App mutates it.
type State struct {
	User         *session.User
	Inventory    []pantry.Item
	ShoppingList []shopping.Item
	SavedRecipes []recipe.SavedRecipe
	Ratings      []rating.Rating
	MealPlan     planner.Plan
	Household    household.Household
	Theme        session.Theme

	// LastSearch is kept in memory only.
	LastSearch recipe.SearchResult
}

func defaultState() State {
	return State{
		Inventory:    []pantry.Item{},
		ShoppingList: []shopping.Item{},
		SavedRecipes: []recipe.SavedRecipe{},
		Ratings:      []rating.Rating{},
		Household:    household.New(""),
		Theme:        session.ThemeLight,
	}
}

// Clone returns a deep copy that shares nothing mutable with s.
func (s State) Clone() State {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	out.Inventory = cloneSlice(s.Inventory)
	out.ShoppingList = cloneSlice(s.ShoppingList)
	out.SavedRecipes = cloneSlice(s.SavedRecipes)
	out.Ratings = cloneSlice(s.Ratings)
	out.MealPlan = s.MealPlan.Clone()
	out.Household.Members = cloneSlice(s.Household.Members)
	out.LastSearch.Recipes = cloneSlice(s.LastSearch.Recipes)
	out.LastSearch.Citations = cloneSlice(s.LastSearch.Citations)
	return out
}

// documents maps persisted keys to the state fields they hold.
func (s State) documents(keys ...string) map[string]any {
	all := map[string]any{
		storage.KeyUser:         s.User,
		storage.KeyInventory:    s.Inventory,
		storage.KeyShoppingList: s.ShoppingList,
		storage.KeySavedRecipes: s.SavedRecipes,
		storage.KeyRatings:      s.Ratings,
		storage.KeyMealPlan:     s.MealPlan,
		storage.KeyHousehold:    s.Household,
		storage.KeyTheme:        s.Theme,
	}
	docs := make(map[string]any, len(keys))
	for _, k := range keys {
		docs[k] = all[k]
	}
	return docs
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
