package app

import (
	"context"
	"strings"

	"smart-pantry/internal/pantry"
	"smart-pantry/internal/recipe"
	"smart-pantry/internal/shopping"
	"smart-pantry/internal/storage"
)

// Categories given to generated shopping entries.
const (
	CategoryMealPlan = "Meal Plan"
	CategoryRecipe   = "Recipe"
)

// AddShoppingItem adds a manual entry.
func (a *App) AddShoppingItem(ctx context.Context, name string) (shopping.Item, error) {
	item, err := shopping.NewItem(name, shopping.CategoryManual)
	if err != nil {
		return shopping.Item{}, err
	}
	err = a.update(ctx, func(s *State) error {
		s.ShoppingList = append(s.ShoppingList, item)
		return nil
	}, storage.KeyShoppingList)
	return item, err
}

// ToggleShoppingItem flips the checked flag of an item.
func (a *App) ToggleShoppingItem(ctx context.Context, id string) error {
	return a.update(ctx, func(s *State) error {
		next, err := shopping.Toggle(s.ShoppingList, id)
		s.ShoppingList = next
		return err
	}, storage.KeyShoppingList)
}

// SetShoppingChecked sets the checked flag of an item.
func (a *App) SetShoppingChecked(ctx context.Context, id string, checked bool) error {
	return a.update(ctx, func(s *State) error {
		next, err := shopping.SetChecked(s.ShoppingList, id, checked)
		s.ShoppingList = next
		return err
	}, storage.KeyShoppingList)
}

// RemoveShoppingItem deletes an item from the list.
func (a *App) RemoveShoppingItem(ctx context.Context, id string) error {
	return a.update(ctx, func(s *State) error {
		next, err := shopping.Remove(s.ShoppingList, id)
		s.ShoppingList = next
		return err
	}, storage.KeyShoppingList)
}

// Checkout moves all checked items into the pantry. Both documents are
// written in one batch.
func (a *App) Checkout(ctx context.Context) (int, error) {
	var moved int
	err := a.update(ctx, func(s *State) error {
		list, inventory, n, err := shopping.Checkout(s.ShoppingList, s.Inventory)
		if err != nil {
			return err
		}
		s.ShoppingList, s.Inventory, moved = list, inventory, n
		return nil
	}, storage.KeyShoppingList, storage.KeyInventory)
	return moved, err
}

// AddToShoppingList adds names that are not already on the list and
// returns how many were added.
func (a *App) AddToShoppingList(ctx context.Context, names []string, category string) (int, error) {
	var added int
	err := a.update(ctx, func(s *State) error {
		added = appendMissing(s, names, category)
		return nil
	}, storage.KeyShoppingList)
	return added, err
}

// AddPlanMissingToShopping derives the plan's missing ingredients and puts
// them on the list in the same transition.
func (a *App) AddPlanMissingToShopping(ctx context.Context) (int, error) {
	var added int
	err := a.update(ctx, func(s *State) error {
		added = appendMissing(s, s.MealPlan.Missing(s.Inventory), CategoryMealPlan)
		return nil
	}, storage.KeyShoppingList)
	return added, err
}

// AddRecipeMissingToShopping puts the ingredients of r the pantry lacks on the list.
func (a *App) AddRecipeMissingToShopping(ctx context.Context, r recipe.StructuredRecipe) (int, error) {
	var added int
	err := a.update(ctx, func(s *State) error {
		added = appendMissing(s, pantry.MissingIngredients(r.Ingredients, s.Inventory), CategoryRecipe)
		return nil
	}, storage.KeyShoppingList)
	return added, err
}

func appendMissing(s *State, names []string, category string) int {
	onList := make(map[string]bool, len(s.ShoppingList))
	for _, item := range s.ShoppingList {
		onList[strings.ToLower(item.Name)] = true
	}

	added := 0
	for _, item := range shopping.FromMissing(names, category) {
		key := strings.ToLower(item.Name)
		if onList[key] {
			continue
		}
		onList[key] = true
		s.ShoppingList = append(s.ShoppingList, item)
		added++
	}
	return added
}
