package app

import (
	"context"
	"fmt"

	"smart-pantry/internal/pantry"
	"smart-pantry/internal/shopping"
	"smart-pantry/internal/storage"
)

// AddPantryItem appends a manually entered item. Duplicate names are allowed.
func (a *App) AddPantryItem(ctx context.Context, name, category, quantity string) (pantry.Item, error) {
	item, err := pantry.NewItem(name, category, quantity)
	if err != nil {
		return pantry.Item{}, err
	}
	err = a.update(ctx, func(s *State) error {
		s.Inventory = append(s.Inventory, item)
		return nil
	}, storage.KeyInventory)
	return item, err
}

// RemovePantryItem deletes the item at index.
func (a *App) RemovePantryItem(ctx context.Context, index int) (pantry.Item, error) {
	var removed pantry.Item
	err := a.update(ctx, func(s *State) error {
		next, err := pantry.Remove(s.Inventory, index)
		if err != nil {
			return err
		}
		removed = s.Inventory[index]
		s.Inventory = next
		return nil
	}, storage.KeyInventory)
	return removed, err
}

// ScanPantry analyses a photo and appends every recognised item to the
// inventory. Zero items is a successful, empty result.
func (a *App) ScanPantry(ctx context.Context, image []byte, mimeType string) ([]pantry.Item, error) {
	if a.deps.Scanner == nil {
		return nil, ErrUnavailable
	}
	if err := a.begin(OpScan); err != nil {
		return nil, err
	}

	res, err := a.deps.Scanner.Scan(ctx, image, mimeType)
	a.record(ctx, res.Meta, err)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		err = fmt.Errorf("pantry scan failed: %w", err)
		a.fail(OpScan, err)
		return nil, err
	}
	if len(res.Items) > 0 {
		next := a.state.Clone()
		next.Inventory = append(next.Inventory, res.Items...)
		a.commit(ctx, next, storage.KeyInventory)
	}
	a.ops[OpScan] = StatusSuccess
	return res.Items, nil
}

// BuyMore puts a copy of the pantry item at index on the shopping list.
func (a *App) BuyMore(ctx context.Context, index int) (shopping.Item, error) {
	var added shopping.Item
	err := a.update(ctx, func(s *State) error {
		if index < 0 || index >= len(s.Inventory) {
			return pantry.ErrItemNotFound
		}
		added = shopping.FromPantry(s.Inventory[index])
		s.ShoppingList = append(s.ShoppingList, added)
		return nil
	}, storage.KeyShoppingList)
	return added, err
}
