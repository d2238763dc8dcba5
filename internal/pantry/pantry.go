// Package pantry holds the inventory model and the ownership heuristic used to
// decide which recipe ingredients still need buying.
package pantry

import (
	"errors"
	"strings"
)

// CategoryManual is assigned to items typed in by the user.
const CategoryManual = "Manual"

var (
	ErrEmptyName    = errors.New("item name is empty")
	ErrItemNotFound = errors.New("pantry item not found")
)

// Item is a good physically on hand. The JSON names match the image-analysis
// response so scan results decode directly.
type Item struct {
	Name             string `json:"item"`
	Category         string `json:"category"`
	QuantityEstimate string `json:"quantity_estimate"`
}

// NewItem builds a manually entered item.
func NewItem(name, category, quantity string) (Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Item{}, ErrEmptyName
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = CategoryManual
	}
	return Item{Name: name, Category: category, QuantityEstimate: strings.TrimSpace(quantity)}, nil
}

// IsOwned reports whether either string is a case-insensitive substring of the other.
func IsOwned(needed, pantryName string) bool {
	n := strings.ToLower(needed)
	p := strings.ToLower(pantryName)
	return strings.Contains(n, p) || strings.Contains(p, n)
}

// MissingIngredients returns the distinct needed ingredients that no pantry
// item covers, in first-seen order.
func MissingIngredients(needed []string, owned []Item) []string {
	seen := make(map[string]bool, len(needed))
	missing := []string{}
	for _, n := range needed {
		if seen[n] {
			continue
		}
		seen[n] = true
		if !covered(n, owned) {
			missing = append(missing, n)
		}
	}
	return missing
}

func covered(needed string, owned []Item) bool {
	for _, item := range owned {
		if IsOwned(needed, item.Name) {
			return true
		}
	}
	return false
}

// Names returns the item names in inventory order.
func Names(items []Item) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names
}

// Remove drops the item at index i.
func Remove(items []Item, i int) ([]Item, error) {
	if i < 0 || i >= len(items) {
		return items, ErrItemNotFound
	}
	out := make([]Item, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...), nil
}
