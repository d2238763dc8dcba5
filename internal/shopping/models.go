package shopping

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"smart-pantry/internal/pantry"
)

// CategoryManual is assigned to items typed in by the user.
const CategoryManual = pantry.CategoryManual

// CheckoutQuantity is the quantity estimate given to bought items.
const CheckoutQuantity = "1 unit"

var (
	ErrEmptyName      = errors.New("item name is empty")
	ErrNothingChecked = errors.New("no checked items to check out")
	ErrItemNotFound   = errors.New("shopping item not found")
)

// Item is a single entry on the shopping list.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Checked  bool   `json:"checked"`
}

// NewItem creates an unchecked item with a fresh id.
func NewItem(name, category string) (Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Item{}, ErrEmptyName
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = CategoryManual
	}
	return Item{
		ID:       uuid.NewString(),
		Name:     name,
		Category: category,
	}, nil
}

// FromPantry builds a "buy more" entry for an item already on hand.
func FromPantry(item pantry.Item) Item {
	return Item{
		ID:       uuid.NewString(),
		Name:     item.Name,
		Category: item.Category,
	}
}

// FromMissing builds unchecked entries for derived missing ingredients.
func FromMissing(names []string, category string) []Item {
	items := make([]Item, 0, len(names))
	for _, name := range names {
		item, err := NewItem(name, category)
		if err != nil {
			continue
		}
		items = append(items, item)
	}
	return items
}
