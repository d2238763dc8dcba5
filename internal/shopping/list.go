package shopping

import "smart-pantry/internal/pantry"

// Toggle flips the checked flag of the item with the given id.
func Toggle(list []Item, id string) ([]Item, error) {
	i := indexOf(list, id)
	if i < 0 {
		return list, ErrItemNotFound
	}
	out := clone(list)
	out[i].Checked = !out[i].Checked
	return out, nil
}

// SetChecked sets the checked flag explicitly.
func SetChecked(list []Item, id string, checked bool) ([]Item, error) {
	i := indexOf(list, id)
	if i < 0 {
		return list, ErrItemNotFound
	}
	out := clone(list)
	out[i].Checked = checked
	return out, nil
}

// Remove deletes the item with the given id.
func Remove(list []Item, id string) ([]Item, error) {
	i := indexOf(list, id)
	if i < 0 {
		return list, ErrItemNotFound
	}
	out := make([]Item, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...), nil
}

// Checkout moves every checked item into the inventory and drops it from the
// list as one transition. Unchecked items keep their order. The inputs are
// never modified.
func Checkout(list []Item, inventory []pantry.Item) ([]Item, []pantry.Item, int, error) {
	remaining := make([]Item, 0, len(list))
	bought := make([]pantry.Item, 0)
	for _, item := range list {
		if !item.Checked {
			remaining = append(remaining, item)
			continue
		}
		bought = append(bought, pantry.Item{
			Name:             item.Name,
			Category:         item.Category,
			QuantityEstimate: CheckoutQuantity,
		})
	}
	if len(bought) == 0 {
		return list, inventory, 0, ErrNothingChecked
	}

	newInventory := make([]pantry.Item, 0, len(inventory)+len(bought))
	newInventory = append(newInventory, inventory...)
	newInventory = append(newInventory, bought...)
	return remaining, newInventory, len(bought), nil
}

// CheckedCount returns how many items are ticked.
func CheckedCount(list []Item) int {
	n := 0
	for _, item := range list {
		if item.Checked {
			n++
		}
	}
	return n
}

func indexOf(list []Item, id string) int {
	for i, item := range list {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func clone(list []Item) []Item {
	out := make([]Item, len(list))
	copy(out, list)
	return out
}
