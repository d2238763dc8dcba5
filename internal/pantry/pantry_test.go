package pantry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsOwned(t *testing.T) {
	tests := []struct {
		needed, pantry string
		want           bool
	}{
		{"2 cups diced Tomatoes", "tomato", true},
		{"egg", "Free range eggs", true},
		{"Flour", "FLOUR", true},
		{"milk", "oat drink", false},
		{"", "anything", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsOwned(tt.needed, tt.pantry), "IsOwned(%q, %q)", tt.needed, tt.pantry)
		assert.Equal(t, IsOwned(tt.needed, tt.pantry), IsOwned(tt.pantry, tt.needed), "IsOwned must be commutative")
	}
}

func TestMissingIngredients(t *testing.T) {
	owned := []Item{{Name: "Egg"}, {Name: "flour"}}

	t.Run("DistinctEvenWithRepeats", func(t *testing.T) {
		got := MissingIngredients([]string{"milk", "2 eggs", "milk", "sugar", "milk"}, owned)
		assert.Equal(t, []string{"milk", "sugar"}, got)
	})

	t.Run("EverythingOwned", func(t *testing.T) {
		got := MissingIngredients([]string{"plain flour", "egg"}, owned)
		assert.Empty(t, got)
		assert.NotNil(t, got)
	})

	t.Run("EmptyPantry", func(t *testing.T) {
		got := MissingIngredients([]string{"salt", "salt"}, nil)
		assert.Equal(t, []string{"salt"}, got)
	})
}

func TestRemove(t *testing.T) {
	items := []Item{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	got, err := Remove(items, 1)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, Names(got))
	assert.Len(t, items, 3, "input must not be modified")

	_, err = Remove(items, 3)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestNewItem(t *testing.T) {
	item, err := NewItem(" Rice ", "", "1 bag")
	assert.NoError(t, err)
	assert.Equal(t, Item{Name: "Rice", Category: CategoryManual, QuantityEstimate: "1 bag"}, item)

	_, err = NewItem(" ", "Grains", "")
	assert.ErrorIs(t, err, ErrEmptyName)
}
