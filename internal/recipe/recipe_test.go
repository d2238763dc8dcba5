package recipe

import (
	"errors"
	"testing"
	"time"
)

func TestSave(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	pancakes := StructuredRecipe{Title: "Pancakes", Ingredients: []string{"flour", "egg"}}

	t.Run("FirstSave", func(t *testing.T) {
		saved, s, err := Save(nil, pancakes, now)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(saved) != 1 {
			t.Fatalf("Expected 1 saved recipe, got %d", len(saved))
		}
		if s.ID == "" {
			t.Error("Expected saved recipe to get an id")
		}
		if !s.DateSaved.Equal(now) {
			t.Errorf("Expected DateSaved %v, got %v", now, s.DateSaved)
		}
		if s.ImagePlaceholder == "" {
			t.Error("Expected an image placeholder")
		}
	})

	t.Run("DuplicateTitleIsNoOp", func(t *testing.T) {
		saved, _, _ := Save(nil, pancakes, now)
		again, _, err := Save(saved, StructuredRecipe{Title: "  pancakes "}, now)
		if !errors.Is(err, ErrAlreadySaved) {
			t.Fatalf("Expected ErrAlreadySaved, got %v", err)
		}
		if len(again) != len(saved) {
			t.Errorf("Expected length %d after duplicate save, got %d", len(saved), len(again))
		}
	})
}

func TestUnsave(t *testing.T) {
	saved, s, _ := Save(nil, StructuredRecipe{Title: "Soup"}, time.Now())

	out, err := Unsave(saved, s.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(out) != 0 {
		t.Errorf("Expected empty collection, got %d", len(out))
	}

	if _, err := Unsave(saved, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestFindByTitle(t *testing.T) {
	saved, _, _ := Save(nil, StructuredRecipe{Title: "Green Curry"}, time.Now())

	if _, ok := FindByTitle(saved, "green curry "); !ok {
		t.Error("Expected lookup to ignore case and surrounding spaces")
	}
	if _, ok := FindByTitle(saved, "Red Curry"); ok {
		t.Error("Expected no match for a different title")
	}
}

func TestDedupe(t *testing.T) {
	in := []StructuredRecipe{
		{Title: "A"}, {Title: "a"}, {Title: ""}, {Title: "B"}, {Title: "C"}, {Title: "D"},
	}

	got := Dedupe(in, 3)
	if len(got) != 3 {
		t.Fatalf("Expected 3 recipes, got %d", len(got))
	}
	want := []string{"A", "B", "C"}
	for i, r := range got {
		if r.Title != want[i] {
			t.Errorf("Expected recipe %d to be %q, got %q", i, want[i], r.Title)
		}
	}
}

func TestPlaceholderEscapesTitle(t *testing.T) {
	got := placeholderFor(" Mac/Cheese? #1 ")
	want := "https://picsum.photos/seed/mac%2Fcheese%3F-%231/400/300"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
