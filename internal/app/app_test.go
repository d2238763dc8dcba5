package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smart-pantry/internal/clipper"
	"smart-pantry/internal/database"
	"smart-pantry/internal/household"
	"smart-pantry/internal/pantry"
	"smart-pantry/internal/planner"
	"smart-pantry/internal/recipe"
	"smart-pantry/internal/search"
	"smart-pantry/internal/session"
	"smart-pantry/internal/shared"
	"smart-pantry/internal/shopping"
	"smart-pantry/internal/storage"
)

var today = time.Date(2025, 2, 26, 9, 0, 0, 0, time.UTC)

type fakeScanner struct {
	items   []pantry.Item
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeScanner) Scan(ctx context.Context, _ []byte, _ string) (search.ScanResult, error) {
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	return search.ScanResult{Items: f.items, Meta: shared.AgentMeta{AgentName: search.AgentPantryScanner}}, f.err
}

type fakeSearcher struct {
	got    search.Request
	result recipe.SearchResult
	err    error
}

func (f *fakeSearcher) Search(_ context.Context, req search.Request) (search.Result, error) {
	f.got = req
	return search.Result{SearchResult: f.result}, f.err
}

type fakeImporter struct {
	recipe recipe.StructuredRecipe
	err    error
}

func (f *fakeImporter) ClipURL(_ context.Context, _ string) (clipper.ClipResult, error) {
	return clipper.ClipResult{Recipe: f.recipe}, f.err
}

type countingRecorder struct{ calls int }

func (r *countingRecorder) Record(_ context.Context, _ shared.AgentMeta, _ error) { r.calls++ }

func fileStore(t *testing.T, dir string) *storage.DocumentStore {
	t.Helper()
	b, err := storage.NewFileBackend(dir, "local")
	require.NoError(t, err)
	return storage.NewDocumentStore(b, zap.NewNop())
}

func openApp(t *testing.T, store *storage.DocumentStore, deps Deps) *App {
	t.Helper()
	deps.Clock = func() time.Time { return today }
	return Open(context.Background(), store, deps)
}

func pasta() recipe.StructuredRecipe {
	return recipe.StructuredRecipe{
		Title:        "Pasta",
		Ingredients:  []string{"pasta", "tomato", "basil"},
		Instructions: []string{"boil", "mix"},
		CookTime:     "20m",
	}
}

func login(t *testing.T, a *App, email string) {
	t.Helper()
	u, err := session.NewEmailUser(email)
	require.NoError(t, err)
	require.NoError(t, a.Login(context.Background(), u))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("InitialisesWeek", func(t *testing.T) {
		store := fileStore(t, t.TempDir())
		a := openApp(t, store, Deps{})

		s := a.Snapshot()
		require.Len(t, s.MealPlan, planner.DaysInPlan)
		assert.Equal(t, "2025-02-26", s.MealPlan[0].Date)
		assert.True(t, store.Exists(ctx, storage.KeyMealPlan))
		assert.Nil(t, s.User)
		assert.Equal(t, session.ThemeLight, s.Theme)
	})

	t.Run("KeepsEmptyStoredDays", func(t *testing.T) {
		store := fileStore(t, t.TempDir())
		stored := planner.NewWeek(today.AddDate(0, 0, -3))
		require.NoError(t, store.Save(ctx, storage.KeyMealPlan, stored))

		a := openApp(t, store, Deps{})
		assert.Equal(t, stored[0].Date, a.Snapshot().MealPlan[0].Date)
	})

	t.Run("CorruptDocumentFallsBack", func(t *testing.T) {
		dir := t.TempDir()
		store := fileStore(t, dir)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "local", "inventory.json"), []byte("{not json"), 0o644))

		a := openApp(t, store, Deps{})
		assert.Empty(t, a.Snapshot().Inventory)
		assert.NotNil(t, a.Snapshot().Inventory)
	})

	t.Run("ReloadsPersistedState", func(t *testing.T) {
		dir := t.TempDir()
		a := openApp(t, fileStore(t, dir), Deps{})
		_, err := a.AddPantryItem(ctx, "Eggs", "", "6")
		require.NoError(t, err)
		a.ToggleTheme(ctx)

		b := openApp(t, fileStore(t, dir), Deps{})
		s := b.Snapshot()
		require.Len(t, s.Inventory, 1)
		assert.Equal(t, "Eggs", s.Inventory[0].Name)
		assert.Equal(t, pantry.CategoryManual, s.Inventory[0].Category)
		assert.Equal(t, session.ThemeDark, s.Theme)
	})
}

func TestSQLStore(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "app.db"), zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	store := storage.NewDocumentStore(storage.NewSQLBackend(db.SQL, "local"), zap.NewNop())
	a := openApp(t, store, Deps{})
	_, err = a.AddShoppingItem(ctx, "Milk")
	require.NoError(t, err)

	b := openApp(t, store, Deps{})
	require.Len(t, b.Snapshot().ShoppingList, 1)
	assert.Equal(t, "Milk", b.Snapshot().ShoppingList[0].Name)
}

func TestInventory(t *testing.T) {
	ctx := context.Background()
	a := openApp(t, fileStore(t, t.TempDir()), Deps{})

	_, err := a.AddPantryItem(ctx, "  ", "", "")
	assert.ErrorIs(t, err, pantry.ErrEmptyName)

	_, err = a.AddPantryItem(ctx, "Rice", "Grains", "1kg")
	require.NoError(t, err)
	_, err = a.AddPantryItem(ctx, "Rice", "Grains", "1kg")
	require.NoError(t, err)
	assert.Len(t, a.Snapshot().Inventory, 2)

	_, err = a.BuyMore(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "Grains", a.Snapshot().ShoppingList[0].Category)

	removed, err := a.RemovePantryItem(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Rice", removed.Name)
	assert.Len(t, a.Snapshot().Inventory, 1)

	_, err = a.RemovePantryItem(ctx, 5)
	assert.ErrorIs(t, err, pantry.ErrItemNotFound)
}

func TestScanPantry(t *testing.T) {
	ctx := context.Background()

	t.Run("Unavailable", func(t *testing.T) {
		a := openApp(t, fileStore(t, t.TempDir()), Deps{})
		_, err := a.ScanPantry(ctx, []byte("x"), "image/png")
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("AppendsItems", func(t *testing.T) {
		rec := &countingRecorder{}
		scanner := &fakeScanner{items: []pantry.Item{{Name: "Milk", Category: "Dairy"}}}
		a := openApp(t, fileStore(t, t.TempDir()), Deps{Scanner: scanner, Recorder: rec})

		items, err := a.ScanPantry(ctx, []byte("x"), "image/png")
		require.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Len(t, a.Snapshot().Inventory, 1)
		assert.Equal(t, 1, rec.calls)

		st, err := a.Status(OpScan)
		assert.Equal(t, StatusSuccess, st)
		assert.NoError(t, err)
	})

	t.Run("FailureLeavesInventory", func(t *testing.T) {
		scanner := &fakeScanner{err: errors.New("boom")}
		a := openApp(t, fileStore(t, t.TempDir()), Deps{Scanner: scanner})

		_, err := a.ScanPantry(ctx, []byte("x"), "image/png")
		require.Error(t, err)
		assert.Empty(t, a.Snapshot().Inventory)

		st, lastErr := a.Status(OpScan)
		assert.Equal(t, StatusError, st)
		assert.Error(t, lastErr)
	})

	t.Run("Busy", func(t *testing.T) {
		scanner := &fakeScanner{started: make(chan struct{}), release: make(chan struct{})}
		a := openApp(t, fileStore(t, t.TempDir()), Deps{Scanner: scanner})

		done := make(chan error, 1)
		go func() {
			_, err := a.ScanPantry(ctx, []byte("x"), "image/png")
			done <- err
		}()
		<-scanner.started

		st, _ := a.Status(OpScan)
		assert.Equal(t, StatusLoading, st)
		_, err := a.ScanPantry(ctx, []byte("x"), "image/png")
		assert.ErrorIs(t, err, ErrBusy)

		close(scanner.release)
		require.NoError(t, <-done)
		st, _ = a.Status(OpScan)
		assert.Equal(t, StatusSuccess, st)
	})
}

func TestShopping(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	a := openApp(t, fileStore(t, dir), Deps{})

	milk, err := a.AddShoppingItem(ctx, "Milk")
	require.NoError(t, err)
	bread, err := a.AddShoppingItem(ctx, "Bread")
	require.NoError(t, err)

	require.NoError(t, a.ToggleShoppingItem(ctx, milk.ID))
	assert.Equal(t, 1, a.CheckedCount())
	assert.ErrorIs(t, a.ToggleShoppingItem(ctx, "nope"), shopping.ErrItemNotFound)

	n, err := a.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s := a.Snapshot()
	require.Len(t, s.ShoppingList, 1)
	assert.Equal(t, bread.ID, s.ShoppingList[0].ID)
	require.Len(t, s.Inventory, 1)
	assert.Equal(t, "Milk", s.Inventory[0].Name)
	assert.Equal(t, shopping.CheckoutQuantity, s.Inventory[0].QuantityEstimate)

	// Both documents were written by the same checkout.
	reloaded := openApp(t, fileStore(t, dir), Deps{}).Snapshot()
	assert.Len(t, reloaded.ShoppingList, 1)
	assert.Len(t, reloaded.Inventory, 1)

	_, err = a.Checkout(ctx)
	assert.ErrorIs(t, err, shopping.ErrNothingChecked)

	require.NoError(t, a.RemoveShoppingItem(ctx, bread.ID))
	assert.Empty(t, a.Snapshot().ShoppingList)
}

func TestMissingToShopping(t *testing.T) {
	ctx := context.Background()
	a := openApp(t, fileStore(t, t.TempDir()), Deps{})

	_, err := a.AddPantryItem(ctx, "Pasta", "", "")
	require.NoError(t, err)
	_, err = a.ScheduleRecipe(ctx, pasta())
	require.NoError(t, err)

	assert.Equal(t, []string{"tomato", "basil"}, a.MissingIngredients())

	n, err := a.AddPlanMissingToShopping(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, CategoryMealPlan, a.Snapshot().ShoppingList[0].Category)

	n, err = a.AddRecipeMissingToShopping(ctx, pasta())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, a.Snapshot().ShoppingList, 2)
}

func TestRecipes(t *testing.T) {
	ctx := context.Background()

	t.Run("DuplicateSaveIsNoOp", func(t *testing.T) {
		a := openApp(t, fileStore(t, t.TempDir()), Deps{})
		saved, err := a.SaveRecipe(ctx, pasta())
		require.NoError(t, err)
		assert.Equal(t, today, saved.DateSaved)

		dup := pasta()
		dup.Title = "  PASTA "
		_, err = a.SaveRecipe(ctx, dup)
		assert.ErrorIs(t, err, recipe.ErrAlreadySaved)
		assert.Len(t, a.Snapshot().SavedRecipes, 1)

		require.NoError(t, a.UnsaveRecipe(ctx, saved.ID))
		assert.Empty(t, a.Snapshot().SavedRecipes)
	})

	t.Run("GenerativeSearchUsesInventory", func(t *testing.T) {
		searcher := &fakeSearcher{result: recipe.SearchResult{Recipes: []recipe.StructuredRecipe{pasta()}}}
		a := openApp(t, fileStore(t, t.TempDir()), Deps{Searcher: searcher})
		_, err := a.AddPantryItem(ctx, "Eggs", "", "")
		require.NoError(t, err)

		res, err := a.SearchRecipes(ctx, search.Request{StrictMode: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"Eggs"}, searcher.got.Pantry)
		assert.Len(t, res.Recipes, 1)
		assert.Equal(t, "Pasta", a.Snapshot().LastSearch.Recipes[0].Title)
	})

	t.Run("SearchFailure", func(t *testing.T) {
		searcher := &fakeSearcher{err: search.ErrNothingToSearch}
		a := openApp(t, fileStore(t, t.TempDir()), Deps{Searcher: searcher})

		_, err := a.SearchRecipes(ctx, search.Request{})
		assert.ErrorIs(t, err, search.ErrNothingToSearch)
		st, lastErr := a.Status(OpSearch)
		assert.Equal(t, StatusError, st)
		assert.ErrorIs(t, lastErr, search.ErrNothingToSearch)
	})

	t.Run("Import", func(t *testing.T) {
		a := openApp(t, fileStore(t, t.TempDir()), Deps{Importer: &fakeImporter{recipe: pasta()}})

		saved, err := a.ImportRecipe(ctx, "https://example.com/pasta")
		require.NoError(t, err)
		assert.Equal(t, "Pasta", saved.Title)
		st, _ := a.Status(OpImport)
		assert.Equal(t, StatusSuccess, st)

		_, err = a.ImportRecipe(ctx, "https://example.com/pasta")
		assert.ErrorIs(t, err, recipe.ErrAlreadySaved)
		st, _ = a.Status(OpImport)
		assert.Equal(t, StatusError, st)
	})

	t.Run("ImportFailure", func(t *testing.T) {
		a := openApp(t, fileStore(t, t.TempDir()), Deps{Importer: &fakeImporter{err: clipper.ErrNoRecipe}})
		_, err := a.ImportRecipe(ctx, "https://example.com")
		assert.ErrorIs(t, err, clipper.ErrNoRecipe)
		assert.Empty(t, a.Snapshot().SavedRecipes)
	})
}

func TestPlan(t *testing.T) {
	ctx := context.Background()
	a := openApp(t, fileStore(t, t.TempDir()), Deps{})

	_, err := a.ScheduleRecipe(ctx, pasta())
	require.NoError(t, err)
	require.NoError(t, a.MoveMeal(ctx, 0, 0, 3))

	s := a.Snapshot()
	assert.Empty(t, s.MealPlan[0].Meals)
	require.Len(t, s.MealPlan[3].Meals, 1)
	assert.Equal(t, 1, s.MealPlan.MealCount())

	assert.ErrorIs(t, a.MoveMeal(ctx, 0, 0, 1), planner.ErrInvalidIndex)
	assert.Equal(t, 1, a.Snapshot().MealPlan.MealCount())

	item, err := a.ScheduleByTitle(ctx, "Grandma's Stew")
	require.NoError(t, err)
	assert.Equal(t, "Community favorite", item.Recipe.Description)
	assert.Equal(t, "30-45m", item.Recipe.CookTime)

	_, err = a.SaveRecipe(ctx, pasta())
	require.NoError(t, err)
	item, err = a.ScheduleByTitle(ctx, "pasta")
	require.NoError(t, err)
	assert.Equal(t, pasta().Ingredients, item.Recipe.Ingredients)

	require.NoError(t, a.RemoveMeal(ctx, 3, 0))
	assert.Equal(t, 2, a.Snapshot().MealPlan.MealCount())
}

func TestCommunity(t *testing.T) {
	ctx := context.Background()
	a := openApp(t, fileStore(t, t.TempDir()), Deps{})

	_, err := a.RateRecipe(ctx, "Pasta", 5, "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	login(t, a, "ana@example.com")
	_, err = a.RateRecipe(ctx, "Pasta", 5, "great")
	require.NoError(t, err)
	_, err = a.RateRecipe(ctx, "pasta", 3, "ok")
	require.NoError(t, err)
	_, err = a.RateRecipe(ctx, "Pasta", 9, "")
	assert.Error(t, err)

	stats, ok := a.RecipeStats("PASTA")
	require.True(t, ok)
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, "4.0", stats.AverageText())
	assert.Equal(t, "ok", stats.LatestComment)
	assert.Len(t, a.Community(), 1)
	assert.Equal(t, "ana", a.Snapshot().Ratings[0].UserName)
}

func TestHousehold(t *testing.T) {
	ctx := context.Background()
	signer := household.NewInviteSigner("secret", time.Hour)
	a := openApp(t, fileStore(t, t.TempDir()), Deps{Invites: signer, Namespace: "local"})

	_, _, err := a.InviteMember(ctx, "bo@example.com")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	login(t, a, "ana@example.com")
	s := a.Snapshot()
	require.Len(t, s.Household.Members, 1)
	assert.Equal(t, household.RoleAdmin, s.Household.Members[0].Role)

	m, token, err := a.InviteMember(ctx, "bo@example.com")
	require.NoError(t, err)
	assert.Equal(t, household.StatusInvited, m.Status)
	require.NotEmpty(t, token)

	_, _, err = a.InviteMember(ctx, "BO@example.com")
	assert.ErrorIs(t, err, household.ErrAlreadyMember)

	claims, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "local", claims.Namespace)
	require.NoError(t, a.AcceptInvite(ctx, claims))
	assert.Equal(t, household.StatusActive, a.Snapshot().Household.Members[1].Status)

	claims.HouseholdID = "other"
	assert.ErrorIs(t, a.AcceptInvite(ctx, claims), household.ErrInviteMismatch)

	self := a.Snapshot().Household.Members[0]
	assert.ErrorIs(t, a.RemoveMember(ctx, self.ID), household.ErrCannotRemoveSelf)
	require.NoError(t, a.RemoveMember(ctx, m.ID))
	assert.Len(t, a.Snapshot().Household.Members, 1)
}

func TestSession(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := fileStore(t, dir)
	a := openApp(t, store, Deps{})

	assert.ErrorIs(t, a.CompleteTutorial(ctx), ErrNotAuthenticated)

	login(t, a, "ana@example.com")
	require.True(t, a.Authenticated())
	hh := a.Snapshot().Household.ID

	// Logging in again with the same address does not add a member.
	login(t, a, "ANA@example.com")
	assert.Len(t, a.Snapshot().Household.Members, 1)
	assert.Equal(t, hh, a.Snapshot().Household.ID)

	require.NoError(t, a.CompleteTutorial(ctx))
	assert.True(t, a.Snapshot().User.HasSeenTutorial)

	_, err := a.AddPantryItem(ctx, "Eggs", "", "")
	require.NoError(t, err)
	a.ToggleTheme(ctx)

	require.NoError(t, a.Logout(ctx))
	s := a.Snapshot()
	assert.Nil(t, s.User)
	assert.Empty(t, s.Inventory)
	assert.Equal(t, session.ThemeLight, s.Theme)
	assert.Len(t, s.MealPlan, planner.DaysInPlan)

	assert.False(t, store.Exists(ctx, storage.KeyUser))
	assert.False(t, store.Exists(ctx, storage.KeyInventory))
	assert.True(t, store.Exists(ctx, storage.KeyMealPlan))

	reloaded := openApp(t, fileStore(t, dir), Deps{}).Snapshot()
	assert.Nil(t, reloaded.User)
	assert.Empty(t, reloaded.Inventory)
}

func TestLogoutDuringScan(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := fileStore(t, dir)
	scanner := &fakeScanner{
		items:   []pantry.Item{{Name: "Old session caviar"}},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	a := openApp(t, store, Deps{Scanner: scanner})
	login(t, a, "ana@example.com")

	done := make(chan error, 1)
	go func() {
		_, err := a.ScanPantry(ctx, []byte("x"), "image/png")
		done <- err
	}()
	<-scanner.started

	assert.ErrorIs(t, a.Logout(ctx), ErrBusy)
	assert.True(t, a.Authenticated())

	close(scanner.release)
	require.NoError(t, <-done)
	require.Len(t, a.Snapshot().Inventory, 1)

	require.NoError(t, a.Logout(ctx))
	assert.Nil(t, a.Snapshot().User)
	assert.Empty(t, a.Snapshot().Inventory)
	assert.False(t, store.Exists(ctx, storage.KeyInventory))

	reloaded := openApp(t, fileStore(t, dir), Deps{}).Snapshot()
	assert.Empty(t, reloaded.Inventory)
}

func TestLoginKeepsTutorialFlag(t *testing.T) {
	ctx := context.Background()
	a := openApp(t, fileStore(t, t.TempDir()), Deps{})

	login(t, a, "ana@example.com")
	require.NoError(t, a.CompleteTutorial(ctx))
	login(t, a, "ana@example.com")
	assert.True(t, a.Snapshot().User.HasSeenTutorial)

	login(t, a, "bo@example.com")
	assert.False(t, a.Snapshot().User.HasSeenTutorial)
}
