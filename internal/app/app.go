package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"smart-pantry/internal/clipper"
	"smart-pantry/internal/household"
	"smart-pantry/internal/pantry"
	"smart-pantry/internal/planner"
	"smart-pantry/internal/rating"
	"smart-pantry/internal/recipe"
	"smart-pantry/internal/search"
	"smart-pantry/internal/session"
	"smart-pantry/internal/shared"
	"smart-pantry/internal/shopping"
	"smart-pantry/internal/storage"
)

var (
	ErrBusy             = errors.New("operation already in progress")
	ErrNotAuthenticated = errors.New("not signed in")
	ErrUnavailable      = errors.New("collaborator not configured")
)

// PantryScanner recognises pantry items in a photo.
type PantryScanner interface {
	Scan(ctx context.Context, image []byte, mimeType string) (search.ScanResult, error)
}

// RecipeSearcher answers recipe searches.
type RecipeSearcher interface {
	Search(ctx context.Context, req search.Request) (search.Result, error)
}

// RecipeImporter extracts a recipe from a web page.
type RecipeImporter interface {
	ClipURL(ctx context.Context, url string) (clipper.ClipResult, error)
}

// MetricsRecorder receives one call per collaborator request.
type MetricsRecorder interface {
	Record(ctx context.Context, meta shared.AgentMeta, err error)
}

// Deps are the collaborators an App can use. Any of them may be nil; the
// operations that need a missing one return ErrUnavailable.
type Deps struct {
	Scanner  PantryScanner
	Searcher RecipeSearcher
	Importer RecipeImporter
	Recorder MetricsRecorder
	Invites  *household.InviteSigner
	// Namespace is embedded in invite tokens so they can be redeemed.
	Namespace string
	Clock     func() time.Time
	Log       *zap.Logger
}

// App is the application controller. It owns the State, exposes every
// mutation as an action and persists the documents each action touches.
type App struct {
	deps  Deps
	store *storage.DocumentStore
	log   *zap.Logger

	mu      sync.Mutex
	state   State
	ops     map[Op]Status
	lastErr map[Op]error
}

// Open loads every document, falling back to defaults, and initialises the
// meal plan when none has been stored.
func Open(ctx context.Context, store *storage.DocumentStore, deps Deps) *App {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	a := &App{
		deps:    deps,
		store:   store,
		log:     deps.Log,
		ops:     map[Op]Status{},
		lastErr: map[Op]error{},
	}
	a.state = a.load(ctx)
	a.initPlan(ctx)
	return a
}

func (a *App) load(ctx context.Context) State {
	d := defaultState()
	return State{
		User:         storage.Load(ctx, a.store, storage.KeyUser, d.User),
		Inventory:    storage.Load(ctx, a.store, storage.KeyInventory, d.Inventory),
		ShoppingList: storage.Load(ctx, a.store, storage.KeyShoppingList, d.ShoppingList),
		SavedRecipes: storage.Load(ctx, a.store, storage.KeySavedRecipes, d.SavedRecipes),
		Ratings:      storage.Load(ctx, a.store, storage.KeyRatings, d.Ratings),
		MealPlan:     storage.Load(ctx, a.store, storage.KeyMealPlan, planner.Plan(nil)),
		Household:    storage.Load(ctx, a.store, storage.KeyHousehold, d.Household),
		Theme:        storage.Load(ctx, a.store, storage.KeyTheme, d.Theme),
	}
}

// initPlan generates the week only when the stored plan has no days.
func (a *App) initPlan(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !planner.NeedsInit(a.state.MealPlan) {
		return
	}
	next := a.state.Clone()
	next.MealPlan = planner.NewWeek(a.deps.Clock())
	a.commit(ctx, next, storage.KeyMealPlan)
}

// commit installs next as the current state and persists the given keys.
// Persistence is fire-and-forget: failures are logged and the in-memory
// state stays authoritative. Callers hold a.mu.
func (a *App) commit(ctx context.Context, next State, keys ...string) {
	a.state = next
	if len(keys) == 0 {
		return
	}
	if err := a.store.SaveAll(ctx, next.documents(keys...)); err != nil {
		a.log.Error("failed to persist state", zap.Strings("keys", keys), zap.Error(err))
	}
}

// update runs fn on a snapshot and commits the result when fn succeeds.
func (a *App) update(ctx context.Context, fn func(s *State) error, keys ...string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	next := a.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	a.commit(ctx, next, keys...)
	return nil
}

// Snapshot returns a deep copy of the current state for presentation.
func (a *App) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Clone()
}

// Authenticated reports whether a user is signed in.
func (a *App) Authenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.User != nil
}

func (a *App) record(ctx context.Context, meta shared.AgentMeta, err error) {
	if a.deps.Recorder != nil {
		a.deps.Recorder.Record(ctx, meta, err)
	}
}

// MissingIngredients lists the plan ingredients the inventory does not cover.
func (a *App) MissingIngredients() []string {
	s := a.Snapshot()
	return s.MealPlan.Missing(s.Inventory)
}

// MissingForRecipe lists the ingredients of r the inventory does not cover.
func (a *App) MissingForRecipe(r recipe.StructuredRecipe) []string {
	s := a.Snapshot()
	return pantry.MissingIngredients(r.Ingredients, s.Inventory)
}

// Community returns the rating leaderboard.
func (a *App) Community() []rating.Stats {
	return rating.Leaderboard(a.Snapshot().Ratings)
}

// RecipeStats returns the aggregated rating of one title.
func (a *App) RecipeStats(title string) (rating.Stats, bool) {
	return rating.ForTitle(a.Snapshot().Ratings, title)
}

// Theme returns the current colour scheme.
func (a *App) Theme() session.Theme {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Theme
}

// CheckedCount is the number of ticked shopping items.
func (a *App) CheckedCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return shopping.CheckedCount(a.state.ShoppingList)
}
