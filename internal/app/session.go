package app

import (
	"context"
	"fmt"
	"strings"

	"smart-pantry/internal/household"
	"smart-pantry/internal/planner"
	"smart-pantry/internal/session"
	"smart-pantry/internal/storage"
)

// Login stores the user and makes sure they are an active household member.
// Signing in again with the same address keeps the tutorial flag.
func (a *App) Login(ctx context.Context, u *session.User) error {
	if u == nil {
		return ErrNotAuthenticated
	}
	return a.update(ctx, func(s *State) error {
		user := *u
		if s.User != nil && strings.EqualFold(s.User.Email, user.Email) {
			user.HasSeenTutorial = user.HasSeenTutorial || s.User.HasSeenTutorial
		}
		s.User = &user
		if s.Household.ID == "" {
			s.Household = household.New("")
		}
		s.Household, _ = s.Household.UpsertLogin(user.Name, user.Email)
		return nil
	}, storage.KeyUser, storage.KeyHousehold)
}

// Logout deletes every persisted document and starts over as on a fresh
// install. On failure nothing is reset. It returns ErrBusy while a scan,
// search or import is running, since their results belong to the session
// being closed.
func (a *App) Logout(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.loading() {
		return ErrBusy
	}
	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	next := defaultState()
	next.MealPlan = planner.NewWeek(a.deps.Clock())
	a.commit(ctx, next, storage.KeyMealPlan)
	a.ops = map[Op]Status{}
	a.lastErr = map[Op]error{}
	return nil
}

// ToggleTheme switches between light and dark and returns the new theme.
func (a *App) ToggleTheme(ctx context.Context) session.Theme {
	var theme session.Theme
	_ = a.update(ctx, func(s *State) error {
		s.Theme = s.Theme.Toggle()
		theme = s.Theme
		return nil
	}, storage.KeyTheme)
	return theme
}

// CompleteTutorial records that the signed-in user has seen the tutorial.
func (a *App) CompleteTutorial(ctx context.Context) error {
	return a.update(ctx, func(s *State) error {
		if s.User == nil {
			return ErrNotAuthenticated
		}
		s.User.HasSeenTutorial = true
		return nil
	}, storage.KeyUser)
}
