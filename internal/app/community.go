package app

import (
	"context"

	"smart-pantry/internal/rating"
	"smart-pantry/internal/storage"
)

// RateRecipe records a rating by the signed-in user.
func (a *App) RateRecipe(ctx context.Context, title string, stars int, comment string) (rating.Rating, error) {
	var r rating.Rating
	err := a.update(ctx, func(s *State) error {
		if s.User == nil {
			return ErrNotAuthenticated
		}
		var err error
		r, err = rating.New(title, stars, comment, s.User.Name, a.deps.Clock())
		if err != nil {
			return err
		}
		s.Ratings = rating.Add(s.Ratings, r)
		return nil
	}, storage.KeyRatings)
	return r, err
}
