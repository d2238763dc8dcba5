// Package session models the signed-in identity and per-user display
// preferences.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const ProviderEmail = "email"

var ErrUnknownProvider = errors.New("unknown identity provider")

var validate = validator.New()

// Providers accepted by NewProviderUser.
var Providers = []string{"google", "facebook", "telegram"}

// User is the session singleton. A nil *User means signed out.
type User struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email" validate:"required,email"`
	Avatar          string `json:"avatar,omitempty"`
	Provider        string `json:"provider" validate:"required"`
	HasSeenTutorial bool   `json:"hasSeenTutorial"`
}

// NewEmailUser signs in with an e-mail address; the display name is its local part.
func NewEmailUser(email string) (*User, error) {
	email = strings.TrimSpace(email)
	name, _, _ := strings.Cut(email, "@")
	u := &User{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    email,
		Provider: ProviderEmail,
	}
	if err := validate.Struct(u); err != nil {
		return nil, fmt.Errorf("invalid email %q: %w", email, err)
	}
	return u, nil
}

// NewProviderUser accepts an identity issued by an external provider as-is.
// Missing names and e-mails get provider-derived placeholders.
func NewProviderUser(provider, name, email string) (*User, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	known := false
	for _, p := range Providers {
		if p == provider {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	if name == "" {
		name = "User via " + provider
	}
	if email == "" {
		email = "user@" + provider + ".com"
	}
	u := &User{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    email,
		Provider: provider,
	}
	if err := validate.Struct(u); err != nil {
		return nil, fmt.Errorf("invalid identity: %w", err)
	}
	return u, nil
}

// Theme is the persisted colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle switches between light and dark. Unknown values become dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
