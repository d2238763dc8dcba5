// Package household manages the members sharing a pantry and the signed
// invites used to join one.
package household

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleMember Role = "Member"
)

type Status string

const (
	StatusActive  Status = "Active"
	StatusInvited Status = "Invited"
)

// DefaultName is used for households created on first login.
const DefaultName = "My Household"

var (
	ErrAlreadyMember    = errors.New("a member with this email already exists")
	ErrCannotRemoveSelf = errors.New("cannot remove yourself from the household")
	ErrMemberNotFound   = errors.New("member not found")
	ErrInviteMismatch   = errors.New("invite does not belong to this member")
)

var (
	validate = validator.New()
	policy   = bluemonday.StrictPolicy()
)

type Member struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email" validate:"required,email"`
	Role   Role   `json:"role"`
	Status Status `json:"status"`
}

type Household struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []Member `json:"members"`
}

// New creates an empty household.
func New(name string) Household {
	name = strings.TrimSpace(policy.Sanitize(name))
	if name == "" {
		name = DefaultName
	}
	return Household{ID: uuid.NewString(), Name: name, Members: []Member{}}
}

// LocalPart returns the part of an e-mail address before the '@'.
func LocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Find returns the index of the member with the given e-mail, or -1.
func (h Household) Find(email string) int {
	for i, m := range h.Members {
		if sameEmail(m.Email, email) {
			return i
		}
	}
	return -1
}

// IsActive reports whether email belongs to a member who accepted.
func (h Household) IsActive(email string) bool {
	i := h.Find(email)
	return i >= 0 && h.Members[i].Status == StatusActive
}

func (h Household) clone() Household {
	out := h
	out.Members = make([]Member, len(h.Members))
	copy(out.Members, h.Members)
	return out
}

// Invite appends an invited member named after the local part of email.
func (h Household) Invite(email string) (Household, Member, error) {
	email = strings.TrimSpace(email)
	m := Member{
		ID:     uuid.NewString(),
		Name:   LocalPart(email),
		Email:  email,
		Role:   RoleMember,
		Status: StatusInvited,
	}
	if err := validate.Struct(m); err != nil {
		return h, Member{}, fmt.Errorf("invalid member email %q: %w", email, err)
	}
	if h.Find(email) >= 0 {
		return h, Member{}, ErrAlreadyMember
	}

	out := h.clone()
	out.Members = append(out.Members, m)
	return out, m, nil
}

// Remove deletes the member with the given id. The member matching
// currentEmail is protected.
func (h Household) Remove(id, currentEmail string) (Household, error) {
	for i, m := range h.Members {
		if m.ID != id {
			continue
		}
		if sameEmail(m.Email, currentEmail) {
			return h, ErrCannotRemoveSelf
		}
		out := h.clone()
		out.Members = append(out.Members[:i], out.Members[i+1:]...)
		return out, nil
	}
	return h, ErrMemberNotFound
}

// UpsertLogin adds the logging-in identity as an active admin unless a member
// with that e-mail already exists. It reports whether a member was added.
func (h Household) UpsertLogin(name, email string) (Household, bool) {
	if h.Find(email) >= 0 {
		return h, false
	}
	out := h.clone()
	out.Members = append(out.Members, Member{
		ID:     uuid.NewString(),
		Name:   strings.TrimSpace(policy.Sanitize(name)),
		Email:  strings.TrimSpace(email),
		Role:   RoleAdmin,
		Status: StatusActive,
	})
	return out, true
}

// Accept marks an invited member as active. The e-mail must match the invite.
func (h Household) Accept(memberID, email string) (Household, error) {
	for i, m := range h.Members {
		if m.ID != memberID {
			continue
		}
		if !sameEmail(m.Email, email) {
			return h, ErrInviteMismatch
		}
		out := h.clone()
		out.Members[i].Status = StatusActive
		return out, nil
	}
	return h, ErrMemberNotFound
}
