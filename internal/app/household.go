package app

import (
	"context"

	"go.uber.org/zap"

	"smart-pantry/internal/household"
	"smart-pantry/internal/storage"
)

// InviteMember adds an invited member. When invite signing is configured a
// token the invitee can redeem is returned as well.
func (a *App) InviteMember(ctx context.Context, email string) (household.Member, string, error) {
	var m household.Member
	var snapshot household.Household
	err := a.update(ctx, func(s *State) error {
		if s.User == nil {
			return ErrNotAuthenticated
		}
		next, member, err := s.Household.Invite(email)
		if err != nil {
			return err
		}
		s.Household, m, snapshot = next, member, next
		return nil
	}, storage.KeyHousehold)
	if err != nil || a.deps.Invites == nil {
		return m, "", err
	}

	token, err := a.deps.Invites.Issue(snapshot, m, a.deps.Namespace)
	if err != nil {
		a.log.Warn("failed to issue invite token", zap.String("member", m.ID), zap.Error(err))
		return m, "", nil
	}
	return m, token, nil
}

// RemoveMember deletes a member other than the signed-in user.
func (a *App) RemoveMember(ctx context.Context, id string) error {
	return a.update(ctx, func(s *State) error {
		if s.User == nil {
			return ErrNotAuthenticated
		}
		next, err := s.Household.Remove(id, s.User.Email)
		s.Household = next
		return err
	}, storage.KeyHousehold)
}

// AcceptInvite activates the invited member named in claims.
func (a *App) AcceptInvite(ctx context.Context, claims household.InviteClaims) error {
	return a.update(ctx, func(s *State) error {
		if claims.HouseholdID != s.Household.ID {
			return household.ErrInviteMismatch
		}
		next, err := s.Household.Accept(claims.MemberID, claims.Email)
		s.Household = next
		return err
	}, storage.KeyHousehold)
}
