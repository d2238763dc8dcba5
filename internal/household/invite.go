package household

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidInvite covers malformed, tampered and expired invite tokens.
var ErrInvalidInvite = errors.New("invalid invite token")

// InviteClaims identify the household, the invited member and the namespace
// holding the household's documents.
type InviteClaims struct {
	HouseholdID string `json:"hid"`
	MemberID    string `json:"mid"`
	Email       string `json:"email"`
	Namespace   string `json:"ns"`
	jwt.RegisteredClaims
}

// InviteSigner issues and verifies HS256 invite tokens.
type InviteSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewInviteSigner(secret string, ttl time.Duration) *InviteSigner {
	return &InviteSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs an invite for member m of household h stored under namespace.
func (s *InviteSigner) Issue(h Household, m Member, namespace string) (string, error) {
	now := s.now()
	claims := InviteClaims{
		HouseholdID: h.ID,
		MemberID:    m.ID,
		Email:       m.Email,
		Namespace:   namespace,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        m.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign invite: %w", err)
	}
	return token, nil
}

// Parse verifies the signature and expiry of an invite token.
func (s *InviteSigner) Parse(token string) (InviteClaims, error) {
	var claims InviteClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return InviteClaims{}, fmt.Errorf("%w: %w", ErrInvalidInvite, err)
	}
	return claims, nil
}
