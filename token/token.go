package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"restaurant-ordering-api/clock"
	"restaurant-ordering-api/errs"
	"restaurant-ordering-api/models"
)

const (
	// AccessTTL bounds how long a single session window lasts
	AccessTTL = 15 * time.Minute
	// RefreshTTL bounds how long a client can mint new access tokens
	// without logging in again
	RefreshTTL = 7 * 24 * time.Hour
)

type Claims struct {
	UserID uint            `json:"user_id"`
	Phone  string          `json:"phone"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Pair bundles the two tokens issued on login/registration
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Service signs and verifies access and refresh tokens. Tokens are
// stateless: nothing is persisted and there is no revocation list, so a
// token stays valid until its own expiry even after logout.
type Service struct {
	secret []byte
	clock  clock.Clock
}

func NewService(secret []byte, c clock.Clock) *Service {
	return &Service{secret: secret, clock: c}
}

// IssueAccessToken creates a short-lived signed token for the user
func (s *Service) IssueAccessToken(user *models.User) (string, error) {
	return s.sign(user, AccessTTL)
}

// IssueRefreshToken creates a long-lived signed token for the user
func (s *Service) IssueRefreshToken(user *models.User) (string, error) {
	return s.sign(user, RefreshTTL)
}

// IssuePair mints both tokens for a freshly authenticated user
func (s *Service) IssuePair(user *models.User) (Pair, error) {
	access, err := s.IssueAccessToken(user)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := s.IssueRefreshToken(user)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) sign(user *models.User, ttl time.Duration) (string, error) {
	now := s.clock.Now()
	claims := Claims{
		UserID: user.ID,
		Phone:  user.Phone,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%w: signing token: %v", errs.ErrInternal, err)
	}
	return signed, nil
}

// Verify fails closed: bad signature, malformed structure, and expiry
// all come back as Unauthorized
func (s *Service) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(s.clock.Now))
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: invalid or expired token", errs.ErrUnauthorized)
	}
	return claims, nil
}

// Rotate verifies a refresh token and mints a new access token with the
// same claims. The refresh token itself is not reissued; it remains
// valid until its natural expiry.
func (s *Service) Rotate(refreshToken string) (string, *Claims, error) {
	claims, err := s.Verify(refreshToken)
	if err != nil {
		return "", nil, err
	}
	access, err := s.sign(&models.User{
		ID:    claims.UserID,
		Phone: claims.Phone,
		Role:  claims.Role,
	}, AccessTTL)
	if err != nil {
		return "", nil, err
	}
	return access, claims, nil
}
