package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/travel-snapshot/travel-api/internal/config"
)

var (
	ErrMalformed    = errors.New("token is malformed")
	ErrExpired      = errors.New("token has expired")
	ErrBadSignature = errors.New("token signature is invalid")
)

const signingAlg = "HS256"

// Claims carries the user id next to the registered claims.
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 access tokens. Verification is pure:
// it never touches storage.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type TokenOption func(*TokenService)

// WithClock replaces the wall clock used for issuing and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

func NewTokenService(cfg *config.JWTConfig, opts ...TokenOption) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("jwt ttl must be positive, got %s", cfg.TTL)
	}

	s := &TokenService{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token for userID with the configured lifetime.
func (s *TokenService) Issue(userID uint) (string, time.Time, error) {
	return s.IssueWithTTL(userID, s.ttl)
}

// IssueWithTTL signs a token expiring ttl after the service clock's now.
func (s *TokenService) IssueWithTTL(userID uint, ttl time.Duration) (string, time.Time, error) {
	now := s.now().UTC()
	expiresAt := now.Add(ttl).Truncate(jwt.TimePrecision)

	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Verify returns the user id bound to a valid token, or one of ErrMalformed,
// ErrExpired and ErrBadSignature.
func (s *TokenService) Verify(token string) (uint, error) {
	claims, err := s.VerifyClaims(token)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// VerifyClaims is Verify returning the full claim set.
func (s *TokenService) VerifyClaims(token string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{signingAlg}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, classify(err)
	}
	if !parsed.Valid || claims.UserID == 0 {
		return nil, ErrMalformed
	}
	return claims, nil
}

// classify maps jwt parse errors to the service's three failure kinds.
// Signatures are checked before claims, so a forged expired token reports
// ErrBadSignature.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return ErrMalformed
	}
}
