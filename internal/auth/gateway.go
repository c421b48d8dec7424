package auth

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/travel-snapshot/travel-api/internal/metrics"
	"github.com/travel-snapshot/travel-api/internal/models"
	apperrors "github.com/travel-snapshot/travel-api/pkg/errors"
)

const (
	TokenTypeBearer = "bearer"

	msgInvalidCredentials = "Invalid email or password"
	msgTokenExpired       = "Token expired"
	msgInvalidToken       = "Invalid token"
)

// Gateway is the public authentication surface: register, login and token
// resolution. Every failure it returns is an *apperrors.AppError.
type Gateway struct {
	credentials *CredentialStore
	tokens      *TokenService
	logger      *logrus.Logger
}

func NewGateway(credentials *CredentialStore, tokens *TokenService, logger *logrus.Logger) *Gateway {
	return &Gateway{
		credentials: credentials,
		tokens:      tokens,
		logger:      logger,
	}
}

func (g *Gateway) Register(ctx context.Context, email, password string) (*models.RegisterResponse, error) {
	userID, err := g.credentials.Register(ctx, email, password)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			metrics.RecordAuthEvent("register", "conflict")
			return nil, apperrors.NewAppError(apperrors.CodeConflict, "Email already registered", err)
		case errors.Is(err, ErrPasswordTooLong):
			metrics.RecordAuthEvent("register", "invalid")
			return nil, apperrors.NewAppErrorf(apperrors.CodeValidation, err, "password must be at most %d bytes", MaxPasswordBytes)
		}
		metrics.RecordAuthEvent("register", "error")
		g.logger.WithError(err).Error("Failed to register user")
		return nil, apperrors.Internal(err)
	}

	metrics.RecordAuthEvent("register", "success")
	g.logger.WithField("user_id", userID).Info("User registered successfully")

	return &models.RegisterResponse{
		UserID:  userID,
		Message: "User registered successfully",
	}, nil
}

// Login never reveals whether the email exists.
func (g *Gateway) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	user, ok, err := g.credentials.Authenticate(ctx, email, password)
	if err != nil {
		metrics.RecordAuthEvent("login", "error")
		g.logger.WithError(err).Error("Failed to authenticate user")
		return nil, apperrors.Internal(err)
	}
	if !ok {
		metrics.RecordAuthEvent("login", "invalid_credentials")
		return nil, apperrors.New(apperrors.CodeInvalidCredentials, msgInvalidCredentials)
	}

	token, expiresAt, err := g.tokens.Issue(user.ID)
	if err != nil {
		metrics.RecordAuthEvent("login", "error")
		g.logger.WithError(err).Error("Failed to generate JWT")
		return nil, apperrors.Internal(err)
	}

	metrics.RecordAuthEvent("login", "success")
	g.logger.WithField("user_id", user.ID).Info("User logged in successfully")

	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   expiresAt,
	}, nil
}

// CurrentUser resolves a bearer token to its user id. Expired tokens are
// reported with CodeTokenExpired, every other failure with CodeUnauthenticated.
func (g *Gateway) CurrentUser(token string) (uint, error) {
	userID, err := g.tokens.Verify(token)
	if err != nil {
		metrics.RecordAuthEvent("verify", reasonLabel(err))
		return 0, unauthorized(err)
	}
	return userID, nil
}

// CheckTokenValidity never fails; problems are reported in the result.
func (g *Gateway) CheckTokenValidity(token string) models.TokenValidity {
	claims, err := g.tokens.VerifyClaims(token)
	if err != nil {
		return models.TokenValidity{Valid: false, Reason: reasonMessage(err)}
	}

	expiresAt := claims.ExpiresAt.Time.UTC()
	return models.TokenValidity{
		Valid:     true,
		UserID:    claims.UserID,
		ExpiresAt: &expiresAt,
	}
}

func unauthorized(err error) *apperrors.AppError {
	if errors.Is(err, ErrExpired) {
		return apperrors.NewAppError(apperrors.CodeTokenExpired, msgTokenExpired, err)
	}
	return apperrors.NewAppError(apperrors.CodeUnauthenticated, msgInvalidToken, err)
}

func reasonMessage(err error) string {
	if errors.Is(err, ErrExpired) {
		return msgTokenExpired
	}
	return msgInvalidToken
}

func reasonLabel(err error) string {
	switch {
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrBadSignature):
		return "bad_signature"
	default:
		return "malformed"
	}
}
