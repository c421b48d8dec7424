package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/travel-snapshot/travel-api/internal/auth"
	"github.com/travel-snapshot/travel-api/internal/middleware"
	"github.com/travel-snapshot/travel-api/internal/models"
	apperrors "github.com/travel-snapshot/travel-api/pkg/errors"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	gateway *auth.Gateway
	logger  *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(gateway *auth.Gateway, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		gateway: gateway,
		logger:  logger,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Create an account with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.CredentialsRequest true "Registration details"
// @Success 201 {object} models.RegisterResponse
// @Failure 400 {object} apperrors.ErrorResponse "Invalid request"
// @Failure 409 {object} apperrors.ErrorResponse "Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.CredentialsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.gateway.Register(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login handles user login
// @Summary User login
// @Description Authenticate user and return a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.CredentialsRequest true "Login credentials"
// @Success 200 {object} models.TokenResponse
// @Failure 400 {object} apperrors.ErrorResponse "Invalid request"
// @Failure 401 {object} apperrors.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.CredentialsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.gateway.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// Me returns the authenticated caller
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security Bearer
// @Success 200 {object} models.MeResponse
// @Failure 401 {object} apperrors.ErrorResponse "Missing, invalid or expired token"
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return apperrors.New(apperrors.CodeUnauthenticated, "Not authenticated")
	}
	return c.JSON(models.MeResponse{UserID: userID})
}

// ValidateToken introspects the bearer token without failing
// @Summary Token introspection
// @Description Reports whether the bearer token is usable. Always 200.
// @Tags Auth
// @Produce json
// @Security Bearer
// @Success 200 {object} models.TokenValidity
// @Router /auth/token/validate [get]
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	token, ok := middleware.BearerToken(c)
	if !ok {
		return c.JSON(models.TokenValidity{Valid: false, Reason: "Missing token"})
	}
	return c.JSON(h.gateway.CheckTokenValidity(token))
}
