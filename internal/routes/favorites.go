package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/travel-snapshot/travel-api/internal/favorites"
	"github.com/travel-snapshot/travel-api/internal/middleware"
	"github.com/travel-snapshot/travel-api/internal/models"
	apperrors "github.com/travel-snapshot/travel-api/pkg/errors"
)

// FavoriteHandler serves the caller's favorites. All routes sit behind the
// bearer middleware.
type FavoriteHandler struct {
	favorites *favorites.Service
	logger    *logrus.Logger
}

func NewFavoriteHandler(favorites *favorites.Service, logger *logrus.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		favorites: favorites,
		logger:    logger,
	}
}

// List returns the caller's favorites
// @Summary List favorites
// @Tags Favorites
// @Produce json
// @Security Bearer
// @Success 200 {array} models.FavoriteView
// @Failure 401 {object} apperrors.ErrorResponse "Not authenticated"
// @Router /favorites/ [get]
func (h *FavoriteHandler) List(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	views, err := h.favorites.List(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(views)
}

// Add favorites an attraction. The id comes from the body, or from the path
// on POST /favorites/{attraction_id}.
// @Summary Add favorite
// @Tags Favorites
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body models.AddFavoriteRequest true "Attraction to favorite"
// @Success 201 {object} models.FavoriteView
// @Failure 404 {object} apperrors.ErrorResponse "Attraction not found"
// @Failure 409 {object} apperrors.ErrorResponse "Already favorited"
// @Router /favorites/ [post]
func (h *FavoriteHandler) Add(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var attractionID uint
	if c.Params("attraction_id") != "" {
		if attractionID, err = pathID(c, "attraction_id"); err != nil {
			return err
		}
	} else {
		var req models.AddFavoriteRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		attractionID = req.AttractionID
	}

	view, err := h.favorites.Add(c.UserContext(), userID, attractionID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// Remove deletes one of the caller's favorites
// @Summary Remove favorite
// @Tags Favorites
// @Produce json
// @Security Bearer
// @Param attraction_id path int true "Attraction ID"
// @Success 200 {object} models.DeleteResponse
// @Failure 404 {object} apperrors.ErrorResponse "Favorite not found"
// @Router /favorites/{attraction_id} [delete]
func (h *FavoriteHandler) Remove(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	attractionID, err := pathID(c, "attraction_id")
	if err != nil {
		return err
	}

	if err := h.favorites.Remove(c.UserContext(), userID, attractionID); err != nil {
		return err
	}
	return c.JSON(models.DeleteResponse{ID: attractionID, Message: "Removed successfully"})
}

func currentUser(c *fiber.Ctx) (uint, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return 0, apperrors.New(apperrors.CodeUnauthenticated, "Not authenticated")
	}
	return userID, nil
}
