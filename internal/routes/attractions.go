package routes

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/travel-snapshot/travel-api/internal/catalog"
	"github.com/travel-snapshot/travel-api/internal/models"
	apperrors "github.com/travel-snapshot/travel-api/pkg/errors"
)

// AttractionHandler exposes the shared attraction catalog
type AttractionHandler struct {
	catalog *catalog.Service
	logger  *logrus.Logger
}

func NewAttractionHandler(catalog *catalog.Service, logger *logrus.Logger) *AttractionHandler {
	return &AttractionHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// Add creates an attraction unless (country, name) already exists
// @Summary Add attraction
// @Description Idempotent on country and name. Missing images are filled from image search.
// @Tags Attractions
// @Accept json
// @Produce json
// @Param request body models.AddAttractionRequest true "Attraction"
// @Success 201 {object} models.AddAttractionResponse "Created"
// @Success 200 {object} models.AddAttractionResponse "Already exists"
// @Failure 400 {object} apperrors.ErrorResponse "Invalid request"
// @Router /attractions/ [post]
func (h *AttractionHandler) Add(c *fiber.Ctx) error {
	var req models.AddAttractionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.catalog.Add(c.UserContext(), &req)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if resp.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(resp)
}

// ListByCountry lists the catalog for a country
// @Summary List attractions by country
// @Tags Attractions
// @Produce json
// @Param country path string true "Country name"
// @Success 200 {object} models.CountryAttractionsResponse
// @Router /attractions/{country} [get]
func (h *AttractionHandler) ListByCountry(c *fiber.Ctx) error {
	country, err := pathString(c, "country")
	if err != nil {
		return err
	}

	resp, err := h.catalog.ListByCountry(c.UserContext(), country)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Delete removes an attraction and, by cascade, every favorite of it
// @Summary Delete attraction
// @Tags Attractions
// @Produce json
// @Param id path int true "Attraction ID"
// @Success 200 {object} models.DeleteResponse
// @Failure 404 {object} apperrors.ErrorResponse "Attraction not found"
// @Router /attractions/{id} [delete]
func (h *AttractionHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	resp, err := h.catalog.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// pathID parses a positive integer path parameter.
func pathID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewAppErrorf(apperrors.CodeValidation, err, "%s must be a positive integer", name)
	}
	return uint(id), nil
}

// pathString returns a URL-decoded path parameter.
func pathString(c *fiber.Ctx, name string) (string, error) {
	value, err := url.PathUnescape(c.Params(name))
	if err != nil {
		return "", apperrors.NewAppErrorf(apperrors.CodeValidation, err, "%s is not a valid path segment", name)
	}
	return value, nil
}
