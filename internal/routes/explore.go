package routes

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/travel-snapshot/travel-api/internal/models"
	"github.com/travel-snapshot/travel-api/internal/upstream"
	apperrors "github.com/travel-snapshot/travel-api/pkg/errors"
)

// ExploreHandler proxies the third-party image, country and weather APIs.
type ExploreHandler struct {
	images    upstream.ImageSearcher
	countries upstream.CountryLookup
	weather   upstream.WeatherProvider
	logger    *logrus.Logger
}

func NewExploreHandler(images upstream.ImageSearcher, countries upstream.CountryLookup, weather upstream.WeatherProvider, logger *logrus.Logger) *ExploreHandler {
	return &ExploreHandler{
		images:    images,
		countries: countries,
		weather:   weather,
		logger:    logger,
	}
}

// Images searches photos for a free-text query
// @Summary Image search
// @Description Empty list when the image provider is unavailable.
// @Tags Explore
// @Produce json
// @Param query path string true "Search text"
// @Param per_page query int false "Number of images (1-30)" default(4)
// @Success 200 {object} models.ImagesResponse
// @Failure 400 {object} apperrors.ErrorResponse "Invalid per_page"
// @Router /images/{query} [get]
func (h *ExploreHandler) Images(c *fiber.Ctx) error {
	query, err := pathString(c, "query")
	if err != nil {
		return err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return apperrors.New(apperrors.CodeValidation, "query is required")
	}

	perPage := upstream.DefaultImageCount
	if raw := c.Query("per_page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > upstream.MaxImageCount {
			return apperrors.NewAppErrorf(apperrors.CodeValidation, err,
				"per_page must be an integer between 1 and %d", upstream.MaxImageCount)
		}
		perPage = n
	}

	return c.JSON(models.ImagesResponse{
		Query:  query,
		Images: h.images.Search(c.UserContext(), query, perPage),
	})
}

// Location returns metadata for an exact country name
// @Summary Country metadata
// @Tags Explore
// @Produce json
// @Param country path string true "Country name"
// @Success 200 {object} models.CountryInfo
// @Failure 404 {object} apperrors.ErrorResponse "Country not found"
// @Failure 503 {object} apperrors.ErrorResponse "Country service unavailable"
// @Router /location/{country} [get]
func (h *ExploreHandler) Location(c *fiber.Ctx) error {
	country, err := pathString(c, "country")
	if err != nil {
		return err
	}
	country = strings.TrimSpace(country)
	if country == "" {
		return apperrors.New(apperrors.CodeValidation, "Country name is required")
	}

	info, err := h.countries.Lookup(c.UserContext(), country)
	if err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			return apperrors.NewAppError(apperrors.CodeNotFound, "Country not found", err)
		}
		return apperrors.NewAppError(apperrors.CodeUpstreamUnavailable, "Country service unavailable", err)
	}
	return c.JSON(info)
}

// Weather returns current conditions at a coordinate
// @Summary Current weather
// @Tags Explore
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Success 200 {object} models.WeatherResponse
// @Failure 400 {object} apperrors.ErrorResponse "Invalid coordinates"
// @Failure 503 {object} apperrors.ErrorResponse "Weather service unavailable"
// @Router /weather/ [get]
func (h *ExploreHandler) Weather(c *fiber.Ctx) error {
	lat, err := queryCoordinate(c, "lat", 90)
	if err != nil {
		return err
	}
	lng, err := queryCoordinate(c, "lng", 180)
	if err != nil {
		return err
	}

	current, err := h.weather.Current(c.UserContext(), lat, lng)
	if err != nil {
		return apperrors.NewAppError(apperrors.CodeUpstreamUnavailable, "Weather service unavailable", err)
	}

	return c.JSON(models.WeatherResponse{
		Latitude:  lat,
		Longitude: lng,
		Weather:   *current,
	})
}

func queryCoordinate(c *fiber.Ctx, name string, bound float64) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, apperrors.New(apperrors.CodeValidation, name+" is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || v < -bound || v > bound {
		return 0, apperrors.NewAppErrorf(apperrors.CodeValidation, err,
			"%s must be a number between %g and %g", name, -bound, bound)
	}
	return v, nil
}
