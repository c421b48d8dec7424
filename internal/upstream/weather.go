package upstream

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/travel-snapshot/travel-api/internal/config"
	"github.com/travel-snapshot/travel-api/internal/models"
)

// Open-Meteo reports local ISO8601 minutes without an offset; with the
// default timezone that is GMT.
const openMeteoTimeLayout = "2006-01-02T15:04"

// WeatherProvider returns current conditions at a coordinate.
type WeatherProvider interface {
	Current(ctx context.Context, lat, lng float64) (*models.CurrentWeather, error)
}

type openMeteoResponse struct {
	CurrentWeather *struct {
		Temperature   float64 `json:"temperature"`
		WindSpeed     float64 `json:"windspeed"`
		WindDirection float64 `json:"winddirection"`
		WeatherCode   int     `json:"weathercode"`
		Time          string  `json:"time"`
	} `json:"current_weather"`
}

// WeatherClient queries the Open-Meteo forecast API.
type WeatherClient struct {
	caller
}

func NewWeatherClient(cfg *config.WeatherConfig, upstreamCfg *config.UpstreamConfig, logger *logrus.Logger) *WeatherClient {
	return &WeatherClient{caller: newCaller("open-meteo", cfg.BaseURL, upstreamCfg, logger)}
}

// Current returns ErrUnavailable on any failure, including a response
// without current conditions.
func (c *WeatherClient) Current(ctx context.Context, lat, lng float64) (*models.CurrentWeather, error) {
	var out openMeteoResponse
	err := c.get(ctx, "/v1/forecast", func(r *resty.Request) {
		r.SetQueryParams(map[string]string{
			"latitude":        strconv.FormatFloat(lat, 'f', -1, 64),
			"longitude":       strconv.FormatFloat(lng, 'f', -1, 64),
			"current_weather": "true",
		})
	}, &out)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if out.CurrentWeather == nil {
		return nil, fmt.Errorf("%w: %s response has no current_weather", ErrUnavailable, c.name)
	}

	cw := out.CurrentWeather
	observedAt, err := time.ParseInLocation(openMeteoTimeLayout, cw.Time, time.UTC)
	if err != nil {
		observedAt, err = time.Parse(time.RFC3339, cw.Time)
		if err != nil {
			return nil, fmt.Errorf("%w: %s returned bad time %q", ErrUnavailable, c.name, cw.Time)
		}
	}

	return &models.CurrentWeather{
		Temperature:   cw.Temperature,
		WindSpeed:     cw.WindSpeed,
		WindDirection: cw.WindDirection,
		ObservedAt:    observedAt.UTC(),
		WeatherCode:   cw.WeatherCode,
	}, nil
}
