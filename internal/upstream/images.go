package upstream

import (
	"context"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/travel-snapshot/travel-api/internal/config"
)

const (
	DefaultImageCount = 4
	MaxImageCount     = 30
)

// ImageSearcher returns up to limit image URLs for a free-text query. It
// never fails: any problem yields an empty slice.
type ImageSearcher interface {
	Search(ctx context.Context, query string, limit int) []string
}

type unsplashSearchResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

// NoImages is an ImageSearcher that never finds anything.
type NoImages struct{}

func (NoImages) Search(context.Context, string, int) []string { return []string{} }

// ImageClient searches Unsplash photos.
type ImageClient struct {
	caller
	accessKey string
}

func NewImageClient(cfg *config.UnsplashConfig, upstreamCfg *config.UpstreamConfig, logger *logrus.Logger) *ImageClient {
	return &ImageClient{
		caller:    newCaller("unsplash", cfg.BaseURL, upstreamCfg, logger),
		accessKey: cfg.AccessKey,
	}
}

func (c *ImageClient) Search(ctx context.Context, query string, limit int) []string {
	images := make([]string, 0)

	if c == nil {
		return images
	}
	if c.accessKey == "" {
		c.logger.Debug("Unsplash access key not configured, skipping image search")
		return images
	}
	if query == "" {
		return images
	}
	limit = clampImageCount(limit)

	var out unsplashSearchResponse
	err := c.get(ctx, "/search/photos", func(r *resty.Request) {
		r.SetQueryParams(map[string]string{
			"query":    query,
			"per_page": strconv.Itoa(limit),
		})
		r.SetHeader("Authorization", "Client-ID "+c.accessKey)
	}, &out)
	if err != nil {
		return images
	}

	for _, result := range out.Results {
		if result.URLs.Regular == "" {
			continue
		}
		images = append(images, result.URLs.Regular)
		if len(images) == limit {
			break
		}
	}
	return images
}

func clampImageCount(n int) int {
	switch {
	case n < 1:
		return DefaultImageCount
	case n > MaxImageCount:
		return MaxImageCount
	default:
		return n
	}
}
