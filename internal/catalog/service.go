// Package catalog manages the shared attraction catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/travel-snapshot/travel-api/internal/models"
	"github.com/travel-snapshot/travel-api/internal/store"
	"github.com/travel-snapshot/travel-api/internal/upstream"
	apperrors "github.com/travel-snapshot/travel-api/pkg/errors"
)

const (
	MsgAdded         = "Attraction added successfully"
	MsgAlreadyExists = "Attraction already exists"
	MsgNoneYet       = "No attractions available yet for this country"
)

type Service struct {
	store  *store.Store
	images upstream.ImageSearcher
	logger *logrus.Logger
}

// NewService builds the catalog. A nil searcher disables image backfill.
func NewService(s *store.Store, images upstream.ImageSearcher, logger *logrus.Logger) *Service {
	if images == nil {
		images = upstream.NoImages{}
	}
	return &Service{store: s, images: images, logger: logger}
}

// Add is idempotent on (country, name): a repeat returns the existing id with
// Created=false. When no image is supplied up to four are fetched from the
// image searcher; an empty result just stores none.
func (s *Service) Add(ctx context.Context, req *models.AddAttractionRequest) (*models.AddAttractionResponse, error) {
	country := strings.TrimSpace(req.Country)
	name := strings.TrimSpace(req.Name)
	if country == "" || name == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "country and name are required")
	}
	if req.Lat == nil || req.Lng == nil {
		return nil, apperrors.New(apperrors.CodeValidation, "lat and lng are required")
	}

	existing, err := s.store.FindAttractionByCountryAndName(ctx, country, name)
	switch {
	case err == nil:
		return alreadyExists(existing.ID), nil
	case !errors.Is(err, store.ErrNotFound):
		s.logger.WithError(err).Error("Failed to look up attraction")
		return nil, apperrors.Internal(err)
	}

	attraction := &models.Attraction{
		Country:     country,
		Name:        name,
		Lat:         *req.Lat,
		Lng:         *req.Lng,
		Description: req.Description,
		Status:      req.Status,
	}

	supplied := nonEmpty(req.Image1, req.Image2, req.Image3, req.Image4)
	if len(supplied) == 0 {
		supplied = s.images.Search(ctx, name, models.MaxAttractionImages)
		s.logger.WithFields(logrus.Fields{
			"country": country,
			"name":    name,
			"images":  len(supplied),
		}).Debug("Backfilled attraction images")
	}
	attraction.SetImages(supplied)

	if err := s.store.CreateAttraction(ctx, attraction); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Lost a race with a concurrent add of the same attraction
			winner, findErr := s.store.FindAttractionByCountryAndName(ctx, country, name)
			if findErr != nil {
				return nil, apperrors.Internal(fmt.Errorf("reload attraction after conflict: %w", findErr))
			}
			return alreadyExists(winner.ID), nil
		}
		s.logger.WithError(err).Error("Failed to add attraction")
		return nil, apperrors.Internal(err)
	}

	s.logger.WithFields(logrus.Fields{
		"attraction_id": attraction.ID,
		"country":       country,
	}).Info("Attraction added")

	return &models.AddAttractionResponse{
		ID:      attraction.ID,
		Created: true,
		Message: MsgAdded,
	}, nil
}

// ListByCountry never reports a missing country as an error; an empty catalog
// carries an explanatory message instead.
func (s *Service) ListByCountry(ctx context.Context, country string) (*models.CountryAttractionsResponse, error) {
	country = strings.TrimSpace(country)
	if country == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "country is required")
	}

	rows, err := s.store.ListAttractionsByCountry(ctx, country)
	if err != nil {
		s.logger.WithError(err).WithField("country", country).Error("Failed to list attractions")
		return nil, apperrors.Internal(err)
	}

	resp := &models.CountryAttractionsResponse{
		Country:     country,
		Attractions: make([]models.AttractionView, 0, len(rows)),
	}
	for i := range rows {
		resp.Attractions = append(resp.Attractions, rows[i].View())
	}
	if len(resp.Attractions) == 0 {
		resp.Message = MsgNoneYet
	}
	return resp, nil
}

func (s *Service) Delete(ctx context.Context, id uint) (*models.DeleteResponse, error) {
	if err := s.store.DeleteAttraction(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "Attraction not found")
		}
		s.logger.WithError(err).WithField("attraction_id", id).Error("Failed to delete attraction")
		return nil, apperrors.Internal(err)
	}

	return &models.DeleteResponse{
		ID:      id,
		Message: fmt.Sprintf("Attraction %d deleted successfully", id),
	}, nil
}

func alreadyExists(id uint) *models.AddAttractionResponse {
	return &models.AddAttractionResponse{ID: id, Created: false, Message: MsgAlreadyExists}
}

func nonEmpty(values ...*string) []string {
	var out []string
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			out = append(out, strings.TrimSpace(*v))
		}
	}
	return out
}
