// Package favorites implements the per-user favorites list. Every operation
// is scoped by the authenticated user id; rows owned by another user behave
// exactly like rows that do not exist.
package favorites

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/travel-snapshot/travel-api/internal/logging"
	"github.com/travel-snapshot/travel-api/internal/metrics"
	"github.com/travel-snapshot/travel-api/internal/models"
	"github.com/travel-snapshot/travel-api/internal/store"
	apperrors "github.com/travel-snapshot/travel-api/pkg/errors"
)

var (
	errAttractionNotFound = apperrors.New(apperrors.CodeNotFound, "Attraction not found")
	errAlreadyFavorited   = apperrors.New(apperrors.CodeConflict, "Attraction already in favorites")
	errFavoriteNotFound   = apperrors.New(apperrors.CodeNotFound, "Favorite not found")
)

type Service struct {
	store  *store.Store
	logger *logrus.Logger
}

func NewService(s *store.Store, logger *logrus.Logger) *Service {
	return &Service{store: s, logger: logger}
}

// Add favorites an attraction for userID and returns the joined view.
func (s *Service) Add(ctx context.Context, userID, attractionID uint) (*models.FavoriteView, error) {
	log := logging.WithUserID(s.logger, userID).WithField("attraction_id", attractionID)

	if attractionID == 0 {
		metrics.RecordFavoritesOperation("add", "invalid")
		return nil, apperrors.New(apperrors.CodeValidation, "attraction_id is required")
	}

	var favorite models.Favorite
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := tx.FindAttraction(ctx, attractionID); err != nil {
			return err
		}

		exists, err := tx.FavoriteExists(ctx, userID, attractionID)
		if err != nil {
			return err
		}
		if exists {
			return store.ErrDuplicate
		}

		favorite = models.Favorite{UserID: userID, AttractionID: attractionID}
		return tx.CreateFavorite(ctx, &favorite)
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrForeignKey):
			metrics.RecordFavoritesOperation("add", "not_found")
			return nil, errAttractionNotFound
		case errors.Is(err, store.ErrDuplicate):
			metrics.RecordFavoritesOperation("add", "conflict")
			return nil, errAlreadyFavorited
		}
		metrics.RecordFavoritesOperation("add", "error")
		log.WithError(err).Error("Failed to add favorite")
		return nil, apperrors.Internal(err)
	}

	view, err := s.store.FindFavoriteView(ctx, userID, favorite.ID)
	if err != nil {
		metrics.RecordFavoritesOperation("add", "error")
		log.WithError(err).Error("Failed to load favorite after insert")
		return nil, apperrors.Internal(err)
	}

	metrics.RecordFavoritesOperation("add", "success")
	log.Info("Favorite added")
	return view, nil
}

// List returns the caller's favorites, newest first. Never nil.
func (s *Service) List(ctx context.Context, userID uint) ([]models.FavoriteView, error) {
	views, err := s.store.ListFavoriteViews(ctx, userID)
	if err != nil {
		metrics.RecordFavoritesOperation("list", "error")
		logging.WithUserID(s.logger, userID).WithError(err).Error("Failed to list favorites")
		return nil, apperrors.Internal(err)
	}
	metrics.RecordFavoritesOperation("list", "success")
	return views, nil
}

func (s *Service) Remove(ctx context.Context, userID, attractionID uint) error {
	if err := s.store.DeleteFavorite(ctx, userID, attractionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.RecordFavoritesOperation("remove", "not_found")
			return errFavoriteNotFound
		}
		metrics.RecordFavoritesOperation("remove", "error")
		logging.WithUserID(s.logger, userID).WithError(err).
			WithField("attraction_id", attractionID).Error("Failed to remove favorite")
		return apperrors.Internal(err)
	}

	metrics.RecordFavoritesOperation("remove", "success")
	return nil
}
