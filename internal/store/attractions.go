package store

import (
	"context"

	"github.com/travel-snapshot/travel-api/internal/models"
)

// CreateAttraction inserts an attraction. ErrDuplicate when (country, name)
// already exists.
func (s *Store) CreateAttraction(ctx context.Context, a *models.Attraction) error {
	if a.Status == "" {
		a.Status = models.AttractionStatusAvailable
	}
	return translate(s.db.WithContext(ctx).Create(a).Error)
}

func (s *Store) FindAttraction(ctx context.Context, id uint) (*models.Attraction, error) {
	var a models.Attraction
	if err := s.db.WithContext(ctx).Take(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *Store) FindAttractionByCountryAndName(ctx context.Context, country, name string) (*models.Attraction, error) {
	var a models.Attraction
	err := s.db.WithContext(ctx).
		Where("country = ? AND name = ?", country, name).
		Take(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// ListAttractionsByCountry returns the country's attractions in insertion
// order. An empty slice is not an error.
func (s *Store) ListAttractionsByCountry(ctx context.Context, country string) ([]models.Attraction, error) {
	attractions := make([]models.Attraction, 0)
	err := s.db.WithContext(ctx).
		Where("country = ?", country).
		Order("id ASC").
		Find(&attractions).Error
	if err != nil {
		return nil, translate(err)
	}
	return attractions, nil
}

// DeleteAttraction removes the attraction; favorites referencing it cascade.
func (s *Store) DeleteAttraction(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Attraction{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountAttractions counts rows for (country, name). Test support only.
func (s *Store) CountAttractions(ctx context.Context, country, name string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Attraction{}).
		Where("country = ? AND name = ?", country, name).
		Count(&n).Error
	return n, translate(err)
}
