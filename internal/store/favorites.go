package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/travel-snapshot/travel-api/internal/models"
)

const favoriteViewColumns = "f.id, f.attraction_id, a.name, a.country, a.description, a.image1 AS image, f.created_at"

// CreateFavorite inserts the (user, attraction) link. ErrDuplicate when the
// pair exists, ErrForeignKey when either side is missing.
func (s *Store) CreateFavorite(ctx context.Context, f *models.Favorite) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(f).Error)
}

func (s *Store) FavoriteExists(ctx context.Context, userID, attractionID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND attraction_id = ?", userID, attractionID).
		Count(&n).Error
	if err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

func (s *Store) favoriteViews(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("favorites AS f").
		Select(favoriteViewColumns).
		Joins("JOIN attractions AS a ON a.id = f.attraction_id")
}

// ListFavoriteViews returns the user's favorites, most recent first.
func (s *Store) ListFavoriteViews(ctx context.Context, userID uint) ([]models.FavoriteView, error) {
	views := make([]models.FavoriteView, 0)
	err := s.favoriteViews(ctx).
		Where("f.user_id = ?", userID).
		Order("f.created_at DESC, f.id DESC").
		Scan(&views).Error
	if err != nil {
		return nil, translate(err)
	}
	return views, nil
}

// FindFavoriteView loads a single favorite scoped to its owner.
func (s *Store) FindFavoriteView(ctx context.Context, userID, favoriteID uint) (*models.FavoriteView, error) {
	var views []models.FavoriteView
	err := s.favoriteViews(ctx).
		Where("f.user_id = ? AND f.id = ?", userID, favoriteID).
		Limit(1).
		Scan(&views).Error
	if err != nil {
		return nil, translate(err)
	}
	if len(views) == 0 {
		return nil, ErrNotFound
	}
	return &views[0], nil
}

// DeleteFavorite removes the caller's favorite. Rows owned by other users are
// never matched, so they report ErrNotFound like missing ones.
func (s *Store) DeleteFavorite(ctx context.Context, userID, attractionID uint) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND attraction_id = ?", userID, attractionID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountFavorites counts one user's rows for an attraction. Test support only.
func (s *Store) CountFavorites(ctx context.Context, userID, attractionID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND attraction_id = ?", userID, attractionID).
		Count(&n).Error
	return n, translate(err)
}
