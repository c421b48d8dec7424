package store

import (
	"context"

	"github.com/travel-snapshot/travel-api/internal/models"
)

// CreateUser inserts a user. ErrDuplicate when the email is taken.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

// FindUserByEmail matches the email exactly as stored.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// CountUsersByEmail counts rows holding email. No request path uses it;
// tests call it to check that the unique index held.
func (s *Store) CountUsersByEmail(ctx context.Context, email string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error
	return n, translate(err)
}
