package models

import "time"

// Favorite links a user to a catalog attraction. Display fields are not
// stored here; they are joined from the attraction at read time.
type Favorite struct {
	ID           uint       `gorm:"primaryKey"`
	UserID       uint       `gorm:"not null;uniqueIndex:idx_favorites_user_attraction,priority:1"`
	AttractionID uint       `gorm:"not null;uniqueIndex:idx_favorites_user_attraction,priority:2;index"`
	CreatedAt    time.Time  `gorm:"not null"`
	User         User       `gorm:"constraint:OnDelete:CASCADE"`
	Attraction   Attraction `gorm:"constraint:OnDelete:CASCADE"`
}

// FavoriteView is a favorite joined with its attraction
type FavoriteView struct {
	ID           uint      `json:"id"`
	AttractionID uint      `json:"attraction_id"`
	Name         string    `json:"name"`
	Country      string    `json:"country"`
	Description  *string   `json:"description"`
	Image        *string   `json:"image"`
	CreatedAt    time.Time `json:"created_at"`
}

// AddFavoriteRequest represents the favorites add payload
type AddFavoriteRequest struct {
	AttractionID uint `json:"attraction_id" validate:"required,gt=0"`
}
