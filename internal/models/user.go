package models

import "time"

// User represents a registered account
type User struct {
	ID           uint      `json:"user_id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"size:255;not null;uniqueIndex:idx_users_email"` // case-sensitive, stored as given
	PasswordHash string    `json:"-" gorm:"size:255;not null"`                                 // bcrypt hash (never in JSON)
	CreatedAt    time.Time `json:"created_at"`
}

// CredentialsRequest is the body of register and login
type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

// RegisterResponse represents registration response
type RegisterResponse struct {
	UserID  uint   `json:"user_id"`
	Message string `json:"message"`
}

// TokenResponse represents login response
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// MeResponse identifies the caller of a protected endpoint
type MeResponse struct {
	UserID uint `json:"user_id"`
}

// TokenValidity is the result of a token introspection. It never signals an
// error; an unusable token is reported through Valid and Reason.
type TokenValidity struct {
	Valid     bool       `json:"valid"`
	UserID    uint       `json:"user_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}
