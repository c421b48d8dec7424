package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/travel-snapshot/travel-api/internal/models"
	"github.com/travel-snapshot/travel-api/internal/store"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

var (
	// ErrDuplicateEmail is returned by Register when the email is taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrPasswordTooLong is returned by Register for passwords over
	// MaxPasswordBytes bytes.
	ErrPasswordTooLong = errors.New("password too long")
)

// CredentialStore persists users with bcrypt password hashes. Plaintext
// passwords are never stored or logged.
type CredentialStore struct {
	store *store.Store
	cost  int
	// dummyHash is compared against when the email is unknown so that both
	// login failure paths cost one bcrypt comparison.
	dummyHash []byte
}

func NewCredentialStore(s *store.Store, cost int) (*CredentialStore, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hasher: %w", err)
	}
	return &CredentialStore{store: s, cost: cost, dummyHash: dummy}, nil
}

// Register hashes the password and inserts the user. The lookup is a fast
// path; the unique index on email is what guarantees a single row.
func (c *CredentialStore) Register(ctx context.Context, email, password string) (uint, error) {
	if len(password) > MaxPasswordBytes {
		return 0, ErrPasswordTooLong
	}
	if _, err := c.store.FindUserByEmail(ctx, email); err == nil {
		return 0, ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return 0, ErrPasswordTooLong
	}
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Email: email, PasswordHash: string(hash)}
	if err := c.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return 0, ErrDuplicateEmail
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return user.ID, nil
}

// FindByEmail returns store.ErrNotFound when no user has that exact email.
func (c *CredentialStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return c.store.FindUserByEmail(ctx, email)
}

// Authenticate returns the user when the password matches. Unknown email and
// wrong password both yield ok=false.
func (c *CredentialStore) Authenticate(ctx context.Context, email, password string) (*models.User, bool, error) {
	user, err := c.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(c.dummyHash, []byte(password))
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, false, nil
	}
	return user, true, nil
}
