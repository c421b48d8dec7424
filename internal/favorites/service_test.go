package favorites

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travel-snapshot/travel-api/internal/models"
	"github.com/travel-snapshot/travel-api/internal/store"
	"github.com/travel-snapshot/travel-api/internal/store/storetest"
	apperrors "github.com/travel-snapshot/travel-api/pkg/errors"
)

type fixture struct {
	svc   *Service
	store *store.Store
	alice uint
	bob   uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := storetest.New(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ctx := context.Background()
	alice := &models.User{Email: "alice@x.com", PasswordHash: "h"}
	bob := &models.User{Email: "bob@x.com", PasswordHash: "h"}
	require.NoError(t, s.CreateUser(ctx, alice))
	require.NoError(t, s.CreateUser(ctx, bob))

	return &fixture{svc: NewService(s, logger), store: s, alice: alice.ID, bob: bob.ID}
}

func (f *fixture) attraction(t *testing.T, name string) *models.Attraction {
	t.Helper()
	a := &models.Attraction{Country: "Japan", Name: name, Lat: 35, Lng: 139}
	a.SetImages([]string{"https://img/" + name + ".jpg"})
	require.NoError(t, f.store.CreateAttraction(context.Background(), a))
	return a
}

func TestAdd_ReturnsJoinedView(t *testing.T) {
	f := newFixture(t)
	a := f.attraction(t, "Shrine X")

	view, err := f.svc.Add(context.Background(), f.alice, a.ID)
	require.NoError(t, err)
	assert.NotZero(t, view.ID)
	assert.Equal(t, a.ID, view.AttractionID)
	assert.Equal(t, "Shrine X", view.Name)
	assert.Equal(t, "Japan", view.Country)
	require.NotNil(t, view.Image)
	assert.Equal(t, "https://img/Shrine X.jpg", *view.Image)
	assert.WithinDuration(t, time.Now().UTC(), view.CreatedAt, time.Minute)
}

func TestAdd_DuplicateIsConflictAndKeepsOneRow(t *testing.T) {
	f := newFixture(t)
	a := f.attraction(t, "Shrine X")
	ctx := context.Background()

	_, err := f.svc.Add(ctx, f.alice, a.ID)
	require.NoError(t, err)

	_, err = f.svc.Add(ctx, f.alice, a.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeConflict))

	n, err := f.store.CountFavorites(ctx, f.alice, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Another user may favorite the same attraction
	_, err = f.svc.Add(ctx, f.bob, a.ID)
	assert.NoError(t, err)
}

func TestAdd_UnknownAttraction(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Add(context.Background(), f.alice, 999)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	_, err = f.svc.Add(context.Background(), f.alice, 0)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestList_ScopedToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.attraction(t, "A")
	second := f.attraction(t, "B")
	bobs := f.attraction(t, "C")

	_, err := f.svc.Add(ctx, f.alice, first.ID)
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, f.alice, second.ID)
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, f.bob, bobs.ID)
	require.NoError(t, err)

	list, err := f.svc.List(ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Newest first
	assert.Equal(t, second.ID, list[0].AttractionID)
	assert.Equal(t, first.ID, list[1].AttractionID)
	for _, v := range list {
		assert.NotEqual(t, bobs.ID, v.AttractionID)
	}
}

func TestList_EmptyIsNotNil(t *testing.T) {
	f := newFixture(t)

	list, err := f.svc.List(context.Background(), f.alice)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestRemove_OnlyOwnRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.attraction(t, "Shrine X")

	_, err := f.svc.Add(ctx, f.alice, a.ID)
	require.NoError(t, err)

	err = f.svc.Remove(ctx, f.bob, a.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	n, err := f.store.CountFavorites(ctx, f.alice, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "another user's remove must not touch the row")

	require.NoError(t, f.svc.Remove(ctx, f.alice, a.ID))

	err = f.svc.Remove(ctx, f.alice, a.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestAttractionDeleteCascadesToFavorites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.attraction(t, "Shrine X")

	_, err := f.svc.Add(ctx, f.alice, a.ID)
	require.NoError(t, err)
	require.NoError(t, f.store.DeleteAttraction(ctx, a.ID))

	list, err := f.svc.List(ctx, f.alice)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAdd_ConcurrentSameFavoriteKeepsOneRow(t *testing.T) {
	f := newFixture(t)
	a := f.attraction(t, "Shrine X")
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Add(ctx, f.alice, a.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperrors.Is(err, apperrors.CodeConflict), err.Error())
	}
	assert.Equal(t, 1, succeeded)

	n, err := f.store.CountFavorites(ctx, f.alice, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAdd_UniqueIndexRejectsDuplicateInsert(t *testing.T) {
	f := newFixture(t)
	a := f.attraction(t, "Shrine X")
	ctx := context.Background()

	_, err := f.svc.Add(ctx, f.alice, a.ID)
	require.NoError(t, err)

	// Skips the existence check and relies on the index alone
	err = f.store.CreateFavorite(ctx, &models.Favorite{UserID: f.alice, AttractionID: a.ID})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}
