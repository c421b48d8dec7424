package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/travel-snapshot/travel-api/internal/auth"
	"github.com/travel-snapshot/travel-api/internal/catalog"
	"github.com/travel-snapshot/travel-api/internal/config"
	"github.com/travel-snapshot/travel-api/internal/favorites"
	"github.com/travel-snapshot/travel-api/internal/middleware"
	"github.com/travel-snapshot/travel-api/internal/models"
	"github.com/travel-snapshot/travel-api/internal/store/storetest"
	"github.com/travel-snapshot/travel-api/internal/upstream"
	apperrors "github.com/travel-snapshot/travel-api/pkg/errors"
)

type fakeImages struct{ urls []string }

func (f fakeImages) Search(_ context.Context, _ string, limit int) []string {
	if len(f.urls) > limit {
		return f.urls[:limit]
	}
	return append([]string{}, f.urls...)
}

type fakeCountries struct{}

func (fakeCountries) Lookup(_ context.Context, name string) (*models.CountryInfo, error) {
	switch name {
	case "Japan":
		return &models.CountryInfo{
			Name:       "Japan",
			Capital:    "Tokyo",
			Flag:       "https://flagcdn.com/jp.svg",
			Currency:   "JPY",
			Languages:  []string{"Japanese"},
			LatLng:     []float64{36, 138},
			Region:     "Asia",
			Population: 125836021,
		}, nil
	case "Down":
		return nil, fmt.Errorf("%w: restcountries returned 502", upstream.ErrUnavailable)
	default:
		return nil, upstream.ErrNotFound
	}
}

type fakeWeather struct{ err error }

func (f fakeWeather) Current(_ context.Context, _, _ float64) (*models.CurrentWeather, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.CurrentWeather{
		Temperature:   21.5,
		WindSpeed:     10.2,
		WindDirection: 180,
		ObservedAt:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		WeatherCode:   3,
	}, nil
}

type testServer struct {
	app *fiber.App
}

func newTestServer(t *testing.T, weather upstream.WeatherProvider) *testServer {
	t.Helper()
	return newTestServerWith(t, nil, func(d *Dependencies) {
		if weather != nil {
			d.Weather = weather
		}
	})
}

func newTestServerWith(t *testing.T, configure func(*config.Config), override func(*Dependencies)) *testServer {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		JWT:           config.JWTConfig{Secret: "test-secret", TTL: 6 * time.Hour, Issuer: "travel-api"},
		Observability: config.ObservabilityConfig{MetricsPath: "/metrics"},
	}
	if configure != nil {
		configure(cfg)
	}

	s := storetest.New(t)
	creds, err := auth.NewCredentialStore(s, bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(&cfg.JWT)
	require.NoError(t, err)
	gateway := auth.NewGateway(creds, tokens, logger)

	images := fakeImages{urls: []string{"https://img/1.jpg", "https://img/2.jpg"}}
	deps := &Dependencies{
		Store:     s,
		Gateway:   gateway,
		Catalog:   catalog.NewService(s, images, logger),
		Favorites: favorites.NewService(s, logger),
		Images:    images,
		Countries: fakeCountries{},
		Weather:   fakeWeather{},
	}
	if override != nil {
		override(deps)
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger)})
	Setup(app, cfg, logger, middleware.NewManagerWithRedis(cfg, gateway, nil, logger), deps)

	return &testServer{app: app}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func errorOf(t *testing.T, raw []byte) (apperrors.ErrorCode, string) {
	t.Helper()
	body := decode[apperrors.ErrorResponse](t, raw)
	return body.Error.Code, body.Error.Message
}

func (s *testServer) registerAndLogin(t *testing.T, email string) (uint, string) {
	t.Helper()
	creds := models.CredentialsRequest{Email: email, Password: "pw"}

	status, raw := s.do(t, http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, status, string(raw))
	reg := decode[models.RegisterResponse](t, raw)

	status, raw = s.do(t, http.MethodPost, "/auth/login", "", creds)
	require.Equal(t, http.StatusOK, status, string(raw))
	tok := decode[models.TokenResponse](t, raw)

	return reg.UserID, tok.AccessToken
}

func TestRoot(t *testing.T) {
	s := newTestServer(t, nil)

	status, raw := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"Backend is running"}`, string(raw))

	status, _ = s.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, nil)

	userID, token := s.registerAndLogin(t, "a@x.com")
	assert.NotZero(t, userID)

	status, raw := s.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, userID, decode[models.MeResponse](t, raw).UserID)

	status, _ = s.do(t, http.MethodPost, "/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, raw = s.do(t, http.MethodPost, "/auth/login", "", models.CredentialsRequest{Email: "a@x.com", Password: "pw"})
	require.Equal(t, http.StatusOK, status)
	tok := decode[models.TokenResponse](t, raw)
	assert.Equal(t, "bearer", tok.TokenType)
	assert.WithinDuration(t, time.Now().Add(6*time.Hour), tok.ExpiresAt, time.Minute)
}

func TestRegister_Duplicate(t *testing.T) {
	s := newTestServer(t, nil)
	s.registerAndLogin(t, "a@x.com")

	status, raw := s.do(t, http.MethodPost, "/auth/register", "", models.CredentialsRequest{Email: "a@x.com", Password: "other"})
	assert.Equal(t, http.StatusConflict, status)
	code, _ := errorOf(t, raw)
	assert.Equal(t, apperrors.CodeConflict, code)
}

func TestRegister_Validation(t *testing.T) {
	s := newTestServer(t, nil)

	status, raw := s.do(t, http.MethodPost, "/auth/register", "", models.CredentialsRequest{Email: "not-an-email", Password: "pw"})
	assert.Equal(t, http.StatusBadRequest, status)
	code, msg := errorOf(t, raw)
	assert.Equal(t, apperrors.CodeValidation, code)
	assert.Contains(t, msg, "email")

	// 40 runes but 80 bytes, past bcrypt's limit
	status, raw = s.do(t, http.MethodPost, "/auth/register", "", models.CredentialsRequest{Email: "b@x.com", Password: strings.Repeat("é", 40)})
	assert.Equal(t, http.StatusBadRequest, status, string(raw))
	code, msg = errorOf(t, raw)
	assert.Equal(t, apperrors.CodeValidation, code)
	assert.Contains(t, msg, "72 bytes")

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin_FailuresLookAlike(t *testing.T) {
	s := newTestServer(t, nil)
	s.registerAndLogin(t, "a@x.com")

	wrongStatus, wrongRaw := s.do(t, http.MethodPost, "/auth/login", "", models.CredentialsRequest{Email: "a@x.com", Password: "nope"})
	unknownStatus, unknownRaw := s.do(t, http.MethodPost, "/auth/login", "", models.CredentialsRequest{Email: "b@x.com", Password: "pw"})

	assert.Equal(t, http.StatusUnauthorized, wrongStatus)
	assert.Equal(t, wrongStatus, unknownStatus)

	wrongCode, wrongMsg := errorOf(t, wrongRaw)
	unknownCode, unknownMsg := errorOf(t, unknownRaw)
	assert.Equal(t, apperrors.CodeInvalidCredentials, wrongCode)
	assert.Equal(t, wrongCode, unknownCode)
	assert.Equal(t, wrongMsg, unknownMsg)
}

func TestTokenValidate(t *testing.T) {
	s := newTestServer(t, nil)
	userID, token := s.registerAndLogin(t, "a@x.com")

	status, raw := s.do(t, http.MethodGet, "/auth/token/validate", token, nil)
	require.Equal(t, http.StatusOK, status)
	valid := decode[models.TokenValidity](t, raw)
	assert.True(t, valid.Valid)
	assert.Equal(t, userID, valid.UserID)
	require.NotNil(t, valid.ExpiresAt)

	status, raw = s.do(t, http.MethodGet, "/auth/token/validate", "garbage", nil)
	require.Equal(t, http.StatusOK, status)
	invalid := decode[models.TokenValidity](t, raw)
	assert.False(t, invalid.Valid)
	assert.Equal(t, "Invalid token", invalid.Reason)

	status, raw = s.do(t, http.MethodGet, "/auth/token/validate", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, decode[models.TokenValidity](t, raw).Valid)
}

func TestAttractions(t *testing.T) {
	s := newTestServer(t, nil)
	req := map[string]interface{}{"country": "Japan", "name": "Shrine X", "lat": 35.0, "lng": 139.0}

	status, raw := s.do(t, http.MethodPost, "/attractions/", "", req)
	require.Equal(t, http.StatusCreated, status, string(raw))
	created := decode[models.AddAttractionResponse](t, raw)
	assert.True(t, created.Created)

	status, raw = s.do(t, http.MethodPost, "/attractions/", "", req)
	require.Equal(t, http.StatusOK, status)
	again := decode[models.AddAttractionResponse](t, raw)
	assert.False(t, again.Created)
	assert.Equal(t, created.ID, again.ID)

	status, raw = s.do(t, http.MethodGet, "/attractions/Japan", "", nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[models.CountryAttractionsResponse](t, raw)
	require.Len(t, list.Attractions, 1)
	assert.Equal(t, []string{"https://img/1.jpg", "https://img/2.jpg"}, list.Attractions[0].Images)

	status, raw = s.do(t, http.MethodGet, "/attractions/Atlantis", "", nil)
	require.Equal(t, http.StatusOK, status)
	empty := decode[models.CountryAttractionsResponse](t, raw)
	assert.Empty(t, empty.Attractions)
	assert.Equal(t, catalog.MsgNoneYet, empty.Message)

	path := fmt.Sprintf("/attractions/%d", created.ID)
	status, _ = s.do(t, http.MethodDelete, path, "", nil)
	assert.Equal(t, http.StatusOK, status)
	status, raw = s.do(t, http.MethodDelete, path, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	code, _ := errorOf(t, raw)
	assert.Equal(t, apperrors.CodeNotFound, code)
}

func TestAttractions_Validation(t *testing.T) {
	s := newTestServer(t, nil)

	status, _ := s.do(t, http.MethodPost, "/attractions/", "", map[string]interface{}{"country": "Japan", "name": "X"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/attractions/", "", map[string]interface{}{"country": "Japan", "name": "X", "lat": 95.0, "lng": 0.0})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodDelete, "/attractions/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestFavoritesFlow(t *testing.T) {
	s := newTestServer(t, nil)
	_, alice := s.registerAndLogin(t, "alice@x.com")
	_, bob := s.registerAndLogin(t, "bob@x.com")

	status, raw := s.do(t, http.MethodPost, "/attractions/", "",
		map[string]interface{}{"country": "Japan", "name": "Shrine X", "lat": 35.0, "lng": 139.0})
	require.Equal(t, http.StatusCreated, status)
	attraction := decode[models.AddAttractionResponse](t, raw)

	status, raw = s.do(t, http.MethodPost, "/favorites/", alice, models.AddFavoriteRequest{AttractionID: attraction.ID})
	require.Equal(t, http.StatusCreated, status, string(raw))
	view := decode[models.FavoriteView](t, raw)
	assert.Equal(t, "Shrine X", view.Name)
	assert.Equal(t, "Japan", view.Country)

	status, raw = s.do(t, http.MethodPost, "/favorites/", alice, models.AddFavoriteRequest{AttractionID: attraction.ID})
	assert.Equal(t, http.StatusConflict, status)
	code, _ := errorOf(t, raw)
	assert.Equal(t, apperrors.CodeConflict, code)

	// Path form used by older clients
	status, _ = s.do(t, http.MethodPost, fmt.Sprintf("/favorites/%d", attraction.ID), bob, nil)
	assert.Equal(t, http.StatusCreated, status)

	status, _ = s.do(t, http.MethodPost, "/favorites/", alice, models.AddFavoriteRequest{AttractionID: 999})
	assert.Equal(t, http.StatusNotFound, status)

	status, raw = s.do(t, http.MethodGet, "/favorites/", alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.FavoriteView](t, raw), 1)

	path := fmt.Sprintf("/favorites/%d", attraction.ID)
	status, _ = s.do(t, http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, raw = s.do(t, http.MethodGet, "/favorites/", alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(raw))

	// Bob's favorite is untouched by Alice's delete
	status, raw = s.do(t, http.MethodGet, "/favorites/", bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.FavoriteView](t, raw), 1)
}

func TestFavorites_RequireToken(t *testing.T) {
	s := newTestServer(t, nil)

	status, raw := s.do(t, http.MethodGet, "/favorites/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	code, _ := errorOf(t, raw)
	assert.Equal(t, apperrors.CodeUnauthenticated, code)

	status, _ = s.do(t, http.MethodGet, "/favorites/", "forged.token.value", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestImages(t *testing.T) {
	s := newTestServer(t, nil)

	status, raw := s.do(t, http.MethodGet, "/images/Kyoto", "", nil)
	require.Equal(t, http.StatusOK, status)
	resp := decode[models.ImagesResponse](t, raw)
	assert.Equal(t, "Kyoto", resp.Query)
	assert.Len(t, resp.Images, 2)

	status, raw = s.do(t, http.MethodGet, "/images/Kyoto?per_page=1", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[models.ImagesResponse](t, raw).Images, 1)

	for _, bad := range []string{"0", "31", "abc"} {
		status, _ = s.do(t, http.MethodGet, "/images/Kyoto?per_page="+bad, "", nil)
		assert.Equal(t, http.StatusBadRequest, status, bad)
	}
}

func TestLocation(t *testing.T) {
	s := newTestServer(t, nil)

	status, raw := s.do(t, http.MethodGet, "/location/Japan", "", nil)
	require.Equal(t, http.StatusOK, status)
	info := decode[models.CountryInfo](t, raw)
	assert.Equal(t, "Tokyo", info.Capital)
	assert.Equal(t, "JPY", info.Currency)

	status, raw = s.do(t, http.MethodGet, "/location/Narnia", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	code, _ := errorOf(t, raw)
	assert.Equal(t, apperrors.CodeNotFound, code)

	status, raw = s.do(t, http.MethodGet, "/location/Down", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	code, _ = errorOf(t, raw)
	assert.Equal(t, apperrors.CodeUpstreamUnavailable, code)
}

func TestWeather(t *testing.T) {
	s := newTestServer(t, nil)

	status, raw := s.do(t, http.MethodGet, "/weather/?lat=35.5&lng=139.7", "", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.JSONEq(t, `{
		"latitude": 35.5,
		"longitude": 139.7,
		"weather": {
			"temperature": 21.5,
			"windspeed": 10.2,
			"winddirection": 180,
			"time": "2024-03-01T12:00:00Z",
			"weathercode": 3
		}
	}`, string(raw))

	status, _ = s.do(t, http.MethodGet, "/weather/?lng=139.7", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = s.do(t, http.MethodGet, "/weather/?lat=91&lng=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	down := newTestServer(t, fakeWeather{err: upstream.ErrUnavailable})
	status, _ = down.do(t, http.MethodGet, "/weather/?lat=1&lng=2", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)

	status, raw := s.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	code, _ := errorOf(t, raw)
	assert.Equal(t, apperrors.CodeNotFound, code)
}

func TestReadyz_ReportsOpenUpstreamCircuit(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(broken.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	countries := upstream.NewCountryClient(&config.CountriesConfig{BaseURL: broken.URL}, &config.UpstreamConfig{
		Timeout:             time.Second,
		BreakerMaxFailures:  1,
		BreakerResetTimeout: time.Minute,
	}, logger)

	s := newTestServerWith(t, nil, func(d *Dependencies) { d.Countries = countries })

	status, raw := s.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, status)
	before := decode[map[string]interface{}](t, raw)
	assert.Equal(t, false, before["degraded"])

	req := httptest.NewRequest(http.MethodGet, "/location/Japan", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, retryAfterSeconds, resp.Header.Get(fiber.HeaderRetryAfter))

	status, raw = s.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, status)
	after := decode[map[string]interface{}](t, raw)
	assert.Equal(t, true, after["degraded"])
	upstreams, ok := after["upstreams"].(map[string]interface{})
	require.True(t, ok)
	restcountries, ok := upstreams["restcountries"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "OPEN", restcountries["state"])
}

func TestPprof_OffUnlessEnabled(t *testing.T) {
	s := newTestServer(t, nil)
	status, _ := s.do(t, http.MethodGet, "/debug/pprof/", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	enabled := newTestServerWith(t, func(cfg *config.Config) { cfg.Server.EnablePprof = true }, nil)
	status, _ = enabled.do(t, http.MethodGet, "/debug/pprof/", "", nil)
	assert.Equal(t, http.StatusOK, status)
}
