package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travel-snapshot/travel-api/internal/config"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testUpstreamConfig() *config.UpstreamConfig {
	return &config.UpstreamConfig{
		Timeout:             time.Second,
		RetryCount:          1,
		RetryWait:           time.Millisecond,
		BreakerMaxFailures:  5,
		BreakerResetTimeout: time.Minute,
	}
}

func jsonServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestImageClient_Search(t *testing.T) {
	srv := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/photos", r.URL.Path)
		assert.Equal(t, "Client-ID key-123", r.Header.Get("Authorization"))
		assert.Equal(t, "Kyoto", r.URL.Query().Get("query"))
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"results":[
			{"urls":{"regular":"https://img/1.jpg"}},
			{"urls":{"regular":""}},
			{"urls":{"regular":"https://img/2.jpg"}},
			{"urls":{"regular":"https://img/3.jpg"}}
		]}`)
	})

	client := NewImageClient(&config.UnsplashConfig{AccessKey: "key-123", BaseURL: srv.URL}, testUpstreamConfig(), quietLogger())

	images := client.Search(context.Background(), "Kyoto", 2)
	assert.Equal(t, []string{"https://img/1.jpg", "https://img/2.jpg"}, images)
}

func TestImageClient_DegradesToEmpty(t *testing.T) {
	var calls int32
	srv := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	client := NewImageClient(&config.UnsplashConfig{AccessKey: "key", BaseURL: srv.URL}, testUpstreamConfig(), quietLogger())
	images := client.Search(context.Background(), "Kyoto", 4)
	assert.NotNil(t, images)
	assert.Empty(t, images)
	// one try plus one retry
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	noKey := NewImageClient(&config.UnsplashConfig{BaseURL: srv.URL}, testUpstreamConfig(), quietLogger())
	assert.Empty(t, noKey.Search(context.Background(), "Kyoto", 4))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClampImageCount(t *testing.T) {
	assert.Equal(t, DefaultImageCount, clampImageCount(0))
	assert.Equal(t, 1, clampImageCount(1))
	assert.Equal(t, MaxImageCount, clampImageCount(500))
}

func TestImageClient_NilClientFindsNothing(t *testing.T) {
	var client *ImageClient
	assert.Empty(t, client.Search(context.Background(), "Kyoto", 4))
	assert.Empty(t, NoImages{}.Search(context.Background(), "Kyoto", 4))
}

func TestCountryClient_Lookup(t *testing.T) {
	srv := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3.1/name/South Korea", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("fullText"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{
			"name":{"common":"South Korea"},
			"capital":["Seoul"],
			"flags":{"svg":"https://flags/kr.svg","png":"https://flags/kr.png"},
			"currencies":{"KRW":{"name":"South Korean won"}},
			"languages":{"kor":"Korean"},
			"latlng":[37.0,127.5],
			"region":"Asia",
			"population":51780579
		}]`)
	})

	client := NewCountryClient(&config.CountriesConfig{BaseURL: srv.URL}, testUpstreamConfig(), quietLogger())

	info, err := client.Lookup(context.Background(), "South Korea")
	require.NoError(t, err)
	assert.Equal(t, "South Korea", info.Name)
	assert.Equal(t, "Seoul", info.Capital)
	assert.Equal(t, "https://flags/kr.svg", info.Flag)
	assert.Equal(t, "KRW", info.Currency)
	assert.Equal(t, []string{"Korean"}, info.Languages)
	assert.Equal(t, []float64{37.0, 127.5}, info.LatLng)
	assert.Equal(t, "Asia", info.Region)
	assert.Equal(t, int64(51780579), info.Population)
}

func TestCountryClient_PrimaryCurrencyIsFirstListed(t *testing.T) {
	var rc restCountry
	require.NoError(t, json.Unmarshal([]byte(`{
		"name":{"common":"Panama"},
		"currencies":{"PAB":{"name":"Panamanian balboa"},"USD":{"name":"United States dollar","symbol":"$"}}
	}`), &rc))
	assert.Equal(t, "PAB", reshapeCountry(&rc).Currency)

	require.NoError(t, json.Unmarshal([]byte(`{"currencies":{"USD":{},"PAB":{}}}`), &rc))
	assert.Equal(t, "USD", reshapeCountry(&rc).Currency)

	rc = restCountry{}
	require.NoError(t, json.Unmarshal([]byte(`{"currencies":null}`), &rc))
	assert.Empty(t, reshapeCountry(&rc).Currency)

	assert.Error(t, json.Unmarshal([]byte(`{"currencies":["USD"]}`), &rc))
}

func TestCountryClient_RegionDefaultsToUnknown(t *testing.T) {
	info := reshapeCountry(&restCountry{})
	assert.Equal(t, "Unknown", info.Region)
	assert.Empty(t, info.Capital)
	assert.NotNil(t, info.Languages)
	assert.NotNil(t, info.LatLng)
}

func TestCountryClient_Errors(t *testing.T) {
	notFound := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"status":404,"message":"Not Found"}`)
	})
	client := NewCountryClient(&config.CountriesConfig{BaseURL: notFound.URL}, testUpstreamConfig(), quietLogger())
	_, err := client.Lookup(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrNotFound)

	down := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	client = NewCountryClient(&config.CountriesConfig{BaseURL: down.URL}, testUpstreamConfig(), quietLogger())
	_, err = client.Lookup(context.Background(), "Japan")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCountryClient_TimeoutIsUnavailable(t *testing.T) {
	srv := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	cfg := testUpstreamConfig()
	cfg.Timeout = 20 * time.Millisecond
	cfg.RetryCount = 0

	client := NewCountryClient(&config.CountriesConfig{BaseURL: srv.URL}, cfg, quietLogger())
	_, err := client.Lookup(context.Background(), "Japan")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestWeatherClient_Current(t *testing.T) {
	srv := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		assert.Equal(t, "35.68", r.URL.Query().Get("latitude"))
		assert.Equal(t, "139.69", r.URL.Query().Get("longitude"))
		assert.Equal(t, "true", r.URL.Query().Get("current_weather"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"current_weather":{
			"temperature":18.4,"windspeed":7.2,"winddirection":210,
			"weathercode":3,"time":"2024-05-01T12:00"
		}}`)
	})

	client := NewWeatherClient(&config.WeatherConfig{BaseURL: srv.URL}, testUpstreamConfig(), quietLogger())

	cw, err := client.Current(context.Background(), 35.68, 139.69)
	require.NoError(t, err)
	assert.Equal(t, 18.4, cw.Temperature)
	assert.Equal(t, 7.2, cw.WindSpeed)
	assert.Equal(t, 210.0, cw.WindDirection)
	assert.Equal(t, 3, cw.WeatherCode)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), cw.ObservedAt)
}

func TestWeatherClient_Unavailable(t *testing.T) {
	empty := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{}`)
	})
	client := NewWeatherClient(&config.WeatherConfig{BaseURL: empty.URL}, testUpstreamConfig(), quietLogger())
	_, err := client.Current(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrUnavailable)

	notFound := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	client = NewWeatherClient(&config.WeatherConfig{BaseURL: notFound.URL}, testUpstreamConfig(), quietLogger())
	_, err = client.Current(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("test", 2, 10*time.Second, quietLogger())
	cb.now = func() time.Time { return now }

	boom := errors.New("boom")
	always := func(error) bool { return true }
	fail := func() error { return boom }
	ok := func() error { return nil }

	assert.ErrorIs(t, cb.Execute(fail, always), boom)
	assert.Equal(t, StateClosed, cb.GetState())
	assert.ErrorIs(t, cb.Execute(fail, always), boom)
	assert.Equal(t, StateOpen, cb.GetState())

	called := false
	err := cb.Execute(func() error { called = true; return nil }, always)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	now = now.Add(11 * time.Second)
	require.NoError(t, cb.Execute(ok, always))
	assert.Equal(t, StateClosed, cb.GetState())
	assert.Equal(t, "CLOSED", cb.GetStats()["state"])
}

func TestCircuitBreaker_IgnoresNonFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, time.Minute, quietLogger())
	notFound := func() error { return ErrNotFound }

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(notFound, func(err error) bool { return !errors.Is(err, ErrNotFound) }), ErrNotFound)
	}
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCaller_OpenCircuitIsUnavailable(t *testing.T) {
	var calls int32
	srv := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	cfg := testUpstreamConfig()
	cfg.RetryCount = 0
	cfg.BreakerMaxFailures = 1

	client := NewCountryClient(&config.CountriesConfig{BaseURL: srv.URL}, cfg, quietLogger())
	_, err := client.Lookup(context.Background(), "Japan")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = client.Lookup(context.Background(), "Japan")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
