package datasource

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-client/models"
)

const currentBody = `{
	"name": "London",
	"dt": 1712586600,
	"main": {"temp": 15.3, "feels_like": 14.6, "humidity": 72, "pressure": 1012},
	"wind": {"speed": 4.1, "deg": 250},
	"weather": [{"description": "light rain", "icon": "10d"}],
	"sys": {"country": "GB"}
}`

const forecastBody = `{
	"city": {"name": "London", "country": "GB"},
	"list": [
		{"dt": 1712588400, "main": {"temp": 15, "temp_min": 14.1, "temp_max": 16.2}, "weather": [{"description": "light rain", "icon": "10d"}]},
		{"dt": 1712599200, "main": {"temp": 12, "temp_min": 11.5, "temp_max": 12.4}, "weather": []}
	]
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*OpenWeatherMapProvider, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewOpenWeatherMapProvider("test-key", WithBaseURL(server.URL), WithLogger(discardLogger())), server
}

func TestFetchCurrent_ByCity(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "London", q.Get("q"))
		assert.Equal(t, "test-key", q.Get("appid"))
		assert.Equal(t, "metric", q.Get("units"))
		assert.False(t, q.Has("lat"))
		w.Write([]byte(currentBody))
	})

	got, err := p.FetchCurrent(context.Background(), models.CityQuery("London"))

	require.NoError(t, err)
	assert.Equal(t, models.WeatherSnapshot{
		Name:        "London",
		Country:     "GB",
		Temperature: 15.3,
		FeelsLike:   14.6,
		Humidity:    72,
		WindSpeed:   4.1,
		Pressure:    1012,
		Description: "light rain",
		Icon:        "10d",
		ObservedAt:  time.Unix(1712586600, 0),
	}, got)
}

func TestFetchCurrent_ByCoords(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "51.5074", q.Get("lat"))
		assert.Equal(t, "-0.1278", q.Get("lon"))
		assert.False(t, q.Has("q"))
		assert.Equal(t, "metric", q.Get("units"))
		w.Write([]byte(currentBody))
	})

	got, err := p.FetchCurrent(context.Background(), models.CoordsQuery(51.5074, -0.1278))

	require.NoError(t, err)
	assert.Equal(t, "London", got.Name)
}

func TestFetchForecast(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Write([]byte(forecastBody))
	})

	got, err := p.FetchForecast(context.Background(), models.CityQuery("London"))

	require.NoError(t, err)
	assert.Equal(t, "London", got.City)
	assert.Equal(t, "GB", got.Country)
	require.Len(t, got.Samples, 2)
	assert.Equal(t, models.ForecastSample{
		Time:        time.Unix(1712588400, 0),
		Temperature: 15,
		TempMin:     14.1,
		TempMax:     16.2,
		Description: "light rain",
		Icon:        "10d",
	}, got.Samples[0])
	assert.Empty(t, got.Samples[1].Icon, "missing weather array leaves icon empty")
}

func TestFetch_NotFound(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	})

	_, err := p.FetchCurrent(context.Background(), models.CityQuery("Atlantis"))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "city not found", apiErr.Message)
}

func TestFetch_BadJSON(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"list": "nope"`))
	})

	_, err := p.FetchForecast(context.Background(), models.CityQuery("London"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse response")
}

func TestFetch_ServerErrorIsAPIError(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := p.FetchCurrent(context.Background(), models.CityQuery("London"))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestBreakerClient_OpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewBreakerClient("test", &http.Client{}, BreakerSettings{MaxFailures: 2, Cooldown: time.Minute}, discardLogger())
	p := NewOpenWeatherMapProvider("k", WithBaseURL(server.URL), WithClient(client), WithLogger(discardLogger()))

	for i := 0; i < 2; i++ {
		_, err := p.FetchCurrent(context.Background(), models.CityQuery("London"))
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, client.State())

	_, err := p.FetchCurrent(context.Background(), models.CityQuery("London"))

	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), calls.Load(), "open breaker must not reach the server")
}

func TestBreakerClient_ClientErrorsDoNotTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewBreakerClient("test", nil, BreakerSettings{MaxFailures: 1}, discardLogger())
	p := NewOpenWeatherMapProvider("k", WithBaseURL(server.URL), WithClient(client), WithLogger(discardLogger()))

	for i := 0; i < 3; i++ {
		_, err := p.FetchCurrent(context.Background(), models.CityQuery("Atlantis"))
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateClosed, client.State())
}

func TestBreakerClient_CancellationsDoNotTrip(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(currentBody))
	}))
	defer server.Close()

	client := NewBreakerClient("test", nil, BreakerSettings{MaxFailures: 1, Cooldown: time.Minute}, discardLogger())
	p := NewOpenWeatherMapProvider("k", WithBaseURL(server.URL), WithClient(client), WithLogger(discardLogger()))

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := p.FetchCurrent(ctx, models.CityQuery("London"))
		require.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, gobreaker.StateClosed, client.State())

	got, err := p.FetchCurrent(context.Background(), models.CityQuery("London"))

	require.NoError(t, err)
	assert.Equal(t, "London", got.Name)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetch_Canceled(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(currentBody))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.FetchCurrent(ctx, models.CityQuery("London"))

	assert.ErrorIs(t, err, context.Canceled)
}
