package console

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-client/datasource"
	"weather-client/geo"
	"weather-client/models"
	"weather-client/prefs"
	"weather-client/present"
	"weather-client/session"
)

type stubSource struct {
	calls atomic.Int32
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) FetchCurrent(_ context.Context, q models.Query) (models.WeatherSnapshot, error) {
	s.calls.Add(1)
	if q.City == "Atlantis" {
		return models.WeatherSnapshot{}, &datasource.APIError{StatusCode: 404, Message: "city not found"}
	}
	name := q.City
	if q.ByCoords() {
		name = "Paris"
	}
	return models.WeatherSnapshot{
		Name:        name,
		Country:     "FR",
		Temperature: 20,
		FeelsLike:   19.5,
		Humidity:    40,
		WindSpeed:   3,
		Pressure:    1020,
		Description: "clear sky",
		Icon:        "01d",
		ObservedAt:  time.Date(2024, 6, 3, 14, 5, 0, 0, time.UTC),
	}, nil
}

func (s *stubSource) FetchForecast(_ context.Context, q models.Query) (models.ForecastData, error) {
	s.calls.Add(1)
	return models.ForecastData{
		City: q.City,
		Samples: []models.ForecastSample{
			{Time: time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC), TempMax: 22, TempMin: 18, Description: "clear sky", Icon: "01d"},
			{Time: time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC), TempMax: 17, TempMin: 14, Description: "few clouds", Icon: "02n"},
		},
	}, nil
}

func newConsole(t *testing.T, opts ...session.Option) (*session.Session, *stubSource, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	src := &stubSource{}
	opts = append(opts, session.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	sess := session.New(src, prefs.NewMemory(), NewView(out), opts...)
	return sess, src, out
}

func TestRun_SearchAndShow(t *testing.T) {
	sess, src, out := newConsole(t)

	err := Run(context.Background(), sess, strings.NewReader("Paris\nshow\nquit\n"), out)

	require.NoError(t, err)
	text := out.String()
	assert.Contains(t, text, "Loading...")
	assert.Equal(t, 2, strings.Count(text, "Paris, FR"), "rendered once, shown once")
	assert.Contains(t, text, "Monday, June 3, 2024 at 02:05 PM")
	assert.Contains(t, text, "20°C  clear sky  [fas fa-sun]")
	assert.Contains(t, text, "Wind 3 m/s")
	assert.Contains(t, text, "22° / 18°")
	assert.Contains(t, text, "Tue")
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestRun_UnitSwitchDoesNotFetch(t *testing.T) {
	sess, src, out := newConsole(t)

	err := Run(context.Background(), sess, strings.NewReader("search Paris\nunit f\n"), out)

	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
	assert.Contains(t, out.String(), "Units: °F")
	assert.Contains(t, out.String(), "68°F  clear sky")
	assert.Contains(t, out.String(), "Wind 6.7 mph")
	assert.Equal(t, models.Fahrenheit, sess.Unit())
}

func TestRun_Errors(t *testing.T) {
	sess, src, out := newConsole(t)

	err := Run(context.Background(), sess, strings.NewReader("search\nAtlantis\nunit kelvin\nlocate\n"), out)

	require.NoError(t, err)
	text := out.String()
	assert.Contains(t, text, "Error: Please enter a city name")
	assert.Contains(t, text, "Error: City not found or API error")
	assert.Contains(t, text, "Usage: unit c|f")
	assert.Contains(t, text, "Error: Geolocation not supported")
	assert.LessOrEqual(t, src.calls.Load(), int32(2))
}

func TestRun_Locate(t *testing.T) {
	locator := geo.Reported{Position: geo.Position{Latitude: 48.85, Longitude: 2.35}}
	sess, _, out := newConsole(t, session.WithLocator(locator))

	err := Run(context.Background(), sess, strings.NewReader("locate\n"), out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Location: Paris")
	assert.Contains(t, out.String(), "Paris, FR")
}

func TestRun_ShowBeforeSearch(t *testing.T) {
	sess, _, out := newConsole(t)

	require.NoError(t, Run(context.Background(), sess, strings.NewReader("show\nhelp\n"), out))

	assert.Contains(t, out.String(), "No weather loaded yet.")
	assert.Contains(t, out.String(), "unit c|f")
}

func TestRun_StopsWhenContextDone(t *testing.T) {
	sess, src, out := newConsole(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, Run(ctx, sess, strings.NewReader("Paris\n"), out))

	assert.Zero(t, src.calls.Load())
}

func TestWriteDisplay_NoForecast(t *testing.T) {
	var buf bytes.Buffer

	writeDisplay(&buf, present.Display{City: "Nowhere", Temperature: "1°C", Description: "fog", Icon: "fas fa-smog"})

	assert.Equal(t, "\nNowhere\n1°C  fog  [fas fa-smog]\nFeels like  | Humidity  | Wind  | Pressure \n", buf.String())
}
