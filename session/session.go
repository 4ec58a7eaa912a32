// Package session coordinates one user's weather client: the two API fetches,
// the cached snapshot, the unit preference and the view.
//
// Queries may overlap. Each query gets a generation number; starting a query
// cancels the one in flight, and results of a query that is no longer the
// latest are dropped without touching the view.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"weather-client/cache"
	"weather-client/datasource"
	"weather-client/forecast"
	"weather-client/geo"
	"weather-client/models"
	"weather-client/prefs"
	"weather-client/present"
)

// Session is the state of one client. It is safe for concurrent use.
type Session struct {
	source  datasource.WeatherSource
	store   prefs.Store
	view    View
	locator geo.Locator
	cache   *cache.SnapshotCache
	logger  *slog.Logger

	mu     sync.Mutex
	unit   models.Unit
	gen    uint64
	cancel context.CancelFunc
}

// Option configures a Session.
type Option func(*Session)

// WithLocator sets the locator used by Locate. Without one, Locate reports
// that geolocation is not supported.
func WithLocator(l geo.Locator) Option {
	return func(s *Session) {
		s.locator = l
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithCache shares a snapshot cache with the caller.
func WithCache(c *cache.SnapshotCache) Option {
	return func(s *Session) {
		s.cache = c
	}
}

// New creates a session. The unit starts as Celsius until Start reads the
// stored preference.
func New(source datasource.WeatherSource, store prefs.Store, view View, opts ...Option) *Session {
	s := &Session{
		source: source,
		store:  store,
		view:   view,
		unit:   models.Celsius,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.view == nil {
		s.view = NopView{}
	}
	if s.cache == nil {
		s.cache = cache.NewSnapshotCache()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Start restores the stored unit and re-issues the last successful city, if any.
func (s *Session) Start(ctx context.Context) error {
	s.RestoreUnit(ctx)
	return s.Resume(ctx)
}

// RestoreUnit applies the stored unit preference. A missing or unreadable
// value leaves Celsius.
func (s *Session) RestoreUnit(ctx context.Context) models.Unit {
	unit := models.Celsius
	if raw, ok, err := s.store.Get(ctx, prefs.KeyUnit); err != nil {
		s.logger.Warn("failed to read unit preference", "error", err)
	} else if ok {
		if u, err := models.ParseUnit(raw); err == nil {
			unit = u
		} else {
			s.logger.Warn("ignoring stored unit preference", "value", raw)
		}
	}

	s.mu.Lock()
	s.unit = unit
	s.view.SetUnit(unit)
	s.mu.Unlock()
	return unit
}

// Resume re-issues the last successful city. It does nothing when none is
// stored or when a query has already been started on this session, so a
// user's first search is never replaced by the startup one.
func (s *Session) Resume(ctx context.Context) error {
	city, ok, err := s.store.Get(ctx, prefs.KeyLastCity)
	if err != nil {
		s.logger.Warn("failed to read last city", "error", err)
		return nil
	}
	if !ok || strings.TrimSpace(city) == "" {
		return nil
	}

	qctx, gen, idle := s.beginIfIdle(ctx)
	if !idle {
		s.logger.Debug("skipping restore of last city, a query already ran", "city", city)
		return nil
	}
	defer s.end(gen)

	s.logger.Info("restoring last city", "city", city)
	return s.resolve(qctx, gen, models.CityQuery(city))
}

// Search looks up a city typed by the user. Blank input fails with
// ErrEmptyInput before any request is made.
func (s *Session) Search(ctx context.Context, input string) error {
	city := strings.TrimSpace(input)
	if city == "" {
		return s.fail(s.currentGen(), newError(KindEmptyInput, nil))
	}
	return s.Resolve(ctx, models.CityQuery(city))
}

// Resolve fetches current conditions and forecast for q and applies both, or
// neither.
func (s *Session) Resolve(ctx context.Context, q models.Query) error {
	qctx, gen := s.begin(ctx)
	defer s.end(gen)

	return s.resolve(qctx, gen, q)
}

// Locate finds the user's position with the configured locator and resolves it.
func (s *Session) Locate(ctx context.Context) error {
	return s.LocateUsing(ctx, s.locator)
}

// LocateUsing is Locate with an explicit locator, e.g. a position reported by
// a browser.
func (s *Session) LocateUsing(ctx context.Context, l geo.Locator) error {
	if l == nil {
		return s.fail(s.currentGen(), newError(KindGeolocationUnsupported, nil))
	}

	qctx, gen := s.begin(ctx)
	defer s.end(gen)

	pos, err := l.Locate(qctx)
	if err != nil {
		if !s.isCurrent(gen) {
			return ErrSuperseded
		}
		return s.fail(gen, newError(geoErrorKind(err), err))
	}

	return s.resolve(qctx, gen, models.CoordsQuery(pos.Latitude, pos.Longitude))
}

// SwitchUnit changes the display unit, persists it and re-renders the cached
// snapshot. It never fetches.
func (s *Session) SwitchUnit(ctx context.Context, u models.Unit) error {
	if u != models.Celsius && u != models.Fahrenheit {
		return fmt.Errorf("unknown temperature unit %q", u)
	}

	s.mu.Lock()
	if u == s.unit {
		s.mu.Unlock()
		return nil
	}
	s.unit = u
	s.view.SetUnit(u)
	if snap, ok := s.cache.Get(); ok {
		s.view.Render(present.Render(snap, u))
	}
	s.mu.Unlock()

	if err := s.store.Set(ctx, prefs.KeyUnit, u.String()); err != nil {
		return fmt.Errorf("failed to persist unit: %w", err)
	}
	return nil
}

// Unit returns the active unit.
func (s *Session) Unit() models.Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unit
}

// Snapshot returns the last applied snapshot.
func (s *Session) Snapshot() (models.Snapshot, bool) {
	return s.cache.Get()
}

// Display renders the last applied snapshot in the active unit.
func (s *Session) Display() (present.Display, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.cache.Get()
	if !ok {
		return present.Display{}, false
	}
	return present.Render(snap, s.unit), true
}

// CacheStats reports the snapshot cache lookups and the age of the cached
// snapshot. ok is false while nothing has been applied.
func (s *Session) CacheStats() (hits, misses int, age time.Duration, ok bool) {
	hits, misses = s.cache.CacheStats()
	age, ok = s.cache.Age()
	return hits, misses, age, ok
}

func (s *Session) resolve(ctx context.Context, gen uint64, q models.Query) error {
	logger := s.logger.With("query_id", uuid.NewString(), "query", q.String())

	if q.ByCoords() {
		if err := q.Coords.Validate(); err != nil {
			return s.fail(gen, newError(KindNetworkOrAPI, err))
		}
	}

	start := time.Now()
	snap, err := s.fetchPair(ctx, q)
	if err != nil {
		if !s.isCurrent(gen) {
			logger.Debug("dropping failed superseded query", "error", err)
			return ErrSuperseded
		}
		logger.Warn("weather query failed", "error", err)
		return s.fail(gen, newError(KindNetworkOrAPI, err))
	}

	applied, err := s.apply(ctx, gen, snap)
	if !applied {
		logger.Debug("dropping superseded result")
		return ErrSuperseded
	}
	if err != nil {
		logger.Warn("failed to persist last city", "error", err)
	}
	logger.Info("weather updated", "city", snap.Current.Name, "days", len(snap.Days), "took", time.Since(start))
	return nil
}

// fetchPair runs both requests concurrently; the first failure cancels the other.
func (s *Session) fetchPair(ctx context.Context, q models.Query) (models.Snapshot, error) {
	var (
		current models.WeatherSnapshot
		feed    models.ForecastData
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.source.FetchCurrent(gctx, q)
		if err != nil {
			return fmt.Errorf("failed to fetch current conditions from %s: %w", s.source.Name(), err)
		}
		current = c
		return nil
	})
	g.Go(func() error {
		f, err := s.source.FetchForecast(gctx, q)
		if err != nil {
			return fmt.Errorf("failed to fetch forecast from %s: %w", s.source.Name(), err)
		}
		feed = f
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.Snapshot{}, err
	}

	return models.Snapshot{
		Query:     q,
		Current:   current,
		Forecast:  feed,
		Days:      forecast.Reduce(feed.Samples),
		FetchedAt: time.Now(),
	}, nil
}

// begin starts a new generation: cancels the previous query, shows the
// loading indicator and clears the error slot.
func (s *Session) begin(ctx context.Context) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginLocked(ctx)
}

// beginIfIdle is begin for a session that has never started a query.
func (s *Session) beginIfIdle(ctx context.Context) (context.Context, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != 0 {
		return nil, 0, false
	}
	qctx, gen := s.beginLocked(ctx)
	return qctx, gen, true
}

func (s *Session) beginLocked(ctx context.Context) (context.Context, uint64) {
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	qctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.view.SetLoading(true)
	s.view.ClearError()
	return qctx, s.gen
}

// end clears the loading indicator if gen is still the latest query. A
// superseded query leaves it to its successor.
func (s *Session) end(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return
	}
	s.view.SetLoading(false)
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// apply stores, renders and persists snap if gen is still the latest query.
// The city is written under the same lock so a superseded query can never
// overwrite the city of the one that replaced it.
func (s *Session) apply(ctx context.Context, gen uint64, snap models.Snapshot) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return false, nil
	}
	s.cache.Set(snap)
	s.view.Render(present.Render(snap, s.unit))

	city := snap.Query.City
	if snap.Query.ByCoords() {
		city = snap.Current.Name
		s.view.SetSearchText(city)
	}
	return true, s.store.Set(context.WithoutCancel(ctx), prefs.KeyLastCity, city)
}

// fail shows e unless gen has been superseded, and returns it.
func (s *Session) fail(gen uint64, e *Error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return ErrSuperseded
	}
	s.view.ShowError(e.Message())
	return e
}

func (s *Session) isCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen
}

func (s *Session) currentGen() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}
