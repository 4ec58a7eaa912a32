// Package api exposes one weather session over a small JSON HTTP interface so a
// browser page can drive it.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"

	"weather-client/geo"
	"weather-client/models"
	"weather-client/session"
)

const maxRequestBodySize = 1 << 16

// Server represents the API server
type Server struct {
	session *session.Session
	state   *StateStore
	logger  *slog.Logger
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new API server for sess. state must be the View the
// session was created with.
func NewServer(sess *session.Session, state *StateStore, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		session: sess,
		state:   state,
		logger:  logger,
		router:  chi.NewRouter(),
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(requestID)
	s.router.Use(s.requestLogger)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealthCheck)
		r.Get("/weather", s.handleGetWeather)
		r.Post("/search", s.handleSearch)
		r.Post("/locate", s.handleLocate)
		r.Put("/unit", s.handleSetUnit)
	})

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler with response compression.
func (s *Server) Handler() http.Handler {
	return gzhttp.GzipHandler(s.router)
}

// Start begins the API server
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type searchRequest struct {
	City string `json:"city"`
}

type locateRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Error     string   `json:"error"`
}

type unitRequest struct {
	Unit string `json:"unit"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// handleGetWeather returns the current panel state
func (s *Server) handleGetWeather(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

// handleSearch runs a city search and returns the resulting state
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}

	err := s.session.Search(queryContext(r), req.City)
	s.respond(w, r, err)
}

// handleLocate resolves a position reported by the browser. The browser sends
// either coordinates or the failure it observed.
func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	var req locateRequest
	if !s.decode(w, r, &req) {
		return
	}

	var reported geo.Reported
	switch {
	case req.Error != "":
		reported.Failure = geo.ParseKind(req.Error)
	case req.Latitude != nil && req.Longitude != nil:
		reported.Position = geo.Position{Latitude: *req.Latitude, Longitude: *req.Longitude}
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "latitude and longitude, or error, are required",
			Kind:  "invalid_request",
		})
		return
	}

	err := s.session.LocateUsing(queryContext(r), reported)
	s.respond(w, r, err)
}

// handleSetUnit switches the display unit. No weather request is made.
func (s *Server) handleSetUnit(w http.ResponseWriter, r *http.Request) {
	var req unitRequest
	if !s.decode(w, r, &req) {
		return
	}

	unit, err := models.ParseUnit(req.Unit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "invalid_unit"})
		return
	}

	if err := s.session.SwitchUnit(r.Context(), unit); err != nil {
		// the display already switched; only the stored preference is stale
		s.logger.Warn("unit switched but not saved", "error", err, "request_id", getRequestID(r.Context()))
	}
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

type healthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	CacheHits   int    `json:"cacheHits"`
	CacheMisses int    `json:"cacheMisses"`
	SnapshotAge string `json:"snapshotAge,omitempty"`
}

// handleHealthCheck provides a simple health check endpoint with the snapshot
// cache counters
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	hits, misses, age, ok := s.session.CacheStats()
	resp := healthResponse{
		Status:      "ok",
		Timestamp:   time.Now().Format(time.RFC3339),
		CacheHits:   hits,
		CacheMisses: misses,
	}
	if ok {
		resp.SnapshotAge = age.Round(time.Second).String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// respond writes the state after a query, or the error it ended with.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, s.state.Snapshot())
		return
	}

	if errors.Is(err, session.ErrSuperseded) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Kind: "superseded"})
		return
	}

	var sessErr *session.Error
	if !errors.As(err, &sessErr) {
		s.logger.Error("unexpected session error", "error", err, "request_id", getRequestID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Kind: "internal"})
		return
	}

	writeJSON(w, statusFor(sessErr.Kind), errorResponse{
		Error: sessErr.Message(),
		Kind:  string(sessErr.Kind),
	})
}

func statusFor(kind session.ErrorKind) int {
	if kind == session.KindNetworkOrAPI {
		return http.StatusBadGateway
	}
	return http.StatusBadRequest
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("invalid request body: %v", err),
			Kind:  "invalid_request",
		})
		return false
	}
	return true
}

// queryContext detaches a query from the request so a dropped connection does
// not cancel it. Newer queries still cancel it through the session.
func queryContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

type ctxKey struct{}

const requestIDHeader = "X-Request-ID"

// requestID takes the caller's X-Request-ID or generates one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func getRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", getRequestID(r.Context()),
		)
	})
}
