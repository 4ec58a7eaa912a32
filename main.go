package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weather-client/api"
	"weather-client/config"
	"weather-client/console"
	"weather-client/datasource"
	"weather-client/geo"
	"weather-client/models"
	"weather-client/prefs"
	"weather-client/session"
)

func main() {
	// Parse command line arguments
	city := flag.String("city", "", "City to look up on startup")
	locate := flag.Bool("locate", false, "Look up the current location on startup")
	unit := flag.String("unit", "", "Temperature unit: c or f (saved for next time)")
	serve := flag.Bool("serve", false, "Serve the JSON API instead of the interactive console")
	once := flag.Bool("once", false, "Print the startup result and exit")
	flag.Parse()

	// Load configuration (.env, then environment)
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, logger, options{
		city:   *city,
		locate: *locate,
		unit:   *unit,
		serve:  *serve,
		once:   *once,
	}); err != nil {
		logger.Error("weather client stopped", "error", err)
		os.Exit(1)
	}
}

type options struct {
	city   string
	locate bool
	unit   string
	serve  bool
	once   bool
}

func run(cfg *config.Config, logger *slog.Logger, opts options) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openPrefs(cfg.PrefsPath)
	if err != nil {
		return err
	}
	defer store.Close()

	// Weather API client: one attempt per request behind a circuit breaker
	httpClient := &http.Client{Timeout: cfg.Timeout}
	breaker := datasource.NewBreakerClient("openweathermap", httpClient, datasource.BreakerSettings{
		MaxFailures: cfg.Breaker.MaxFailures,
		Cooldown:    cfg.Breaker.Cooldown,
	}, logger)
	provider := datasource.NewOpenWeatherMapProvider(cfg.APIKey,
		datasource.WithBaseURL(cfg.BaseURL),
		datasource.WithClient(breaker),
		datasource.WithLogger(logger),
	)

	var locator geo.Locator = geo.Disabled{}
	if cfg.Geo.Enabled {
		locator = geo.NewIPLocator(cfg.Geo.URL, cfg.Geo.Timeout)
	}

	if opts.serve {
		return serveAPI(ctx, cfg, logger, provider, store, locator)
	}

	view := console.NewView(os.Stdout)
	sess := session.New(provider, store, view,
		session.WithLocator(locator),
		session.WithLogger(logger),
	)

	sess.RestoreUnit(ctx)
	if opts.unit != "" {
		u, err := models.ParseUnit(opts.unit)
		if err != nil {
			return err
		}
		if err := sess.SwitchUnit(ctx, u); err != nil {
			logger.Warn("unit not saved", "error", err)
		}
	}

	// Startup query; failures are already shown by the view
	switch {
	case opts.city != "":
		_ = sess.Search(ctx, opts.city)
	case opts.locate:
		_ = sess.Locate(ctx)
	default:
		_ = sess.Resume(ctx)
	}

	if opts.once {
		return nil
	}

	fmt.Println("Type a city name, or 'help' for commands.")
	return console.Run(ctx, sess, os.Stdin, os.Stdout)
}

// serveAPI runs the HTTP surface until ctx is done.
func serveAPI(ctx context.Context, cfg *config.Config, logger *slog.Logger, source datasource.WeatherSource, store prefs.Store, locator geo.Locator) error {
	state := api.NewStateStore()
	sess := session.New(source, store, state,
		session.WithLocator(locator),
		session.WithLogger(logger),
	)
	server := api.NewServer(sess, state, cfg.ListenAddr, logger)

	// the unit is local; the last city needs the network, so it is resumed in
	// the background and skipped if a browser query comes first
	sess.RestoreUnit(ctx)
	go func() {
		if err := sess.Resume(ctx); err != nil {
			logger.Warn("could not restore last city", "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}

func openPrefs(path string) (prefs.Store, error) {
	if path == "" {
		return prefs.NewMemory(), nil
	}
	store, err := prefs.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open preferences: %w", err)
	}
	return store, nil
}
