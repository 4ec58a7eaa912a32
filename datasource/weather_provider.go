package datasource

import (
	"context"
	"fmt"

	"weather-client/models"
)

// WeatherSource fetches both halves of a snapshot for a query
type WeatherSource interface {
	// FetchCurrent fetches current conditions
	FetchCurrent(ctx context.Context, q models.Query) (models.WeatherSnapshot, error)

	// FetchForecast fetches the sub-daily forecast feed
	FetchForecast(ctx context.Context, q models.Query) (models.ForecastData, error)

	// Name returns the provider's name
	Name() string
}

// APIError is a non-success response from the weather API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error (status %d)", e.StatusCode)
}
