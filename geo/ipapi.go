package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// DefaultIPAPIURL is the free ip-api.com JSON endpoint.
const DefaultIPAPIURL = "http://ip-api.com/json/"

// IPLocator approximates the position from the public IP address.
type IPLocator struct {
	url        string
	httpClient *http.Client
}

// NewIPLocator creates a locator against an ip-api.com compatible endpoint.
// timeout bounds the whole lookup; zero means no limit.
func NewIPLocator(url string, timeout time.Duration) *IPLocator {
	if url == "" {
		url = DefaultIPAPIURL
	}
	return &IPLocator{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
}

// Locate queries the endpoint and classifies every failure.
func (l *IPLocator) Locate(ctx context.Context) (Position, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url+"?fields=status,message,lat,lon,city", nil)
	if err != nil {
		return Position{}, Fail(Unknown, fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return Position{}, classify(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return Position{}, Fail(PermissionDenied, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return Position{}, Fail(PositionUnavailable, fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Position{}, classify(err)
	}

	var r ipAPIResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return Position{}, Fail(Unknown, fmt.Errorf("failed to parse response: %w", err))
	}
	if r.Status != "success" {
		return Position{}, Fail(PositionUnavailable, fmt.Errorf("lookup %s: %s", r.Status, r.Message))
	}

	return Position{Latitude: r.Lat, Longitude: r.Lon, City: r.City}, nil
}

func classify(err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return Fail(Timeout, err)
	}
	return Fail(Unknown, err)
}

var _ Locator = (*IPLocator)(nil)
