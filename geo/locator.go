// Package geo acquires the user's position. Failures are reported as *Error
// values carrying one of a fixed set of kinds.
package geo

import (
	"context"
	"fmt"
)

// Position is a located point.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city,omitempty"` // hint from the locator, may be empty
}

// Kind classifies a geolocation failure.
type Kind string

const (
	PermissionDenied    Kind = "permission_denied"
	PositionUnavailable Kind = "position_unavailable"
	Timeout             Kind = "timeout"
	Unknown             Kind = "unknown"
)

// ParseKind maps a reported failure name to a Kind. Anything unrecognised is Unknown.
func ParseKind(s string) Kind {
	switch k := Kind(s); k {
	case PermissionDenied, PositionUnavailable, Timeout:
		return k
	}
	return Unknown
}

// Error is a failed position lookup.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geolocation %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("geolocation %s", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fail returns an *Error of the given kind.
func Fail(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Locator finds the current position.
type Locator interface {
	Locate(ctx context.Context) (Position, error)
}

// Disabled is used when the user has turned location access off.
type Disabled struct{}

func (Disabled) Locate(context.Context) (Position, error) {
	return Position{}, Fail(PermissionDenied, nil)
}

// Reported replays an outcome observed elsewhere, typically a browser that ran
// the geolocation prompt and posted the result.
type Reported struct {
	Position Position
	Failure  Kind // empty on success
}

func (r Reported) Locate(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, Fail(Timeout, err)
	}
	if r.Failure != "" {
		return Position{}, Fail(r.Failure, nil)
	}
	return r.Position, nil
}

var (
	_ Locator = Disabled{}
	_ Locator = Reported{}
)
