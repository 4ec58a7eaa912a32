package session

import (
	"errors"
	"fmt"

	"weather-client/geo"
)

// ErrorKind identifies why a user action failed.
type ErrorKind string

const (
	KindNetworkOrAPI           ErrorKind = "network_or_api_error"
	KindGeolocationDenied      ErrorKind = "geolocation_denied"
	KindGeolocationUnavailable ErrorKind = "geolocation_unavailable"
	KindGeolocationTimeout     ErrorKind = "geolocation_timeout"
	KindGeolocationUnknown     ErrorKind = "geolocation_unknown"
	KindGeolocationUnsupported ErrorKind = "geolocation_unsupported"
	KindEmptyInput             ErrorKind = "empty_input"
)

var messages = map[ErrorKind]string{
	KindNetworkOrAPI:           "City not found or API error",
	KindGeolocationDenied:      "Location access denied",
	KindGeolocationUnavailable: "Location unavailable",
	KindGeolocationTimeout:     "Location request timed out",
	KindGeolocationUnknown:     "Unknown location error",
	KindGeolocationUnsupported: "Geolocation not supported",
	KindEmptyInput:             "Please enter a city name",
}

// Message returns the text shown to the user for kind.
func (k ErrorKind) Message() string {
	return messages[k]
}

// Error is the failure of one user action. Message is what the view shows.
type Error struct {
	Kind ErrorKind
	Err  error
}

func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the user facing text.
func (e *Error) Message() string {
	return e.Kind.Message()
}

// Is matches another *Error of the same kind, so errors.Is(err, ErrEmptyInput) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Err == nil
}

// Sentinels for errors.Is.
var (
	ErrNetworkOrAPI           = &Error{Kind: KindNetworkOrAPI}
	ErrGeolocationDenied      = &Error{Kind: KindGeolocationDenied}
	ErrGeolocationUnavailable = &Error{Kind: KindGeolocationUnavailable}
	ErrGeolocationTimeout     = &Error{Kind: KindGeolocationTimeout}
	ErrGeolocationUnknown     = &Error{Kind: KindGeolocationUnknown}
	ErrGeolocationUnsupported = &Error{Kind: KindGeolocationUnsupported}
	ErrEmptyInput             = &Error{Kind: KindEmptyInput}
)

// ErrSuperseded is returned to the caller of a query that was overtaken by a
// newer one. It is never shown on the view.
var ErrSuperseded = errors.New("query superseded by a newer one")

// KindOf returns the kind of a session error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func geoErrorKind(err error) ErrorKind {
	var geoErr *geo.Error
	if !errors.As(err, &geoErr) {
		return KindGeolocationUnknown
	}
	switch geoErr.Kind {
	case geo.PermissionDenied:
		return KindGeolocationDenied
	case geo.PositionUnavailable:
		return KindGeolocationUnavailable
	case geo.Timeout:
		return KindGeolocationTimeout
	default:
		return KindGeolocationUnknown
	}
}
