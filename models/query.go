package models

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// Validate checks that both values are within range.
func (c Coordinates) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid coordinates %s: %w", c, err)
	}
	return nil
}

func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// Query selects a location either by city name or by coordinates.
// Exactly one of City and Coords is set.
type Query struct {
	City   string       `json:"city,omitempty"`
	Coords *Coordinates `json:"coords,omitempty"`
}

// CityQuery returns a query by free-text city name.
func CityQuery(city string) Query {
	return Query{City: city}
}

// CoordsQuery returns a query by position.
func CoordsQuery(lat, lon float64) Query {
	return Query{Coords: &Coordinates{Latitude: lat, Longitude: lon}}
}

// ByCoords reports whether the query is a position lookup.
func (q Query) ByCoords() bool {
	return q.Coords != nil
}

func (q Query) String() string {
	if q.Coords != nil {
		return q.Coords.String()
	}
	return q.City
}
