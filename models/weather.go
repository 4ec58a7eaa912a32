package models

import (
	"time"
)

// WeatherSnapshot represents the current conditions returned by the weather API.
// Values are metric: Celsius, m/s and hPa.
type WeatherSnapshot struct {
	Name        string    `json:"name"`
	Country     string    `json:"country"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feelsLike"`
	Humidity    int       `json:"humidity"`
	WindSpeed   float64   `json:"windSpeed"`
	Pressure    int       `json:"pressure"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	ObservedAt  time.Time `json:"observedAt"`
}

// Snapshot pairs the current conditions with the forecast of the same query.
// It is replaced wholesale on every successful query.
type Snapshot struct {
	Query     Query           `json:"query"`
	Current   WeatherSnapshot `json:"current"`
	Forecast  ForecastData    `json:"forecast"`
	Days      []ForecastEntry `json:"days"`
	FetchedAt time.Time       `json:"fetchedAt"`
}
