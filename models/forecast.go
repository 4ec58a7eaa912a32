package models

import (
	"time"
)

// ForecastSample is a single point of the 3-hour forecast feed
type ForecastSample struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"` // in Celsius
	TempMin     float64   `json:"tempMin"`
	TempMax     float64   `json:"tempMax"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
}

// ForecastData represents the forecast feed for one location
type ForecastData struct {
	City    string           `json:"city"`
	Country string           `json:"country"`
	Samples []ForecastSample `json:"samples"`
}

// ForecastEntry is the representative weather of one calendar day
type ForecastEntry struct {
	Date        time.Time `json:"date"` // UTC midnight
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
}
