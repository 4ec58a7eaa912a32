package present

import (
	"time"

	"weather-client/models"
)

const (
	dateTimeLayout = "Monday, January 2, 2006 at 03:04 PM"
	dayLayout      = "Mon"
	dateLayout     = "Jan 2"
)

// Display holds every labeled field of the weather panel, already formatted.
type Display struct {
	Unit        models.Unit  `json:"unit"`
	City        string       `json:"city"`
	DateTime    string       `json:"dateTime"`
	Temperature string       `json:"temperature"`
	FeelsLike   string       `json:"feelsLike"`
	Humidity    string       `json:"humidity"`
	Wind        string       `json:"wind"`
	Pressure    string       `json:"pressure"`
	Description string       `json:"description"`
	Icon        string       `json:"icon"`
	Forecast    []DayDisplay `json:"forecast"`
}

// DayDisplay is one forecast card.
type DayDisplay struct {
	Day         string `json:"day"`
	Date        string `json:"date"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	High        string `json:"high"`
	Low         string `json:"low"`
}

// Render formats a snapshot for the given unit. It never touches the network;
// switching units is a second Render of the same snapshot.
func Render(snap models.Snapshot, unit models.Unit) Display {
	cur := snap.Current

	city := cur.Name
	if cur.Country != "" {
		city += ", " + cur.Country
	}

	d := Display{
		Unit:        unit,
		City:        city,
		DateTime:    formatDateTime(cur.ObservedAt),
		Temperature: Temperature(cur.Temperature, unit),
		FeelsLike:   Temperature(cur.FeelsLike, unit),
		Humidity:    Humidity(cur.Humidity),
		Wind:        Wind(cur.WindSpeed, unit),
		Pressure:    Pressure(cur.Pressure),
		Description: cur.Description,
		Icon:        Icon(cur.Icon),
		Forecast:    make([]DayDisplay, 0, len(snap.Days)),
	}

	for _, day := range snap.Days {
		d.Forecast = append(d.Forecast, DayDisplay{
			Day:         day.Date.Format(dayLayout),
			Date:        day.Date.Format(dateLayout),
			Icon:        Icon(day.Icon),
			Description: day.Description,
			High:        Degrees(day.High, unit),
			Low:         Degrees(day.Low, unit),
		})
	}
	return d
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateTimeLayout)
}
