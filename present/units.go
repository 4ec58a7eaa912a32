// Package present turns cached snapshots into display strings for a unit preference.
package present

import (
	"fmt"
	"math"
	"strconv"

	"weather-client/models"
)

// MsToMph is the wind speed factor used for the imperial display.
const MsToMph = 2.237

// Round rounds half toward positive infinity.
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// ToFahrenheit converts a Celsius value.
func ToFahrenheit(celsius float64) float64 {
	return celsius*9/5 + 32
}

// convert returns the rounded temperature in the given unit.
func convert(celsius float64, unit models.Unit) int {
	if unit == models.Fahrenheit {
		return Round(ToFahrenheit(celsius))
	}
	return Round(celsius)
}

// Temperature formats a Celsius value as "21°C" or "70°F".
func Temperature(celsius float64, unit models.Unit) string {
	return fmt.Sprintf("%d°%s", convert(celsius, unit), unit.Symbol())
}

// Degrees formats a Celsius value without the unit letter, as on forecast cards.
func Degrees(celsius float64, unit models.Unit) string {
	return fmt.Sprintf("%d°", convert(celsius, unit))
}

// Wind formats a speed in m/s. Metric values pass through unchanged.
func Wind(metersPerSecond float64, unit models.Unit) string {
	if unit == models.Fahrenheit {
		return strconv.FormatFloat(metersPerSecond*MsToMph, 'f', 1, 64) + " mph"
	}
	return strconv.FormatFloat(metersPerSecond, 'f', -1, 64) + " m/s"
}

func Humidity(percent int) string {
	return fmt.Sprintf("%d%%", percent)
}

func Pressure(hPa int) string {
	return fmt.Sprintf("%d hPa", hPa)
}
