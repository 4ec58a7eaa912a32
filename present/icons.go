package present

// UnknownIcon is shown for codes outside the table.
const UnknownIcon = "fas fa-question"

var icons = map[string]string{
	"01d": "fas fa-sun",
	"01n": "fas fa-moon",
	"02d": "fas fa-cloud-sun",
	"02n": "fas fa-cloud-moon",
	"03d": "fas fa-cloud",
	"03n": "fas fa-cloud",
	"04d": "fas fa-cloud",
	"04n": "fas fa-cloud",
	"09d": "fas fa-cloud-rain",
	"09n": "fas fa-cloud-rain",
	"10d": "fas fa-cloud-sun-rain",
	"10n": "fas fa-cloud-moon-rain",
	"11d": "fas fa-bolt",
	"11n": "fas fa-bolt",
	"13d": "fas fa-snowflake",
	"13n": "fas fa-snowflake",
	"50d": "fas fa-smog",
	"50n": "fas fa-smog",
}

// Icon maps an OpenWeatherMap icon code to a glyph class.
func Icon(code string) string {
	if glyph, ok := icons[code]; ok {
		return glyph
	}
	return UnknownIcon
}
