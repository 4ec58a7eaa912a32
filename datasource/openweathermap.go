package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"weather-client/models"
)

// DefaultOpenWeatherMapURL is the base of the 2.5 API.
const DefaultOpenWeatherMapURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherMapProvider implements WeatherSource against the OpenWeatherMap
// /weather and /forecast endpoints. All values are requested in metric units.
type OpenWeatherMapProvider struct {
	apiKey  string
	baseURL string
	client  *BreakerClient
	logger  *slog.Logger
}

// OpenWeatherMapOption configures a provider.
type OpenWeatherMapOption func(*OpenWeatherMapProvider)

// WithBaseURL points the provider at another host, e.g. a test server.
func WithBaseURL(baseURL string) OpenWeatherMapOption {
	return func(p *OpenWeatherMapProvider) {
		p.baseURL = baseURL
	}
}

// WithClient replaces the default breaker-wrapped client.
func WithClient(client *BreakerClient) OpenWeatherMapOption {
	return func(p *OpenWeatherMapProvider) {
		p.client = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) OpenWeatherMapOption {
	return func(p *OpenWeatherMapProvider) {
		p.logger = logger
	}
}

// NewOpenWeatherMapProvider creates a new OpenWeatherMap provider
func NewOpenWeatherMapProvider(apiKey string, opts ...OpenWeatherMapOption) *OpenWeatherMapProvider {
	p := &OpenWeatherMapProvider{
		apiKey:  apiKey,
		baseURL: DefaultOpenWeatherMapURL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = NewBreakerClient(p.Name(), &http.Client{}, DefaultBreakerSettings(), p.logger)
	}
	return p
}

// Name returns the provider name
func (p *OpenWeatherMapProvider) Name() string {
	return "OpenWeatherMap"
}

type owmCondition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmCurrentResponse struct {
	Name string `json:"name"`
	Dt   int64  `json:"dt"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []owmCondition `json:"weather"`
	Sys     struct {
		Country string `json:"country"`
	} `json:"sys"`
}

type owmForecastResponse struct {
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp    float64 `json:"temp"`
			TempMin float64 `json:"temp_min"`
			TempMax float64 `json:"temp_max"`
		} `json:"main"`
		Weather []owmCondition `json:"weather"`
	} `json:"list"`
}

// FetchCurrent fetches current conditions for a city or position
func (p *OpenWeatherMapProvider) FetchCurrent(ctx context.Context, q models.Query) (models.WeatherSnapshot, error) {
	var response owmCurrentResponse
	if err := p.get(ctx, "weather", q, &response); err != nil {
		return models.WeatherSnapshot{}, err
	}

	cond := first(response.Weather)
	return models.WeatherSnapshot{
		Name:        response.Name,
		Country:     response.Sys.Country,
		Temperature: response.Main.Temp,
		FeelsLike:   response.Main.FeelsLike,
		Humidity:    response.Main.Humidity,
		WindSpeed:   response.Wind.Speed,
		Pressure:    response.Main.Pressure,
		Description: cond.Description,
		Icon:        cond.Icon,
		ObservedAt:  time.Unix(response.Dt, 0),
	}, nil
}

// FetchForecast fetches the 5 day / 3 hour forecast feed, in the order returned
func (p *OpenWeatherMapProvider) FetchForecast(ctx context.Context, q models.Query) (models.ForecastData, error) {
	var response owmForecastResponse
	if err := p.get(ctx, "forecast", q, &response); err != nil {
		return models.ForecastData{}, err
	}

	forecast := models.ForecastData{
		City:    response.City.Name,
		Country: response.City.Country,
		Samples: make([]models.ForecastSample, 0, len(response.List)),
	}
	for _, item := range response.List {
		cond := first(item.Weather)
		forecast.Samples = append(forecast.Samples, models.ForecastSample{
			Time:        time.Unix(item.Dt, 0),
			Temperature: item.Main.Temp,
			TempMin:     item.Main.TempMin,
			TempMax:     item.Main.TempMax,
			Description: cond.Description,
			Icon:        cond.Icon,
		})
	}
	return forecast, nil
}

// get performs one GET against endpoint and decodes a 200 response into out
func (p *OpenWeatherMapProvider) get(ctx context.Context, endpoint string, q models.Query, out any) error {
	params := url.Values{}
	if q.ByCoords() {
		params.Add("lat", strconv.FormatFloat(q.Coords.Latitude, 'f', -1, 64))
		params.Add("lon", strconv.FormatFloat(q.Coords.Longitude, 'f', -1, 64))
	} else {
		params.Add("q", q.City)
	}
	params.Add("appid", p.apiKey)
	params.Add("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/"+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	p.logger.Debug("requesting weather api", "endpoint", endpoint, "query", q.String())

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// error bodies look like {"cod":"404","message":"city not found"}
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &apiErr)
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Message}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func first(conds []owmCondition) owmCondition {
	if len(conds) == 0 {
		return owmCondition{}
	}
	return conds[0]
}

var _ WeatherSource = (*OpenWeatherMapProvider)(nil)
