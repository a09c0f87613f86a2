package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultGeocodeURL  = "https://nominatim.openstreetmap.org/search"
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast"

	geocodeUserAgent = "docuchat-backend/1.0"
)

// weatherCodes maps WMO weather interpretation codes to short descriptions.
var weatherCodes = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Slight snow fall",
	73: "Moderate snow fall",
	75: "Heavy snow fall",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// WeatherTool resolves a free-form location through Nominatim and reads
// current conditions from Open-Meteo. Neither upstream needs an API key.
type WeatherTool struct {
	client      *http.Client
	geocodeURL  string
	forecastURL string
}

func NewWeatherTool(timeout time.Duration) *WeatherTool {
	return &WeatherTool{
		client:      &http.Client{Timeout: timeout},
		geocodeURL:  defaultGeocodeURL,
		forecastURL: defaultForecastURL,
	}
}

func (t *WeatherTool) Descriptor() Descriptor {
	return Descriptor{
		Name:        "get_weather",
		Description: "Get current weather conditions for a city or place name",
		Params: []ParamSpec{
			{Name: "location", Type: "string", Description: "City or place name, e.g. 'Berlin'", Required: true},
		},
	}
}

func (t *WeatherTool) Invoke(ctx context.Context, args map[string]interface{}) Result {
	location := stringArg(args, "location")

	lat, lon, resolved, err := t.geocode(ctx, location)
	if err != nil {
		return ErrorResult{Reason: fmt.Sprintf("Could not find location '%s'", location)}
	}

	current, err := t.currentWeather(ctx, lat, lon)
	if err != nil {
		return ErrorResult{Reason: "Weather service is unavailable right now"}
	}

	description, ok := weatherCodes[current.WeatherCode]
	if !ok {
		description = "Unknown conditions"
	}

	return WeatherResult{
		Location:    resolved,
		Description: description,
		Temperature: current.Temperature,
		Windspeed:   current.Windspeed,
	}
}

func (t *WeatherTool) geocode(ctx context.Context, location string) (lat, lon string, display string, err error) {
	query := url.Values{}
	query.Set("q", location)
	query.Set("format", "json")
	query.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.geocodeURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", "", "", err
	}
	// Nominatim's usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", geocodeUserAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", "", fmt.Errorf("geocode returned status %d", resp.StatusCode)
	}

	var places []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return "", "", "", err
	}
	if len(places) == 0 {
		return "", "", "", fmt.Errorf("no results for %q", location)
	}

	return places[0].Lat, places[0].Lon, places[0].DisplayName, nil
}

type currentConditions struct {
	Temperature float64 `json:"temperature"`
	Windspeed   float64 `json:"windspeed"`
	WeatherCode int     `json:"weathercode"`
}

func (t *WeatherTool) currentWeather(ctx context.Context, lat, lon string) (*currentConditions, error) {
	query := url.Values{}
	query.Set("latitude", lat)
	query.Set("longitude", lon)
	query.Set("current_weather", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.forecastURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forecast returned status %d", resp.StatusCode)
	}

	var payload struct {
		CurrentWeather currentConditions `json:"current_weather"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	return &payload.CurrentWeather, nil
}
