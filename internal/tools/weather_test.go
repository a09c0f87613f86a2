package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestWeatherTool(geocode, forecast string) *WeatherTool {
	tool := NewWeatherTool(5 * time.Second)
	tool.geocodeURL = geocode
	tool.forecastURL = forecast
	return tool
}

func TestWeatherToolHappyPath(t *testing.T) {
	geocode := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Berlin" {
			t.Errorf("geocode query = %q, want Berlin", got)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("geocode request must carry a User-Agent")
		}
		w.Write([]byte(`[{"lat":"52.52","lon":"13.40","display_name":"Berlin, Germany"}]`))
	}))
	defer geocode.Close()

	forecast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("latitude"); got != "52.52" {
			t.Errorf("forecast latitude = %q, want 52.52", got)
		}
		w.Write([]byte(`{"current_weather":{"temperature":18.4,"windspeed":12.0,"weathercode":2}}`))
	}))
	defer forecast.Close()

	tool := newTestWeatherTool(geocode.URL, forecast.URL)
	result := tool.Invoke(context.Background(), map[string]interface{}{"location": "Berlin"})

	weather, ok := result.(WeatherResult)
	if !ok {
		t.Fatalf("expected WeatherResult, got %T: %v", result, result)
	}
	if weather.Location != "Berlin, Germany" {
		t.Errorf("location = %q", weather.Location)
	}
	if weather.Description != "Partly cloudy" {
		t.Errorf("weathercode 2 should map to Partly cloudy, got %q", weather.Description)
	}
	if weather.Temperature != 18.4 || weather.Windspeed != 12.0 {
		t.Errorf("unexpected readings: %+v", weather)
	}
}

func TestWeatherToolUnknownLocation(t *testing.T) {
	geocode := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer geocode.Close()

	tool := newTestWeatherTool(geocode.URL, "http://unused.invalid")
	result := tool.Invoke(context.Background(), map[string]interface{}{"location": "Atlantis"})

	errResult, ok := result.(ErrorResult)
	if !ok {
		t.Fatalf("expected ErrorResult, got %T", result)
	}
	if errResult.Reason != "Could not find location 'Atlantis'" {
		t.Errorf("unexpected reason: %q", errResult.Reason)
	}
}

func TestWeatherToolUpstreamFailure(t *testing.T) {
	geocode := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"1","lon":"2","display_name":"Somewhere"}]`))
	}))
	defer geocode.Close()

	forecast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer forecast.Close()

	tool := newTestWeatherTool(geocode.URL, forecast.URL)
	result := tool.Invoke(context.Background(), map[string]interface{}{"location": "Somewhere"})

	if _, ok := result.(ErrorResult); !ok {
		t.Fatalf("upstream failure must normalize to ErrorResult, got %T", result)
	}
}

func TestWeatherToolUnknownCode(t *testing.T) {
	geocode := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"1","lon":"2","display_name":"Somewhere"}]`))
	}))
	defer geocode.Close()

	forecast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current_weather":{"temperature":1,"windspeed":1,"weathercode":1234}}`))
	}))
	defer forecast.Close()

	tool := newTestWeatherTool(geocode.URL, forecast.URL)
	result := tool.Invoke(context.Background(), map[string]interface{}{"location": "Somewhere"})

	weather, ok := result.(WeatherResult)
	if !ok {
		t.Fatalf("expected WeatherResult, got %T", result)
	}
	if weather.Description != "Unknown conditions" {
		t.Errorf("unmapped weathercode should degrade gracefully, got %q", weather.Description)
	}
}
