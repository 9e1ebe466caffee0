// File: internal/services/geocode/service.go
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/routelab/route-planner/retry"
)

// Logger defines the logging interface used by the geocoding service.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Result is the location information resolved from coordinates.
type Result struct {
	PlaceName   string             `json:"place_name"`
	City        string             `json:"city,omitempty"`
	Region      string             `json:"region,omitempty"`
	Country     string             `json:"country,omitempty"`
	Formatted   string             `json:"formatted"`
	Coordinates map[string]float64 `json:"coordinates"`
}

// Service resolves coordinates to place names through the Mapbox geocoding API.
type Service struct {
	apiKey  string
	baseURL string
	client  *http.Client
	policy  retry.Policy
	logger  Logger
}

func NewService(apiKey string, logger Logger) *Service {
	return &Service{
		apiKey:  apiKey,
		baseURL: "https://api.mapbox.com/geocoding/v5/mapbox.places",
		client:  &http.Client{Timeout: 5 * time.Second},
		policy:  retry.DefaultPolicy(),
		logger:  logger,
	}
}

type mapboxResponse struct {
	Features []struct {
		PlaceName string `json:"place_name"`
		Text      string `json:"text"`
		PlaceType []string `json:"place_type"`
		Context   []struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		} `json:"context"`
	} `json:"features"`
}

// Reverse converts latitude/longitude to a readable location.
func (s *Service) Reverse(ctx context.Context, latitude, longitude float64) (*Result, error) {
	if latitude < -90 || latitude > 90 {
		return nil, NewValidationError("latitude must be between -90 and 90")
	}
	if longitude < -180 || longitude > 180 {
		return nil, NewValidationError("longitude must be between -180 and 180")
	}
	if s.apiKey == "" {
		return nil, ErrNotConfigured
	}

	data, err := retry.DoValue(ctx, s.policy, func(ctx context.Context) (*mapboxResponse, error) {
		return s.fetch(ctx, latitude, longitude)
	})
	if err != nil {
		s.logger.Error("reverse geocoding failed", "latitude", latitude, "longitude", longitude, "error", err)
		return nil, NewLookupError("reverse geocoding failed", err)
	}
	if len(data.Features) == 0 {
		return nil, NewLookupError("no location found for the given coordinates", nil)
	}

	feature := data.Features[0]
	result := &Result{
		PlaceName: feature.PlaceName,
		Coordinates: map[string]float64{
			"latitude":  latitude,
			"longitude": longitude,
		},
	}

	// The most specific feature carries the locality; broader admin areas
	// arrive in its context chain.
	if len(feature.PlaceType) > 0 && feature.PlaceType[0] == "place" {
		result.City = feature.Text
	}
	for _, item := range feature.Context {
		switch {
		case strings.HasPrefix(item.ID, "place."):
			result.City = item.Text
		case strings.HasPrefix(item.ID, "region."):
			result.Region = item.Text
		case strings.HasPrefix(item.ID, "country."):
			result.Country = item.Text
		}
	}

	var parts []string
	for _, p := range []string{result.City, result.Region, result.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	result.Formatted = strings.Join(parts, ", ")
	if result.Formatted == "" {
		result.Formatted = feature.PlaceName
	}
	return result, nil
}

func (s *Service) fetch(ctx context.Context, latitude, longitude float64) (*mapboxResponse, error) {
	endpoint := fmt.Sprintf("%s/%f,%f.json?%s", s.baseURL, longitude, latitude,
		url.Values{"access_token": {s.apiKey}, "types": {"address,place"}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mapbox API returned status %d", resp.StatusCode)
	}

	var data mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
