package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tripmeet/config"
	"tripmeet/models"

	"github.com/twpayne/go-polyline"
)

// ErrNoRoute is returned when the Directions API yields no routes.
var ErrNoRoute = errors.New("no route found")

// directionsResponse represents the structure of the response from Google Directions API.
type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
	} `json:"routes"`
}

// GoogleRouteService computes routes through the Google Directions API.
type GoogleRouteService struct {
	HTTPClient *http.Client
	// BaseURL overrides the Directions endpoint, used by tests.
	BaseURL string
}

// NewGoogleRouteService returns a RouteService backed by Google Directions.
func NewGoogleRouteService() *GoogleRouteService {
	return &GoogleRouteService{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ComputeRoute requests a driving route visiting every stop in order and
// decodes the overview polyline into a path. The returned waypoints are
// the input stops unchanged.
func (s *GoogleRouteService) ComputeRoute(ctx context.Context, stops []models.Waypoint) (*models.Route, error) {
	if len(stops) < 2 {
		return nil, fmt.Errorf("need at least 2 stops, got %d", len(stops))
	}

	apiKey := config.AppConfig.GoogleAPIKey
	if apiKey == "" {
		return nil, errors.New("missing Google API key")
	}

	origin := stops[0].Coordinates
	dest := stops[len(stops)-1].Coordinates

	params := url.Values{}
	params.Set("origin", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	params.Set("destination", fmt.Sprintf("%f,%f", dest.Lat, dest.Lng))
	params.Set("key", apiKey)
	if len(stops) > 2 {
		var via []string
		for _, stop := range stops[1 : len(stops)-1] {
			via = append(via, fmt.Sprintf("%f,%f", stop.Coordinates.Lat, stop.Coordinates.Lng))
		}
		params.Set("waypoints", strings.Join(via, "|"))
	}

	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = "https://maps.googleapis.com/maps/api/directions/json"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var directions directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&directions); err != nil {
		return nil, fmt.Errorf("failed to decode directions response: %w", err)
	}
	if len(directions.Routes) == 0 {
		return nil, ErrNoRoute
	}

	path, err := DecodePolyline(directions.Routes[0].OverviewPolyline.Points)
	if err != nil {
		return nil, fmt.Errorf("failed to decode overview polyline: %w", err)
	}
	if len(path) < 2 {
		return nil, ErrNoRoute
	}

	return &models.Route{
		Path:      path,
		Waypoints: stops,
		Bounds:    models.BoundsOf(path),
	}, nil
}

// DecodePolyline converts an encoded Google polyline into coordinates.
func DecodePolyline(points string) ([]models.Coordinates, error) {
	coords, _, err := polyline.DecodeCoords([]byte(points))
	if err != nil {
		return nil, err
	}
	path := make([]models.Coordinates, 0, len(coords))
	for _, c := range coords {
		path = append(path, models.Coordinates{Lat: c[0], Lng: c[1]})
	}
	return path, nil
}
