package routing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tripmeet/config"
	"tripmeet/models"

	"github.com/twpayne/go-polyline"
)

func stops(coords ...[2]float64) []models.Waypoint {
	out := make([]models.Waypoint, 0, len(coords))
	for _, c := range coords {
		out = append(out, models.Waypoint{Coordinates: models.Coordinates{Lat: c[0], Lng: c[1]}})
	}
	return out
}

func directionsStub(t *testing.T, path [][]float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		points := string(polyline.EncodeCoords(path))
		resp := map[string]any{
			"status": "OK",
			"routes": []map[string]any{
				{"overview_polyline": map[string]string{"points": points}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestComputeRoute(t *testing.T) {
	prev := config.AppConfig.GoogleAPIKey
	config.AppConfig.GoogleAPIKey = "test-key"
	defer func() { config.AppConfig.GoogleAPIKey = prev }()

	t.Run("decodes the overview polyline into a path", func(t *testing.T) {
		srv := directionsStub(t, [][]float64{{48.85, 2.35}, {48.86, 2.34}, {48.87, 2.33}})
		defer srv.Close()

		svc := &GoogleRouteService{HTTPClient: srv.Client(), BaseURL: srv.URL}
		route, err := svc.ComputeRoute(context.Background(), stops([2]float64{48.85, 2.35}, [2]float64{48.87, 2.33}))
		if err != nil {
			t.Fatalf("ComputeRoute returned error: %v", err)
		}
		if len(route.Path) != 3 {
			t.Fatalf("path length = %d, want 3", len(route.Path))
		}
		if len(route.Waypoints) != 2 {
			t.Errorf("waypoints length = %d, want 2", len(route.Waypoints))
		}
		if route.Bounds == nil {
			t.Error("route bounds not computed")
		}
	})

	t.Run("waypoints parameter carries intermediate stops", func(t *testing.T) {
		var gotWaypoints string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotWaypoints = r.URL.Query().Get("waypoints")
			points := string(polyline.EncodeCoords([][]float64{{1, 1}, {3, 3}}))
			json.NewEncoder(w).Encode(map[string]any{
				"status": "OK",
				"routes": []map[string]any{{"overview_polyline": map[string]string{"points": points}}},
			})
		}))
		defer srv.Close()

		svc := &GoogleRouteService{HTTPClient: srv.Client(), BaseURL: srv.URL}
		_, err := svc.ComputeRoute(context.Background(), stops([2]float64{1, 1}, [2]float64{2, 2}, [2]float64{3, 3}))
		if err != nil {
			t.Fatalf("ComputeRoute returned error: %v", err)
		}
		if gotWaypoints == "" {
			t.Error("intermediate stop not sent as waypoint")
		}
	})

	t.Run("no routes yields ErrNoRoute", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"status": "ZERO_RESULTS", "routes": []any{}})
		}))
		defer srv.Close()

		svc := &GoogleRouteService{HTTPClient: srv.Client(), BaseURL: srv.URL}
		_, err := svc.ComputeRoute(context.Background(), stops([2]float64{1, 1}, [2]float64{2, 2}))
		if !errors.Is(err, ErrNoRoute) {
			t.Errorf("expected ErrNoRoute, got %v", err)
		}
	})

	t.Run("fewer than two stops is rejected", func(t *testing.T) {
		svc := NewGoogleRouteService()
		if _, err := svc.ComputeRoute(context.Background(), stops([2]float64{1, 1})); err == nil {
			t.Error("expected an error for a single stop")
		}
	})
}

func TestDecodePolyline(t *testing.T) {
	t.Run("round-trips coordinates", func(t *testing.T) {
		encoded := string(polyline.EncodeCoords([][]float64{{38.5, -120.2}, {40.7, -120.95}}))
		path, err := DecodePolyline(encoded)
		if err != nil {
			t.Fatalf("DecodePolyline returned error: %v", err)
		}
		if len(path) != 2 {
			t.Fatalf("path length = %d, want 2", len(path))
		}
		if path[0].Lat != 38.5 || path[0].Lng != -120.2 {
			t.Errorf("first point = %+v", path[0])
		}
	})

	t.Run("garbage errors", func(t *testing.T) {
		if _, err := DecodePolyline("\x01"); err == nil {
			t.Error("expected an error for invalid polyline")
		}
	})
}

func TestStraightLineRoute(t *testing.T) {
	t.Run("connects stops directly", func(t *testing.T) {
		route := StraightLineRoute(stops([2]float64{1, 1}, [2]float64{2, 2}, [2]float64{3, 3}))
		if route == nil {
			t.Fatal("expected a route")
		}
		if len(route.Path) != 3 {
			t.Errorf("path length = %d, want 3", len(route.Path))
		}
		if route.Bounds == nil {
			t.Error("bounds not set")
		}
	})

	t.Run("fewer than two stops yields nil", func(t *testing.T) {
		if route := StraightLineRoute(stops([2]float64{1, 1})); route != nil {
			t.Errorf("expected nil, got %+v", route)
		}
		if route := StraightLineRoute(nil); route != nil {
			t.Errorf("expected nil for no stops, got %+v", route)
		}
	})
}
