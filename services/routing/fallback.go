package routing

import "tripmeet/models"

// StraightLineRoute builds the degenerate fallback route: straight
// segments through the stops in order. Used when the Directions API
// fails so the map always shows something once two points exist.
func StraightLineRoute(stops []models.Waypoint) *models.Route {
	if len(stops) < 2 {
		return nil
	}
	path := make([]models.Coordinates, 0, len(stops))
	for _, stop := range stops {
		path = append(path, stop.Coordinates)
	}
	return &models.Route{
		Path:      path,
		Waypoints: stops,
		Bounds:    models.BoundsOf(path),
	}
}
