package routing

import (
	"context"

	"tripmeet/models"
)

// RouteService computes a multi-stop route through an ordered list of
// stops. Implementations must preserve stop order; the caller decides the
// visiting sequence, not the router.
type RouteService interface {
	ComputeRoute(ctx context.Context, stops []models.Waypoint) (*models.Route, error)
}
