package session

import "tripmeet/models"

// Effect is a side effect requested by the reducer. The reducer itself
// only transforms state; the session loop performs effects afterwards,
// and async completions come back as later inputs.
type Effect interface {
	isEffect()
}

// FocusLocationEffect centers the map on a point (fire-and-forget).
type FocusLocationEffect struct {
	Coordinates models.Coordinates
	Zoom        float64
}

// FitBoundsEffect fits the map viewport to the given bounds.
type FitBoundsEffect struct {
	Bounds models.Bounds
}

// ComputeRouteEffect requests an async multi-stop route computation for
// the given ordered stops.
type ComputeRouteEffect struct {
	Stops []models.Waypoint
}

// StartCheckoutEffect kicks off the payment flow. Authoritative requests
// (remote PAYMENT_EXECUTE) skip the local confirmation step.
type StartCheckoutEffect struct {
	Authoritative bool
}

func (FocusLocationEffect) isEffect() {}
func (FitBoundsEffect) isEffect()     {}
func (ComputeRouteEffect) isEffect()  {}
func (StartCheckoutEffect) isEffect() {}
