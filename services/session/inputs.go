package session

import "tripmeet/models"

// input is one unit of work for the session loop. Inbound realtime
// events, local actions, timer ticks and async completions all arrive
// through the same queue, so every state change goes through one
// idempotent reducer entry point.
type input interface {
	isInput()
}

// eventInput wraps a decoded inbound realtime event.
type eventInput struct {
	Event models.Event
}

// actionInput wraps a local UI action.
type actionInput struct {
	Action Action
}

// routeComputedInput delivers the result of an async route computation.
type routeComputedInput struct {
	Route *models.Route
	Toast string
}

// paymentStatusInput delivers a checkout state-machine transition.
type paymentStatusInput struct {
	Status models.PaymentStatus
}

// tickInput is the periodic maintenance tick: expires notifications and
// returns terminal payment states to idle after the display timeout.
type tickInput struct{}

func (eventInput) isInput()         {}
func (actionInput) isInput()        {}
func (routeComputedInput) isInput() {}
func (paymentStatusInput) isInput() {}
func (tickInput) isInput()          {}
