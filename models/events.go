package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EventType tags an inbound realtime event.
type EventType string

const (
	EventMapUpdate       EventType = "MAP_UPDATE"
	EventRouteUpdate     EventType = "ROUTE_UPDATE"
	EventAgentState      EventType = "AGENT_STATE"
	EventItineraryAdd    EventType = "ITINERARY_ADD"
	EventItineraryRemove EventType = "ITINERARY_REMOVE"
	EventItineraryClear  EventType = "ITINERARY_CLEAR"
	EventPaymentExecute  EventType = "PAYMENT_EXECUTE"
)

// ErrUnknownEvent marks an envelope whose type tag is not recognized.
// Callers treat it as an explicit "ignored" outcome, not a failure.
var ErrUnknownEvent = errors.New("unknown event type")

// Event is one decoded inbound realtime event.
type Event interface {
	EventType() EventType
}

// PlacePayload is a place entry inside a MAP_UPDATE. Coordinates arrive
// as [lat, lng]; entries without coordinates are kept but skipped when
// markers are derived.
type PlacePayload struct {
	Name        string       `json:"name"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Description string       `json:"description,omitempty"`
	Address     string       `json:"address,omitempty"`
	Rating      float64      `json:"rating,omitempty"`
	PriceLevel  string       `json:"price_level,omitempty"`
}

// MapUpdateEvent appends markers for any of the category arrays present.
type MapUpdateEvent struct {
	Data struct {
		Restaurants []PlacePayload `json:"restaurants,omitempty"`
		Activities  []PlacePayload `json:"activities,omitempty"`
		Hotels      []PlacePayload `json:"hotels,omitempty"`
	} `json:"data"`
}

func (MapUpdateEvent) EventType() EventType { return EventMapUpdate }

// RouteUpdateEvent replaces the active route. The agent may nest the
// route under "route" or send path/waypoints/bounds at the top level.
type RouteUpdateEvent struct {
	Route     *Route        `json:"route,omitempty"`
	Path      []Coordinates `json:"path,omitempty"`
	Waypoints []Waypoint    `json:"waypoints,omitempty"`
	Bounds    *Bounds       `json:"bounds,omitempty"`
	RouteType string        `json:"route_type,omitempty"`
}

func (RouteUpdateEvent) EventType() EventType { return EventRouteUpdate }

// Resolve flattens the two accepted shapes into a single Route.
func (e RouteUpdateEvent) Resolve() *Route {
	if e.Route != nil {
		return e.Route
	}
	if len(e.Path) == 0 && len(e.Waypoints) == 0 {
		return nil
	}
	return &Route{Path: e.Path, Waypoints: e.Waypoints, Bounds: e.Bounds}
}

// AgentStateEvent overwrites the agent status wholesale.
type AgentStateEvent struct {
	State           AgentState `json:"state"`
	ThinkingMessage string     `json:"thinking_message,omitempty"`
	ToolName        string     `json:"tool_name,omitempty"`
}

func (AgentStateEvent) EventType() EventType { return EventAgentState }

// ItineraryAddEvent inserts one item; duplicate ids are a no-op.
type ItineraryAddEvent struct {
	Item ItineraryItem `json:"item"`
}

func (ItineraryAddEvent) EventType() EventType { return EventItineraryAdd }

// ItineraryRemoveEvent removes every item whose name contains the given
// substring, case-insensitively.
type ItineraryRemoveEvent struct {
	ItemName string `json:"item_name"`
}

func (ItineraryRemoveEvent) EventType() EventType { return EventItineraryRemove }

// ItineraryClearEvent empties the itinerary unconditionally.
type ItineraryClearEvent struct{}

func (ItineraryClearEvent) EventType() EventType { return EventItineraryClear }

// PaymentExecuteEvent is an authoritative "proceed with checkout" signal
// from the remote agent.
type PaymentExecuteEvent struct{}

func (PaymentExecuteEvent) EventType() EventType { return EventPaymentExecute }

// DecodeEvent validates one inbound envelope at the boundary and returns
// its typed variant. Unknown type tags return ErrUnknownEvent so callers
// can ignore them without treating the message as malformed.
func DecodeEvent(data []byte) (Event, error) {
	var env struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed event envelope: %w", err)
	}

	switch env.Type {
	case EventMapUpdate:
		var ev MapUpdateEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", env.Type, err)
		}
		return ev, nil
	case EventRouteUpdate:
		var ev RouteUpdateEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", env.Type, err)
		}
		return ev, nil
	case EventAgentState:
		var ev AgentStateEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", env.Type, err)
		}
		return ev, nil
	case EventItineraryAdd:
		var ev ItineraryAddEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", env.Type, err)
		}
		return ev, nil
	case EventItineraryRemove:
		var ev ItineraryRemoveEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", env.Type, err)
		}
		return ev, nil
	case EventItineraryClear:
		return ItineraryClearEvent{}, nil
	case EventPaymentExecute:
		return PaymentExecuteEvent{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
	}
}
