package models

import "time"

// SessionState is the canonical view state for one meeting session. It is
// owned by a single synchronizer loop and mutated only through the
// reducer; everything else sees copies.
type SessionState struct {
	RoomID        string             `json:"roomId"`
	Itinerary     []ItineraryItem    `json:"itinerary"`
	Markers       []MapMarker        `json:"markers"`
	Route         *Route             `json:"route,omitempty"`
	Agent         AgentStatus        `json:"agent"`
	Notifications []ToolNotification `json:"notifications,omitempty"`
	Payment       PaymentStatus      `json:"payment"`

	// WalletConnected mirrors the client wallet's connect state; checkout
	// cannot start without it.
	WalletConnected bool `json:"walletConnected"`

	// Version increments on every state-changing apply. The polling
	// fallback and the push path compare versions so redundant updates
	// never reach clients.
	Version   uint64    `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewSessionState returns the initial state for a room.
func NewSessionState(roomID string) SessionState {
	return SessionState{
		RoomID:  roomID,
		Agent:   AgentStatus{State: AgentIdle},
		Payment: PaymentStatus{State: CheckoutIdle},
	}
}

// TotalEstimatedCost sums the itinerary's estimated costs. Display-only:
// the checkout amount is a fixed demo constant, not this total.
func (s SessionState) TotalEstimatedCost() float64 {
	var total float64
	for _, item := range s.Itinerary {
		total += item.EstimatedCost
	}
	return total
}

// FindItem returns the itinerary item with the given id, if present.
func (s SessionState) FindItem(id string) (ItineraryItem, bool) {
	for _, item := range s.Itinerary {
		if item.ID == id {
			return item, true
		}
	}
	return ItineraryItem{}, false
}
