package models

// PlaceCategory classifies an itinerary item or map marker.
type PlaceCategory string

const (
	CategoryRestaurant PlaceCategory = "restaurant"
	CategoryHotel      PlaceCategory = "hotel"
	CategoryActivity   PlaceCategory = "activity"
	// CategoryWaypoint is used only for derived route markers.
	CategoryWaypoint PlaceCategory = "waypoint"
)

// ItineraryItem is a user-curated place. Items live only in the session
// state for the duration of one meeting; they are never persisted.
type ItineraryItem struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Category      PlaceCategory `json:"category"`
	EstimatedCost float64       `json:"estimatedCost"`
	CostLabel     string        `json:"costLabel,omitempty"`
	Location      string        `json:"location,omitempty"`
	Coordinates   *Coordinates  `json:"coordinates,omitempty"`
}

// HasCoordinates reports whether the item can be placed on the map.
func (i ItineraryItem) HasCoordinates() bool {
	return i.Coordinates != nil
}

// MapMarker is a rendered point on the map, derived from session state.
type MapMarker struct {
	ID          string         `json:"id"`
	Coordinates Coordinates    `json:"coordinates"`
	Category    PlaceCategory  `json:"category"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// Waypoint is a named stop used to compute a route. Distinct from a
// rendered marker: all waypoints participate in routing, at most the
// first and last are shown on the map.
type Waypoint struct {
	Name        string      `json:"name"`
	Coordinates Coordinates `json:"coordinates"`
}

// Route is the active multi-stop route. It is always replaced wholesale,
// never merged.
type Route struct {
	Path      []Coordinates `json:"path"`
	Waypoints []Waypoint    `json:"waypoints"`
	Bounds    *Bounds       `json:"bounds,omitempty"`
}
