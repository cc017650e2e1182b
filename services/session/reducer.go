package session

import (
	"fmt"
	"strings"
	"time"

	"tripmeet/models"
	"tripmeet/utils"

	"github.com/google/uuid"
)

// reduce applies one input to the session state and returns the new state
// plus the effects to perform. It never mutates the input state's slices;
// snapshots handed out earlier stay valid. Unknown inputs are no-ops.
func reduce(state models.SessionState, in input, now time.Time) (models.SessionState, []Effect) {
	var (
		next    models.SessionState
		effects []Effect
		changed bool
	)

	switch v := in.(type) {
	case eventInput:
		next, effects, changed = applyEvent(state, v.Event, now)
	case actionInput:
		next, effects, changed = applyAction(state, v.Action, now)
	case routeComputedInput:
		next, effects, changed = applyRouteComputed(state, v, now)
	case paymentStatusInput:
		next = state
		next.Payment = v.Status
		next.Payment.UpdatedAt = now
		changed = true
	case tickInput:
		next, changed = applyTick(state, now)
	default:
		next = state
	}

	if changed {
		next.Version++
		next.UpdatedAt = now
	}
	return next, effects
}

func applyEvent(state models.SessionState, ev models.Event, now time.Time) (models.SessionState, []Effect, bool) {
	switch v := ev.(type) {
	case models.MapUpdateEvent:
		return applyMapUpdate(state, v)
	case models.RouteUpdateEvent:
		return applyRouteUpdate(state, v)
	case models.AgentStateEvent:
		return applyAgentState(state, v, now)
	case models.ItineraryAddEvent:
		return addItem(state, v.Item)
	case models.ItineraryRemoveEvent:
		return removeItems(state, v.ItemName)
	case models.ItineraryClearEvent:
		return clearItinerary(state)
	case models.PaymentExecuteEvent:
		return requestCheckout(state, true, now)
	}
	// Forward-compatible: unrecognized events are ignored.
	return state, nil, false
}

func applyAction(state models.SessionState, a Action, now time.Time) (models.SessionState, []Effect, bool) {
	switch v := a.(type) {
	case AddItemAction:
		item := v.Item
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		return addItem(state, item)
	case RemoveItemAction:
		return removeItems(state, v.Name)
	case ReorderItemsAction:
		return reorderItems(state, v.From, v.To)
	case ClearItineraryAction:
		return clearItinerary(state)
	case SetWalletAction:
		if state.WalletConnected == v.Connected {
			return state, nil, false
		}
		state.WalletConnected = v.Connected
		return state, nil, true
	case InitiateCheckoutAction:
		return requestCheckout(state, false, now)
	case ConfirmCheckoutAction:
		if state.Payment.State != models.CheckoutPendingConfirmation {
			return state, nil, false
		}
		return state, []Effect{StartCheckoutEffect{}}, false
	case CancelCheckoutAction:
		// Only pre-submission steps can be abandoned.
		switch state.Payment.State {
		case models.CheckoutPendingConfirmation, models.CheckoutAwaitingSignature:
			state.Payment = models.PaymentStatus{State: models.CheckoutIdle, UpdatedAt: now}
			return state, nil, true
		}
		return state, nil, false
	}
	return state, nil, false
}

// applyMapUpdate appends/overwrites markers for any category arrays
// present. Entries missing a name or coordinates are skipped without
// failing the rest of the event; markers of other categories are
// untouched.
func applyMapUpdate(state models.SessionState, ev models.MapUpdateEvent) (models.SessionState, []Effect, bool) {
	groups := []struct {
		category models.PlaceCategory
		places   []models.PlacePayload
	}{
		{models.CategoryRestaurant, ev.Data.Restaurants},
		{models.CategoryActivity, ev.Data.Activities},
		{models.CategoryHotel, ev.Data.Hotels},
	}

	markers := append([]models.MapMarker(nil), state.Markers...)
	changed := false
	for _, g := range groups {
		for _, place := range g.places {
			if place.Name == "" || place.Coordinates == nil {
				continue
			}
			marker := models.MapMarker{
				ID:          markerID(place.Name, g.category),
				Coordinates: *place.Coordinates,
				Category:    g.category,
				Payload:     placePayload(place),
			}
			markers = upsertMarker(markers, marker)
			changed = true
		}
	}
	if !changed {
		return state, nil, false
	}
	state.Markers = markers
	return state, nil, true
}

// applyRouteUpdate replaces the active route wholesale and swaps the
// waypoint markers for the new first/last stops.
func applyRouteUpdate(state models.SessionState, ev models.RouteUpdateEvent) (models.SessionState, []Effect, bool) {
	route := ev.Resolve()
	if route == nil {
		return state, nil, false
	}
	if route.Bounds == nil {
		route.Bounds = models.BoundsOf(route.Path)
	}
	state.Route = route
	state.Markers = replaceWaypointMarkers(state.Markers, route.Waypoints)

	var effects []Effect
	if route.Bounds != nil {
		effects = append(effects, FitBoundsEffect{Bounds: *route.Bounds})
	}
	return state, effects, true
}

func applyAgentState(state models.SessionState, ev models.AgentStateEvent, now time.Time) (models.SessionState, []Effect, bool) {
	state.Agent = models.AgentStatus{
		State:   ev.State,
		Message: ev.ThinkingMessage,
		Tool:    ev.ToolName,
	}
	if ev.State == models.AgentThinking && ev.ToolName != "" {
		message := ev.ThinkingMessage
		if message == "" {
			message = "Using " + ev.ToolName
		}
		state.Notifications = pushNotification(state.Notifications, ev.ToolName, message, now)
	}
	return state, nil, true
}

// addItem inserts the item unless its id is already present. A duplicate
// add is an idempotent no-op. Successful adds with coordinates focus the
// map on the new place and trigger route re-derivation.
func addItem(state models.SessionState, item models.ItineraryItem) (models.SessionState, []Effect, bool) {
	if _, exists := state.FindItem(item.ID); exists {
		return state, nil, false
	}
	state.Itinerary = append(append([]models.ItineraryItem(nil), state.Itinerary...), item)

	var effects []Effect
	if item.HasCoordinates() {
		effects = append(effects, FocusLocationEffect{Coordinates: *item.Coordinates, Zoom: 14})
	}
	state, routeFx := deriveRoute(state)
	return state, append(effects, routeFx...), true
}

// removeItems deletes every item whose name contains the given substring,
// case-insensitively. No match is a safe no-op.
func removeItems(state models.SessionState, substr string) (models.SessionState, []Effect, bool) {
	if substr == "" {
		return state, nil, false
	}
	needle := strings.ToLower(substr)
	kept := make([]models.ItineraryItem, 0, len(state.Itinerary))
	for _, item := range state.Itinerary {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			continue
		}
		kept = append(kept, item)
	}
	if len(kept) == len(state.Itinerary) {
		return state, nil, false
	}
	state.Itinerary = kept
	state, effects := deriveRoute(state)
	return state, effects, true
}

func reorderItems(state models.SessionState, from, to int) (models.SessionState, []Effect, bool) {
	n := len(state.Itinerary)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return state, nil, false
	}
	items := append([]models.ItineraryItem(nil), state.Itinerary...)
	moved := items[from]
	items = append(items[:from], items[from+1:]...)
	items = append(items[:to], append([]models.ItineraryItem{moved}, items[to:]...)...)
	state.Itinerary = items
	state, effects := deriveRoute(state)
	return state, effects, true
}

// clearItinerary empties the itinerary and clears the route. Clearing an
// already-empty itinerary is a no-op.
func clearItinerary(state models.SessionState) (models.SessionState, []Effect, bool) {
	if len(state.Itinerary) == 0 && state.Route == nil {
		return state, nil, false
	}
	state.Itinerary = nil
	state.Route = nil
	state.Markers = replaceWaypointMarkers(state.Markers, nil)
	return state, nil, true
}

// requestCheckout begins the payment flow. At most one payment is in
// flight: requests while the machine is busy are dropped. Without a
// connected wallet the machine stays idle and a connect prompt is
// surfaced instead.
func requestCheckout(state models.SessionState, authoritative bool, now time.Time) (models.SessionState, []Effect, bool) {
	if state.Payment.State.InFlight() {
		return state, nil, false
	}
	if !state.WalletConnected {
		state.Notifications = pushNotification(state.Notifications, "", "Connect your wallet to check out", now)
		return state, nil, true
	}
	if authoritative {
		// Remote PAYMENT_EXECUTE is an authoritative proceed signal;
		// the wallet signature prompt is the remaining confirmation.
		return state, []Effect{StartCheckoutEffect{Authoritative: true}}, false
	}
	state.Payment = models.PaymentStatus{
		State:       models.CheckoutPendingConfirmation,
		Amount:      utils.DemoPaymentAmount,
		Description: checkoutDescription(state),
		UpdatedAt:   now,
	}
	return state, nil, true
}

// applyRouteComputed installs an async route result: replaces the active
// route, swaps waypoint markers, and queues a toast describing the stops.
func applyRouteComputed(state models.SessionState, in routeComputedInput, now time.Time) (models.SessionState, []Effect, bool) {
	if in.Route == nil {
		return state, nil, false
	}
	// The itinerary may have changed while the route was being computed;
	// a result whose stops no longer match the current itinerary is
	// dropped, even when only the places changed and not the count.
	if !sameStops(coordinateStops(state.Itinerary), in.Route.Waypoints) {
		return state, nil, false
	}
	state.Route = in.Route
	state.Markers = replaceWaypointMarkers(state.Markers, in.Route.Waypoints)
	if in.Toast != "" {
		state.Notifications = pushNotification(state.Notifications, "", in.Toast, now)
	}

	var effects []Effect
	if in.Route.Bounds != nil {
		effects = append(effects, FitBoundsEffect{Bounds: *in.Route.Bounds})
	}
	return state, effects, true
}

// applyTick expires stale notifications and resets a terminal payment
// state to idle after the display timeout.
func applyTick(state models.SessionState, now time.Time) (models.SessionState, bool) {
	changed := false

	if len(state.Notifications) > 0 {
		kept := make([]models.ToolNotification, 0, len(state.Notifications))
		for _, n := range state.Notifications {
			if n.ExpiresAt.After(now) {
				kept = append(kept, n)
			}
		}
		if len(kept) != len(state.Notifications) {
			if len(kept) == 0 {
				kept = nil
			}
			state.Notifications = kept
			changed = true
		}
	}

	switch state.Payment.State {
	case models.CheckoutSuccess, models.CheckoutError:
		if now.Sub(state.Payment.UpdatedAt) >= utils.PaymentDisplayTimeout {
			state.Payment = models.PaymentStatus{State: models.CheckoutIdle, UpdatedAt: now}
			changed = true
		}
	}
	return state, changed
}

// deriveRoute applies the itinerary-driven route rules: no coordinate
// stops clears the route, a single stop flies to it, two or more request
// an async computation.
func deriveRoute(state models.SessionState) (models.SessionState, []Effect) {
	stops := coordinateStops(state.Itinerary)
	switch len(stops) {
	case 0:
		state.Route = nil
		state.Markers = replaceWaypointMarkers(state.Markers, nil)
		return state, nil
	case 1:
		state.Route = nil
		state.Markers = replaceWaypointMarkers(state.Markers, nil)
		return state, []Effect{FocusLocationEffect{Coordinates: stops[0].Coordinates, Zoom: 13}}
	default:
		return state, []Effect{ComputeRouteEffect{Stops: stops}}
	}
}

// coordinateStops converts coordinate-bearing itinerary items into an
// ordered waypoint list (itinerary order, not arrival order).
func coordinateStops(items []models.ItineraryItem) []models.Waypoint {
	var stops []models.Waypoint
	for _, item := range items {
		if !item.HasCoordinates() {
			continue
		}
		stops = append(stops, models.Waypoint{Name: item.Name, Coordinates: *item.Coordinates})
	}
	return stops
}

// sameStops reports whether two waypoint lists name the same places at
// the same positions.
func sameStops(a, b []models.Waypoint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Coordinates != b[i].Coordinates {
			return false
		}
	}
	return true
}

// replaceWaypointMarkers removes all waypoint markers and, when the new
// route has stops, marks only the first and last. Intermediate waypoints
// stay in the route path but are never rendered as markers.
func replaceWaypointMarkers(markers []models.MapMarker, waypoints []models.Waypoint) []models.MapMarker {
	kept := make([]models.MapMarker, 0, len(markers)+2)
	for _, m := range markers {
		if m.Category == models.CategoryWaypoint {
			continue
		}
		kept = append(kept, m)
	}
	if len(waypoints) > 0 {
		first := waypoints[0]
		kept = append(kept, models.MapMarker{
			ID:          "waypoint-start",
			Coordinates: first.Coordinates,
			Category:    models.CategoryWaypoint,
			Payload:     map[string]any{"name": first.Name, "position": "start"},
		})
	}
	if len(waypoints) > 1 {
		last := waypoints[len(waypoints)-1]
		kept = append(kept, models.MapMarker{
			ID:          "waypoint-end",
			Coordinates: last.Coordinates,
			Category:    models.CategoryWaypoint,
			Payload:     map[string]any{"name": last.Name, "position": "end"},
		})
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// pushNotification appends to the bounded queue, evicting the oldest
// entries first once the visible maximum is exceeded.
func pushNotification(queue []models.ToolNotification, tool, message string, now time.Time) []models.ToolNotification {
	next := append(append([]models.ToolNotification(nil), queue...), models.ToolNotification{
		ID:        uuid.New().String(),
		Tool:      tool,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(utils.ToolNotificationTTL),
	})
	if overflow := len(next) - utils.MaxToolNotifications; overflow > 0 {
		next = next[overflow:]
	}
	return next
}

// markerID keys a marker by place name and category. Two places sharing
// a name within a category overwrite each other, matching the map's
// observed behavior.
func markerID(name string, category models.PlaceCategory) string {
	return fmt.Sprintf("%s|%s", name, category)
}

func upsertMarker(markers []models.MapMarker, marker models.MapMarker) []models.MapMarker {
	for i, m := range markers {
		if m.ID == marker.ID {
			markers[i] = marker
			return markers
		}
	}
	return append(markers, marker)
}

func placePayload(place models.PlacePayload) map[string]any {
	payload := map[string]any{"name": place.Name}
	if place.Description != "" {
		payload["description"] = place.Description
	}
	if place.Address != "" {
		payload["address"] = place.Address
	}
	if place.Rating != 0 {
		payload["rating"] = place.Rating
	}
	if place.PriceLevel != "" {
		payload["priceLevel"] = place.PriceLevel
	}
	return payload
}

// RouteToast formats the transient route notification: up to the first
// three stop names with a "+N more" suffix when truncated.
func RouteToast(stops []models.Waypoint) string {
	if len(stops) == 0 {
		return ""
	}
	shown := len(stops)
	if shown > 3 {
		shown = 3
	}
	names := make([]string, 0, shown)
	for _, stop := range stops[:shown] {
		names = append(names, stop.Name)
	}
	text := "Route updated: " + strings.Join(names, " → ")
	if extra := len(stops) - shown; extra > 0 {
		text += fmt.Sprintf(" +%d more", extra)
	}
	return text
}

func checkoutDescription(state models.SessionState) string {
	return fmt.Sprintf("Trip checkout (%d stops, est. $%.2f)", len(state.Itinerary), state.TotalEstimatedCost())
}
