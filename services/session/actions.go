package session

import "tripmeet/models"

// Action is a state mutation requested by direct UI interaction. Local
// actions flow through the same reducer as inbound realtime events so
// both paths compose under identical dedup/idempotence rules.
type Action interface {
	isAction()
}

// AddItemAction adds a place from a map popup or the itinerary panel.
type AddItemAction struct {
	Item models.ItineraryItem
}

// RemoveItemAction removes items whose name contains the given substring,
// case-insensitively. Same fuzzy semantics as the remote remove event.
type RemoveItemAction struct {
	Name string
}

// ReorderItemsAction moves the item at From to position To (drag-reorder).
type ReorderItemsAction struct {
	From int
	To   int
}

// ClearItineraryAction empties the itinerary.
type ClearItineraryAction struct{}

// SetWalletAction records the client wallet's connect/disconnect state.
type SetWalletAction struct {
	Connected bool
}

// InitiateCheckoutAction starts the local checkout flow. It requires an
// explicit confirmation before any transfer is signed.
type InitiateCheckoutAction struct{}

// ConfirmCheckoutAction confirms a pending local checkout.
type ConfirmCheckoutAction struct{}

// CancelCheckoutAction abandons a checkout that has not yet been
// submitted to the network.
type CancelCheckoutAction struct{}

func (AddItemAction) isAction()          {}
func (RemoveItemAction) isAction()       {}
func (ReorderItemsAction) isAction()     {}
func (ClearItineraryAction) isAction()   {}
func (SetWalletAction) isAction()        {}
func (InitiateCheckoutAction) isAction() {}
func (ConfirmCheckoutAction) isAction()  {}
func (CancelCheckoutAction) isAction()   {}
