package models

import "time"

// CheckoutState is one step of the payment state machine.
type CheckoutState string

const (
	CheckoutIdle                CheckoutState = "idle"
	CheckoutPendingConfirmation CheckoutState = "pendingConfirmation"
	CheckoutAwaitingSignature   CheckoutState = "awaitingSignature"
	CheckoutSending             CheckoutState = "sending"
	CheckoutConfirming          CheckoutState = "confirming"
	CheckoutSuccess             CheckoutState = "success"
	CheckoutError               CheckoutState = "error"
)

// InFlight reports whether a transfer is currently being processed. A new
// checkout request while in flight is dropped, never queued.
func (s CheckoutState) InFlight() bool {
	switch s {
	case CheckoutPendingConfirmation, CheckoutAwaitingSignature, CheckoutSending, CheckoutConfirming:
		return true
	}
	return false
}

// PaymentStatus is the session's view of the single in-flight payment.
type PaymentStatus struct {
	State       CheckoutState `json:"state"`
	Amount      float64       `json:"amount,omitempty"`
	Description string        `json:"description,omitempty"`
	Signature   string        `json:"signature,omitempty"`
	Error       string        `json:"error,omitempty"`
	// UserDeclined distinguishes a wallet rejection from other failures
	// for messaging purposes.
	UserDeclined bool      `json:"userDeclined,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// TransferRequest is handed to the wallet connector.
type TransferRequest struct {
	Recipient   string
	Amount      float64
	Description string
}

// SignedTransfer is a wallet-signed transaction ready for submission.
type SignedTransfer struct {
	Signature string
	Payload   []byte
}

// Vendor is a payment recipient looked up from the registry.
type Vendor struct {
	ID            string    `bson:"id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	WalletAddress string    `bson:"walletAddress" json:"walletAddress"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}
