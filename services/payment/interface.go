package payment

import (
	"context"
	"errors"

	"tripmeet/models"
)

// ErrUserDeclined marks a transfer the user rejected in the wallet,
// distinguished from other failures for messaging purposes.
var ErrUserDeclined = errors.New("user declined the transaction")

// WalletConnector produces a signed, submitted and confirmed transfer.
// The wallet adapter itself is an external collaborator; implementations
// here only drive its three stages.
type WalletConnector interface {
	// SignTransfer asks the wallet to sign the transfer. Blocks until the
	// user approves or declines.
	SignTransfer(ctx context.Context, req models.TransferRequest) (*models.SignedTransfer, error)
	// Submit sends a signed transfer to the network.
	Submit(ctx context.Context, transfer *models.SignedTransfer) error
	// Confirm waits for network confirmation of the submitted transfer.
	Confirm(ctx context.Context, signature string) error
}

// CheckoutService runs the demo payment flow, reporting each state
// transition through the supplied callback.
type CheckoutService interface {
	Run(ctx context.Context, description string, onStatus func(models.PaymentStatus))
}
