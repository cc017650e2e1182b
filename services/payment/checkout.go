package payment

import (
	"context"
	"errors"
	"time"

	"tripmeet/config"
	vendorRepo "tripmeet/database/repository/vendor"
	"tripmeet/models"
	"tripmeet/utils"

	"go.uber.org/zap"
)

// DefaultCheckoutService implements CheckoutService against a wallet
// connector and the vendor registry. The transfer amount is a fixed demo
// constant; the itinerary's computed total is display-only.
type DefaultCheckoutService struct {
	Logger *zap.Logger
	Wallet WalletConnector
	Vendor vendorRepo.VendorRepository
}

// NewCheckoutService constructs the default checkout service.
func NewCheckoutService(logger *zap.Logger, wallet WalletConnector, vendor vendorRepo.VendorRepository) *DefaultCheckoutService {
	return &DefaultCheckoutService{Logger: logger, Wallet: wallet, Vendor: vendor}
}

// Run drives one transfer through the state machine:
// awaitingSignature → sending → confirming → success|error.
// The caller guarantees at most one Run is active per session. Before the
// transfer is submitted, context cancellation abandons the flow silently;
// after submission it is ignored, since a submitted payment cannot be
// recalled.
func (s *DefaultCheckoutService) Run(ctx context.Context, description string, onStatus func(models.PaymentStatus)) {
	status := models.PaymentStatus{
		Amount:      utils.DemoPaymentAmount,
		Description: description,
	}

	recipient, err := s.recipientAddress(ctx)
	if err != nil {
		s.Logger.Error("checkout: no payment recipient", zap.Error(err))
		s.fail(ctx, status, "No payment recipient is configured", false, onStatus)
		return
	}

	req := models.TransferRequest{
		Recipient:   recipient,
		Amount:      utils.DemoPaymentAmount,
		Description: description,
	}

	status.State = models.CheckoutAwaitingSignature
	if !s.emit(ctx, status, onStatus) {
		return
	}

	signed, err := s.Wallet.SignTransfer(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			// Abandoned before submission (navigation/teardown).
			return
		}
		declined := errors.Is(err, ErrUserDeclined)
		message := "Payment failed: " + err.Error()
		if declined {
			message = "Payment cancelled in wallet"
		}
		s.Logger.Warn("checkout: signing failed", zap.Error(err), zap.Bool("declined", declined))
		s.fail(ctx, status, message, declined, onStatus)
		return
	}

	status.State = models.CheckoutSending
	status.Signature = signed.Signature
	if !s.emit(ctx, status, onStatus) {
		return
	}

	// From here on the transfer is on the wire; cancellation no longer
	// abandons the flow.
	if err := s.Wallet.Submit(context.WithoutCancel(ctx), signed); err != nil {
		s.Logger.Error("checkout: submit failed", zap.Error(err))
		s.fail(context.Background(), status, "Payment failed: "+err.Error(), false, onStatus)
		return
	}

	status.State = models.CheckoutConfirming
	onStatus(statusAt(status, time.Now()))

	if err := s.Wallet.Confirm(context.WithoutCancel(ctx), signed.Signature); err != nil {
		s.Logger.Error("checkout: confirmation failed", zap.Error(err), zap.String("signature", signed.Signature))
		s.fail(context.Background(), status, "Payment failed: "+err.Error(), false, onStatus)
		return
	}

	status.State = models.CheckoutSuccess
	s.Logger.Info("checkout: transfer confirmed",
		zap.String("signature", signed.Signature),
		zap.Float64("amount", utils.DemoPaymentAmount))
	onStatus(statusAt(status, time.Now()))
}

// recipientAddress resolves the demo recipient: vendor registry first,
// configured fallback address second.
func (s *DefaultCheckoutService) recipientAddress(ctx context.Context) (string, error) {
	if s.Vendor != nil {
		lookupCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		vendor, err := s.Vendor.GetDefault(lookupCtx)
		cancel()
		if err == nil && vendor.WalletAddress != "" {
			return vendor.WalletAddress, nil
		}
		if err != nil && !errors.Is(err, vendorRepo.ErrNoVendor) {
			s.Logger.Warn("checkout: vendor lookup failed, using fallback", zap.Error(err))
		}
	}
	if addr := config.AppConfig.VendorWalletAddress; addr != "" {
		return addr, nil
	}
	return "", vendorRepo.ErrNoVendor
}

func (s *DefaultCheckoutService) fail(ctx context.Context, status models.PaymentStatus, message string, declined bool, onStatus func(models.PaymentStatus)) {
	status.State = models.CheckoutError
	status.Error = message
	status.UserDeclined = declined
	s.emit(ctx, status, onStatus)
}

// emit reports a transition unless the flow was abandoned.
func (s *DefaultCheckoutService) emit(ctx context.Context, status models.PaymentStatus, onStatus func(models.PaymentStatus)) bool {
	if ctx.Err() != nil {
		return false
	}
	onStatus(statusAt(status, time.Now()))
	return true
}

func statusAt(status models.PaymentStatus, now time.Time) models.PaymentStatus {
	status.UpdatedAt = now
	return status
}
