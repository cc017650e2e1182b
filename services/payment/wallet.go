package payment

import (
	"context"
	"time"

	"tripmeet/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SimulatedWalletConnector stands in for a real wallet adapter: it signs,
// submits and confirms after short fixed delays. Real signing happens in
// the client's wallet extension; the server only tracks the stages.
type SimulatedWalletConnector struct {
	Logger *zap.Logger

	// SignDelay, SubmitDelay and ConfirmDelay pace the simulation.
	SignDelay    time.Duration
	SubmitDelay  time.Duration
	ConfirmDelay time.Duration
}

// NewSimulatedWalletConnector returns a connector with demo-friendly
// delays.
func NewSimulatedWalletConnector(logger *zap.Logger) *SimulatedWalletConnector {
	return &SimulatedWalletConnector{
		Logger:       logger,
		SignDelay:    800 * time.Millisecond,
		SubmitDelay:  400 * time.Millisecond,
		ConfirmDelay: 1200 * time.Millisecond,
	}
}

func (w *SimulatedWalletConnector) SignTransfer(ctx context.Context, req models.TransferRequest) (*models.SignedTransfer, error) {
	if err := wait(ctx, w.SignDelay); err != nil {
		return nil, err
	}
	signature := "sig_" + uuid.New().String()
	w.Logger.Info("wallet: transfer signed",
		zap.String("recipient", req.Recipient),
		zap.Float64("amount", req.Amount),
		zap.String("signature", signature))
	return &models.SignedTransfer{
		Signature: signature,
		Payload:   []byte(req.Description),
	}, nil
}

func (w *SimulatedWalletConnector) Submit(ctx context.Context, transfer *models.SignedTransfer) error {
	if err := wait(ctx, w.SubmitDelay); err != nil {
		return err
	}
	w.Logger.Info("wallet: transfer submitted", zap.String("signature", transfer.Signature))
	return nil
}

func (w *SimulatedWalletConnector) Confirm(ctx context.Context, signature string) error {
	if err := wait(ctx, w.ConfirmDelay); err != nil {
		return err
	}
	w.Logger.Info("wallet: transfer confirmed", zap.String("signature", signature))
	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
