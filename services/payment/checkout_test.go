package payment

import (
	"context"
	"errors"
	"testing"

	"tripmeet/config"
	vendorRepo "tripmeet/database/repository/vendor"
	"tripmeet/models"

	"go.uber.org/zap"
)

type stubWallet struct {
	signErr    error
	submitErr  error
	confirmErr error
}

func (w *stubWallet) SignTransfer(ctx context.Context, req models.TransferRequest) (*models.SignedTransfer, error) {
	if w.signErr != nil {
		return nil, w.signErr
	}
	return &models.SignedTransfer{Signature: "sig_test", Payload: []byte(req.Description)}, nil
}

func (w *stubWallet) Submit(ctx context.Context, transfer *models.SignedTransfer) error {
	return w.submitErr
}

func (w *stubWallet) Confirm(ctx context.Context, signature string) error {
	return w.confirmErr
}

type stubVendors struct {
	vendor *models.Vendor
	err    error
}

func (v *stubVendors) Create(ctx context.Context, vendor models.Vendor) (string, error) {
	return "", errors.New("not implemented")
}

func (v *stubVendors) GetByID(ctx context.Context, id string) (*models.Vendor, error) {
	return nil, errors.New("not implemented")
}

func (v *stubVendors) GetDefault(ctx context.Context) (*models.Vendor, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.vendor, nil
}

func collect(svc *DefaultCheckoutService, ctx context.Context) []models.PaymentStatus {
	var statuses []models.PaymentStatus
	svc.Run(ctx, "Trip checkout (2 stops, est. $120.00)", func(s models.PaymentStatus) {
		statuses = append(statuses, s)
	})
	return statuses
}

func states(statuses []models.PaymentStatus) []models.CheckoutState {
	out := make([]models.CheckoutState, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, s.State)
	}
	return out
}

func TestCheckoutRun(t *testing.T) {
	logger := zap.NewNop()
	vendors := &stubVendors{vendor: &models.Vendor{ID: "v1", Name: "Demo", WalletAddress: "wallet_abc"}}

	t.Run("happy path walks the full state machine", func(t *testing.T) {
		svc := NewCheckoutService(logger, &stubWallet{}, vendors)
		got := states(collect(svc, context.Background()))
		want := []models.CheckoutState{
			models.CheckoutAwaitingSignature,
			models.CheckoutSending,
			models.CheckoutConfirming,
			models.CheckoutSuccess,
		}
		if len(got) != len(want) {
			t.Fatalf("state sequence = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("state sequence = %v, want %v", got, want)
			}
		}
	})

	t.Run("user decline is reported distinctly", func(t *testing.T) {
		svc := NewCheckoutService(logger, &stubWallet{signErr: ErrUserDeclined}, vendors)
		statuses := collect(svc, context.Background())
		last := statuses[len(statuses)-1]
		if last.State != models.CheckoutError {
			t.Fatalf("final state = %s, want error", last.State)
		}
		if !last.UserDeclined {
			t.Error("decline not flagged as UserDeclined")
		}
		if last.Error != "Payment cancelled in wallet" {
			t.Errorf("decline message = %q", last.Error)
		}
	})

	t.Run("signing failure other than decline", func(t *testing.T) {
		svc := NewCheckoutService(logger, &stubWallet{signErr: errors.New("wallet locked")}, vendors)
		statuses := collect(svc, context.Background())
		last := statuses[len(statuses)-1]
		if last.State != models.CheckoutError || last.UserDeclined {
			t.Fatalf("unexpected terminal status %+v", last)
		}
	})

	t.Run("confirmation failure ends in error with signature", func(t *testing.T) {
		svc := NewCheckoutService(logger, &stubWallet{confirmErr: errors.New("timeout")}, vendors)
		statuses := collect(svc, context.Background())
		last := statuses[len(statuses)-1]
		if last.State != models.CheckoutError {
			t.Fatalf("final state = %s, want error", last.State)
		}
		if last.Signature != "sig_test" {
			t.Errorf("signature lost on late failure: %q", last.Signature)
		}
	})

	t.Run("cancelled before signing emits nothing further", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		svc := NewCheckoutService(logger, &stubWallet{signErr: ctx.Err()}, vendors)
		statuses := collect(svc, ctx)
		if len(statuses) != 0 {
			t.Errorf("abandoned run emitted %v", states(statuses))
		}
	})
}

func TestRecipientAddress(t *testing.T) {
	logger := zap.NewNop()

	t.Run("registry vendor wins", func(t *testing.T) {
		svc := NewCheckoutService(logger, &stubWallet{}, &stubVendors{vendor: &models.Vendor{WalletAddress: "wallet_registry"}})
		addr, err := svc.recipientAddress(context.Background())
		if err != nil || addr != "wallet_registry" {
			t.Errorf("recipientAddress = %q, %v", addr, err)
		}
	})

	t.Run("falls back to configured address", func(t *testing.T) {
		prev := config.AppConfig.VendorWalletAddress
		config.AppConfig.VendorWalletAddress = "wallet_config"
		defer func() { config.AppConfig.VendorWalletAddress = prev }()

		svc := NewCheckoutService(logger, &stubWallet{}, &stubVendors{err: vendorRepo.ErrNoVendor})
		addr, err := svc.recipientAddress(context.Background())
		if err != nil || addr != "wallet_config" {
			t.Errorf("recipientAddress = %q, %v", addr, err)
		}
	})

	t.Run("no recipient anywhere errors", func(t *testing.T) {
		prev := config.AppConfig.VendorWalletAddress
		config.AppConfig.VendorWalletAddress = ""
		defer func() { config.AppConfig.VendorWalletAddress = prev }()

		svc := NewCheckoutService(logger, &stubWallet{}, &stubVendors{err: vendorRepo.ErrNoVendor})
		if _, err := svc.recipientAddress(context.Background()); !errors.Is(err, vendorRepo.ErrNoVendor) {
			t.Errorf("expected ErrNoVendor, got %v", err)
		}
	})
}
