package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"tripmeet/models"

	"go.uber.org/zap"
)

type stubRouter struct {
	route *models.Route
	err   error
}

func (r *stubRouter) ComputeRoute(_ context.Context, stops []models.Waypoint) (*models.Route, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.route != nil {
		return r.route, nil
	}
	path := make([]models.Coordinates, 0, len(stops))
	for _, s := range stops {
		path = append(path, s.Coordinates)
	}
	return &models.Route{Path: path, Waypoints: stops, Bounds: models.BoundsOf(path)}, nil
}

type stubCheckout struct {
	statuses []models.PaymentStatus
	started  chan struct{}
	aborted  chan struct{}
	// delay stands in for the vendor lookup and signing wait that run
	// before the first status emit.
	delay time.Duration
}

func (c *stubCheckout) Run(ctx context.Context, description string, onStatus func(models.PaymentStatus)) {
	if c.started != nil {
		c.started <- struct{}{}
	}
	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			if c.aborted != nil {
				close(c.aborted)
			}
			return
		case <-timer.C:
		}
	}
	for _, status := range c.statuses {
		if ctx.Err() != nil {
			if c.aborted != nil {
				close(c.aborted)
			}
			return
		}
		onStatus(status)
	}
}

func newTestSession(t *testing.T, checkout *stubCheckout) *Session {
	t.Helper()
	if checkout == nil {
		checkout = &stubCheckout{}
	}
	s := newSession("room-test", zap.NewNop(), &stubRouter{}, checkout, nil)
	t.Cleanup(s.Close)
	return s
}

func nextMessage(t *testing.T, ch <-chan OutboundMessage) OutboundMessage {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a frame")
	}
	return OutboundMessage{}
}

func waitForState(t *testing.T, ch <-chan OutboundMessage, ok func(models.SessionState) bool) models.SessionState {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg, open := <-ch:
			if !open {
				t.Fatal("subscription closed while waiting for state")
			}
			if msg.Type == "state" && ok(*msg.State) {
				return *msg.State
			}
		case <-deadline:
			t.Fatal("timed out waiting for expected state")
		}
	}
}

func TestSessionSubscribe(t *testing.T) {
	s := newTestSession(t, nil)
	ch, cancel := s.Subscribe()
	defer cancel()

	msg := nextMessage(t, ch)
	if msg.Type != "state" || msg.State == nil {
		t.Fatalf("first frame = %+v, want immediate state snapshot", msg)
	}
	if msg.State.RoomID != "room-test" || msg.State.Version != 0 {
		t.Errorf("unexpected initial snapshot %+v", msg.State)
	}
}

func TestSessionEventFlow(t *testing.T) {
	s := newTestSession(t, nil)
	ch, cancel := s.Subscribe()
	defer cancel()
	nextMessage(t, ch) // initial snapshot

	item := models.ItineraryItem{
		ID: "a", Name: "Cafe", Category: models.CategoryRestaurant,
		Coordinates: &models.Coordinates{Lat: 1, Lng: 1},
	}
	if err := s.ApplyEvent(models.ItineraryAddEvent{Item: item}); err != nil {
		t.Fatalf("ApplyEvent returned error: %v", err)
	}

	state := waitForState(t, ch, func(st models.SessionState) bool { return len(st.Itinerary) == 1 })
	if state.Version == 0 {
		t.Error("version not bumped by add")
	}

	// The coordinate-bearing add also emits a flyTo command.
	sawFly := false
	deadline := time.After(2 * time.Second)
	for !sawFly {
		select {
		case msg := <-ch:
			if msg.Type == "command" && msg.Command != nil && msg.Command.Name == "flyTo" {
				sawFly = true
			}
		case <-deadline:
			t.Fatal("no flyTo command after coordinate-bearing add")
		}
	}
}

func TestSessionRouteComputation(t *testing.T) {
	s := newTestSession(t, nil)
	ch, cancel := s.Subscribe()
	defer cancel()
	nextMessage(t, ch)

	for i, c := range []models.Coordinates{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}} {
		item := models.ItineraryItem{
			ID: string(rune('a' + i)), Name: "Stop", Category: models.CategoryActivity, Coordinates: &c,
		}
		if err := s.ApplyEvent(models.ItineraryAddEvent{Item: item}); err != nil {
			t.Fatalf("ApplyEvent returned error: %v", err)
		}
	}

	state := waitForState(t, ch, func(st models.SessionState) bool { return st.Route != nil })
	if len(state.Route.Waypoints) != 2 {
		t.Errorf("route waypoints = %d, want 2", len(state.Route.Waypoints))
	}
}

func TestSessionCheckoutFlow(t *testing.T) {
	checkout := &stubCheckout{
		statuses: []models.PaymentStatus{
			{State: models.CheckoutAwaitingSignature},
			{State: models.CheckoutSuccess, Signature: "sig_done"},
		},
	}
	s := newTestSession(t, checkout)
	ch, cancel := s.Subscribe()
	defer cancel()
	nextMessage(t, ch)

	if err := s.ApplyAction(SetWalletAction{Connected: true}); err != nil {
		t.Fatalf("ApplyAction returned error: %v", err)
	}
	if err := s.ApplyAction(InitiateCheckoutAction{}); err != nil {
		t.Fatalf("ApplyAction returned error: %v", err)
	}
	waitForState(t, ch, func(st models.SessionState) bool {
		return st.Payment.State == models.CheckoutPendingConfirmation
	})

	if err := s.ApplyAction(ConfirmCheckoutAction{}); err != nil {
		t.Fatalf("ApplyAction returned error: %v", err)
	}
	final := waitForState(t, ch, func(st models.SessionState) bool {
		return st.Payment.State == models.CheckoutSuccess
	})
	if final.Payment.Signature != "sig_done" {
		t.Errorf("signature = %q, want sig_done", final.Payment.Signature)
	}
}

func TestSessionSingleCheckout(t *testing.T) {
	checkout := &stubCheckout{started: make(chan struct{}, 4)}
	s := newTestSession(t, checkout)

	if err := s.ApplyAction(SetWalletAction{Connected: true}); err != nil {
		t.Fatalf("ApplyAction returned error: %v", err)
	}
	// Two authoritative executes in a row: the second arrives while the
	// first Run is still active and must not start another.
	if err := s.ApplyEvent(models.PaymentExecuteEvent{}); err != nil {
		t.Fatalf("ApplyEvent returned error: %v", err)
	}
	if err := s.ApplyEvent(models.PaymentExecuteEvent{}); err != nil {
		t.Fatalf("ApplyEvent returned error: %v", err)
	}

	select {
	case <-checkout.started:
	case <-time.After(2 * time.Second):
		t.Fatal("checkout never started")
	}
	select {
	case <-checkout.started:
		t.Fatal("second checkout started while the first was active")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSessionCheckoutSurvivesUnrelatedActions(t *testing.T) {
	// An authoritative checkout leaves the payment machine at idle until
	// the first wallet status arrives, and the vendor lookup widens that
	// window to seconds. Edits landing inside it must not abandon the
	// transfer.
	checkout := &stubCheckout{
		delay: 200 * time.Millisecond,
		statuses: []models.PaymentStatus{
			{State: models.CheckoutAwaitingSignature},
			{State: models.CheckoutSuccess, Signature: "sig_kept"},
		},
	}
	s := newTestSession(t, checkout)
	ch, cancel := s.Subscribe()
	defer cancel()
	nextMessage(t, ch)

	if err := s.ApplyAction(SetWalletAction{Connected: true}); err != nil {
		t.Fatalf("ApplyAction returned error: %v", err)
	}
	if err := s.ApplyEvent(models.PaymentExecuteEvent{}); err != nil {
		t.Fatalf("ApplyEvent returned error: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	item := models.ItineraryItem{ID: "later", Name: "Bistro", Category: models.CategoryRestaurant}
	if err := s.ApplyAction(AddItemAction{Item: item}); err != nil {
		t.Fatalf("ApplyAction returned error: %v", err)
	}

	final := waitForState(t, ch, func(st models.SessionState) bool {
		return st.Payment.State == models.CheckoutSuccess
	})
	if final.Payment.Signature != "sig_kept" {
		t.Errorf("signature = %q, want sig_kept", final.Payment.Signature)
	}
}

func TestSessionExplicitCancelAbandonsCheckout(t *testing.T) {
	checkout := &stubCheckout{
		started:  make(chan struct{}, 1),
		aborted:  make(chan struct{}),
		delay:    5 * time.Second,
		statuses: []models.PaymentStatus{{State: models.CheckoutSuccess}},
	}
	s := newTestSession(t, checkout)

	if err := s.ApplyAction(SetWalletAction{Connected: true}); err != nil {
		t.Fatalf("ApplyAction returned error: %v", err)
	}
	if err := s.ApplyEvent(models.PaymentExecuteEvent{}); err != nil {
		t.Fatalf("ApplyEvent returned error: %v", err)
	}
	select {
	case <-checkout.started:
	case <-time.After(2 * time.Second):
		t.Fatal("checkout never started")
	}

	if err := s.ApplyAction(CancelCheckoutAction{}); err != nil {
		t.Fatalf("ApplyAction returned error: %v", err)
	}
	select {
	case <-checkout.aborted:
	case <-time.After(2 * time.Second):
		t.Fatal("explicit cancel did not abandon the transfer")
	}
}

func TestSubscribeVersionOrdering(t *testing.T) {
	s := newTestSession(t, nil)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			item := models.ItineraryItem{ID: fmt.Sprintf("item-%d", i), Name: "Stop"}
			if err := s.ApplyAction(AddItemAction{Item: item}); err != nil {
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()
	defer wg.Wait()
	defer close(stop)

	// Subscribe repeatedly while the state is churning. Frames may be
	// dropped for slow consumers but versions must never go backwards,
	// in particular the seeded snapshot must precede newer broadcasts.
	for i := 0; i < 10; i++ {
		ch, cancel := s.Subscribe()
		var last uint64
		deadline := time.After(100 * time.Millisecond)
	drain:
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					break drain
				}
				if msg.Type != "state" {
					continue
				}
				if msg.State.Version < last {
					cancel()
					t.Fatalf("version regressed: %d after %d", msg.State.Version, last)
				}
				last = msg.State.Version
			case <-deadline:
				break drain
			}
		}
		cancel()
	}
}

func TestSessionApplyRaw(t *testing.T) {
	s := newTestSession(t, nil)

	t.Run("unknown event type is dropped silently", func(t *testing.T) {
		if err := s.ApplyRaw([]byte(`{"type": "FUTURE_THING"}`)); err != nil {
			t.Errorf("unknown event returned error: %v", err)
		}
	})

	t.Run("malformed envelope errors without killing the session", func(t *testing.T) {
		if err := s.ApplyRaw([]byte(`not json`)); err == nil {
			t.Error("expected an error for malformed envelope")
		}
		if err := s.ApplyRaw([]byte(`{"type": "ITINERARY_CLEAR"}`)); err != nil {
			t.Errorf("session unusable after malformed frame: %v", err)
		}
	})
}

func TestSessionIdle(t *testing.T) {
	s := newTestSession(t, nil)

	t.Run("subscribed session is never idle", func(t *testing.T) {
		_, cancel := s.Subscribe()
		defer cancel()
		if s.Idle(0, time.Now()) {
			t.Error("session with a subscriber reported idle")
		}
	})

	t.Run("unsubscribed session goes idle after the window", func(t *testing.T) {
		if !s.Idle(0, time.Now().Add(time.Nanosecond)) {
			t.Error("session without subscribers never reported idle")
		}
		if s.Idle(time.Hour, time.Now()) {
			t.Error("session reported idle before the window elapsed")
		}
	})
}

func TestSessionClose(t *testing.T) {
	s := newSession("room-close", zap.NewNop(), &stubRouter{}, &stubCheckout{}, nil)
	ch, cancel := s.Subscribe()
	defer cancel()

	s.Close()

	if err := s.ApplyAction(ClearItineraryAction{}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed after close, got %v", err)
	}

	// Subscribers are released on close.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, open := <-ch:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("subscription not closed on session close")
		}
	}
}
