package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"tripmeet/models"
	"tripmeet/services/payment"
	"tripmeet/services/routing"

	"go.uber.org/zap"
)

// OutboundMessage is one frame pushed to session subscribers: either a
// full state snapshot or a fire-and-forget map command.
type OutboundMessage struct {
	Type    string               `json:"type"` // "state" or "command"
	State   *models.SessionState `json:"state,omitempty"`
	Command *MapCommand          `json:"command,omitempty"`
}

// MapCommand is an imperative instruction for the client map renderer.
type MapCommand struct {
	Name        string              `json:"name"` // "flyTo" or "fitBounds"
	Coordinates *models.Coordinates `json:"coordinates,omitempty"`
	Zoom        float64             `json:"zoom,omitempty"`
	Bounds      *models.Bounds      `json:"bounds,omitempty"`
}

// ErrSessionClosed is returned when submitting to a closed session.
var ErrSessionClosed = errors.New("session closed")

// Session owns the canonical state for one room. A single goroutine
// drains the input queue, so handlers run to completion before the next
// queued input; async sub-tasks (routing, checkout) deliver their
// results as later inputs.
type Session struct {
	roomID   string
	logger   *zap.Logger
	router   routing.RouteService
	checkout payment.CheckoutService
	store    SnapshotStore

	inputs chan input
	done   chan struct{}
	cancel context.CancelFunc

	stateMu sync.RWMutex
	state   models.SessionState

	subMu sync.Mutex
	subs  map[chan OutboundMessage]struct{}

	// lastActive is the unix-nano time of the last submitted input or
	// subscription, read by the hub's idle reaper.
	lastActive atomic.Int64

	// Loop-goroutine state: guards the single in-flight checkout.
	checkoutActive bool
	checkoutCancel context.CancelFunc

	closeOnce sync.Once
}

func newSession(roomID string, logger *zap.Logger, router routing.RouteService, checkout payment.CheckoutService, store SnapshotStore) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		roomID:   roomID,
		logger:   logger.With(zap.String("room", roomID)),
		router:   router,
		checkout: checkout,
		store:    store,
		inputs:   make(chan input, 64),
		done:     make(chan struct{}),
		cancel:   cancel,
		state:    models.NewSessionState(roomID),
		subs:     make(map[chan OutboundMessage]struct{}),
	}
	s.lastActive.Store(time.Now().UnixNano())
	go s.run(ctx)
	return s
}

// RoomID returns the room this session belongs to.
func (s *Session) RoomID() string { return s.roomID }

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() models.SessionState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// ApplyRaw decodes and queues one inbound realtime envelope. Unknown
// event types are logged and dropped; malformed payloads never fail the
// session.
func (s *Session) ApplyRaw(data []byte) error {
	ev, err := models.DecodeEvent(data)
	if err != nil {
		if errors.Is(err, models.ErrUnknownEvent) {
			s.logger.Debug("ignoring unknown event", zap.Error(err))
			return nil
		}
		s.logger.Warn("dropping malformed event", zap.Error(err))
		return err
	}
	return s.ApplyEvent(ev)
}

// ApplyEvent queues one decoded inbound event.
func (s *Session) ApplyEvent(ev models.Event) error {
	return s.submit(eventInput{Event: ev})
}

// ApplyAction queues one local UI action.
func (s *Session) ApplyAction(a Action) error {
	return s.submit(actionInput{Action: a})
}

// Tick queues a maintenance tick (notification expiry, payment reset).
func (s *Session) Tick() {
	// Best effort: a full queue means the loop is busy and the next tick
	// will catch up.
	select {
	case s.inputs <- tickInput{}:
	case <-s.done:
	default:
	}
}

func (s *Session) submit(in input) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	case s.inputs <- in:
		s.lastActive.Store(time.Now().UnixNano())
		return nil
	}
}

// Idle reports whether the session has no subscribers and has seen no
// inputs for at least d.
func (s *Session) Idle(d time.Duration, now time.Time) bool {
	s.subMu.Lock()
	subs := len(s.subs)
	s.subMu.Unlock()
	if subs > 0 {
		return false
	}
	return now.Sub(time.Unix(0, s.lastActive.Load())) >= d
}

// Subscribe registers a consumer for state and command frames. The
// returned cancel function must be called when the consumer goes away.
func (s *Session) Subscribe() (<-chan OutboundMessage, func()) {
	ch := make(chan OutboundMessage, 16)
	s.subMu.Lock()
	// Seed the current state before registering so a concurrent broadcast
	// cannot queue a newer frame ahead of it; subscribers always observe
	// monotonically non-decreasing versions.
	snapshot := s.Snapshot()
	ch <- OutboundMessage{Type: "state", State: &snapshot}
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()
	s.lastActive.Store(time.Now().UnixNano())

	return ch, func() {
		s.subMu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.subMu.Unlock()
	}
}

// Close tears the session down: stops the loop and timers, abandons any
// pre-submission checkout steps, and drops all subscribers. A payment
// already submitted to the network is not recalled.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done

		s.subMu.Lock()
		for ch := range s.subs {
			delete(s.subs, ch)
			close(ch)
		}
		s.subMu.Unlock()
	})
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case in := <-s.inputs:
			s.process(ctx, in)
		}
	}
}

func (s *Session) process(ctx context.Context, in input) {
	prev := s.Snapshot()
	next, effects := reduce(prev, in, time.Now())

	if next.Version != prev.Version {
		s.stateMu.Lock()
		s.state = next
		s.stateMu.Unlock()
		s.persist(next)
		s.broadcast(OutboundMessage{Type: "state", State: &next})
	}

	s.trackCheckout(in, next)
	s.runEffects(ctx, effects)
}

// trackCheckout clears the in-flight flag once the machine reaches a
// terminal or idle state, and cancels an abandoned pre-submission flow.
// Only an explicit cancel abandons the flow: unrelated actions must not
// touch it, because an authoritative checkout leaves Payment at idle
// until the first wallet status arrives.
func (s *Session) trackCheckout(in input, state models.SessionState) {
	switch v := in.(type) {
	case paymentStatusInput:
		if !state.Payment.State.InFlight() {
			s.checkoutActive = false
			s.checkoutCancel = nil
		}
	case actionInput:
		if _, ok := v.Action.(CancelCheckoutAction); !ok {
			return
		}
		if s.checkoutActive && !state.Payment.State.InFlight() {
			if s.checkoutCancel != nil {
				s.checkoutCancel()
				s.checkoutCancel = nil
			}
			s.checkoutActive = false
		}
	}
}

func (s *Session) runEffects(ctx context.Context, effects []Effect) {
	for _, effect := range effects {
		switch e := effect.(type) {
		case FocusLocationEffect:
			coords := e.Coordinates
			s.broadcast(OutboundMessage{Type: "command", Command: &MapCommand{
				Name:        "flyTo",
				Coordinates: &coords,
				Zoom:        e.Zoom,
			}})
		case FitBoundsEffect:
			bounds := e.Bounds
			s.broadcast(OutboundMessage{Type: "command", Command: &MapCommand{
				Name:   "fitBounds",
				Bounds: &bounds,
			}})
		case ComputeRouteEffect:
			go s.computeRoute(ctx, e.Stops)
		case StartCheckoutEffect:
			s.startCheckout(ctx)
		}
	}
}

// computeRoute asks the router for a multi-stop route and falls back to
// a straight line through the stops so the map always shows something
// once two points exist.
func (s *Session) computeRoute(ctx context.Context, stops []models.Waypoint) {
	routeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	route, err := s.router.ComputeRoute(routeCtx, stops)
	if err != nil {
		s.logger.Warn("route computation failed, using straight-line fallback", zap.Error(err))
		route = routing.StraightLineRoute(stops)
	}
	if route == nil {
		return
	}
	in := routeComputedInput{Route: route, Toast: RouteToast(stops)}
	select {
	case s.inputs <- in:
	case <-s.done:
	}
}

func (s *Session) startCheckout(ctx context.Context) {
	if s.checkoutActive {
		return
	}
	s.checkoutActive = true
	checkoutCtx, cancel := context.WithCancel(ctx)
	s.checkoutCancel = cancel

	description := checkoutDescription(s.Snapshot())
	go s.checkout.Run(checkoutCtx, description, func(status models.PaymentStatus) {
		select {
		case s.inputs <- paymentStatusInput{Status: status}:
		case <-s.done:
		}
	})
}

func (s *Session) persist(state models.SessionState) {
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.store.Save(ctx, state); err != nil {
		s.logger.Error("failed to persist session snapshot", zap.Error(err))
	}
}

func (s *Session) broadcast(msg OutboundMessage) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- msg:
		default:
			// Slow consumer: drop rather than stall the loop.
			s.logger.Debug("dropping frame for slow subscriber")
		}
	}
}
