package session

import (
	"sync"
	"time"

	"tripmeet/services/payment"
	"tripmeet/services/routing"
	"tripmeet/utils"

	"go.uber.org/zap"
)

// tickInterval paces the maintenance tick delivered to every live
// session. It doubles as the polling-fallback refresh cadence: ticks run
// through the same reducer, so the timer path can never diverge from the
// event path.
const tickInterval = 2 * time.Second

// sessionIdleTTL matches the snapshot TTL: a session with no subscribers
// and no inputs for this long is torn down, and its Redis snapshot
// expires on the same clock.
const sessionIdleTTL = utils.SessionCacheTTL

// Hub manages the live sessions of this instance, one per room.
type Hub struct {
	logger   *zap.Logger
	router   routing.RouteService
	checkout payment.CheckoutService
	store    SnapshotStore

	mu       sync.Mutex
	sessions map[string]*Session

	stop     chan struct{}
	stopOnce sync.Once
}

// NewHub constructs a hub and starts its maintenance ticker.
func NewHub(logger *zap.Logger, router routing.RouteService, checkout payment.CheckoutService, store SnapshotStore) *Hub {
	h := &Hub{
		logger:   logger,
		router:   router,
		checkout: checkout,
		store:    store,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
	}
	go h.runTicker()
	return h
}

// GetOrCreate returns the live session for a room, creating it on first
// use.
func (h *Hub) GetOrCreate(roomID string) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sessions[roomID]; ok {
		return s
	}
	s := newSession(roomID, h.logger, h.router, h.checkout, h.store)
	h.sessions[roomID] = s
	h.logger.Info("session created", zap.String("room", roomID))
	return s
}

// Get returns the live session for a room, if any.
func (h *Hub) Get(roomID string) (*Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[roomID]
	return s, ok
}

// Store exposes the snapshot store for the polling fallback.
func (h *Hub) Store() SnapshotStore { return h.store }

// Close tears down one room's session.
func (h *Hub) Close(roomID string) {
	h.mu.Lock()
	s, ok := h.sessions[roomID]
	delete(h.sessions, roomID)
	h.mu.Unlock()
	if ok {
		s.Close()
		h.logger.Info("session closed", zap.String("room", roomID))
	}
}

// Shutdown stops the ticker and closes every live session.
func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() { close(h.stop) })

	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

func (h *Hub) runTicker() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			now := time.Now()
			var expired []string
			h.mu.Lock()
			for roomID, s := range h.sessions {
				s.Tick()
				if s.Idle(sessionIdleTTL, now) {
					expired = append(expired, roomID)
				}
			}
			h.mu.Unlock()
			for _, roomID := range expired {
				h.logger.Info("reaping idle session", zap.String("room", roomID))
				h.Close(roomID)
			}
		}
	}
}
