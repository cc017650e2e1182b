package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"tripmeet/models"
	"tripmeet/services/session"
	"tripmeet/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHandler exposes the meeting session surface: snapshot polling,
// agent event ingress, local actions, and teardown.
type SessionHandler struct {
	Hub    *session.Hub
	Logger *zap.Logger
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(hub *session.Hub, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{Hub: hub, Logger: logger}
}

// GetSessionState serves the current snapshot. This is the polling
// fallback path: it reads the same state the push path broadcasts, so
// the two can never diverge.
func (h *SessionHandler) GetSessionState(c *gin.Context) {
	roomID := c.Param("roomID")

	if sess, ok := h.Hub.Get(roomID); ok {
		c.JSON(http.StatusOK, sess.Snapshot())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	state, err := h.Hub.Store().Load(ctx, roomID)
	if err != nil {
		if errors.Is(err, session.ErrSnapshotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		h.Logger.Error("failed to load session snapshot", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to load session", err.Error())
		return
	}
	c.JSON(http.StatusOK, state)
}

// PostEvent ingests one agent-pushed event envelope over HTTP. Unknown
// event types are accepted and ignored; malformed envelopes are rejected.
func (h *SessionHandler) PostEvent(c *gin.Context) {
	roomID := c.Param("roomID")

	data, err := c.GetRawData()
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing event payload"})
		return
	}

	sess := h.Hub.GetOrCreate(roomID)
	if err := sess.ApplyRaw(data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event", "details": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// localActionRequest is the tagged local-action envelope from the UI.
type localActionRequest struct {
	Type      string                `json:"type" binding:"required"`
	Item      *models.ItineraryItem `json:"item,omitempty"`
	Name      string                `json:"name,omitempty"`
	From      *int                  `json:"from,omitempty"`
	To        *int                  `json:"to,omitempty"`
	Connected *bool                 `json:"connected,omitempty"`
}

// PostAction applies one local UI action through the same reducer the
// realtime events go through.
func (h *SessionHandler) PostAction(c *gin.Context) {
	roomID := c.Param("roomID")

	var req localActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	action, err := decodeAction(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := h.Hub.GetOrCreate(roomID)
	if err := sess.ApplyAction(action); err != nil {
		c.JSON(http.StatusGone, gin.H{"error": "session closed"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// CloseSession tears down the room's session and its snapshot.
func (h *SessionHandler) CloseSession(c *gin.Context) {
	roomID := c.Param("roomID")
	h.Hub.Close(roomID)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.Hub.Store().Delete(ctx, roomID); err != nil {
		h.Logger.Warn("failed to delete session snapshot", zap.String("room", roomID), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}

func decodeAction(req localActionRequest) (session.Action, error) {
	switch req.Type {
	case "add_item":
		if req.Item == nil {
			return nil, errors.New("add_item requires an item")
		}
		return session.AddItemAction{Item: *req.Item}, nil
	case "remove_item":
		if req.Name == "" {
			return nil, errors.New("remove_item requires a name")
		}
		return session.RemoveItemAction{Name: req.Name}, nil
	case "reorder_items":
		if req.From == nil || req.To == nil {
			return nil, errors.New("reorder_items requires from and to")
		}
		return session.ReorderItemsAction{From: *req.From, To: *req.To}, nil
	case "clear_itinerary":
		return session.ClearItineraryAction{}, nil
	case "set_wallet":
		if req.Connected == nil {
			return nil, errors.New("set_wallet requires connected")
		}
		return session.SetWalletAction{Connected: *req.Connected}, nil
	case "initiate_checkout":
		return session.InitiateCheckoutAction{}, nil
	case "confirm_checkout":
		return session.ConfirmCheckoutAction{}, nil
	case "cancel_checkout":
		return session.CancelCheckoutAction{}, nil
	default:
		return nil, errors.New("unknown action type: " + req.Type)
	}
}
