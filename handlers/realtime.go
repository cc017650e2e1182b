package handlers

import (
	"net/http"
	"time"

	"tripmeet/services/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Browsers connect cross-origin from the meeting page; the room
	// token is the access control, not the Origin header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RealtimeHandler bridges websocket connections to the session hub:
// inbound frames are event envelopes, outbound frames are snapshots and
// map commands.
type RealtimeHandler struct {
	Hub    *session.Hub
	Logger *zap.Logger
}

// NewRealtimeHandler constructs a RealtimeHandler.
func NewRealtimeHandler(hub *session.Hub, logger *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{Hub: hub, Logger: logger}
}

// HandleConnection upgrades the request and pumps frames both ways until
// the client goes away.
func (h *RealtimeHandler) HandleConnection(c *gin.Context) {
	roomID := c.Param("roomID")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sess := h.Hub.GetOrCreate(roomID)
	out, unsubscribe := sess.Subscribe()

	go h.writePump(conn, out)
	h.readPump(conn, sess, unsubscribe)
}

func (h *RealtimeHandler) readPump(conn *websocket.Conn, sess *session.Session, unsubscribe func()) {
	defer func() {
		unsubscribe()
		conn.Close()
	}()

	conn.SetReadLimit(maxMsgSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
		// Malformed frames are logged inside ApplyRaw and must not kill
		// the connection.
		_ = sess.ApplyRaw(data)
	}
}

func (h *RealtimeHandler) writePump(conn *websocket.Conn, out <-chan session.OutboundMessage) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-out:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
