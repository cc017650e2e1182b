package handlers

import (
	"fmt"
	"net/http"

	"tripmeet/config"
	"tripmeet/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoomTokenRequest is the session bootstrap input: a desired room name
// and the participant's display name.
type RoomTokenRequest struct {
	RoomName        string `json:"roomName"`
	ParticipantName string `json:"participantName" binding:"required"`
}

// RoomTokenResponse carries the connection token, the realtime URL, and
// the (possibly server-assigned) final room name.
type RoomTokenResponse struct {
	Token    string `json:"token"`
	URL      string `json:"url"`
	RoomName string `json:"roomName"`
}

// CreateRoomTokenHandler mints a room access token. A blank room name
// gets a server-assigned one.
func CreateRoomTokenHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var req RoomTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	roomName := req.RoomName
	if roomName == "" {
		roomName = "trip-" + uuid.New().String()[:8]
	}

	token, err := utils.GenerateRoomToken(roomName, req.ParticipantName, utils.RoomTokenTTL)
	if err != nil {
		logger.Error("Failed to mint room token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room token"})
		return
	}

	c.JSON(http.StatusOK, RoomTokenResponse{
		Token:    token,
		URL:      fmt.Sprintf("%s/%s", config.AppConfig.RealtimeURL, roomName),
		RoomName: roomName,
	})
}
