package middleware

import (
	"net/http"
	"strings"

	"tripmeet/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthRoomMiddleware validates the room access token and checks that
// its room claim matches the :roomID path parameter. The token may be
// supplied as a Bearer header or, for websocket upgrades, as an
// "access_token" query parameter.
func JWTAuthRoomMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if tokenString == "" {
			tokenString = c.Query("access_token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
				"code":  0,
			})
			return
		}

		roomID, participant, err := utils.ValidateRoomToken(tokenString)
		if err != nil || roomID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
				"code":  0,
			})
			return
		}
		if param := c.Param("roomID"); param != "" && param != roomID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Token does not grant access to this room",
				"code":  0,
			})
			return
		}

		c.Set("roomID", roomID)
		c.Set("participantName", participant)
		c.Next()
	}
}
