package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Room bootstrap endpoints
	CreateRoomTokenHandler gin.HandlerFunc

	// Session endpoints
	GetSessionState gin.HandlerFunc
	PostEvent       gin.HandlerFunc
	PostAction      gin.HandlerFunc
	CloseSession    gin.HandlerFunc

	// Realtime endpoint
	HandleConnection gin.HandlerFunc

	// Research endpoints
	HandleResearchStream gin.HandlerFunc
	HandleExport         gin.HandlerFunc

	// Payment endpoints
	GetVendor      gin.HandlerFunc
	RegisterVendor gin.HandlerFunc
	GetVendorByID  gin.HandlerFunc
}
