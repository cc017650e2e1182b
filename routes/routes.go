package routes

import (
	"net/http"
	"time"

	"tripmeet/handlers"
	"tripmeet/middleware"
	"tripmeet/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoomRoutes registers room bootstrap endpoints.
func RegisterRoomRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/rooms")
	{
		api.POST("/token", hb.CreateRoomTokenHandler)
	}
}

// RegisterSessionRoutes registers session state endpoints. All of them
// require a room token scoped to the room in the path.
func RegisterSessionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/sessions")
	{
		api.Use(middleware.JWTAuthRoomMiddleware())
		api.GET("/:roomID", hb.GetSessionState)
		api.POST("/:roomID/events", hb.PostEvent)
		api.POST("/:roomID/actions", hb.PostAction)
		api.DELETE("/:roomID", hb.CloseSession)
	}
}

// RegisterRealtimeRoutes registers the websocket endpoint. Browsers
// cannot set headers on websocket requests, so the middleware also
// accepts the token as a query parameter.
func RegisterRealtimeRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	ws := r.Group("/ws/rooms")
	{
		ws.Use(middleware.JWTAuthRoomMiddleware())
		ws.GET("/:roomID", hb.HandleConnection)
	}
}

// RegisterResearchRoutes registers the enrichment stream and the
// document export.
func RegisterResearchRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/research")
	{
		api.POST("", hb.HandleResearchStream)
		api.POST("/export", hb.HandleExport)
	}
}

// RegisterPaymentRoutes registers payment lookup endpoints.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payment")
	{
		api.GET("/vendor", hb.GetVendor)
		api.POST("/vendor", hb.RegisterVendor)
		api.GET("/vendor/:id", hb.GetVendorByID)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "dependencies": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterRoomRoutes(r, hb)
	RegisterSessionRoutes(r, hb)
	RegisterRealtimeRoutes(r, hb)
	RegisterResearchRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterHealthRoute(r)
}
