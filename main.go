// File: tripmeet/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tripmeet/config"
	"tripmeet/database"
	vendorRepo "tripmeet/database/repository/vendor"
	"tripmeet/handlers"
	"tripmeet/middleware"
	"tripmeet/routes"
	"tripmeet/services/payment"
	"tripmeet/services/research"
	"tripmeet/services/routing"
	"tripmeet/services/session"
	"tripmeet/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()
	utils.StartHealthMonitor(utils.GetSessionCacheClient(), database.MongoClient)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	vendRepo := vendorRepo.NewMongoVendorRepo()

	// services.
	routeService := routing.NewGoogleRouteService()
	walletConnector := payment.NewSimulatedWalletConnector(logger)
	checkoutService := payment.NewCheckoutService(logger, walletConnector, vendRepo)
	snapshotStore := session.NewRedisSnapshotStore(utils.GetSessionCacheClient())
	hub := session.NewHub(logger, routeService, checkoutService, snapshotStore)

	var enricher research.Enricher = research.StaticEnricher{}
	if key := config.AppConfig.GeminiAPIKey; key != "" {
		gemini, err := research.NewGeminiEnricher(context.Background(), key)
		if err != nil {
			logger.Sugar().Warnf("main: Gemini unavailable, using static guides: %v", err)
		} else {
			enricher = gemini
			defer gemini.Close()
		}
	}
	researchService := research.NewDefaultResearchService(logger, enricher)

	sessionHandler := handlers.NewSessionHandler(hub, logger)
	realtimeHandler := handlers.NewRealtimeHandler(hub, logger)
	researchHandler := handlers.NewResearchHandler(researchService, logger)
	exportHandler := handlers.NewExportHandler(logger)
	paymentHandler := handlers.NewPaymentHandler(vendRepo, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		// Room bootstrap endpoints.
		CreateRoomTokenHandler: handlers.CreateRoomTokenHandler,

		// Session endpoints.
		GetSessionState: sessionHandler.GetSessionState,
		PostEvent:       sessionHandler.PostEvent,
		PostAction:      sessionHandler.PostAction,
		CloseSession:    sessionHandler.CloseSession,

		// Realtime endpoint.
		HandleConnection: realtimeHandler.HandleConnection,

		// Research endpoints.
		HandleResearchStream: researchHandler.HandleResearchStream,
		HandleExport:         exportHandler.HandleExport,

		// Payment endpoints.
		GetVendor:      paymentHandler.GetVendor,
		RegisterVendor: paymentHandler.RegisterVendor,
		GetVendorByID:  paymentHandler.GetVendorByID,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	// Close live sessions after the listener drains so in-flight requests
	// still see their session.
	hub.Shutdown()

	logger.Sugar().Info("main: server stopped gracefully")
}
