package handlers

import (
	"encoding/json"
	"net/http"

	"tripmeet/models"
	"tripmeet/services/research"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ResearchHandler streams itinerary enrichment as newline-delimited JSON.
type ResearchHandler struct {
	Service research.ResearchService
	Logger  *zap.Logger
}

// NewResearchHandler constructs a ResearchHandler.
func NewResearchHandler(svc research.ResearchService, logger *zap.Logger) *ResearchHandler {
	return &ResearchHandler{Service: svc, Logger: logger}
}

// ResearchRequest carries the full itinerary to enrich, order preserved.
type ResearchRequest struct {
	Items []models.ItineraryItem `json:"items" binding:"required"`
}

// HandleResearchStream runs the sequential enrichment and streams one
// record per line: progress, item_complete/item_error per item, then a
// terminal complete record.
func (h *ResearchHandler) HandleResearchStream(c *gin.Context) {
	var req ResearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Cache-Control", "no-cache")
	c.Writer.WriteHeader(http.StatusOK)

	encoder := json.NewEncoder(c.Writer)
	sink := func(rec models.ResearchStreamRecord) error {
		if err := encoder.Encode(rec); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	}

	if _, err := h.Service.Run(c.Request.Context(), req.Items, sink); err != nil {
		// The service forces completion on stream failure; anything else
		// is logged and the connection simply ends.
		h.Logger.Error("research run failed", zap.Error(err))
	}
}
