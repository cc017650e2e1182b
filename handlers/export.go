package handlers

import (
	"fmt"
	"net/http"
	"time"

	"tripmeet/models"
	"tripmeet/services/export"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ExportHandler renders completed research into a downloadable document.
type ExportHandler struct {
	Logger *zap.Logger
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(logger *zap.Logger) *ExportHandler {
	return &ExportHandler{Logger: logger}
}

// ExportRequest carries the research results in original itinerary order.
type ExportRequest struct {
	Results []models.ResearchResult `json:"results" binding:"required"`
}

// HandleExport writes the paginated PDF as an attachment named from the
// current date.
func (h *ExportHandler) HandleExport(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if len(req.Results) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no research results to export"})
		return
	}

	now := time.Now()
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(now)))

	if err := export.WriteDocument(c.Writer, req.Results, now); err != nil {
		h.Logger.Error("document export failed", zap.Error(err))
		// Headers are already written; the truncated body signals failure.
		return
	}
}
