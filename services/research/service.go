package research

import (
	"context"

	"tripmeet/models"

	"go.uber.org/zap"
)

// DefaultResearchService implements ResearchService.
type DefaultResearchService struct {
	Logger   *zap.Logger
	Enricher Enricher
}

// NewDefaultResearchService constructs the service around an enricher.
func NewDefaultResearchService(logger *zap.Logger, enricher Enricher) *DefaultResearchService {
	return &DefaultResearchService{Logger: logger, Enricher: enricher}
}

// Run processes the items one at a time in itinerary order. The UI
// reports a "current item" and depends on strictly sequential progress.
// A single item's failure is recorded and the batch continues; the
// terminal "complete" record is always emitted, even when the sink dies
// mid-stream or every item errors.
func (s *DefaultResearchService) Run(ctx context.Context, items []models.ItineraryItem, sink Sink) ([]models.ResearchResult, error) {
	total := len(items)
	results := make([]models.ResearchResult, 0, total)

	// Once the sink fails the client cannot receive further records, but
	// the remaining items still resolve so the run ends in a completed
	// state rather than hanging.
	sinkAlive := true
	emit := func(rec models.ResearchStreamRecord) {
		if !sinkAlive {
			return
		}
		if err := sink(rec); err != nil {
			s.Logger.Warn("research stream sink failed, forcing completion", zap.Error(err))
			sinkAlive = false
		}
	}

	for i, item := range items {
		current := i + 1
		emit(models.ResearchStreamRecord{
			Type:     models.ResearchRecordProgress,
			Current:  current,
			Total:    total,
			ItemName: item.Name,
		})

		result := models.ResearchResult{
			ItemID:   item.ID,
			ItemName: item.Name,
			ItemType: item.Category,
		}

		guide, err := s.Enricher.Enrich(ctx, item)
		if err != nil {
			s.Logger.Warn("item enrichment failed",
				zap.String("item", item.Name),
				zap.Error(err))
			result.Error = err.Error()
			results = append(results, result)
			emit(models.ResearchStreamRecord{
				Type:     models.ResearchRecordItemError,
				Current:  current,
				Total:    total,
				ItemName: item.Name,
				Error:    err.Error(),
			})
			continue
		}

		result.Research = *guide
		results = append(results, result)
		emit(models.ResearchStreamRecord{
			Type:     models.ResearchRecordItemComplete,
			Current:  current,
			Total:    total,
			ItemName: item.Name,
			Research: guide,
		})
	}

	emit(models.ResearchStreamRecord{
		Type:       models.ResearchRecordComplete,
		Results:    results,
		TotalItems: total,
	})
	return results, nil
}
