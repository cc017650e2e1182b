package research

import (
	"context"

	"tripmeet/models"
)

// Sink receives one stream record. A sink error means the client is gone;
// the run stops emitting but still reports overall completion.
type Sink func(models.ResearchStreamRecord) error

// ResearchService enriches itinerary items with logistics guidance,
// strictly one item at a time.
type ResearchService interface {
	Run(ctx context.Context, items []models.ItineraryItem, sink Sink) ([]models.ResearchResult, error)
}

// Enricher produces the guidance for a single item.
type Enricher interface {
	Enrich(ctx context.Context, item models.ItineraryItem) (*models.ResearchGuide, error)
}
