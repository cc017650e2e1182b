package research

import (
	"context"
	"errors"
	"testing"

	"tripmeet/models"

	"go.uber.org/zap"
)

type scriptedEnricher struct {
	failFor map[string]error
}

func (e scriptedEnricher) Enrich(_ context.Context, item models.ItineraryItem) (*models.ResearchGuide, error) {
	if err, ok := e.failFor[item.Name]; ok {
		return nil, err
	}
	return &models.ResearchGuide{
		BestTimeToVisit: "Morning",
		Duration:        "1 hour",
		Directions:      "Walk from the station",
	}, nil
}

func items(names ...string) []models.ItineraryItem {
	out := make([]models.ItineraryItem, 0, len(names))
	for i, n := range names {
		out = append(out, models.ItineraryItem{
			ID:       string(rune('a' + i)),
			Name:     n,
			Category: models.CategoryActivity,
		})
	}
	return out
}

func TestResearchRun(t *testing.T) {
	logger := zap.NewNop()

	t.Run("processes items strictly in order", func(t *testing.T) {
		svc := NewDefaultResearchService(logger, scriptedEnricher{})
		var records []models.ResearchStreamRecord
		sink := func(rec models.ResearchStreamRecord) error {
			records = append(records, rec)
			return nil
		}

		results, err := svc.Run(context.Background(), items("One", "Two", "Three"), sink)
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}

		// progress/item_complete pairs per item, then a terminal complete.
		if len(records) != 7 {
			t.Fatalf("expected 7 records, got %d", len(records))
		}
		wantCurrent := []int{1, 1, 2, 2, 3, 3}
		for i, want := range wantCurrent {
			if records[i].Current != want {
				t.Errorf("record %d current = %d, want %d", i, records[i].Current, want)
			}
		}
		for i := 0; i < 6; i += 2 {
			if records[i].Type != models.ResearchRecordProgress {
				t.Errorf("record %d type = %s, want progress", i, records[i].Type)
			}
			if records[i+1].Type != models.ResearchRecordItemComplete {
				t.Errorf("record %d type = %s, want item_complete", i+1, records[i+1].Type)
			}
		}
		final := records[len(records)-1]
		if final.Type != models.ResearchRecordComplete || final.TotalItems != 3 || len(final.Results) != 3 {
			t.Errorf("unexpected terminal record %+v", final)
		}
	})

	t.Run("item failure is recorded and the batch continues", func(t *testing.T) {
		svc := NewDefaultResearchService(logger, scriptedEnricher{
			failFor: map[string]error{"Two": errors.New("model unavailable")},
		})
		var records []models.ResearchStreamRecord
		sink := func(rec models.ResearchStreamRecord) error {
			records = append(records, rec)
			return nil
		}

		results, err := svc.Run(context.Background(), items("One", "Two", "Three"), sink)
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("expected 3 results including the failed item, got %d", len(results))
		}
		if results[1].Error == "" {
			t.Error("failed item has no recorded error")
		}
		if results[2].Error != "" {
			t.Errorf("item after a failure was not processed: %+v", results[2])
		}

		var sawItemError bool
		for _, rec := range records {
			if rec.Type == models.ResearchRecordItemError && rec.ItemName == "Two" {
				sawItemError = true
			}
		}
		if !sawItemError {
			t.Error("no item_error record for the failed item")
		}
	})

	t.Run("sink failure forces completion", func(t *testing.T) {
		svc := NewDefaultResearchService(logger, scriptedEnricher{})
		var delivered int
		sink := func(models.ResearchStreamRecord) error {
			delivered++
			if delivered >= 2 {
				return errors.New("client went away")
			}
			return nil
		}

		results, err := svc.Run(context.Background(), items("One", "Two", "Three"), sink)
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		// Remaining items still resolve so the run ends complete.
		if len(results) != 3 {
			t.Errorf("expected all 3 results despite dead sink, got %d", len(results))
		}
	})

	t.Run("empty itinerary emits only the terminal record", func(t *testing.T) {
		svc := NewDefaultResearchService(logger, scriptedEnricher{})
		var records []models.ResearchStreamRecord
		sink := func(rec models.ResearchStreamRecord) error {
			records = append(records, rec)
			return nil
		}

		results, err := svc.Run(context.Background(), nil, sink)
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("expected no results, got %d", len(results))
		}
		if len(records) != 1 || records[0].Type != models.ResearchRecordComplete {
			t.Errorf("expected a single terminal record, got %+v", records)
		}
	})
}

func TestStaticEnricher(t *testing.T) {
	enricher := StaticEnricher{}

	t.Run("dispatches by category", func(t *testing.T) {
		guide, err := enricher.Enrich(context.Background(), models.ItineraryItem{
			Name: "Chez Nous", Category: models.CategoryRestaurant,
		})
		if err != nil {
			t.Fatalf("Enrich returned error: %v", err)
		}
		if !guide.ReservationRequired {
			t.Error("restaurant guide should require reservations")
		}
	})

	t.Run("unknown category falls back to activity guidance", func(t *testing.T) {
		guide, err := enricher.Enrich(context.Background(), models.ItineraryItem{
			Name: "Mystery", Category: "unknown",
		})
		if err != nil {
			t.Fatalf("Enrich returned error: %v", err)
		}
		if guide.Duration == "" {
			t.Error("fallback guide is empty")
		}
	})

	t.Run("directions use available location data", func(t *testing.T) {
		guide, _ := enricher.Enrich(context.Background(), models.ItineraryItem{
			Name:        "Museum",
			Category:    models.CategoryActivity,
			Location:    "Old Town",
			Coordinates: &models.Coordinates{Lat: 48.8566, Lng: 2.3522},
		})
		if guide.Directions == "" {
			t.Fatal("no directions produced")
		}
	})
}

func TestParseGuide(t *testing.T) {
	t.Run("tolerates code fences", func(t *testing.T) {
		text := "```json\n{\"bestTimeToVisit\": \"Noon\", \"duration\": \"2h\", \"directions\": \"Bus 12\", \"tips\": \"\", \"accessibility\": \"\", \"reservationRequired\": true}\n```"
		guide, err := parseGuide(text)
		if err != nil {
			t.Fatalf("parseGuide returned error: %v", err)
		}
		if guide.BestTimeToVisit != "Noon" || !guide.ReservationRequired {
			t.Errorf("unexpected guide %+v", guide)
		}
	})

	t.Run("no JSON object errors", func(t *testing.T) {
		if _, err := parseGuide("I could not find anything."); err == nil {
			t.Error("expected an error for prose-only response")
		}
	})
}
