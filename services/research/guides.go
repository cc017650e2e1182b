package research

import (
	"context"
	"fmt"

	"tripmeet/models"
)

// StaticEnricher produces deterministic category-dispatched guidance. It
// is the default when no Gemini key is configured and the fallback the
// handlers wire when the LLM is unreachable.
type StaticEnricher struct{}

type guideTemplate struct {
	bestTime            string
	duration            string
	tips                string
	accessibility       string
	reservationRequired bool
}

var guidesByCategory = map[models.PlaceCategory]guideTemplate{
	models.CategoryRestaurant: {
		bestTime:            "Dinner service, 6–8 PM; lunch is quieter",
		duration:            "1.5–2 hours",
		tips:                "Ask for the daily specials and check if corkage applies",
		accessibility:       "Most dining rooms are step-free; call ahead for seating needs",
		reservationRequired: true,
	},
	models.CategoryHotel: {
		bestTime:            "Check-in after 3 PM, early arrival luggage storage is common",
		duration:            "Overnight",
		tips:                "Request a high floor away from the elevator for a quieter stay",
		accessibility:       "Accessible rooms available on request at booking",
		reservationRequired: true,
	},
	models.CategoryActivity: {
		bestTime:            "Morning, before crowds build",
		duration:            "2–3 hours",
		tips:                "Buy tickets online to skip the entrance queue",
		accessibility:       "Main paths are wheelchair accessible; some areas may be limited",
		reservationRequired: false,
	},
}

func (StaticEnricher) Enrich(_ context.Context, item models.ItineraryItem) (*models.ResearchGuide, error) {
	tmpl, ok := guidesByCategory[item.Category]
	if !ok {
		tmpl = guidesByCategory[models.CategoryActivity]
	}
	return &models.ResearchGuide{
		BestTimeToVisit:     tmpl.bestTime,
		Duration:            tmpl.duration,
		Directions:          directionsFor(item),
		Tips:                tmpl.tips,
		Accessibility:       tmpl.accessibility,
		ReservationRequired: tmpl.reservationRequired,
	}, nil
}

// directionsFor specializes directions with whatever location data the
// item carries.
func directionsFor(item models.ItineraryItem) string {
	switch {
	case item.HasCoordinates() && item.Location != "":
		return fmt.Sprintf("%s (%.4f, %.4f); rideshare or transit recommended", item.Location, item.Coordinates.Lat, item.Coordinates.Lng)
	case item.HasCoordinates():
		return fmt.Sprintf("Located at %.4f, %.4f; rideshare or transit recommended", item.Coordinates.Lat, item.Coordinates.Lng)
	case item.Location != "":
		return item.Location + "; check a map app for the best route"
	default:
		return "Location details pending; confirm the address before departing"
	}
}
