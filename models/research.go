package models

// ResearchGuide holds category-specific logistics guidance for one
// itinerary item.
type ResearchGuide struct {
	BestTimeToVisit     string `json:"bestTimeToVisit"`
	Duration            string `json:"duration"`
	Directions          string `json:"directions"`
	Tips                string `json:"tips"`
	Accessibility       string `json:"accessibility"`
	ReservationRequired bool   `json:"reservationRequired"`
}

// ResearchResult is the per-item enrichment outcome, keyed by item id.
type ResearchResult struct {
	ItemID   string        `json:"itemId"`
	ItemName string        `json:"itemName"`
	ItemType PlaceCategory `json:"itemType"`
	Research ResearchGuide `json:"research"`
	Error    string        `json:"error,omitempty"`
}

// Research stream record types (newline-delimited JSON).
const (
	ResearchRecordProgress     = "progress"
	ResearchRecordItemComplete = "item_complete"
	ResearchRecordItemError    = "item_error"
	ResearchRecordComplete     = "complete"
)

// ResearchStreamRecord is one NDJSON record of the research stream.
type ResearchStreamRecord struct {
	Type       string           `json:"type"`
	Current    int              `json:"current,omitempty"`
	Total      int              `json:"total,omitempty"`
	ItemName   string           `json:"itemName,omitempty"`
	Research   *ResearchGuide   `json:"research,omitempty"`
	Error      string           `json:"error,omitempty"`
	Results    []ResearchResult `json:"results,omitempty"`
	TotalItems int              `json:"totalItems,omitempty"`
}
