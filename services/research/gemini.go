// File: services/research/gemini.go
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"tripmeet/models"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiEnricher generates guidance with Gemini, falling back to the
// static guides when the model is unreachable or returns garbage.
type GeminiEnricher struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	fallback StaticEnricher
}

// NewGeminiEnricher creates the enricher. Returns an error instead of
// panicking so callers can fall back to the static guides.
func NewGeminiEnricher(ctx context.Context, apiKey string) (*GeminiEnricher, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := client.GenerativeModel("models/gemini-1.5-pro")
	return &GeminiEnricher{client: client, model: model}, nil
}

// Close releases the underlying API client.
func (g *GeminiEnricher) Close() error {
	return g.client.Close()
}

func (g *GeminiEnricher) Enrich(ctx context.Context, item models.ItineraryItem) (*models.ResearchGuide, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(enrichmentPrompt(item)))
	if err != nil {
		return g.fallback.Enrich(ctx, item)
	}

	// A safety-blocked response carries no candidates and a nil error.
	text, ok := responseText(resp)
	if !ok {
		return g.fallback.Enrich(ctx, item)
	}

	guide, err := parseGuide(text)
	if err != nil {
		return g.fallback.Enrich(ctx, item)
	}
	return guide, nil
}

// responseText joins the text parts of the first candidate. Reports false
// when the response has no usable content.
func responseText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", false
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	if sb.Len() == 0 {
		return "", false
	}
	return sb.String(), true
}

func enrichmentPrompt(item models.ItineraryItem) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a travel logistics assistant. Provide visiting guidance for the %s %q", item.Category, item.Name)
	if item.Location != "" {
		fmt.Fprintf(&sb, " near %s", item.Location)
	}
	if item.HasCoordinates() {
		fmt.Fprintf(&sb, " at coordinates %.4f, %.4f", item.Coordinates.Lat, item.Coordinates.Lng)
	}
	sb.WriteString(`. Respond with only a JSON object with these exact keys:
{"bestTimeToVisit": string, "duration": string, "directions": string, "tips": string, "accessibility": string, "reservationRequired": boolean}`)
	return sb.String()
}

// parseGuide extracts the JSON object from a model response, tolerating
// markdown code fences.
func parseGuide(text string) (*models.ResearchGuide, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model response")
	}
	var guide models.ResearchGuide
	if err := json.Unmarshal([]byte(text[start:end+1]), &guide); err != nil {
		return nil, fmt.Errorf("failed to parse guide JSON: %w", err)
	}
	return &guide, nil
}
