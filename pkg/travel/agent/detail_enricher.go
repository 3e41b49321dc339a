package agent

import (
	"context"
	"fmt"
	"strings"

	"travelmind-be/pkg/llm"
	"travelmind-be/pkg/travel"
)

// DetailEnricher adds descriptions, timing, costs, transport notes, and tips
// to itinerary activities. It works day by day in the discover pipeline and
// one activity (or transportation leg) at a time for the progressive stream.
type DetailEnricher struct {
	provider llm.Provider
}

func NewDetailEnricher(provider llm.Provider) *DetailEnricher {
	return &DetailEnricher{provider: provider}
}

const enricherSystemPrompt = `You are a detail enrichment agent for a travel planning system.
Your job is to add rich details to itinerary activities.

For each activity, provide:
- description: Detailed 2-3 sentence description
- time_slot: Suggested time (e.g., "9:00 AM - 11:00 AM")
- cost_details: Estimated cost in USD
- booking_url: Official website when one exists (never invent URLs)
- transport_notes: How to get there from the previous location
- tips: 2-3 insider tips or important notes
- sources: Credible source URLs, official sites only

Return response as valid JSON.`

const transportSystemPrompt = `You are a travel transportation expert providing accurate route and booking information. Return response as valid JSON.`

// EnrichItinerary enriches every day of the itinerary. Used by the
// discover-full path; any failure is fatal there, so errors propagate.
func (e *DetailEnricher) EnrichItinerary(ctx context.Context, result *travel.ItineraryResult, dest travel.Destination, parsed *travel.ParsedConstraints) (*travel.ItineraryResult, error) {
	enriched := &travel.ItineraryResult{
		Itinerary:   make([]travel.ItineraryDay, len(result.Itinerary)),
		Overview:    result.Overview,
		PacingNotes: result.PacingNotes,
		Warnings:    result.Warnings,
	}

	for i, day := range result.Itinerary {
		enrichedDay := day
		enrichedDay.Activities = make([]travel.Activity, len(day.Activities))
		copy(enrichedDay.Activities, day.Activities)

		for j := range enrichedDay.Activities {
			payload, err := e.EnrichActivity(ctx, enrichedDay.Activities[j], dest.Name, day.DayNumber)
			if err != nil {
				return nil, fmt.Errorf("enrich day %d activity %d: %w", day.DayNumber, j, err)
			}
			enrichedDay.Activities[j].Enrichment = payload
		}

		enriched.Itinerary[i] = enrichedDay
	}

	return enriched, nil
}

// EnrichActivity enriches a single activity. The prompt shape depends on the
// activity kind: accommodation asks for hotel examples, dining for
// restaurant options, sightseeing for availability and official links.
func (e *DetailEnricher) EnrichActivity(ctx context.Context, act travel.Activity, destination string, dayNumber int) (*travel.Enrichment, error) {
	prompt := e.activityPrompt(act, destination, dayNumber)

	response, err := e.provider.Generate(ctx, enricherSystemPrompt, prompt, llm.WithTemperature(0.6))
	if err != nil {
		return nil, fmt.Errorf("activity enrichment call: %w", err)
	}

	payload, err := llm.ExtractJSONAs[travel.Enrichment](response)
	if err != nil {
		return nil, fmt.Errorf("activity enrichment output: %w", err)
	}

	return &payload, nil
}

// EnrichTransportation enriches one transportation leg between the departure
// city and the destination.
func (e *DetailEnricher) EnrichTransportation(ctx context.Context, origin, destination, destinationCountry string, outbound bool) (*travel.TransportEnrichment, error) {
	direction := "Outbound (going to destination)"
	if !outbound {
		direction = "Return (coming back home)"
	}

	prompt := fmt.Sprintf(`Provide detailed transportation options from %s to %s, %s:

Direction: %s

Provide comprehensive transportation details:
1. Flight options (airlines, approximate duration, price range)
2. Alternative transportation (train, bus, car) if applicable
3. Estimated travel time and average cost for each option
4. Booking recommendations and websites
5. Tips for this specific route

Format as JSON with:
{
  "name": "Transportation: %s to %s",
  "description": "Detailed overview of transport options",
  "options": [
    {"mode": "flight/train/bus/car", "details": "...", "duration": "...", "cost_range": "...", "providers": ["..."], "booking_url": "..."}
  ],
  "recommended_option": "which option is best",
  "tips": ["practical travel tips"],
  "sources": ["booking website URLs"]
}`, origin, destination, destinationCountry, direction, origin, destination)

	response, err := e.provider.Generate(ctx, transportSystemPrompt, prompt, llm.WithTemperature(0.5))
	if err != nil {
		return nil, fmt.Errorf("transportation enrichment call: %w", err)
	}

	payload, err := llm.ExtractJSONAs[travel.TransportEnrichment](response)
	if err != nil {
		return nil, fmt.Errorf("transportation enrichment output: %w", err)
	}

	payload.Outbound = outbound
	if payload.Name == "" {
		payload.Name = fmt.Sprintf("Transportation: %s to %s", origin, destination)
	}

	return &payload, nil
}

func (e *DetailEnricher) activityPrompt(act travel.Activity, destination string, dayNumber int) string {
	name := strings.ToLower(act.Name)
	kind := strings.ToLower(act.Type)

	switch {
	case strings.Contains(name, "hotel") || strings.Contains(name, "check-in") || strings.Contains(name, "accommodation"):
		return fmt.Sprintf(`Provide detailed hotel check-in information for %s:

Activity: %s
Day: %d

Provide recommended hotel areas, average price range, arrival transportation
options, check-in timing and tips, and 3-4 specific hotel examples with
different price ranges.

Format as JSON with:
{
  "description": "...",
  "time_slot": "...",
  "cost_details": "...",
  "transport_notes": "...",
  "booking_url": "...",
  "sources": [],
  "hotel_examples": [
    {"name": "Hotel Name", "category": "Budget/Mid-Range/Upscale/Luxury", "price_per_night": "$XX-$XX", "location": "Neighborhood", "amenities": "key amenities"}
  ]
}`, destination, act.Name, dayNumber)

	case kind == "dining" || containsAny(name, "lunch", "dinner", "breakfast", "restaurant", "meal"):
		return fmt.Sprintf(`Provide detailed dining information and specific restaurant recommendations for %s:

Activity: %s
Day: %d

Provide the dining scene/area, recommended dining time, average cost per
person, and 3-4 specific restaurant recommendations covering different
cuisines and price ranges.

Format as JSON with:
{
  "description": "...",
  "time_slot": "...",
  "cost_details": "...",
  "transport_notes": "...",
  "tips": [],
  "restaurant_options": [
    {"name": "Restaurant Name", "cuisine": "Type", "price_range": "$/$$/$$$/$$$$", "specialties": "signature dishes"}
  ],
  "sources": []
}`, destination, act.Name, dayNumber)

	case kind == "sightseeing" || kind == "cultural":
		return fmt.Sprintf(`Check if this attraction is currently available and provide details:

Activity: %s
Location: %s

IMPORTANT:
1. Check if this attraction has any closures, renovations, or alerts
2. Provide the official website link and current ticket prices if available
3. Opening hours and how to get there from the city center

Format as JSON:
{
  "description": "...",
  "availability_status": "open" or "closed" or "limited",
  "closure_notice": "..." ,
  "time_slot": "recommended visit time",
  "cost_details": "entrance fee details",
  "booking_url": "official website",
  "transport_notes": "how to get there",
  "tips": [],
  "sources": ["official website"]
}`, act.Name, destination)

	default:
		return fmt.Sprintf(`Provide detailed information for this travel activity:

Activity: %s
Type: %s
Location: %s
Day: %d

Provide: description, specific timing, costs, booking info, transport, tips, official links, sources.

Format as JSON`, act.Name, act.Type, destination, dayNumber)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
