package agent

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"travelmind-be/pkg/llm"
	"travelmind-be/pkg/travel"
)

// DestinationRecommender proposes and ranks suitable destinations. A model
// or extraction failure here is fatal to the discover pipeline: the
// orchestrator aborts rather than return invented destinations.
type DestinationRecommender struct {
	provider llm.Provider
}

func NewDestinationRecommender(provider llm.Provider) *DestinationRecommender {
	return &DestinationRecommender{provider: provider}
}

const recommenderSystemPrompt = `You are a destination recommendation agent for a travel planning system.
Your job is to suggest DIVERSE and VARIED travel destinations based SPECIFICALLY on the user's stated preferences.

CRITICAL INSTRUCTIONS:
- ALWAYS provide different and varied destinations - never suggest the same places repeatedly
- CAREFULLY READ the user's travel style, interests, budget, and preferences
- Base recommendations DIRECTLY on what the user specified
- AVOID defaulting to popular tourist destinations unless they match the user's specific interests

Consider:
- Budget and value for money (must match the stated budget)
- Travel style and interests alignment (THIS IS MOST IMPORTANT)
- Seasonality and weather for the travel dates
- Distance from the departure city if specified
- Variety across different regions and cultures

For EACH destination, provide:
- name: Specific destination name
- country: Country
- score: Suitability score based on how well it matches their preferences (0-100)
- reasoning: 2-3 sentences explaining WHY this destination matches
- highlights: Top 3-5 attractions/experiences that align with their interests
- estimated_daily_cost: Realistic daily budget estimate (number)
- best_for: What this destination excels at
- considerations: Important info (weather, visa, travel time from departure city, safety, etc.)

Return ONLY valid JSON with this exact structure:
{
  "destinations": [
    {
      "name": "Destination Name",
      "country": "Country",
      "score": 95,
      "reasoning": "...",
      "highlights": ["attraction 1", "attraction 2", "attraction 3"],
      "estimated_daily_cost": 150,
      "best_for": "...",
      "considerations": "..."
    }
  ],
  "reasoning_summary": "Brief explanation of recommendation approach"
}`

// Recommend asks the model for count ranked destinations. The exclude set
// (rejected destinations plus the current one during alternatives rounds)
// is written into the prompt so the model cannot re-recommend them, and
// enforced again on the parsed output.
func (r *DestinationRecommender) Recommend(ctx context.Context, parsed *travel.ParsedConstraints, count int, exclude []string) (*travel.RecommendationSet, error) {
	prompt := r.buildPrompt(parsed, count, exclude)

	response, err := r.provider.Generate(ctx, recommenderSystemPrompt, prompt, llm.WithTemperature(0.8))
	if err != nil {
		return nil, fmt.Errorf("destination recommendation call: %w", err)
	}

	result, err := llm.ExtractJSONAs[travel.RecommendationSet](response)
	if err != nil {
		return nil, fmt.Errorf("destination recommendation output: %w", err)
	}
	r.validate(&result, parsed, exclude)

	// Checked after validate: a model that only re-recommends excluded
	// destinations leaves nothing behind, and that must abort the
	// pipeline, not hand an empty set to the orchestrator.
	if len(result.Destinations) == 0 {
		return nil, fmt.Errorf("destination recommendation returned no destinations")
	}

	return &result, nil
}

func (r *DestinationRecommender) buildPrompt(parsed *travel.ParsedConstraints, count int, exclude []string) string {
	c := parsed.Constraints

	var b strings.Builder
	fmt.Fprintf(&b, "Recommend %d travel destinations for this specific traveler:\n\n", count)
	b.WriteString(FormatForPrompt(c))
	fmt.Fprintf(&b, "\n\nTrip Duration: %d days\nBudget Category: %s\n", parsed.DurationDays, parsed.BudgetCategory)

	if len(exclude) > 0 {
		fmt.Fprintf(&b, "\nREJECTED DESTINATIONS (DO NOT RECOMMEND THESE):\n%s\n", strings.Join(exclude, ", "))
		b.WriteString("Find SIMILAR but DIFFERENT alternatives and learn from the rejections.\n")
	}

	if c.AdditionalNotes != "" {
		fmt.Fprintf(&b, "\nUSER'S ADDITIONAL PREFERENCES:\n%q\nPay close attention to these.\n", c.AdditionalNotes)
	}

	if c.DepartureCity != nil && *c.DepartureCity != "" {
		switch {
		case parsed.DurationDays <= 3:
			fmt.Fprintf(&b, "\nSHORT trip (%d days) from %s: recommend ONLY nearby destinations within 2-3 hours. Minimize travel time, avoid long-haul flights.\n", parsed.DurationDays, *c.DepartureCity)
		case parsed.DurationDays <= 7:
			fmt.Fprintf(&b, "\nMEDIUM trip (%d days) from %s: mix of nearby and regional destinations, 1-4 hour flights acceptable, prefer direct flights.\n", parsed.DurationDays, *c.DepartureCity)
		default:
			fmt.Fprintf(&b, "\nLONG trip (%d+ days) from %s: international and long-haul destinations are fine.\n", parsed.DurationDays, *c.DepartureCity)
		}
	}

	switch c.TravelRange {
	case "local":
		b.WriteString("\nTravel Range: LOCAL - recommend ONLY driveable destinations within 2-3 hours, no flights.\n")
	case "domestic":
		b.WriteString("\nTravel Range: DOMESTIC - destinations within the same country only, no passport needed.\n")
	case "regional":
		b.WriteString("\nTravel Range: REGIONAL - neighboring countries and short flights only.\n")
	case "international":
		b.WriteString("\nTravel Range: INTERNATIONAL - any destination worldwide.\n")
	}

	if hint := seasonHint(c.Dates); hint != "" {
		fmt.Fprintf(&b, "\nTravel Season: %s. Match activities to the season - no ski destinations in summer, no beach-only destinations where it is winter.\n", hint)
	}

	if parsed.DailyBudget > 0 {
		fmt.Fprintf(&b, "\nDaily budget is $%.0f/day - recommend ONLY destinations where that is realistic for accommodation, food, activities, and transport.\n", parsed.DailyBudget)
	}

	b.WriteString("\nIn the considerations field always mention visa requirements and the approximate travel distance/time from the departure city.\n")
	fmt.Fprintf(&b, "\nProvide %d well-matched, DIVERSE destination recommendations with detailed reasoning for each choice.", count)

	return b.String()
}

// validate drops excluded destinations that slipped through, flags budget
// mismatches, and sorts by score.
func (r *DestinationRecommender) validate(result *travel.RecommendationSet, parsed *travel.ParsedConstraints, exclude []string) {
	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[strings.ToLower(name)] = true
	}

	kept := result.Destinations[:0]
	for _, dest := range result.Destinations {
		if excluded[strings.ToLower(dest.Name)] || excluded[strings.ToLower(dest.Name+", "+dest.Country)] {
			continue
		}
		kept = append(kept, dest)
	}
	result.Destinations = kept

	if daily := parsed.DailyBudget; daily > 0 {
		for i := range result.Destinations {
			estimated := result.Destinations[i].EstimatedDailyCost
			if estimated > daily*1.5 {
				result.Destinations[i].BudgetWarning = fmt.Sprintf("Estimated cost ($%.0f/day) exceeds budget", estimated)
			} else if estimated > daily {
				result.Destinations[i].BudgetNote = "May need budget adjustments"
			}
		}
	}

	sort.SliceStable(result.Destinations, func(i, j int) bool {
		return result.Destinations[i].Score > result.Destinations[j].Score
	})
}

// seasonHint derives a season label from the start date's month.
func seasonHint(dates *string) string {
	if dates == nil {
		return ""
	}
	parts := strings.Split(*dates, "-")
	if len(parts) < 2 {
		return ""
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || month < 1 || month > 12 {
		return ""
	}
	switch {
	case month == 12 || month <= 2:
		return "WINTER (Dec-Feb)"
	case month <= 5:
		return "SPRING (Mar-May)"
	case month <= 8:
		return "SUMMER (Jun-Aug)"
	default:
		return "FALL (Sep-Nov)"
	}
}
