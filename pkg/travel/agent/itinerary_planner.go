package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"travelmind-be/pkg/llm"
	"travelmind-be/pkg/travel"
)

// ItineraryPlanner generates the day-by-day plan structure for a chosen
// destination. Like the recommender, a failure here aborts the discover
// pipeline instead of producing a partial plan.
type ItineraryPlanner struct {
	provider llm.Provider
}

func NewItineraryPlanner(provider llm.Provider) *ItineraryPlanner {
	return &ItineraryPlanner{provider: provider}
}

const plannerSystemPrompt = `You are an itinerary planning agent for a travel planning system.
Your job is to create a structured day-by-day itinerary for a chosen destination.

For each day, provide:
- day_number: Day number (1, 2, 3...)
- title: Brief day title (e.g., "Arrival & City Orientation")
- theme: Main theme or focus of the day
- activities: List of 3-5 activities with:
  - name: Activity name
  - duration: Estimated duration (e.g. "2 hours")
  - type: Activity type (sightseeing, dining, adventure, relaxation, etc.)
  - priority: high, medium, or low
- notes: Any important notes about the day
- flexibility: How flexible this day is (rigid, moderate, flexible)

Consider:
- Logical flow and geographic clustering
- Energy levels (don't pack too much right after arrival)
- Meal times and dining experiences
- Travel/transport time between activities
- Mix of must-see attractions and hidden gems
- Pace preference (relaxed, moderate, packed)

Return response as valid JSON with this structure:
{
  "itinerary": [
    {
      "day_number": 1,
      "title": "...",
      "theme": "...",
      "activities": [
        {"name": "...", "duration": "2 hours", "type": "...", "priority": "high"}
      ],
      "notes": "...",
      "flexibility": "moderate"
    }
  ],
  "overview": "Brief overview of the itinerary approach",
  "pacing_notes": "Notes about overall pacing"
}`

// Plan creates the full itinerary for a destination.
func (p *ItineraryPlanner) Plan(ctx context.Context, dest travel.Destination, parsed *travel.ParsedConstraints) (*travel.ItineraryResult, error) {
	prompt := p.buildPrompt(dest, parsed, parsed.DurationDays, "")

	response, err := p.provider.Generate(ctx, plannerSystemPrompt, prompt, llm.WithTemperature(0.7))
	if err != nil {
		return nil, fmt.Errorf("itinerary planning call: %w", err)
	}

	result, err := llm.ExtractJSONAs[travel.ItineraryResult](response)
	if err != nil {
		return nil, fmt.Errorf("itinerary planning output: %w", err)
	}
	if len(result.Itinerary) == 0 {
		return nil, fmt.Errorf("itinerary planning returned no days")
	}

	p.validate(&result, parsed.DurationDays)

	return &result, nil
}

// PlanDay regenerates a single day, keeping the rest of the plan untouched.
// Adjustment notes from the user ride along in the prompt.
func (p *ItineraryPlanner) PlanDay(ctx context.Context, dest travel.Destination, parsed *travel.ParsedConstraints, dayNumber int, adjustments string) (*travel.ItineraryDay, error) {
	var b strings.Builder
	b.WriteString(p.buildPrompt(dest, parsed, 1, ""))
	fmt.Fprintf(&b, "\n\nPlan ONLY day %d of a %d-day trip.", dayNumber, parsed.DurationDays)
	if adjustments != "" {
		fmt.Fprintf(&b, " Apply these adjustments: %s", adjustments)
	}
	b.WriteString("\nReturn the itinerary array with exactly one day.")

	response, err := p.provider.Generate(ctx, plannerSystemPrompt, b.String(), llm.WithTemperature(0.7))
	if err != nil {
		return nil, fmt.Errorf("day regeneration call: %w", err)
	}

	result, err := llm.ExtractJSONAs[travel.ItineraryResult](response)
	if err != nil {
		return nil, fmt.Errorf("day regeneration output: %w", err)
	}
	if len(result.Itinerary) == 0 {
		return nil, fmt.Errorf("day regeneration returned no days")
	}

	day := result.Itinerary[0]
	day.DayNumber = dayNumber
	day.EstimatedHours = estimatedHours(day.Activities)

	return &day, nil
}

func (p *ItineraryPlanner) buildPrompt(dest travel.Destination, parsed *travel.ParsedConstraints, days int, extra string) string {
	c := parsed.Constraints

	interests := "General"
	if len(c.Interests) > 0 {
		interests = strings.Join(c.Interests, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a detailed %d-day itinerary for %s.\n\n", days, dest.Name)
	if len(dest.Highlights) > 0 {
		fmt.Fprintf(&b, "Destination Highlights: %s\n\n", strings.Join(dest.Highlights, ", "))
	}
	b.WriteString("Traveler Profile:\n")
	fmt.Fprintf(&b, "- Pace: %s\n", valueOr(string(c.Pace), "moderate"))
	fmt.Fprintf(&b, "- Travel Style: %s\n", valueOr(c.TravelStyle, "cultural"))
	fmt.Fprintf(&b, "- Interests: %s\n", interests)
	fmt.Fprintf(&b, "- Group Type: %s\n", valueOr(c.GroupType, "solo"))
	if dest.Considerations != "" {
		fmt.Fprintf(&b, "\nSpecial Considerations:\n%s\n", dest.Considerations)
	}
	fmt.Fprintf(&b, "\nBudget Category: %s\nDaily Budget: $%.0f\n", parsed.BudgetCategory, parsed.DailyBudget)
	b.WriteString("\nCreate a balanced itinerary that maximizes the experience while respecting the traveler's preferences and constraints.")
	if extra != "" {
		b.WriteString("\n" + extra)
	}

	return b.String()
}

// validate renumbers days to a contiguous 1..N sequence, computes estimated
// hours per day, and warns on day-count mismatch or overpacked days.
func (p *ItineraryPlanner) validate(result *travel.ItineraryResult, expectedDays int) {
	if len(result.Itinerary) != expectedDays {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Expected %d days, got %d", expectedDays, len(result.Itinerary)))
	}

	for i := range result.Itinerary {
		day := &result.Itinerary[i]
		day.DayNumber = i + 1

		day.EstimatedHours = estimatedHours(day.Activities)
		if day.EstimatedHours > 12 {
			day.PackingWarning = "Day may be too packed"
		}
	}
}

// estimatedHours sums activity durations, counting anything unparseable as
// one hour. Duration strings come from a model, so this stays lenient.
func estimatedHours(activities []travel.Activity) float64 {
	var total float64
	for _, act := range activities {
		d := strings.ToLower(act.Duration)
		if !strings.Contains(d, "hour") {
			total++
			continue
		}
		fields := strings.Fields(d)
		if len(fields) == 0 {
			total++
			continue
		}
		hours, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			total++
			continue
		}
		total += hours
	}
	return total
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
