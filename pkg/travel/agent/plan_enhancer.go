package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"travelmind-be/pkg/llm"
	"travelmind-be/pkg/travel"
)

// ErrEnhancementFailed is returned when the primary structuring model could
// not be reached at all. Parse failures never surface this - they degrade to
// a minimal structure instead.
var ErrEnhancementFailed = errors.New("plan enhancement failed")

// PlanEnhancer is the dual-model coordinator for enhance mode. A secondary
// insight model runs under its own deadline alongside the primary structuring
// model; its output is folded into the primary prompt as extra context when
// it arrives in time and silently dropped when it does not. Secondary failure
// is never fatal. Primary failure is.
type PlanEnhancer struct {
	primary        llm.Provider
	secondary      llm.Provider // nil when no insight model is configured
	insightTimeout time.Duration
}

func NewPlanEnhancer(primary, secondary llm.Provider, insightTimeout time.Duration) *PlanEnhancer {
	if insightTimeout <= 0 {
		insightTimeout = 20 * time.Second
	}
	return &PlanEnhancer{
		primary:        primary,
		secondary:      secondary,
		insightTimeout: insightTimeout,
	}
}

var actionInstructions = map[travel.Action]string{
	travel.ActionEnhance: `Enhance the user's plan with:
- Specific timing for each activity (morning, afternoon, evening with approximate hours)
- Estimated costs for activities, meals, and transportation
- Practical tips, transportation details between locations, meal suggestions
Keep the user's original structure and activities intact.`,
	travel.ActionModify: `Improve and modify the user's plan by:
- Optimizing the order of activities for better flow
- Suggesting better alternatives if activities don't fit well together
- Adding or replacing activities that better match their preferences
- Balancing the daily pace and adjusting for budget constraints`,
	travel.ActionFillGaps: `Fill in the gaps in the user's plan by:
- Adding activities for any unplanned time periods
- Suggesting meals for breakfast, lunch, and dinner
- Adding transportation between activities
- Including rest breaks, free time, and evening activities if days end early`,
	travel.ActionOptimize: `Optimize the user's plan by:
- Reorganizing activities to minimize travel time and backtracking
- Grouping nearby attractions together
- Adjusting timing to avoid crowds when possible
- Ensuring realistic time allocations and balanced energy levels`,
}

var paceDescriptions = map[travel.Pace]string{
	travel.PaceRelaxed:  "Relaxed pace - plenty of downtime, 2-3 activities per day",
	travel.PaceModerate: "Moderate pace - balanced itinerary, 3-4 activities per day",
	travel.PacePacked:   "Packed schedule - maximize experiences, 5+ activities per day",
}

const insightSystemPrompt = `You are a seasoned travel insider. Given a traveler's rough plan, share concrete local insights: neighborhoods worth the detour, timing pitfalls, realistic costs, and what locals would change about the plan. Plain text, short and dense.`

// Enhance runs the dual-model enhancement. The returned result is always
// structurally valid; only a primary transport-level failure returns an error.
func (e *PlanEnhancer) Enhance(ctx context.Context, existingPlan, destination string, parsed *travel.ParsedConstraints, action travel.Action) (*travel.EnhancementResult, error) {
	if _, ok := actionInstructions[action]; !ok {
		action = travel.ActionEnhance
	}

	insights, insightModel, fallbackNote := e.collectInsights(ctx, existingPlan, destination, action, parsed.Constraints.Pace)

	prompt := e.buildPrompt(existingPlan, destination, parsed, action, insights)

	response, err := e.primary.Generate(ctx, enhancerSystemPrompt, prompt,
		llm.WithTemperature(0.7), llm.WithMaxTokens(3000))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnhancementFailed, err)
	}

	modelsUsed := []string{e.primary.Name()}
	if insightModel != "" {
		modelsUsed = append(modelsUsed, insightModel)
	}

	result, err := llm.ExtractJSONAs[travel.EnhancementResult](response)
	if err != nil {
		// Minimal valid structure built from the raw text; the caller still
		// gets a well-formed fragment.
		result = e.basicStructure(existingPlan, destination, response)
		if fallbackNote != "" {
			fallbackNote += "; "
		}
		fallbackNote += "structured format created from unparseable model response"
	}

	result.Destination = destination
	result.ActionPerformed = action
	result.ModelsUsed = modelsUsed
	result.FallbackNote = fallbackNote
	if len(result.Itinerary) == 0 {
		result.Itinerary = basicItineraryFromText(existingPlan)
	}

	return &result, nil
}

// collectInsights runs the secondary model under its own deadline. Timeout
// and error are treated identically: empty insights plus a fallback note.
// The secondary model is reported as used only when its text actually
// reached the primary prompt.
func (e *PlanEnhancer) collectInsights(ctx context.Context, existingPlan, destination string, action travel.Action, pace travel.Pace) (insights, model, fallbackNote string) {
	if e.secondary == nil {
		return "", "", ""
	}

	prompt := fmt.Sprintf("Destination: %s\nRequested change: %s\nPace: %s\n\nTraveler's plan:\n%s",
		destination, action, valueOr(string(pace), "moderate"), existingPlan)

	res := llm.InvokeWithDeadline(ctx, e.secondary, insightSystemPrompt, prompt, e.insightTimeout,
		llm.WithTemperature(0.8))

	switch res.Outcome {
	case llm.OutcomeSuccess:
		if strings.TrimSpace(res.Text) == "" {
			return "", "", "insight model returned empty output"
		}
		return res.Text, e.secondary.Name(), ""
	case llm.OutcomeTimeout:
		return "", "", fmt.Sprintf("insight model timed out after %s", e.insightTimeout)
	default:
		return "", "", fmt.Sprintf("insight model unavailable: %v", res.Err)
	}
}

const enhancerSystemPrompt = `You are an expert travel planner who enhances and improves travel itineraries with detailed, practical information.`

func (e *PlanEnhancer) buildPrompt(existingPlan, destination string, parsed *travel.ParsedConstraints, action travel.Action, insights string) string {
	c := parsed.Constraints

	dates := "Not specified"
	if c.Dates != nil && *c.Dates != "" {
		dates = *c.Dates
	}
	budget := "Not specified"
	if c.Budget != nil && *c.Budget > 0 {
		budget = fmt.Sprintf("$%.0f total", *c.Budget)
	}
	pace := paceDescriptions[c.Pace]
	if pace == "" {
		pace = paceDescriptions[travel.PaceModerate]
	}
	interests := "General sightseeing"
	if len(c.Interests) > 0 {
		interests = strings.Join(c.Interests, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are enhancing a traveler's existing plan for %s.\n\n", destination)
	fmt.Fprintf(&b, "USER'S EXISTING PLAN:\n%s\n\n", existingPlan)
	b.WriteString("TRAVEL DETAILS:\n")
	fmt.Fprintf(&b, "- Destination: %s\n- Dates: %s\n- Budget: %s\n- Pace: %s\n", destination, dates, budget, pace)
	fmt.Fprintf(&b, "- Travel Style: %s\n- Group Type: %s\n- Interests: %s\n\n",
		valueOr(c.TravelStyle, "Not specified"), valueOr(c.GroupType, "Not specified"), interests)
	fmt.Fprintf(&b, "ACTION REQUESTED: %s\n%s\n\n", strings.ToUpper(string(action)), actionInstructions[action])

	// The insights section is always present, even when empty, so the
	// primary prompt shape stays stable regardless of the secondary model.
	fmt.Fprintf(&b, "LOCAL INSIGHTS (from a second model; may be empty):\n%s\n\n", insights)

	b.WriteString(`IMPORTANT GUIDELINES:
1. Maintain respect for the user's original ideas and preferences
2. Provide SPECIFIC details: exact timing, actual costs, real names for hotels/restaurants
3. For ACCOMMODATION activities: include 2-3 specific hotel examples with names, prices, and amenities
4. For DINING activities: include 2-3 specific restaurant recommendations with cuisine type and price range
5. Include practical information: opening hours, booking requirements
6. Be realistic about time - account for waiting, meals, rest
7. Include 3-5 hotel recommendations with price ranges and locations at the top level
8. DO include official website links and credible sources where helpful
9. Only include real, existing websites - never generate fake URLs

Respond with a well-structured enhanced itinerary in JSON format:
{
  "overview": "Brief overview of the enhanced plan (2-3 sentences)",
  "enhancements_summary": "What was improved/added (2-3 sentences)",
  "total_estimated_cost": 1234,
  "hotel_recommendations": [
    {"name": "Hotel Name", "category": "Budget|Mid-Range|Luxury", "price_range": "$100-150 per night", "location": "Neighborhood", "description": "...", "best_for": "Families|Couples|Solo"}
  ],
  "itinerary": [
    {
      "day_number": 1,
      "title": "Day description",
      "theme": "Daily theme",
      "activities": [
        {"time_slot": "9:00 AM - 11:00 AM", "name": "Activity name", "type": "sightseeing|dining|transport|experience|rest", "duration": "2 hours", "cost": "$25", "priority": "high", "location": "Specific area", "notes": "Practical tips"}
      ],
      "daily_cost": "Estimated total for the day",
      "notes": "Any important daily notes"
    }
  ],
  "pacing_notes": "Notes about the overall pace",
  "practical_tips": ["tip 1", "tip 2"]
}

Respond with ONLY the JSON, no additional text.`)

	return b.String()
}

// basicStructure builds the minimal valid result when the primary output is
// unparseable: the original text becomes the itinerary.
func (e *PlanEnhancer) basicStructure(existingPlan, destination, raw string) travel.EnhancementResult {
	return travel.EnhancementResult{
		Destination:         destination,
		Overview:            "Enhanced itinerary based on your plan",
		EnhancementsSummary: "The model response could not be fully structured; your original plan is preserved below",
		Itinerary:           basicItineraryFromText(existingPlan),
		PracticalTips: []string{
			"Check opening hours before visiting",
			"Book popular attractions in advance",
		},
	}
}

// basicItineraryFromText splits free-form plan text into days on "Day N"
// markers. Lines between markers become free-form activities. When no
// markers exist, everything lands on a single day.
func basicItineraryFromText(text string) []travel.ItineraryDay {
	var days []travel.ItineraryDay
	var current *travel.ItineraryDay

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if isDayMarker(line) {
			if current != nil {
				days = append(days, *current)
			}
			current = &travel.ItineraryDay{
				DayNumber: len(days) + 1,
				Title:     line,
				Theme:     "As planned",
			}
			continue
		}

		if current != nil {
			name := truncate(line, 100)
			current.Activities = append(current.Activities, travel.Activity{
				Name:  name,
				Type:  "planned_activity",
				Notes: line,
			})
		}
	}

	if current != nil {
		days = append(days, *current)
	}

	if len(days) == 0 {
		summary := truncate(text, 500)
		days = []travel.ItineraryDay{{
			DayNumber: 1,
			Title:     "Your itinerary",
			Theme:     "As planned",
			Activities: []travel.Activity{{
				Name:  "Your planned activities",
				Type:  "planned_activity",
				Notes: summary,
			}},
		}}
	}

	return days
}

// truncate cuts s to at most max bytes without splitting a rune. Plan text
// comes from users and may be any UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func isDayMarker(line string) bool {
	lower := strings.ToLower(line)
	if !strings.Contains(lower, "day") {
		return false
	}
	return strings.ContainsAny(line, "0123456789")
}
