package agent

import (
	"fmt"
	"strings"
	"time"

	"travelmind-be/pkg/travel"
)

// ConstraintParser normalizes user input into structured constraints.
// Structured form input is taken at face value (a model call could change
// the values), so this stage is pure validation and enrichment: it derives
// trip duration and budget category, and records every gap it fills as an
// explicit assumption instead of a silent default.
type ConstraintParser struct{}

func NewConstraintParser() *ConstraintParser {
	return &ConstraintParser{}
}

const defaultDurationDays = 7

// Parse validates and enriches the incoming constraints. Impossible
// combinations (end date before start, luxury style on a shoestring) are
// surfaced as warnings, never as failures: the pipeline keeps moving.
func (p *ConstraintParser) Parse(input travel.Constraints) *travel.ParsedConstraints {
	parsed := &travel.ParsedConstraints{
		Constraints: input,
		Warnings:    []string{},
		Assumptions: []string{},
	}

	// Trip duration
	duration := defaultDurationDays
	if input.Dates != nil && *input.Dates != "" {
		d, err := tripDuration(*input.Dates)
		switch {
		case err != nil:
			parsed.Warnings = append(parsed.Warnings, fmt.Sprintf("Could not parse travel dates (%v) - assuming %d-day trip", err, defaultDurationDays))
			parsed.Assumptions = append(parsed.Assumptions, fmt.Sprintf("Assuming %d-day trip", defaultDurationDays))
		case d < 1:
			parsed.Warnings = append(parsed.Warnings, "End date is before start date - assuming a 7-day trip instead")
			parsed.Assumptions = append(parsed.Assumptions, "Assuming 7-day trip")
		default:
			duration = d
			if d > 30 {
				parsed.Warnings = append(parsed.Warnings, "Very long trip - may need multiple destinations")
			}
		}
	} else {
		parsed.Assumptions = append(parsed.Assumptions, fmt.Sprintf("Assuming %d-day trip", defaultDurationDays))
	}
	parsed.DurationDays = duration

	// Budget
	category, dailyBudget, budgetWarnings := classifyBudget(input.Budget, duration)
	parsed.BudgetCategory = category
	parsed.DailyBudget = dailyBudget
	parsed.Warnings = append(parsed.Warnings, budgetWarnings...)

	if input.TravelStyle == "luxury" && category == "budget" {
		parsed.Warnings = append(parsed.Warnings, "Luxury travel style conflicts with the stated budget - expect compromises")
	}

	if input.Pace == travel.PaceRelaxed && duration < 4 {
		parsed.Warnings = append(parsed.Warnings, "Short trip with relaxed pace - limited time per activity")
	}

	// Fill gaps only where the user said nothing
	if parsed.Constraints.Pace == "" {
		parsed.Constraints.Pace = travel.PaceModerate
		parsed.Assumptions = append(parsed.Assumptions, "Assuming moderate pace")
	}

	return parsed
}

// tripDuration parses "YYYY-MM-DD to YYYY-MM-DD" into a day count
// (inclusive of both endpoints).
func tripDuration(dates string) (int, error) {
	parts := strings.SplitN(dates, " to ", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected %q format", "YYYY-MM-DD to YYYY-MM-DD")
	}

	start, err := time.Parse("2006-01-02", strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, fmt.Errorf("start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, fmt.Errorf("end date: %w", err)
	}

	return int(end.Sub(start).Hours()/24) + 1, nil
}

// classifyBudget buckets the daily budget. Untrusted input: a nil or
// non-positive budget is "unspecified", never an error.
func classifyBudget(budget *float64, duration int) (category string, daily float64, warnings []string) {
	if budget == nil || *budget <= 0 {
		return "unspecified", 0, []string{"Budget not specified - will provide general recommendations"}
	}

	daily = *budget
	if duration > 0 {
		daily = *budget / float64(duration)
	}

	switch {
	case daily < 50:
		category = "budget"
		warnings = append(warnings, "Budget is very tight - expect basic accommodations and limited activities")
	case daily < 100:
		category = "budget"
	case daily < 300:
		category = "moderate"
	case daily < 500:
		category = "comfortable"
	default:
		category = "luxury"
	}

	return category, daily, warnings
}

// FormatForPrompt renders constraints as readable lines for a model prompt.
func FormatForPrompt(c travel.Constraints) string {
	var parts []string

	if c.Dates != nil && *c.Dates != "" {
		parts = append(parts, "Travel Dates: "+*c.Dates)
	}
	if c.DepartureCity != nil && *c.DepartureCity != "" {
		parts = append(parts, "Departure City: "+*c.DepartureCity)
	}
	if c.Budget != nil && *c.Budget > 0 {
		parts = append(parts, fmt.Sprintf("Budget: $%.0f", *c.Budget))
	}
	if c.TravelStyle != "" {
		parts = append(parts, "Travel Style: "+c.TravelStyle)
	}
	if c.TravelRange != "" {
		parts = append(parts, "Travel Range: "+c.TravelRange)
	}
	if len(c.Interests) > 0 {
		parts = append(parts, "Interests: "+strings.Join(c.Interests, ", "))
	}
	if c.Pace != "" {
		parts = append(parts, "Pace: "+string(c.Pace))
	}
	if c.GroupType != "" {
		parts = append(parts, "Group Type: "+c.GroupType)
	}
	if c.SpecialConstraints != "" {
		parts = append(parts, "Special Constraints: "+c.SpecialConstraints)
	}

	return strings.Join(parts, "\n")
}
