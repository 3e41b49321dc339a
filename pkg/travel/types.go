package travel

import "time"

// Mode selects the orchestration path.
type Mode string

const (
	ModeDiscover Mode = "discover"
	ModeEnhance  Mode = "enhance"
)

// DetailLevel is the client-requested depth of the discover pipeline.
type DetailLevel string

const (
	LevelHighLevel DetailLevel = "high_level"
	LevelMedium    DetailLevel = "medium"
	LevelFull      DetailLevel = "full"
)

// Action is the client-requested intent for enhance mode. The coordinator
// passes it through to the prompt unmodified and never interprets it.
type Action string

const (
	ActionEnhance  Action = "enhance"
	ActionModify   Action = "modify"
	ActionFillGaps Action = "fill_gaps"
	ActionOptimize Action = "optimize"
)

// Pace of the trip.
type Pace string

const (
	PaceRelaxed  Pace = "relaxed"
	PaceModerate Pace = "moderate"
	PacePacked   Pace = "packed"
)

// Constraints are the normalized trip parameters. Every field is optional:
// missing values are filled downstream with explicit assumption records,
// never with silent defaults.
type Constraints struct {
	Dates                *string  `json:"dates,omitempty"` // "YYYY-MM-DD to YYYY-MM-DD"
	DepartureCity        *string  `json:"departure_city,omitempty"`
	Budget               *float64 `json:"budget,omitempty"`
	TravelStyle          string   `json:"travel_style,omitempty"`
	Pace                 Pace     `json:"pace,omitempty"`
	GroupType            string   `json:"group_type,omitempty"`
	Interests            []string `json:"interests,omitempty"`
	TravelRange          string   `json:"travel_range,omitempty"`
	SpecialConstraints   string   `json:"special_constraints,omitempty"`
	AdditionalNotes      string   `json:"additional_notes,omitempty"`
	RejectedDestinations []string `json:"rejected_destinations,omitempty"`

	// Enhance mode only
	ExistingPlan        string `json:"existing_plan,omitempty"`
	SpecificDestination string `json:"specific_destination,omitempty"`
	PlanAction          Action `json:"plan_action,omitempty"`
}

// ParsedConstraints is the constraint parser's output: the (possibly
// defaulted) constraints plus derived metadata and the cumulative
// warning/assumption records.
type ParsedConstraints struct {
	Constraints    Constraints `json:"constraints"`
	DurationDays   int         `json:"duration"`
	BudgetCategory string      `json:"budget_category"`
	DailyBudget    float64     `json:"daily_budget"`
	Warnings       []string    `json:"warnings"`
	Assumptions    []string    `json:"assumptions"`
}

// Destination is one recommended place. Identity is the (name, country)
// pair, used to de-duplicate against rejected destinations across
// alternative-request rounds.
type Destination struct {
	Name               string   `json:"name"`
	Country            string   `json:"country"`
	Score              int      `json:"score"` // 0-100 match score
	Reasoning          string   `json:"reasoning,omitempty"`
	Highlights         []string `json:"highlights,omitempty"`
	EstimatedDailyCost float64  `json:"estimated_daily_cost,omitempty"`
	BestFor            string   `json:"best_for,omitempty"`
	Considerations     string   `json:"considerations,omitempty"`
	BudgetWarning      string   `json:"budget_warning,omitempty"`
	BudgetNote         string   `json:"budget_note,omitempty"`
}

// SameAs reports whether two destinations share the (name, country) identity.
func (d Destination) SameAs(other Destination) bool {
	return d.Name == other.Name && d.Country == other.Country
}

// RecommendationSet is the destination recommender's output.
type RecommendationSet struct {
	Destinations     []Destination `json:"destinations"`
	ReasoningSummary string        `json:"reasoning_summary,omitempty"`
}

// HotelExample is a concrete accommodation suggestion inside an enrichment.
type HotelExample struct {
	Name          string `json:"name"`
	Category      string `json:"category,omitempty"`
	PricePerNight string `json:"price_per_night,omitempty"`
	PriceRange    string `json:"price_range,omitempty"`
	Location      string `json:"location,omitempty"`
	Amenities     string `json:"amenities,omitempty"`
	Description   string `json:"description,omitempty"`
	BestFor       string `json:"best_for,omitempty"`
	BookingURL    string `json:"booking_url,omitempty"`
}

// RestaurantOption is a concrete dining suggestion inside an enrichment.
type RestaurantOption struct {
	Name        string `json:"name"`
	Cuisine     string `json:"cuisine,omitempty"`
	PriceRange  string `json:"price_range,omitempty"`
	Specialties string `json:"specialties,omitempty"`
}

// Enrichment is the nested detail payload attached to one activity.
type Enrichment struct {
	Description       string             `json:"description,omitempty"`
	AvailabilityState string             `json:"availability_status,omitempty"` // open/closed/limited
	ClosureNotice     string             `json:"closure_notice,omitempty"`
	TimeSlot          string             `json:"time_slot,omitempty"`
	CostDetails       string             `json:"cost_details,omitempty"`
	TransportNotes    string             `json:"transport_notes,omitempty"`
	BookingURL        string             `json:"booking_url,omitempty"`
	Tips              []string           `json:"tips,omitempty"`
	HotelExamples     []HotelExample     `json:"hotel_examples,omitempty"`
	RestaurantOptions []RestaurantOption `json:"restaurant_options,omitempty"`
	Sources           []string           `json:"sources,omitempty"`
	Placeholder       bool               `json:"placeholder,omitempty"` // set when enrichment failed and this is the retry hint
}

// TransportOption is one way to travel a leg.
type TransportOption struct {
	Mode       string   `json:"mode"` // flight/train/bus/car
	Details    string   `json:"details,omitempty"`
	Duration   string   `json:"duration,omitempty"`
	CostRange  string   `json:"cost_range,omitempty"`
	Providers  []string `json:"providers,omitempty"`
	BookingURL string   `json:"booking_url,omitempty"`
}

// TransportEnrichment covers one transportation leg (to destination or back home).
type TransportEnrichment struct {
	Name              string            `json:"name"`
	Description       string            `json:"description,omitempty"`
	Options           []TransportOption `json:"options,omitempty"`
	RecommendedOption string            `json:"recommended_option,omitempty"`
	Tips              []string          `json:"tips,omitempty"`
	Sources           []string          `json:"sources,omitempty"`
	Outbound          bool              `json:"is_outbound"`
	Placeholder       bool              `json:"placeholder,omitempty"`
}

// Activity is one itinerary entry. Its identity within a day is the
// positional index, which stays stable for the lifetime of a plan and keys
// the enrichment map together with the day index.
type Activity struct {
	Name       string      `json:"name"`
	Type       string      `json:"type,omitempty"`
	TimeSlot   string      `json:"time_slot,omitempty"`
	Duration   string      `json:"duration,omitempty"`
	Cost       string      `json:"cost,omitempty"`
	Priority   string      `json:"priority,omitempty"`
	Location   string      `json:"location,omitempty"`
	Notes      string      `json:"notes,omitempty"`
	Enrichment *Enrichment `json:"enrichment,omitempty"`
}

// ItineraryDay is one day of the plan. Day numbers are 1-based and
// contiguous after validation.
type ItineraryDay struct {
	DayNumber      int        `json:"day_number"`
	Title          string     `json:"title,omitempty"`
	Theme          string     `json:"theme,omitempty"`
	Activities     []Activity `json:"activities"`
	Notes          string     `json:"notes,omitempty"`
	Flexibility    string     `json:"flexibility,omitempty"`
	EstimatedHours float64    `json:"estimated_hours,omitempty"`
	DailyCost      string     `json:"daily_cost,omitempty"`
	PackingWarning string     `json:"packing_warning,omitempty"`
}

// ItineraryResult is the itinerary planner/enricher output.
type ItineraryResult struct {
	Itinerary   []ItineraryDay `json:"itinerary"`
	Overview    string         `json:"overview,omitempty"`
	PacingNotes string         `json:"pacing_notes,omitempty"`
	Warnings    []string       `json:"warnings,omitempty"`
}

// EnhancementResult is the dual-model coordinator's output for enhance mode.
// It is always structurally valid: when the primary response cannot be parsed
// even after repair, a minimal structure is built from the raw text instead.
type EnhancementResult struct {
	Destination          string         `json:"destination"`
	Overview             string         `json:"overview,omitempty"`
	EnhancementsSummary  string         `json:"enhancements_summary,omitempty"`
	TotalEstimatedCost   *float64       `json:"total_estimated_cost,omitempty"`
	HotelRecommendations []HotelExample `json:"hotel_recommendations,omitempty"`
	Itinerary            []ItineraryDay `json:"itinerary"`
	PacingNotes          string         `json:"pacing_notes,omitempty"`
	PracticalTips        []string       `json:"practical_tips,omitempty"`
	ActionPerformed      Action         `json:"action_performed"`
	ModelsUsed           []string       `json:"models_used"`
	FallbackNote         string         `json:"fallback_note,omitempty"`
}

// TraceStep records one pipeline stage for debugging.
type TraceStep struct {
	Step     string        `json:"step"`
	Duration time.Duration `json:"duration"`
	Note     string        `json:"note,omitempty"`
}

// Trace is the per-plan debug trace.
type Trace struct {
	PlanID string      `json:"plan_id"`
	Mode   Mode        `json:"mode"`
	Level  DetailLevel `json:"level"`
	Steps  []TraceStep `json:"steps"`
	Error  string      `json:"error,omitempty"`
}

// Plan is the top-level aggregate. Once generated it is owned by the plan
// store; stages receive and return copies or deltas, never long-term
// references.
type Plan struct {
	ID    string      `json:"plan_id"`
	Mode  Mode        `json:"mode"`
	Level DetailLevel `json:"level"`

	Destination  *Destination  `json:"destination,omitempty"`
	Alternatives []Destination `json:"alternative_destinations,omitempty"`
	Itinerary    []ItineraryDay `json:"itinerary,omitempty"`

	TransportToDestination *TransportEnrichment `json:"transport_to_destination,omitempty"`
	TransportBackHome      *TransportEnrichment `json:"transport_back_home,omitempty"`

	Overview            string         `json:"overview,omitempty"`
	PacingNotes         string         `json:"pacing_notes,omitempty"`
	EnhancementsSummary string         `json:"enhancements_summary,omitempty"`
	PracticalTips       []string       `json:"practical_tips,omitempty"`
	HotelRecommendations []HotelExample `json:"hotel_recommendations,omitempty"`
	TotalEstimatedCost  *float64       `json:"total_estimated_cost,omitempty"`

	Parsed      ParsedConstraints `json:"parsed_constraints"`
	Warnings    []string          `json:"warnings"`
	Assumptions []string          `json:"assumptions"`

	// Enhance mode metadata
	OriginalPlan    string   `json:"original_plan,omitempty"`
	ActionPerformed Action   `json:"action_performed,omitempty"`
	ModelsUsed      []string `json:"models_used,omitempty"`

	DebugTrace *Trace `json:"debug_trace,omitempty"`

	CreatedAt      time.Time  `json:"created_at"`
	RefinedAt      *time.Time `json:"refined_at,omitempty"`
	ProcessingTime float64    `json:"processing_time"` // seconds
}

// EnrichmentKey identifies one enrichment unit inside a plan.
type EnrichmentKey struct {
	Day      int `json:"day"`
	Activity int `json:"activity"`
}
