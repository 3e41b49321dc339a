package dto

// GeneratePlanRequest is the full planning request. Everything except mode
// defaults is optional; missing values become recorded assumptions, not
// errors.
type GeneratePlanRequest struct {
	Mode        string `json:"mode" validate:"omitempty,oneof=discover enhance"`
	DetailLevel string `json:"detail_level" validate:"omitempty,oneof=high_level medium full"`

	Dates                *string  `json:"dates,omitempty"` // "YYYY-MM-DD to YYYY-MM-DD"
	DepartureCity        *string  `json:"departure_city,omitempty"`
	Budget               *float64 `json:"budget,omitempty" validate:"omitempty,gt=0"`
	TravelStyle          string   `json:"travel_style,omitempty"`
	Pace                 string   `json:"pace,omitempty" validate:"omitempty,oneof=relaxed moderate packed"`
	GroupType            string   `json:"group_type,omitempty"`
	Interests            []string `json:"interests,omitempty"`
	TravelRange          string   `json:"travel_range,omitempty"`
	SpecialConstraints   string   `json:"special_constraints,omitempty"`
	AdditionalNotes      string   `json:"additional_notes,omitempty"`
	RejectedDestinations []string `json:"rejected_destinations,omitempty"`

	// Enhance mode
	ExistingPlan        string `json:"existing_plan,omitempty"`
	SpecificDestination string `json:"specific_destination,omitempty"`
	PlanAction          string `json:"plan_action,omitempty" validate:"omitempty,oneof=enhance modify fill_gaps optimize"`

	Debug bool `json:"debug,omitempty"`
}

// RefinePlanRequest overlays new constraints onto a stored plan. Only the
// fields the client sends change; everything else carries over.
type RefinePlanRequest struct {
	Dates              *string  `json:"dates,omitempty"`
	DepartureCity      *string  `json:"departure_city,omitempty"`
	Budget             *float64 `json:"budget,omitempty" validate:"omitempty,gt=0"`
	TravelStyle        string   `json:"travel_style,omitempty"`
	Pace               string   `json:"pace,omitempty" validate:"omitempty,oneof=relaxed moderate packed"`
	GroupType          string   `json:"group_type,omitempty"`
	Interests          []string `json:"interests,omitempty"`
	TravelRange        string   `json:"travel_range,omitempty"`
	SpecialConstraints string   `json:"special_constraints,omitempty"`
	AdditionalNotes    string   `json:"additional_notes,omitempty"`

	Debug bool `json:"debug,omitempty"`
}

// AlternativesRequest asks for replacement destination suggestions.
type AlternativesRequest struct {
	Count int `json:"count,omitempty" validate:"omitempty,min=1,max=10"`
}

// RegenerateDayRequest rebuilds a single itinerary day.
type RegenerateDayRequest struct {
	DayNumber   int    `json:"day_number" validate:"required,min=1"`
	Adjustments string `json:"adjustments,omitempty"`
}

// EnrichActivityRequest enriches one standalone activity without a stored
// plan, used by clients that manage their own itinerary state.
type EnrichActivityRequest struct {
	ActivityName string `json:"activity_name" validate:"required"`
	ActivityType string `json:"activity_type,omitempty"`
	Destination  string `json:"destination" validate:"required"`
	DayNumber    int    `json:"day_number,omitempty" validate:"omitempty,min=1"`
	TimeSlot     string `json:"time_slot,omitempty"`
	Location     string `json:"location,omitempty"`
}
