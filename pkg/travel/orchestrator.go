package travel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"travelmind-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// ErrPlanNotFound is returned when a follow-up call references an unknown plan.
var ErrPlanNotFound = errors.New("plan not found")

// Stage contracts the orchestrator sequences. Concrete implementations live
// in pkg/travel/agent; the interfaces exist here so the pipeline can be
// exercised with stubs.

type ConstraintParser interface {
	Parse(input Constraints) *ParsedConstraints
}

type DestinationRecommender interface {
	Recommend(ctx context.Context, parsed *ParsedConstraints, count int, exclude []string) (*RecommendationSet, error)
}

type ItineraryPlanner interface {
	Plan(ctx context.Context, dest Destination, parsed *ParsedConstraints) (*ItineraryResult, error)
	PlanDay(ctx context.Context, dest Destination, parsed *ParsedConstraints, dayNumber int, adjustments string) (*ItineraryDay, error)
}

type DetailEnricher interface {
	EnrichItinerary(ctx context.Context, result *ItineraryResult, dest Destination, parsed *ParsedConstraints) (*ItineraryResult, error)
}

type PlanEnhancer interface {
	Enhance(ctx context.Context, existingPlan, destination string, parsed *ParsedConstraints, action Action) (*EnhancementResult, error)
}

// PlanStore owns plans after generation. Single writer per plan id;
// different ids may be written concurrently.
type PlanStore interface {
	Save(plan *Plan)
	Get(planID string) (*Plan, bool)
}

// TraceStore keeps debug traces keyed by plan id.
type TraceStore interface {
	Save(trace *Trace)
	Get(planID string) (*Trace, bool)
}

// SourceFilter strips malformed or unreachable URLs from a plan before it
// reaches the client or the store.
type SourceFilter interface {
	FilterPlan(ctx context.Context, plan *Plan)
}

// Orchestrator is the state machine sequencing the stage agents by
// (mode, detail level). Transitions are strictly forward: no stage re-entry
// within one invocation. Refine and alternatives re-enter the pipeline from
// the constraint parser with a mutated constraints object.
type Orchestrator struct {
	parser      ConstraintParser
	recommender DestinationRecommender
	planner     ItineraryPlanner
	enricher    DetailEnricher
	enhancer    PlanEnhancer

	plans   PlanStore
	traces  TraceStore
	sources SourceFilter
	logger  logger.ILogger
}

func NewOrchestrator(
	parser ConstraintParser,
	recommender DestinationRecommender,
	planner ItineraryPlanner,
	enricher DetailEnricher,
	enhancer PlanEnhancer,
	plans PlanStore,
	traces TraceStore,
	sources SourceFilter,
	log logger.ILogger,
) *Orchestrator {
	return &Orchestrator{
		parser:      parser,
		recommender: recommender,
		planner:     planner,
		enricher:    enricher,
		enhancer:    enhancer,
		plans:       plans,
		traces:      traces,
		sources:     sources,
		logger:      log,
	}
}

// GeneratePlan runs the discover pipeline up to the requested detail level,
// or the enhance pipeline when the input carries an existing plan together
// with a destination. A fatal stage error aborts the run and returns a
// single top-level error: partial success is not a terminal state here.
func (o *Orchestrator) GeneratePlan(ctx context.Context, input Constraints, level DetailLevel, debug bool) (*Plan, error) {
	return o.generate(ctx, newPlanID(), input, level, debug, nil)
}

func (o *Orchestrator) generate(ctx context.Context, planID string, input Constraints, level DetailLevel, debug bool, refinedFrom *Plan) (*Plan, error) {
	if input.ExistingPlan != "" && input.SpecificDestination != "" {
		return o.enhanceExisting(ctx, planID, input, debug)
	}

	start := time.Now()
	trace := &Trace{PlanID: planID, Mode: ModeDiscover, Level: level}

	// Step 1: parse and normalize constraints
	stepStart := time.Now()
	parsed := o.parser.Parse(input)
	trace.Steps = append(trace.Steps, TraceStep{Step: "constraint_parsing", Duration: time.Since(stepStart)})

	plan := &Plan{
		ID:          planID,
		Mode:        ModeDiscover,
		Level:       level,
		Parsed:      *parsed,
		Warnings:    append([]string{}, parsed.Warnings...),
		Assumptions: append([]string{}, parsed.Assumptions...),
		CreatedAt:   time.Now(),
	}

	// Step 2: recommend destinations, or honor a user-chosen one
	stepStart = time.Now()
	var recommendations *RecommendationSet
	if input.SpecificDestination != "" {
		recommendations = &RecommendationSet{
			Destinations:     []Destination{userChosenDestination(input.SpecificDestination, parsed.DailyBudget)},
			ReasoningSummary: "Using user-selected destination",
		}
	} else {
		count := 1
		if level == LevelHighLevel {
			count = 5
		}
		recs, err := o.recommender.Recommend(ctx, parsed, count, input.RejectedDestinations)
		if err != nil {
			return nil, o.abort(trace, debug, fmt.Errorf("destination recommendation: %w", err))
		}
		if len(recs.Destinations) == 0 {
			return nil, o.abort(trace, debug, fmt.Errorf("destination recommendation: returned no destinations"))
		}
		recommendations = recs
	}
	trace.Steps = append(trace.Steps, TraceStep{Step: "destination_recommendation", Duration: time.Since(stepStart)})

	if level == LevelHighLevel {
		plan.Alternatives = recommendations.Destinations
		plan.Overview = recommendations.ReasoningSummary
		return o.finish(ctx, plan, trace, debug, refinedFrom, start)
	}

	top := recommendations.Destinations[0]
	plan.Destination = &top
	if len(recommendations.Destinations) > 1 {
		plan.Alternatives = recommendations.Destinations[1:]
	}

	// Step 3: day-by-day itinerary
	stepStart = time.Now()
	itinerary, err := o.planner.Plan(ctx, top, parsed)
	if err != nil {
		return nil, o.abort(trace, debug, fmt.Errorf("itinerary planning: %w", err))
	}
	trace.Steps = append(trace.Steps, TraceStep{Step: "itinerary_planning", Duration: time.Since(stepStart)})

	plan.Warnings = append(plan.Warnings, itinerary.Warnings...)

	if level == LevelMedium {
		plan.Itinerary = itinerary.Itinerary
		plan.Overview = itinerary.Overview
		plan.PacingNotes = itinerary.PacingNotes
		return o.finish(ctx, plan, trace, debug, refinedFrom, start)
	}

	// Step 4: detail enrichment (full level only)
	stepStart = time.Now()
	enriched, err := o.enricher.EnrichItinerary(ctx, itinerary, top, parsed)
	if err != nil {
		return nil, o.abort(trace, debug, fmt.Errorf("detail enrichment: %w", err))
	}
	trace.Steps = append(trace.Steps, TraceStep{Step: "detail_enrichment", Duration: time.Since(stepStart)})

	plan.Itinerary = enriched.Itinerary
	plan.Overview = enriched.Overview
	plan.PacingNotes = enriched.PacingNotes
	plan.Warnings = append(plan.Warnings, enriched.Warnings...)

	return o.finish(ctx, plan, trace, debug, refinedFrom, start)
}

// EnhanceExistingPlan enhances a user-supplied plan through the dual-model
// coordinator. The result is always structurally valid unless the primary
// model itself is unreachable.
func (o *Orchestrator) EnhanceExistingPlan(ctx context.Context, input Constraints, debug bool) (*Plan, error) {
	return o.enhanceExisting(ctx, newPlanID(), input, debug)
}

func (o *Orchestrator) enhanceExisting(ctx context.Context, planID string, input Constraints, debug bool) (*Plan, error) {
	start := time.Now()
	trace := &Trace{PlanID: planID, Mode: ModeEnhance, Level: LevelFull}

	if strings.TrimSpace(input.ExistingPlan) == "" {
		return nil, o.abort(trace, debug, errors.New("no existing plan provided"))
	}

	destination := input.SpecificDestination
	if destination == "" {
		destination = "Unknown destination"
	}
	action := input.PlanAction
	if action == "" {
		action = ActionEnhance
	}

	// Supplementary constraints only; the plan text is the source of truth.
	stepStart := time.Now()
	parsed := o.parser.Parse(input)
	trace.Steps = append(trace.Steps, TraceStep{Step: "constraint_parsing", Duration: time.Since(stepStart)})

	stepStart = time.Now()
	enhanced, err := o.enhancer.Enhance(ctx, input.ExistingPlan, destination, parsed, action)
	if err != nil {
		return nil, o.abort(trace, debug, fmt.Errorf("plan enhancement: %w", err))
	}
	trace.Steps = append(trace.Steps, TraceStep{Step: "plan_enhancement", Duration: time.Since(stepStart), Note: string(action)})

	dest := userChosenDestination(destination, parsed.DailyBudget)

	plan := &Plan{
		ID:                   planID,
		Mode:                 ModeEnhance,
		Level:                LevelFull,
		Destination:          &dest,
		Itinerary:            enhanced.Itinerary,
		Overview:             enhanced.Overview,
		PacingNotes:          enhanced.PacingNotes,
		EnhancementsSummary:  enhanced.EnhancementsSummary,
		PracticalTips:        enhanced.PracticalTips,
		HotelRecommendations: enhanced.HotelRecommendations,
		TotalEstimatedCost:   enhanced.TotalEstimatedCost,
		Parsed:               *parsed,
		Warnings:             append([]string{}, parsed.Warnings...),
		Assumptions:          append([]string{}, parsed.Assumptions...),
		OriginalPlan:         input.ExistingPlan,
		ActionPerformed:      enhanced.ActionPerformed,
		ModelsUsed:           enhanced.ModelsUsed,
		CreatedAt:            time.Now(),
	}
	if enhanced.FallbackNote != "" {
		plan.Warnings = append(plan.Warnings, enhanced.FallbackNote)
	}

	return o.finish(ctx, plan, trace, debug, nil, start)
}

// RefinePlan merges refinement fields over the stored plan's constraints and
// re-runs the same pipeline path under the same plan id.
func (o *Orchestrator) RefinePlan(ctx context.Context, planID string, refinements Constraints, debug bool) (*Plan, error) {
	previous, ok := o.plans.Get(planID)
	if !ok {
		return nil, ErrPlanNotFound
	}

	merged := mergeConstraints(previous.Parsed.Constraints, refinements)

	plan, err := o.generate(ctx, planID, merged, previous.Level, debug, previous)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Alternatives recommends replacement destinations for a stored plan. The
// plan's current destination joins its rejected set, so repeated rounds keep
// widening the exclusion list and a rejected place is never re-recommended.
func (o *Orchestrator) Alternatives(ctx context.Context, planID string, count int) ([]Destination, error) {
	plan, ok := o.plans.Get(planID)
	if !ok {
		return nil, ErrPlanNotFound
	}
	if count <= 0 {
		count = 3
	}

	exclude := append([]string{}, plan.Parsed.Constraints.RejectedDestinations...)
	var current Destination
	if plan.Destination != nil {
		current = *plan.Destination
		exclude = append(exclude, current.Name)
	}

	// One extra so dropping the current destination still leaves count.
	recs, err := o.recommender.Recommend(ctx, &plan.Parsed, count+1, exclude)
	if err != nil {
		return nil, fmt.Errorf("alternatives recommendation: %w", err)
	}

	alternatives := make([]Destination, 0, count)
	for _, dest := range recs.Destinations {
		if plan.Destination != nil && dest.SameAs(current) {
			continue
		}
		alternatives = append(alternatives, dest)
		if len(alternatives) == count {
			break
		}
	}

	if plan.Destination != nil {
		plan.Parsed.Constraints.RejectedDestinations = appendUnique(
			plan.Parsed.Constraints.RejectedDestinations, current.Name)
		o.plans.Save(plan)
	}

	return alternatives, nil
}

// RegenerateDay re-plans a single day of a stored plan, leaving the other
// days untouched.
func (o *Orchestrator) RegenerateDay(ctx context.Context, planID string, dayNumber int, adjustments string) (*Plan, error) {
	plan, ok := o.plans.Get(planID)
	if !ok {
		return nil, ErrPlanNotFound
	}
	if plan.Destination == nil {
		return nil, errors.New("plan has no resolved destination")
	}
	if dayNumber < 1 || dayNumber > len(plan.Itinerary) {
		return nil, fmt.Errorf("day %d out of range (plan has %d days)", dayNumber, len(plan.Itinerary))
	}

	day, err := o.planner.PlanDay(ctx, *plan.Destination, &plan.Parsed, dayNumber, adjustments)
	if err != nil {
		return nil, fmt.Errorf("day regeneration: %w", err)
	}

	plan.Itinerary[dayNumber-1] = *day
	now := time.Now()
	plan.RefinedAt = &now
	o.plans.Save(plan)

	return plan, nil
}

// GetPlan retrieves a stored plan by id.
func (o *Orchestrator) GetPlan(planID string) (*Plan, bool) {
	return o.plans.Get(planID)
}

// GetTrace retrieves the stored debug trace for a plan.
func (o *Orchestrator) GetTrace(planID string) (*Trace, bool) {
	return o.traces.Get(planID)
}

// finish validates sources, stores the plan, and attaches the trace when
// debug mode is on.
func (o *Orchestrator) finish(ctx context.Context, plan *Plan, trace *Trace, debug bool, refinedFrom *Plan, start time.Time) (*Plan, error) {
	if o.sources != nil {
		o.sources.FilterPlan(ctx, plan)
	}

	if refinedFrom != nil {
		plan.CreatedAt = refinedFrom.CreatedAt
		now := time.Now()
		plan.RefinedAt = &now
		// Rejection memory survives refinement rounds
		plan.Parsed.Constraints.RejectedDestinations = appendAllUnique(
			plan.Parsed.Constraints.RejectedDestinations,
			refinedFrom.Parsed.Constraints.RejectedDestinations)
	}

	plan.ProcessingTime = time.Since(start).Seconds()

	o.traces.Save(trace)
	if debug {
		plan.DebugTrace = trace
	}

	o.plans.Save(plan)

	if o.logger != nil {
		o.logger.Info("Orchestrator", "Plan ready", map[string]interface{}{
			"plan_id": plan.ID,
			"mode":    plan.Mode,
			"level":   plan.Level,
			"seconds": plan.ProcessingTime,
		})
	}

	return plan, nil
}

// abort records the failure on the trace and returns the error unchanged.
func (o *Orchestrator) abort(trace *Trace, debug bool, err error) error {
	trace.Error = err.Error()
	o.traces.Save(trace)
	if o.logger != nil {
		o.logger.Error("Orchestrator", "Pipeline aborted", map[string]interface{}{
			"plan_id": trace.PlanID,
			"error":   err.Error(),
		})
	}
	return err
}

// userChosenDestination wraps a "Name, Country" string the user picked
// themselves as a score-100 destination.
func userChosenDestination(specific string, dailyBudget float64) Destination {
	name := specific
	country := "Unknown"
	if idx := strings.Index(specific, ","); idx >= 0 {
		name = strings.TrimSpace(specific[:idx])
		country = strings.TrimSpace(specific[idx+1:])
	}
	return Destination{
		Name:               name,
		Country:            country,
		Score:              100,
		Reasoning:          "Selected by user: " + specific,
		EstimatedDailyCost: dailyBudget,
		BestFor:            "User's choice",
	}
}

// mergeConstraints overlays non-zero refinement fields on the base.
func mergeConstraints(base, over Constraints) Constraints {
	merged := base

	if over.Dates != nil {
		merged.Dates = over.Dates
	}
	if over.DepartureCity != nil {
		merged.DepartureCity = over.DepartureCity
	}
	if over.Budget != nil {
		merged.Budget = over.Budget
	}
	if over.TravelStyle != "" {
		merged.TravelStyle = over.TravelStyle
	}
	if over.Pace != "" {
		merged.Pace = over.Pace
	}
	if over.GroupType != "" {
		merged.GroupType = over.GroupType
	}
	if len(over.Interests) > 0 {
		merged.Interests = over.Interests
	}
	if over.TravelRange != "" {
		merged.TravelRange = over.TravelRange
	}
	if over.SpecialConstraints != "" {
		merged.SpecialConstraints = over.SpecialConstraints
	}
	if over.AdditionalNotes != "" {
		merged.AdditionalNotes = over.AdditionalNotes
	}
	if len(over.RejectedDestinations) > 0 {
		merged.RejectedDestinations = appendAllUnique(merged.RejectedDestinations, over.RejectedDestinations)
	}

	return merged
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if strings.EqualFold(v, value) {
			return list
		}
	}
	return append(list, value)
}

func appendAllUnique(list []string, values []string) []string {
	for _, v := range values {
		list = appendUnique(list, v)
	}
	return list
}

func newPlanID() string {
	return uuid.NewString()[:8]
}
