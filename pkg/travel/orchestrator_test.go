package travel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Stage stubs with call counters, so tests can assert which stages a given
// detail level actually reaches.

type stubParser struct {
	calls int
}

func (s *stubParser) Parse(input Constraints) *ParsedConstraints {
	s.calls++
	return &ParsedConstraints{
		Constraints:    input,
		DurationDays:   3,
		BudgetCategory: "moderate",
		DailyBudget:    150,
		Warnings:       []string{},
		Assumptions:    []string{"Assuming 3-day trip"},
	}
}

type stubRecommender struct {
	calls     int
	lastCount int
	lastExcl  []string
	err       error
	empty     bool
}

func (s *stubRecommender) Recommend(ctx context.Context, parsed *ParsedConstraints, count int, exclude []string) (*RecommendationSet, error) {
	s.calls++
	s.lastCount = count
	s.lastExcl = append([]string{}, exclude...)
	if s.err != nil {
		return nil, s.err
	}
	if s.empty {
		return &RecommendationSet{ReasoningSummary: "nothing left"}, nil
	}

	names := []string{"Lisbon", "Porto", "Seville", "Valencia", "Marseille", "Palermo"}
	dests := make([]Destination, 0, count)
	for i := 0; i < count && i < len(names); i++ {
		dests = append(dests, Destination{Name: names[i], Country: "Somewhere", Score: 90 - i})
	}
	return &RecommendationSet{Destinations: dests, ReasoningSummary: "stub picks"}, nil
}

type stubPlanner struct {
	calls    int
	dayCalls int
	err      error
}

func (s *stubPlanner) Plan(ctx context.Context, dest Destination, parsed *ParsedConstraints) (*ItineraryResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	days := make([]ItineraryDay, parsed.DurationDays)
	for i := range days {
		days[i] = ItineraryDay{
			DayNumber:  i + 1,
			Title:      "Stub day",
			Activities: []Activity{{Name: "Walk around"}, {Name: "Eat something"}},
		}
	}
	return &ItineraryResult{Itinerary: days, Overview: "stub overview"}, nil
}

func (s *stubPlanner) PlanDay(ctx context.Context, dest Destination, parsed *ParsedConstraints, dayNumber int, adjustments string) (*ItineraryDay, error) {
	s.dayCalls++
	if s.err != nil {
		return nil, s.err
	}
	return &ItineraryDay{
		DayNumber:  dayNumber,
		Title:      "Regenerated: " + adjustments,
		Activities: []Activity{{Name: "New activity"}},
	}, nil
}

type stubEnricher struct {
	calls int
	err   error
}

func (s *stubEnricher) EnrichItinerary(ctx context.Context, result *ItineraryResult, dest Destination, parsed *ParsedConstraints) (*ItineraryResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	for di := range result.Itinerary {
		for ai := range result.Itinerary[di].Activities {
			result.Itinerary[di].Activities[ai].Enrichment = &Enrichment{Description: "enriched"}
		}
	}
	return result, nil
}

type stubEnhancer struct {
	calls int
	err   error
}

func (s *stubEnhancer) Enhance(ctx context.Context, existingPlan, destination string, parsed *ParsedConstraints, action Action) (*EnhancementResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &EnhancementResult{
		Destination:     destination,
		Overview:        "enhanced",
		Itinerary:       []ItineraryDay{{DayNumber: 1, Activities: []Activity{{Name: "From enhancer"}}}},
		ActionPerformed: action,
		ModelsUsed:      []string{"stub-primary"},
	}, nil
}

type mapStore struct {
	plans map[string]*Plan
}

func newMapStore() *mapStore { return &mapStore{plans: map[string]*Plan{}} }

func (s *mapStore) Save(plan *Plan) { s.plans[plan.ID] = plan }
func (s *mapStore) Get(planID string) (*Plan, bool) {
	p, ok := s.plans[planID]
	return p, ok
}

type mapTraceStore struct {
	traces map[string]*Trace
}

func newMapTraceStore() *mapTraceStore { return &mapTraceStore{traces: map[string]*Trace{}} }

func (s *mapTraceStore) Save(trace *Trace) { s.traces[trace.PlanID] = trace }
func (s *mapTraceStore) Get(planID string) (*Trace, bool) {
	tr, ok := s.traces[planID]
	return tr, ok
}

type testRig struct {
	parser      *stubParser
	recommender *stubRecommender
	planner     *stubPlanner
	enricher    *stubEnricher
	enhancer    *stubEnhancer
	plans       *mapStore
	traces      *mapTraceStore
	orch        *Orchestrator
}

func newTestRig() *testRig {
	rig := &testRig{
		parser:      &stubParser{},
		recommender: &stubRecommender{},
		planner:     &stubPlanner{},
		enricher:    &stubEnricher{},
		enhancer:    &stubEnhancer{},
		plans:       newMapStore(),
		traces:      newMapTraceStore(),
	}
	rig.orch = NewOrchestrator(
		rig.parser, rig.recommender, rig.planner, rig.enricher, rig.enhancer,
		rig.plans, rig.traces, nil, nil,
	)
	return rig
}

func TestGeneratePlanHighLevelStopsAfterRecommendation(t *testing.T) {
	rig := newTestRig()

	plan, err := rig.orch.GeneratePlan(context.Background(), Constraints{}, LevelHighLevel, false)
	require.NoError(t, err)

	assert.Equal(t, 5, rig.recommender.lastCount, "high_level asks for several candidates")
	assert.Len(t, plan.Alternatives, 5)
	assert.Nil(t, plan.Destination)
	assert.Empty(t, plan.Itinerary)

	// Later stages never run
	assert.Zero(t, rig.planner.calls)
	assert.Zero(t, rig.enricher.calls)

	// Plan and trace are stored
	stored, ok := rig.plans.Get(plan.ID)
	assert.True(t, ok)
	assert.Same(t, plan, stored)
	_, ok = rig.traces.Get(plan.ID)
	assert.True(t, ok)
}

func TestGeneratePlanMediumStopsBeforeEnrichment(t *testing.T) {
	rig := newTestRig()

	plan, err := rig.orch.GeneratePlan(context.Background(), Constraints{}, LevelMedium, false)
	require.NoError(t, err)

	assert.Equal(t, 1, rig.recommender.lastCount)
	require.NotNil(t, plan.Destination)
	assert.Equal(t, "Lisbon", plan.Destination.Name)

	// Day numbers are contiguous from 1
	require.Len(t, plan.Itinerary, 3)
	for i, day := range plan.Itinerary {
		assert.Equal(t, i+1, day.DayNumber)
	}

	assert.Equal(t, 1, rig.planner.calls)
	assert.Zero(t, rig.enricher.calls, "medium level never enriches")
	for _, day := range plan.Itinerary {
		for _, act := range day.Activities {
			assert.Nil(t, act.Enrichment)
		}
	}
}

func TestGeneratePlanFullRunsEveryStage(t *testing.T) {
	rig := newTestRig()

	plan, err := rig.orch.GeneratePlan(context.Background(), Constraints{}, LevelFull, false)
	require.NoError(t, err)

	assert.Equal(t, 1, rig.parser.calls)
	assert.Equal(t, 1, rig.recommender.calls)
	assert.Equal(t, 1, rig.planner.calls)
	assert.Equal(t, 1, rig.enricher.calls)

	for _, day := range plan.Itinerary {
		for _, act := range day.Activities {
			require.NotNil(t, act.Enrichment)
		}
	}
}

func TestGeneratePlanRecommendationFailureAborts(t *testing.T) {
	rig := newTestRig()
	rig.recommender.err = errors.New("model unreachable")

	_, err := rig.orch.GeneratePlan(context.Background(), Constraints{}, LevelMedium, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "destination recommendation")

	// No partial plan stored, but the trace records the failure
	assert.Empty(t, rig.plans.plans)
	require.Len(t, rig.traces.traces, 1)
	for _, tr := range rig.traces.traces {
		assert.Contains(t, tr.Error, "model unreachable")
	}
}

func TestGeneratePlanEmptyRecommendationSetAborts(t *testing.T) {
	rig := newTestRig()
	rig.recommender.empty = true

	_, err := rig.orch.GeneratePlan(context.Background(), Constraints{}, LevelMedium, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no destinations")

	assert.Zero(t, rig.planner.calls)
	assert.Empty(t, rig.plans.plans)
}

func TestGeneratePlanSpecificDestinationSkipsRecommender(t *testing.T) {
	rig := newTestRig()

	plan, err := rig.orch.GeneratePlan(context.Background(),
		Constraints{SpecificDestination: "Kyoto, Japan"}, LevelMedium, false)
	require.NoError(t, err)

	assert.Zero(t, rig.recommender.calls)
	require.NotNil(t, plan.Destination)
	assert.Equal(t, "Kyoto", plan.Destination.Name)
	assert.Equal(t, "Japan", plan.Destination.Country)
	assert.Equal(t, 100, plan.Destination.Score)
}

func TestGeneratePlanRoutesToEnhanceMode(t *testing.T) {
	rig := newTestRig()

	plan, err := rig.orch.GeneratePlan(context.Background(), Constraints{
		ExistingPlan:        "Day 1: wander old town",
		SpecificDestination: "Lisbon, Portugal",
	}, LevelMedium, false)
	require.NoError(t, err)

	assert.Equal(t, ModeEnhance, plan.Mode)
	assert.Equal(t, 1, rig.enhancer.calls)
	assert.Zero(t, rig.recommender.calls)
	assert.Zero(t, rig.planner.calls)
	assert.Equal(t, "Day 1: wander old town", plan.OriginalPlan)
	assert.Equal(t, []string{"stub-primary"}, plan.ModelsUsed)
}

func TestEnhanceExistingPlanRequiresPlanText(t *testing.T) {
	rig := newTestRig()

	_, err := rig.orch.EnhanceExistingPlan(context.Background(), Constraints{
		SpecificDestination: "Lisbon, Portugal",
	}, false)
	assert.Error(t, err)
	assert.Zero(t, rig.enhancer.calls)
}

func TestRefinePlanKeepsIdentityAndMemory(t *testing.T) {
	rig := newTestRig()

	original, err := rig.orch.GeneratePlan(context.Background(), Constraints{
		RejectedDestinations: []string{"Paris"},
	}, LevelMedium, false)
	require.NoError(t, err)
	createdAt := original.CreatedAt

	budget := 2000.0
	refined, err := rig.orch.RefinePlan(context.Background(), original.ID, Constraints{Budget: &budget}, false)
	require.NoError(t, err)

	assert.Equal(t, original.ID, refined.ID, "refinement keeps the plan id")
	assert.Equal(t, original.Level, refined.Level, "refinement keeps the detail level")
	assert.Equal(t, createdAt, refined.CreatedAt)
	assert.NotNil(t, refined.RefinedAt)

	// Overlay semantics: new budget applied, old rejections kept
	require.NotNil(t, refined.Parsed.Constraints.Budget)
	assert.Equal(t, budget, *refined.Parsed.Constraints.Budget)
	assert.Contains(t, refined.Parsed.Constraints.RejectedDestinations, "Paris")
}

func TestRefinePlanUnknownIdFails(t *testing.T) {
	rig := newTestRig()

	_, err := rig.orch.RefinePlan(context.Background(), "nope", Constraints{}, false)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestAlternativesExcludeCurrentAndGrowRejectionMemory(t *testing.T) {
	rig := newTestRig()

	plan, err := rig.orch.GeneratePlan(context.Background(), Constraints{}, LevelMedium, false)
	require.NoError(t, err)
	require.Equal(t, "Lisbon", plan.Destination.Name)

	alts, err := rig.orch.Alternatives(context.Background(), plan.ID, 3)
	require.NoError(t, err)

	assert.Len(t, alts, 3)
	for _, alt := range alts {
		assert.NotEqual(t, "Lisbon", alt.Name)
	}
	assert.Contains(t, rig.recommender.lastExcl, "Lisbon")

	// The current destination joined the stored rejection memory
	stored, _ := rig.plans.Get(plan.ID)
	assert.Contains(t, stored.Parsed.Constraints.RejectedDestinations, "Lisbon")
}

func TestRegenerateDay(t *testing.T) {
	rig := newTestRig()

	plan, err := rig.orch.GeneratePlan(context.Background(), Constraints{}, LevelMedium, false)
	require.NoError(t, err)
	require.Len(t, plan.Itinerary, 3)
	day1Before := plan.Itinerary[0].Title

	updated, err := rig.orch.RegenerateDay(context.Background(), plan.ID, 2, "more food stops")
	require.NoError(t, err)

	assert.Equal(t, day1Before, updated.Itinerary[0].Title, "other days untouched")
	assert.Equal(t, "Regenerated: more food stops", updated.Itinerary[1].Title)
	assert.Equal(t, 2, updated.Itinerary[1].DayNumber)
	assert.NotNil(t, updated.RefinedAt)

	_, err = rig.orch.RegenerateDay(context.Background(), plan.ID, 9, "")
	assert.Error(t, err, "out of range day is rejected")
}

func TestDebugFlagAttachesTrace(t *testing.T) {
	rig := newTestRig()

	plan, err := rig.orch.GeneratePlan(context.Background(), Constraints{}, LevelMedium, true)
	require.NoError(t, err)
	require.NotNil(t, plan.DebugTrace)
	assert.Equal(t, plan.ID, plan.DebugTrace.PlanID)

	steps := make([]string, 0, len(plan.DebugTrace.Steps))
	for _, s := range plan.DebugTrace.Steps {
		steps = append(steps, s.Step)
	}
	assert.Equal(t, []string{"constraint_parsing", "destination_recommendation", "itinerary_planning"}, steps)

	// Without the flag the trace is stored but not attached
	plan2, err := rig.orch.GeneratePlan(context.Background(), Constraints{}, LevelMedium, false)
	require.NoError(t, err)
	assert.Nil(t, plan2.DebugTrace)
	_, ok := rig.orch.GetTrace(plan2.ID)
	assert.True(t, ok)
}
