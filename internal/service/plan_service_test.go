package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"travelmind-be/pkg/travel"
	"travelmind-be/pkg/travel/stream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowEnricher answers every unit after a fixed delay.
type slowEnricher struct {
	delay time.Duration
}

func (e *slowEnricher) EnrichActivity(ctx context.Context, act travel.Activity, destination string, dayNumber int) (*travel.Enrichment, error) {
	time.Sleep(e.delay)
	return &travel.Enrichment{Description: "enriched " + act.Name}, nil
}

func (e *slowEnricher) EnrichTransportation(ctx context.Context, origin, destination, country string, outbound bool) (*travel.TransportEnrichment, error) {
	time.Sleep(e.delay)
	return &travel.TransportEnrichment{Name: origin + " to " + destination, Outbound: outbound}, nil
}

// signalStore is a PlanStore that signals every Save.
type signalStore struct {
	mu    sync.Mutex
	plans map[string]*travel.Plan
	saved chan struct{}
}

func newSignalStore() *signalStore {
	return &signalStore{plans: map[string]*travel.Plan{}, saved: make(chan struct{}, 8)}
}

func (s *signalStore) Save(plan *travel.Plan) {
	s.mu.Lock()
	s.plans[plan.ID] = plan
	s.mu.Unlock()
	select {
	case s.saved <- struct{}{}:
	default:
	}
}

func (s *signalStore) Get(planID string) (*travel.Plan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan, ok := s.plans[planID]
	return plan, ok
}

func storedPlan() *travel.Plan {
	return &travel.Plan{
		ID:          "p1",
		Destination: &travel.Destination{Name: "Lisbon", Country: "Portugal"},
		Itinerary: []travel.ItineraryDay{
			{DayNumber: 1, Activities: []travel.Activity{{Name: "Alfama walk"}, {Name: "Tram 28"}}},
			{DayNumber: 2, Activities: []travel.Activity{{Name: "Belem tower"}, {Name: "Pasteis de nata"}}},
		},
	}
}

func newStreamService(store *signalStore, delay time.Duration) IPlanService {
	orch := travel.NewOrchestrator(nil, nil, nil, nil, nil, store, nil, nil, nil)
	streamer := stream.NewStreamer(&slowEnricher{delay: delay}, stream.Config{Concurrency: 1}, nil)
	return NewPlanService(orch, nil, streamer, store, nil)
}

func TestStreamEnrichmentFoldsEventsIntoStoredPlan(t *testing.T) {
	store := newSignalStore()
	plan := storedPlan()
	store.plans[plan.ID] = plan

	svc := newStreamService(store, 0)

	events, err := svc.StreamEnrichment(context.Background(), plan.ID)
	require.NoError(t, err)

	var kinds []stream.EventKind
	for ev := range events {
		kinds = append(kinds, ev.Kind)
	}

	// starting + 4 activities + complete; no departure city, so no legs
	require.Len(t, kinds, 6)
	assert.Equal(t, stream.EventStarting, kinds[0])
	assert.Equal(t, stream.EventComplete, kinds[len(kinds)-1])

	stored, ok := store.Get(plan.ID)
	require.True(t, ok)
	for _, day := range stored.Itinerary {
		for _, act := range day.Activities {
			require.NotNil(t, act.Enrichment)
		}
	}
}

func TestStreamEnrichmentSurvivesAbandonedConsumer(t *testing.T) {
	store := newSignalStore()
	plan := storedPlan()
	store.plans[plan.ID] = plan

	svc := newStreamService(store, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	events, err := svc.StreamEnrichment(ctx, plan.ID)
	require.NoError(t, err)

	first := <-events
	assert.Equal(t, stream.EventStarting, first.Kind)

	// Disconnect and stop reading entirely. The folding goroutine must
	// still drain the streamer, save the plan, and exit.
	cancel()

	select {
	case <-store.saved:
	case <-time.After(2 * time.Second):
		t.Fatal("plan was never saved after the consumer disconnected")
	}

	select {
	case _, ok := <-events:
		assert.False(t, ok, "event channel should be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("event channel never closed after the consumer disconnected")
	}
}

func TestStreamEnrichmentUnknownPlan(t *testing.T) {
	store := newSignalStore()
	svc := newStreamService(store, 0)

	_, err := svc.StreamEnrichment(context.Background(), "missing")
	assert.ErrorIs(t, err, travel.ErrPlanNotFound)
}

func TestStreamEnrichmentEmptyItinerary(t *testing.T) {
	store := newSignalStore()
	plan := &travel.Plan{ID: "bare"}
	store.plans[plan.ID] = plan

	svc := newStreamService(store, 0)

	_, err := svc.StreamEnrichment(context.Background(), plan.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no itinerary")
}
