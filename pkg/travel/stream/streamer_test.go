package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"travelmind-be/pkg/travel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEnricher counts calls and fails on demand.
type stubEnricher struct {
	mu             sync.Mutex
	activityCalls  int
	transportCalls int
	delay          time.Duration
	failActivities bool
	failAll        bool
}

func (s *stubEnricher) EnrichActivity(ctx context.Context, act travel.Activity, destination string, dayNumber int) (*travel.Enrichment, error) {
	s.mu.Lock()
	s.activityCalls++
	s.mu.Unlock()
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.failAll || s.failActivities {
		return nil, errors.New("enrichment backend down")
	}
	return &travel.Enrichment{Description: "details for " + act.Name}, nil
}

func (s *stubEnricher) EnrichTransportation(ctx context.Context, origin, destination, country string, outbound bool) (*travel.TransportEnrichment, error) {
	s.mu.Lock()
	s.transportCalls++
	s.mu.Unlock()
	if s.failAll {
		return nil, errors.New("enrichment backend down")
	}
	return &travel.TransportEnrichment{Name: origin + " to " + destination, Outbound: outbound}, nil
}

func (s *stubEnricher) activities() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activityCalls
}

func planFixture(days, activitiesPerDay int, withDeparture bool) *travel.Plan {
	plan := &travel.Plan{
		ID:          "test1234",
		Destination: &travel.Destination{Name: "Lisbon", Country: "Portugal"},
	}
	if withDeparture {
		dep := "Berlin"
		plan.Parsed.Constraints.DepartureCity = &dep
	}
	for d := 1; d <= days; d++ {
		day := travel.ItineraryDay{DayNumber: d}
		for a := 0; a < activitiesPerDay; a++ {
			day.Activities = append(day.Activities, travel.Activity{Name: "Activity"})
		}
		plan.Itinerary = append(plan.Itinerary, day)
	}
	return plan
}

func collect(ch <-chan Event) []Event {
	var events []Event
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestStreamEmitsEveryUnitPlusTransportLegs(t *testing.T) {
	enricher := &stubEnricher{}
	s := NewStreamer(enricher, Config{Concurrency: 2}, nil)

	plan := planFixture(2, 3, true) // 6 activities + 2 transport legs
	events := collect(s.Stream(context.Background(), plan))

	// starting + 8 units + complete
	require.Len(t, events, 10)
	assert.Equal(t, EventStarting, events[0].Kind)
	assert.Equal(t, 8, events[0].Total)

	last := events[len(events)-1]
	assert.Equal(t, EventComplete, last.Kind)
	assert.Equal(t, 8, last.Count)
	assert.Equal(t, 8, last.Total)

	// Every (day, activity) key appears exactly once; completion order is
	// not asserted because units finish in any order.
	seen := map[travel.EnrichmentKey]int{}
	kinds := map[EventKind]int{}
	for _, ev := range events[1 : len(events)-1] {
		kinds[ev.Kind]++
		if ev.Kind == EventActivityEnriched {
			require.NotNil(t, ev.Key)
			require.NotNil(t, ev.Payload)
			seen[*ev.Key]++
		}
	}
	assert.Equal(t, 6, kinds[EventActivityEnriched])
	assert.Equal(t, 1, kinds[EventTransportTo])
	assert.Equal(t, 1, kinds[EventTransportBack])
	assert.Len(t, seen, 6)
	for key, n := range seen {
		assert.Equal(t, 1, n, "key %+v emitted more than once", key)
	}
}

func TestStreamNoDepartureCitySkipsTransport(t *testing.T) {
	enricher := &stubEnricher{}
	s := NewStreamer(enricher, Config{}, nil)

	plan := planFixture(1, 2, false)
	events := collect(s.Stream(context.Background(), plan))

	for _, ev := range events {
		assert.NotEqual(t, EventTransportTo, ev.Kind)
		assert.NotEqual(t, EventTransportBack, ev.Kind)
	}
	assert.Equal(t, EventComplete, events[len(events)-1].Kind)
	assert.Equal(t, 0, enricher.transportCalls)
}

func TestStreamSingleFailureBecomesPlaceholder(t *testing.T) {
	enricher := &stubEnricher{failActivities: true}
	// Threshold above the unit count so no abort happens
	s := NewStreamer(enricher, Config{Concurrency: 1, MaxConsecutiveFailures: 10}, nil)

	plan := planFixture(1, 2, false)
	events := collect(s.Stream(context.Background(), plan))

	require.Equal(t, EventComplete, events[len(events)-1].Kind)
	for _, ev := range events[1 : len(events)-1] {
		require.NotNil(t, ev.Payload)
		assert.True(t, ev.Payload.Placeholder)
		assert.Contains(t, ev.Payload.Description, "retry")
	}
}

func TestStreamConsecutiveFailuresAbort(t *testing.T) {
	enricher := &stubEnricher{failAll: true}
	s := NewStreamer(enricher, Config{Concurrency: 1, MaxConsecutiveFailures: 3}, nil)

	plan := planFixture(3, 3, false) // 9 units, all failing
	events := collect(s.Stream(context.Background(), plan))

	last := events[len(events)-1]
	require.Equal(t, EventError, last.Kind)
	assert.Contains(t, last.Message, "3 consecutive")

	// starting + exactly threshold placeholder events + error
	assert.Len(t, events, 5)

	// No complete event after an abort
	for _, ev := range events {
		assert.NotEqual(t, EventComplete, ev.Kind)
	}
}

func TestStreamCancellationStopsScheduling(t *testing.T) {
	enricher := &stubEnricher{delay: 30 * time.Millisecond}
	s := NewStreamer(enricher, Config{Concurrency: 1}, nil)

	plan := planFixture(4, 5, false) // 20 units
	ctx, cancel := context.WithCancel(context.Background())

	ch := s.Stream(ctx, plan)
	<-ch // starting
	<-ch // first unit
	cancel()

	// Channel closes without draining all 20 units
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				// Far fewer calls than units: cancellation stopped scheduling
				assert.Less(t, enricher.activities(), 10)
				return
			}
		case <-deadline:
			t.Fatal("stream did not close after cancellation")
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 3, cfg.MaxConsecutiveFailures)
}
