package stream

import (
	"context"
	"fmt"

	"travelmind-be/internal/pkg/logger"
	"travelmind-be/pkg/travel"

	"golang.org/x/sync/errgroup"
)

// Enricher produces the per-unit detail payloads. Implemented by the
// detail enricher agent; stubbed in tests.
type Enricher interface {
	EnrichActivity(ctx context.Context, act travel.Activity, destination string, dayNumber int) (*travel.Enrichment, error)
	EnrichTransportation(ctx context.Context, origin, destination, country string, outbound bool) (*travel.TransportEnrichment, error)
}

// EventKind tags a streamed event.
type EventKind string

const (
	EventStarting         EventKind = "starting"
	EventActivityEnriched EventKind = "activity_enriched"
	EventTransportTo      EventKind = "transport_to_enriched"
	EventTransportBack    EventKind = "transport_back_enriched"
	EventComplete         EventKind = "complete"
	EventError            EventKind = "error"
)

// Event is one discrete, self-describing unit of progress. Events are
// emitted in completion order, so consumers must place enrichments by the
// key (or leg) they carry, never by arrival order.
type Event struct {
	Kind      EventKind                   `json:"kind"`
	Key       *travel.EnrichmentKey       `json:"key,omitempty"`
	Leg       string                      `json:"leg,omitempty"` // to_destination | back_home
	Payload   *travel.Enrichment          `json:"enrichment,omitempty"`
	Transport *travel.TransportEnrichment `json:"transport,omitempty"`
	Count     int                         `json:"count,omitempty"`
	Total     int                         `json:"total,omitempty"`
	Message   string                      `json:"message,omitempty"`
}

// Config bounds the streamer. Zero values fall back to defaults.
type Config struct {
	// Concurrency is the size of the per-unit worker pool.
	Concurrency int
	// MaxConsecutiveFailures ends the stream with an error event once this
	// many units fail back to back - the signal that the model endpoint is
	// down rather than one flaky unit.
	MaxConsecutiveFailures int
}

func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = 3
	}
	if c.MaxConsecutiveFailures <= 0 {
		c.MaxConsecutiveFailures = 3
	}
	return c
}

// Streamer enriches a stored plan one unit at a time and emits each
// completed unit as a discrete event: the outbound transportation leg, every
// (day, activity) pair, and the return leg. A single unit failure becomes a
// placeholder payload and the stream continues; cancellation is honored
// between units, letting in-flight calls finish unobserved.
type Streamer struct {
	enricher Enricher
	cfg      Config
	logger   logger.ILogger
}

func NewStreamer(enricher Enricher, cfg Config, log logger.ILogger) *Streamer {
	return &Streamer{
		enricher: enricher,
		cfg:      cfg.withDefaults(),
		logger:   log,
	}
}

// unit is one schedulable piece of enrichment work.
type unit struct {
	kind      EventKind
	key       travel.EnrichmentKey
	activity  travel.Activity
	dayNumber int

	origin   string
	country  string
	outbound bool
}

type unitResult struct {
	unit      unit
	payload   *travel.Enrichment
	transport *travel.TransportEnrichment
	failed    bool
}

// Stream starts enrichment and returns the event channel. The channel
// closes when the stream completes, aborts, or the context is cancelled.
func (s *Streamer) Stream(ctx context.Context, plan *travel.Plan) <-chan Event {
	out := make(chan Event)
	go s.run(ctx, plan, out)
	return out
}

func (s *Streamer) run(ctx context.Context, plan *travel.Plan, out chan<- Event) {
	defer close(out)

	units := buildUnits(plan)
	total := len(units)

	if !emit(ctx, out, Event{Kind: EventStarting, Total: total}) {
		return
	}

	// Workers stop being scheduled once runCtx is cancelled; calls already
	// in flight finish on their own and their results go unemitted.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	destination := ""
	if plan.Destination != nil {
		destination = plan.Destination.Name
	}

	results := make(chan unitResult)
	go func() {
		defer close(results)

		g := new(errgroup.Group)
		g.SetLimit(s.cfg.Concurrency)
		for _, u := range units {
			u := u
			g.Go(func() error {
				select {
				case <-runCtx.Done():
					return nil
				default:
				}
				res := s.enrichUnit(runCtx, u, destination)
				select {
				case results <- res:
				case <-runCtx.Done():
				}
				return nil
			})
		}
		g.Wait()
	}()

	// Sparse, append-only enrichment map: once a key lands it is never
	// overwritten within this session.
	seen := make(map[travel.EnrichmentKey]bool, total)
	var legSeen = map[EventKind]bool{}

	emitted := 0
	consecutive := 0

	for res := range results {
		if res.unit.kind == EventActivityEnriched {
			if seen[res.unit.key] {
				continue
			}
			seen[res.unit.key] = true
		} else {
			if legSeen[res.unit.kind] {
				continue
			}
			legSeen[res.unit.kind] = true
		}

		if res.failed {
			consecutive++
		} else {
			consecutive = 0
		}

		emitted++
		ev := res.event()
		ev.Count = emitted
		ev.Total = total
		if !emit(ctx, out, ev) {
			cancel()
			return
		}

		if consecutive >= s.cfg.MaxConsecutiveFailures {
			cancel()
			emit(ctx, out, Event{
				Kind:    EventError,
				Message: fmt.Sprintf("enrichment failing repeatedly (%d consecutive unit failures)", consecutive),
			})
			if s.logger != nil {
				s.logger.Error("Streamer", "Stream aborted", map[string]interface{}{
					"plan_id":  plan.ID,
					"failures": consecutive,
				})
			}
			return
		}
	}

	if ctx.Err() != nil {
		return
	}

	emit(ctx, out, Event{Kind: EventComplete, Count: emitted, Total: total})
}

// emit sends unless the consumer is gone. Returns false when the context
// ended before the send could happen.
func emit(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Streamer) enrichUnit(ctx context.Context, u unit, destination string) unitResult {
	switch u.kind {
	case EventTransportTo, EventTransportBack:
		from, to := u.origin, destination
		if !u.outbound {
			from, to = destination, u.origin
		}
		payload, err := s.enricher.EnrichTransportation(ctx, from, to, u.country, u.outbound)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("Streamer", "Transport enrichment failed", map[string]interface{}{"error": err.Error()})
			}
			return unitResult{unit: u, transport: transportPlaceholder(from, to, u.outbound), failed: true}
		}
		return unitResult{unit: u, transport: payload}

	default:
		payload, err := s.enricher.EnrichActivity(ctx, u.activity, destination, u.dayNumber)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("Streamer", "Activity enrichment failed", map[string]interface{}{
					"day":      u.key.Day,
					"activity": u.key.Activity,
					"error":    err.Error(),
				})
			}
			return unitResult{unit: u, payload: activityPlaceholder(u.activity), failed: true}
		}
		return unitResult{unit: u, payload: payload}
	}
}

func (r unitResult) event() Event {
	switch r.unit.kind {
	case EventTransportTo:
		return Event{Kind: EventTransportTo, Leg: "to_destination", Transport: r.transport}
	case EventTransportBack:
		return Event{Kind: EventTransportBack, Leg: "back_home", Transport: r.transport}
	default:
		key := r.unit.key
		return Event{Kind: EventActivityEnriched, Key: &key, Payload: r.payload}
	}
}

// buildUnits lays out the canonical unit ordering: outbound leg first (when
// a departure city exists), then activities in (day, activity) order, then
// the return leg.
func buildUnits(plan *travel.Plan) []unit {
	var units []unit

	departure := ""
	if plan.Parsed.Constraints.DepartureCity != nil {
		departure = *plan.Parsed.Constraints.DepartureCity
	}
	country := ""
	if plan.Destination != nil {
		country = plan.Destination.Country
	}

	hasLegs := departure != "" && len(plan.Itinerary) > 0

	if hasLegs {
		units = append(units, unit{kind: EventTransportTo, origin: departure, country: country, outbound: true})
	}

	for dayIdx, day := range plan.Itinerary {
		for actIdx, act := range day.Activities {
			units = append(units, unit{
				kind:      EventActivityEnriched,
				key:       travel.EnrichmentKey{Day: dayIdx, Activity: actIdx},
				activity:  act,
				dayNumber: day.DayNumber,
			})
		}
	}

	if hasLegs {
		units = append(units, unit{kind: EventTransportBack, origin: departure, country: country, outbound: false})
	}

	return units
}

func activityPlaceholder(act travel.Activity) *travel.Enrichment {
	return &travel.Enrichment{
		Description: fmt.Sprintf("Details unavailable for %q - retry enrichment for this item.", act.Name),
		Placeholder: true,
	}
}

func transportPlaceholder(origin, destination string, outbound bool) *travel.TransportEnrichment {
	return &travel.TransportEnrichment{
		Name:        fmt.Sprintf("Transportation: %s to %s", origin, destination),
		Description: fmt.Sprintf("Travel from %s to %s. Check flight aggregators like Google Flights, Skyscanner, or Kayak for the best options.", origin, destination),
		Tips: []string{
			"Book flights 2-3 months in advance for best prices",
			"Compare prices across multiple booking sites",
		},
		Outbound:    outbound,
		Placeholder: true,
	}
}
