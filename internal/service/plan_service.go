package service

import (
	"context"
	"fmt"

	"travelmind-be/internal/dto"
	"travelmind-be/internal/pkg/logger"
	"travelmind-be/pkg/travel"
	"travelmind-be/pkg/travel/stream"
)

type IPlanService interface {
	GeneratePlan(ctx context.Context, req *dto.GeneratePlanRequest) (*travel.Plan, error)
	RefinePlan(ctx context.Context, planID string, req *dto.RefinePlanRequest) (*travel.Plan, error)
	Alternatives(ctx context.Context, planID string, req *dto.AlternativesRequest) ([]travel.Destination, error)
	RegenerateDay(ctx context.Context, planID string, req *dto.RegenerateDayRequest) (*travel.Plan, error)
	GetPlan(planID string) (*travel.Plan, error)
	GetTrace(planID string) (*travel.Trace, error)
	EnrichActivity(ctx context.Context, req *dto.EnrichActivityRequest) (*travel.Enrichment, error)
	StreamEnrichment(ctx context.Context, planID string) (<-chan stream.Event, error)
}

type planService struct {
	orch     *travel.Orchestrator
	enricher enrichmentAgent
	streamer *stream.Streamer
	plans    travel.PlanStore
	logger   logger.ILogger
}

// enrichmentAgent is the slice of the detail enricher the standalone
// endpoint needs.
type enrichmentAgent interface {
	EnrichActivity(ctx context.Context, act travel.Activity, destination string, dayNumber int) (*travel.Enrichment, error)
}

func NewPlanService(orch *travel.Orchestrator, enricher enrichmentAgent, streamer *stream.Streamer, plans travel.PlanStore, log logger.ILogger) IPlanService {
	return &planService{
		orch:     orch,
		enricher: enricher,
		streamer: streamer,
		plans:    plans,
		logger:   log,
	}
}

func (s *planService) GeneratePlan(ctx context.Context, req *dto.GeneratePlanRequest) (*travel.Plan, error) {
	input := constraintsFromGenerate(req)
	level := travel.DetailLevel(req.DetailLevel)
	if level == "" {
		level = travel.LevelMedium
	}

	if travel.Mode(req.Mode) == travel.ModeEnhance {
		return s.orch.EnhanceExistingPlan(ctx, input, req.Debug)
	}
	return s.orch.GeneratePlan(ctx, input, level, req.Debug)
}

func (s *planService) RefinePlan(ctx context.Context, planID string, req *dto.RefinePlanRequest) (*travel.Plan, error) {
	return s.orch.RefinePlan(ctx, planID, constraintsFromRefine(req), req.Debug)
}

func (s *planService) Alternatives(ctx context.Context, planID string, req *dto.AlternativesRequest) ([]travel.Destination, error) {
	count := req.Count
	if count <= 0 {
		count = 3
	}
	return s.orch.Alternatives(ctx, planID, count)
}

func (s *planService) RegenerateDay(ctx context.Context, planID string, req *dto.RegenerateDayRequest) (*travel.Plan, error) {
	return s.orch.RegenerateDay(ctx, planID, req.DayNumber, req.Adjustments)
}

func (s *planService) GetPlan(planID string) (*travel.Plan, error) {
	plan, ok := s.orch.GetPlan(planID)
	if !ok {
		return nil, travel.ErrPlanNotFound
	}
	return plan, nil
}

func (s *planService) GetTrace(planID string) (*travel.Trace, error) {
	trace, ok := s.orch.GetTrace(planID)
	if !ok {
		return nil, travel.ErrPlanNotFound
	}
	return trace, nil
}

func (s *planService) EnrichActivity(ctx context.Context, req *dto.EnrichActivityRequest) (*travel.Enrichment, error) {
	act := travel.Activity{
		Name:     req.ActivityName,
		Type:     req.ActivityType,
		TimeSlot: req.TimeSlot,
		Location: req.Location,
	}
	dayNumber := req.DayNumber
	if dayNumber <= 0 {
		dayNumber = 1
	}
	return s.enricher.EnrichActivity(ctx, act, req.Destination, dayNumber)
}

// StreamEnrichment starts progressive enrichment for a stored plan and
// returns the event stream. Completed payloads are folded back into the
// stored plan as they arrive, so a reconnecting client sees them on GET.
func (s *planService) StreamEnrichment(ctx context.Context, planID string) (<-chan stream.Event, error) {
	plan, ok := s.orch.GetPlan(planID)
	if !ok {
		return nil, travel.ErrPlanNotFound
	}
	if len(plan.Itinerary) == 0 {
		return nil, fmt.Errorf("plan %s has no itinerary to enrich", planID)
	}

	events := s.streamer.Stream(ctx, plan)
	out := make(chan stream.Event)

	go func() {
		defer close(out)
		defer s.plans.Save(plan)
		for ev := range events {
			s.applyEvent(plan, ev)
			select {
			case out <- ev:
			case <-ctx.Done():
				// Consumer disconnected. Keep folding whatever the
				// streamer emits while it winds down, then save.
				for ev := range events {
					s.applyEvent(plan, ev)
				}
				return
			}
		}
	}()

	return out, nil
}

func (s *planService) applyEvent(plan *travel.Plan, ev stream.Event) {
	switch ev.Kind {
	case stream.EventActivityEnriched:
		if ev.Key == nil || ev.Payload == nil {
			return
		}
		if ev.Key.Day >= len(plan.Itinerary) {
			return
		}
		day := &plan.Itinerary[ev.Key.Day]
		if ev.Key.Activity >= len(day.Activities) {
			return
		}
		day.Activities[ev.Key.Activity].Enrichment = ev.Payload
	case stream.EventTransportTo:
		plan.TransportToDestination = ev.Transport
	case stream.EventTransportBack:
		plan.TransportBackHome = ev.Transport
	}
}

func constraintsFromGenerate(req *dto.GeneratePlanRequest) travel.Constraints {
	return travel.Constraints{
		Dates:                req.Dates,
		DepartureCity:        req.DepartureCity,
		Budget:               req.Budget,
		TravelStyle:          req.TravelStyle,
		Pace:                 travel.Pace(req.Pace),
		GroupType:            req.GroupType,
		Interests:            req.Interests,
		TravelRange:          req.TravelRange,
		SpecialConstraints:   req.SpecialConstraints,
		AdditionalNotes:      req.AdditionalNotes,
		RejectedDestinations: req.RejectedDestinations,
		ExistingPlan:         req.ExistingPlan,
		SpecificDestination:  req.SpecificDestination,
		PlanAction:           travel.Action(req.PlanAction),
	}
}

func constraintsFromRefine(req *dto.RefinePlanRequest) travel.Constraints {
	return travel.Constraints{
		Dates:              req.Dates,
		DepartureCity:      req.DepartureCity,
		Budget:             req.Budget,
		TravelStyle:        req.TravelStyle,
		Pace:               travel.Pace(req.Pace),
		GroupType:          req.GroupType,
		Interests:          req.Interests,
		TravelRange:        req.TravelRange,
		SpecialConstraints: req.SpecialConstraints,
		AdditionalNotes:    req.AdditionalNotes,
	}
}
