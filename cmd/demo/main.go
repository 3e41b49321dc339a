package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"travelmind-be/internal/config"
	"travelmind-be/internal/pkg/logger"
	"travelmind-be/internal/repository/memory"
	"travelmind-be/pkg/llm/factory"
	"travelmind-be/pkg/travel"
	"travelmind-be/pkg/travel/agent"
	"travelmind-be/pkg/travel/stream"
	"travelmind-be/pkg/urlcheck"

	"github.com/fatih/color"
)

// Command-line walkthrough of the planning pipeline against a live model
// endpoint. Useful for eyeballing prompt changes without a frontend.
func main() {
	level := flag.String("level", "medium", "detail level: high_level, medium or full")
	dates := flag.String("dates", "2026-09-10 to 2026-09-14", "trip dates")
	budget := flag.Float64("budget", 800, "total budget")
	departure := flag.String("from", "Berlin", "departure city")
	interests := flag.String("interests", "food,history,architecture", "comma-separated interests")
	enrich := flag.Bool("enrich", false, "run progressive enrichment after planning")
	flag.Parse()

	cfg := config.Load()

	provider, err := factory.NewProvider(
		cfg.LLM.Provider,
		cfg.LLM.PrimaryModel,
		demoBaseURL(cfg),
		cfg.LLM.OpenAIAPIKey,
	)
	if err != nil {
		log.Fatalf("provider: %v", err)
	}

	demoLogger := logger.NewIsolatedLogger("logs/demo.log")
	planRepo := memory.NewPlanRepository()
	traceRepo := memory.NewTraceRepository()
	enricher := agent.NewDetailEnricher(provider)

	orch := travel.NewOrchestrator(
		agent.NewConstraintParser(),
		agent.NewDestinationRecommender(provider),
		agent.NewItineraryPlanner(provider),
		enricher,
		agent.NewPlanEnhancer(provider, nil, cfg.LLM.InsightTimeout),
		planRepo,
		traceRepo,
		urlcheck.NewValidator(urlcheck.Config{}, demoLogger),
		demoLogger,
	)

	heading := color.New(color.FgCyan, color.Bold)
	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)

	heading.Println("=== TravelMind demo ===")
	fmt.Printf("provider: %s model: %s level: %s\n\n", cfg.LLM.Provider, cfg.LLM.PrimaryModel, *level)

	input := travel.Constraints{
		Dates:         dates,
		DepartureCity: departure,
		Budget:        budget,
		Interests:     strings.Split(*interests, ","),
	}

	started := time.Now()
	plan, err := orch.GeneratePlan(context.Background(), input, travel.DetailLevel(*level), false)
	if err != nil {
		log.Fatalf("plan generation failed: %v", err)
	}
	ok.Printf("plan %s generated in %.1fs\n\n", plan.ID, time.Since(started).Seconds())

	if plan.Destination != nil {
		heading.Printf("Destination: %s, %s (score %d)\n", plan.Destination.Name, plan.Destination.Country, plan.Destination.Score)
		fmt.Println(plan.Destination.Reasoning)
	}
	for _, alt := range plan.Alternatives {
		fmt.Printf("  alternative: %s, %s (score %d)\n", alt.Name, alt.Country, alt.Score)
	}

	for _, w := range plan.Warnings {
		warn.Printf("warning: %s\n", w)
	}
	for _, a := range plan.Assumptions {
		fmt.Printf("assumed: %s\n", a)
	}

	for _, day := range plan.Itinerary {
		heading.Printf("\nDay %d: %s\n", day.DayNumber, day.Title)
		for _, act := range day.Activities {
			fmt.Printf("  - [%s] %s", act.TimeSlot, act.Name)
			if act.Cost != "" {
				fmt.Printf(" (%s)", act.Cost)
			}
			fmt.Println()
		}
		if day.PackingWarning != "" {
			warn.Printf("  %s\n", day.PackingWarning)
		}
	}

	if *enrich && len(plan.Itinerary) > 0 {
		heading.Println("\n=== Progressive enrichment ===")
		streamer := stream.NewStreamer(enricher, stream.Config{
			Concurrency:            cfg.Enrich.Concurrency,
			MaxConsecutiveFailures: cfg.Enrich.MaxConsecutiveFailures,
		}, demoLogger)

		for ev := range streamer.Stream(context.Background(), plan) {
			switch ev.Kind {
			case stream.EventStarting:
				fmt.Printf("enriching %d units...\n", ev.Total)
			case stream.EventActivityEnriched:
				ok.Printf("  [%d/%d] day %d activity %d\n", ev.Count, ev.Total, ev.Key.Day+1, ev.Key.Activity+1)
			case stream.EventTransportTo, stream.EventTransportBack:
				ok.Printf("  [%d/%d] transport (%s)\n", ev.Count, ev.Total, ev.Leg)
			case stream.EventError:
				warn.Printf("  aborted: %s\n", ev.Message)
			case stream.EventComplete:
				ok.Printf("done: %d/%d units enriched\n", ev.Count, ev.Total)
			}
		}
	}
}

func demoBaseURL(cfg *config.Config) string {
	if cfg.LLM.Provider == "ollama" {
		return cfg.LLM.OllamaBaseURL
	}
	return cfg.LLM.OpenAIBaseURL
}
