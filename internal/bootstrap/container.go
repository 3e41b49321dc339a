package bootstrap

import (
	"log"

	"travelmind-be/internal/config"
	"travelmind-be/internal/controller"
	"travelmind-be/internal/pkg/logger"
	"travelmind-be/internal/repository/memory"
	"travelmind-be/internal/service"
	"travelmind-be/pkg/llm"
	"travelmind-be/pkg/llm/factory"
	"travelmind-be/pkg/travel"
	"travelmind-be/pkg/travel/agent"
	"travelmind-be/pkg/travel/stream"
	"travelmind-be/pkg/urlcheck"
)

type Container struct {
	// Controllers
	PlanController   controller.IPlanController
	StreamController controller.IStreamController
	HealthController controller.IHealthController

	// Exposed for graceful shutdown in main.go
	Logger logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. LLM providers
	primaryProvider, err := factory.NewProvider(
		cfg.LLM.Provider,
		cfg.LLM.PrimaryModel,
		providerBaseURL(cfg),
		cfg.LLM.OpenAIAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM provider: %v", err)
	}
	log.Printf("[INFO] Using LLM provider: %s (%s)", cfg.LLM.Provider, cfg.LLM.PrimaryModel)

	// The insight provider runs locally over ollama. Leaving INSIGHT_MODEL
	// empty disables the second opinion and enhance mode uses the primary
	// model alone.
	var insightProvider llm.Provider
	if cfg.LLM.InsightModel != "" {
		insightProvider, err = factory.NewProvider("ollama", cfg.LLM.InsightModel, cfg.LLM.OllamaBaseURL, "")
		if err != nil {
			log.Printf("[WARN] Failed to initialize insight provider, continuing without: %v", err)
		} else {
			log.Printf("[INFO] Using insight provider: ollama (%s)", cfg.LLM.InsightModel)
		}
	}

	// 3. Stores
	planRepo := memory.NewPlanRepository()
	traceRepo := memory.NewTraceRepository()

	// 4. Pipeline agents
	parser := agent.NewConstraintParser()
	recommender := agent.NewDestinationRecommender(primaryProvider)
	planner := agent.NewItineraryPlanner(primaryProvider)
	enricher := agent.NewDetailEnricher(primaryProvider)
	enhancer := agent.NewPlanEnhancer(primaryProvider, insightProvider, cfg.LLM.InsightTimeout)

	sourceFilter := urlcheck.NewValidator(urlcheck.Config{
		ProbeEnabled: cfg.URL.ProbeEnabled,
		ProbeTimeout: cfg.URL.ProbeTimeout,
		MaxProbes:    cfg.URL.MaxProbes,
	}, sysLogger)

	orch := travel.NewOrchestrator(
		parser,
		recommender,
		planner,
		enricher,
		enhancer,
		planRepo,
		traceRepo,
		sourceFilter,
		sysLogger,
	)

	// Streamer logs to its own file to keep the main log readable.
	streamLogger := logger.NewIsolatedLogger("logs/enrichment.log")
	streamer := stream.NewStreamer(enricher, stream.Config{
		Concurrency:            cfg.Enrich.Concurrency,
		MaxConsecutiveFailures: cfg.Enrich.MaxConsecutiveFailures,
	}, streamLogger)

	// 5. Services
	planService := service.NewPlanService(orch, enricher, streamer, planRepo, sysLogger)

	// 6. Controllers
	return &Container{
		PlanController:   controller.NewPlanController(planService),
		StreamController: controller.NewStreamController(planService, sysLogger),
		HealthController: controller.NewHealthController(cfg.LLM.Provider, cfg.LLM.PrimaryModel, cfg.LLM.InsightModel),
		Logger:           sysLogger,
	}
}

func providerBaseURL(cfg *config.Config) string {
	if cfg.LLM.Provider == "ollama" {
		return cfg.LLM.OllamaBaseURL
	}
	return cfg.LLM.OpenAIBaseURL
}
