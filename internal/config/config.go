package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	LLM    LLMConfig
	Enrich EnrichConfig
	URL    URLCheckConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type LLMConfig struct {
	Provider      string // "openai" or "ollama"
	PrimaryModel  string
	OpenAIBaseURL string
	OpenAIAPIKey  string
	OllamaBaseURL string

	// Secondary model used for local insights during enhance mode. Empty
	// disables the second opinion entirely.
	InsightModel   string
	InsightTimeout time.Duration
}

type EnrichConfig struct {
	Concurrency            int
	MaxConsecutiveFailures int
}

type URLCheckConfig struct {
	ProbeEnabled bool
	ProbeTimeout time.Duration
	MaxProbes    int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		LLM: LLMConfig{
			Provider:       getEnv("LLM_PROVIDER", "openai"),
			PrimaryModel:   getEnv("PRIMARY_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
			OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			InsightModel:   getEnv("INSIGHT_MODEL", ""),
			InsightTimeout: time.Duration(getEnvAsInt("INSIGHT_TIMEOUT_SECONDS", 20)) * time.Second,
		},
		Enrich: EnrichConfig{
			Concurrency:            getEnvAsInt("ENRICH_CONCURRENCY", 3),
			MaxConsecutiveFailures: getEnvAsInt("ENRICH_MAX_CONSECUTIVE_FAILURES", 3),
		},
		URL: URLCheckConfig{
			ProbeEnabled: getEnvAsBool("URL_PROBE_ENABLED", false),
			ProbeTimeout: time.Duration(getEnvAsInt("URL_PROBE_TIMEOUT_SECONDS", 5)) * time.Second,
			MaxProbes:    getEnvAsInt("URL_PROBE_MAX", 20),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
