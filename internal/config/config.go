package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Learning LearningConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

// LearningConfig carries the tunable engine thresholds. The consistency
// numbers are deliberately configuration, not constants: the scoring is a
// term-matching heuristic and the bars may need retuning per deployment.
type LearningConfig struct {
	SessionInactivity    time.Duration
	CacheTTL             time.Duration
	HotCacheCapacity     int
	WarmCacheCapacity    int
	AnalyticsCacheTTL    time.Duration
	ConsistencyThreshold float64 // acceptance bar, 0-100
	ConsistencyTermCap   int     // max theme terms matched per axis
	ConsistencyDensity   float64 // min matched-term word share before dilution flag
	PreloadProbability   float64 // progression entries above this are queued
}

type AIConfig struct {
	Provider    string // "ollama" or "none" (template only)
	BaseURL     string
	Model       string
	TimeoutSecs int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Learning: LearningConfig{
			SessionInactivity:    getEnvAsDuration("SESSION_INACTIVITY", 4*time.Hour),
			CacheTTL:             getEnvAsDuration("CONTENT_CACHE_TTL", 30*time.Minute),
			HotCacheCapacity:     getEnvAsInt("HOT_CACHE_CAPACITY", 50),
			WarmCacheCapacity:    getEnvAsInt("WARM_CACHE_CAPACITY", 200),
			AnalyticsCacheTTL:    getEnvAsDuration("ANALYTICS_CACHE_TTL", 5*time.Minute),
			ConsistencyThreshold: getEnvAsFloat("CONSISTENCY_THRESHOLD", 70),
			ConsistencyTermCap:   getEnvAsInt("CONSISTENCY_TERM_CAP", 5),
			ConsistencyDensity:   getEnvAsFloat("CONSISTENCY_DENSITY", 0.01),
			PreloadProbability:   getEnvAsFloat("PRELOAD_PROBABILITY", 0.5),
		},
		Ai: AIConfig{
			Provider:    getEnv("AI_PROVIDER", "ollama"),
			BaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			Model:       getEnv("LLM_MODEL", "llama3"),
			TimeoutSecs: getEnvAsInt("AI_TIMEOUT_SECONDS", 30),
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
