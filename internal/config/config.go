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
	Store    StoreConfig
	Keys     APIKeys
	Coach    CoachConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	BodyLimitMB        int
	UploadDir          string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Driver      string // "postgres" | "sqlite"
	Connection  string
	AutoMigrate bool
}

type StoreConfig struct {
	Backend string // "gorm" | "memory"
}

type APIKeys struct {
	GoogleGemini string
}

type CoachConfig struct {
	VisionProvider  string // "gemini" | "ollama"
	VisionModel     string
	OllamaBaseURL   string
	AnalysisTimeout time.Duration
	ReplyDelay      time.Duration
	ScenarioFile    string
}

const (
	StoreBackendGorm   = "gorm"
	StoreBackendMemory = "memory"

	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			BodyLimitMB:        getEnvAsInt("BODY_LIMIT_MB", 10),
			UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		},
		Database: DatabaseConfig{
			Driver:      getEnv("DB_DRIVER", DriverPostgres),
			Connection:  getEnv("DB_CONNECTION_STRING", ""),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", StoreBackendGorm),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Coach: CoachConfig{
			VisionProvider:  getEnv("VISION_PROVIDER", "gemini"),
			VisionModel:     getEnv("VISION_MODEL", "gemini-2.5-flash"),
			OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			AnalysisTimeout: time.Duration(getEnvAsInt("ANALYSIS_TIMEOUT_SECONDS", 60)) * time.Second,
			ReplyDelay:      time.Duration(getEnvAsInt("REPLY_DELAY_MS", 0)) * time.Millisecond,
			ScenarioFile:    getEnv("SCENARIO_FILE", ""),
		},
	}
}

// IsProduction switches the console log encoder to JSON.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// BodyLimitBytes is shared by the fiber body limit and the upload size check.
func (c *Config) BodyLimitBytes() int {
	return c.App.BodyLimitMB * 1024 * 1024
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
