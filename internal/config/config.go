package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	Storage  StorageConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	StaticDir          string
	JWTSecret          string
	NatsURL            string
	RedisURL           string
	SessionTTLMinutes  int
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type APIKeys struct {
	Perplexity string
}

type AIConfig struct {
	LLMProvider      string // "perplexity"
	LLMModel         string // e.g. "sonar-pro"
	BaseURL          string
	TimeoutSeconds   int
	SearchDomains    []string
	ExtendedDomains  bool
	StructuredOutput bool
	RecencyFilter    string
	BioProxyURL      string // when set, profiles generate bios through a remote proxy
}

type StorageConfig struct {
	Driver string // "memory", "redis" or "postgres"
}

// Frontends allowed to call the API.
const defaultCorsOrigins = "http://localhost:5173,http://localhost:5174,https://crimson-ai-crm-2.onrender.com,https://crimson-ai-crm-v3-net.onrender.com"

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", defaultCorsOrigins),
			StaticDir:          getEnv("STATIC_DIR", "./wwwroot"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			SessionTTLMinutes:  getEnvAsInt("SESSION_TTL_MINUTES", 60),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Crimson CRM"),
		},
		Keys: APIKeys{
			Perplexity: getEnv("PERPLEXITY_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:      getEnv("LLM_PROVIDER", "perplexity"),
			LLMModel:         getEnv("LLM_MODEL", "sonar-pro"),
			BaseURL:          getEnv("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
			TimeoutSeconds:   getEnvAsInt("BIO_TIMEOUT_SECONDS", 15),
			SearchDomains:    getEnvAsList("BIO_SEARCH_DOMAINS"),
			ExtendedDomains:  getEnvAsBool("BIO_EXTENDED_DOMAINS", false),
			StructuredOutput: getEnvAsBool("BIO_STRUCTURED_OUTPUT", true),
			RecencyFilter:    getEnv("BIO_RECENCY_FILTER", "month"),
			BioProxyURL:      getEnv("BIO_PROXY_URL", ""),
		},
		Storage: StorageConfig{
			Driver: getEnv("STORAGE_DRIVER", "memory"),
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

func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
