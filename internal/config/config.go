// File: internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort   string
	JWTSecretKey string
	DatabasePath string
	UploadDir    string

	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	MaxContextTokens     int
	PageFocusedMaxTokens int
	DesiredKMin          int
	DesiredKMax          int

	Environment string
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		JWTSecretKey: getEnv("JWT_SECRET_KEY", ""),
		DatabasePath: getEnv("DATABASE_PATH", "taleleaf.db"),
		UploadDir:    getEnv("UPLOAD_DIR", "uploads"),

		LLMAPIKey:  getEnv("LLM_API_KEY", ""),
		LLMBaseURL: getEnv("LLM_BASE_URL", ""),
		LLMModel:   getEnv("LLM_MODEL", "gpt-4o-mini"),

		MaxContextTokens:     getEnvAsInt("MAX_CONTEXT_TOKENS", 1800),
		PageFocusedMaxTokens: getEnvAsInt("PAGE_FOCUSED_MAX_TOKENS", 900),
		DesiredKMin:          getEnvAsInt("DESIRED_K_MIN", 4),
		DesiredKMax:          getEnvAsInt("DESIRED_K_MAX", 8),

		Environment: env,
	}

	// Validation for production environments
	if strings.ToLower(env) == "production" {
		missing := []string{}
		if cfg.JWTSecretKey == "" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if cfg.LLMAPIKey == "" {
			missing = append(missing, "LLM_API_KEY")
		}
		if len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}
