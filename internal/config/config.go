package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	DataDir string

	// OpenAI-compatible completion API. The API key is not configured here:
	// every request brings its own.
	OpenAIBaseURL string
	OpenAIModel   string
	OpenAITimeout time.Duration

	TranslateTemperature float32
	ReplyTemperature     float32

	OutcomesEnabled bool
}

func Load() (*Config, error) {
	// .env is optional, env vars may already be set in production
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		DataDir:              getEnvOrDefault("DATA_DIR", "."),
		OpenAIBaseURL:        os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:          getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAITimeout:        time.Duration(getEnvAsIntOrDefault("OPENAI_TIMEOUT_SECONDS", 60)) * time.Second,
		TranslateTemperature: getEnvAsFloatOrDefault("TRANSLATE_TEMPERATURE", 0.3),
		ReplyTemperature:     getEnvAsFloatOrDefault("REPLY_TEMPERATURE", 0.7),
		OutcomesEnabled:      getEnvAsBoolOrDefault("OUTCOMES_ENABLED", true),
	}

	for _, t := range []struct {
		name string
		val  float32
	}{
		{"TRANSLATE_TEMPERATURE", cfg.TranslateTemperature},
		{"REPLY_TEMPERATURE", cfg.ReplyTemperature},
	} {
		if t.val < 0 || t.val > 2 {
			return nil, fmt.Errorf("%s must be between 0 and 2, got %v", t.name, t.val)
		}
	}

	if cfg.OpenAITimeout <= 0 {
		return nil, fmt.Errorf("OPENAI_TIMEOUT_SECONDS must be positive")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float32) float32 {
	f, err := strconv.ParseFloat(os.Getenv(key), 32)
	if err != nil {
		return defaultVal
	}
	return float32(f)
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return b
}
