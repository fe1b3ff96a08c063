package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Vision   VisionConfig
	Matching MatchingConfig
	Pipeline PipelineConfig
}

// VisionConfig holds vision-model configuration
type VisionConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// MatchingConfig holds building-matching configuration
type MatchingConfig struct {
	Threshold int
}

// PipelineConfig holds pipeline-related configuration
type PipelineConfig struct {
	VisionTextThreshold int
	VendorRetryBelow    float64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Vision: VisionConfig{
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 30*time.Second),
		},
		Matching: MatchingConfig{
			Threshold: getEnvAsInt("MATCH_THRESHOLD", 82),
		},
		Pipeline: PipelineConfig{
			VisionTextThreshold: getEnvAsInt("VISION_TEXT_THRESHOLD", 200),
			VendorRetryBelow:    getEnvAsFloat64("VENDOR_RETRY_BELOW", 0.5),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Matching.Threshold < 0 || c.Matching.Threshold > 100 {
		return NewAppError("CONFIG_ERROR", "MATCH_THRESHOLD must be between 0 and 100", ErrInvalidInput)
	}
	if c.Pipeline.VisionTextThreshold < 0 {
		return NewAppError("CONFIG_ERROR", "VISION_TEXT_THRESHOLD must not be negative", ErrInvalidInput)
	}
	return nil
}
