package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates service configuration, loaded once at startup.
type Config struct {
	Server    ServerConfig
	Retriever RetrieverConfig
	Generator GeneratorConfig
	Store     StoreConfig
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr       string
	CORSOrigin string
}

// RetrieverConfig describes the vector-search backend.
type RetrieverConfig struct {
	BaseURL     string
	Timeout     time.Duration
	DefaultTopK int
}

// GeneratorConfig describes the text-generation backend.
type GeneratorConfig struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// StoreConfig describes the key-value backend for session histories.
// SessionTTL of 0 retains sessions until they are cleared explicitly.
type StoreConfig struct {
	RedisURL   string
	SessionTTL time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	retriever, err := loadRetrieverConfig()
	if err != nil {
		return nil, err
	}

	generator, err := loadGeneratorConfig()
	if err != nil {
		return nil, err
	}

	store, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Retriever: retriever, Generator: generator, Store: store}, nil
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3000"
	}

	addr := port
	if !strings.Contains(port, ":") {
		if strings.Contains(port, " ") {
			return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
		}
		addr = ":" + port
	}

	return ServerConfig{
		Addr:       addr,
		CORSOrigin: strings.TrimSpace(os.Getenv("CORS_ORIGIN")),
	}, nil
}

func loadRetrieverConfig() (RetrieverConfig, error) {
	timeout, err := parseTimeoutEnv("RETRIEVER_TIMEOUT", 30*time.Second)
	if err != nil {
		return RetrieverConfig{}, err
	}

	topK := 5
	if override, err := parseOptionalIntEnv("DEFAULT_TOP_K"); err != nil {
		return RetrieverConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return RetrieverConfig{}, fmt.Errorf("DEFAULT_TOP_K must be at least 1, got %d", *override)
		}
		topK = *override
	}

	return RetrieverConfig{
		BaseURL:     getEnvOrDefault("RETRIEVER_URL", "http://localhost:5000"),
		Timeout:     timeout,
		DefaultTopK: topK,
	}, nil
}

func loadGeneratorConfig() (GeneratorConfig, error) {
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		return GeneratorConfig{}, fmt.Errorf("GEMINI_API_KEY is required")
	}

	timeout, err := parseTimeoutEnv("GENERATOR_TIMEOUT", 30*time.Second)
	if err != nil {
		return GeneratorConfig{}, err
	}

	return GeneratorConfig{
		BaseURL: getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		Model:   getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		APIKey:  apiKey,
		Timeout: timeout,
	}, nil
}

func loadStoreConfig() (StoreConfig, error) {
	ttl := time.Duration(0)
	if override, err := parseOptionalIntEnv("SESSION_TTL"); err != nil {
		return StoreConfig{}, err
	} else if override != nil {
		if *override < 0 {
			return StoreConfig{}, fmt.Errorf("SESSION_TTL must not be negative, got %d", *override)
		}
		ttl = time.Duration(*override) * time.Second
	}

	return StoreConfig{
		RedisURL:   strings.TrimSpace(os.Getenv("REDIS_URL")),
		SessionTTL: ttl,
	}, nil
}

func parseTimeoutEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	override, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	if override == nil {
		return defaultValue, nil
	}
	if *override < 1 {
		return 0, fmt.Errorf("%s must be at least 1 second, got %d", key, *override)
	}
	return time.Duration(*override) * time.Second, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
