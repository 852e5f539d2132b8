package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the code review server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AI       AIConfig
	Auth     AuthConfig
	Review   ReviewConfig
}

type ServerConfig struct {
	Port           int
	Env            string
	MaxUploadBytes int64
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type AIConfig struct {
	Provider         string
	InferenceTimeout time.Duration
	OpenAI           OpenAIConfig
	Ollama           OllamaConfig
	VLLM             VLLMConfig
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type VLLMConfig struct {
	BaseURL string
	Model   string
}

type AuthConfig struct {
	Enabled         bool
	RateLimitPerMin int
}

type ReviewConfig struct {
	RefactorCacheTTL time.Duration
}

// ClientConfig holds configuration for the codereview CLI.
type ClientConfig struct {
	ServerURL string
	APIKey    string
	Timeout   time.Duration
}

var validProviders = map[string]bool{
	"openai": true,
	"ollama": true,
	"vllm":   true,
	"none":   true,
}

// Load reads configuration from environment variables and returns a validated Config.
// A .env file, when present, fills in variables that are not already set.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:           envInt("CODEREVIEW_PORT", 8080),
			Env:            envString("CODEREVIEW_ENV", "development"),
			MaxUploadBytes: int64(envInt("CODEREVIEW_MAX_UPLOAD_BYTES", 1<<20)),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		AI: AIConfig{
			Provider:         os.Getenv("AI_PROVIDER"),
			InferenceTimeout: envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", 60*time.Second),
			OpenAI: OpenAIConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				BaseURL: os.Getenv("OPENAI_BASE_URL"),
				Model:   envString("OPENAI_MODEL", "gpt-4o-mini"),
			},
			Ollama: OllamaConfig{
				BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434/v1"),
				Model:   envString("OLLAMA_MODEL", "llama3"),
			},
			VLLM: VLLMConfig{
				BaseURL: envString("VLLM_BASE_URL", "http://localhost:8000/v1"),
				Model:   envString("VLLM_MODEL", ""),
			},
		},
		Auth: AuthConfig{
			Enabled:         envBool("CODEREVIEW_AUTH_ENABLED", false),
			RateLimitPerMin: envInt("CODEREVIEW_RATE_LIMIT_PER_MIN", 60),
		},
		Review: ReviewConfig{
			RefactorCacheTTL: envDuration("CODEREVIEW_REFACTOR_CACHE_TTL", 24*time.Hour),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("CODEREVIEW_MAX_UPLOAD_BYTES must be positive, got %d", c.Server.MaxUploadBytes)
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.AI.Provider == "" {
		return fmt.Errorf("AI_PROVIDER is required")
	}
	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of openai, ollama, vllm, none; got %q", c.AI.Provider)
	}

	if c.AI.Provider == "openai" && c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
	}
	if c.AI.Provider == "vllm" && c.AI.VLLM.Model == "" {
		return fmt.Errorf("VLLM_MODEL is required when AI_PROVIDER is vllm")
	}

	if c.Auth.RateLimitPerMin < 0 {
		return fmt.Errorf("CODEREVIEW_RATE_LIMIT_PER_MIN must not be negative, got %d", c.Auth.RateLimitPerMin)
	}

	return nil
}

// LoadClient reads the CLI configuration. Flags override these values.
func LoadClient() (*ClientConfig, error) {
	loadDotEnv()

	cfg := &ClientConfig{
		ServerURL: strings.TrimRight(envString("CODEREVIEW_SERVER_URL", "http://localhost:8080"), "/"),
		APIKey:    os.Getenv("CODEREVIEW_API_KEY"),
		Timeout:   envDuration("CODEREVIEW_TIMEOUT", 2*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the client settings, including any flag overrides.
func (c *ClientConfig) Validate() error {
	if !strings.HasPrefix(c.ServerURL, "http://") && !strings.HasPrefix(c.ServerURL, "https://") {
		return fmt.Errorf("CODEREVIEW_SERVER_URL must start with http:// or https://, got %q", c.ServerURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("CODEREVIEW_TIMEOUT must be positive, got %s", c.Timeout)
	}
	return nil
}

func loadDotEnv() {
	if path := os.Getenv("CODEREVIEW_ENV_FILE"); path != "" {
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
	_ = godotenv.Load()
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
