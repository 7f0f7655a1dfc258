package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v4"
)

type Config struct {
	Port           string `yaml:"port"`
	DatabaseURL    string `yaml:"database_url"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
	JWTSecret      string `yaml:"jwt_secret"`
	JWTIssuer      string `yaml:"jwt_issuer"`
	JWTTTLMinutes  int    `yaml:"jwt_ttl_minutes"`
	LogLevel       string `yaml:"log_level"`
	AllowedOrigins string `yaml:"allowed_origins"`

	RedisURL             string `yaml:"redis_url"`
	OnboardingTTLMinutes int    `yaml:"onboarding_ttl_minutes"`
	ChatContextMessages  int    `yaml:"chat_context_messages"`

	DataDir  string `yaml:"data_dir"`
	SeedData bool   `yaml:"seed_data"`

	Uploads  UploadConfig  `yaml:"uploads"`
	LLM      LLMConfig     `yaml:"llm"`
	Features FeatureConfig `yaml:"features"`

	RateLimitRequests      int `yaml:"rate_limit_requests"`
	RateLimitPeriodSeconds int `yaml:"rate_limit_period_seconds"`
}

// UploadConfig controls where uploaded documents are stored.
// S3 is used when Bucket is set, the local directory otherwise.
type UploadConfig struct {
	Dir       string `yaml:"dir"`
	MaxBytes  int64  `yaml:"max_bytes"`
	Bucket    string `yaml:"s3_bucket"`
	Region    string `yaml:"s3_region"`
	Endpoint  string `yaml:"s3_endpoint"`
	AccessKey string `yaml:"s3_access_key"`
	SecretKey string `yaml:"s3_secret_key"`
}

type LLMConfig struct {
	GoogleAPIKey     string  `yaml:"google_api_key"`
	GoogleModel      string  `yaml:"google_model"`
	MistralAPIKey    string  `yaml:"mistral_api_key"`
	MistralModel     string  `yaml:"mistral_model"`
	HuggingFaceToken string  `yaml:"huggingface_token"`
	HuggingFaceModel string  `yaml:"huggingface_model"`
	OpenAIAPIKey     string  `yaml:"openai_api_key"`
	OpenAIModel      string  `yaml:"openai_model"`
	OpenAIBaseURL    string  `yaml:"openai_base_url"`
	Temperature      float64 `yaml:"temperature"`
	MaxTokens        int     `yaml:"max_tokens"`
	TimeoutSeconds   int     `yaml:"timeout_seconds"`
}

type FeatureConfig struct {
	RLHF              bool `yaml:"rlhf"`
	SentimentAnalysis bool `yaml:"sentiment_analysis"`
	Recommendations   bool `yaml:"recommendations"`
}

// Default returns configuration used when neither a config file nor env overrides a value.
func Default() Config {
	return Config{
		Port:                   "8080",
		JWTSecret:              "dev-secret-change",
		JWTIssuer:              "finadvisor",
		JWTTTLMinutes:          30,
		LogLevel:               "info",
		AllowedOrigins:         "*",
		OnboardingTTLMinutes:   60,
		ChatContextMessages:    10,
		DataDir:                "data",
		Uploads:                UploadConfig{Dir: "uploads", MaxBytes: 10 << 20, Region: "us-east-1"},
		RateLimitRequests:      100,
		RateLimitPeriodSeconds: 3600,
		LLM: LLMConfig{
			GoogleModel:      "gemini-1.5-flash",
			MistralModel:     "mistral-tiny",
			HuggingFaceModel: "mistralai/Mistral-7B-Instruct-v0.2",
			OpenAIModel:      "gpt-3.5-turbo",
			Temperature:      0.7,
			MaxTokens:        1000,
			TimeoutSeconds:   30,
		},
		Features: FeatureConfig{RLHF: true, SentimentAnalysis: true, Recommendations: true},
	}
}

// Load reads configuration: defaults, then the YAML file named by CONFIG_FILE (if any),
// then environment variables (optionally from a .env file if present).
func Load() (Config, error) {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.MigrateOnStart = getEnvBool("MIGRATE_ON_START", cfg.MigrateOnStart)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTIssuer = getEnv("JWT_ISSUER", cfg.JWTIssuer)
	cfg.JWTTTLMinutes = getEnvInt("JWT_TTL_MINUTES", getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", cfg.JWTTTLMinutes))
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.AllowedOrigins = getEnv("ALLOWED_ORIGINS", cfg.AllowedOrigins)

	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.OnboardingTTLMinutes = getEnvInt("ONBOARDING_TTL_MINUTES", cfg.OnboardingTTLMinutes)
	cfg.ChatContextMessages = getEnvInt("CHAT_CONTEXT_MESSAGES", cfg.ChatContextMessages)
	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.SeedData = getEnvBool("SEED_DATA", getEnvBool("ENABLE_MOCK_DATA", cfg.SeedData))

	cfg.Uploads.Dir = getEnv("UPLOAD_DIR", cfg.Uploads.Dir)
	cfg.Uploads.MaxBytes = int64(getEnvInt("MAX_UPLOAD_SIZE", int(cfg.Uploads.MaxBytes)))
	cfg.Uploads.Bucket = getEnv("S3_BUCKET", cfg.Uploads.Bucket)
	cfg.Uploads.Region = getEnv("S3_REGION", cfg.Uploads.Region)
	cfg.Uploads.Endpoint = getEnv("S3_ENDPOINT", cfg.Uploads.Endpoint)
	cfg.Uploads.AccessKey = getEnv("S3_ACCESS_KEY", cfg.Uploads.AccessKey)
	cfg.Uploads.SecretKey = getEnv("S3_SECRET_KEY", cfg.Uploads.SecretKey)

	cfg.LLM.GoogleAPIKey = getEnv("GOOGLE_API_KEY", cfg.LLM.GoogleAPIKey)
	cfg.LLM.GoogleModel = getEnv("GOOGLE_MODEL", cfg.LLM.GoogleModel)
	cfg.LLM.MistralAPIKey = getEnv("MISTRAL_API_KEY", cfg.LLM.MistralAPIKey)
	cfg.LLM.MistralModel = getEnv("MISTRAL_MODEL", cfg.LLM.MistralModel)
	cfg.LLM.HuggingFaceToken = getEnv("HUGGINGFACE_TOKEN", cfg.LLM.HuggingFaceToken)
	cfg.LLM.HuggingFaceModel = getEnv("HUGGINGFACE_MODEL", cfg.LLM.HuggingFaceModel)
	cfg.LLM.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.LLM.OpenAIAPIKey)
	cfg.LLM.OpenAIModel = getEnv("OPENAI_MODEL", cfg.LLM.OpenAIModel)
	cfg.LLM.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", cfg.LLM.OpenAIBaseURL)
	cfg.LLM.Temperature = getEnvFloat("LLM_TEMPERATURE", cfg.LLM.Temperature)
	cfg.LLM.MaxTokens = getEnvInt("LLM_MAX_TOKENS", cfg.LLM.MaxTokens)
	cfg.LLM.TimeoutSeconds = getEnvInt("LLM_TIMEOUT_SECONDS", cfg.LLM.TimeoutSeconds)

	cfg.Features.RLHF = getEnvBool("ENABLE_RLHF", cfg.Features.RLHF)
	cfg.Features.SentimentAnalysis = getEnvBool("ENABLE_SENTIMENT_ANALYSIS", cfg.Features.SentimentAnalysis)
	cfg.Features.Recommendations = getEnvBool("ENABLE_RECOMMENDATIONS", cfg.Features.Recommendations)

	cfg.RateLimitRequests = getEnvInt("RATE_LIMIT_REQUESTS", cfg.RateLimitRequests)
	cfg.RateLimitPeriodSeconds = getEnvInt("RATE_LIMIT_PERIOD_SECONDS", getEnvInt("RATE_LIMIT_PERIOD", cfg.RateLimitPeriodSeconds))
}

// LLMTimeout is the per-attempt deadline for provider calls.
func (c Config) LLMTimeout() time.Duration {
	if c.LLM.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

func (c Config) OnboardingTTL() time.Duration {
	return time.Duration(c.OnboardingTTLMinutes) * time.Minute
}

func (c Config) RateLimitPeriod() time.Duration {
	return time.Duration(c.RateLimitPeriodSeconds) * time.Second
}

// Configured reports whether an API key looks real. Sample .env values
// such as "your-openai-api-key" are treated as unset.
func Configured(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	lower := strings.ToLower(key)
	return !strings.HasPrefix(lower, "your-") && !strings.HasPrefix(lower, "your_") && lower != "changeme"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
