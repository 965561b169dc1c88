// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// TranscribeTimeout bounds POST /api/transcribe, which uploads and processes
	// whole recordings.
	TranscribeTimeout time.Duration `yaml:"transcribe_timeout"`
	MaxUploadBytes    int64         `yaml:"max_upload_bytes"`
	AllowedOrigins    []string      `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RateLimitConfig struct {
	Submissions int           `yaml:"submissions"` // per client per window, negative disables
	Window      time.Duration `yaml:"window"`
}

type AIConfig struct {
	Provider          string        `yaml:"provider"` // openai|gemini|huggingface|noop, empty = auto
	Model             string        `yaml:"model"`
	OpenAIKey         string        `yaml:"openai_key"`
	OpenAIBaseURL     string        `yaml:"openai_base_url"`
	GeminiKey         string        `yaml:"gemini_key"`
	GeminiURL         string        `yaml:"gemini_url"`
	HuggingFaceKey    string        `yaml:"huggingface_key"`
	HuggingFaceURL    string        `yaml:"huggingface_url"`
	TranscribeModel   string        `yaml:"transcribe_model"`
	MaxTokens         int           `yaml:"max_tokens"`
	Temperature       float64       `yaml:"temperature"`
	MaxPromptTokens   int           `yaml:"max_prompt_tokens"`
	ConcurrentLimit   int           `yaml:"concurrent_limit"` // max concurrent AI calls
	GenerationTimeout time.Duration `yaml:"generation_timeout"`
}

type WorkerConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

type StaticConfig struct {
	Dir string `yaml:"dir"`
}

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	AI        AIConfig        `yaml:"ai"`
	Worker    WorkerConfig    `yaml:"worker"`
	Static    StaticConfig    `yaml:"static"`

	Runtime RuntimeConfig `yaml:"-"`
}

// envOverrides lists the variables that take precedence over the YAML file.
// Unset variables leave the file value in place.
type envOverrides struct {
	Port           int    `envconfig:"PORT"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	RedisURL       string `envconfig:"REDIS_URL"`
	RedisPassword  string `envconfig:"REDIS_PASSWORD"`
	OpenAIKey      string `envconfig:"OPENAI_API_KEY"`
	IntegrationKey string `envconfig:"AI_INTEGRATIONS_OPENAI_API_KEY"`
	OpenAIBaseURL  string `envconfig:"OPENAI_BASE_URL"`
	GeminiKey      string `envconfig:"GEMINI_API_KEY"`
	HuggingFaceKey string `envconfig:"HUGGINGFACE_API_KEY"`
	Provider       string `envconfig:"AI_PROVIDER"`
	Model          string `envconfig:"AI_MODEL"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
	LogFormat      string `envconfig:"LOG_FORMAT"`
	StaticDir      string `envconfig:"STATIC_DIR"`
}

// LoadConfig reads configPath (a missing file is fine), loads .env and applies
// environment overrides, then fills defaults and validates.
func LoadConfig(configPath string, dev bool) (*Config, error) {
	var cfg Config
	if configPath != "" {
		b, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	loadDotEnv()
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("read env: %w", err)
	}
	setInt(&cfg.HTTP.Port, env.Port)
	setStr(&cfg.Database.URL, env.DatabaseURL)
	setStr(&cfg.Redis.URL, env.RedisURL)
	setStr(&cfg.Redis.Password, env.RedisPassword)
	setStr(&cfg.AI.OpenAIKey, env.IntegrationKey)
	setStr(&cfg.AI.OpenAIKey, env.OpenAIKey)
	setStr(&cfg.AI.OpenAIBaseURL, env.OpenAIBaseURL)
	setStr(&cfg.AI.GeminiKey, env.GeminiKey)
	setStr(&cfg.AI.HuggingFaceKey, env.HuggingFaceKey)
	setStr(&cfg.AI.Provider, env.Provider)
	setStr(&cfg.AI.Model, env.Model)
	setStr(&cfg.Log.Level, env.LogLevel)
	setStr(&cfg.Log.Format, env.LogFormat)
	setStr(&cfg.Static.Dir, env.StaticDir)
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 5000
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 30 * time.Second
	}
	if cfg.HTTP.TranscribeTimeout <= 0 {
		cfg.HTTP.TranscribeTimeout = 5 * time.Minute
	}
	if cfg.HTTP.MaxUploadBytes <= 0 {
		cfg.HTTP.MaxUploadBytes = 25 << 20
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = time.Minute
	}
	if cfg.RateLimit.Submissions == 0 {
		cfg.RateLimit.Submissions = 10
	}
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = 2000
	}
	if cfg.AI.Temperature <= 0 {
		cfg.AI.Temperature = 0.7
	}
	if cfg.AI.MaxPromptTokens <= 0 {
		cfg.AI.MaxPromptTokens = 4000
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.AI.GenerationTimeout <= 0 {
		cfg.AI.GenerationTimeout = 3 * time.Minute
	}
	if cfg.AI.HuggingFaceURL == "" {
		cfg.AI.HuggingFaceURL = "https://api-inference.huggingface.co/models"
	}
	if cfg.Worker.Workers <= 0 {
		cfg.Worker.Workers = 4
	}
	if cfg.Worker.QueueSize <= 0 {
		cfg.Worker.QueueSize = 256
	}
	if cfg.Static.Dir == "" {
		cfg.Static.Dir = "dist/public"
	}
	cfg.AI.Provider = strings.ToLower(strings.TrimSpace(cfg.AI.Provider))
}

// Validate checks the settings the process cannot start without.
// AI credentials are not checked here: a missing key fails each generation instead.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL must be set. Did you forget to provision a database?")
	}
	if _, err := c.Database.Driver(); err != nil {
		return err
	}
	switch c.AI.Provider {
	case "", "openai", "gemini", "huggingface", "noop":
	default:
		return fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http.port %d", c.HTTP.Port)
	}
	return nil
}

// Driver returns the storage backend selected by the URL scheme.
func (d DatabaseConfig) Driver() (string, error) {
	u, err := url.Parse(d.URL)
	if err != nil {
		return "", fmt.Errorf("parse database.url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		return "postgres", nil
	case "sqlite":
		return "sqlite", nil
	case "memory":
		return "memory", nil
	default:
		return "", fmt.Errorf("unsupported database.url scheme %q", u.Scheme)
	}
}

// SQLitePath extracts the file path from a sqlite: URL (sqlite:///var/data/sites.db or sqlite:sites.db).
func (d DatabaseConfig) SQLitePath() string {
	raw := strings.TrimPrefix(d.URL, "sqlite:")
	raw = strings.TrimPrefix(raw, "//")
	if raw == "" {
		return "sites.db"
	}
	return raw
}

// loadDotEnv loads the first .env found walking up from the working directory.
func loadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func setStr(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
