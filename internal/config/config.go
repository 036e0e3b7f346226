package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverValkey = "valkey"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// DefaultHuggingFaceURL is the Hugging Face Inference API models endpoint.
const DefaultHuggingFaceURL = "https://api-inference.huggingface.co/models"

// Config holds the takenote configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Inference InferenceConfig `yaml:"inference"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Notes     NotesConfig     `yaml:"notes"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig maps bearer tokens to user ids. Empty disables authentication.
type AuthConfig struct {
	Tokens map[string]string `yaml:"tokens"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds note store settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis, sqlite (default: sqlite)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	Path             string   `yaml:"path"` // sqlite file
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// RateLimitConfig holds the per-client sliding window. Negative Requests disables limiting.
type RateLimitConfig struct {
	Requests  int `yaml:"requests"`
	PeriodSec int `yaml:"period_sec"`
}

// NotesConfig holds pagination settings.
type NotesConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// InferenceConfig holds remote inference settings.
type InferenceConfig struct {
	HuggingFace ProviderConfig `yaml:"huggingface"`
	OpenAI      OpenAIConfig   `yaml:"openai"`
	Models      ModelsConfig   `yaml:"models"`
	// DeadlineSec bounds a full note analysis. Zero disables it.
	DeadlineSec int `yaml:"deadline_sec"`
}

// ProviderConfig holds inference provider settings. An empty APIKey means anonymous access.
type ProviderConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// OpenAIConfig holds the OpenAI-compatible embeddings provider used for
// sentence similarity. It is disabled without an APIKey.
type OpenAIConfig struct {
	ProviderConfig `yaml:",inline"`
	Model          string `yaml:"model"`
}

// Enabled reports whether the provider is configured.
func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != ""
}

// ModelCandidate is one entry of a stage's ordered candidate list.
type ModelCandidate struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// ModelsConfig overrides the built-in candidate lists. A stage left out
// keeps its defaults; an explicit empty list runs that stage locally only.
type ModelsConfig struct {
	Summarization  []ModelCandidate `yaml:"summarization"`
	Classification []ModelCandidate `yaml:"classification"`
	NER            []ModelCandidate `yaml:"ner"`
	Similarity     []ModelCandidate `yaml:"similarity"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory is loaded first; it never overrides
// variables already set.
func Load(env string) (Config, error) {
	_ = godotenv.Load()
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Path == "" {
		c.Database.Path = "takenote.db"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Inference.HuggingFace.BaseURL == "" {
		c.Inference.HuggingFace.BaseURL = DefaultHuggingFaceURL
	}
	if c.Inference.HuggingFace.TimeoutSec <= 0 {
		c.Inference.HuggingFace.TimeoutSec = 30
	}
	if c.Inference.OpenAI.TimeoutSec <= 0 {
		c.Inference.OpenAI.TimeoutSec = 30
	}
	if c.Inference.OpenAI.Model == "" {
		c.Inference.OpenAI.Model = "text-embedding-3-small"
	}
	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = 100
	}
	if c.RateLimit.PeriodSec <= 0 {
		c.RateLimit.PeriodSec = 60
	}
	if c.Notes.DefaultPageSize <= 0 {
		c.Notes.DefaultPageSize = 50
	}
	if c.Notes.MaxPageSize <= 0 {
		c.Notes.MaxPageSize = 100
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "takenote:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverValkey, DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return errors.New("database.addrs is required")
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("database.driver must be %q, %q or %q, got %q",
			DriverValkey, DriverRedis, DriverSQLite, c.Database.Driver)
	}
	if c.Inference.DeadlineSec < 0 {
		return fmt.Errorf("inference.deadline_sec must not be negative, got %d", c.Inference.DeadlineSec)
	}
	if c.Notes.DefaultPageSize > c.Notes.MaxPageSize {
		return fmt.Errorf("notes.default_page_size (%d) exceeds notes.max_page_size (%d)",
			c.Notes.DefaultPageSize, c.Notes.MaxPageSize)
	}
	stages := map[string][]ModelCandidate{
		"summarization":  c.Inference.Models.Summarization,
		"classification": c.Inference.Models.Classification,
		"ner":            c.Inference.Models.NER,
		"similarity":     c.Inference.Models.Similarity,
	}
	for stage, candidates := range stages {
		for i, m := range candidates {
			if m.Provider == "" || m.Model == "" {
				return fmt.Errorf("inference.models.%s[%d] needs provider and model", stage, i)
			}
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
