package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the realitycheck API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	RAG       RAGConfig       `yaml:"rag"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int   `yaml:"port"`
	ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
	WriteTimeoutSec int   `yaml:"write_timeout_sec"`
	ShutdownSec     int   `yaml:"shutdown_timeout_sec"`
	MaxUploadBytes  int64 `yaml:"max_upload_bytes"`
}

// DatabaseConfig holds the optional Redis/Valkey KV settings.
// When disabled the service runs with in-process caches only.
type DatabaseConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
}

// Embedding providers.
const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
)

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider      string       `yaml:"provider"` // huggingface | openai
	URL           string       `yaml:"url"`      // huggingface feature-extraction endpoint
	BaseURL       string       `yaml:"base_url"` // openai-compatible base url
	APIKey        string       `yaml:"api_key"`
	Model         string       `yaml:"model"`
	Dimensions    int          `yaml:"dimensions"`
	MaxInputChars int          `yaml:"max_input_chars"`
	TimeoutSec    int          `yaml:"timeout_sec"`
	CacheSize     int          `yaml:"cache_size"`
	CacheTTLSec   int          `yaml:"cache_ttl_sec"` // KV level only, 0 = no expiry
	RatePerSec    float64      `yaml:"rate_per_sec"`  // 0 = unlimited
	Burst         int          `yaml:"burst"`
	Budget        BudgetConfig `yaml:"budget"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// LLMConfig holds the OpenAI-compatible chat provider settings.
type LLMConfig struct {
	BaseURL     string   `yaml:"base_url"`
	APIKey      string   `yaml:"api_key"`
	Models      []string `yaml:"models"` // tried in order on provider errors
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature float32  `yaml:"temperature"`
	TimeoutSec  int      `yaml:"timeout_sec"`
	RatePerSec  float64  `yaml:"rate_per_sec"`
	Burst       int      `yaml:"burst"`
}

// RAGConfig holds retrieval, chunking and prompt limits.
type RAGConfig struct {
	TopK               int `yaml:"top_k"`
	EvidenceTopK       int `yaml:"evidence_top_k"`
	MaxContextChars    int `yaml:"max_context_chars"`
	ChunkTargetTokens  int `yaml:"chunk_target_tokens"`
	ChunkOverlapTokens int `yaml:"chunk_overlap_tokens"`
	MaxFileChars       int `yaml:"max_file_chars"`
	MaxInputChars      int `yaml:"max_input_chars"`
	EmbedWorkers       int `yaml:"embed_workers"`
	AskMaxTokens       int `yaml:"ask_max_tokens"`
	GenerateMaxTokens  int `yaml:"generate_max_tokens"`
}

// IngestConfig holds document extraction settings.
type IngestConfig struct {
	UnidocLicenseKey string `yaml:"unidoc_license_key"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, if present, is loaded first.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	configPath := findConfigPath(env)

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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
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
	c.HTTP.applyDefaults()
	c.Embedding.applyDefaults()
	c.LLM.applyDefaults()
	c.RAG.applyDefaults()

	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "realitycheck:"
	}
}

func (h *HTTPConfig) applyDefaults() {
	if h.ReadTimeoutSec <= 0 {
		h.ReadTimeoutSec = 30
	}
	if h.WriteTimeoutSec <= 0 {
		h.WriteTimeoutSec = 180
	}
	if h.ShutdownSec <= 0 {
		h.ShutdownSec = 10
	}
	if h.MaxUploadBytes <= 0 {
		h.MaxUploadBytes = 20 << 20
	}
}

func (e *EmbeddingConfig) applyDefaults() {
	if e.Provider == "" {
		e.Provider = ProviderHuggingFace
	}
	if e.Provider == ProviderHuggingFace && e.URL == "" {
		e.URL = "https://router.huggingface.co/hf-inference/models/" +
			"sentence-transformers/all-MiniLM-L6-v2/pipeline/feature-extraction"
	}
	if e.Model == "" {
		e.Model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if e.Dimensions <= 0 {
		e.Dimensions = 384
	}
	if e.MaxInputChars <= 0 {
		e.MaxInputChars = 2000
	}
	if e.TimeoutSec <= 0 {
		e.TimeoutSec = 60
	}
	if e.CacheSize <= 0 {
		e.CacheSize = 512
	}
	if e.Burst <= 0 {
		e.Burst = 1
	}
}

func (l *LLMConfig) applyDefaults() {
	if l.MaxTokens <= 0 {
		l.MaxTokens = 1024
	}
	if l.Temperature <= 0 {
		l.Temperature = 0.2
	}
	if l.TimeoutSec <= 0 {
		l.TimeoutSec = 60
	}
	if l.Burst <= 0 {
		l.Burst = 1
	}
}

func (r *RAGConfig) applyDefaults() {
	if r.TopK <= 0 {
		r.TopK = 5
	}
	if r.EvidenceTopK <= 0 {
		r.EvidenceTopK = 5
	}
	if r.MaxContextChars <= 0 {
		r.MaxContextChars = 7000
	}
	if r.ChunkTargetTokens <= 0 {
		r.ChunkTargetTokens = 500
	}
	if r.ChunkOverlapTokens <= 0 {
		r.ChunkOverlapTokens = 60
	}
	if r.MaxFileChars <= 0 {
		r.MaxFileChars = 70000
	}
	if r.MaxInputChars <= 0 {
		r.MaxInputChars = 5000
	}
	if r.EmbedWorkers <= 0 {
		r.EmbedWorkers = 4
	}
	if r.AskMaxTokens <= 0 {
		r.AskMaxTokens = 280
	}
	if r.GenerateMaxTokens <= 0 {
		r.GenerateMaxTokens = 520
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.Enabled && len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required when database.enabled is true")
	}
	switch c.Embedding.Provider {
	case ProviderHuggingFace, ProviderOpenAI:
		// ok
	default:
		return fmt.Errorf("embedding.provider must be %q or %q, got %q",
			ProviderHuggingFace, ProviderOpenAI, c.Embedding.Provider)
	}
	switch c.Embedding.Budget.Action {
	case "", "warn", "reject":
		// ok
	default:
		return fmt.Errorf(
			"embedding.budget.action must be \"warn\" or \"reject\", got %q",
			c.Embedding.Budget.Action,
		)
	}
	if len(c.LLM.Models) == 0 {
		return fmt.Errorf("llm.models must list at least one model")
	}
	if c.LLM.BaseURL == "" {
		return fmt.Errorf("llm.base_url is required")
	}
	if c.RAG.ChunkOverlapTokens >= c.RAG.ChunkTargetTokens {
		return fmt.Errorf("rag.chunk_overlap_tokens (%d) must be less than rag.chunk_target_tokens (%d)",
			c.RAG.ChunkOverlapTokens, c.RAG.ChunkTargetTokens)
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
