package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		LLM: LLMConfig{
			BaseURL: "https://api.example.com/v1",
			Models:  []string{"mistral"},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidBudgetAction(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Budget = BudgetConfig{DailyTokenLimit: 1000000, Action: "invalid_action"}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid budget action")
	}

	expected := `embedding.budget.action must be "warn" or "reject", got "invalid_action"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidBudgetActions(t *testing.T) {
	for _, action := range []string{"", "warn", "reject"} {
		t.Run("action="+action, func(t *testing.T) {
			cfg := validConfig()
			cfg.Embedding.Budget.Action = action
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid action %q: %v", action, err)
			}
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.HTTP.Port = 0 }},
		{"port too large", func(c *Config) { c.HTTP.Port = 70000 }},
		{"database without addrs", func(c *Config) { c.Database.Enabled = true; c.Database.Addrs = nil }},
		{"unknown provider", func(c *Config) { c.Embedding.Provider = "cohere" }},
		{"no llm models", func(c *Config) { c.LLM.Models = nil }},
		{"no llm base url", func(c *Config) { c.LLM.BaseURL = "" }},
		{"overlap not below target", func(c *Config) { c.RAG.ChunkOverlapTokens = c.RAG.ChunkTargetTokens }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidate_DatabaseDisabledNeedsNoAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database = DatabaseConfig{Enabled: false}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	checks := []struct {
		name      string
		got, want int
	}{
		{"http.read_timeout_sec", cfg.HTTP.ReadTimeoutSec, 30},
		{"http.shutdown_timeout_sec", cfg.HTTP.ShutdownSec, 10},
		{"database.readiness_timeout_sec", cfg.Database.ReadinessTimeout, 10},
		{"embedding.dimensions", cfg.Embedding.Dimensions, 384},
		{"embedding.max_input_chars", cfg.Embedding.MaxInputChars, 2000},
		{"embedding.timeout_sec", cfg.Embedding.TimeoutSec, 60},
		{"embedding.cache_size", cfg.Embedding.CacheSize, 512},
		{"llm.max_tokens", cfg.LLM.MaxTokens, 1024},
		{"rag.top_k", cfg.RAG.TopK, 5},
		{"rag.max_context_chars", cfg.RAG.MaxContextChars, 7000},
		{"rag.chunk_target_tokens", cfg.RAG.ChunkTargetTokens, 500},
		{"rag.chunk_overlap_tokens", cfg.RAG.ChunkOverlapTokens, 60},
		{"rag.max_file_chars", cfg.RAG.MaxFileChars, 70000},
		{"rag.max_input_chars", cfg.RAG.MaxInputChars, 5000},
		{"rag.ask_max_tokens", cfg.RAG.AskMaxTokens, 280},
		{"rag.generate_max_tokens", cfg.RAG.GenerateMaxTokens, 520},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}
	if cfg.Embedding.Provider != ProviderHuggingFace {
		t.Errorf("embedding.provider = %q", cfg.Embedding.Provider)
	}
	if cfg.Embedding.URL == "" {
		t.Error("expected default huggingface url")
	}
	if cfg.LLM.Temperature != 0.2 {
		t.Errorf("llm.temperature = %v", cfg.LLM.Temperature)
	}
	if cfg.Database.KeyPrefix != "realitycheck:" {
		t.Errorf("database.key_prefix = %q", cfg.Database.KeyPrefix)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 5},
		Embedding: EmbeddingConfig{Provider: ProviderOpenAI, Dimensions: 1536},
		RAG:       RAGConfig{TopK: 3, ChunkTargetTokens: 200},
		Database:  DatabaseConfig{KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 5 {
		t.Errorf("ReadTimeoutSec = %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Embedding.Dimensions != 1536 {
		t.Errorf("Dimensions = %d", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.URL != "" {
		t.Errorf("openai provider should not get a huggingface url, got %q", cfg.Embedding.URL)
	}
	if cfg.RAG.TopK != 3 || cfg.RAG.ChunkTargetTokens != 200 {
		t.Errorf("RAG overridden: %+v", cfg.RAG)
	}
	if cfg.Database.KeyPrefix != "custom:" {
		t.Errorf("KeyPrefix = %q", cfg.Database.KeyPrefix)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("RC_TEST_SET", "value")

	tests := []struct {
		in, want string
	}{
		{"a: ${RC_TEST_SET}", "a: value"},
		{"a: ${RC_TEST_UNSET_VAR}", "a: "},
		{"a: ${RC_TEST_UNSET_VAR:-fallback}", "a: fallback"},
		{"a: ${RC_TEST_SET:-fallback}", "a: value"},
		{"a: plain", "a: plain"},
	}
	for _, tc := range tests {
		if got := string(expandEnvVars([]byte(tc.in))); got != tc.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := `
http:
  port: ${RC_TEST_PORT:-9090}
llm:
  base_url: https://llm.example.com/v1
  models: [a, b]
rag:
  top_k: 7
`
	if err := os.WriteFile(filepath.Join(dir, "config", "unittest.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := Load("unittest")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
	if cfg.RAG.TopK != 7 || cfg.RAG.EvidenceTopK != 5 {
		t.Errorf("rag = %+v", cfg.RAG)
	}
	if len(cfg.LLM.Models) != 2 {
		t.Errorf("models = %v", cfg.LLM.Models)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := `
http:
  port: ${RC_DOTENV_PORT}
llm:
  base_url: https://llm.example.com/v1
  models: [a]
`
	if err := os.WriteFile(filepath.Join(dir, "config", "unittest.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("RC_DOTENV_PORT=7070\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Cleanup(func() { _ = os.Unsetenv("RC_DOTENV_PORT") })

	cfg, err := Load("unittest")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 7070 {
		t.Errorf("port = %d, want 7070 from .env", cfg.HTTP.Port)
	}
}
