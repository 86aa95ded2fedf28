package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ziadkadry99/llmstream/internal/llm"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderAnthropic {
		t.Errorf("expected default provider %q, got %q", ProviderAnthropic, cfg.Provider)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("expected default temperature 0.7, got %v", cfg.Temperature)
	}
	if cfg.MaxTokens != 2048 {
		t.Errorf("expected default max_tokens 2048, got %d", cfg.MaxTokens)
	}
	if cfg.Policy() != llm.SystemFirst {
		t.Errorf("expected default system policy first, got %q", cfg.Policy())
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.llmstream.yml")

	original := DefaultConfig()
	original.Provider = ProviderOpenAI
	original.Model = "gpt-4o-mini"
	original.Temperature = 0.2
	original.MaxTokens = 512
	original.SystemPolicy = "concat"
	original.Server.Port = 9090
	original.Options = map[string]any{"top_k": 5}

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.Temperature != original.Temperature {
		t.Errorf("temperature: got %v, want %v", loaded.Temperature, original.Temperature)
	}
	if loaded.MaxTokens != original.MaxTokens {
		t.Errorf("max_tokens: got %d, want %d", loaded.MaxTokens, original.MaxTokens)
	}
	if loaded.Policy() != llm.SystemConcat {
		t.Errorf("system_policy: got %q, want concat", loaded.SystemPolicy)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("server.port: got %d, want 9090", loaded.Server.Port)
	}
	if _, ok := loaded.Options["top_k"]; !ok {
		t.Errorf("options: expected top_k, got %v", loaded.Options)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderAnthropic {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	t.Setenv("LLMSTREAM_PROVIDER", "openai")
	t.Setenv("LLMSTREAM_MAX_TOKENS", "100")
	t.Setenv("LLMSTREAM_SERVER__PORT", "7070")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderOpenAI {
		t.Errorf("env override failed: got %q, want %q", loaded.Provider, ProviderOpenAI)
	}
	if loaded.Model != "gpt-4o" {
		t.Errorf("expected openai default model, got %q", loaded.Model)
	}
	if loaded.MaxTokens != 100 {
		t.Errorf("expected max_tokens 100, got %d", loaded.MaxTokens)
	}
	if loaded.Server.Port != 7070 {
		t.Errorf("expected nested env override for server.port, got %d", loaded.Server.Port)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yml")
	if err := os.WriteFile(path, []byte("provider: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"invalid provider", func(c *Config) { c.Provider = "invalid" }},
		{"empty provider", func(c *Config) { c.Provider = "" }},
		{"empty model", func(c *Config) { c.Model = "" }},
		{"zero max tokens", func(c *Config) { c.MaxTokens = 0 }},
		{"unknown policy", func(c *Config) { c.SystemPolicy = "merge" }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{"ollama", ""},
	}
	for _, tt := range tests {
		got := APIKeyEnvVar(tt.provider)
		if got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestDefaultModel(t *testing.T) {
	if DefaultModel(ProviderOpenAI) != "gpt-4o" {
		t.Errorf("unexpected openai default %q", DefaultModel(ProviderOpenAI))
	}
	if DefaultModel("unknown") != "claude-sonnet-4-5-20250929" {
		t.Errorf("expected fallback to anthropic default, got %q", DefaultModel("unknown"))
	}
}

func TestNewLogger(t *testing.T) {
	for _, lc := range []LoggingConfig{{}, {Level: "debug", Format: "json"}, {Level: "warn", Format: "console"}} {
		logger, err := NewLogger(lc)
		if err != nil {
			t.Errorf("NewLogger(%+v): unexpected error: %v", lc, err)
			continue
		}
		logger.Sync()
	}

	if _, err := NewLogger(LoggingConfig{Level: "loud"}); err == nil {
		t.Error("expected error for invalid level")
	}
	if _, err := NewLogger(LoggingConfig{Format: "xml"}); err == nil {
		t.Error("expected error for invalid format")
	}
}
