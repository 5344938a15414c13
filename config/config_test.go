package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing provider", func(c *Config) { c.Model.Provider = "" }},
		{"missing endpoint", func(c *Config) { c.Model.Endpoint = "" }},
		{"missing model", func(c *Config) { c.Model.Model = "" }},
		{"temperature out of range", func(c *Config) { c.Model.Temperature = 3 }},
		{"bad policy", func(c *Config) { c.Mapping.Policy = "sometimes" }},
		{"bad format", func(c *Config) { c.Export.Format = "turtle" }},
		{"chunk cap above threshold", func(c *Config) { c.Extraction.MaxChunkSize = 6000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "covmap.yaml")

	c := DefaultConfig()
	c.Model.Provider = "gemini"
	c.Model.Model = "gemini-2.0-flash"
	c.Mapping.Policy = "fail-fast"

	if err := c.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if loaded.Model.Provider != "gemini" || loaded.Model.Model != "gemini-2.0-flash" {
		t.Errorf("model = %+v", loaded.Model)
	}
	if loaded.Mapping.Policy != "fail-fast" {
		t.Errorf("policy = %q", loaded.Mapping.Policy)
	}
	// Unset fields keep their defaults.
	if loaded.Extraction.ChunkThreshold != 5000 {
		t.Errorf("chunk threshold = %d, want default 5000", loaded.Extraction.ChunkThreshold)
	}
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Merge(&Config{
		Model:   ModelConfig{Provider: "gemini", Timeout: time.Minute},
		Mapping: MappingConfig{Policy: "fail-fast"},
	})

	if base.Model.Provider != "gemini" {
		t.Errorf("provider = %q, want gemini", base.Model.Provider)
	}
	if base.Model.Timeout != time.Minute {
		t.Errorf("timeout = %s, want 1m", base.Model.Timeout)
	}
	if base.Mapping.Policy != "fail-fast" {
		t.Errorf("policy = %q, want fail-fast", base.Mapping.Policy)
	}
	// Untouched fields survive the merge.
	if base.Model.Endpoint != "http://localhost:11434/v1" {
		t.Errorf("endpoint = %q, want default", base.Model.Endpoint)
	}

	base.Merge(nil)
	if base.Model.Provider != "gemini" {
		t.Error("nil merge changed config")
	}
}

func TestGenerationParams(t *testing.T) {
	params := DefaultConfig().Model.GenerationParams()
	if params.Temperature == nil || *params.Temperature != 0.1 {
		t.Errorf("temperature = %v", params.Temperature)
	}
	if params.TopK == nil || *params.TopK != 40 {
		t.Errorf("top_k = %v", params.TopK)
	}
	if params.MaxTokens != 2000 {
		t.Errorf("max_tokens = %d", params.MaxTokens)
	}
}
