package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Provider != "gemini" || cfg.LLM.APIKeyEnv != "GEMINI_API_KEY" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.Fetch.Timeout != 10*time.Second || cfg.Fetch.MinChars != 500 {
		t.Errorf("fetch = %+v", cfg.Fetch)
	}
	if cfg.Session.Store != "memory" || cfg.Session.TTL != 2*time.Hour {
		t.Errorf("session = %+v", cfg.Session)
	}
	if len(cfg.Security.CORS.AllowedOrigins) != 1 || cfg.Security.CORS.AllowedOrigins[0] != "*" {
		t.Errorf("cors = %v", cfg.Security.CORS.AllowedOrigins)
	}
}

func TestLoadFileWithPlaceholders(t *testing.T) {
	t.Setenv("STUDIO_TEST_MODEL", "gemini-2.5-pro")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm:
  model: ${STUDIO_TEST_MODEL}
  provider: ${STUDIO_TEST_UNSET_PROVIDER:openai}
session:
  store: redis
  ttl: 30m
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Model != "gemini-2.5-pro" || cfg.LLM.Provider != "openai" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.Session.Store != "redis" || cfg.Session.TTL != 30*time.Minute {
		t.Errorf("session = %+v", cfg.Session)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("unset key lost its default: %q", cfg.Server.Addr)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load accepted a missing explicit file")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LLM_MODEL", "from-env")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Model != "from-env" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("STUDIO_TEST_SET", "value")
	tests := map[string]string{
		"${STUDIO_TEST_SET}":          "value",
		"${STUDIO_TEST_SET:fallback}": "value",
		"${STUDIO_TEST_NONE:fallback}": "fallback",
		"${STUDIO_TEST_NONE:}":        "",
		"${STUDIO_TEST_NONE}":         "${STUDIO_TEST_NONE}",
		"plain":                       "plain",
	}
	for in, want := range tests {
		if got := expandEnv(in); got != want {
			t.Errorf("expandEnv(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveAPIKey(t *testing.T) {
	dir := t.TempDir()
	secrets := filepath.Join(dir, ".secrets.yaml")
	if err := os.WriteFile(secrets, []byte("STUDIO_TEST_KEY: from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := LLMConfig{APIKeyEnv: "STUDIO_TEST_KEY", SecretsFile: secrets}

	t.Run("secrets file", func(t *testing.T) {
		t.Setenv("STUDIO_TEST_KEY", "")
		key, src, err := ResolveAPIKey(cfg)
		if err != nil || key != "from-file" || src != SourceSecrets {
			t.Errorf("ResolveAPIKey = %q, %q, %v", key, src, err)
		}
	})

	t.Run("env wins", func(t *testing.T) {
		t.Setenv("STUDIO_TEST_KEY", "from-env")
		key, src, err := ResolveAPIKey(cfg)
		if err != nil || key != "from-env" || src != SourceEnv {
			t.Errorf("ResolveAPIKey = %q, %q, %v", key, src, err)
		}
	})

	t.Run("nothing configured", func(t *testing.T) {
		t.Setenv("STUDIO_TEST_KEY", "")
		missing := LLMConfig{APIKeyEnv: "STUDIO_TEST_KEY", SecretsFile: filepath.Join(dir, "absent.yaml")}
		key, src, err := ResolveAPIKey(missing)
		if err != nil || key != "" || src != SourceNone {
			t.Errorf("ResolveAPIKey = %q, %q, %v", key, src, err)
		}
	})
}
