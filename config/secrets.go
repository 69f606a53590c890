package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Credential sources reported by ResolveAPIKey.
const (
	SourceNone    = ""
	SourceEnv     = "env"
	SourceSecrets = "secrets"
)

// ResolveAPIKey looks up the provider credential: the environment variable
// named by llm.api_key_env first, then the same key in the secrets file.
// A missing credential is not an error; callers run with generation disabled.
func ResolveAPIKey(cfg LLMConfig) (key string, source string, err error) {
	name := cfg.APIKeyEnv
	if name == "" {
		return "", SourceNone, nil
	}
	if val := strings.TrimSpace(os.Getenv(name)); val != "" {
		return val, SourceEnv, nil
	}
	if cfg.SecretsFile == "" {
		return "", SourceNone, nil
	}

	v := viper.New()
	v.SetConfigFile(cfg.SecretsFile)
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", SourceNone, nil
		}
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", SourceNone, nil
		}
		return "", SourceNone, err
	}
	// Secrets files use the env var name as key (GEMINI_API_KEY: ...).
	// viper lower-cases keys on read.
	if val := strings.TrimSpace(v.GetString(strings.ToLower(name))); val != "" {
		return val, SourceSecrets, nil
	}
	return "", SourceNone, nil
}
