package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"seo_content_studio/config"
	"seo_content_studio/fetcher"
	"seo_content_studio/generator"
	apperrors "seo_content_studio/pkg/errors"
	"seo_content_studio/pkg/logger"
	"seo_content_studio/pkg/tracer"
)

// app is everything a command needs, built once from config.
type app struct {
	cfg      *config.Config
	agent    *generator.Agent
	shutdown func(context.Context) error
}

func newApp(ctx context.Context, forceMock bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Observability.Logging.Level = logLevel
	}
	if forceMock {
		cfg.LLM.Provider = "mock"
	}
	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		return nil, err
	}

	llm, err := buildLLM(ctx, cfg.LLM)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	f := fetcher.New(fetcher.Config{
		Timeout:   cfg.Fetch.Timeout,
		UserAgent: cfg.Fetch.UserAgent,
		MinChars:  cfg.Fetch.MinChars,
	})
	return &app{cfg: cfg, agent: generator.NewAgent(llm, f), shutdown: shutdown}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.shutdown(ctx); err != nil {
		logger.Warn(ctx, "tracer shutdown failed", "error", err)
	}
}

// buildLLM returns a nil client, not an error, when no credential is found:
// the shells still run and report generation as unavailable.
func buildLLM(ctx context.Context, cfg config.LLMConfig) (generator.LLMClient, error) {
	if cfg.Provider == "mock" {
		logger.Warn(ctx, "using mock llm; output is placeholder text")
		return generator.MockLLM{}, nil
	}

	key, source, err := config.ResolveAPIKey(cfg)
	if err != nil {
		return nil, fmt.Errorf("read secrets file: %w", err)
	}
	if key == "" {
		logger.Warn(ctx, "no api key configured; generation disabled", "env", cfg.APIKeyEnv, "secrets_file", cfg.SecretsFile)
		return nil, nil
	}
	logger.Debug(ctx, "api key resolved", "source", source)

	settings := &generator.LLMSettings{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		APIKey:   key,
		BaseURL:  cfg.BaseURL,
	}
	switch cfg.Provider {
	case "gemini":
		if settings.BaseURL == "" {
			settings.BaseURL = generator.GeminiBaseURL
		}
	case "openai":
	case "deepseek":
		// DeepSeek only speaks through an OpenAI-compatible gateway.
		if settings.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}

	client, err := generator.NewOpenAILLMFromConfig(settings)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// printError writes err the way the web shell would show it, including the
// raw provider text for parse failures.
func printError(w io.Writer, err error) {
	var parseErr *generator.ParseError
	switch {
	case errors.Is(err, generator.ErrConfiguration):
		fmt.Fprintf(w, "%s\n", styleBad.Render("Error: no API key is configured. Set the key in the environment or the secrets file."))
	case errors.As(err, &parseErr):
		fmt.Fprintf(w, "%s\n", styleBad.Render("Error: "+parseErr.Error()))
		fmt.Fprintf(w, "%s\n%s\n", styleDim.Render("Raw response:"), parseErr.Raw)
	default:
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			fmt.Fprintf(w, "%s\n", styleBad.Render("Error: "+appErr.Message))
			return
		}
		fmt.Fprintf(w, "%s\n", styleBad.Render("Error: "+err.Error()))
	}
}
