package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"seo_content_studio/pkg/logger"
	"seo_content_studio/pkg/metrics"
)

// GeminiBaseURL 是 Gemini 的 OpenAI 兼容地址。
const GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// OpenAILLM 基于官方 openai-go SDK（chat completions）实现 LLMClient，
// 通过 BaseURL 可接入任意 OpenAI 兼容服务。
type OpenAILLM struct {
	Provider string
	Model    string
	client   openai.Client
}

func NewOpenAILLMFromConfig(cfg *LLMSettings) (*OpenAILLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: api key missing", ErrConfiguration)
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	// 重试由用户重新执行阶段触发，不自动重试。
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	provider := cfg.Provider
	if provider == "" {
		provider = "openai"
	}
	return &OpenAILLM{Provider: provider, Model: cfg.Model, client: openai.NewClient(opts...)}, nil
}

func (o *OpenAILLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	msgs := []openai.ChatCompletionMessageParamUnion{}
	if prompt.System != "" {
		msgs = append(msgs, openai.SystemMessage(prompt.System))
	}
	msgs = append(msgs, openai.UserMessage(prompt.User))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.Model),
		Messages: msgs,
	}
	if prompt.Structured {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, params)
	metrics.LLMCallDuration.WithLabelValues(o.Provider, o.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(o.Provider, o.Model, "error").Inc()
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			logger.Warn(ctx, "provider rejected request", "provider", o.Provider, "stage", prompt.Stage, "status", apiErr.StatusCode)
		}
		return "", fmt.Errorf("%w: %w", ErrProvider, err)
	}
	metrics.LLMCallTotal.WithLabelValues(o.Provider, o.Model, "ok").Inc()
	metrics.LLMTokensUsed.WithLabelValues(o.Provider, o.Model, "prompt").Add(float64(resp.Usage.PromptTokens))
	metrics.LLMTokensUsed.WithLabelValues(o.Provider, o.Model, "completion").Add(float64(resp.Usage.CompletionTokens))

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrProvider)
	}
	return resp.Choices[0].Message.Content, nil
}
