package generator

import "context"

// LLMClient 抽象大模型客户端，便于替换/Mock。每次调用只发一次请求，不自动重试。
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings 提供给具体实现的基础配置。
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}
