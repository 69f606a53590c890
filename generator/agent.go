package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"seo_content_studio/fetcher"
	"seo_content_studio/pkg/logger"
	"seo_content_studio/pkg/metrics"
	"seo_content_studio/pkg/tracer"
)

// ArticleFetcher 为诊断模式加载已有文章。
type ArticleFetcher interface {
	Fetch(ctx context.Context, url string) (fetcher.Article, error)
}

// Agent 执行各个阶段：接收当前 State，返回新的 State；出错时原样返回输入。
type Agent struct {
	llm     LLMClient
	fetcher ArticleFetcher
}

// NewAgent 创建 Agent。未配置密钥时 llm 可为 nil，此时生成类阶段返回 ErrConfiguration，其余功能照常。
func NewAgent(llm LLMClient, f ArticleFetcher) *Agent {
	return &Agent{llm: llm, fetcher: f}
}

// Configured 表示生成类阶段是否可用。
func (a *Agent) Configured() bool {
	return a.llm != nil
}

type OutlineRequest struct {
	Keyword  string
	Intent   string
	Sections int
}

type DiagnoseRequest struct {
	Keyword string
	Intent  string
	URL     string
	Body    string
}

// FetchReport 说明诊断正文的来源，以及 URL 抓取结果是否需要提示。
type FetchReport struct {
	URL           string `json:"url,omitempty"`
	Source        string `json:"source"`
	Chars         int    `json:"chars"`
	LowConfidence bool   `json:"low_confidence"`
	Warning       string `json:"warning,omitempty"`
}

const (
	SourceURL    = "url"
	SourcePasted = "pasted"
)

func (a *Agent) GenerateOutline(ctx context.Context, st State, req OutlineRequest) (State, error) {
	next := st
	err := a.run(ctx, StageOutline, func(ctx context.Context) error {
		if err := a.requireLLM(); err != nil {
			return err
		}
		if st.Mode != ModeGenerate {
			return validationf("outline generation is only available in generate mode")
		}
		keyword := strings.TrimSpace(req.Keyword)
		if keyword == "" {
			return validationf("keyword is required")
		}
		if req.Sections < MinSections || req.Sections > MaxSections {
			return validationf("section count must be between %d and %d, got %d", MinSections, MaxSections, req.Sections)
		}
		intent := strings.TrimSpace(req.Intent)
		if intent == "" {
			intent = IntentOptions[0]
		}

		raw, err := a.complete(ctx, BuildOutlinePrompt(keyword, intent, req.Sections))
		if err != nil {
			return err
		}
		outline, err := decodeOutline(raw)
		if err != nil {
			return err
		}
		next = st.withOutline(outline, Target{Keyword: keyword, Intent: intent})
		return nil
	})
	if err != nil {
		return st, err
	}
	return next, nil
}

func (a *Agent) GenerateDraft(ctx context.Context, st State) (State, error) {
	next := st
	err := a.run(ctx, StageDraft, func(ctx context.Context) error {
		if err := a.requireLLM(); err != nil {
			return err
		}
		if st.Mode != ModeGenerate {
			return validationf("draft generation is only available in generate mode")
		}
		if st.Outline == nil {
			return validationf("generate an outline first")
		}

		raw, err := a.complete(ctx, BuildDraftPrompt(st.Target.Keyword, *st.Outline))
		if err != nil {
			return err
		}
		draft, err := cleanProse(raw)
		if err != nil {
			return err
		}
		next = st.withDraft(draft)
		return nil
	})
	if err != nil {
		return st, err
	}
	return next, nil
}

// LoadArticle 载入待诊断的正文。优先抓取 URL，抓取失败或正文过少时改用粘贴文本。
// 不调用模型。
func (a *Agent) LoadArticle(ctx context.Context, st State, req DiagnoseRequest) (State, FetchReport, error) {
	next := st
	var report FetchReport
	err := a.run(ctx, StageArticle, func(ctx context.Context) error {
		if st.Mode != ModeDiagnose {
			return validationf("article diagnosis is only available in diagnose mode")
		}
		target := Target{Keyword: strings.TrimSpace(req.Keyword), Intent: strings.TrimSpace(req.Intent)}
		pasted := strings.TrimSpace(req.Body)
		url := strings.TrimSpace(req.URL)

		var fetched fetcher.Article
		var fetchErr error
		if url != "" {
			report.URL = url
			if a.fetcher == nil {
				fetchErr = fmt.Errorf("%w: no fetcher configured", ErrFetch)
			} else {
				fetched, fetchErr = a.fetcher.Fetch(ctx, url)
			}
			if fetchErr != nil {
				logger.Warn(ctx, "article fetch failed", "url", url, "error", fetchErr)
				report.Warning = fmt.Sprintf("could not fetch %s: %v", url, fetchErr)
			} else if fetched.LowConfidence {
				report.LowConfidence = true
				report.Warning = fmt.Sprintf("only %d characters of prose found at %s; paste the article text if this looks incomplete", len([]rune(fetched.Text)), url)
			}
		}

		body, source := "", ""
		switch {
		case url != "" && fetchErr == nil && !fetched.LowConfidence:
			body, source = fetched.Text, SourceURL
		case pasted != "":
			body, source = pasted, SourcePasted
		case url != "" && fetchErr == nil && strings.TrimSpace(fetched.Text) != "":
			body, source = fetched.Text, SourceURL
		}
		if body == "" {
			if url == "" {
				return validationf("enter a URL or paste the article text")
			}
			return validationf("the URL could not be used and no article text was pasted")
		}

		report.Source = source
		report.Chars = len([]rune(body))
		next = st.withArticle(body, articleSource(source, url), target)
		return nil
	})
	if err != nil {
		return st, report, err
	}
	return next, report, nil
}

func articleSource(source, url string) string {
	if source == SourceURL {
		return url
	}
	return source
}

func (a *Agent) GenerateMetadata(ctx context.Context, st State) (State, error) {
	next := st
	err := a.run(ctx, StageMetadata, func(ctx context.Context) error {
		if err := a.requireLLM(); err != nil {
			return err
		}
		body := st.CurrentBody()
		if body == "" {
			return validationf("there is no article body yet")
		}

		raw, err := a.complete(ctx, BuildMetadataPrompt(st.Target.Keyword, body))
		if err != nil {
			return err
		}
		md, err := decodeMetadata(raw)
		if err != nil {
			return err
		}
		next = st.withMetadata(md)
		return nil
	})
	if err != nil {
		return st, err
	}
	return next, nil
}

// RunChecklist 评估当前正文。keyword 为空时使用进入该模式时记录的关键词。
func (a *Agent) RunChecklist(ctx context.Context, st State, keyword string) (State, error) {
	next := st
	err := a.run(ctx, StageChecklist, func(ctx context.Context) error {
		if err := a.requireLLM(); err != nil {
			return err
		}
		body := st.CurrentBody()
		if body == "" {
			return validationf("there is no article body yet")
		}
		keyword = st.keyword(keyword)
		if keyword == "" {
			return validationf("keyword is required for the checklist")
		}

		raw, err := a.complete(ctx, BuildChecklistPrompt(keyword, body))
		if err != nil {
			return err
		}
		checklist, err := decodeChecklist(raw)
		if err != nil {
			return err
		}
		next = st.withChecklist(checklist)
		return nil
	})
	if err != nil {
		return st, err
	}
	return next, nil
}

// ReviseBody 按检查结果改写正文；没有需要改进的项时返回 revised=false，st 不变。
func (a *Agent) ReviseBody(ctx context.Context, st State, keyword string) (State, bool, error) {
	next := st
	revised := false
	err := a.run(ctx, StageRevision, func(ctx context.Context) error {
		if err := a.requireLLM(); err != nil {
			return err
		}
		body := st.CurrentBody()
		if body == "" {
			return validationf("there is no article body yet")
		}
		if st.Checklist == nil {
			return validationf("run the checklist first")
		}
		improvements := st.Checklist.Improvements()
		if len(improvements) == 0 {
			return errNothingToRevise
		}

		raw, err := a.complete(ctx, BuildRevisionPrompt(st.keyword(keyword), body, improvements))
		if err != nil {
			return err
		}
		text, err := cleanProse(raw)
		if err != nil {
			return err
		}
		next = st.withRevised(text)
		revised = true
		return nil
	})
	if errors.Is(err, errNothingToRevise) {
		return st, false, nil
	}
	if err != nil {
		return st, false, err
	}
	return next, revised, nil
}

// errNothingToRevise 仅在 ReviseBody 内部使用，用于跳过修订。
var errNothingToRevise = errors.New("no revision needed")

func (s State) keyword(override string) string {
	if k := strings.TrimSpace(override); k != "" {
		return k
	}
	return s.Target.Keyword
}

func (a *Agent) requireLLM() error {
	if a.llm == nil {
		return ErrConfiguration
	}
	return nil
}

func (a *Agent) complete(ctx context.Context, p Prompt) (string, error) {
	if strings.TrimSpace(p.User) == "" {
		return "", validationf("prompt is empty")
	}
	raw, err := a.llm.Complete(ctx, p)
	if err != nil {
		if errors.Is(err, ErrProvider) || errors.Is(err, ErrConfiguration) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrProvider, err)
	}
	return raw, nil
}

// run 为单个阶段记录 span、指标和日志。
func (a *Agent) run(ctx context.Context, stage Stage, fn func(context.Context) error) error {
	ctx, span := tracer.Start(ctx, "stage."+string(stage), trace.WithAttributes(attribute.String("stage", string(stage))))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	metrics.StageDuration.WithLabelValues(string(stage)).Observe(elapsed.Seconds())
	metrics.StageTotal.WithLabelValues(string(stage), StatusLabel(err)).Inc()

	switch {
	case err == nil:
		logger.Info(ctx, "stage completed", "stage", stage, "duration", elapsed)
	case errors.Is(err, errNothingToRevise):
		logger.Info(ctx, "stage skipped", "stage", stage, "reason", err.Error())
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn(ctx, "stage failed", "stage", stage, "duration", elapsed, "error", err)
	}
	return err
}

// StatusLabel 将 err 归类，用于指标与日志。
func StatusLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errNothingToRevise):
		return "skipped"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrProvider):
		return "provider"
	case errors.Is(err, ErrFetch):
		return "fetch"
	default:
		return "error"
	}
}
