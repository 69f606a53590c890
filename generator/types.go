package generator

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Mode 决定 session 走哪条流程，切换模式会重置 session。
type Mode string

const (
	ModeGenerate Mode = "generate"
	ModeDiagnose Mode = "diagnose"
)

// ParseMode 接受 "generate" 或 "diagnose"（不区分大小写）。
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeGenerate:
		return ModeGenerate, nil
	case ModeDiagnose:
		return ModeDiagnose, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrValidation, s)
	}
}

// Stage 表示工作流中的一个步骤。
type Stage string

const (
	StageOutline   Stage = "outline"
	StageDraft     Stage = "draft"
	StageArticle   Stage = "article"
	StageMetadata  Stage = "metadata"
	StageChecklist Stage = "checklist"
	StageRevision  Stage = "revision"
)

const (
	MinSections     = 5
	MaxSections     = 10
	DefaultSections = 7

	DefaultKeyword = "beginner affiliate marketing how to start"
)

// IntentOptions 是生成模式下可选的固定搜索意图。
var IntentOptions = []string{
	"I want concrete step-by-step instructions I can start following today",
	"I want to know the pitfalls and risks to avoid so I don't fail",
	"I want concrete strategies (SEO, social media) to maximise revenue",
}

// Section 是大纲中的一个章节及其小标题。
type Section struct {
	Heading     string   `json:"heading"`
	Subheadings []string `json:"subheadings"`
}

// Outline 是撰写正文前生成的标题结构。
type Outline struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Markdown 渲染大纲，缺失的标题用占位符代替。
func (o Outline) Markdown() string {
	var sb strings.Builder
	title := o.Title
	if title == "" {
		title = "[Untitled]"
	}
	sb.WriteString("# " + title + "\n")
	for i, sec := range o.Sections {
		heading := sec.Heading
		if heading == "" {
			heading = fmt.Sprintf("[Heading %d]", i+1)
		}
		sb.WriteString("\n## " + heading + "\n")
		if len(sec.Subheadings) == 0 {
			sb.WriteString("- (no subheadings generated)\n")
			continue
		}
		for _, sub := range sec.Subheadings {
			sb.WriteString("### " + sub + "\n")
		}
	}
	return sb.String()
}

// Metadata 是根据正文生成的搜索结果标题与描述。
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// 目标长度（字符数）。
const (
	MetaTitleMin       = 30
	MetaTitleMax       = 35
	MetaDescriptionMin = 100
	MetaDescriptionMax = 120
)

func (m Metadata) TitleLength() int       { return utf8.RuneCountInString(m.Title) }
func (m Metadata) DescriptionLength() int { return utf8.RuneCountInString(m.Description) }

// Status 是单个检查维度的结论。
type Status string

const (
	StatusOK               Status = "OK"
	StatusNeedsImprovement Status = "NeedsImprovement"
)

// ChecklistDimensions 每次检查都按此顺序评估。
var ChecklistDimensions = []string{
	"Coverage and depth",
	"Keyword density and naturalness",
	"Readability",
	"Trustworthiness and expertise",
}

type ChecklistItem struct {
	Item       string `json:"item"`
	Evaluation string `json:"evaluation"`
	Status     Status `json:"status"`
	Suggestion string `json:"suggestion"`
}

type Checklist []ChecklistItem

// Improvements 返回标记为 NeedsImprovement 的条目。
func (c Checklist) Improvements() []ChecklistItem {
	var out []ChecklistItem
	for _, item := range c {
		if item.Status == StatusNeedsImprovement {
			out = append(out, item)
		}
	}
	return out
}

// Target 记录进入当前模式的阶段所填写的关键词与意图：
// 生成模式下来自大纲阶段，诊断模式下来自文章载入。
type Target struct {
	Keyword string `json:"keyword"`
	Intent  string `json:"intent"`
}

// Turn 记录一个已完成的阶段。
type Turn struct {
	Stage     Stage     `json:"stage"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}
