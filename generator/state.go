package generator

// Phase 表示 session 当前推进到的阶段。
type Phase string

const (
	PhaseEmpty          Phase = "empty"
	PhaseOutlineReady   Phase = "outline_ready"
	PhaseDraftReady     Phase = "draft_ready"
	PhaseMetaReady      Phase = "meta_ready"
	PhaseChecklistReady Phase = "checklist_ready"
	PhaseRevisionReady  Phase = "revision_ready"
)

// State 是一个 session 的完整工作流记录。阶段函数接收 State 并返回新值，
// 内部实体只替换、不修改。
type State struct {
	Mode   Mode   `json:"mode"`
	Target Target `json:"target"`

	Outline *Outline `json:"outline,omitempty"`
	Draft   string   `json:"draft,omitempty"`

	// 诊断模式下载入的正文。
	ExistingArticle string `json:"existing_article,omitempty"`
	ArticleSource   string `json:"article_source,omitempty"`

	Revised   string    `json:"revised,omitempty"`
	Metadata  *Metadata `json:"metadata,omitempty"`
	Checklist Checklist `json:"checklist,omitempty"`
}

func NewState(mode Mode) State {
	return State{Mode: mode}
}

// CurrentBody 生成模式下为草稿，诊断模式下为载入的文章。
func (s State) CurrentBody() string {
	if s.Mode == ModeDiagnose {
		return s.ExistingArticle
	}
	return s.Draft
}

// FinalBody 是展示和导出的正文，有修订稿时用修订稿。
func (s State) FinalBody() string {
	if s.Revised != "" {
		return s.Revised
	}
	return s.CurrentBody()
}

func (s State) Phase() Phase {
	switch {
	case s.Revised != "":
		return PhaseRevisionReady
	case s.Checklist != nil:
		return PhaseChecklistReady
	case s.Metadata != nil:
		return PhaseMetaReady
	case s.CurrentBody() != "":
		return PhaseDraftReady
	case s.Outline != nil:
		return PhaseOutlineReady
	default:
		return PhaseEmpty
	}
}

// Discarded 列出 s 中存在而 next 中已被清除的阶段产出。
func (s State) Discarded(next State) []Stage {
	var out []Stage
	if s.Outline != nil && next.Outline == nil {
		out = append(out, StageOutline)
	}
	if s.Draft != "" && next.Draft == "" {
		out = append(out, StageDraft)
	}
	if s.ExistingArticle != "" && next.ExistingArticle == "" {
		out = append(out, StageArticle)
	}
	if s.Metadata != nil && next.Metadata == nil {
		out = append(out, StageMetadata)
	}
	if s.Checklist != nil && next.Checklist == nil {
		out = append(out, StageChecklist)
	}
	if s.Revised != "" && next.Revised == "" {
		out = append(out, StageRevision)
	}
	return out
}

// withBody 清除所有基于当前正文的产出。
func (s State) withBody() State {
	s.Revised = ""
	s.Metadata = nil
	s.Checklist = nil
	return s
}

func (s State) withOutline(o Outline, target Target) State {
	s.Target = target
	s.Outline = &o
	s.Draft = ""
	return s.withBody()
}

func (s State) withDraft(draft string) State {
	s.Draft = draft
	return s.withBody()
}

func (s State) withArticle(body, source string, target Target) State {
	s.Target = target
	s.ExistingArticle = body
	s.ArticleSource = source
	return s.withBody()
}

func (s State) withMetadata(m Metadata) State {
	s.Metadata = &m
	return s
}

// withChecklist 同时丢弃基于旧检查结果的修订稿。
func (s State) withChecklist(c Checklist) State {
	s.Checklist = c
	s.Revised = ""
	return s
}

func (s State) withRevised(body string) State {
	s.Revised = body
	return s
}
