package server

import (
	"time"

	"seo_content_studio/generator"
)

// sessionView is what the page renders. It carries derived fields so the
// page needs no workflow logic of its own.
type sessionView struct {
	ID              string              `json:"id"`
	Mode            generator.Mode      `json:"mode"`
	Phase           generator.Phase     `json:"phase"`
	Target          generator.Target    `json:"target"`
	Outline         *generator.Outline  `json:"outline,omitempty"`
	OutlineMarkdown string              `json:"outline_markdown,omitempty"`
	Draft           string              `json:"draft,omitempty"`
	ExistingArticle string              `json:"existing_article,omitempty"`
	ArticleSource   string              `json:"article_source,omitempty"`
	Revised         string              `json:"revised,omitempty"`
	FinalBody       string              `json:"final_body,omitempty"`
	Metadata        *metadataView       `json:"metadata,omitempty"`
	Checklist       generator.Checklist `json:"checklist,omitempty"`
	NeedsRevision   bool                `json:"needs_revision"`
	History         []generator.Turn    `json:"history"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type metadataView struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	TitleLength        int    `json:"title_length"`
	DescriptionLength  int    `json:"description_length"`
	TitleInRange       bool   `json:"title_in_range"`
	DescriptionInRange bool   `json:"description_in_range"`
}

func newSessionView(sess *generator.Session) sessionView {
	st := sess.State
	v := sessionView{
		ID:              sess.ID,
		Mode:            st.Mode,
		Phase:           st.Phase(),
		Target:          st.Target,
		Outline:         st.Outline,
		Draft:           st.Draft,
		ExistingArticle: st.ExistingArticle,
		ArticleSource:   st.ArticleSource,
		Revised:         st.Revised,
		FinalBody:       st.FinalBody(),
		Checklist:       st.Checklist,
		NeedsRevision:   len(st.Checklist.Improvements()) > 0,
		History:         sess.History,
		CreatedAt:       sess.CreatedAt,
		UpdatedAt:       sess.UpdatedAt,
	}
	if v.History == nil {
		v.History = []generator.Turn{}
	}
	if st.Outline != nil {
		v.OutlineMarkdown = st.Outline.Markdown()
	}
	if m := st.Metadata; m != nil {
		tl, dl := m.TitleLength(), m.DescriptionLength()
		v.Metadata = &metadataView{
			Title:              m.Title,
			Description:        m.Description,
			TitleLength:        tl,
			DescriptionLength:  dl,
			TitleInRange:       tl >= generator.MetaTitleMin && tl <= generator.MetaTitleMax,
			DescriptionInRange: dl >= generator.MetaDescriptionMin && dl <= generator.MetaDescriptionMax,
		}
	}
	return v
}

// stageResult carries what a stage reports besides the new state.
type stageResult struct {
	Discarded []generator.Stage      `json:"discarded,omitempty"`
	Fetch     *generator.FetchReport `json:"fetch,omitempty"`
	Revised   *bool                  `json:"revised,omitempty"`
	Message   string                 `json:"message,omitempty"`
}

type stageResponse struct {
	Session sessionView `json:"session"`
	stageResult
}
