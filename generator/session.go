package generator

import (
	"context"
	"fmt"
	"time"
)

const maxHistory = 50

// Session 持有一个用户的工作流状态及已完成阶段的记录。
type Session struct {
	ID        string
	State     State
	History   []Turn
	CreatedAt time.Time
	UpdatedAt time.Time
	agent     *Agent
}

// Snapshot 是 Session 的可序列化形式。
type Snapshot struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	History   []Turn    `json:"history"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession 创建指定模式的空 session。
func NewSession(id string, mode Mode, agent *Agent) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		State:     NewState(mode),
		CreatedAt: now,
		UpdatedAt: now,
		agent:     agent,
	}
}

// Resume 从存储的快照恢复 session。
func Resume(snap Snapshot, agent *Agent) *Session {
	return &Session{
		ID:        snap.ID,
		State:     snap.State,
		History:   snap.History,
		CreatedAt: snap.CreatedAt,
		UpdatedAt: snap.UpdatedAt,
		agent:     agent,
	}
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:        s.ID,
		State:     s.State,
		History:   s.History,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// Reset 清空全部状态，以 mode 重新开始。
func (s *Session) Reset(mode Mode) []Stage {
	discarded := s.State.Discarded(NewState(mode))
	s.State = NewState(mode)
	s.History = nil
	s.UpdatedAt = time.Now()
	return discarded
}

// Outline 生成新大纲，返回因级联失效而被丢弃的阶段，便于前端提示。
func (s *Session) Outline(ctx context.Context, req OutlineRequest) ([]Stage, error) {
	next, err := s.agent.GenerateOutline(ctx, s.State, req)
	if err != nil {
		return nil, err
	}
	discarded := s.State.Discarded(next)
	s.commit(next, StageOutline, fmt.Sprintf("%s (%d sections)", next.Outline.Title, len(next.Outline.Sections)))
	return discarded, nil
}

func (s *Session) Draft(ctx context.Context) ([]Stage, error) {
	next, err := s.agent.GenerateDraft(ctx, s.State)
	if err != nil {
		return nil, err
	}
	discarded := s.State.Discarded(next)
	s.commit(next, StageDraft, fmt.Sprintf("%d characters", len([]rune(next.Draft))))
	return discarded, nil
}

func (s *Session) Diagnose(ctx context.Context, req DiagnoseRequest) (FetchReport, error) {
	next, report, err := s.agent.LoadArticle(ctx, s.State, req)
	if err != nil {
		return report, err
	}
	s.commit(next, StageArticle, fmt.Sprintf("%d characters from %s", report.Chars, report.Source))
	return report, nil
}

func (s *Session) Metadata(ctx context.Context) error {
	next, err := s.agent.GenerateMetadata(ctx, s.State)
	if err != nil {
		return err
	}
	s.commit(next, StageMetadata, next.Metadata.Title)
	return nil
}

func (s *Session) Checklist(ctx context.Context, keyword string) error {
	next, err := s.agent.RunChecklist(ctx, s.State, keyword)
	if err != nil {
		return err
	}
	s.commit(next, StageChecklist, fmt.Sprintf("%d of %d items need improvement", len(next.Checklist.Improvements()), len(next.Checklist)))
	return nil
}

// Revise 在检查结果无需改进时返回 false。
func (s *Session) Revise(ctx context.Context, keyword string) (bool, error) {
	next, revised, err := s.agent.ReviseBody(ctx, s.State, keyword)
	if err != nil || !revised {
		return false, err
	}
	s.commit(next, StageRevision, fmt.Sprintf("%d characters", len([]rune(next.Revised))))
	return true, nil
}

func (s *Session) commit(next State, stage Stage, summary string) {
	s.State = next
	s.UpdatedAt = time.Now()
	s.History = append(s.History, Turn{
		Stage:     stage,
		Summary:   summary,
		CreatedAt: s.UpdatedAt,
	})
	if len(s.History) > maxHistory {
		s.History = s.History[len(s.History)-maxHistory:]
	}
}
