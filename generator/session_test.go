package generator

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestSessionWithMockLLM(t *testing.T) {
	ctx := context.Background()
	sess := NewSession("s1", ModeGenerate, NewAgent(MockLLM{}, nil))

	if _, err := sess.Outline(ctx, OutlineRequest{Keyword: "k", Sections: 6}); err != nil {
		t.Fatalf("Outline: %v", err)
	}
	if got := len(sess.State.Outline.Sections); got != 6 {
		t.Errorf("mock outline sections = %d, want 6", got)
	}
	if _, err := sess.Draft(ctx); err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if err := sess.Metadata(ctx); err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if err := sess.Checklist(ctx, ""); err != nil {
		t.Fatalf("Checklist: %v", err)
	}
	revised, err := sess.Revise(ctx, "")
	if err != nil {
		t.Fatalf("Revise: %v", err)
	}
	if revised {
		t.Error("mock checklist is all OK; revise should be a no-op")
	}

	var stages []Stage
	for _, turn := range sess.History {
		stages = append(stages, turn.Stage)
	}
	want := []Stage{StageOutline, StageDraft, StageMetadata, StageChecklist}
	if !reflect.DeepEqual(stages, want) {
		t.Errorf("history = %v, want %v", stages, want)
	}

	discarded, err := sess.Outline(ctx, OutlineRequest{Keyword: "k2", Sections: 5})
	if err != nil {
		t.Fatalf("second Outline: %v", err)
	}
	if !reflect.DeepEqual(discarded, []Stage{StageDraft, StageMetadata, StageChecklist}) {
		t.Errorf("discarded = %v", discarded)
	}
}

func TestSessionFailureKeepsStateAndHistory(t *testing.T) {
	llm := newScriptedLLM().on(StageOutline, "not json")
	sess := NewSession("s1", ModeGenerate, NewAgent(llm, nil))
	sess.State = populated()
	before := sess.State

	if _, err := sess.Outline(context.Background(), OutlineRequest{Keyword: "k", Sections: 5}); err == nil {
		t.Fatal("expected parse error")
	}
	if !reflect.DeepEqual(sess.State, before) {
		t.Error("state changed after failed stage")
	}
	if len(sess.History) != 0 {
		t.Error("failed stage recorded in history")
	}
}

func TestSessionResetAndSnapshot(t *testing.T) {
	sess := NewSession("s1", ModeGenerate, NewAgent(nil, nil))
	sess.State = populated()
	sess.History = []Turn{{Stage: StageOutline, Summary: "x"}}

	raw, err := json.Marshal(sess.Snapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	resumed := Resume(snap, NewAgent(nil, nil))
	if !reflect.DeepEqual(resumed.State, sess.State) {
		t.Errorf("resumed state = %+v, want %+v", resumed.State, sess.State)
	}

	discarded := resumed.Reset(ModeDiagnose)
	if len(discarded) != 5 {
		t.Errorf("Reset discarded %v", discarded)
	}
	if resumed.State.Mode != ModeDiagnose || resumed.State.Phase() != PhaseEmpty || resumed.History != nil {
		t.Errorf("after Reset: %+v", resumed.State)
	}
}

func TestSessionHistoryIsCapped(t *testing.T) {
	sess := NewSession("s1", ModeGenerate, nil)
	for i := 0; i < maxHistory+10; i++ {
		sess.commit(sess.State, StageDraft, "x")
	}
	if len(sess.History) != maxHistory {
		t.Errorf("history length = %d, want %d", len(sess.History), maxHistory)
	}
}

func TestMockLLMMetadataAndChecklistDecode(t *testing.T) {
	ctx := context.Background()
	raw, err := MockLLM{}.Complete(ctx, BuildMetadataPrompt("k", "body"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := decodeMetadata(raw); err != nil {
		t.Errorf("mock metadata does not decode: %v", err)
	}
	raw, err = MockLLM{}.Complete(ctx, BuildChecklistPrompt("k", "body"))
	if err != nil {
		t.Fatal(err)
	}
	c, err := decodeChecklist(raw)
	if err != nil || len(c) != len(ChecklistDimensions) {
		t.Errorf("mock checklist = %v, %v", c, err)
	}
}

func TestPrompts(t *testing.T) {
	outline := BuildOutlinePrompt("kw", "intent text", 8)
	if !outline.Structured || outline.Stage != StageOutline {
		t.Errorf("outline prompt = %+v", outline)
	}
	for _, want := range []string{`"kw"`, `"intent text"`, "exactly 8 sections"} {
		if !strings.Contains(outline.User, want) {
			t.Errorf("outline prompt missing %q", want)
		}
	}

	draft := BuildDraftPrompt("kw", Outline{Title: "T", Sections: []Section{{Heading: "H", Subheadings: []string{"S"}}}})
	if draft.Structured {
		t.Error("draft prompt must not ask for JSON")
	}
	for _, want := range []string{"# T", "## H", "### S", "2000 characters", "do not write the headings"} {
		if !strings.Contains(draft.User, want) {
			t.Errorf("draft prompt missing %q", want)
		}
	}

	checklist := BuildChecklistPrompt("kw", "body")
	for _, dim := range ChecklistDimensions {
		if !strings.Contains(checklist.User, dim) {
			t.Errorf("checklist prompt missing dimension %q", dim)
		}
	}

	revision := BuildRevisionPrompt("kw", "body", []ChecklistItem{
		{Item: "Readability", Suggestion: "Shorter sentences"},
		{Item: "Coverage and depth", Evaluation: "Too thin"},
	})
	for _, want := range []string{"- Readability: Shorter sentences", "- Coverage and depth: Too thin", "plain prose"} {
		if !strings.Contains(revision.User, want) {
			t.Errorf("revision prompt missing %q", want)
		}
	}
}
