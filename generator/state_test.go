package generator

import (
	"reflect"
	"testing"
)

func TestStatePhase(t *testing.T) {
	tests := []struct {
		name string
		st   State
		want Phase
	}{
		{"empty", NewState(ModeGenerate), PhaseEmpty},
		{"outline", State{Mode: ModeGenerate, Outline: &Outline{Title: "t"}}, PhaseOutlineReady},
		{"draft", State{Mode: ModeGenerate, Draft: "d"}, PhaseDraftReady},
		{"diagnose body", State{Mode: ModeDiagnose, ExistingArticle: "a"}, PhaseDraftReady},
		{"metadata", State{Mode: ModeGenerate, Draft: "d", Metadata: &Metadata{}}, PhaseMetaReady},
		{"checklist", State{Mode: ModeGenerate, Draft: "d", Checklist: Checklist{{}}}, PhaseChecklistReady},
		{"revision", State{Mode: ModeGenerate, Draft: "d", Revised: "r"}, PhaseRevisionReady},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.st.Phase(); got != tt.want {
				t.Errorf("Phase() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStateBodies(t *testing.T) {
	st := State{Mode: ModeGenerate, Draft: "draft", ExistingArticle: "ignored"}
	if st.CurrentBody() != "draft" {
		t.Errorf("generate CurrentBody = %q", st.CurrentBody())
	}
	st.Mode = ModeDiagnose
	if st.CurrentBody() != "ignored" {
		t.Errorf("diagnose CurrentBody = %q", st.CurrentBody())
	}
	if st.FinalBody() != "ignored" {
		t.Errorf("FinalBody without revision = %q", st.FinalBody())
	}
	st.Revised = "revised"
	if st.FinalBody() != "revised" {
		t.Errorf("FinalBody with revision = %q", st.FinalBody())
	}
}

func TestStateTransitionsCascade(t *testing.T) {
	base := populated()

	t.Run("outline clears everything downstream", func(t *testing.T) {
		next := base.withOutline(Outline{Title: "new"}, Target{Keyword: "k"})
		want := State{Mode: ModeGenerate, Target: Target{Keyword: "k"}, Outline: &Outline{Title: "new"}}
		if !reflect.DeepEqual(next, want) {
			t.Errorf("got %+v, want %+v", next, want)
		}
	})

	t.Run("draft keeps outline", func(t *testing.T) {
		next := base.withDraft("new draft")
		if next.Outline != base.Outline || next.Target != base.Target {
			t.Error("draft changed outline or target")
		}
		if next.Metadata != nil || next.Checklist != nil || next.Revised != "" {
			t.Error("draft kept derived state")
		}
	})

	t.Run("metadata keeps checklist and revision", func(t *testing.T) {
		next := base.withMetadata(Metadata{Title: "n"})
		if next.Checklist == nil || next.Revised == "" {
			t.Error("metadata cleared siblings")
		}
		if next.Metadata.Title != "n" || base.Metadata.Title != "t" {
			t.Error("metadata not replaced by value")
		}
	})

	t.Run("checklist drops revision only", func(t *testing.T) {
		next := base.withChecklist(Checklist{{Item: "i", Status: StatusOK}})
		if next.Revised != "" {
			t.Error("revision kept after new checklist")
		}
		if next.Metadata == nil || next.Draft == "" {
			t.Error("checklist cleared unrelated state")
		}
	})

	t.Run("source value untouched", func(t *testing.T) {
		if !reflect.DeepEqual(base, populated()) {
			t.Error("transition mutated its receiver")
		}
	})
}

func TestDiscarded(t *testing.T) {
	before := populated()
	if got := before.Discarded(before); len(got) != 0 {
		t.Errorf("Discarded(self) = %v", got)
	}
	got := before.Discarded(NewState(ModeDiagnose))
	want := []Stage{StageOutline, StageDraft, StageMetadata, StageChecklist, StageRevision}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Discarded = %v, want %v", got, want)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"generate": ModeGenerate, " Diagnose ": ModeDiagnose} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMode("edit"); err == nil {
		t.Error("ParseMode accepted an unknown mode")
	}
}
