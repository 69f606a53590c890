package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var sectionsRe = regexp.MustCompile(`exactly (\d+) sections`)

// MockLLM 为每个阶段返回固定且格式正确的内容，用于本地调试，不访问模型。
type MockLLM struct{}

func (MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	switch prompt.Stage {
	case StageOutline:
		n := DefaultSections
		if m := sectionsRe.FindStringSubmatch(prompt.User); m != nil {
			n, _ = strconv.Atoi(m[1])
		}
		out := Outline{Title: "Sample article title"}
		for i := 1; i <= n; i++ {
			out.Sections = append(out.Sections, Section{
				Heading:     fmt.Sprintf("Section %d", i),
				Subheadings: []string{fmt.Sprintf("Point %d-1", i), fmt.Sprintf("Point %d-2", i)},
			})
		}
		return marshalMock(out)
	case StageMetadata:
		return marshalMock(Metadata{
			Title:       "Sample metadata title for local runs",
			Description: strings.Repeat("Sample description. ", 5),
		})
	case StageChecklist:
		items := make([]ChecklistItem, 0, len(ChecklistDimensions))
		for _, dim := range ChecklistDimensions {
			items = append(items, ChecklistItem{Item: dim, Evaluation: "Looks fine.", Status: StatusOK, Suggestion: "None."})
		}
		return marshalMock(map[string]any{"checklist": items})
	default:
		var sb strings.Builder
		sb.WriteString("This is placeholder prose generated locally.\n\n")
		sb.WriteString("It echoes the request so the flow can be inspected:\n\n")
		sb.WriteString(prompt.User)
		return sb.String(), nil
	}
}

func marshalMock(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
