package generator

import (
	"fmt"
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\n(.*?)\n?```$")

// decodeOutline 同时接受约定字段和部分模型使用的 H1/H2/H3 风格字段。
func decodeOutline(raw string) (Outline, error) {
	m, err := Extract(raw)
	if err != nil {
		return Outline{}, err
	}

	title := stringField(m, "title", "article_title_H1", "h1")
	if title == "" {
		return Outline{}, &ParseError{Raw: raw, Reason: "outline has no title"}
	}

	var sections []Section
	for _, it := range listField(m, "sections", "outline") {
		sm, ok := it.(map[string]any)
		if !ok {
			continue
		}
		sections = append(sections, Section{
			Heading:     stringField(sm, "heading", "heading_H2", "h2"),
			Subheadings: stringList(listField(sm, "subheadings", "sections_H3", "h3")),
		})
	}
	return Outline{Title: title, Sections: sections}, nil
}

func decodeMetadata(raw string) (Metadata, error) {
	m, err := Extract(raw)
	if err != nil {
		return Metadata{}, err
	}
	md := Metadata{
		Title:       stringField(m, "title", "meta_title"),
		Description: stringField(m, "description", "meta_description"),
	}
	if md.Title == "" && md.Description == "" {
		return Metadata{}, &ParseError{Raw: raw, Reason: "metadata has neither title nor description"}
	}
	return md, nil
}

// decodeChecklist 将回复映射到固定的检查维度：标签能对上维度的条目归入该维度，
// 其余按顺序补齐剩下的维度。条目少于维度数视为解析失败，多余条目丢弃。
func decodeChecklist(raw string) (Checklist, error) {
	m, err := Extract(raw)
	if err != nil {
		return nil, err
	}
	items := listField(m, "checklist", "items")
	if len(items) < len(ChecklistDimensions) {
		return nil, &ParseError{
			Raw:    raw,
			Reason: fmt.Sprintf("expected %d checklist items, got %d", len(ChecklistDimensions), len(items)),
		}
	}

	var objs []map[string]any
	for i, item := range items {
		im, ok := item.(map[string]any)
		if !ok {
			if i < len(ChecklistDimensions) {
				return nil, &ParseError{Raw: raw, Reason: fmt.Sprintf("checklist item %d is not an object", i+1)}
			}
			continue
		}
		objs = append(objs, im)
	}

	slots := make([]map[string]any, len(ChecklistDimensions))
	var unlabeled []map[string]any
	for _, im := range objs {
		if j := dimensionIndex(stringField(im, "item", "dimension", "name"), slots); j >= 0 {
			slots[j] = im
			continue
		}
		unlabeled = append(unlabeled, im)
	}
	for j := range slots {
		if slots[j] == nil && len(unlabeled) > 0 {
			slots[j], unlabeled = unlabeled[0], unlabeled[1:]
		}
	}

	out := make(Checklist, 0, len(ChecklistDimensions))
	for j, dim := range ChecklistDimensions {
		im := slots[j]
		if im == nil {
			return nil, &ParseError{Raw: raw, Reason: fmt.Sprintf("no checklist verdict for %q", dim)}
		}
		out = append(out, ChecklistItem{
			Item:       dim,
			Evaluation: stringField(im, "evaluation"),
			Status:     normalizeStatus(stringField(im, "status")),
			Suggestion: stringField(im, "suggestion"),
		})
	}
	return out, nil
}

// dimensionIndex 查找 label 对应的空闲维度：先精确匹配，再看 label 是否包含维度首词。
// 找不到返回 -1。
func dimensionIndex(label string, taken []map[string]any) int {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return -1
	}
	for j, dim := range ChecklistDimensions {
		if taken[j] == nil && strings.ToLower(dim) == l {
			return j
		}
	}
	for j, dim := range ChecklistDimensions {
		lead := strings.ToLower(strings.Fields(dim)[0])
		if taken[j] == nil && strings.Contains(l, lead) {
			return j
		}
	}
	return -1
}

// normalizeStatus 凡不是明确通过的都视为 NeedsImprovement。
func normalizeStatus(s string) Status {
	key := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(s))
	switch key {
	case "ok", "pass", "passed", "good":
		return StatusOK
	default:
		return StatusNeedsImprovement
	}
}

// cleanProse 去除首尾空白，并拆掉包裹全文的代码块。
func cleanProse(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	if text == "" {
		return "", fmt.Errorf("%w: provider returned empty text", ErrProvider)
	}
	return text, nil
}
