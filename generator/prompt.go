package generator

import (
	"fmt"
	"strings"
)

// Prompt 表示发送给 LLM 的一次请求。Structured 要求模型只返回一个 JSON 对象。
type Prompt struct {
	Stage      Stage
	System     string
	User       string
	Structured bool
}

const (
	strategistSystem = "You are a professional SEO content strategist and the editor-in-chief of a popular blog."
	writerSystem     = "You are a professional SEO writer. Output plain prose only, without extra explanation."
	editorSystem     = "You are a meticulous SEO editor. Output plain prose only, without extra explanation."
	jsonOnly         = "Return only the JSON object described above. Do not add any explanation before or after it."
	sameLanguage     = "Write in the same language as the target keyword."
)

// BuildOutlinePrompt 生成大纲提示词：一个标题加 sections 个章节。
func BuildOutlinePrompt(keyword, intent string, sections int) Prompt {
	var sb strings.Builder
	sb.WriteString("Design a logical, comprehensive article outline that can rank at the top of search results.\n\n")
	sb.WriteString("Target keyword and intent:\n")
	sb.WriteString(fmt.Sprintf("- Target keyword: %q\n", keyword))
	sb.WriteString(fmt.Sprintf("- Search intent: %q\n\n", intent))
	sb.WriteString("Rules:\n")
	sb.WriteString("1. Title: an attractive title that fully satisfies the search intent, raises click-through rate and naturally contains the keyword.\n")
	sb.WriteString(fmt.Sprintf("2. Sections: define exactly %d sections. Every section heading must contain a term related to the keyword.\n", sections))
	sb.WriteString("3. Subheadings: under each section list the detailed points (concrete steps, cautions) that fully resolve the reader's questions.\n")
	sb.WriteString("4. Coverage: include every essential topic a beginner searching this keyword expects.\n")
	sb.WriteString("5. " + sameLanguage + "\n\n")
	sb.WriteString("JSON shape:\n")
	sb.WriteString(`{"title": "article title", "sections": [{"heading": "section heading", "subheadings": ["subheading", "subheading"]}]}`)
	sb.WriteString(fmt.Sprintf("\nThe sections array must contain exactly %d entries.\n", sections))
	sb.WriteString(jsonOnly)

	return Prompt{Stage: StageOutline, System: strategistSystem, User: sb.String(), Structured: true}
}

// BuildDraftPrompt 生成正文提示词，附带序列化后的大纲。
func BuildDraftPrompt(keyword string, outline Outline) Prompt {
	var sb strings.Builder
	sb.WriteString("Write the full body of the article described by the outline below.\n\n")
	sb.WriteString(fmt.Sprintf("Target keyword: %q\n\n", keyword))
	sb.WriteString("Outline:\n")
	sb.WriteString(outline.Markdown())
	sb.WriteString("\nRequirements:\n")
	sb.WriteString("- About 2000 characters in total.\n")
	sb.WriteString("- Follow the order of the outline, but do not write the headings themselves; output paragraphs only.\n")
	sb.WriteString("- Use the keyword naturally; never stuff it.\n")
	sb.WriteString("- " + sameLanguage + "\n")

	return Prompt{Stage: StageDraft, System: writerSystem, User: sb.String()}
}

// BuildMetadataPrompt 只带上 body 的前 metadataBodyChars 个字符。
func BuildMetadataPrompt(keyword, body string) Prompt {
	var sb strings.Builder
	sb.WriteString("Write the search-result metadata for the article below.\n\n")
	if keyword != "" {
		sb.WriteString(fmt.Sprintf("Target keyword: %q\n", keyword))
	}
	sb.WriteString(fmt.Sprintf("- title: %d to %d characters, contains the keyword, makes people click.\n", MetaTitleMin, MetaTitleMax))
	sb.WriteString(fmt.Sprintf("- description: %d to %d characters, summarises the benefit of reading.\n", MetaDescriptionMin, MetaDescriptionMax))
	sb.WriteString("- " + sameLanguage + "\n\n")
	sb.WriteString("Article:\n")
	sb.WriteString(truncateRunes(body, metadataBodyChars))
	sb.WriteString("\n\nJSON shape:\n")
	sb.WriteString(`{"title": "...", "description": "..."}`)
	sb.WriteString("\n" + jsonOnly)

	return Prompt{Stage: StageMetadata, System: strategistSystem, User: sb.String(), Structured: true}
}

// BuildChecklistPrompt 针对 body 前 checklistBodyChars 个字符评估固定维度。
func BuildChecklistPrompt(keyword, body string) Prompt {
	var sb strings.Builder
	sb.WriteString("Evaluate the SEO quality of the article below.\n\n")
	sb.WriteString(fmt.Sprintf("Target keyword: %q\n\n", keyword))
	sb.WriteString(fmt.Sprintf("Evaluate exactly these %d items, in this order:\n", len(ChecklistDimensions)))
	for i, dim := range ChecklistDimensions {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, dim))
	}
	sb.WriteString("\nFor each item give a short evaluation, a status of \"OK\" or \"NeedsImprovement\", and a concrete suggestion.\n\n")
	sb.WriteString("Article:\n")
	sb.WriteString(truncateRunes(body, checklistBodyChars))
	sb.WriteString("\n\nJSON shape:\n")
	sb.WriteString(`{"checklist": [{"item": "...", "evaluation": "...", "status": "OK", "suggestion": "..."}]}`)
	sb.WriteString("\n" + jsonOnly)

	return Prompt{Stage: StageChecklist, System: strategistSystem, User: sb.String(), Structured: true}
}

// BuildRevisionPrompt 生成修订提示词，逐条列出需要改进的建议。
func BuildRevisionPrompt(keyword, body string, improvements []ChecklistItem) Prompt {
	var sb strings.Builder
	sb.WriteString("Revise the article below so that it satisfies every improvement listed.\n\n")
	if keyword != "" {
		sb.WriteString(fmt.Sprintf("Target keyword: %q\n\n", keyword))
	}
	sb.WriteString("Improvements:\n")
	for _, it := range improvements {
		suggestion := it.Suggestion
		if suggestion == "" {
			suggestion = it.Evaluation
		}
		sb.WriteString(fmt.Sprintf("- %s: %s\n", it.Item, suggestion))
	}
	sb.WriteString("\nRules:\n")
	sb.WriteString("- Keep the structure and roughly the same length.\n")
	sb.WriteString("- Every improvement above must be satisfied.\n")
	sb.WriteString("- Return the revised article as plain prose only.\n\n")
	sb.WriteString("Article:\n")
	sb.WriteString(body)

	return Prompt{Stage: StageRevision, System: editorSystem, User: sb.String()}
}
