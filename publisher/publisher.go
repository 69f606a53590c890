// Package publisher turns a finished workflow state into the downloadable
// Markdown document and its HTML preview.
package publisher

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"seo_content_studio/generator"
)

const (
	MarkdownContentType = "text/markdown; charset=utf-8"
	HTMLContentType     = "text/html; charset=utf-8"

	defaultFilename = "article.md"
	digestLimit     = 120
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Document is the exportable article.
type Document struct {
	Keyword  string
	Title    string
	Metadata *generator.Metadata
	Body     string
}

// FromState collects the parts of st that belong in the download: metadata
// when generated, the outline title when present, and the final body.
func FromState(st generator.State) (Document, error) {
	body := st.FinalBody()
	if strings.TrimSpace(body) == "" {
		return Document{}, fmt.Errorf("%w: there is no article body to export", generator.ErrValidation)
	}
	doc := Document{
		Keyword:  st.Target.Keyword,
		Metadata: st.Metadata,
		Body:     body,
	}
	if st.Outline != nil {
		doc.Title = st.Outline.Title
	}
	return doc, nil
}

// Markdown renders the document. The metadata block is a blockquote so it
// stays visible but apart from the article itself.
func (d Document) Markdown() string {
	var b strings.Builder
	if d.Metadata != nil {
		fmt.Fprintf(&b, "> Meta title: %s\n", d.Metadata.Title)
		fmt.Fprintf(&b, "> Meta description: %s\n\n", d.Metadata.Description)
	}
	if d.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", d.Title)
	}
	b.WriteString(strings.TrimSpace(d.Body))
	b.WriteString("\n")
	return b.String()
}

// HTML renders the Markdown document as an HTML fragment.
func (d Document) HTML() (string, error) {
	return RenderHTML(d.Markdown())
}

// Digest is a one-line summary used when no meta description exists.
func (d Document) Digest() string {
	if d.Metadata != nil && d.Metadata.Description != "" {
		return d.Metadata.Description
	}
	return defaultDigest(d.Body, digestLimit)
}

// Filename derives the download name from the keyword.
func (d Document) Filename() string {
	return Filename(d.Keyword)
}

// Filename replaces spaces (ASCII and ideographic) with underscores and drops
// path separators. An empty keyword yields "article.md".
func Filename(keyword string) string {
	name := strings.TrimSpace(keyword)
	name = strings.NewReplacer(" ", "_", "　", "_", "/", "", "\\", "").Replace(name)
	if name == "" {
		return defaultFilename
	}
	return name + ".md"
}

func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func defaultDigest(text string, limit int) string {
	joined := strings.Join(strings.Fields(text), " ")
	runes := []rune(joined)
	if len(runes) <= limit {
		return joined
	}
	return string(runes[:limit])
}
