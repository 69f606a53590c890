package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"seo_content_studio/generator"
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	styleOK     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	styleBad    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleDim    = lipgloss.NewStyle().Faint(true)
	styleBox    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func printHeader(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", styleHeader.Render(title))
}

func printWarning(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s\n", styleWarn.Render("! "+msg))
}

func printOutline(w io.Writer, o *generator.Outline) {
	printHeader(w, "Outline")
	fmt.Fprintln(w, styleBox.Render(strings.TrimRight(o.Markdown(), "\n")))
}

func printMetadata(w io.Writer, m *generator.Metadata) {
	printHeader(w, "Metadata")
	fmt.Fprintf(w, "Title       %s  %s\n", m.Title,
		lengthBadge(m.TitleLength(), generator.MetaTitleMin, generator.MetaTitleMax))
	fmt.Fprintf(w, "Description %s  %s\n", m.Description,
		lengthBadge(m.DescriptionLength(), generator.MetaDescriptionMin, generator.MetaDescriptionMax))
}

func lengthBadge(n, lo, hi int) string {
	label := fmt.Sprintf("(%d chars, target %d-%d)", n, lo, hi)
	if n < lo || n > hi {
		return styleBad.Render(label)
	}
	return styleDim.Render(label)
}

// renderChecklist formats the checklist as one block per item.
func renderChecklist(c generator.Checklist) string {
	var b strings.Builder
	for i, item := range c {
		status := styleOK.Render(string(item.Status))
		if item.Status != generator.StatusOK {
			status = styleBad.Render(string(item.Status))
		}
		fmt.Fprintf(&b, "%d. %s  %s\n", i+1, item.Item, status)
		fmt.Fprintf(&b, "   %s\n", item.Evaluation)
		if item.Status != generator.StatusOK {
			fmt.Fprintf(&b, "   %s %s\n", styleDim.Render("suggestion:"), item.Suggestion)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func printChecklist(w io.Writer, c generator.Checklist) {
	printHeader(w, "Checklist")
	fmt.Fprintln(w, styleBox.Render(renderChecklist(c)))
}
