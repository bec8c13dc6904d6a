package summarizer

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders a Summary as a Markdown table.
type MarkdownFormatter struct {
	tr      Translator
	version string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator translates headings and labels.
func WithTranslator(tr Translator) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.tr = tr
	}
}

// WithVersion adds the tool version to the footer.
func WithVersion(v string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = v
	}
}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{tr: identity}
	for _, opt := range opts {
		opt(f)
	}
	if f.tr == nil {
		f.tr = identity
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", f.tr("Time-lapse Summary"))
	fmt.Fprintf(&b, "| %s | %s |\n", f.tr("Item"), f.tr("Value"))
	b.WriteString("|---|---|\n")
	for _, r := range Rows(s, f.tr) {
		fmt.Fprintf(&b, "| %s | %s |\n", r.Label, escapeCell(r.Value))
	}

	b.WriteString("\n---\n\n")
	fmt.Fprintf(&b, "%s %s", f.tr("Generated at"), s.GeneratedAt.Format("2006-01-02 15:04:05"))
	if f.version != "" {
		fmt.Fprintf(&b, " (timelapse %s)", f.version)
	}
	b.WriteString("\n")
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

var _ Formatter = (*MarkdownFormatter)(nil)
