// Package report renders a per-run conversion summary as HTML.
package report

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Conversion is one applied substitution.
type Conversion struct {
	Page      int
	Original  string
	Converted string
}

// Skip is one token left unchanged, with the reason.
type Skip struct {
	Page   int
	Token  string
	Reason string
}

// Report accumulates decisions across a run.
type Report struct {
	Input       string
	Output      string
	Pages       int
	Grouped     int
	Conversions []Conversion
	Skips       []Skip
}

// New returns an empty report for the given file pair.
func New(input, output string) *Report {
	return &Report{Input: input, Output: output}
}

// AddConversion records an applied substitution.
func (r *Report) AddConversion(page int, original, converted string) {
	r.Conversions = append(r.Conversions, Conversion{Page: page, Original: original, Converted: converted})
}

// AddSkip records a token left unchanged.
func (r *Report) AddSkip(page int, token, reason string) {
	r.Skips = append(r.Skips, Skip{Page: page, Token: token, Reason: reason})
}

// Markdown renders the report as a markdown document.
func (r *Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Conversion report\n\n")
	fmt.Fprintf(&b, "`%s` → `%s`\n\n", r.Input, r.Output)
	fmt.Fprintf(&b, "- Pages scanned: %d\n", r.Pages)
	fmt.Fprintf(&b, "- Numeric tokens grouped: %d\n", r.Grouped)
	fmt.Fprintf(&b, "- Conversions applied: %d\n", len(r.Conversions))
	fmt.Fprintf(&b, "- Tokens skipped: %d\n", len(r.Skips))

	if len(r.Conversions) > 0 {
		b.WriteString("\n## Conversions\n\n")
		b.WriteString("| Page | Original | Converted |\n|---|---|---|\n")
		for _, c := range r.Conversions {
			fmt.Fprintf(&b, "| %d | `%s` | `%s` |\n", c.Page, escapeCell(c.Original), escapeCell(c.Converted))
		}
	}
	if len(r.Skips) > 0 {
		b.WriteString("\n## Skipped tokens\n\n")
		b.WriteString("| Page | Token | Reason |\n|---|---|---|\n")
		for _, s := range r.Skips {
			fmt.Fprintf(&b, "| %d | `%s` | %s |\n", s.Page, escapeCell(s.Token), s.Reason)
		}
	}
	return b.String()
}

// WriteHTML renders the report to an HTML file.
func (r *Report) WriteHTML(path string) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Conversion report</title></head><body>\n")
	if err := md.Convert([]byte(r.Markdown()), &buf); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	buf.WriteString("</body></html>\n")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
