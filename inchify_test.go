package inchify

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fabtools/inchify/document"
	"github.com/fabtools/inchify/extractor"
	"github.com/fabtools/inchify/internal/pdftest"
	"github.com/fabtools/inchify/report"
	"github.com/fabtools/inchify/scripting"
)

func writeFixture(t *testing.T, content string) (in, out string) {
	t.Helper()
	dir := t.TempDir()
	in = filepath.Join(dir, "input.pdf")
	out = filepath.Join(dir, "output_converted.pdf")
	if err := os.WriteFile(in, pdftest.Single(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return in, out
}

func extractTexts(t *testing.T, path string) []string {
	t.Helper()
	doc, err := document.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	pt, err := extractor.Extract(doc.Pages()[0])
	if err != nil {
		t.Fatal(err)
	}
	var texts []string
	for _, s := range pt.Spans() {
		texts = append(texts, s.Text)
	}
	return texts
}

func TestProcessFileConvertsToken(t *testing.T) {
	in, out := writeFixture(t, "BT /F1 12 Tf 100 700 Td (50) Tj ET")
	p := NewProcessor(Options{})
	if err := p.ProcessFile(context.Background(), in, out); err != nil {
		t.Fatal(err)
	}
	texts := extractTexts(t, out)
	var found bool
	for _, txt := range texts {
		if txt == "1.9685" {
			found = true
		}
		if txt == "50" {
			t.Errorf("original token still present in output")
		}
	}
	if !found {
		t.Fatalf("converted value missing from output, got %q", texts)
	}
}

func TestProcessFileGroupsAdjacentSpans(t *testing.T) {
	// "25" and ".40" drawn as separate shows with a sub-threshold gap
	// group into "25.40" and convert with precision 2.
	in, out := writeFixture(t, "BT /F1 12 Tf 100 700 Td (25) Tj (.40) Tj ET")
	rep := report.New(in, out)
	p := NewProcessor(Options{Report: rep})
	if err := p.ProcessFile(context.Background(), in, out); err != nil {
		t.Fatal(err)
	}
	if rep.Grouped != 1 {
		t.Errorf("grouped %d tokens, want 1", rep.Grouped)
	}
	if len(rep.Conversions) != 1 || rep.Conversions[0].Converted != "1.00" {
		t.Fatalf("conversions = %+v, want one 25.40 -> 1.00", rep.Conversions)
	}
	texts := extractTexts(t, out)
	var found bool
	for _, txt := range texts {
		if txt == "1.00" {
			found = true
		}
	}
	if !found {
		t.Fatalf("converted value missing, got %q", texts)
	}
}

func TestProcessFileFallbackFont(t *testing.T) {
	// F9 is not in the page resources, so reinsertion with the original
	// font name fails and the register-Helvetica retry takes over.
	in, out := writeFixture(t, "BT /F9 12 Tf 100 700 Td (50) Tj ET")
	p := NewProcessor(Options{})
	if err := p.ProcessFile(context.Background(), in, out); err != nil {
		t.Fatal(err)
	}
	doc, err := document.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	pt, err := extractor.Extract(doc.Pages()[0])
	if err != nil {
		t.Fatal(err)
	}
	spans := pt.Spans()
	var converted *extractor.Span
	for i := range spans {
		if spans[i].Text == "50" {
			t.Errorf("original token still present in output")
		}
		if spans[i].Text == "1.9685" {
			converted = &spans[i]
		}
	}
	if converted == nil {
		t.Fatal("converted value missing from output")
	}
	if converted.FontName != "Helv" || converted.BaseFont != "Helvetica" {
		t.Errorf("reinserted font = %q/%q, want Helv/Helvetica",
			converted.FontName, converted.BaseFont)
	}
	if converted.FontSize != 12 {
		t.Errorf("reinserted size = %v, want 12", converted.FontSize)
	}
}

func TestProcessFileSkipsIneligible(t *testing.T) {
	in, out := writeFixture(t, "BT /F1 12 Tf 100 700 Td (4x10) Tj 0 -20 Td (12.5.6) Tj ET")
	p := NewProcessor(Options{})
	if err := p.ProcessFile(context.Background(), in, out); err != nil {
		t.Fatal(err)
	}
	texts := extractTexts(t, out)
	joined := strings.Join(texts, " ")
	if !strings.Contains(joined, "4x10") || !strings.Contains(joined, "12.5.6") {
		t.Errorf("ineligible tokens did not survive unchanged: %q", texts)
	}
}

func TestProcessFileNonNumericUntouched(t *testing.T) {
	in, out := writeFixture(t, "BT /F1 12 Tf 100 700 Td (NOTE) Tj ET")
	p := NewProcessor(Options{})
	if err := p.ProcessFile(context.Background(), in, out); err != nil {
		t.Fatal(err)
	}
	texts := extractTexts(t, out)
	if len(texts) != 1 || texts[0] != "NOTE" {
		t.Errorf("non-numeric page changed: %q", texts)
	}
}

func TestProcessFileRuleHookSkip(t *testing.T) {
	in, out := writeFixture(t, "BT /F1 12 Tf 100 700 Td (50) Tj ET")
	rules, err := scripting.New(`function decide(token, page) { if (token === "50") return "skip"; }`)
	if err != nil {
		t.Fatal(err)
	}
	p := NewProcessor(Options{Rules: rules})
	if err := p.ProcessFile(context.Background(), in, out); err != nil {
		t.Fatal(err)
	}
	texts := extractTexts(t, out)
	if len(texts) != 1 || texts[0] != "50" {
		t.Errorf("vetoed token was converted anyway: %q", texts)
	}
}

func TestProcessFileRuleHookOverride(t *testing.T) {
	in, out := writeFixture(t, "BT /F1 12 Tf 100 700 Td (50) Tj ET")
	rules, err := scripting.New(`function decide(token, page) { if (token === "50") return "2in"; }`)
	if err != nil {
		t.Fatal(err)
	}
	p := NewProcessor(Options{Rules: rules})
	if err := p.ProcessFile(context.Background(), in, out); err != nil {
		t.Fatal(err)
	}
	texts := extractTexts(t, out)
	var found bool
	for _, txt := range texts {
		if txt == "2in" {
			found = true
		}
	}
	if !found {
		t.Errorf("override text missing from output: %q", texts)
	}
}

func TestProcessFileMissingInput(t *testing.T) {
	p := NewProcessor(Options{})
	err := p.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"), "out.pdf")
	if err == nil {
		t.Fatal("expected error for missing input file")
	}
}

func TestProcessFileCancelled(t *testing.T) {
	in, out := writeFixture(t, "BT /F1 12 Tf 100 700 Td (50) Tj ET")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewProcessor(Options{})
	if err := p.ProcessFile(ctx, in, out); err == nil {
		t.Fatal("expected context error")
	}
	if _, err := os.Stat(out); err == nil {
		t.Error("cancelled run still produced an output file")
	}
}
