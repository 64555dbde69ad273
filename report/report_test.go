package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMarkdown(t *testing.T) {
	r := New("in.pdf", "out.pdf")
	r.Pages = 2
	r.Grouped = 3
	r.AddConversion(1, "25.40", "1.00")
	r.AddSkip(2, "45°", "degree symbol")

	md := r.Markdown()
	for _, want := range []string{
		"Pages scanned: 2",
		"Numeric tokens grouped: 3",
		"Conversions applied: 1",
		"| 1 | `25.40` | `1.00` |",
		"| 2 | `45°` | degree symbol |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestWriteHTML(t *testing.T) {
	r := New("in.pdf", "out.pdf")
	r.Pages = 1
	r.AddConversion(1, "50", "1.9685")

	path := filepath.Join(t.TempDir(), "report.html")
	if err := r.WriteHTML(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	html := string(data)
	if !strings.Contains(html, "<table>") {
		t.Error("report HTML has no table")
	}
	if !strings.Contains(html, "1.9685") {
		t.Error("report HTML missing converted value")
	}
}

func TestMarkdownEscapesPipes(t *testing.T) {
	r := New("a", "b")
	r.AddSkip(1, "1|2", "odd token")
	if !strings.Contains(r.Markdown(), `1\|2`) {
		t.Error("pipe not escaped in table cell")
	}
}
