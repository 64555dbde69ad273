package dimension

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fabtools/inchify/extractor"
	"github.com/fabtools/inchify/geo"
)

func span(text string, llx, urx float64) extractor.Span {
	return extractor.Span{
		Text:     text,
		Rect:     geo.Rect{LLX: llx, LLY: 100, URX: urx, URY: 112},
		FontName: "F1",
		BaseFont: "Helvetica",
		FontSize: 12,
		Color:    geo.Black,
	}
}

func TestGroupSpansMergesAdjacent(t *testing.T) {
	spans := []extractor.Span{
		span("25", 10, 22),
		span(".40", 23, 38), // gap 1 < 3
	}
	got := GroupSpans(spans, DefaultGapThreshold)
	want := []Group{{
		Text:     "25.40",
		Rect:     geo.Rect{LLX: 10, LLY: 100, URX: 38, URY: 112},
		FontName: "F1",
		BaseFont: "Helvetica",
		Size:     12,
		Color:    geo.Black,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupSpansGapSplits(t *testing.T) {
	spans := []extractor.Span{
		span("25", 10, 22),
		span("40", 26, 38), // gap 4 >= 3
	}
	got := GroupSpans(spans, DefaultGapThreshold)
	if len(got) != 2 {
		t.Fatalf("got %d groups, want 2", len(got))
	}
	if got[0].Text != "25" || got[1].Text != "40" {
		t.Errorf("groups = %q, %q; want 25, 40", got[0].Text, got[1].Text)
	}
}

func TestGroupSpansNonNumericBreaksRun(t *testing.T) {
	spans := []extractor.Span{
		span("25", 10, 22),
		span("mm", 22.5, 35),
		span("40", 35.5, 47), // close to "25"? irrelevant, run was broken
	}
	got := GroupSpans(spans, DefaultGapThreshold)
	if len(got) != 2 {
		t.Fatalf("got %d groups, want 2", len(got))
	}
	if got[0].Text != "25" || got[1].Text != "40" {
		t.Errorf("groups = %q, %q; want 25, 40", got[0].Text, got[1].Text)
	}
}

func TestGroupSpansSkipsBlank(t *testing.T) {
	spans := []extractor.Span{
		span("25", 10, 22),
		span("  ", 22.5, 23),
		span(".5", 23.5, 30),
	}
	got := GroupSpans(spans, DefaultGapThreshold)
	if len(got) != 1 {
		t.Fatalf("got %d groups, want 1", len(got))
	}
	if got[0].Text != "25.5" {
		t.Errorf("group text = %q, want %q", got[0].Text, "25.5")
	}
}

func TestGroupSpansStyleFromFirst(t *testing.T) {
	first := span("10", 10, 20)
	second := span("+0.5", 21, 35)
	second.FontName = "F2"
	second.FontSize = 8
	got := GroupSpans([]extractor.Span{first, second}, DefaultGapThreshold)
	if len(got) != 1 {
		t.Fatalf("got %d groups, want 1", len(got))
	}
	if got[0].FontName != "F1" || got[0].Size != 12 {
		t.Errorf("style = %q/%v, want first span's F1/12", got[0].FontName, got[0].Size)
	}
}

func TestIsNumericText(t *testing.T) {
	for _, s := range []string{"25.4", "+-..", " 10 ", "-5"} {
		if !IsNumericText(s) {
			t.Errorf("IsNumericText(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "4x10", "45°", "a1", "1 2"} {
		if IsNumericText(s) {
			t.Errorf("IsNumericText(%q) = true, want false", s)
		}
	}
}
