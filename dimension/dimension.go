// Package dimension implements the metric callout pipeline: grouping
// adjacent numeric spans into candidate tokens, classifying them, and
// converting millimeter values to inches.
package dimension

import (
	"regexp"
	"strings"

	"github.com/fabtools/inchify/extractor"
	"github.com/fabtools/inchify/geo"
)

// DefaultGapThreshold is the maximum horizontal gap, in page units,
// between numeric spans merged into one token.
const DefaultGapThreshold = 3.0

var numericText = regexp.MustCompile(`^[0-9.+-]+$`)

// candidate matches a complete numeric value with an optional tolerance
// suffix, e.g. "25.4", "-5", "10+0.5".
var candidate = regexp.MustCompile(`^[+-]?[0-9]*\.?[0-9]+(?:[+-][0-9]*\.?[0-9]+)?$`)

// IsNumericText reports whether the trimmed text consists only of
// digits, '.', '+', and '-'. The character class is exact; widening it
// changes grouping behavior.
func IsNumericText(s string) bool {
	return numericText.MatchString(strings.TrimSpace(s))
}

// IsCandidate reports whether a grouped token looks like one complete
// numeric value, optionally followed by one signed tolerance.
func IsCandidate(token string) bool {
	return candidate.MatchString(token)
}

// Group is a maximal run of adjacent numeric spans treated as one
// dimension token. Style comes from the run's first span.
type Group struct {
	Text     string
	Rect     geo.Rect
	FontName string
	BaseFont string
	Size     float64
	Color    geo.RGB
}

// GroupSpans merges horizontally adjacent purely-numeric spans of one
// line into candidate tokens. A non-numeric span closes the open group,
// so numeric spans on either side of it never merge. A gap of
// gapThreshold or more also starts a new group.
func GroupSpans(spans []extractor.Span, gapThreshold float64) []Group {
	var groups []Group
	open := -1
	for _, span := range spans {
		text := strings.TrimSpace(span.Text)
		if text == "" {
			continue
		}
		if !IsNumericText(text) {
			open = -1
			continue
		}
		if open >= 0 {
			g := &groups[open]
			if span.Rect.LLX-g.Rect.URX < gapThreshold {
				g.Text += text
				g.Rect.URX = span.Rect.URX
				if span.Rect.LLY < g.Rect.LLY {
					g.Rect.LLY = span.Rect.LLY
				}
				continue
			}
		}
		groups = append(groups, Group{
			Text:     text,
			Rect:     span.Rect,
			FontName: span.FontName,
			BaseFont: span.BaseFont,
			Size:     span.FontSize,
			Color:    span.Color,
		})
		open = len(groups) - 1
	}
	return groups
}

// Replacement records one substitution to apply: where, what to draw,
// and with which style.
type Replacement struct {
	Rect     geo.Rect
	Text     string // converted token
	Original string
	FontName string
	Size     float64
	Color    geo.RGB
}
