// Package extractor interprets page content streams and produces
// positioned text spans grouped into lines and blocks.
package extractor

import (
	"fmt"
	"math"
	"sort"

	"github.com/fabtools/inchify/document"
	"github.com/fabtools/inchify/fonts"
	"github.com/fabtools/inchify/geo"
	"github.com/fabtools/inchify/object"
)

// Span is one run of text shown by a single text operator, with its
// user-space bounding box and the text state it was drawn under.
type Span struct {
	Text     string
	Raw      []byte
	Rect     geo.Rect
	FontName string // resource name under /Font
	BaseFont string
	FontSize float64
	Color    geo.RGB
	OpIndex  int // index into the page's operation list
}

// Line is a horizontal run of spans sharing a baseline.
type Line struct {
	Spans []Span
	Rect  geo.Rect
}

// Block is a group of vertically adjacent lines.
type Block struct {
	Lines []Line
	Rect  geo.Rect
}

// PageText is the structured extraction result for one page.
type PageText struct {
	Page   int // one-based
	Blocks []Block
}

// Spans returns every span on the page in reading order.
func (pt *PageText) Spans() []Span {
	var out []Span
	for _, b := range pt.Blocks {
		for _, l := range b.Lines {
			out = append(out, l.Spans...)
		}
	}
	return out
}

// Lines returns every line on the page in reading order.
func (pt *PageText) Lines() []Line {
	var out []Line
	for _, b := range pt.Blocks {
		out = append(out, b.Lines...)
	}
	return out
}

// Extract interprets the page's content stream and returns its text
// structured into blocks, lines, and spans.
func Extract(page *document.Page) (*PageText, error) {
	content, err := page.Content()
	if err != nil {
		return nil, err
	}
	ops, err := ParseOps(content)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page.Number(), err)
	}
	pageFonts := PageFonts(page)
	spans := interpret(ops, pageFonts)
	return &PageText{Page: page.Number(), Blocks: assemble(spans)}, nil
}

// PageFonts loads every font resource declared on the page.
func PageFonts(page *document.Page) map[string]*fonts.Font {
	doc := page.Doc()
	fontDict := doc.ResolveDict(getOrNull(page.Resources(), "Font"))
	if fontDict == nil {
		return nil
	}
	out := make(map[string]*fonts.Font, len(fontDict.KV))
	for name, obj := range fontDict.KV {
		if d := doc.ResolveDict(obj); d != nil {
			out[name] = fonts.FromDict(doc, d)
		}
	}
	return out
}

func getOrNull(dict *object.Dict, key string) object.Object {
	if obj, ok := dict.Get(key); ok {
		return obj
	}
	return object.Null{}
}

// graphicsState tracks the subset of PDF graphics state the interpreter
// needs: the transform and the fill color text is painted with.
type graphicsState struct {
	ctm  geo.Matrix
	fill geo.RGB
}

type textState struct {
	tm, tlm     geo.Matrix
	font        *fonts.Font
	fontName    string
	size        float64
	leading     float64
	charSpacing float64
	wordSpacing float64
	horizScale  float64 // percent, 100 is unscaled
}

func interpret(ops []Op, pageFonts map[string]*fonts.Font) []Span {
	gs := graphicsState{ctm: geo.Identity(), fill: geo.Black}
	var stack []graphicsState
	ts := textState{tm: geo.Identity(), tlm: geo.Identity(), horizScale: 100}
	cmaps := make(map[*fonts.Font]*toUnicodeMap)
	var spans []Span

	for i, op := range ops {
		switch op.Operator {
		case "q":
			stack = append(stack, gs)
		case "Q":
			if n := len(stack); n > 0 {
				gs = stack[n-1]
				stack = stack[:n-1]
			}
		case "cm":
			if m, ok := matrixOperands(op.Operands); ok {
				gs.ctm = m.Multiply(gs.ctm)
			}

		case "BT":
			ts.tm = geo.Identity()
			ts.tlm = geo.Identity()
		case "ET":

		case "Tf":
			if len(op.Operands) == 2 {
				if name, ok := op.Operands[0].(object.Name); ok {
					ts.fontName = string(name)
					ts.font = pageFonts[string(name)]
				}
				ts.size = floatOperand(op.Operands[1])
			}
		case "Tc":
			if len(op.Operands) == 1 {
				ts.charSpacing = floatOperand(op.Operands[0])
			}
		case "Tw":
			if len(op.Operands) == 1 {
				ts.wordSpacing = floatOperand(op.Operands[0])
			}
		case "Tz":
			if len(op.Operands) == 1 {
				ts.horizScale = floatOperand(op.Operands[0])
			}
		case "TL":
			if len(op.Operands) == 1 {
				ts.leading = floatOperand(op.Operands[0])
			}
		case "Tm":
			if m, ok := matrixOperands(op.Operands); ok {
				ts.tlm = m
				ts.tm = m
			}
		case "Td":
			if len(op.Operands) == 2 {
				translateLine(&ts, floatOperand(op.Operands[0]), floatOperand(op.Operands[1]))
			}
		case "TD":
			if len(op.Operands) == 2 {
				ts.leading = -floatOperand(op.Operands[1])
				translateLine(&ts, floatOperand(op.Operands[0]), floatOperand(op.Operands[1]))
			}
		case "T*":
			translateLine(&ts, 0, -ts.leading)

		case "Tj":
			if len(op.Operands) == 1 {
				if s, ok := op.Operands[0].(object.String); ok {
					sp, drawn := showString(s.Data, &ts, &gs, cmaps, i)
					spans = appendSpan(spans, sp, drawn)
				}
			}
		case "'":
			if len(op.Operands) == 1 {
				translateLine(&ts, 0, -ts.leading)
				if s, ok := op.Operands[0].(object.String); ok {
					sp, drawn := showString(s.Data, &ts, &gs, cmaps, i)
					spans = appendSpan(spans, sp, drawn)
				}
			}
		case "\"":
			if len(op.Operands) == 3 {
				ts.wordSpacing = floatOperand(op.Operands[0])
				ts.charSpacing = floatOperand(op.Operands[1])
				translateLine(&ts, 0, -ts.leading)
				if s, ok := op.Operands[2].(object.String); ok {
					sp, drawn := showString(s.Data, &ts, &gs, cmaps, i)
					spans = appendSpan(spans, sp, drawn)
				}
			}
		case "TJ":
			if len(op.Operands) == 1 {
				if arr, ok := op.Operands[0].(*object.Array); ok {
					sp, drawn := showArray(arr, &ts, &gs, cmaps, i)
					spans = appendSpan(spans, sp, drawn)
				}
			}

		case "rg":
			if len(op.Operands) == 3 {
				gs.fill = geo.RGB{
					R: floatOperand(op.Operands[0]),
					G: floatOperand(op.Operands[1]),
					B: floatOperand(op.Operands[2]),
				}
			}
		case "g":
			if len(op.Operands) == 1 {
				v := floatOperand(op.Operands[0])
				gs.fill = geo.RGB{R: v, G: v, B: v}
			}
		case "k":
			if len(op.Operands) == 4 {
				gs.fill = cmykToRGB(
					floatOperand(op.Operands[0]),
					floatOperand(op.Operands[1]),
					floatOperand(op.Operands[2]),
					floatOperand(op.Operands[3]),
				)
			}
		case "sc", "scn":
			switch len(op.Operands) {
			case 1:
				v := floatOperand(op.Operands[0])
				gs.fill = geo.RGB{R: v, G: v, B: v}
			case 3:
				gs.fill = geo.RGB{
					R: floatOperand(op.Operands[0]),
					G: floatOperand(op.Operands[1]),
					B: floatOperand(op.Operands[2]),
				}
			}
		}
	}
	return spans
}

func translateLine(ts *textState, tx, ty float64) {
	ts.tlm = geo.Translate(tx, ty).Multiply(ts.tlm)
	ts.tm = ts.tlm
}

func appendSpan(spans []Span, s Span, ok bool) []Span {
	if !ok {
		return spans
	}
	return append(spans, s)
}

// showString measures and records one shown string, then advances the
// text matrix past it.
func showString(data []byte, ts *textState, gs *graphicsState, cmaps map[*fonts.Font]*toUnicodeMap, opIndex int) (Span, bool) {
	if len(data) == 0 {
		return Span{}, false
	}
	width := stringAdvance(data, ts)
	span := makeSpan(data, width, ts, gs, cmaps, opIndex)
	ts.tm = geo.Translate(width, 0).Multiply(ts.tm)
	return span, true
}

// showArray handles TJ: strings interleaved with kerning adjustments,
// recorded as a single span.
func showArray(arr *object.Array, ts *textState, gs *graphicsState, cmaps map[*fonts.Font]*toUnicodeMap, opIndex int) (Span, bool) {
	var raw []byte
	var width float64
	for _, item := range arr.Items {
		switch v := item.(type) {
		case object.String:
			raw = append(raw, v.Data...)
			width += stringAdvance(v.Data, ts)
		case object.Number:
			width -= v.Float() / 1000.0 * ts.size * ts.horizScale / 100.0
		}
	}
	if len(raw) == 0 {
		return Span{}, false
	}
	span := makeSpan(raw, width, ts, gs, cmaps, opIndex)
	ts.tm = geo.Translate(width, 0).Multiply(ts.tm)
	return span, true
}

// stringAdvance returns the text-space advance of raw string bytes under
// the current text state.
func stringAdvance(data []byte, ts *textState) float64 {
	var w float64
	for _, b := range data {
		if ts.font != nil {
			w += ts.font.Width(b) / 1000.0 * ts.size
		} else {
			w += 0.5 * ts.size
		}
		w += ts.charSpacing
		if b == ' ' {
			w += ts.wordSpacing
		}
	}
	return w * ts.horizScale / 100.0
}

func makeSpan(data []byte, width float64, ts *textState, gs *graphicsState, cmaps map[*fonts.Font]*toUnicodeMap, opIndex int) Span {
	m := ts.tm.Multiply(gs.ctm)
	rect := geo.RectFromPoints(
		m.Transform(geo.Point{X: 0, Y: 0}),
		m.Transform(geo.Point{X: width, Y: 0}),
		m.Transform(geo.Point{X: 0, Y: ts.size}),
		m.Transform(geo.Point{X: width, Y: ts.size}),
	)
	span := Span{
		Raw:      append([]byte(nil), data...),
		Text:     decodeText(data, ts.font, cmaps),
		Rect:     rect,
		FontName: ts.fontName,
		FontSize: ts.size * math.Hypot(m[2], m[3]),
		Color:    gs.fill,
		OpIndex:  opIndex,
	}
	if ts.font != nil {
		span.BaseFont = ts.font.BaseFont
	}
	return span
}

func decodeText(data []byte, font *fonts.Font, cmaps map[*fonts.Font]*toUnicodeMap) string {
	if font != nil && font.ToUnicode != nil {
		cmap, ok := cmaps[font]
		if !ok {
			cmap = parseToUnicodeCMap(font.ToUnicode)
			cmaps[font] = cmap
		}
		return cmap.decode(data)
	}
	if len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF {
		return decodeUTF16BE(data[2:])
	}
	return string(data)
}

func matrixOperands(operands []object.Object) (geo.Matrix, bool) {
	if len(operands) != 6 {
		return geo.Matrix{}, false
	}
	var m geo.Matrix
	for i := range m {
		m[i] = floatOperand(operands[i])
	}
	return m, true
}

func floatOperand(obj object.Object) float64 {
	if n, ok := obj.(object.Number); ok {
		return n.Float()
	}
	return 0
}

func cmykToRGB(c, m, y, k float64) geo.RGB {
	return geo.RGB{
		R: (1 - c) * (1 - k),
		G: (1 - m) * (1 - k),
		B: (1 - y) * (1 - k),
	}
}

// lineTolerance is the maximum baseline offset, in user-space units,
// between spans considered part of the same line.
const lineTolerance = 2.0

// assemble groups spans into baseline lines and vertically adjacent
// blocks, both in top-to-bottom reading order.
func assemble(spans []Span) []Block {
	if len(spans) == 0 {
		return nil
	}
	var lines []Line
	for _, span := range spans {
		placed := false
		for i := range lines {
			if math.Abs(lines[i].Rect.LLY-span.Rect.LLY) <= lineTolerance {
				lines[i].Spans = append(lines[i].Spans, span)
				lines[i].Rect = lines[i].Rect.Union(span.Rect)
				placed = true
				break
			}
		}
		if !placed {
			lines = append(lines, Line{Spans: []Span{span}, Rect: span.Rect})
		}
	}
	for i := range lines {
		sort.SliceStable(lines[i].Spans, func(a, b int) bool {
			return lines[i].Spans[a].Rect.LLX < lines[i].Spans[b].Rect.LLX
		})
	}
	sort.SliceStable(lines, func(a, b int) bool {
		return lines[a].Rect.URY > lines[b].Rect.URY
	})

	var blocks []Block
	for _, line := range lines {
		if n := len(blocks); n > 0 {
			prev := &blocks[n-1]
			last := prev.Lines[len(prev.Lines)-1]
			gap := last.Rect.LLY - line.Rect.URY
			if gap <= last.Rect.Height() {
				prev.Lines = append(prev.Lines, line)
				prev.Rect = prev.Rect.Union(line.Rect)
				continue
			}
		}
		blocks = append(blocks, Block{Lines: []Line{line}, Rect: line.Rect})
	}
	return blocks
}
