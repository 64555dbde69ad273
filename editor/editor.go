// Package editor mutates page content: rectangle redaction and text
// insertion, both staged on the page and written out on document save.
package editor

import (
	"fmt"
	"unicode"

	"github.com/fabtools/inchify/document"
	"github.com/fabtools/inchify/extractor"
	"github.com/fabtools/inchify/fonts"
	"github.com/fabtools/inchify/geo"
	"github.com/fabtools/inchify/object"
)

// FallbackFontName is the resource name registered for the built-in
// fallback font when a page's own font cannot render inserted text.
const FallbackFontName = "Helv"

// FallbackBaseFont is the base font behind FallbackFontName.
const FallbackBaseFont = "Helvetica"

// FontError reports that text could not be inserted with the requested
// font, after the fallback was also tried.
type FontError struct {
	Page     int
	FontName string
	Reason   string
}

func (e *FontError) Error() string {
	return fmt.Sprintf("page %d: font %q cannot render insertion: %s", e.Page, e.FontName, e.Reason)
}

// Redactions collects marked rectangles on one page. Marks accumulate
// with Add and take effect only on Commit, so a scan pass can mark every
// hit before the content stream is rewritten once.
type Redactions struct {
	page  *document.Page
	rects []geo.Rect
	fill  geo.RGB
}

// NewRedactions returns an empty redaction set with a white fill.
func NewRedactions(page *document.Page) *Redactions {
	return &Redactions{page: page, fill: geo.White}
}

// Add marks a rectangle for redaction.
func (r *Redactions) Add(rect geo.Rect) { r.rects = append(r.rects, rect) }

// Count returns the number of marked rectangles.
func (r *Redactions) Count() int { return len(r.rects) }

// Commit removes every text-showing operation whose bounding box
// intersects a marked rectangle and paints the rectangles with the fill
// color. No-op when nothing is marked.
func (r *Redactions) Commit() error {
	if len(r.rects) == 0 {
		return nil
	}
	content, err := r.page.Content()
	if err != nil {
		return err
	}
	ops, err := extractor.ParseOps(content)
	if err != nil {
		return fmt.Errorf("page %d: %w", r.page.Number(), err)
	}
	pt, err := extractor.Extract(r.page)
	if err != nil {
		return err
	}
	drop := make(map[int]bool)
	for _, span := range pt.Spans() {
		for _, rect := range r.rects {
			if span.Rect.Intersects(rect) {
				drop[span.OpIndex] = true
				break
			}
		}
	}
	kept := ops[:0:0]
	for i, op := range ops {
		if drop[i] {
			continue
		}
		kept = append(kept, op)
	}
	kept = append(kept, fillRectOps(r.rects, r.fill)...)
	r.page.SetContent(extractor.WriteOps(kept))
	r.rects = nil
	return nil
}

func fillRectOps(rects []geo.Rect, fill geo.RGB) []extractor.Op {
	ops := []extractor.Op{
		{Operator: "q"},
		{Operator: "rg", Operands: []object.Object{
			object.Real(fill.R), object.Real(fill.G), object.Real(fill.B),
		}},
	}
	for _, rect := range rects {
		ops = append(ops, extractor.Op{Operator: "re", Operands: []object.Object{
			object.Real(rect.LLX), object.Real(rect.LLY),
			object.Real(rect.Width()), object.Real(rect.Height()),
		}})
	}
	ops = append(ops, extractor.Op{Operator: "f"}, extractor.Op{Operator: "Q"})
	return ops
}

// TextOptions selects the font, size, and fill color for InsertTextbox.
// Font is a resource name under the page's /Font dictionary.
type TextOptions struct {
	Font  string
	Size  float64
	Color geo.RGB
}

// InsertTextbox draws text left-aligned at the top of rect on top of
// existing content, at the requested size even when the text is wider
// than the box. It fails when the font resource is missing or the text
// is not renderable with a simple byte encoding.
func InsertTextbox(page *document.Page, rect geo.Rect, text string, opts TextOptions) error {
	if opts.Size <= 0 {
		return fmt.Errorf("page %d: non-positive font size %v", page.Number(), opts.Size)
	}
	if _, err := resolveFont(page, opts.Font); err != nil {
		return err
	}
	for _, r := range text {
		if r > unicode.MaxASCII {
			return fmt.Errorf("page %d: font %q: text %q is not byte-encodable", page.Number(), opts.Font, text)
		}
	}

	content, err := page.Content()
	if err != nil {
		return err
	}
	baseline := rect.URY - opts.Size
	if baseline < rect.LLY {
		baseline = rect.LLY
	}
	ops := []extractor.Op{
		{Operator: "q"},
		{Operator: "BT"},
		{Operator: "rg", Operands: []object.Object{
			object.Real(opts.Color.R), object.Real(opts.Color.G), object.Real(opts.Color.B),
		}},
		{Operator: "Tf", Operands: []object.Object{
			object.Name(opts.Font), object.Real(opts.Size),
		}},
		{Operator: "Td", Operands: []object.Object{
			object.Real(rect.LLX), object.Real(baseline),
		}},
		{Operator: "Tj", Operands: []object.Object{
			object.String{Data: []byte(text)},
		}},
		{Operator: "ET"},
		{Operator: "Q"},
	}
	page.SetContent(append(content, extractor.WriteOps(ops)...))
	return nil
}

// resolveFont loads metrics for a page font resource.
func resolveFont(page *document.Page, name string) (*fonts.Font, error) {
	if name == "" {
		return nil, fmt.Errorf("page %d: empty font name", page.Number())
	}
	pageFonts := extractor.PageFonts(page)
	if f, ok := pageFonts[name]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("page %d: font resource %q not found", page.Number(), name)
}

// EnsureFallbackFont registers the fallback font on the page if no
// resource with that name exists yet.
func EnsureFallbackFont(page *document.Page) {
	res := page.Resources()
	if res == nil {
		res = object.NewDict()
		page.SetResources(res)
	}
	doc := page.Doc()
	fontDict := doc.ResolveDict(valueOrNull(res, "Font"))
	switch {
	case fontDict == nil:
		fontDict = object.NewDict()
		res.Set("Font", fontDict)
	case !isDirectDict(res, "Font"):
		// Shared via reference: take a private copy before adding an entry.
		clone := object.NewDict()
		for k, v := range fontDict.KV {
			clone.Set(k, v)
		}
		fontDict = clone
		res.Set("Font", fontDict)
	}
	if _, ok := fontDict.Get(FallbackFontName); ok {
		return
	}
	helv := object.NewDict()
	helv.Set("Type", object.Name("Font"))
	helv.Set("Subtype", object.Name("Type1"))
	helv.Set("BaseFont", object.Name(FallbackBaseFont))
	ref := doc.AddObject(helv)
	fontDict.Set(FallbackFontName, object.Reference{R: ref})
}

func isDirectDict(dict *object.Dict, key string) bool {
	obj, ok := dict.Get(key)
	if !ok {
		return false
	}
	_, direct := obj.(*object.Dict)
	return direct
}

func valueOrNull(dict *object.Dict, key string) object.Object {
	if obj, ok := dict.Get(key); ok {
		return obj
	}
	return object.Null{}
}
