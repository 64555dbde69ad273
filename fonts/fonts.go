// Package fonts provides glyph width metrics for text measurement. Widths
// come from the font dictionary's /Widths array when present, from the
// embedded TrueType program via x/image/font/sfnt otherwise, and from
// built-in core font tables as a last resort.
package fonts

import (
	"github.com/fabtools/inchify/object"
)

// Resolver is the slice of the document API the font loader needs.
type Resolver interface {
	Resolve(obj object.Object) object.Object
	DecodedStream(s *object.Stream) ([]byte, error)
}

// Font carries the metrics and decoding data for one page font resource.
type Font struct {
	BaseFont  string
	Subtype   string
	ToUnicode []byte // raw ToUnicode CMap stream, nil when absent

	firstChar    int
	widths       []float64 // indexed from firstChar, 1/1000 em units
	builtin      []float64 // 95-entry table for codes 32..126
	fixedWidth   float64   // monospaced fonts (Courier family)
	defaultWidth float64
	sfnt         *sfntMetrics
}

// FromDict builds a Font from a font resource dictionary.
func FromDict(r Resolver, dict *object.Dict) *Font {
	f := &Font{defaultWidth: 500}
	f.BaseFont, _ = dict.Name("BaseFont")
	f.Subtype, _ = dict.Name("Subtype")

	if fc, ok := dict.Int("FirstChar"); ok {
		f.firstChar = int(fc)
	}
	if wObj, ok := dict.Get("Widths"); ok {
		if arr, ok := r.Resolve(wObj).(*object.Array); ok {
			f.widths = make([]float64, 0, arr.Len())
			for _, item := range arr.Items {
				if n, ok := r.Resolve(item).(object.Number); ok {
					f.widths = append(f.widths, n.Float())
				} else {
					f.widths = append(f.widths, 0)
				}
			}
		}
	}
	if tuObj, ok := dict.Get("ToUnicode"); ok {
		if s, ok := r.Resolve(tuObj).(*object.Stream); ok {
			if data, err := r.DecodedStream(s); err == nil {
				f.ToUnicode = data
			}
		}
	}
	if desc := resolveDict(r, dict, "FontDescriptor"); desc != nil {
		if ffObj, ok := desc.Get("FontFile2"); ok {
			if s, ok := r.Resolve(ffObj).(*object.Stream); ok {
				if data, err := r.DecodedStream(s); err == nil {
					f.sfnt, _ = parseSFNT(data)
				}
			}
		}
	}
	applyBuiltin(f)
	return f
}

// Builtin returns the metrics for a standard core font by base name.
func Builtin(baseFont string) *Font {
	f := &Font{BaseFont: baseFont, Subtype: "Type1", defaultWidth: 500}
	applyBuiltin(f)
	return f
}

// Width returns the advance of a character code in 1/1000 em units.
func (f *Font) Width(code byte) float64 {
	idx := int(code) - f.firstChar
	if idx >= 0 && idx < len(f.widths) && f.widths[idx] > 0 {
		return f.widths[idx]
	}
	if f.fixedWidth > 0 {
		return f.fixedWidth
	}
	if f.sfnt != nil {
		if w, ok := f.sfnt.advance(rune(code)); ok {
			return w
		}
	}
	if f.builtin != nil && code >= 32 && code <= 126 {
		return f.builtin[code-32]
	}
	return f.defaultWidth
}

// TextWidth returns the rendered width of raw string bytes at the given
// font size, in text space units.
func (f *Font) TextWidth(data []byte, size float64) float64 {
	var total float64
	for _, b := range data {
		total += f.Width(b)
	}
	return total / 1000.0 * size
}

func resolveDict(r Resolver, dict *object.Dict, key string) *object.Dict {
	obj, ok := dict.Get(key)
	if !ok {
		return nil
	}
	d, _ := r.Resolve(obj).(*object.Dict)
	return d
}
