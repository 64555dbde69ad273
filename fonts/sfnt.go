package fonts

import (
	"math"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// sfntMetrics measures glyph advances from an embedded TrueType/OpenType
// program, normalized to 1/1000 em.
type sfntMetrics struct {
	font       *sfnt.Font
	buf        sfnt.Buffer
	ppem       fixed.Int26_6
	unitsPerEm sfnt.Units
}

func parseSFNT(data []byte) (*sfntMetrics, error) {
	font, err := sfnt.Parse(data)
	if err != nil {
		return nil, err
	}
	upem := font.UnitsPerEm()
	if upem == 0 {
		upem = 1000
	}
	return &sfntMetrics{
		font:       font,
		ppem:       fixed.Int26_6(int32(upem) << 6),
		unitsPerEm: upem,
	}, nil
}

func (m *sfntMetrics) advance(r rune) (float64, bool) {
	gid, err := m.font.GlyphIndex(&m.buf, r)
	if err != nil || gid == 0 {
		return 0, false
	}
	adv, err := m.font.GlyphAdvance(&m.buf, gid, m.ppem, xfont.HintingNone)
	if err != nil {
		return 0, false
	}
	return math.Round(float64(adv) * 1000.0 / (64.0 * float64(m.unitsPerEm))), true
}
