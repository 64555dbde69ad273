// Package filters decodes and encodes PDF stream filters. Only the filters
// that appear on text content streams and object streams are implemented:
// FlateDecode (with PNG predictors), ASCIIHexDecode, ASCII85Decode,
// RunLengthDecode, and LZWDecode.
package filters

import (
	"bytes"
	"compress/lzw"
	"compress/zlib"
	stdascii85 "encoding/ascii85"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/fabtools/inchify/object"
)

type Decoder interface {
	Name() string
	Decode(input []byte, params *object.Dict) ([]byte, error)
}

// Pipeline applies a filter chain in order.
type Pipeline struct {
	decoders map[string]Decoder
}

// NewPipeline returns a pipeline with all supported decoders registered.
func NewPipeline() *Pipeline {
	p := &Pipeline{decoders: make(map[string]Decoder)}
	for _, d := range []Decoder{flateDecoder{}, asciiHexDecoder{}, ascii85Decoder{}, runLengthDecoder{}, lzwDecoder{}} {
		p.decoders[d.Name()] = d
	}
	return p
}

// Decode runs input through each named filter in sequence.
func (p *Pipeline) Decode(input []byte, names []string, params []*object.Dict) ([]byte, error) {
	data := input
	for i, name := range names {
		dec, ok := p.decoders[name]
		if !ok {
			return nil, fmt.Errorf("unsupported filter %q", name)
		}
		var param *object.Dict
		if i < len(params) {
			param = params[i]
		}
		out, err := dec.Decode(data, param)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		data = out
	}
	return data, nil
}

// DecodeStream decodes a raw stream using its dictionary's Filter and
// DecodeParms entries.
func (p *Pipeline) DecodeStream(s *object.Stream) ([]byte, error) {
	names, params := StreamFilters(s.Dict)
	if len(names) == 0 {
		return s.Raw, nil
	}
	return p.Decode(s.Raw, names, params)
}

// StreamFilters reads Filter and DecodeParms from a stream dictionary.
func StreamFilters(dict *object.Dict) ([]string, []*object.Dict) {
	var names []string
	var params []*object.Dict

	filterObj, ok := dict.Get("Filter")
	if !ok {
		return names, params
	}
	switch f := filterObj.(type) {
	case object.Name:
		names = append(names, string(f))
	case *object.Array:
		for _, item := range f.Items {
			if n, ok := item.(object.Name); ok {
				names = append(names, string(n))
			}
		}
	}
	if len(names) == 0 {
		return names, params
	}
	if pObj, ok := dict.Get("DecodeParms"); ok {
		switch pv := pObj.(type) {
		case *object.Dict:
			params = append(params, pv)
		case *object.Array:
			for _, item := range pv.Items {
				if d, ok := item.(*object.Dict); ok {
					params = append(params, d)
				} else {
					params = append(params, nil)
				}
			}
		}
	}
	return names, params
}

// FlateEncode compresses data for writing modified content streams.
func FlateEncode(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write(data)
	zw.Close()
	return buf.Bytes()
}

type flateDecoder struct{}

func (flateDecoder) Name() string { return "FlateDecode" }

func (flateDecoder) Decode(in []byte, params *object.Dict) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(in))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	var out bytes.Buffer
	if _, err := io.Copy(&out, zr); err != nil {
		return nil, err
	}
	return applyPredictor(out.Bytes(), params)
}

type lzwDecoder struct{}

func (lzwDecoder) Name() string { return "LZWDecode" }

func (lzwDecoder) Decode(in []byte, params *object.Dict) ([]byte, error) {
	r := lzw.NewReader(bytes.NewReader(in), lzw.MSB, 8)
	defer r.Close()
	var out bytes.Buffer
	if _, err := io.Copy(&out, r); err != nil {
		return nil, err
	}
	return applyPredictor(out.Bytes(), params)
}

type ascii85Decoder struct{}

func (ascii85Decoder) Name() string { return "ASCII85Decode" }

func (ascii85Decoder) Decode(in []byte, _ *object.Dict) ([]byte, error) {
	trimmed := bytes.TrimSpace(in)
	if bytes.HasPrefix(trimmed, []byte("<~")) {
		trimmed = trimmed[2:]
	}
	if i := bytes.Index(trimmed, []byte("~>")); i >= 0 {
		trimmed = trimmed[:i]
	}
	out := make([]byte, len(trimmed)+4)
	n, _, err := stdascii85.Decode(out, trimmed, true)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

type asciiHexDecoder struct{}

func (asciiHexDecoder) Name() string { return "ASCIIHexDecode" }

func (asciiHexDecoder) Decode(in []byte, _ *object.Dict) ([]byte, error) {
	trimmed := bytes.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', 0:
			return -1
		}
		return r
	}, in)
	if i := bytes.IndexByte(trimmed, '>'); i >= 0 {
		trimmed = trimmed[:i]
	}
	if len(trimmed)%2 == 1 {
		trimmed = append(trimmed, '0')
	}
	out := make([]byte, hex.DecodedLen(len(trimmed)))
	n, err := hex.Decode(out, trimmed)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

type runLengthDecoder struct{}

func (runLengthDecoder) Name() string { return "RunLengthDecode" }

func (runLengthDecoder) Decode(in []byte, _ *object.Dict) ([]byte, error) {
	var out bytes.Buffer
	i := 0
	for i < len(in) {
		n := int(in[i])
		i++
		switch {
		case n == 128:
			return out.Bytes(), nil
		case n < 128:
			end := i + n + 1
			if end > len(in) {
				return nil, errors.New("run length literal overruns input")
			}
			out.Write(in[i:end])
			i = end
		default:
			if i >= len(in) {
				return nil, errors.New("run length repeat overruns input")
			}
			for j := 0; j < 257-n; j++ {
				out.WriteByte(in[i])
			}
			i++
		}
	}
	return out.Bytes(), nil
}

// applyPredictor reverses PNG predictors (Predictor >= 10). TIFF predictor
// 2 is not seen on content or object streams and is rejected.
func applyPredictor(data []byte, params *object.Dict) ([]byte, error) {
	if params == nil {
		return data, nil
	}
	predictor, ok := params.Int("Predictor")
	if !ok || predictor <= 1 {
		return data, nil
	}
	if predictor == 2 {
		return nil, errors.New("TIFF predictor not supported")
	}
	columns, ok := params.Int("Columns")
	if !ok || columns <= 0 {
		columns = 1
	}
	colors, ok := params.Int("Colors")
	if !ok || colors <= 0 {
		colors = 1
	}
	bpc, ok := params.Int("BitsPerComponent")
	if !ok || bpc <= 0 {
		bpc = 8
	}
	bpp := int((colors*bpc + 7) / 8)
	rowLen := int((columns*colors*bpc+7)/8) + 1 // +1 for the filter byte
	if len(data)%rowLen != 0 {
		return nil, fmt.Errorf("predictor row size mismatch: %d %% %d", len(data), rowLen)
	}

	var out bytes.Buffer
	prev := make([]byte, rowLen-1)
	row := make([]byte, rowLen-1)
	for off := 0; off < len(data); off += rowLen {
		ft := data[off]
		copy(row, data[off+1:off+rowLen])
		switch ft {
		case 0: // None
		case 1: // Sub
			for i := bpp; i < len(row); i++ {
				row[i] += row[i-bpp]
			}
		case 2: // Up
			for i := range row {
				row[i] += prev[i]
			}
		case 3: // Average
			for i := range row {
				var left byte
				if i >= bpp {
					left = row[i-bpp]
				}
				row[i] += byte((int(left) + int(prev[i])) / 2)
			}
		case 4: // Paeth
			for i := range row {
				var left, upLeft byte
				if i >= bpp {
					left = row[i-bpp]
					upLeft = prev[i-bpp]
				}
				row[i] += paeth(left, prev[i], upLeft)
			}
		default:
			return nil, fmt.Errorf("unknown PNG filter type %d", ft)
		}
		out.Write(row)
		copy(prev, row)
	}
	return out.Bytes(), nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
