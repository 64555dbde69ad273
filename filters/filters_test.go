package filters

import (
	"bytes"
	"testing"

	"github.com/fabtools/inchify/object"
)

func TestFlateRoundTrip(t *testing.T) {
	plain := []byte("BT /F1 12 Tf 100 700 Td (50.0) Tj ET")
	encoded := FlateEncode(plain)
	p := NewPipeline()
	decoded, err := p.Decode(encoded, []string{"FlateDecode"}, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(decoded, plain) {
		t.Fatalf("round trip = %q, want %q", decoded, plain)
	}
}

func TestASCIIHexDecode(t *testing.T) {
	p := NewPipeline()
	out, err := p.Decode([]byte("48 65 6C 6C 6F>"), []string{"ASCIIHexDecode"}, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(out) != "Hello" {
		t.Fatalf("got %q", out)
	}
}

func TestRunLengthDecode(t *testing.T) {
	// 2 literal bytes "ab", then "c" repeated 4 times, then EOD.
	in := []byte{1, 'a', 'b', 253, 'c', 128}
	p := NewPipeline()
	out, err := p.Decode(in, []string{"RunLengthDecode"}, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(out) != "abcccc" {
		t.Fatalf("got %q", out)
	}
}

func TestDecodeStreamFilterChain(t *testing.T) {
	dict := object.NewDict()
	dict.Set("Filter", object.Name("FlateDecode"))
	s := &object.Stream{Dict: dict, Raw: FlateEncode([]byte("payload"))}
	p := NewPipeline()
	out, err := p.DecodeStream(s)
	if err != nil {
		t.Fatalf("decode stream: %v", err)
	}
	if string(out) != "payload" {
		t.Fatalf("got %q", out)
	}
}

func TestPredictorUp(t *testing.T) {
	// Two rows of three bytes with the Up filter: second row stores deltas.
	raw := []byte{
		2, 10, 20, 30,
		2, 1, 1, 1,
	}
	params := object.NewDict()
	params.Set("Predictor", object.Integer(12))
	params.Set("Columns", object.Integer(3))
	out, err := applyPredictor(raw, params)
	if err != nil {
		t.Fatalf("predictor: %v", err)
	}
	want := []byte{10, 20, 30, 11, 21, 31}
	if !bytes.Equal(out, want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

func TestUnsupportedFilter(t *testing.T) {
	p := NewPipeline()
	if _, err := p.Decode([]byte("x"), []string{"JBIG2Decode"}, nil); err == nil {
		t.Fatal("expected error for unsupported filter")
	}
}
