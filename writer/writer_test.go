package writer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fabtools/inchify/object"
)

func TestWriteSmallRealAvoidsExponent(t *testing.T) {
	gstate := object.NewDict()
	gstate.Set("Type", object.Name("ExtGState"))
	gstate.Set("LW", object.Real(0.00001))
	objects := map[object.Ref]object.Object{
		{Num: 1}: gstate,
	}
	var buf bytes.Buffer
	if err := Write(&buf, objects, object.NewDict(), "1.7"); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "e-") || strings.Contains(out, "E-") {
		t.Fatalf("exponent notation in output: %q", out)
	}
	if !strings.Contains(out, "/LW 0.00001 ") {
		t.Errorf("missing plain-decimal real in %q", out)
	}
}

func TestWriteXrefOffsetsAndTrailer(t *testing.T) {
	objects := map[object.Ref]object.Object{
		{Num: 1}: object.Integer(7),
		{Num: 3}: object.Name("Gap"),
	}
	trailer := object.NewDict()
	trailer.Set("Root", object.Reference{R: object.Ref{Num: 1}})
	trailer.Set("Prev", object.Integer(999))
	var buf bytes.Buffer
	if err := Write(&buf, objects, trailer, ""); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "%PDF-1.7\n") {
		t.Errorf("missing default version header: %q", out[:16])
	}
	// Object 2 is absent, so its xref entry must be a free slot.
	if !strings.Contains(out, "xref\n0 4\n") {
		t.Errorf("xref subsection header wrong in %q", out)
	}
	if strings.Count(out, "0000000000 65535 f \n") != 2 {
		t.Errorf("want free entries for object 0 and the gap: %q", out)
	}
	if strings.Contains(out, "/Prev") {
		t.Errorf("stale Prev survived trailer rewrite: %q", out)
	}
	if !strings.Contains(out, "/Size 4") {
		t.Errorf("trailer Size not regenerated: %q", out)
	}
}
