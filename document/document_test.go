package document

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fabtools/inchify/internal/pdftest"
	"github.com/fabtools/inchify/object"
)

func TestParseSinglePage(t *testing.T) {
	data := pdftest.Single("BT /F1 12 Tf 100 700 Td (50.0) Tj ET")
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	pages := doc.Pages()
	if len(pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(pages))
	}
	p := pages[0]
	if p.Number() != 1 {
		t.Errorf("page number = %d", p.Number())
	}
	if p.MediaBox.Width() != 612 || p.MediaBox.Height() != 792 {
		t.Errorf("media box = %v", p.MediaBox)
	}
	content, err := p.Content()
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	if !strings.Contains(string(content), "(50.0) Tj") {
		t.Errorf("content = %q", content)
	}
	fonts, ok := p.Resources().Get("Font")
	if !ok {
		t.Fatal("page has no font resources")
	}
	fontDict := doc.ResolveDict(fonts)
	if fontDict == nil {
		t.Fatal("font resource is not a dictionary")
	}
	f1 := doc.ResolveDict(mustGet(t, fontDict, "F1"))
	if base, _ := f1.Name("BaseFont"); base != "Helvetica" {
		t.Errorf("base font = %q", base)
	}
}

func TestParseMultiPageOrder(t *testing.T) {
	data := pdftest.Build([]pdftest.PageSpec{
		{Content: "BT (one) Tj ET"},
		{Content: "BT (two) Tj ET"},
		{Content: "BT (three) Tj ET"},
	})
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	pages := doc.Pages()
	if len(pages) != 3 {
		t.Fatalf("pages = %d, want 3", len(pages))
	}
	for i, want := range []string{"one", "two", "three"} {
		content, err := pages[i].Content()
		if err != nil {
			t.Fatalf("page %d content: %v", i, err)
		}
		if !strings.Contains(string(content), want) {
			t.Errorf("page %d content = %q, want substring %q", i, content, want)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	data := pdftest.Single("BT /F1 10 Tf (25.4) Tj ET")
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	doc.Pages()[0].SetContent([]byte("BT /F1 10 Tf (1.0000) Tj ET"))

	doc.commitPageContent()
	out, err := serialize(doc)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	doc2, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	content, err := doc2.Pages()[0].Content()
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	if !strings.Contains(string(content), "(1.0000) Tj") {
		t.Errorf("rewritten content = %q", content)
	}
	if strings.Contains(string(content), "(25.4)") {
		t.Errorf("original content survived rewrite: %q", content)
	}
}

func TestRepairScanFallback(t *testing.T) {
	data := pdftest.Single("BT (x) Tj ET")
	// Corrupt the startxref offset so classic parsing fails.
	broken := bytes.Replace(data, []byte("startxref"), []byte("startxrEF"), 1)
	doc, err := Parse(broken)
	if err != nil {
		t.Fatalf("parse with repair: %v", err)
	}
	if len(doc.Pages()) != 1 {
		t.Fatalf("pages = %d, want 1", len(doc.Pages()))
	}
}

func TestParseEmptyInput(t *testing.T) {
	if _, err := Parse(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestResolveChain(t *testing.T) {
	doc := &Document{Objects: map[object.Ref]object.Object{
		{Num: 1}: object.Reference{R: object.Ref{Num: 2}},
		{Num: 2}: object.Integer(7),
	}}
	got := doc.Resolve(object.Reference{R: object.Ref{Num: 1}})
	if n, ok := got.(object.Number); !ok || n.Int() != 7 {
		t.Fatalf("resolve = %#v", got)
	}
	if _, ok := doc.Resolve(object.Reference{R: object.Ref{Num: 9}}).(object.Null); !ok {
		t.Fatal("missing object should resolve to Null")
	}
}

func mustGet(t *testing.T, dict *object.Dict, key string) object.Object {
	t.Helper()
	obj, ok := dict.Get(key)
	if !ok {
		t.Fatalf("missing key %q", key)
	}
	return obj
}
