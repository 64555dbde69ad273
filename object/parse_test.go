package object

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fabtools/inchify/scanner"
)

func parseOne(t *testing.T, src string) Object {
	t.Helper()
	obj, err := Parse(NewLexer(scanner.New([]byte(src))))
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return obj
}

func TestParseDict(t *testing.T) {
	obj := parseOne(t, "<< /Type /Page /Parent 3 0 R /MediaBox [0 0 612 792] /Count 2 >>")
	dict, ok := obj.(*Dict)
	if !ok {
		t.Fatalf("got %T, want *Dict", obj)
	}
	if name, _ := dict.Name("Type"); name != "Page" {
		t.Errorf("Type = %q", name)
	}
	parent, _ := dict.Get("Parent")
	if diff := cmp.Diff(Reference{R: Ref{Num: 3, Gen: 0}}, parent); diff != "" {
		t.Errorf("Parent mismatch (-want +got):\n%s", diff)
	}
	if count, _ := dict.Int("Count"); count != 2 {
		t.Errorf("Count = %d", count)
	}
	mb, _ := dict.Get("MediaBox")
	arr, ok := mb.(*Array)
	if !ok || arr.Len() != 4 {
		t.Fatalf("MediaBox = %#v", mb)
	}
}

func TestParseNestedArray(t *testing.T) {
	obj := parseOne(t, "[1 2 [3 /Four (five)] 6.5]")
	arr := obj.(*Array)
	if arr.Len() != 4 {
		t.Fatalf("len = %d", arr.Len())
	}
	inner := arr.Items[2].(*Array)
	if inner.Len() != 3 {
		t.Fatalf("inner len = %d", inner.Len())
	}
	if string(inner.Items[1].(Name)) != "Four" {
		t.Errorf("inner name = %v", inner.Items[1])
	}
	if n := arr.Items[3].(Number); n.IsInt || n.Float() != 6.5 {
		t.Errorf("real = %+v", n)
	}
}

func TestParseReferenceBacktrack(t *testing.T) {
	// Two integers not followed by R must stay two integers.
	obj := parseOne(t, "[10 20 30]")
	arr := obj.(*Array)
	if arr.Len() != 3 {
		t.Fatalf("len = %d, want 3", arr.Len())
	}
	for i, want := range []int64{10, 20, 30} {
		if got := arr.Items[i].(Number).Int(); got != want {
			t.Errorf("item %d = %d, want %d", i, got, want)
		}
	}
}

func TestParseScalars(t *testing.T) {
	cases := []struct {
		src  string
		want Object
	}{
		{"true", Bool(true)},
		{"false", Bool(false)},
		{"null", Null{}},
		{"/Helvetica", Name("Helvetica")},
		{"-42", Integer(-42)},
	}
	for _, tc := range cases {
		got := parseOne(t, tc.src)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("%q mismatch (-want +got):\n%s", tc.src, diff)
		}
	}
}
