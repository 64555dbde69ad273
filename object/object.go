// Package object defines the raw PDF object model shared by the document
// loader, the content editor, and the writer.
package object

import "fmt"

// Ref identifies an indirect object.
type Ref struct {
	Num int
	Gen int
}

func (r Ref) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

// Object is implemented by every raw PDF value.
type Object interface {
	Kind() string
}

type Name string

func (Name) Kind() string { return "name" }

type Bool bool

func (Bool) Kind() string { return "bool" }

type Null struct{}

func (Null) Kind() string { return "null" }

// Number holds an integer or real value, preserving which it was.
type Number struct {
	I     int64
	F     float64
	IsInt bool
}

func (Number) Kind() string { return "number" }

func Integer(i int64) Number { return Number{I: i, IsInt: true} }
func Real(f float64) Number  { return Number{F: f} }

func (n Number) Int() int64 {
	if n.IsInt {
		return n.I
	}
	return int64(n.F)
}

func (n Number) Float() float64 {
	if n.IsInt {
		return float64(n.I)
	}
	return n.F
}

// String is a PDF string; Hex records the source notation so the writer
// can round-trip it.
type String struct {
	Data []byte
	Hex  bool
}

func (String) Kind() string { return "string" }

// Reference is an indirect reference appearing as a value.
type Reference struct{ R Ref }

func (Reference) Kind() string { return "ref" }

type Array struct{ Items []Object }

func (*Array) Kind() string { return "array" }

func NewArray(items ...Object) *Array { return &Array{Items: items} }

func (a *Array) Len() int { return len(a.Items) }

func (a *Array) Append(obj Object) { a.Items = append(a.Items, obj) }

type Dict struct{ KV map[string]Object }

func (*Dict) Kind() string { return "dict" }

func NewDict() *Dict { return &Dict{KV: make(map[string]Object)} }

func (d *Dict) Get(key string) (Object, bool) {
	if d == nil || d.KV == nil {
		return nil, false
	}
	o, ok := d.KV[key]
	return o, ok
}

func (d *Dict) Set(key string, value Object) {
	if d.KV == nil {
		d.KV = make(map[string]Object)
	}
	d.KV[key] = value
}

// Name returns the string value of a name entry.
func (d *Dict) Name(key string) (string, bool) {
	o, ok := d.Get(key)
	if !ok {
		return "", false
	}
	n, ok := o.(Name)
	return string(n), ok
}

// Int returns the integer value of a numeric entry.
func (d *Dict) Int(key string) (int64, bool) {
	o, ok := d.Get(key)
	if !ok {
		return 0, false
	}
	n, ok := o.(Number)
	if !ok {
		return 0, false
	}
	return n.Int(), true
}

type Stream struct {
	Dict *Dict
	Raw  []byte // undecoded payload as stored in the file
}

func (*Stream) Kind() string { return "stream" }
