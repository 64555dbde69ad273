package document

import (
	"errors"
	"fmt"
	"io"

	"github.com/fabtools/inchify/object"
	"github.com/fabtools/inchify/scanner"
)

// loadObjects parses every object the xref table points at. Streams need
// their /Length resolved before the payload can be consumed, which may in
// turn require loading the length object first; lengths are resolved
// lazily against the same table.
func (d *Document) loadObjects(data []byte, table *xrefTable) error {
	for num, entry := range table.entries {
		if num == 0 {
			continue // free list head
		}
		ref := object.Ref{Num: num, Gen: entry.gen}
		if _, done := d.Objects[ref]; done {
			continue
		}
		obj, err := d.loadAt(data, table, entry.offset)
		if err != nil {
			return fmt.Errorf("load object %d: %w", num, err)
		}
		d.Objects[ref] = obj
	}
	return nil
}

func (d *Document) loadAt(data []byte, table *xrefTable, offset int64) (object.Object, error) {
	if offset < 0 || offset >= int64(len(data)) {
		return nil, fmt.Errorf("object offset out of range: %d", offset)
	}
	s := scanner.New(data)
	if err := s.Seek(offset); err != nil {
		return nil, err
	}
	lex := object.NewLexer(s)

	// Expect "num gen obj".
	if err := expectObjectHeader(lex); err != nil {
		return nil, err
	}
	obj, err := object.Parse(lex)
	if err != nil {
		return nil, err
	}

	dict, isDict := obj.(*object.Dict)
	if !isDict {
		return obj, nil
	}
	// A stream token after the dictionary makes this a stream object. The
	// scanner consumes the payload by searching for endstream; when the
	// dictionary declares a usable /Length we re-read with that length
	// instead, since payloads may contain "endstream" bytes.
	next, err := lex.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return obj, nil
		}
		return nil, err
	}
	if next.Type != scanner.TokenStream {
		lex.Unread(next)
		return obj, nil
	}
	if length, ok := d.streamLength(data, table, dict); ok {
		s2 := scanner.New(data)
		if err := s2.Seek(next.Pos); err != nil {
			return nil, err
		}
		s2.SetNextStreamLength(length)
		tok, err := s2.Next()
		if err == nil && tok.Type == scanner.TokenStream {
			return &object.Stream{Dict: dict, Raw: tok.Bytes}, nil
		}
	}
	return &object.Stream{Dict: dict, Raw: next.Bytes}, nil
}

// streamLength resolves /Length, loading an indirect length object on
// demand.
func (d *Document) streamLength(data []byte, table *xrefTable, dict *object.Dict) (int64, bool) {
	obj, ok := dict.Get("Length")
	if !ok {
		return 0, false
	}
	switch v := obj.(type) {
	case object.Number:
		return v.Int(), true
	case object.Reference:
		if loaded, found := d.Objects[v.R]; found {
			if n, isNum := loaded.(object.Number); isNum {
				return n.Int(), true
			}
			return 0, false
		}
		entry, found := table.entries[v.R.Num]
		if !found {
			return 0, false
		}
		lenObj, err := d.loadAt(data, table, entry.offset)
		if err != nil {
			return 0, false
		}
		d.Objects[v.R] = lenObj
		if n, isNum := lenObj.(object.Number); isNum {
			return n.Int(), true
		}
	}
	return 0, false
}

func expectObjectHeader(lex *object.Lexer) error {
	num, err := lex.Next()
	if err != nil {
		return err
	}
	if num.Type != scanner.TokenNumber || !num.IsInt {
		return fmt.Errorf("expected object number, got %v at %d", num.Type, num.Pos)
	}
	gen, err := lex.Next()
	if err != nil {
		return err
	}
	if gen.Type != scanner.TokenNumber || !gen.IsInt {
		return fmt.Errorf("expected generation number at %d", gen.Pos)
	}
	kw, err := lex.Next()
	if err != nil {
		return err
	}
	if kw.Type != scanner.TokenKeyword || kw.Str != "obj" {
		return fmt.Errorf("expected obj keyword at %d", kw.Pos)
	}
	return nil
}

// inflateObjectStreams materializes objects stored inside /Type /ObjStm
// streams so the page tree walk sees them like any other object.
func (d *Document) inflateObjectStreams() {
	extracted := make(map[object.Ref]object.Object)
	for _, obj := range d.Objects {
		stream, ok := obj.(*object.Stream)
		if !ok {
			continue
		}
		if typ, _ := stream.Dict.Name("Type"); typ != "ObjStm" {
			continue
		}
		n, okN := stream.Dict.Int("N")
		first, okF := stream.Dict.Int("First")
		if !okN || !okF {
			continue
		}
		payload, err := d.DecodedStream(stream)
		if err != nil || int64(len(payload)) < first {
			continue
		}
		// Header: N pairs of "objnum offset".
		head := object.NewLexer(scanner.New(payload[:first]))
		type slot struct {
			num int
			off int64
		}
		slots := make([]slot, 0, n)
		for i := int64(0); i < n; i++ {
			numTok, err := head.Next()
			if err != nil {
				break
			}
			offTok, err := head.Next()
			if err != nil {
				break
			}
			if numTok.Type != scanner.TokenNumber || offTok.Type != scanner.TokenNumber {
				break
			}
			slots = append(slots, slot{num: int(numTok.Int), off: offTok.Int})
		}
		body := payload[first:]
		for _, sl := range slots {
			if sl.off < 0 || sl.off >= int64(len(body)) {
				continue
			}
			lex := object.NewLexer(scanner.New(body[sl.off:]))
			parsed, err := object.Parse(lex)
			if err != nil {
				continue
			}
			ref := object.Ref{Num: sl.num}
			if _, exists := d.Objects[ref]; !exists {
				extracted[ref] = parsed
			}
		}
	}
	for ref, obj := range extracted {
		d.Objects[ref] = obj
	}
}
