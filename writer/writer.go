// Package writer serializes a raw object map back into a complete PDF
// file: header, body, cross-reference table, and trailer.
package writer

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fabtools/inchify/object"
)

// Write emits a full rewrite of the document. Object numbers are
// preserved; the xref table and trailer are regenerated.
func Write(w io.Writer, objects map[object.Ref]object.Object, trailer *object.Dict, version string) error {
	if version == "" {
		version = "1.7"
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%%PDF-%s\n", version)
	// Binary marker comment so transfer tools treat the file as binary.
	buf.WriteString("%\xe2\xe3\xcf\xd3\n")

	refs := make([]object.Ref, 0, len(objects))
	for ref := range objects {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Num < refs[j].Num })

	offsets := make(map[int]int64, len(refs))
	maxNum := 0
	for _, ref := range refs {
		offsets[ref.Num] = int64(buf.Len())
		if ref.Num > maxNum {
			maxNum = ref.Num
		}
		fmt.Fprintf(&buf, "%d %d obj\n", ref.Num, ref.Gen)
		serializeObject(&buf, objects[ref])
		buf.WriteString("\nendobj\n")
	}

	xrefOffset := int64(buf.Len())
	fmt.Fprintf(&buf, "xref\n0 %d\n", maxNum+1)
	buf.WriteString("0000000000 65535 f \n")
	for num := 1; num <= maxNum; num++ {
		if off, ok := offsets[num]; ok {
			fmt.Fprintf(&buf, "%010d %05d n \n", off, 0)
		} else {
			buf.WriteString("0000000000 65535 f \n")
		}
	}

	out := cloneTrailer(trailer)
	out.Set("Size", object.Integer(int64(maxNum+1)))
	buf.WriteString("trailer\n")
	serializeObject(&buf, out)
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	_, err := w.Write(buf.Bytes())
	return err
}

// cloneTrailer copies the trailer, dropping entries that only make sense
// for the original file layout.
func cloneTrailer(trailer *object.Dict) *object.Dict {
	out := object.NewDict()
	if trailer != nil {
		for k, v := range trailer.KV {
			switch k {
			case "Prev", "XRefStm", "Size", "Type", "W", "Index", "Filter", "DecodeParms", "Length":
				continue
			}
			out.Set(k, v)
		}
	}
	return out
}

func serializeObject(buf *bytes.Buffer, obj object.Object) {
	switch v := obj.(type) {
	case nil:
		buf.WriteString("null")
	case object.Null:
		buf.WriteString("null")
	case object.Bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case object.Number:
		if v.IsInt {
			buf.WriteString(strconv.FormatInt(v.I, 10))
		} else {
			// 'f' keeps small reals out of exponent notation, which PDF
			// number syntax does not allow.
			buf.WriteString(strconv.FormatFloat(v.F, 'f', -1, 64))
		}
	case object.Name:
		serializeName(buf, string(v))
	case object.String:
		serializeString(buf, v)
	case object.Reference:
		fmt.Fprintf(buf, "%d %d R", v.R.Num, v.R.Gen)
	case *object.Array:
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(' ')
			}
			serializeObject(buf, item)
		}
		buf.WriteByte(']')
	case *object.Dict:
		serializeDict(buf, v)
	case *object.Stream:
		dict := v.Dict
		if dict == nil {
			dict = object.NewDict()
		}
		dict.Set("Length", object.Integer(int64(len(v.Raw))))
		serializeDict(buf, dict)
		buf.WriteString("\nstream\n")
		buf.Write(v.Raw)
		buf.WriteString("\nendstream")
	default:
		buf.WriteString("null")
	}
}

func serializeDict(buf *bytes.Buffer, dict *object.Dict) {
	keys := make([]string, 0, len(dict.KV))
	for k := range dict.KV {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	buf.WriteString("<< ")
	for _, k := range keys {
		serializeName(buf, k)
		buf.WriteByte(' ')
		serializeObject(buf, dict.KV[k])
		buf.WriteByte(' ')
	}
	buf.WriteString(">>")
}

func serializeName(buf *bytes.Buffer, name string) {
	buf.WriteByte('/')
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c <= ' ' || c > '~' || isNameEscape(c) {
			fmt.Fprintf(buf, "#%02X", c)
			continue
		}
		buf.WriteByte(c)
	}
}

func isNameEscape(c byte) bool {
	switch c {
	case '#', '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func serializeString(buf *bytes.Buffer, s object.String) {
	if s.Hex {
		buf.WriteByte('<')
		for _, b := range s.Data {
			fmt.Fprintf(buf, "%02X", b)
		}
		buf.WriteByte('>')
		return
	}
	buf.WriteByte('(')
	for _, b := range s.Data {
		switch b {
		case '(', ')', '\\':
			buf.WriteByte('\\')
			buf.WriteByte(b)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		default:
			buf.WriteByte(b)
		}
	}
	buf.WriteByte(')')
}
