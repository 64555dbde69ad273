package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/fabtools/inchify/object"
	"github.com/fabtools/inchify/scanner"
)

// Op is one content stream operation: the operands in order, then the
// operator keyword.
type Op struct {
	Operator string
	Operands []object.Object
}

// ParseOps tokenizes a decoded content stream into an operation list.
// Inline image data (BI..EI) is skipped, not preserved.
func ParseOps(data []byte) ([]Op, error) {
	sc := scanner.New(data)
	lex := object.NewLexer(sc)
	var ops []Op
	var operands []object.Object
	for {
		tok, err := lex.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("parse content stream: %w", err)
		}
		if tok.Type == scanner.TokenKeyword && !isOperandKeyword(tok.Str) {
			if tok.Str == "BI" {
				if err := skipInlineImage(sc, data); err != nil {
					return nil, err
				}
				operands = nil
				continue
			}
			ops = append(ops, Op{Operator: tok.Str, Operands: operands})
			operands = nil
			continue
		}
		lex.Unread(tok)
		operand, err := object.Parse(lex)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("parse content operand: %w", err)
		}
		operands = append(operands, operand)
	}
	return ops, nil
}

func isOperandKeyword(word string) bool {
	switch word {
	case "true", "false", "null":
		return true
	}
	return false
}

// skipInlineImage jumps past the binary payload of a BI..EI block.
func skipInlineImage(sc *scanner.Scanner, data []byte) error {
	idx := bytes.Index(data[sc.Position():], []byte("EI"))
	if idx < 0 {
		return errors.New("unterminated inline image")
	}
	return sc.Seek(sc.Position() + int64(idx) + 2)
}

// WriteOps serializes an operation list back into content stream bytes.
func WriteOps(ops []Op) []byte {
	var buf bytes.Buffer
	for _, op := range ops {
		for _, operand := range op.Operands {
			writeOperand(&buf, operand)
			buf.WriteByte(' ')
		}
		buf.WriteString(op.Operator)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func writeOperand(buf *bytes.Buffer, obj object.Object) {
	switch v := obj.(type) {
	case object.Number:
		if v.IsInt {
			buf.WriteString(strconv.FormatInt(v.I, 10))
		} else {
			buf.WriteString(strconv.FormatFloat(v.F, 'f', -1, 64))
		}
	case object.Name:
		buf.WriteByte('/')
		buf.WriteString(string(v))
	case object.Bool:
		buf.WriteString(strconv.FormatBool(bool(v)))
	case object.String:
		writeStringOperand(buf, v)
	case *object.Array:
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(' ')
			}
			writeOperand(buf, item)
		}
		buf.WriteByte(']')
	case *object.Dict:
		buf.WriteString("<<")
		for key, value := range v.KV {
			buf.WriteByte('/')
			buf.WriteString(key)
			buf.WriteByte(' ')
			writeOperand(buf, value)
		}
		buf.WriteString(">>")
	default:
		buf.WriteString("null")
	}
}

func writeStringOperand(buf *bytes.Buffer, s object.String) {
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
