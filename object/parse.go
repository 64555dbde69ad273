package object

import (
	"fmt"
	"io"

	"github.com/fabtools/inchify/scanner"
)

// Lexer wraps a scanner with single-token pushback, which the parser needs
// to recognize "num num R" reference triples.
type Lexer struct {
	s      *scanner.Scanner
	unread []scanner.Token
}

func NewLexer(s *scanner.Scanner) *Lexer { return &Lexer{s: s} }

func (l *Lexer) Next() (scanner.Token, error) {
	if n := len(l.unread); n > 0 {
		tok := l.unread[n-1]
		l.unread = l.unread[:n-1]
		return tok, nil
	}
	return l.s.Next()
}

func (l *Lexer) Unread(tok scanner.Token) { l.unread = append(l.unread, tok) }

// SetNextStreamLength forwards a stream length hint to the scanner.
func (l *Lexer) SetNextStreamLength(n int64) { l.s.SetNextStreamLength(n) }

// Parse reads one complete object. Streams are not handled here; the
// document loader recognizes the stream keyword after a dictionary because
// the payload length may require resolving an indirect /Length first.
func Parse(l *Lexer) (Object, error) {
	tok, err := l.Next()
	if err != nil {
		return nil, err
	}
	return parseFrom(l, tok)
}

func parseFrom(l *Lexer, tok scanner.Token) (Object, error) {
	switch tok.Type {
	case scanner.TokenNumber:
		if tok.IsInt {
			if obj, ok, err := tryReference(l, tok); err != nil {
				return nil, err
			} else if ok {
				return obj, nil
			}
			return Integer(tok.Int), nil
		}
		return Real(tok.Float), nil
	case scanner.TokenName:
		return Name(tok.Str), nil
	case scanner.TokenString:
		return String{Data: tok.Bytes}, nil
	case scanner.TokenArrayOpen:
		arr := NewArray()
		for {
			next, err := l.Next()
			if err != nil {
				if err == io.EOF {
					return nil, fmt.Errorf("unterminated array")
				}
				return nil, err
			}
			if next.Type == scanner.TokenArrayClose {
				return arr, nil
			}
			item, err := parseFrom(l, next)
			if err != nil {
				return nil, err
			}
			arr.Append(item)
		}
	case scanner.TokenDictOpen:
		dict := NewDict()
		for {
			next, err := l.Next()
			if err != nil {
				if err == io.EOF {
					return nil, fmt.Errorf("unterminated dictionary")
				}
				return nil, err
			}
			if next.Type == scanner.TokenDictClose {
				return dict, nil
			}
			if next.Type != scanner.TokenName {
				return nil, fmt.Errorf("dictionary key must be a name, got %v at %d", next.Type, next.Pos)
			}
			value, err := Parse(l)
			if err != nil {
				return nil, err
			}
			dict.Set(next.Str, value)
		}
	case scanner.TokenKeyword:
		switch tok.Str {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		case "null":
			return Null{}, nil
		}
		return nil, fmt.Errorf("unexpected keyword %q at %d", tok.Str, tok.Pos)
	}
	return nil, fmt.Errorf("unexpected token %v at %d", tok.Type, tok.Pos)
}

// tryReference checks whether tok begins a "num gen R" triple.
func tryReference(l *Lexer, tok scanner.Token) (Object, bool, error) {
	second, err := l.Next()
	if err != nil {
		if err == io.EOF {
			return nil, false, nil
		}
		return nil, false, err
	}
	if second.Type != scanner.TokenNumber || !second.IsInt {
		l.Unread(second)
		return nil, false, nil
	}
	third, err := l.Next()
	if err != nil {
		if err == io.EOF {
			l.Unread(second)
			return nil, false, nil
		}
		return nil, false, err
	}
	if third.Type == scanner.TokenKeyword && third.Str == "R" {
		return Reference{R: Ref{Num: int(tok.Int), Gen: int(second.Int)}}, true, nil
	}
	l.Unread(third)
	l.Unread(second)
	return nil, false, nil
}
