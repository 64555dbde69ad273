// Package scanner tokenizes PDF object syntax: numbers, names, strings,
// dictionary and array delimiters, keywords, and stream payloads.
package scanner

import (
	"errors"
	"fmt"
	"io"
	"strconv"
)

type TokenType int

const (
	TokenNumber     TokenType = iota // integer or real
	TokenName                        // /Name
	TokenString                      // (literal) or <hex>
	TokenDictOpen                    // <<
	TokenDictClose                   // >>
	TokenArrayOpen                   // [
	TokenArrayClose                  // ]
	TokenKeyword                     // obj, endobj, stream keywords, operators
	TokenStream                      // raw stream payload following the stream keyword
)

type Token struct {
	Type  TokenType
	Str   string  // name value, keyword, or raw number text
	Int   int64   // numeric value when IsInt
	Float float64 // numeric value
	IsInt bool
	Bytes []byte // string content or stream payload
	Pos   int64  // byte offset of the token's first byte
}

// Scanner walks a fully buffered PDF byte slice.
type Scanner struct {
	data          []byte
	pos           int64
	nextStreamLen int64
}

// New returns a scanner over data.
func New(data []byte) *Scanner {
	return &Scanner{data: data, nextStreamLen: -1}
}

// Position returns the current byte offset.
func (s *Scanner) Position() int64 { return s.pos }

// Seek moves the scanner to the given offset.
func (s *Scanner) Seek(offset int64) error {
	if offset < 0 || offset > int64(len(s.data)) {
		return fmt.Errorf("seek out of range: %d", offset)
	}
	s.pos = offset
	return nil
}

// SetNextStreamLength tells the scanner how many payload bytes follow the
// next "stream" keyword. Without a hint the scanner searches for the
// matching "endstream".
func (s *Scanner) SetNextStreamLength(n int64) { s.nextStreamLen = n }

// Next returns the next token or io.EOF.
func (s *Scanner) Next() (Token, error) {
	s.skipWhitespaceAndComments()
	if s.pos >= int64(len(s.data)) {
		return Token{}, io.EOF
	}
	start := s.pos
	c := s.data[s.pos]
	switch c {
	case '<':
		if s.peek(1) == '<' {
			s.pos += 2
			return Token{Type: TokenDictOpen, Pos: start}, nil
		}
		return s.scanHexString()
	case '>':
		if s.peek(1) == '>' {
			s.pos += 2
			return Token{Type: TokenDictClose, Pos: start}, nil
		}
		return Token{}, fmt.Errorf("unexpected '>' at %d", start)
	case '[':
		s.pos++
		return Token{Type: TokenArrayOpen, Pos: start}, nil
	case ']':
		s.pos++
		return Token{Type: TokenArrayClose, Pos: start}, nil
	case '(':
		return s.scanLiteralString()
	case '/':
		return s.scanName()
	case '{', '}':
		s.pos++
		return Token{Type: TokenKeyword, Str: string(c), Pos: start}, nil
	}
	if c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') {
		return s.scanNumber()
	}
	return s.scanKeyword()
}

func isWhitespace(c byte) bool {
	switch c {
	case 0x00, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (s *Scanner) peek(ahead int64) byte {
	if s.pos+ahead >= int64(len(s.data)) {
		return 0
	}
	return s.data[s.pos+ahead]
}

func (s *Scanner) skipWhitespaceAndComments() {
	for s.pos < int64(len(s.data)) {
		c := s.data[s.pos]
		if isWhitespace(c) {
			s.pos++
			continue
		}
		if c == '%' {
			for s.pos < int64(len(s.data)) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
			continue
		}
		return
	}
}

func (s *Scanner) scanNumber() (Token, error) {
	start := s.pos
	for s.pos < int64(len(s.data)) {
		c := s.data[s.pos]
		if c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') {
			s.pos++
			continue
		}
		break
	}
	text := string(s.data[start:s.pos])
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return Token{Type: TokenNumber, Str: text, Int: i, Float: float64(i), IsInt: true, Pos: start}, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{}, fmt.Errorf("invalid number %q at %d", text, start)
	}
	return Token{Type: TokenNumber, Str: text, Float: f, Pos: start}, nil
}

func (s *Scanner) scanName() (Token, error) {
	start := s.pos
	s.pos++ // consume '/'
	var out []byte
	for s.pos < int64(len(s.data)) {
		c := s.data[s.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		if c == '#' && s.pos+2 < int64(len(s.data)) {
			hi, okHi := fromHex(s.data[s.pos+1])
			lo, okLo := fromHex(s.data[s.pos+2])
			if okHi && okLo {
				out = append(out, hi<<4|lo)
				s.pos += 3
				continue
			}
		}
		out = append(out, c)
		s.pos++
	}
	return Token{Type: TokenName, Str: string(out), Pos: start}, nil
}

func (s *Scanner) scanLiteralString() (Token, error) {
	start := s.pos
	s.pos++ // consume '('
	var out []byte
	depth := 1
	for s.pos < int64(len(s.data)) {
		c := s.data[s.pos]
		s.pos++
		switch c {
		case '\\':
			if s.pos >= int64(len(s.data)) {
				return Token{}, errors.New("unterminated string escape")
			}
			e := s.data[s.pos]
			s.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(', ')', '\\':
				out = append(out, e)
			case '\r':
				if s.pos < int64(len(s.data)) && s.data[s.pos] == '\n' {
					s.pos++
				}
			case '\n':
				// line continuation, emit nothing
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && s.pos < int64(len(s.data)); i++ {
						d := s.data[s.pos]
						if d < '0' || d > '7' {
							break
						}
						v = v*8 + int(d-'0')
						s.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return Token{Type: TokenString, Bytes: out, Pos: start}, nil
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return Token{}, errors.New("unterminated literal string")
}

func (s *Scanner) scanHexString() (Token, error) {
	start := s.pos
	s.pos++ // consume '<'
	var digits []byte
	for s.pos < int64(len(s.data)) {
		c := s.data[s.pos]
		s.pos++
		if c == '>' {
			if len(digits)%2 == 1 {
				digits = append(digits, '0')
			}
			out := make([]byte, len(digits)/2)
			for i := 0; i < len(out); i++ {
				hi, _ := fromHex(digits[2*i])
				lo, _ := fromHex(digits[2*i+1])
				out[i] = hi<<4 | lo
			}
			return Token{Type: TokenString, Bytes: out, Pos: start}, nil
		}
		if isWhitespace(c) {
			continue
		}
		if _, ok := fromHex(c); !ok {
			return Token{}, fmt.Errorf("invalid hex digit %q at %d", c, s.pos-1)
		}
		digits = append(digits, c)
	}
	return Token{}, errors.New("unterminated hex string")
}

func (s *Scanner) scanKeyword() (Token, error) {
	start := s.pos
	for s.pos < int64(len(s.data)) {
		c := s.data[s.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		s.pos++
	}
	word := string(s.data[start:s.pos])
	if word == "" {
		s.pos++
		return Token{}, fmt.Errorf("unexpected byte 0x%02x at %d", s.data[start], start)
	}
	if word == "stream" {
		return s.scanStream(start)
	}
	return Token{Type: TokenKeyword, Str: word, Pos: start}, nil
}

// scanStream consumes the EOL after the stream keyword and the payload.
func (s *Scanner) scanStream(start int64) (Token, error) {
	if s.pos < int64(len(s.data)) && s.data[s.pos] == '\r' {
		s.pos++
	}
	if s.pos < int64(len(s.data)) && s.data[s.pos] == '\n' {
		s.pos++
	}
	n := s.nextStreamLen
	s.nextStreamLen = -1
	if n >= 0 && s.pos+n <= int64(len(s.data)) {
		payload := s.data[s.pos : s.pos+n]
		s.pos += n
		return Token{Type: TokenStream, Bytes: payload, Pos: start}, nil
	}
	// No usable length hint: search for endstream.
	idx := indexOf(s.data[s.pos:], []byte("endstream"))
	if idx < 0 {
		return Token{}, errors.New("endstream not found")
	}
	payload := s.data[s.pos : s.pos+int64(idx)]
	// Strip the EOL that precedes endstream.
	for len(payload) > 0 && (payload[len(payload)-1] == '\n' || payload[len(payload)-1] == '\r') {
		payload = payload[:len(payload)-1]
	}
	s.pos += int64(idx)
	return Token{Type: TokenStream, Bytes: payload, Pos: start}, nil
}

func indexOf(haystack, needle []byte) int {
	limit := len(haystack) - len(needle)
	for i := 0; i <= limit; i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func fromHex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
