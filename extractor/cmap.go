package extractor

import (
	"bufio"
	"bytes"
	"sort"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// toUnicodeMap maps character codes to Unicode text per a font's
// /ToUnicode CMap. Codes may be one or more bytes wide.
type toUnicodeMap struct {
	entries map[string]string
	lengths []int // code byte widths, longest first
}

// parseToUnicodeCMap reads the bfchar and bfrange sections of a CMap.
func parseToUnicodeCMap(data []byte) *toUnicodeMap {
	lines := bufio.NewScanner(bytes.NewReader(data))
	m := &toUnicodeMap{entries: make(map[string]string)}
	lengthSet := make(map[int]struct{})
	section := ""
	for lines.Scan() {
		line := strings.TrimSpace(lines.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		switch {
		case strings.HasSuffix(line, "begincodespacerange"):
			section = "codespace"
			continue
		case strings.HasSuffix(line, "beginbfchar"):
			section = "bfchar"
			continue
		case strings.HasSuffix(line, "beginbfrange"):
			section = "bfrange"
			continue
		case strings.HasPrefix(line, "end"):
			section = ""
			continue
		}
		switch section {
		case "codespace":
			hexes := hexTokens(line)
			if len(hexes) >= 1 {
				if b := hexBytes(hexes[0]); len(b) > 0 {
					lengthSet[len(b)] = struct{}{}
				}
			}
		case "bfchar":
			hexes := hexTokens(line)
			if len(hexes) >= 2 {
				src := hexBytes(hexes[0])
				if len(src) > 0 {
					m.entries[string(src)] = decodeUTF16BE(hexBytes(hexes[1]))
					lengthSet[len(src)] = struct{}{}
				}
			}
		case "bfrange":
			line = joinBracketLines(line, lines)
			hexes := hexTokens(line)
			if len(hexes) < 3 {
				continue
			}
			src := hexBytes(hexes[0])
			start := bytesToInt(src)
			end := bytesToInt(hexBytes(hexes[1]))
			lengthSet[len(src)] = struct{}{}
			if strings.Contains(line, "[") {
				for i := 0; i <= end-start && 2+i < len(hexes); i++ {
					key := intToBytes(start+i, len(src))
					m.entries[string(key)] = decodeUTF16BE(hexBytes(hexes[2+i]))
				}
			} else {
				dst := hexBytes(hexes[2])
				dstVal := bytesToInt(dst)
				for i := 0; i <= end-start; i++ {
					key := intToBytes(start+i, len(src))
					m.entries[string(key)] = decodeUTF16BE(intToBytes(dstVal+i, len(dst)))
				}
			}
		}
	}
	if len(lengthSet) == 0 {
		for k := range m.entries {
			lengthSet[len(k)] = struct{}{}
		}
	}
	for l := range lengthSet {
		m.lengths = append(m.lengths, l)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(m.lengths)))
	return m
}

func (m *toUnicodeMap) decode(data []byte) string {
	if m == nil || len(m.lengths) == 0 {
		return string(data)
	}
	var out strings.Builder
	for len(data) > 0 {
		matched := false
		for _, l := range m.lengths {
			if len(data) < l {
				continue
			}
			if val, ok := m.entries[string(data[:l])]; ok {
				out.WriteString(val)
				data = data[l:]
				matched = true
				break
			}
		}
		if !matched {
			out.WriteByte(data[0])
			data = data[1:]
		}
	}
	return out.String()
}

func decodeUTF16BE(data []byte) string {
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}
	if len(data) == 0 {
		return ""
	}
	dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(data)
	if err != nil {
		return ""
	}
	return string(out)
}

// joinBracketLines pulls continuation lines into a bfrange entry whose
// destination array spans multiple lines.
func joinBracketLines(line string, lines *bufio.Scanner) string {
	if !strings.Contains(line, "[") || strings.Contains(line, "]") {
		return line
	}
	for lines.Scan() {
		next := strings.TrimSpace(lines.Text())
		line += " " + next
		if strings.Contains(next, "]") {
			break
		}
	}
	return line
}

func hexTokens(line string) []string {
	var tokens []string
	for {
		start := strings.IndexByte(line, '<')
		if start < 0 {
			break
		}
		end := strings.IndexByte(line[start+1:], '>')
		if end < 0 {
			break
		}
		tokens = append(tokens, strings.ReplaceAll(line[start+1:start+1+end], " ", ""))
		line = line[start+1+end+1:]
	}
	return tokens
}

func hexBytes(hex string) []byte {
	if len(hex)%2 == 1 {
		hex += "0"
	}
	out := make([]byte, len(hex)/2)
	for i := 0; i < len(hex); i += 2 {
		out[i/2] = hexNibble(hex[i])<<4 | hexNibble(hex[i+1])
	}
	return out
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

func bytesToInt(b []byte) int {
	v := 0
	for _, by := range b {
		v = v<<8 | int(by)
	}
	return v
}

func intToBytes(v, length int) []byte {
	out := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}
