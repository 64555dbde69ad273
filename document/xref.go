package document

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fabtools/inchify/object"
	"github.com/fabtools/inchify/scanner"
)

type xrefEntry struct {
	offset int64
	gen    int
}

type xrefTable struct {
	entries map[int]xrefEntry
	trailer *object.Dict
}

// resolveXref locates the cross-reference information. Classic tables are
// parsed directly, following /Prev chains. Files using cross-reference
// streams (or with damaged tables) fall back to a full repair scan.
func resolveXref(data []byte) (*xrefTable, error) {
	table, err := parseClassicXref(data)
	if err == nil {
		return table, nil
	}
	repaired, repErr := repairScan(data)
	if repErr != nil {
		return nil, fmt.Errorf("xref parse failed (%v); repair failed: %w", err, repErr)
	}
	return repaired, nil
}

func parseClassicXref(data []byte) (*xrefTable, error) {
	start := bytes.LastIndex(data, []byte("startxref"))
	if start < 0 {
		return nil, errors.New("startxref not found")
	}
	offset, err := firstInt(data[start+len("startxref"):])
	if err != nil {
		return nil, fmt.Errorf("parse startxref: %w", err)
	}

	table := &xrefTable{entries: make(map[int]xrefEntry)}
	seen := make(map[int64]bool)
	for offset > 0 {
		if offset >= int64(len(data)) {
			return nil, fmt.Errorf("xref offset out of range: %d", offset)
		}
		if seen[offset] {
			break
		}
		seen[offset] = true
		trailer, prev, err := parseXrefSection(data[offset:], table)
		if err != nil {
			return nil, err
		}
		if table.trailer == nil {
			table.trailer = trailer
		}
		offset = prev
	}
	if table.trailer == nil {
		return nil, errors.New("trailer not found")
	}
	if _, ok := table.trailer.Get("Root"); !ok {
		return nil, errors.New("trailer missing Root")
	}
	return table, nil
}

// parseXrefSection parses one "xref ... trailer <<...>>" section and
// returns its trailer plus the /Prev offset (0 when absent).
func parseXrefSection(section []byte, table *xrefTable) (*object.Dict, int64, error) {
	sc := bufio.NewScanner(bytes.NewReader(section))
	sc.Buffer(make([]byte, 64*1024), 64*1024)
	if !sc.Scan() || strings.TrimSpace(sc.Text()) != "xref" {
		return nil, 0, errors.New("xref keyword not found at offset")
	}
	pos := int64(len(sc.Bytes())) // consumed so far, tracked loosely below

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "trailer") {
			idx := bytes.Index(section, []byte("trailer"))
			if idx < 0 {
				return nil, 0, errors.New("trailer keyword lost")
			}
			lex := object.NewLexer(scanner.New(section[idx+len("trailer"):]))
			obj, err := object.Parse(lex)
			if err != nil {
				return nil, 0, fmt.Errorf("parse trailer: %w", err)
			}
			trailer, ok := obj.(*object.Dict)
			if !ok {
				return nil, 0, errors.New("trailer is not a dictionary")
			}
			prev, _ := trailer.Int("Prev")
			return trailer, prev, nil
		}
		parts := strings.Fields(line)
		if len(parts) == 2 {
			startObj, err1 := strconv.Atoi(parts[0])
			count, err2 := strconv.Atoi(parts[1])
			if err1 != nil || err2 != nil {
				return nil, 0, fmt.Errorf("invalid xref subsection header %q", line)
			}
			for i := 0; i < count; i++ {
				if !sc.Scan() {
					return nil, 0, errors.New("unexpected end of xref section")
				}
				fields := strings.Fields(strings.TrimSpace(sc.Text()))
				if len(fields) < 3 {
					return nil, 0, fmt.Errorf("invalid xref entry %q", sc.Text())
				}
				off, err := strconv.ParseInt(fields[0], 10, 64)
				if err != nil {
					return nil, 0, fmt.Errorf("parse xref offset: %w", err)
				}
				gen, err := strconv.Atoi(fields[1])
				if err != nil {
					return nil, 0, fmt.Errorf("parse xref generation: %w", err)
				}
				num := startObj + i
				if fields[2] == "n" {
					// Earlier sections win: the newest update is read first.
					if _, exists := table.entries[num]; !exists {
						table.entries[num] = xrefEntry{offset: off, gen: gen}
					}
				}
			}
			continue
		}
		return nil, 0, fmt.Errorf("unexpected xref line %q at ~%d", line, pos)
	}
	return nil, 0, errors.New("xref section without trailer")
}

// repairScan reconstructs the table by scanning the whole file for
// "num gen obj" headers. The trailer is taken from a trailer keyword if
// present, otherwise synthesized from the catalog object found during the
// object load.
func repairScan(data []byte) (*xrefTable, error) {
	table := &xrefTable{entries: make(map[int]xrefEntry)}
	s := scanner.New(data)
	var pending [2]scanner.Token
	var have int
	for {
		tok, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			// Damaged region: resync one byte further.
			if seekErr := s.Seek(s.Position() + 1); seekErr != nil {
				break
			}
			have = 0
			continue
		}
		switch {
		case tok.Type == scanner.TokenNumber && tok.IsInt:
			if have == 2 {
				pending[0] = pending[1]
				pending[1] = tok
			} else {
				pending[have] = tok
				have++
			}
		case tok.Type == scanner.TokenKeyword && tok.Str == "obj" && have == 2:
			num := int(pending[0].Int)
			gen := int(pending[1].Int)
			// Later definitions override earlier ones (incremental updates).
			table.entries[num] = xrefEntry{offset: pending[0].Pos, gen: gen}
			have = 0
			skipObjectBody(s, data)
		case tok.Type == scanner.TokenKeyword && tok.Str == "trailer":
			lex := object.NewLexer(s)
			if obj, err := object.Parse(lex); err == nil {
				if dict, ok := obj.(*object.Dict); ok {
					if _, hasRoot := dict.Get("Root"); hasRoot || table.trailer == nil {
						table.trailer = dict
					}
				}
			}
			have = 0
		default:
			have = 0
		}
	}
	if len(table.entries) == 0 {
		return nil, errors.New("repair found no objects")
	}
	return table, nil
}

// skipObjectBody advances past the current object so stream payloads are
// not scanned for spurious object headers.
func skipObjectBody(s *scanner.Scanner, data []byte) {
	rest := data[s.Position():]
	end := bytes.Index(rest, []byte("endobj"))
	if end < 0 {
		return
	}
	if streamIdx := bytes.Index(rest[:end], []byte("stream")); streamIdx >= 0 {
		// Stream payload may itself contain "endobj"; find endstream first.
		if es := bytes.Index(rest, []byte("endstream")); es >= 0 {
			after := bytes.Index(rest[es:], []byte("endobj"))
			if after >= 0 {
				s.Seek(s.Position() + int64(es+after+len("endobj")))
				return
			}
		}
	}
	s.Seek(s.Position() + int64(end+len("endobj")))
}

func firstInt(data []byte) (int64, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		return strconv.ParseInt(text, 10, 64)
	}
	return 0, errors.New("no integer found")
}
