// Package document loads a PDF into a raw object map with a page-level
// view, and saves the (possibly mutated) document back to disk.
package document

import (
	"errors"
	"fmt"
	"os"

	"github.com/fabtools/inchify/filters"
	"github.com/fabtools/inchify/geo"
	"github.com/fabtools/inchify/object"
)

// Document is an open PDF. It holds every live indirect object plus a
// flattened, ordered page list.
type Document struct {
	Objects map[object.Ref]object.Object
	Trailer *object.Dict
	Version string

	pages   []*Page
	filters *filters.Pipeline
	nextNum int
}

// Page is one unit of work: read-only for scanning, mutable for applying
// substitutions. Content mutations are staged in modified and written out
// on save.
type Page struct {
	doc       *Document
	ref       object.Ref
	dict      *object.Dict
	index     int
	MediaBox  geo.Rect
	Rotate    int
	resources *object.Dict

	modified []byte // replacement content stream, nil when untouched
}

// Open reads and parses the file at path.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("open document %q: %w", path, err)
	}
	return doc, nil
}

// Parse builds a Document from raw bytes.
func Parse(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, errors.New("empty input")
	}
	table, err := resolveXref(data)
	if err != nil {
		return nil, err
	}
	doc := &Document{
		Objects: make(map[object.Ref]object.Object),
		Trailer: table.trailer,
		Version: headerVersion(data),
		filters: filters.NewPipeline(),
	}
	if err := doc.loadObjects(data, table); err != nil {
		return nil, err
	}
	doc.inflateObjectStreams()
	if doc.Trailer == nil {
		doc.Trailer = doc.synthesizeTrailer()
	}
	if doc.Trailer == nil {
		return nil, errors.New("document has no catalog")
	}
	for ref := range doc.Objects {
		if ref.Num >= doc.nextNum {
			doc.nextNum = ref.Num + 1
		}
	}
	if err := doc.collectPages(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Pages returns the flattened page list in document order.
func (d *Document) Pages() []*Page { return d.pages }

// Resolve follows reference chains until a direct object is reached.
func (d *Document) Resolve(obj object.Object) object.Object {
	for i := 0; i < 32; i++ {
		ref, ok := obj.(object.Reference)
		if !ok {
			return obj
		}
		next, found := d.Objects[ref.R]
		if !found {
			return object.Null{}
		}
		obj = next
	}
	return object.Null{}
}

// ResolveDict resolves obj and asserts it is a dictionary.
func (d *Document) ResolveDict(obj object.Object) *object.Dict {
	dict, _ := d.Resolve(obj).(*object.Dict)
	return dict
}

// ResolveStream resolves obj and asserts it is a stream.
func (d *Document) ResolveStream(obj object.Object) *object.Stream {
	s, _ := d.Resolve(obj).(*object.Stream)
	return s
}

// DecodedStream returns the filtered payload of a stream.
func (d *Document) DecodedStream(s *object.Stream) ([]byte, error) {
	return d.filters.DecodeStream(s)
}

// AddObject registers obj under a fresh object number and returns its ref.
func (d *Document) AddObject(obj object.Object) object.Ref {
	ref := object.Ref{Num: d.nextNum}
	d.nextNum++
	d.Objects[ref] = obj
	return ref
}

// Save writes the document to path as a full rewrite. Staged page content
// replaces the original content streams.
func (d *Document) Save(path string) error {
	d.commitPageContent()
	data, err := serialize(d)
	if err != nil {
		return fmt.Errorf("serialize document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// Index returns the zero-based page index.
func (p *Page) Index() int { return p.index }

// Number returns the one-based page number used in logs.
func (p *Page) Number() int { return p.index + 1 }

// Dict exposes the underlying page dictionary.
func (p *Page) Dict() *object.Dict { return p.dict }

// Resources returns the page's (possibly inherited) resource dictionary.
func (p *Page) Resources() *object.Dict { return p.resources }

// Doc returns the owning document.
func (p *Page) Doc() *Document { return p.doc }

// Content returns the decoded, concatenated content streams. Once content
// has been replaced with SetContent, the staged bytes are returned.
func (p *Page) Content() ([]byte, error) {
	if p.modified != nil {
		return p.modified, nil
	}
	contents, ok := p.dict.Get("Contents")
	if !ok {
		return nil, nil
	}
	var out []byte
	for _, s := range p.doc.contentStreams(contents) {
		decoded, err := p.doc.DecodedStream(s)
		if err != nil {
			return nil, fmt.Errorf("decode page %d content: %w", p.Number(), err)
		}
		out = append(out, decoded...)
		out = append(out, '\n')
	}
	return out, nil
}

// SetContent stages a full replacement of the page's content stream.
func (p *Page) SetContent(data []byte) { p.modified = data }

// SetResources replaces the page's resource dictionary. Used when a page
// inherited shared resources but needs a private copy before mutation.
func (p *Page) SetResources(res *object.Dict) {
	p.resources = res
	p.dict.Set("Resources", res)
}

func (d *Document) contentStreams(obj object.Object) []*object.Stream {
	switch v := d.Resolve(obj).(type) {
	case *object.Stream:
		return []*object.Stream{v}
	case *object.Array:
		var out []*object.Stream
		for _, item := range v.Items {
			if s := d.ResolveStream(item); s != nil {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// commitPageContent turns staged page content into real stream objects.
func (d *Document) commitPageContent() {
	for _, p := range d.pages {
		if p.modified == nil {
			continue
		}
		encoded := filters.FlateEncode(p.modified)
		dict := object.NewDict()
		dict.Set("Length", object.Integer(int64(len(encoded))))
		dict.Set("Filter", object.Name("FlateDecode"))
		ref := d.AddObject(&object.Stream{Dict: dict, Raw: encoded})
		p.dict.Set("Contents", object.Reference{R: ref})
		p.modified = nil
	}
}

func (d *Document) synthesizeTrailer() *object.Dict {
	for ref, obj := range d.Objects {
		dict, ok := obj.(*object.Dict)
		if !ok {
			continue
		}
		if typ, _ := dict.Name("Type"); typ == "Catalog" {
			trailer := object.NewDict()
			trailer.Set("Root", object.Reference{R: ref})
			return trailer
		}
	}
	return nil
}

func headerVersion(data []byte) string {
	const prefix = "%PDF-"
	if len(data) < len(prefix)+3 || string(data[:len(prefix)]) != prefix {
		return ""
	}
	end := len(prefix)
	for end < len(data) && data[end] != '\r' && data[end] != '\n' && end < len(prefix)+8 {
		end++
	}
	return string(data[len(prefix):end])
}
