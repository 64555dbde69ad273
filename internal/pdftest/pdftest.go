// Package pdftest builds minimal in-memory PDFs for tests.
package pdftest

import (
	"bytes"

	"github.com/fabtools/inchify/object"
	"github.com/fabtools/inchify/writer"
)

// PageSpec describes one fixture page.
type PageSpec struct {
	Content  string
	MediaBox [4]float64 // defaults to US Letter when zero
	Fonts    map[string]string // resource name -> base font, defaults to F1/Helvetica
}

// Single returns a one-page PDF with the given content stream.
func Single(content string) []byte {
	return Build([]PageSpec{{Content: content}})
}

// Build returns a classic-xref PDF containing the given pages.
func Build(pages []PageSpec) []byte {
	objects := make(map[object.Ref]object.Object)
	num := 1
	next := func() object.Ref {
		ref := object.Ref{Num: num}
		num++
		return ref
	}

	catalogRef := next()
	pagesRef := next()

	kids := object.NewArray()
	for _, spec := range pages {
		mb := spec.MediaBox
		if mb == [4]float64{} {
			mb = [4]float64{0, 0, 612, 792}
		}
		fonts := spec.Fonts
		if fonts == nil {
			fonts = map[string]string{"F1": "Helvetica"}
		}

		fontRes := object.NewDict()
		for resName, baseFont := range fonts {
			fontRef := next()
			fontDict := object.NewDict()
			fontDict.Set("Type", object.Name("Font"))
			fontDict.Set("Subtype", object.Name("Type1"))
			fontDict.Set("BaseFont", object.Name(baseFont))
			objects[fontRef] = fontDict
			fontRes.Set(resName, object.Reference{R: fontRef})
		}
		resources := object.NewDict()
		resources.Set("Font", fontRes)

		contentRef := next()
		contentDict := object.NewDict()
		contentDict.Set("Length", object.Integer(int64(len(spec.Content))))
		objects[contentRef] = &object.Stream{Dict: contentDict, Raw: []byte(spec.Content)}

		pageRef := next()
		pageDict := object.NewDict()
		pageDict.Set("Type", object.Name("Page"))
		pageDict.Set("Parent", object.Reference{R: pagesRef})
		pageDict.Set("MediaBox", object.NewArray(
			object.Real(mb[0]), object.Real(mb[1]), object.Real(mb[2]), object.Real(mb[3])))
		pageDict.Set("Resources", resources)
		pageDict.Set("Contents", object.Reference{R: contentRef})
		objects[pageRef] = pageDict
		kids.Append(object.Reference{R: pageRef})
	}

	pagesDict := object.NewDict()
	pagesDict.Set("Type", object.Name("Pages"))
	pagesDict.Set("Count", object.Integer(int64(len(pages))))
	pagesDict.Set("Kids", kids)
	objects[pagesRef] = pagesDict

	catalog := object.NewDict()
	catalog.Set("Type", object.Name("Catalog"))
	catalog.Set("Pages", object.Reference{R: pagesRef})
	objects[catalogRef] = catalog

	trailer := object.NewDict()
	trailer.Set("Root", object.Reference{R: catalogRef})

	var buf bytes.Buffer
	if err := writer.Write(&buf, objects, trailer, "1.7"); err != nil {
		panic(err) // fixture construction cannot fail with valid inputs
	}
	return buf.Bytes()
}
