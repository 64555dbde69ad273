package document

import (
	"errors"
	"fmt"

	"github.com/fabtools/inchify/geo"
	"github.com/fabtools/inchify/object"
)

type inheritedProps struct {
	mediaBox  *geo.Rect
	rotate    *int
	resources *object.Dict
}

// collectPages flattens the page tree into document order, applying
// inherited attributes (MediaBox, Rotate, Resources) on the way down.
func (d *Document) collectPages() error {
	rootObj, ok := d.Trailer.Get("Root")
	if !ok {
		return errors.New("trailer missing Root")
	}
	catalog := d.ResolveDict(rootObj)
	if catalog == nil {
		return errors.New("catalog is not a dictionary")
	}
	pagesObj, ok := catalog.Get("Pages")
	if !ok {
		return errors.New("catalog missing Pages")
	}
	if err := d.walkPageTree(pagesObj, inheritedProps{}, 0); err != nil {
		return err
	}
	if len(d.pages) == 0 {
		return errors.New("document has no pages")
	}
	return nil
}

func (d *Document) walkPageTree(obj object.Object, inherited inheritedProps, depth int) error {
	if depth > 64 {
		return errors.New("page tree too deep")
	}
	var ref object.Ref
	if r, ok := obj.(object.Reference); ok {
		ref = r.R
	}
	dict := d.ResolveDict(obj)
	if dict == nil {
		return fmt.Errorf("page tree node is not a dictionary")
	}

	next := inherited
	if mb := d.rectFromDict(dict, "MediaBox"); mb != nil {
		next.mediaBox = mb
	}
	if rotObj, ok := dict.Get("Rotate"); ok {
		if n, ok := d.Resolve(rotObj).(object.Number); ok {
			r := int(n.Int())
			next.rotate = &r
		}
	}
	if resObj, ok := dict.Get("Resources"); ok {
		if res := d.ResolveDict(resObj); res != nil {
			next.resources = res
		}
	}

	typ, _ := dict.Name("Type")
	_, hasKids := dict.Get("Kids")
	if typ == "Page" || (typ == "" && !hasKids) {
		page := &Page{
			doc:       d,
			ref:       ref,
			dict:      dict,
			index:     len(d.pages),
			MediaBox:  geo.Rect{URX: 612, URY: 792},
			resources: next.resources,
		}
		if next.mediaBox != nil {
			page.MediaBox = *next.mediaBox
		}
		if next.rotate != nil {
			page.Rotate = ((*next.rotate)%360 + 360) % 360
		}
		if page.resources == nil {
			page.resources = object.NewDict()
		}
		d.pages = append(d.pages, page)
		return nil
	}

	kidsObj, ok := dict.Get("Kids")
	if !ok {
		return errors.New("pages node missing Kids")
	}
	kids, ok := d.Resolve(kidsObj).(*object.Array)
	if !ok {
		return errors.New("Kids is not an array")
	}
	for _, kid := range kids.Items {
		if err := d.walkPageTree(kid, next, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) rectFromDict(dict *object.Dict, key string) *geo.Rect {
	obj, ok := dict.Get(key)
	if !ok {
		return nil
	}
	arr, ok := d.Resolve(obj).(*object.Array)
	if !ok || arr.Len() < 4 {
		return nil
	}
	vals := make([]float64, 4)
	for i := 0; i < 4; i++ {
		n, ok := d.Resolve(arr.Items[i]).(object.Number)
		if !ok {
			return nil
		}
		vals[i] = n.Float()
	}
	r := geo.Rect{LLX: vals[0], LLY: vals[1], URX: vals[2], URY: vals[3]}
	if r.LLX > r.URX {
		r.LLX, r.URX = r.URX, r.LLX
	}
	if r.LLY > r.URY {
		r.LLY, r.URY = r.URY, r.LLY
	}
	return &r
}
