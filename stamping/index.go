package stamping

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/pkg/errors"
)

// pageIndex maps object numbers of pages and of annotations listed in a
// page's /Annots to 0-based page indices.
type pageIndex struct {
	byPage  map[int]int
	byAnnot map[int]int
	count   int
}

func (p *pageIndex) of(objNr int, widget types.Dict) int {
	if page, ok := p.byAnnot[objNr]; ok {
		return page
	}
	if o, found := widget.Find("P"); found {
		if page, ok := p.byPage[objectNr(o)]; ok {
			return page
		}
	}
	return -1
}

// fieldScope carries the attributes a field inherits from its ancestors.
type fieldScope struct {
	fullName  string
	fieldType string
	flags     int
}

type widgetRef struct {
	objNr int
	dict  types.Dict
}

func (d *Document) index() error {
	pages, err := d.indexPages()
	if err != nil {
		return err
	}

	acroForm, err := d.acroForm()
	if err != nil || acroForm == nil {
		return err
	}
	o, found := acroForm.Find("Fields")
	if !found {
		return nil
	}
	fields, err := d.ctx.DereferenceArray(o)
	if err != nil {
		return errors.Wrap(err, "dereference AcroForm Fields failed")
	}
	for _, f := range fields {
		if err := d.walkField(f, fieldScope{}, 0, pages); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) indexPages() (*pageIndex, error) {
	root, err := d.ctx.Catalog()
	if err != nil {
		return nil, err
	}
	o, found := root.Find("Pages")
	if !found {
		return nil, errors.New("catalog has no Pages")
	}
	pages := &pageIndex{
		byPage:  make(map[int]int),
		byAnnot: make(map[int]int),
	}
	if err := d.walkPages(o, pages, 0); err != nil {
		return nil, err
	}
	return pages, nil
}

func (d *Document) walkPages(o types.Object, pages *pageIndex, depth int) error {
	if depth > maxTreeDepth {
		return errors.Errorf("page tree deeper than %d", maxTreeDepth)
	}
	dict, err := d.ctx.DereferenceDict(o)
	if err != nil {
		return errors.Wrap(err, "dereference page tree node failed")
	}
	if dict == nil {
		return nil
	}

	if kids, found := dict.Find("Kids"); found {
		arr, err := d.ctx.DereferenceArray(kids)
		if err != nil {
			return errors.Wrap(err, "dereference page tree Kids failed")
		}
		for _, kid := range arr {
			if err := d.walkPages(kid, pages, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	page := pages.count
	pages.count++
	pages.byPage[objectNr(o)] = page

	annots, found := dict.Find("Annots")
	if !found {
		return nil
	}
	arr, err := d.ctx.DereferenceArray(annots)
	if err != nil {
		return errors.Wrapf(err, "dereference Annots of page %d failed", page)
	}
	for _, a := range arr {
		if nr := objectNr(a); nr >= 0 {
			pages.byAnnot[nr] = page
		}
	}
	return nil
}

// walkField descends the field tree. Kids carrying /T are fields of their
// own, kids without are the widget annotations of the current field.
func (d *Document) walkField(o types.Object, parent fieldScope, depth int, pages *pageIndex) error {
	if depth > maxTreeDepth {
		return errors.Errorf("field tree deeper than %d", maxTreeDepth)
	}
	dict, err := d.ctx.DereferenceDict(o)
	if err != nil {
		return errors.Wrap(err, "dereference form field failed")
	}
	if dict == nil {
		return nil
	}

	name, err := d.textEntry(dict, "T")
	if err != nil {
		return errors.Wrap(err, "Decode T attribute of form field failed")
	}
	scope := parent
	if name != "" {
		scope.fullName = qualifiedName(parent.fullName, name)
	}
	if ft := dict.NameEntry("FT"); ft != nil {
		scope.fieldType = *ft
	}
	if ff, found := dict.Find("Ff"); found {
		if flags, err := d.ctx.DereferenceInteger(ff); err == nil && flags != nil {
			scope.flags = flags.Value()
		}
	}

	var widgets []widgetRef
	if kids, found := dict.Find("Kids"); found {
		arr, err := d.ctx.DereferenceArray(kids)
		if err != nil {
			return errors.Wrapf(err, "dereference Kids of %s failed", scope.fullName)
		}
		for _, kid := range arr {
			kidDict, err := d.ctx.DereferenceDict(kid)
			if err != nil {
				return errors.Wrapf(err, "dereference kid of %s failed", scope.fullName)
			}
			if kidDict == nil {
				continue
			}
			if _, isField := kidDict.Find("T"); isField {
				if err := d.walkField(kid, scope, depth+1, pages); err != nil {
					return err
				}
				continue
			}
			widgets = append(widgets, widgetRef{objNr: objectNr(kid), dict: kidDict})
		}
		if len(widgets) == 0 {
			return nil
		}
	} else if isWidget(dict) {
		widgets = append(widgets, widgetRef{objNr: objectNr(o), dict: dict})
	}

	if name == "" {
		// a widget without a name of its own is addressed through its parent
		return nil
	}

	field := &FormField{
		ObjectNr:  objectNr(o),
		Name:      name,
		FullName:  scope.fullName,
		Type:      scope.fieldType,
		Flags:     scope.flags,
		PageIndex: -1,
		Dict:      dict,
	}
	for _, w := range widgets {
		field.Widgets = append(field.Widgets, w.dict)
		if field.PageIndex < 0 {
			field.PageIndex = pages.of(w.objNr, w.dict)
		}
		if field.Rect == nil {
			field.Rect = d.rect(w.dict)
		}
	}
	d.register(field)
	return nil
}

func (d *Document) register(f *FormField) {
	d.fields = append(d.fields, f)
	if f.ObjectNr >= 0 {
		d.byObjNr[f.ObjectNr] = f
	}
	d.byName[f.Name] = append(d.byName[f.Name], f)
	if f.FullName != f.Name {
		d.byName[f.FullName] = append(d.byName[f.FullName], f)
	}
}

func (d *Document) rect(widget types.Dict) *types.Rectangle {
	o, found := widget.Find("Rect")
	if !found {
		return nil
	}
	arr, err := d.ctx.DereferenceArray(o)
	if err != nil || len(arr) != 4 {
		return nil
	}
	bb, err := d.ctx.RectForArray(arr)
	if err != nil {
		d.logger.Debug("invalid widget rectangle", "error", err)
		return nil
	}
	return bb
}

func isWidget(dict types.Dict) bool {
	subtype := dict.NameEntry("Subtype")
	return subtype != nil && *subtype == "Widget"
}

func qualifiedName(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// objectNr returns the object number of an indirect reference, -1 for
// direct objects.
func objectNr(o types.Object) int {
	switch ref := o.(type) {
	case types.IndirectRef:
		return ref.ObjectNumber.Value()
	case *types.IndirectRef:
		return ref.ObjectNumber.Value()
	}
	return -1
}
