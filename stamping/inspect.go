package stamping

import (
	"io"
	"sort"

	"github.com/pkg/errors"
)

// FieldInfo describes a form field and its current content.
type FieldInfo struct {
	ObjectNr  int
	Name      string
	FullName  string
	Type      string
	PageIndex int
	// Value is the text of a text or choice field.
	Value string
	// State is the appearance state of a button, "Off" when unchecked.
	State    string
	ReadOnly bool
}

// ReadFields lists the form fields of a PDF, ordered by page and name.
func ReadFields(r io.Reader, opts ...Option) ([]FieldInfo, error) {
	doc, err := Load(r, opts...)
	if err != nil {
		return nil, err
	}
	return doc.Info()
}

// Info describes the fields of the document, ordered by page and name.
func (d *Document) Info() ([]FieldInfo, error) {
	infos := make([]FieldInfo, 0, len(d.fields))
	for _, f := range d.fields {
		info := FieldInfo{
			ObjectNr:  f.ObjectNr,
			Name:      f.Name,
			FullName:  f.FullName,
			Type:      f.Type,
			PageIndex: f.PageIndex,
			ReadOnly:  f.Flags&flagReadOnly != 0,
		}
		switch f.Type {
		case "Btn":
			info.State = d.state(f)
		case "Tx", "Ch":
			value, err := d.textEntry(f.Dict, "V")
			if err != nil {
				return nil, errors.Wrapf(err, "decode value of %s failed", f.FullName)
			}
			info.Value = value
		}
		infos = append(infos, info)
	}

	sort.SliceStable(infos, func(i, j int) bool {
		if infos[i].PageIndex != infos[j].PageIndex {
			return infos[i].PageIndex < infos[j].PageIndex
		}
		return infos[i].FullName < infos[j].FullName
	})
	return infos, nil
}

func (d *Document) state(f *FormField) string {
	for _, w := range f.Widgets {
		if as := w.NameEntry("AS"); as != nil && *as != "Off" {
			return *as
		}
	}
	if v := f.Dict.NameEntry("V"); v != nil {
		return *v
	}
	return "Off"
}
