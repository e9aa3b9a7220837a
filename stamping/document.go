package stamping

import (
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

const (
	flagReadOnly = 1

	// Used when a button widget carries no appearance for its on state.
	defaultOnState = "Yes"

	maxTreeDepth = 64
)

// FormField is a terminal AcroForm field and the widget annotations it is
// displayed with. For a field merged with its only widget, Dict and
// Widgets[0] are the same dictionary.
type FormField struct {
	ObjectNr int
	// Name is the partial name (/T), FullName the dot separated
	// qualified name.
	Name      string
	FullName  string
	Type      string
	Flags     int
	PageIndex int
	Rect      *types.Rectangle
	Dict      types.Dict
	Widgets   []types.Dict
}

// Document is a loaded form template. It is not safe for concurrent use.
type Document struct {
	ctx     *model.Context
	logger  *slog.Logger
	fields  []*FormField
	byObjNr map[int]*FormField
	byName  map[string][]*FormField
}

// Load reads a form template with a Stamper configured by opts.
func Load(r io.Reader, opts ...Option) (*Document, error) {
	return New(opts...).Load(r)
}

func newDocument(ctx *model.Context, logger *slog.Logger) (*Document, error) {
	d := &Document{
		ctx:     ctx,
		logger:  logger,
		byObjNr: make(map[int]*FormField),
		byName:  make(map[string][]*FormField),
	}
	if err := d.index(); err != nil {
		return nil, err
	}
	return d, nil
}

// PageCount returns the number of pages of the document.
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// Fields returns the terminal form fields in field tree order.
func (d *Document) Fields() []*FormField {
	return d.fields
}

// Lookup returns the field whose partial or qualified name is id. When
// several fields share the name, the one displayed on pageIndex wins.
// An id of the form "#302" addresses the field by object number, as printed
// by LabelFields. Other ids starting with "#" are names.
func (d *Document) Lookup(id string, pageIndex int) (*FormField, error) {
	if strings.HasPrefix(id, "#") {
		// names like "#subform[0]" are not object numbers
		if objNr, err := strconv.Atoi(id[1:]); err == nil {
			f, ok := d.byObjNr[objNr]
			if !ok {
				return nil, &WidgetNotFoundError{WidgetID: id, PageIndex: pageIndex}
			}
			return f, nil
		}
	}

	candidates := d.byName[id]
	switch len(candidates) {
	case 0:
		return nil, &WidgetNotFoundError{WidgetID: id, PageIndex: pageIndex}
	case 1:
		f := candidates[0]
		if f.PageIndex >= 0 && f.PageIndex != pageIndex {
			d.logger.Debug("widget found on another page", "widget", id, "page", f.PageIndex, "want", pageIndex)
		}
		return f, nil
	}
	for _, f := range candidates {
		if f.PageIndex == pageIndex {
			return f, nil
		}
	}
	return nil, &WidgetNotFoundError{WidgetID: id, PageIndex: pageIndex}
}

// SetText fills a text field.
func (d *Document) SetText(f *FormField, value string, setReadOnly bool) error {
	if f.Type != "Tx" {
		return &WidgetTypeError{WidgetID: f.FullName, Type: f.Type, Want: "Tx"}
	}
	f.Dict["V"] = types.NewHexLiteral([]byte(types.EncodeUTF16String(norm.NFC.String(value))))

	if setReadOnly {
		d.setReadOnly(f)
	}
	return nil
}

// Check switches a button field on. A checkbox is switched to the first
// non-Off appearance name under /AP /N of its widgets. A radio group, whose
// widgets carry different on states, selects the widget whose on state is
// option and fails with a WidgetNotFoundError when none does.
func (d *Document) Check(f *FormField, option string, setReadOnly bool) error {
	if f.Type != "Btn" {
		return &WidgetTypeError{WidgetID: f.FullName, Type: f.Type, Want: "Btn"}
	}

	on := ""
	distinct := make(map[string]bool)
	states := make([]string, len(f.Widgets))
	for i, w := range f.Widgets {
		state, err := d.onState(w)
		if err != nil {
			return errors.Wrapf(err, "read appearance of %s failed", f.FullName)
		}
		states[i] = state
		if state != "" {
			distinct[state] = true
		}
		if on == "" {
			on = state
		}
	}
	if len(distinct) > 1 {
		if !distinct[option] {
			return &WidgetNotFoundError{WidgetID: f.FullName, PageIndex: f.PageIndex, Option: option}
		}
		on = option
	}
	if on == "" {
		on = defaultOnState
	}

	// the checkbox controls its display style through AS, its options are the keys of AP
	f.Dict["V"] = types.Name(on)
	for i, w := range f.Widgets {
		if states[i] == on || states[i] == "" {
			w["AS"] = types.Name(on)
		} else {
			w["AS"] = types.Name("Off")
		}
	}

	if setReadOnly {
		d.setReadOnly(f)
	}
	return nil
}

func (d *Document) setReadOnly(f *FormField) {
	f.Flags |= flagReadOnly
	f.Dict["Ff"] = types.Integer(f.Flags)
}

// prepareForm asks viewers to regenerate field appearances and drops the
// XFA description, which would otherwise be shown instead of the stamped
// AcroForm values.
func (d *Document) prepareForm() error {
	acroForm, err := d.acroForm()
	if err != nil || acroForm == nil {
		return err
	}
	acroForm["NeedAppearances"] = types.Boolean(true)
	if _, found := acroForm.Find("XFA"); found {
		acroForm.Delete("XFA")
		d.logger.Debug("removed XFA form description")
	}
	return nil
}

// Write serializes the document.
func (d *Document) Write(w io.Writer) error {
	return api.WriteContext(d.ctx, w)
}

func (d *Document) acroForm() (types.Dict, error) {
	root, err := d.ctx.Catalog()
	if err != nil {
		return nil, err
	}
	o, found := root.Find("AcroForm")
	if !found {
		return nil, nil
	}
	acroForm, err := d.ctx.DereferenceDict(o)
	if err != nil {
		return nil, errors.Wrap(err, "dereference AcroForm failed")
	}
	return acroForm, nil
}

func (d *Document) onState(widget types.Dict) (string, error) {
	o, found := widget.Find("AP")
	if !found {
		return "", nil
	}
	ap, err := d.ctx.DereferenceDict(o)
	if err != nil || ap == nil {
		return "", err
	}
	o, found = ap.Find("N")
	if !found {
		return "", nil
	}
	o, err = d.ctx.Dereference(o)
	if err != nil {
		return "", err
	}
	// a single appearance stream means there are no named states
	n, ok := o.(types.Dict)
	if !ok {
		return "", nil
	}
	states := make([]string, 0, len(n))
	for name := range n {
		if name != "Off" {
			states = append(states, name)
		}
	}
	if len(states) == 0 {
		return "", nil
	}
	sort.Strings(states)
	return states[0], nil
}

func (d *Document) textEntry(dict types.Dict, key string) (string, error) {
	o, found := dict.Find(key)
	if !found {
		return "", nil
	}
	o, err := d.ctx.Dereference(o)
	if err != nil {
		return "", err
	}
	switch v := o.(type) {
	case nil:
		return "", nil
	case types.Array:
		// multi select choice values are left empty
		return "", nil
	case types.HexLiteral:
		return types.HexLiteralToString(v)
	case types.StringLiteral:
		return types.StringLiteralToString(v)
	}
	return "", errors.Errorf("%s is neither HexLiteral nor StringLiteral", o)
}
