// Package testpdf builds small AcroForm documents for tests. Create renders
// pdfcpu form definitions. Form writes the documents pdfcpu does not
// produce: custom on state names, radio groups of unnamed widgets, named
// parent fields, choice values and XFA entries.
package testpdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Kind is the type of a widget.
type Kind int

const (
	Text Kind = iota
	Checkbox
	// Radio widgets have no name of their own and belong to the group
	// named by Parent. OnState is the option they select.
	Radio
	Choice
)

// Widget is a form field merged with its widget annotation.
type Widget struct {
	Name string
	Kind Kind
	Page int
	// Rect is llx lly urx ury. A zero Rect gets a default placement.
	Rect [4]int
	// OnState is the appearance name of a checked checkbox, "1" if empty.
	OnState string
	// Value prefills a text or choice field.
	Value string
	// RawValue is written as /V verbatim and wins over Value.
	RawValue string
	// Parent groups widgets under a non terminal field of that name.
	Parent string
}

// Options tweak the generated document.
type Options struct {
	// XFA adds an XFA entry to the AcroForm.
	XFA bool
}

// Builder writes numbered objects followed by a classic xref table.
type Builder struct {
	objects []string
}

// Reserve allocates an object number to be Set later.
func (b *Builder) Reserve() int {
	b.objects = append(b.objects, "")
	return len(b.objects)
}

// Add appends an object and returns its number.
func (b *Builder) Add(body string) int {
	b.objects = append(b.objects, body)
	return len(b.objects)
}

// Set replaces the body of object nr.
func (b *Builder) Set(nr int, body string) {
	b.objects[nr-1] = body
}

// Bytes renders the document with root as catalog.
func (b *Builder) Bytes(root int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(b.objects))
	for i, body := range b.objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(b.objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(b.objects)+1, root, xref)
	return buf.Bytes()
}

// Stream renders a stream object body.
func Stream(dict, content string) string {
	return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(content), content)
}

// Ref renders an indirect reference.
func Ref(nr int) string {
	return fmt.Sprintf("%d 0 R", nr)
}

// Form returns a document with pageCount letter sized pages carrying the
// given widgets.
func Form(pageCount int, widgets ...Widget) []byte {
	return FormWithOptions(Options{}, pageCount, widgets...)
}

// FormWithOptions is Form with options.
func FormWithOptions(opts Options, pageCount int, widgets ...Widget) []byte {
	b := &Builder{}
	catalog := b.Reserve()
	pages := b.Reserve()
	font := b.Reserve()
	acroForm := b.Reserve()

	pageNrs := make([]int, pageCount)
	for i := range pageNrs {
		pageNrs[i] = b.Reserve()
	}

	var parentOrder []string
	parents := make(map[string]int)
	radioGroups := make(map[string]bool)
	for _, w := range widgets {
		if w.Parent != "" && parents[w.Parent] == 0 {
			parents[w.Parent] = b.Reserve()
			parentOrder = append(parentOrder, w.Parent)
		}
		if w.Kind == Radio {
			radioGroups[w.Parent] = true
		}
	}

	var fields []int
	annots := make([][]int, pageCount)
	kids := make(map[string][]int)
	for i, w := range widgets {
		nr := b.Reserve()
		annots[w.Page] = append(annots[w.Page], nr)
		if w.Parent != "" {
			kids[w.Parent] = append(kids[w.Parent], nr)
		} else {
			fields = append(fields, nr)
		}

		rect := w.Rect
		if rect == [4]int{} {
			y := 700 - 30*i
			rect = [4]int{50, y, 250, y + 20}
			if w.Kind == Checkbox || w.Kind == Radio {
				rect = [4]int{50, y, 62, y + 12}
			}
		}
		entries := []string{
			"/Type /Annot /Subtype /Widget",
			fmt.Sprintf("/Rect [%d %d %d %d]", rect[0], rect[1], rect[2], rect[3]),
			"/F 4",
			"/P " + Ref(pageNrs[w.Page]),
		}
		if w.Kind != Radio {
			entries = append(entries, "/T "+literal(w.Name))
		}
		value := ""
		if w.Value != "" {
			value = "/V " + literal(w.Value)
		}
		if w.RawValue != "" {
			value = "/V " + w.RawValue
		}
		if w.Parent != "" {
			entries = append(entries, "/Parent "+Ref(parents[w.Parent]))
		}

		switch w.Kind {
		case Text:
			entries = append(entries, "/FT /Tx", "/DA (/Helv 10 Tf 0 g)", value)
		case Choice:
			entries = append(entries, "/FT /Ch", "/DA (/Helv 10 Tf 0 g)", value)
		case Checkbox, Radio:
			on := w.OnState
			if on == "" {
				on = "1"
			}
			onAP := b.Add(Stream("/Type /XObject /Subtype /Form /BBox [0 0 12 12]", "0 0 m 12 12 l 0 12 m 12 0 l S"))
			offAP := b.Add(Stream("/Type /XObject /Subtype /Form /BBox [0 0 12 12]", "0 0 12 12 re S"))
			if w.Kind == Checkbox {
				entries = append(entries, "/FT /Btn", "/V /Off")
			}
			entries = append(entries,
				"/AS /Off",
				fmt.Sprintf("/AP << /N << /%s %s /Off %s >> >>", on, Ref(onAP), Ref(offAP)),
			)
		}
		b.Set(nr, "<< "+strings.Join(entries, " ")+" >>")
	}

	for _, name := range parentOrder {
		group := ""
		if radioGroups[name] {
			// radio and no toggle to off
			group = " /FT /Btn /Ff 49152 /V /Off"
		}
		b.Set(parents[name], fmt.Sprintf("<< /T %s /Kids [%s]%s >>", literal(name), refs(kids[name]), group))
		fields = append(fields, parents[name])
	}

	for i, nr := range pageNrs {
		content := b.Add(Stream("", fmt.Sprintf("BT /Helv 12 Tf 72 750 Td (Page %d) Tj ET", i+1)))
		page := fmt.Sprintf("<< /Type /Page /Parent %s /MediaBox [0 0 612 792] /Resources << /Font << /Helv %s >> >> /Contents %s",
			Ref(pages), Ref(font), Ref(content))
		if len(annots[i]) > 0 {
			page += " /Annots [" + refs(annots[i]) + "]"
		}
		b.Set(nr, page+" >>")
	}

	xfa := ""
	if opts.XFA {
		xfa = " /XFA " + Ref(b.Add(Stream("", "<xdp:xdp xmlns:xdp=\"http://ns.adobe.com/xdp/\"></xdp:xdp>")))
	}
	b.Set(font, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	b.Set(acroForm, fmt.Sprintf("<< /Fields [%s] /DR << /Font << /Helv %s >> >> /DA (/Helv 0 Tf 0 g)%s >>", refs(fields), Ref(font), xfa))
	b.Set(pages, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", refs(pageNrs), pageCount))
	b.Set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %s /AcroForm %s >>", Ref(pages), Ref(acroForm)))
	return b.Bytes(catalog)
}

// VeteranForm mirrors the fields of a benefits application: a name field
// and one checkbox per service branch, checked state "1" as in the
// published form.
func VeteranForm() []byte {
	return Form(1,
		Widget{Name: "namefirst1[0]", Kind: Text},
		Widget{Name: "namelast1[0]", Kind: Text},
		Widget{Name: "ARMY[0]", Kind: Checkbox},
		Widget{Name: "NAVY[0]", Kind: Checkbox},
	)
}

// veteranFormJSON is VeteranForm as a pdfcpu form definition. pdfcpu names
// the on state of its checkboxes "Yes".
const veteranFormJSON = `{
	"paper": "A4P",
	"origin": "LowerLeft",
	"pages": {
		"1": {
			"content": {
				"textfield": [
					{"id": "namefirst1[0]", "pos": [50, 700], "width": 200, "font": {"name": "Helvetica", "size": 10}},
					{"id": "namelast1[0]", "pos": [50, 670], "width": 200, "font": {"name": "Helvetica", "size": 10}}
				],
				"checkbox": [
					{"id": "ARMY[0]", "pos": [50, 640], "width": 12},
					{"id": "NAVY[0]", "pos": [50, 610], "width": 12}
				]
			}
		}
	}
}`

// Create renders a pdfcpu JSON form definition.
func Create(definition string) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := api.Create(nil, strings.NewReader(definition), buf, model.NewDefaultConfiguration()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CreatedVeteranForm is VeteranForm rendered by pdfcpu.
func CreatedVeteranForm() ([]byte, error) {
	return Create(veteranFormJSON)
}

func refs(nrs []int) string {
	parts := make([]string, len(nrs))
	for i, nr := range nrs {
		parts[i] = Ref(nr)
	}
	return strings.Join(parts, " ")
}

func literal(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return "(" + r.Replace(s) + ")"
}
