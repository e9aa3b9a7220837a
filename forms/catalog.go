// Package forms resolves named form templates and the locators that map
// answers onto them.
package forms

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"pdfstamp/stamping"
)

// ErrFormNotFound is returned for a form name missing from the catalog.
var ErrFormNotFound = errors.New("form not found")

// Catalog is a set of forms read from a YAML file.
type Catalog struct {
	forms map[string]*Form
}

// Form is one template and its locators.
type Form struct {
	Name     string    `yaml:"name"`
	Template string    `yaml:"template"`
	Strict   bool      `yaml:"strict"`
	Lock     bool      `yaml:"lock"`
	Locators []Locator `yaml:"locators"`

	dir string
}

// Locator is the file representation of a stamping.FieldLocator.
type Locator struct {
	Widget string            `yaml:"widget"`
	Field  string            `yaml:"field"`
	Page   int               `yaml:"page"`
	Values map[string]string `yaml:"values"`
}

type catalogFile struct {
	Forms []*Form `yaml:"forms"`
}

// LoadCatalog reads a catalog file. Template paths are relative to the
// directory of the file.
func LoadCatalog(path string) (*Catalog, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read catalog file")
	}
	return ParseCatalog(data, filepath.Dir(cleanPath))
}

// ParseCatalog parses catalog YAML, resolving template paths against dir.
func ParseCatalog(data []byte, dir string) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "failed to parse catalog file")
	}

	c := &Catalog{forms: make(map[string]*Form, len(file.Forms))}
	for i, f := range file.Forms {
		if f == nil || f.Name == "" {
			return nil, errors.Errorf("form #%d has no name", i+1)
		}
		if _, dup := c.forms[f.Name]; dup {
			return nil, errors.Errorf("form %q defined twice", f.Name)
		}
		if f.Template == "" {
			return nil, errors.Errorf("form %q has no template", f.Name)
		}
		if err := stamping.ValidateLocators(f.FieldLocators()); err != nil {
			return nil, errors.Wrapf(err, "form %q", f.Name)
		}
		f.dir = dir
		c.forms[f.Name] = f
	}
	return c, nil
}

// Form returns the form called name.
func (c *Catalog) Form(name string) (*Form, error) {
	f, ok := c.forms[name]
	if !ok {
		return nil, errors.Wrapf(ErrFormNotFound, "%q", name)
	}
	return f, nil
}

// Names returns the sorted form names.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.forms))
	for name := range c.forms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TemplatePath returns the path of the template file.
func (f *Form) TemplatePath() string {
	if filepath.IsAbs(f.Template) {
		return filepath.Clean(f.Template)
	}
	return filepath.Join(f.dir, f.Template)
}

// Open opens the template. The caller closes it, unless it is handed to
// stamping.Stamper.Stamp which does.
func (f *Form) Open() (io.ReadCloser, error) {
	file, err := os.Open(f.TemplatePath())
	if err != nil {
		return nil, errors.Wrapf(err, "open template of form %q", f.Name)
	}
	return file, nil
}

// FieldLocators converts the locators of the form.
func (f *Form) FieldLocators() []stamping.FieldLocator {
	locators := make([]stamping.FieldLocator, len(f.Locators))
	for i, l := range f.Locators {
		locators[i] = stamping.FieldLocator{
			WidgetID:        l.Widget,
			FieldName:       l.Field,
			PageIndex:       l.Page,
			ValueToWidgetID: l.Values,
		}
	}
	return locators
}

// Options returns the stamping options the form asks for.
func (f *Form) Options() []stamping.Option {
	return []stamping.Option{
		stamping.WithStrict(f.Strict),
		stamping.WithLock(f.Lock),
	}
}
