// Package stamping fills AcroForm templates: it resolves field values
// against field locators, writes them into the form widgets and serializes
// the filled document.
package stamping

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pkg/errors"
)

// Stamper stamps form templates. A Stamper holds no per document state and
// may be used by several goroutines at once.
type Stamper struct {
	strict bool
	lock   bool
	logger *slog.Logger
	conf   *model.Configuration
}

// Option configures a Stamper.
type Option func(*Stamper)

// WithStrict makes an indexed locator whose value has no entry in its table
// fail with a ValueMappingError instead of selecting nothing.
func WithStrict(strict bool) Option {
	return func(s *Stamper) {
		s.strict = strict
	}
}

// WithLock marks every stamped field read-only.
func WithLock(lock bool) Option {
	return func(s *Stamper) {
		s.lock = lock
	}
}

// WithLogger sets the logger. A nil logger discards.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Stamper) {
		if logger == nil {
			logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		s.logger = logger
	}
}

// WithConfiguration sets the pdfcpu configuration templates are read with.
// Every load works on a copy.
func WithConfiguration(conf *model.Configuration) Option {
	return func(s *Stamper) {
		s.conf = conf
	}
}

// New returns a Stamper. By default it is lenient, leaves fields editable
// and logs nothing.
func New(opts ...Option) *Stamper {
	s := &Stamper{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StampPDF stamps template with a default Stamper.
func StampPDF(template io.Reader, fields []Field, locators []FieldLocator, out io.Writer) error {
	return New().Stamp(template, fields, locators, out)
}

// Stamp reads the form template, applies fields through locators and writes
// the filled document to out. Nothing is written to out unless the whole
// document was produced. template and out are closed on return if they
// implement io.Closer.
func (s *Stamper) Stamp(template io.Reader, fields []Field, locators []FieldLocator, out io.Writer) (err error) {
	defer closeStream(out, "close output", &err)
	defer closeStream(template, "close template", &err)

	if err := ValidateLocators(locators); err != nil {
		return err
	}

	doc, err := s.Load(template)
	if err != nil {
		return err
	}
	if err := s.Apply(doc, fields, locators); err != nil {
		return err
	}

	buffer := bytes.NewBuffer(nil)
	if err := doc.Write(buffer); err != nil {
		return errors.Wrap(err, "Write stamped document failed")
	}
	n, err := buffer.WriteTo(out)
	if err != nil {
		return &IOError{Op: "write output", Err: err}
	}
	s.logger.Debug("stamped document written", "bytes", n)
	return nil
}

// Load reads and validates a form template.
func (s *Stamper) Load(template io.Reader) (*Document, error) {
	data, err := io.ReadAll(template)
	if err != nil {
		return nil, &IOError{Op: "read template", Err: err}
	}
	if len(data) == 0 {
		return nil, &TemplateError{Err: errors.New("empty template")}
	}

	ctx, err := api.ReadContext(bytes.NewReader(data), s.configuration())
	if err != nil {
		return nil, &TemplateError{Err: err}
	}
	if err = api.ValidateContext(ctx); err != nil {
		return nil, &TemplateError{Err: err}
	}
	if err = ctx.EnsurePageCount(); err != nil {
		return nil, &TemplateError{Err: err}
	}

	doc, err := newDocument(ctx, s.logger)
	if err != nil {
		return nil, &TemplateError{Err: err}
	}
	s.logger.Debug("template loaded", "pages", ctx.PageCount, "fields", len(doc.fields))
	return doc, nil
}

// Apply stamps fields into an already loaded document. Locators naming a
// field that is absent from fields are skipped, as are fields no locator
// names.
func (s *Stamper) Apply(doc *Document, fields []Field, locators []FieldLocator) error {
	if err := ValidateLocators(locators); err != nil {
		return err
	}

	values := fieldValues(fields)
	located := make(map[string]bool, len(locators))
	stamped := 0
	for _, l := range locators {
		located[l.FieldName] = true
		value, ok := values[l.FieldName]
		if !ok {
			s.logger.Debug("no value for locator", "field", l.FieldName)
			continue
		}
		done, err := s.apply(doc, l, value)
		if err != nil {
			return err
		}
		if done {
			stamped++
		}
	}
	for name := range values {
		if !located[name] {
			s.logger.Debug("no locator for field", "field", name)
		}
	}

	if stamped > 0 {
		if err := doc.prepareForm(); err != nil {
			return errors.Wrap(err, "prepare AcroForm failed")
		}
	}
	s.logger.Info("stamped form", "fields", len(fields), "locators", len(locators), "stamped", stamped)
	return nil
}

func (s *Stamper) apply(doc *Document, l FieldLocator, value string) (bool, error) {
	if !l.Indexed() {
		f, err := doc.Lookup(l.WidgetID, l.PageIndex)
		if err != nil {
			return false, err
		}
		return true, doc.SetText(f, value, s.lock)
	}

	id, ok := l.ValueToWidgetID[value]
	if !ok {
		if s.strict {
			return false, &ValueMappingError{FieldName: l.FieldName, Value: value}
		}
		s.logger.Warn("no widget mapped for value", "field", l.FieldName, "value", value)
		return false, nil
	}
	f, err := doc.Lookup(id, l.PageIndex)
	if err != nil {
		return false, err
	}
	return true, doc.Check(f, value, s.lock)
}

func (s *Stamper) configuration() *model.Configuration {
	if s.conf != nil {
		conf := *s.conf
		return &conf
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// ValidateLocators validates every locator.
func ValidateLocators(locators []FieldLocator) error {
	for _, l := range locators {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func closeStream(stream any, op string, err *error) {
	c, ok := stream.(io.Closer)
	if !ok {
		return
	}
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = &IOError{Op: op, Err: cerr}
	}
}
