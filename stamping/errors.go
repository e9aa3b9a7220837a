package stamping

import (
	"fmt"
)

// TemplateError reports a template that could not be loaded as a form.
type TemplateError struct {
	Err error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("invalid template: %v", e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// WidgetNotFoundError reports a locator naming a widget the document lacks,
// or a radio group option none of the group's widgets carries.
type WidgetNotFoundError struct {
	WidgetID  string
	PageIndex int
	Option    string
}

func (e *WidgetNotFoundError) Error() string {
	if e.Option != "" {
		return fmt.Sprintf("widget %q has no option %q on page %d", e.WidgetID, e.Option, e.PageIndex)
	}
	return fmt.Sprintf("widget %q not found on page %d", e.WidgetID, e.PageIndex)
}

// WidgetTypeError reports a widget whose field type does not fit the
// locator mode, e.g. text written into a checkbox.
type WidgetTypeError struct {
	WidgetID string
	Type     string
	Want     string
}

func (e *WidgetTypeError) Error() string {
	return fmt.Sprintf("type of widget %q is %s (expected %s)", e.WidgetID, e.Type, e.Want)
}

// ValueMappingError reports a value missing from an indexed locator's table.
// It is only raised by a strict Stamper.
type ValueMappingError struct {
	FieldName string
	Value     string
}

func (e *ValueMappingError) Error() string {
	return fmt.Sprintf("field %q: no widget mapped for value %q", e.FieldName, e.Value)
}

// LocatorError reports a malformed FieldLocator.
type LocatorError struct {
	FieldName string
	WidgetID  string
	Reason    string
}

func (e *LocatorError) Error() string {
	return fmt.Sprintf("invalid locator for field %q: %s", e.FieldName, e.Reason)
}

// IOError reports a failure reading the template or writing the output.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
