package stamping

// Field is one logical answer to be placed on a form.
type Field struct {
	Name  string
	Value string
}

// FieldLocator describes where the value of the field named FieldName is
// written.
//
// With WidgetID set the value is written as text into that widget. With
// ValueToWidgetID set instead, the value selects the widget to activate, e.g.
// {"Army": "ARMY[0]"} checks ARMY[0] when the value is "Army".
//
// PageIndex is 0-based and only matters when several widgets share WidgetID.
type FieldLocator struct {
	WidgetID        string
	FieldName       string
	PageIndex       int
	ValueToWidgetID map[string]string
}

// Indexed reports whether the locator resolves its widget through the
// value table.
func (l FieldLocator) Indexed() bool {
	return l.WidgetID == "" && l.ValueToWidgetID != nil
}

// Validate checks that exactly one of WidgetID and ValueToWidgetID is set.
func (l FieldLocator) Validate() error {
	switch {
	case l.FieldName == "":
		return &LocatorError{WidgetID: l.WidgetID, Reason: "empty field name"}
	case l.PageIndex < 0:
		return &LocatorError{FieldName: l.FieldName, WidgetID: l.WidgetID, Reason: "negative page index"}
	case l.WidgetID != "" && l.ValueToWidgetID != nil:
		return &LocatorError{FieldName: l.FieldName, WidgetID: l.WidgetID, Reason: "both widget id and value table set"}
	case l.WidgetID == "" && l.ValueToWidgetID == nil:
		return &LocatorError{FieldName: l.FieldName, Reason: "neither widget id nor value table set"}
	}
	for value, id := range l.ValueToWidgetID {
		if id == "" {
			return &LocatorError{FieldName: l.FieldName, Reason: "empty widget id for value " + value}
		}
	}
	return nil
}

// fieldValues indexes fields by name. Later fields win.
func fieldValues(fields []Field) map[string]string {
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		values[f.Name] = f.Value
	}
	return values
}
