package stamping

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldLocatorValidate(t *testing.T) {
	tests := []struct {
		name    string
		locator FieldLocator
		valid   bool
	}{
		{"direct", FieldLocator{WidgetID: "namefirst1[0]", FieldName: "first_name"}, true},
		{"indexed", FieldLocator{FieldName: "branch", ValueToWidgetID: map[string]string{"Army": "ARMY[0]"}}, true},
		{"indexed with empty table", FieldLocator{FieldName: "branch", ValueToWidgetID: map[string]string{}}, true},
		{"both set", FieldLocator{WidgetID: "ARMY[0]", FieldName: "branch", ValueToWidgetID: map[string]string{"Army": "ARMY[0]"}}, false},
		{"neither set", FieldLocator{FieldName: "branch"}, false},
		{"no field name", FieldLocator{WidgetID: "namefirst1[0]"}, false},
		{"negative page", FieldLocator{WidgetID: "namefirst1[0]", FieldName: "first_name", PageIndex: -1}, false},
		{"empty target", FieldLocator{FieldName: "branch", ValueToWidgetID: map[string]string{"Army": ""}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.locator.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			var locErr *LocatorError
			require.True(t, errors.As(err, &locErr), "got %v", err)
		})
	}
}

func TestFieldLocatorIndexed(t *testing.T) {
	assert.False(t, FieldLocator{WidgetID: "namefirst1[0]", FieldName: "first_name"}.Indexed())
	assert.True(t, FieldLocator{FieldName: "branch", ValueToWidgetID: map[string]string{}}.Indexed())
}

func TestFieldValuesLastWriteWins(t *testing.T) {
	values := fieldValues([]Field{
		{Name: "first_name", Value: "jeff"},
		{Name: "branch", Value: "Army"},
		{Name: "first_name", Value: "jane"},
	})
	assert.Equal(t, map[string]string{"first_name": "jane", "branch": "Army"}, values)
}
