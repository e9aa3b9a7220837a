package forms

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"pdfstamp/stamping"
)

// LoadValues reads field values, either a mapping
//
//	first_name: jeff
//	branch: Army
//
// or a list of name/value pairs
//
//	- name: first_name
//	  value: jeff
//
// Order is kept, so a repeated name resolves to its last value.
func LoadValues(r io.Reader) ([]stamping.Field, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to parse values")
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.MappingNode:
		fields := make([]stamping.Field, 0, len(root.Content)/2)
		for i := 0; i+1 < len(root.Content); i += 2 {
			key, value := root.Content[i], root.Content[i+1]
			if value.Kind != yaml.ScalarNode {
				return nil, errors.Errorf("line %d: value of %q is not a scalar", value.Line, key.Value)
			}
			fields = append(fields, stamping.Field{Name: key.Value, Value: scalar(value)})
		}
		return fields, nil
	case yaml.SequenceNode:
		var pairs []struct {
			Name  string    `yaml:"name"`
			Value yaml.Node `yaml:"value"`
		}
		if err := root.Decode(&pairs); err != nil {
			return nil, errors.Wrap(err, "failed to decode values")
		}
		fields := make([]stamping.Field, 0, len(pairs))
		for i, p := range pairs {
			if p.Name == "" {
				return nil, errors.Errorf("value #%d has no name", i+1)
			}
			if p.Value.Kind != 0 && p.Value.Kind != yaml.ScalarNode {
				return nil, errors.Errorf("line %d: value of %q is not a scalar", p.Value.Line, p.Name)
			}
			fields = append(fields, stamping.Field{Name: p.Name, Value: scalar(&p.Value)})
		}
		return fields, nil
	}
	return nil, errors.Errorf("line %d: values must be a mapping or a list", root.Line)
}

// ParseAssignments turns "name=value" pairs into fields.
func ParseAssignments(assignments []string) ([]stamping.Field, error) {
	fields := make([]stamping.Field, 0, len(assignments))
	for _, a := range assignments {
		name, value, ok := strings.Cut(a, "=")
		if !ok || name == "" {
			return nil, errors.Errorf("invalid assignment %q, expected name=value", a)
		}
		fields = append(fields, stamping.Field{Name: name, Value: value})
	}
	return fields, nil
}

func scalar(n *yaml.Node) string {
	if n.Tag == "!!null" {
		return ""
	}
	return n.Value
}
