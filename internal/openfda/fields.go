package openfda

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fields.yaml
var fieldsYAML []byte

// Field describes one searchable field of an endpoint
type Field struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

type fieldSet struct {
	Common []Field `yaml:"common"`
	Extra  []Field `yaml:"extra"`
}

// Field categories accepted by Fields
const (
	FieldsCommon = "common"
	FieldsAll    = "all"
)

var fieldDefinitions = mustLoadFields(fieldsYAML)

func mustLoadFields(data []byte) map[string]fieldSet {
	defs := make(map[string]fieldSet)
	if err := yaml.Unmarshal(data, &defs); err != nil {
		panic(fmt.Sprintf("openfda: invalid embedded field definitions: %v", err))
	}
	return defs
}

// Fields returns the field definitions of an endpoint. category "common"
// yields the frequently used subset; "all" appends the remaining fields,
// with later definitions replacing earlier ones of the same name.
func Fields(endpoint, category string) []Field {
	set, ok := fieldDefinitions[endpoint]
	if !ok {
		return nil
	}
	if category != FieldsAll {
		return set.Common
	}

	merged := make([]Field, 0, len(set.Common)+len(set.Extra))
	index := make(map[string]int, cap(merged))
	for _, f := range append(append([]Field{}, set.Common...), set.Extra...) {
		if i, seen := index[f.Name]; seen {
			merged[i] = f
			continue
		}
		index[f.Name] = len(merged)
		merged = append(merged, f)
	}
	return merged
}

// FieldsList renders fields for the list_searchable_fields tool
func FieldsList(endpoint, category string) string {
	fields := Fields(endpoint, category)
	if len(fields) == 0 {
		return fmt.Sprintf("No field definitions available for %s.", endpoint)
	}

	lines := []string{fmt.Sprintf("Searchable fields for %s (%s):\n", endpoint, category)}
	for _, f := range fields {
		lines = append(lines, fmt.Sprintf("  %s (%s): %s", f.Name, fieldType(f), f.Description))
	}
	return strings.Join(lines, "\n")
}

// FieldsText renders the full field reference of an endpoint as markdown
func FieldsText(endpoint string) string {
	fields := Fields(endpoint, FieldsAll)
	if len(fields) == 0 {
		return fmt.Sprintf("No field definitions available for %s.", endpoint)
	}

	lines := []string{fmt.Sprintf("# Fields for %s\n", endpoint)}
	for _, f := range fields {
		lines = append(lines, fmt.Sprintf("- **%s** (%s): %s", f.Name, fieldType(f), f.Description))
	}
	return strings.Join(lines, "\n")
}

func fieldType(f Field) string {
	if f.Type == "" {
		return "string"
	}
	return f.Type
}
