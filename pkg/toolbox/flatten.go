package toolbox

import "github.com/PaddyAlton/bigquery-mcp/pkg/warehouse"

// FlattenedField is one described field derived from a schema tree: the
// dot-joined path from root to the field, its description, and its declared
// type.
type FlattenedField struct {
	FieldPath   string
	Description string
	DataType    string
}

// Column returns the grouping key for the entry: the first path segment.
func (f FlattenedField) Column() string {
	for i := 0; i < len(f.FieldPath); i++ {
		if f.FieldPath[i] == '.' {
			return f.FieldPath[:i]
		}
	}
	return f.FieldPath
}

// FlattenSchema walks a schema tree in pre-order and returns one entry per
// field carrying a non-empty description. Ordering is depth-first and stable
// with respect to the source field ordering.
func FlattenSchema(schema []*warehouse.FieldSchema) []FlattenedField {
	var entries []FlattenedField
	for _, field := range schema {
		entries = append(entries, flattenField(field, "")...)
	}
	return entries
}

// flattenField emits the entry for one field, then recurses into its
// children with the full dot-joined path as the new parent prefix.
func flattenField(field *warehouse.FieldSchema, parent string) []FlattenedField {
	fullName := field.Name
	if parent != "" {
		fullName = parent + "." + field.Name
	}

	var entries []FlattenedField
	if field.Description != "" {
		entries = append(entries, FlattenedField{
			FieldPath:   fullName,
			Description: field.Description,
			DataType:    field.Type,
		})
	}

	for _, subfield := range field.Fields {
		entries = append(entries, flattenField(subfield, fullName)...)
	}
	return entries
}
