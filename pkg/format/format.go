// Package format renders tabular metadata rows as delimited, human and
// LLM-readable text blocks.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/PaddyAlton/bigquery-mcp/pkg/warehouse"
)

const (
	// reportDelimiter separates entries within a report.
	reportDelimiter = "====="

	// blockDelimiter separates the identity lines of a block from its
	// description.
	blockDelimiter = "-----"

	// emptyBody is the report body when no rows matched. This is defined
	// behavior, not an error.
	emptyBody = "NO INFORMATION"
)

// JoinEntries joins already-formatted entries into a single report with a
// header. An empty sequence renders the NO INFORMATION sentinel so the
// report always has exactly one body section.
func JoinEntries(entries []string, header string) string {
	body := strings.Join(entries, "\n"+reportDelimiter+"\n")
	if body == "" {
		body = emptyBody
	}
	return header + "\n" + reportDelimiter + "\n" + body + "\n" + reportDelimiter
}

// value renders one named field of a row in its default textual form.
// Missing or nil values render literally; this is intentional passthrough,
// not a rendering error.
func value(row warehouse.Row, key string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return "None"
	}
	return fmt.Sprint(v)
}

// Dataset formats a result row representing a dataset with a description.
func Dataset(row warehouse.Row) string {
	return strings.Join([]string{
		"Name: " + value(row, "dataset"),
		blockDelimiter,
		"Description: " + value(row, "description"),
	}, "\n")
}

// DatasetObject formats a full dataset metadata record.
func DatasetObject(ds *warehouse.DatasetMeta) string {
	description := ds.Description
	if description == "" {
		description = "None"
	}
	return strings.Join([]string{
		"Name: " + ds.ID,
		"Created: " + ds.Created.Format(time.RFC3339),
		"Last modified: " + ds.Modified.Format(time.RFC3339),
		blockDelimiter,
		"Description: " + description,
	}, "\n")
}

// Relation formats a result row representing a relation (table, view, etc.).
func Relation(row warehouse.Row) string {
	return strings.Join([]string{
		"Name: " + value(row, "relation"),
		"Type: " + value(row, "relation_type"),
		"Created: " + value(row, "created_at"),
		"Last modified: " + value(row, "last_modified"),
		blockDelimiter,
		"Description: " + value(row, "description"),
	}, "\n")
}

// Column formats a result row representing a column or nested field.
func Column(row warehouse.Row) string {
	return strings.Join([]string{
		"Name: " + value(row, "column"),
		"Field path: " + value(row, "field_path"),
		"Data type: " + value(row, "data_type"),
		blockDelimiter,
		"Description: " + value(row, "description"),
	}, "\n")
}

// QueryHistory formats a result row representing a query-history entry.
func QueryHistory(row warehouse.Row) string {
	return strings.Join([]string{
		"Job ID: " + value(row, "job_id"),
		"Created at: " + value(row, "creation_time"),
		blockDelimiter,
		"Query: " + value(row, "query"),
	}, "\n")
}
