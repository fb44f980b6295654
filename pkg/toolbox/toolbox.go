// Package toolbox provides read-only metadata operations against a
// warehouse catalog.
package toolbox

import (
	"context"
	"fmt"
	"time"

	"github.com/PaddyAlton/bigquery-mcp/pkg/warehouse"
)

// defaultHistoryLimit bounds the query-history listing when no limit is
// configured.
const defaultHistoryLimit = 20

// Table is an ordered tabular result: a fixed column set plus one row per
// matching entity.
type Table struct {
	Columns []string
	Rows    []warehouse.Row
}

// Toolbox translates each supported metadata question into one call
// sequence against the warehouse catalog. It is stateless per call beyond
// the catalog handle and the validated region, both read-only after
// construction.
type Toolbox struct {
	catalog warehouse.Catalog
	region  Region
}

// New creates a Toolbox for the given region. The region is validated
// against the fixed enumeration before any templated query string can be
// built from it.
func New(catalog warehouse.Catalog, region string) (*Toolbox, error) {
	parsed, err := ParseRegion(region)
	if err != nil {
		return nil, err
	}
	if catalog == nil {
		return nil, fmt.Errorf("warehouse catalog is required")
	}
	return &Toolbox{catalog: catalog, region: parsed}, nil
}

// Region returns the validated region.
func (t *Toolbox) Region() Region {
	return t.region
}

// DatasetIDs returns the identifiers of all datasets visible to the
// credentials in use.
func (t *Toolbox) DatasetIDs(ctx context.Context) (Table, error) {
	datasets, err := t.catalog.ListDatasets(ctx)
	if err != nil {
		return Table{}, fmt.Errorf("listing datasets: %w", err)
	}

	table := Table{Columns: []string{"dataset_id"}}
	for _, ds := range datasets {
		table.Rows = append(table.Rows, warehouse.Row{"dataset_id": ds.ID})
	}
	return table, nil
}

// AllDatasetDescriptions returns all datasets carrying descriptions in the
// configured region, via a templated catalog query.
func (t *Toolbox) AllDatasetDescriptions(ctx context.Context) (Table, error) {
	sql, err := renderQuery("datasets", struct{ Region Region }{t.region})
	if err != nil {
		return Table{}, err
	}

	rows, err := t.catalog.Query(ctx, sql)
	if err != nil {
		return Table{}, fmt.Errorf("querying dataset descriptions: %w", err)
	}

	return Table{
		Columns: []string{"dataset", "description", "created", "last_modified", "location"},
		Rows:    rows,
	}, nil
}

// DatasetDetails returns full metadata for exactly one dataset.
func (t *Toolbox) DatasetDetails(ctx context.Context, datasetID string) (*warehouse.DatasetMeta, error) {
	details, err := t.catalog.DatasetMetadata(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	return details, nil
}

// RelationDescriptions returns the relations (tables, views, etc.) in a
// dataset that carry a description.
func (t *Toolbox) RelationDescriptions(ctx context.Context, datasetID string) (Table, error) {
	tables, err := t.catalog.ListTables(ctx, datasetID)
	if err != nil {
		return Table{}, err
	}

	result := Table{
		Columns: []string{"relation", "description", "relation_type", "created_at", "last_modified"},
	}
	for _, tableID := range tables {
		relation, err := t.catalog.TableMetadata(ctx, datasetID, tableID)
		if err != nil {
			return Table{}, err
		}
		if relation.Description == "" {
			continue
		}
		result.Rows = append(result.Rows, warehouse.Row{
			"relation":      relation.ID,
			"description":   relation.Description,
			"relation_type": relation.Type,
			"created_at":    relation.Created.Format(time.RFC3339),
			"last_modified": relation.Modified.Format(time.RFC3339),
		})
	}
	return result, nil
}

// ColumnDescriptions returns the described columns of a relation, including
// nested fields, as flattened dot-joined paths. Entry order is pre-order
// depth-first, stable with respect to the source schema ordering.
func (t *Toolbox) ColumnDescriptions(ctx context.Context, datasetID, relationID string) (Table, error) {
	relation, err := t.catalog.TableMetadata(ctx, datasetID, relationID)
	if err != nil {
		return Table{}, err
	}

	result := Table{
		Columns: []string{"column", "field_path", "description", "data_type"},
	}
	for _, entry := range FlattenSchema(relation.Schema) {
		result.Rows = append(result.Rows, warehouse.Row{
			"column":      entry.Column(),
			"field_path":  entry.FieldPath,
			"description": entry.Description,
			"data_type":   entry.DataType,
		})
	}
	return result, nil
}

// QueryHistory returns up to limit of the most recent query jobs, newest
// first. A non-positive limit falls back to the default.
func (t *Toolbox) QueryHistory(ctx context.Context, limit int) (Table, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	jobs, err := t.catalog.ListJobs(ctx, limit)
	if err != nil {
		return Table{}, fmt.Errorf("listing query history: %w", err)
	}

	result := Table{
		Columns: []string{"job_id", "creation_time", "query", "user_email", "state", "statement_type"},
	}
	for _, job := range jobs {
		result.Rows = append(result.Rows, warehouse.Row{
			"job_id":         job.JobID,
			"creation_time":  job.Created.Format(time.RFC3339),
			"query":          job.Query,
			"user_email":     job.UserEmail,
			"state":          job.State,
			"statement_type": job.StatementType,
		})
	}
	return result, nil
}
