package warehouse

import (
	"context"
	"errors"
)

// ErrNotFound indicates a requested dataset or relation does not exist
// upstream.
var ErrNotFound = errors.New("not found")

// Catalog provides read-only access to a warehouse metadata catalog.
// BigQuery implements this. Future engines can too.
type Catalog interface {
	// Query runs a SQL string against the catalog and returns all rows.
	// Implementations must tag the outgoing job with fixed operational
	// labels for cost attribution.
	Query(ctx context.Context, sql string) ([]Row, error)

	// ListDatasets enumerates the datasets visible to the credentials in use.
	ListDatasets(ctx context.Context) ([]DatasetMeta, error)

	// DatasetMetadata fetches full metadata for one dataset. Returns an
	// error wrapping ErrNotFound when the dataset does not exist.
	DatasetMetadata(ctx context.Context, datasetID string) (*DatasetMeta, error)

	// ListTables enumerates the relation identifiers in a dataset.
	ListTables(ctx context.Context, datasetID string) ([]string, error)

	// TableMetadata fetches full metadata, including the schema tree, for
	// one relation. Returns an error wrapping ErrNotFound when absent.
	TableMetadata(ctx context.Context, datasetID, tableID string) (*TableMeta, error)

	// ListJobs returns up to limit of the most recent query jobs, newest
	// first.
	ListJobs(ctx context.Context, limit int) ([]JobRecord, error)

	// Close releases resources.
	Close() error
}
