package warehouse

import "context"

// NoopCatalog is a no-op implementation for testing and wiring defaults.
type NoopCatalog struct{}

// NewNoopCatalog creates a new no-op catalog.
func NewNoopCatalog() *NoopCatalog {
	return &NoopCatalog{}
}

// Query returns no rows.
func (n *NoopCatalog) Query(_ context.Context, _ string) ([]Row, error) {
	return []Row{}, nil
}

// ListDatasets returns no datasets.
func (n *NoopCatalog) ListDatasets(_ context.Context) ([]DatasetMeta, error) {
	return []DatasetMeta{}, nil
}

// DatasetMetadata returns ErrNotFound.
func (n *NoopCatalog) DatasetMetadata(_ context.Context, _ string) (*DatasetMeta, error) {
	return nil, ErrNotFound
}

// ListTables returns no tables.
func (n *NoopCatalog) ListTables(_ context.Context, _ string) ([]string, error) {
	return []string{}, nil
}

// TableMetadata returns ErrNotFound.
func (n *NoopCatalog) TableMetadata(_ context.Context, _, _ string) (*TableMeta, error) {
	return nil, ErrNotFound
}

// ListJobs returns no jobs.
func (n *NoopCatalog) ListJobs(_ context.Context, _ int) ([]JobRecord, error) {
	return []JobRecord{}, nil
}

// Close does nothing.
func (n *NoopCatalog) Close() error {
	return nil
}

// Verify interface compliance.
var _ Catalog = (*NoopCatalog)(nil)
