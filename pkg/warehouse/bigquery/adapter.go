// Package bigquery provides a BigQuery implementation of the warehouse catalog.
package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	bq "cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/PaddyAlton/bigquery-mcp/pkg/warehouse"
)

// Job labels attached to every query issued through the adapter, for
// downstream cost and usage attribution.
const (
	labelProject = "bigquery-mcp"
	labelCaller  = "ai-agent"
)

// Config holds BigQuery adapter configuration.
type Config struct {
	ProjectID string
	Location  string
}

// Adapter implements warehouse.Catalog using the BigQuery client SDK.
type Adapter struct {
	cfg    Config
	client *bq.Client
}

// New creates a new BigQuery adapter.
func New(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Adapter, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("bigquery project is required")
	}

	client, err := bq.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating bigquery client: %w", err)
	}
	if cfg.Location != "" {
		client.Location = cfg.Location
	}

	return &Adapter{cfg: cfg, client: client}, nil
}

// queryLabels returns the fixed labels attached to every query job.
func queryLabels() map[string]string {
	return map[string]string{
		"project": labelProject,
		"caller":  labelCaller,
	}
}

// Query runs a SQL string and returns all result rows. The outgoing job is
// tagged with the fixed attribution labels.
func (a *Adapter) Query(ctx context.Context, sql string) ([]warehouse.Row, error) {
	q := a.client.Query(sql)
	q.Labels = queryLabels()
	if a.cfg.Location != "" {
		q.Location = a.cfg.Location
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}

	var rows []warehouse.Row
	for {
		var values map[string]bq.Value
		err := it.Next(&values)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading query results: %w", err)
		}

		row := make(warehouse.Row, len(values))
		for name, value := range values {
			row[name] = value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ListDatasets enumerates the datasets visible to the client credentials.
func (a *Adapter) ListDatasets(ctx context.Context) ([]warehouse.DatasetMeta, error) {
	it := a.client.Datasets(ctx)

	var datasets []warehouse.DatasetMeta
	for {
		ds, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing datasets: %w", err)
		}
		datasets = append(datasets, warehouse.DatasetMeta{ID: ds.DatasetID})
	}
	return datasets, nil
}

// DatasetMetadata fetches full metadata for one dataset.
func (a *Adapter) DatasetMetadata(ctx context.Context, datasetID string) (*warehouse.DatasetMeta, error) {
	md, err := a.client.Dataset(datasetID).Metadata(ctx)
	if err != nil {
		return nil, mapError(fmt.Sprintf("dataset %q", datasetID), err)
	}

	return &warehouse.DatasetMeta{
		ID:          datasetID,
		Description: md.Description,
		Location:    md.Location,
		Created:     md.CreationTime,
		Modified:    md.LastModifiedTime,
	}, nil
}

// ListTables enumerates the relation identifiers in a dataset.
func (a *Adapter) ListTables(ctx context.Context, datasetID string) ([]string, error) {
	it := a.client.Dataset(datasetID).Tables(ctx)

	var tables []string
	for {
		table, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, mapError(fmt.Sprintf("listing tables in dataset %q", datasetID), err)
		}
		tables = append(tables, table.TableID)
	}
	return tables, nil
}

// TableMetadata fetches full metadata, including the schema tree, for one
// relation.
func (a *Adapter) TableMetadata(ctx context.Context, datasetID, tableID string) (*warehouse.TableMeta, error) {
	md, err := a.client.Dataset(datasetID).Table(tableID).Metadata(ctx)
	if err != nil {
		return nil, mapError(fmt.Sprintf("table %q.%q", datasetID, tableID), err)
	}

	return &warehouse.TableMeta{
		ID:          tableID,
		Type:        string(md.Type),
		Description: md.Description,
		Created:     md.CreationTime,
		Modified:    md.LastModifiedTime,
		Schema:      convertSchema(md.Schema),
	}, nil
}

// ListJobs returns up to limit of the most recent query jobs across all
// users, newest first.
func (a *Adapter) ListJobs(ctx context.Context, limit int) ([]warehouse.JobRecord, error) {
	it := a.client.Jobs(ctx)
	it.AllUsers = true

	var jobs []warehouse.JobRecord
	for len(jobs) < limit {
		job, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing jobs: %w", err)
		}

		record, ok := jobRecord(job)
		if !ok {
			continue
		}
		jobs = append(jobs, record)
	}
	return jobs, nil
}

// jobRecord converts a job into a JobRecord. Non-query jobs (load, copy,
// extract) are skipped.
func jobRecord(job *bq.Job) (warehouse.JobRecord, bool) {
	config, err := job.Config()
	if err != nil {
		return warehouse.JobRecord{}, false
	}
	queryConfig, ok := config.(*bq.QueryConfig)
	if !ok {
		return warehouse.JobRecord{}, false
	}

	record := warehouse.JobRecord{
		JobID:     job.ID(),
		JobType:   "QUERY",
		UserEmail: job.Email(),
		Query:     queryConfig.Q,
		Location:  job.Location(),
	}

	if status := job.LastStatus(); status != nil {
		record.State = stateName(status.State)
		if status.Statistics != nil {
			record.Created = status.Statistics.CreationTime
			if details, ok := status.Statistics.Details.(*bq.QueryStatistics); ok {
				record.StatementType = details.StatementType
			}
		}
	}
	return record, true
}

// stateName renders a job state as its REST API string form.
func stateName(state bq.State) string {
	switch state {
	case bq.Pending:
		return "PENDING"
	case bq.Running:
		return "RUNNING"
	case bq.Done:
		return "DONE"
	default:
		return "UNSPECIFIED"
	}
}

// convertSchema converts a BigQuery schema into the warehouse schema tree,
// preserving field order.
func convertSchema(schema bq.Schema) []*warehouse.FieldSchema {
	if len(schema) == 0 {
		return nil
	}
	fields := make([]*warehouse.FieldSchema, 0, len(schema))
	for _, field := range schema {
		fields = append(fields, &warehouse.FieldSchema{
			Name:        field.Name,
			Type:        string(field.Type),
			Description: field.Description,
			Fields:      convertSchema(field.Schema),
		})
	}
	return fields
}

// mapError wraps upstream errors, translating HTTP 404 into
// warehouse.ErrNotFound.
func mapError(subject string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return fmt.Errorf("%s: %w", subject, warehouse.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", subject, err)
}

// Close releases the underlying client.
func (a *Adapter) Close() error {
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			return fmt.Errorf("closing bigquery client: %w", err)
		}
	}
	return nil
}

// Verify interface compliance.
var _ warehouse.Catalog = (*Adapter)(nil)
