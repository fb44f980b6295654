// Package warehouse provides abstractions for warehouse catalog providers.
package warehouse

import "time"

// DatasetMeta describes a dataset in the warehouse catalog.
type DatasetMeta struct {
	ID          string    `json:"id"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Created     time.Time `json:"created,omitempty"`
	Modified    time.Time `json:"modified,omitempty"`
}

// TableMeta describes a relation (table, view, etc.) and its schema.
type TableMeta struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Description string         `json:"description,omitempty"`
	Created     time.Time      `json:"created,omitempty"`
	Modified    time.Time      `json:"modified,omitempty"`
	Schema      []*FieldSchema `json:"schema,omitempty"`
}

// FieldSchema is a node in a relation's schema tree. Fields is non-empty
// only for structured (RECORD) types.
type FieldSchema struct {
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Description string         `json:"description,omitempty"`
	Fields      []*FieldSchema `json:"fields,omitempty"`
}

// JobRecord describes a past query job.
type JobRecord struct {
	JobID         string    `json:"job_id"`
	JobType       string    `json:"job_type,omitempty"`
	StatementType string    `json:"statement_type,omitempty"`
	UserEmail     string    `json:"user_email,omitempty"`
	State         string    `json:"state,omitempty"`
	Query         string    `json:"query"`
	Location      string    `json:"location,omitempty"`
	Created       time.Time `json:"created"`
}

// Row is a single result row from a catalog query, keyed by column name.
type Row map[string]any
