// Package tools provides the MCP tool surface over the metadata toolbox.
package tools

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/PaddyAlton/bigquery-mcp/pkg/format"
	"github.com/PaddyAlton/bigquery-mcp/pkg/toolbox"
	"github.com/PaddyAlton/bigquery-mcp/pkg/warehouse"
)

// Config holds toolkit configuration.
type Config struct {
	// HistoryLimit bounds the number of records returned by
	// get_query_history. Zero means the toolbox default.
	HistoryLimit int `yaml:"history_limit"`
}

// Toolkit registers the BigQuery metadata tools with an MCP server.
type Toolkit struct {
	toolbox *toolbox.Toolbox
	config  Config
}

// New creates a new Toolkit over a constructed toolbox.
func New(tb *toolbox.Toolbox, cfg Config) (*Toolkit, error) {
	if tb == nil {
		return nil, fmt.Errorf("toolbox is required")
	}
	return &Toolkit{toolbox: tb, config: cfg}, nil
}

// Tools returns the list of tool names provided by this toolkit.
func (*Toolkit) Tools() []string {
	return []string{
		"get_datasets",
		"get_all_dataset_descriptions",
		"get_dataset_description",
		"get_tables",
		"get_columns",
		"get_query_history",
	}
}

// emptyInput is used by tools that take no parameters.
type emptyInput struct{}

// datasetIDInput identifies one dataset by its ID.
type datasetIDInput struct {
	DatasetID string `json:"dataset_id"`
}

// datasetInput identifies one dataset.
type datasetInput struct {
	Dataset string `json:"dataset"`
}

// relationInput identifies one relation within a dataset.
type relationInput struct {
	Dataset string `json:"dataset"`
	Table   string `json:"table"`
}

// RegisterTools registers all tools with the MCP server.
func (t *Toolkit) RegisterTools(s *mcp.Server) error {
	if err := t.registerDatasetTools(s); err != nil {
		return err
	}
	return t.registerRelationTools(s)
}

func (t *Toolkit) registerDatasetTools(s *mcp.Server) error {
	emptySchema, err := jsonschema.For[emptyInput](nil)
	if err != nil {
		return fmt.Errorf("building empty input schema: %w", err)
	}
	datasetIDSchema, err := jsonschema.For[datasetIDInput](nil)
	if err != nil {
		return fmt.Errorf("building dataset_id input schema: %w", err)
	}

	mcp.AddTool(s, &mcp.Tool{
		Name: "get_datasets",
		Description: "List the IDs of all BigQuery datasets visible to the " +
			"configured credentials. Use this to discover what data exists " +
			"before asking for descriptions.",
		InputSchema: emptySchema,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
		table, err := t.toolbox.DatasetIDs(ctx)
		if err != nil {
			return errorResult(err), nil, nil
		}
		entries := make([]string, 0, len(table.Rows))
		for _, row := range table.Rows {
			entries = append(entries, fmt.Sprint(row["dataset_id"]))
		}
		return textResult(format.JoinEntries(entries, "Available datasets")), nil, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name: "get_all_dataset_descriptions",
		Description: "Get a report of all datasets that carry descriptions " +
			"in the configured BigQuery region, including creation and " +
			"modification timestamps.",
		InputSchema: emptySchema,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
		table, err := t.toolbox.AllDatasetDescriptions(ctx)
		if err != nil {
			return errorResult(err), nil, nil
		}
		header := fmt.Sprintf("Dataset descriptions (%s)", t.toolbox.Region())
		return textResult(joinRows(table, format.Dataset, header)), nil, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name: "get_dataset_description",
		Description: "Get the description and timestamps of a single " +
			"BigQuery dataset.",
		InputSchema: datasetIDSchema,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in datasetIDInput) (*mcp.CallToolResult, any, error) {
		details, err := t.toolbox.DatasetDetails(ctx, in.DatasetID)
		if err != nil {
			return errorResult(err), nil, nil
		}
		entry := format.DatasetObject(details)
		return textResult(format.JoinEntries([]string{entry}, "Dataset details")), nil, nil
	})

	return nil
}

func (t *Toolkit) registerRelationTools(s *mcp.Server) error {
	datasetSchema, err := jsonschema.For[datasetInput](nil)
	if err != nil {
		return fmt.Errorf("building dataset input schema: %w", err)
	}
	relationSchema, err := jsonschema.For[relationInput](nil)
	if err != nil {
		return fmt.Errorf("building relation input schema: %w", err)
	}

	mcp.AddTool(s, &mcp.Tool{
		Name: "get_tables",
		Description: "Get a report of the described relations (tables and " +
			"views) in a BigQuery dataset.",
		InputSchema: datasetSchema,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in datasetInput) (*mcp.CallToolResult, any, error) {
		table, err := t.toolbox.RelationDescriptions(ctx, in.Dataset)
		if err != nil {
			return errorResult(err), nil, nil
		}
		header := fmt.Sprintf("Relations in dataset %s", in.Dataset)
		return textResult(joinRows(table, format.Relation, header)), nil, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name: "get_columns",
		Description: "Get a report of the described columns of a BigQuery " +
			"relation, including nested fields flattened to dot-joined " +
			"paths.",
		InputSchema: relationSchema,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in relationInput) (*mcp.CallToolResult, any, error) {
		table, err := t.toolbox.ColumnDescriptions(ctx, in.Dataset, in.Table)
		if err != nil {
			return errorResult(err), nil, nil
		}
		header := fmt.Sprintf("Columns in %s.%s", in.Dataset, in.Table)
		return textResult(joinRows(table, format.Column, header)), nil, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name: "get_query_history",
		Description: "Get a report of recent query jobs run against the " +
			"project, for context on how a relation is actually used. The " +
			"dataset and table parameters label the request; the history " +
			"itself is project-wide.",
		InputSchema: relationSchema,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in relationInput) (*mcp.CallToolResult, any, error) {
		table, err := t.toolbox.QueryHistory(ctx, t.config.HistoryLimit)
		if err != nil {
			return errorResult(err), nil, nil
		}
		header := fmt.Sprintf("Recent queries (context: %s.%s)", in.Dataset, in.Table)
		return textResult(joinRows(table, format.QueryHistory, header)), nil, nil
	})

	return nil
}

// joinRows formats each row of a table and joins the blocks into one report.
func joinRows(table toolbox.Table, formatRow func(warehouse.Row) string, header string) string {
	entries := make([]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		entries = append(entries, formatRow(row))
	}
	return format.JoinEntries(entries, header)
}

// textResult wraps a report string as an MCP text result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// errorResult surfaces an upstream failure to the MCP host. Nothing is
// retried; resilience is deferred to the caller.
func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + err.Error()},
		},
	}
}
