package tools

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaddyAlton/bigquery-mcp/pkg/toolbox"
	"github.com/PaddyAlton/bigquery-mcp/pkg/warehouse"
)

// fakeCatalog is a canned-data catalog for tool tests.
type fakeCatalog struct {
	warehouse.NoopCatalog

	queryRows []warehouse.Row
	datasets  []warehouse.DatasetMeta
	details   map[string]*warehouse.DatasetMeta
	tables    map[string]*warehouse.TableMeta
	jobs      []warehouse.JobRecord
}

func (f *fakeCatalog) Query(_ context.Context, _ string) ([]warehouse.Row, error) {
	return f.queryRows, nil
}

func (f *fakeCatalog) ListDatasets(_ context.Context) ([]warehouse.DatasetMeta, error) {
	return f.datasets, nil
}

func (f *fakeCatalog) DatasetMetadata(_ context.Context, datasetID string) (*warehouse.DatasetMeta, error) {
	if meta, ok := f.details[datasetID]; ok {
		return meta, nil
	}
	return nil, fmt.Errorf("dataset %q: %w", datasetID, warehouse.ErrNotFound)
}

func (f *fakeCatalog) ListTables(_ context.Context, _ string) ([]string, error) {
	ids := make([]string, 0, len(f.tables))
	for id := range f.tables {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeCatalog) TableMetadata(_ context.Context, datasetID, tableID string) (*warehouse.TableMeta, error) {
	if meta, ok := f.tables[tableID]; ok {
		return meta, nil
	}
	return nil, fmt.Errorf("table %q.%q: %w", datasetID, tableID, warehouse.ErrNotFound)
}

func (f *fakeCatalog) ListJobs(_ context.Context, limit int) ([]warehouse.JobRecord, error) {
	if len(f.jobs) > limit {
		return f.jobs[:limit], nil
	}
	return f.jobs, nil
}

// newSession spins up an in-memory MCP client-server pair with the toolkit
// registered.
func newSession(t *testing.T, catalog warehouse.Catalog) *mcp.ClientSession {
	t.Helper()

	tb, err := toolbox.New(catalog, "europe-west2")
	require.NoError(t, err)
	toolkit, err := New(tb, Config{HistoryLimit: 10})
	require.NoError(t, err)

	server := mcp.NewServer(&mcp.Implementation{Name: "test-server", Version: "v0.0.1"}, nil)
	require.NoError(t, toolkit.RegisterTools(server))

	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	_, err = server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session
}

// textOf extracts the text content of a tool result.
func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestNew(t *testing.T) {
	t.Run("missing toolbox", func(t *testing.T) {
		_, err := New(nil, Config{})
		require.Error(t, err)
	})
}

func TestTools(t *testing.T) {
	toolkit := &Toolkit{}
	assert.Equal(t, []string{
		"get_datasets",
		"get_all_dataset_descriptions",
		"get_dataset_description",
		"get_tables",
		"get_columns",
		"get_query_history",
	}, toolkit.Tools())
}

func TestRegisterTools(t *testing.T) {
	session := newSession(t, &fakeCatalog{})

	listed, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(listed.Tools))
	for _, tool := range listed.Tools {
		names = append(names, tool.Name)
	}
	toolkit := &Toolkit{}
	for _, want := range toolkit.Tools() {
		assert.Contains(t, names, want)
	}
}

func TestGetDatasets(t *testing.T) {
	t.Run("lists identifiers", func(t *testing.T) {
		session := newSession(t, &fakeCatalog{
			datasets: []warehouse.DatasetMeta{{ID: "sales"}, {ID: "marketing"}},
		})

		result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
			Name: "get_datasets",
		})
		require.NoError(t, err)
		require.False(t, result.IsError)

		text := textOf(t, result)
		assert.Equal(t, "Available datasets\n=====\nsales\n=====\nmarketing\n=====", text)
	})

	t.Run("empty catalog yields the sentinel body", func(t *testing.T) {
		session := newSession(t, &fakeCatalog{})

		result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
			Name: "get_datasets",
		})
		require.NoError(t, err)
		assert.Contains(t, textOf(t, result), "NO INFORMATION")
	})
}

func TestGetAllDatasetDescriptions(t *testing.T) {
	session := newSession(t, &fakeCatalog{
		queryRows: []warehouse.Row{
			{"dataset": "sales", "description": "Sales records"},
		},
	})

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "get_all_dataset_descriptions",
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := textOf(t, result)
	assert.Contains(t, text, "Dataset descriptions (europe-west2)")
	assert.Contains(t, text, "Name: sales")
	assert.Contains(t, text, "Description: Sales records")
	assert.Equal(t, 1, strings.Count(text, "Name: "), "exactly one block expected")
}

func TestGetDatasetDescription(t *testing.T) {
	t.Run("single dataset detail block", func(t *testing.T) {
		session := newSession(t, &fakeCatalog{
			details: map[string]*warehouse.DatasetMeta{
				"sales": {
					ID:          "sales",
					Description: "Sales records",
					Created:     time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
					Modified:    time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC),
				},
			},
		})

		result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
			Name:      "get_dataset_description",
			Arguments: map[string]any{"dataset_id": "sales"},
		})
		require.NoError(t, err)
		require.False(t, result.IsError)

		text := textOf(t, result)
		assert.Contains(t, text, "Name: sales")
		assert.Contains(t, text, "Created: 2024-03-20T00:00:00Z")
		assert.Contains(t, text, "Description: Sales records")
	})

	t.Run("absent dataset surfaces an error", func(t *testing.T) {
		session := newSession(t, &fakeCatalog{})

		result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
			Name:      "get_dataset_description",
			Arguments: map[string]any{"dataset_id": "missing"},
		})
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, textOf(t, result), "not found")
	})
}

func TestGetTables(t *testing.T) {
	session := newSession(t, &fakeCatalog{
		tables: map[string]*warehouse.TableMeta{
			"orders": {
				ID:          "orders",
				Type:        "TABLE",
				Description: "Order records",
				Created:     time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
				Modified:    time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC),
			},
		},
	})

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "get_tables",
		Arguments: map[string]any{"dataset": "sales"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := textOf(t, result)
	assert.Contains(t, text, "Relations in dataset sales")
	assert.Contains(t, text, "Name: orders")
	assert.Contains(t, text, "Type: TABLE")
	assert.Contains(t, text, "Description: Order records")
}

func TestGetColumns(t *testing.T) {
	session := newSession(t, &fakeCatalog{
		tables: map[string]*warehouse.TableMeta{
			"orders": {
				ID: "orders",
				Schema: []*warehouse.FieldSchema{
					{Name: "top", Type: "STRING", Description: "Top"},
					{
						Name:        "parent",
						Type:        "RECORD",
						Description: "Parent",
						Fields: []*warehouse.FieldSchema{
							{Name: "child", Type: "STRING", Description: "Child"},
						},
					},
				},
			},
		},
	})

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "get_columns",
		Arguments: map[string]any{"dataset": "sales", "table": "orders"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := textOf(t, result)
	assert.Contains(t, text, "Columns in sales.orders")

	// Pre-order, path-stable entry ordering.
	topIdx := strings.Index(text, "Field path: top")
	parentIdx := strings.Index(text, "Field path: parent\n")
	childIdx := strings.Index(text, "Field path: parent.child")
	require.NotEqual(t, -1, topIdx)
	require.NotEqual(t, -1, parentIdx)
	require.NotEqual(t, -1, childIdx)
	assert.Less(t, topIdx, parentIdx)
	assert.Less(t, parentIdx, childIdx)
}

func TestGetQueryHistory(t *testing.T) {
	session := newSession(t, &fakeCatalog{
		jobs: []warehouse.JobRecord{
			{JobID: "job-2", Query: "SELECT 2", Created: time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC)},
			{JobID: "job-1", Query: "SELECT 1", Created: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)},
		},
	})

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "get_query_history",
		Arguments: map[string]any{"dataset": "sales", "table": "orders"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := textOf(t, result)
	assert.Contains(t, text, "Recent queries (context: sales.orders)")
	assert.Contains(t, text, "Job ID: job-2")
	assert.Contains(t, text, "Query: SELECT 2")
	assert.Contains(t, text, "Job ID: job-1")
}
