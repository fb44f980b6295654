package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLoggedSession builds an in-memory MCP session whose server carries the
// tool call logging middleware, with log output captured in buf.
func newLoggedSession(t *testing.T, buf *bytes.Buffer) *mcp.ClientSession {
	t.Helper()

	log := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	server := mcp.NewServer(&mcp.Implementation{Name: "test-server", Version: "v0.0.1"}, nil)
	server.AddReceivingMiddleware(ToolCallLogging(log))

	type emptyInput struct{}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "echo_ok",
		Description: "always succeeds",
	}, func(context.Context, *mcp.CallToolRequest, emptyInput) (*mcp.CallToolResult, any, error) {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "ok"}},
		}, nil, nil
	})
	mcp.AddTool(server, &mcp.Tool{
		Name:        "echo_fail",
		Description: "always fails",
	}, func(context.Context, *mcp.CallToolRequest, emptyInput) (*mcp.CallToolResult, any, error) {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "Error: boom"}},
			IsError: true,
		}, nil, nil
	})

	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	_, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session
}

func TestToolCallLogging(t *testing.T) {
	t.Run("successful call is logged at debug with the tool name", func(t *testing.T) {
		var buf bytes.Buffer
		session := newLoggedSession(t, &buf)

		result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "echo_ok"})
		require.NoError(t, err)
		require.False(t, result.IsError)

		assert.Contains(t, buf.String(), "tool call completed")
		assert.Contains(t, buf.String(), "tool=echo_ok")
	})

	t.Run("tool-level error is logged as a failure", func(t *testing.T) {
		var buf bytes.Buffer
		session := newLoggedSession(t, &buf)

		result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "echo_fail"})
		require.NoError(t, err)
		require.True(t, result.IsError)

		assert.Contains(t, buf.String(), "tool call failed")
		assert.Contains(t, buf.String(), "tool=echo_fail")
	})

	t.Run("other methods pass through without tool logging", func(t *testing.T) {
		var buf bytes.Buffer
		session := newLoggedSession(t, &buf)

		_, err := session.ListTools(context.Background(), nil)
		require.NoError(t, err)

		assert.NotContains(t, buf.String(), "tool call")
	})
}

func TestCallStatus(t *testing.T) {
	assert.Equal(t, "error", callStatus(nil, errors.New("boom")))
	assert.Equal(t, "error", callStatus(&mcp.CallToolResult{IsError: true}, nil))
	assert.Equal(t, "success", callStatus(&mcp.CallToolResult{}, nil))
	assert.Equal(t, "success", callStatus(nil, nil))
}
