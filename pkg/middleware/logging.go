// Package middleware provides MCP protocol-level middleware.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/PaddyAlton/bigquery-mcp/pkg/metrics"
)

// methodToolsCall is the MCP method for tool invocations.
const methodToolsCall = "tools/call"

// ToolCallLogging creates MCP protocol-level middleware that logs every
// tools/call request with its duration and outcome, and records the
// corresponding prometheus metrics. Other methods pass through untouched.
func ToolCallLogging(log *slog.Logger) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if method != methodToolsCall {
				return next(ctx, method, req)
			}

			toolName := extractToolName(req)
			start := time.Now()

			result, err := next(ctx, method, req)

			duration := time.Since(start)
			status := callStatus(result, err)

			metrics.ToolCallsTotal.WithLabelValues(toolName, status).Inc()
			metrics.ToolCallDuration.WithLabelValues(toolName).Observe(duration.Seconds())

			if err != nil || status == "error" {
				log.Error("tool call failed",
					"tool", toolName,
					"duration", duration,
					"error", err,
				)
			} else {
				log.Debug("tool call completed",
					"tool", toolName,
					"duration", duration,
				)
			}

			return result, err
		}
	}
}

// extractToolName pulls the tool name out of a tools/call request.
func extractToolName(req mcp.Request) string {
	params, ok := req.GetParams().(*mcp.CallToolParamsRaw)
	if !ok || params == nil {
		return "unknown"
	}
	if params.Name == "" {
		return "unknown"
	}
	return params.Name
}

// callStatus classifies a tool call outcome. Tool-level errors are returned
// in CallToolResult.IsError rather than as Go errors.
func callStatus(result mcp.Result, err error) string {
	if err != nil {
		return "error"
	}
	if callResult, ok := result.(*mcp.CallToolResult); ok && callResult.IsError {
		return "error"
	}
	return "success"
}
