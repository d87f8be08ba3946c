// Package tools registers the Taiga MCP tools: one tool per Taiga API
// operation, each a thin adapter over the REST client and the pagination
// engine.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/taiga-contrib/taiga-mcp-go/pkg/observability"
	"github.com/taiga-contrib/taiga-mcp-go/pkg/pagination"
	"github.com/taiga-contrib/taiga-mcp-go/pkg/taiga"
)

// Handlers holds the shared collaborators of every tool handler.
type Handlers struct {
	client    *taiga.Client
	paginator *pagination.AutoPaginator
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// New creates the tool handlers. metrics may be nil; logger may be nil for
// a no-op logger.
func New(client *taiga.Client, paginator *pagination.AutoPaginator, metrics *observability.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		client:    client,
		paginator: paginator,
		metrics:   metrics,
		logger:    logger.Named("tools"),
	}
}

// RegisterAll registers every Taiga tool on the server.
func (h *Handlers) RegisterAll(s *server.MCPServer) {
	h.registerProjects(s)
	h.registerEpics(s)
	h.registerUserStories(s)
	h.registerTasks(s)
	h.registerIssues(s)
	h.registerMilestones(s)
	h.registerMemberships(s)
	h.registerUsers(s)
	h.registerWiki(s)
	h.registerWebhooks(s)
}

// add registers a tool with call instrumentation wrapped around its
// handler.
func (h *Handlers) add(s *server.MCPServer, tool mcp.Tool, fn server.ToolHandlerFunc) {
	s.AddTool(tool, h.instrument(tool.Name, fn))
}

func (h *Handlers) instrument(name string, fn server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		res, err := fn(ctx, req)
		elapsed := time.Since(start)

		failed := err != nil || (res != nil && res.IsError)
		if h.metrics != nil {
			h.metrics.RecordToolCall(name, failed, elapsed)
		}
		h.logger.Debug("tool call",
			zap.String("tool", name),
			zap.Bool("failed", failed),
			zap.Duration("duration", elapsed),
		)
		return res, err
	}
}

// list runs the shared list-tool flow: auto-paginate by default, or fetch
// just the first page when the caller passed auto_paginate=false.
func (h *Handlers) list(ctx context.Context, req mcp.CallToolRequest, endpoint string, filters url.Values) (*mcp.CallToolResult, error) {
	if !req.GetBool("auto_paginate", true) {
		items, err := h.paginator.PaginateFirstPage(ctx, endpoint, filters)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list %s: %v", endpoint, err)), nil
		}
		return jsonResult(map[string]any{"items": items})
	}

	res, err := h.paginator.PaginateWithInfo(ctx, endpoint, filters)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list %s: %v", endpoint, err)), nil
	}
	return jsonResult(map[string]any{
		"items":         res.Items,
		"total_items":   res.TotalItems,
		"has_more":      res.HasMore,
		"was_truncated": res.WasTruncated,
	})
}

// jsonResult renders data as an indented JSON text result.
func jsonResult(data any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// requireID reads a required numeric identifier argument.
func requireID(req mcp.CallToolRequest, key string) (int, error) {
	f, err := req.RequireFloat(key)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// intFilter copies an optional numeric argument into the query filters.
func intFilter(q url.Values, req mcp.CallToolRequest, key string) {
	if v := req.GetInt(key, 0); v > 0 {
		q.Set(key, strconv.Itoa(v))
	}
}

// strFilter copies an optional string argument into the query filters.
func strFilter(q url.Values, req mcp.CallToolRequest, key string) {
	if v := req.GetString(key, ""); v != "" {
		q.Set(key, v)
	}
}

// setIfString copies an optional string argument into a request body.
func setIfString(body map[string]any, req mcp.CallToolRequest, key string) {
	if v := req.GetString(key, ""); v != "" {
		body[key] = v
	}
}

// setIfInt copies an optional numeric argument into a request body.
func setIfInt(body map[string]any, req mcp.CallToolRequest, key string) {
	if v := req.GetInt(key, 0); v > 0 {
		body[key] = v
	}
}

// setIfBool copies an optional boolean argument into a request body when
// the caller provided it explicitly.
func setIfBool(body map[string]any, req mcp.CallToolRequest, key string) {
	if args := req.GetArguments(); args != nil {
		if v, ok := args[key].(bool); ok {
			body[key] = v
		}
	}
}

// withAutoPaginate is the shared option every list tool carries.
func withAutoPaginate() mcp.ToolOption {
	return mcp.WithBoolean("auto_paginate",
		mcp.Description("Fetch all pages up to the configured safety bounds (default true); false returns only the first page"),
	)
}
