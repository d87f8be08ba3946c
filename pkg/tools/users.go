package tools

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (h *Handlers) registerUsers(s *server.MCPServer) {
	h.add(s, mcp.NewTool("users.list",
		mcp.WithDescription("List users visible to the authenticated account"),
		mcp.WithNumber("project",
			mcp.Description("Filter by project ID"),
		),
		withAutoPaginate(),
	), h.handleUsersList)

	h.add(s, mcp.NewTool("users.get",
		mcp.WithDescription("Get a user by ID"),
		mcp.WithNumber("user_id",
			mcp.Required(),
			mcp.Description("User ID"),
		),
	), h.handleUsersGet)

	h.add(s, mcp.NewTool("users.me",
		mcp.WithDescription("Get the authenticated user's own profile"),
	), h.handleUsersMe)

	h.add(s, mcp.NewTool("users.stats",
		mcp.WithDescription("Get activity stats for a user"),
		mcp.WithNumber("user_id",
			mcp.Required(),
			mcp.Description("User ID"),
		),
	), h.handleUsersStats)
}

func (h *Handlers) handleUsersList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filters := url.Values{}
	intFilter(filters, req, "project")
	return h.list(ctx, req, "/users", filters)
}

func (h *Handlers) handleUsersGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := requireID(req, "user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	user, err := h.client.Get(ctx, fmt.Sprintf("/users/%d", userID), nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get user: %v", err)), nil
	}
	return jsonResult(user)
}

func (h *Handlers) handleUsersMe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	me, err := h.client.Get(ctx, "/users/me", nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get current user: %v", err)), nil
	}
	return jsonResult(me)
}

func (h *Handlers) handleUsersStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := requireID(req, "user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	stats, err := h.client.Get(ctx, fmt.Sprintf("/users/%d/stats", userID), nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get user stats: %v", err)), nil
	}
	return jsonResult(stats)
}
