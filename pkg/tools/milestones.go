package tools

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (h *Handlers) registerMilestones(s *server.MCPServer) {
	h.add(s, mcp.NewTool("milestones.list",
		mcp.WithDescription("List milestones (sprints)"),
		mcp.WithNumber("project",
			mcp.Description("Filter by project ID"),
		),
		mcp.WithString("closed",
			mcp.Description("Filter by closed state: true or false"),
		),
		withAutoPaginate(),
	), h.handleMilestonesList)

	h.add(s, mcp.NewTool("milestones.get",
		mcp.WithDescription("Get a milestone by ID"),
		mcp.WithNumber("milestone_id",
			mcp.Required(),
			mcp.Description("Milestone ID"),
		),
	), h.handleMilestonesGet)

	h.add(s, mcp.NewTool("milestones.stats",
		mcp.WithDescription("Get completion stats of a milestone"),
		mcp.WithNumber("milestone_id",
			mcp.Required(),
			mcp.Description("Milestone ID"),
		),
	), h.handleMilestonesStats)

	h.add(s, mcp.NewTool("milestones.create",
		mcp.WithDescription("Create a new milestone (sprint)"),
		mcp.WithNumber("project",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Milestone name"),
		),
		mcp.WithString("estimated_start",
			mcp.Required(),
			mcp.Description("Estimated start date (YYYY-MM-DD)"),
		),
		mcp.WithString("estimated_finish",
			mcp.Required(),
			mcp.Description("Estimated finish date (YYYY-MM-DD)"),
		),
	), h.handleMilestonesCreate)

	h.add(s, mcp.NewTool("milestones.edit",
		mcp.WithDescription("Edit a milestone"),
		mcp.WithNumber("milestone_id",
			mcp.Required(),
			mcp.Description("Milestone ID"),
		),
		mcp.WithString("name",
			mcp.Description("New name"),
		),
		mcp.WithString("estimated_start",
			mcp.Description("New estimated start date (YYYY-MM-DD)"),
		),
		mcp.WithString("estimated_finish",
			mcp.Description("New estimated finish date (YYYY-MM-DD)"),
		),
	), h.handleMilestonesEdit)

	h.add(s, mcp.NewTool("milestones.delete",
		mcp.WithDescription("Delete a milestone"),
		mcp.WithNumber("milestone_id",
			mcp.Required(),
			mcp.Description("Milestone ID"),
		),
	), h.handleMilestonesDelete)
}

func (h *Handlers) handleMilestonesList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filters := url.Values{}
	intFilter(filters, req, "project")
	strFilter(filters, req, "closed")
	return h.list(ctx, req, "/milestones", filters)
}

func (h *Handlers) handleMilestonesGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	milestoneID, err := requireID(req, "milestone_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	milestone, err := h.client.Get(ctx, fmt.Sprintf("/milestones/%d", milestoneID), nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get milestone: %v", err)), nil
	}
	return jsonResult(milestone)
}

func (h *Handlers) handleMilestonesStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	milestoneID, err := requireID(req, "milestone_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	stats, err := h.client.Get(ctx, fmt.Sprintf("/milestones/%d/stats", milestoneID), nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get milestone stats: %v", err)), nil
	}
	return jsonResult(stats)
}

func (h *Handlers) handleMilestonesCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := requireID(req, "project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	estimatedStart, err := req.RequireString("estimated_start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	estimatedFinish, err := req.RequireString("estimated_finish")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	milestone, err := h.client.Post(ctx, "/milestones", map[string]any{
		"project":          project,
		"name":             name,
		"estimated_start":  estimatedStart,
		"estimated_finish": estimatedFinish,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create milestone: %v", err)), nil
	}
	return jsonResult(milestone)
}

func (h *Handlers) handleMilestonesEdit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	milestoneID, err := requireID(req, "milestone_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{}
	setIfString(body, req, "name")
	setIfString(body, req, "estimated_start")
	setIfString(body, req, "estimated_finish")
	if len(body) == 0 {
		return mcp.NewToolResultError("Nothing to update: provide name, estimated_start or estimated_finish"), nil
	}

	milestone, err := h.client.Patch(ctx, fmt.Sprintf("/milestones/%d", milestoneID), body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to edit milestone: %v", err)), nil
	}
	return jsonResult(milestone)
}

func (h *Handlers) handleMilestonesDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	milestoneID, err := requireID(req, "milestone_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := h.client.Delete(ctx, fmt.Sprintf("/milestones/%d", milestoneID)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete milestone: %v", err)), nil
	}
	return jsonResult(map[string]any{"success": true, "milestone_id": milestoneID})
}
