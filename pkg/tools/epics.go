package tools

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (h *Handlers) registerEpics(s *server.MCPServer) {
	h.add(s, mcp.NewTool("epics.list",
		mcp.WithDescription("List epics"),
		mcp.WithNumber("project",
			mcp.Description("Filter by project ID"),
		),
		mcp.WithNumber("assigned_to",
			mcp.Description("Filter by assignee user ID"),
		),
		mcp.WithString("status__is_closed",
			mcp.Description("Filter by closed state: true or false"),
		),
		withAutoPaginate(),
	), h.handleEpicsList)

	h.add(s, mcp.NewTool("epics.get",
		mcp.WithDescription("Get an epic by ID"),
		mcp.WithNumber("epic_id",
			mcp.Required(),
			mcp.Description("Epic ID"),
		),
	), h.handleEpicsGet)

	h.add(s, mcp.NewTool("epics.create",
		mcp.WithDescription("Create a new epic"),
		mcp.WithNumber("project",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Epic subject"),
		),
		mcp.WithString("description",
			mcp.Description("Epic description"),
		),
		mcp.WithString("color",
			mcp.Description("Epic color as hex (e.g. #FC8EAC)"),
		),
	), h.handleEpicsCreate)

	h.add(s, mcp.NewTool("epics.edit",
		mcp.WithDescription("Edit an epic"),
		mcp.WithNumber("epic_id",
			mcp.Required(),
			mcp.Description("Epic ID"),
		),
		mcp.WithNumber("version",
			mcp.Required(),
			mcp.Description("Current epic version, for optimistic concurrency"),
		),
		mcp.WithString("subject",
			mcp.Description("New subject"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithNumber("assigned_to",
			mcp.Description("New assignee user ID"),
		),
		mcp.WithNumber("status",
			mcp.Description("New status ID"),
		),
	), h.handleEpicsEdit)

	h.add(s, mcp.NewTool("epics.delete",
		mcp.WithDescription("Delete an epic"),
		mcp.WithNumber("epic_id",
			mcp.Required(),
			mcp.Description("Epic ID"),
		),
	), h.handleEpicsDelete)

	h.add(s, mcp.NewTool("epics.related_userstories",
		mcp.WithDescription("List the user stories related to an epic"),
		mcp.WithNumber("epic_id",
			mcp.Required(),
			mcp.Description("Epic ID"),
		),
		withAutoPaginate(),
	), h.handleEpicsRelatedUserStories)

	h.add(s, mcp.NewTool("epics.watch",
		mcp.WithDescription("Watch an epic"),
		mcp.WithNumber("epic_id",
			mcp.Required(),
			mcp.Description("Epic ID"),
		),
	), h.epicAction("watch"))

	h.add(s, mcp.NewTool("epics.unwatch",
		mcp.WithDescription("Stop watching an epic"),
		mcp.WithNumber("epic_id",
			mcp.Required(),
			mcp.Description("Epic ID"),
		),
	), h.epicAction("unwatch"))

	h.add(s, mcp.NewTool("epics.upvote",
		mcp.WithDescription("Upvote an epic"),
		mcp.WithNumber("epic_id",
			mcp.Required(),
			mcp.Description("Epic ID"),
		),
	), h.epicAction("upvote"))

	h.add(s, mcp.NewTool("epics.downvote",
		mcp.WithDescription("Remove your vote from an epic"),
		mcp.WithNumber("epic_id",
			mcp.Required(),
			mcp.Description("Epic ID"),
		),
	), h.epicAction("downvote"))
}

func (h *Handlers) handleEpicsList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filters := url.Values{}
	intFilter(filters, req, "project")
	intFilter(filters, req, "assigned_to")
	strFilter(filters, req, "status__is_closed")
	return h.list(ctx, req, "/epics", filters)
}

func (h *Handlers) handleEpicsGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	epicID, err := requireID(req, "epic_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	epic, err := h.client.Get(ctx, fmt.Sprintf("/epics/%d", epicID), nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get epic: %v", err)), nil
	}
	return jsonResult(epic)
}

func (h *Handlers) handleEpicsCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := requireID(req, "project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	subject, err := req.RequireString("subject")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{
		"project": project,
		"subject": subject,
	}
	setIfString(body, req, "description")
	setIfString(body, req, "color")

	epic, err := h.client.Post(ctx, "/epics", body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create epic: %v", err)), nil
	}
	return jsonResult(epic)
}

func (h *Handlers) handleEpicsEdit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	epicID, err := requireID(req, "epic_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	version, err := requireID(req, "version")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{"version": version}
	setIfString(body, req, "subject")
	setIfString(body, req, "description")
	setIfInt(body, req, "assigned_to")
	setIfInt(body, req, "status")

	epic, err := h.client.Patch(ctx, fmt.Sprintf("/epics/%d", epicID), body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to edit epic: %v", err)), nil
	}
	return jsonResult(epic)
}

func (h *Handlers) handleEpicsDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	epicID, err := requireID(req, "epic_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := h.client.Delete(ctx, fmt.Sprintf("/epics/%d", epicID)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete epic: %v", err)), nil
	}
	return jsonResult(map[string]any{"success": true, "epic_id": epicID})
}

func (h *Handlers) handleEpicsRelatedUserStories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	epicID, err := requireID(req, "epic_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// This endpoint answers a bare list without a pagination envelope; the
	// paginator normalizes that shape too.
	return h.list(ctx, req, fmt.Sprintf("/epics/%d/related_userstories", epicID), nil)
}

// epicAction builds a handler for the POST side-effect endpoints
// (watch/unwatch/upvote/downvote).
func (h *Handlers) epicAction(action string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		epicID, err := requireID(req, "epic_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if _, err := h.client.Post(ctx, fmt.Sprintf("/epics/%d/%s", epicID, action), nil); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to %s epic: %v", action, err)), nil
		}
		return jsonResult(map[string]any{"success": true, "epic_id": epicID, "action": action})
	}
}
