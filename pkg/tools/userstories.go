package tools

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (h *Handlers) registerUserStories(s *server.MCPServer) {
	h.add(s, mcp.NewTool("userstories.list",
		mcp.WithDescription("List user stories"),
		mcp.WithNumber("project",
			mcp.Description("Filter by project ID"),
		),
		mcp.WithNumber("milestone",
			mcp.Description("Filter by milestone (sprint) ID"),
		),
		mcp.WithNumber("epic",
			mcp.Description("Filter by epic ID"),
		),
		mcp.WithNumber("status",
			mcp.Description("Filter by status ID"),
		),
		mcp.WithNumber("assigned_to",
			mcp.Description("Filter by assignee user ID"),
		),
		withAutoPaginate(),
	), h.handleUserStoriesList)

	h.add(s, mcp.NewTool("userstories.get",
		mcp.WithDescription("Get a user story by ID"),
		mcp.WithNumber("userstory_id",
			mcp.Required(),
			mcp.Description("User story ID"),
		),
	), h.handleUserStoriesGet)

	h.add(s, mcp.NewTool("userstories.create",
		mcp.WithDescription("Create a new user story"),
		mcp.WithNumber("project",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("User story subject"),
		),
		mcp.WithString("description",
			mcp.Description("User story description"),
		),
		mcp.WithNumber("milestone",
			mcp.Description("Milestone (sprint) ID to place the story in"),
		),
		mcp.WithNumber("status",
			mcp.Description("Status ID"),
		),
	), h.handleUserStoriesCreate)

	h.add(s, mcp.NewTool("userstories.edit",
		mcp.WithDescription("Edit a user story"),
		mcp.WithNumber("userstory_id",
			mcp.Required(),
			mcp.Description("User story ID"),
		),
		mcp.WithNumber("version",
			mcp.Required(),
			mcp.Description("Current story version, for optimistic concurrency"),
		),
		mcp.WithString("subject",
			mcp.Description("New subject"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithNumber("milestone",
			mcp.Description("New milestone (sprint) ID"),
		),
		mcp.WithNumber("status",
			mcp.Description("New status ID"),
		),
		mcp.WithNumber("assigned_to",
			mcp.Description("New assignee user ID"),
		),
	), h.handleUserStoriesEdit)

	h.add(s, mcp.NewTool("userstories.delete",
		mcp.WithDescription("Delete a user story"),
		mcp.WithNumber("userstory_id",
			mcp.Required(),
			mcp.Description("User story ID"),
		),
	), h.handleUserStoriesDelete)

	h.add(s, mcp.NewTool("userstories.watch",
		mcp.WithDescription("Watch a user story"),
		mcp.WithNumber("userstory_id",
			mcp.Required(),
			mcp.Description("User story ID"),
		),
	), h.userStoryAction("watch"))

	h.add(s, mcp.NewTool("userstories.unwatch",
		mcp.WithDescription("Stop watching a user story"),
		mcp.WithNumber("userstory_id",
			mcp.Required(),
			mcp.Description("User story ID"),
		),
	), h.userStoryAction("unwatch"))
}

func (h *Handlers) handleUserStoriesList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filters := url.Values{}
	intFilter(filters, req, "project")
	intFilter(filters, req, "milestone")
	intFilter(filters, req, "epic")
	intFilter(filters, req, "status")
	intFilter(filters, req, "assigned_to")
	return h.list(ctx, req, "/userstories", filters)
}

func (h *Handlers) handleUserStoriesGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	storyID, err := requireID(req, "userstory_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	story, err := h.client.Get(ctx, fmt.Sprintf("/userstories/%d", storyID), nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get user story: %v", err)), nil
	}
	return jsonResult(story)
}

func (h *Handlers) handleUserStoriesCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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
	setIfInt(body, req, "milestone")
	setIfInt(body, req, "status")

	story, err := h.client.Post(ctx, "/userstories", body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create user story: %v", err)), nil
	}
	return jsonResult(story)
}

func (h *Handlers) handleUserStoriesEdit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	storyID, err := requireID(req, "userstory_id")
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
	setIfInt(body, req, "milestone")
	setIfInt(body, req, "status")
	setIfInt(body, req, "assigned_to")

	story, err := h.client.Patch(ctx, fmt.Sprintf("/userstories/%d", storyID), body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to edit user story: %v", err)), nil
	}
	return jsonResult(story)
}

func (h *Handlers) handleUserStoriesDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	storyID, err := requireID(req, "userstory_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := h.client.Delete(ctx, fmt.Sprintf("/userstories/%d", storyID)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete user story: %v", err)), nil
	}
	return jsonResult(map[string]any{"success": true, "userstory_id": storyID})
}

func (h *Handlers) userStoryAction(action string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		storyID, err := requireID(req, "userstory_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if _, err := h.client.Post(ctx, fmt.Sprintf("/userstories/%d/%s", storyID, action), nil); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to %s user story: %v", action, err)), nil
		}
		return jsonResult(map[string]any{"success": true, "userstory_id": storyID, "action": action})
	}
}
