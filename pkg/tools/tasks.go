package tools

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (h *Handlers) registerTasks(s *server.MCPServer) {
	h.add(s, mcp.NewTool("tasks.list",
		mcp.WithDescription("List tasks"),
		mcp.WithNumber("project",
			mcp.Description("Filter by project ID"),
		),
		mcp.WithNumber("milestone",
			mcp.Description("Filter by milestone (sprint) ID"),
		),
		mcp.WithNumber("user_story",
			mcp.Description("Filter by user story ID"),
		),
		mcp.WithNumber("status",
			mcp.Description("Filter by status ID"),
		),
		mcp.WithNumber("assigned_to",
			mcp.Description("Filter by assignee user ID"),
		),
		withAutoPaginate(),
	), h.handleTasksList)

	h.add(s, mcp.NewTool("tasks.get",
		mcp.WithDescription("Get a task by ID"),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("Task ID"),
		),
	), h.handleTasksGet)

	h.add(s, mcp.NewTool("tasks.create",
		mcp.WithDescription("Create a new task"),
		mcp.WithNumber("project",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Task subject"),
		),
		mcp.WithString("description",
			mcp.Description("Task description"),
		),
		mcp.WithNumber("user_story",
			mcp.Description("Parent user story ID"),
		),
		mcp.WithNumber("milestone",
			mcp.Description("Milestone (sprint) ID"),
		),
		mcp.WithNumber("assigned_to",
			mcp.Description("Assignee user ID"),
		),
	), h.handleTasksCreate)

	h.add(s, mcp.NewTool("tasks.edit",
		mcp.WithDescription("Edit a task"),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("Task ID"),
		),
		mcp.WithNumber("version",
			mcp.Required(),
			mcp.Description("Current task version, for optimistic concurrency"),
		),
		mcp.WithString("subject",
			mcp.Description("New subject"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithNumber("status",
			mcp.Description("New status ID"),
		),
		mcp.WithNumber("assigned_to",
			mcp.Description("New assignee user ID"),
		),
	), h.handleTasksEdit)

	h.add(s, mcp.NewTool("tasks.delete",
		mcp.WithDescription("Delete a task"),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("Task ID"),
		),
	), h.handleTasksDelete)
}

func (h *Handlers) handleTasksList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filters := url.Values{}
	intFilter(filters, req, "project")
	intFilter(filters, req, "milestone")
	intFilter(filters, req, "user_story")
	intFilter(filters, req, "status")
	intFilter(filters, req, "assigned_to")
	return h.list(ctx, req, "/tasks", filters)
}

func (h *Handlers) handleTasksGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := requireID(req, "task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	task, err := h.client.Get(ctx, fmt.Sprintf("/tasks/%d", taskID), nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get task: %v", err)), nil
	}
	return jsonResult(task)
}

func (h *Handlers) handleTasksCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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
	setIfInt(body, req, "user_story")
	setIfInt(body, req, "milestone")
	setIfInt(body, req, "assigned_to")

	task, err := h.client.Post(ctx, "/tasks", body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create task: %v", err)), nil
	}
	return jsonResult(task)
}

func (h *Handlers) handleTasksEdit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := requireID(req, "task_id")
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
	setIfInt(body, req, "status")
	setIfInt(body, req, "assigned_to")

	task, err := h.client.Patch(ctx, fmt.Sprintf("/tasks/%d", taskID), body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to edit task: %v", err)), nil
	}
	return jsonResult(task)
}

func (h *Handlers) handleTasksDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := requireID(req, "task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := h.client.Delete(ctx, fmt.Sprintf("/tasks/%d", taskID)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete task: %v", err)), nil
	}
	return jsonResult(map[string]any{"success": true, "task_id": taskID})
}
