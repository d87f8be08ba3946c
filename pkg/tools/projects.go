package tools

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (h *Handlers) registerProjects(s *server.MCPServer) {
	h.add(s, mcp.NewTool("projects.list",
		mcp.WithDescription("List projects visible to the authenticated user"),
		mcp.WithNumber("member",
			mcp.Description("Filter by member user ID"),
		),
		mcp.WithBoolean("is_featured",
			mcp.Description("Only featured projects"),
		),
		withAutoPaginate(),
	), h.handleProjectsList)

	h.add(s, mcp.NewTool("projects.get",
		mcp.WithDescription("Get a project by ID"),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
	), h.handleProjectsGet)

	h.add(s, mcp.NewTool("projects.get_by_slug",
		mcp.WithDescription("Get a project by its slug"),
		mcp.WithString("slug",
			mcp.Required(),
			mcp.Description("Project slug"),
		),
	), h.handleProjectsGetBySlug)

	h.add(s, mcp.NewTool("projects.create",
		mcp.WithDescription("Create a new project"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("Project description"),
		),
		mcp.WithBoolean("is_private",
			mcp.Description("Whether the project is private (default false)"),
		),
	), h.handleProjectsCreate)

	h.add(s, mcp.NewTool("projects.edit",
		mcp.WithDescription("Edit a project"),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithString("name",
			mcp.Description("New project name"),
		),
		mcp.WithString("description",
			mcp.Description("New project description"),
		),
	), h.handleProjectsEdit)

	h.add(s, mcp.NewTool("projects.delete",
		mcp.WithDescription("Delete a project"),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
	), h.handleProjectsDelete)
}

func (h *Handlers) handleProjectsList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filters := url.Values{}
	intFilter(filters, req, "member")
	if req.GetBool("is_featured", false) {
		filters.Set("is_featured", "true")
	}
	return h.list(ctx, req, "/projects", filters)
}

func (h *Handlers) handleProjectsGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := requireID(req, "project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	project, err := h.client.Get(ctx, fmt.Sprintf("/projects/%d", projectID), nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get project: %v", err)), nil
	}
	return jsonResult(project)
}

func (h *Handlers) handleProjectsGetBySlug(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	query.Set("slug", slug)
	project, err := h.client.Get(ctx, "/projects/by_slug", query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get project: %v", err)), nil
	}
	return jsonResult(project)
}

func (h *Handlers) handleProjectsCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	description, err := req.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{
		"name":        name,
		"description": description,
	}
	setIfBool(body, req, "is_private")

	project, err := h.client.Post(ctx, "/projects", body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create project: %v", err)), nil
	}
	return jsonResult(project)
}

func (h *Handlers) handleProjectsEdit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := requireID(req, "project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{}
	setIfString(body, req, "name")
	setIfString(body, req, "description")
	if len(body) == 0 {
		return mcp.NewToolResultError("Nothing to update: provide name or description"), nil
	}

	project, err := h.client.Patch(ctx, fmt.Sprintf("/projects/%d", projectID), body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to edit project: %v", err)), nil
	}
	return jsonResult(project)
}

func (h *Handlers) handleProjectsDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := requireID(req, "project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := h.client.Delete(ctx, fmt.Sprintf("/projects/%d", projectID)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete project: %v", err)), nil
	}
	return jsonResult(map[string]any{
		"success":    true,
		"project_id": projectID,
	})
}
