package tools

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (h *Handlers) registerWiki(s *server.MCPServer) {
	h.add(s, mcp.NewTool("wiki.list",
		mcp.WithDescription("List wiki pages"),
		mcp.WithNumber("project",
			mcp.Description("Filter by project ID"),
		),
		withAutoPaginate(),
	), h.handleWikiList)

	h.add(s, mcp.NewTool("wiki.get",
		mcp.WithDescription("Get a wiki page by ID"),
		mcp.WithNumber("page_id",
			mcp.Required(),
			mcp.Description("Wiki page ID"),
		),
	), h.handleWikiGet)

	h.add(s, mcp.NewTool("wiki.get_by_slug",
		mcp.WithDescription("Get a wiki page by project and slug"),
		mcp.WithNumber("project",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithString("slug",
			mcp.Required(),
			mcp.Description("Wiki page slug"),
		),
	), h.handleWikiGetBySlug)

	h.add(s, mcp.NewTool("wiki.create",
		mcp.WithDescription("Create a wiki page"),
		mcp.WithNumber("project",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithString("slug",
			mcp.Required(),
			mcp.Description("Page slug"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Page content in Markdown"),
		),
	), h.handleWikiCreate)

	h.add(s, mcp.NewTool("wiki.edit",
		mcp.WithDescription("Edit a wiki page"),
		mcp.WithNumber("page_id",
			mcp.Required(),
			mcp.Description("Wiki page ID"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("New page content in Markdown"),
		),
		mcp.WithNumber("version",
			mcp.Required(),
			mcp.Description("Current page version, for optimistic concurrency"),
		),
	), h.handleWikiEdit)

	h.add(s, mcp.NewTool("wiki.delete",
		mcp.WithDescription("Delete a wiki page"),
		mcp.WithNumber("page_id",
			mcp.Required(),
			mcp.Description("Wiki page ID"),
		),
	), h.handleWikiDelete)
}

func (h *Handlers) handleWikiList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filters := url.Values{}
	intFilter(filters, req, "project")
	return h.list(ctx, req, "/wiki", filters)
}

func (h *Handlers) handleWikiGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := requireID(req, "page_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	page, err := h.client.Get(ctx, fmt.Sprintf("/wiki/%d", pageID), nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get wiki page: %v", err)), nil
	}
	return jsonResult(page)
}

func (h *Handlers) handleWikiGetBySlug(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := requireID(req, "project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	query.Set("project", fmt.Sprintf("%d", project))
	query.Set("slug", slug)
	page, err := h.client.Get(ctx, "/wiki/by_slug", query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get wiki page: %v", err)), nil
	}
	return jsonResult(page)
}

func (h *Handlers) handleWikiCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := requireID(req, "project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	page, err := h.client.Post(ctx, "/wiki", map[string]any{
		"project": project,
		"slug":    slug,
		"content": content,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create wiki page: %v", err)), nil
	}
	return jsonResult(page)
}

func (h *Handlers) handleWikiEdit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := requireID(req, "page_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	version, err := requireID(req, "version")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	page, err := h.client.Patch(ctx, fmt.Sprintf("/wiki/%d", pageID), map[string]any{
		"content": content,
		"version": version,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to edit wiki page: %v", err)), nil
	}
	return jsonResult(page)
}

func (h *Handlers) handleWikiDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := requireID(req, "page_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := h.client.Delete(ctx, fmt.Sprintf("/wiki/%d", pageID)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete wiki page: %v", err)), nil
	}
	return jsonResult(map[string]any{"success": true, "page_id": pageID})
}
