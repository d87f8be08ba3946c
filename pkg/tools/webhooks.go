package tools

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (h *Handlers) registerWebhooks(s *server.MCPServer) {
	h.add(s, mcp.NewTool("webhooks.list",
		mcp.WithDescription("List webhooks"),
		mcp.WithNumber("project",
			mcp.Description("Filter by project ID"),
		),
		withAutoPaginate(),
	), h.handleWebhooksList)

	h.add(s, mcp.NewTool("webhooks.get",
		mcp.WithDescription("Get a webhook by ID"),
		mcp.WithNumber("webhook_id",
			mcp.Required(),
			mcp.Description("Webhook ID"),
		),
	), h.handleWebhooksGet)

	h.add(s, mcp.NewTool("webhooks.create",
		mcp.WithDescription("Create a webhook for a project"),
		mcp.WithNumber("project",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Webhook name"),
		),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("URL notified on project events"),
		),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("Secret key used to sign payloads"),
		),
	), h.handleWebhooksCreate)

	h.add(s, mcp.NewTool("webhooks.edit",
		mcp.WithDescription("Edit a webhook"),
		mcp.WithNumber("webhook_id",
			mcp.Required(),
			mcp.Description("Webhook ID"),
		),
		mcp.WithString("name",
			mcp.Description("New name"),
		),
		mcp.WithString("url",
			mcp.Description("New URL"),
		),
		mcp.WithString("key",
			mcp.Description("New secret key"),
		),
	), h.handleWebhooksEdit)

	h.add(s, mcp.NewTool("webhooks.delete",
		mcp.WithDescription("Delete a webhook"),
		mcp.WithNumber("webhook_id",
			mcp.Required(),
			mcp.Description("Webhook ID"),
		),
	), h.handleWebhooksDelete)

	h.add(s, mcp.NewTool("webhooks.test",
		mcp.WithDescription("Send a test payload through a webhook"),
		mcp.WithNumber("webhook_id",
			mcp.Required(),
			mcp.Description("Webhook ID"),
		),
	), h.handleWebhooksTest)
}

func (h *Handlers) handleWebhooksList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filters := url.Values{}
	intFilter(filters, req, "project")
	return h.list(ctx, req, "/webhooks", filters)
}

func (h *Handlers) handleWebhooksGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	webhookID, err := requireID(req, "webhook_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	webhook, err := h.client.Get(ctx, fmt.Sprintf("/webhooks/%d", webhookID), nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get webhook: %v", err)), nil
	}
	return jsonResult(webhook)
}

func (h *Handlers) handleWebhooksCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := requireID(req, "project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hookURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	webhook, err := h.client.Post(ctx, "/webhooks", map[string]any{
		"project": project,
		"name":    name,
		"url":     hookURL,
		"key":     key,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create webhook: %v", err)), nil
	}
	return jsonResult(webhook)
}

func (h *Handlers) handleWebhooksEdit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	webhookID, err := requireID(req, "webhook_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{}
	setIfString(body, req, "name")
	setIfString(body, req, "url")
	setIfString(body, req, "key")
	if len(body) == 0 {
		return mcp.NewToolResultError("Nothing to update: provide name, url or key"), nil
	}

	webhook, err := h.client.Patch(ctx, fmt.Sprintf("/webhooks/%d", webhookID), body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to edit webhook: %v", err)), nil
	}
	return jsonResult(webhook)
}

func (h *Handlers) handleWebhooksDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	webhookID, err := requireID(req, "webhook_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := h.client.Delete(ctx, fmt.Sprintf("/webhooks/%d", webhookID)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete webhook: %v", err)), nil
	}
	return jsonResult(map[string]any{"success": true, "webhook_id": webhookID})
}

func (h *Handlers) handleWebhooksTest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	webhookID, err := requireID(req, "webhook_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := h.client.Post(ctx, fmt.Sprintf("/webhooks/%d/test", webhookID), nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to test webhook: %v", err)), nil
	}
	return jsonResult(result)
}
