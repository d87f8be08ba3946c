package tools

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (h *Handlers) registerMemberships(s *server.MCPServer) {
	h.add(s, mcp.NewTool("memberships.list",
		mcp.WithDescription("List project memberships"),
		mcp.WithNumber("project",
			mcp.Description("Filter by project ID"),
		),
		mcp.WithNumber("role",
			mcp.Description("Filter by role ID"),
		),
		withAutoPaginate(),
	), h.handleMembershipsList)

	h.add(s, mcp.NewTool("memberships.get",
		mcp.WithDescription("Get a membership by ID"),
		mcp.WithNumber("membership_id",
			mcp.Required(),
			mcp.Description("Membership ID"),
		),
	), h.handleMembershipsGet)

	h.add(s, mcp.NewTool("memberships.create",
		mcp.WithDescription("Invite a user to a project by email"),
		mcp.WithNumber("project",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithNumber("role",
			mcp.Required(),
			mcp.Description("Role ID the member will get"),
		),
		mcp.WithString("username",
			mcp.Required(),
			mcp.Description("Username or email of the invitee"),
		),
	), h.handleMembershipsCreate)

	h.add(s, mcp.NewTool("memberships.edit",
		mcp.WithDescription("Change the role of a membership"),
		mcp.WithNumber("membership_id",
			mcp.Required(),
			mcp.Description("Membership ID"),
		),
		mcp.WithNumber("role",
			mcp.Required(),
			mcp.Description("New role ID"),
		),
	), h.handleMembershipsEdit)

	h.add(s, mcp.NewTool("memberships.delete",
		mcp.WithDescription("Remove a member from a project"),
		mcp.WithNumber("membership_id",
			mcp.Required(),
			mcp.Description("Membership ID"),
		),
	), h.handleMembershipsDelete)
}

func (h *Handlers) handleMembershipsList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filters := url.Values{}
	intFilter(filters, req, "project")
	intFilter(filters, req, "role")
	return h.list(ctx, req, "/memberships", filters)
}

func (h *Handlers) handleMembershipsGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	membershipID, err := requireID(req, "membership_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	membership, err := h.client.Get(ctx, fmt.Sprintf("/memberships/%d", membershipID), nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get membership: %v", err)), nil
	}
	return jsonResult(membership)
}

func (h *Handlers) handleMembershipsCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := requireID(req, "project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	role, err := requireID(req, "role")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	username, err := req.RequireString("username")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	membership, err := h.client.Post(ctx, "/memberships", map[string]any{
		"project":  project,
		"role":     role,
		"username": username,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create membership: %v", err)), nil
	}
	return jsonResult(membership)
}

func (h *Handlers) handleMembershipsEdit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	membershipID, err := requireID(req, "membership_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	role, err := requireID(req, "role")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	membership, err := h.client.Patch(ctx, fmt.Sprintf("/memberships/%d", membershipID), map[string]any{
		"role": role,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to edit membership: %v", err)), nil
	}
	return jsonResult(membership)
}

func (h *Handlers) handleMembershipsDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	membershipID, err := requireID(req, "membership_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := h.client.Delete(ctx, fmt.Sprintf("/memberships/%d", membershipID)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete membership: %v", err)), nil
	}
	return jsonResult(map[string]any{"success": true, "membership_id": membershipID})
}
