package tools

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (h *Handlers) registerIssues(s *server.MCPServer) {
	h.add(s, mcp.NewTool("issues.list",
		mcp.WithDescription("List issues"),
		mcp.WithNumber("project",
			mcp.Description("Filter by project ID"),
		),
		mcp.WithNumber("milestone",
			mcp.Description("Filter by milestone (sprint) ID"),
		),
		mcp.WithNumber("status",
			mcp.Description("Filter by status ID"),
		),
		mcp.WithNumber("severity",
			mcp.Description("Filter by severity ID"),
		),
		mcp.WithNumber("priority",
			mcp.Description("Filter by priority ID"),
		),
		mcp.WithNumber("assigned_to",
			mcp.Description("Filter by assignee user ID"),
		),
		mcp.WithString("order_by",
			mcp.Description("Sort field (e.g. severity, -modified_date)"),
		),
		withAutoPaginate(),
	), h.handleIssuesList)

	h.add(s, mcp.NewTool("issues.get",
		mcp.WithDescription("Get an issue by ID"),
		mcp.WithNumber("issue_id",
			mcp.Required(),
			mcp.Description("Issue ID"),
		),
	), h.handleIssuesGet)

	h.add(s, mcp.NewTool("issues.create",
		mcp.WithDescription("Create a new issue"),
		mcp.WithNumber("project",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Issue subject"),
		),
		mcp.WithString("description",
			mcp.Description("Issue description"),
		),
		mcp.WithNumber("priority",
			mcp.Description("Priority ID"),
		),
		mcp.WithNumber("severity",
			mcp.Description("Severity ID"),
		),
		mcp.WithNumber("type",
			mcp.Description("Issue type ID"),
		),
		mcp.WithNumber("milestone",
			mcp.Description("Milestone (sprint) ID"),
		),
		mcp.WithNumber("assigned_to",
			mcp.Description("Assignee user ID"),
		),
	), h.handleIssuesCreate)

	h.add(s, mcp.NewTool("issues.edit",
		mcp.WithDescription("Edit an issue"),
		mcp.WithNumber("issue_id",
			mcp.Required(),
			mcp.Description("Issue ID"),
		),
		mcp.WithNumber("version",
			mcp.Required(),
			mcp.Description("Current issue version, for optimistic concurrency"),
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
		mcp.WithNumber("priority",
			mcp.Description("New priority ID"),
		),
		mcp.WithNumber("severity",
			mcp.Description("New severity ID"),
		),
		mcp.WithNumber("assigned_to",
			mcp.Description("New assignee user ID"),
		),
	), h.handleIssuesEdit)

	h.add(s, mcp.NewTool("issues.delete",
		mcp.WithDescription("Delete an issue"),
		mcp.WithNumber("issue_id",
			mcp.Required(),
			mcp.Description("Issue ID"),
		),
	), h.handleIssuesDelete)

	h.add(s, mcp.NewTool("issues.watch",
		mcp.WithDescription("Watch an issue"),
		mcp.WithNumber("issue_id",
			mcp.Required(),
			mcp.Description("Issue ID"),
		),
	), h.issueAction("watch"))

	h.add(s, mcp.NewTool("issues.unwatch",
		mcp.WithDescription("Stop watching an issue"),
		mcp.WithNumber("issue_id",
			mcp.Required(),
			mcp.Description("Issue ID"),
		),
	), h.issueAction("unwatch"))

	h.add(s, mcp.NewTool("issues.upvote",
		mcp.WithDescription("Upvote an issue"),
		mcp.WithNumber("issue_id",
			mcp.Required(),
			mcp.Description("Issue ID"),
		),
	), h.issueAction("upvote"))

	h.add(s, mcp.NewTool("issues.downvote",
		mcp.WithDescription("Remove your vote from an issue"),
		mcp.WithNumber("issue_id",
			mcp.Required(),
			mcp.Description("Issue ID"),
		),
	), h.issueAction("downvote"))

	h.add(s, mcp.NewTool("issues.statuses",
		mcp.WithDescription("List issue statuses of a project"),
		mcp.WithNumber("project",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		withAutoPaginate(),
	), h.lookupList("/issue-statuses"))

	h.add(s, mcp.NewTool("issues.priorities",
		mcp.WithDescription("List issue priorities of a project"),
		mcp.WithNumber("project",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		withAutoPaginate(),
	), h.lookupList("/priorities"))

	h.add(s, mcp.NewTool("issues.severities",
		mcp.WithDescription("List issue severities of a project"),
		mcp.WithNumber("project",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		withAutoPaginate(),
	), h.lookupList("/severities"))

	h.add(s, mcp.NewTool("issues.types",
		mcp.WithDescription("List issue types of a project"),
		mcp.WithNumber("project",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		withAutoPaginate(),
	), h.lookupList("/issue-types"))
}

func (h *Handlers) handleIssuesList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filters := url.Values{}
	intFilter(filters, req, "project")
	intFilter(filters, req, "milestone")
	intFilter(filters, req, "status")
	intFilter(filters, req, "severity")
	intFilter(filters, req, "priority")
	intFilter(filters, req, "assigned_to")
	strFilter(filters, req, "order_by")
	return h.list(ctx, req, "/issues", filters)
}

func (h *Handlers) handleIssuesGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	issueID, err := requireID(req, "issue_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	issue, err := h.client.Get(ctx, fmt.Sprintf("/issues/%d", issueID), nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get issue: %v", err)), nil
	}
	return jsonResult(issue)
}

func (h *Handlers) handleIssuesCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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
	setIfInt(body, req, "priority")
	setIfInt(body, req, "severity")
	setIfInt(body, req, "type")
	setIfInt(body, req, "milestone")
	setIfInt(body, req, "assigned_to")

	issue, err := h.client.Post(ctx, "/issues", body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create issue: %v", err)), nil
	}
	return jsonResult(issue)
}

func (h *Handlers) handleIssuesEdit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	issueID, err := requireID(req, "issue_id")
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
	setIfInt(body, req, "priority")
	setIfInt(body, req, "severity")
	setIfInt(body, req, "assigned_to")

	issue, err := h.client.Patch(ctx, fmt.Sprintf("/issues/%d", issueID), body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to edit issue: %v", err)), nil
	}
	return jsonResult(issue)
}

func (h *Handlers) handleIssuesDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	issueID, err := requireID(req, "issue_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := h.client.Delete(ctx, fmt.Sprintf("/issues/%d", issueID)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete issue: %v", err)), nil
	}
	return jsonResult(map[string]any{"success": true, "issue_id": issueID})
}

func (h *Handlers) issueAction(action string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		issueID, err := requireID(req, "issue_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if _, err := h.client.Post(ctx, fmt.Sprintf("/issues/%d/%s", issueID, action), nil); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to %s issue: %v", action, err)), nil
		}
		return jsonResult(map[string]any{"success": true, "issue_id": issueID, "action": action})
	}
}

// lookupList builds a handler for the small project-scoped lookup tables
// (statuses, priorities, severities, types).
func (h *Handlers) lookupList(endpoint string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		project, err := requireID(req, "project")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		filters := url.Values{}
		filters.Set("project", fmt.Sprintf("%d", project))
		return h.list(ctx, req, endpoint, filters)
	}
}
