package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taiga-contrib/taiga-mcp-go/pkg/pagination"
	"github.com/taiga-contrib/taiga-mcp-go/pkg/taiga"
)

// newHandlers wires real collaborators against a fake Taiga instance.
func newHandlers(t *testing.T, handler http.Handler) *Handlers {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := taiga.NewClient(srv.URL, taiga.WithToken("tok"), taiga.WithMaxRetries(0))
	require.NoError(t, err)

	cfg, err := pagination.NewConfig(50, 10, 1000)
	require.NoError(t, err)

	return New(client, pagination.New(client, cfg), nil, nil)
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultPayload decodes the JSON text content of a successful result.
func resultPayload(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.False(t, res.IsError)
	require.NotEmpty(t, res.Content)
	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	return payload
}

func projectRecords(from, to int) []any {
	items := make([]any, 0, to-from+1)
	for i := from; i <= to; i++ {
		items = append(items, map[string]any{"id": i, "name": fmt.Sprintf("project %d", i)})
	}
	return items
}

func TestProjectsListAutoPaginates(t *testing.T) {
	h := newHandlers(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/projects", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("member"))
		assert.Equal(t, "50", r.URL.Query().Get("page_size"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		switch page {
		case 1:
			json.NewEncoder(w).Encode(map[string]any{"results": projectRecords(1, 50), "next": "p2"})
		default:
			json.NewEncoder(w).Encode(map[string]any{"results": projectRecords(51, 80), "next": nil})
		}
	}))

	res, err := h.handleProjectsList(context.Background(), callRequest(map[string]any{"member": 3}))
	require.NoError(t, err)

	payload := resultPayload(t, res)
	assert.Len(t, payload["items"], 80)
	assert.EqualValues(t, 80, payload["total_items"])
	assert.Equal(t, false, payload["has_more"])
	assert.Equal(t, false, payload["was_truncated"])
}

func TestProjectsListFirstPageOnly(t *testing.T) {
	var calls int
	h := newHandlers(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		json.NewEncoder(w).Encode(map[string]any{"results": projectRecords(1, 50), "next": "p2"})
	}))

	res, err := h.handleProjectsList(context.Background(), callRequest(map[string]any{"auto_paginate": false}))
	require.NoError(t, err)

	payload := resultPayload(t, res)
	assert.Len(t, payload["items"], 50)
	assert.NotContains(t, payload, "has_more")
	assert.Equal(t, 1, calls)
}

func TestProjectsGet(t *testing.T) {
	h := newHandlers(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/projects/7", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"id": 7, "name": "kanban"})
	}))

	res, err := h.handleProjectsGet(context.Background(), callRequest(map[string]any{"project_id": float64(7)}))
	require.NoError(t, err)

	payload := resultPayload(t, res)
	assert.EqualValues(t, 7, payload["id"])
	assert.Equal(t, "kanban", payload["name"])
}

func TestProjectsGetMissingArgument(t *testing.T) {
	h := newHandlers(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))

	res, err := h.handleProjectsGet(context.Background(), callRequest(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestProjectsGetNotFound(t *testing.T) {
	h := newHandlers(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"_error_message": "No Project matches the given query."})
	}))

	res, err := h.handleProjectsGet(context.Background(), callRequest(map[string]any{"project_id": float64(999)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestUserStoriesCreate(t *testing.T) {
	h := newHandlers(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/userstories", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 3, body["project"])
		assert.Equal(t, "Add login form", body["subject"])
		assert.NotContains(t, body, "description")

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": 101, "subject": "Add login form", "version": 1})
	}))

	res, err := h.handleUserStoriesCreate(context.Background(), callRequest(map[string]any{
		"project": float64(3),
		"subject": "Add login form",
	}))
	require.NoError(t, err)

	payload := resultPayload(t, res)
	assert.EqualValues(t, 101, payload["id"])
}

func TestEpicsRelatedUserStoriesBareList(t *testing.T) {
	h := newHandlers(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/epics/9/related_userstories", r.URL.Path)
		// Bare list, no pagination envelope: a short page ends the walk.
		json.NewEncoder(w).Encode([]any{
			map[string]any{"user_story": 1, "epic": 9},
			map[string]any{"user_story": 2, "epic": 9},
		})
	}))

	res, err := h.handleEpicsRelatedUserStories(context.Background(), callRequest(map[string]any{"epic_id": float64(9)}))
	require.NoError(t, err)

	payload := resultPayload(t, res)
	assert.Len(t, payload["items"], 2)
	assert.Equal(t, false, payload["has_more"])
}

func TestProjectsDelete(t *testing.T) {
	h := newHandlers(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/v1/projects/4", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	res, err := h.handleProjectsDelete(context.Background(), callRequest(map[string]any{"project_id": float64(4)}))
	require.NoError(t, err)

	payload := resultPayload(t, res)
	assert.Equal(t, true, payload["success"])
	assert.EqualValues(t, 4, payload["project_id"])
}

func TestListSurfacesAPIErrors(t *testing.T) {
	h := newHandlers(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{"detail": "You do not have permission"})
	}))

	res, err := h.handleProjectsList(context.Background(), callRequest(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
