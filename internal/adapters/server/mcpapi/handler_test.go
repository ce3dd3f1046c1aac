package mcpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/DamynChipman/postit/internal/adapters/server/common"
	"github.com/DamynChipman/postit/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
)

// stubNoteService provides deterministic note responses for MCP tool tests.
type stubNoteService struct {
	board      common.BoardSnapshot
	notes      []common.NoteView
	note       common.NoteView
	err        error
	lastColumn string
	lastAdd    common.AddNoteRequest
	lastMove   common.MoveNoteRequest
	lastEdit   common.EditNoteRequest
	lastDelete string
}

// GetBoard returns the configured snapshot.
func (s *stubNoteService) GetBoard(context.Context) (common.BoardSnapshot, error) {
	if s.err != nil {
		return common.BoardSnapshot{}, s.err
	}
	return s.board, nil
}

// ListNotes records the filter and returns fixture notes.
func (s *stubNoteService) ListNotes(_ context.Context, columnID string) ([]common.NoteView, error) {
	s.lastColumn = columnID
	if s.err != nil {
		return nil, s.err
	}
	return append([]common.NoteView(nil), s.notes...), nil
}

// AddNote records and returns one fixture note.
func (s *stubNoteService) AddNote(_ context.Context, req common.AddNoteRequest) (common.NoteView, error) {
	s.lastAdd = req
	if s.err != nil {
		return common.NoteView{}, s.err
	}
	return s.note, nil
}

// MoveNote records and returns one fixture note.
func (s *stubNoteService) MoveNote(_ context.Context, req common.MoveNoteRequest) (common.NoteView, error) {
	s.lastMove = req
	if s.err != nil {
		return common.NoteView{}, s.err
	}
	return s.note, nil
}

// EditNote records and returns one fixture note.
func (s *stubNoteService) EditNote(_ context.Context, req common.EditNoteRequest) (common.NoteView, error) {
	s.lastEdit = req
	if s.err != nil {
		return common.NoteView{}, s.err
	}
	return s.note, nil
}

// DeleteNote records the deleted id.
func (s *stubNoteService) DeleteNote(_ context.Context, noteID string) error {
	s.lastDelete = noteID
	return s.err
}

// jsonRPCResponse models minimal JSON-RPC response fields used in MCP adapter tests.
type jsonRPCResponse struct {
	ID     float64        `json:"id"`
	Result map[string]any `json:"result"`
}

// callToolRequest constructs one deterministic tools/call JSON-RPC request payload.
func callToolRequest(id int, toolName string, arguments map[string]any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      toolName,
			"arguments": arguments,
		},
	}
}

// toolResultText decodes the first text entry from one tool-call result payload.
func toolResultText(t *testing.T, result map[string]any) string {
	t.Helper()

	contentRaw, ok := result["content"].([]any)
	if !ok || len(contentRaw) == 0 {
		t.Fatalf("content missing in tool result: %#v", result)
	}
	first, ok := contentRaw[0].(map[string]any)
	if !ok {
		t.Fatalf("first content entry has unexpected type: %#v", contentRaw[0])
	}
	text, ok := first["text"].(string)
	if !ok {
		t.Fatalf("content text missing in tool result: %#v", first)
	}
	return text
}

// toolResultStructured decodes structuredContent as one map for stable assertions.
func toolResultStructured(t *testing.T, result map[string]any) map[string]any {
	t.Helper()
	structured, ok := result["structuredContent"].(map[string]any)
	if !ok {
		t.Fatalf("structuredContent missing in tool result: %#v", result)
	}
	return structured
}

// postJSONRPC sends one JSON-RPC payload and decodes the response body.
func postJSONRPC(t *testing.T, client *http.Client, url string, payload any) (*http.Response, jsonRPCResponse) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	var decoded jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := resp.Body.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return resp, decoded
}

// initializeRequest builds a deterministic MCP initialize request payload.
func initializeRequest() map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
			"clientInfo": map[string]any{
				"name":    "postit-test",
				"version": "1.0.0",
			},
		},
	}
}

// callToolResultText decodes the first textual content block from a CallToolResult.
func callToolResultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatalf("result = nil, want non-nil")
	}
	if len(result.Content) == 0 {
		t.Fatalf("result content is empty")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] has unexpected type %T", result.Content[0])
	}
	return text.Text
}

// startServer builds one handler over the stub and completes the initialize handshake.
func startServer(t *testing.T, notes common.NoteService) *httptest.Server {
	t.Helper()
	handler, err := NewHandler(Config{}, notes)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	return server
}

// TestHandlerUsesStatelessTransport verifies MCP transport does not issue session ids.
func TestHandlerUsesStatelessTransport(t *testing.T) {
	handler, err := NewHandler(Config{}, &stubNoteService{})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	server := httptest.NewServer(handler)
	defer server.Close()

	resp, decoded := postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if decoded.ID != 1 {
		t.Fatalf("id = %v, want 1", decoded.ID)
	}
	if got := resp.Header.Get("Mcp-Session-Id"); got != "" {
		t.Fatalf("Mcp-Session-Id header = %q, want empty (stateless transport)", got)
	}
}

// TestHandlerRegistersNoteTools verifies MCP tool discovery lists every board tool.
func TestHandlerRegistersNoteTools(t *testing.T) {
	server := startServer(t, &stubNoteService{})
	_, toolsResp := postJSONRPC(t, server.Client(), server.URL, map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/list",
	})

	toolsRaw, ok := toolsResp.Result["tools"].([]any)
	if !ok {
		t.Fatalf("tools list payload missing tools: %#v", toolsResp.Result)
	}
	toolNames := make([]string, 0, len(toolsRaw))
	for _, toolRaw := range toolsRaw {
		toolMap, ok := toolRaw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := toolMap["name"].(string)
		toolNames = append(toolNames, name)
	}
	for _, required := range []string{
		"postit.get_board",
		"postit.list_notes",
		"postit.add_note",
		"postit.move_note",
		"postit.edit_note",
		"postit.delete_note",
	} {
		if !slices.Contains(toolNames, required) {
			t.Fatalf("tool list missing %q: %#v", required, toolNames)
		}
	}
}

// TestHandlerGetBoardToolCall verifies board snapshots flow through structured content.
func TestHandlerGetBoardToolCall(t *testing.T) {
	notes := &stubNoteService{
		board: common.BoardSnapshot{
			Name:      "acme",
			StateHash: "abc123",
			Columns:   []common.ColumnView{{ID: "todo", Name: "todo", Notes: []common.NoteView{}}},
		},
	}
	server := startServer(t, notes)

	_, callResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(3, "postit.get_board", map[string]any{}))
	structured := toolResultStructured(t, callResp.Result)
	if structured["name"] != "acme" || structured["state_hash"] != "abc123" {
		t.Fatalf("unexpected board payload %#v", structured)
	}
}

// TestHandlerListAndAddToolCalls verifies list filters and add arguments reach the service.
func TestHandlerListAndAddToolCalls(t *testing.T) {
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	notes := &stubNoteService{
		notes: []common.NoteView{{ID: "n1", Title: "one", ColumnID: "doing", CreatedAt: now, UpdatedAt: now}},
		note:  common.NoteView{ID: "n2", Title: "Buy milk", ColumnID: "todo", CreatedAt: now, UpdatedAt: now},
	}
	server := startServer(t, notes)

	_, listResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(3, "postit.list_notes", map[string]any{
		"column_id": "doing",
	}))
	structured := toolResultStructured(t, listResp.Result)
	rows, ok := structured["notes"].([]any)
	if !ok || len(rows) != 1 {
		t.Fatalf("notes = %#v, want one row", structured["notes"])
	}
	if notes.lastColumn != "doing" {
		t.Fatalf("column = %q, want doing", notes.lastColumn)
	}

	_, addResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(4, "postit.add_note", map[string]any{
		"title": "Buy milk",
		"tags":  []string{"home", "errands"},
		"due":   "2024.05.01@09:30",
	}))
	added := toolResultStructured(t, addResp.Result)
	if added["id"] != "n2" {
		t.Fatalf("unexpected add payload %#v", added)
	}
	if notes.lastAdd.Title != "Buy milk" || notes.lastAdd.Due != "2024.05.01@09:30" {
		t.Fatalf("unexpected add request %#v", notes.lastAdd)
	}
	if len(notes.lastAdd.Tags) != 2 || notes.lastAdd.Tags[1] != "errands" {
		t.Fatalf("unexpected add tags %#v", notes.lastAdd.Tags)
	}
}

// TestHandlerEditToolCallOnlySetsSuppliedFields verifies absent arguments stay nil.
func TestHandlerEditToolCallOnlySetsSuppliedFields(t *testing.T) {
	notes := &stubNoteService{note: common.NoteView{ID: "n1"}}
	server := startServer(t, notes)

	_, callResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(3, "postit.edit_note", map[string]any{
		"id":        "n1",
		"title":     "Renamed",
		"clear_due": true,
	}))
	if isErr, _ := callResp.Result["isError"].(bool); isErr {
		t.Fatalf("unexpected tool error %q", toolResultText(t, callResp.Result))
	}
	got := notes.lastEdit
	if got.ID != "n1" || got.Title == nil || *got.Title != "Renamed" {
		t.Fatalf("unexpected edit request %#v", got)
	}
	if got.Body != nil || got.Due != nil || got.ColumnID != nil {
		t.Fatalf("expected absent fields to stay nil, got %#v", got)
	}
	if !got.ClearDue || got.ClearTags {
		t.Fatalf("unexpected clear flags %#v", got)
	}
}

// TestHandlerMoveAndDeleteToolCalls verifies move and delete wiring.
func TestHandlerMoveAndDeleteToolCalls(t *testing.T) {
	notes := &stubNoteService{note: common.NoteView{ID: "n1", ColumnID: "done"}}
	server := startServer(t, notes)

	_, moveResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(3, "postit.move_note", map[string]any{
		"id":        "n1",
		"column_id": "done",
	}))
	if moved := toolResultStructured(t, moveResp.Result); moved["column_id"] != "done" {
		t.Fatalf("unexpected move payload %#v", moved)
	}
	if notes.lastMove.ID != "n1" || notes.lastMove.ColumnID != "done" {
		t.Fatalf("unexpected move request %#v", notes.lastMove)
	}

	_, deleteResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(4, "postit.delete_note", map[string]any{
		"id": "n1",
	}))
	if deleted := toolResultStructured(t, deleteResp.Result); deleted["deleted"] != "n1" {
		t.Fatalf("unexpected delete payload %#v", deleted)
	}
	if notes.lastDelete != "n1" {
		t.Fatalf("deleted id = %q, want n1", notes.lastDelete)
	}
}

// TestHandlerToolCallErrorPaths verifies required-arg and mapped-service errors.
func TestHandlerToolCallErrorPaths(t *testing.T) {
	server := startServer(t, &stubNoteService{})
	_, missingResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(3, "postit.move_note", map[string]any{
		"id": "n1",
	}))
	if isErr, _ := missingResp.Result["isError"].(bool); !isErr {
		t.Fatalf("isError = false, want true for missing column_id")
	}

	failing := startServer(t, &stubNoteService{
		err: errors.Join(common.ErrConflict, domain.ErrWIPLimitReached),
	})
	_, wipResp := postJSONRPC(t, failing.Client(), failing.URL, callToolRequest(4, "postit.move_note", map[string]any{
		"id":        "n1",
		"column_id": "doing",
	}))
	if got := toolResultText(t, wipResp.Result); !strings.HasPrefix(got, "wip_limit_reached:") {
		t.Fatalf("text = %q, want wip_limit_reached prefix", got)
	}
}

// TestNewHandlerRequiresNoteService verifies constructor validation.
func TestNewHandlerRequiresNoteService(t *testing.T) {
	handler, err := NewHandler(Config{}, nil)
	if err == nil {
		t.Fatalf("NewHandler() error = nil, want non-nil")
	}
	if handler != nil {
		t.Fatalf("handler = %#v, want nil", handler)
	}
}

// TestNormalizeConfig verifies deterministic config defaults and path normalization.
func TestNormalizeConfig(t *testing.T) {
	cases := []struct {
		name string
		in   Config
		want Config
	}{
		{
			name: "defaults",
			in:   Config{},
			want: Config{
				ServerName:    "postit",
				ServerVersion: "dev",
				EndpointPath:  "/mcp",
			},
		},
		{
			name: "trimmed values and slash prefix",
			in: Config{
				ServerName:    " postit-server ",
				ServerVersion: " v1.2.3 ",
				EndpointPath:  "custom/path",
			},
			want: Config{
				ServerName:    "postit-server",
				ServerVersion: "v1.2.3",
				EndpointPath:  "/custom/path",
			},
		},
		{
			name: "endpoint trim of repeated slashes",
			in: Config{
				EndpointPath: "///mcp///",
			},
			want: Config{
				ServerName:    "postit",
				ServerVersion: "dev",
				EndpointPath:  "/mcp",
			},
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeConfig(tt.in)
			if got != tt.want {
				t.Fatalf("normalizeConfig() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

// TestHandlerServeHTTPUnavailable verifies nil handler paths fail closed with 503.
func TestHandlerServeHTTPUnavailable(t *testing.T) {
	cases := []struct {
		name    string
		handler *Handler
	}{
		{
			name:    "nil receiver",
			handler: nil,
		},
		{
			name:    "missing inner http handler",
			handler: &Handler{},
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewBufferString(`{}`))
			rec := httptest.NewRecorder()

			tt.handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusServiceUnavailable {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
			}
			if !strings.Contains(rec.Body.String(), "mcp handler unavailable") {
				t.Fatalf("body = %q, want mcp handler unavailable", rec.Body.String())
			}
		})
	}
}

// TestToolResultFromErrorMapping verifies deterministic error-to-tool-result mapping.
func TestToolResultFromErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantPrefix string
	}{
		{name: "nil error", err: nil, wantPrefix: "unknown error"},
		{name: "not found", err: errors.Join(common.ErrNotFound, domain.ErrNoteNotFound), wantPrefix: "not_found:"},
		{name: "wip limit", err: errors.Join(common.ErrConflict, domain.ErrWIPLimitReached), wantPrefix: "wip_limit_reached:"},
		{name: "conflict", err: errors.Join(common.ErrConflict, domain.ErrNoteExists), wantPrefix: "conflict:"},
		{name: "invalid", err: errors.Join(common.ErrInvalidRequest, domain.ErrInvalidDue), wantPrefix: "invalid_request:"},
		{name: "internal", err: errors.New("boom"), wantPrefix: "internal_error:"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			result := toolResultFromError(tt.err)
			if !result.IsError {
				t.Fatalf("IsError = false, want true")
			}
			if got := callToolResultText(t, result); !strings.HasPrefix(got, tt.wantPrefix) {
				t.Fatalf("text = %q, want prefix %q", got, tt.wantPrefix)
			}
		})
	}
}
