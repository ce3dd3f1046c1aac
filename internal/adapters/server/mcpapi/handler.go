// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/DamynChipman/postit/internal/adapters/server/common"
	"github.com/DamynChipman/postit/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing the board tools.
func NewHandler(cfg Config, notes common.NoteService) (*Handler, error) {
	if notes == nil {
		return nil, fmt.Errorf("note service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerBoardTools(mcpSrv, notes)
	registerNoteTools(mcpSrv, notes)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "postit"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerBoardTools registers the read-only `postit.get_board` and `postit.list_notes` tools.
func registerBoardTools(srv *mcpserver.MCPServer, notes common.NoteService) {
	srv.AddTool(
		mcp.NewTool(
			"postit.get_board",
			mcp.WithDescription("Return the board with every column and its notes in display order."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			board, err := notes.GetBoard(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(board)
			if err != nil {
				return nil, fmt.Errorf("encode get_board result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"postit.list_notes",
			mcp.WithDescription("List notes in board order, optionally limited to one column."),
			mcp.WithString("column_id", mcp.Description("Column id filter")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			rows, err := notes.ListNotes(ctx, req.GetString("column_id", ""))
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"notes": rows,
			})
			if err != nil {
				return nil, fmt.Errorf("encode list_notes result: %w", err)
			}
			return result, nil
		},
	)
}

// registerNoteTools registers note mutation tools.
func registerNoteTools(srv *mcpserver.MCPServer, notes common.NoteService) {
	srv.AddTool(
		mcp.NewTool(
			"postit.add_note",
			mcp.WithDescription("Create a note. Without column_id the note lands in the first column."),
			mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
			mcp.WithString("body", mcp.Description("Optional body text")),
			mcp.WithArray("tags", mcp.Description("Optional tags"), mcp.WithStringItems()),
			mcp.WithString("column_id", mcp.Description("Destination column id")),
			mcp.WithString("due", mcp.Description("Due date as YYYY.MM.DD@hh:mm")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			title, err := req.RequireString("title")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			note, err := notes.AddNote(ctx, common.AddNoteRequest{
				Title:    title,
				Body:     req.GetString("body", ""),
				Tags:     req.GetStringSlice("tags", nil),
				ColumnID: req.GetString("column_id", ""),
				Due:      req.GetString("due", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(note)
			if err != nil {
				return nil, fmt.Errorf("encode add_note result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"postit.move_note",
			mcp.WithDescription("Move one note to the end of another column."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
			mcp.WithString("column_id", mcp.Required(), mcp.Description("Destination column id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			noteID, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			columnID, err := req.RequireString("column_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			note, err := notes.MoveNote(ctx, common.MoveNoteRequest{ID: noteID, ColumnID: columnID})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(note)
			if err != nil {
				return nil, fmt.Errorf("encode move_note result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"postit.edit_note",
			mcp.WithDescription("Update the supplied fields of one note and optionally move it."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
			mcp.WithString("title", mcp.Description("New title")),
			mcp.WithString("body", mcp.Description("New body")),
			mcp.WithArray("tags", mcp.Description("Replacement tags"), mcp.WithStringItems()),
			mcp.WithBoolean("clear_tags", mcp.Description("Remove all tags")),
			mcp.WithString("due", mcp.Description("New due date as YYYY.MM.DD@hh:mm")),
			mcp.WithBoolean("clear_due", mcp.Description("Remove the due date")),
			mcp.WithString("column_id", mcp.Description("Destination column id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			noteID, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			args := req.GetArguments()
			note, err := notes.EditNote(ctx, common.EditNoteRequest{
				ID:        noteID,
				Title:     optionalString(args, "title"),
				Body:      optionalString(args, "body"),
				Tags:      req.GetStringSlice("tags", nil),
				ClearTags: req.GetBool("clear_tags", false),
				Due:       optionalString(args, "due"),
				ClearDue:  req.GetBool("clear_due", false),
				ColumnID:  optionalString(args, "column_id"),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(note)
			if err != nil {
				return nil, fmt.Errorf("encode edit_note result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"postit.delete_note",
			mcp.WithDescription("Delete one note from the board."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			noteID, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := notes.DeleteNote(ctx, noteID); err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"deleted": noteID,
			})
			if err != nil {
				return nil, fmt.Errorf("encode delete_note result: %w", err)
			}
			return result, nil
		},
	)
}

// optionalString returns a pointer to a string argument when the caller supplied it.
func optionalString(args map[string]any, key string) *string {
	raw, ok := args[key]
	if !ok {
		return nil
	}
	value, ok := raw.(string)
	if !ok {
		return nil
	}
	return &value
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, domain.ErrWIPLimitReached):
		return mcp.NewToolResultError("wip_limit_reached: " + err.Error())
	case errors.Is(err, common.ErrConflict):
		return mcp.NewToolResultError("conflict: " + err.Error())
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
