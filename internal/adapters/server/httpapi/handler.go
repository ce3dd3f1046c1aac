// Package httpapi provides the REST HTTP adapter for the server surfaces.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/DamynChipman/postit/internal/adapters/server/common"
	"github.com/DamynChipman/postit/internal/domain"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	notes common.NoteService
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// moveNoteBody is the POST `/notes/{id}/move` payload.
type moveNoteBody struct {
	ColumnID string `json:"column_id"`
}

// NewHandler constructs one HTTP API adapter over a note service.
func NewHandler(notes common.NoteService) *Handler {
	return &Handler{notes: notes}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.notes == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "note service is not configured",
		})
		return
	}
	path := normalizePath(r.URL.Path)
	switch {
	case path == "board":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleGetBoard(w, r)
		return
	case path == "notes":
		switch r.Method {
		case http.MethodGet:
			h.handleListNotes(w, r)
		case http.MethodPost:
			h.handleAddNote(w, r)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
		return
	default:
		noteID, action, ok := resolveNoteRoute(path)
		if !ok {
			writeJSONError(w, http.StatusNotFound, APIError{
				Code:    "not_found",
				Message: "endpoint not found",
			})
			return
		}
		if action == "move" {
			if r.Method != http.MethodPost {
				writeMethodNotAllowed(w, http.MethodPost)
				return
			}
			h.handleMoveNote(w, r, noteID)
			return
		}
		switch r.Method {
		case http.MethodPatch:
			h.handleEditNote(w, r, noteID)
		case http.MethodDelete:
			h.handleDeleteNote(w, r, noteID)
		default:
			writeMethodNotAllowed(w, http.MethodPatch, http.MethodDelete)
		}
	}
}

// handleGetBoard serves GET `/board`.
func (h *Handler) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.notes.GetBoard(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// handleListNotes serves GET `/notes`.
func (h *Handler) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.ListNotes(r.Context(), strings.TrimSpace(r.URL.Query().Get("column")))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notes": notes,
	})
}

// handleAddNote serves POST `/notes`.
func (h *Handler) handleAddNote(w http.ResponseWriter, r *http.Request) {
	var req common.AddNoteRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	note, err := h.notes.AddNote(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// handleMoveNote serves POST `/notes/{id}/move`.
func (h *Handler) handleMoveNote(w http.ResponseWriter, r *http.Request, noteID string) {
	var body moveNoteBody
	if err := decodeJSONBody(r.Context(), w, r, &body); err != nil {
		writeErrorFrom(w, err)
		return
	}
	note, err := h.notes.MoveNote(r.Context(), common.MoveNoteRequest{ID: noteID, ColumnID: body.ColumnID})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// handleEditNote serves PATCH `/notes/{id}`.
func (h *Handler) handleEditNote(w http.ResponseWriter, r *http.Request, noteID string) {
	var req common.EditNoteRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	// The path id wins over any id in the body.
	req.ID = noteID
	note, err := h.notes.EditNote(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// handleDeleteNote serves DELETE `/notes/{id}`.
func (h *Handler) handleDeleteNote(w http.ResponseWriter, r *http.Request, noteID string) {
	if err := h.notes.DeleteNote(r.Context(), noteID); err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deleted": noteID,
	})
}

// resolveNoteRoute parses `notes/{id}` and `notes/{id}/move`.
func resolveNoteRoute(path string) (string, string, bool) {
	const prefix = "notes/"
	if !strings.HasPrefix(path, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(path, prefix)
	action := ""
	if id, ok := strings.CutSuffix(rest, "/move"); ok {
		rest = id
		action = "move"
	}
	id := strings.TrimSpace(rest)
	if id == "" || strings.Contains(id, "/") {
		return "", "", false
	}
	return id, action, true
}

// normalizePath canonicalizes one request path for route matching.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "/")
	return path
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrWIPLimitReached):
		writeJSONError(w, http.StatusConflict, APIError{
			Code:    "wip_limit_reached",
			Message: err.Error(),
			Hint:    "Move a note out of the destination column first.",
		})
	case errors.Is(err, common.ErrConflict):
		writeJSONError(w, http.StatusConflict, APIError{
			Code:    "conflict",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrInvalidRequest):
		apiErr := APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		}
		if errors.Is(err, domain.ErrInvalidDue) {
			apiErr.Context = map[string]any{"due_layout": "YYYY.MM.DD@hh:mm"}
		}
		writeJSONError(w, http.StatusBadRequest, apiErr)
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
