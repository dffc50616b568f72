// Package httpapi exposes the message board over HTTP. Handlers translate
// requests into store/registry calls and results into JSON envelopes; mirror
// failures degrade responses, only local-store failures surface as 500s.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/edgard/commitboard/internal/board"
	"github.com/edgard/commitboard/internal/database"
	errs "github.com/edgard/commitboard/internal/errors"
	"github.com/edgard/commitboard/internal/metrics"
	"github.com/edgard/commitboard/internal/mirror"
)

// MirrorService is the slice of the mirror registry the handlers consume.
type MirrorService interface {
	PublishPrimary(ctx context.Context, content, correlationID string) string
	RecentAll(ctx context.Context, since time.Time, limit int) []board.Message
	PushAll(ctx context.Context) map[string]mirror.PushStatus
}

// Handler carries the dependencies shared by all endpoints.
type Handler struct {
	store   database.Store
	mirrors MirrorService
	limit   int
	logger  *slog.Logger
}

// NewHandler creates the endpoint set. limit caps the aggregated view
// returned by GET /messages.
func NewHandler(store database.Store, mirrors MirrorService, limit int, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if limit <= 0 {
		limit = 50
	}
	return &Handler{
		store:   store,
		mirrors: mirrors,
		limit:   limit,
		logger:  logger.With("component", "httpapi"),
	}
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type createMessageRequest struct {
	Content string `json:"content"`
}

type createMessageResponse struct {
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	ID         int64   `json:"id"`
	CommitHash *string `json:"commit_hash"`
}

// listMessages handles GET /messages: local rows merged with mirror-derived
// history, ascending by timestamp, capped. Mirror failures only shrink the
// result; a local store failure is the one unrecoverable case.
func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	local, err := h.store.RecentMessages(ctx, h.limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to read messages from local store", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}

	remote := h.mirrors.RecentAll(ctx, time.Time{}, h.limit)

	merged := board.Merge(local, remote, h.limit)
	writeJSON(w, http.StatusOK, merged)
}

// createMessage handles POST /messages: local-first durability, then a
// best-effort mirror publish whose commit hash is attached on success.
func (h *Handler) createMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON format")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "missing or empty content field")
		return
	}

	id, err := h.store.AppendMessage(ctx, req.Content)
	if err != nil {
		var vErr *errs.ValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusBadRequest, vErr.Error())
			return
		}
		h.logger.ErrorContext(ctx, "Failed to store message", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store message")
		return
	}
	metrics.MessagesAppended.Inc()

	correlationID := strconv.FormatInt(id, 10)
	resp := createMessageResponse{
		Status:  "success",
		Message: "Message received",
		ID:      id,
	}

	if sha := h.mirrors.PublishPrimary(ctx, req.Content, correlationID); sha != "" {
		if err := h.store.AttachCommitRef(ctx, id, sha); err != nil {
			// The mirror commit exists either way; the local row just keeps
			// a NULL reference.
			h.logger.ErrorContext(ctx, "Failed to attach commit hash", "message_id", id, "sha", sha, "error", err)
		} else {
			resp.CommitHash = &sha
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

// pushMirrors handles POST /push: a per-mirror branch-head status map.
func (h *Handler) pushMirrors(w http.ResponseWriter, r *http.Request) {
	statuses := h.mirrors.PushAll(r.Context())
	writeJSON(w, http.StatusOK, statuses)
}

// health handles GET /health from the local store's ping.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "error", Message: "database unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok", Message: "ready"})
}

// notFound keeps unknown paths on the JSON error envelope.
func notFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "endpoint not found")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, statusResponse{Status: "error", Message: message})
}
