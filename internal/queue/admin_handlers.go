package queue

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agrovendas/sales-api/internal/common"
)

// AdminHandler exposes queue management endpoints for DLQ inspection and
// recovery.
type AdminHandler struct {
	DLQ      DLQ
	Queue    Enqueuer
	Kinds    []string
	PageSize int
	Logger   *zerolog.Logger
}

func (h *AdminHandler) pageSize() int {
	if h.PageSize > 0 {
		return h.PageSize
	}
	return 20
}

func (h *AdminHandler) kind(r *http.Request) string {
	kind := strings.TrimSpace(r.URL.Query().Get("kind"))
	return sanitizeKind(kind)
}

// ListDLQ handles GET /admin/queue/dlq?kind=...
func (h *AdminHandler) ListDLQ(w http.ResponseWriter, r *http.Request) {
	kind := h.kind(r)
	if kind == "" {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "kind query parameter is required", nil)
		return
	}
	page, perPage := common.ParsePagination(r, h.pageSize())
	entries, total, err := h.DLQ.List(r.Context(), kind, perPage, (page-1)*perPage)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list dead letter entries", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": entries,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: int(total),
		},
	})
}

type dlqActionRequest struct {
	Kind  string `json:"kind"`
	Token string `json:"token"`
}

func (h *AdminHandler) decodeAction(w http.ResponseWriter, r *http.Request) (dlqActionRequest, bool) {
	var req dlqActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body", nil)
		return req, false
	}
	req.Kind = sanitizeKind(req.Kind)
	if req.Kind == "" || req.Token == "" {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "kind and token are required", nil)
		return req, false
	}
	return req, true
}

// RequeueDLQ handles POST /admin/queue/dlq/requeue.
func (h *AdminHandler) RequeueDLQ(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeAction(w, r)
	if !ok {
		return
	}
	if err := h.DLQ.Requeue(r.Context(), req.Kind, req.Token, h.Queue); err != nil {
		if errors.Is(err, ErrDLQEntryNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "dead letter entry not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to requeue entry", nil)
		return
	}
	if h.Logger != nil {
		h.Logger.Info().Str("kind", req.Kind).Msg("dead letter entry requeued")
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"requeued": true}})
}

// DeleteDLQ handles POST /admin/queue/dlq/delete.
func (h *AdminHandler) DeleteDLQ(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeAction(w, r)
	if !ok {
		return
	}
	if err := h.DLQ.Delete(r.Context(), req.Kind, req.Token); err != nil {
		if errors.Is(err, ErrDLQEntryNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "dead letter entry not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to delete entry", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"deleted": true}})
}

// Stats handles GET /admin/queue/stats, reporting DLQ sizes per known kind.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	sizes := make(map[string]int64, len(h.Kinds))
	for _, kind := range h.Kinds {
		size, err := h.DLQ.Size(r.Context(), kind)
		if err != nil {
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to read queue stats", nil)
			return
		}
		sizes[kind] = size
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"dlq": sizes}})
}
