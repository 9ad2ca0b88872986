package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agrovendas/sales-api/internal/common"
	"github.com/agrovendas/sales-api/internal/draft"
)

// Handler exposes the persisted order endpoints.
type Handler struct {
	service Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

func writeOrderError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "order is not ready for submission", verr.Issues)
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
	case errors.Is(err, draft.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "draft not found", nil)
	case errors.Is(err, ErrInvalidState):
		common.JSONError(w, http.StatusConflict, "INVALID_STATE", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusBadGateway, "STORE_UNAVAILABLE", "order store request failed", nil)
	}
}

type orderView struct {
	Record
	DueDates []string `json:"dueDates,omitempty"`
}

func view(rec Record) orderView {
	v := orderView{Record: rec}
	for _, d := range rec.DueDates() {
		v.DueDates = append(v.DueDates, d.Format("2006-01-02"))
	}
	return v
}

type submitRequest struct {
	DraftID string `json:"draftId"`
}

// Submit handles POST /api/v1/orders, finalizing a draft session.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DraftID == "" {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "draftId is required", nil)
		return
	}
	rec, err := h.service.Submit(r.Context(), req.DraftID)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": view(rec)})
}

// List handles GET /api/v1/orders with an optional status filter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	status := Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "unknown status filter", nil)
		return
	}
	records, err := h.service.List(r.Context(), status)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	views := make([]orderView, 0, len(records))
	for _, rec := range records {
		views = append(views, view(rec))
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": views})
}

// Get handles GET /api/v1/orders/{orderId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.Get(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		writeOrderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view(rec)})
}

// Update handles PUT /api/v1/orders/{orderId}, replacing the stored document.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var rec Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "malformed order document", nil)
		return
	}
	rec, err := h.service.Replace(r.Context(), chi.URLParam(r, "orderId"), rec)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view(rec)})
}

// Delete handles DELETE /api/v1/orders/{orderId}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "orderId")); err != nil {
		writeOrderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Validate handles POST /api/v1/orders/{orderId}/validate, approving the order.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.Validate(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		writeOrderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view(rec)})
}

// Edit handles POST /api/v1/orders/{orderId}/edit, reopening the order as a
// draft session.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Edit(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		writeOrderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": v})
}
