package draft

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agrovendas/sales-api/internal/common"
	"github.com/agrovendas/sales-api/internal/pricing"
)

// Handler exposes draft order session endpoints.
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

func writeDraftError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "draft not found", nil)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, pricing.ErrLineIndex), errors.Is(err, pricing.ErrNegativeValue):
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	default:
		common.RenderError(w, err)
	}
}

type createRequest struct {
	Client ClientInfo `json:"client"`
}

// Create handles POST /api/v1/drafts.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body", nil)
		return
	}
	v, err := h.service.Create(r.Context(), req.Client)
	if err != nil {
		writeDraftError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": v})
}

// Get handles GET /api/v1/drafts/{draftId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Get(r.Context(), chi.URLParam(r, "draftId"))
	if err != nil {
		writeDraftError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": v})
}

// Discard handles DELETE /api/v1/drafts/{draftId}.
func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Discard(r.Context(), chi.URLParam(r, "draftId")); err != nil {
		writeDraftError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddLine handles POST /api/v1/drafts/{draftId}/lines.
func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.AddLine(r.Context(), chi.URLParam(r, "draftId"))
	if err != nil {
		writeDraftError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": v})
}

func lineIndex(r *http.Request) (int, error) {
	idx, err := strconv.Atoi(chi.URLParam(r, "lineIndex"))
	if err != nil {
		return 0, ErrInvalidInput
	}
	return idx, nil
}

type editLineRequest struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

// EditLine handles PATCH /api/v1/drafts/{draftId}/lines/{lineIndex}.
func (h *Handler) EditLine(w http.ResponseWriter, r *http.Request) {
	idx, err := lineIndex(r)
	if err != nil {
		writeDraftError(w, err)
		return
	}
	var req editLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body", nil)
		return
	}
	v, err := h.service.EditLine(r.Context(), chi.URLParam(r, "draftId"), idx, req.Field, req.Value)
	if err != nil {
		writeDraftError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": v})
}

// RemoveLine handles DELETE /api/v1/drafts/{draftId}/lines/{lineIndex}.
func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	idx, err := lineIndex(r)
	if err != nil {
		writeDraftError(w, err)
		return
	}
	v, err := h.service.RemoveLine(r.Context(), chi.URLParam(r, "draftId"), idx)
	if err != nil {
		writeDraftError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": v})
}

type paymentRequest struct {
	Method   pricing.Method `json:"method"`
	Schedule string         `json:"schedule"`
}

// SetPayment handles PUT /api/v1/drafts/{draftId}/payment.
func (h *Handler) SetPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body", nil)
		return
	}
	v, err := h.service.SetPayment(r.Context(), chi.URLParam(r, "draftId"), req.Method, req.Schedule)
	if err != nil {
		writeDraftError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": v})
}

// Schedules handles GET /api/v1/payment-schedules, listing the supported
// installment plans.
func (h *Handler) Schedules(w http.ResponseWriter, r *http.Request) {
	common.JSON(w, http.StatusOK, map[string]any{"data": pricing.ScheduleNames()})
}
