package clients

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agrovendas/sales-api/internal/common"
)

// Handler exposes the client directory endpoints.
type Handler struct {
	Service *Service
}

// List handles GET /api/v1/clients with search and pagination.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "clients service not configured", nil)
		return
	}
	page, limit := common.ParsePagination(r, 0)
	result, err := h.Service.List(r.Context(), r.URL.Query().Get("q"), page, limit)
	if err != nil {
		common.JSONError(w, http.StatusBadGateway, "UPSTREAM", "client directory unavailable", nil)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(result.Total))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": result.Items,
		"pagination": common.Pagination{
			Page:       result.Page,
			PerPage:    result.Limit,
			TotalItems: result.Total,
		},
	})
}

// History handles GET /api/v1/clients/{registration}/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "clients service not configured", nil)
		return
	}
	registration := chi.URLParam(r, "registration")
	history, err := h.Service.History(r.Context(), registration)
	if err != nil {
		common.JSONError(w, http.StatusBadGateway, "UPSTREAM", "purchase history unavailable", nil)
		return
	}
	if history == nil {
		history = []Purchase{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": history})
}
