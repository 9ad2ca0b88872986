package export

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agrovendas/sales-api/internal/common"
	"github.com/agrovendas/sales-api/internal/order"
)

// Handler serves order document downloads.
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

// Document handles GET /api/v1/orders/{orderId}/document.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	name, data, err := h.service.Document(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "document generation failed", nil)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(data)
}
