package catalog

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/agrovendas/sales-api/internal/common"
	"github.com/agrovendas/sales-api/internal/pricing"
)

// Handler exposes public catalog endpoints.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

// Products handles GET /api/v1/products with an optional category filter.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	products, err := h.service.Products(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusBadGateway, "UPSTREAM", "catalog source unavailable", nil)
		return
	}
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		filtered := make([]pricing.Product, 0, len(products))
		for _, p := range products {
			if p.Category == category {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": products})
}

// Product handles GET /api/v1/products/{productId}.
func (h *Handler) Product(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	id := chi.URLParam(r, "productId")
	cat, err := h.service.Catalog(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusBadGateway, "UPSTREAM", "catalog source unavailable", nil)
		return
	}
	p, ok := cat[id]
	if !ok {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": p})
}

// Refresh handles POST /api/v1/catalog/refresh, forcing a re-fetch past the cache.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	products, err := h.service.Refresh(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusBadGateway, "UPSTREAM", "catalog source unavailable", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"products": len(products)}})
}
