package handlers

import (
	"net/http"

	"github.com/despensa-ai/order-engine/internal/catalog"
	"github.com/despensa-ai/order-engine/internal/observability"
)

// CatalogHandler exposes catalog index status and refresh.
type CatalogHandler struct {
	logger   *observability.Logger
	provider *catalog.Provider
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(logger *observability.Logger, provider *catalog.Provider) *CatalogHandler {
	return &CatalogHandler{logger: logger, provider: provider}
}

// CatalogStatusDTO describes the currently published index.
type CatalogStatusDTO struct {
	Products   int    `json:"products"`
	Categories int    `json:"categories"`
	BuiltAt    string `json:"builtAt"`
}

// Status handles GET /catalog/status. It builds the index on first call.
func (h *CatalogHandler) Status(w http.ResponseWriter, r *http.Request) {
	idx, err := h.provider.Index(r.Context())
	if err != nil {
		h.logger.WithContext(r.Context()).Error().Err(err).Msg("Catalog index unavailable")
		writeError(w, http.StatusBadGateway, "catalog unavailable", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, CatalogStatusDTO{
		Products:   idx.Len(),
		Categories: len(idx.CategoryIDs),
		BuiltAt:    idx.BuiltAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// Refresh handles POST /catalog/refresh. It drops the published index and
// rebuilds from the remote service.
func (h *CatalogHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.provider.Invalidate(r.Context())

	idx, err := h.provider.Index(r.Context())
	if err != nil {
		h.logger.WithContext(r.Context()).Error().Err(err).Msg("Catalog rebuild failed")
		writeError(w, http.StatusBadGateway, "catalog rebuild failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, CatalogStatusDTO{
		Products:   idx.Len(),
		Categories: len(idx.CategoryIDs),
		BuiltAt:    idx.BuiltAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}
