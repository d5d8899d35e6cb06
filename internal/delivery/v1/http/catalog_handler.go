package http

import (
	"context"
	"net/http"

	"github.com/DRSN-tech/product-recommender/internal/usecase"
	"github.com/DRSN-tech/product-recommender/pkg/e"
	"github.com/DRSN-tech/product-recommender/pkg/logger"
)

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

type CatalogHandler struct {
	catalogUC usecase.CatalogUC
	store     Pinger
	logger    logger.Logger
}

func NewCatalogHandler(catalogUC usecase.CatalogUC, store Pinger, logger logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalogUC: catalogUC, store: store, logger: logger}
}

// listProducts
//
//	@Summary		Список товаров
//	@Description	Полный список товаров каталога без пагинации
//	@Tags			products
//	@Produce		json
//	@Success		200	{object}	ProductsResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/products [get]
func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogUC.ListProducts(r.Context())
	if err != nil {
		h.logger.Errorf(err, "failed to list products")
		WriteError(w, http.StatusInternalServerError, e.ErrInternalServerError.Error())
		return
	}

	WriteJSON(w, http.StatusOK, NewProductsResponse(products))
}

func (h *CatalogHandler) healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warnf("health check failed: %v", err)
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
