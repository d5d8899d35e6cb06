package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/product-recommender/internal/domain"
	"github.com/DRSN-tech/product-recommender/pkg/e"
	"github.com/DRSN-tech/product-recommender/pkg/logger"
)

const cacheFillTimeout = 500 * time.Millisecond

// CatalogUseCase отдаёт список продуктов для витрины. Кэш необязателен (cacheRepo может быть nil).
type CatalogUseCase struct {
	productRepo ProductRepository
	cacheRepo   CacheRepository
	logger      logger.Logger
}

func NewCatalogUC(productRepo ProductRepository, cacheRepo CacheRepository, logger logger.Logger) *CatalogUseCase {
	return &CatalogUseCase{
		productRepo: productRepo,
		cacheRepo:   cacheRepo,
		logger:      logger,
	}
}

// ListProducts возвращает полный список продуктов: сначала из кэша, при промахе — из хранилища.
func (c *CatalogUseCase) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "CatalogUseCase.ListProducts"

	if c.cacheRepo != nil {
		cached, err := c.cacheRepo.GetListing(ctx)
		if err != nil {
			c.logger.Warnf("Failed to read product listing from cache: %v", e.Wrap(op, err))
		} else if cached != nil {
			return cached, nil
		}
	}

	products, err := c.productRepo.ListProducts(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if products == nil {
		products = []domain.Product{}
	}

	if c.cacheRepo != nil {
		// Фоновое добавление списка в кэш
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), cacheFillTimeout)
			defer cancel()

			if err := c.cacheRepo.SetListing(bgCtx, products); err != nil {
				c.logger.Warnf("Failed to cache product listing in background: %v", e.Wrap(op, err))
			}
		}()
	}

	return products, nil
}
