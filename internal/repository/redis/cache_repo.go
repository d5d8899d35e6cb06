package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DRSN-tech/product-recommender/internal/cfg"
	"github.com/DRSN-tech/product-recommender/internal/domain"
	"github.com/DRSN-tech/product-recommender/pkg/clients"
	"github.com/DRSN-tech/product-recommender/pkg/e"
	"github.com/DRSN-tech/product-recommender/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

const listingKey = "products:listing"

// productModel — представление продукта в кэше. Цена хранится строкой без потери точности.
type productModel struct {
	ID          domain.ProductID `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       string           `json:"price"`
}

// CacheRepo кэширует список продуктов витрины: ключ product:<id> на каждый продукт
// и индексный ключ products:listing со списком ID в исходном порядке.
type CacheRepo struct {
	client *clients.RedisClient
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// GetListing возвращает закэшированный список продуктов.
// Промах индекса или любого продукта считается промахом всего списка: (nil, nil).
func (r *CacheRepo) GetListing(ctx context.Context) ([]domain.Product, error) {
	idsRaw, err := r.client.Client.Get(ctx, listingKey).Bytes()
	if err != nil {
		if clients.IsNil(err) {
			return nil, nil // cache miss
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var ids []domain.ProductID
	if err := json.Unmarshal(idsRaw, &ids); err != nil {
		r.logger.Warnf("Redis listing unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, nil
	}

	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	keys := r.buildProductCacheKeys(ids)
	values, err := r.client.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make([]domain.Product, 0, len(values))
	for i, val := range values {
		data, err := redisValueToBytes(val, keys[i])
		if err != nil {
			r.logger.Warnf("%v", e.Wrap(whereami.WhereAmI(), err))
			return nil, nil
		}

		if data == nil {
			return nil, nil // cache miss
		}

		product, err := r.unmarshalProductFromCache(data)
		if err != nil {
			r.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
			return nil, nil
		}

		if product.ID != ids[i] {
			r.logger.Warnf("Cache ID mismatch: key_id: %s, model_id: %s", ids[i], product.ID)
			return nil, nil
		}

		result = append(result, *product)
	}

	return result, nil
}

// SetListing кэширует продукты и индекс одним пайплайном с TTL из конфигурации.
func (r *CacheRepo) SetListing(ctx context.Context, products []domain.Product) error {
	ids := make([]domain.ProductID, 0, len(products))

	pipeline := r.client.Client.Pipeline()
	for i := range products {
		data, err := r.marshalProductForCache(&products[i])
		if err != nil {
			return e.Wrap(fmt.Sprintf("product %s", products[i].ID), err)
		}

		ids = append(ids, products[i].ID)
		pipeline.Set(ctx, r.productKey(products[i].ID), data, r.cfg.ListingTTL)
	}

	idsRaw, err := json.Marshal(ids)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	pipeline.Set(ctx, listingKey, idsRaw, r.cfg.ListingTTL)

	if _, err := pipeline.Exec(ctx); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// marshalProductForCache сериализует продукт в JSON для кэша
func (r *CacheRepo) marshalProductForCache(p *domain.Product) ([]byte, error) {
	return json.Marshal(productModel{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.String(),
	})
}

// unmarshalProductFromCache десериализует JSON из кэша в продукт
func (r *CacheRepo) unmarshalProductFromCache(data []byte) (*domain.Product, error) {
	var model productModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}

	price, err := decimal.NewFromString(model.Price)
	if err != nil {
		return nil, err
	}

	return domain.NewProduct(model.ID, model.Name, model.Description, price), nil
}

// buildProductCacheKeys формирует Redis-ключи из ID продуктов
func (r *CacheRepo) buildProductCacheKeys(ids []domain.ProductID) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.productKey(id)
	}

	return keys
}

// productKey возвращает Redis-ключ для одного продукта
func (r *CacheRepo) productKey(id domain.ProductID) string {
	return "product:" + id.String()
}

// redisValueToBytes конвертирует значение из Redis в []byte.
// Поддерживает string и []byte, возвращает ошибку для неизвестных типов.
func redisValueToBytes(val interface{}, key string) ([]byte, error) {
	switch v := val.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case nil:
		return nil, nil // cache miss
	default:
		return nil, fmt.Errorf("unexpected Redis value type for key %s: %T", key, val)
	}
}
