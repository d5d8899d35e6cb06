package usecase

import (
	"context"

	"github.com/DRSN-tech/product-recommender/internal/domain"
)

type ProductRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetEmbedding(ctx context.Context, id domain.ProductRef) (domain.Vector, error)
	// UpdateEmbeddings пишет векторы в рамках транзакции из контекста.
	UpdateEmbeddings(ctx context.Context, embeddings []domain.Embedding) error
}

// Matcher ищет продукты, похожие на заданный эмбеддинг.
type Matcher interface {
	MatchProducts(ctx context.Context, embedding domain.Vector, params domain.MatchParams) ([]domain.Product, error)
}

type CacheRepository interface {
	// GetListing возвращает nil без ошибки при промахе.
	GetListing(ctx context.Context) ([]domain.Product, error)
	SetListing(ctx context.Context, products []domain.Product) error
}

type EmbeddingRepository interface {
	Upsert(ctx context.Context, embeddings []domain.Embedding) error
}
