package usecase

import (
	"context"

	"github.com/DRSN-tech/product-recommender/internal/domain"
)

type RecommendationUC interface {
	Recommend(ctx context.Context, req *domain.RecommendationRequest) RecommendationResult
}

type CatalogUC interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

type EmbeddingUC interface {
	RefreshEmbeddings(ctx context.Context) (*RefreshEmbeddingsRes, error)
}
