package usecase

import (
	"context"

	"github.com/DRSN-tech/product-recommender/internal/domain"
)

type EmbedderInfra interface {
	// Embed возвращает по одному вектору на каждый текст, в том же порядке.
	Embed(ctx context.Context, texts []string) ([]domain.Vector, error)
}
