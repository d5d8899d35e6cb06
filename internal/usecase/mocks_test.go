package usecase

import (
	"context"

	"github.com/DRSN-tech/product-recommender/internal/domain"
	"github.com/stretchr/testify/mock"
)

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]domain.Product)
	return products, args.Error(1)
}

func (m *mockProductRepo) GetEmbedding(ctx context.Context, id domain.ProductRef) (domain.Vector, error) {
	args := m.Called(ctx, id)
	vec, _ := args.Get(0).(domain.Vector)
	return vec, args.Error(1)
}

func (m *mockProductRepo) UpdateEmbeddings(ctx context.Context, embeddings []domain.Embedding) error {
	return m.Called(ctx, embeddings).Error(0)
}

type mockMatcher struct {
	mock.Mock
}

func (m *mockMatcher) MatchProducts(ctx context.Context, embedding domain.Vector, params domain.MatchParams) ([]domain.Product, error) {
	args := m.Called(ctx, embedding, params)
	products, _ := args.Get(0).([]domain.Product)
	return products, args.Error(1)
}

type mockCacheRepo struct {
	mock.Mock
}

func (m *mockCacheRepo) GetListing(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]domain.Product)
	return products, args.Error(1)
}

func (m *mockCacheRepo) SetListing(ctx context.Context, products []domain.Product) error {
	return m.Called(ctx, products).Error(0)
}

type mockEmbedder struct {
	mock.Mock
}

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) ([]domain.Vector, error) {
	args := m.Called(ctx, texts)
	vectors, _ := args.Get(0).([]domain.Vector)
	return vectors, args.Error(1)
}

type mockEmbeddingRepo struct {
	mock.Mock
}

func (m *mockEmbeddingRepo) Upsert(ctx context.Context, embeddings []domain.Embedding) error {
	return m.Called(ctx, embeddings).Error(0)
}
