package qdrant

import (
	"context"
	"errors"
	"testing"

	"github.com/DRSN-tech/product-recommender/internal/cfg"
	"github.com/DRSN-tech/product-recommender/internal/domain"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPointsClient struct {
	mock.Mock
}

func (m *mockPointsClient) Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	args := m.Called(ctx, request)
	res, _ := args.Get(0).(*qdrant.UpdateResult)
	return res, args.Error(1)
}

func (m *mockPointsClient) Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	args := m.Called(ctx, request)
	res, _ := args.Get(0).([]*qdrant.ScoredPoint)
	return res, args.Error(1)
}

var testCfg = &cfg.QdrantCfg{QdrantCollectionName: "recproducts"}

func TestEmbeddingRepo_Upsert(t *testing.T) {
	client := new(mockPointsClient)
	p := domain.NewProduct(domain.NewIntProductID(7), "Lamp", "Desk lamp", decimal.RequireFromString("25.5"))
	emb := domain.NewEmbedding(p.ID, domain.Vector{0.1, 0.2}, domain.NewPayload(p))

	client.On("Upsert", mock.Anything, mock.MatchedBy(func(req *qdrant.UpsertPoints) bool {
		if req.GetCollectionName() != "recproducts" || len(req.GetPoints()) != 1 {
			return false
		}
		point := req.GetPoints()[0]
		return point.GetId().GetNum() == 7 &&
			point.GetPayload()["id"].GetIntegerValue() == 7 &&
			point.GetPayload()["name"].GetStringValue() == "Lamp" &&
			point.GetPayload()["price"].GetStringValue() == "25.5"
	})).Return(&qdrant.UpdateResult{}, nil)

	require.NoError(t, NewEmbeddingRepo(client, testCfg).Upsert(context.Background(), []domain.Embedding{*emb}))
	client.AssertExpectations(t)
}

func TestEmbeddingRepo_Upsert_TextID(t *testing.T) {
	client := new(mockPointsClient)
	p := domain.NewProduct(domain.NewProductID("sku-7"), "Lamp", "", decimal.NewFromInt(1))
	emb := domain.NewEmbedding(p.ID, domain.Vector{0.1}, domain.NewPayload(p))

	var got *qdrant.UpsertPoints
	client.On("Upsert", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(*qdrant.UpsertPoints) }).
		Return(&qdrant.UpdateResult{}, nil)

	require.NoError(t, NewEmbeddingRepo(client, testCfg).Upsert(context.Background(), []domain.Embedding{*emb}))
	require.Len(t, got.GetPoints(), 1)
	point := got.GetPoints()[0]
	assert.Equal(t, uuid.NewSHA1(productIDSpace, []byte("sku-7")).String(), point.GetId().GetUuid())
	assert.Equal(t, "sku-7", point.GetPayload()["id"].GetStringValue())
}

func TestPointID(t *testing.T) {
	assert.Equal(t, uint64(12), pointID(domain.NewIntProductID(12)).GetNum())

	u := "0b6c1f4e-6d39-4a53-8d0e-4f1f6a2f3b11"
	assert.Equal(t, u, pointID(domain.NewProductID(u)).GetUuid())

	neg := pointID(domain.NewIntProductID(-1))
	assert.NotEmpty(t, neg.GetUuid())
	assert.Equal(t, neg.GetUuid(), pointID(domain.NewIntProductID(-1)).GetUuid(), "stable for the same id")
}

func TestEmbeddingRepo_Upsert_Empty(t *testing.T) {
	client := new(mockPointsClient)

	require.NoError(t, NewEmbeddingRepo(client, testCfg).Upsert(context.Background(), nil))
	client.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestEmbeddingRepo_MatchProducts(t *testing.T) {
	client := new(mockPointsClient)
	points := []*qdrant.ScoredPoint{
		{
			Id:    qdrant.NewIDNum(2),
			Score: 0.93,
			Payload: qdrant.NewValueMap(map[string]any{
				"id":          int64(2),
				"name":        "Desk",
				"description": "Oak desk",
				"price":       "199.90",
			}),
		},
		{
			Id:    qdrant.NewIDNum(3),
			Score: 0.81,
			Payload: qdrant.NewValueMap(map[string]any{
				"name":  "Shelf",
				"price": 15.5,
			}),
		},
		{
			Id:    qdrant.NewIDUUID("0b6c1f4e-6d39-4a53-8d0e-4f1f6a2f3b11"),
			Score: 0.8,
			Payload: qdrant.NewValueMap(map[string]any{
				"id":    "p4",
				"name":  "Stool",
				"price": "9",
			}),
		},
	}

	client.On("Query", mock.Anything, mock.MatchedBy(func(req *qdrant.QueryPoints) bool {
		return req.GetCollectionName() == "recproducts" &&
			req.GetLimit() == 5 &&
			req.GetScoreThreshold() == float32(0.78)
	})).Return(points, nil)

	products, err := NewEmbeddingRepo(client, testCfg).
		MatchProducts(context.Background(), domain.Vector{1, 0}, domain.DefaultMatchParams())
	require.NoError(t, err)
	require.Len(t, products, 3)

	assert.Equal(t, domain.NewIntProductID(2), products[0].ID)
	assert.Equal(t, "Oak desk", products[0].Description)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("199.9")))
	require.NotNil(t, products[0].Similarity)
	assert.InDelta(t, 0.93, *products[0].Similarity, 1e-6)

	assert.Equal(t, domain.NewIntProductID(3), products[1].ID, "falls back to point id")
	assert.True(t, products[1].Price.Equal(decimal.RequireFromString("15.5")))

	assert.Equal(t, domain.NewProductID("p4"), products[2].ID)
}

func TestEmbeddingRepo_MatchProducts_Error(t *testing.T) {
	client := new(mockPointsClient)
	client.On("Query", mock.Anything, mock.Anything).Return(nil, errors.New("collection not found"))

	_, err := NewEmbeddingRepo(client, testCfg).
		MatchProducts(context.Background(), domain.Vector{1}, domain.DefaultMatchParams())
	assert.Error(t, err)
}
