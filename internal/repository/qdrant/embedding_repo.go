package qdrant

import (
	"context"

	"github.com/DRSN-tech/product-recommender/internal/cfg"
	"github.com/DRSN-tech/product-recommender/internal/domain"
	"github.com/DRSN-tech/product-recommender/pkg/e"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
	"github.com/shopspring/decimal"
)

// PointsClient — методы клиента Qdrant, которые использует репозиторий.
type PointsClient interface {
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
}

// productIDSpace — пространство имён UUID для точек с нечисловыми id продуктов.
var productIDSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("product-recommender/products"))

// EmbeddingRepo репозиторий для работы с embedding-векторами в Qdrant.
// ID точки совпадает с ID продукта, если он числовой или UUID; исходный id всегда лежит в payload.
type EmbeddingRepo struct {
	client PointsClient
	cfg    *cfg.QdrantCfg
}

func NewEmbeddingRepo(client PointsClient, cfg *cfg.QdrantCfg) *EmbeddingRepo {
	return &EmbeddingRepo{
		client: client,
		cfg:    cfg,
	}
}

// Upsert сохраняет или обновляет embedding-векторы в коллекции Qdrant.
func (q *EmbeddingRepo) Upsert(ctx context.Context, embeddings []domain.Embedding) error {
	if len(embeddings) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(embeddings))
	for _, emb := range embeddings {
		payload, err := qdrant.TryValueMap(emb.Payload)
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}

		points = append(points, &qdrant.PointStruct{
			Id:      pointID(emb.ProductID),
			Vectors: qdrant.NewVectors(emb.Vector.Float32s()...),
			Payload: payload,
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// MatchProducts ищет ближайшие точки со сходством не ниже порога.
func (q *EmbeddingRepo) MatchProducts(ctx context.Context, embedding domain.Vector, params domain.MatchParams) ([]domain.Product, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Query:          qdrant.NewQuery(embedding.Float32s()...),
		ScoreThreshold: qdrant.PtrOf(float32(params.Threshold)),
		Limit:          qdrant.PtrOf(uint64(params.Count)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	products := make([]domain.Product, 0, len(points))
	for _, point := range points {
		products = append(products, pointToProduct(point))
	}

	return products, nil
}

// pointID: неотрицательный числовой id становится числовой точкой,
// остальные — UUID (сам id, если это UUID, иначе детерминированный SHA1).
func pointID(id domain.ProductID) *qdrant.PointId {
	if n, ok := id.Int64(); ok && n >= 0 {
		return qdrant.NewIDNum(uint64(n))
	}

	if u, err := uuid.Parse(id.String()); err == nil {
		return qdrant.NewIDUUID(u.String())
	}

	return qdrant.NewIDUUID(uuid.NewSHA1(productIDSpace, []byte(id.String())).String())
}

func payloadProductID(point *qdrant.ScoredPoint) domain.ProductID {
	if v, ok := point.GetPayload()["id"]; ok {
		switch kind := v.GetKind().(type) {
		case *qdrant.Value_IntegerValue:
			return domain.NewIntProductID(kind.IntegerValue)
		case *qdrant.Value_StringValue:
			return domain.NewProductID(kind.StringValue)
		}
	}

	if u := point.GetId().GetUuid(); u != "" {
		return domain.NewProductID(u)
	}

	return domain.NewIntProductID(int64(point.GetId().GetNum()))
}

func pointToProduct(point *qdrant.ScoredPoint) domain.Product {
	payload := point.GetPayload()
	id := payloadProductID(point)

	price := decimal.Zero
	if v, ok := payload["price"]; ok {
		if p, err := decimal.NewFromString(v.GetStringValue()); err == nil {
			price = p
		} else {
			price = decimal.NewFromFloat(v.GetDoubleValue())
		}
	}

	product := domain.NewProduct(id, payload["name"].GetStringValue(), payload["description"].GetStringValue(), price)
	score := point.GetScore()
	product.Similarity = &score

	return *product
}
