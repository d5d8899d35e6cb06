package pgdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/DRSN-tech/product-recommender/internal/cfg"
	"github.com/DRSN-tech/product-recommender/internal/domain"
	"github.com/DRSN-tech/product-recommender/pkg/e"
	"github.com/DRSN-tech/product-recommender/pkg/store"
	"github.com/DRSN-tech/product-recommender/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jimlawless/whereami"
	"github.com/pgvector/pgvector-go"
	"github.com/shopspring/decimal"
)

var productColumns = []string{"id", "name", "description", "price"}

// productModel — строка таблицы продуктов. name и description могут быть NULL.
type productModel struct {
	ID          domain.ProductID `db:"id"`
	Name        pgtype.Text      `db:"name"`
	Description pgtype.Text      `db:"description"`
	Price       decimal.Decimal  `db:"price"`
}

func (m *productModel) toDomain() domain.Product {
	return *domain.NewProduct(m.ID, m.Name.String, m.Description.String, m.Price)
}

func toProducts(models []productModel) []domain.Product {
	products := make([]domain.Product, len(models))
	for i := range models {
		products[i] = models[i].toDomain()
	}
	return products
}

type embeddingModel struct {
	Embedding *pgvector.Vector `db:"embedding"`
}

// ProductRepo реализует репозиторий продуктов и поиск похожих продуктов
// через хранимую процедуру PostgreSQL.
type ProductRepo struct {
	client *store.Client
	cfg    *cfg.MatchCfg
}

func NewProductRepo(client *store.Client, cfg *cfg.MatchCfg) *ProductRepo {
	return &ProductRepo{
		client: client,
		cfg:    cfg,
	}
}

// ListProducts возвращает все продукты без эмбеддингов.
func (p *ProductRepo) ListProducts(ctx context.Context) ([]domain.Product, error) {
	models, err := store.SelectInto[productModel](ctx, p.client, store.NewQuery(p.cfg.ProductsTable, productColumns...))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return toProducts(models), nil
}

// GetEmbedding возвращает эмбеддинг продукта. Идентификатор передаётся в запрос без проверки.
func (p *ProductRepo) GetEmbedding(ctx context.Context, id domain.ProductRef) (domain.Vector, error) {
	q := store.NewQuery(p.cfg.ProductsTable, "embedding").Where(store.Eq("id", id.QueryArg()))

	model, err := store.SingleInto[embeddingModel](ctx, p.client, q)
	if err != nil {
		if store.IsNoRows(err) {
			return nil, errors.Join(e.ErrProductNotFound, err)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if model.Embedding == nil {
		return nil, nil
	}

	return domain.Vector(model.Embedding.Slice()), nil
}

// MatchProducts вызывает процедуру поиска похожих продуктов (по умолчанию rec_match_products).
func (p *ProductRepo) MatchProducts(ctx context.Context, embedding domain.Vector, params domain.MatchParams) ([]domain.Product, error) {
	call := store.NewCall(p.cfg.Function,
		store.Param{Name: "query_embedding", Value: pgvector.NewVector(embedding.Float32s())},
		store.Param{Name: "match_threshold", Value: params.Threshold},
		store.Param{Name: "match_count", Value: params.Count},
	)
	call.Columns = productColumns

	models, err := store.RPCInto[productModel](ctx, p.client, call)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return toProducts(models), nil
}

// UpdateEmbeddings записывает эмбеддинги батчем в транзакции из контекста.
func (p *ProductRepo) UpdateEmbeddings(ctx context.Context, embeddings []domain.Embedding) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := updateEmbeddingSQL(p.cfg.ProductsTable)

	batch := &pgx.Batch{}
	for _, emb := range embeddings {
		batch.Queue(query, pgvector.NewVector(emb.Vector.Float32s()), emb.ProductID)
	}

	br := tx.SendBatch(ctx, batch)
	for _, emb := range embeddings {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return e.Wrap(whereami.WhereAmI(), err)
		}
		if tag.RowsAffected() == 0 {
			br.Close()
			return e.Wrap(fmt.Sprintf("product %s", emb.ProductID), e.ErrProductNotFound)
		}
	}

	if err := br.Close(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func updateEmbeddingSQL(table string) string {
	return fmt.Sprintf("UPDATE %s SET embedding = $1 WHERE id = $2", store.QuoteName(table))
}
