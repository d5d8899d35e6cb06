package usecase

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/product-recommender/internal/domain"
	"github.com/DRSN-tech/product-recommender/pkg/e"
	"github.com/DRSN-tech/product-recommender/pkg/logger"
	"github.com/DRSN-tech/product-recommender/pkg/tr"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
)

// EmbeddingUseCase пересчитывает эмбеддинги всех продуктов.
type EmbeddingUseCase struct {
	productRepo   ProductRepository
	dbPool        transaction.Transactional
	embedder      EmbedderInfra
	embeddingRepo EmbeddingRepository // nil, если векторный индекс не используется
	logger        logger.Logger
}

func NewEmbeddingUC(
	productRepo ProductRepository,
	dbPool transaction.Transactional,
	embedder EmbedderInfra,
	embeddingRepo EmbeddingRepository,
	logger logger.Logger,
) *EmbeddingUseCase {
	return &EmbeddingUseCase{
		productRepo:   productRepo,
		dbPool:        dbPool,
		embedder:      embedder,
		embeddingRepo: embeddingRepo,
		logger:        logger,
	}
}

// RefreshEmbeddings строит эмбеддинг текста "<name> <description>" для каждого продукта,
// записывает все векторы одной транзакцией и, если задан индекс, загружает их в него.
func (u *EmbeddingUseCase) RefreshEmbeddings(ctx context.Context) (*RefreshEmbeddingsRes, error) {
	const op = "EmbeddingUseCase.RefreshEmbeddings"

	products, err := u.productRepo.ListProducts(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if len(products) == 0 {
		u.logger.Infof("no products to embed")
		return NewRefreshEmbeddingsRes(0, 0), nil
	}

	embeddings, err := u.buildEmbeddings(ctx, products)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := u.storeEmbeddings(ctx, embeddings); err != nil {
		return nil, e.Wrap(op, err)
	}
	u.logger.Infof("stored %d embeddings", len(embeddings))

	indexed := 0
	if u.embeddingRepo != nil {
		if err := u.embeddingRepo.Upsert(ctx, embeddings); err != nil {
			return nil, e.Wrap(op, err)
		}
		indexed = len(embeddings)
		u.logger.Infof("indexed %d embeddings", indexed)
	}

	return NewRefreshEmbeddingsRes(len(embeddings), indexed), nil
}

// buildEmbeddings запрашивает векторы у сервиса эмбеддингов и проверяет ответ.
func (u *EmbeddingUseCase) buildEmbeddings(ctx context.Context, products []domain.Product) ([]domain.Embedding, error) {
	texts := make([]string, len(products))
	for i := range products {
		texts[i] = products[i].EmbeddingText()
	}

	vectors, err := u.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	if len(vectors) == 0 {
		return nil, e.ErrEmptyVectors
	}

	if len(vectors) != len(products) {
		return nil, fmt.Errorf("%w: got %d vectors for %d products", e.ErrEmptyVectors, len(vectors), len(products))
	}

	embeddings := make([]domain.Embedding, 0, len(products))
	for i := range products {
		if len(vectors[i]) == 0 {
			return nil, e.Wrap(fmt.Sprintf("product %s", products[i].ID), e.ErrVectorEmbeddingEmpty)
		}
		embeddings = append(embeddings, *domain.NewEmbedding(products[i].ID, vectors[i], domain.NewPayload(&products[i])))
	}

	return embeddings, nil
}

// storeEmbeddings записывает векторы в хранилище одной транзакцией.
func (u *EmbeddingUseCase) storeEmbeddings(ctx context.Context, embeddings []domain.Embedding) (err error) {
	const op = "EmbeddingUseCase.storeEmbeddings"

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, u.dbPool)
	if err != nil {
		return e.Wrap(op, err)
	}
	// Если произошла ошибка, происходит Rollback транзакции
	defer func() {
		if err != nil && tx.IsActive() {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				u.logger.Warnf("rollback failed: %v", e.Wrap(op, rbErr))
			}
		}
	}()
	ctx = tr.WithTx(ctx, tx.Transaction())

	if err = u.productRepo.UpdateEmbeddings(ctx, embeddings); err != nil {
		return e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}
