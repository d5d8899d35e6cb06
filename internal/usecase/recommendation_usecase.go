package usecase

import (
	"context"
	"errors"

	"github.com/DRSN-tech/product-recommender/internal/domain"
	"github.com/DRSN-tech/product-recommender/pkg/e"
	"github.com/DRSN-tech/product-recommender/pkg/logger"
	"github.com/DRSN-tech/product-recommender/pkg/store"
)

// RecommendationUseCase ищет продукты, похожие на выбранный.
// Каждый запрос обрабатывается независимо: поиск эмбеддинга, затем поиск похожих.
type RecommendationUseCase struct {
	productRepo ProductRepository
	matcher     Matcher
	params      domain.MatchParams
	logger      logger.Logger
}

func NewRecommendationUC(productRepo ProductRepository, matcher Matcher, logger logger.Logger) *RecommendationUseCase {
	return &RecommendationUseCase{
		productRepo: productRepo,
		matcher:     matcher,
		params:      domain.DefaultMatchParams(),
		logger:      logger,
	}
}

// Recommend возвращает не более params.Count продуктов со сходством выше params.Threshold.
// Ошибки не повторяются: каждая ошибка хранилища сразу становится RecommendationFailure.
func (r *RecommendationUseCase) Recommend(ctx context.Context, req *domain.RecommendationRequest) RecommendationResult {
	const op = "RecommendationUseCase.Recommend"

	r.logger.Infof("recommendations requested for product %s", req.ProductID)

	embedding, err := r.productRepo.GetEmbedding(ctx, req.ProductID)
	if err != nil {
		kind := FailureLookup
		if errors.Is(err, e.ErrProductNotFound) {
			kind = FailureNotFound
		}

		return NewRecommendationFailure(kind, publicMessage(err, e.ErrLookupFailed), e.Wrap(op, err))
	}

	if len(embedding) == 0 {
		return NewRecommendationFailure(FailureLookup, e.ErrEmbeddingMissing.Error(), e.Wrap(op, e.ErrEmbeddingMissing))
	}

	items, err := r.matcher.MatchProducts(ctx, embedding, r.params)
	if err != nil {
		return NewRecommendationFailure(FailureMatch, publicMessage(err, e.ErrMatchFailed), e.Wrap(op, err))
	}

	if len(items) > r.params.Count {
		items = items[:r.params.Count]
	}

	return NewRecommendationSuccess(items)
}

// publicMessage возвращает сообщение хранилища без префиксов обёрток,
// а для прочих ошибок — текст fallback.
func publicMessage(err error, fallback error) string {
	var se *store.Error
	if errors.As(err, &se) {
		return se.Message
	}

	return fallback.Error()
}
