package web

import (
	"context"
	"errors"
	"sync"

	"github.com/DRSN-tech/product-recommender/internal/domain"
	"github.com/DRSN-tech/product-recommender/pkg/logger"
)

// RecommendationFetcher запрашивает рекомендации для товара. Реализуется APIClient.
type RecommendationFetcher interface {
	Recommend(ctx context.Context, productID string) ([]domain.Product, error)
}

// RecommendationListView показывает рекомендации для выбранного товара.
// Каждый выбор получает свой контекст: предыдущий запрос отменяется,
// а устаревший ответ не может перезаписать состояние более нового выбора.
type RecommendationListView struct {
	fetcher RecommendationFetcher
	logger  logger.Logger

	mu        sync.Mutex
	productID string
	gen       uint64
	cancel    context.CancelFunc
	state     ViewState[[]domain.Product]
}

func NewRecommendationListView(fetcher RecommendationFetcher, logger logger.Logger) *RecommendationListView {
	return &RecommendationListView{
		fetcher: fetcher,
		logger:  logger,
		state:   Idle[[]domain.Product](),
	}
}

// SetProductID переключает представление на новый товар и ждёт ответа.
// Повторный выбор того же товара не порождает новый запрос, если прошлый не завершился ошибкой.
func (v *RecommendationListView) SetProductID(ctx context.Context, productID string) ViewState[[]domain.Product] {
	v.mu.Lock()
	if productID == v.productID && (v.state.IsLoading() || v.state.IsLoaded()) {
		st := v.state
		v.mu.Unlock()
		return st
	}

	if v.cancel != nil {
		v.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	v.gen++
	gen := v.gen
	v.productID = productID
	v.cancel = cancel
	v.state = Loading[[]domain.Product]()
	v.mu.Unlock()

	items, err := v.fetcher.Recommend(reqCtx, productID)

	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.gen {
		v.logger.Debugf("discarding stale recommendations for product %s", productID)
		cancel()
		return v.state
	}

	v.cancel = nil
	cancel()

	if err != nil {
		v.logger.Errorf(err, "failed to load recommendations for product %s", productID)
		v.state = Failed[[]domain.Product](failureReason(err))
		return v.state
	}

	if items == nil {
		items = []domain.Product{}
	}
	v.state = Loaded(items)
	return v.state
}

func (v *RecommendationListView) ProductID() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.productID
}

func (v *RecommendationListView) State() ViewState[[]domain.Product] {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.state
}

// failureReason — текст для пользователя: сообщение сервиса либо общий текст.
func failureReason(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	return "Не удалось загрузить рекомендации"
}
