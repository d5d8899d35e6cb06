package web

import (
	"context"
	"sync"

	"github.com/DRSN-tech/product-recommender/internal/domain"
	"github.com/DRSN-tech/product-recommender/pkg/logger"
)

// ProductLister отдаёт полный список товаров. Реализуется usecase.CatalogUC.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

const productsUnavailable = "Не удалось загрузить товары"

// ProductListView — список карточек товаров с выбором одной из них.
type ProductListView struct {
	lister   ProductLister
	onSelect func(id domain.ProductID)
	logger   logger.Logger

	mu    sync.Mutex
	state ViewState[[]domain.Product]
}

func NewProductListView(lister ProductLister, onSelect func(id domain.ProductID), logger logger.Logger) *ProductListView {
	return &ProductListView{
		lister:   lister,
		onSelect: onSelect,
		logger:   logger,
		state:    Idle[[]domain.Product](),
	}
}

// Load загружает список при первом вызове; после успешной загрузки возвращает сохранённое состояние.
// Ошибка логируется и превращается в Failed, который отображается на странице.
func (v *ProductListView) Load(ctx context.Context) ViewState[[]domain.Product] {
	v.mu.Lock()
	if v.state.IsLoaded() || v.state.IsLoading() {
		st := v.state
		v.mu.Unlock()
		return st
	}
	v.state = Loading[[]domain.Product]()
	v.mu.Unlock()

	products, err := v.lister.ListProducts(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()

	if err != nil {
		v.logger.Errorf(err, "failed to load products")
		v.state = Failed[[]domain.Product](productsUnavailable)
		return v.state
	}

	if products == nil {
		products = []domain.Product{}
	}
	v.state = Loaded(products)
	return v.state
}

func (v *ProductListView) State() ViewState[[]domain.Product] {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.state
}

// Select передаёт выбранный id обработчику ровно один раз.
func (v *ProductListView) Select(id domain.ProductID) {
	if v.onSelect != nil {
		v.onSelect(id)
	}
}
