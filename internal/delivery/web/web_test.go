package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/product-recommender/internal/domain"
	"github.com/DRSN-tech/product-recommender/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listerFunc func(ctx context.Context) ([]domain.Product, error)

func (f listerFunc) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return f(ctx)
}

type fetcherFunc func(ctx context.Context, productID string) ([]domain.Product, error)

func (f fetcherFunc) Recommend(ctx context.Context, productID string) ([]domain.Product, error) {
	return f(ctx, productID)
}

func product(id int64, name string) domain.Product {
	return *domain.NewProduct(domain.NewIntProductID(id), name, name+" description", decimal.NewFromInt(id*100))
}

func catalog() []domain.Product {
	return []domain.Product{product(1, "Chair"), product(2, "Table"), product(3, "Lamp")}
}

func TestViewState(t *testing.T) {
	idle := Idle[[]int]()
	assert.True(t, idle.IsIdle())
	_, ok := idle.Data()
	assert.False(t, ok)

	loaded := Loaded([]int{1, 2})
	data, ok := loaded.Data()
	assert.True(t, ok)
	assert.Equal(t, []int{1, 2}, data)
	assert.Empty(t, loaded.Reason())

	failed := Failed[[]int]("boom")
	assert.True(t, failed.IsFailed())
	assert.Equal(t, "boom", failed.Reason())
	assert.Equal(t, "failed", failed.Status().String())

	assert.True(t, Loading[[]int]().IsLoading())
}

func TestProductListView_SelectInvokesCallbackOnce(t *testing.T) {
	var got []domain.ProductID
	view := NewProductListView(listerFunc(func(context.Context) ([]domain.Product, error) {
		return catalog(), nil
	}), func(id domain.ProductID) { got = append(got, id) }, logger.NewNop())

	st := view.Load(context.Background())
	require.True(t, st.IsLoaded())

	view.Select(domain.NewProductID("p2"))

	assert.Equal(t, []domain.ProductID{domain.NewProductID("p2")}, got)
}

func TestProductListView_LoadsOnce(t *testing.T) {
	calls := 0
	view := NewProductListView(listerFunc(func(context.Context) ([]domain.Product, error) {
		calls++
		return catalog(), nil
	}), nil, logger.NewNop())

	view.Load(context.Background())
	st := view.Load(context.Background())

	items, ok := st.Data()
	require.True(t, ok)
	assert.Len(t, items, 3)
	assert.Equal(t, 1, calls)
}

func TestProductListView_FailureIsVisible(t *testing.T) {
	view := NewProductListView(listerFunc(func(context.Context) ([]domain.Product, error) {
		return nil, errors.New("connection refused")
	}), nil, logger.NewNop())

	st := view.Load(context.Background())

	assert.True(t, st.IsFailed())
	assert.Equal(t, productsUnavailable, st.Reason())
	assert.True(t, view.State().IsFailed())
}

func TestRecommendationListView_Loaded(t *testing.T) {
	view := NewRecommendationListView(fetcherFunc(func(_ context.Context, id string) ([]domain.Product, error) {
		assert.Equal(t, "1", id)
		return []domain.Product{product(2, "Table")}, nil
	}), logger.NewNop())

	st := view.SetProductID(context.Background(), "1")

	items, ok := st.Data()
	require.True(t, ok)
	assert.Len(t, items, 1)
	assert.Equal(t, "1", view.ProductID())
}

func TestRecommendationListView_SameIDDoesNotRefetch(t *testing.T) {
	calls := 0
	view := NewRecommendationListView(fetcherFunc(func(context.Context, string) ([]domain.Product, error) {
		calls++
		return nil, nil
	}), logger.NewNop())

	view.SetProductID(context.Background(), "1")
	st := view.SetProductID(context.Background(), "1")

	items, ok := st.Data()
	require.True(t, ok)
	assert.Empty(t, items)
	assert.NotNil(t, items)
	assert.Equal(t, 1, calls)
}

func TestRecommendationListView_APIErrorIsVisible(t *testing.T) {
	view := NewRecommendationListView(fetcherFunc(func(context.Context, string) ([]domain.Product, error) {
		return nil, &APIError{Message: "JSON object requested, multiple (or no) rows returned"}
	}), logger.NewNop())

	st := view.SetProductID(context.Background(), "missing")

	assert.True(t, st.IsFailed())
	assert.Equal(t, "JSON object requested, multiple (or no) rows returned", st.Reason())
}

func TestRecommendationListView_FailedSelectionIsRetried(t *testing.T) {
	calls := 0
	view := NewRecommendationListView(fetcherFunc(func(context.Context, string) ([]domain.Product, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("timeout")
		}
		return []domain.Product{product(2, "Table")}, nil
	}), logger.NewNop())

	assert.True(t, view.SetProductID(context.Background(), "1").IsFailed())
	assert.True(t, view.SetProductID(context.Background(), "1").IsLoaded())
	assert.Equal(t, 2, calls)
}

func TestRecommendationListView_StaleResponseDiscarded(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})

	view := NewRecommendationListView(fetcherFunc(func(ctx context.Context, id string) ([]domain.Product, error) {
		if id == "1" {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return []domain.Product{product(100, "Stale")}, nil
		}
		return []domain.Product{product(3, "Lamp")}, nil
	}), logger.NewNop())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		view.SetProductID(context.Background(), "1")
	}()

	<-started
	st := view.SetProductID(context.Background(), "2")

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("previous request was not cancelled")
	}
	wg.Wait()

	items, ok := st.Data()
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, domain.NewIntProductID(3), items[0].ID)

	final, ok := view.State().Data()
	require.True(t, ok)
	require.Len(t, final, 1)
	assert.Equal(t, domain.NewIntProductID(3), final[0].ID)
	assert.Equal(t, "2", view.ProductID())
}

func TestAPIClient_Recommend(t *testing.T) {
	var gotBody map[string]json.RawMessage
	var gotRequestID string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, recommendPath, r.URL.Path)
		gotRequestID = r.Header.Get(requestIDHeader)

		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"recommendations":[{"id":2,"name":"Table","description":"d","price":200}]}`))
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL, srv.Client())
	items, err := client.Recommend(context.Background(), "1")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.NewIntProductID(2), items[0].ID)
	assert.Equal(t, "200", items[0].Price.String())
	assert.JSONEq(t, `1`, string(gotBody["productId"]))
	assert.NotEmpty(t, gotRequestID)
}

func TestAPIClient_ErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Method not allowed"}`))
	}))
	defer srv.Close()

	_, err := NewAPIClient(srv.URL, nil).Recommend(context.Background(), "abc")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Method not allowed", apiErr.Message)
}

func TestProductIDJSON(t *testing.T) {
	assert.Equal(t, `42`, string(productIDJSON("42")))
	assert.Equal(t, `"p1"`, string(productIDJSON("p1")))
}
