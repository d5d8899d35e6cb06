package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/DRSN-tech/product-recommender/internal/domain"
	"github.com/DRSN-tech/product-recommender/pkg/e"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
)

const (
	recommendPath     = "/api/recommend"
	requestIDHeader   = "X-Request-Id"
	defaultAPITimeout = 10 * time.Second
)

// APIError — ошибка, которую вернул сервис в поле error.
type APIError struct {
	Message string
}

func (a *APIError) Error() string {
	return a.Message
}

// APIClient обращается к /api/recommend по HTTP.
type APIClient struct {
	baseURL string
	client  *http.Client
}

func NewAPIClient(baseURL string, client *http.Client) *APIClient {
	if client == nil {
		client = &http.Client{Timeout: defaultAPITimeout}
	}

	return &APIClient{baseURL: baseURL, client: client}
}

type recommendResponse struct {
	Recommendations *[]domain.Product `json:"recommendations"`
	Error           *string           `json:"error"`
}

// Recommend отправляет {"productId": id}. Числовой id уходит JSON-числом, остальные — строкой.
func (c *APIClient) Recommend(ctx context.Context, productID string) ([]domain.Product, error) {
	body, err := json.Marshal(map[string]json.RawMessage{"productId": productIDJSON(productID)})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+recommendPath, bytes.NewReader(body))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer resp.Body.Close()

	var res recommendResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("status %d: %w", resp.StatusCode, err))
	}

	if res.Error != nil {
		return nil, &APIError{Message: *res.Error}
	}
	if res.Recommendations == nil {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("status %d: %w", resp.StatusCode, e.ErrMalformedRequest))
	}

	return *res.Recommendations, nil
}

func productIDJSON(productID string) json.RawMessage {
	if _, err := strconv.ParseInt(productID, 10, 64); err == nil {
		return json.RawMessage(productID)
	}

	raw, _ := json.Marshal(productID)
	return raw
}
