package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/DRSN-tech/product-recommender/internal/domain"
	"github.com/DRSN-tech/product-recommender/pkg/e"
	"github.com/DRSN-tech/product-recommender/pkg/jitter"
	"github.com/DRSN-tech/product-recommender/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// EmbeddingsClient — часть OpenAI-клиента, нужная для получения эмбеддингов.
type EmbeddingsClient interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// Embedder клиент OpenAI-совместимого сервиса эмбеддингов (Ollama и т.п.)
type Embedder struct {
	client        EmbeddingsClient
	model         string
	maxConcurrent int
	maxRetries    int
	backoff       jitter.Backoff
	logger        logger.Logger
}

func NewEmbedder(client EmbeddingsClient, model string, maxConcurrent int, maxRetries int, logger logger.Logger) *Embedder {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if maxRetries <= 0 {
		maxRetries = 1
	}

	return &Embedder{
		client:        client,
		model:         model,
		maxConcurrent: maxConcurrent,
		maxRetries:    maxRetries,
		backoff:       jitter.NewBackoff(1*time.Second, 30*time.Second),
		logger:        logger,
	}
}

// WithBackoff задаёт границы экспоненциальной задержки между попытками.
func (m *Embedder) WithBackoff(base, max time.Duration) *Embedder {
	m.backoff = jitter.NewBackoff(base, max)
	return m
}

// Embed возвращает эмбеддинги текстов с retry-логикой и экспоненциальной задержкой.
// Ошибки клиента (4xx, кроме 429) не повторяются.
func (m *Embedder) Embed(ctx context.Context, texts []string) ([]domain.Vector, error) {
	const op = "Embedder.Embed"

	if len(texts) == 0 {
		return nil, nil
	}

	var lastErr error
	for attempt := 0; attempt < m.maxRetries; attempt++ {
		vectors, err := m.embedBatch(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err

		if !retryable(err) {
			return nil, e.Wrap(op, err)
		}

		if attempt == m.maxRetries-1 {
			break
		}

		sleepTime := m.backoff.Delay(attempt)

		m.logger.Warnf("embedding failed, retrying in %v (attempt %d): %v", sleepTime, attempt+1, err)
		if err := jitter.Sleep(ctx, sleepTime); err != nil {
			return nil, e.Wrap(op, err)
		}
	}

	return nil, e.Wrap(op, fmt.Errorf("all %d attempts failed: %w", m.maxRetries, lastErr))
}

type indexedVector struct {
	idx    int
	vector domain.Vector
}

// embedBatch отправляет тексты на векторизацию параллельно с ограничением конкурентности
func (m *Embedder) embedBatch(ctx context.Context, texts []string) ([]domain.Vector, error) {
	const op = "Embedder.embedBatch"

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	vectorCh := make(chan indexedVector, len(texts))
	errCh := make(chan error, len(texts))
	sem := make(chan struct{}, m.maxConcurrent)

	var wg sync.WaitGroup
	for i, text := range texts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			vector, err := m.embedOne(ctx, text)
			if err != nil {
				errCh <- err
				return
			}

			vectorCh <- indexedVector{idx: i, vector: vector}
		}()
	}

	go func() {
		wg.Wait()
		close(errCh)
		close(vectorCh)
	}()

	vectors := make([]domain.Vector, len(texts))
	for completed := 0; completed < len(texts); {
		select {
		case v, ok := <-vectorCh:
			if ok {
				vectors[v.idx] = v.vector
				completed++
			}
		case err, ok := <-errCh:
			if ok {
				return nil, e.Wrap(op, err)
			}
		case <-ctx.Done():
			return nil, e.Wrap(op, ctx.Err())
		}
	}

	return vectors, nil
}

func (m *Embedder) embedOne(ctx context.Context, text string) (domain.Vector, error) {
	res, err := m.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(m.model),
	})
	if err != nil {
		return nil, err
	}

	if len(res.Data) == 0 || len(res.Data[0].Embedding) == 0 {
		return nil, e.ErrVectorEmbeddingEmpty
	}

	return domain.Vector(res.Data[0].Embedding), nil
}

// retryable сообщает, имеет ли смысл повторить запрос.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, e.ErrVectorEmbeddingEmpty) {
		return false
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	if status == http.StatusTooManyRequests {
		return true
	}

	return status < 400 || status >= 500
}
