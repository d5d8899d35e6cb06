package embedding

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DRSN-tech/product-recommender/internal/domain"
	"github.com/DRSN-tech/product-recommender/pkg/e"
	"github.com/DRSN-tech/product-recommender/pkg/logger"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	calls atomic.Int32
	fn    func(call int32, req openai.EmbeddingRequest) (openai.EmbeddingResponse, error)
}

func (f *fakeClient) CreateEmbeddings(_ context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	return f.fn(f.calls.Add(1), conv.Convert())
}

func vectorFor(text string) []float32 {
	return []float32{float32(len(text)), 1}
}

func echo(_ int32, req openai.EmbeddingRequest) (openai.EmbeddingResponse, error) {
	text := req.Input.([]string)[0]
	return openai.EmbeddingResponse{Data: []openai.Embedding{{Embedding: vectorFor(text)}}}, nil
}

func newTestEmbedder(client EmbeddingsClient, retries int) *Embedder {
	return NewEmbedder(client, "nomic-embed-text", 3, retries, logger.NewNop()).
		WithBackoff(time.Millisecond, 5*time.Millisecond)
}

func TestEmbed_PreservesOrder(t *testing.T) {
	client := &fakeClient{fn: echo}
	texts := []string{"a", "bbb", "cc", "dddd", "e"}

	vectors, err := newTestEmbedder(client, 1).Embed(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, len(texts))
	for i, text := range texts {
		assert.Equal(t, domain.Vector(vectorFor(text)), vectors[i])
	}
}

func TestEmbed_SendsModel(t *testing.T) {
	var model atomic.Value
	client := &fakeClient{fn: func(call int32, req openai.EmbeddingRequest) (openai.EmbeddingResponse, error) {
		model.Store(string(req.Model))
		return echo(call, req)
	}}

	_, err := newTestEmbedder(client, 1).Embed(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", model.Load())
}

func TestEmbed_RetriesServerErrors(t *testing.T) {
	client := &fakeClient{fn: func(call int32, req openai.EmbeddingRequest) (openai.EmbeddingResponse, error) {
		if call == 1 {
			return openai.EmbeddingResponse{}, &openai.APIError{HTTPStatusCode: http.StatusServiceUnavailable, Message: "loading model"}
		}
		return echo(call, req)
	}}

	vectors, err := newTestEmbedder(client, 3).Embed(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Len(t, vectors, 1)
	assert.Equal(t, int32(2), client.calls.Load())
}

func TestEmbed_DoesNotRetryClientErrors(t *testing.T) {
	client := &fakeClient{fn: func(int32, openai.EmbeddingRequest) (openai.EmbeddingResponse, error) {
		return openai.EmbeddingResponse{}, &openai.APIError{HTTPStatusCode: http.StatusNotFound, Message: "model not found"}
	}}

	_, err := newTestEmbedder(client, 3).Embed(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Equal(t, int32(1), client.calls.Load())
}

func TestEmbed_GivesUp(t *testing.T) {
	client := &fakeClient{fn: func(int32, openai.EmbeddingRequest) (openai.EmbeddingResponse, error) {
		return openai.EmbeddingResponse{}, errors.New("connection refused")
	}}

	_, err := newTestEmbedder(client, 3).Embed(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 3 attempts failed")
	assert.Equal(t, int32(3), client.calls.Load())
}

func TestEmbed_EmptyVector(t *testing.T) {
	client := &fakeClient{fn: func(int32, openai.EmbeddingRequest) (openai.EmbeddingResponse, error) {
		return openai.EmbeddingResponse{Data: []openai.Embedding{{}}}, nil
	}}

	_, err := newTestEmbedder(client, 3).Embed(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, e.ErrVectorEmbeddingEmpty)
	assert.Equal(t, int32(1), client.calls.Load())
}

func TestEmbed_NoTexts(t *testing.T) {
	client := &fakeClient{fn: echo}

	vectors, err := newTestEmbedder(client, 1).Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Equal(t, int32(0), client.calls.Load())
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "network", err: errors.New("dial tcp"), want: true},
		{name: "rate limit", err: &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}, want: true},
		{name: "server", err: &openai.RequestError{HTTPStatusCode: http.StatusBadGateway}, want: true},
		{name: "bad request", err: &openai.APIError{HTTPStatusCode: http.StatusBadRequest}, want: false},
		{name: "canceled", err: context.Canceled, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryable(tt.err))
		})
	}
}
