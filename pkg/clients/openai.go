package clients

import (
	"net/http"

	"github.com/DRSN-tech/product-recommender/internal/cfg"
	"github.com/sashabaranov/go-openai"
)

// NewEmbeddingsClient создаёт OpenAI-совместимый клиент (по умолчанию Ollama).
func NewEmbeddingsClient(cfg *cfg.EmbedderCfg) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return openai.NewClientWithConfig(clientCfg)
}
