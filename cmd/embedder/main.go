// Command embedder пересчитывает эмбеддинги всех товаров и записывает их в хранилище
// (и в коллекцию Qdrant, если MATCH_BACKEND=qdrant).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	config "github.com/DRSN-tech/product-recommender/internal/cfg"
	"github.com/DRSN-tech/product-recommender/internal/infrastructure/embedding"
	"github.com/DRSN-tech/product-recommender/internal/repository/pgdb"
	qdrantRepo "github.com/DRSN-tech/product-recommender/internal/repository/qdrant"
	"github.com/DRSN-tech/product-recommender/internal/usecase"
	"github.com/DRSN-tech/product-recommender/pkg/clients"
	"github.com/DRSN-tech/product-recommender/pkg/logger"
	"github.com/DRSN-tech/product-recommender/pkg/postgres"
	"github.com/DRSN-tech/product-recommender/pkg/store"
)

func main() {
	log, err := logger.NewZapLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(log); err != nil {
		log.Errorf(err, "embedding refresh failed")
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func run(log logger.Logger) error {
	cfg, err := config.Load(log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	productRepo := pgdb.NewProductRepo(store.NewClient(db.Pool), cfg.Match)

	embedder := embedding.NewEmbedder(
		clients.NewEmbeddingsClient(cfg.Embedder),
		cfg.Embedder.Model,
		cfg.Embedder.Concurrency,
		cfg.Embedder.MaxRetries,
		log,
	)

	var index usecase.EmbeddingRepository
	if cfg.Match.Backend == config.MatchBackendQdrant {
		qdrantClient, err := clients.NewQdrantClient(cfg.Qdrant)
		if err != nil {
			return err
		}
		defer qdrantClient.Close(ctx)

		if err := clients.EnsureCollection(ctx, qdrantClient); err != nil {
			return err
		}
		index = qdrantRepo.NewEmbeddingRepo(qdrantClient.Client, cfg.Qdrant)
	}

	uc := usecase.NewEmbeddingUC(productRepo, db.Pool, embedder, index, log)

	res, err := uc.RefreshEmbeddings(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("updated embeddings: %d, indexed in qdrant: %d\n", res.Updated, res.Indexed)
	return nil
}
