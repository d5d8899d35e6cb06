package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/product-recommender/internal/cfg"
	v1Http "github.com/DRSN-tech/product-recommender/internal/delivery/v1/http"
	"github.com/DRSN-tech/product-recommender/internal/delivery/web"
	"github.com/DRSN-tech/product-recommender/internal/repository/pgdb"
	qdrantRepo "github.com/DRSN-tech/product-recommender/internal/repository/qdrant"
	"github.com/DRSN-tech/product-recommender/internal/repository/redis"
	"github.com/DRSN-tech/product-recommender/internal/usecase"
	"github.com/DRSN-tech/product-recommender/pkg/closer"
	"github.com/DRSN-tech/product-recommender/pkg/clients"
	"github.com/DRSN-tech/product-recommender/pkg/e"
	"github.com/DRSN-tech/product-recommender/pkg/logger"
	"github.com/DRSN-tech/product-recommender/pkg/postgres"
	"github.com/DRSN-tech/product-recommender/pkg/store"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	initTimeout     = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

// App — собранное приложение: HTTP-сервер и ресурсы, которые нужно закрыть при остановке.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	server *v1Http.Server
	closer *closer.Closer
}

// NewApp подключается к хранилищам и собирает зависимости.
// При ошибке уже открытые ресурсы закрываются.
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	cl := closer.NewCloser(0)

	app, err := build(cfg, log, cl)
	if err != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if closeErr := cl.Close(ctx); closeErr != nil {
			log.Warnf("cleanup after failed start: %v", closeErr)
		}
		return nil, err
	}

	return app, nil
}

func build(cfg *config.Config, log logger.Logger, cl *closer.Closer) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		log.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add("postgres", db.Close)

	storeClient := store.NewClient(db.Pool)
	productRepo := pgdb.NewProductRepo(storeClient, cfg.Match)

	matcher, err := initMatcher(ctx, cfg, log, cl, productRepo)
	if err != nil {
		return nil, err
	}

	cacheRepo := initCache(ctx, cfg, log, cl)

	recommendationUC := usecase.NewRecommendationUC(productRepo, matcher, log)
	catalogUC := usecase.NewCatalogUC(productRepo, cacheRepo, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := v1Http.NewMetrics(reg)

	page, err := web.NewPage(cfg.Web.Title, catalogUC, web.NewAPIClient(cfg.Web.APIBaseURL, nil), log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	r := chi.NewRouter()
	v1Http.NewRouter(r, cfg.Http, log).Init(v1Http.Deps{
		RecommendationUC: recommendationUC,
		CatalogUC:        catalogUC,
		Store:            storeClient,
		Metrics:          metrics,
		Page:             page,
	})

	server := v1Http.NewServer(r, cfg.Http)
	cl.Add("http", server.Stop)

	return &App{
		cfg:    cfg,
		logger: log,
		server: server,
		closer: cl,
	}, nil
}

// initMatcher выбирает реализацию поиска похожих товаров по MATCH_BACKEND.
func initMatcher(ctx context.Context, cfg *config.Config, log logger.Logger, cl *closer.Closer, productRepo *pgdb.ProductRepo) (usecase.Matcher, error) {
	if cfg.Match.Backend != config.MatchBackendQdrant {
		log.Infof("similarity backend: postgres function %s", cfg.Match.Function)
		return productRepo, nil
	}

	qdrantClient, err := clients.NewQdrantClient(cfg.Qdrant)
	if err != nil {
		log.Errorf(err, "failed to initialize qdrant")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add("qdrant", qdrantClient.Close)

	if err := clients.EnsureCollection(ctx, qdrantClient); err != nil {
		log.Errorf(err, "failed to initialize qdrant collection")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	log.Infof("similarity backend: qdrant collection %s", cfg.Qdrant.QdrantCollectionName)
	return qdrantRepo.NewEmbeddingRepo(qdrantClient.Client, cfg.Qdrant), nil
}

// initCache подключает Redis. Недоступный Redis не мешает старту: список читается из хранилища.
func initCache(ctx context.Context, cfg *config.Config, log logger.Logger, cl *closer.Closer) usecase.CacheRepository {
	if !cfg.Redis.Enabled {
		log.Infof("catalog cache disabled")
		return nil
	}

	redisClient := clients.NewRedisClient(cfg.Redis)
	if err := redisClient.Ping(ctx); err != nil {
		log.Warnf("redis unavailable, catalog cache disabled: %v", err)
		_ = redisClient.Close(ctx)
		return nil
	}
	cl.Add("redis", redisClient.Close)

	return redis.NewCacheRepo(redisClient, cfg.Redis, log)
}

// Run запускает HTTP-сервер и блокируется до сигнала остановки или ошибки сервера.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.server.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case <-ctx.Done():
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Errorf(err, "shutdown error")
		if appErr == nil {
			appErr = err
		}
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}
