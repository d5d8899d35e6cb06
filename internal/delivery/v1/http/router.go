package http

import (
	"net/http"

	_ "github.com/DRSN-tech/product-recommender/docs" // Импорт описания API
	"github.com/DRSN-tech/product-recommender/internal/cfg"
	"github.com/DRSN-tech/product-recommender/internal/usecase"
	"github.com/DRSN-tech/product-recommender/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Deps — зависимости маршрутов.
type Deps struct {
	RecommendationUC usecase.RecommendationUC
	CatalogUC        usecase.CatalogUC
	Store            Pinger
	Metrics          *Metrics
	// Page — HTML-страница витрины, монтируется на "/". Может быть nil.
	Page http.Handler
}

type Router struct {
	router *chi.Mux
	cfg    *cfg.HTTPConfig
	logger logger.Logger
}

func NewRouter(router *chi.Mux, cfg *cfg.HTTPConfig, logger logger.Logger) *Router {
	return &Router{router: router, cfg: cfg, logger: logger}
}

func (r *Router) Init(deps Deps) {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.RealIP)
	r.router.Use(middleware.Recoverer)
	if deps.Metrics != nil {
		r.router.Use(deps.Metrics.Middleware)
		r.router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(r.cfg.SwaggerURL), // ссылка на JSON
	))

	catalogHandler := NewCatalogHandler(deps.CatalogUC, deps.Store, r.logger)
	r.router.Get("/healthz", catalogHandler.healthz)

	r.router.Route("/api", func(api chi.Router) {
		api.Use(cors.Handler(cors.Options{
			AllowedOrigins: r.cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
			MaxAge:         300,
		}))

		recHandler := NewRecommendationHandler(deps.RecommendationUC, deps.Metrics, r.cfg.StrictStatus, r.logger)
		registerRecommendationRoutes(api, recHandler)
		registerProductRoutes(api, catalogHandler)
	})

	if deps.Page != nil {
		r.router.Method(http.MethodGet, "/", deps.Page)
	}
}

// /api/recommend принимает любой метод: ответ на не-POST формирует сам обработчик.
func registerRecommendationRoutes(router chi.Router, recHandler *RecommendationHandler) {
	router.HandleFunc("/recommend", recHandler.recommend)
}

func registerProductRoutes(router chi.Router, catalogHandler *CatalogHandler) {
	router.Get("/products", catalogHandler.listProducts)
}
