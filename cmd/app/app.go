package main

import (
	"fmt"
	"os"

	"github.com/DRSN-tech/product-recommender/internal/app"
	config "github.com/DRSN-tech/product-recommender/internal/cfg"
	"github.com/DRSN-tech/product-recommender/pkg/logger"
)

//	@title			Product Recommender API
//	@version		1.0
//	@description	Рекомендации похожих товаров по векторным эмбеддингам
//	@BasePath		/api
func main() {
	log, err := logger.NewZapLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		_ = log.Sync()
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		_ = log.Sync()
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		_ = log.Sync()
		os.Exit(1)
	}
}
