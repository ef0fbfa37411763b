// Command seed imports the product catalog from DummyJSON, or with -d
// deletes every product.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/shoppyglobe/backend/internal/config"
	"github.com/shoppyglobe/backend/internal/logger"
	"github.com/shoppyglobe/backend/internal/repository"
	"github.com/shoppyglobe/backend/internal/seeder"
)

func main() {
	deleteOnly := flag.Bool("d", false, "delete all products and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal("MongoDB connection error", zap.Error(err))
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()

	if err := repository.RunMigrations(db); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}

	s := seeder.New(repository.NewProductRepository(db), cfg.CatalogURL, log)
	if *deleteOnly {
		_, err = s.Delete(ctx)
	} else {
		_, err = s.Import(ctx)
	}
	if err != nil {
		log.Error("seeding failed", zap.Error(err))
		os.Exit(1)
	}
}
