package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shoppyglobe/backend/internal/auth"
	"github.com/shoppyglobe/backend/internal/cache"
	"github.com/shoppyglobe/backend/internal/cart"
	"github.com/shoppyglobe/backend/internal/catalog"
	"github.com/shoppyglobe/backend/internal/config"
	h "github.com/shoppyglobe/backend/internal/http"
	"github.com/shoppyglobe/backend/internal/logger"
	"github.com/shoppyglobe/backend/internal/poller"
	"github.com/shoppyglobe/backend/internal/repository"
	"github.com/shoppyglobe/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Client().Disconnect(context.Background()); err != nil {
			log.Warn("mongo disconnect", zap.Error(err))
		}
	}()
	log.Info("connected to MongoDB", zap.String("database", cfg.MongoDBName))

	if err := repository.RunMigrations(db); err != nil {
		return err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// the cart cache is optional; every cache error falls back to MongoDB
		log.Warn("redis unreachable, cart cache degraded", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	products := repository.NewProductRepository(db)
	users := repository.NewUserRepository(db)
	carts := repository.NewMongoRepository(db)

	productCatalog := catalog.NewBreaker(products, catalog.DefaultSettings(), log)
	engine := cart.NewEngine(productCatalog)
	cartService := service.NewCartService(carts, cache.NewRedisCache(redisClient), engine, log)
	defer cartService.Wait()

	tokens := auth.NewJWTAuthenticator(cfg.JWTSecret, cfg.JWTExpiresIn)
	authService := service.NewAuthService(users, tokens)
	productService := service.NewProductService(products)

	var workers sync.WaitGroup
	if len(cfg.KafkaBrokers) > 0 {
		p := poller.NewPoller(cartService, log, cfg.CheckoutTopic, cfg.KafkaBrokers...)
		workers.Add(1)
		go func() {
			defer workers.Done()
			p.Run(ctx)
			if err := p.Close(); err != nil {
				log.Warn("error closing checkout reader", zap.Error(err))
			}
		}()
		log.Info("checkout listener started", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.CheckoutTopic))
	} else {
		log.Info("KAFKA_BROKERS not set, checkout listener disabled")
	}

	router := h.NewRouter(h.RouterConfig{
		FrontendURL:    cfg.FrontendURL,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         log,
	}, h.Services{
		Carts:    cartService,
		Products: productService,
		Auth:     authService,
		Tokens:   tokens,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("API starting", zap.String("port", cfg.HTTPPort), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Graceful shutdown
	select {
	case err := <-serverErr:
		stop()
		workers.Wait()
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	workers.Wait()

	log.Info("server exited")
	return nil
}
