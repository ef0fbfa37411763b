package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shoppyglobe/backend/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	FrontendURL    string
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

type Services struct {
	Carts    CartService
	Products ProductService
	Auth     AuthService
	Tokens   TokenValidator
}

func NewRouter(cfg RouterConfig, svc Services) http.Handler {
	cartHandler := NewCartHandler(svc.Carts, cfg.Logger)
	productHandler := NewProductHandler(svc.Products, cfg.Logger)
	authHandler := NewAuthHandler(svc.Auth, cfg.Logger)
	protect := AuthMiddleware(svc.Tokens, svc.Auth, cfg.Logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"message": "ShoppyGlobe API is running"})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.With(protect).Get("/profile", authHandler.Profile)
			r.With(protect).Put("/profile", authHandler.UpdateProfile)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/search", productHandler.Search)
			r.Get("/{id}", productHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(protect, RequireRole(domain.RoleAdmin))
				r.Post("/", productHandler.Create)
				r.Put("/{id}", productHandler.Update)
				r.Delete("/{id}", productHandler.Delete)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(protect)
			r.Get("/", cartHandler.GetCart)
			r.Post("/", cartHandler.AddItem)
			r.Delete("/", cartHandler.ClearCart)
			r.Put("/{itemId}", cartHandler.UpdateQuantity)
			r.Delete("/{itemId}", cartHandler.RemoveItem)
		})
	})

	return otelhttp.NewHandler(r, "shoppyglobe-api")
}
