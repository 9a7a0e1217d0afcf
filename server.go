package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/talenthub/applications"
	"github.com/user/talenthub/auth"
	"github.com/user/talenthub/companies"
	"github.com/user/talenthub/config"
	"github.com/user/talenthub/db"
	_ "github.com/user/talenthub/docs" // registers the Swagger docs
	"github.com/user/talenthub/favorites"
	"github.com/user/talenthub/jobs"
	"github.com/user/talenthub/lookups"
	"github.com/user/talenthub/ratelimit"
	"github.com/user/talenthub/respond"
	"github.com/user/talenthub/users"
)

const shutdownTimeout = 30 * time.Second

// runServer opens the pool, builds the router and serves until SIGINT or SIGTERM.
func runServer(ctx context.Context, cfg *config.AppConfig) error {
	pool, err := db.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to create database pool: %w", err)
	}
	defer pool.Close()

	revoker := auth.Revoker(auth.NopRevoker{})
	limiter := ratelimit.Limiter(ratelimit.NewLocalLimiter())
	if cfg.Redis.Enabled() {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// Both consumers fail open, so a cold Redis is not fatal.
			log.Printf("Warning: redis ping failed: %v", err)
		}
		revoker = auth.NewRedisRevoker(rdb)
		limiter = ratelimit.NewRedisLimiter(rdb)
		log.Println("Using Redis for token revocation and rate limiting")
	} else {
		log.Println("REDIS_URL not set: logout only discards tokens client-side, rate limiting is per process")
	}

	r, err := newRouter(cfg, pool, revoker, limiter)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	log.Println("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Println("Server stopped gracefully")
	return nil
}

// newRouter wires every service and mounts the API under /api.
func newRouter(cfg *config.AppConfig, pool *pgxpool.Pool, revoker auth.Revoker, limiter ratelimit.Limiter) (http.Handler, error) {
	timeout := cfg.Server.StoreTimeout

	codec, err := auth.NewCodec(*cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create token codec: %w", err)
	}
	authService := auth.NewService(auth.NewPgStore(pool), codec, revoker, timeout)
	authHandlers := auth.NewHandlers(authService)
	resolver := authService.Resolver()

	userService := users.NewService(users.NewPgStore(pool), timeout)
	userHandlers := users.NewUserHandlers(userService)

	// users.Service resolves identities to principals for every guarded package.
	principals := userService

	jobHandlers := jobs.NewHandlers(jobs.NewService(jobs.NewPgStore(pool), timeout), principals)
	applicationHandlers := applications.NewHandlers(applications.NewService(applications.NewPgStore(pool), timeout), principals)
	favoriteHandlers := favorites.NewHandlers(favorites.NewService(favorites.NewPgStore(pool), timeout), principals)
	companyHandlers := companies.NewHandlers(companies.NewService(companies.NewPgStore(pool), timeout))
	lookupHandlers := lookups.NewHandlers(lookups.NewService(lookups.NewPgStore(pool), timeout))

	// Login and register share a budget size but not a counter.
	limitBy := func(route string) func(http.Handler) http.Handler {
		return ratelimit.Middleware(limiter, ratelimit.ByRoute(route, ratelimit.ClientIP),
			cfg.RateLimit.LoginLimit, cfg.RateLimit.LoginWindow)
	}

	r := chi.NewRouter()

	// chi requires all middleware before any route.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: !allowsAnyOrigin(cfg.Server.AllowedOrigins),
		MaxAge:           300,
	}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/healthz", handleHealth(pool))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(limitBy("register")).Post("/register", authHandlers.HandleRegister())
			r.With(limitBy("login")).Post("/login", authHandlers.HandleLogin())
			r.Post("/refresh", authHandlers.HandleRefresh())
			r.With(auth.OptionalAuth(resolver)).Get("/me", userHandlers.HandleMe())

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAuth(resolver))
				r.Get("/profile", userHandlers.HandleProfile())
				r.Post("/logout", authHandlers.HandleLogout())
			})
		})

		// Public reference data and listings.
		r.Get("/provinces", lookupHandlers.HandleProvinces())
		r.Get("/cities", lookupHandlers.HandleCities())
		r.Get("/industries-level1", lookupHandlers.HandleIndustriesLevel1())
		r.Get("/industries-level2", lookupHandlers.HandleIndustriesLevel2())
		r.Get("/skills", lookupHandlers.HandleSkills())

		r.Get("/jobs", jobHandlers.HandleSearch())
		r.Get("/jobs/{id}", jobHandlers.HandleGet())
		r.Get("/companies", companyHandlers.HandleSearch())
		r.Get("/companies/{id}", companyHandlers.HandleGet())

		// Answer false for anonymous callers instead of 401.
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(resolver))
			r.Get("/applications/check", applicationHandlers.HandleCheck())
			r.Get("/favorites", favoriteHandlers.HandleCheck())
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(resolver))

			r.Route("/profile", func(r chi.Router) {
				r.Get("/talent", userHandlers.HandleGetTalentProfile())
				r.Put("/talent", userHandlers.HandleUpdateTalentProfile())
				r.Get("/company", userHandlers.HandleGetCompanyProfile())
				r.Put("/company", userHandlers.HandleUpdateCompanyProfile())
			})

			r.Post("/applications", applicationHandlers.HandleApply())
			r.Post("/favorites/toggle", favoriteHandlers.HandleToggle())

			// Role checks happen in the guard, which needs the resource facts.
			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/jobs", jobHandlers.HandleListOwn())
				r.Post("/jobs", jobHandlers.HandleCreate())
				r.Get("/jobs/{id}", jobHandlers.HandleGetOwn())
				r.Put("/jobs/{id}", jobHandlers.HandleUpdate())
				r.Delete("/jobs/{id}", jobHandlers.HandleDelete())

				r.Get("/applications", applicationHandlers.HandleListOwn())
				r.Get("/applications/{id}", applicationHandlers.HandleGetOwn())
				r.Post("/applications/{id}/withdraw", applicationHandlers.HandleWithdraw())

				r.Get("/resumes", applicationHandlers.HandleListResumes())
				r.Get("/resumes/{id}", applicationHandlers.HandleGetResume())
				r.Put("/resumes/{id}/status", applicationHandlers.HandleUpdateStatus())

				r.Get("/favorites", favoriteHandlers.HandleList())
			})
		})
	})

	return r, nil
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

type healthResponse struct {
	Status string `json:"status"`
}

func handleHealth(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			respond.Error(w, r, db.Translate(err, "database"))
			return
		}
		respond.JSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
