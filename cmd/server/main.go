package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/library-engine/internal/cache"
	"github.com/segyhp/library-engine/internal/config"
	"github.com/segyhp/library-engine/internal/handler"
	"github.com/segyhp/library-engine/internal/repository"
	"github.com/segyhp/library-engine/internal/service"
	"github.com/segyhp/library-engine/pkg/logger"
	"github.com/segyhp/library-engine/pkg/response"
)

type handlers struct {
	catalog      *handler.CatalogHandler
	loans        *handler.LoanHandler
	reservations *handler.ReservationHandler
	profiles     *handler.ProfileHandler
	health       *handler.HealthHandler
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Error("failed to initialize database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	store := repository.NewStore(db)
	bookCache := cache.NewRedisBookCache(redisClient, cfg.Redis.CacheTTL)

	catalogService := service.NewCatalogService(store, bookCache, cfg, log)
	loanService := service.NewLoanService(store, bookCache, cfg, log)
	reservationService := service.NewReservationService(store, cfg, log)
	profileService := service.NewProfileService(store, cfg, log)

	h := handlers{
		catalog:      handler.NewCatalogHandler(catalogService),
		loans:        handler.NewLoanHandler(loanService),
		reservations: handler.NewReservationHandler(reservationService),
		profiles:     handler.NewProfileHandler(profileService),
		health:       handler.NewHealthHandler(db, redisClient, cfg.GetHealthTimeout()),
	}
	auth := handler.NewAuthenticator(cfg.Auth.JWTSecret)

	router := setupRoutes(h, auth, profileService, log)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("server starting", "addr", server.Addr, "env", cfg.Server.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed to start", "err", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "err", err)
		return
	}

	log.Info("server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(h handlers, auth *handler.Authenticator, profiles handler.ProfileService, log *slog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.RequestIDMiddleware, response.LoggingMiddleware(log), response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", h.health.Health).Methods("GET")
	router.HandleFunc("/health/ready", h.health.Ready).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	// Staff routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(auth.Required, handler.RequireStaff(profiles))
	admin.HandleFunc("/categories", h.catalog.CreateCategory).Methods("POST")
	admin.HandleFunc("/authors", h.catalog.CreateAuthor).Methods("POST")
	admin.HandleFunc("/books", h.catalog.CreateBook).Methods("POST")
	admin.HandleFunc("/books/{bookId}/status", h.catalog.SetBookStatus).Methods("PUT")
	admin.HandleFunc("/loans/fines", h.loans.RecomputeFines).Methods("POST")
	admin.HandleFunc("/loans/{loanId}/return", h.loans.ReturnLoanAsStaff).Methods("POST")
	admin.HandleFunc("/reservations/expire", h.reservations.ExpireReservations).Methods("POST")
	admin.HandleFunc("/reservations/{reservationId}/complete", h.reservations.CompleteReservation).Methods("POST")

	// Signed-in user routes
	member := api.NewRoute().Subrouter()
	member.Use(auth.Required)
	member.HandleFunc("/books/{bookId}/loans", h.loans.CreateLoan).Methods("POST")
	member.HandleFunc("/books/{bookId}/reservations", h.reservations.CreateReservation).Methods("POST")
	member.HandleFunc("/me/loans", h.loans.ListMyLoans).Methods("GET")
	member.HandleFunc("/me/reservations", h.reservations.ListMyReservations).Methods("GET")
	member.HandleFunc("/me/profile", h.profiles.GetProfile).Methods("GET")
	member.HandleFunc("/me/profile", h.profiles.UpdateProfile).Methods("PUT")
	member.HandleFunc("/loans/{loanId}/return", h.loans.ReturnLoan).Methods("POST")
	member.HandleFunc("/loans/{loanId}/renew", h.loans.RenewLoan).Methods("POST")
	member.HandleFunc("/reservations/{reservationId}/cancel", h.reservations.CancelReservation).Methods("POST")

	// Public catalog; a token, when present, personalises the book page
	public := api.NewRoute().Subrouter()
	public.Use(auth.Optional)
	public.HandleFunc("/home", h.catalog.Home).Methods("GET")
	public.HandleFunc("/books", h.catalog.SearchBooks).Methods("GET")
	public.HandleFunc("/books/{bookId}", h.catalog.GetBook).Methods("GET")
	public.HandleFunc("/categories", h.catalog.ListCategories).Methods("GET")
	public.HandleFunc("/authors", h.catalog.ListAuthors).Methods("GET")

	return router
}
