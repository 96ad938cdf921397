package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/andescredit/loan-engine/internal/config"
	"github.com/andescredit/loan-engine/internal/handler"
	"github.com/andescredit/loan-engine/internal/pdf"
	"github.com/andescredit/loan-engine/internal/repository"
	"github.com/andescredit/loan-engine/internal/service"
	"github.com/andescredit/loan-engine/pkg/response"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogging(cfg)

	db, err := initDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	if err := runMigrations(db, cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	clientRepo := repository.NewClientRepository(db)
	loanRepo := repository.NewLoanRepository(db)

	policy := service.NewCreationPolicy(cfg, clientRepo, loanRepo)
	renderer := pdf.NewScheduleRenderer(cfg.Business.CurrencyPrefix)
	loanService := service.NewLoanService(loanRepo, clientRepo, policy, renderer, redisClient, cfg)
	clientService := service.NewClientService(clientRepo, loanRepo)

	loanHandler := handler.NewLoanHandler(loanService)
	clientHandler := handler.NewClientHandler(clientService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := setupRoutes(loanHandler, clientHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Logging.Format != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func runMigrations(db *sqlx.DB, cfg *config.Config) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db.DB, cfg.Database.MigrationsDir)
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(loanHandler *handler.LoanHandler, clientHandler *handler.ClientHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.CORSMiddleware, response.LoggingMiddleware)

	// Health checks
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/loans/preview", loanHandler.Preview).Methods("POST")
	api.HandleFunc("/loans", loanHandler.Create).Methods("POST")
	api.HandleFunc("/loans", loanHandler.List).Methods("GET")
	api.HandleFunc("/loans/{loanId}", loanHandler.Get).Methods("GET")
	api.HandleFunc("/loans/{loanId}/installments/{installmentId}", loanHandler.ToggleInstallment).Methods("PATCH")
	api.HandleFunc("/loans/{loanId}/schedule.pdf", loanHandler.ExportSchedule).Methods("GET")

	api.HandleFunc("/clients", clientHandler.Create).Methods("POST")
	api.HandleFunc("/clients", clientHandler.List).Methods("GET")
	api.HandleFunc("/clients/{clientId}", clientHandler.Get).Methods("GET")

	return router
}
