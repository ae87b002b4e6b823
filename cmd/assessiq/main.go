package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	"github.com/neomorfeo/assessiq/internal/adapter/calc"
	"github.com/neomorfeo/assessiq/internal/adapter/fsm"
	"github.com/neomorfeo/assessiq/internal/adapter/otel"
	"github.com/neomorfeo/assessiq/internal/adapter/river"
	"github.com/neomorfeo/assessiq/internal/adapter/sqlite"
	"github.com/neomorfeo/assessiq/internal/app"

	handler "github.com/neomorfeo/assessiq/internal/adapter/http"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("assessiq: %v", err)
	}
}

func run() error {
	ctx := context.Background()

	port := envOrDefault("PORT", "8080")
	dbPath := envOrDefault("DATABASE_PATH", "assessiq.db")

	cfg, err := configFromEnv()
	if err != nil {
		return err
	}

	// --- Observability ---
	providers, err := otel.Setup(ctx, otel.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := otel.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	repo, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	store := otel.NewTracingStore(repo)

	riverClient, err := river.Setup(ctx, db, store)
	if err != nil {
		return fmt.Errorf("river setup: %w", err)
	}
	if err := riverClient.Start(ctx); err != nil {
		return fmt.Errorf("river start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := riverClient.Stop(stopCtx); err != nil {
			log.Printf("river stop: %v", err)
		}
	}()

	publisher := otel.NewTracingPublisher(river.NewPublisher(riverClient))

	demandRepo := sqlite.NewDemandRepository(repo)

	// --- Application ---
	svc := app.NewAssessmentService(
		cfg,
		store,
		sqlite.NewPropertyRegistry(repo),
		app.NewRequestValidator(),
		app.NewEnrichmentService(time.Now),
		app.NewWorkflowStateSync(fsm.New()),
		app.NewDemandLifecycleManager(demandRepo, time.Now),
		app.NewCalculationTrigger(calc.New(demandRepo)),
		publisher,
	)

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(otelchi.Middleware("assessiq", otelchi.WithChiRoutes(router)))
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	api := humachi.New(router, huma.DefaultConfig("assessiq", "0.1.0"))
	handler.Register(api, svc)

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("assessiq listening on :%s", port)
		log.Printf("API docs: http://localhost:%s/docs", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server: %w", err)
	case <-done:
	}
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Println("stopped")
	return nil
}

// configFromEnv builds the orchestrator configuration from environment
// variables, with defaults matching a fully enabled workflow deployment.
func configFromEnv() (*app.Config, error) {
	workflowEnabled, err := envBool("ASSESSIQ_WORKFLOW_ENABLED", true)
	if err != nil {
		return nil, err
	}
	maxLimit, err := envInt("ASSESSIQ_MAX_SEARCH_LIMIT", 300)
	if err != nil {
		return nil, err
	}
	defaultLimit, err := envInt("ASSESSIQ_DEFAULT_LIMIT", 100)
	if err != nil {
		return nil, err
	}
	defaultOffset, err := envInt("ASSESSIQ_DEFAULT_OFFSET", 0)
	if err != nil {
		return nil, err
	}

	return app.NewConfig(app.Options{
		WorkflowEnabled:        workflowEnabled,
		DemandTriggerState:     envOrDefault("ASSESSIQ_DEMAND_TRIGGER_STATE", "APPROVED"),
		WorkflowTriggerFields:  envOrDefault("ASSESSIQ_WORKFLOW_TRIGGER_FIELDS", "financialYear,assessmentDate,source"),
		WorkflowTriggerObjects: envOrDefault("ASSESSIQ_WORKFLOW_TRIGGER_OBJECTS", "Document,Unit"),
		MaxSearchLimit:         maxLimit,
		DefaultLimit:           defaultLimit,
		DefaultOffset:          defaultOffset,
	})
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
