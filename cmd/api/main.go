package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	apiProjection "storage_feasibility/pkg/api/projection"
	"storage_feasibility/pkg/config"
	"storage_feasibility/pkg/core/loader"
	"storage_feasibility/pkg/core/projection"
	"storage_feasibility/pkg/core/scenario"
	"storage_feasibility/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger()

	// 1. Tables
	ld := loader.New(cfg.DataDir, logger)
	table, err := ld.LoadAttrition("attrition.hjson")
	if err != nil {
		logger.Fatalf("Failed to load attrition table: %v", err)
	}
	profile, err := ld.LoadSeasonality(optionalFile(cfg.DataDir, "seasonality.json"))
	if err != nil {
		logger.Fatalf("Failed to load seasonality: %v", err)
	}
	engine := projection.NewEngine(table, profile)
	runner := scenario.NewRunner(engine, logger).WithConcurrency(cfg.Concurrency)

	// 2. Optional persistence
	ctx := context.Background()
	var runs apiProjection.RunStore
	if cfg.DatabaseURL != "" {
		if err := store.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatalf("Failed to migrate database: %v", err)
		}
		pool, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		runs = store.NewRunRepo(pool, logger)
		logger.Info("Run persistence enabled")
	} else {
		logger.Warn("DATABASE_URL not set, runs will not be persisted")
	}

	// 3. Routes
	r := mux.NewRouter()
	apiProjection.NewHandler(engine, runner, runs, logger).Register(r)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	// 4. Serve until interrupted
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	go func() {
		logger.Infof("Starting server on %s (%s)", addr, cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Shutdown failed: %v", err)
	}
	logger.Info("Server stopped")
}

// optionalFile returns name when it exists under dir, otherwise "".
func optionalFile(dir, name string) string {
	if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
		return ""
	}
	return name
}
