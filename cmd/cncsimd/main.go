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

	"github.com/joho/godotenv"

	"cnc-telemetry-backend/config"
	"cnc-telemetry-backend/internal/api"
	"cnc-telemetry-backend/internal/db"
	"cnc-telemetry-backend/internal/generator"
	"cnc-telemetry-backend/internal/ingest"
	"cnc-telemetry-backend/internal/store"
	"cnc-telemetry-backend/internal/ws"
)

func main() {
	log.SetPrefix("cncsimd ")
	log.SetFlags(log.LstdFlags)

	// Optional .env for local development; real deployments set the
	// environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("loaded environment from .env")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	log.Printf("configuration loaded successfully from %s", configPath)

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}

	// A failed store connection at startup is fatal: nothing downstream
	// can run without it.
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	log.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	log.Println("data store initialized")

	gen := generator.New(
		generator.WithToolCapacity(cfg.Fleet.ToolCapacity),
	)

	scheduler := ingest.NewScheduler(cfg, appStore, gen)
	if err := scheduler.Provision(ctx); err != nil {
		log.Fatalf("failed to provision fleet: %v", err)
	}

	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		scheduler.Run(ctx)
	}()

	broadcaster := ws.NewBroadcaster(ctx, appStore, appStore, cfg.Broadcast.PushInterval)

	router := api.NewRouter(&cfg.Server, appStore, broadcaster)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	log.Println("Shutdown signal received, stopping services...")

	// Cancelling the context stops the ingestion streams and closes the
	// live subscriber connections.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("HTTP server Shutdown: %v", err)
	}

	select {
	case <-schedulerDone:
	case <-shutdownCtx.Done():
		log.Println("Timed out waiting for ingestion streams to stop")
	}

	log.Println("Server gracefully stopped")
}
