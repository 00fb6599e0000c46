/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the incident and vacation server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env and environment configuration
  2. Parse command-line flags (override the environment)
  3. Initialize SQLite store and seed plants on first run
  4. Create API handler and router
  5. Start the expiry watcher
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (env PORT, default 8080)
  -db      SQLite database path (env DB_PATH, default incidencias.db)
           Use ":memory:" for in-memory database
  -seeds   Plant seed file, JSON or YAML (env SEEDS_PATH)
  -env     Dotenv file to load (default .env)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the expiry watcher
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  ./server -db="./data/incidencias.db" -seeds=./seeds/plants.json
  ./server -db=":memory:" -port=3000

SEE ALSO:
  - config/config.go: Environment keys
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/incidencias/api"
	"github.com/warp/incidencias/catalog"
	"github.com/warp/incidencias/config"
	"github.com/warp/incidencias/logging"
	"github.com/warp/incidencias/store/sqlite"
)

func main() {
	envFile := flag.String("env", ".env", "Dotenv file to load")
	port := flag.String("port", "", "HTTP server port")
	dbPath := flag.String("db", "", "SQLite database path")
	seedsPath := flag.String("seeds", "", "Plant seed file (JSON or YAML)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *seedsPath != "" {
		cfg.SeedsPath = *seedsPath
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer store.Close()

	if cfg.SeedsPath != "" {
		seedPlants(store, cfg.SeedsPath, log)
	}

	handler := api.NewHandler(store, cfg, log)
	router := api.NewRouter(handler, cfg.CORSOrigins)

	watcher := api.NewExpiryWatcher(handler.Vacations, log, cfg.ExpiryCheckInterval)
	watcher.Start()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.WithFields(logrus.Fields{
			"port":    cfg.Port,
			"db_path": cfg.DBPath,
		}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	watcher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
		return
	}

	log.Info("Server stopped")
}

func seedPlants(store *sqlite.Store, path string, log logrus.FieldLogger) {
	plog := log.WithField(logging.FieldFile, path)

	names, err := catalog.LoadPlantSeeds(path)
	if err != nil {
		plog.WithError(err).Warn("Failed to read plant seeds")
		return
	}
	n, err := store.SeedPlants(context.Background(), names)
	if err != nil {
		plog.WithError(err).Warn("Failed to seed plants")
		return
	}
	if n > 0 {
		plog.WithField(logging.FieldCount, n).Info("Plants seeded")
	}
}
