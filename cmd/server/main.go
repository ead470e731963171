// Package main provides the entry point for the cube engine's HTTP server.
//
// The server loads its configuration, registers any cube schemas found under
// the schema directory, and serves the query API until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"cubeengine/internal/config"
	cubesvc "cubeengine/internal/core/services/cube"
	"cubeengine/internal/schemaloader"
	transport "cubeengine/internal/transport/http"
	"cubeengine/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewLoggerWithFormat(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	slog.SetDefault(logger)

	engine := cubesvc.NewEngine(cfg.Cache.Max, cfg.Cache.TTLMs, logger)

	if err := registerSchemas(engine, cfg.Schema.Dir, logger); err != nil {
		log.Fatalf("Failed to register cube schemas: %v", err)
	}

	router := transport.NewRouter(cfg, engine)
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	logger.Info("server stopped")
}

// registerSchemas loads every *.yaml or *.yml cube schema under dir and registers it
// with the engine. A missing directory is not an error: the server can start
// empty and accept cube registrations over HTTP.
func registerSchemas(engine *cubesvc.Engine, dir string, logger *slog.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("no schema directory, starting with no cubes", slog.String("dir", dir))
			return nil
		}
		return err
	}

	loader := schemaloader.New()
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || (filepath.Ext(e.Name()) != ".yaml" && filepath.Ext(e.Name()) != ".yml") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	for _, path := range paths {
		def, err := loader.Load(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		if err := engine.RegisterCube(def); err != nil {
			return fmt.Errorf("register %s: %w", path, err)
		}
	}
	return nil
}
