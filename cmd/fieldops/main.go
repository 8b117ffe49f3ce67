// File path: cmd/fieldops/main.go
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/jmcardoso/fieldops/internal/api"
	"github.com/jmcardoso/fieldops/internal/cache"
	"github.com/jmcardoso/fieldops/internal/common"
	"github.com/jmcardoso/fieldops/internal/portal"
	"github.com/jmcardoso/fieldops/internal/session"
	"github.com/jmcardoso/fieldops/internal/workorder"
)

func main() {
	logger := common.Logger()

	if err := godotenv.Load(); err != nil {
		logger.Warn("fieldops: .env file not loaded", "error", err)
	} else {
		logger.Info("fieldops: environment loaded from .env")
	}

	addr := flag.String("addr", ":8080", "listen address")
	cachePath := flag.String("cache-path", "", "path to the work-order cache (overrides FIELDOPS_CACHE_PATH)")
	cacheBackend := flag.String("cache-backend", "", "cache backend: file or sqlite (overrides FIELDOPS_CACHE_BACKEND)")
	cacheTTL := flag.String("cache-ttl", "", "cache entry lifetime, e.g. 72h (overrides FIELDOPS_CACHE_TTL)")
	portalEndpoint := flag.String("portal-endpoint", "", "allocation endpoint URL (overrides FIELDOPS_PORTAL_ENDPOINT)")
	historyLimit := flag.Int("history-limit", 0, "maximum entries in the history view")
	flag.Parse()

	logger.Info("fieldops: startup initiated", "addr", *addr)

	cacheCfg, err := cache.LoadConfig()
	if err != nil {
		logger.Error("fieldops: cache config load failed", "error", err)
		fmt.Println("cache config error:", err)
		os.Exit(1)
	}
	override := cache.Config{Backend: *cacheBackend, Path: *cachePath}
	if trimmed := strings.TrimSpace(*cacheTTL); trimmed != "" {
		dur, err := time.ParseDuration(trimmed)
		if err != nil {
			logger.Error("fieldops: invalid cache ttl", "value", trimmed, "error", err)
			fmt.Println("cache ttl error:", err)
			os.Exit(1)
		}
		override.TTL = dur
	}
	cacheCfg = cacheCfg.Merge(override)

	backend, closeBackend, err := buildBackend(cacheCfg)
	if err != nil {
		logger.Error("fieldops: cache backend init failed", "backend", cacheCfg.Backend, "error", err)
		fmt.Println("cache backend error:", err)
		os.Exit(1)
	}
	defer closeBackend()

	store, err := cache.NewStore(backend, cacheCfg.TTL)
	if err != nil {
		logger.Error("fieldops: cache store init failed", "error", err)
		fmt.Println("cache store error:", err)
		os.Exit(1)
	}
	logger.Info("fieldops: cache ready", "backend", cacheCfg.Backend, "path", cacheCfg.Path, "ttl", cacheCfg.TTL)

	portalCfg, err := portal.LoadConfig()
	if err != nil {
		logger.Error("fieldops: portal config load failed", "error", err)
		fmt.Println("portal config error:", err)
		os.Exit(1)
	}
	portalCfg = portalCfg.Merge(portal.Config{Endpoint: *portalEndpoint})
	client := portal.New(portalCfg)

	var orchOpts []workorder.Option
	if *historyLimit > 0 {
		orchOpts = append(orchOpts, workorder.WithHistoryLimit(*historyLimit))
	}
	orch := workorder.New(store, client, orchOpts...)

	sessionCfg, err := session.LoadConfig()
	if err != nil {
		logger.Error("fieldops: session config load failed", "error", err)
		fmt.Println("session config error:", err)
		os.Exit(1)
	}
	guard := session.New(sessionCfg,
		func() { logger.Warn("session: logout imminent", "lead", sessionCfg.WarningLead) },
		func() { logger.Warn("session: forced logout after inactivity", "timeout", sessionCfg.Timeout) },
	)
	defer guard.Stop()

	server, err := api.NewServer(orch, guard)
	if err != nil {
		logger.Error("fieldops: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("fieldops: server listening", "addr", *addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", *addr)
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("fieldops: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}

func buildBackend(cfg cache.Config) (cache.Backend, func(), error) {
	switch cfg.Backend {
	case cache.BackendSQLite:
		backend, err := cache.NewSQLiteBackend(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return backend, func() { _ = backend.Close() }, nil
	case cache.BackendFile:
		backend, err := cache.NewFileBackend(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return backend, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
