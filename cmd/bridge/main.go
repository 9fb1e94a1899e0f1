// Bridge reply server. Exposes the multi-stage reply pipeline over HTTP
// and owns the flat-file conversation state underneath it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/symbioza/bridge/pkg/api"
	"github.com/symbioza/bridge/pkg/chain"
	"github.com/symbioza/bridge/pkg/config"
	"github.com/symbioza/bridge/pkg/llm"
	"github.com/symbioza/bridge/pkg/metrics"
	"github.com/symbioza/bridge/pkg/store"
	"github.com/symbioza/bridge/pkg/version"
)

const shutdownTimeout = 15 * time.Second

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// buildStages pairs every configured stage with a client for its provider.
// Validation already guaranteed each stage's provider exists.
func buildStages(cfg *config.Config) ([]chain.Stage, error) {
	stages := make([]chain.Stage, 0, len(cfg.Stages))
	for _, sc := range cfg.Stages {
		provider := cfg.Providers[sc.Provider]

		apiKey := ""
		if provider.APIKeyEnv != "" {
			apiKey = os.Getenv(provider.APIKeyEnv)
			if apiKey == "" {
				return nil, fmt.Errorf("stage %s: environment variable %s is empty", sc.Role, provider.APIKeyEnv)
			}
		}

		stages = append(stages, chain.Stage{
			Config: sc,
			Client: llm.NewOpenAIClient(llm.OpenAIConfig{
				APIKey:  apiKey,
				BaseURL: provider.BaseURL,
				Model:   sc.Model,
			}),
		})
	}
	return stages, nil
}

func main() {
	configPath := flag.String("config",
		getEnv("BRIDGE_CONFIG", "./deploy/config/bridge.yaml"),
		"Path to configuration file")
	flag.Parse()

	// Load .env next to the config file
	envPath := filepath.Join(filepath.Dir(*configPath), ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment",
			"path", envPath, "error", err)
	} else {
		slog.Info("Loaded environment", "path", envPath)
	}

	httpPort := getEnv("HTTP_PORT", "8080")

	slog.Info("Starting bridge",
		"version", version.Full(),
		"http_port", httpPort,
		"config", *configPath)

	ctx := context.Background()

	// 1. Initialize configuration
	cfg, err := config.Initialize(ctx, *configPath)
	if err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	// 2. Build per-stage model clients
	stages, err := buildStages(cfg)
	if err != nil {
		slog.Error("Failed to build stage clients", "error", err)
		os.Exit(1)
	}
	slog.Info("Stage clients initialized", "stages", len(stages))

	// 3. Metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	chainMetrics := metrics.New(registry)

	// 4. Chain executor over the flat-file stores
	executor, err := chain.NewExecutor(chain.ExecutorConfig{
		Stages:           stages,
		Pricing:          cfg.PricingTable(),
		CostCapUSD:       cfg.Budget.CostCapUSD,
		HistoryMaxTokens: cfg.History.MaxTokens,
		History:          store.NewHistoryStore(cfg.History.Dir),
		Personas:         store.NewPersonaStore(cfg.Persona.Dir),
		CostLog:          store.NewCostLogWriter(cfg.CostLog.Path),
		Metrics:          chainMetrics,
	})
	if err != nil {
		slog.Error("Failed to create chain executor", "error", err)
		os.Exit(1)
	}

	// 5. HTTP server (non-blocking start)
	httpServer := api.NewServer(api.ServerConfig{
		Addr:     ":" + httpPort,
		Executor: executor,
		Gatherer: registry,
	})

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", ":"+httpPort)
		if err := httpServer.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	slog.Info("Bridge started successfully", "stages", len(stages),
		"cost_cap_usd", cfg.Budget.CostCapUSD)

	// 6. Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// 7. Graceful shutdown, draining in-flight chains
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("Bridge stopped")
}
