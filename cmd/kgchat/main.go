// Command kgchat serves the cybersecurity knowledge graph chat API.
//
// Without flags it starts the HTTP server. The -load-csv and -load-json flags
// run one-shot data imports instead: the threat incident CSV and the
// line-delimited directory export respectively.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/zero-day-ai/kgchat/config"
	"github.com/zero-day-ai/kgchat/extract"
	"github.com/zero-day-ai/kgchat/graph"
	"github.com/zero-day-ai/kgchat/llm"
	"github.com/zero-day-ai/kgchat/loader"
	"github.com/zero-day-ai/kgchat/memory"
	"github.com/zero-day-ai/kgchat/pipeline"
	"github.com/zero-day-ai/kgchat/route"
	"github.com/zero-day-ai/kgchat/serve"
	"github.com/zero-day-ai/kgchat/viz"
)

const shutdownTimeout = 15 * time.Second

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		loadCSV    = flag.String("load-csv", "", "load threat incidents from CSV and exit")
		loadJSON   = flag.String("load-json", "", "load directory export from line-delimited JSON and exit")
		wide       = flag.Bool("wide", false, "use the wide visualization view")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(*configPath, *loadCSV, *loadJSON, *wide, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(configPath, loadCSV, loadJSON string, wide bool, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	client, err := graph.NewClient(ctx, graph.Config{
		URI:      cfg.Neo4j.URI,
		Username: cfg.Neo4j.Username,
		Password: cfg.Neo4j.Password,
		Database: cfg.Neo4j.Database,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Close(closeCtx); err != nil {
			logger.Warn("graph close failed", "error", err)
		}
	}()

	if err := client.EnsureSchema(ctx); err != nil {
		// Read paths degrade without the schema; loading would not.
		if loadCSV != "" || loadJSON != "" {
			return fmt.Errorf("provisioning schema: %w", err)
		}
		logger.Warn("schema provisioning failed", "error", err)
	}

	if loadCSV != "" || loadJSON != "" {
		return runLoad(ctx, client, loadCSV, loadJSON, logger)
	}

	return runServer(ctx, cfg, client, wide, logger)
}

func runLoad(ctx context.Context, client *graph.Client, loadCSV, loadJSON string, logger *slog.Logger) error {
	l := loader.New(client, 0, logger)

	if loadCSV != "" {
		f, err := os.Open(loadCSV)
		if err != nil {
			return err
		}
		defer f.Close()

		n, err := l.LoadCSV(ctx, f)
		if err != nil {
			return fmt.Errorf("loading %s: %w", loadCSV, err)
		}
		logger.Info("threat incidents loaded", "file", loadCSV, "incidents", n)
	}

	if loadJSON != "" {
		f, err := os.Open(loadJSON)
		if err != nil {
			return err
		}
		defer f.Close()

		nodes, rels, err := l.LoadExportFile(ctx, f)
		if err != nil {
			return fmt.Errorf("loading %s: %w", loadJSON, err)
		}
		logger.Info("directory export loaded", "file", loadJSON, "nodes", nodes, "relationships", rels)
	}
	return nil
}

func runServer(ctx context.Context, cfg config.Config, client *graph.Client, wide bool, logger *slog.Logger) error {
	completer, err := llm.SelectCompleter(cfg.LLM.APIKey, cfg.LLM.Model)
	if err != nil {
		return err
	}
	logger.Info("generation backend selected", "backend", completer.Name())

	store, err := newHistoryStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	maxEntities := viz.DefaultMaxEntities
	if wide {
		maxEntities = viz.WideMaxEntities
	}

	p := pipeline.New(
		route.NewRouter(client, route.Options{}, logger),
		llm.NewGenerator(completer, logger),
		viz.NewBuilder(client, maxEntities, logger),
		pipeline.Config{Extract: extract.Options{}},
		logger,
	)

	gin.SetMode(gin.ReleaseMode)
	srv := serve.NewServer(p, store, client, completer.Name(), logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// newHistoryStore picks the session backend: Redis when configured, otherwise
// in-process.
func newHistoryStore(cfg config.Config, logger *slog.Logger) (memory.Store, error) {
	if cfg.Redis.URL == "" {
		return memory.NewInMemoryStore(0), nil
	}

	store, err := memory.NewRedisStore(memory.RedisOptions{URL: cfg.Redis.URL})
	if err != nil {
		return nil, fmt.Errorf("connecting session store: %w", err)
	}
	logger.Info("session store connected", "backend", "redis")
	return store, nil
}
