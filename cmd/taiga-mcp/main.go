// Command taiga-mcp serves the Taiga project-management API as MCP tools,
// over stdio or streamable HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/taiga-contrib/taiga-mcp-go/internal/config"
	"github.com/taiga-contrib/taiga-mcp-go/pkg/observability"
	"github.com/taiga-contrib/taiga-mcp-go/pkg/pagination"
	"github.com/taiga-contrib/taiga-mcp-go/pkg/taiga"
	"github.com/taiga-contrib/taiga-mcp-go/pkg/tools"
)

const (
	serverName = "taiga-mcp"

	instructions = `This server exposes a Taiga instance as tools. Tool names follow
the entity.operation convention (projects.list, userstories.create, ...).
List tools fetch every page automatically; pass auto_paginate=false to
fetch only the first page.`
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to a taiga-mcp.yaml config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(serverName, version)
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "taiga-mcp:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
			ServiceName:    serverName,
			ServiceVersion: version,
			Endpoint:       cfg.OTLPEndpoint,
			Insecure:       cfg.OTLPInsecure,
			SampleRate:     1.0,
		})
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Warn("tracer shutdown", zap.Error(err))
			}
		}()
	}

	metrics := observability.NewMetrics("taiga")

	clientOpts := []taiga.Option{
		taiga.WithLogger(logger),
		taiga.WithMetrics(metrics),
	}
	if cfg.Token != "" {
		clientOpts = append(clientOpts, taiga.WithToken(cfg.Token))
	} else {
		clientOpts = append(clientOpts, taiga.WithCredentials(cfg.Username, cfg.Password))
	}
	client, err := taiga.NewClient(cfg.APIURL, clientOpts...)
	if err != nil {
		return err
	}
	if err := client.EnsureAuthenticated(ctx); err != nil {
		return fmt.Errorf("authenticate against %s: %w", cfg.APIURL, err)
	}
	logger.Info("authenticated", zap.String("api_url", cfg.APIURL))

	pageCfg, err := cfg.Pagination()
	if err != nil {
		return err
	}
	paginator := pagination.New(client, pageCfg)

	s := server.NewMCPServer(serverName, version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	tools.New(client, paginator, metrics, logger).RegisterAll(s)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return serveMetrics(ctx, cfg.MetricsAddr, metrics, logger)
		})
	}

	switch cfg.Transport {
	case "http":
		httpServer := server.NewStreamableHTTPServer(s)
		g.Go(func() error {
			logger.Info("serving streamable HTTP", zap.String("addr", cfg.HTTPAddr))
			if err := httpServer.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})
	default:
		g.Go(func() error {
			logger.Info("serving stdio")
			return server.ServeStdio(s)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func serveMetrics(ctx context.Context, addr string, metrics *observability.Metrics, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	// Stdio transport owns stdout, so logs always go to stderr.
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg.Build()
}
