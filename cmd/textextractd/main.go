package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/smeshko/text-extractor/internal/common"
	"github.com/smeshko/text-extractor/internal/ingest"
	"github.com/smeshko/text-extractor/internal/metrics"
	"github.com/smeshko/text-extractor/internal/server"
	"github.com/smeshko/text-extractor/internal/session"
)

func main() {
	configPath := flag.String("config", common.DefaultConfigPath(), "config file path")
	flag.Parse()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := common.NewLogger(cfg.Logging, os.Stdout)
	slog.SetDefault(logger)

	if cfg.Serve.WatchDir == "" || len(cfg.Serve.Keywords) == 0 {
		logger.Error("serve.watch_dir and serve.keywords are required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := server.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		os.Exit(1)
	}
	defer server.CloseDB(db, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	sess := session.FromConfig(cfg, db, m, logger)
	inbox := server.NewInboxService(sess, cfg.Serve.Keywords, logger)

	paths, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{cfg.Serve.WatchDir},
		InitialScan: true,
		Debounce:    cfg.Serve.Debounce,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to start watcher", "dir", cfg.Serve.WatchDir, "error", err)
		os.Exit(1)
	}

	httpSrv := &http.Server{
		Addr:              cfg.Serve.HTTPAddr,
		Handler:           server.NewRouter(sess, db, reg, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	lis, err := net.Listen("tcp", cfg.Serve.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Serve.GRPCAddr, "error", err)
		os.Exit(1)
	}
	grpcServer, healthServer := server.NewGRPCServer()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return inbox.Run(gctx, paths, watchErrs)
	})
	g.Go(func() error {
		logger.Info("http listening", "addr", cfg.Serve.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("grpc listening", "addr", cfg.Serve.GRPCAddr)
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Extraction.WaitTimeout)
		defer cancel()
		sess.Shutdown(shutdownCtx)
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown failed", "error", err)
		}
		grpcServer.GracefulStop()
		return nil
	})

	logger.Info("textextractd watching", "dir", cfg.Serve.WatchDir, "keywords", cfg.Serve.Keywords)
	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}
