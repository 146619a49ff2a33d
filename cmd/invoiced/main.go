package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/invoice-tracker/internal/app"
	"github.com/joseph-ayodele/invoice-tracker/internal/async"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/ingest"
	"github.com/joseph-ayodele/invoice-tracker/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		return 2
	}
	logger := app.NewLogger(cfg.LogLevel, os.Stdout)
	slog.SetDefault(logger)

	zl, err := zap.NewProduction()
	if err != nil {
		logger.Error("failed to build zap logger", "error", err)
		return 1
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		return 1
	}
	defer st.Close()

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		return 1
	}
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(server.UnaryLogger(zl)),
		// base64 content plus envelope
		grpc.MaxRecvMsgSize(server.MaxUploadBytes/3*4+(1<<20)),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(server.ServiceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)
	server.RegisterInvoiceServiceServer(grpcServer, server.NewInvoiceService(st.Processor, zl))

	go func() {
		logger.Info("grpc.serving", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc serve failed", "error", err)
			stop()
		}
	}()

	var metricsSrv *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("metrics.serving", "addr", cfg.Metrics.Addr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics serve failed", "error", err)
			}
		}()
	}

	var queue *async.ProcessorQueue
	if cfg.Server.InboxDir != "" {
		var inboxOpts []ingest.InboxOption
		if st.Archive != nil {
			inboxOpts = append(inboxOpts, ingest.WithArchiver(st.Archive))
		}
		handler := ingest.NewInbox(st.Processor, cfg.Server.OutboxDir, logger, inboxOpts...)
		queue = app.NewQueue(cfg.Server, handler, logger)

		events, _, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       []string{cfg.Server.InboxDir},
			InitialScan: true,
			Debounce:    500 * time.Millisecond,
		}, logger)
		if err != nil {
			logger.Error("failed to watch inbox", "dir", cfg.Server.InboxDir, "error", err)
			queue.Shutdown(context.Background())
			grpcServer.Stop()
			return 1
		}
		go ingest.Feed(ctx, events, queue, "", logger)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if queue != nil {
		queue.Shutdown(shutdownCtx)
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	grpcServer.GracefulStop()
	logger.Info("stopped")
	return 0
}
