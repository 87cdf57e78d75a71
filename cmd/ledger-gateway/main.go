// Package main runs the booking ledger gateway: REST intake and chain queries,
// gRPC health reporting and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/bookingledger-backend/internal/ledger"
	"github.com/goodnatureofminers/bookingledger-backend/internal/metrics"
	"github.com/goodnatureofminers/bookingledger-backend/internal/service"
	"github.com/goodnatureofminers/bookingledger-backend/internal/transport"
	grpcMiddleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpcZap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	grpcRecovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	grpcCtxTags "github.com/grpc-ecosystem/go-grpc-middleware/tags"
	grpcPrometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type config struct {
	Addr               string        `long:"addr" env:"BOOKING_LEDGER_ADDR" description:"gRPC listen address" default:":8000"`
	RestAddr           string        `long:"rest-addr" env:"BOOKING_LEDGER_REST_ADDR" description:"REST and metrics listen address" default:":8001"`
	LedgerName         string        `long:"ledger-name" env:"BOOKING_LEDGER_NAME" description:"ledger name used in metrics" default:"bookings"`
	AppendAttempts     int           `long:"append-attempts" env:"BOOKING_LEDGER_APPEND_ATTEMPTS" description:"append attempts per booking before giving up" default:"5"`
	AppendBackoff      time.Duration `long:"append-backoff" env:"BOOKING_LEDGER_APPEND_BACKOFF" description:"base backoff between append attempts" default:"2ms"`
	MaxBackoff         time.Duration `long:"max-backoff" env:"BOOKING_LEDGER_MAX_BACKOFF" description:"upper bound of the append backoff" default:"50ms"`
	WorkerCount        int           `long:"worker-count" env:"BOOKING_LEDGER_WORKER_COUNT" description:"concurrent recorders per batch" default:"8"`
	QueueFlushSize     int           `long:"queue-flush-size" env:"BOOKING_LEDGER_QUEUE_FLUSH_SIZE" description:"bookings per queued batch" default:"100"`
	QueueFlushInterval time.Duration `long:"queue-flush-interval" env:"BOOKING_LEDGER_QUEUE_FLUSH_INTERVAL" description:"max wait before flushing the queue" default:"1s"`
	QueueFlushRPS      int           `long:"queue-flush-rps" env:"BOOKING_LEDGER_QUEUE_FLUSH_RPS" description:"max queue flushes per second" default:"50"`
	HealthInterval     time.Duration `long:"health-interval" env:"BOOKING_LEDGER_HEALTH_INTERVAL" description:"chain verification interval for health checks" default:"30s"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()
	grpcZap.ReplaceGrpcLoggerV2(logger)

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("ledger gateway failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	chain, err := ledger.New(logger.Named("ledger"), metrics.NewLedger(cfg.LedgerName))
	if err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}

	recorder, err := service.NewBookingRecorder(chain, metrics.NewBookingRecorder(), logger.Named("recorder"), service.RecorderConfig{
		AppendAttempts: cfg.AppendAttempts,
		AppendBackoff:  cfg.AppendBackoff,
		MaxBackoff:     cfg.MaxBackoff,
		WorkerCount:    cfg.WorkerCount,
	})
	if err != nil {
		return fmt.Errorf("init booking recorder: %w", err)
	}

	queue, err := service.NewBookingQueue(recorder, logger.Named("queue"), service.QueueConfig{
		FlushSize:     cfg.QueueFlushSize,
		FlushInterval: cfg.QueueFlushInterval,
		FlushRPS:      cfg.QueueFlushRPS,
	})
	if err != nil {
		return fmt.Errorf("init booking queue: %w", err)
	}
	queue.Start(ctx)
	defer queue.Stop()

	healthServer := health.NewServer()
	reporter := transport.NewHealthReporter(chain, healthServer, cfg.HealthInterval, logger.Named("health"))
	go func() {
		if err := reporter.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("health reporter stopped", zap.Error(err))
		}
	}()

	if err := startGRPCServer(ctx, cfg.Addr, healthServer, logger); err != nil {
		return err
	}

	gw := gwruntime.NewServeMux()
	if err := transport.NewLedgerHandler(chain, recorder, queue, logger.Named("http")).Register(gw); err != nil {
		return fmt.Errorf("register ledger handler: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", gw)
	mux.Handle("/metrics", promhttp.Handler())

	s := &http.Server{
		Addr:              cfg.RestAddr,
		Handler:           cors.Default().Handler(mux),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down the http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shutdown http server", zap.Error(err))
		}
	}()

	logger.Info("Starting HTTP server", zap.String("addr", cfg.RestAddr))
	if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

func startGRPCServer(ctx context.Context, addr string, healthServer *health.Server, logger *zap.Logger) error {
	chain := []grpc.UnaryServerInterceptor{
		grpcRecovery.UnaryServerInterceptor(),
		grpcCtxTags.UnaryServerInterceptor(),
		grpcPrometheus.UnaryServerInterceptor,
		grpcZap.UnaryServerInterceptor(logger),
	}
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(grpcMiddleware.ChainUnaryServer(chain...)),
		grpc.StreamInterceptor(grpcMiddleware.ChainStreamServer(
			grpcRecovery.StreamServerInterceptor(),
			grpcPrometheus.StreamServerInterceptor,
		)),
	)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	grpcPrometheus.EnableHandlingTimeHistogram()
	grpcPrometheus.Register(grpcServer)

	socket, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	go func() {
		logger.Info("Starting gRPC server", zap.String("addr", addr))
		if serveErr := grpcServer.Serve(socket); serveErr != nil {
			logger.Error("gRPC server stopped", zap.Error(serveErr))
		}
	}()
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down gRPC server")
		grpcServer.GracefulStop()
	}()
	return nil
}
