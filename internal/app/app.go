package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/vladislavdragonenkov/orders/api/ordersv1"
	healthcheck "github.com/vladislavdragonenkov/orders/internal/health"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
	grpcsvc "github.com/vladislavdragonenkov/orders/internal/service/grpc"
	"github.com/vladislavdragonenkov/orders/internal/version"
)

// Run поднимает gRPC-сервер, HTTP с метриками и пробами и, при наличии Kafka, outbox worker.
// Возвращает ctx.Err() после штатной остановки.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultConfig().ShutdownTimeout
	}

	logger := log.WithField("component", "app")
	orderMetrics := metrics.NewOrderMetrics()

	deps, err := initRuntimeDependencies(ctx, cfg, orderMetrics, logger)
	if err != nil {
		return err
	}
	defer deps.close(logger)

	producer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(producer, logger)

	orchestrator := createOrchestrator(deps, producer != nil, orderMetrics, logger)
	orderService := grpcsvc.NewOrderService(orchestrator, logger.WithField("component", "order-service"))

	grpcServer, healthServer := newGRPCServer(cfg, orderService, logger)
	healthHandler := newHealthHandler(deps)

	grpcLis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}
	httpLis, err := net.Listen("tcp", cfg.MetricsAddr)
	if err != nil {
		_ = grpcLis.Close()
		return err
	}
	httpSrv := newMetricsServer(healthHandler)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Infof("gRPC сервер слушает %s", grpcLis.Addr())
		if err := grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		logger.Infof("метрики и health checks доступны по адресу %s", httpLis.Addr())
		if err := httpSrv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if producer != nil {
		worker := createOutboxWorker(deps, producer, cfg, logger)
		g.Go(func() error {
			if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("получен сигнал остановки, останавливаем серверы")
		healthServer.Shutdown()
		stopGRPC(grpcServer, cfg.ShutdownTimeout, logger)
		shutdownHTTP(httpSrv, cfg.ShutdownTimeout, logger)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func newGRPCServer(cfg Config, orderService ordersv1.OrderServiceServer, logger *log.Entry) (*grpc.Server, *health.Server) {
	grpcMetrics := promgrpc.NewServerMetrics()
	if err := prometheus.Register(grpcMetrics); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*promgrpc.ServerMetrics); ok {
				grpcMetrics = existing
			}
		} else {
			logger.WithError(err).Warn("failed to register grpc metrics")
		}
	}

	opts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor())}
	if cfg.GRPCWorkers > 0 {
		opts = append(opts, grpc.NumStreamWorkers(cfg.GRPCWorkers))
	}
	server := grpc.NewServer(opts...)

	ordersv1.RegisterOrderServiceServer(server, orderService)
	grpcMetrics.InitializeMetrics(server)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ordersv1.OrderService_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	return server, healthServer
}

func newHealthHandler(deps *runtimeDependencies) *healthcheck.Handler {
	handler := healthcheck.NewHandler(version.GetVersion())
	handler.RegisterChecker("storage", healthcheck.NewSimpleChecker("storage", deps.storageCheck))
	if deps.productCheck != nil {
		handler.RegisterChecker("products", healthcheck.NewOptionalChecker("products", deps.productCheck))
	}
	return handler
}

// newMetricsServer собирает HTTP-обработчик /metrics и health-проб.
func newMetricsServer(healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	healthHandler.Register(mux)

	return &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// stopGRPC пытается остановить сервер мягко и обрывает соединения по таймауту.
func stopGRPC(server *grpc.Server, timeout time.Duration, logger *log.Entry) {
	stopped := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(timeout):
		logger.Warn("graceful stop превысил таймаут, принудительно останавливаем")
		server.Stop()
	}
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, timeout time.Duration, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
