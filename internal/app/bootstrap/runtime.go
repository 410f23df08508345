package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	eventadapter "github.com/bookloop/order-escrow-service/internal/adapters/events"
	httpadapter "github.com/bookloop/order-escrow-service/internal/adapters/http"
	"github.com/bookloop/order-escrow-service/internal/adapters/memory"
	"github.com/bookloop/order-escrow-service/internal/adapters/postgres"
	"github.com/bookloop/order-escrow-service/internal/application"
	"github.com/bookloop/order-escrow-service/internal/domain"
	"github.com/bookloop/order-escrow-service/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	outbox     *eventadapter.OutboxWorker
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With("service", cfg.ServiceID)
	slog.SetDefault(logger)

	var (
		accounts    ports.AccountRepository
		orders      ports.OrderRepository
		ledger      ports.LedgerEntryRepository
		idempotency ports.IdempotencyRepository
		outboxRepo  ports.OutboxRepository
		closers     []io.Closer
	)
	if cfg.DatabaseURL != "" {
		db, dbErr := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
		if dbErr != nil {
			return nil, dbErr
		}
		sqlDB, dbErr := db.DB()
		if dbErr != nil {
			return nil, dbErr
		}
		if dbErr := postgres.RunMigrations(ctx, db); dbErr != nil {
			_ = sqlDB.Close()
			return nil, dbErr
		}
		repos := postgres.NewRepositories(db)
		accounts, orders, ledger, idempotency, outboxRepo = repos.Accounts, repos.Orders, repos.Ledger, repos.Idempotency, repos.Outbox
		closers = append(closers, sqlDB)
	} else {
		logger.InfoContext(ctx, "no postgres url configured, using in-memory repositories")
		repos := memory.NewRepositories()
		accounts, orders, ledger, idempotency, outboxRepo = repos.Accounts, repos.Orders, repos.Ledger, repos.Idempotency, repos.Outbox
	}

	domainEvents := ports.DomainPublisher(eventadapter.NewMemoryDomainPublisher())
	analytics := ports.AnalyticsPublisher(eventadapter.NewMemoryAnalyticsPublisher())
	dlq := ports.DLQPublisher(eventadapter.NewLoggingDLQPublisher())
	if len(cfg.KafkaBrokers) > 0 {
		publisher, pubErr := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, map[string]string{
			domain.EventOrderPaidOut:   cfg.KafkaTopicOrderPaidOut,
			domain.EventOrderCancelled: cfg.KafkaTopicOrderCancelled,
		}, cfg.KafkaTopicAnalytics)
		if pubErr != nil {
			logger.WarnContext(ctx, "kafka publisher disabled, using in-memory publisher", "error", pubErr)
		} else {
			domainEvents, analytics = publisher, publisher
			closers = append(closers, publisher)
		}
		dlqPublisher, dlqErr := eventadapter.NewKafkaDLQPublisher(cfg.KafkaBrokers, cfg.KafkaTopicDLQ)
		if dlqErr != nil {
			logger.WarnContext(ctx, "kafka dlq publisher disabled, using logging publisher", "error", dlqErr)
		} else {
			dlq = dlqPublisher
			closers = append(closers, dlqPublisher)
		}
	}

	service := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:          cfg.ServiceID,
			AuthoritySubject:     cfg.AuthoritySubject,
			EscrowAccountID:      cfg.EscrowAccountID,
			NoticeWindow:         time.Duration(cfg.NoticeWindowDays) * 24 * time.Hour,
			IdempotencyTTL:       cfg.IdempotencyTTL,
			OutboxFlushBatchSize: cfg.OutboxBatchSize,
		},
		Accounts:     accounts,
		Orders:       orders,
		Ledger:       ledger,
		Idempotency:  idempotency,
		Outbox:       outboxRepo,
		DomainEvents: domainEvents,
		Analytics:    analytics,
		DLQ:          dlq,
	})

	handler := httpadapter.NewHandler(service)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		for _, closer := range closers {
			_ = closer.Close()
		}
		return nil, err
	}

	outbox := eventadapter.NewOutboxWorker(logger, service, cfg.OutboxPollInterval)

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		outbox:     outbox,
		cleanupFn: func(ctx context.Context) {
			for _, closer := range closers {
				_ = closer.Close()
			}
		},
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 2)

	go func() {
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- err
		}
	}()
	go func() {
		_ = r.outbox.Run(ctx)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}
