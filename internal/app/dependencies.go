package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
	"github.com/vladislavdragonenkov/orders/internal/service/product"
	"github.com/vladislavdragonenkov/orders/internal/storage/memory"
	"github.com/vladislavdragonenkov/orders/internal/storage/postgres"
)

// runtimeDependencies содержит хранилища и клиентов, выбранных конфигурацией.
type runtimeDependencies struct {
	store      domain.OrderStore
	outboxRepo domain.OutboxRepository
	products   domain.ProductValidator

	storageCheck func(ctx context.Context) error
	productCheck func(ctx context.Context) error

	closers []func() error
}

// initRuntimeDependencies поднимает хранилище и клиента сервиса товаров.
func initRuntimeDependencies(ctx context.Context, cfg Config, m *metrics.OrderMetrics, logger *log.Entry) (*runtimeDependencies, error) {
	deps := &runtimeDependencies{}

	if err := deps.initStorage(ctx, cfg, logger); err != nil {
		return nil, err
	}
	if err := deps.initProducts(cfg, m, logger); err != nil {
		deps.close(logger)
		return nil, err
	}
	return deps, nil
}

func (d *runtimeDependencies) initStorage(ctx context.Context, cfg Config, logger *log.Entry) error {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		store := memory.NewOrderStore()
		d.store = store
		d.outboxRepo = memory.NewOutboxRepository()
		d.storageCheck = store.Ping
		logger.Info("using in-memory order storage")
		return nil

	case StorageDriverPostgres:
		pg, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := pg.EnsureSchema(ctx); err != nil {
				_ = pg.Close()
				return fmt.Errorf("apply migrations: %w", err)
			}
		}
		d.store = postgres.NewOrderStore(pg)
		d.outboxRepo = postgres.NewOutboxRepository(pg)
		d.storageCheck = pg.Ping
		d.closers = append(d.closers, pg.Close)
		logger.WithField("auto_migrate", cfg.PostgresAutoMigrate).Info("using postgres order storage")
		return nil

	default:
		return fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func (d *runtimeDependencies) initProducts(cfg Config, m *metrics.OrderMetrics, logger *log.Entry) error {
	if cfg.ProductServiceAddr == "" {
		if !cfg.AllowMockIntegrations {
			return ErrProductServiceNotConfigured
		}
		// NOTE: встроенный каталог только для локального запуска и тестов.
		d.products = product.DefaultCatalog()
		logger.Warn("product service address is empty, using built-in catalog")
		return nil
	}

	client, err := product.Dial(cfg.ProductServiceAddr,
		product.WithLogger(logger.WithField("component", "product-client")),
		product.WithTimeout(cfg.ProductTimeout),
		product.WithObserver(m),
	)
	if err != nil {
		return fmt.Errorf("dial product service: %w", err)
	}
	d.products = client
	d.productCheck = client.Check
	d.closers = append(d.closers, client.Close)
	logger.WithField("addr", cfg.ProductServiceAddr).Info("product service client initialized")
	return nil
}

// close освобождает ресурсы в обратном порядке.
func (d *runtimeDependencies) close(logger *log.Entry) {
	if d == nil {
		return
	}
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			logger.WithError(err).Warn("failed to close dependency")
		}
	}
	d.closers = nil
}
