package app

import (
	"errors"
	"fmt"
	"time"
)

// Драйверы хранилища заказов.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// Config описывает настройки запуска сервиса заказов.
type Config struct {
	GRPCAddr    string
	MetricsAddr string
	// GRPCWorkers > 0 ограничивает пул горутин, обслуживающих запросы.
	GRPCWorkers uint32

	StorageDriver       string
	PostgresDSN         string
	PostgresAutoMigrate bool

	ProductServiceAddr string
	ProductTimeout     time.Duration
	// AllowMockIntegrations разрешает встроенный каталог товаров вместо внешнего сервиса.
	AllowMockIntegrations bool

	KafkaBrokers       []string
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration

	ShutdownTimeout time.Duration
}

// DefaultConfig возвращает базовые настройки.
func DefaultConfig() Config {
	return Config{
		GRPCAddr:            ":50051",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		ProductTimeout:      5 * time.Second,
		OutboxPollInterval:  time.Second,
		OutboxBatchSize:     100,
		OutboxMaxAttempts:   3,
		OutboxRetryDelay:    50 * time.Millisecond,
		ShutdownTimeout:     5 * time.Second,
	}
}

// ErrProductServiceNotConfigured — адрес сервиса товаров не задан, а встроенный каталог запрещён.
var ErrProductServiceNotConfigured = errors.New("product service address is not configured and mock integrations are disabled")

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("postgres dsn is required for postgres storage driver")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}

	if c.ProductServiceAddr == "" && !c.AllowMockIntegrations {
		return ErrProductServiceNotConfigured
	}
	return nil
}
