package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/app"
)

const (
	envGRPCAddr              = "OMS_GRPC_ADDR"
	envPort                  = "PORT"
	envMetricsAddr           = "OMS_METRICS_ADDR"
	envStorageDriver         = "OMS_STORAGE_DRIVER"
	envPostgresDSN           = "OMS_POSTGRES_DSN"
	envPostgresAutoMigrate   = "OMS_POSTGRES_AUTO_MIGRATE"
	envProductServiceAddr    = "OMS_PRODUCT_SERVICE_ADDR"
	envProductServiceHost    = "PRODUCT_MICROSERVICE_HOST"
	envProductServicePort    = "PRODUCT_MICROSERVICE_PORT"
	envProductTimeout        = "OMS_PRODUCT_TIMEOUT"
	envAllowMockIntegrations = "OMS_ALLOW_MOCK_INTEGRATIONS"
	envGRPCWorkers           = "OMS_GRPC_WORKERS"
	envKafkaBrokers          = "KAFKA_BROKERS"
	envOutboxPollInterval    = "OMS_OUTBOX_POLL_INTERVAL"
	envOutboxBatchSize       = "OMS_OUTBOX_BATCH_SIZE"
	envOutboxMaxAttempts     = "OMS_OUTBOX_MAX_ATTEMPTS"
	envOutboxRetryDelay      = "OMS_OUTBOX_RETRY_DELAY"
	envLogLevel              = "OMS_LOG_LEVEL"
)

// envLookup совпадает с сигнатурой os.LookupEnv и подменяется в тестах.
type envLookup func(string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger(lookup envLookup) error {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)

	raw, ok := lookupTrimmed(lookup, envLogLevel)
	if !ok {
		return nil
	}
	level, err := log.ParseLevel(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", envLogLevel, err)
	}
	log.SetLevel(level)
	return nil
}

// readConfigFromEnv формирует конфигурацию приложения поверх DefaultConfig.
// Некорректные значения не прерывают запуск: остаётся значение по умолчанию, а причина попадает в warnings.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string
	warn := func(key string, err error) {
		warnings = append(warnings, fmt.Sprintf("%s: %v", key, err))
	}

	if v, ok := lookupTrimmed(lookup, envGRPCAddr); ok {
		cfg.GRPCAddr = v
	} else if port, ok := lookupTrimmed(lookup, envPort); ok {
		cfg.GRPCAddr = ":" + port
	}
	if v, ok := lookupTrimmed(lookup, envMetricsAddr); ok {
		cfg.MetricsAddr = v
	}
	if v, ok := lookupTrimmed(lookup, envStorageDriver); ok {
		cfg.StorageDriver = strings.ToLower(v)
	}
	if v, ok := lookupTrimmed(lookup, envPostgresDSN); ok {
		cfg.PostgresDSN = v
	}
	if v, ok := lookupTrimmed(lookup, envPostgresAutoMigrate); ok {
		if parsed, err := parseBool(v); err != nil {
			warn(envPostgresAutoMigrate, err)
		} else {
			cfg.PostgresAutoMigrate = parsed
		}
	}

	if v, ok := lookupTrimmed(lookup, envProductServiceAddr); ok {
		cfg.ProductServiceAddr = v
	} else if host, ok := lookupTrimmed(lookup, envProductServiceHost); ok {
		if port, ok := lookupTrimmed(lookup, envProductServicePort); ok {
			cfg.ProductServiceAddr = net.JoinHostPort(host, port)
		} else {
			warn(envProductServicePort, errors.New("must be set together with "+envProductServiceHost))
		}
	}
	if v, ok := lookupTrimmed(lookup, envProductTimeout); ok {
		if parsed, err := parseDuration(v, func(d time.Duration) bool { return d > 0 }, "must be > 0"); err != nil {
			warn(envProductTimeout, err)
		} else {
			cfg.ProductTimeout = parsed
		}
	}
	if v, ok := lookupTrimmed(lookup, envAllowMockIntegrations); ok {
		if parsed, err := parseBool(v); err != nil {
			warn(envAllowMockIntegrations, err)
		} else {
			cfg.AllowMockIntegrations = parsed
		}
	}
	if v, ok := lookupTrimmed(lookup, envGRPCWorkers); ok {
		if parsed, err := parseInt(v, func(n int) bool { return n >= 0 }, "must be >= 0"); err != nil {
			warn(envGRPCWorkers, err)
		} else {
			cfg.GRPCWorkers = uint32(parsed)
		}
	}
	if v, ok := lookupTrimmed(lookup, envKafkaBrokers); ok {
		cfg.KafkaBrokers = app.ParseBrokers(v)
	}

	if v, ok := lookupTrimmed(lookup, envOutboxPollInterval); ok {
		if parsed, err := parseDuration(v, func(d time.Duration) bool { return d > 0 }, "must be > 0"); err != nil {
			warn(envOutboxPollInterval, err)
		} else {
			cfg.OutboxPollInterval = parsed
		}
	}
	if v, ok := lookupTrimmed(lookup, envOutboxBatchSize); ok {
		if parsed, err := parseInt(v, func(n int) bool { return n > 0 }, "must be > 0"); err != nil {
			warn(envOutboxBatchSize, err)
		} else {
			cfg.OutboxBatchSize = parsed
		}
	}
	if v, ok := lookupTrimmed(lookup, envOutboxMaxAttempts); ok {
		if parsed, err := parseInt(v, func(n int) bool { return n > 0 }, "must be > 0"); err != nil {
			warn(envOutboxMaxAttempts, err)
		} else {
			cfg.OutboxMaxAttempts = parsed
		}
	}
	if v, ok := lookupTrimmed(lookup, envOutboxRetryDelay); ok {
		if parsed, err := parseDuration(v, func(d time.Duration) bool { return d >= 0 }, "must be >= 0"); err != nil {
			warn(envOutboxRetryDelay, err)
		} else {
			cfg.OutboxRetryDelay = parsed
		}
	}

	return cfg, warnings
}

// lookupTrimmed возвращает значение без пробелов; пустое значение считается отсутствующим.
func lookupTrimmed(lookup envLookup, key string) (string, bool) {
	raw, ok := lookup(key)
	if !ok {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value %q", raw)
	}
}

func parseInt(raw string, valid func(int) bool, constraint string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid integer value %q: %w", raw, err)
	}
	if valid != nil && !valid(value) {
		return 0, fmt.Errorf("invalid integer value %d: %s", value, constraint)
	}
	return value, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, constraint string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid duration value %q: %w", raw, err)
	}
	if valid != nil && !valid(value) {
		return 0, fmt.Errorf("invalid duration value %s: %s", value, constraint)
	}
	return value, nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("не удалось прочитать .env")
	}

	if err := setupLogger(os.LookupEnv); err != nil {
		log.WithError(err).Warn("некорректный уровень логирования, используем info")
	}

	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	for _, w := range warnings {
		log.Warn("конфигурация: " + w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"grpc_addr":      cfg.GRPCAddr,
		"metrics_addr":   cfg.MetricsAddr,
		"storage_driver": cfg.StorageDriver,
		"product_addr":   cfg.ProductServiceAddr,
		"kafka_enabled":  len(cfg.KafkaBrokers) > 0,
	}).Info("запускаем OrderService")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("OrderService остановлен")
}
