package app

import (
	"context"
	"os"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/service/product"
)

func testLogger() *log.Entry {
	logger := log.New()
	logger.SetLevel(log.WarnLevel)
	return logger.WithField("component", "test")
}

func TestInitRuntimeDependencies_MemoryWithCatalog(t *testing.T) {
	t.Parallel()

	deps, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver:         StorageDriverMemory,
		AllowMockIntegrations: true,
	}, nil, testLogger())
	require.NoError(t, err)
	defer deps.close(testLogger())

	require.NotNil(t, deps.store)
	require.NotNil(t, deps.outboxRepo)
	require.IsType(t, &product.Catalog{}, deps.products)
	require.NoError(t, deps.storageCheck(context.Background()))
	require.Nil(t, deps.productCheck)

	products, err := deps.products.Validate(context.Background(), []domain.ProductID{1, 2, 999})
	require.NoError(t, err)
	require.Len(t, products, 2)
}

func TestInitRuntimeDependencies_ProductClient(t *testing.T) {
	t.Parallel()

	deps, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver:      StorageDriverMemory,
		ProductServiceAddr: "127.0.0.1:1",
	}, nil, testLogger())
	require.NoError(t, err)

	require.IsType(t, &product.Client{}, deps.products)
	require.NotNil(t, deps.productCheck)
	require.Len(t, deps.closers, 1)

	deps.close(testLogger())
	require.Empty(t, deps.closers)
	deps.close(testLogger())
}

func TestInitRuntimeDependencies_Errors(t *testing.T) {
	t.Parallel()

	_, err := initRuntimeDependencies(context.Background(), Config{StorageDriver: StorageDriverMemory}, nil, testLogger())
	require.ErrorIs(t, err, ErrProductServiceNotConfigured)

	_, err = initRuntimeDependencies(context.Background(), Config{StorageDriver: "invalid-driver", AllowMockIntegrations: true}, nil, testLogger())
	require.ErrorContains(t, err, "unsupported storage driver")
}

func TestInitRuntimeDependencies_PostgresSuccess(t *testing.T) {
	dsn := strings.TrimSpace(os.Getenv("OMS_POSTGRES_TEST_DSN"))
	if dsn == "" {
		t.Skip("postgres dsn is not available")
	}

	deps, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver:         StorageDriverPostgres,
		PostgresDSN:           dsn,
		PostgresAutoMigrate:   true,
		AllowMockIntegrations: true,
	}, nil, testLogger())
	if err != nil {
		t.Skipf("postgres is not available for app integration test: %v", err)
	}
	defer deps.close(testLogger())

	require.NotNil(t, deps.store)
	require.NotNil(t, deps.outboxRepo)
	require.NoError(t, deps.storageCheck(context.Background()))
}
