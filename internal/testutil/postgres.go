package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/shopkern/orderd/internal/db"
)

const (
	dbUser     = "orderd"
	dbPassword = "orderd"
	dbName     = "orderd_test"
)

// StartPostgres launches a throwaway Postgres container, applies the
// migrations, and returns a ready pool plus the DSN. Teardown is registered
// with t.Cleanup.
func StartPostgres(t *testing.T) (*pgxpool.Pool, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     dbUser,
			"POSTGRES_PASSWORD": dbPassword,
			"POSTGRES_DB":       dbName,
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(90 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		terminateCtx, terminateCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer terminateCancel()
		_ = container.Terminate(terminateCtx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPassword, host, mappedPort.Port(), dbName)

	migrate(t, dsn)

	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool, dsn
}

// migrate retries until the server accepts connections. Postgres restarts
// once during container init, so the first attempts can fail.
func migrate(t *testing.T, dsn string) {
	t.Helper()

	deadline := time.Now().Add(30 * time.Second)
	for {
		err := db.RunMigrations(dsn, zap.NewNop())
		if err == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("apply migrations: %v", err)
		}
		time.Sleep(500 * time.Millisecond)
	}
}
