// Package testutil provides test helpers including container management
// for storage integration tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pokengu/idlemon/internal/config"
	"github.com/pokengu/idlemon/internal/storage/postgres"
)

const (
	testDBImage = "postgres:16-alpine"
	testDBName  = "idlemon_test"
	testDBUser  = "idlemon"
	testDBPass  = "idlemon"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance.
type PostgresContainer struct {
	container testcontainers.Container
	Pool      *pgxpool.Pool
	Config    config.DatabaseConfig
}

// NewPostgresContainer starts a PostgreSQL test container and connects
// a pool to it. The container and pool are torn down via t.Cleanup.
//
// Precondition: Docker must be available.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testDBImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       testDBName,
				"POSTGRES_USER":     testDBUser,
				"POSTGRES_PASSWORD": testDBPass,
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("resolving container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("resolving mapped port: %v", err)
	}

	dbCfg := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            testDBUser,
		Password:        testDBPass,
		Name:            testDBName,
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}

	pool, err := postgres.Connect(ctx, dbCfg)
	if err != nil {
		t.Fatalf("connecting to test postgres: %v", err)
	}
	t.Logf("postgres container ready [%s]", time.Since(start))

	t.Cleanup(func() {
		pool.Close()
		_ = container.Terminate(ctx)
	})

	return &PostgresContainer{container: container, Pool: pool, Config: dbCfg}
}

// ApplyMigrations creates the profile-store schema directly, so tests
// do not depend on the migrate binary.
//
// Postcondition: the profiles and tick_markers tables exist.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()

	schema := `
		CREATE TABLE IF NOT EXISTS profiles (
			id         TEXT        PRIMARY KEY,
			snapshot   JSONB       NOT NULL,
			saved_at   TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS tick_markers (
			profile_id TEXT        PRIMARY KEY,
			marked_at  TIMESTAMPTZ NOT NULL
		);
	`
	if _, err := pc.Pool.Exec(context.Background(), schema); err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
}
