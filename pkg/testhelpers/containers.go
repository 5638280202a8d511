package testhelpers

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
)

// PostgresImage is the PostgreSQL image used by integration tests.
const PostgresImage = "postgres:16-alpine"

const (
	postgresDB       = "test_data"
	postgresUser     = "ekaya"
	postgresPassword = "test_password"
)

// FixtureSchema is the schema created in the shared container.
const FixtureSchema = "app"

// fixtureSQL is loaded once into the shared container.
var fixtureSQL = []string{
	`CREATE SCHEMA app`,
	`CREATE TABLE app.customers (
		id integer PRIMARY KEY,
		name varchar(100) NOT NULL,
		email varchar(200)
	)`,
	`CREATE TABLE app.orders (
		id integer PRIMARY KEY,
		customer_id integer NOT NULL REFERENCES app.customers(id),
		total numeric(10,2)
	)`,
	`CREATE TABLE app.audit_log (entry text)`,
	`CREATE VIEW app.customer_orders AS
		SELECT c.name, o.total FROM app.customers c JOIN app.orders o ON o.customer_id = c.id`,
	`INSERT INTO app.customers (id, name, email) VALUES (1, 'alice', 'alice@example.com'), (2, 'bob', NULL)`,
	`INSERT INTO app.orders (id, customer_id, total) VALUES (10, 1, 12.50), (11, 2, 3.00)`,
}

// TestDB holds a shared PostgreSQL container and a pool for fixture access.
type TestDB struct {
	Container testcontainers.Container
	Pool      *pgxpool.Pool
	Host      string
	Port      int
	ConnStr   string
}

// Credentials returns the connection input for the container's database.
func (db *TestDB) Credentials() datasource.Credentials {
	return datasource.Credentials{
		Host:     db.Host,
		Port:     db.Port,
		Database: postgresDB,
		User:     postgresUser,
		Password: postgresPassword,
		SSLMode:  "disable",
	}
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error
)

// GetTestDB returns a shared PostgreSQL container for integration tests.
// The container is created once per test binary and loaded with the fixture schema.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestDBOnce.Do(func() {
		sharedTestDB, sharedTestDBErr = setupTestDB(context.Background())
	})

	if sharedTestDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedTestDBErr)
	}

	return sharedTestDB
}

func setupTestDB(ctx context.Context) (*TestDB, error) {
	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       postgresDB,
			"POSTGRES_USER":     postgresUser,
			"POSTGRES_PASSWORD": postgresPassword,
		},
		// The entrypoint restarts the server once after init scripts.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	mapped, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}
	port, err := strconv.Atoi(mapped.Port())
	if err != nil {
		return nil, fmt.Errorf("invalid mapped port %q: %w", mapped.Port(), err)
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		postgresUser, postgresPassword, host, port, postgresDB)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	var pingErr error
	for i := 0; i < 10; i++ {
		if pingErr = pool.Ping(ctx); pingErr == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if pingErr != nil {
		pool.Close()
		return nil, fmt.Errorf("test database not reachable: %w", pingErr)
	}

	for _, stmt := range fixtureSQL {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to load fixture: %w", err)
		}
	}

	return &TestDB{
		Container: container,
		Pool:      pool,
		Host:      host,
		Port:      port,
		ConnStr:   connStr,
	}, nil
}
