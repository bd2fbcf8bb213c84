// Package internal holds test helpers for the postgres journal.
package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresContainer is a handle on a disposable Postgres instance the
// journal integration tests run against when no DATABASE_URL is set.
type PostgresContainer struct {
	*postgres.PostgresContainer

	// ConnectionDSN connects to the containerized database with TLS
	// disabled, ready for pgxpool.New and RunMigrations.
	ConnectionDSN string
}

// NewPostgresContainer starts a Postgres container through
// testcontainers and returns a handle to manage its lifecycle.
func NewPostgresContainer(ctx context.Context) (*PostgresContainer, error) {
	container, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("journal"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("notasecret"),
		testcontainers.WithWaitStrategy(
			// Postgres restarts once during init, hence the second
			// occurrence of the readiness log line.
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("internal.NewPostgresContainer: failed to run container, %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, fmt.Errorf("internal.NewPostgresContainer: failed to get connection dsn, %w", err)
	}

	return &PostgresContainer{
		PostgresContainer: container,
		ConnectionDSN:     dsn,
	}, nil
}
