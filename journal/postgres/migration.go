package postgres

import (
	"embed"
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	// Necessary to load the postgres driver used by migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrations embed.FS

// RunMigrations creates the journal table on the database the dsn
// points to. Run it in the entrypoint of your application, before
// building a Recorder on the same database.
//
// Migrations are versioned in a dedicated 'conveyor_schema_migrations'
// table, so they never clash with other tools migrating the same
// PostgreSQL database.
func RunMigrations(dsn string) error {
	u, err := url.Parse(dsn)
	if err != nil {
		return fmt.Errorf("postgres.RunMigrations: invalid dsn format, %w", err)
	}

	q := u.Query()
	q.Add("x-migrations-table", "conveyor_schema_migrations")
	u.RawQuery = q.Encode()

	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("postgres.RunMigrations: failed to read embedded migrations, %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, u.String())
	if err != nil {
		return fmt.Errorf("postgres.RunMigrations: failed to initialize migrate instance, %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres.RunMigrations: failed to execute migrations, %w", err)
	}

	return nil
}
