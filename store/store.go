// Package store keeps launch datasets in a SQLite file.
package store

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Launch is a launch row as stored in the database.
type Launch struct {
	ID              int64   `db:"id"`
	Site            string  `db:"launch_site"`
	PayloadMassKg   float64 `db:"payload_mass_kg"`
	Class           int     `db:"class"`
	BoosterCategory string  `db:"booster_version_category"`
}

// Import describes one ReplaceLaunches call.
type Import struct {
	ID         uuid.UUID
	Source     string
	RowCount   int
	ImportedAt time.Time
}

// Repository provides dataset operations on an open SQLite connection.
type Repository struct {
	dbConn *sqlx.DB
}

// Open connects to the SQLite file at path and applies pending migrations.
func Open(path string) (*Repository, error) {
	db, err := sqlx.Connect("sqlite", fmt.Sprintf("%s?_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, fmt.Errorf("connecting to db : %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	return &Repository{dbConn: db}, nil
}

// migrate applies pending migrations through a provider bound to db.
func migrate(ctx context.Context, db *sqlx.DB) error {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("opening migrations : %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db.DB, migrations)
	if err != nil {
		return fmt.Errorf("creating migration provider : %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("applying migration : %w", err)
	}
	return nil
}

// Close terminates the database connection.
func (repo *Repository) Close() error {
	if err := repo.dbConn.Close(); err != nil {
		return fmt.Errorf("closing repo : %w", err)
	}
	return nil
}

// ReplaceLaunches atomically swaps the stored launches for launches and
// records the import. Row order is preserved.
func (repo *Repository) ReplaceLaunches(ctx context.Context, source string, launches []Launch) (uuid.UUID, error) {
	importID, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generating uuid: %w", err)
	}

	tx, err := repo.dbConn.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM launches`); err != nil {
		return uuid.Nil, fmt.Errorf("clearing launches: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO launches(launch_site, payload_mass_kg, class, booster_version_category) VALUES (?,?,?,?)`)
	if err != nil {
		return uuid.Nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, l := range launches {
		if _, err := stmt.ExecContext(ctx, l.Site, l.PayloadMassKg, l.Class, l.BoosterCategory); err != nil {
			return uuid.Nil, fmt.Errorf("inserting launch %d: %w", i, err)
		}
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO imports(id, source, row_count, imported_at) VALUES (?,?,?,?)`,
		importID.String(), source, len(launches), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return uuid.Nil, fmt.Errorf("recording import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("committing launches: %w", err)
	}
	return importID, nil
}

// Launches returns all stored launches in insertion order.
func (repo *Repository) Launches(ctx context.Context) ([]Launch, error) {
	var launches []Launch
	query := `SELECT id, launch_site, payload_mass_kg, class, booster_version_category FROM launches ORDER BY id`
	if err := repo.dbConn.SelectContext(ctx, &launches, query); err != nil {
		return nil, fmt.Errorf("getting launches: %w", err)
	}
	return launches, nil
}

// Count returns the number of stored launches.
func (repo *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := repo.dbConn.GetContext(ctx, &n, `SELECT COUNT(*) FROM launches`); err != nil {
		return 0, fmt.Errorf("counting launches: %w", err)
	}
	return n, nil
}

// LastImport returns the most recent import, or nil when nothing was imported.
func (repo *Repository) LastImport(ctx context.Context) (*Import, error) {
	var rows []struct {
		ID         string `db:"id"`
		Source     string `db:"source"`
		RowCount   int    `db:"row_count"`
		ImportedAt string `db:"imported_at"`
	}
	query := `SELECT id, source, row_count, imported_at FROM imports ORDER BY id DESC LIMIT 1`
	if err := repo.dbConn.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("getting last import: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	id, err := uuid.Parse(rows[0].ID)
	if err != nil {
		return nil, fmt.Errorf("parsing import id: %w", err)
	}
	importedAt, err := time.Parse(time.RFC3339Nano, rows[0].ImportedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing import time: %w", err)
	}
	return &Import{
		ID:         id,
		Source:     rows[0].Source,
		RowCount:   rows[0].RowCount,
		ImportedAt: importedAt,
	}, nil
}
