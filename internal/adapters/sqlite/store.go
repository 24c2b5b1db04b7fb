package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	// SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/fr0stylo/guildwatch/internal/app/ports"
	"github.com/fr0stylo/guildwatch/internal/observability"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	driver      = "sqlite"
	defaultPath = "data/guildwatch"
)

// Store keeps the monitored guild IDs in a SQLite database.
type Store struct {
	db      *sql.DB
	metrics storeMetrics
}

var _ ports.GuildStore = (*Store)(nil)

// Open opens (and migrates) the database at path. The ".sqlite" suffix is appended.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open(driver, sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY on concurrent saves.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, metrics: newStoreMetrics()}, nil
}

func migrate(db *sql.DB) error {
	migrations, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations)
	if err != nil {
		return fmt.Errorf("failed to create goose provider: %w", err)
	}
	if _, err := provider.Up(context.Background()); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func sqliteDSN(path string) string {
	values := url.Values{}
	values.Add("_pragma", "journal_mode(WAL)")
	values.Add("_pragma", "synchronous(NORMAL)")
	values.Add("_pragma", "busy_timeout(5000)")
	return fmt.Sprintf("file:%s.sqlite?%s", path, values.Encode())
}

// LoadGuildIDs returns the saved IDs in their saved order. A database that has
// never been saved reports ports.ErrStateNotFound.
func (s *Store) LoadGuildIDs(ctx context.Context) (ids []string, err error) {
	ctx, span := observability.StartDBSpan(ctx, "LoadGuildIDs", "SELECT")
	start := time.Now()
	defer func() {
		s.metrics.observe(ctx, "load", start, err)
		if err != nil && !errors.Is(err, ports.ErrStateNotFound) {
			span.RecordError(err)
		}
		span.End()
	}()

	var savedAt string
	err = s.db.QueryRowContext(ctx, `SELECT saved_at FROM registry_meta WHERE id = 1`).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read registry meta: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT guild_id FROM monitored_guilds ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("list monitored guilds: %w", err)
	}
	defer rows.Close()

	ids = make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan monitored guild: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monitored guilds: %w", err)
	}
	return ids, nil
}

// SaveGuildIDs replaces the stored list in one transaction.
func (s *Store) SaveGuildIDs(ctx context.Context, ids []string) (err error) {
	ctx, span := observability.StartDBSpan(ctx, "SaveGuildIDs", "REPLACE")
	start := time.Now()
	defer func() {
		s.metrics.observe(ctx, "save", start, err)
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM monitored_guilds`); err != nil {
		return fmt.Errorf("clear monitored guilds: %w", err)
	}
	for position, id := range ids {
		if _, err = tx.ExecContext(ctx, `INSERT INTO monitored_guilds (position, guild_id) VALUES (?, ?)`, position, id); err != nil {
			return fmt.Errorf("insert monitored guild %s: %w", id, err)
		}
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO registry_meta (id, saved_at) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at
	`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("update registry meta: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
