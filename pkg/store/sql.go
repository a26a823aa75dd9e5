package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite

	errs "github.com/matzehuels/scalelist/pkg/errors"
	"github.com/matzehuels/scalelist/pkg/node"
)

// DefaultPostgresDSN is used when the postgres driver is given no DSN.
const DefaultPostgresDSN = "postgres://localhost:5432/scalelist?sslmode=disable"

// SQLStore keeps snapshots in a single "nodes" table.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

// OpenSQL opens a sqlite or postgres database and ensures the schema exists.
// An empty sqlite DSN opens ~/.config/scalelist/nodes.db.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dir, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			if err := os.MkdirAll(filepath.Dir(dir), 0700); err != nil {
				return nil, fmt.Errorf("create config dir: %w", err)
			}
			dsn = "file:" + filepath.Join(filepath.Dir(dir), "nodes.db") + "?_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = DefaultPostgresDSN
		}
	default:
		return nil, fmt.Errorf("unsupported sql driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "open %s", driver)
	}
	s, err := NewSQLStore(ctx, db, driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an open database. It pings the database and creates
// the nodes table if needed.
func NewSQLStore(ctx context.Context, db *sql.DB, driver string) (*SQLStore, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "ping %s", driver)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "create schema")
	}
	return &SQLStore{db: db, driver: driver}, nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS nodes (
  name TEXT PRIMARY KEY,
  id TEXT NOT NULL UNIQUE,
  inputs_json TEXT NOT NULL,
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL
)`

func (s *SQLStore) Put(ctx context.Context, name string, in node.Inputs) (*Snapshot, error) {
	if err := checkPut(name, in); err != nil {
		return nil, err
	}
	snap := upsert(nil, name, in)
	data, err := encodeInputs(snap.Inputs)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO nodes (name,id,inputs_json,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (name) DO UPDATE SET inputs_json=EXCLUDED.inputs_json, updated_at=EXCLUDED.updated_at`,
		snap.Name, snap.ID.String(), string(data), snap.CreatedAt.UnixMilli(), snap.UpdatedAt.UnixMilli())
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "put node %q", name)
	}
	return s.Get(ctx, name)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*Snapshot, error) {
	var (
		snap             Snapshot
		id, inputs       string
		created, updated int64
	)
	if err := row.Scan(&snap.Name, &id, &inputs, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if snap.ID, err = uuid.Parse(id); err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "node %q has a bad id", snap.Name)
	}
	if snap.Inputs, err = decodeInputs([]byte(inputs)); err != nil {
		return nil, err
	}
	snap.CreatedAt = time.UnixMilli(created).UTC()
	snap.UpdatedAt = time.UnixMilli(updated).UTC()
	return &snap, nil
}

func (s *SQLStore) Get(ctx context.Context, name string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `SELECT name,id,inputs_json,created_at,updated_at FROM nodes WHERE name=$1`, name)
	snap, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(name)
		}
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "get node %q", name)
	}
	return snap, nil
}

func (s *SQLStore) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name,id,inputs_json,created_at,updated_at FROM nodes ORDER BY name`)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "list nodes")
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "list nodes")
	}
	return out, nil
}

func (s *SQLStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM nodes WHERE name=$1`, name)
	if err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "delete node %q", name)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(name)
	}
	return nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

// Driver returns "sqlite" or "postgres".
func (s *SQLStore) Driver() string { return s.driver }

var _ Store = (*SQLStore)(nil)
