// Package store persists named scaleList node snapshots.
//
// A [Snapshot] records a node's inputs under a user-chosen name so that the
// CLI and the HTTP API can evaluate it later. Four backends implement
// [Store]:
//
//   - [FileStore]: one JSON file per node under ~/.config/scalelist/nodes
//   - [SQLStore] with sqlite (modernc.org/sqlite) or postgres (pgx)
//   - [MongoStore]: one document per node
//
// [Open] picks a backend from a [Config].
//
// Names are validated with errors.ValidateNodeName before they reach any
// backend. Missing names are reported with an error wrapping [ErrNotFound].
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/scalelist/pkg/errors"
	nodeio "github.com/matzehuels/scalelist/pkg/io"
	"github.com/matzehuels/scalelist/pkg/node"
)

// ErrNotFound is returned when no snapshot has the requested name.
var ErrNotFound = errors.New("node not found")

// Snapshot is a named copy of a node's inputs.
type Snapshot struct {
	ID        uuid.UUID
	Name      string
	Inputs    node.Inputs
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists snapshots by name.
type Store interface {
	// Put creates or replaces the snapshot called name. Replacing keeps the
	// original ID and CreatedAt.
	Put(ctx context.Context, name string, in node.Inputs) (*Snapshot, error)

	// Get returns the snapshot called name.
	Get(ctx context.Context, name string) (*Snapshot, error)

	// List returns every snapshot ordered by name.
	List(ctx context.Context) ([]Snapshot, error)

	// Delete removes the snapshot called name.
	Delete(ctx context.Context, name string) error

	Close() error
}

// Backend drivers accepted by [Open].
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Drivers lists every supported backend driver.
var Drivers = []string{DriverFile, DriverSQLite, DriverPostgres, DriverMongo}

// Config selects and configures a backend.
type Config struct {
	Driver   string // one of Drivers, default "file"
	DSN      string // sqlite/postgres DSN or mongo URI
	Database string // mongo database, default "scalelist"
	Dir      string // file store directory, default ~/.config/scalelist/nodes
}

// Open returns the backend described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverFile:
		return NewFileStore(cfg.Dir)
	case DriverSQLite, DriverPostgres:
		return OpenSQL(ctx, cfg.Driver, cfg.DSN)
	case DriverMongo:
		return NewMongoStore(ctx, cfg.DSN, cfg.Database)
	default:
		return nil, errs.ValidateFormat(cfg.Driver, Drivers...)
	}
}

// DefaultDir returns ~/.config/scalelist/nodes.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "scalelist", "nodes"), nil
}

// now returns the current time at the millisecond precision every backend
// can round-trip.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// upsert returns the snapshot that results from writing in under name on
// top of existing, which may be nil.
func upsert(existing *Snapshot, name string, in node.Inputs) *Snapshot {
	t := now()
	if existing == nil {
		return &Snapshot{ID: uuid.New(), Name: name, Inputs: in.Clone(), CreatedAt: t, UpdatedAt: t}
	}
	s := *existing
	s.Inputs = in.Clone()
	s.UpdatedAt = t
	return &s
}

func checkPut(name string, in node.Inputs) error {
	if err := errs.ValidateNodeName(name); err != nil {
		return err
	}
	return in.Validate()
}

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func notFound(name string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, name)
}

// encodeInputs stores inputs in the node file JSON shape.
func encodeInputs(in node.Inputs) ([]byte, error) {
	var buf bytes.Buffer
	if err := nodeio.WriteNode(&buf, nodeio.FormatJSON, in); err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "encode inputs")
	}
	return buf.Bytes(), nil
}

func decodeInputs(data []byte) (node.Inputs, error) {
	in, err := nodeio.ReadNode(bytes.NewReader(data), nodeio.FormatJSON)
	if err != nil {
		return node.Inputs{}, errs.Wrap(errs.ErrCodeStorage, err, "decode inputs")
	}
	return in, nil
}

type snapshotJSON struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Inputs    json.RawMessage `json:"inputs"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MarshalJSON encodes the snapshot with its inputs in node file shape.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	in, err := encodeInputs(s.Inputs)
	if err != nil {
		return nil, err
	}
	return json.Marshal(snapshotJSON{
		ID:        s.ID,
		Name:      s.Name,
		Inputs:    in,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	})
}

// UnmarshalJSON decodes a snapshot written by MarshalJSON.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var v snapshotJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	in, err := decodeInputs(v.Inputs)
	if err != nil {
		return err
	}
	*s = Snapshot{ID: v.ID, Name: v.Name, Inputs: in, CreatedAt: v.CreatedAt, UpdatedAt: v.UpdatedAt}
	return nil
}
