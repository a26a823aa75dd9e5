package store

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/scalelist/pkg/core/blend"
	errs "github.com/matzehuels/scalelist/pkg/errors"
	"github.com/matzehuels/scalelist/pkg/node"
)

func sampleInputs() node.Inputs {
	return node.Inputs{
		Active:           2,
		NormalizeWeights: true,
		List: blend.List{
			{Name: "squash", Weight: 0.5, Absolute: true, Scale: r3.Vec{X: 2, Y: 0.5, Z: 2}},
			{Name: "mirror", Weight: -1, Scale: r3.Vec{X: -1, Y: 1, Z: 1}},
		},
	}
}

// testStore runs the behaviour every backend must share.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "arm"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) = %v, want ErrNotFound", err)
	}

	created, err := s.Put(ctx, "arm", sampleInputs())
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("Put should assign an ID")
	}

	got, err := s.Get(ctx, "arm")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d := cmp.Diff(sampleInputs(), got.Inputs, cmpopts.EquateEmpty()); d != "" {
		t.Errorf("inputs (-want +got):\n%s", d)
	}
	if got.ID != created.ID || !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("Get = %v/%v, want %v/%v", got.ID, got.CreatedAt, created.ID, created.CreatedAt)
	}

	changed := sampleInputs()
	changed.List = changed.List[:1]
	updated, err := s.Put(ctx, "arm", changed)
	if err != nil {
		t.Fatalf("Put (replace): %v", err)
	}
	if updated.ID != created.ID {
		t.Error("replacing should keep the ID")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("replacing should keep CreatedAt")
	}
	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Error("UpdatedAt went backwards")
	}
	if len(updated.Inputs.List) != 1 {
		t.Errorf("replaced list has %d items, want 1", len(updated.Inputs.List))
	}

	if _, err := s.Put(ctx, "leg", node.Inputs{}); err != nil {
		t.Fatalf("Put(empty): %v", err)
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var names []string
	for _, snap := range list {
		names = append(names, snap.Name)
	}
	if d := cmp.Diff([]string{"arm", "leg"}, names); d != "" {
		t.Errorf("List names (-want +got):\n%s", d)
	}

	if err := s.Delete(ctx, "arm"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "arm"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(missing) = %v, want ErrNotFound", err)
	}
	if _, err := s.Get(ctx, "arm"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(deleted) = %v, want ErrNotFound", err)
	}

	if _, err := s.Put(ctx, "../escape", node.Inputs{}); !errs.Is(err, errs.ErrCodeInvalidName) {
		t.Errorf("Put(bad name) = %v, want INVALID_NAME", err)
	}
	bad := node.Inputs{List: blend.List{{Weight: math.NaN(), Scale: blend.One}}}
	if _, err := s.Put(ctx, "nan", bad); !errs.Is(err, errs.ErrCodeInvalidWeight) {
		t.Errorf("Put(NaN) = %v, want INVALID_WEIGHT", err)
	}
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if s.Path() != dir {
		t.Errorf("Path() = %q, want %q", s.Path(), dir)
	}
	testStore(t, s)

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if e.Name() != "leg.json" {
			t.Errorf("unexpected file left behind: %s", e.Name())
		}
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(context.Background(), "../../etc/passwd"); !errs.Is(err, errs.ErrCodeInvalidName) {
		t.Errorf("Get = %v, want INVALID_NAME", err)
	}
	if err := s.Delete(context.Background(), ".hidden"); !errs.Is(err, errs.ErrCodeInvalidName) {
		t.Errorf("Delete = %v, want INVALID_NAME", err)
	}
}

func TestSQLiteStore(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "nodes.db")
	s, err := OpenSQL(context.Background(), DriverSQLite, dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if s.Driver() != DriverSQLite {
		t.Errorf("Driver() = %q", s.Driver())
	}
	testStore(t, s)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("SCALELIST_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SCALELIST_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	s, err := OpenSQL(ctx, DriverPostgres, dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM nodes`); err != nil {
		t.Fatal(err)
	}
	testStore(t, s)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("SCALELIST_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SCALELIST_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, uri, "scalelist_test")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.Drop(ctx); err != nil {
		t.Fatal(err)
	}
	testStore(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Dir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*FileStore); !ok {
		t.Errorf("default driver = %T, want *FileStore", s)
	}
	s.Close()

	s, err = Open(ctx, Config{Driver: DriverSQLite, DSN: "file:" + filepath.Join(t.TempDir(), "x.db")})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*SQLStore); !ok {
		t.Errorf("sqlite driver = %T, want *SQLStore", s)
	}
	s.Close()

	if _, err := Open(ctx, Config{Driver: "cassandra"}); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("Open(cassandra) = %v, want INVALID_FORMAT", err)
	}
}

func TestSnapshotJSON(t *testing.T) {
	snap := Snapshot{
		ID:     uuid.New(),
		Name:   "arm",
		Inputs: sampleInputs(),
	}
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	inputs, ok := raw["inputs"].(map[string]any)
	if !ok || inputs["normalize_weights"] != true {
		t.Errorf("inputs should use the node file shape, got %v", raw["inputs"])
	}

	var back Snapshot
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(snap, back, cmpopts.EquateEmpty()); d != "" {
		t.Errorf("round trip (-want +got):\n%s", d)
	}
}
