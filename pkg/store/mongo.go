package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errs "github.com/matzehuels/scalelist/pkg/errors"
	"github.com/matzehuels/scalelist/pkg/node"
)

// Mongo defaults.
const (
	DefaultMongoURI        = "mongodb://localhost:27017"
	DefaultMongoDatabase   = "scalelist"
	DefaultMongoCollection = "nodes"
)

// MongoStore keeps one document per snapshot, keyed by name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type snapshotDoc struct {
	Name      string    `bson:"_id"`
	ID        string    `bson:"id"`
	Inputs    string    `bson:"inputs_json"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects to uri and uses the "nodes" collection of database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		uri = DefaultMongoURI
	}
	if database == "" {
		database = DefaultMongoDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "ping mongo")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(DefaultMongoCollection),
	}, nil
}

func (s *MongoStore) Put(ctx context.Context, name string, in node.Inputs) (*Snapshot, error) {
	if err := checkPut(name, in); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, name)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	snap := upsert(existing, name, in)
	data, err := encodeInputs(snap.Inputs)
	if err != nil {
		return nil, err
	}

	doc := snapshotDoc{
		Name:      snap.Name,
		ID:        snap.ID.String(),
		Inputs:    string(data),
		CreatedAt: snap.CreatedAt,
		UpdatedAt: snap.UpdatedAt,
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "put node %q", name)
	}
	return snap, nil
}

func (d snapshotDoc) snapshot() (*Snapshot, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "node %q has a bad id", d.Name)
	}
	in, err := decodeInputs([]byte(d.Inputs))
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		ID:        id,
		Name:      d.Name,
		Inputs:    in,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, name string) (*Snapshot, error) {
	var doc snapshotDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound(name)
		}
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "get node %q", name)
	}
	return doc.snapshot()
}

func (s *MongoStore) List(ctx context.Context) ([]Snapshot, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "list nodes")
	}
	var docs []snapshotDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "list nodes")
	}

	out := make([]Snapshot, 0, len(docs))
	for _, d := range docs {
		snap, err := d.snapshot()
		if err != nil {
			return nil, err
		}
		out = append(out, *snap)
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "delete node %q", name)
	}
	if res.DeletedCount == 0 {
		return notFound(name)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Drop removes the collection. Tests use it to start clean.
func (s *MongoStore) Drop(ctx context.Context) error {
	return s.coll.Drop(ctx)
}

var _ Store = (*MongoStore)(nil)
