// Package store provides optional MongoDB-backed persistence of exported
// tree-sequence tables, for offline inspection of past simulation runs.
// This is strictly a side sink: a Store is never consulted by the
// simplification engine, and a write failure here must never fail a
// simulation run — the in-memory tables remain the source of truth.
package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/foretime/ancestry/pkg/ancestry/tables"
	"github.com/foretime/ancestry/pkg/errors"
)

// Snapshot is one persisted run's exported tables, with enough metadata to
// locate it again later.
type Snapshot struct {
	RunID      string           `bson:"run_id"`
	Generation int64            `bson:"generation"`
	RecordedAt time.Time        `bson:"recorded_at"`
	NodeCount  int              `bson:"node_count"`
	EdgeCount  int              `bson:"edge_count"`
	Nodes      []tables.NodeRow `bson:"nodes"`
	Edges      []tables.EdgeRow `bson:"edges"`
}

// Store writes exported tables to a MongoDB collection.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Connect dials MongoDB at uri and opens database/collection for writes.
// The caller owns the returned Store's lifetime and must call Close.
func Connect(ctx context.Context, uri, database, collection string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connecting to mongodb at %s", uri)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "pinging mongodb at %s", uri)
	}
	return &Store{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Put persists one run's snapshot. recordedAt is passed in rather than
// taken internally so callers can stamp deterministic timestamps in tests.
func (s *Store) Put(ctx context.Context, runID string, generation int64, t *tables.Tables, recordedAt time.Time) error {
	doc := Snapshot{
		RunID:      runID,
		Generation: generation,
		RecordedAt: recordedAt,
		NodeCount:  len(t.Nodes),
		EdgeCount:  len(t.Edges),
		Nodes:      t.Nodes,
		Edges:      t.Edges,
	}
	_, err := s.collection.InsertOne(ctx, doc)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "inserting snapshot for run %s", runID)
	}
	return nil
}

// Get retrieves the most recently recorded snapshot for runID, if any.
func (s *Store) Get(ctx context.Context, runID string) (*Snapshot, bool, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "recorded_at", Value: -1}})
	var doc Snapshot
	err := s.collection.FindOne(ctx, bson.D{{Key: "run_id", Value: runID}}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "fetching snapshot for run %s", runID)
	}
	return &doc, true, nil
}

// Close disconnects the underlying MongoDB client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
