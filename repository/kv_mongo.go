package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoKVCollection = "kv_store"

type mongoKVDocument struct {
	Key   string `bson:"_id"`
	Value []byte `bson:"value"`
}

// MongoKVStore stores one document per key in the kv_store collection
type MongoKVStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Ensure MongoKVStore implements KVStore
var _ KVStore = (*MongoKVStore)(nil)

// NewMongoKVStore connects to MongoDB and verifies the connection
func NewMongoKVStore(ctx context.Context, uri, database string) (*MongoKVStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return &MongoKVStore{
		client:     client,
		collection: client.Database(database).Collection(mongoKVCollection),
	}, nil
}

// Get reads a value by key
func (s *MongoKVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc mongoKVDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return doc.Value, true, nil
}

// Set upserts a value
func (s *MongoKVStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.collection.ReplaceOne(ctx,
		bson.M{"_id": key},
		mongoKVDocument{Key: key, Value: value},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Delete removes a key
func (s *MongoKVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Close disconnects the client
func (s *MongoKVStore) Close() error {
	return s.client.Disconnect(context.Background())
}
