package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shortlink/internal/domain"
	"shortlink/internal/metrics"
	"shortlink/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const backend = "mongodb"

type (
	// Store keeps one document per mapping.
	// The short code is the document _id, so MongoDB's built-in unique
	// index on _id makes Put atomic without any extra index.
	Store struct {
		coll *mongo.Collection
	}

	mappingDoc struct {
		// Short Code used as the path of the short URL. Ex: aB3xY9.
		ShortCode string `bson:"_id"`
		// The URL where the short URL redirects.
		OriginalURL string `bson:"original_url"`
		// DateTime the URL was created.
		CreatedAt time.Time `bson:"created_at"`
	}

	// StoreOpts configures Connect.
	StoreOpts struct {
		URI        string
		Database   string
		Collection string
	}
)

var _ repository.MappingStore = (*Store)(nil)

// NewStore creates a store backed by coll
func NewStore(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// Connect dials MongoDB, pings the primary and returns the client together
// with a store on the configured collection.
func Connect(ctx context.Context, o StoreOpts) (*mongo.Client, *Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(o.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}

	// Ping the primary
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping: %w", err)
	}

	coll := client.Database(o.Database).Collection(o.Collection)
	return client, NewStore(coll), nil
}

// Get returns the URL stored under shortCode
func (s *Store) Get(ctx context.Context, shortCode string) (string, error) {
	start := time.Now()

	var doc mappingDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": shortCode}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		metrics.ObserveStore(backend, "get", start, nil)
		return "", domain.ErrMappingNotFound
	}
	if err != nil {
		metrics.ObserveStore(backend, "get", start, err)
		return "", fmt.Errorf("findOne: %w", err)
	}

	metrics.ObserveStore(backend, "get", start, nil)
	return doc.OriginalURL, nil
}

// Put inserts the mapping; a duplicate _id means the code is taken
func (s *Store) Put(ctx context.Context, shortCode, originalURL string) error {
	start := time.Now()

	doc := mappingDoc{
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			metrics.ObserveStore(backend, "put", start, nil)
			return domain.ErrShortCodeExists
		}
		metrics.ObserveStore(backend, "put", start, err)
		return fmt.Errorf("insertOne: %w", err)
	}

	metrics.ObserveStore(backend, "put", start, nil)
	return nil
}
