package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/okian/scoreboard/internal/domain/model"
)

const (
	mongoConnectTimeout = 10 * time.Second
	defaultMongoDB      = "scoreboard"
	nameIndex           = "name_unique"
)

// MongoStore keeps one document per player in a collection with a unique
// index on name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri, pings the primary, and ensures the unique
// name index exists.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if database == "" {
		database = defaultMongoDB
	}
	cctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	coll := client.Database(database).Collection(collection)
	_, err = coll.Indexes().CreateOne(cctx, mongo.IndexModel{
		Keys:    bson.D{{Key: model.ColumnName, Value: 1}},
		Options: options.Index().SetUnique(true).SetName(nameIndex),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// Get implements Store.
func (s *MongoStore) Get(ctx context.Context, name string) (model.PlayerRecord, error) {
	var r model.PlayerRecord
	err := s.coll.FindOne(ctx, bson.M{model.ColumnName: name}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.PlayerRecord{}, ErrNotFound
	}
	if err != nil {
		return model.PlayerRecord{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return r, nil
}

// List implements Store. Documents are returned in _id (insertion) order.
func (s *MongoStore) List(ctx context.Context) ([]model.PlayerRecord, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	out := []model.PlayerRecord{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return out, nil
}

// Insert implements Store.
func (s *MongoStore) Insert(ctx context.Context, rec model.PlayerRecord) error {
	_, err := s.coll.InsertOne(ctx, rec)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// Update implements Store.
func (s *MongoStore) Update(ctx context.Context, name string, patch model.Patch) error {
	if !patch.Level.Valid() {
		return ErrBadPatch
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{model.ColumnName: name}, setDocument(patch))
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close implements Store.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func setDocument(p model.Patch) bson.M {
	return bson.M{"$set": bson.M(p.Columns())}
}
