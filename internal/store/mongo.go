package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	customersCollection = "customers"
	genresCollection    = "genres"
	moviesCollection    = "movies"
	rentalsCollection   = "rentals"
)

// MongoStore handles customers, genres, movies and rentals in MongoDB.
type MongoStore struct {
	client        *mongo.Client
	customers     *mongo.Collection
	genres        *mongo.Collection
	movies        *mongo.Collection
	rentals       *mongo.Collection
	transactional bool
}

// NewMongoStore binds the store to a database. transactional must only be
// true when the deployment supports multi-document transactions (replica
// set or sharded cluster).
func NewMongoStore(client *mongo.Client, dbName string, transactional bool) *MongoStore {
	db := client.Database(dbName)
	return &MongoStore{
		client:        client,
		customers:     db.Collection(customersCollection),
		genres:        db.Collection(genresCollection),
		movies:        db.Collection(moviesCollection),
		rentals:       db.Collection(rentalsCollection),
		transactional: transactional,
	}
}

// EnsureIndexes creates the indexes the queries rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.rentals.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "customer._id", Value: 1}, {Key: "movie._id", Value: 1}, {Key: "dateOut", Value: -1}}},
		{Keys: bson.D{{Key: "dateOut", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("rentals indexes: %w", err)
	}
	// Genre names are unique by convention only; the index just serves lookups.
	if _, err := s.genres.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}}); err != nil {
		return fmt.Errorf("genres indexes: %w", err)
	}
	return nil
}

// Transactional reports whether WithTransaction gives all-or-nothing semantics.
func (s *MongoStore) Transactional() bool {
	return s.transactional
}

// WithTransaction runs fn inside a multi-document transaction. The driver
// retries fn on transient errors, so fn must be safe to re-run. When
// transactions are disabled fn runs directly and each write commits alone.
func (s *MongoStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.transactional {
		return fn(ctx)
	}
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("mongo start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func findAll[T any](ctx context.Context, col *mongo.Collection, sort bson.D) ([]T, error) {
	cur, err := col.Find(ctx, bson.M{}, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("mongo find %s: %w", col.Name(), err)
	}
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo decode %s: %w", col.Name(), err)
	}
	return out, nil
}

func findOne[T any](ctx context.Context, col *mongo.Collection, filter any, opts ...*options.FindOneOptions) (T, error) {
	var doc T
	if err := col.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		return doc, notFound(col, err)
	}
	return doc, nil
}

func updateByID[T any](ctx context.Context, col *mongo.Collection, id primitive.ObjectID, set bson.M) (T, error) {
	var doc T
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return doc, notFound(col, err)
	}
	return doc, nil
}

func deleteByID[T any](ctx context.Context, col *mongo.Collection, id primitive.ObjectID) (T, error) {
	var doc T
	if err := col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return doc, notFound(col, err)
	}
	return doc, nil
}

func insert(ctx context.Context, col *mongo.Collection, doc any) (primitive.ObjectID, error) {
	res, err := col.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("mongo insert %s: %w", col.Name(), err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("mongo insert %s: unexpected id type %T", col.Name(), res.InsertedID)
	}
	return oid, nil
}

// exists distinguishes "no such record" from "condition not met" after a
// conditional update matched nothing.
func exists(ctx context.Context, col *mongo.Collection, id primitive.ObjectID) (bool, error) {
	n, err := col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("mongo count %s: %w", col.Name(), err)
	}
	return n > 0, nil
}

func notFound(col *mongo.Collection, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return fmt.Errorf("mongo %s: %w", col.Name(), err)
}
