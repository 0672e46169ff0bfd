package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fseda/Vidly/internal/models"
)

func (s *MongoStore) ListMovies(ctx context.Context) ([]models.Movie, error) {
	return findAll[models.Movie](ctx, s.movies, bson.D{{Key: "title", Value: 1}})
}

func (s *MongoStore) GetMovie(ctx context.Context, id primitive.ObjectID) (models.Movie, error) {
	return findOne[models.Movie](ctx, s.movies, bson.M{"_id": id})
}

func (s *MongoStore) InsertMovie(ctx context.Context, m *models.Movie) error {
	oid, err := insert(ctx, s.movies, m)
	if err != nil {
		return err
	}
	m.ID = oid
	return nil
}

func (s *MongoStore) UpdateMovie(ctx context.Context, id primitive.ObjectID, m models.Movie) (models.Movie, error) {
	return updateByID[models.Movie](ctx, s.movies, id, bson.M{
		"title":           m.Title,
		"genre":           m.Genre,
		"numberInStock":   m.NumberInStock,
		"isAvailable":     m.NumberInStock > 0,
		"dailyRentalRate": m.DailyRentalRate,
	})
}

func (s *MongoStore) DeleteMovie(ctx context.Context, id primitive.ObjectID) (models.Movie, error) {
	return deleteByID[models.Movie](ctx, s.movies, id)
}

// AdjustMovieStock adds delta to the movie's stock in one atomic update and
// recomputes isAvailable from the new value. A negative delta only applies if
// enough copies remain; otherwise ErrInsufficientStock is returned and the
// document is untouched.
func (s *MongoStore) AdjustMovieStock(ctx context.Context, id primitive.ObjectID, delta int) (models.Movie, error) {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["numberInStock"] = bson.M{"$gte": -delta}
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "numberInStock", Value: bson.D{{Key: "$add", Value: bson.A{"$numberInStock", delta}}}}}}},
		{{Key: "$set", Value: bson.D{{Key: "isAvailable", Value: bson.D{{Key: "$gt", Value: bson.A{"$numberInStock", 0}}}}}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var movie models.Movie
	err := s.movies.FindOneAndUpdate(ctx, filter, update, opts).Decode(&movie)
	if err == nil {
		return movie, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return movie, fmt.Errorf("mongo adjust stock: %w", err)
	}
	found, err := exists(ctx, s.movies, id)
	if err != nil {
		return movie, err
	}
	if !found {
		return movie, ErrNotFound
	}
	return movie, ErrInsufficientStock
}
