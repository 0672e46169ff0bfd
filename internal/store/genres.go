package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fseda/Vidly/internal/models"
)

func (s *MongoStore) ListGenres(ctx context.Context) ([]models.Genre, error) {
	return findAll[models.Genre](ctx, s.genres, bson.D{{Key: "name", Value: 1}})
}

func (s *MongoStore) GetGenre(ctx context.Context, id primitive.ObjectID) (models.Genre, error) {
	return findOne[models.Genre](ctx, s.genres, bson.M{"_id": id})
}

// FindGenreByName returns ErrNotFound when no genre carries the name.
func (s *MongoStore) FindGenreByName(ctx context.Context, name string) (models.Genre, error) {
	return findOne[models.Genre](ctx, s.genres, bson.M{"name": name})
}

func (s *MongoStore) InsertGenre(ctx context.Context, g *models.Genre) error {
	oid, err := insert(ctx, s.genres, g)
	if err != nil {
		return err
	}
	g.ID = oid
	return nil
}

func (s *MongoStore) UpdateGenre(ctx context.Context, id primitive.ObjectID, name string) (models.Genre, error) {
	return updateByID[models.Genre](ctx, s.genres, id, bson.M{"name": name})
}

func (s *MongoStore) DeleteGenre(ctx context.Context, id primitive.ObjectID) (models.Genre, error) {
	return deleteByID[models.Genre](ctx, s.genres, id)
}
