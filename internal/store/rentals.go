package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fseda/Vidly/internal/models"
)

// ListRentals returns rentals newest first.
func (s *MongoStore) ListRentals(ctx context.Context) ([]models.Rental, error) {
	return findAll[models.Rental](ctx, s.rentals, bson.D{{Key: "dateOut", Value: -1}})
}

func (s *MongoStore) GetRental(ctx context.Context, id primitive.ObjectID) (models.Rental, error) {
	return findOne[models.Rental](ctx, s.rentals, bson.M{"_id": id})
}

func (s *MongoStore) InsertRental(ctx context.Context, r *models.Rental) error {
	oid, err := insert(ctx, s.rentals, r)
	if err != nil {
		return err
	}
	r.ID = oid
	return nil
}

// FindLatestRental returns the most recently checked-out rental for the pair,
// restricted to open rentals when openOnly is set.
func (s *MongoStore) FindLatestRental(ctx context.Context, customerID, movieID primitive.ObjectID, openOnly bool) (models.Rental, error) {
	filter := bson.M{"customer._id": customerID, "movie._id": movieID}
	if openOnly {
		filter["dateReturned"] = nil
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "dateOut", Value: -1}})
	return findOne[models.Rental](ctx, s.rentals, filter, opts)
}

// MarkRentalReturned closes an open rental. Only one caller can flip
// dateReturned from null; the others get ErrStale.
func (s *MongoStore) MarkRentalReturned(ctx context.Context, id primitive.ObjectID, returnedAt time.Time, fee float64) (models.Rental, error) {
	filter := bson.M{"_id": id, "dateReturned": nil}
	update := bson.M{"$set": bson.M{"dateReturned": returnedAt, "rentalFee": fee}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var rental models.Rental
	err := s.rentals.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rental)
	if err == nil {
		return rental, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return rental, fmt.Errorf("mongo mark returned: %w", err)
	}
	found, err := exists(ctx, s.rentals, id)
	if err != nil {
		return rental, err
	}
	if !found {
		return rental, ErrNotFound
	}
	return rental, ErrStale
}

// ReopenRental clears the return fields. Used only to undo a return whose
// stock increment failed outside a transaction.
func (s *MongoStore) ReopenRental(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.rentals.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"dateReturned": nil, "rentalFee": nil}})
	if err != nil {
		return fmt.Errorf("mongo reopen rental: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteRental(ctx context.Context, id primitive.ObjectID) (models.Rental, error) {
	return deleteByID[models.Rental](ctx, s.rentals, id)
}
