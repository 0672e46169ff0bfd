package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fseda/Vidly/internal/models"
)

// ListCustomers returns gold customers first, then by name.
func (s *MongoStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return findAll[models.Customer](ctx, s.customers, bson.D{{Key: "isGold", Value: -1}, {Key: "name", Value: 1}})
}

func (s *MongoStore) GetCustomer(ctx context.Context, id primitive.ObjectID) (models.Customer, error) {
	return findOne[models.Customer](ctx, s.customers, bson.M{"_id": id})
}

func (s *MongoStore) InsertCustomer(ctx context.Context, c *models.Customer) error {
	oid, err := insert(ctx, s.customers, c)
	if err != nil {
		return err
	}
	c.ID = oid
	return nil
}

func (s *MongoStore) UpdateCustomer(ctx context.Context, id primitive.ObjectID, c models.Customer) (models.Customer, error) {
	return updateByID[models.Customer](ctx, s.customers, id, bson.M{
		"name":   c.Name,
		"isGold": c.IsGold,
		"phone":  c.Phone,
	})
}

func (s *MongoStore) DeleteCustomer(ctx context.Context, id primitive.ObjectID) (models.Customer, error) {
	return deleteByID[models.Customer](ctx, s.customers, id)
}
