package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fseda/Vidly/internal/models"
)

// newTestMongoStore connects to MONGO_URI when RUN_MONGO_INTEGRATION=true and
// gives each test its own database.
func newTestMongoStore(t *testing.T) *MongoStore {
	t.Helper()
	if os.Getenv("RUN_MONGO_INTEGRATION") != "true" {
		t.Skip("set RUN_MONGO_INTEGRATION=true to run against MongoDB")
	}
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017/?replicaSet=rs0"
	}
	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	dbName := "vidly_test_" + uuid.NewString()[:8]
	t.Cleanup(func() {
		_ = client.Database(dbName).Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	s := NewMongoStore(client, dbName, os.Getenv("MONGO_TRANSACTIONS") != "false")
	require.NoError(t, s.EnsureIndexes(ctx))
	return s
}

func TestMongo_AdjustMovieStock(t *testing.T) {
	s := newTestMongoStore(t)
	ctx := context.Background()

	movie := models.Movie{Title: "Heat", Genre: models.Genre{ID: primitive.NewObjectID(), Name: "Crime"}, DailyRentalRate: 2}
	movie.SetStock(1)
	require.NoError(t, s.InsertMovie(ctx, &movie))

	m, err := s.AdjustMovieStock(ctx, movie.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, m.NumberInStock)
	assert.False(t, m.IsAvailable)

	_, err = s.AdjustMovieStock(ctx, movie.ID, -1)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	m, err = s.AdjustMovieStock(ctx, movie.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, m.NumberInStock)
	assert.True(t, m.IsAvailable)

	_, err = s.AdjustMovieStock(ctx, primitive.NewObjectID(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongo_RentalLifecycle(t *testing.T) {
	s := newTestMongoStore(t)
	ctx := context.Background()
	customer := models.Customer{ID: primitive.NewObjectID(), Name: "Ada", Phone: "12345"}
	movie := models.Movie{ID: primitive.NewObjectID(), Title: "Heat", DailyRentalRate: 2}
	out := time.Now().UTC().Truncate(time.Millisecond)

	older := models.NewRental(customer, movie, out.Add(-time.Hour))
	require.NoError(t, s.InsertRental(ctx, &older))
	newer := models.NewRental(customer, movie, out)
	require.NoError(t, s.InsertRental(ctx, &newer))

	latest, err := s.FindLatestRental(ctx, customer.ID, movie.ID, true)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)
	assert.True(t, latest.IsOpen())

	returned, err := s.MarkRentalReturned(ctx, newer.ID, out.Add(time.Hour), 2)
	require.NoError(t, err)
	require.NotNil(t, returned.RentalFee)
	assert.Equal(t, 2.0, *returned.RentalFee)

	_, err = s.MarkRentalReturned(ctx, newer.ID, out.Add(time.Hour), 2)
	assert.ErrorIs(t, err, ErrStale)

	latest, err = s.FindLatestRental(ctx, customer.ID, movie.ID, true)
	require.NoError(t, err)
	assert.Equal(t, older.ID, latest.ID)

	require.NoError(t, s.ReopenRental(ctx, newer.ID))
	reopened, err := s.GetRental(ctx, newer.ID)
	require.NoError(t, err)
	assert.True(t, reopened.IsOpen())
	assert.Nil(t, reopened.RentalFee)

	_, err = s.DeleteRental(ctx, older.ID)
	require.NoError(t, err)
	_, err = s.GetRental(ctx, older.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongo_CustomersSortedGoldFirst(t *testing.T) {
	s := newTestMongoStore(t)
	ctx := context.Background()

	for _, c := range []models.Customer{
		{Name: "Zed", Phone: "12345"},
		{Name: "Bob", Phone: "12345", IsGold: true},
		{Name: "Ada", Phone: "12345"},
	} {
		c := c
		require.NoError(t, s.InsertCustomer(ctx, &c))
	}

	list, err := s.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Bob", "Ada", "Zed"}, []string{list[0].Name, list[1].Name, list[2].Name})

	_, err = s.UpdateCustomer(ctx, primitive.NewObjectID(), models.Customer{Name: "Nobody"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongo_TransactionRollsBack(t *testing.T) {
	s := newTestMongoStore(t)
	if !s.Transactional() {
		t.Skip("transactions disabled")
	}
	ctx := context.Background()
	movie := models.Movie{Title: "Heat"}
	movie.SetStock(2)
	require.NoError(t, s.InsertMovie(ctx, &movie))

	err := s.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.AdjustMovieStock(ctx, movie.ID, -1); err != nil {
			return err
		}
		return ErrConflict
	})
	assert.ErrorIs(t, err, ErrConflict)

	m, err := s.GetMovie(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumberInStock)
}
