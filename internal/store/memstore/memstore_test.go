package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fseda/Vidly/internal/models"
	"github.com/fseda/Vidly/internal/store"
)

func TestAdjustMovieStock(t *testing.T) {
	s := New()
	ctx := context.Background()
	movie := models.Movie{Title: "Heat"}
	movie.SetStock(1)
	require.NoError(t, s.InsertMovie(ctx, &movie))

	m, err := s.AdjustMovieStock(ctx, movie.ID, -1)
	require.NoError(t, err)
	assert.False(t, m.IsAvailable)

	_, err = s.AdjustMovieStock(ctx, movie.ID, -1)
	assert.ErrorIs(t, err, store.ErrInsufficientStock)

	_, err = s.AdjustMovieStock(ctx, primitive.NewObjectID(), 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRentalsAreCopied(t *testing.T) {
	s := New()
	ctx := context.Background()
	r := models.Rental{DateOut: time.Now()}
	require.NoError(t, s.InsertRental(ctx, &r))

	returned, err := s.MarkRentalReturned(ctx, r.ID, time.Now(), 4)
	require.NoError(t, err)
	*returned.RentalFee = 99

	stored, err := s.GetRental(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, *stored.RentalFee)

	_, err = s.MarkRentalReturned(ctx, r.ID, time.Now(), 4)
	assert.ErrorIs(t, err, store.ErrStale)
}

func TestUsers(t *testing.T) {
	s := New()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, models.User{Email: "ada@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	_, err = s.CreateUser(ctx, models.User{Email: "ada@example.com"})
	assert.ErrorIs(t, err, store.ErrConflict)
	_, err = s.CreateUser(ctx, models.User{Email: "Ada@Example.com"})
	assert.ErrorIs(t, err, store.ErrConflict)

	found, err := s.GetUserByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = s.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReceipts(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.GetReceipt(ctx, "receipts/x.json")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.PutReceipt(ctx, "receipts/x.json", []byte("{}")))
	data, err := s.GetReceipt(ctx, "receipts/x.json")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
