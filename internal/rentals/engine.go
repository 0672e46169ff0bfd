// Package rentals checks movies out to customers and takes them back,
// keeping each movie's stock in step with its open rentals.
package rentals

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fseda/Vidly/internal/apperr"
	"github.com/fseda/Vidly/internal/metrics"
	"github.com/fseda/Vidly/internal/models"
	"github.com/fseda/Vidly/internal/store"
)

// Store is the persistence the engine needs. When Transactional reports
// false, WithTransaction gives no rollback and the engine undoes partial
// writes itself.
type Store interface {
	Transactional() bool
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	GetCustomer(ctx context.Context, id primitive.ObjectID) (models.Customer, error)
	GetMovie(ctx context.Context, id primitive.ObjectID) (models.Movie, error)
	AdjustMovieStock(ctx context.Context, id primitive.ObjectID, delta int) (models.Movie, error)

	ListRentals(ctx context.Context) ([]models.Rental, error)
	GetRental(ctx context.Context, id primitive.ObjectID) (models.Rental, error)
	InsertRental(ctx context.Context, r *models.Rental) error
	FindLatestRental(ctx context.Context, customerID, movieID primitive.ObjectID, openOnly bool) (models.Rental, error)
	MarkRentalReturned(ctx context.Context, id primitive.ObjectID, returnedAt time.Time, fee float64) (models.Rental, error)
	ReopenRental(ctx context.Context, id primitive.ObjectID) error
	DeleteRental(ctx context.Context, id primitive.ObjectID) (models.Rental, error)
}

// ReceiptStore keeps the receipt written when a rental is returned.
type ReceiptStore interface {
	PutReceipt(ctx context.Context, key string, data []byte) error
	GetReceipt(ctx context.Context, key string) ([]byte, error)
}

var (
	errInvalidCustomer  = apperr.InvalidReference("Invalid customer.")
	errInvalidMovie     = apperr.InvalidReference("Invalid movie.")
	errOutOfStock       = apperr.OutOfStock("Movie not in stock.")
	errRentalNotFound   = apperr.NotFound("Rental not found.")
	errAlreadyProcessed = apperr.AlreadyProcessed("Return already processed.")
	errReceiptNotFound  = apperr.NotFound("Receipt not found.")
)

// Engine runs the rental and return workflows.
type Engine struct {
	store    Store
	receipts ReceiptStore
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithReceipts enables receipt upload on return.
func WithReceipts(rs ReceiptStore) Option {
	return func(e *Engine) { e.receipts = rs }
}

// WithMetrics records checkouts, returns and compensations on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func NewEngine(s Store, log logrus.FieldLogger, opts ...Option) *Engine {
	e := &Engine{store: s, log: log, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RentalFee charges the daily rate for every started day, at least one.
func RentalFee(dateOut, returnedAt time.Time, dailyRate float64) float64 {
	days := math.Ceil(returnedAt.Sub(dateOut).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return days * dailyRate
}

// timestamp returns the current time at the precision the record store keeps.
func (e *Engine) timestamp() time.Time {
	return e.now().UTC().Truncate(time.Millisecond)
}

// Create checks a movie out to a customer. The stock decrement is
// conditional, so two requests racing for the last copy cannot both succeed.
func (e *Engine) Create(ctx context.Context, customerID, movieID primitive.ObjectID) (models.Rental, error) {
	customer, err := e.store.GetCustomer(ctx, customerID)
	if err != nil {
		return models.Rental{}, referenceError(err, errInvalidCustomer, "failed to fetch customer")
	}
	movie, err := e.store.GetMovie(ctx, movieID)
	if err != nil {
		return models.Rental{}, referenceError(err, errInvalidMovie, "failed to fetch movie")
	}
	if movie.NumberInStock <= 0 {
		return models.Rental{}, errOutOfStock
	}

	var rental models.Rental
	err = e.store.WithTransaction(ctx, func(ctx context.Context) error {
		rental = models.NewRental(customer, movie, e.timestamp())
		if _, err := e.store.AdjustMovieStock(ctx, movie.ID, -1); err != nil {
			return err
		}
		if err := e.store.InsertRental(ctx, &rental); err != nil {
			if !e.store.Transactional() {
				e.compensate(ctx, "create", logrus.Fields{"customer_id": customerID.Hex(), "movie_id": movieID.Hex()},
					func(ctx context.Context) error {
						_, err := e.store.AdjustMovieStock(ctx, movie.ID, 1)
						return err
					})
			}
			return err
		}
		return nil
	})
	switch {
	case errors.Is(err, store.ErrInsufficientStock):
		return models.Rental{}, errOutOfStock
	case errors.Is(err, store.ErrNotFound):
		return models.Rental{}, errInvalidMovie
	case err != nil:
		return models.Rental{}, apperr.Internal("failed to create rental", err)
	}

	e.metrics.RentalCreated()
	e.log.WithFields(logrus.Fields{
		"rental_id":   rental.ID.Hex(),
		"customer_id": customerID.Hex(),
		"movie_id":    movieID.Hex(),
	}).Info("rental created")
	return rental, nil
}

// Return closes the most recent open rental for the pair, charges the fee
// from the rate captured at checkout and puts the copy back in stock.
func (e *Engine) Return(ctx context.Context, customerID, movieID primitive.ObjectID) (models.Rental, error) {
	open, err := e.store.FindLatestRental(ctx, customerID, movieID, true)
	if errors.Is(err, store.ErrNotFound) {
		return models.Rental{}, e.missingOpenRental(ctx, customerID, movieID)
	}
	if err != nil {
		return models.Rental{}, apperr.Internal("failed to look up rental", err)
	}

	returnedAt := e.timestamp()
	fee := RentalFee(open.DateOut, returnedAt, open.Movie.DailyRentalRate)
	fields := logrus.Fields{"rental_id": open.ID.Hex(), "movie_id": movieID.Hex()}

	var returned models.Rental
	err = e.store.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		returned, err = e.store.MarkRentalReturned(ctx, open.ID, returnedAt, fee)
		if err != nil {
			return err
		}
		_, err = e.store.AdjustMovieStock(ctx, movieID, 1)
		if errors.Is(err, store.ErrNotFound) {
			e.log.WithFields(fields).Warn("returned movie no longer exists, stock not restored")
			return nil
		}
		if err != nil && !e.store.Transactional() {
			e.compensate(ctx, "return", fields, func(ctx context.Context) error {
				return e.store.ReopenRental(ctx, open.ID)
			})
		}
		return err
	})
	switch {
	case errors.Is(err, store.ErrStale):
		return models.Rental{}, errAlreadyProcessed
	case errors.Is(err, store.ErrNotFound):
		return models.Rental{}, errRentalNotFound
	case err != nil:
		return models.Rental{}, apperr.Internal("failed to process return", err)
	}

	e.metrics.ReturnProcessed(fee)
	e.log.WithFields(fields).WithField("fee", fee).Info("rental returned")
	e.putReceipt(ctx, returned)
	return returned, nil
}

func (e *Engine) missingOpenRental(ctx context.Context, customerID, movieID primitive.ObjectID) error {
	_, err := e.store.FindLatestRental(ctx, customerID, movieID, false)
	switch {
	case err == nil:
		return errAlreadyProcessed
	case errors.Is(err, store.ErrNotFound):
		return errRentalNotFound
	}
	return apperr.Internal("failed to look up rental", err)
}

// List returns all rentals, newest first.
func (e *Engine) List(ctx context.Context) ([]models.Rental, error) {
	rentals, err := e.store.ListRentals(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list rentals", err)
	}
	return rentals, nil
}

func (e *Engine) Get(ctx context.Context, id primitive.ObjectID) (models.Rental, error) {
	rental, err := e.store.GetRental(ctx, id)
	if err != nil {
		return models.Rental{}, referenceError(err, errRentalNotFound, "failed to fetch rental")
	}
	return rental, nil
}

// Delete removes a rental. An open rental's copy goes back into stock first.
func (e *Engine) Delete(ctx context.Context, id primitive.ObjectID) (models.Rental, error) {
	var deleted models.Rental
	err := e.store.WithTransaction(ctx, func(ctx context.Context) error {
		rental, err := e.store.GetRental(ctx, id)
		if err != nil {
			return err
		}
		restocked := false
		if rental.IsOpen() {
			_, err := e.store.AdjustMovieStock(ctx, rental.Movie.ID, 1)
			switch {
			case err == nil:
				restocked = true
			case errors.Is(err, store.ErrNotFound):
				e.log.WithField("rental_id", id.Hex()).Warn("rented movie no longer exists, stock not restored")
			default:
				return err
			}
		}
		deleted, err = e.store.DeleteRental(ctx, id)
		if err != nil && restocked && !e.store.Transactional() {
			e.compensate(ctx, "delete", logrus.Fields{"rental_id": id.Hex()}, func(ctx context.Context) error {
				_, err := e.store.AdjustMovieStock(ctx, rental.Movie.ID, -1)
				return err
			})
		}
		return err
	})
	if err != nil {
		return models.Rental{}, referenceError(err, errRentalNotFound, "failed to delete rental")
	}
	return deleted, nil
}

// Receipt returns the stored receipt of a returned rental.
func (e *Engine) Receipt(ctx context.Context, id primitive.ObjectID) ([]byte, error) {
	if e.receipts == nil {
		return nil, errReceiptNotFound
	}
	rental, err := e.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rental.IsOpen() {
		return nil, errReceiptNotFound
	}
	data, err := e.receipts.GetReceipt(ctx, receiptKey(id))
	if err != nil {
		return nil, referenceError(err, errReceiptNotFound, "failed to fetch receipt")
	}
	return data, nil
}

// compensate undoes a committed write after a later step failed. It runs
// even if the request was cancelled.
func (e *Engine) compensate(ctx context.Context, op string, fields logrus.Fields, undo func(context.Context) error) {
	err := undo(context.WithoutCancel(ctx))
	e.metrics.Compensation(op, err == nil)
	if err != nil {
		e.log.WithFields(fields).WithError(err).WithField("operation", op).Error("compensation failed, stock may be inconsistent")
		return
	}
	e.log.WithFields(fields).WithField("operation", op).Warn("partial write compensated")
}

func (e *Engine) putReceipt(ctx context.Context, rental models.Rental) {
	if e.receipts == nil {
		return
	}
	data, err := json.Marshal(newReceipt(rental))
	if err == nil {
		err = e.receipts.PutReceipt(ctx, receiptKey(rental.ID), data)
	}
	if err != nil {
		e.log.WithError(err).WithField("rental_id", rental.ID.Hex()).Warn("store receipt")
	}
}

func referenceError(err error, notFound *apperr.Error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound
	}
	return apperr.Internal(msg, err)
}
