// Package memstore is an in-process implementation of every store interface
// the handlers and the rental engine depend on. Each method is atomic on its
// own; WithTransaction does not roll back, so it reports Transactional() ==
// false and callers fall back to their compensating writes.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fseda/Vidly/internal/models"
	"github.com/fseda/Vidly/internal/store"
)

// Store holds all records in maps guarded by one mutex.
type Store struct {
	mu        sync.Mutex
	customers map[primitive.ObjectID]models.Customer
	genres    map[primitive.ObjectID]models.Genre
	movies    map[primitive.ObjectID]models.Movie
	rentals   map[primitive.ObjectID]models.Rental
	users     map[string]models.User
	receipts  map[string][]byte
}

func New() *Store {
	return &Store{
		customers: map[primitive.ObjectID]models.Customer{},
		genres:    map[primitive.ObjectID]models.Genre{},
		movies:    map[primitive.ObjectID]models.Movie{},
		rentals:   map[primitive.ObjectID]models.Rental{},
		users:     map[string]models.User{},
		receipts:  map[string][]byte{},
	}
}

func (s *Store) Transactional() bool { return false }

func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Customers

func (s *Store) ListCustomers(_ context.Context) ([]models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsGold != out[j].IsGold {
			return out[i].IsGold
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) GetCustomer(_ context.Context, id primitive.ObjectID) (models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return models.Customer{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) InsertCustomer(_ context.Context, c *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = primitive.NewObjectID()
	s.customers[c.ID] = *c
	return nil
}

func (s *Store) UpdateCustomer(_ context.Context, id primitive.ObjectID, c models.Customer) (models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[id]; !ok {
		return models.Customer{}, store.ErrNotFound
	}
	c.ID = id
	s.customers[id] = c
	return c, nil
}

func (s *Store) DeleteCustomer(_ context.Context, id primitive.ObjectID) (models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return models.Customer{}, store.ErrNotFound
	}
	delete(s.customers, id)
	return c, nil
}

// Genres

func (s *Store) ListGenres(_ context.Context) ([]models.Genre, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Genre, 0, len(s.genres))
	for _, g := range s.genres {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetGenre(_ context.Context, id primitive.ObjectID) (models.Genre, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.genres[id]
	if !ok {
		return models.Genre{}, store.ErrNotFound
	}
	return g, nil
}

func (s *Store) FindGenreByName(_ context.Context, name string) (models.Genre, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.genres {
		if g.Name == name {
			return g, nil
		}
	}
	return models.Genre{}, store.ErrNotFound
}

func (s *Store) InsertGenre(_ context.Context, g *models.Genre) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = primitive.NewObjectID()
	s.genres[g.ID] = *g
	return nil
}

func (s *Store) UpdateGenre(_ context.Context, id primitive.ObjectID, name string) (models.Genre, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.genres[id]
	if !ok {
		return models.Genre{}, store.ErrNotFound
	}
	g.Name = name
	s.genres[id] = g
	return g, nil
}

func (s *Store) DeleteGenre(_ context.Context, id primitive.ObjectID) (models.Genre, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.genres[id]
	if !ok {
		return models.Genre{}, store.ErrNotFound
	}
	delete(s.genres, id)
	return g, nil
}

// Movies

func (s *Store) ListMovies(_ context.Context) ([]models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *Store) GetMovie(_ context.Context, id primitive.ObjectID) (models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[id]
	if !ok {
		return models.Movie{}, store.ErrNotFound
	}
	return m, nil
}

func (s *Store) InsertMovie(_ context.Context, m *models.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = primitive.NewObjectID()
	s.movies[m.ID] = *m
	return nil
}

func (s *Store) UpdateMovie(_ context.Context, id primitive.ObjectID, m models.Movie) (models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.movies[id]; !ok {
		return models.Movie{}, store.ErrNotFound
	}
	m.ID = id
	m.SetStock(m.NumberInStock)
	s.movies[id] = m
	return m, nil
}

func (s *Store) DeleteMovie(_ context.Context, id primitive.ObjectID) (models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[id]
	if !ok {
		return models.Movie{}, store.ErrNotFound
	}
	delete(s.movies, id)
	return m, nil
}

func (s *Store) AdjustMovieStock(_ context.Context, id primitive.ObjectID, delta int) (models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[id]
	if !ok {
		return models.Movie{}, store.ErrNotFound
	}
	if m.NumberInStock+delta < 0 {
		return models.Movie{}, store.ErrInsufficientStock
	}
	m.SetStock(m.NumberInStock + delta)
	s.movies[id] = m
	return m, nil
}

// Rentals

func (s *Store) ListRentals(_ context.Context) ([]models.Rental, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Rental, 0, len(s.rentals))
	for _, r := range s.rentals {
		out = append(out, cloneRental(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateOut.After(out[j].DateOut) })
	return out, nil
}

func (s *Store) GetRental(_ context.Context, id primitive.ObjectID) (models.Rental, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rentals[id]
	if !ok {
		return models.Rental{}, store.ErrNotFound
	}
	return cloneRental(r), nil
}

func (s *Store) InsertRental(_ context.Context, r *models.Rental) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = primitive.NewObjectID()
	s.rentals[r.ID] = cloneRental(*r)
	return nil
}

func (s *Store) FindLatestRental(_ context.Context, customerID, movieID primitive.ObjectID, openOnly bool) (models.Rental, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.Rental
	for _, r := range s.rentals {
		if r.Customer.ID != customerID || r.Movie.ID != movieID {
			continue
		}
		if openOnly && !r.IsOpen() {
			continue
		}
		if latest == nil || r.DateOut.After(latest.DateOut) {
			r := r
			latest = &r
		}
	}
	if latest == nil {
		return models.Rental{}, store.ErrNotFound
	}
	return cloneRental(*latest), nil
}

func (s *Store) MarkRentalReturned(_ context.Context, id primitive.ObjectID, returnedAt time.Time, fee float64) (models.Rental, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rentals[id]
	if !ok {
		return models.Rental{}, store.ErrNotFound
	}
	if !r.IsOpen() {
		return models.Rental{}, store.ErrStale
	}
	r.DateReturned = &returnedAt
	r.RentalFee = &fee
	s.rentals[id] = r
	return cloneRental(r), nil
}

func (s *Store) ReopenRental(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rentals[id]
	if !ok {
		return store.ErrNotFound
	}
	r.DateReturned = nil
	r.RentalFee = nil
	s.rentals[id] = r
	return nil
}

func (s *Store) DeleteRental(_ context.Context, id primitive.ObjectID) (models.Rental, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rentals[id]
	if !ok {
		return models.Rental{}, store.ErrNotFound
	}
	delete(s.rentals, id)
	return r, nil
}

func cloneRental(r models.Rental) models.Rental {
	if r.DateReturned != nil {
		t := *r.DateReturned
		r.DateReturned = &t
	}
	if r.RentalFee != nil {
		f := *r.RentalFee
		r.RentalFee = &f
	}
	return r
}

// Users

func (s *Store) CreateUser(_ context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return models.User{}, store.ErrConflict
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (s *Store) GetUserByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

// Receipts

func (s *Store) PutReceipt(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts[key] = append([]byte(nil), data...)
	return nil
}

func (s *Store) GetReceipt(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.receipts[key]
	if !ok {
		return nil, fmt.Errorf("receipt %s: %w", key, store.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}
