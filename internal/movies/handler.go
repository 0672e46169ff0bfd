package movies

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fseda/Vidly/internal/apperr"
	"github.com/fseda/Vidly/internal/httpx"
	"github.com/fseda/Vidly/internal/models"
	"github.com/fseda/Vidly/internal/store"
	"github.com/fseda/Vidly/internal/validation"
)

// Store defines the interface for movie persistence. Genres are read to
// snapshot them into the movie.
type Store interface {
	ListMovies(ctx context.Context) ([]models.Movie, error)
	GetMovie(ctx context.Context, id primitive.ObjectID) (models.Movie, error)
	InsertMovie(ctx context.Context, m *models.Movie) error
	UpdateMovie(ctx context.Context, id primitive.ObjectID, m models.Movie) (models.Movie, error)
	DeleteMovie(ctx context.Context, id primitive.ObjectID) (models.Movie, error)
	GetGenre(ctx context.Context, id primitive.ObjectID) (models.Genre, error)
}

// Handler holds movie HTTP handlers.
type Handler struct {
	store    Store
	validate *validation.Validator
	log      logrus.FieldLogger
}

func NewHandler(s Store, validate *validation.Validator, log logrus.FieldLogger) *Handler {
	return &Handler{store: s, validate: validate, log: log}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	movies, err := h.store.ListMovies(r.Context())
	if err != nil {
		httpx.Error(w, r, h.log, apperr.Internal("failed to list movies", err))
		return
	}
	httpx.JSON(w, http.StatusOK, movies)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	movie, err := h.store.GetMovie(r.Context(), movieID(r))
	if err != nil {
		httpx.Error(w, r, h.log, storeError(err, "failed to fetch movie"))
		return
	}
	httpx.JSON(w, http.StatusOK, movie)
}

// Create stores a movie with a snapshot of its genre.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	movie, err := h.decode(r)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}

	if err := h.store.InsertMovie(r.Context(), &movie); err != nil {
		httpx.Error(w, r, h.log, apperr.Internal("failed to create movie", err))
		return
	}
	httpx.JSON(w, http.StatusOK, movie)
}

// Update replaces a movie, taking a fresh genre snapshot.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	movie, err := h.decode(r)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}

	movie, err = h.store.UpdateMovie(r.Context(), movieID(r), movie)
	if err != nil {
		httpx.Error(w, r, h.log, storeError(err, "failed to update movie"))
		return
	}
	httpx.JSON(w, http.StatusOK, movie)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	movie, err := h.store.DeleteMovie(r.Context(), movieID(r))
	if err != nil {
		httpx.Error(w, r, h.log, storeError(err, "failed to delete movie"))
		return
	}
	httpx.JSON(w, http.StatusOK, movie)
}

func (h *Handler) decode(r *http.Request) (models.Movie, error) {
	var req models.MovieRequest
	if err := httpx.Decode(r, h.validate, &req); err != nil {
		return models.Movie{}, err
	}

	genreID, _ := primitive.ObjectIDFromHex(req.GenreID)
	genre, err := h.store.GetGenre(r.Context(), genreID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Movie{}, apperr.InvalidReference("Invalid genre.")
	}
	if err != nil {
		return models.Movie{}, apperr.Internal("failed to fetch genre", err)
	}
	return req.Movie(genre), nil
}

func movieID(r *http.Request) primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return id
}

func storeError(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("The movie with the given ID was not found.")
	}
	return apperr.Internal(msg, err)
}
