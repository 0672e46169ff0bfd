package genres

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

// Store defines the interface for genre persistence.
type Store interface {
	ListGenres(ctx context.Context) ([]models.Genre, error)
	GetGenre(ctx context.Context, id primitive.ObjectID) (models.Genre, error)
	FindGenreByName(ctx context.Context, name string) (models.Genre, error)
	InsertGenre(ctx context.Context, g *models.Genre) error
	UpdateGenre(ctx context.Context, id primitive.ObjectID, name string) (models.Genre, error)
	DeleteGenre(ctx context.Context, id primitive.ObjectID) (models.Genre, error)
}

var errNotFound = apperr.NotFound("The genre with the given ID was not found.")

// Handler holds genre HTTP handlers.
type Handler struct {
	store    Store
	validate *validation.Validator
	log      logrus.FieldLogger
}

func NewHandler(s Store, validate *validation.Validator, log logrus.FieldLogger) *Handler {
	return &Handler{store: s, validate: validate, log: log}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	genres, err := h.store.ListGenres(r.Context())
	if err != nil {
		httpx.Error(w, r, h.log, apperr.Internal("failed to list genres", err))
		return
	}
	httpx.JSON(w, http.StatusOK, genres)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	genre, err := h.store.GetGenre(r.Context(), objectID(r))
	if err != nil {
		httpx.Error(w, r, h.log, storeError(err, "failed to fetch genre"))
		return
	}
	httpx.JSON(w, http.StatusOK, genre)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.GenreRequest
	if err := httpx.Decode(r, h.validate, &req); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	if err := h.ensureUnique(r.Context(), req.Name, primitive.NilObjectID); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}

	genre := models.Genre{Name: req.Name}
	if err := h.store.InsertGenre(r.Context(), &genre); err != nil {
		httpx.Error(w, r, h.log, storeError(err, "failed to create genre"))
		return
	}
	httpx.JSON(w, http.StatusOK, genre)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.GenreRequest
	if err := httpx.Decode(r, h.validate, &req); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	id := objectID(r)
	if err := h.ensureUnique(r.Context(), req.Name, id); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}

	genre, err := h.store.UpdateGenre(r.Context(), id, req.Name)
	if err != nil {
		httpx.Error(w, r, h.log, storeError(err, "failed to update genre"))
		return
	}
	httpx.JSON(w, http.StatusOK, genre)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	genre, err := h.store.DeleteGenre(r.Context(), objectID(r))
	if err != nil {
		httpx.Error(w, r, h.log, storeError(err, "failed to delete genre"))
		return
	}
	httpx.JSON(w, http.StatusOK, genre)
}

// ensureUnique rejects a name already used by a genre other than self.
func (h *Handler) ensureUnique(ctx context.Context, name string, self primitive.ObjectID) error {
	existing, err := h.store.FindGenreByName(ctx, name)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil
	case err != nil:
		return apperr.Internal("failed to look up genre", err)
	case existing.ID != self:
		return apperr.Conflict("Genre already exists.")
	}
	return nil
}

func objectID(r *http.Request) primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return id
}

func storeError(err error, msg string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return errNotFound
	case errors.Is(err, store.ErrConflict):
		return apperr.Conflict("Genre already exists.")
	}
	return apperr.Internal(msg, err)
}
