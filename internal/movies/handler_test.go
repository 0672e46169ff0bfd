package movies

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fseda/Vidly/internal/models"
	"github.com/fseda/Vidly/internal/store/memstore"
	"github.com/fseda/Vidly/internal/validation"
)

// brokenStore fails every delete with a storage error.
type brokenStore struct {
	*memstore.Store
}

func (brokenStore) DeleteMovie(context.Context, primitive.ObjectID) (models.Movie, error) {
	return models.Movie{}, errors.New("connection reset")
}

func newRouter(s Store) (*chi.Mux, *logtest.Hook) {
	log, hook := logtest.NewNullLogger()
	h := NewHandler(s, validation.New(), log)
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r, hook
}

func TestDelete_DistinguishesMissingFromFailure(t *testing.T) {
	mem := memstore.New()
	id := primitive.NewObjectID().Hex()

	r, _ := newRouter(mem)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/"+id, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	r, hook := newRouter(brokenStore{mem})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/"+id, nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestCreateAndUpdate_SnapshotGenre(t *testing.T) {
	mem := memstore.New()
	ctx := context.Background()
	genre := models.Genre{Name: "Thriller"}
	require.NoError(t, mem.InsertGenre(ctx, &genre))
	r, _ := newRouter(mem)

	body := `{"title":"Heat","genreId":"` + genre.ID.Hex() + `","numberInStock":0,"dailyRentalRate":3}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"isAvailable":false`)

	movies, err := mem.ListMovies(ctx)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	movieID := movies[0].ID.Hex()

	_, err = mem.UpdateGenre(ctx, genre.ID, "Crime Thriller")
	require.NoError(t, err)
	stored, err := mem.GetMovie(ctx, movies[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Thriller", stored.Genre.Name)

	body = `{"title":"Heat","genreId":"` + genre.ID.Hex() + `","numberInStock":2,"dailyRentalRate":3}`
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/"+movieID, strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"name":"Crime Thriller"`)
	assert.Contains(t, rec.Body.String(), `"isAvailable":true`)
}

func TestCreate_RejectsBadInput(t *testing.T) {
	r, _ := newRouter(memstore.New())

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing stock", `{"title":"Heat","genreId":"5f8d0d55b54764421b7156c3","dailyRentalRate":3}`, "numberInStock"},
		{"negative stock", `{"title":"Heat","genreId":"5f8d0d55b54764421b7156c3","numberInStock":-1,"dailyRentalRate":3}`, "numberInStock"},
		{"stock too high", `{"title":"Heat","genreId":"5f8d0d55b54764421b7156c3","numberInStock":256,"dailyRentalRate":3}`, "numberInStock"},
		{"stock overflows int", `{"title":"Heat","genreId":"5f8d0d55b54764421b7156c3","numberInStock":1e20,"dailyRentalRate":3}`, "numberInStock"},
		{"rate too high", `{"title":"Heat","genreId":"5f8d0d55b54764421b7156c3","numberInStock":1,"dailyRentalRate":256}`, "dailyRentalRate"},
		{"bad genre id", `{"title":"Heat","genreId":"nope","numberInStock":1,"dailyRentalRate":3}`, "genreId"},
		{"unknown genre", `{"title":"Heat","genreId":"5f8d0d55b54764421b7156c3","numberInStock":1,"dailyRentalRate":3}`, "Invalid genre."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}
