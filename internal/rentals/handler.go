package rentals

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fseda/Vidly/internal/httpx"
	"github.com/fseda/Vidly/internal/models"
	"github.com/fseda/Vidly/internal/validation"
)

// Handler holds rental and return HTTP handlers.
type Handler struct {
	engine   *Engine
	validate *validation.Validator
	log      logrus.FieldLogger
}

func NewHandler(engine *Engine, validate *validation.Validator, log logrus.FieldLogger) *Handler {
	return &Handler{engine: engine, validate: validate, log: log}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.engine.List(r.Context())
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rentals)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rental, err := h.engine.Get(r.Context(), rentalID(r))
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rental)
}

// Create handles POST /api/rentals.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	customerID, movieID, err := h.decode(r)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	rental, err := h.engine.Create(r.Context(), customerID, movieID)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rental)
}

// Return handles POST /api/returns.
func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	customerID, movieID, err := h.decode(r)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	rental, err := h.engine.Return(r.Context(), customerID, movieID)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rental)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	rental, err := h.engine.Delete(r.Context(), rentalID(r))
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rental)
}

// Receipt serves the JSON receipt of a returned rental.
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	data, err := h.engine.Receipt(r.Context(), rentalID(r))
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.log.WithError(err).Warn("write receipt")
	}
}

func (h *Handler) decode(r *http.Request) (customerID, movieID primitive.ObjectID, err error) {
	var req models.RentalRequest
	if err := httpx.Decode(r, h.validate, &req); err != nil {
		return customerID, movieID, err
	}
	// Both ids passed the objectid validation tag.
	customerID, _ = primitive.ObjectIDFromHex(req.CustomerID)
	movieID, _ = primitive.ObjectIDFromHex(req.MovieID)
	return customerID, movieID, nil
}

func rentalID(r *http.Request) primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return id
}
