package customers

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

// Store defines the interface for customer persistence.
type Store interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	GetCustomer(ctx context.Context, id primitive.ObjectID) (models.Customer, error)
	InsertCustomer(ctx context.Context, c *models.Customer) error
	UpdateCustomer(ctx context.Context, id primitive.ObjectID, c models.Customer) (models.Customer, error)
	DeleteCustomer(ctx context.Context, id primitive.ObjectID) (models.Customer, error)
}

// Handler holds customer HTTP handlers.
type Handler struct {
	store    Store
	validate *validation.Validator
	log      logrus.FieldLogger
}

func NewHandler(s Store, validate *validation.Validator, log logrus.FieldLogger) *Handler {
	return &Handler{store: s, validate: validate, log: log}
}

// List returns every customer, gold members first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.store.ListCustomers(r.Context())
	if err != nil {
		httpx.Error(w, r, h.log, apperr.Internal("failed to list customers", err))
		return
	}
	httpx.JSON(w, http.StatusOK, customers)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	customer, err := h.store.GetCustomer(r.Context(), customerID(r))
	if err != nil {
		httpx.Error(w, r, h.log, storeError(err, "failed to fetch customer"))
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CustomerRequest
	if err := httpx.Decode(r, h.validate, &req); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}

	customer := req.Customer()
	if err := h.store.InsertCustomer(r.Context(), &customer); err != nil {
		httpx.Error(w, r, h.log, apperr.Internal("failed to create customer", err))
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.CustomerRequest
	if err := httpx.Decode(r, h.validate, &req); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}

	customer, err := h.store.UpdateCustomer(r.Context(), customerID(r), req.Customer())
	if err != nil {
		httpx.Error(w, r, h.log, storeError(err, "failed to update customer"))
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	customer, err := h.store.DeleteCustomer(r.Context(), customerID(r))
	if err != nil {
		httpx.Error(w, r, h.log, storeError(err, "failed to delete customer"))
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func customerID(r *http.Request) primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return id
}

func storeError(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("The customer with the given ID was not found.")
	}
	return apperr.Internal(msg, err)
}
