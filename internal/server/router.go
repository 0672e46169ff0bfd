// Package server wires every handler into one chi router.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/fseda/Vidly/internal/auth"
	"github.com/fseda/Vidly/internal/customers"
	"github.com/fseda/Vidly/internal/genres"
	"github.com/fseda/Vidly/internal/httpx"
	"github.com/fseda/Vidly/internal/logging"
	"github.com/fseda/Vidly/internal/metrics"
	"github.com/fseda/Vidly/internal/middleware"
	"github.com/fseda/Vidly/internal/movies"
	"github.com/fseda/Vidly/internal/rentals"
	"github.com/fseda/Vidly/internal/validation"
)

// Store is the document store behind every resource handler.
type Store interface {
	customers.Store
	genres.Store
	movies.Store
	rentals.Store
}

// Deps are the collaborators the router is built from.
type Deps struct {
	Store         Store
	Users         auth.UserStore
	Throttle      auth.Throttle
	Receipts      rentals.ReceiptStore
	Tokens        *auth.TokenManager
	Log           logrus.FieldLogger
	Metrics       *metrics.Metrics
	CORSOrigins   []string
	EngineOptions []rentals.Option
}

// New builds the HTTP handler for the whole API.
func New(d Deps) http.Handler {
	validate := validation.New()
	log := d.Log
	m := d.Metrics
	if m == nil {
		m = metrics.New()
	}

	engineOpts := append([]rentals.Option{rentals.WithMetrics(m)}, d.EngineOptions...)
	if d.Receipts != nil {
		engineOpts = append([]rentals.Option{rentals.WithReceipts(d.Receipts)}, engineOpts...)
	}
	engine := rentals.NewEngine(d.Store, log, engineOpts...)

	authHandler := auth.NewHandler(d.Users, d.Tokens, d.Throttle, validate, log)
	genreHandler := genres.NewHandler(d.Store, validate, log)
	customerHandler := customers.NewHandler(d.Store, validate, log)
	movieHandler := movies.NewHandler(d.Store, validate, log)
	rentalHandler := rentals.NewHandler(engine, validate, log)

	authenticated := middleware.RequireAuth(d.Tokens, log)
	admin := middleware.RequireAdmin(log)
	validID := middleware.ValidObjectID("id", log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.Requests(log))
	r.Use(chimw.Recoverer)
	r.Use(m.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", auth.TokenHeader},
		ExposedHeaders: []string{auth.TokenHeader},
		MaxAge:         300,
	}))

	started := time.Now()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"uptime": time.Since(started).Round(time.Second).String(),
		})
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api/users", func(r chi.Router) {
		r.With(middleware.OptionalAuth(d.Tokens)).Post("/", authHandler.Register)
		r.With(authenticated).Get("/me", authHandler.Me)
	})
	r.Post("/api/auth", authHandler.Login)

	r.Route("/api/genres", func(r chi.Router) {
		r.Get("/", genreHandler.List)
		r.With(authenticated).Post("/", genreHandler.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(validID)
			r.Get("/", genreHandler.Get)
			r.With(authenticated).Put("/", genreHandler.Update)
			r.With(authenticated, admin).Delete("/", genreHandler.Delete)
		})
	})

	r.Route("/api/customers", func(r chi.Router) {
		r.Get("/", customerHandler.List)
		r.With(authenticated).Post("/", customerHandler.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(validID)
			r.Get("/", customerHandler.Get)
			r.With(authenticated).Put("/", customerHandler.Update)
			r.With(authenticated).Delete("/", customerHandler.Delete)
		})
	})

	r.Route("/api/movies", func(r chi.Router) {
		r.Get("/", movieHandler.List)
		r.With(authenticated, admin).Post("/", movieHandler.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(validID)
			r.Get("/", movieHandler.Get)
			r.With(authenticated, admin).Put("/", movieHandler.Update)
			r.With(authenticated, admin).Delete("/", movieHandler.Delete)
		})
	})

	r.Route("/api/rentals", func(r chi.Router) {
		r.Use(authenticated)
		r.Get("/", rentalHandler.List)
		r.Post("/", rentalHandler.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(validID)
			r.Get("/", rentalHandler.Get)
			r.Get("/receipt", rentalHandler.Receipt)
			r.With(admin).Delete("/", rentalHandler.Delete)
		})
	})

	r.With(authenticated).Post("/api/returns", rentalHandler.Return)

	return r
}
