package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/movies/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/movies/abc", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues(http.MethodGet, "/api/movies/{id}", "404")))
}

func TestRentalCounters(t *testing.T) {
	m := New()

	m.ReturnProcessed(14)
	m.Compensation("restock", false)

	assert.Equal(t, 14.0, testutil.ToFloat64(m.rentalFees))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.returnsProcessed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.compensations.WithLabelValues("restock", "failed")))
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()

	a.RentalCreated()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.rentalsCreated))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.rentalsCreated))
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RentalCreated()
		m.ReturnProcessed(3)
		m.Compensation("restock", true)
	})
}

func TestHandler_ServesRegistry(t *testing.T) {
	m := New()
	m.RentalCreated()
	rec := httptest.NewRecorder()

	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "vidly_rentals_created_total 1")
}
