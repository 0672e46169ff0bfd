package httpx_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fseda/Vidly/internal/apperr"
	"github.com/fseda/Vidly/internal/httpx"
	"github.com/fseda/Vidly/internal/models"
	"github.com/fseda/Vidly/internal/validation"
)

func decodeCustomer(t *testing.T, body string) (models.CustomerRequest, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(body))
	var out models.CustomerRequest
	err := httpx.Decode(req, validation.New(), &out)
	return out, err
}

func TestDecode_StrictBoolean(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		want    bool
	}{
		{"true", `{"name":"Ada","phone":"12345","isGold":true}`, false, true},
		{"false", `{"name":"Ada","phone":"12345","isGold":false}`, false, false},
		{"omitted defaults to false", `{"name":"Ada","phone":"12345"}`, false, false},
		{"string true rejected", `{"name":"Ada","phone":"12345","isGold":"true"}`, true, false},
		{"number rejected", `{"name":"Ada","phone":"12345","isGold":1}`, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := decodeCustomer(t, tt.body)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperr.ErrValidation)
				assert.Contains(t, err.Error(), "isGold")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Customer().IsGold)
		})
	}
}

func TestDecode_RejectsMalformedBodies(t *testing.T) {
	for name, body := range map[string]string{
		"empty":         ``,
		"syntax":        `{"name":`,
		"unknown field": `{"name":"Ada","phone":"12345","vip":true}`,
		"invalid field": `{"name":"A","phone":"12345"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := decodeCustomer(t, body)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestError_HidesInternalDetail(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/movies", nil)

	httpx.Error(rec, req, log, errors.New("mongo: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "mongo")
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestError_WritesCodedErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/rentals", nil)
	log, _ := logtest.NewNullLogger()

	httpx.Error(rec, req, log, apperr.OutOfStock("Movie not in stock."))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body apperr.Error
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, apperr.CodeOutOfStock, body.Code)
	assert.Equal(t, "Movie not in stock.", body.Message)
}

func TestDecode_NormalizesBeforeValidating(t *testing.T) {
	out, err := decodeCustomer(t, `{"name":"  Ada  ","phone":" 12345 "}`)
	require.NoError(t, err)
	assert.Equal(t, "Ada", out.Name)
	assert.Equal(t, "12345", out.Phone)

	_, err = decodeCustomer(t, `{"name":"Ada","phone":"  1234    "}`)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestJSON_EncodeFailureDoesNotUseGlobalLogger(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()
	rec := httptest.NewRecorder()

	httpx.JSON(rec, http.StatusOK, map[string]any{"ch": make(chan int)})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, hook.AllEntries())
}
