package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fseda/Vidly/internal/apperr"
	"github.com/fseda/Vidly/internal/models"
	"github.com/fseda/Vidly/internal/validation"
)

func ptr[T any](v T) *T { return &v }

func TestValidator_CustomerRequest(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       models.CustomerRequest
		wantField string
	}{
		{"valid", models.CustomerRequest{Name: "Ada", Phone: "12345"}, ""},
		{"valid gold", models.CustomerRequest{Name: "Ada", IsGold: ptr(true), Phone: "12345"}, ""},
		{"missing name", models.CustomerRequest{Phone: "12345"}, "name"},
		{"short name", models.CustomerRequest{Name: "Al", Phone: "12345"}, "name"},
		{"long name", models.CustomerRequest{Name: strings.Repeat("a", 256), Phone: "12345"}, "name"},
		{"short phone", models.CustomerRequest{Name: "Ada", Phone: "1234"}, "phone"},
		{"long phone", models.CustomerRequest{Name: "Ada", Phone: strings.Repeat("1", 51)}, "phone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assertField(t, err, tt.wantField)
		})
	}
}

func TestValidator_MovieRequest(t *testing.T) {
	v := validation.New()
	genreID := "5f1b2c3d4e5f6a7b8c9d0e1f"

	valid := models.MovieRequest{
		Title:           "Alien",
		GenreID:         genreID,
		NumberInStock:   ptr(0.0),
		DailyRentalRate: ptr(2.0),
	}
	assert.NoError(t, v.Validate(valid))

	badGenre := valid
	badGenre.GenreID = "1234"
	assertField(t, v.Validate(badGenre), "genreId")

	missingStock := valid
	missingStock.NumberInStock = nil
	assertField(t, v.Validate(missingStock), "numberInStock")

	negativeStock := valid
	negativeStock.NumberInStock = ptr(-1.0)
	assertField(t, v.Validate(negativeStock), "numberInStock")

	expensive := valid
	expensive.DailyRentalRate = ptr(256.0)
	assertField(t, v.Validate(expensive), "dailyRentalRate")
}

func TestValidator_RentalRequestReportsFirstField(t *testing.T) {
	v := validation.New()

	err := v.Validate(models.RentalRequest{})
	require.Error(t, err)
	assertField(t, err, "customerId")

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, `"customerId" is required`, appErr.Message)
}

func assertField(t *testing.T, err error, field string) {
	t.Helper()
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeValidation, appErr.Code)
	details, ok := appErr.Details.(validation.FieldError)
	require.True(t, ok, "details should be a FieldError")
	assert.Equal(t, field, details.Field)
}
