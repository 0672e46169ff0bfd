// Package httpx holds the JSON plumbing shared by every handler.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/fseda/Vidly/internal/apperr"
	"github.com/fseda/Vidly/internal/validation"
)

const maxBodyBytes = 1 << 20

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already out; a failed encode leaves nothing to report.
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes err using its apperr code. Internal errors are logged with
// their cause and reported to the client without detail.
func Error(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	appErr := apperr.From(err)
	if appErr.Code == apperr.CodeInternal {
		log.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
		appErr = apperr.ErrInternal
	}
	JSON(w, appErr.HTTPStatus(), appErr)
}

// normalizer is implemented by request bodies that clean up their fields
// (trimming, case folding) before validation.
type normalizer interface {
	Normalize()
}

// Decode reads a JSON body into dst, rejecting unknown fields and values of
// the wrong type, normalizes it when dst supports that, then runs v over the
// result.
func Decode(r *http.Request, v *validation.Validator, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if n, ok := dst.(normalizer); ok {
		n.Normalize()
	}
	return v.Validate(dst)
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		msg := fmt.Sprintf("%q must be a %s", typeErr.Field, jsonKind(typeErr.Type.Kind().String()))
		return apperr.Validation(msg).WithDetails(validation.FieldError{Field: typeErr.Field, Message: msg})
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return apperr.Validation("request body is not valid JSON")
	case errors.Is(err, io.EOF):
		return apperr.Validation("request body is required")
	default:
		// DisallowUnknownFields reports `json: unknown field "x"`.
		return apperr.Validation(err.Error())
	}
}

func jsonKind(goKind string) string {
	switch goKind {
	case "bool":
		return "boolean"
	case "float32", "float64", "int", "int64":
		return "number"
	case "ptr":
		return "valid value"
	default:
		return goKind
	}
}
