package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"restaurant-ordering/internal/models"
)

const maxBodyBytes = 1 << 20

// DecodeJSON reads a single JSON object from the request body into dst.
// Unknown fields are rejected.
func DecodeJSON(r *http.Request, dst interface{}) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return errUnsupportedMediaType
	}

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr):
			return models.ValidationError{Field: typeErr.Field, Message: fmt.Sprintf("must be of type %s", typeErr.Type)}
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return models.ValidationError{Message: "Invalid JSON format"}
		case errors.Is(err, io.EOF):
			return models.ValidationError{Message: "Request body is required"}
		default:
			return models.ValidationError{Message: err.Error()}
		}
	}

	if decoder.More() {
		return models.ValidationError{Message: "Request body must contain a single JSON object"}
	}
	return nil
}

// PathID parses the named path value as a positive id. Anything else cannot name
// an existing entity and is reported as not found.
func PathID(r *http.Request, name, entity string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%s %q not found: %w", entity, raw, models.ErrNotFound)
	}
	return id, nil
}
