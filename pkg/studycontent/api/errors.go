package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/brainstack/study-content/pkg/studycontent"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError maps service errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	var validationErr *studycontent.ValidationError
	var storageErr *studycontent.StorageError

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.Is(err, studycontent.ErrContentNotFound):
		status = http.StatusNotFound
	case errors.As(err, &storageErr):
		status = http.StatusBadGateway
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: err.Error()})
}
