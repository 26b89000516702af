package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/example/gamebook/internal/models"
	"github.com/example/gamebook/internal/ports/primary"
)

// APIError is the body of every error response.
type APIError struct {
	Message string `json:"message"`
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(c echo.Context, err error) error {
	var statusCode int
	var apiErr APIError

	switch {
	case errors.Is(err, models.ErrTransitionInProgress):
		statusCode = http.StatusConflict
		apiErr = APIError{Message: "Another action is already in progress"}
	case errors.Is(err, models.ErrSessionNotLoaded):
		statusCode = http.StatusNotFound
		apiErr = APIError{Message: "No open session for this book"}
	case errors.Is(err, models.ErrContentLoad):
		statusCode = http.StatusUnprocessableEntity
		apiErr = APIError{Message: primary.LoadErrorMessage}
	case errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		apiErr = APIError{Message: "Resource not found"}
	case errors.Is(err, models.ErrPersistence):
		statusCode = http.StatusInternalServerError
		apiErr = APIError{Message: "Failed to save progress"}
	default:
		statusCode = http.StatusInternalServerError
		apiErr = APIError{Message: "Internal server error"}
	}
	return c.JSON(statusCode, apiErr)
}
