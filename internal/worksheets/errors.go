package worksheets

import (
	"errors"
	"net/http"
)

// Domain errors for worksheet operations.
var (
	ErrNotFound     = errors.New("worksheet not found")
	ErrInvalidFile  = errors.New("invalid file")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrUpload       = errors.New("failed to upload file")
	ErrThumbnail    = errors.New("failed to generate thumbnail")
	ErrDuplicate    = errors.New("worksheet already exists")
)

// MapHTTPStatus converts domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrInvalidFile) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
