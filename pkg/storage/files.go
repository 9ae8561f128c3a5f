package storage

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
)

// FileHandler serves stored blobs at GET .../{key...}. It backs public URLs
// for the filesystem driver.
func FileHandler(sys System, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		obj, err := sys.Open(r.Context(), r.PathValue("key"))
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidKey) {
				http.NotFound(w, r)
				return
			}
			logger.Error("file open failed", "key", r.PathValue("key"), "error", err)
			http.Error(w, "storage unavailable", http.StatusInternalServerError)
			return
		}
		defer obj.Body.Close()

		w.Header().Set("Content-Type", obj.ContentType)
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, obj.Body); err != nil {
			logger.Warn("file stream interrupted", "key", r.PathValue("key"), "error", err)
		}
	}
}
