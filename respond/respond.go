// Package respond writes JSON responses and apperror-based error bodies.
package respond

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/user/talenthub/apperror"
)

// JSON serializes data and writes it with the given status.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; all we can do is log.
		log.Printf("failed to encode response: %v", err)
	}
}

// NoContent writes a bare 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error converts any error into the standard error body.
// Errors that are not *apperror.AppError become InternalError.
// Server-side failures are logged with the request id; the client only sees the generic text.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("unexpected error", err)
	}
	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		log.Printf("[%s] %s %s -> %d: %v", middleware.GetReqID(r.Context()), r.Method, r.URL.Path, status, appErr)
	}
	JSON(w, status, appErr.ToResponse())
}
