// Package handlers provides HTTP response utilities for JSON APIs and file downloads.
// These stateless functions standardize response formatting across handlers.
package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
)

// RespondJSON writes a JSON response with the given status code and data.
// It sets the Content-Type header to application/json.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs the error and writes a JSON error response.
// The response body contains {"error": "<error message>"}. Server errors carry
// only the status text; the full error goes to the log.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	logger.Error("handler error", "error", err, "status", status)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = http.StatusText(status)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// RespondFile streams the file at path as an attachment named filename.
func RespondFile(w http.ResponseWriter, logger *slog.Logger, path, filename, contentType string) {
	f, err := os.Open(path)
	if err != nil {
		RespondError(w, logger, http.StatusInternalServerError, fmt.Errorf("open result: %w", err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		RespondError(w, logger, http.StatusInternalServerError, fmt.Errorf("stat result: %w", err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, f); err != nil {
		logger.Warn("file response interrupted", "path", path, "error", err)
	}
}
