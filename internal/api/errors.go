package api

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/qpdf-utils/pkg/pdffile"
)

// Request errors raised before a document is opened.
var (
	ErrUploadTooLarge = errors.New("upload exceeds maximum size")
	ErrMissingFile    = errors.New("missing file upload")
	ErrInvalidForm    = errors.New("invalid multipart form")
)

// MapHTTPStatus converts request and document errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUploadTooLarge), errors.Is(err, pdffile.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, pdffile.ErrInvalidPassword):
		return http.StatusForbidden
	case errors.Is(err, ErrMissingFile),
		errors.Is(err, ErrInvalidForm),
		errors.Is(err, pdffile.ErrBadFileType),
		errors.Is(err, pdffile.ErrOutOfBounds),
		errors.Is(err, pdffile.ErrInvalidRange),
		errors.Is(err, pdffile.ErrInvalidKeyLength):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
