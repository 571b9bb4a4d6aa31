package pdffile

import (
	"errors"
	"fmt"
)

// Domain errors for document operations.
var (
	ErrFileNotFound     = errors.New("file not found")
	ErrBadFileType      = errors.New("file does not appear to be a PDF")
	ErrFileTooLarge     = errors.New("file exceeds maximum input size")
	ErrOutOfBounds      = errors.New("page range out of bounds")
	ErrInvalidRange     = errors.New("invalid page range")
	ErrInvalidTemplate  = errors.New("invalid target template")
	ErrInvalidKeyLength = errors.New("invalid key length")
	ErrProcessing       = errors.New("processing failed")
	ErrInvalidPassword  = errors.New("invalid or missing password")
)

// Error records the operation and file that failed.
// Engine failures that are not otherwise classified are carried in Err as a
// *qpdf.ExitError so the exit status stays inspectable.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("pdffile: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("pdffile: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
