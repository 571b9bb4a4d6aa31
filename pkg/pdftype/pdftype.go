// Package pdftype recognizes PDF files without parsing their content.
// It provides the magic-header predicate, an optional structural check backed by
// pdfcpu, and the head/tail scan used to detect an encryption dictionary.
package pdftype

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const (
	// HeaderWindow is how far into a file the %PDF- magic may appear.
	HeaderWindow = 1024

	// ScanWindow is the size of each region read when scanning for the encryption marker.
	ScanWindow = 4096
)

var (
	headerMagic   = []byte("%PDF-")
	encryptMarker = []byte("/Encrypt")
)

// IsPDF reports whether path starts with the %PDF- header within HeaderWindow bytes.
func IsPDF(path string) bool {
	data, err := readAt(path, HeaderWindow, 0)
	if err != nil {
		return false
	}
	return bytes.Contains(data, headerMagic)
}

// Encrypted reports whether the /Encrypt marker appears in the first or last
// ScanWindow bytes of path. This is a heuristic scan, not a structural parse.
func Encrypted(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	offsets := []int64{0, max(info.Size()-ScanWindow, 0)}
	for _, offset := range offsets {
		data, err := readAt(path, ScanWindow, offset)
		if err != nil {
			return false, fmt.Errorf("scan %s at %d: %w", path, offset, err)
		}
		if bytes.Contains(data, encryptMarker) {
			return true, nil
		}
	}

	return false, nil
}

// Checker decides whether a path is a usable PDF.
type Checker struct {
	// Strict additionally runs pdfcpu structural validation on unencrypted files.
	Strict bool
}

// Check reports whether path is recognized as a PDF.
// Encrypted files are only header-checked: they cannot be validated without a password.
func (c Checker) Check(path string) bool {
	if !IsPDF(path) {
		return false
	}
	if !c.Strict {
		return true
	}

	encrypted, err := Encrypted(path)
	if err != nil {
		return false
	}
	if encrypted {
		return true
	}

	return Validate(path) == nil
}

// Validate runs pdfcpu's relaxed structural validation against path.
func Validate(path string) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.ValidateFile(path, conf)
}

func readAt(path string, length int, offset int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, length)
	n, err := f.ReadAt(buf, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}
