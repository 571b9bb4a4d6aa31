package api

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/JaimeStill/qpdf-utils/pkg/tempfile"
)

// scratch tracks the temp files a single request allocates: uploaded inputs,
// engine targets and split page files. release deletes all of them.
type scratch struct {
	temp   *tempfile.Store
	logger *slog.Logger
	paths  []string
	globs  []string
}

func newScratch(temp *tempfile.Store, logger *slog.Logger) *scratch {
	return &scratch{temp: temp, logger: logger}
}

// create allocates an empty temp file owned by the request.
func (s *scratch) create() (string, error) {
	path, err := s.temp.Create()
	if err != nil {
		return "", err
	}
	s.paths = append(s.paths, path)
	return path, nil
}

// save copies an uploaded part into a new temp file.
func (s *scratch) save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	path, err := s.create()
	if err != nil {
		return "", err
	}

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return "", fmt.Errorf("open temp file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("save upload %s: %w", fh.Filename, err)
	}

	return path, nil
}

// template returns a page-numbered target template inside the store directory.
// Every file it produces is released with the request.
func (s *scratch) template(id string) string {
	s.globs = append(s.globs, filepath.Join(s.temp.Dir(), tempfile.Prefix+id+"-*"+tempfile.Suffix))
	return filepath.Join(s.temp.Dir(), tempfile.Prefix+id+"-%d"+tempfile.Suffix)
}

func (s *scratch) release() {
	paths := s.paths
	for _, pattern := range s.globs {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			s.logger.Warn("temp pattern invalid", "pattern", pattern, "error", err)
			continue
		}
		paths = append(paths, matches...)
	}

	for _, path := range paths {
		if err := s.temp.Delete(path); err != nil {
			s.logger.Warn("temp file release failed", "path", path, "error", err)
		}
	}

	s.paths = nil
	s.globs = nil
}
