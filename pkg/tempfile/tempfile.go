// Package tempfile allocates and releases the temporary PDF files used for
// decrypted copies and uploaded inputs. Files are created empty under a single
// directory with a recognizable name so stray files are easy to identify.
package tempfile

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/qpdf-utils/pkg/lifecycle"
	"github.com/google/uuid"
)

const (
	// Prefix starts every temp file name.
	Prefix = "temp-"

	// Suffix ends every temp file name.
	Suffix = ".pdf"
)

// Errors returned by Store.
var (
	// ErrOutsideStore indicates a path does not belong to the store directory.
	ErrOutsideStore = errors.New("tempfile: path outside store")

	// ErrPermissionDenied indicates insufficient permissions to remove a file.
	ErrPermissionDenied = errors.New("tempfile: permission denied")
)

// Store creates and deletes temp files under one directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates a temp store. The directory is resolved to an absolute path during
// construction; creation is deferred to Start or the first Create.
func New(cfg *Config, logger *slog.Logger) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("dir required")
	}

	absDir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve dir: %w", err)
	}

	return &Store{
		dir:    absDir,
		logger: logger.With("system", "tempfile"),
	}, nil
}

// Default returns a store in os.TempDir that discards its logs.
func Default() (*Store, error) {
	return New(&Config{Dir: os.TempDir()}, slog.New(slog.DiscardHandler))
}

// Dir returns the absolute store directory.
func (s *Store) Dir() string {
	return s.dir
}

// Start registers a startup hook that creates the store directory.
func (s *Store) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting temp store", "dir", s.dir)

	lc.OnStartup(func() {
		if err := os.MkdirAll(s.dir, 0755); err != nil {
			s.logger.Error("temp store initialization failed", "error", err)
			return
		}
		s.logger.Info("temp store directory initialized")
	})

	return nil
}

// Create allocates a new, empty temp file and returns its path.
func (s *Store) Create() (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	path := filepath.Join(s.dir, Prefix+uuid.NewString()+Suffix)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close temp file: %w", err)
	}

	s.logger.Debug("temp file created", "path", path)
	return path, nil
}

// Delete removes a temp file created by this store.
// Returns nil if the file no longer exists (idempotent).
func (s *Store) Delete(path string) error {
	if !s.owns(path) {
		return fmt.Errorf("%w: %s", ErrOutsideStore, path)
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if errors.Is(err, fs.ErrPermission) {
			return ErrPermissionDenied
		}
		return fmt.Errorf("remove file: %w", err)
	}

	s.logger.Debug("temp file deleted", "path", path)
	return nil
}

func (s *Store) owns(path string) bool {
	cleaned := filepath.Clean(path)
	return filepath.Dir(cleaned) == s.dir &&
		strings.HasPrefix(filepath.Base(cleaned), Prefix)
}
