// Package api exposes the document facade over HTTP. Each endpoint accepts a
// multipart upload, runs one pdffile operation against a temp copy and streams
// the result back. All temp files are released before the handler returns.
package api

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JaimeStill/qpdf-utils/internal/config"
	"github.com/JaimeStill/qpdf-utils/pkg/handlers"
	"github.com/JaimeStill/qpdf-utils/pkg/pdffile"
	"github.com/JaimeStill/qpdf-utils/pkg/pdftype"
	"github.com/JaimeStill/qpdf-utils/pkg/qpdf"
	"github.com/JaimeStill/qpdf-utils/pkg/routes"
	"github.com/JaimeStill/qpdf-utils/pkg/tempfile"
	"github.com/docker/go-units"
	"github.com/google/uuid"
)

const (
	// formMemory is the multipart memory budget; larger parts spill to disk.
	formMemory = 32 << 20

	// DefaultKeyLength is used by Encrypt when key_length is omitted.
	DefaultKeyLength = 256

	contentTypePDF = "application/pdf"
	contentTypeZip = "application/zip"
)

// Info describes an uploaded document.
type Info struct {
	Pages     int  `json:"pages"`
	Encrypted bool `json:"encrypted"`
}

// Handler provides HTTP endpoints for PDF operations.
type Handler struct {
	runner        qpdf.Runner
	temp          *tempfile.Store
	checker       pdftype.Checker
	maxInputSize  int64
	maxUploadSize int64
	logger        *slog.Logger
}

// NewHandler creates a PDF handler that runs the engine through runner and
// stages uploads and results in temp.
func NewHandler(
	runner qpdf.Runner,
	temp *tempfile.Store,
	docs *config.DocumentsConfig,
	maxUploadSize int64,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		runner:        runner,
		temp:          temp,
		checker:       pdftype.Checker{Strict: docs.StrictValidation},
		maxInputSize:  docs.MaxInputSizeBytes(),
		maxUploadSize: maxUploadSize,
		logger:        logger.With("handler", "pdf"),
	}
}

// Routes returns the PDF endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/pdf",
		Tags:        []string{"PDF"},
		Description: "PDF inspection, extraction, merging and encryption",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/info", Handler: h.Info, OpenAPI: Spec.Info},
			{Method: "POST", Pattern: "/extract", Handler: h.Extract, OpenAPI: Spec.Extract},
			{Method: "POST", Pattern: "/split", Handler: h.Split, OpenAPI: Spec.Split},
			{Method: "POST", Pattern: "/append", Handler: h.Append, OpenAPI: Spec.Append},
			{Method: "POST", Pattern: "/decrypt", Handler: h.Decrypt, OpenAPI: Spec.Decrypt},
			{Method: "POST", Pattern: "/encrypt", Handler: h.Encrypt, OpenAPI: Spec.Encrypt},
		},
	}
}

func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	s := newScratch(h.temp, h.logger)
	defer s.release()

	source, _, err := h.upload(w, r, s)
	if err != nil {
		h.fail(w, err)
		return
	}

	var info Info
	err = pdffile.With(source, h.options(r.FormValue("password")), func(d *pdffile.Document) error {
		encrypted, err := d.IsEncrypted()
		if err != nil {
			return err
		}

		pages, err := d.Pages(r.Context())
		if err != nil {
			return err
		}

		info = Info{Pages: pages, Encrypted: encrypted}
		return nil
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, info)
}

func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	pageRange, err := pdffile.ParseRange(r.URL.Query().Get("pages"))
	if err != nil {
		h.fail(w, err)
		return
	}

	s := newScratch(h.temp, h.logger)
	defer s.release()

	source, name, err := h.upload(w, r, s)
	if err != nil {
		h.fail(w, err)
		return
	}

	target, err := s.create()
	if err != nil {
		h.fail(w, err)
		return
	}

	err = pdffile.With(source, h.options(r.FormValue("password")), func(d *pdffile.Document) error {
		_, err := d.ExtractPageRange(r.Context(), pageRange, target)
		return err
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondFile(w, h.logger, target, resultName(name, pageRange.String()), contentTypePDF)
}

func (h *Handler) Split(w http.ResponseWriter, r *http.Request) {
	s := newScratch(h.temp, h.logger)
	defer s.release()

	source, name, err := h.upload(w, r, s)
	if err != nil {
		h.fail(w, err)
		return
	}

	template := s.template(uuid.NewString())

	var pages []string
	err = pdffile.With(source, h.options(r.FormValue("password")), func(d *pdffile.Document) error {
		extracted, err := d.ExtractPages(r.Context(), template)
		pages = extracted
		return err
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeZip)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", baseName(name)+".zip"))
	w.WriteHeader(http.StatusOK)

	if err := writeArchive(w, baseName(name), pages); err != nil {
		h.logger.Warn("archive response interrupted", "pages", len(pages), "error", err)
	}
}

func (h *Handler) Append(w http.ResponseWriter, r *http.Request) {
	s := newScratch(h.temp, h.logger)
	defer s.release()

	source, name, err := h.upload(w, r, s)
	if err != nil {
		h.fail(w, err)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		h.fail(w, fmt.Errorf("%w: files", ErrMissingFile))
		return
	}
	passwords := r.MultipartForm.Value["passwords"]

	inputs := make([]pdffile.Input, 0, len(files))
	for i, fh := range files {
		path, err := s.save(fh)
		if err != nil {
			h.fail(w, err)
			return
		}

		in := pdffile.Input{Path: path}
		if i < len(passwords) {
			in.Password = passwords[i]
		}
		inputs = append(inputs, in)
	}

	target, err := s.create()
	if err != nil {
		h.fail(w, err)
		return
	}

	err = pdffile.With(source, h.options(r.FormValue("password")), func(d *pdffile.Document) error {
		_, err := d.AppendFiles(r.Context(), target, inputs...)
		return err
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondFile(w, h.logger, target, resultName(name, "merged"), contentTypePDF)
}

func (h *Handler) Decrypt(w http.ResponseWriter, r *http.Request) {
	s := newScratch(h.temp, h.logger)
	defer s.release()

	source, name, err := h.upload(w, r, s)
	if err != nil {
		h.fail(w, err)
		return
	}

	target, err := s.create()
	if err != nil {
		h.fail(w, err)
		return
	}

	err = pdffile.With(source, h.options(""), func(d *pdffile.Document) error {
		_, err := d.Decrypt(r.Context(), r.FormValue("password"), target)
		return err
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondFile(w, h.logger, target, resultName(name, "decrypted"), contentTypePDF)
}

func (h *Handler) Encrypt(w http.ResponseWriter, r *http.Request) {
	s := newScratch(h.temp, h.logger)
	defer s.release()

	source, name, err := h.upload(w, r, s)
	if err != nil {
		h.fail(w, err)
		return
	}

	keyLength, err := parseKeyLength(r.FormValue("key_length"))
	if err != nil {
		h.fail(w, err)
		return
	}

	opts := pdffile.EncryptOptions{
		UserPassword:  r.FormValue("user_password"),
		OwnerPassword: r.FormValue("owner_password"),
		KeyLength:     keyLength,
	}

	target, err := s.create()
	if err != nil {
		h.fail(w, err)
		return
	}

	err = pdffile.With(source, h.options(""), func(d *pdffile.Document) error {
		_, err := d.Encrypt(r.Context(), opts, target)
		return err
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondFile(w, h.logger, target, resultName(name, "encrypted"), contentTypePDF)
}

// upload parses the multipart form and saves the "file" part to a temp file.
// It returns the temp path and the client file name.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request, s *scratch) (string, string, error) {
	if err := h.parseForm(w, r); err != nil {
		return "", "", err
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		return "", "", fmt.Errorf("%w: file", ErrMissingFile)
	}

	path, err := s.save(files[0])
	if err != nil {
		return "", "", err
	}

	return path, files[0].Filename, nil
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) error {
	if r.ContentLength > h.maxUploadSize {
		return h.tooLarge()
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return h.tooLarge()
		}
		return fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}

	return nil
}

func (h *Handler) tooLarge() error {
	return fmt.Errorf("%w: limit %s", ErrUploadTooLarge, units.HumanSize(float64(h.maxUploadSize)))
}

func (h *Handler) options(password string) pdffile.Options {
	return pdffile.Options{
		Runner:   h.runner,
		Password: password,
		Temp:     h.temp,
		Checker:  h.checker,
		MaxSize:  h.maxInputSize,
		Logger:   h.logger,
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
}

func parseKeyLength(value string) (int, error) {
	if value == "" {
		return DefaultKeyLength, nil
	}

	keyLength, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", pdffile.ErrInvalidKeyLength, value)
	}
	return keyLength, nil
}

func writeArchive(w io.Writer, name string, pages []string) error {
	zw := zip.NewWriter(w)

	for i, page := range pages {
		if err := addEntry(zw, fmt.Sprintf("%s-%d.pdf", name, i+1), page); err != nil {
			return err
		}
	}

	return zw.Close()
}

func addEntry(zw *zip.Writer, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	entry, err := zw.Create(name)
	if err != nil {
		return err
	}

	_, err = io.Copy(entry, f)
	return err
}

func baseName(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "document"
	}
	return base
}

func resultName(filename, suffix string) string {
	return baseName(filename) + "-" + suffix + ".pdf"
}
