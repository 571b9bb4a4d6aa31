// Package pdffile is a facade over the qpdf engine for a single source PDF.
// A Document lazily detects encryption and page count, resolves encrypted sources
// to decrypted temp copies it owns, and validates engine results before returning
// target paths. Temp files are released only by Cleanup; use With to scope them.
//
// A Document is not safe for concurrent use.
package pdffile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/JaimeStill/qpdf-utils/pkg/pdftype"
	"github.com/JaimeStill/qpdf-utils/pkg/qpdf"
	"github.com/JaimeStill/qpdf-utils/pkg/tempfile"
	"github.com/docker/go-units"
)

// KeyLengths lists the encryption key lengths the engine accepts.
var KeyLengths = []int{40, 128, 256}

// Options configures a Document. Zero values select defaults.
type Options struct {
	// Runner invokes the engine. Default: qpdf.ShellRunner with default config.
	Runner qpdf.Runner

	// Password decrypts the source file itself. Appended inputs carry their own.
	Password string

	// Temp allocates decrypted copies. Default: tempfile.Default().
	Temp *tempfile.Store

	// Checker is the PDF-type predicate applied to the source and appended inputs.
	Checker pdftype.Checker

	// MaxSize rejects inputs larger than this many bytes. Zero disables the limit.
	MaxSize int64

	Logger *slog.Logger
}

// Input is a file to append, paired with the password that decrypts it.
type Input struct {
	Path     string
	Password string
}

// EncryptOptions holds the credentials and key length for Encrypt.
type EncryptOptions struct {
	UserPassword  string
	OwnerPassword string
	KeyLength     int
}

// Document wraps one source PDF with its derived caches and owned temp files.
type Document struct {
	path     string
	password string
	runner   qpdf.Runner
	temp     *tempfile.Store
	checker  pdftype.Checker
	maxSize  int64
	logger   *slog.Logger

	encrypted *bool
	pages     *int
	temps     []string
	decrypted string
}

// Open validates path and returns a Document for it.
// Encryption and page count are not computed until first requested.
func Open(path string, opts Options) (*Document, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Runner == nil {
		cfg := &qpdf.Config{}
		if err := cfg.Finalize(nil); err != nil {
			return nil, fmt.Errorf("qpdf config: %w", err)
		}
		opts.Runner = qpdf.New(cfg, opts.Logger)
	}
	if opts.Temp == nil {
		temp, err := tempfile.Default()
		if err != nil {
			return nil, fmt.Errorf("temp store: %w", err)
		}
		opts.Temp = temp
	}

	d := &Document{
		path:     path,
		password: opts.Password,
		runner:   opts.Runner,
		temp:     opts.Temp,
		checker:  opts.Checker,
		maxSize:  opts.MaxSize,
		logger:   opts.Logger.With("system", "pdffile", "source", path),
	}

	if err := d.validate("open", path); err != nil {
		return nil, err
	}

	return d, nil
}

// With opens path, passes the Document to fn and releases its temp files on every
// exit path. A cleanup failure is joined with fn's error.
func With(path string, opts Options, fn func(*Document) error) (err error) {
	d, err := Open(path, opts)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, d.Cleanup())
	}()

	return fn(d)
}

// Path returns the source path the Document was opened with.
func (d *Document) Path() string {
	return d.path
}

// DecryptedFile returns the most recent decrypted copy created by File, if any.
func (d *Document) DecryptedFile() string {
	return d.decrypted
}

// TempFiles returns the temp files currently owned by the Document.
func (d *Document) TempFiles() []string {
	return slices.Clone(d.temps)
}

// IsEncrypted reports whether the source contains an encryption dictionary.
// The result is computed once and cached.
func (d *Document) IsEncrypted() (bool, error) {
	if d.encrypted != nil {
		return *d.encrypted, nil
	}

	encrypted, err := pdftype.Encrypted(d.path)
	if err != nil {
		return false, &Error{Op: "check encryption", Path: d.path, Err: err}
	}

	d.encrypted = &encrypted
	return encrypted, nil
}

// File returns the path to hand to the engine. An encrypted source is decrypted
// with the configured password into a new temp file on every call.
func (d *Document) File(ctx context.Context) (string, error) {
	encrypted, err := d.IsEncrypted()
	if err != nil {
		return "", err
	}
	if !encrypted {
		return d.path, nil
	}

	target, err := d.createTemp()
	if err != nil {
		return "", err
	}

	if _, err := d.decryptFile(ctx, d.path, d.password, target); err != nil {
		return "", err
	}

	d.decrypted = target
	return target, nil
}

// Pages returns the page count reported by the engine. The result is computed
// once and cached.
func (d *Document) Pages(ctx context.Context) (int, error) {
	if d.pages != nil {
		return *d.pages, nil
	}

	args := []string{"--show-npages"}
	if d.password != "" {
		args = append(args, "--password="+d.password)
	}
	args = append(args, d.path)

	output, err := d.runner.RunWithOutput(ctx, args)
	if err != nil {
		if status, ok := qpdf.StatusOf(err); ok && status == qpdf.StatusError && d.locked() {
			return 0, &Error{Op: "count pages", Path: d.path, Err: fmt.Errorf("%w: %w", ErrInvalidPassword, err)}
		}
		return 0, &Error{Op: "count pages", Path: d.path, Err: err}
	}

	count, err := strconv.Atoi(strings.TrimSpace(output))
	if err != nil || count <= 0 {
		return 0, &Error{
			Op:   "count pages",
			Path: d.path,
			Err:  fmt.Errorf("%w: could not determine number of pages", ErrProcessing),
		}
	}

	d.pages = &count
	return count, nil
}

// ExtractPage writes a single page of the source to target.
func (d *Document) ExtractPage(ctx context.Context, page int, target string) (string, error) {
	return d.ExtractPageRange(ctx, Page(page), target)
}

// ExtractPageRange writes pages r.From through r.To of the source to target.
func (d *Document) ExtractPageRange(ctx context.Context, r Range, target string) (string, error) {
	if r.From < 1 || r.From > r.To {
		return "", d.outOfBounds(r, 0)
	}

	pages, err := d.Pages(ctx)
	if err != nil {
		return "", err
	}
	if r.To > pages {
		return "", d.outOfBounds(r, pages)
	}

	source, err := d.File(ctx)
	if err != nil {
		return "", err
	}

	if err := d.run(ctx, "extract", []string{"--empty", "--pages", source, r.String(), "--", target}); err != nil {
		return "", err
	}

	if err := checkOutput("extract", target); err != nil {
		return "", err
	}

	d.logger.Debug("pages extracted", "range", r.String(), "count", r.Len(), "target", target)
	return target, nil
}

// ExtractPages writes every page of the source to its own file. Each target is
// template formatted with the page number, e.g. "page-%d.pdf". Paths are returned
// in ascending page order.
func (d *Document) ExtractPages(ctx context.Context, template string) ([]string, error) {
	if err := checkTemplate(template); err != nil {
		return nil, err
	}

	pages, err := d.Pages(ctx)
	if err != nil {
		return nil, err
	}

	source, err := d.File(ctx)
	if err != nil {
		return nil, err
	}

	targets := make([]string, 0, pages)
	for page := 1; page <= pages; page++ {
		target := fmt.Sprintf(template, page)

		if err := d.run(ctx, "extract", []string{"--empty", "--pages", source, strconv.Itoa(page), "--", target}); err != nil {
			return nil, err
		}
		if err := checkOutput("extract", target); err != nil {
			return nil, err
		}

		targets = append(targets, target)
	}

	d.logger.Debug("document split", "pages", pages, "template", template)
	return targets, nil
}

// AppendFiles writes the source pages followed by each input's pages, in order,
// to target. Encrypted inputs are decrypted with their own password first.
func (d *Document) AppendFiles(ctx context.Context, target string, inputs ...Input) (string, error) {
	resolved := make([]string, 0, len(inputs))

	for _, in := range inputs {
		if err := d.validate("append", in.Path); err != nil {
			return "", err
		}

		encrypted, err := pdftype.Encrypted(in.Path)
		if err != nil {
			return "", &Error{Op: "check encryption", Path: in.Path, Err: err}
		}
		if !encrypted {
			resolved = append(resolved, in.Path)
			continue
		}

		decrypted, err := d.createTemp()
		if err != nil {
			return "", err
		}
		if _, err := d.decryptFile(ctx, in.Path, in.Password, decrypted); err != nil {
			return "", err
		}
		resolved = append(resolved, decrypted)
	}

	source, err := d.File(ctx)
	if err != nil {
		return "", err
	}

	args := append([]string{"--empty", "--pages", source}, resolved...)
	args = append(args, "--", target)

	if err := d.run(ctx, "append", args); err != nil {
		return "", err
	}

	if err := checkOutput("append", target); err != nil {
		return "", err
	}

	d.logger.Debug("files appended", "inputs", len(inputs), "target", target)
	return target, nil
}

// Decrypt removes encryption from the source using password. An empty target
// replaces the source in place and returns the source path.
func (d *Document) Decrypt(ctx context.Context, password, target string) (string, error) {
	result, err := d.decryptFile(ctx, d.path, password, target)
	if err != nil {
		return "", err
	}

	if target == "" {
		d.encrypted = nil
	}

	d.logger.Info("document decrypted", "target", result)
	return result, nil
}

// Encrypt encrypts the source with the given passwords and key length. An empty
// target replaces the source in place and returns the source path.
func (d *Document) Encrypt(ctx context.Context, opts EncryptOptions, target string) (string, error) {
	if !slices.Contains(KeyLengths, opts.KeyLength) {
		return "", &Error{
			Op:   "encrypt",
			Path: d.path,
			Err:  fmt.Errorf("%w: %d (must be one of %v)", ErrInvalidKeyLength, opts.KeyLength, KeyLengths),
		}
	}

	args := []string{
		"--encrypt", opts.UserPassword, opts.OwnerPassword, strconv.Itoa(opts.KeyLength), "--",
		d.path, outputArg(target),
	}

	if err := d.runner.Run(ctx, args); err != nil {
		if status, ok := qpdf.StatusOf(err); ok && status == qpdf.StatusError {
			return "", &Error{Op: "encrypt", Path: d.path, Err: fmt.Errorf("%w: %w", ErrProcessing, err)}
		}
		return "", &Error{Op: "encrypt", Path: d.path, Err: err}
	}

	result := target
	if target == "" {
		result = d.path
		d.encrypted = nil
	}

	d.logger.Info("document encrypted", "key_length", opts.KeyLength, "target", result)
	return result, nil
}

// Cleanup deletes every temp file the Document owns and forgets the decrypted copy.
// Every file is attempted; deletion failures are joined in the returned error.
// Safe to call repeatedly.
func (d *Document) Cleanup() error {
	var errs []error
	for _, path := range d.temps {
		if err := d.temp.Delete(path); err != nil {
			errs = append(errs, err)
		}
	}

	if len(d.temps) > 0 {
		d.logger.Debug("temp files released", "count", len(d.temps))
	}

	d.temps = nil
	d.decrypted = ""

	return errors.Join(errs...)
}

func (d *Document) decryptFile(ctx context.Context, source, password, target string) (string, error) {
	args := []string{"--decrypt", "--password=" + password, source, outputArg(target)}

	if err := d.runner.Run(ctx, args); err != nil {
		if status, ok := qpdf.StatusOf(err); ok && status == qpdf.StatusError {
			return "", &Error{Op: "decrypt", Path: source, Err: fmt.Errorf("%w: %w", ErrInvalidPassword, err)}
		}
		return "", &Error{Op: "decrypt", Path: source, Err: err}
	}

	if target == "" {
		return source, nil
	}
	return target, nil
}

// locked reports whether an engine error on the source can be blamed on its password.
func (d *Document) locked() bool {
	if d.password != "" {
		return true
	}
	encrypted, err := d.IsEncrypted()
	return err == nil && encrypted
}

func (d *Document) run(ctx context.Context, op string, args []string) error {
	if err := d.runner.Run(ctx, args); err != nil {
		return &Error{Op: op, Path: d.path, Err: err}
	}
	return nil
}

// createTemp allocates a temp file and tracks it before it is handed to the engine.
func (d *Document) createTemp() (string, error) {
	path, err := d.temp.Create()
	if err != nil {
		return "", &Error{Op: "create temp", Path: d.path, Err: err}
	}
	d.temps = append(d.temps, path)
	return path, nil
}

func (d *Document) validate(op, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Error{Op: op, Path: path, Err: ErrFileNotFound}
		}
		return &Error{Op: op, Path: path, Err: err}
	}

	if d.maxSize > 0 && info.Size() > d.maxSize {
		size := units.HumanSize(float64(info.Size()))
		limit := units.HumanSize(float64(d.maxSize))
		return &Error{Op: op, Path: path, Err: fmt.Errorf("%w: %s > %s", ErrFileTooLarge, size, limit)}
	}

	if !d.checker.Check(path) {
		return &Error{Op: op, Path: path, Err: ErrBadFileType}
	}

	return nil
}

func (d *Document) outOfBounds(r Range, pages int) error {
	bounds := "1..N"
	if pages > 0 {
		bounds = fmt.Sprintf("1..%d", pages)
	}
	return &Error{
		Op:   "extract",
		Path: d.path,
		Err:  fmt.Errorf("%w: page range %s is out of bounds (%s)", ErrOutOfBounds, r, bounds),
	}
}

func outputArg(target string) string {
	if target == "" {
		return "--replace-input"
	}
	return target
}

func checkOutput(op, target string) error {
	info, err := os.Stat(target)
	if err != nil {
		return &Error{Op: op, Path: target, Err: fmt.Errorf("%w: %w", ErrProcessing, err)}
	}
	if info.Size() == 0 {
		return &Error{Op: op, Path: target, Err: fmt.Errorf("%w: output is 0 bytes", ErrProcessing)}
	}
	return nil
}

func checkTemplate(template string) error {
	first := fmt.Sprintf(template, 1)
	if strings.Contains(first, "%!") || first == fmt.Sprintf(template, 2) {
		return &Error{
			Op:  "split",
			Err: fmt.Errorf("%w: %q must contain one page number verb such as %%d", ErrInvalidTemplate, template),
		}
	}
	return nil
}
