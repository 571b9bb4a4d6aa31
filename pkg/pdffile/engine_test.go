package pdffile_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/JaimeStill/qpdf-utils/pkg/pdffile"
	"github.com/JaimeStill/qpdf-utils/pkg/qpdf"
	"github.com/JaimeStill/qpdf-utils/pkg/tempfile"
)

const (
	plainPDF     = "%PDF-1.7\n1 0 obj << /Type /Catalog >> endobj\ntrailer << /Root 1 0 R >>\n%%EOF\n"
	encryptedPDF = "%PDF-1.7\n1 0 obj << /Type /Catalog >> endobj\ntrailer << /Root 1 0 R /Encrypt 2 0 R >>\n%%EOF\n"
)

// fakeEngine stands in for qpdf. It records every invocation and writes plausible
// output files for the argument shapes the Document produces.
type fakeEngine struct {
	pages         int
	pageOutput    *string
	password      string
	emptyOutput   bool
	encryptStatus int
	decryptStatus int
	calls         [][]string
}

func (f *fakeEngine) Run(ctx context.Context, args []string) error {
	f.calls = append(f.calls, slices.Clone(args))

	switch args[0] {
	case "--empty":
		target := args[len(args)-1]
		content := "%PDF-1.7\n% " + strings.Join(args[2:len(args)-2], " ") + "\n"
		if f.emptyOutput {
			content = ""
		}
		return os.WriteFile(target, []byte(content), 0644)

	case "--decrypt":
		if f.decryptStatus != 0 {
			return &qpdf.ExitError{Args: args, Status: f.decryptStatus}
		}
		if strings.TrimPrefix(args[1], "--password=") != f.password {
			return &qpdf.ExitError{Args: args, Status: qpdf.StatusError, Stderr: "invalid password"}
		}
		return os.WriteFile(output(args[2], args[3]), []byte(plainPDF), 0644)

	case "--encrypt":
		if f.encryptStatus != 0 {
			return &qpdf.ExitError{Args: args, Status: f.encryptStatus}
		}
		return os.WriteFile(output(args[5], args[6]), []byte(encryptedPDF), 0644)
	}

	return &qpdf.ExitError{Args: args, Status: qpdf.StatusError, Stderr: "unknown arguments"}
}

func (f *fakeEngine) RunWithOutput(ctx context.Context, args []string) (string, error) {
	f.calls = append(f.calls, slices.Clone(args))

	if args[0] != "--show-npages" {
		return "", &qpdf.ExitError{Args: args, Status: qpdf.StatusError}
	}
	if pw, ok := strings.CutPrefix(args[1], "--password="); ok && pw != f.password {
		return "", &qpdf.ExitError{Args: args, Status: qpdf.StatusError, Stderr: "invalid password"}
	}
	if f.pageOutput != nil {
		return *f.pageOutput, nil
	}
	return strconv.Itoa(f.pages) + "\n", nil
}

// count returns how many recorded invocations started with flag.
func (f *fakeEngine) count(flag string) int {
	n := 0
	for _, call := range f.calls {
		if call[0] == flag {
			n++
		}
	}
	return n
}

func (f *fakeEngine) last() []string {
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

func output(source, target string) string {
	if target == "--replace-input" {
		return source
	}
	return target
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

type fixture struct {
	dir    string
	engine *fakeEngine
	temp   *tempfile.Store
}

func newFixture(t *testing.T, pages int) *fixture {
	t.Helper()

	temp, err := tempfile.New(&tempfile.Config{Dir: filepath.Join(t.TempDir(), "temp")}, testLogger())
	if err != nil {
		t.Fatalf("tempfile.New() failed: %v", err)
	}

	return &fixture{
		dir:    t.TempDir(),
		engine: &fakeEngine{pages: pages, password: "secret"},
		temp:   temp,
	}
}

func (f *fixture) options(password string) pdffile.Options {
	return pdffile.Options{
		Runner:   f.engine,
		Password: password,
		Temp:     f.temp,
		Logger:   testLogger(),
	}
}

func (f *fixture) open(t *testing.T, name, content, password string) *pdffile.Document {
	t.Helper()

	doc, err := pdffile.Open(writeFile(t, f.dir, name, content), f.options(password))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { doc.Cleanup() })
	return doc
}
