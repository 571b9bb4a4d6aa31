package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/JaimeStill/qpdf-utils/pkg/pdffile"
	"github.com/JaimeStill/qpdf-utils/pkg/qpdf"
)

const (
	plainPDF     = "%PDF-1.7\ntrailer << /Root 1 0 R >>\n%%EOF\n"
	encryptedPDF = "%PDF-1.7\ntrailer << /Root 1 0 R /Encrypt 2 0 R >>\n%%EOF\n"
)

type engine struct {
	calls [][]string
}

func (e *engine) Run(ctx context.Context, args []string) error {
	e.calls = append(e.calls, slices.Clone(args))

	switch args[0] {
	case "--empty":
		return os.WriteFile(args[len(args)-1], []byte(plainPDF), 0644)
	case "--decrypt":
		if args[1] != "--password=secret" {
			return &qpdf.ExitError{Args: args, Status: qpdf.StatusError}
		}
		return os.WriteFile(args[3], []byte(plainPDF), 0644)
	}
	return &qpdf.ExitError{Args: args, Status: qpdf.StatusError}
}

func (e *engine) RunWithOutput(ctx context.Context, args []string) (string, error) {
	e.calls = append(e.calls, slices.Clone(args))
	return "4\n", nil
}

func setup(t *testing.T) (*cli, *engine, *bytes.Buffer, string) {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("TEMP_DIR", filepath.Join(dir, "tmp"))

	var stdout bytes.Buffer
	eng := &engine{}
	return &cli{stdout: &stdout, stderr: &bytes.Buffer{}, runner: eng}, eng, &stdout, dir
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRun_Pages(t *testing.T) {
	c, _, stdout, dir := setup(t)
	source := write(t, dir, "doc.pdf", plainPDF)

	if err := c.run(context.Background(), []string{"pages", source}); err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	if got := strings.TrimSpace(stdout.String()); got != "4" {
		t.Errorf("output = %q, want %q", got, "4")
	}
}

func TestRun_Encrypted(t *testing.T) {
	c, _, stdout, dir := setup(t)
	source := write(t, dir, "doc.pdf", encryptedPDF)

	if err := c.run(context.Background(), []string{"encrypted", source}); err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	if got := strings.TrimSpace(stdout.String()); got != "true" {
		t.Errorf("output = %q, want %q", got, "true")
	}
}

func TestRun_ExtractOutOfBounds(t *testing.T) {
	c, _, _, dir := setup(t)
	source := write(t, dir, "doc.pdf", plainPDF)

	err := c.run(context.Background(), []string{"extract", source, "3-9", filepath.Join(dir, "out.pdf")})
	if !errors.Is(err, pdffile.ErrOutOfBounds) {
		t.Errorf("run() error = %v, want ErrOutOfBounds", err)
	}
}

func TestRun_AppendInputPasswords(t *testing.T) {
	c, eng, stdout, dir := setup(t)
	source := write(t, dir, "a.pdf", plainPDF)
	plain := write(t, dir, "b.pdf", plainPDF)
	locked := write(t, dir, "c.pdf", encryptedPDF)
	target := filepath.Join(dir, "merged.pdf")

	args := []string{"append", "-input-password", "", "-input-password", "secret", target, source, plain, locked}
	if err := c.run(context.Background(), args); err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	if got := strings.TrimSpace(stdout.String()); got != target {
		t.Errorf("output = %q, want %q", got, target)
	}

	decrypts := 0
	for _, call := range eng.calls {
		if call[0] == "--decrypt" {
			decrypts++
			if call[2] != locked {
				t.Errorf("decrypted %q, want %q", call[2], locked)
			}
		}
	}
	if decrypts != 1 {
		t.Errorf("decrypt calls = %d, want 1", decrypts)
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, "tmp", "temp-*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestRun_DecryptWrongPassword(t *testing.T) {
	c, _, _, dir := setup(t)
	source := write(t, dir, "doc.pdf", encryptedPDF)

	err := c.run(context.Background(), []string{"-password", "nope", "decrypt", source, filepath.Join(dir, "out.pdf")})
	if !errors.Is(err, pdffile.ErrInvalidPassword) {
		t.Errorf("run() error = %v, want ErrInvalidPassword", err)
	}
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"rotate", "doc.pdf"}},
		{"missing args", []string{"extract", "doc.pdf"}},
		{"unknown flag", []string{"-verbose", "pages", "doc.pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _, _ := setup(t)

			if err := c.run(context.Background(), tt.args); !errors.Is(err, errUsage) {
				t.Errorf("run() error = %v, want errUsage", err)
			}
		})
	}
}

func TestReport(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantUsage bool
	}{
		{"usage error", fmt.Errorf("%w: command required", errUsage), true},
		{"command error", pdffile.ErrOutOfBounds, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			report(&buf, tt.err)

			out := buf.String()
			if got := strings.Contains(out, "page-%d.pdf"); got != tt.wantUsage {
				t.Errorf("usage printed = %v, want %v:\n%s", got, tt.wantUsage, out)
			}
			if !strings.HasSuffix(out, "error: "+tt.err.Error()+"\n") {
				t.Errorf("output = %q, want trailing error line", out)
			}
		})
	}
}

func TestRun_ConfigFile(t *testing.T) {
	c, _, _, dir := setup(t)
	source := write(t, dir, "doc.pdf", plainPDF)
	cfg := write(t, dir, "qpdf.toml", "[documents]\nmax_input_size = \"10B\"\n")

	err := c.run(context.Background(), []string{"-config", cfg, "pages", source})
	if !errors.Is(err, pdffile.ErrFileTooLarge) {
		t.Errorf("run() error = %v, want ErrFileTooLarge", err)
	}
}
