package pdffile_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/JaimeStill/qpdf-utils/pkg/pdffile"
	"github.com/JaimeStill/qpdf-utils/pkg/qpdf"
)

func TestOpen_FileNotFound(t *testing.T) {
	f := newFixture(t, 1)

	_, err := pdffile.Open(filepath.Join(f.dir, "missing.pdf"), f.options(""))
	if !errors.Is(err, pdffile.ErrFileNotFound) {
		t.Errorf("Open() error = %v, want ErrFileNotFound", err)
	}
}

func TestOpen_BadFileType(t *testing.T) {
	f := newFixture(t, 1)
	path := writeFile(t, f.dir, "notes.txt", "just some text")

	_, err := pdffile.Open(path, f.options(""))
	if !errors.Is(err, pdffile.ErrBadFileType) {
		t.Errorf("Open() error = %v, want ErrBadFileType", err)
	}

	if len(f.engine.calls) != 0 {
		t.Errorf("engine calls = %d, want 0", len(f.engine.calls))
	}
}

func TestOpen_FileTooLarge(t *testing.T) {
	f := newFixture(t, 1)
	path := writeFile(t, f.dir, "doc.pdf", plainPDF)

	opts := f.options("")
	opts.MaxSize = 10

	_, err := pdffile.Open(path, opts)
	if !errors.Is(err, pdffile.ErrFileTooLarge) {
		t.Errorf("Open() error = %v, want ErrFileTooLarge", err)
	}
}

func TestIsEncrypted_Cached(t *testing.T) {
	f := newFixture(t, 1)
	doc := f.open(t, "doc.pdf", encryptedPDF, "secret")

	encrypted, err := doc.IsEncrypted()
	if err != nil {
		t.Fatalf("IsEncrypted() failed: %v", err)
	}
	if !encrypted {
		t.Fatal("IsEncrypted() = false, want true")
	}

	if err := os.WriteFile(doc.Path(), []byte(plainPDF), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	encrypted, err = doc.IsEncrypted()
	if err != nil {
		t.Fatalf("IsEncrypted() failed: %v", err)
	}
	if !encrypted {
		t.Error("IsEncrypted() recomputed after the file changed, want cached true")
	}
}

func TestPages_Cached(t *testing.T) {
	f := newFixture(t, 5)
	doc := f.open(t, "doc.pdf", plainPDF, "")

	for range 2 {
		pages, err := doc.Pages(context.Background())
		if err != nil {
			t.Fatalf("Pages() failed: %v", err)
		}
		if pages != 5 {
			t.Errorf("Pages() = %d, want 5", pages)
		}
	}

	if n := f.engine.count("--show-npages"); n != 1 {
		t.Errorf("page count invocations = %d, want 1", n)
	}

	want := []string{"--show-npages", doc.Path()}
	if !reflect.DeepEqual(f.engine.calls[0], want) {
		t.Errorf("args = %v, want %v", f.engine.calls[0], want)
	}
}

func TestPages_WithPassword(t *testing.T) {
	f := newFixture(t, 2)
	doc := f.open(t, "doc.pdf", encryptedPDF, "secret")

	if _, err := doc.Pages(context.Background()); err != nil {
		t.Fatalf("Pages() failed: %v", err)
	}

	want := []string{"--show-npages", "--password=secret", doc.Path()}
	if !reflect.DeepEqual(f.engine.last(), want) {
		t.Errorf("args = %v, want %v", f.engine.last(), want)
	}
}

func TestPages_WrongPassword(t *testing.T) {
	tests := []struct {
		name  string
		call  func(d *pdffile.Document, dir string) error
		wants string
	}{
		{"pages", func(d *pdffile.Document, dir string) error {
			_, err := d.Pages(context.Background())
			return err
		}, "Pages"},
		{"extract range", func(d *pdffile.Document, dir string) error {
			_, err := d.ExtractPageRange(context.Background(), pdffile.Page(1), filepath.Join(dir, "out.pdf"))
			return err
		}, "ExtractPageRange"},
		{"split", func(d *pdffile.Document, dir string) error {
			_, err := d.ExtractPages(context.Background(), filepath.Join(dir, "page-%d.pdf"))
			return err
		}, "ExtractPages"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 2)
			doc := f.open(t, "doc.pdf", encryptedPDF, "wrong")

			if err := tt.call(doc, f.dir); !errors.Is(err, pdffile.ErrInvalidPassword) {
				t.Errorf("%s() error = %v, want ErrInvalidPassword", tt.wants, err)
			}
		})
	}
}

func TestPages_Undetermined(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{"zero", "0\n"},
		{"empty", ""},
		{"garbage", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 0)
			f.engine.pageOutput = &tt.output
			doc := f.open(t, "doc.pdf", plainPDF, "")

			_, err := doc.Pages(context.Background())
			if !errors.Is(err, pdffile.ErrProcessing) {
				t.Errorf("Pages() error = %v, want ErrProcessing", err)
			}
		})
	}
}

func TestExtractPageRange(t *testing.T) {
	f := newFixture(t, 5)
	doc := f.open(t, "doc.pdf", plainPDF, "")
	target := filepath.Join(f.dir, "out.pdf")

	got, err := doc.ExtractPageRange(context.Background(), pdffile.Range{From: 2, To: 4}, target)
	if err != nil {
		t.Fatalf("ExtractPageRange() failed: %v", err)
	}

	if got != target {
		t.Errorf("ExtractPageRange() = %q, want %q", got, target)
	}

	want := []string{"--empty", "--pages", doc.Path(), "2-4", "--", target}
	if !reflect.DeepEqual(f.engine.last(), want) {
		t.Errorf("args = %v, want %v", f.engine.last(), want)
	}
}

func TestExtractPageRange_OutOfBounds(t *testing.T) {
	tests := []struct {
		name string
		r    pdffile.Range
	}{
		{"from zero", pdffile.Range{From: 0, To: 2}},
		{"negative", pdffile.Range{From: -1, To: 1}},
		{"beyond last page", pdffile.Range{From: 4, To: 6}},
		{"reversed", pdffile.Range{From: 3, To: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 5)
			doc := f.open(t, "doc.pdf", plainPDF, "")

			if _, err := doc.Pages(context.Background()); err != nil {
				t.Fatalf("Pages() failed: %v", err)
			}
			before := len(f.engine.calls)

			_, err := doc.ExtractPageRange(context.Background(), tt.r, filepath.Join(f.dir, "out.pdf"))
			if !errors.Is(err, pdffile.ErrOutOfBounds) {
				t.Errorf("ExtractPageRange() error = %v, want ErrOutOfBounds", err)
			}

			if len(f.engine.calls) != before {
				t.Errorf("engine invoked %d times, want 0", len(f.engine.calls)-before)
			}
		})
	}
}

func TestExtractPageRange_ZeroBytes(t *testing.T) {
	f := newFixture(t, 5)
	f.engine.emptyOutput = true
	doc := f.open(t, "doc.pdf", plainPDF, "")

	_, err := doc.ExtractPageRange(context.Background(), pdffile.Range{From: 1, To: 1}, filepath.Join(f.dir, "out.pdf"))
	if !errors.Is(err, pdffile.ErrProcessing) {
		t.Errorf("ExtractPageRange() error = %v, want ErrProcessing", err)
	}
}

func TestExtractPageRange_EncryptedSource(t *testing.T) {
	f := newFixture(t, 3)
	doc := f.open(t, "doc.pdf", encryptedPDF, "secret")
	target := filepath.Join(f.dir, "out.pdf")

	if _, err := doc.ExtractPageRange(context.Background(), pdffile.Range{From: 1, To: 2}, target); err != nil {
		t.Fatalf("ExtractPageRange() failed: %v", err)
	}

	decrypted := doc.DecryptedFile()
	if decrypted == "" {
		t.Fatal("DecryptedFile() is empty after extracting from an encrypted source")
	}

	want := []string{"--empty", "--pages", decrypted, "1-2", "--", target}
	if !reflect.DeepEqual(f.engine.last(), want) {
		t.Errorf("args = %v, want %v", f.engine.last(), want)
	}
}

func TestExtractPage(t *testing.T) {
	f := newFixture(t, 5)
	doc := f.open(t, "doc.pdf", plainPDF, "")
	target := filepath.Join(f.dir, "page.pdf")

	if _, err := doc.ExtractPage(context.Background(), 3, target); err != nil {
		t.Fatalf("ExtractPage() failed: %v", err)
	}

	want := []string{"--empty", "--pages", doc.Path(), "3-3", "--", target}
	if !reflect.DeepEqual(f.engine.last(), want) {
		t.Errorf("args = %v, want %v", f.engine.last(), want)
	}

	if _, err := doc.ExtractPage(context.Background(), 6, target); !errors.Is(err, pdffile.ErrOutOfBounds) {
		t.Errorf("ExtractPage(6) error = %v, want ErrOutOfBounds", err)
	}
}

func TestExtractPages(t *testing.T) {
	f := newFixture(t, 3)
	doc := f.open(t, "doc.pdf", plainPDF, "")
	template := filepath.Join(f.dir, "page-%d.pdf")

	got, err := doc.ExtractPages(context.Background(), template)
	if err != nil {
		t.Fatalf("ExtractPages() failed: %v", err)
	}

	want := []string{
		filepath.Join(f.dir, "page-1.pdf"),
		filepath.Join(f.dir, "page-2.pdf"),
		filepath.Join(f.dir, "page-3.pdf"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractPages() = %v, want %v", got, want)
	}

	if n := f.engine.count("--empty"); n != 3 {
		t.Errorf("extract invocations = %d, want 3", n)
	}

	for i, path := range want {
		page := fmt.Sprint(i + 1)
		call := f.engine.calls[i+1]
		wantArgs := []string{"--empty", "--pages", doc.Path(), page, "--", path}
		if !reflect.DeepEqual(call, wantArgs) {
			t.Errorf("call %d = %v, want %v", i, call, wantArgs)
		}
	}
}

func TestExtractPages_ZeroBytes(t *testing.T) {
	f := newFixture(t, 2)
	f.engine.emptyOutput = true
	doc := f.open(t, "doc.pdf", plainPDF, "")

	_, err := doc.ExtractPages(context.Background(), filepath.Join(f.dir, "page-%d.pdf"))
	if !errors.Is(err, pdffile.ErrProcessing) {
		t.Errorf("ExtractPages() error = %v, want ErrProcessing", err)
	}
}

func TestExtractPages_InvalidTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
	}{
		{"no verb", "page.pdf"},
		{"string verb", "page-%s.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 2)
			doc := f.open(t, "doc.pdf", plainPDF, "")

			_, err := doc.ExtractPages(context.Background(), filepath.Join(f.dir, tt.template))
			if !errors.Is(err, pdffile.ErrInvalidTemplate) {
				t.Errorf("ExtractPages() error = %v, want ErrInvalidTemplate", err)
			}

			if len(f.engine.calls) != 0 {
				t.Errorf("engine calls = %d, want 0", len(f.engine.calls))
			}
		})
	}
}

func TestFile_Unencrypted(t *testing.T) {
	f := newFixture(t, 1)
	doc := f.open(t, "doc.pdf", plainPDF, "")

	got, err := doc.File(context.Background())
	if err != nil {
		t.Fatalf("File() failed: %v", err)
	}

	if got != doc.Path() {
		t.Errorf("File() = %q, want source %q", got, doc.Path())
	}

	if len(doc.TempFiles()) != 0 {
		t.Errorf("TempFiles() = %v, want none", doc.TempFiles())
	}
}

func TestFile_Encrypted(t *testing.T) {
	f := newFixture(t, 1)
	doc := f.open(t, "doc.pdf", encryptedPDF, "secret")

	first, err := doc.File(context.Background())
	if err != nil {
		t.Fatalf("File() failed: %v", err)
	}

	second, err := doc.File(context.Background())
	if err != nil {
		t.Fatalf("File() failed: %v", err)
	}

	if first == second {
		t.Error("File() reused a decrypted copy, want a fresh temp file per call")
	}

	if doc.DecryptedFile() != second {
		t.Errorf("DecryptedFile() = %q, want latest %q", doc.DecryptedFile(), second)
	}

	if got := doc.TempFiles(); !reflect.DeepEqual(got, []string{first, second}) {
		t.Errorf("TempFiles() = %v, want %v", got, []string{first, second})
	}

	want := []string{"--decrypt", "--password=secret", doc.Path(), second}
	if !reflect.DeepEqual(f.engine.last(), want) {
		t.Errorf("args = %v, want %v", f.engine.last(), want)
	}
}

func TestFile_WrongPasswordKeepsTempTracked(t *testing.T) {
	f := newFixture(t, 1)
	doc := f.open(t, "doc.pdf", encryptedPDF, "wrong")

	_, err := doc.File(context.Background())
	if !errors.Is(err, pdffile.ErrInvalidPassword) {
		t.Fatalf("File() error = %v, want ErrInvalidPassword", err)
	}

	if len(doc.TempFiles()) != 1 {
		t.Errorf("TempFiles() = %v, want the failed temp still tracked", doc.TempFiles())
	}
}

func TestDecrypt_RoundTrip(t *testing.T) {
	f := newFixture(t, 1)
	doc := f.open(t, "doc.pdf", encryptedPDF, "")
	target := filepath.Join(f.dir, "plain.pdf")

	got, err := doc.Decrypt(context.Background(), "secret", target)
	if err != nil {
		t.Fatalf("Decrypt() failed: %v", err)
	}
	if got != target {
		t.Errorf("Decrypt() = %q, want %q", got, target)
	}

	plain, err := pdffile.Open(target, f.options(""))
	if err != nil {
		t.Fatalf("Open() decrypted copy failed: %v", err)
	}

	encrypted, err := plain.IsEncrypted()
	if err != nil {
		t.Fatalf("IsEncrypted() failed: %v", err)
	}
	if encrypted {
		t.Error("decrypted copy IsEncrypted() = true, want false")
	}
}

func TestDecrypt_InPlace(t *testing.T) {
	f := newFixture(t, 1)
	doc := f.open(t, "doc.pdf", encryptedPDF, "")

	if encrypted, _ := doc.IsEncrypted(); !encrypted {
		t.Fatal("IsEncrypted() = false before decrypt, want true")
	}

	got, err := doc.Decrypt(context.Background(), "secret", "")
	if err != nil {
		t.Fatalf("Decrypt() failed: %v", err)
	}
	if got != doc.Path() {
		t.Errorf("Decrypt() = %q, want source %q", got, doc.Path())
	}

	want := []string{"--decrypt", "--password=secret", doc.Path(), "--replace-input"}
	if !reflect.DeepEqual(f.engine.last(), want) {
		t.Errorf("args = %v, want %v", f.engine.last(), want)
	}

	encrypted, err := doc.IsEncrypted()
	if err != nil {
		t.Fatalf("IsEncrypted() failed: %v", err)
	}
	if encrypted {
		t.Error("IsEncrypted() = true after in-place decrypt, want false")
	}
}

func TestDecrypt_Failures(t *testing.T) {
	tests := []struct {
		name            string
		password        string
		status          int
		invalidPassword bool
	}{
		{"wrong password", "nope", 0, true},
		{"authentication status", "secret", qpdf.StatusError, true},
		{"generic failure", "secret", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 1)
			f.engine.decryptStatus = tt.status
			doc := f.open(t, "doc.pdf", encryptedPDF, "")

			_, err := doc.Decrypt(context.Background(), tt.password, filepath.Join(f.dir, "out.pdf"))
			if err == nil {
				t.Fatal("Decrypt() succeeded, want error")
			}

			if errors.Is(err, pdffile.ErrInvalidPassword) != tt.invalidPassword {
				t.Errorf("errors.Is(ErrInvalidPassword) = %v, want %v (err = %v)",
					!tt.invalidPassword, tt.invalidPassword, err)
			}

			if _, ok := qpdf.StatusOf(err); !ok {
				t.Error("StatusOf() found no exit status on a decrypt failure")
			}
		})
	}
}

func TestEncrypt(t *testing.T) {
	f := newFixture(t, 1)
	doc := f.open(t, "doc.pdf", plainPDF, "")
	target := filepath.Join(f.dir, "locked.pdf")

	opts := pdffile.EncryptOptions{UserPassword: "user", OwnerPassword: "owner", KeyLength: 256}
	got, err := doc.Encrypt(context.Background(), opts, target)
	if err != nil {
		t.Fatalf("Encrypt() failed: %v", err)
	}
	if got != target {
		t.Errorf("Encrypt() = %q, want %q", got, target)
	}

	want := []string{"--encrypt", "user", "owner", "256", "--", doc.Path(), target}
	if !reflect.DeepEqual(f.engine.last(), want) {
		t.Errorf("args = %v, want %v", f.engine.last(), want)
	}
}

func TestEncrypt_InPlace(t *testing.T) {
	f := newFixture(t, 1)
	doc := f.open(t, "doc.pdf", plainPDF, "")

	if encrypted, _ := doc.IsEncrypted(); encrypted {
		t.Fatal("IsEncrypted() = true before encrypt, want false")
	}

	opts := pdffile.EncryptOptions{UserPassword: "u", OwnerPassword: "o", KeyLength: 128}
	got, err := doc.Encrypt(context.Background(), opts, "")
	if err != nil {
		t.Fatalf("Encrypt() failed: %v", err)
	}
	if got != doc.Path() {
		t.Errorf("Encrypt() = %q, want source %q", got, doc.Path())
	}

	if encrypted, _ := doc.IsEncrypted(); !encrypted {
		t.Error("IsEncrypted() = false after in-place encrypt, want true")
	}
}

func TestEncrypt_Failures(t *testing.T) {
	tests := []struct {
		name       string
		keyLength  int
		status     int
		wantErr    error
		wantStatus bool
	}{
		{"processing status", 256, qpdf.StatusError, pdffile.ErrProcessing, true},
		{"generic failure", 256, 1, nil, true},
		{"invalid key length", 64, 0, pdffile.ErrInvalidKeyLength, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 1)
			f.engine.encryptStatus = tt.status
			doc := f.open(t, "doc.pdf", plainPDF, "")

			opts := pdffile.EncryptOptions{UserPassword: "u", OwnerPassword: "o", KeyLength: tt.keyLength}
			_, err := doc.Encrypt(context.Background(), opts, filepath.Join(f.dir, "out.pdf"))
			if err == nil {
				t.Fatal("Encrypt() succeeded, want error")
			}

			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Encrypt() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && errors.Is(err, pdffile.ErrProcessing) {
				t.Errorf("Encrypt() error = %v, want generic engine failure", err)
			}

			if _, ok := qpdf.StatusOf(err); ok != tt.wantStatus {
				t.Errorf("StatusOf() ok = %v, want %v", ok, tt.wantStatus)
			}
		})
	}
}

func TestAppendFiles(t *testing.T) {
	f := newFixture(t, 2)
	doc := f.open(t, "doc.pdf", plainPDF, "")
	plain := writeFile(t, f.dir, "plain.pdf", plainPDF)
	locked := writeFile(t, f.dir, "locked.pdf", encryptedPDF)
	target := filepath.Join(f.dir, "merged.pdf")

	got, err := doc.AppendFiles(context.Background(), target,
		pdffile.Input{Path: plain},
		pdffile.Input{Path: locked, Password: "secret"},
	)
	if err != nil {
		t.Fatalf("AppendFiles() failed: %v", err)
	}
	if got != target {
		t.Errorf("AppendFiles() = %q, want %q", got, target)
	}

	temps := doc.TempFiles()
	if len(temps) != 1 {
		t.Fatalf("TempFiles() = %v, want one decrypted input", temps)
	}

	decryptArgs := []string{"--decrypt", "--password=secret", locked, temps[0]}
	if !reflect.DeepEqual(f.engine.calls[0], decryptArgs) {
		t.Errorf("decrypt args = %v, want %v", f.engine.calls[0], decryptArgs)
	}

	want := []string{"--empty", "--pages", doc.Path(), plain, temps[0], "--", target}
	if !reflect.DeepEqual(f.engine.last(), want) {
		t.Errorf("args = %v, want %v", f.engine.last(), want)
	}
}

func TestAppendFiles_InvalidInputs(t *testing.T) {
	f := newFixture(t, 2)
	doc := f.open(t, "doc.pdf", plainPDF, "")
	text := writeFile(t, f.dir, "notes.txt", "not a pdf")

	tests := []struct {
		name    string
		input   pdffile.Input
		wantErr error
	}{
		{"missing", pdffile.Input{Path: filepath.Join(f.dir, "missing.pdf")}, pdffile.ErrFileNotFound},
		{"not a pdf", pdffile.Input{Path: text}, pdffile.ErrBadFileType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := doc.AppendFiles(context.Background(), filepath.Join(f.dir, "out.pdf"), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AppendFiles() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if len(f.engine.calls) != 0 {
		t.Errorf("engine calls = %d, want 0", len(f.engine.calls))
	}
}

func TestAppendFiles_InputWrongPassword(t *testing.T) {
	f := newFixture(t, 2)
	doc := f.open(t, "doc.pdf", plainPDF, "")
	locked := writeFile(t, f.dir, "locked.pdf", encryptedPDF)

	_, err := doc.AppendFiles(context.Background(), filepath.Join(f.dir, "out.pdf"),
		pdffile.Input{Path: locked, Password: "wrong"},
	)
	if !errors.Is(err, pdffile.ErrInvalidPassword) {
		t.Errorf("AppendFiles() error = %v, want ErrInvalidPassword", err)
	}
}

func TestCleanup_Twice(t *testing.T) {
	f := newFixture(t, 1)
	doc := f.open(t, "doc.pdf", encryptedPDF, "secret")

	for range 2 {
		if _, err := doc.File(context.Background()); err != nil {
			t.Fatalf("File() failed: %v", err)
		}
	}

	temps := doc.TempFiles()
	if len(temps) != 2 {
		t.Fatalf("TempFiles() = %v, want 2", temps)
	}

	if err := doc.Cleanup(); err != nil {
		t.Fatalf("Cleanup() failed: %v", err)
	}

	for _, path := range temps {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("temp file %s still exists after Cleanup()", path)
		}
	}

	if len(doc.TempFiles()) != 0 {
		t.Errorf("TempFiles() = %v after Cleanup(), want none", doc.TempFiles())
	}
	if doc.DecryptedFile() != "" {
		t.Errorf("DecryptedFile() = %q after Cleanup(), want empty", doc.DecryptedFile())
	}

	if err := doc.Cleanup(); err != nil {
		t.Errorf("second Cleanup() = %v, want nil", err)
	}

	if _, err := os.Stat(doc.Path()); err != nil {
		t.Errorf("Cleanup() touched the source file: %v", err)
	}
}

func TestWith_CleansUpOnError(t *testing.T) {
	f := newFixture(t, 1)
	path := writeFile(t, f.dir, "doc.pdf", encryptedPDF)
	failure := errors.New("caller failure")

	var temps []string
	err := pdffile.With(path, f.options("secret"), func(doc *pdffile.Document) error {
		if _, err := doc.File(context.Background()); err != nil {
			return err
		}
		temps = doc.TempFiles()
		return failure
	})

	if !errors.Is(err, failure) {
		t.Errorf("With() error = %v, want caller failure", err)
	}

	if len(temps) != 1 {
		t.Fatalf("temps = %v, want 1", temps)
	}
	if _, err := os.Stat(temps[0]); !os.IsNotExist(err) {
		t.Error("With() left the decrypted temp file on disk")
	}
}

func TestWith_OpenFailure(t *testing.T) {
	f := newFixture(t, 1)
	called := false

	err := pdffile.With(filepath.Join(f.dir, "missing.pdf"), f.options(""), func(*pdffile.Document) error {
		called = true
		return nil
	})

	if !errors.Is(err, pdffile.ErrFileNotFound) {
		t.Errorf("With() error = %v, want ErrFileNotFound", err)
	}
	if called {
		t.Error("With() invoked fn after Open failed")
	}
}
