package pdffile_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/qpdf-utils/pkg/pdffile"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		want    pdffile.Range
		wantErr error
	}{
		{"single page", "3", pdffile.Range{From: 3, To: 3}, nil},
		{"range", "2-4", pdffile.Range{From: 2, To: 4}, nil},
		{"spaces", " 2 - 4 ", pdffile.Range{From: 2, To: 4}, nil},
		{"zero start parses", "0-2", pdffile.Range{From: 0, To: 2}, nil},
		{"reversed parses", "4-2", pdffile.Range{From: 4, To: 2}, nil},
		{"empty", "", pdffile.Range{}, pdffile.ErrInvalidRange},
		{"letters", "a-b", pdffile.Range{}, pdffile.ErrInvalidRange},
		{"open end", "5-", pdffile.Range{}, pdffile.ErrInvalidRange},
		{"list", "1,3", pdffile.Range{}, pdffile.ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pdffile.ParseRange(tt.expr)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseRange(%q) error = %v, want %v", tt.expr, err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseRange(%q) failed: %v", tt.expr, err)
			}

			if got != tt.want {
				t.Errorf("ParseRange(%q) = %+v, want %+v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestRange_String(t *testing.T) {
	if got := pdffile.Page(7).String(); got != "7-7" {
		t.Errorf("Page(7).String() = %q, want %q", got, "7-7")
	}

	if got := (pdffile.Range{From: 2, To: 5}).Len(); got != 4 {
		t.Errorf("Len() = %d, want 4", got)
	}

	if got := (pdffile.Range{From: 5, To: 2}).Len(); got != 0 {
		t.Errorf("reversed Len() = %d, want 0", got)
	}
}
