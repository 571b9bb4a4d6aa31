package pdffile

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is an inclusive, 1-based page range.
type Range struct {
	From int
	To   int
}

// Page returns the range covering a single page.
func Page(page int) Range {
	return Range{From: page, To: page}
}

// String formats the range in engine page-selection syntax.
func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.From, r.To)
}

// Len returns the number of pages in a well-formed range.
func (r Range) Len() int {
	if r.To < r.From {
		return 0
	}
	return r.To - r.From + 1
}

// ParseRange parses "N" or "A-B" into a Range.
// Bounds are not checked here: they depend on the document and are enforced on extraction.
func ParseRange(expr string) (Range, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Range{}, fmt.Errorf("%w: empty page range", ErrInvalidRange)
	}

	startStr, endStr, isRange := strings.Cut(expr, "-")
	if !isRange {
		page, err := strconv.Atoi(expr)
		if err != nil {
			return Range{}, fmt.Errorf("%w: invalid page %q", ErrInvalidRange, expr)
		}
		return Page(page), nil
	}

	start, err := strconv.Atoi(strings.TrimSpace(startStr))
	if err != nil {
		return Range{}, fmt.Errorf("%w: invalid start %q", ErrInvalidRange, startStr)
	}

	end, err := strconv.Atoi(strings.TrimSpace(endStr))
	if err != nil {
		return Range{}, fmt.Errorf("%w: invalid end %q", ErrInvalidRange, endStr)
	}

	return Range{From: start, To: end}, nil
}
