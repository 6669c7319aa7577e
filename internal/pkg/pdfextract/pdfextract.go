package pdfextract

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

var ErrEmptyDocument = errors.New("empty pdf document")

// PageCount parses the document structure and returns the number of pages.
// A document the parser cannot open is reported as an error.
func PageCount(data []byte) (n int, err error) {
	if len(data) == 0 {
		return 0, ErrEmptyDocument
	}
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("open pdf failed: %w", err)
	}
	return reader.NumPage(), nil
}
