// Package intake validates uploaded documents before anything is written to storage.
package intake

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gabriel-vasile/mimetype"

	"docintake/internal/pkg/pdfextract"
	"docintake/internal/tenant"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrEmptyFile           = errors.New("file is empty")
)

// family is the MIME ancestor the sniffed content must descend from for each extension.
var family = map[string]string{
	"txt":  "text/plain",
	"csv":  "text/plain",
	"pdf":  "application/pdf",
	"docx": "application/zip",
	"pptx": "application/zip",
	"xlsx": "application/zip",
	"ppt":  "application/x-ole-storage",
}

// Inspection is what the validator learned about an accepted file.
type Inspection struct {
	Extension   string
	ContentType string
	Pages       int
}

type Validator struct {
	maxBytes int64
}

// NewValidator caps uploads at maxBytes; zero or less disables the cap.
func NewValidator(maxBytes int64) *Validator {
	return &Validator{maxBytes: maxBytes}
}

// AllowedExtensions lists the accepted extensions in sorted order.
func AllowedExtensions() []string {
	out := make([]string, 0, len(family))
	for ext := range family {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func (v *Validator) Validate(filename string, data []byte) (*Inspection, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if v.maxBytes > 0 && int64(len(data)) > v.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, len(data), v.maxBytes)
	}

	ext := tenant.Extension(filename)
	want, ok := family[ext]
	if !ok {
		return nil, fmt.Errorf("%w: extension %q", ErrUnsupportedFileType, ext)
	}

	detected := mimetype.Detect(data)
	if !descendsFrom(detected, want) {
		return nil, fmt.Errorf("%w: %s content does not match .%s", ErrUnsupportedFileType, detected.String(), ext)
	}

	inspection := &Inspection{Extension: ext, ContentType: detected.String()}
	if ext == "pdf" {
		pages, err := pdfextract.PageCount(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFileType, err)
		}
		inspection.Pages = pages
	}
	return inspection, nil
}

func descendsFrom(m *mimetype.MIME, want string) bool {
	for cur := m; cur != nil; cur = cur.Parent() {
		if cur.Is(want) {
			return true
		}
	}
	return false
}
