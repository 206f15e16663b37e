// File: internal/services/library/pdf.go
package library

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// pdfPageCount validates the file as a PDF and returns its page count.
func pdfPageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	pageCount, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	if pageCount < 1 {
		return 0, fmt.Errorf("PDF has no pages")
	}
	return pageCount, nil
}
