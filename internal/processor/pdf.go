// pdf.go - Render the first page of a PDF receipt as an image

package processor

import (
	"errors"
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// ErrEmptyPDF is returned for a PDF with no pages
var ErrEmptyPDF = errors.New("pdf has no pages")

// pdfRenderDPI is a 2x zoom over the 72 dpi PDF user space
const pdfRenderDPI = 144

// RenderPDFFirstPage returns the first page as PNG bytes
func RenderPDFFirstPage(data []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, ErrEmptyPDF
	}

	png, err := doc.ImagePNG(0, pdfRenderDPI)
	if err != nil {
		return nil, fmt.Errorf("failed to render PDF page: %w", err)
	}
	return png, nil
}
