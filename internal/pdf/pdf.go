// Package pdf converts generated markdown reports to PDF.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mandolyte/mdtopdf"
)

const (
	PaperA4     = "A4"
	PaperLetter = "Letter"
)

// ConvertMarkdownToPDF writes <name>.pdf next to <name>.md and returns its absolute path.
func ConvertMarkdownToPDF(markdownPath string, paperSize string) (string, error) {
	if !strings.HasSuffix(markdownPath, ".md") {
		return "", fmt.Errorf("input file must have .md extension: %s", markdownPath)
	}
	if paperSize == "" {
		paperSize = PaperA4
	}

	content, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", fmt.Errorf("os.ReadFile(%s) > %w", markdownPath, err)
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return "", fmt.Errorf("empty markdown file: %s", markdownPath)
	}

	pdfPath := strings.TrimSuffix(markdownPath, ".md") + ".pdf"
	renderer := mdtopdf.NewPdfRenderer("P", paperSize, pdfPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process(content); err != nil {
		return "", fmt.Errorf("renderer.Process() > %w", err)
	}

	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return pdfPath, nil
	}
	return absPath, nil
}
