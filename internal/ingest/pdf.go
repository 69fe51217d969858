package ingest

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	pageBreakRe  = regexp.MustCompile(`\f`)
	blankLinesRe = regexp.MustCompile(`\n\s*\n+`)
	spaceRunRe   = regexp.MustCompile(`[ \t]+`)
)

// ExtractPDFText returns the plain text of a PDF file. Pages are separated
// by a blank line so each page chunks into at least one paragraph.
func ExtractPDFText(filePath string) (text string, err error) {
	// The pdf reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	b, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract plain text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(b); err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}

	return normalizePDFText(buf.String()), nil
}

// normalizePDFText collapses horizontal whitespace and runs of blank lines
// while keeping page and paragraph boundaries.
func normalizePDFText(text string) string {
	pages := pageBreakRe.Split(text, -1)

	cleaned := make([]string, 0, len(pages))
	for _, page := range pages {
		page = strings.ReplaceAll(page, "\r\n", "\n")
		page = spaceRunRe.ReplaceAllString(page, " ")
		page = blankLinesRe.ReplaceAllString(page, "\n\n")
		page = strings.TrimSpace(page)
		if page != "" {
			cleaned = append(cleaned, page)
		}
	}

	return strings.Join(cleaned, "\n\n")
}
