package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"papergen/internal/logging"
)

// TextExtractor turns a stored upload into plain text.
type TextExtractor interface {
	Extract(path string) (string, error)
}

type Extractor struct {
	logger logging.Logger
}

func NewExtractor(logger logging.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract reads PDFs page by page and plain-text files as-is. Pages without
// extractable text are logged and skipped. Files with a missing or unknown
// extension are classified by their content.
func (e *Extractor) Extract(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return e.extractPDF(path)
	case ".txt", ".md":
		return readText(path)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: detect type of %s: %v", ErrExtractionFailure, filepath.Base(path), err)
	}
	switch {
	case mtype.Is("application/pdf"):
		return e.extractPDF(path)
	case mtype.Is("text/plain"):
		return readText(path)
	default:
		return "", InvalidInput("unsupported document type %q", mtype.String())
	}
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrExtractionFailure, filepath.Base(path), err)
	}
	return string(data), nil
}

func (e *Extractor) extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", ErrExtractionFailure, err)
	}
	defer f.Close()

	var (
		b     strings.Builder
		fonts = make(map[string]*pdf.Font)
	)
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		text, err := pageText(r.Page(i), fonts)
		if err != nil {
			e.logger.Warn("could not extract text from page", "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			e.logger.Warn("no text found on page", "page", i)
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	e.logger.Debug("extracted pdf text", "pages", total, "chars", b.Len())
	return b.String(), nil
}

// pageText recovers from parser panics on malformed content streams.
func pageText(p pdf.Page, fonts map[string]*pdf.Font) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrExtractionFailure, rec)
		}
	}()

	if p.V.IsNull() {
		return "", nil
	}
	for _, name := range p.Fonts() {
		if _, ok := fonts[name]; !ok {
			font := p.Font(name)
			fonts[name] = &font
		}
	}
	return p.GetPlainText(fonts)
}
