// Package extract turns uploaded report files into page texts for the parser.
package extract

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	apperrors "trade-report/internal/errors"
	"trade-report/internal/report"
)

// Extractor reads the text layer of one document.
type Extractor interface {
	Extract(ctx context.Context, name string, content []byte) (report.Document, error)
}

// ForFile returns the extractor that handles the file's extension.
func ForFile(name string, opts Options) (Extractor, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return NewPDFExtractor(opts), nil
	case ".txt":
		return NewTextExtractor(opts), nil
	}
	return nil, apperrors.Wrapf(apperrors.ErrUnsupportedFormat, "file %q", filepath.Base(name))
}

// Options controls extraction.
type Options struct {
	MaxPages int // 0 reads every page
}

func (o Options) limit(pages []string) []string {
	if o.MaxPages > 0 && len(pages) > o.MaxPages {
		return pages[:o.MaxPages]
	}
	return pages
}

// TextExtractor reads plain-text dumps of a report. Pages are separated by
// form feeds, as written by pdftotext.
type TextExtractor struct {
	opts Options
}

// NewTextExtractor creates a plain-text extractor.
func NewTextExtractor(opts Options) *TextExtractor {
	return &TextExtractor{opts: opts}
}

// Extract splits content into pages. A trailing empty page is dropped.
func (e *TextExtractor) Extract(ctx context.Context, name string, content []byte) (report.Document, error) {
	if err := ctx.Err(); err != nil {
		return report.Document{}, err
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return report.Document{}, apperrors.NewDataError("text", name, "document is empty", apperrors.ErrUnreadableDocument)
	}

	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	pages := strings.Split(text, "\f")
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}

	return report.Document{
		Name:  filepath.Base(name),
		Pages: e.opts.limit(pages),
	}, nil
}
