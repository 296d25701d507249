package extract

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	apperrors "trade-report/internal/errors"
	"trade-report/internal/report"
)

// PDFExtractor reads PDF reports. pdfcpu validates the file and supplies the
// metadata title; page text is decoded with ledongthuc/pdf, which maps
// embedded font glyphs back to text through their ToUnicode tables.
type PDFExtractor struct {
	opts Options
}

// NewPDFExtractor creates a PDF extractor.
func NewPDFExtractor(opts Options) *PDFExtractor {
	return &PDFExtractor{opts: opts}
}

// Extract decodes every page of the PDF. Pages without a text layer come back
// empty; a document that cannot be opened yields ErrUnreadableDocument.
func (e *PDFExtractor) Extract(ctx context.Context, name string, content []byte) (report.Document, error) {
	if err := ctx.Err(); err != nil {
		return report.Document{}, err
	}

	pdfCtx, err := api.ReadAndValidate(bytes.NewReader(content), model.NewDefaultConfiguration())
	if err != nil {
		return report.Document{}, apperrors.NewDataError("pdf", name, "failed to read PDF", joinUnreadable(err))
	}
	if pdfCtx.Encrypt != nil {
		return report.Document{}, apperrors.NewDataError("pdf", name, "document is encrypted", apperrors.ErrUnreadableDocument)
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return report.Document{}, apperrors.NewDataError("pdf", name, "failed to open text layer", joinUnreadable(err))
	}

	pageCount := reader.NumPage()
	if e.opts.MaxPages > 0 && pageCount > e.opts.MaxPages {
		pageCount = e.opts.MaxPages
	}

	pages := make([]string, pageCount)
	for i := range pages {
		if err := ctx.Err(); err != nil {
			return report.Document{}, err
		}
		pages[i] = pageText(reader.Page(i + 1))
	}

	return report.Document{
		Name:  filepath.Base(name),
		Title: pdfCtx.Title,
		Pages: pages,
	}, nil
}

// pageText returns the text of one page, one visual row per line. A page
// whose text layer cannot be decoded comes back empty.
func pageText(p pdf.Page) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	if p.V.IsNull() {
		return ""
	}
	if rows, err := p.GetTextByRow(); err == nil && len(rows) > 0 {
		if text := joinRows(rows); text != "" {
			return text
		}
	}
	plain, err := p.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(plain)
}

// joinRows renders rows top to bottom. Fragments of one row are separated by
// a space unless they start at the same x offset, as the pieces of a kerned
// string do.
func joinRows(rows pdf.Rows) string {
	ordered := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			ordered = append(ordered, row)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position > ordered[j].Position })

	lines := make([]string, 0, len(ordered))
	for _, row := range ordered {
		var line strings.Builder
		prevX := 0.0
		for _, t := range row.Content {
			s := strings.TrimSpace(t.S)
			if s == "" {
				continue
			}
			if line.Len() > 0 && t.X != prevX {
				line.WriteByte(' ')
			}
			line.WriteString(s)
			prevX = t.X
		}
		if line.Len() > 0 {
			lines = append(lines, line.String())
		}
	}
	return strings.Join(lines, "\n")
}

func joinUnreadable(err error) error {
	return fmt.Errorf("%w: %w", apperrors.ErrUnreadableDocument, err)
}
