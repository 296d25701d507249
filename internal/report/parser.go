// Package report turns the text layer of MT4/MT5 trade reports into section
// summaries, derived metrics and individual trade records.
package report

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "trade-report/internal/errors"
	"trade-report/internal/models"
)

const (
	// DefaultTitle names a report whose metadata and first page carry no title.
	DefaultTitle = "Trade Report MT5"

	maxTitleLength = 180
)

// Document is the extracted text of one report. Pages hold one entry per
// physical page in document order.
type Document struct {
	Name  string
	Title string
	Pages []string
}

// PageCount returns the number of pages in the document.
func (d Document) PageCount() int {
	return len(d.Pages)
}

// Text joins all pages with newlines, keeping line breaks inside pages.
func (d Document) Text() string {
	return strings.Join(d.Pages, "\n")
}

// Config controls a Parser.
type Config struct {
	ExcerptLength   int
	SourceTag       string
	ClusterRecovery bool
	Now             func() time.Time
}

// DefaultConfig returns the default parser configuration.
func DefaultConfig() Config {
	return Config{
		ExcerptLength:   DefaultExcerptLength,
		SourceTag:       models.SourceImport,
		ClusterRecovery: true,
		Now:             time.Now,
	}
}

// Parser parses report documents. It holds no per-document state and is safe
// for concurrent use.
type Parser struct {
	cfg      Config
	recovery []RecoveryStrategy
	logger   zerolog.Logger
}

// NewParser creates a parser. Zero config fields fall back to their defaults.
func NewParser(cfg Config, logger zerolog.Logger) *Parser {
	defaults := DefaultConfig()
	if cfg.ExcerptLength <= 0 {
		cfg.ExcerptLength = defaults.ExcerptLength
	}
	if cfg.SourceTag == "" {
		cfg.SourceTag = defaults.SourceTag
	}
	if cfg.Now == nil {
		cfg.Now = defaults.Now
	}

	p := &Parser{cfg: cfg, logger: logger}
	if cfg.ClusterRecovery {
		p.recovery = []RecoveryStrategy{CompositeClusterStrategy{}}
	}
	return p
}

// ParseSummary builds the section summary and derived metrics of a report.
// It never fails: missing values are left empty.
func (p *Parser) ParseSummary(doc Document) models.SummaryReport {
	title := ResolveTitle(doc.Title, doc.Pages)
	sections := BuildSections(doc.Pages, p.cfg.ExcerptLength)
	trades := ExtractTrades(doc.Text())

	derived := Derive(sections, title, trades, DeriveOptions{
		Recovery: p.recovery,
		Now:      p.cfg.Now,
		Logger:   p.logger,
	})

	found := 0
	for _, s := range sections {
		found += len(s.Metrics)
	}
	p.logger.Debug().
		Str("document", doc.Name).
		Int("pages", doc.PageCount()).
		Int("metrics", found).
		Int("trades", len(trades)).
		Msg("Parsed report summary")

	return models.SummaryReport{
		ReportTitle: title,
		PageCount:   doc.PageCount(),
		Sections:    sections,
		Derived:     derived,
	}
}

// ParseTrades extracts the trade records of a report. It returns
// ErrNoTradesFound when no line parses as a trade.
func (p *Parser) ParseTrades(doc Document) ([]models.TradeRecord, error) {
	trades := ExtractTrades(doc.Text())
	if len(trades) == 0 {
		return nil, apperrors.NewDataError("trades", doc.Name,
			"no trade lines recognised; export the detailed trade history report and upload that instead",
			apperrors.ErrNoTradesFound)
	}
	for i := range trades {
		trades[i].Source = p.cfg.SourceTag
	}

	p.logger.Debug().
		Str("document", doc.Name).
		Int("trades", len(trades)).
		Msg("Parsed report trades")
	return trades, nil
}

// ResolveTitle picks the report title from document metadata, falling back to
// the first non-empty line of the first page and finally to DefaultTitle.
func ResolveTitle(metaTitle string, pages []string) string {
	if t := CompactSpaces(metaTitle); t != "" {
		return t
	}
	if len(pages) > 0 {
		for _, line := range strings.Split(pages[0], "\n") {
			if t := CompactSpaces(line); t != "" {
				return truncateRunes(t, maxTitleLength)
			}
		}
	}
	return DefaultTitle
}
