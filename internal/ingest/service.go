// Package ingest runs an uploaded report through validation, text extraction,
// parsing and, for trade imports, persistence.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"trade-report/internal/config"
	apperrors "trade-report/internal/errors"
	"trade-report/internal/extract"
	"trade-report/internal/logging"
	"trade-report/internal/models"
	"trade-report/internal/report"
	"trade-report/internal/security"
	"trade-report/internal/store"
	"trade-report/internal/trace"
)

// Supported source file extensions.
var Extensions = []string{".pdf", ".txt"}

// Upload is one report file offered for processing.
type Upload struct {
	FileName     string
	Content      []byte
	Mode         string // summary or trades
	StrategyName string
	OwnerID      string
	Save         bool // persist parsed trades; trades mode only
}

// Result is the outcome of processing one upload. Exactly one of Summary and
// Trades is set, depending on the mode.
type Result struct {
	Mode          string                `json:"mode" yaml:"mode"`
	Document      string                `json:"document" yaml:"document"`
	Summary       *models.SummaryReport `json:"summary,omitempty" yaml:"summary,omitempty"`
	Trades        []models.TradeRecord  `json:"trades,omitempty" yaml:"trades,omitempty"`
	TradeCount    int                   `json:"trade_count" yaml:"trade_count"`
	ImportedCount int                   `json:"imported_count" yaml:"imported_count"`
	Batch         *store.ImportBatch    `json:"batch,omitempty" yaml:"batch,omitempty"`
}

// Service processes report uploads. It is safe for concurrent use when its
// store is.
type Service struct {
	parser    *report.Parser
	validator *security.InputValidator
	store     store.TradeStore
	extract   extract.Options
	logger    zerolog.Logger
}

// NewService creates a service. st may be nil when nothing is persisted.
func NewService(parser *report.Parser, validator *security.InputValidator, st store.TradeStore, opts extract.Options, logger zerolog.Logger) *Service {
	return &Service{
		parser:    parser,
		validator: validator,
		store:     st,
		extract:   opts,
		logger:    logger,
	}
}

// NewServiceFromConfig wires a service from application configuration.
func NewServiceFromConfig(cfg *config.Config, st store.TradeStore, logger zerolog.Logger) *Service {
	parserCfg := report.DefaultConfig()
	parserCfg.ExcerptLength = cfg.Parser.ExcerptLength
	parserCfg.ClusterRecovery = cfg.Parser.ClusterRecovery
	parserCfg.SourceTag = cfg.Parser.SourceTag

	return NewService(
		report.NewParser(parserCfg, logger),
		security.NewInputValidator(cfg.MaxFileBytes(), Extensions...),
		st,
		extract.Options{MaxPages: cfg.Parser.MaxPages},
		logger,
	)
}

// ProcessFile reads a report from disk and processes it. The size limit is
// checked before the file is read.
func (s *Service) ProcessFile(ctx context.Context, path string, up Upload) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, apperrors.NewValidationError("file", path, "is a directory")
	}

	up.FileName = path
	if err := s.validator.ValidateUpload(s.uploadRequest(up, info.Size())); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	up.Content = content
	return s.Process(ctx, up)
}

// Process validates, extracts and parses one upload.
func (s *Service) Process(ctx context.Context, up Upload) (res *Result, err error) {
	name := filepath.Base(up.FileName)

	ctx, span := trace.StartSpan(ctx, "ingest.process",
		attribute.String("document", name),
		attribute.String("mode", up.Mode),
		attribute.Int("bytes", len(up.Content)),
	)
	defer func() { trace.End(span, err) }()

	logger := logging.WithMode(logging.WithDocument(logging.WithOperation(s.logger, "ingest.process"), name), up.Mode)
	if traceID, spanID, ok := trace.TraceFields(ctx); ok {
		logger = logging.WithTrace(logger, traceID, spanID)
	}

	if err := s.validator.ValidateUpload(s.uploadRequest(up, int64(len(up.Content)))); err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		if err := s.validator.ValidatePDFHeader(up.Content); err != nil {
			return nil, err
		}
	}

	doc, err := s.extractDocument(ctx, up)
	if err != nil {
		logging.LogParse(logger, name, 0, 0, 0, err)
		return nil, err
	}

	switch up.Mode {
	case security.ModeSummary:
		return s.summarize(ctx, doc, logger), nil
	default:
		return s.importTrades(ctx, doc, up, logger)
	}
}

func (s *Service) uploadRequest(up Upload, size int64) security.UploadRequest {
	return security.UploadRequest{
		FileName:     up.FileName,
		Mode:         up.Mode,
		Size:         size,
		StrategyName: strings.TrimSpace(up.StrategyName),
	}
}

func (s *Service) extractDocument(ctx context.Context, up Upload) (report.Document, error) {
	ctx, span := trace.StartSpan(ctx, "ingest.extract")
	extractor, err := extract.ForFile(up.FileName, s.extract)
	if err != nil {
		trace.End(span, err)
		return report.Document{}, err
	}
	doc, err := extractor.Extract(ctx, up.FileName, up.Content)
	if err == nil {
		span.SetAttributes(attribute.Int("pages", doc.PageCount()))
	}
	trace.End(span, err)
	return doc, err
}

func (s *Service) summarize(ctx context.Context, doc report.Document, logger zerolog.Logger) *Result {
	_, span := trace.StartSpan(ctx, "report.summary")
	start := time.Now()

	summary := s.parser.ParseSummary(doc)

	nonEmpty := 0
	for _, sec := range summary.Sections {
		if sec.RawText != "" {
			nonEmpty++
		}
	}
	span.SetAttributes(attribute.Int("sections", nonEmpty))
	trace.End(span, nil)
	logging.LogParse(logger, doc.Name, doc.PageCount(), nonEmpty, time.Since(start), nil)

	return &Result{
		Mode:     security.ModeSummary,
		Document: doc.Name,
		Summary:  &summary,
	}
}

func (s *Service) importTrades(ctx context.Context, doc report.Document, up Upload, logger zerolog.Logger) (*Result, error) {
	ctx, span := trace.StartSpan(ctx, "report.trades")
	start := time.Now()

	trades, err := s.parser.ParseTrades(doc)
	logging.LogParse(logger, doc.Name, doc.PageCount(), 0, time.Since(start), err)
	if err != nil {
		trace.End(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("trades", len(trades)))
	trace.End(span, nil)

	strategy := security.SanitizeText(up.StrategyName)
	for i := range trades {
		trades[i].StrategyName = strategy
	}
	if err := s.validator.ValidateTrades(trades); err != nil {
		return nil, err
	}

	res := &Result{
		Mode:       security.ModeTrades,
		Document:   doc.Name,
		Trades:     trades,
		TradeCount: len(trades),
	}
	if !up.Save {
		return res, nil
	}
	if s.store == nil {
		return nil, apperrors.NewStoreError("save imported trades", fmt.Errorf("no trade store configured"))
	}

	ctx, saveSpan := trace.StartSpan(ctx, "store.save_imported")
	batch, err := s.store.SaveImported(ctx, store.ImportRequest{
		OwnerID:      up.OwnerID,
		StrategyName: strategy,
		Document:     doc.Name,
		Trades:       trades,
	})
	trace.End(saveSpan, err)
	if err != nil {
		return nil, err
	}

	res.Batch = batch
	res.ImportedCount = batch.ImportedCount
	logging.LogImport(logger, doc.Name, strategy, batch.ImportedCount)
	return res, nil
}
