// Package security validates untrusted input before it reaches the parser or
// the trade store.
package security

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	apperrors "trade-report/internal/errors"
	"trade-report/internal/models"
)

// Import modes accepted by the ingest service.
const (
	ModeSummary = "summary"
	ModeTrades  = "trades"
)

var (
	// Strategy names: letters, digits, spaces and a few separators
	strategyPattern = regexp.MustCompile(`^[\p{L}0-9 _.&()/-]{1,80}$`)

	pdfMagic = []byte("%PDF-")
)

// UploadRequest describes one file offered for import.
type UploadRequest struct {
	FileName     string `validate:"required,max=255"`
	Mode         string `validate:"required,oneof=summary trades"`
	Size         int64  `validate:"gt=0"`
	StrategyName string `validate:"omitempty,max=80"`
}

// InputValidator checks uploads and parsed records.
type InputValidator struct {
	validate     *validator.Validate
	maxFileBytes int64
	extensions   map[string]struct{}
}

// NewInputValidator creates a validator that accepts files up to maxFileBytes
// with one of the given extensions (".pdf" when none are given).
func NewInputValidator(maxFileBytes int64, extensions ...string) *InputValidator {
	if len(extensions) == 0 {
		extensions = []string{".pdf"}
	}
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	return &InputValidator{
		validate:     validator.New(),
		maxFileBytes: maxFileBytes,
		extensions:   allowed,
	}
}

// ValidateMode validates an import mode.
func (v *InputValidator) ValidateMode(mode string) error {
	if mode != ModeSummary && mode != ModeTrades {
		return apperrors.Wrapf(apperrors.ErrInvalidMode, "mode %q (must be %s or %s)", mode, ModeSummary, ModeTrades)
	}
	return nil
}

// ValidateUpload validates an upload request before the file is read.
func (v *InputValidator) ValidateUpload(req UploadRequest) error {
	if err := v.ValidateMode(req.Mode); err != nil {
		return err
	}
	if err := v.validate.Struct(req); err != nil {
		return toValidationError(err)
	}

	ext := strings.ToLower(filepath.Ext(req.FileName))
	if _, ok := v.extensions[ext]; !ok {
		return apperrors.Wrapf(apperrors.ErrUnsupportedFormat, "file %q", filepath.Base(req.FileName))
	}
	if v.maxFileBytes > 0 && req.Size > v.maxFileBytes {
		return apperrors.Wrapf(apperrors.ErrInputTooLarge, "%d bytes (limit %d)", req.Size, v.maxFileBytes)
	}
	if req.StrategyName != "" {
		return v.ValidateStrategyName(req.StrategyName)
	}
	return nil
}

// ValidateStrategyName validates an optional strategy label.
func (v *InputValidator) ValidateStrategyName(name string) error {
	if !strategyPattern.MatchString(name) {
		return apperrors.NewValidationError("strategy_name", name, "invalid strategy name")
	}
	return nil
}

// ValidatePDFHeader checks that content starts like a PDF file.
func (v *InputValidator) ValidatePDFHeader(head []byte) error {
	if !bytes.HasPrefix(bytes.TrimLeft(head, "\x00\t\r\n "), pdfMagic) {
		return apperrors.Wrap(apperrors.ErrUnsupportedFormat, "content is not a PDF document")
	}
	return nil
}

// ValidateTrade checks a parsed record before it is persisted.
func (v *InputValidator) ValidateTrade(t models.TradeRecord) error {
	if err := v.validate.Struct(t); err != nil {
		return toValidationError(err)
	}
	return nil
}

// ValidateTrades validates every record and reports the first failure with its index.
func (v *InputValidator) ValidateTrades(trades []models.TradeRecord) error {
	for i, t := range trades {
		if err := v.ValidateTrade(t); err != nil {
			return fmt.Errorf("trade %d: %w", i, err)
		}
	}
	return nil
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if apperrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperrors.NewValidationError(fe.Field(), fe.Value(), fmt.Sprintf("failed %q check", fe.Tag()))
	}
	return apperrors.Wrap(apperrors.ErrInputValidation, err.Error())
}

// SanitizeText removes control characters and trims surrounding whitespace.
func SanitizeText(text string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text))
}
