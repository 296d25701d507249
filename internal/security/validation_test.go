package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trade-report/internal/errors"
	"trade-report/internal/models"
)

func TestValidateUpload(t *testing.T) {
	v := NewInputValidator(1 << 20)

	tests := []struct {
		name    string
		req     UploadRequest
		wantErr error
	}{
		{"valid summary", UploadRequest{FileName: "report.PDF", Mode: ModeSummary, Size: 1024}, nil},
		{"valid trades with strategy", UploadRequest{FileName: "r.pdf", Mode: ModeTrades, Size: 10, StrategyName: "Scalper EURUSD"}, nil},
		{"bad mode", UploadRequest{FileName: "r.pdf", Mode: "csv", Size: 10}, apperrors.ErrInvalidMode},
		{"wrong extension", UploadRequest{FileName: "r.xlsx", Mode: ModeSummary, Size: 10}, apperrors.ErrUnsupportedFormat},
		{"too large", UploadRequest{FileName: "r.pdf", Mode: ModeSummary, Size: 2 << 20}, apperrors.ErrInputTooLarge},
		{"empty file", UploadRequest{FileName: "r.pdf", Mode: ModeSummary, Size: 0}, apperrors.ErrInputValidation},
		{"no name", UploadRequest{Mode: ModeSummary, Size: 10}, apperrors.ErrInputValidation},
		{"bad strategy", UploadRequest{FileName: "r.pdf", Mode: ModeTrades, Size: 10, StrategyName: "x;rm -rf"}, apperrors.ErrInputValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpload(tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateUpload_TextExtension(t *testing.T) {
	v := NewInputValidator(0, ".pdf", ".txt")
	assert.NoError(t, v.ValidateUpload(UploadRequest{FileName: "dump.txt", Mode: ModeTrades, Size: 1 << 30}))
}

func TestValidatePDFHeader(t *testing.T) {
	v := NewInputValidator(0)
	assert.NoError(t, v.ValidatePDFHeader([]byte("%PDF-1.7\n")))
	assert.NoError(t, v.ValidatePDFHeader([]byte("\r\n%PDF-1.4")))
	assert.ErrorIs(t, v.ValidatePDFHeader([]byte("PK\x03\x04")), apperrors.ErrUnsupportedFormat)
}

func TestValidateTrade(t *testing.T) {
	v := NewInputValidator(0)
	good := models.TradeRecord{
		Symbol: "EURUSD", Side: models.SideLong, EntryPrice: 1.1, ExitPrice: 1.2,
		Date: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, v.ValidateTrade(good))

	bad := good
	bad.EntryPrice = 0
	err := v.ValidateTrade(bad)
	var ve *apperrors.ValidationError
	require.True(t, apperrors.As(err, &ve))
	assert.Equal(t, "EntryPrice", ve.Field)

	bad = good
	bad.Side = "flat"
	assert.ErrorIs(t, v.ValidateTrades([]models.TradeRecord{good, bad}), apperrors.ErrInputValidation)

	bad = good
	bad.Date = time.Time{}
	assert.Error(t, v.ValidateTrade(bad))
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Swing Q1", SanitizeText("  Swing\x00 Q1\n"))
}
