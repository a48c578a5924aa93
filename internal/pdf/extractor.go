package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/a3tai/fda-mcp/internal/ocr"
	pdferrors "github.com/a3tai/fda-mcp/internal/pdf/errors"
)

// OCR recognizes text in the pages of a PDF file
type OCR interface {
	Recognize(ctx context.Context, pdfPath string, maxPages int) ([]ocr.Result, error)
}

// Extractor turns a PDF on disk into plain text, either from its embedded
// text layer or by optical character recognition.
type Extractor struct {
	validator *Validator
	reader    *Reader
	ocr       OCR
	logger    zerolog.Logger
}

// NewExtractor creates an extractor. A nil recognizer disables ExtractOCR.
func NewExtractor(maxFileSize int64, recognizer OCR, logger zerolog.Logger) *Extractor {
	return &Extractor{
		validator: NewValidator(maxFileSize),
		reader:    NewReader(logger),
		ocr:       recognizer,
		logger:    logger,
	}
}

// ExtractText returns the text layer of the document and its page count.
// Structural failures are reported as PDFErrors for which
// pdferrors.IsStructural returns true.
func (e *Extractor) ExtractText(_ context.Context, path string) (string, int, error) {
	if err := e.validator.ValidateFile(path); err != nil {
		return "", 0, err
	}

	text, pageCount, err := e.reader.ReadText(path)
	if err != nil {
		return "", 0, e.classify(path, err)
	}

	if pageCount == 0 {
		// ledongthuc cannot always walk a page tree that pdfcpu can
		if info, inspectErr := Inspect(path); inspectErr == nil {
			pageCount = info.PageCount
		}
	}

	e.logger.Debug().
		Str("path", path).
		Int("pages", pageCount).
		Int("chars", len(text)).
		Msg("text layer extracted")

	return text, pageCount, nil
}

// classify asks pdfcpu for a second opinion on a file the text reader refused
func (e *Extractor) classify(path string, readErr error) error {
	info, inspectErr := Inspect(path)
	if inspectErr != nil {
		e.logger.Debug().Err(inspectErr).Str("path", path).Msg("structure inspection failed")
		if pdferrors.IsStructural(readErr) {
			return readErr
		}
		return pdferrors.WrapError(pdferrors.ErrorTypeCorruptedStructure, "unreadable PDF structure", readErr).
			WithFile(path)
	}

	if info.Encrypted {
		return pdferrors.WrapError(pdferrors.ErrorTypeEncrypted, "document is encrypted", readErr).
			WithFile(path)
	}
	return pdferrors.WrapError(pdferrors.ErrorTypeUnsupportedFeature,
		fmt.Sprintf("text reader cannot handle this PDF %s document", info.Version), readErr).
		WithFile(path)
}

// ExtractOCR recognizes up to maxPages pages and joins them with page
// delimiters.
func (e *Extractor) ExtractOCR(ctx context.Context, path string, maxPages int) (string, error) {
	if e.ocr == nil {
		return "", pdferrors.NewPDFError(pdferrors.ErrorTypeOCRUnavailable, "no OCR engine configured").
			WithFile(path)
	}

	results, err := e.ocr.Recognize(ctx, path, maxPages)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for _, r := range results {
		fmt.Fprintf(&builder, "\n--- Page %d ---\n", r.PageIndex+1)
		builder.WriteString(r.Text)
	}
	return builder.String(), nil
}
