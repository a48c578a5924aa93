// Package documents downloads FDA decision documents and turns them into a
// bounded, annotated text payload.
package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/a3tai/fda-mcp/internal/pdf"
	pdferrors "github.com/a3tai/fda-mcp/internal/pdf/errors"
	"github.com/a3tai/fda-mcp/internal/transport"
)

const (
	DefaultTimeout         = 60 * time.Second
	DefaultMaxDocumentSize = 100 << 20
	DefaultOCRMaxPages     = 20
)

// Extractor reads text out of a PDF on disk
type Extractor interface {
	ExtractText(ctx context.Context, path string) (text string, pageCount int, err error)
	ExtractOCR(ctx context.Context, path string, maxPages int) (string, error)
}

// FetcherConfig configures a Fetcher
type FetcherConfig struct {
	// HTTPClient is used for downloads; nil builds one with Timeout
	HTTPClient *http.Client
	Timeout    time.Duration
	Extractor  Extractor
	// OCRAvailable is decided once at startup
	OCRAvailable    bool
	TempDir         string
	MaxDocumentSize int64
	OCRMaxPages     int
	Logger          zerolog.Logger
}

// Fetcher downloads a document and extracts its text. It holds no per-call
// state and is safe for concurrent use.
type Fetcher struct {
	client          *http.Client
	timeout         time.Duration
	extractor       Extractor
	ocrAvailable    bool
	tempDir         string
	maxDocumentSize int64
	ocrMaxPages     int
	logger          zerolog.Logger
}

// NewFetcher creates a new document fetcher
func NewFetcher(cfg FetcherConfig) (*Fetcher, error) {
	if cfg.Extractor == nil {
		return nil, fmt.Errorf("extractor cannot be nil")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxDocumentSize <= 0 {
		cfg.MaxDocumentSize = DefaultMaxDocumentSize
	}
	if cfg.OCRMaxPages <= 0 {
		cfg.OCRMaxPages = DefaultOCRMaxPages
	}
	client := cfg.HTTPClient
	if client == nil {
		client = transport.NewHTTPClient(cfg.Timeout, cfg.Logger)
	}

	return &Fetcher{
		client:          client,
		timeout:         cfg.Timeout,
		extractor:       cfg.Extractor,
		ocrAvailable:    cfg.OCRAvailable,
		tempDir:         cfg.TempDir,
		maxDocumentSize: cfg.MaxDocumentSize,
		ocrMaxPages:     cfg.OCRMaxPages,
		logger:          cfg.Logger,
	}, nil
}

// OCRAvailable reports whether scanned documents can be recognized
func (f *Fetcher) OCRAvailable() bool {
	return f.ocrAvailable
}

// FetchAndExtract downloads url, extracts its text and returns at most
// maxLength characters of it behind a metadata header. Scanned documents
// without OCR support produce an explanatory message rather than an error.
func (f *Fetcher) FetchAndExtract(ctx context.Context, url string, maxLength int) (string, error) {
	if maxLength <= 0 {
		return "", fmt.Errorf("max_length must be positive, got %d", maxLength)
	}

	logger := f.logger.With().
		Str("fetch_id", uuid.NewString()).
		Str("url", url).
		Logger()
	start := time.Now()

	resp, err := f.get(ctx, url)
	if err != nil {
		logger.Warn().Err(err).Msg("document download failed")
		return "", err
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(f.tempDir, "fda-doc-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err := os.Remove(tmp.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn().Err(err).Str("path", tmp.Name()).Msg("failed to remove temp file")
		}
	}()

	size, err := f.persist(ctx, tmp, resp.Body, url)
	if err != nil {
		return "", err
	}
	logger.Debug().Int64("bytes", size).Str("path", tmp.Name()).Msg("document downloaded")

	if err := f.sniff(tmp.Name(), resp.Header.Get("Content-Type"), url); err != nil {
		return "", err
	}

	// The bytes are on disk; a caller hanging up should not abort extraction.
	result, err := f.extract(context.WithoutCancel(ctx), tmp.Name(), url, logger)
	if err != nil {
		return "", err
	}

	logger.Info().
		Int("pages", result.PageCount).
		Str("method", result.Method.String()).
		Dur("elapsed", time.Since(start)).
		Msg("document extracted")

	return Render(url, result, maxLength), nil
}

func (f *Fetcher) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.transportError(ctx, url, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, &DocumentNotFoundError{URL: url}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &FetchFailedError{URL: url, StatusCode: resp.StatusCode}
	}
	if resp.ContentLength > f.maxDocumentSize {
		resp.Body.Close()
		return nil, &FetchFailedError{URL: url, StatusCode: resp.StatusCode, TooLarge: true, Limit: f.maxDocumentSize}
	}
	return resp, nil
}

// persist copies the body into tmp and closes it
func (f *Fetcher) persist(ctx context.Context, tmp *os.File, body io.Reader, url string) (int64, error) {
	n, err := io.Copy(tmp, io.LimitReader(body, f.maxDocumentSize+1))
	closeErr := tmp.Close()
	if err != nil {
		return 0, f.transportError(ctx, url, err)
	}
	if closeErr != nil {
		return 0, fmt.Errorf("write temp file: %w", closeErr)
	}
	if n > f.maxDocumentSize {
		return 0, &FetchFailedError{URL: url, StatusCode: http.StatusOK, TooLarge: true, Limit: f.maxDocumentSize}
	}
	return n, nil
}

func (f *Fetcher) transportError(ctx context.Context, url string, err error) *TransportError {
	te := &TransportError{URL: url, Kind: transport.Classify(err), Timeout: f.timeout, Err: err}
	if te.Kind == transport.KindTimeout && ctx.Err() != nil {
		te.Timeout = 0
	}
	return te
}

// sniff rejects bodies that are plainly not PDFs before a parser sees them
func (f *Fetcher) sniff(path, contentType, url string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}
	defer file.Close()

	head := make([]byte, 1024)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read temp file: %w", err)
	}
	head = head[:n]

	if n == 0 {
		return &CorruptDocumentError{URL: url, Reason: "the server returned an empty response"}
	}
	if pdf.HasPDFHeader(head) {
		return nil
	}

	reason := "missing %PDF- header"
	if looksLikeHTML(contentType, head) {
		reason = "the server returned an HTML page instead of a PDF"
		if _, err := file.Seek(0, io.SeekStart); err == nil {
			if title := htmlTitle(file); title != "" {
				reason = fmt.Sprintf("the server returned an HTML page (%q) instead of a PDF", title)
			}
		}
	}
	return &CorruptDocumentError{URL: url, Reason: reason}
}

// extract runs the text layer, then applies the decision function
func (f *Fetcher) extract(ctx context.Context, path, url string, logger zerolog.Logger) (ExtractionResult, error) {
	text, pageCount, err := f.extractor.ExtractText(ctx, path)
	if err != nil {
		if pdferrors.IsStructural(err) {
			return ExtractionResult{}, &CorruptDocumentError{URL: url, Reason: corruptReason(err), Err: err}
		}
		return ExtractionResult{}, fmt.Errorf("extract text from %s: %w", url, err)
	}

	state := decide(text, f.ocrAvailable)
	logger.Debug().
		Int("pages", pageCount).
		Int("text_chars", len(text)).
		Str("state", state.String()).
		Msg("extraction path chosen")

	switch state {
	case stateDirect:
		return ExtractionResult{Text: text, PageCount: pageCount, Method: MethodText}, nil
	case stateOCRFallback:
		ocrText, err := f.extractor.ExtractOCR(ctx, path, f.ocrMaxPages)
		if err != nil {
			return ExtractionResult{}, fmt.Errorf("OCR extraction failed for %s: %w", url, err)
		}
		return ExtractionResult{Text: ocrText, PageCount: pageCount, Method: MethodOCR}, nil
	default:
		return ExtractionResult{PageCount: pageCount, Method: MethodNone}, nil
	}
}

func corruptReason(err error) string {
	var pdfErr *pdferrors.PDFError
	if !errors.As(err, &pdfErr) {
		return err.Error()
	}
	switch pdfErr.Type {
	case pdferrors.ErrorTypeEncrypted:
		return "the document is encrypted"
	case pdferrors.ErrorTypeInvalidHeader:
		return "missing %PDF- header"
	case pdferrors.ErrorTypeParserPanic:
		return "the PDF structure is malformed"
	case pdferrors.ErrorTypeUnsupportedFeature:
		return "the document uses unsupported PDF features"
	default:
		return "the PDF structure is damaged"
	}
}
