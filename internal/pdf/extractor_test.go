package pdf

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/fda-mcp/internal/ocr"
	pdferrors "github.com/a3tai/fda-mcp/internal/pdf/errors"
	"github.com/a3tai/fda-mcp/internal/pdf/pdftest"
)

type fakeOCR struct {
	results  []ocr.Result
	err      error
	maxPages int
}

func (f *fakeOCR) Recognize(_ context.Context, _ string, maxPages int) ([]ocr.Result, error) {
	f.maxPages = maxPages
	return f.results, f.err
}

func TestExtractor_ExtractText(t *testing.T) {
	path := pdftest.WriteFile(t, "summary.pdf", pdftest.Paragraph(5), "Conclusion")
	e := NewExtractor(0, nil, zerolog.Nop())

	text, pages, err := e.ExtractText(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	assert.Contains(t, text, "substantial equivalence")
	assert.Contains(t, text, "Conclusion")
}

func TestExtractor_ExtractText_Structural(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		data []byte
	}{
		{"html instead of pdf", []byte("<html><body>Access Denied</body></html>")},
		{"truncated pdf", []byte("%PDF-1.5\n1 0 obj\n<< /Type /Catalog")},
	}

	e := NewExtractor(0, nil, zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".pdf")
			require.NoError(t, os.WriteFile(path, tt.data, 0o600))

			_, _, err := e.ExtractText(context.Background(), path)
			require.Error(t, err)
			assert.True(t, pdferrors.IsStructural(err), "got %v", err)
		})
	}
}

func TestExtractor_ExtractOCR(t *testing.T) {
	recognizer := &fakeOCR{results: []ocr.Result{
		{PageIndex: 0, Text: "first page"},
		{PageIndex: 1, Text: "second page"},
	}}
	e := NewExtractor(0, recognizer, zerolog.Nop())

	text, err := e.ExtractOCR(context.Background(), "/tmp/scan.pdf", 20)
	require.NoError(t, err)
	assert.Equal(t, "\n--- Page 1 ---\nfirst page\n--- Page 2 ---\nsecond page", text)
	assert.Equal(t, 20, recognizer.maxPages)
}

func TestExtractor_ExtractOCR_Errors(t *testing.T) {
	t.Run("no engine", func(t *testing.T) {
		_, err := NewExtractor(0, nil, zerolog.Nop()).ExtractOCR(context.Background(), "/tmp/scan.pdf", 20)
		var pdfErr *pdferrors.PDFError
		require.True(t, errors.As(err, &pdfErr))
		assert.Equal(t, pdferrors.ErrorTypeOCRUnavailable, pdfErr.Type)
	})

	t.Run("engine failure propagates", func(t *testing.T) {
		boom := pdferrors.NewPDFError(pdferrors.ErrorTypeRecognizeFailed, "tesseract failed")
		e := NewExtractor(0, &fakeOCR{err: boom}, zerolog.Nop())

		_, err := e.ExtractOCR(context.Background(), "/tmp/scan.pdf", 20)
		assert.ErrorIs(t, err, boom)
		assert.False(t, pdferrors.IsStructural(err))
	})
}

func TestExtractor_ExtractOCR_RealToolchain(t *testing.T) {
	for _, bin := range []string{ocr.DefaultPdftoppm, ocr.DefaultTesseract} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not installed in PATH", bin)
		}
	}

	path := pdftest.WriteFile(t, "approval.pdf", "APPROVAL ORDER\nPremarket Approval Application")

	cfg := ocr.DefaultConfig()
	runner := ocr.NewExecRunner(zerolog.Nop())
	pipeline, err := ocr.NewPipeline(ocr.PipelineConfig{
		Rasterizer: ocr.NewPdftoppmRasterizer(runner, cfg),
		Engine:     ocr.NewTesseractCLI(runner, cfg),
		OCR:        cfg,
		ScratchDir: t.TempDir(),
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)

	text, err := NewExtractor(0, pipeline, zerolog.Nop()).ExtractOCR(context.Background(), path, 20)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "\n--- Page 1 ---\n"), "got %q", text)
	assert.Contains(t, strings.ToUpper(text), "APPROVAL ORDER")
}

func TestInspect(t *testing.T) {
	path := pdftest.WriteFile(t, "doc.pdf", "a", "b", "c")

	info, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, 3, info.PageCount)
	assert.False(t, info.Encrypted)
}
