package ocr

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	pdferrors "github.com/a3tai/fda-mcp/internal/pdf/errors"
)

// PdftoppmRasterizer renders pages to PNG with poppler's pdftoppm
type PdftoppmRasterizer struct {
	runner Runner
	binary string
	dpi    int
}

// NewPdftoppmRasterizer creates a rasterizer using the configured binary and DPI
func NewPdftoppmRasterizer(runner Runner, cfg Config) *PdftoppmRasterizer {
	cfg = cfg.WithDefaults()
	return &PdftoppmRasterizer{
		runner: runner,
		binary: cfg.Pdftoppm,
		dpi:    cfg.DPI,
	}
}

// Rasterize runs `pdftoppm -r DPI -png -f 1 -l maxPages in.pdf outDir/page`
func (p *PdftoppmRasterizer) Rasterize(ctx context.Context, pdfPath, outDir string, maxPages int) ([]string, error) {
	prefix := filepath.Join(outDir, "page")

	args := []string{"-r", strconv.Itoa(p.dpi), "-png"}
	if maxPages > 0 {
		args = append(args, "-f", "1", "-l", strconv.Itoa(maxPages))
	}
	args = append(args, pdfPath, prefix)

	_, stderr, err := p.runner.Run(ctx, p.binary, args...)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeRasterizeFailed, "pdftoppm failed", err).
			WithContext(strings.TrimSpace(string(stderr))).
			WithFile(pdfPath)
	}

	// pdftoppm names pages prefix-1.png or prefix-01.png depending on the page count
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("list rendered pages: %w", err)
	}
	if len(matches) == 0 {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeRasterizeFailed, "pdftoppm produced no images").
			WithFile(pdfPath)
	}

	sort.Slice(matches, func(i, j int) bool {
		return pageNumber(matches[i]) < pageNumber(matches[j])
	})
	if maxPages > 0 && len(matches) > maxPages {
		matches = matches[:maxPages]
	}
	return matches, nil
}

func pageNumber(imagePath string) int {
	base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	idx := strings.LastIndex(base, "-")
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(base[idx+1:])
	if err != nil {
		return 0
	}
	return n
}
