package ocr

import (
	"context"
	"strconv"
	"strings"
	"time"

	pdferrors "github.com/a3tai/fda-mcp/internal/pdf/errors"
)

// TesseractCLI recognizes page images by shelling out to the tesseract binary
type TesseractCLI struct {
	runner      Runner
	binary      string
	tessdataDir string
	psm         int
}

// NewTesseractCLI creates an Engine backed by the tesseract command line tool
func NewTesseractCLI(runner Runner, cfg Config) *TesseractCLI {
	cfg = cfg.WithDefaults()
	return &TesseractCLI{
		runner:      runner,
		binary:      cfg.Tesseract,
		tessdataDir: cfg.TessdataDir,
		psm:         cfg.PSM,
	}
}

func (e *TesseractCLI) Name() string { return "tesseract-cli" }

// Recognize runs `tesseract <img> stdout -l <lang> ...` and returns stdout
func (e *TesseractCLI) Recognize(ctx context.Context, in Input) (Result, error) {
	start := time.Now()

	args := []string{in.ImagePath, "stdout"}
	if in.Language != "" {
		args = append(args, "-l", in.Language)
	}
	if in.DPI > 0 {
		args = append(args, "--dpi", strconv.Itoa(in.DPI))
	}
	if e.psm > 0 {
		args = append(args, "--psm", strconv.Itoa(e.psm))
	}
	if e.tessdataDir != "" {
		args = append(args, "--tessdata-dir", e.tessdataDir)
	}

	out, stderr, err := e.runner.Run(ctx, e.binary, args...)
	if err != nil {
		return Result{}, pdferrors.WrapError(pdferrors.ErrorTypeRecognizeFailed, "tesseract failed", err).
			WithContext(strings.TrimSpace(string(stderr))).
			WithPage(in.PageIndex + 1)
	}

	return Result{
		PageIndex: in.PageIndex,
		Text:      string(out),
		Engine:    e.Name(),
		Duration:  time.Since(start),
	}, nil
}
