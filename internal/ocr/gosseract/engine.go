//go:build gosseract

// Package gosseract provides an in-process OCR engine backed by libtesseract.
// It needs cgo and the tesseract development headers, so it is only compiled
// with -tags gosseract.
package gosseract

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/a3tai/fda-mcp/internal/ocr"
	pdferrors "github.com/a3tai/fda-mcp/internal/pdf/errors"
)

// Engine implements ocr.Engine using a gosseract client per page
type Engine struct {
	clientFactory func() *gosseract.Client
	tessdataDir   string
	psm           int
}

// NewEngine constructs a libtesseract-backed engine
func NewEngine(cfg ocr.Config) *Engine {
	return &Engine{
		clientFactory: gosseract.NewClient,
		tessdataDir:   cfg.TessdataDir,
		psm:           cfg.PSM,
	}
}

func (e *Engine) Name() string { return "tesseract-lib" }

// Recognize performs OCR on a single page image
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}

	start := time.Now()
	c := e.clientFactory()
	defer c.Close()

	if e.tessdataDir != "" {
		c.TessdataPrefix = e.tessdataDir
	}
	if err := c.SetImage(in.ImagePath); err != nil {
		return ocr.Result{}, e.fail(in, "set image", err)
	}
	if in.Language != "" {
		if err := c.SetLanguage(in.Language); err != nil {
			return ocr.Result{}, e.fail(in, "set language", err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(in.DPI)); err != nil {
			return ocr.Result{}, e.fail(in, "set dpi", err)
		}
	}
	if e.psm > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(e.psm)); err != nil {
			return ocr.Result{}, e.fail(in, "set page segmentation mode", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, e.fail(in, "recognize text", err)
	}

	return ocr.Result{
		PageIndex: in.PageIndex,
		Text:      text,
		Engine:    e.Name(),
		Duration:  time.Since(start),
	}, nil
}

func (e *Engine) fail(in ocr.Input, op string, err error) error {
	return pdferrors.WrapError(pdferrors.ErrorTypeRecognizeFailed, fmt.Sprintf("gosseract: %s", op), err).
		WithPage(in.PageIndex + 1)
}
