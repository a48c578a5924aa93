// Package ocr recovers text from PDFs that have no embedded text layer by
// rasterizing pages and running optical character recognition on each image.
package ocr

import (
	"context"
	"time"
)

const (
	DefaultPdftoppm  = "pdftoppm"
	DefaultTesseract = "tesseract"
	DefaultLanguage  = "eng"
	DefaultDPI       = 300
	DefaultMaxPages  = 20

	EngineCLI       = "cli"
	EngineGosseract = "gosseract"
)

// Config holds toolchain locations and recognition settings
type Config struct {
	Pdftoppm    string
	Tesseract   string
	Language    string
	DPI         int
	MaxPages    int
	TessdataDir string
	PSM         int // 0 leaves tesseract's default page segmentation
}

// DefaultConfig returns the settings used when nothing is configured
func DefaultConfig() Config {
	return Config{
		Pdftoppm:  DefaultPdftoppm,
		Tesseract: DefaultTesseract,
		Language:  DefaultLanguage,
		DPI:       DefaultDPI,
		MaxPages:  DefaultMaxPages,
	}
}

// WithDefaults fills zero values from DefaultConfig
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Pdftoppm == "" {
		c.Pdftoppm = d.Pdftoppm
	}
	if c.Tesseract == "" {
		c.Tesseract = d.Tesseract
	}
	if c.Language == "" {
		c.Language = d.Language
	}
	if c.DPI <= 0 {
		c.DPI = d.DPI
	}
	if c.MaxPages <= 0 {
		c.MaxPages = d.MaxPages
	}
	return c
}

// Input is one rasterized page handed to an Engine
type Input struct {
	ImagePath string
	PageIndex int // zero-based
	Language  string
	DPI       int
}

// Result is the recognized text of one page
type Result struct {
	PageIndex int
	Text      string
	Engine    string
	Duration  time.Duration
}

// Engine recognizes text in a single page image
type Engine interface {
	Name() string
	Recognize(ctx context.Context, in Input) (Result, error)
}

// Rasterizer renders the first maxPages pages of a PDF into image files under
// outDir and returns their paths in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath, outDir string, maxPages int) ([]string, error)
}
