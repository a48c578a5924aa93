package ocr

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Pipeline rasterizes a PDF and recognizes each page image
type Pipeline struct {
	rasterizer  Rasterizer
	engine      Engine
	language    string
	dpi         int
	scratchDir  string
	parallelism int
	logger      zerolog.Logger
}

// PipelineConfig configures a Pipeline
type PipelineConfig struct {
	Rasterizer Rasterizer
	Engine     Engine
	OCR        Config
	// ScratchDir is the parent for per-call image directories; empty means os.TempDir
	ScratchDir string
	// Parallelism bounds concurrent page recognitions; zero means GOMAXPROCS
	Parallelism int
	Logger      zerolog.Logger
}

// NewPipeline creates a new OCR pipeline
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if cfg.Rasterizer == nil {
		return nil, fmt.Errorf("rasterizer cannot be nil")
	}
	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}

	ocrCfg := cfg.OCR.WithDefaults()
	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	return &Pipeline{
		rasterizer:  cfg.Rasterizer,
		engine:      cfg.Engine,
		language:    ocrCfg.Language,
		dpi:         ocrCfg.DPI,
		scratchDir:  cfg.ScratchDir,
		parallelism: parallelism,
		logger:      cfg.Logger,
	}, nil
}

// Engine returns the recognition engine in use
func (p *Pipeline) Engine() Engine {
	return p.engine
}

// Recognize renders up to maxPages pages of pdfPath and returns one Result per
// rendered page, ordered by page. Rendered images are removed before returning.
func (p *Pipeline) Recognize(ctx context.Context, pdfPath string, maxPages int) ([]Result, error) {
	tmpDir, err := os.MkdirTemp(p.scratchDir, "fda-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			p.logger.Warn().Err(err).Str("dir", tmpDir).Msg("failed to remove OCR scratch dir")
		}
	}()

	images, err := p.rasterizer.Rasterize(ctx, pdfPath, tmpDir, maxPages)
	if err != nil {
		return nil, err
	}

	p.logger.Debug().
		Int("pages", len(images)).
		Str("engine", p.engine.Name()).
		Msg("recognizing rasterized pages")

	results := make([]Result, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallelism)

	for i, img := range images {
		g.Go(func() error {
			res, err := p.engine.Recognize(gctx, Input{
				ImagePath: img,
				PageIndex: i,
				Language:  p.language,
				DPI:       p.dpi,
			})
			if err != nil {
				return err
			}
			res.PageIndex = i
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
