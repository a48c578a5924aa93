//go:build gosseract

package main

import (
	"github.com/a3tai/fda-mcp/internal/ocr"
	"github.com/a3tai/fda-mcp/internal/ocr/gosseract"
)

func init() {
	engines[ocr.EngineGosseract] = func(_ ocr.Runner, cfg ocr.Config) ocr.Engine {
		return gosseract.NewEngine(cfg)
	}
}
