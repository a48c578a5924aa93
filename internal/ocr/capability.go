package ocr

import (
	"os/exec"
	"strings"
)

// LookPathFunc resolves a binary name to a path
type LookPathFunc func(file string) (string, error)

// Capability records which parts of the OCR toolchain were found. It is
// computed once at startup and passed by value to whoever needs to know.
type Capability struct {
	RasterizerPath string
	RecognizerPath string
	Missing        []string
}

// Available reports whether both a rasterizer and a recognizer are present
func (c Capability) Available() bool {
	return c.RasterizerPath != "" && c.RecognizerPath != ""
}

// String describes the capability for logs
func (c Capability) String() string {
	if c.Available() {
		return "available"
	}
	return "unavailable (missing: " + strings.Join(c.Missing, ", ") + ")"
}

// Detect checks for the pdftoppm and tesseract binaries on PATH. With the
// in-process engine the tesseract binary is not needed, only its library.
func Detect(cfg Config, engine string) Capability {
	return DetectWith(exec.LookPath, cfg, engine)
}

// DetectWith is Detect with an injectable lookup
func DetectWith(lookPath LookPathFunc, cfg Config, engine string) Capability {
	cfg = cfg.WithDefaults()
	var capability Capability

	if path, err := lookPath(cfg.Pdftoppm); err == nil {
		capability.RasterizerPath = path
	} else {
		capability.Missing = append(capability.Missing, cfg.Pdftoppm)
	}

	if engine == EngineGosseract {
		capability.RecognizerPath = EngineGosseract
		return capability
	}

	if path, err := lookPath(cfg.Tesseract); err == nil {
		capability.RecognizerPath = path
	} else {
		capability.Missing = append(capability.Missing, cfg.Tesseract)
	}

	return capability
}
