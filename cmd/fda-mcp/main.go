package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/a3tai/fda-mcp/internal/config"
	"github.com/a3tai/fda-mcp/internal/documents"
	"github.com/a3tai/fda-mcp/internal/mcp"
	"github.com/a3tai/fda-mcp/internal/ocr"
	"github.com/a3tai/fda-mcp/internal/openfda"
	"github.com/a3tai/fda-mcp/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// engineFactory builds an OCR engine from the runner and settings
type engineFactory func(runner ocr.Runner, cfg ocr.Config) ocr.Engine

// engines holds the OCR engines compiled into this binary. The in-process
// engine registers itself from engine_gosseract.go.
var engines = map[string]engineFactory{
	ocr.EngineCLI: func(runner ocr.Runner, cfg ocr.Config) ocr.Engine {
		return ocr.NewTesseractCLI(runner, cfg)
	},
}

// setupLogging builds the logger for the server mode. In stdio mode stdout
// carries the protocol, so logs go to stderr and only when debugging.
func setupLogging(cfg *config.Config, stderr io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if cfg.IsStdioMode() {
		if !cfg.IsDebug() {
			return zerolog.Nop()
		}
		return zerolog.New(stderr).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Caller().Logger().Level(level)
}

// buildOCR assembles the OCR pipeline, or returns nil when the toolchain is
// incomplete or the engine is not compiled in, so scanned documents degrade
// to an explanatory message.
func buildOCR(cfg *config.Config, capability ocr.Capability, logger zerolog.Logger) (pdf.OCR, error) {
	if !capability.Available() {
		logger.Warn().Str("ocr", capability.String()).Msg("OCR disabled; scanned documents will not be recognized")
		return nil, nil
	}

	factory, ok := engines[cfg.OCREngine]
	if !ok {
		logger.Warn().
			Str("engine", cfg.OCREngine).
			Msgf("OCR engine is not compiled into this binary (rebuild with -tags %s); OCR disabled", cfg.OCREngine)
		return nil, nil
	}

	ocrCfg := cfg.OCR
	ocrCfg.Pdftoppm = capability.RasterizerPath
	if cfg.OCREngine == ocr.EngineCLI {
		ocrCfg.Tesseract = capability.RecognizerPath
	}

	runner := ocr.NewExecRunner(logger)
	pipeline, err := ocr.NewPipeline(ocr.PipelineConfig{
		Rasterizer: ocr.NewPdftoppmRasterizer(runner, ocrCfg),
		Engine:     factory(runner, ocrCfg),
		OCR:        ocrCfg,
		ScratchDir: cfg.TempDir,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create OCR pipeline: %w", err)
	}

	logger.Info().Str("engine", pipeline.Engine().Name()).Msg("OCR enabled")
	return pipeline, nil
}

// newServer wires the OpenFDA client, the document fetcher and the MCP server
func newServer(cfg *config.Config, logger zerolog.Logger) (*mcp.Server, error) {
	capability := ocr.Detect(cfg.OCR, cfg.OCREngine)

	recognizer, err := buildOCR(cfg, capability, logger)
	if err != nil {
		return nil, err
	}

	extractor := pdf.NewExtractor(cfg.MaxDocumentSize, recognizer, logger)

	fetcher, err := documents.NewFetcher(documents.FetcherConfig{
		Timeout:         cfg.PDFTimeout,
		Extractor:       extractor,
		OCRAvailable:    recognizer != nil,
		TempDir:         cfg.TempDir,
		MaxDocumentSize: cfg.MaxDocumentSize,
		OCRMaxPages:     cfg.OCR.MaxPages,
		Logger:          logger.With().Str("component", "documents").Logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create document fetcher: %w", err)
	}

	client := openfda.NewClient(openfda.ClientConfig{
		BaseURL:       cfg.BaseURL,
		APIKey:        cfg.APIKey,
		Timeout:       cfg.Timeout,
		MaxConcurrent: cfg.MaxConcurrent,
		Logger:        logger.With().Str("component", "openfda").Logger(),
	})

	return mcp.NewServer(cfg, client, fetcher, logger)
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server, logger zerolog.Logger) {
	// Set up signal handling for graceful shutdown
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	// Start server in a goroutine
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-signalCh:
		logger.Info().Str("signal", sig.String()).Msg("initiating graceful shutdown")
		cancel()

		// Wait for server to shutdown
		if err := <-serverErrCh; err != nil {
			logger.Error().Err(err).Msg("server shutdown with error")
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			logger.Error().Err(err).Msg("server error")
			os.Exit(1)
		}
	}

	logger.Info().Msg("server stopped successfully")
}

// runStdioMode handles stdio mode execution
func runStdioMode(ctx context.Context, server *mcp.Server, logger zerolog.Logger) {
	// The parent process controls our lifecycle; exit when stdin closes
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}

func main() {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	logger := setupLogging(cfg, os.Stderr)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	logger.Debug().Str("config", cfg.String()).Msg("starting with configuration")

	server, err := newServer(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create MCP server: %v\n", err)
		os.Exit(1)
	}

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle different modes
	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, server, logger)
	} else {
		runStdioMode(ctx, server, logger)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("FDA MCP\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
