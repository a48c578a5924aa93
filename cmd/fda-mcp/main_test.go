package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/a3tai/fda-mcp/internal/config"
	"github.com/a3tai/fda-mcp/internal/ocr"
)

const testVersion = "1.2.3"

func TestPrintVersion(t *testing.T) {
	// Save original stdout
	originalStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	version = testVersion
	buildTime = "2023-12-01_10:30:00"
	gitCommit = "abc123"

	defer func() {
		version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit
		os.Stdout = originalStdout
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		printVersion()
		w.Close()
	}()

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	<-done

	output := buf.String()
	for _, expected := range []string{
		"FDA MCP",
		"Version: " + testVersion,
		"Build Time: 2023-12-01_10:30:00",
		"Git Commit: abc123",
		"Built with:",
	} {
		if !strings.Contains(output, expected) {
			t.Errorf("printVersion() output missing expected string: %s\nActual output:\n%s", expected, output)
		}
	}
}

func TestSetupLogging(t *testing.T) {
	tests := []struct {
		name      string
		config    *config.Config
		wantLevel zerolog.Level
		wantEmpty bool
	}{
		{
			name:      "stdio mode - debug disabled",
			config:    &config.Config{Mode: config.ModeStdio, LogLevel: "info"},
			wantLevel: zerolog.Disabled,
			wantEmpty: true,
		},
		{
			name:      "stdio mode - debug enabled",
			config:    &config.Config{Mode: config.ModeStdio, LogLevel: "debug"},
			wantLevel: zerolog.DebugLevel,
		},
		{
			name:      "server mode",
			config:    &config.Config{Mode: config.ModeServer, LogLevel: "warn"},
			wantLevel: zerolog.WarnLevel,
		},
		{
			name:      "server mode - unknown level falls back to info",
			config:    &config.Config{Mode: config.ModeServer, LogLevel: "loud"},
			wantLevel: zerolog.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := setupLogging(tt.config, &buf)

			if got := logger.GetLevel(); got != tt.wantLevel {
				t.Errorf("setupLogging() level = %v, want %v", got, tt.wantLevel)
			}

			logger.Error().Msg("probe")
			if tt.wantEmpty && buf.Len() != 0 {
				t.Errorf("setupLogging() wrote output in quiet stdio mode: %q", buf.String())
			}
			if !tt.wantEmpty && !strings.Contains(buf.String(), "probe") {
				t.Errorf("setupLogging() output = %q, want it to contain probe", buf.String())
			}
		})
	}
}

func TestBuildOCR(t *testing.T) {
	cfg := config.DefaultConfig()
	available := ocr.Capability{RasterizerPath: "/usr/bin/pdftoppm", RecognizerPath: "/usr/bin/tesseract"}

	t.Run("unavailable toolchain disables OCR", func(t *testing.T) {
		recognizer, err := buildOCR(cfg, ocr.Capability{Missing: []string{"pdftoppm"}}, zerolog.Nop())
		if err != nil {
			t.Fatalf("buildOCR() error = %v", err)
		}
		if recognizer != nil {
			t.Errorf("buildOCR() = %v, want nil", recognizer)
		}
	})

	t.Run("cli engine", func(t *testing.T) {
		recognizer, err := buildOCR(cfg, available, zerolog.Nop())
		if err != nil {
			t.Fatalf("buildOCR() error = %v", err)
		}
		if recognizer == nil {
			t.Fatal("buildOCR() returned nil with a complete toolchain")
		}
	})

	t.Run("engine not compiled in disables OCR", func(t *testing.T) {
		other := *cfg
		other.OCREngine = "paddle"
		recognizer, err := buildOCR(&other, available, zerolog.Nop())
		if err != nil {
			t.Fatalf("buildOCR() error = %v", err)
		}
		if recognizer != nil {
			t.Errorf("buildOCR() = %v, want nil for an unregistered engine", recognizer)
		}
	})
}

func TestNewServer_GosseractWithoutBuildTag(t *testing.T) {
	if _, ok := engines[ocr.EngineGosseract]; ok {
		t.Skip("gosseract engine is compiled in")
	}

	cfg := config.DefaultConfig()
	cfg.TempDir = t.TempDir()
	cfg.OCREngine = ocr.EngineGosseract

	capability := ocr.DetectWith(func(file string) (string, error) {
		return "/usr/bin/" + file, nil
	}, cfg.OCR, cfg.OCREngine)
	if !capability.Available() {
		t.Fatalf("capability = %v, want available", capability)
	}

	recognizer, err := buildOCR(cfg, capability, zerolog.Nop())
	if err != nil {
		t.Fatalf("buildOCR() error = %v", err)
	}
	if recognizer != nil {
		t.Errorf("buildOCR() = %v, want nil", recognizer)
	}

	server, err := newServer(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("newServer() error = %v", err)
	}
	if server == nil {
		t.Fatal("newServer() returned nil server")
	}
}

func TestNewServer(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.TempDir = t.TempDir()

	server, err := newServer(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("newServer() error = %v", err)
	}
	if server == nil {
		t.Fatal("newServer() returned nil server")
	}
}

func TestServerRunReturnsOnCancel(t *testing.T) {
	cfg := config.DefaultConfig()
	server, err := newServer(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("newServer() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := server.Run(ctx); err != nil {
		t.Errorf("Run() with cancelled context error = %v", err)
	}
}
