package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/fda-mcp/internal/ocr"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort            = 8080
	DefaultHost            = "127.0.0.1"
	DefaultLogLevel        = "info"
	DefaultBaseURL         = "https://api.fda.gov"
	DefaultTimeout         = 30 * time.Second
	DefaultMaxConcurrent   = 4
	DefaultPDFTimeout      = 60 * time.Second
	DefaultPDFMaxLength    = 8000
	DefaultMaxDocumentSize = 100 * 1024 * 1024 // 100MB

	envPrefix = "FDA_MCP"
)

// ErrVersionRequested is returned by LoadFromArgs when --version is present
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the FDA MCP server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// OpenFDA API
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	MaxConcurrent int

	// Decision documents
	PDFTimeout      time.Duration
	PDFMaxLength    int
	MaxDocumentSize int64
	TempDir         string

	// OCR toolchain
	OCREngine string
	OCR       ocr.Config

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
	ConfigFile string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Mode:            ModeStdio, // Default to stdio mode for MCP compatibility
		Host:            DefaultHost,
		Port:            DefaultPort,
		BaseURL:         DefaultBaseURL,
		Timeout:         DefaultTimeout,
		MaxConcurrent:   DefaultMaxConcurrent,
		PDFTimeout:      DefaultPDFTimeout,
		PDFMaxLength:    DefaultPDFMaxLength,
		MaxDocumentSize: DefaultMaxDocumentSize,
		TempDir:         os.TempDir(),
		OCREngine:       ocr.EngineCLI,
		OCR:             ocr.DefaultConfig(),
		Version:         "1.0.0",
		ServerName:      "fda-mcp",
		LogLevel:        DefaultLogLevel,
	}
}

// LoadFromFlags parses os.Args and the environment
func LoadFromFlags() (*Config, error) {
	return LoadFromArgs(os.Args[1:])
}

// LoadFromArgs builds a configuration from args, environment variables and an
// optional config file, in that order of precedence over the defaults.
func LoadFromArgs(args []string) (*Config, error) {
	cfg := DefaultConfig()

	// Check for version flag before parsing
	if err := checkVersionFlag(args); err != nil {
		return nil, err
	}

	v := viper.New()
	flags := pflag.NewFlagSet(cfg.ServerName, pflag.ContinueOnError)

	setupViperEnvironment(v, cfg)
	defineCommandLineFlags(flags, cfg)
	setupUsageMessage(flags)

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	bindFlagsToViper(v, flags)

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	populateConfigFromViper(v, cfg)

	if cfg.TempDir != "" {
		if expandedPath, err := filepath.Abs(cfg.TempDir); err == nil {
			cfg.TempDir = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// legacyEnv keeps the environment names documented for earlier releases
var legacyEnv = map[string]string{
	"apikey":        "OPENFDA_API_KEY",
	"timeout":       "OPENFDA_TIMEOUT",
	"maxconcurrent": "OPENFDA_MAX_CONCURRENT",
	"pdftimeout":    "FDA_PDF_TIMEOUT",
	"pdfmaxlength":  "FDA_PDF_MAX_LENGTH",
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		_ = v.BindEnv(key, envPrefix+"_"+strings.ToUpper(key), legacy)
	}

	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("apikey", cfg.APIKey)
	v.SetDefault("baseurl", cfg.BaseURL)
	v.SetDefault("timeout", cfg.Timeout.Seconds())
	v.SetDefault("maxconcurrent", cfg.MaxConcurrent)
	v.SetDefault("pdftimeout", cfg.PDFTimeout.Seconds())
	v.SetDefault("pdfmaxlength", cfg.PDFMaxLength)
	v.SetDefault("maxdocsize", cfg.MaxDocumentSize)
	v.SetDefault("tempdir", cfg.TempDir)
	v.SetDefault("ocrengine", cfg.OCREngine)
	v.SetDefault("pdftoppm", cfg.OCR.Pdftoppm)
	v.SetDefault("tesseract", cfg.OCR.Tesseract)
	v.SetDefault("ocrlang", cfg.OCR.Language)
	v.SetDefault("ocrdpi", cfg.OCR.DPI)
	v.SetDefault("ocrmaxpages", cfg.OCR.MaxPages)
	v.SetDefault("tessdata", cfg.OCR.TessdataDir)
	v.SetDefault("ocrpsm", cfg.OCR.PSM)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(flags *pflag.FlagSet, cfg *Config) {
	flags.String("config", "", "Path to a YAML, TOML or JSON config file")
	flags.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP/SSE server")
	flags.String("host", cfg.Host, "Server host address (server mode only)")
	flags.Int("port", cfg.Port, "Server port (server mode only)")
	flags.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")

	flags.String("apikey", cfg.APIKey, "OpenFDA API key (raises the rate limit from 40 to 240 requests per minute)")
	flags.String("baseurl", cfg.BaseURL, "OpenFDA API base URL")
	flags.Float64("timeout", cfg.Timeout.Seconds(), "OpenFDA request timeout in seconds")
	flags.Int("maxconcurrent", cfg.MaxConcurrent, "Maximum concurrent OpenFDA requests")

	flags.Float64("pdftimeout", cfg.PDFTimeout.Seconds(), "Decision document download timeout in seconds")
	flags.Int("pdfmaxlength", cfg.PDFMaxLength, "Default maximum characters returned from a decision document")
	flags.Int64("maxdocsize", cfg.MaxDocumentSize, "Maximum decision document size in bytes")
	flags.String("tempdir", cfg.TempDir, "Directory for temporary downloads")

	flags.String("ocrengine", cfg.OCREngine, "OCR engine: 'cli' (tesseract binary) or 'gosseract' (requires a gosseract build)")
	flags.String("pdftoppm", cfg.OCR.Pdftoppm, "pdftoppm binary used to rasterize scanned pages")
	flags.String("tesseract", cfg.OCR.Tesseract, "tesseract binary used by the cli engine")
	flags.String("ocrlang", cfg.OCR.Language, "OCR language")
	flags.Int("ocrdpi", cfg.OCR.DPI, "Rasterization DPI for OCR")
	flags.Int("ocrmaxpages", cfg.OCR.MaxPages, "Maximum pages recognized per scanned document")
	flags.String("tessdata", cfg.OCR.TessdataDir, "tessdata directory override")
	flags.Int("ocrpsm", cfg.OCR.PSM, "tesseract page segmentation mode (0 keeps the default)")
}

// bindFlagsToViper binds command line flags to viper configuration. Only
// flags set on the command line override environment and file values.
func bindFlagsToViper(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
	})
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage(flags *pflag.FlagSet) {
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nFDA MCP - A Model Context Protocol server for OpenFDA data and FDA decision documents\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          # stdio mode (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --apikey=$OPENFDA_API_KEY                # higher OpenFDA rate limit\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --host=0.0.0.0 --port=8081  # SSE server on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  FDA_MCP_<OPTION>        Any option above, e.g. FDA_MCP_MODE, FDA_MCP_OCRLANG\n")
		fmt.Fprintf(os.Stderr, "  OPENFDA_API_KEY         OpenFDA API key\n")
		fmt.Fprintf(os.Stderr, "  OPENFDA_TIMEOUT         OpenFDA request timeout in seconds\n")
		fmt.Fprintf(os.Stderr, "  OPENFDA_MAX_CONCURRENT  Maximum concurrent OpenFDA requests\n")
		fmt.Fprintf(os.Stderr, "  FDA_PDF_TIMEOUT         Decision document download timeout in seconds\n")
		fmt.Fprintf(os.Stderr, "  FDA_PDF_MAX_LENGTH      Default maximum document characters\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag(args []string) error {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.ConfigFile = v.GetString("config")
	cfg.Mode = v.GetString("mode")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.LogLevel = v.GetString("loglevel")

	cfg.APIKey = v.GetString("apikey")
	cfg.BaseURL = v.GetString("baseurl")
	cfg.Timeout = seconds(v.GetFloat64("timeout"))
	cfg.MaxConcurrent = v.GetInt("maxconcurrent")

	cfg.PDFTimeout = seconds(v.GetFloat64("pdftimeout"))
	cfg.PDFMaxLength = v.GetInt("pdfmaxlength")
	cfg.MaxDocumentSize = v.GetInt64("maxdocsize")
	cfg.TempDir = v.GetString("tempdir")

	cfg.OCREngine = v.GetString("ocrengine")
	cfg.OCR = ocr.Config{
		Pdftoppm:    v.GetString("pdftoppm"),
		Tesseract:   v.GetString("tesseract"),
		Language:    v.GetString("ocrlang"),
		DPI:         v.GetInt("ocrdpi"),
		MaxPages:    v.GetInt("ocrmaxpages"),
		TessdataDir: v.GetString("tessdata"),
		PSM:         v.GetInt("ocrpsm"),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.BaseURL == "" {
		return errors.New("OpenFDA base URL cannot be empty")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.MaxConcurrent < 1 {
		return errors.New("maxconcurrent must be at least 1")
	}
	if c.PDFTimeout <= 0 {
		return errors.New("pdftimeout must be positive")
	}
	if c.PDFMaxLength <= 0 {
		return errors.New("pdfmaxlength must be positive")
	}
	if c.MaxDocumentSize <= 0 {
		return errors.New("maximum document size must be positive")
	}

	if c.OCREngine != ocr.EngineCLI && c.OCREngine != ocr.EngineGosseract {
		return fmt.Errorf("invalid OCR engine: %s (must be one of: %s, %s)", c.OCREngine, ocr.EngineCLI, ocr.EngineGosseract)
	}
	if c.OCR.DPI <= 0 {
		return errors.New("ocrdpi must be positive")
	}
	if c.OCR.MaxPages <= 0 {
		return errors.New("ocrmaxpages must be positive")
	}
	if c.OCR.PSM < 0 || c.OCR.PSM > 13 {
		return errors.New("ocrpsm must be between 0 and 13")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	apiKey := "unset"
	if c.APIKey != "" {
		apiKey = "set"
	}
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, BaseURL: %s, APIKey: %s, Timeout: %s, "+
		"MaxConcurrent: %d, PDFTimeout: %s, PDFMaxLength: %d, OCREngine: %s, LogLevel: %s}",
		c.Mode, c.Host, c.Port, c.BaseURL, apiKey, c.Timeout, c.MaxConcurrent,
		c.PDFTimeout, c.PDFMaxLength, c.OCREngine, c.LogLevel)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
