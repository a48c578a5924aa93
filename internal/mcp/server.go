package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/a3tai/fda-mcp/internal/config"
	"github.com/a3tai/fda-mcp/internal/descriptions"
	"github.com/a3tai/fda-mcp/internal/documents"
	"github.com/a3tai/fda-mcp/internal/openfda"
)

const (
	maxSearchLimit = 100
	maxCountLimit  = 1000
	defaultLimit   = 10

	shutdownTimeout = 5 * time.Second
)

// OpenFDA runs queries against the OpenFDA API
type OpenFDA interface {
	Query(ctx context.Context, q openfda.Query) (*openfda.Response, error)
}

// DocumentFetcher downloads a decision document and returns its text
type DocumentFetcher interface {
	FetchAndExtract(ctx context.Context, url string, maxLength int) (string, error)
}

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	openfda   OpenFDA
	fetcher   DocumentFetcher
	mcpServer *server.MCPServer
	logger    zerolog.Logger

	stdin  io.Reader
	stdout io.Writer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, client OpenFDA, fetcher DocumentFetcher, logger zerolog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if client == nil {
		return nil, fmt.Errorf("openfda client cannot be nil")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("document fetcher cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // the tool set is fixed
		server.WithResourceCapabilities(false, false),
		server.WithInstructions(descriptions.ServerInstructions),
	)

	s := &Server{
		config:    cfg,
		openfda:   client,
		fetcher:   fetcher,
		mcpServer: mcpServer,
		logger:    logger,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	searchTool := mcp.NewTool(
		"search_fda",
		mcp.WithDescription(descriptions.SearchFDADescription),
		mcp.WithString("dataset",
			mcp.Required(),
			mcp.Description("Dataset to search, e.g. drug_adverse_events or device_510k"),
			mcp.Enum(openfda.DatasetNames()...),
		),
		mcp.WithString("search",
			mcp.Description(`OpenFDA search expression, e.g. patient.drug.openfda.brand_name:"ASPIRIN"`),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum records to return (default 10, max 100)"),
		),
		mcp.WithNumber("skip",
			mcp.Description("Records to skip for pagination (default 0)"),
		),
		mcp.WithString("sort",
			mcp.Description("Sort expression, e.g. receiptdate:desc"),
		),
	)
	s.mcpServer.AddTool(searchTool, s.handleSearchFDA)

	countTool := mcp.NewTool(
		"count_records",
		mcp.WithDescription(descriptions.CountRecordsDescription),
		mcp.WithString("endpoint",
			mcp.Required(),
			mcp.Description(`OpenFDA endpoint path, e.g. "drug/event" or "device/510k"`),
		),
		mcp.WithString("count_field",
			mcp.Required(),
			mcp.Description("Field to aggregate on, usually with the .exact suffix"),
		),
		mcp.WithString("search",
			mcp.Description("Optional search filter applied before counting"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Number of top values to return (default 10, max 1000)"),
		),
	)
	s.mcpServer.AddTool(countTool, s.handleCountRecords)

	fieldsTool := mcp.NewTool(
		"list_searchable_fields",
		mcp.WithDescription(descriptions.ListSearchableFieldsDescription),
		mcp.WithString("endpoint",
			mcp.Required(),
			mcp.Description(`OpenFDA endpoint path, e.g. "drug/event"`),
		),
		mcp.WithString("category",
			mcp.Description(`"common" for key fields, "all" for the complete listing`),
			mcp.Enum(openfda.FieldsCommon, openfda.FieldsAll),
			mcp.DefaultString(openfda.FieldsCommon),
		),
	)
	s.mcpServer.AddTool(fieldsTool, s.handleListSearchableFields)

	documentTool := mcp.NewTool(
		"get_decision_document",
		mcp.WithDescription(descriptions.GetDecisionDocumentDescription),
		mcp.WithString("document_type",
			mcp.Required(),
			mcp.Description("Type of document to retrieve"),
			mcp.Enum(documents.DocumentTypes...),
		),
		mcp.WithString("submission_number",
			mcp.Required(),
			mcp.Description(`FDA identifier, e.g. "K213456", "DEN200001" or "P200001"`),
		),
		mcp.WithString("supplement_number",
			mcp.Description(`Required for pma_supplement, e.g. "013"`),
		),
		mcp.WithNumber("max_length",
			mcp.Description(fmt.Sprintf("Maximum text characters to return (default %d)", s.config.PDFMaxLength)),
		),
	)
	s.mcpServer.AddTool(documentTool, s.handleGetDecisionDocument)
}

func (s *Server) handleSearchFDA(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dataset, err := request.RequireString("dataset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	endpoint, err := openfda.ResolveDataset(dataset)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	limit, note := openfda.ClampLimit(intArg(args, "limit", defaultLimit), maxSearchLimit)

	resp, err := s.openfda.Query(ctx, openfda.Query{
		Endpoint: endpoint.Path,
		Search:   stringArg(args, "search"),
		Limit:    limit,
		Skip:     intArg(args, "skip", 0),
		Sort:     stringArg(args, "sort"),
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("dataset", dataset).Msg("search failed")
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := openfda.Summarize(endpoint.Path, resp)
	if note != "" {
		responseText = note + "\n\n" + responseText
	}
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleCountRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("endpoint")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	endpoint, err := openfda.ResolveEndpoint(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	countField, err := request.RequireString("count_field")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	limit, _ := openfda.ClampLimit(intArg(args, "limit", defaultLimit), maxCountLimit)

	resp, err := s.openfda.Query(ctx, openfda.Query{
		Endpoint: endpoint.Path,
		Search:   stringArg(args, "search"),
		Count:    countField,
		Limit:    limit,
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("endpoint", endpoint.Path).Msg("count failed")
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(openfda.SummarizeCounts(resp)), nil
}

func (s *Server) handleListSearchableFields(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	path, err := request.RequireString("endpoint")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := openfda.ResolveEndpoint(path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	category := stringArg(request.GetArguments(), "category")
	switch category {
	case "":
		category = openfda.FieldsCommon
	case openfda.FieldsCommon, openfda.FieldsAll:
	default:
		return mcp.NewToolResultError(fmt.Sprintf("Unknown category '%s'. Valid categories: %s, %s",
			category, openfda.FieldsCommon, openfda.FieldsAll)), nil
	}

	return mcp.NewToolResultText(openfda.FieldsList(path, category)), nil
}

func (s *Server) handleGetDecisionDocument(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	documentType, err := request.RequireString("document_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	submission, err := request.RequireString("submission_number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	url, err := documents.BuildDocumentURL(documentType, submission, stringArg(args, "supplement_number"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	maxLength := intArg(args, "max_length", s.config.PDFMaxLength)
	text, err := s.fetcher.FetchAndExtract(ctx, url, maxLength)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

// stringArg returns a string argument, or "" when absent
func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// intArg returns a numeric argument. JSON numbers arrive as float64.
func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return def
	}
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves MCP over stdin/stdout until ctx is done or input ends
func (s *Server) runStdioMode(ctx context.Context) error {
	s.logger.Debug().Msg("starting FDA MCP server in stdio mode")

	stdio := server.NewStdioServer(s.mcpServer)
	if err := stdio.Listen(ctx, s.stdin, s.stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over SSE and shuts down when ctx is done
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", addr).Msg("starting FDA MCP server in SSE mode")
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve SSE on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sse.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down SSE server: %w", err)
	}
	s.logger.Info().Msg("SSE server stopped")
	return nil
}
