package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/a3tai/fda-mcp/internal/descriptions"
	"github.com/a3tai/fda-mcp/internal/openfda"
)

const (
	endpointsURI      = "fda://reference/endpoints"
	querySyntaxURI    = "fda://reference/query-syntax"
	fieldsURIPrefix   = "fda://reference/fields/"
	fieldsURITemplate = fieldsURIPrefix + "{+endpoint}"

	markdownMIMEType = "text/markdown"
)

// registerResources registers the static references and the per-endpoint
// field template
func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcp.NewResource(endpointsURI, "OpenFDA endpoints",
			mcp.WithResourceDescription(descriptions.EndpointsResourceDescription),
			mcp.WithMIMEType(markdownMIMEType),
		),
		s.handleEndpointsResource,
	)

	s.mcpServer.AddResource(
		mcp.NewResource(querySyntaxURI, "OpenFDA query syntax",
			mcp.WithResourceDescription(descriptions.QuerySyntaxResourceDescription),
			mcp.WithMIMEType(markdownMIMEType),
		),
		s.handleQuerySyntaxResource,
	)

	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(fieldsURITemplate, "OpenFDA endpoint fields",
			mcp.WithTemplateDescription(descriptions.FieldsResourceDescription),
			mcp.WithTemplateMIMEType(markdownMIMEType),
		),
		s.handleFieldsResource,
	)
}

func (s *Server) handleEndpointsResource(ctx context.Context, request mcp.ReadResourceRequest) (
	[]mcp.ResourceContents, error,
) {
	return markdown(request.Params.URI, openfda.EndpointsMarkdown()), nil
}

func (s *Server) handleQuerySyntaxResource(ctx context.Context, request mcp.ReadResourceRequest) (
	[]mcp.ResourceContents, error,
) {
	return markdown(request.Params.URI, descriptions.QuerySyntaxReference), nil
}

func (s *Server) handleFieldsResource(ctx context.Context, request mcp.ReadResourceRequest) (
	[]mcp.ResourceContents, error,
) {
	endpoint := strings.Trim(strings.TrimPrefix(request.Params.URI, fieldsURIPrefix), "/")
	if _, err := openfda.ResolveEndpoint(endpoint); err != nil {
		return nil, err
	}
	return markdown(request.Params.URI, openfda.FieldsText(endpoint)), nil
}

func markdown(uri, text string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: markdownMIMEType,
			Text:     text,
		},
	}
}
