// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes dotmap capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/dotmap"
	"github.com/erraggy/dotmap/dotpath"
	"github.com/erraggy/dotmap/expr"
)

const serverInstructions = `dotmap MCP server: reads, writes and reshapes JSON and YAML documents with dot-notation paths and mapping templates.

Documents are passed as {file}, {url} or {content}. Paths use dots between keys and * as a wildcard, e.g. users.*.email.

Configuration: defaults come from DOTMAP_* environment variables set in your MCP client config.

Key settings:
- DOTMAP_SKIP_NULL (default: true): do not write nil values when mapping
- DOTMAP_REINDEX_WILDCARD (default: true): write wildcard results as lists numbered from 0
- DOTMAP_PATH_CACHE_SIZE (default: 4096): compiled path cache entries
- DOTMAP_TEMPLATE_CACHE_SIZE (default: 64): parsed template cache entries
- DOTMAP_MAX_INPUT_SIZE (default: 10485760): maximum document size in bytes
- DOTMAP_ALLOW_PRIVATE_IPS (default: false): allow url inputs on private networks
- DOTMAP_FETCH_TIMEOUT (default: 30s): timeout for url inputs, as a duration or seconds`

// Shared parse caches. Compiled paths and parsed expressions are immutable.
var (
	compiler = dotpath.NewCompiler(dotpath.WithMaxEntries(cfg.PathCacheSize))
	parser   = expr.NewParser(expr.WithCompiler(compiler))
	accessor = dotpath.NewAccessor(dotpath.WithCompiler(compiler))
	mutator  = dotpath.NewMutator(dotpath.WithCompiler(compiler))
)

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "dotmap", Version: dotmap.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get",
		Description: "Read the value at a dot path in a JSON or YAML document. Wildcard paths such as users.*.email return a list of every match and its count. Missing paths are not errors: found is false and the optional default is returned instead.",
	}, handleGet)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set",
		Description: "Write a value at a dot path and return the updated document. Mode set (default) replaces the value and creates missing containers, numeric segments create lists. Mode merge deep-merges maps and lists into the existing value. Mode unset removes the key. A * segment writes to every existing element.",
	}, handleSet)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "map",
		Description: "Map a source document through a template and return the target document. Template leaves are expressions like \"{{ user.name | upper ?? 'n/a' }}\". A map with a \"*\" key expands once per wildcard element and may carry WHERE, GROUP BY, HAVING, ORDER BY, DISTINCT, OFFSET and LIMIT directives. Use path_filters to post-process values at target paths. Returns counts of written and skipped values and aggregation warnings.",
	}, handleMap)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reverse",
		Description: "Derive the inverse of a mapping template: mapping a target through it rebuilds the source. Only plain path leaves are invertible. Leaves with filters, defaults, aliases, literals or directives are rejected, or skipped and reported when lenient=true.",
	}, handleReverse)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "structure",
		Description: "Describe the shape of a document: every leaf path mapped to its type, with list indices collapsed to *. Use nested=true for the same information as a nested document.",
	}, handleStructure)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
