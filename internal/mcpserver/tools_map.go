package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/dotmap/mapper"
)

type mapInput struct {
	Source          documentInput     `json:"source"                     jsonschema:"The source document"`
	Template        documentInput     `json:"template"                   jsonschema:"The mapping template as JSON or YAML"`
	Target          *documentInput    `json:"target,omitempty"           jsonschema:"Existing target document to write into. Defaults to an empty document."`
	SkipNull        *bool             `json:"skip_null,omitempty"        jsonschema:"Do not write nil values. Defaults to DOTMAP_SKIP_NULL."`
	ReindexWildcard *bool             `json:"reindex_wildcard,omitempty" jsonschema:"Write wildcard results as lists numbered from 0 instead of keeping source keys. Defaults to DOTMAP_REINDEX_WILDCARD."`
	PathFilters     map[string]string `json:"path_filters,omitempty"     jsonschema:"Filter chains keyed by target path pattern such as {\"users.*.email\": \"trim | lower\"}"`
	Format          string            `json:"format,omitempty"           jsonschema:"Output format: json (default) or yaml"`
}

type mapOutput struct {
	Document string   `json:"document"`
	Written  int      `json:"written"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

// newMapper builds a mapper from the server defaults and per-call overrides.
func newMapper(skipNull, reindex *bool, pathFilters map[string]string) (*mapper.Mapper, error) {
	opts := []mapper.Option{
		mapper.WithSkipNull(cfg.SkipNull),
		mapper.WithReindexWildcard(cfg.ReindexWildcard),
		mapper.WithCompiler(compiler),
		mapper.WithParser(parser),
	}
	if skipNull != nil {
		opts = append(opts, mapper.WithSkipNull(*skipNull))
	}
	if reindex != nil {
		opts = append(opts, mapper.WithReindexWildcard(*reindex))
	}
	if len(pathFilters) > 0 {
		opts = append(opts, mapper.WithPathFilters(pathFilters))
	}
	return mapper.New(opts...)
}

func handleMap(ctx context.Context, _ *mcp.CallToolRequest, input mapInput) (*mcp.CallToolResult, mapOutput, error) {
	m, err := newMapper(input.SkipNull, input.ReindexWildcard, input.PathFilters)
	if err != nil {
		return errResult(err), mapOutput{}, nil
	}
	tpl, err := input.Template.template(ctx)
	if err != nil {
		return errResult(err), mapOutput{}, nil
	}
	source, err := input.Source.decode(ctx)
	if err != nil {
		return errResult(err), mapOutput{}, nil
	}
	var target any
	if input.Target != nil && input.Target.isSet() {
		if target, err = input.Target.decode(ctx); err != nil {
			return errResult(err), mapOutput{}, nil
		}
	}

	res, err := m.MapWithResult(source, target, tpl)
	if err != nil {
		return errResult(err), mapOutput{}, nil
	}

	output := mapOutput{Written: res.Written, Skipped: res.Skipped}
	for _, w := range res.Warnings {
		output.Warnings = append(output.Warnings, sanitizeError(w))
	}
	if output.Document, err = encodeDocument(res.Target, input.Format); err != nil {
		return errResult(err), mapOutput{}, nil
	}
	return nil, output, nil
}
