package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/dotmap/dotpath"
	"github.com/erraggy/dotmap/internal/codec"
)

type getInput struct {
	Document documentInput `json:"document"          jsonschema:"The document to read"`
	Path     string        `json:"path"              jsonschema:"Dot path to read. Use * to match every element of a list or map."`
	Default  string        `json:"default,omitempty" jsonschema:"JSON or YAML value returned when the path does not resolve"`
	Format   string        `json:"format,omitempty"  jsonschema:"Output format of value: json (default) or yaml"`
}

type getOutput struct {
	Found bool   `json:"found"`
	Count int    `json:"count"`
	Value string `json:"value"`
}

func handleGet(ctx context.Context, _ *mcp.CallToolRequest, input getInput) (*mcp.CallToolResult, getOutput, error) {
	if input.Path == "" {
		return errResult(fmt.Errorf("path is required")), getOutput{}, nil
	}
	path, err := compiler.Compile(input.Path)
	if err != nil {
		return errResult(err), getOutput{}, nil
	}
	root, err := input.Document.decode(ctx)
	if err != nil {
		return errResult(err), getOutput{}, nil
	}

	var output getOutput
	v := accessor.GetPath(root, path, nil)
	switch val := v.(type) {
	case *dotpath.ResultSet:
		output.Found, output.Count = true, val.Len()
	default:
		if _, ok := accessor.Lookup(root, path.Segments()); ok {
			output.Found, output.Count = true, 1
		}
	}
	if !output.Found && input.Default != "" {
		if v, err = codec.Decode([]byte(input.Default)); err != nil {
			return errResult(fmt.Errorf("invalid default: %w", err)), getOutput{}, nil
		}
	}

	if output.Value, err = encodeDocument(plain(v), input.Format); err != nil {
		return errResult(err), getOutput{}, nil
	}
	return nil, output, nil
}
