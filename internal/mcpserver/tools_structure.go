package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type structureInput struct {
	Document documentInput `json:"document"         jsonschema:"The document to describe"`
	Nested   bool          `json:"nested,omitempty" jsonschema:"Return the shape as a nested document instead of a path to type map"`
	Format   string        `json:"format,omitempty" jsonschema:"Output format of the nested shape: json (default) or yaml"`
}

type structureOutput struct {
	Paths map[string]string `json:"paths,omitempty"`
	Shape string            `json:"shape,omitempty"`
}

func handleStructure(ctx context.Context, _ *mcp.CallToolRequest, input structureInput) (*mcp.CallToolResult, structureOutput, error) {
	root, err := input.Document.decode(ctx)
	if err != nil {
		return errResult(err), structureOutput{}, nil
	}

	var output structureOutput
	if !input.Nested {
		output.Paths = accessor.Structure(root)
		return nil, output, nil
	}
	if output.Shape, err = encodeDocument(accessor.StructureMultidimensional(root), input.Format); err != nil {
		return errResult(err), structureOutput{}, nil
	}
	return nil, output, nil
}
