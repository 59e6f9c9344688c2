package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/dotmap/internal/codec"
)

type setInput struct {
	Document documentInput `json:"document"         jsonschema:"The document to modify"`
	Path     string        `json:"path"             jsonschema:"Dot path to write"`
	Value    string        `json:"value,omitempty"  jsonschema:"JSON or YAML value to write. Ignored by mode unset."`
	Mode     string        `json:"mode,omitempty"   jsonschema:"set (default) or merge or unset"`
	Format   string        `json:"format,omitempty" jsonschema:"Output format: json (default) or yaml"`
}

type setOutput struct {
	Document string `json:"document"`
}

func handleSet(ctx context.Context, _ *mcp.CallToolRequest, input setInput) (*mcp.CallToolResult, setOutput, error) {
	if input.Path == "" {
		return errResult(fmt.Errorf("path is required")), setOutput{}, nil
	}
	doc, err := input.Document.decode(ctx)
	if err != nil {
		return errResult(err), setOutput{}, nil
	}

	var value any
	mode := strings.ToLower(input.Mode)
	if mode != "unset" {
		if value, err = codec.Decode([]byte(input.Value)); err != nil {
			return errResult(fmt.Errorf("invalid value: %w", err)), setOutput{}, nil
		}
	}

	switch mode {
	case "", "set":
		err = mutator.Set(&doc, input.Path, value)
	case "merge":
		err = mutator.Merge(&doc, input.Path, value)
	case "unset":
		err = mutator.Unset(&doc, input.Path)
	default:
		err = fmt.Errorf("invalid mode %q; valid values: set, merge, unset", input.Mode)
	}
	if err != nil {
		return errResult(err), setOutput{}, nil
	}

	var output setOutput
	if output.Document, err = encodeDocument(doc, input.Format); err != nil {
		return errResult(err), setOutput{}, nil
	}
	return nil, output, nil
}
