package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/dotmap/reverse"
	"github.com/erraggy/dotmap/template"
)

type reverseInput struct {
	Template documentInput `json:"template"          jsonschema:"The mapping template to invert"`
	Lenient  bool          `json:"lenient,omitempty" jsonschema:"Skip non-invertible leaves instead of failing"`
	Format   string        `json:"format,omitempty"  jsonschema:"Output format: json (default) or yaml"`
}

type reverseSkip struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

type reverseOutput struct {
	Template string        `json:"template"`
	Skipped  []reverseSkip `json:"skipped,omitempty"`
}

func handleReverse(ctx context.Context, _ *mcp.CallToolRequest, input reverseInput) (*mcp.CallToolResult, reverseOutput, error) {
	tpl, err := input.Template.template(ctx)
	if err != nil {
		return errResult(err), reverseOutput{}, nil
	}

	opts := []reverse.Option{reverse.WithTemplateOptions(template.WithParser(parser))}
	if input.Lenient {
		opts = append(opts, reverse.Lenient())
	}
	res, err := reverse.ReverseWithResult(tpl, opts...)
	if err != nil {
		return errResult(err), reverseOutput{}, nil
	}

	var output reverseOutput
	for _, s := range res.Skipped {
		output.Skipped = append(output.Skipped, reverseSkip{Path: s.Path, Reason: s.Reason})
	}
	if output.Template, err = encodeDocument(res.Template.Value(), input.Format); err != nil {
		return errResult(err), reverseOutput{}, nil
	}
	return nil, output, nil
}
