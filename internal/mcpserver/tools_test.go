package mcpserver

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersDoc = `{"users": [{"email": "a@x.io", "age": 30}, {"email": "b@x.io", "age": 41}]}`

func content(s string) documentInput {
	return documentInput{Content: s}
}

func TestGetTool(t *testing.T) {
	tests := []struct {
		name  string
		input getInput
		found bool
		count int
		value string
	}{
		{
			name:  "wildcard",
			input: getInput{Document: content(usersDoc), Path: "users.*.email"},
			found: true, count: 2, value: `["a@x.io", "b@x.io"]`,
		},
		{
			name:  "scalar",
			input: getInput{Document: content(usersDoc), Path: "users.1.age"},
			found: true, count: 1, value: `41`,
		},
		{
			name:  "container",
			input: getInput{Document: content(usersDoc), Path: "users.0"},
			found: true, count: 1, value: `{"email": "a@x.io", "age": 30}`,
		},
		{
			name:  "missing with default",
			input: getInput{Document: content(usersDoc), Path: "users.5.email", Default: `"none"`},
			found: false, count: 0, value: `"none"`,
		},
		{
			name:  "missing wildcard",
			input: getInput{Document: content(usersDoc), Path: "users.*.phone"},
			found: false, count: 0, value: `null`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, output, err := handleGet(context.Background(), &mcp.CallToolRequest{}, tt.input)
			require.NoError(t, err)
			require.Nil(t, res)
			assert.Equal(t, tt.found, output.Found)
			assert.Equal(t, tt.count, output.Count)
			assert.JSONEq(t, tt.value, output.Value)
		})
	}
}

func TestGetTool_YAMLOutput(t *testing.T) {
	_, output, err := handleGet(context.Background(), &mcp.CallToolRequest{},
		getInput{Document: content(usersDoc), Path: "users.0", Format: "yaml"})
	require.NoError(t, err)
	assert.Contains(t, output.Value, "email: a@x.io")
}

func TestGetTool_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input getInput
		want  string
	}{
		{name: "no path", input: getInput{Document: content(usersDoc)}, want: "path is required"},
		{name: "bad path", input: getInput{Document: content(usersDoc), Path: "a..b"}, want: "path"},
		{name: "no document", input: getInput{Path: "a"}, want: "exactly one of file, url, or content"},
		{name: "two documents", input: getInput{Document: documentInput{Content: "{}", File: "x.json"}, Path: "a"}, want: "got 2"},
		{name: "bad format", input: getInput{Document: content(usersDoc), Path: "users", Format: "xml"}, want: "xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _, err := handleGet(context.Background(), &mcp.CallToolRequest{}, tt.input)
			require.NoError(t, err)
			require.NotNil(t, res)
			assert.True(t, res.IsError)
			assert.Contains(t, res.Content[0].(*mcp.TextContent).Text, tt.want)
		})
	}
}

func TestSetTool(t *testing.T) {
	tests := []struct {
		name  string
		input setInput
		want  string
	}{
		{
			name:  "set creates maps",
			input: setInput{Document: content(`{}`), Path: "user.name", Value: `Ada`},
			want:  `{"user": {"name": "Ada"}}`,
		},
		{
			name:  "numeric segment creates list",
			input: setInput{Document: content(`{}`), Path: "tags.0", Value: `x`},
			want:  `{"tags": ["x"]}`,
		},
		{
			name:  "wildcard writes every element",
			input: setInput{Document: content(usersDoc), Path: "users.*.age", Value: `0`},
			want:  `{"users": [{"email": "a@x.io", "age": 0}, {"email": "b@x.io", "age": 0}]}`,
		},
		{
			name:  "merge",
			input: setInput{Document: content(`{"a": {"b": 1}}`), Path: "a", Value: `{"c": 2}`, Mode: "merge"},
			want:  `{"a": {"b": 1, "c": 2}}`,
		},
		{
			name:  "unset",
			input: setInput{Document: content(`{"a": 1, "b": 2}`), Path: "a", Mode: "unset"},
			want:  `{"b": 2}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, output, err := handleSet(context.Background(), &mcp.CallToolRequest{}, tt.input)
			require.NoError(t, err)
			require.Nil(t, res)
			assert.JSONEq(t, tt.want, output.Document)
		})
	}
}

func TestSetTool_Errors(t *testing.T) {
	for name, input := range map[string]setInput{
		"no path":      {Document: content(`{}`), Value: "1"},
		"bad mode":     {Document: content(`{}`), Path: "a", Value: "1", Mode: "replace"},
		"scalar clash": {Document: content(`{"a": 1}`), Path: "a.b", Value: "1"},
	} {
		t.Run(name, func(t *testing.T) {
			res, _, err := handleSet(context.Background(), &mcp.CallToolRequest{}, input)
			require.NoError(t, err)
			require.NotNil(t, res)
			assert.True(t, res.IsError)
		})
	}
}

func TestMapTool(t *testing.T) {
	res, output, err := handleMap(context.Background(), &mcp.CallToolRequest{}, mapInput{
		Source:   content(`{"user": {"name": "al", "age": null}}`),
		Template: content(`{"name": "{{ user.name | upper }}", "age": "{{ user.age ?? 18 }}"}`),
	})
	require.NoError(t, err)
	require.Nil(t, res)
	assert.JSONEq(t, `{"name": "AL", "age": 18}`, output.Document)
	assert.Equal(t, 2, output.Written)
	assert.Zero(t, output.Skipped)
}

func TestMapTool_BlockRoot(t *testing.T) {
	_, output, err := handleMap(context.Background(), &mcp.CallToolRequest{}, mapInput{
		Source: content(`{"products": [{"p": 50}, {"p": 200}, {"p": 150}]}`),
		Template: content(`
WHERE: {p: [">", 100]}
ORDER BY: p DESC
LIMIT: 1
"*": "{{ products.* }}"
`),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"p": 200}]`, output.Document)
}

func TestMapTool_Options(t *testing.T) {
	skip := false
	reindex := false
	_, output, err := handleMap(context.Background(), &mcp.CallToolRequest{}, mapInput{
		Source:          content(`{"a": " x ", "m": {"k1": 1, "k2": 2}}`),
		Template:        content(`{"a": "{{ a }}", "b": "{{ missing }}", "vals": "{{ m.* }}"}`),
		Target:          &documentInput{Content: `{"keep": true}`},
		SkipNull:        &skip,
		ReindexWildcard: &reindex,
		PathFilters:     map[string]string{"a": "trim | upper"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"keep": true, "a": "X", "b": null, "vals": {"k1": 1, "k2": 2}}`, output.Document)
	assert.Equal(t, 4, output.Written)
}

func TestMapTool_Warnings(t *testing.T) {
	_, output, err := handleMap(context.Background(), &mcp.CallToolRequest{}, mapInput{
		Source: content(`{"items": [{"c": "a", "v": 1}, {"c": "a", "v": "many"}]}`),
		Template: content(`
totals:
  GROUP BY: {fields: c, aggregations: {sum: SUM(v)}}
  "*": "{{ items.* }}"
`),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"totals": [{"c": "a", "sum": 1}]}`, output.Document)
	require.Len(t, output.Warnings, 1)
	assert.Contains(t, output.Warnings[0], "SUM")
}

func TestMapTool_Errors(t *testing.T) {
	for name, input := range map[string]mapInput{
		"unknown filter":      {Source: content(`{"a": 1}`), Template: content(`{"a": "{{ a | nope }}"}`)},
		"bad template":        {Source: content(`{}`), Template: content(`{"a": "{{ a "}`)},
		"missing source":      {Template: content(`{"a": "{{ a }}"}`)},
		"bad path filter":     {Source: content(`{}`), Template: content(`{}`), PathFilters: map[string]string{"a": "nope"}},
		"unresolved alias":    {Source: content(`{}`), Template: content(`{"a": "{{ @b }}"}`)},
		"directives no block": {Source: content(`{}`), Template: content(`{"x": {"LIMIT": 1}}`)},
	} {
		t.Run(name, func(t *testing.T) {
			res, _, err := handleMap(context.Background(), &mcp.CallToolRequest{}, input)
			require.NoError(t, err)
			require.NotNil(t, res)
			assert.True(t, res.IsError)
		})
	}
}

func TestReverseTool(t *testing.T) {
	res, output, err := handleReverse(context.Background(), &mcp.CallToolRequest{}, reverseInput{
		Template: content(`{"name": "{{ user.name }}", "emails": "{{ users.*.email }}"}`),
	})
	require.NoError(t, err)
	require.Nil(t, res)
	assert.JSONEq(t, `{"user": {"name": "{{ name }}"}, "users": {"*": {"email": "{{ emails.* }}"}}}`, output.Template)
	assert.Empty(t, output.Skipped)
}

func TestReverseTool_Lenient(t *testing.T) {
	tpl := content(`{"a": "{{ x }}", "b": "{{ y | upper }}"}`)

	res, _, err := handleReverse(context.Background(), &mcp.CallToolRequest{}, reverseInput{Template: tpl})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.IsError)

	res, output, err := handleReverse(context.Background(), &mcp.CallToolRequest{}, reverseInput{Template: tpl, Lenient: true})
	require.NoError(t, err)
	require.Nil(t, res)
	assert.JSONEq(t, `{"x": "{{ a }}"}`, output.Template)
	require.Len(t, output.Skipped, 1)
	assert.Equal(t, "b", output.Skipped[0].Path)
	assert.NotEmpty(t, output.Skipped[0].Reason)
}

func TestStructureTool(t *testing.T) {
	_, output, err := handleStructure(context.Background(), &mcp.CallToolRequest{}, structureInput{Document: content(usersDoc)})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"users.*.email": "string", "users.*.age": "int"}, output.Paths)
	assert.Empty(t, output.Shape)

	_, output, err = handleStructure(context.Background(), &mcp.CallToolRequest{}, structureInput{Document: content(usersDoc), Nested: true})
	require.NoError(t, err)
	assert.Nil(t, output.Paths)
	assert.JSONEq(t, `{"users": {"*": {"email": "string", "age": "int"}}}`, output.Shape)
}
