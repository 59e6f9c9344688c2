package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/dotmap"
)

const usersJSON = `{"users": [{"name": "ada", "email": "a@x.io"}, {"name": "alan", "email": "b@x.io"}]}`

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestGet(t *testing.T) {
	doc := writeFile(t, "users.json", usersJSON)

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{name: "wildcard", args: []string{"get", doc, "users.*.email"}, want: `["a@x.io", "b@x.io"]`},
		{name: "scalar", args: []string{"get", doc, "users.1.name"}, want: `"alan"`},
		{name: "stdin", stdin: `{"a": {"b": 2}}`, args: []string{"get", "-", "a"}, want: `{"b": 2}`},
		{name: "missing", args: []string{"get", doc, "users.9.name"}, want: `null`},
		{name: "default", args: []string{"get", doc, "users.9.name", "--default", "nobody"}, want: `"nobody"`},
		{name: "present null", stdin: `{"a": null}`, args: []string{"get", "-", "a", "--strict"}, want: `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.stdin, tt.args...)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, out)
		})
	}
}

func TestGet_YAML(t *testing.T) {
	doc := writeFile(t, "users.json", usersJSON)
	out, _, err := execute(t, "", "get", doc, "users.*.name", "-f", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "- ada\n- alan\n", out)
}

func TestGet_Errors(t *testing.T) {
	doc := writeFile(t, "users.json", usersJSON)

	_, _, err := execute(t, "", "get", doc, "users.*.phone", "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, _, err = execute(t, "", "get", doc, "users..name")
	assert.Error(t, err)

	_, _, err = execute(t, "", "get", doc)
	assert.Error(t, err)

	_, _, err = execute(t, "", "get", doc, "users", "-f", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")

	_, _, err = execute(t, "", "get", filepath.Join(t.TempDir(), "missing.json"), "a")
	assert.Error(t, err)
}

func TestSet(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{name: "creates maps", stdin: `{}`, args: []string{"set", "-", "user.name", "Ada"}, want: `{"user": {"name": "Ada"}}`},
		{name: "creates lists", stdin: `{}`, args: []string{"set", "-", "tags.0", "x"}, want: `{"tags": ["x"]}`},
		{name: "parses values", stdin: `{}`, args: []string{"set", "-", "on", "true"}, want: `{"on": true}`},
		{name: "string values", stdin: `{}`, args: []string{"set", "-", "on", "true", "--string"}, want: `{"on": "true"}`},
		{name: "wildcard", stdin: usersJSON, args: []string{"set", "-", "users.*.email", "hidden"},
			want: `{"users": [{"name": "ada", "email": "hidden"}, {"name": "alan", "email": "hidden"}]}`},
		{name: "merge", stdin: `{"m": {"a": 1}}`, args: []string{"set", "-", "m", "{b: 2}", "--merge"}, want: `{"m": {"a": 1, "b": 2}}`},
		{name: "unset", stdin: `{"a": 1, "b": 2}`, args: []string{"set", "-", "a", "--unset"}, want: `{"b": 2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.stdin, tt.args...)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, out)
		})
	}
}

func TestSet_Errors(t *testing.T) {
	for name, args := range map[string][]string{
		"missing value":   {"set", "-", "a"},
		"unset and value": {"set", "-", "a", "1", "--unset"},
		"merge and unset": {"set", "-", "a", "--merge", "--unset"},
		"scalar clash":    {"set", "-", "a.b", "1"},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := execute(t, `{"a": 1}`, args...)
			assert.Error(t, err)
		})
	}
}

func TestMap(t *testing.T) {
	tpl := writeFile(t, "template.yaml", `
people:
  ORDER BY: name DESC
  "*":
    name: "{{ users.*.name | ucfirst }}"
    email: "{{ users.*.email | upper }}"
count: "{{ users.* | count }}"
`)
	out, stderr, err := execute(t, usersJSON, "map", tpl, "--stats")
	require.NoError(t, err)
	assert.JSONEq(t, `{
  "people": [{"name": "Alan", "email": "B@X.IO"}, {"name": "Ada", "email": "A@X.IO"}],
  "count": 2
}`, out)
	assert.Contains(t, stderr, "Written: 5")
	assert.Contains(t, stderr, "Skipped: 0")
}

func TestMap_Options(t *testing.T) {
	tpl := writeFile(t, "template.json", `{"a": "{{ a }}", "b": "{{ missing }}", "vals": "{{ m.* }}"}`)
	src := writeFile(t, "source.json", `{"a": " x ", "m": {"k1": 1, "k2": 2}}`)
	target := writeFile(t, "target.json", `{"keep": true}`)

	out, _, err := execute(t, "", "map", tpl, src,
		"--target", target,
		"--skip-null=false",
		"--reindex-wildcard=false",
		"--path-filter", "a=trim | upper",
	)
	require.NoError(t, err)
	assert.JSONEq(t, `{"keep": true, "a": "X", "b": null, "vals": {"k1": 1, "k2": 2}}`, out)
}

func TestMap_Reverse(t *testing.T) {
	tpl := writeFile(t, "template.json", `{"who": "{{ user.name }}", "emails": "{{ users.*.email }}"}`)
	out, _, err := execute(t, `{"who": "ada", "emails": ["a@x.io", "b@x.io"]}`, "map", tpl, "--reverse")
	require.NoError(t, err)
	assert.JSONEq(t, `{"user": {"name": "ada"}, "users": [{"email": "a@x.io"}, {"email": "b@x.io"}]}`, out)
}

func TestMap_Warnings(t *testing.T) {
	tpl := writeFile(t, "template.yaml", `
totals:
  GROUP BY: {fields: c, aggregations: {sum: SUM(v)}}
  "*": "{{ items.* }}"
`)
	source := `{"items": [{"c": "a", "v": 1}, {"c": "a", "v": "many"}]}`

	out, stderr, err := execute(t, source, "map", tpl)
	require.NoError(t, err)
	assert.JSONEq(t, `{"totals": [{"c": "a", "sum": 1}]}`, out)
	assert.Contains(t, stderr, "aggregation skipped a value")

	_, stderr, err = execute(t, source, "map", tpl, "--quiet")
	require.NoError(t, err)
	assert.Empty(t, stderr)
}

func TestMap_OutputFile(t *testing.T) {
	tpl := writeFile(t, "template.json", `{"n": "{{ users.0.name }}"}`)
	outPath := filepath.Join(t.TempDir(), "out.yaml")

	stdout, _, err := execute(t, usersJSON, "map", tpl, "-o", outPath, "-f", "yaml")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "n: ada\n", string(data))

	_, _, err = execute(t, usersJSON, "map", tpl, "-o", tpl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "would overwrite input file")

	link := filepath.Join(t.TempDir(), "link.json")
	require.NoError(t, os.Symlink(outPath, link))
	_, _, err = execute(t, usersJSON, "map", tpl, "-o", link)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symlink")
}

func TestMap_Errors(t *testing.T) {
	good := writeFile(t, "good.json", `{"a": "{{ a }}"}`)
	for name, tc := range map[string]struct {
		tpl  string
		args []string
	}{
		"unknown filter":     {tpl: `{"a": "{{ a | shout }}"}`},
		"unclosed":           {tpl: `{"a": "{{ a "}`},
		"bad path filter":    {tpl: `{"a": "{{ a }}"}`, args: []string{"--path-filter", "a=shout"}},
		"both stdin":         {args: []string{"-"}},
		"missing template":   {args: []string{filepath.Join(t.TempDir(), "nope.yaml")}},
		"nonexistent source": {args: []string{good, filepath.Join(t.TempDir(), "nope.json")}},
	} {
		t.Run(name, func(t *testing.T) {
			args := []string{"map"}
			if tc.tpl != "" {
				args = append(args, writeFile(t, "t.json", tc.tpl))
			} else if len(tc.args) > 0 && tc.args[0] == "-" {
				args = append(args, "-")
			}
			args = append(args, tc.args...)
			_, _, err := execute(t, `{"a": 1}`, args...)
			assert.Error(t, err)
		})
	}
}

func TestReverse(t *testing.T) {
	tpl := writeFile(t, "template.json", `{"a": "{{ x }}", "b": "{{ y | upper }}"}`)

	_, _, err := execute(t, "", "reverse", tpl)
	require.Error(t, err)

	out, stderr, err := execute(t, "", "reverse", tpl, "--lenient")
	require.NoError(t, err)
	assert.JSONEq(t, `{"x": "{{ a }}"}`, out)
	assert.Contains(t, stderr, "Skipped b:")

	_, stderr, err = execute(t, "", "reverse", tpl, "--lenient", "-q")
	require.NoError(t, err)
	assert.Empty(t, stderr)
}

func TestStructure(t *testing.T) {
	doc := writeFile(t, "users.yaml", "users:\n  - {id: 1, name: ada}\n  - {id: two, name: alan}\n")

	out, _, err := execute(t, "", "structure", doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"users.*.id": "int|string", "users.*.name": "string"}`, out)

	out, _, err = execute(t, "", "structure", doc, "--nested")
	require.NoError(t, err)
	assert.JSONEq(t, `{"users": {"*": {"id": "int|string", "name": "string"}}}`, out)
}

func TestFilters(t *testing.T) {
	out, _, err := execute(t, "", "filters")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))

	byName := make(map[string][]string)
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		byName[fields[0]] = fields[1:]
	}
	assert.Equal(t, []string{"-", "afterTransform,", "beforeWrite"}, byName["upper"])
	assert.Equal(t, []string{"-", "-"}, byName["title"])
	assert.Equal(t, "lpad", byName["pad_left"][0])
	assert.NotContains(t, byName, "lpad", "aliases are listed with their filter")
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "dotmap v"+dotmap.Version()+"\n", out)

	out, _, err = execute(t, "", "version", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "Go Version:")
}

func TestLogLevel(t *testing.T) {
	_, _, err := execute(t, "", "version", "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")

	for _, level := range []string{"debug", "INFO", "warning", "error"} {
		_, err := parseLevel(level)
		assert.NoError(t, err, level)
	}
}

func TestValidateOutputFormat(t *testing.T) {
	for _, f := range []string{"json", "yaml", "yml"} {
		_, err := ValidateOutputFormat(f)
		assert.NoError(t, err, f)
	}
	for _, f := range []string{"", "text", "xml"} {
		_, err := ValidateOutputFormat(f)
		assert.Error(t, err, f)
	}
}

func TestDecodeValue(t *testing.T) {
	assert.Equal(t, 42, decodeValue("42"))
	assert.Equal(t, "plain words", decodeValue("plain words"))
	assert.Equal(t, "{unclosed", decodeValue("{unclosed"))
	assert.Equal(t, []any{1, 2}, decodeValue("[1, 2]"))
}

func TestFormatInputPath(t *testing.T) {
	assert.Equal(t, "<stdin>", FormatInputPath(StdinFilePath))
	assert.Equal(t, "a.yaml", FormatInputPath("a.yaml"))
}
