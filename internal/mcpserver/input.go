package mcpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/erraggy/dotmap"
	"github.com/erraggy/dotmap/dotpath"
	"github.com/erraggy/dotmap/internal/cache"
	"github.com/erraggy/dotmap/internal/codec"
	"github.com/erraggy/dotmap/internal/options"
	"github.com/erraggy/dotmap/template"
)

// documentInput represents the three ways a JSON or YAML document can be
// provided to a tool. Exactly one of File, URL, or Content must be set.
type documentInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a JSON or YAML file on disk"`
	URL     string `json:"url,omitempty"     jsonschema:"URL to fetch a JSON or YAML document from"`
	Content string `json:"content,omitempty" jsonschema:"Inline JSON or YAML document"`
}

// isSet reports whether any source was given.
func (d documentInput) isSet() bool {
	return d.File != "" || d.URL != "" || d.Content != ""
}

// read returns the raw document bytes, enforcing cfg.MaxInputSize.
func (d documentInput) read(ctx context.Context) ([]byte, error) {
	err := options.ValidateSingleInputSource(
		options.Source{Name: "file", Set: d.File != ""},
		options.Source{Name: "url", Set: d.URL != ""},
		options.Source{Name: "content", Set: d.Content != ""},
	)
	if err != nil {
		return nil, err
	}

	switch {
	case d.Content != "":
		if int64(len(d.Content)) > cfg.MaxInputSize {
			return nil, fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; set DOTMAP_MAX_INPUT_SIZE to increase",
				len(d.Content), cfg.MaxInputSize)
		}
		return []byte(d.Content), nil
	case d.File != "":
		info, err := os.Stat(d.File)
		if err != nil {
			return nil, err
		}
		if info.Size() > cfg.MaxInputSize {
			return nil, fmt.Errorf("file size %d bytes exceeds maximum %d bytes; set DOTMAP_MAX_INPUT_SIZE to increase",
				info.Size(), cfg.MaxInputSize)
		}
		return os.ReadFile(d.File)
	default:
		return fetch(ctx, d.URL)
	}
}

// decode reads and decodes the document.
func (d documentInput) decode(ctx context.Context) (any, error) {
	data, err := d.read(ctx)
	if err != nil {
		return nil, err
	}
	return codec.Decode(data)
}

// templates caches parsed templates by content hash. Templates are
// immutable, so cached entries are shared between calls.
var templates = cache.NewBounded[*template.Template](cfg.TemplateCacheSize)

// template reads the document and parses it as a template.
func (d documentInput) template(ctx context.Context) (*template.Template, error) {
	data, err := d.read(ctx)
	if err != nil {
		return nil, err
	}
	h := sha256.Sum256(data)
	return templates.GetOrLoad(hex.EncodeToString(h[:]), func() (*template.Template, error) {
		return template.Parse(data, template.WithParser(parser))
	})
}

// fetch downloads a document over HTTP(S).
func fetch(ctx context.Context, raw string) ([]byte, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q, expected http or https", u.Scheme)
	}

	client := newFetchClient(cfg.FetchTimeout, cfg.AllowPrivateIPs)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", dotmap.UserAgent())

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", u.Redacted(), resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, cfg.MaxInputSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > cfg.MaxInputSize {
		return nil, fmt.Errorf("document at %s exceeds maximum %d bytes", u.Redacted(), cfg.MaxInputSize)
	}
	return data, nil
}

// encodeDocument renders v in the requested output format. JSON is the
// default.
func encodeDocument(v any, format string) (string, error) {
	f := codec.FormatJSON
	if format != "" {
		var err error
		if f, err = codec.ParseFormat(format); err != nil {
			return "", err
		}
	}
	data, err := codec.Encode(v, f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// plain unwraps wildcard results into lists.
func plain(v any) any {
	if rs, ok := v.(*dotpath.ResultSet); ok {
		return rs.Values()
	}
	return v
}
