package mcpserver

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Mapping defaults, overridable per call.
	SkipNull        bool
	ReindexWildcard bool

	// Cache settings.
	PathCacheSize     int
	TemplateCacheSize int

	// Input limits.
	MaxInputSize    int64
	AllowPrivateIPs bool
	FetchTimeout    time.Duration
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from DOTMAP_* environment variables.
// Invalid values log a warning and fall back to the default.
func loadConfig() *serverConfig {
	return &serverConfig{
		SkipNull:          env("DOTMAP_SKIP_NULL", true, cast.ToBoolE),
		ReindexWildcard:   env("DOTMAP_REINDEX_WILDCARD", true, cast.ToBoolE),
		PathCacheSize:     env("DOTMAP_PATH_CACHE_SIZE", 4096, positive(cast.ToIntE)),
		TemplateCacheSize: env("DOTMAP_TEMPLATE_CACHE_SIZE", 64, positive(cast.ToIntE)),
		MaxInputSize:      env("DOTMAP_MAX_INPUT_SIZE", int64(10*1024*1024), positive(cast.ToInt64E)),
		AllowPrivateIPs:   env("DOTMAP_ALLOW_PRIVATE_IPS", false, cast.ToBoolE),
		FetchTimeout:      env("DOTMAP_FETCH_TIMEOUT", 30*time.Second, positive(parseTimeout)),
	}
}

// env parses the variable key, returning fallback when it is unset or
// does not parse.
func env[T any](key string, fallback T, parse func(any) (T, error)) T {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := parse(v)
	if err != nil {
		slog.Warn("invalid env var, using default", "key", key, "value", v, "default", fallback, "error", err)
		return fallback
	}
	return parsed
}

var errNotPositive = errors.New("must be greater than zero")

type number interface {
	~int | ~int64
}

func positive[T number](parse func(any) (T, error)) func(any) (T, error) {
	return func(v any) (T, error) {
		n, err := parse(v)
		if err != nil {
			return n, err
		}
		if n <= 0 {
			return n, errNotPositive
		}
		return n, nil
	}
}

// parseTimeout accepts Go durations ("45s", "2m") and bare numbers of
// seconds.
func parseTimeout(v any) (time.Duration, error) {
	if secs, err := cast.ToIntE(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return cast.ToDurationE(v)
}
