package dotpath

import (
	"github.com/erraggy/dotmap/internal/cache"
)

// Compiler parses dot paths and caches the results by raw string.
// A Compiler is safe for concurrent use.
type Compiler struct {
	cache *cache.Cache[*Path]
}

// CompilerOption configures a Compiler.
type CompilerOption func(*compilerConfig)

type compilerConfig struct {
	maxEntries int
}

// WithMaxEntries bounds the cache to n entries, evicting the least recently
// used path. Zero or a negative n keeps the cache unbounded.
func WithMaxEntries(n int) CompilerOption {
	return func(cfg *compilerConfig) {
		cfg.maxEntries = n
	}
}

// NewCompiler creates a Compiler with an empty cache.
func NewCompiler(opts ...CompilerOption) *Compiler {
	var cfg compilerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Compiler{cache: cache.NewBounded[*Path](cfg.maxEntries)}
}

// Compile parses raw, returning the cached *Path when raw was seen before.
// Malformed paths return a *dmerrors.PathError and are not cached.
func (c *Compiler) Compile(raw string) (*Path, error) {
	return c.cache.GetOrLoad(raw, func() (*Path, error) {
		return parse(raw)
	})
}

// MustCompile is like Compile but panics on malformed paths.
// It is intended for package-level path variables.
func (c *Compiler) MustCompile(raw string) *Path {
	p, err := c.Compile(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// Len returns the number of cached paths.
func (c *Compiler) Len() int {
	return c.cache.Len()
}

// Clear empties the cache.
func (c *Compiler) Clear() {
	c.cache.Clear()
}

var defaultCompiler = NewCompiler()

// DefaultCompiler returns the process-wide compiler used by the package-level functions.
func DefaultCompiler() *Compiler {
	return defaultCompiler
}

// Compile parses raw with the default compiler.
func Compile(raw string) (*Path, error) {
	return defaultCompiler.Compile(raw)
}

// MustCompile parses raw with the default compiler and panics on error.
func MustCompile(raw string) *Path {
	return defaultCompiler.MustCompile(raw)
}

// ClearCache empties the default compiler's cache.
func ClearCache() {
	defaultCompiler.Clear()
}
