package mapper

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/erraggy/dotmap/container"
	"github.com/erraggy/dotmap/dmerrors"
	"github.com/erraggy/dotmap/dotpath"
	"github.com/erraggy/dotmap/expr"
	"github.com/erraggy/dotmap/filter"
	"github.com/erraggy/dotmap/hook"
)

// Option configures a Mapper.
type Option func(*config) error

type config struct {
	skipNull bool
	reindex  bool

	hooks    *hook.Pipeline
	filters  *filter.Registry
	custom   []filter.Filter
	adapters []container.Adapter
	registry *container.Registry
	compiler *dotpath.Compiler
	parser   *expr.Parser
	logger   Logger

	pathFilters  map[string]string
	phaseFilters []phaseFilter
}

type phaseFilter struct {
	phase hook.Phase
	name  string
	args  []any
}

// WithSkipNull controls whether nil leaf values are written. Default true:
// nil values are skipped.
func WithSkipNull(skip bool) Option {
	return func(cfg *config) error {
		cfg.skipNull = skip
		return nil
	}
}

// WithReindexWildcard controls how wildcard results are written. Default
// true: as lists numbered from 0. When false each element keeps the key it
// had in the source.
func WithReindexWildcard(reindex bool) Option {
	return func(cfg *config) error {
		cfg.reindex = reindex
		return nil
	}
}

// WithHooks appends the callbacks of p to the mapper's pipeline.
func WithHooks(p *hook.Pipeline) Option {
	return func(cfg *config) error {
		if p == nil {
			return &dmerrors.ConfigError{Option: "WithHooks", Message: "pipeline cannot be nil"}
		}
		cfg.hooks.Merge(p)
		return nil
	}
}

// WithHook registers one callback for a phase.
func WithHook(phase hook.Phase, fn hook.Func) Option {
	return func(cfg *config) error {
		if _, err := hook.ParsePhase(string(phase)); err != nil {
			return &dmerrors.ConfigError{Option: "WithHook", Value: phase, Cause: err}
		}
		if fn == nil {
			return &dmerrors.ConfigError{Option: "WithHook", Message: "hook cannot be nil"}
		}
		cfg.hooks.On(phase, fn)
		return nil
	}
}

// WithFilterRegistry resolves filters from r instead of the default registry.
func WithFilterRegistry(r *filter.Registry) Option {
	return func(cfg *config) error {
		if r == nil {
			return &dmerrors.ConfigError{Option: "WithFilterRegistry", Message: "registry cannot be nil"}
		}
		cfg.filters = r
		return nil
	}
}

// WithFilters registers custom filters on a copy of the mapper's registry.
// Existing names are overridden unless the registry is strict.
func WithFilters(filters ...filter.Filter) Option {
	return func(cfg *config) error {
		cfg.custom = append(cfg.custom, filters...)
		return nil
	}
}

// WithAdapters ranks custom container adapters ahead of the built-ins.
func WithAdapters(adapters ...container.Adapter) Option {
	return func(cfg *config) error {
		for _, a := range adapters {
			if a == nil {
				return &dmerrors.ConfigError{Option: "WithAdapters", Message: "adapter cannot be nil"}
			}
		}
		cfg.adapters = append(cfg.adapters, adapters...)
		return nil
	}
}

// WithCompiler compiles paths with c.
func WithCompiler(c *dotpath.Compiler) Option {
	return func(cfg *config) error {
		if c == nil {
			return &dmerrors.ConfigError{Option: "WithCompiler", Message: "compiler cannot be nil"}
		}
		cfg.compiler = c
		return nil
	}
}

// WithParser parses expressions with p.
func WithParser(p *expr.Parser) Option {
	return func(cfg *config) error {
		if p == nil {
			return &dmerrors.ConfigError{Option: "WithParser", Message: "parser cannot be nil"}
		}
		cfg.parser = p
		return nil
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			l = NopLogger{}
		}
		cfg.logger = l
		return nil
	}
}

// WithPathFilters registers default filter chains keyed by target path
// pattern. A "*" segment in a pattern matches any index. The chain uses
// expression syntax, such as "trim | pad_left:5:0", and runs after the
// leaf's own expression:
//
//	mapper.WithPathFilters(map[string]string{
//		"user.email":   "trim | lower",
//		"orders.*.sku": "upper",
//	})
func WithPathFilters(chains map[string]string) Option {
	return func(cfg *config) error {
		if cfg.pathFilters == nil {
			cfg.pathFilters = make(map[string]string, len(chains))
		}
		for pattern, chain := range chains {
			if _, err := dotpath.Compile(pattern); err != nil {
				return &dmerrors.ConfigError{Option: "WithPathFilters", Value: pattern, Cause: err}
			}
			if strings.TrimSpace(chain) == "" {
				return &dmerrors.ConfigError{Option: "WithPathFilters", Value: pattern, Message: "empty filter chain"}
			}
			cfg.pathFilters[pattern] = chain
		}
		return nil
	}
}

// WithPhaseFilter runs a registered filter at a hook phase, ahead of the
// phase's hooks. The filter must declare the phase.
func WithPhaseFilter(phase hook.Phase, name string, args ...any) Option {
	return func(cfg *config) error {
		if _, err := hook.ParsePhase(string(phase)); err != nil {
			return &dmerrors.ConfigError{Option: "WithPhaseFilter", Value: phase, Cause: err}
		}
		if name == "" {
			return &dmerrors.ConfigError{Option: "WithPhaseFilter", Message: "filter name cannot be empty"}
		}
		cfg.phaseFilters = append(cfg.phaseFilters, phaseFilter{phase: phase, name: name, args: args})
		return nil
	}
}

func applyOptions(opts ...Option) (*config, error) {
	cfg := &config{
		skipNull: true,
		reindex:  true,
		hooks:    hook.New(),
		logger:   NopLogger{},
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.compiler == nil {
		cfg.compiler = dotpath.DefaultCompiler()
	}
	if cfg.parser == nil {
		cfg.parser = expr.DefaultParser()
	}
	cfg.registry = container.Default().With(cfg.adapters...)

	if cfg.filters == nil {
		cfg.filters = filter.Default()
	}
	if len(cfg.custom) > 0 {
		cfg.filters = cfg.filters.Clone()
		for _, f := range cfg.custom {
			if err := cfg.filters.Register(f); err != nil {
				return nil, err
			}
		}
	}

	for _, pf := range cfg.phaseFilters {
		f, ok := cfg.filters.Lookup(pf.name)
		if !ok {
			return nil, &dmerrors.ConfigError{
				Option:  "WithPhaseFilter",
				Value:   pf.name,
				Cause:   &dmerrors.FilterError{Name: pf.name, Unknown: true},
				Message: "unknown filter",
			}
		}
		if !f.SupportsPhase(pf.phase) {
			return nil, &dmerrors.ConfigError{
				Option:  "WithPhaseFilter",
				Value:   pf.name,
				Message: fmt.Sprintf("filter cannot run at %s", pf.phase),
			}
		}
	}
	return cfg, nil
}

// compiledPathFilter is a WithPathFilters entry ready to apply.
type compiledPathFilter struct {
	pattern []string
	filters []expr.Call
}

func compilePathFilters(cfg *config) ([]compiledPathFilter, error) {
	out := make([]compiledPathFilter, 0, len(cfg.pathFilters))
	for _, pattern := range slices.Sorted(maps.Keys(cfg.pathFilters)) {
		chain := cfg.pathFilters[pattern]
		e, err := cfg.parser.Parse("{{ @value | " + chain + " }}")
		if err != nil {
			return nil, &dmerrors.ConfigError{Option: "WithPathFilters", Value: pattern, Cause: err}
		}
		calls := e.Expr().Term.Filters
		for _, c := range calls {
			if !cfg.filters.Has(c.Name) {
				return nil, &dmerrors.ConfigError{
					Option: "WithPathFilters",
					Value:  pattern,
					Cause:  &dmerrors.FilterError{Name: c.Name, Unknown: true},
				}
			}
		}
		out = append(out, compiledPathFilter{pattern: dotpath.Split(pattern), filters: calls})
	}
	return out, nil
}

// matches reports whether the concrete target path matches the pattern.
func (f *compiledPathFilter) matches(path []string) bool {
	if len(path) != len(f.pattern) {
		return false
	}
	for i, seg := range f.pattern {
		if seg == dotpath.Wildcard {
			if _, ok := container.ParseIndex(path[i]); ok {
				continue
			}
		}
		if seg != path[i] {
			return false
		}
	}
	return true
}
