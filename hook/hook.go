package hook

import (
	"fmt"
	"slices"
	"strings"

	"github.com/erraggy/dotmap/dmerrors"
)

// Phase names an extension point in a mapping pass.
type Phase string

const (
	// BeforeAll runs once before mapping starts. The value is the source;
	// returning Skip aborts the mapping and leaves the target untouched.
	BeforeAll Phase = "beforeAll"
	// BeforeTransform runs before a leaf expression is resolved. The value is
	// the raw expression string; a replacement string is parsed instead.
	// Returning Skip skips the leaf.
	BeforeTransform Phase = "beforeTransform"
	// AfterTransform runs after a leaf expression is resolved. The value is
	// the resolved value.
	AfterTransform Phase = "afterTransform"
	// BeforeWrite runs immediately before a value is written to the target.
	// Returning Skip suppresses the write.
	BeforeWrite Phase = "beforeWrite"
	// AfterAll runs once after mapping. The value is the target; a
	// replacement becomes the mapping result.
	AfterAll Phase = "afterAll"
)

var phases = []Phase{BeforeAll, BeforeTransform, AfterTransform, BeforeWrite, AfterAll}

// Phases returns every phase in the order they fire.
func Phases() []Phase {
	return slices.Clone(phases)
}

// ParsePhase validates a phase name. Matching is case-insensitive.
func ParsePhase(name string) (Phase, error) {
	for _, p := range phases {
		if strings.EqualFold(string(p), name) {
			return p, nil
		}
	}
	return "", &dmerrors.ConfigError{
		Option:  "hook phase",
		Value:   name,
		Message: fmt.Sprintf("must be one of %s", joinPhases()),
	}
}

func joinPhases() string {
	names := make([]string, len(phases))
	for i, p := range phases {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

type skipMarker struct{}

func (skipMarker) String() string { return "hook.Skip" }

// Skip is returned by a Func to stop the chain and skip the current step.
var Skip any = skipMarker{}

// IsSkip reports whether v is the Skip sentinel.
func IsSkip(v any) bool {
	_, ok := v.(skipMarker)
	return ok
}

// Func is a hook callback. It returns the value handed to the next callback
// in the chain, or Skip.
type Func func(value any, ctx *Context) any

// Context is shared by every hook of a single mapping pass.
type Context struct {
	// Phase is the phase currently running.
	Phase Phase
	// Source is the source root.
	Source any
	// Target is the target root being built.
	Target any
	// Template is the template being applied.
	Template any
	// Key is the target key of the current leaf. Empty outside leaves.
	Key string
	// Path is the full target path of the current leaf. Empty outside leaves.
	Path string
	// Value is the current value as seen before this phase ran.
	Value any
	// Scratch is free-form storage shared across hooks of the same pass.
	Scratch map[string]any
}

// NewContext creates the context for a mapping pass.
func NewContext(source, target, template any) *Context {
	return &Context{
		Source:   source,
		Target:   target,
		Template: template,
		Scratch:  make(map[string]any),
	}
}

// Set stores a scratch value.
func (c *Context) Set(key string, value any) {
	if c.Scratch == nil {
		c.Scratch = make(map[string]any)
	}
	c.Scratch[key] = value
}

// Get returns a scratch value.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.Scratch[key]
	return v, ok
}

// Pipeline holds the callbacks for every phase.
// The zero value is an empty pipeline ready to use.
type Pipeline struct {
	hooks map[Phase][]Func
}

// New returns an empty pipeline.
func New() *Pipeline {
	return &Pipeline{}
}

// On appends fn to the callbacks for phase and returns p for chaining.
func (p *Pipeline) On(phase Phase, fn Func) *Pipeline {
	if fn == nil {
		return p
	}
	if p.hooks == nil {
		p.hooks = make(map[Phase][]Func)
	}
	p.hooks[phase] = append(p.hooks[phase], fn)
	return p
}

// Merge appends every callback of other after p's own.
func (p *Pipeline) Merge(other *Pipeline) *Pipeline {
	if other == nil {
		return p
	}
	for _, phase := range phases {
		for _, fn := range other.hooks[phase] {
			p.On(phase, fn)
		}
	}
	return p
}

// Has reports whether any callback is registered for phase.
func (p *Pipeline) Has(phase Phase) bool {
	return p != nil && len(p.hooks[phase]) > 0
}

// Len returns the number of callbacks registered for phase.
func (p *Pipeline) Len(phase Phase) int {
	if p == nil {
		return 0
	}
	return len(p.hooks[phase])
}

// Run passes value through the callbacks for phase, left to right. It
// returns the final value and false when a callback returned Skip, in which
// case the remaining callbacks do not run.
func (p *Pipeline) Run(phase Phase, value any, ctx *Context) (any, bool) {
	if !p.Has(phase) {
		return value, true
	}
	if ctx != nil {
		ctx.Phase = phase
		ctx.Value = value
	}
	for _, fn := range p.hooks[phase] {
		value = fn(value, ctx)
		if IsSkip(value) {
			return nil, false
		}
		if ctx != nil {
			ctx.Value = value
		}
	}
	return value, true
}
