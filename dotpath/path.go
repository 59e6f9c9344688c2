package dotpath

import (
	"slices"
	"strings"

	"github.com/erraggy/dotmap/dmerrors"
)

// Wildcard is the segment that matches every entry of a container.
const Wildcard = "*"

// Separator joins path segments.
const Separator = "."

// Path is a compiled dot path. Paths are immutable and safe to share.
type Path struct {
	raw       string
	segments  []string
	wildcards int
}

// String returns the raw path string.
func (p *Path) String() string {
	return p.raw
}

// Segments returns a copy of the path segments.
func (p *Path) Segments() []string {
	return slices.Clone(p.segments)
}

// Len returns the number of segments.
func (p *Path) Len() int {
	return len(p.segments)
}

// Segment returns the i-th segment.
func (p *Path) Segment(i int) string {
	return p.segments[i]
}

// HasWildcard reports whether any segment is a wildcard.
func (p *Path) HasWildcard() bool {
	return p.wildcards > 0
}

// WildcardCount returns the number of wildcard segments.
func (p *Path) WildcardCount() int {
	return p.wildcards
}

// Captures matches a concrete path against p and returns the keys matched by
// each wildcard, in order. The boolean is false when key does not match.
func (p *Path) Captures(key string) ([]string, bool) {
	parts := strings.Split(key, Separator)
	if len(parts) != len(p.segments) {
		return nil, false
	}
	captures := make([]string, 0, p.wildcards)
	for i, seg := range p.segments {
		switch {
		case seg == Wildcard:
			captures = append(captures, parts[i])
		case seg != parts[i]:
			return nil, false
		}
	}
	return captures, true
}

// Substitute replaces wildcards left to right with values. Wildcards beyond
// len(values) are kept.
func (p *Path) Substitute(values ...string) []string {
	out := slices.Clone(p.segments)
	n := 0
	for i, seg := range out {
		if n >= len(values) {
			break
		}
		if seg == Wildcard {
			out[i] = values[n]
			n++
		}
	}
	return out
}

// HasPrefix reports whether prefix is a segment-wise prefix of p.
func (p *Path) HasPrefix(prefix []string) bool {
	return len(prefix) <= len(p.segments) && slices.Equal(p.segments[:len(prefix)], prefix)
}

// parse splits raw into segments. Empty segments are rejected, which covers
// empty input as well as leading, trailing and doubled dots.
func parse(raw string) (*Path, error) {
	if raw == "" {
		return nil, &dmerrors.PathError{Path: raw, Segment: -1, Message: "path is empty"}
	}
	segments := strings.Split(raw, Separator)
	p := &Path{raw: raw, segments: segments}
	for i, seg := range segments {
		if seg == "" {
			return nil, &dmerrors.PathError{Path: raw, Segment: i, Message: emptySegmentMessage(i, len(segments))}
		}
		if seg == Wildcard {
			p.wildcards++
		}
	}
	return p, nil
}

func emptySegmentMessage(i, n int) string {
	switch i {
	case 0:
		return "leading dot"
	case n - 1:
		return "trailing dot"
	default:
		return "empty segment"
	}
}

// Join concatenates segments into a path string.
func Join(segments ...string) string {
	return strings.Join(segments, Separator)
}

// Split splits a path string without validating or caching it.
func Split(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, Separator)
}
