package dotpath

import "strings"

// Builder assembles dot paths incrementally during traversal.
// Push and Pop are allocation free; the string is only built by String.
type Builder struct {
	segments []string
	length   int
}

// NewBuilder returns a builder seeded with segments.
func NewBuilder(segments ...string) *Builder {
	b := &Builder{}
	for _, s := range segments {
		b.Push(s)
	}
	return b
}

// Push appends a segment.
func (b *Builder) Push(segment string) {
	if len(b.segments) > 0 {
		b.length++
	}
	b.segments = append(b.segments, segment)
	b.length += len(segment)
}

// Pop removes the last segment.
func (b *Builder) Pop() {
	if len(b.segments) == 0 {
		return
	}
	last := b.segments[len(b.segments)-1]
	b.segments = b.segments[:len(b.segments)-1]
	b.length -= len(last)
	if len(b.segments) > 0 {
		b.length--
	}
}

// Len returns the number of segments.
func (b *Builder) Len() int {
	return len(b.segments)
}

// Segments returns a copy of the current segments.
func (b *Builder) Segments() []string {
	out := make([]string, len(b.segments))
	copy(out, b.segments)
	return out
}

// String materializes the path.
func (b *Builder) String() string {
	if len(b.segments) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(b.length)
	sb.WriteString(b.segments[0])
	for _, seg := range b.segments[1:] {
		sb.WriteByte('.')
		sb.WriteString(seg)
	}
	return sb.String()
}
