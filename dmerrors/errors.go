package dmerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
// These allow quick checks without type assertions.
var (
	// ErrInvalidPath indicates a malformed dot-path string.
	ErrInvalidPath = errors.New("invalid path")

	// ErrExpression indicates a template expression could not be parsed.
	ErrExpression = errors.New("expression error")

	// ErrFilter indicates a filter failed while transforming a value.
	ErrFilter = errors.New("filter error")

	// ErrUnknownFilter indicates an expression referenced an unregistered filter.
	ErrUnknownFilter = errors.New("unknown filter")

	// ErrUnresolvedAlias indicates an @alias referenced a target leaf not yet written.
	ErrUnresolvedAlias = errors.New("unresolved alias")

	// ErrNonInvertible indicates a template leaf cannot be reversed.
	ErrNonInvertible = errors.New("non-invertible template")

	// ErrAggregationType indicates a non-numeric value reached a numeric aggregation.
	ErrAggregationType = errors.New("aggregation type error")

	// ErrTemplate indicates a structurally invalid template.
	ErrTemplate = errors.New("template error")

	// ErrMutation indicates a write could not be applied to the target structure.
	ErrMutation = errors.New("mutation error")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// PathError represents a malformed dot-path.
type PathError struct {
	// Path is the raw path string
	Path string
	// Segment is the zero-based index of the offending segment (-1 if unknown)
	Segment int
	// Message describes the problem
	Message string
}

// Error returns a human-readable error message.
func (e *PathError) Error() string {
	msg := "invalid path"
	if e.Path != "" {
		msg += fmt.Sprintf(" %q", e.Path)
	}
	if e.Segment >= 0 && e.Path != "" {
		msg += fmt.Sprintf(" at segment %d", e.Segment)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *PathError) Is(target error) bool {
	return target == ErrInvalidPath
}

// ExpressionError represents a template expression syntax error.
type ExpressionError struct {
	// Expression is the raw expression text
	Expression string
	// Position is the byte offset where parsing failed
	Position int
	// Message describes the syntax problem
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ExpressionError) Error() string {
	msg := "expression error"
	if e.Expression != "" {
		msg += fmt.Sprintf(" in %q at position %d", e.Expression, e.Position)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ExpressionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ExpressionError) Is(target error) bool {
	return target == ErrExpression
}

// FilterError represents a filter lookup or execution failure.
// Unknown is true when the filter name is not registered.
type FilterError struct {
	// Name is the filter name as written in the expression
	Name string
	// Unknown is true if no filter with this name is registered
	Unknown bool
	// Path is the target path being resolved (may be empty)
	Path string
	// Message describes the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *FilterError) Error() string {
	msg := "filter error"
	if e.Unknown {
		msg = "unknown filter"
	}
	if e.Name != "" {
		msg += " " + e.Name
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *FilterError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrFilter, and also ErrUnknownFilter when Unknown is set.
func (e *FilterError) Is(target error) bool {
	if target == ErrFilter {
		return true
	}
	return target == ErrUnknownFilter && e.Unknown
}

// AliasError represents an @alias that could not be resolved against the target.
type AliasError struct {
	// Alias is the alias name without the leading '@'
	Alias string
	// Path is the target path whose expression referenced the alias
	Path string
}

// Error returns a human-readable error message.
func (e *AliasError) Error() string {
	msg := "unresolved alias @" + e.Alias
	if e.Path != "" {
		msg += " referenced at " + e.Path
	}
	return msg + ": target leaf has not been written yet"
}

// Is reports whether target matches this error type.
func (e *AliasError) Is(target error) bool {
	return target == ErrUnresolvedAlias
}

// ReverseError represents a template leaf that has no 1:1 inverse.
type ReverseError struct {
	// Path is the target path of the offending leaf or block
	Path string
	// Expression is the raw leaf expression (may be empty for blocks)
	Expression string
	// Reason explains why the leaf is not invertible
	Reason string
}

// Error returns a human-readable error message.
func (e *ReverseError) Error() string {
	msg := "non-invertible template"
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Expression != "" {
		msg += fmt.Sprintf(" (%s)", e.Expression)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ReverseError) Is(target error) bool {
	return target == ErrNonInvertible
}

// AggregationError is a soft error reported when a numeric aggregation
// encounters a value it cannot use. The value is excluded, the aggregation continues.
type AggregationError struct {
	// Function is the aggregation function (SUM, AVG, MIN, MAX)
	Function string
	// Name is the aggregation result name
	Name string
	// Key is the element key whose value was excluded
	Key string
	// Value is the offending value
	Value any
}

// Error returns a human-readable error message.
func (e *AggregationError) Error() string {
	msg := "aggregation type error"
	if e.Function != "" {
		msg += " in " + e.Function
	}
	if e.Name != "" {
		msg += " (" + e.Name + ")"
	}
	if e.Key != "" {
		msg += " for element " + e.Key
	}
	return msg + fmt.Sprintf(": non-numeric value %v (%T) excluded", e.Value, e.Value)
}

// Is reports whether target matches this error type.
func (e *AggregationError) Is(target error) bool {
	return target == ErrAggregationType
}

// TemplateError represents a structurally invalid template.
type TemplateError struct {
	// Path is the template location (dot path of keys)
	Path string
	// Message describes the problem
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *TemplateError) Error() string {
	msg := "template error"
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *TemplateError) Is(target error) bool {
	return target == ErrTemplate
}

// MutationError represents a write that could not be applied.
type MutationError struct {
	// Path is the dot path being written
	Path string
	// Operation is "set", "merge" or "unset"
	Operation string
	// Message describes the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *MutationError) Error() string {
	msg := "mutation error"
	if e.Operation != "" {
		msg = e.Operation + " failed"
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *MutationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *MutationError) Is(target error) bool {
	return target == ErrMutation
}

// ConfigError represents an invalid configuration or input.
// This includes invalid options, name collisions in strict registries, and conflicting settings.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
