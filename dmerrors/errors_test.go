package dmerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		err := &PathError{Path: "a..b", Segment: 1, Message: "empty segment"}
		assert.Equal(t, `invalid path "a..b" at segment 1: empty segment`, err.Error())
	})

	t.Run("Error message with minimal fields", func(t *testing.T) {
		err := &PathError{Segment: -1}
		assert.Equal(t, "invalid path", err.Error())
	})

	t.Run("Is ErrInvalidPath", func(t *testing.T) {
		var err error = &PathError{Path: "."}
		assert.True(t, errors.Is(err, ErrInvalidPath))
		assert.False(t, errors.Is(err, ErrTemplate))
	})
}

func TestFilterError(t *testing.T) {
	t.Run("unknown filter", func(t *testing.T) {
		err := &FilterError{Name: "shout", Unknown: true}
		assert.Equal(t, "unknown filter shout", err.Error())
		assert.True(t, errors.Is(err, ErrUnknownFilter))
		assert.True(t, errors.Is(err, ErrFilter))
	})

	t.Run("execution failure wraps cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := &FilterError{Name: "jq", Path: "profile.name", Cause: cause}
		assert.Equal(t, "filter error jq at profile.name: boom", err.Error())
		assert.False(t, errors.Is(err, ErrUnknownFilter))
		assert.ErrorIs(t, err, cause)
	})
}

func TestAliasError(t *testing.T) {
	err := &AliasError{Alias: "fullName", Path: "greeting"}
	assert.Equal(t, "unresolved alias @fullName referenced at greeting: target leaf has not been written yet", err.Error())
	assert.ErrorIs(t, err, ErrUnresolvedAlias)
}

func TestReverseError(t *testing.T) {
	err := &ReverseError{Path: "name", Expression: "{{ user.name | upper }}", Reason: "leaf applies filters"}
	assert.Equal(t, "non-invertible template at name ({{ user.name | upper }}): leaf applies filters", err.Error())
	assert.ErrorIs(t, err, ErrNonInvertible)
}

func TestAggregationError(t *testing.T) {
	err := &AggregationError{Function: "SUM", Name: "total", Key: "2", Value: "n/a"}
	assert.Equal(t, "aggregation type error in SUM (total) for element 2: non-numeric value n/a (string) excluded", err.Error())
	assert.ErrorIs(t, err, ErrAggregationType)
}

func TestExpressionError(t *testing.T) {
	err := &ExpressionError{Expression: "{{ a | }}", Position: 6, Message: "expected filter name"}
	assert.Equal(t, `expression error in "{{ a | }}" at position 6: expected filter name`, err.Error())
	assert.ErrorIs(t, err, ErrExpression)
}

func TestMutationError(t *testing.T) {
	err := &MutationError{Path: "a.b", Operation: "set", Message: "cannot descend into string"}
	assert.Equal(t, "set failed at a.b: cannot descend into string", err.Error())
	assert.ErrorIs(t, err, ErrMutation)
	assert.Equal(t, "mutation error", (&MutationError{}).Error())
}

func TestTemplateAndConfigErrors(t *testing.T) {
	cause := errors.New("yaml: bad indent")
	terr := &TemplateError{Path: "items", Message: "invalid block", Cause: cause}
	assert.Equal(t, "template error at items: invalid block: yaml: bad indent", terr.Error())
	assert.ErrorIs(t, terr, ErrTemplate)
	assert.ErrorIs(t, terr, cause)

	cerr := &ConfigError{Option: "filter", Value: "upper", Message: "already registered"}
	assert.Equal(t, "configuration error for filter (value: upper): already registered", cerr.Error())
	assert.ErrorIs(t, cerr, ErrConfig)
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	base := &FilterError{Name: "nope", Unknown: true}
	wrapped := fmt.Errorf("mapping profile: %w", base)

	var fe *FilterError
	assert.True(t, errors.As(wrapped, &fe))
	assert.Equal(t, "nope", fe.Name)
	assert.True(t, errors.Is(wrapped, ErrUnknownFilter))
}
