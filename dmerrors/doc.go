// Package dmerrors provides structured error types for dotmap.
//
// Import path: github.com/erraggy/dotmap/dmerrors
//
// This package enables programmatic error handling via [errors.Is] and [errors.As],
// allowing callers to distinguish between malformed input (paths, expressions,
// templates) and failures that happen while data is being read or written.
//
// # Error Types
//
//   - [PathError]: malformed dot-path (empty segment, leading or trailing dot)
//   - [ExpressionError]: template expression syntax errors
//   - [FilterError]: unknown filters and filter execution failures
//   - [AliasError]: @alias references to target leaves not written yet
//   - [ReverseError]: template leaves that cannot be reversed
//   - [AggregationError]: soft error for non-numeric values in SUM/AVG/MIN/MAX
//   - [TemplateError]: structurally invalid templates
//   - [MutationError]: writes that cannot be applied
//   - [ConfigError]: invalid options or registry collisions
//
// # Sentinel Errors
//
// Each error type has a corresponding sentinel error for use with errors.Is():
//
//   - [ErrInvalidPath]: Matches any [PathError]
//   - [ErrExpression]: Matches any [ExpressionError]
//   - [ErrFilter]: Matches any [FilterError]
//   - [ErrUnknownFilter]: Matches [FilterError] with Unknown=true
//   - [ErrUnresolvedAlias]: Matches any [AliasError]
//   - [ErrNonInvertible]: Matches any [ReverseError]
//   - [ErrAggregationType]: Matches any [AggregationError]
//   - [ErrTemplate]: Matches any [TemplateError]
//   - [ErrMutation]: Matches any [MutationError]
//   - [ErrConfig]: Matches any [ConfigError]
//
// # Example
//
//	out, err := mapper.Map(source, nil, tpl)
//	if err != nil {
//	    var fe *dmerrors.FilterError
//	    if errors.As(err, &fe) && fe.Unknown {
//	        log.Printf("template uses unregistered filter %q", fe.Name)
//	    }
//	}
//
// Missing source paths are never errors: they resolve to nil and are subject to
// default fallbacks and the mapper's skip-null policy.
package dmerrors
