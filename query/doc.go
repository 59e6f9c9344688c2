// Package query filters, groups, sorts and pages the elements bound by a
// wildcard template block.
//
// A [Query] is parsed from the directive keys of a block:
//
//	WHERE:     {price: [">", 100], status: [active, pending]}
//	GROUP BY:  {fields: category, aggregations: {total: "SUM(price)", n: COUNT}}
//	HAVING:    {n: [">=", 2]}
//	ORDER BY:  "total DESC, category"
//	DISTINCT:  true
//	OFFSET:    10
//	LIMIT:     5
//
// The directives always apply in the order WHERE, GROUP BY, HAVING,
// ORDER BY, DISTINCT, OFFSET, LIMIT, whatever order they are written in.
//
// Comparisons are loosely typed: numbers and numeric strings compare
// numerically, nil sorts first and LIKE is case-insensitive with % and _
// wildcards.
//
// Field references are resolved by the caller through a [Resolver]. After
// GROUP BY, HAVING and ORDER BY read group fields and aggregates by name
// before falling back to the first member of each group.
//
// SUM, AVG, MIN and MAX skip non-numeric values. Each skipped value is
// reported in [Result.Warnings] as a *dmerrors.AggregationError rather than
// failing the query.
package query
