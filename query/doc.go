// Package query validates and executes structured queries over datasets.
//
// A query is a JSON-compatible document with a boolean filter, an output
// column list, an optional sort order and an optional group/aggregate
// transform:
//
//	{
//	    "filter": {"AND": [
//	        {"GT": {"sections_avg": 90}},
//	        {"IS": {"sections_dept": "cp*"}}
//	    ]},
//	    "options": {
//	        "columns": ["sections_dept", "avgGrade"],
//	        "order": {"dir": "DOWN", "keys": ["avgGrade"]}
//	    },
//	    "transform": {
//	        "group": ["sections_dept"],
//	        "apply": [{"avgGrade": {"AVG": "sections_avg"}}]
//	    }
//	}
//
// Field references take the form <dataset>_<field>. Every reference in a
// query must name the same dataset, which selects the records the query runs
// against.
//
// # Basic Usage
//
// Run a decoded document against a dataset store:
//
//	engine := query.NewEngine(store, schema.DefaultRegistry())
//	rows, err := engine.Run(doc)
//	if errors.Is(err, query.ErrInvalidQuery) {
//	    // malformed query, nothing was evaluated
//	}
//
// Or run raw JSON:
//
//	rows, err := engine.RunJSON([]byte(`{"filter": {}, "options": {"columns": ["sections_dept"]}}`))
//
// # Filters
//
// Filters are a closed set of node types: MatchAll, And, Or, Not, Compare
// (LT, GT, EQ on numeric fields) and Match (IS on text fields, with optional
// leading and trailing "*" wildcards). Evaluate walks a tree against one
// record and ApplyFilter selects matching records.
//
// # Transforms
//
// ApplyTransform groups records by the group fields, in order of first
// appearance, and reduces each group with MAX, MIN, AVG, SUM or COUNT.
// AVG and SUM are accumulated in decimal and rounded to two places. COUNT
// counts distinct values.
//
// # Limits
//
// A query producing more than MaxResultRows rows fails with a
// *ResultTooLargeError. Filters nest at most MaxFilterDepth levels.
//
// # Keyword Sets
//
// The structural keys default to lower case. LegacyKeywords accepts the
// upper-case documents (WHERE, OPTIONS, COLUMNS, ORDER, TRANSFORMATIONS,
// GROUP, APPLY) of older query corpora:
//
//	engine := query.NewEngine(store, nil, query.WithKeywords(query.LegacyKeywords))
package query
