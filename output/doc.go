// Package output provides formatters for query results.
//
// This package defines the Formatter interface and implementations for
// JSON Lines, JSON arrays, CSV and aligned text tables. All formatters take
// the query's output columns and rows represented as
// []map[string]interface{}.
//
// # Supported Formats
//
//   - jsonl: One JSON object per line (suitable for streaming)
//   - json: A single indented JSON array
//   - csv: Comma-separated values with a header row in column order
//   - table: An aligned text table
//
// # Basic Usage
//
//	formatter, err := output.New("csv", os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := formatter.Format(columns, rows); err != nil {
//	    log.Fatal(err)
//	}
//
// # CSV Injection
//
// String values starting with =, +, -, @, |, tab or a line break are
// prefixed with a single quote so spreadsheet applications do not evaluate
// them as formulas.
package output
