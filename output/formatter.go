package output

import (
	"fmt"
	"io"
	"sort"
)

// Formatter defines the interface for output formatters.
//
// Implementers must provide Format to render query rows and SetOutput to
// change the output destination.
type Formatter interface {
	// Format writes rows in the formatter's specific format. columns gives
	// the output column order; formats without a header may ignore it.
	Format(columns []string, rows []map[string]interface{}) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// Format names
const (
	FormatJSONLines = "jsonl"
	FormatJSON      = "json"
	FormatCSV       = "csv"
	FormatTable     = "table"
)

var constructors = map[string]func(io.Writer) Formatter{
	FormatJSONLines: func(w io.Writer) Formatter { return NewJSONFormatter(w) },
	FormatJSON:      func(w io.Writer) Formatter { return NewJSONArrayFormatter(w) },
	FormatCSV:       func(w io.Writer) Formatter { return NewCSVFormatter(w) },
	FormatTable:     func(w io.Writer) Formatter { return NewTableFormatter(w) },
}

// New returns the formatter called name writing to w
func New(name string, w io.Writer) (Formatter, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (available: %v)", name, Formats())
	}
	return ctor(w), nil
}

// Formats lists the available format names
func Formats() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// columnsOf returns columns, or the sorted union of row keys when columns is
// empty
func columnsOf(columns []string, rows []map[string]interface{}) []string {
	if len(columns) > 0 {
		return columns
	}
	set := make(map[string]bool)
	for _, row := range rows {
		for col := range row {
			set[col] = true
		}
	}
	out := make([]string, 0, len(set))
	for col := range set {
		out = append(out, col)
	}
	sort.Strings(out)
	return out
}
