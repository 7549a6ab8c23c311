package query

import (
	"fmt"
	"strings"

	"github.com/vegasq/insight/dataset"
	"github.com/vegasq/insight/schema"
)

// CompareOp is a numeric comparison operator
type CompareOp string

const (
	OpLT CompareOp = "LT" // <
	OpGT CompareOp = "GT" // >
	OpEQ CompareOp = "EQ" // =
)

// Logical and string-match operator keys
const (
	keyAnd = "AND"
	keyOr  = "OR"
	keyNot = "NOT"
	keyIs  = "IS"
)

// ApplyOp is an aggregation operator used in apply rules
type ApplyOp string

const (
	AggMax   ApplyOp = "MAX"
	AggMin   ApplyOp = "MIN"
	AggAvg   ApplyOp = "AVG"
	AggCount ApplyOp = "COUNT"
	AggSum   ApplyOp = "SUM"
)

// numeric reports whether the operator only accepts numeric fields
func (op ApplyOp) numeric() bool {
	return op != AggCount
}

// Direction is the sort direction shared by all order keys
type Direction int

const (
	Up Direction = iota
	Down
)

// String returns the wire name of the direction
func (d Direction) String() string {
	if d == Down {
		return "DOWN"
	}
	return "UP"
}

// Field is a resolved field reference of the form <dataset>_<name>
type Field struct {
	Dataset string
	Name    string
}

// String returns the wire form of the field reference
func (f Field) String() string {
	return f.Dataset + "_" + f.Name
}

// Filter is a node of the boolean filter tree.
//
// The set of implementations is closed: MatchAll, *And, *Or, *Not, *Compare
// and *Match.
type Filter interface {
	isFilter()
}

// MatchAll matches every record. It only appears at the filter root.
type MatchAll struct{}

// And is true when every child is true
type And struct {
	Children []Filter
}

// Or is true when any child is true
type Or struct {
	Children []Filter
}

// Not negates its child
type Not struct {
	Child Filter
}

// Compare compares a numeric field against a number
type Compare struct {
	Op    CompareOp
	Field Field
	Value float64
}

// Match matches a text field against a pattern with optional leading and
// trailing wildcards
type Match struct {
	Field   Field
	Pattern string

	leading  bool
	trailing bool
	literal  string
}

func (MatchAll) isFilter() {}
func (*And) isFilter()     {}
func (*Or) isFilter()      {}
func (*Not) isFilter()     {}
func (*Compare) isFilter() {}
func (*Match) isFilter()   {}

// Wildcard is the pattern character matching any sequence
const Wildcard = "*"

// NewMatch builds a string match. The pattern may hold one leading and one
// trailing wildcard and no other.
func NewMatch(field Field, pattern string) (*Match, error) {
	m := &Match{Field: field, Pattern: pattern}

	rest := pattern
	if strings.HasPrefix(rest, Wildcard) {
		m.leading = true
		rest = rest[len(Wildcard):]
	}
	if strings.HasSuffix(rest, Wildcard) {
		m.trailing = true
		rest = rest[:len(rest)-len(Wildcard)]
	}
	if strings.Contains(rest, Wildcard) {
		return nil, fmt.Errorf("wildcard %s is only allowed at the start or end of pattern %q", Wildcard, pattern)
	}
	m.literal = rest
	return m, nil
}

// Order is the sort specification of a query
type Order struct {
	Dir  Direction
	Keys []string
}

// ApplyRule names an aggregation computed for each group
type ApplyRule struct {
	Key   string
	Op    ApplyOp
	Field Field
}

// Transform groups filtered records and aggregates each group
type Transform struct {
	Group []Field
	Apply []ApplyRule
}

// Query is a validated query bound to the dataset it targets
type Query struct {
	DatasetID string
	Kind      schema.Kind
	Filter    Filter
	Columns   []string
	Order     *Order     // nil when unordered
	Transform *Transform // nil when not grouping

	// Dataset is the snapshot the query was validated against
	Dataset *dataset.Dataset
}
