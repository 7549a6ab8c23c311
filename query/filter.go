package query

import (
	"strconv"
	"strings"

	"github.com/vegasq/insight/dataset"
)

// Evaluate reports whether record r satisfies filter f.
//
// A record lacking a referenced field does not satisfy the comparison or
// match that references it.
func Evaluate(f Filter, r dataset.Record) bool {
	switch node := f.(type) {
	case MatchAll:
		return true
	case *And:
		for _, child := range node.Children {
			if !Evaluate(child, r) {
				return false
			}
		}
		return true
	case *Or:
		for _, child := range node.Children {
			if Evaluate(child, r) {
				return true
			}
		}
		return false
	case *Not:
		return !Evaluate(node.Child, r)
	case *Compare:
		return node.matches(r)
	case *Match:
		return node.matches(r)
	default:
		return false
	}
}

func (c *Compare) matches(r dataset.Record) bool {
	raw, exists := r[c.Field.Name]
	if !exists {
		return false
	}
	v, ok := toFloat64(raw)
	if !ok {
		return false
	}
	switch c.Op {
	case OpLT:
		return v < c.Value
	case OpGT:
		return v > c.Value
	case OpEQ:
		return v == c.Value
	default:
		return false
	}
}

func (m *Match) matches(r dataset.Record) bool {
	raw, exists := r[m.Field.Name]
	if !exists {
		return false
	}
	s, ok := toString(raw)
	if !ok {
		return false
	}
	switch {
	case m.leading && m.trailing:
		return strings.Contains(s, m.literal)
	case m.leading:
		return strings.HasSuffix(s, m.literal)
	case m.trailing:
		return strings.HasPrefix(s, m.literal)
	default:
		return s == m.literal
	}
}

// ApplyFilter returns the records satisfying f, preserving their order
func ApplyFilter(records []dataset.Record, f Filter) []dataset.Record {
	if _, all := f.(MatchAll); all || f == nil {
		return records
	}

	filtered := make([]dataset.Record, 0)
	for _, r := range records {
		if Evaluate(f, r) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// toFloat64 converts a value to float64 if possible
func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

// toString renders a value for string matching. Numbers use their shortest
// decimal form, so 1900 matches "19*".
func toString(v interface{}) (string, bool) {
	if str, ok := v.(string); ok {
		return str, true
	}
	if f, ok := toFloat64(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return "", false
}

// compareValues compares two values and returns:
// -1 if a < b
//
//	0 if a == b
//	1 if a > b
//
// Numbers sort before strings, and nil sorts before everything.
func compareValues(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	aNum, aIsNum := toFloat64(a)
	bNum, bIsNum := toFloat64(b)
	switch {
	case aIsNum && bIsNum:
		if aNum < bNum {
			return -1
		}
		if aNum > bNum {
			return 1
		}
		return 0
	case aIsNum:
		return -1
	case bIsNum:
		return 1
	}

	aStr, _ := a.(string)
	bStr, _ := b.(string)
	return strings.Compare(aStr, bStr)
}
