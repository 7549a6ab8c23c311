package query

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vegasq/insight/dataset"
)

// aggregatePlaces is the number of decimal places AVG and SUM round to
const aggregatePlaces = 2

// Group represents a group of records for aggregation
type Group struct {
	Key     string                 // Hash key for the group
	Values  map[string]interface{} // Group field values keyed by field id
	Records []dataset.Record       // All records in the group
}

// ApplyTransform groups records by t.Group and reduces each group with
// t.Apply. Output rows hold the group fields keyed by their field id
// (e.g. "sections_dept") plus one entry per apply key, in order of first
// appearance of each group.
func ApplyTransform(records []dataset.Record, t *Transform) []map[string]interface{} {
	groups := GroupRecords(records, t.Group)

	result := make([]map[string]interface{}, 0, len(groups))
	for _, group := range groups {
		row := make(map[string]interface{}, len(group.Values)+len(t.Apply))
		for k, v := range group.Values {
			row[k] = v
		}
		for _, rule := range t.Apply {
			row[rule.Key] = aggregate(rule.Op, rule.Field.Name, group.Records)
		}
		result = append(result, row)
	}
	return result
}

// GroupRecords partitions records by the values of fields. Groups are
// returned in order of first appearance.
func GroupRecords(records []dataset.Record, fields []Field) []*Group {
	var groups []*Group
	index := make(map[string]*Group)

	for _, r := range records {
		key, values := computeGroupKey(r, fields)
		if group, exists := index[key]; exists {
			group.Records = append(group.Records, r)
			continue
		}
		group := &Group{Key: key, Values: values, Records: []dataset.Record{r}}
		index[key] = group
		groups = append(groups, group)
	}
	return groups
}

// computeGroupKey computes a hash key for a record based on the group fields
func computeGroupKey(r dataset.Record, fields []Field) (string, map[string]interface{}) {
	var keyBuilder strings.Builder
	values := make(map[string]interface{}, len(fields))

	for i, f := range fields {
		value := r[f.Name]
		if i > 0 {
			keyBuilder.WriteString("\x00||\x00")
		}
		keyBuilder.WriteString(f.Name)
		keyBuilder.WriteString("\x00:\x00")
		keyBuilder.WriteString(fmt.Sprintf("%#v", value))
		values[f.String()] = value
	}
	return keyBuilder.String(), values
}

// aggregate reduces the values of field across records
func aggregate(op ApplyOp, field string, records []dataset.Record) float64 {
	switch op {
	case AggMax:
		return extremum(field, records, func(v, best float64) bool { return v > best })
	case AggMin:
		return extremum(field, records, func(v, best float64) bool { return v < best })
	case AggAvg:
		sum, n := decimalSum(field, records)
		if n == 0 {
			return 0
		}
		avg := sum.Div(decimal.NewFromInt(int64(n))).Round(aggregatePlaces)
		return avg.InexactFloat64()
	case AggSum:
		sum, _ := decimalSum(field, records)
		return sum.Round(aggregatePlaces).InexactFloat64()
	case AggCount:
		return float64(countDistinct(field, records))
	default:
		return 0
	}
}

// extremum returns the best numeric value of field as ranked by better.
// Records without a numeric value are skipped. An empty set yields 0.
func extremum(field string, records []dataset.Record, better func(v, best float64) bool) float64 {
	var best float64
	found := false
	for _, r := range records {
		v, ok := toFloat64(r[field])
		if !ok {
			continue
		}
		if !found || better(v, best) {
			best = v
			found = true
		}
	}
	return best
}

// decimalSum sums field exactly and returns the sum with the number of
// values added
func decimalSum(field string, records []dataset.Record) (decimal.Decimal, int) {
	sum := decimal.Zero
	n := 0
	for _, r := range records {
		v, ok := toFloat64(r[field])
		if !ok {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(v))
		n++
	}
	return sum, n
}

// countDistinct counts the distinct present values of field
func countDistinct(field string, records []dataset.Record) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		v, exists := r[field]
		if !exists {
			continue
		}
		seen[fmt.Sprintf("%#v", v)] = struct{}{}
	}
	return len(seen)
}
