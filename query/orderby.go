package query

import "sort"

// ApplyOrder sorts rows by order.Keys, all in order.Dir. Rows equal on every
// key keep their relative order. The input slice is not modified.
func ApplyOrder(rows []map[string]interface{}, order *Order) []map[string]interface{} {
	if len(rows) == 0 || order == nil || len(order.Keys) == 0 {
		return rows
	}

	// Create a copy to avoid modifying the original slice
	sorted := make([]map[string]interface{}, len(rows))
	copy(sorted, rows)

	desc := order.Dir == Down
	sort.SliceStable(sorted, func(i, j int) bool {
		for _, key := range order.Keys {
			valI, existsI := sorted[i][key]
			valJ, existsJ := sorted[j][key]

			// Missing values sort first (or last if DOWN)
			if !existsI && !existsJ {
				continue
			}
			if !existsI {
				return !desc
			}
			if !existsJ {
				return desc
			}

			cmp := compareValues(valI, valJ)
			if cmp != 0 {
				if desc {
					return cmp > 0
				}
				return cmp < 0
			}
		}
		return false
	})

	return sorted
}
