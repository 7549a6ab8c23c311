package query

import "strings"

// Project selects columns from each row. Output rows are keyed by the
// column id. A "<dataset>_<field>" column reads the row's "<field>" entry
// when the row has no entry under the full id, which is how raw records are
// read; rows that are already projected or grouped carry the full id.
func Project(rows []map[string]interface{}, columns []string) []map[string]interface{} {
	result := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		out := make(map[string]interface{}, len(columns))
		for _, col := range columns {
			if v, ok := lookupColumn(row, col); ok {
				out[col] = v
			}
		}
		result = append(result, out)
	}
	return result
}

func lookupColumn(row map[string]interface{}, col string) (interface{}, bool) {
	if v, ok := row[col]; ok {
		return v, true
	}
	if i := strings.IndexByte(col, '_'); i >= 0 {
		v, ok := row[col[i+1:]]
		return v, ok
	}
	return nil, false
}
