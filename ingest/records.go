package ingest

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/vegasq/insight/dataset"
	"github.com/vegasq/insight/schema"
)

// ParseRecords reads a JSON array of normalized records for sch. A record is
// kept when every schema field is present with the right type; fields the
// schema does not name are dropped. Invalid records are skipped.
func ParseRecords(sch schema.Schema, content []byte) ([]dataset.Record, error) {
	if !gjson.ValidBytes(content) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidContent)
	}
	doc := gjson.ParseBytes(content)
	if !doc.IsArray() {
		return nil, fmt.Errorf("%w: expected a JSON array of records", ErrInvalidContent)
	}

	var records []dataset.Record
	doc.ForEach(func(_, item gjson.Result) bool {
		if r, ok := parseRecord(sch, item); ok {
			records = append(records, r)
		}
		return true
	})

	if len(records) == 0 {
		return nil, ErrNoValidRecords
	}
	return records, nil
}

func parseRecord(sch schema.Schema, item gjson.Result) (dataset.Record, bool) {
	if !item.IsObject() {
		return nil, false
	}

	r := make(dataset.Record, len(sch.AllFields()))
	for _, field := range sch.NumericFields() {
		v := item.Get(field)
		if v.Type != gjson.Number {
			return nil, false
		}
		r[field] = v.Num
	}
	for _, field := range sch.TextFields() {
		v := item.Get(field)
		if v.Type != gjson.String {
			return nil, false
		}
		r[field] = v.Str
	}
	return r, true
}
