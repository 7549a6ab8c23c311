package service

import (
	"github.com/tidwall/gjson"

	"github.com/vegasq/insight/query"
)

// decodeQuery parses a JSON query body into the untyped document form the
// engine validates
func decodeQuery(data []byte) (interface{}, error) {
	if !gjson.ValidBytes(data) {
		return nil, &query.ValidationError{Reason: "query is not valid JSON"}
	}
	return gjson.ParseBytes(data).Value(), nil
}
