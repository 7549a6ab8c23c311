package query

import "fmt"

// Keywords names the structural keys of a query document.
//
// Operator names (AND, OR, NOT, LT, GT, EQ, IS), order keys (dir, keys,
// UP, DOWN) and aggregation names are the same in every keyword set.
type Keywords struct {
	Filter    string
	Options   string
	Columns   string
	Order     string
	Transform string
	Group     string
	Apply     string
}

// DefaultKeywords is the lower-case keyword set
var DefaultKeywords = Keywords{
	Filter:    "filter",
	Options:   "options",
	Columns:   "columns",
	Order:     "order",
	Transform: "transform",
	Group:     "group",
	Apply:     "apply",
}

// LegacyKeywords is the upper-case keyword set of older query corpora
var LegacyKeywords = Keywords{
	Filter:    "WHERE",
	Options:   "OPTIONS",
	Columns:   "COLUMNS",
	Order:     "ORDER",
	Transform: "TRANSFORMATIONS",
	Group:     "GROUP",
	Apply:     "APPLY",
}

const (
	orderDirKey  = "dir"
	orderKeysKey = "keys"
)

// KeywordsByName returns the keyword set called name ("default" or "legacy")
func KeywordsByName(name string) (Keywords, error) {
	switch name {
	case "", "default":
		return DefaultKeywords, nil
	case "legacy":
		return LegacyKeywords, nil
	default:
		return Keywords{}, fmt.Errorf("unknown keyword set %q", name)
	}
}
