// Package ingest turns uploaded dataset content into records.
//
// Course datasets arrive as a zip archive of raw course files (see
// ParseCourses) or as a JSON array of normalized records. Room datasets
// arrive as a JSON array of normalized records; scraping building pages and
// geocoding addresses happen before upload.
package ingest

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vegasq/insight/dataset"
	"github.com/vegasq/insight/schema"
)

var (
	// ErrInvalidContent is returned when content cannot be decoded at all
	ErrInvalidContent = errors.New("invalid dataset content")

	// ErrNoValidRecords is returned when decoding succeeds but yields nothing
	ErrNoValidRecords = errors.New("dataset contains no valid records")
)

// Parse decodes content for a dataset of the given kind
func Parse(schemas *schema.Registry, kind schema.Kind, content []byte) ([]dataset.Record, error) {
	sch, err := schemas.Lookup(kind)
	if err != nil {
		return nil, err
	}

	switch {
	case isJSONArray(content):
		return ParseRecords(sch, content)
	case kind == schema.Courses:
		return ParseCourses(content)
	default:
		return nil, fmt.Errorf("%w: %s datasets must be a JSON array of records", ErrInvalidContent, kind)
	}
}

func isJSONArray(content []byte) bool {
	trimmed := bytes.TrimSpace(content)
	return len(trimmed) > 0 && trimmed[0] == '['
}
