package dataset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vegasq/insight/schema"
)

var (
	// ErrInvalidID is returned when a dataset id is empty, blank or contains an underscore
	ErrInvalidID = errors.New("invalid dataset id")

	// ErrNotFound is returned when a dataset id is not in the store
	ErrNotFound = errors.New("dataset not found")

	// ErrExists is returned when adding a dataset whose id is already taken
	ErrExists = errors.New("dataset already exists")
)

// Record is one dataset row keyed by bare field name.
//
// Numeric fields hold float64 values and text fields hold strings.
type Record = map[string]interface{}

// Dataset is an immutable, identified collection of records of one kind.
type Dataset struct {
	ID      string
	Kind    schema.Kind
	Records []Record
}

// Info summarizes a dataset for listings.
type Info struct {
	ID      string      `json:"id"`
	Kind    schema.Kind `json:"kind"`
	NumRows int         `json:"numRows"`
}

// New creates a dataset after validating its id.
func New(id string, kind schema.Kind, records []Record) (*Dataset, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	return &Dataset{ID: id, Kind: kind, Records: records}, nil
}

// Info returns the listing summary of the dataset.
func (d *Dataset) Info() Info {
	return Info{ID: d.ID, Kind: d.Kind, NumRows: len(d.Records)}
}

// ValidateID checks that id can name a dataset.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is empty", ErrInvalidID)
	}
	if strings.Contains(id, "_") {
		return fmt.Errorf("%w: id %q contains an underscore", ErrInvalidID, id)
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id contains only whitespace", ErrInvalidID)
	}
	return nil
}
