// Package schema declares the field layout of each dataset kind.
//
// A Schema tells the query validator which field names exist for a kind and
// whether each one is numeric or textual. The validator only talks to the
// Schema interface, so a new dataset kind needs nothing more than a new
// schema registered with a Registry.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Kind identifies a dataset kind.
type Kind string

const (
	// Courses is the kind of datasets made of course sections.
	Courses Kind = "courses"
	// Rooms is the kind of datasets made of classrooms.
	Rooms Kind = "rooms"
)

// FieldType is the value type of a field.
type FieldType int

const (
	// Numeric fields hold float64 values.
	Numeric FieldType = iota
	// Text fields hold string values.
	Text
)

// String returns the field type name.
func (t FieldType) String() string {
	switch t {
	case Numeric:
		return "numeric"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// ErrUnknownKind is returned when a kind has no registered schema.
var ErrUnknownKind = errors.New("unknown dataset kind")

// Schema is the field-check capability injected into the query validator.
type Schema interface {
	// Kind returns the dataset kind this schema describes.
	Kind() Kind

	// NumericFields returns the numeric field names, sorted.
	NumericFields() []string

	// TextFields returns the text field names, sorted.
	TextFields() []string

	// AllFields returns every field name, sorted.
	AllFields() []string

	// IsNumericField reports whether name is a numeric field.
	IsNumericField(name string) bool

	// IsTextField reports whether name is a text field.
	IsTextField(name string) bool

	// HasField reports whether name is any known field.
	HasField(name string) bool

	// FieldType returns the type of name and whether the field exists.
	FieldType(name string) (FieldType, bool)
}

// fieldSchema is a Schema backed by a static field table.
type fieldSchema struct {
	kind   Kind
	fields map[string]FieldType
}

// New creates a Schema for kind from numeric and text field names.
//
// A name listed in both sets is a programming error and panics.
func New(kind Kind, numeric, text []string) Schema {
	fields := make(map[string]FieldType, len(numeric)+len(text))
	for _, name := range numeric {
		fields[name] = Numeric
	}
	for _, name := range text {
		if _, dup := fields[name]; dup {
			panic(fmt.Sprintf("schema %s: field %q declared twice", kind, name))
		}
		fields[name] = Text
	}
	return &fieldSchema{kind: kind, fields: fields}
}

func (s *fieldSchema) Kind() Kind {
	return s.kind
}

func (s *fieldSchema) NumericFields() []string {
	return s.names(func(t FieldType) bool { return t == Numeric })
}

func (s *fieldSchema) TextFields() []string {
	return s.names(func(t FieldType) bool { return t == Text })
}

func (s *fieldSchema) AllFields() []string {
	return s.names(func(FieldType) bool { return true })
}

func (s *fieldSchema) IsNumericField(name string) bool {
	t, ok := s.fields[name]
	return ok && t == Numeric
}

func (s *fieldSchema) IsTextField(name string) bool {
	t, ok := s.fields[name]
	return ok && t == Text
}

func (s *fieldSchema) HasField(name string) bool {
	_, ok := s.fields[name]
	return ok
}

func (s *fieldSchema) FieldType(name string) (FieldType, bool) {
	t, ok := s.fields[name]
	return t, ok
}

func (s *fieldSchema) names(keep func(FieldType) bool) []string {
	names := make([]string, 0, len(s.fields))
	for name, t := range s.fields {
		if keep(t) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

var (
	coursesSchema = New(Courses,
		[]string{"avg", "pass", "fail", "audit", "year"},
		[]string{"dept", "id", "instructor", "title", "uuid"},
	)

	roomsSchema = New(Rooms,
		[]string{"lat", "lon", "seats"},
		[]string{"fullname", "shortname", "number", "name", "address", "type", "furniture", "href"},
	)
)

// CoursesSchema returns the schema of course section datasets.
func CoursesSchema() Schema { return coursesSchema }

// RoomsSchema returns the schema of classroom datasets.
func RoomsSchema() Schema { return roomsSchema }

// Registry maps dataset kinds to their schemas.
type Registry struct {
	mu      sync.RWMutex
	schemas map[Kind]Schema
}

// NewRegistry creates a registry holding the given schemas.
func NewRegistry(schemas ...Schema) *Registry {
	r := &Registry{schemas: make(map[Kind]Schema, len(schemas))}
	for _, s := range schemas {
		r.schemas[s.Kind()] = s
	}
	return r
}

// DefaultRegistry returns a registry with the courses and rooms schemas.
func DefaultRegistry() *Registry {
	return NewRegistry(coursesSchema, roomsSchema)
}

// Register adds or replaces the schema for its kind.
func (r *Registry) Register(s Schema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[s.Kind()] = s
}

// Lookup returns the schema for kind.
func (r *Registry) Lookup(kind Kind) (Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return s, nil
}

// ParseKind returns the registered kind named name.
func (r *Registry) ParseKind(name string) (Kind, error) {
	kind := Kind(name)
	if _, err := r.Lookup(kind); err != nil {
		return "", err
	}
	return kind, nil
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]Kind, 0, len(r.schemas))
	for k := range r.schemas {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// NumericFields returns the numeric fields of kind.
func (r *Registry) NumericFields(kind Kind) ([]string, error) {
	s, err := r.Lookup(kind)
	if err != nil {
		return nil, err
	}
	return s.NumericFields(), nil
}

// TextFields returns the text fields of kind.
func (r *Registry) TextFields(kind Kind) ([]string, error) {
	s, err := r.Lookup(kind)
	if err != nil {
		return nil, err
	}
	return s.TextFields(), nil
}

// AllFields returns every field of kind.
func (r *Registry) AllFields(kind Kind) ([]string, error) {
	s, err := r.Lookup(kind)
	if err != nil {
		return nil, err
	}
	return s.AllFields(), nil
}
