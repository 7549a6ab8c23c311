package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoursesSchema(t *testing.T) {
	s := CoursesSchema()

	assert.Equal(t, Courses, s.Kind())
	assert.Equal(t, []string{"audit", "avg", "fail", "pass", "year"}, s.NumericFields())
	assert.Equal(t, []string{"dept", "id", "instructor", "title", "uuid"}, s.TextFields())
	assert.Len(t, s.AllFields(), 10)

	tests := []struct {
		field   string
		numeric bool
		text    bool
	}{
		{"avg", true, false},
		{"year", true, false},
		{"dept", false, true},
		{"uuid", false, true},
		{"seats", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.numeric, s.IsNumericField(tt.field))
			assert.Equal(t, tt.text, s.IsTextField(tt.field))
			assert.Equal(t, tt.numeric || tt.text, s.HasField(tt.field))
		})
	}
}

func TestRoomsSchema(t *testing.T) {
	s := RoomsSchema()

	assert.Equal(t, []string{"lat", "lon", "seats"}, s.NumericFields())
	assert.True(t, s.IsTextField("furniture"))
	assert.True(t, s.IsTextField("number"))
	assert.False(t, s.HasField("avg"))

	typ, ok := s.FieldType("seats")
	require.True(t, ok)
	assert.Equal(t, Numeric, typ)
	assert.Equal(t, "numeric", typ.String())
}

func TestNewPanicsOnDuplicateField(t *testing.T) {
	assert.Panics(t, func() {
		New("broken", []string{"a"}, []string{"a"})
	})
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []Kind{Courses, Rooms}, r.Kinds())

	s, err := r.Lookup(Rooms)
	require.NoError(t, err)
	assert.Equal(t, Rooms, s.Kind())

	_, err = r.Lookup("buildings")
	assert.True(t, errors.Is(err, ErrUnknownKind))

	_, err = r.ParseKind("buildings")
	assert.Error(t, err)

	r.Register(New("buildings", []string{"floors"}, []string{"code"}))
	kind, err := r.ParseKind("buildings")
	require.NoError(t, err)
	assert.Equal(t, Kind("buildings"), kind)

	fields, err := r.NumericFields("buildings")
	require.NoError(t, err)
	assert.Equal(t, []string{"floors"}, fields)

	fields, err = r.TextFields(Courses)
	require.NoError(t, err)
	assert.Contains(t, fields, "instructor")

	fields, err = r.AllFields(Rooms)
	require.NoError(t, err)
	assert.Len(t, fields, 11)
}
