package ingest

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/insight/dataset"
	"github.com/vegasq/insight/schema"
)

// buildZip creates an archive holding files, with "dir/" names creating
// directory entries
func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

const cpscFile = `{"result": [
	{"Subject": "cpsc", "Course": "310", "Avg": 78.5, "Professor": "smith, j", "Title": "sw eng",
	 "Pass": 120, "Fail": 3, "Audit": 1, "id": 1234, "Year": "2015", "Section": "101"},
	{"Subject": "cpsc", "Course": "310", "Avg": 77, "Professor": "", "Title": "sw eng",
	 "Pass": 400, "Fail": 9, "Audit": 2, "id": 1235, "Year": "2015", "Section": "overall"},
	{"Subject": "cpsc", "Course": "310", "Avg": "bad", "Professor": "x", "Title": "sw eng",
	 "Pass": 1, "Fail": 0, "Audit": 0, "id": 1236, "Year": "2015"},
	{"Subject": "cpsc", "Course": "310", "Avg": 70, "Professor": "x", "Title": "sw eng",
	 "Pass": 1, "Fail": 0, "Audit": 0, "id": 1237, "Year": "n/a"}
]}`

func TestParseCourses(t *testing.T) {
	content := buildZip(t, map[string]string{
		"courses/":        "",
		"courses/CPSC310": cpscFile,
		"courses/junk":    "not json",
		"courses/empty":   `{"result": []}`,
		"other/MATH100":   `{"result": [{"Subject": "math"}]}`,
	})

	records, err := ParseCourses(content)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, dataset.Record{
		"dept": "cpsc", "id": "310", "avg": 78.5, "instructor": "smith, j", "title": "sw eng",
		"pass": 120.0, "fail": 3.0, "audit": 1.0, "uuid": "1234", "year": 2015.0,
	}, records[0])
	assert.Equal(t, 1900.0, records[1]["year"])
	assert.Equal(t, "1235", records[1]["uuid"])
}

func TestParseCourses_Base64(t *testing.T) {
	content := buildZip(t, map[string]string{"courses/CPSC310": cpscFile})
	encoded := []byte(base64.StdEncoding.EncodeToString(content))

	records, err := ParseCourses(encoded)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestParseCourses_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		wantErr error
	}{
		{"empty", nil, ErrInvalidContent},
		{"not a zip", []byte("hello world"), ErrInvalidContent},
		{"no courses directory", buildZip(t, map[string]string{"rooms/a": cpscFile}), ErrInvalidContent},
		{"no valid sections", buildZip(t, map[string]string{"courses/a": `{"result": [{"Subject": 1}]}`}), ErrNoValidRecords},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCourses(tt.content)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"2015", 2015, true},
		{" 2015", 2015, true},
		{"2015abc", 2015, true},
		{"-7", -7, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-", 0, false},
	}
	for _, tt := range tests {
		got, ok := leadingInt(tt.in)
		assert.Equal(t, tt.wantOK, ok, "leadingInt(%q)", tt.in)
		assert.Equal(t, tt.want, got, "leadingInt(%q)", tt.in)
	}
}

const roomsJSON = `[
	{"fullname": "Woodward", "shortname": "WOOD", "number": "2", "name": "WOOD_2",
	 "address": "2194 Health Sciences Mall", "lat": 49.26478, "lon": -123.24673, "seats": 503,
	 "type": "Tiered Large Group", "furniture": "Classroom-Fixed Tables/Fixed Chairs",
	 "href": "http://example.com/WOOD-2", "extra": true},
	{"fullname": "Woodward", "shortname": "WOOD", "number": "3", "name": "WOOD_3",
	 "address": "2194 Health Sciences Mall", "lat": 49.26478, "lon": -123.24673, "seats": "many",
	 "type": "Small Group", "furniture": "Classroom-Movable Tables",
	 "href": "http://example.com/WOOD-3"},
	"not an object"
]`

func TestParseRecords(t *testing.T) {
	records, err := ParseRecords(schema.RoomsSchema(), []byte(roomsJSON))
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "WOOD_2", r["name"])
	assert.Equal(t, 503.0, r["seats"])
	assert.NotContains(t, r, "extra")
	assert.Len(t, r, len(schema.RoomsSchema().AllFields()))
}

func TestParseRecords_Errors(t *testing.T) {
	_, err := ParseRecords(schema.RoomsSchema(), []byte(`{"a": 1}`))
	assert.ErrorIs(t, err, ErrInvalidContent)

	_, err = ParseRecords(schema.RoomsSchema(), []byte(`[{`))
	assert.ErrorIs(t, err, ErrInvalidContent)

	_, err = ParseRecords(schema.RoomsSchema(), []byte(`[]`))
	assert.ErrorIs(t, err, ErrNoValidRecords)
}

func TestParse_Dispatch(t *testing.T) {
	reg := schema.DefaultRegistry()

	records, err := Parse(reg, schema.Rooms, []byte("  "+roomsJSON))
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = Parse(reg, schema.Courses, buildZip(t, map[string]string{"courses/a": cpscFile}))
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = Parse(reg, schema.Rooms, buildZip(t, map[string]string{"courses/a": cpscFile}))
	assert.ErrorIs(t, err, ErrInvalidContent)

	_, err = Parse(reg, "buildings", []byte(`[]`))
	assert.ErrorIs(t, err, schema.ErrUnknownKind)
}
