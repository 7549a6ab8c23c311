package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vegasq/insight/dataset"
	"github.com/vegasq/insight/schema"
)

func testSections() []dataset.Record {
	return []dataset.Record{
		{"dept": "cpsc", "id": "310", "avg": 85.0, "instructor": "smith, j", "title": "sw eng", "pass": 40.0, "fail": 2.0, "audit": 0.0, "uuid": "1", "year": 2015.0},
		{"dept": "math", "id": "100", "avg": 70.0, "instructor": "doe, a", "title": "calculus", "pass": 90.0, "fail": 12.0, "audit": 1.0, "uuid": "2", "year": 2016.0},
		{"dept": "cpsc", "id": "110", "avg": 90.0, "instructor": "lee, k", "title": "intro", "pass": 200.0, "fail": 5.0, "audit": 3.0, "uuid": "3", "year": 1900.0},
		{"dept": "phys", "id": "101", "avg": 85.0, "instructor": "", "title": "mechanics", "pass": 60.0, "fail": 8.0, "audit": 0.0, "uuid": "4", "year": 2015.0},
	}
}

func testRooms() []dataset.Record {
	return []dataset.Record{
		{"fullname": "Hugh Dempster Pavilion", "shortname": "DMP", "number": "110", "name": "DMP_110", "address": "6245 Agronomy Road", "lat": 49.26125, "lon": -123.24807, "seats": 120.0, "type": "Tiered Large Group", "furniture": "Classroom-Fixed Tablets", "href": "http://example.com/DMP-110"},
		{"fullname": "Hugh Dempster Pavilion", "shortname": "DMP", "number": "201", "name": "DMP_201", "address": "6245 Agronomy Road", "lat": 49.26125, "lon": -123.24807, "seats": 40.0, "type": "Small Group", "furniture": "Classroom-Movable Tables & Chairs", "href": "http://example.com/DMP-201"},
		{"fullname": "Woodward", "shortname": "WOOD", "number": "2", "name": "WOOD_2", "address": "2194 Health Sciences Mall", "lat": 49.26478, "lon": -123.24673, "seats": 503.0, "type": "Tiered Large Group", "furniture": "Classroom-Fixed Tables/Fixed Chairs", "href": "http://example.com/WOOD-2"},
	}
}

// newTestStore returns a store holding "sections" (courses) and "rooms"
func newTestStore(t *testing.T) *dataset.Store {
	t.Helper()
	store := dataset.NewStore()
	sections, err := dataset.New("sections", schema.Courses, testSections())
	require.NoError(t, err)
	rooms, err := dataset.New("rooms", schema.Rooms, testRooms())
	require.NoError(t, err)
	require.NoError(t, store.Add(sections))
	require.NoError(t, store.Add(rooms))
	return store
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	return NewEngine(newTestStore(t), schema.DefaultRegistry(), opts...)
}

// doc decodes a JSON query document the way an HTTP body is decoded
func doc(t *testing.T, s string) interface{} {
	t.Helper()
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}
