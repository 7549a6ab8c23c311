package query

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vegasq/insight/dataset"
	"github.com/vegasq/insight/schema"
)

func TestEngine_GreaterThan(t *testing.T) {
	store := dataset.NewStore()
	ds, err := dataset.New("sections", schema.Courses, []dataset.Record{
		{"dept": "cpsc", "avg": 85.0},
		{"dept": "math", "avg": 70.0},
	})
	require.NoError(t, err)
	require.NoError(t, store.Add(ds))

	engine := NewEngine(store, nil)
	rows, err := engine.RunJSON([]byte(`{"filter": {"GT": {"sections_avg": 80}}, "options": {"columns": ["sections_dept", "sections_avg"]}}`))
	require.NoError(t, err)
	assert.Equal(t, []map[string]interface{}{
		{"sections_dept": "cpsc", "sections_avg": 85.0},
	}, rows)
}

func TestEngine_MatchAllReturnsWholeDataset(t *testing.T) {
	engine := newTestEngine(t)

	rows, err := engine.Run(doc(t, `{"filter": {}, "options": {"columns": ["sections_uuid", "sections_year"]}}`))
	require.NoError(t, err)
	assert.Equal(t, Project(testSections(), []string{"sections_uuid", "sections_year"}), rows)
}

func TestEngine_GroupAverage(t *testing.T) {
	engine := newTestEngine(t)

	rows, err := engine.Run(doc(t, `{
		"filter": {"OR": [{"IS": {"sections_dept": "cpsc"}}, {"IS": {"sections_dept": "math"}}]},
		"options": {"columns": ["sections_dept", "avgGrade", "sections"]},
		"transform": {
			"group": ["sections_dept"],
			"apply": [{"avgGrade": {"AVG": "sections_avg"}}, {"sections": {"COUNT": "sections_uuid"}}]
		}
	}`))
	require.NoError(t, err)
	assert.Equal(t, []map[string]interface{}{
		{"sections_dept": "cpsc", "avgGrade": 87.5, "sections": 2.0},
		{"sections_dept": "math", "avgGrade": 70.0, "sections": 1.0},
	}, rows)
}

func TestEngine_OrderDownWithTieBreak(t *testing.T) {
	engine := newTestEngine(t)

	rows, err := engine.Run(doc(t, `{
		"filter": {},
		"options": {
			"columns": ["sections_avg", "sections_dept"],
			"order": {"dir": "DOWN", "keys": ["sections_avg", "sections_dept"]}
		}
	}`))
	require.NoError(t, err)
	assert.Equal(t, []map[string]interface{}{
		{"sections_avg": 90.0, "sections_dept": "cpsc"},
		{"sections_avg": 85.0, "sections_dept": "phys"},
		{"sections_avg": 85.0, "sections_dept": "cpsc"},
		{"sections_avg": 70.0, "sections_dept": "math"},
	}, rows)
}

func TestEngine_RoomsQuery(t *testing.T) {
	engine := newTestEngine(t)

	rows, err := engine.Run(doc(t, `{
		"filter": {"AND": [{"IS": {"rooms_furniture": "Classroom-*"}}, {"GT": {"rooms_seats": 100}}]},
		"options": {"columns": ["rooms_shortname", "maxSeats"], "order": {"dir": "DOWN", "keys": ["maxSeats"]}},
		"transform": {"group": ["rooms_shortname"], "apply": [{"maxSeats": {"MAX": "rooms_seats"}}]}
	}`))
	require.NoError(t, err)
	assert.Equal(t, []map[string]interface{}{
		{"rooms_shortname": "WOOD", "maxSeats": 503.0},
		{"rooms_shortname": "DMP", "maxSeats": 120.0},
	}, rows)
}

func TestEngine_ResultTooLarge(t *testing.T) {
	build := func(n int) *Engine {
		records := make([]dataset.Record, n)
		for i := range records {
			records[i] = dataset.Record{"dept": "cpsc", "avg": float64(i % 100), "uuid": fmt.Sprint(i)}
		}
		store := dataset.NewStore()
		ds, err := dataset.New("sections", schema.Courses, records)
		require.NoError(t, err)
		require.NoError(t, store.Add(ds))
		return NewEngine(store, nil)
	}
	q := `{"filter": {"GT": {"sections_avg": -1}}, "options": {"columns": ["sections_uuid"]}}`

	rows, err := build(MaxResultRows).RunJSON([]byte(q))
	require.NoError(t, err)
	assert.Len(t, rows, MaxResultRows)

	rows, err = build(MaxResultRows + 1).RunJSON([]byte(q))
	assert.Nil(t, rows)
	require.ErrorIs(t, err, ErrResultTooLarge)
	var tooLarge *ResultTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, MaxResultRows+1, tooLarge.Rows)
	assert.Equal(t, MaxResultRows, tooLarge.Limit)

	// grouping below the cap is fine even when the filter matches more
	rows, err = build(MaxResultRows + 1).RunJSON([]byte(`{"filter": {}, "options": {"columns": ["sections_avg"]},
		"transform": {"group": ["sections_avg"], "apply": []}}`))
	require.NoError(t, err)
	assert.Len(t, rows, 100)
}

func TestEngine_RunJSONInvalid(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.RunJSON([]byte(`{"filter": `))
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = engine.RunJSON([]byte(`[1, 2]`))
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestEngine_SnapshotIsolation(t *testing.T) {
	store := newTestStore(t)
	engine := NewEngine(store, nil)

	q, err := engine.Parse(doc(t, `{"filter": {}, "options": {"columns": ["sections_dept"]}}`))
	require.NoError(t, err)

	_, err = store.Remove("sections")
	require.NoError(t, err)

	rows, err := engine.Execute(q)
	require.NoError(t, err)
	assert.Len(t, rows, len(testSections()))

	_, err = engine.Parse(doc(t, `{"filter": {}, "options": {"columns": ["sections_dept"]}}`))
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestEngine_LogsQueries(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	engine := newTestEngine(t, WithLogger(zap.New(core)))

	_, err := engine.Run(doc(t, `{"filter": {}, "options": {"columns": ["rooms_name"]}}`))
	require.NoError(t, err)
	_, err = engine.Run(doc(t, `{"filter": {}, "options": {}}`))
	require.Error(t, err)

	assert.Equal(t, 1, logs.FilterMessage("query executed").Len())
	assert.Equal(t, 1, logs.FilterMessage("query rejected").Len())

	entry := logs.FilterMessage("query executed").All()[0]
	assert.Equal(t, "rooms", entry.ContextMap()["dataset"])
}

func TestEngine_WithKeywords(t *testing.T) {
	engine := newTestEngine(t, WithKeywords(LegacyKeywords))
	assert.Equal(t, LegacyKeywords, engine.Keywords())

	rows, err := engine.Run(doc(t, `{"WHERE": {"EQ": {"sections_year": 1900}}, "OPTIONS": {"COLUMNS": ["sections_id"]}}`))
	require.NoError(t, err)
	assert.Equal(t, []map[string]interface{}{{"sections_id": "110"}}, rows)
}
