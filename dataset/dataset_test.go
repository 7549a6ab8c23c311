package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/insight/schema"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "simple", id: "courses", wantErr: false},
		{name: "inner space", id: "my courses", wantErr: false},
		{name: "dash", id: "-", wantErr: false},
		{name: "empty", id: "", wantErr: true},
		{name: "spaces only", id: "   ", wantErr: true},
		{name: "tab only", id: "\t", wantErr: true},
		{name: "underscore", id: "my_courses", wantErr: true},
		{name: "leading underscore", id: "_", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidID))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewAndInfo(t *testing.T) {
	ds, err := New("rooms", schema.Rooms, []Record{{"seats": 10.0}, {"seats": 20.0}})
	require.NoError(t, err)
	assert.Equal(t, Info{ID: "rooms", Kind: schema.Rooms, NumRows: 2}, ds.Info())

	_, err = New("bad_id", schema.Rooms, nil)
	assert.Error(t, err)
}
