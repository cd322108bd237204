package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexFloat_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    FlexFloat
		wantErr bool
	}{
		{name: "number", input: `-23.55`, want: FlexFloat{Value: -23.55, Set: true}},
		{name: "numeric string", input: `"-46.63"`, want: FlexFloat{Value: -46.63, Set: true}},
		{name: "decimal comma", input: `"-23,5"`, want: FlexFloat{Value: -23.5, Set: true}},
		{name: "padded string", input: `" 12.5 "`, want: FlexFloat{Value: 12.5, Set: true}},
		{name: "empty string", input: `""`, want: FlexFloat{}},
		{name: "null", input: `null`, want: FlexFloat{}},
		{name: "garbage string", input: `"abc"`, wantErr: true},
		{name: "boolean", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexFloat
			err := json.Unmarshal([]byte(tt.input), &f)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestFlexFloat_MissingField(t *testing.T) {
	var body struct {
		Lat FlexFloat `json:"lat"`
		Lng FlexFloat `json:"lng"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"lat": "-23.55"}`), &body))

	assert.True(t, body.Lat.Set)
	assert.False(t, body.Lng.Set)
	assert.Nil(t, CoordinateFrom(body.Lat, body.Lng))
}

func TestCoordinateFrom(t *testing.T) {
	c := CoordinateFrom(FlexFloat{Value: -23.55, Set: true}, FlexFloat{Value: -46.63, Set: true})
	require.NotNil(t, c)
	assert.Equal(t, Coordinate{Lat: -23.55, Lng: -46.63}, *c)
}
