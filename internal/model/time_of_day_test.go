package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "09:00", want: 9 * 60},
		{in: "23:59", want: 23*60 + 59},
		{in: "14:30:45", want: 14*60 + 30},
		{in: "00:00", want: 0},
		{in: "09:00garbage", wantErr: true},
		{in: "09:00:00extra", wantErr: true},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayJSON(t *testing.T) {
	var body struct {
		Start *TimeOfDay `json:"start_time"`
		End   *TimeOfDay `json:"end_time"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"end_time":"11:00"}`), &body))
	assert.Nil(t, body.Start)
	require.NotNil(t, body.End)
	assert.Equal(t, "11:00", body.End.String())

	assert.Error(t, json.Unmarshal([]byte(`{"start_time":"09:00garbage"}`), &body))

	out, err := json.Marshal(MustTimeOfDay("07:05"))
	require.NoError(t, err)
	assert.JSONEq(t, `"07:05"`, string(out))
}
