package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", in: `"300s"`, want: 300 * time.Second},
		{name: "minutes", in: `"5m"`, want: 5 * time.Minute},
		{name: "nanoseconds", in: `1000000000`, want: time.Second},
		{name: "bad string", in: `"soon"`, wantErr: true},
		{name: "bool", in: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.in), &d)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDuration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration)
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 90 * time.Second})
	require.NoError(t, err)
	assert.JSONEq(t, `"1m30s"`, string(b))
}

func TestParseInstant_Forms(t *testing.T) {
	loc := time.FixedZone("test", 3*60*60)
	want := time.Date(2026, 10, 18, 14, 30, 0, 0, loc)

	tests := []struct {
		name string
		in   any
		want time.Time
	}{
		{name: "rfc3339 with offset", in: "2026-10-18T11:30:00Z", want: want},
		{name: "rfc3339 local", in: "2026-10-18T14:30:00+03:00", want: want},
		{name: "iso without zone", in: "2026-10-18T14:30:00", want: want},
		{name: "space separated", in: "2026-10-18 14:30:00", want: want},
		{name: "date only", in: "2026-10-18", want: time.Date(2026, 10, 18, 0, 0, 0, 0, loc)},
		{name: "epoch millis number", in: float64(want.UnixMilli()), want: want},
		{name: "epoch millis int64", in: want.UnixMilli(), want: want},
		{name: "epoch millis string", in: "1792323000000", want: time.UnixMilli(1792323000000).In(loc)},
		{name: "json number", in: json.Number("1792323000000"), want: time.UnixMilli(1792323000000).In(loc)},
		{name: "time value", in: want.UTC(), want: want},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseInstant(tt.in, loc)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
			assert.Equal(t, loc, got.Location())
		})
	}
}

func TestParseInstant_MalformedIsZero(t *testing.T) {
	for _, in := range []any{nil, "", "   ", "yesterday", "18/10/2026", true, float64(0), float64(-5), map[string]any{}} {
		assert.True(t, ParseInstant(in, time.UTC).IsZero(), "input %#v", in)
	}
}

func TestInstant_UnmarshalJSON(t *testing.T) {
	var payload struct {
		A Instant `json:"a"`
		B Instant `json:"b"`
		C Instant `json:"c"`
		D Instant `json:"d"`
	}
	err := json.Unmarshal([]byte(`{"a":"2026-10-18","b":1792323000000,"c":null,"d":"garbage"}`), &payload)
	require.NoError(t, err)

	y, m, d := payload.A.Date()
	assert.Equal(t, 2026, y)
	assert.Equal(t, time.October, m)
	assert.Equal(t, 18, d)
	assert.Equal(t, int64(1792323000000), payload.B.UnixMilli())
	assert.True(t, payload.C.IsZero())
	assert.True(t, payload.D.IsZero())

	b, err := json.Marshal(payload.C)
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestCalendarHelpers(t *testing.T) {
	morning := time.Date(2026, 10, 18, 0, 5, 0, 0, time.UTC)
	evening := time.Date(2026, 10, 18, 23, 55, 0, 0, time.UTC)
	nextDay := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDate(morning, evening))
	assert.Equal(t, 0, CompareDate(evening, morning))
	assert.Equal(t, -1, CompareDate(evening, nextDay))
	assert.Equal(t, 1, CompareDate(nextDay, morning))
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), StartOfDay(evening))
}

func TestWeekBounds_SundayStart(t *testing.T) {
	// 2026-10-18 is a Sunday.
	sunday := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	start, end := WeekBounds(sunday)
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC), end)

	saturday := time.Date(2026, 10, 24, 23, 0, 0, 0, time.UTC)
	start, end = WeekBounds(saturday)
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC), end)

	wednesday := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	start, _ = WeekBounds(wednesday)
	assert.Equal(t, time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC), start)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-10-01", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("01.10.2026", time.UTC)
	assert.Error(t, err)
}
