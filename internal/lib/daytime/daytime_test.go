package daytime_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kirill-j/bookinghub/internal/lib/daytime"
)

func TestHHMMRoundTrip(t *testing.T) {
	for m := 0; m < daytime.MinutesPerDay; m++ {
		got, err := daytime.HHMMToMinutes(daytime.MinutesToHHMM(m))
		require.NoError(t, err)
		require.Equal(t, m, got, "minute %d", m)
	}
}

func TestMinutesToHHMM(t *testing.T) {
	assert.Equal(t, "00:00", daytime.MinutesToHHMM(0))
	assert.Equal(t, "08:00", daytime.MinutesToHHMM(480))
	assert.Equal(t, "12:30", daytime.MinutesToHHMM(750))
	assert.Equal(t, "23:59", daytime.MinutesToHHMM(1439))
}

func TestHHMMToMinutes_Invalid(t *testing.T) {
	tests := []string{"", "abc", "10", "10:xx", "xx:10", "10:60", "-1:00"}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := daytime.HHMMToMinutes(in)
			assert.ErrorIs(t, err, daytime.ErrInvalidClock)
		})
	}
}

func TestToTimeHHMM(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "rfc3339 utc converted to local", raw: "2025-03-10T06:30:00Z", want: "09:30"},
		{name: "rfc3339 with offset", raw: "2025-03-10T10:15:00+03:00", want: "10:15"},
		{name: "zone-less client format", raw: "2025-03-10T14:45:00", want: "14:45"},
		{name: "zone-less without seconds", raw: "2025-03-10T07:05", want: "07:05"},
		{name: "unparsable value returned as is", raw: "not-a-date", want: "not-a-date"},
		{name: "empty value returned as is", raw: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, daytime.ToTimeHHMM(tt.raw, loc))
		})
	}
}

func TestParseTimestamp_MinuteOfDay(t *testing.T) {
	ts, err := daytime.ParseTimestamp("2025-03-10T09:15:00", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 555, daytime.MinuteOfDay(ts))

	_, err = daytime.ParseTimestamp("10/03/2025 09:15", time.UTC)
	assert.Error(t, err)
}

func TestLocalTimestamp(t *testing.T) {
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		minute int
		want   string
	}{
		{name: "midnight", minute: 0, want: "2025-03-10T00:00:00"},
		{name: "morning", minute: 540, want: "2025-03-10T09:00:00"},
		{name: "last minute", minute: 1439, want: "2025-03-10T23:59:00"},
		{name: "end of day rolls over", minute: daytime.MinutesPerDay, want: "2025-03-11T00:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, daytime.LocalTimestamp(day, tt.minute))
		})
	}

	// конец месяца
	assert.Equal(t, "2025-04-01T00:00:00",
		daytime.LocalTimestamp(time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), daytime.MinutesPerDay))
}
