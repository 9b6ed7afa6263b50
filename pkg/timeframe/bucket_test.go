package timeframe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeframe_Floor(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	ts := time.Date(2024, time.March, 14, 10, 37, 42, 123, ist)

	testCases := []struct {
		name      string
		timeframe Timeframe
		expected  time.Time
	}{
		{
			name:      "minute",
			timeframe: Minute,
			expected:  time.Date(2024, time.March, 14, 10, 37, 0, 0, ist),
		},
		{
			name:      "5minute floors to :35",
			timeframe: Minute5,
			expected:  time.Date(2024, time.March, 14, 10, 35, 0, 0, ist),
		},
		{
			name:      "15minute floors to :30",
			timeframe: Minute15,
			expected:  time.Date(2024, time.March, 14, 10, 30, 0, 0, ist),
		},
		{
			name:      "30minute floors to :30",
			timeframe: Minute30,
			expected:  time.Date(2024, time.March, 14, 10, 30, 0, 0, ist),
		},
		{
			name:      "60minute floors to hour",
			timeframe: Minute60,
			expected:  time.Date(2024, time.March, 14, 10, 0, 0, 0, ist),
		},
		{
			name:      "day floors to midnight",
			timeframe: Day,
			expected:  time.Date(2024, time.March, 14, 0, 0, 0, 0, ist),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.expected.Equal(tc.timeframe.Floor(ts)))
		})
	}
}

func TestTimeframe_FloorIsIdempotent(t *testing.T) {
	ts := time.Date(2024, time.March, 14, 10, 37, 42, 0, time.UTC)
	for _, tf := range All {
		once := tf.Floor(ts)
		assert.True(t, once.Equal(tf.Floor(once)), tf.Name)
	}
}

func TestTimeframe_SameBucket(t *testing.T) {
	base := time.Date(2024, time.March, 14, 10, 35, 0, 0, time.UTC)

	assert.True(t, Minute5.SameBucket(base, base.Add(4*time.Minute+59*time.Second)))
	assert.False(t, Minute5.SameBucket(base, base.Add(5*time.Minute)))
	assert.True(t, Day.SameBucket(base, base.Add(13*time.Hour)))
	assert.False(t, Day.SameBucket(base, base.Add(14*time.Hour)))
}

func TestTimeframe_Range(t *testing.T) {
	ts := time.Date(2024, time.March, 14, 10, 37, 0, 0, time.UTC)
	start, end := Minute15.Range(ts)
	assert.Equal(t, time.Date(2024, time.March, 14, 10, 30, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.March, 14, 10, 45, 0, 0, time.UTC), end)
}

func TestGet(t *testing.T) {
	tf, err := Get("5minute")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, tf.Duration)

	_, err = Get("2minute")
	assert.Error(t, err)
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("day"))
	assert.False(t, IsValid("week"))
}
