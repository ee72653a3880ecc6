package duration_test

import (
	"testing"
	"time"

	"oss.nandlabs.io/regular/duration"
	"oss.nandlabs.io/regular/testing/assert"
)

func TestParseZero(t *testing.T) {
	d, err := duration.Parse("0")
	assert.NoError(t, err)
	assert.Equal(t, time.Duration(0), d)
}

func TestParseInvalid(t *testing.T) {
	_, err := duration.Parse("  ")
	assert.Error(t, err)

	_, err = duration.Parse("no")
	assert.Error(t, err)
}

func TestParseSingleUnits(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"1w", 7 * 24 * time.Hour},
		{"1d", 24 * time.Hour},
		{"1h", time.Hour},
		{"1m", time.Minute},
		{"1s", time.Second},
		{"500ms", 500 * time.Millisecond},
	}
	for _, c := range cases {
		got, err := duration.Parse(c.in)
		assert.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

func TestParseCombined(t *testing.T) {
	got, err := duration.Parse("2h30m")
	assert.NoError(t, err)
	assert.Equal(t, 2*time.Hour+30*time.Minute, got)
}

func TestParseWhitespaceBetweenComponents(t *testing.T) {
	got, err := duration.Parse("1d 2h")
	assert.NoError(t, err)
	assert.Equal(t, 24*time.Hour+2*time.Hour, got)
}

func TestParseCaseInsensitive(t *testing.T) {
	got, err := duration.Parse("1H30M")
	assert.NoError(t, err)
	assert.Equal(t, time.Hour+30*time.Minute, got)
}

func TestParseRejectsOutOfOrderComponents(t *testing.T) {
	_, err := duration.Parse("1m1w")
	assert.Error(t, err)
}

func TestParseRejectsRepeatedComponents(t *testing.T) {
	_, err := duration.Parse("1h1h")
	assert.Error(t, err)
}

func TestStringRoundTrip(t *testing.T) {
	cases := []string{"0", "1w", "1d", "2h30m", "1s", "500ms"}
	for _, c := range cases {
		d, err := duration.Parse(c)
		assert.NoError(t, err)
		again, err := duration.Parse(duration.String(d))
		assert.NoError(t, err)
		assert.Equal(t, d, again)
	}
}
