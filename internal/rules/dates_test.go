package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/pattern"
	"github.com/roach88/shapes/internal/typedesc"
)

func TestISODates_Date(t *testing.T) {
	e := newEngine()

	got := roundTrip(t, e, typedesc.Date, ir.String("2024-02-29"))
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), got)

	_, err := e.Decode(typedesc.Date, ir.String("2024-02-29T10:00:00Z"))
	assert.Error(t, err, "strict dates refuse datetimes")
}

func TestISODatesLoose_DateAcceptsDateTime(t *testing.T) {
	e := newEngine(WithDates(ISODatesLoose))

	got, err := e.Decode(typedesc.Date, ir.String("2024-02-29T23:30:00+02:00"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), got)
}

func TestISODates_DateTime(t *testing.T) {
	e := newEngine()

	roundTrip(t, e, typedesc.DateTime, ir.String("2021-06-01T12:30:00.5+02:00"))

	for _, in := range []string{"2021-06-01T12:30:00", "2021-06-01 12:30:00", "2021-06-01"} {
		got, err := e.Decode(typedesc.DateTime, ir.String(in))
		require.NoError(t, err, in)
		assert.Equal(t, time.UTC, got.(time.Time).Location(), in)
	}

	out, err := e.Encode(typedesc.DateTime, time.Date(2021, 6, 1, 12, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, ir.String("2021-06-01T12:30:00Z"), out)
}

func TestISODates_Time(t *testing.T) {
	e := newEngine()

	roundTrip(t, e, typedesc.Time, ir.String("08:15:00.25"))

	got, err := e.Decode(typedesc.Time, ir.String("08:15"))
	require.NoError(t, err)
	out, err := e.Encode(typedesc.Time, got)
	require.NoError(t, err)
	assert.Equal(t, ir.String("08:15:00"), out)
}

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"PT0S":        0,
		"P1D":         24 * time.Hour,
		"P1W":         7 * 24 * time.Hour,
		"PT1H30M":     90 * time.Minute,
		"PT0.5S":      500 * time.Millisecond,
		"pt1,5s":      1500 * time.Millisecond,
		"P-1DT23H":    -time.Hour,
		"P1DT2H3M4S":  26*time.Hour + 3*time.Minute + 4*time.Second,
		"P0Y0M1D":     24 * time.Hour,
	}
	for in, want := range cases {
		got, err := parseDuration(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"P", "PT", "1D", "P1DT", "P1.5.5D"} {
		_, err := parseDuration(in)
		assert.Error(t, err, in)
	}

	_, err := parseDuration("P1Y")
	assert.ErrorIs(t, err, errCalendarDuration)
	_, err = parseDuration("P2M")
	assert.ErrorIs(t, err, errCalendarDuration)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "P0DT0S", formatDuration(0))
	assert.Equal(t, "P1DT3600S", formatDuration(25*time.Hour))
	assert.Equal(t, "P-1DT86399S", formatDuration(-time.Second), "days floor so seconds stay positive")
	assert.Equal(t, "P0DT1.250000S", formatDuration(1250*time.Millisecond))
}

func TestDuration_RoundTrip(t *testing.T) {
	e := newEngine()
	for _, d := range []time.Duration{0, -90 * time.Minute, 36*time.Hour + 1500*time.Microsecond} {
		out, err := e.Encode(typedesc.Duration, d)
		require.NoError(t, err)
		back, err := e.Decode(typedesc.Duration, out)
		require.NoError(t, err)
		assert.Equal(t, d, back)
	}
}

func TestISODates_Patterns(t *testing.T) {
	e := newEngine()

	date, err := e.Pattern(typedesc.Date)
	require.NoError(t, err)
	dateTime, err := e.Pattern(typedesc.DateTime)
	require.NoError(t, err)

	assert.Equal(t, "date", pattern.Format(date)[1:5])
	assert.Equal(t, pattern.Never, pattern.Match(date, pattern.Number))
	assert.NotEqual(t, pattern.Always, pattern.Match(date, pattern.AnyString))
	assert.NotEqual(t, pattern.Never, pattern.Match(dateTime, date))
}
