package rules

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/shapes/internal/engine"
	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/pattern"
	"github.com/roach88/shapes/internal/typedesc"
)

// ISODates handles date, datetime, time and duration as ISO 8601
// strings.
var ISODates engine.Rule = engine.RuleFunc(func(verb ir.Verb, desc ir.Descriptor, _ *engine.Engine) (ir.Action, error) {
	return isoDates(verb, desc, parseDate)
})

// ISODatesLoose is ISODates except that a date also accepts a datetime
// and keeps its calendar day.
var ISODatesLoose engine.Rule = engine.RuleFunc(func(verb ir.Verb, desc ir.Descriptor, _ *engine.Engine) (ir.Action, error) {
	return isoDates(verb, desc, parseDateLoose)
})

func isoDates(verb ir.Verb, desc ir.Descriptor, dateParser func(string) (time.Time, error)) (ir.Action, error) {
	p, ok := desc.(typedesc.Primitive)
	if !ok {
		return nil, nil
	}
	switch p {
	case typedesc.Date:
		return timeLeaf("date", dateParser, formatDate).action(verb), nil
	case typedesc.DateTime:
		return timeLeaf("datetime", parseDateTime, formatDateTime).action(verb), nil
	case typedesc.Time:
		return timeLeaf("time", parseTime, formatTime).action(verb), nil
	case typedesc.Duration:
		return durationLeaf.action(verb), nil
	}
	return nil, nil
}

// stringLeaf builds the actions of a type carried as a string.
func stringLeaf[T any](name string, parse func(string) (T, error), format func(T) string) leaf {
	return leaf{
		decode: func(v any) (any, error) {
			s, ok := v.(ir.String)
			if !ok {
				return nil, engine.Mismatch("string", v)
			}
			out, err := parse(string(s))
			if err != nil {
				return nil, err
			}
			return out, nil
		},
		encode: func(v any) (any, error) {
			t, ok := v.(T)
			if !ok {
				return nil, engine.Mismatch(fmt.Sprintf("%T", *new(T)), v)
			}
			return ir.String(format(t)), nil
		},
		isDecoded: func(v any) bool { _, ok := v.(T); return ok },
		isEncoded: parsesAs(parse),
		pattern:   pattern.NamedString(name, recognizer(parse)),
	}
}

func timeLeaf(name string, parse func(string) (time.Time, error), format func(time.Time) string) leaf {
	return stringLeaf(name, parse, format)
}

var durationLeaf = stringLeaf("duration", parseDuration, formatDuration)

// ============================================================================
// Dates and times
// ============================================================================

const (
	layoutNaive    = "2006-01-02T15:04:05.999999999"
	layoutTime     = "15:04:05.999999999"
	layoutTimeZone = "15:04:05.999999999Z07:00"
)

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not an ISO date", s)
	}
	return t, nil
}

func parseDateLoose(s string) (time.Time, error) {
	if t, err := parseDate(s); err == nil {
		return t, nil
	}
	t, err := parseDateTime(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not an ISO date or datetime", s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func formatDate(t time.Time) string { return t.Format(time.DateOnly) }

// parseDateTime accepts RFC 3339, a datetime without offset (read as
// UTC) or a bare date. A space may replace the T.
func parseDateTime(s string) (time.Time, error) {
	if len(s) > 10 && s[10] == ' ' {
		s = s[:10] + "T" + s[11:]
	}
	for _, layout := range []string{time.RFC3339Nano, layoutNaive, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not an ISO datetime", s)
}

func formatDateTime(t time.Time) string { return t.Format(time.RFC3339Nano) }

// parseTime accepts HH:MM, HH:MM:SS and fractional seconds, with an
// optional offset.
func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{layoutTime, layoutTimeZone, "15:04", "15:04Z07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not an ISO time", s)
}

func formatTime(t time.Time) string {
	if t.Location() == time.UTC {
		return t.Format(layoutTime)
	}
	return t.Format(layoutTimeZone)
}

// ============================================================================
// Durations
// ============================================================================

var isoDuration = regexp.MustCompile(`^P` +
	`([-+]?\d+(?:\.\d+)?Y)?` +
	`([-+]?\d+(?:\.\d+)?M)?` +
	`([-+]?\d+(?:\.\d+)?W)?` +
	`([-+]?\d+(?:\.\d+)?D)?` +
	`(?:T` +
	`([-+]?\d+(?:\.\d+)?H)?` +
	`([-+]?\d+(?:\.\d+)?M)?` +
	`([-+]?\d+(?:\.\d+)?S)?)?$`)

// durationUnits follows the submatch order of isoDuration. Zero marks
// years and months, which have no fixed length.
var durationUnits = []time.Duration{
	0,
	0,
	7 * 24 * time.Hour,
	24 * time.Hour,
	time.Hour,
	time.Minute,
	time.Second,
}

var errCalendarDuration = errors.New("year and month durations are not supported")

// parseDuration reads an ISO 8601 duration such as "P1DT2H" or
// "PT0.5S". Components may carry their own sign.
func parseDuration(s string) (time.Duration, error) {
	norm := strings.ReplaceAll(strings.ToUpper(s), ",", ".")
	m := isoDuration.FindStringSubmatch(norm)
	if m == nil || norm == "P" || strings.HasSuffix(norm, "T") {
		return 0, fmt.Errorf("%q is not an ISO duration", s)
	}
	var total float64
	for i, part := range m[1:] {
		if part == "" {
			continue
		}
		value, err := strconv.ParseFloat(part[:len(part)-1], 64)
		if err != nil {
			return 0, fmt.Errorf("%q: %w", s, err)
		}
		if value == 0 {
			continue
		}
		if durationUnits[i] == 0 {
			return 0, fmt.Errorf("%q: %w", s, errCalendarDuration)
		}
		total += value * float64(durationUnits[i])
	}
	return time.Duration(math.Round(total)), nil
}

const day = 24 * time.Hour

// formatDuration writes P{days}DT{seconds}S with whole days floored, so
// the seconds part is never negative. Precision is microseconds.
func formatDuration(d time.Duration) string {
	micros := floorDiv(int64(d), int64(time.Microsecond))
	perDay := int64(day / time.Microsecond)
	days := floorDiv(micros, perDay)
	rest := micros - days*perDay
	secs, frac := rest/1_000_000, rest%1_000_000
	if frac != 0 {
		return fmt.Sprintf("P%dDT%d.%06dS", days, secs, frac)
	}
	return fmt.Sprintf("P%dDT%dS", days, secs)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
