// Package duration parses the compact duration grammar used for job
// schedules and jitter windows: an optional sequence of
// weeks/days/hours/minutes/seconds/milliseconds components, e.g. "1d",
// "2h30m", "500ms". It is deliberately not time.ParseDuration: that
// parser has no week/day units and no bare "0" special case, and its
// grammar otherwise accepts fractional and negative components this
// format must reject.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"oss.nandlabs.io/regular/errutils"
)

// durationMillis lists the millisecond weight of the grammar's six
// components in their fixed, positional order:
// "[W w][D d][H h][M m][S s][MS ms]". Each position is independently
// optional, but a component out of this order (e.g. "1m1w") or
// repeated within the same position is not a valid duration.
var durationMillis = []int64{
	7 * 24 * 60 * 60 * 1000, // w
	24 * 60 * 60 * 1000,     // d
	60 * 60 * 1000,          // h
	60 * 1000,               // m
	1000,                    // s
	1,                       // ms
}

// unitMillis indexes the same weights by unit name, used by String.
var unitMillis = map[string]int64{
	"w":  7 * 24 * 60 * 60 * 1000,
	"d":  24 * 60 * 60 * 1000,
	"h":  60 * 60 * 1000,
	"m":  60 * 1000,
	"s":  1000,
	"ms": 1,
}

// durationRE matches the whole grammar as one fixed-order sequence of
// optional "<digits><unit>" components, each permitting surrounding
// whitespace, mirroring the original implementation's DURATION_RE
// (a positional sequence of six independently-optional groups in
// w→d→h→m→s→ms order). One capture group per component; an empty
// capture means that component was absent.
var durationRE = regexp.MustCompile(
	`(?i)^` +
		`(?:\s*(\d+)\s*w\s*)?` +
		`(?:\s*(\d+)\s*d\s*)?` +
		`(?:\s*(\d+)\s*h\s*)?` +
		`(?:\s*(\d+)\s*m\s*)?` +
		`(?:\s*(\d+)\s*s\s*)?` +
		`(?:\s*(\d+)\s*ms\s*)?` +
		`$`)

var errTemplate = errutils.NewCustomError("invalid duration: %q")

// Parse parses s per the grammar
// "[W w][D d][H h][M m][S s][MS ms]" (whitespace permitted between
// components). The literal "0" alone denotes the zero duration. An
// input not matching the grammar - including components given out of
// order or repeated - returns an error naming the offending string.
func Parse(s string) (time.Duration, error) {
	if s == "0" {
		return 0, nil
	}
	if s == "" {
		return 0, errTemplate.Err(s)
	}

	m := durationRE.FindStringSubmatch(s)
	if m == nil {
		return 0, errTemplate.Err(s)
	}

	var totalMs int64
	var anyComponent bool
	for i, millis := range durationMillis {
		group := m[i+1]
		if group == "" {
			continue
		}
		anyComponent = true
		n, err := strconv.ParseInt(group, 10, 64)
		if err != nil {
			return 0, errTemplate.Err(s)
		}
		totalMs += n * millis
	}
	if !anyComponent {
		return 0, errTemplate.Err(s)
	}

	return time.Duration(totalMs) * time.Millisecond, nil
}

// String renders d back into the grammar Parse accepts, using the
// coarsest-first set of nonzero components. It is the inverse of Parse
// for any value Parse can produce.
func String(d time.Duration) string {
	if d == 0 {
		return "0"
	}
	ms := d.Milliseconds()
	var out string
	for _, u := range []string{"w", "d", "h", "m", "s"} {
		unitMs := unitMillis[u]
		if ms >= unitMs {
			out += fmt.Sprintf("%d%s", ms/unitMs, u)
			ms %= unitMs
		}
	}
	if ms > 0 {
		out += fmt.Sprintf("%dms", ms)
	}
	return out
}
