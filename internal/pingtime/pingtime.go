// Package pingtime handles the wall-clock ping timestamps recorded by the
// echosounder. Values are times of day with microsecond precision and no date
// component, written as HH:MM:SS.ffffff and sometimes carrying a leading space.
//
// Blending never wraps across midnight: two in-day times always blend to an
// in-day time, and pairs that straddle midnight (23:59:59 and 00:00:01) are
// blended as if they were recorded on the same day.
package pingtime

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	microsPerSecond = int64(1_000_000)
	microsPerMinute = 60 * microsPerSecond
	microsPerHour   = 60 * microsPerMinute
)

var layout = regexp.MustCompile(`^(\d{1,2}):(\d{1,2}):(\d{1,2})\.(\d{1,6})$`)

// TimeOfDay is a ping time expressed in microseconds since midnight.
type TimeOfDay int64

// ParseError reports a ping time that does not match HH:MM:SS.ffffff.
type ParseError struct {
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid ping time %q: %s", e.Value, e.Reason)
}

// Parse reads a ping time. Surrounding whitespace is ignored; the fractional
// second part is mandatory and may have one to six digits.
func Parse(s string) (TimeOfDay, error) {
	m := layout.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, &ParseError{Value: s, Reason: "expected HH:MM:SS.ffffff"}
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	second, _ := strconv.Atoi(m[3])
	if hour > 23 {
		return 0, &ParseError{Value: s, Reason: "hour out of range"}
	}
	if minute > 59 {
		return 0, &ParseError{Value: s, Reason: "minute out of range"}
	}
	if second > 59 {
		return 0, &ParseError{Value: s, Reason: "second out of range"}
	}

	// right-pad so "5" means 500000 microseconds
	frac := m[4] + strings.Repeat("0", 6-len(m[4]))
	micros, _ := strconv.ParseInt(frac, 10, 64)

	return TimeOfDay(int64(hour)*microsPerHour + int64(minute)*microsPerMinute + int64(second)*microsPerSecond + micros), nil
}

// Seconds returns the offset from midnight in seconds.
func (t TimeOfDay) Seconds() float64 {
	return float64(t) / float64(microsPerSecond)
}

// String formats the time as HH:MM:SS.ffffff.
func (t TimeOfDay) String() string {
	u := int64(t)
	hours := u / microsPerHour
	u -= hours * microsPerHour
	minutes := u / microsPerMinute
	u -= minutes * microsPerMinute
	seconds := u / microsPerSecond
	u -= seconds * microsPerSecond
	return fmt.Sprintf("%02d:%02d:%02d.%06d", hours, minutes, seconds, u)
}

// Blend returns the time at a + lambda*(b-a), rounded to the nearest
// microsecond (ties to even).
func Blend(a, b TimeOfDay, lambda float64) TimeOfDay {
	offset := float64(b-a) * lambda
	return a + TimeOfDay(math.RoundToEven(offset))
}

// Mid returns the exact midpoint of a and b, rounded to the nearest
// microsecond (ties to even).
func Mid(a, b TimeOfDay) TimeOfDay {
	sum := int64(a) + int64(b)
	return TimeOfDay(math.RoundToEven(float64(sum) / 2))
}

// Interpolate blends two ping time strings with factor lambda in [0,1] and
// formats the result like the inputs.
func Interpolate(a, b string, lambda float64) (string, error) {
	if lambda < 0 || lambda > 1 || math.IsNaN(lambda) {
		return "", fmt.Errorf("blend factor %v outside [0,1]", lambda)
	}
	t1, err := Parse(a)
	if err != nil {
		return "", err
	}
	t2, err := Parse(b)
	if err != nil {
		return "", err
	}
	return Blend(t1, t2, lambda).String(), nil
}

// Midpoint averages two ping time strings.
func Midpoint(a, b string) (string, error) {
	t1, err := Parse(a)
	if err != nil {
		return "", err
	}
	t2, err := Parse(b)
	if err != nil {
		return "", err
	}
	return Mid(t1, t2).String(), nil
}
