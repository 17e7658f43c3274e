// Package dates resolves the human readable date expressions accepted by the
// trim_start/trim_end parameters into the YYYY-MM-DD form Quandl expects.
package dates

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Layout is the date format Quandl expects.
const Layout = "2006-01-02"

// ErrInvalidExpression is returned when an expression cannot be resolved.
var ErrInvalidExpression = errors.New("invalid date expression")

// relativeTerm matches offsets such as "-30 days", "+1 week", "2 months ago"
// and "last year". Terms may be glued to a base keyword ("today-30 days").
var relativeTerm = regexp.MustCompile(`(?i)([+-]?\s*\d+|last|next|this)\s*(seconds?|secs?|minutes?|mins?|hours?|days?|weeks?|fortnights?|months?|years?)\b(\s+ago\b)?`)

// maxYears bounds calendar offsets; results must stay within years 0..9999
// to render as YYYY-MM-DD.
const maxYears = 10000

// Normalizer resolves date expressions against a clock.
type Normalizer struct {
	// Now returns the reference time. Defaults to time.Now.
	Now func() time.Time
	// Location used for keywords and absolute dates. Defaults to the
	// location of the reference time.
	Location *time.Location
}

// Normalize resolves expr and renders it as YYYY-MM-DD.
func (n Normalizer) Normalize(expr string) (string, error) {
	t, err := n.Resolve(expr)
	if err != nil {
		return "", err
	}
	return t.Format(Layout), nil
}

// Resolve turns expr into an absolute time.
func (n Normalizer) Resolve(expr string) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(expr))
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty expression", ErrInvalidExpression)
	}

	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	ref := now()
	loc := n.Location
	if loc == nil {
		loc = ref.Location()
	}

	// Split the expression into the base (keyword or absolute date) and the
	// relative terms applied on top of it, left to right.
	matches := relativeTerm.FindAllStringSubmatchIndex(s, -1)
	var base strings.Builder
	last := 0
	for _, m := range matches {
		base.WriteString(s[last:m[0]])
		base.WriteByte(' ')
		last = m[1]
	}
	base.WriteString(s[last:])

	t, err := resolveBase(strings.Join(strings.Fields(base.String()), " "), ref.In(loc), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidExpression, expr)
	}

	for _, m := range matches {
		t, err = applyTerm(t, s[m[2]:m[3]], s[m[4]:m[5]], m[6] >= 0)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidExpression, expr, err)
		}
	}
	return t, nil
}

func resolveBase(base string, now time.Time, loc *time.Location) (time.Time, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	switch base {
	case "", "now":
		return now, nil
	case "today", "midnight":
		return midnight, nil
	case "noon":
		return midnight.Add(12 * time.Hour), nil
	case "yesterday":
		return midnight.AddDate(0, 0, -1), nil
	case "tomorrow":
		return midnight.AddDate(0, 0, 1), nil
	}
	return dateparse.ParseIn(base, loc)
}

func applyTerm(t time.Time, qty, unit string, ago bool) (time.Time, error) {
	var n int
	switch qty {
	case "last":
		n = -1
	case "next":
		n = 1
	case "this":
		n = 0
	default:
		v, err := strconv.Atoi(strings.ReplaceAll(qty, " ", ""))
		if err != nil {
			return t, err
		}
		n = v
	}
	if ago {
		n = -n
	}

	var out time.Time
	var err error
	switch {
	case strings.HasPrefix(unit, "sec"):
		out, err = addDuration(t, n, time.Second)
	case strings.HasPrefix(unit, "min"):
		out, err = addDuration(t, n, time.Minute)
	case strings.HasPrefix(unit, "hour"):
		out, err = addDuration(t, n, time.Hour)
	case strings.HasPrefix(unit, "day"):
		out, err = addDays(t, n, 1)
	case strings.HasPrefix(unit, "week"):
		out, err = addDays(t, n, 7)
	case strings.HasPrefix(unit, "fortnight"):
		out, err = addDays(t, n, 14)
	case strings.HasPrefix(unit, "month"):
		if n > 12*maxYears || n < -12*maxYears {
			return t, fmt.Errorf("offset %d %s out of range", n, unit)
		}
		out = t.AddDate(0, n, 0)
	case strings.HasPrefix(unit, "year"):
		if n > maxYears || n < -maxYears {
			return t, fmt.Errorf("offset %d %s out of range", n, unit)
		}
		out = t.AddDate(n, 0, 0)
	default:
		return t, fmt.Errorf("unknown unit %q", unit)
	}
	if err != nil {
		return t, err
	}
	if y := out.Year(); y < 0 || y > 9999 {
		return t, fmt.Errorf("year %d out of range", y)
	}
	return out, nil
}

func addDuration(t time.Time, n int, unit time.Duration) (time.Time, error) {
	if int64(n) > math.MaxInt64/int64(unit) || int64(n) < math.MinInt64/int64(unit) {
		return t, fmt.Errorf("offset of %d x %s out of range", n, unit)
	}
	return t.Add(time.Duration(n) * unit), nil
}

func addDays(t time.Time, n, step int) (time.Time, error) {
	limit := 366 * maxYears / step
	if n > limit || n < -limit {
		return t, fmt.Errorf("offset of %d x %d days out of range", n, step)
	}
	return t.AddDate(0, 0, n*step), nil
}
