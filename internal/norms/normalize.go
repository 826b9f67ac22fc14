package norms

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Accepted field aliases for a table row. The first present alias wins.
var (
	compositeAliases  = []string{"comp", "Composite", "composite", "QIT", "qit"}
	percentileAliases = []string{"pct", "percentile", "rang"}
	ic90Aliases       = []string{"IC90", "ic90"}
	ic95Aliases       = []string{"IC95", "ic95"}
)

// rangeSep splits "113-129", "113–129" and "113—129".
var rangeSep = regexp.MustCompile(`[-–—]`)

var errNoComposite = errors.New("row has no composite")

func firstOf(v gjson.Result, names ...string) gjson.Result {
	for _, n := range names {
		if r := v.Get(n); r.Exists() && r.Type != gjson.Null {
			return r
		}
	}
	return gjson.Result{}
}

// normalizeRow turns one table value into a Row. A value is either a bare
// composite (number or numeric string) or an object using any of the
// accepted aliases.
func normalizeRow(v gjson.Result) (Row, error) {
	switch v.Type {
	case gjson.Number, gjson.String:
		c, err := parseInt(v)
		if err != nil {
			return Row{}, err
		}
		return Row{Composite: c}, nil
	case gjson.JSON:
		if !v.IsObject() {
			return Row{}, fmt.Errorf("unexpected array value %s", v.Raw)
		}
	default:
		return Row{}, fmt.Errorf("unexpected value %q", v.Raw)
	}

	comp := firstOf(v, compositeAliases...)
	if !comp.Exists() {
		return Row{}, errNoComposite
	}
	c, err := parseInt(comp)
	if err != nil {
		return Row{}, fmt.Errorf("composite: %w", err)
	}
	row := Row{Composite: c}

	if p := firstOf(v, percentileAliases...); p.Exists() {
		s := strings.TrimSpace(p.String())
		if s != "" {
			row.Percentile = &s
		}
	}
	if iv, ok := parseInterval(firstOf(v, ic90Aliases...)); ok {
		row.Interval = &iv
	}
	if iv, ok := parseInterval(firstOf(v, ic95Aliases...)); ok {
		row.Interval95 = &iv
	}
	return row, nil
}

// parseInterval accepts "lo–hi" strings with any of the three dashes, or
// {lo,hi} objects. Intervals from tables are always marked SourceTable.
func parseInterval(v gjson.Result) (Interval, bool) {
	switch v.Type {
	case gjson.String:
		parts := rangeSep.Split(v.String(), -1)
		if len(parts) != 2 {
			return Interval{}, false
		}
		lo, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		hi, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err1 != nil || err2 != nil {
			return Interval{}, false
		}
		return Interval{Lo: lo, Hi: hi, Source: SourceTable}, true
	case gjson.JSON:
		lo, hi := v.Get("lo"), v.Get("hi")
		if !lo.Exists() || !hi.Exists() {
			return Interval{}, false
		}
		l, err1 := parseFloat(lo)
		h, err2 := parseFloat(hi)
		if err1 != nil || err2 != nil {
			return Interval{}, false
		}
		return Interval{Lo: l, Hi: h, Source: SourceTable}, true
	}
	return Interval{}, false
}

func parseInt(v gjson.Result) (int, error) {
	switch v.Type {
	case gjson.Number:
		if v.Num != math.Trunc(v.Num) {
			return 0, fmt.Errorf("not an integer: %s", v.Raw)
		}
		return int(v.Num), nil
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(v.Str))
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", v.Str)
		}
		return n, nil
	}
	return 0, fmt.Errorf("not an integer: %s", v.Raw)
}

func parseFloat(v gjson.Result) (float64, error) {
	switch v.Type {
	case gjson.Number:
		return v.Num, nil
	case gjson.String:
		return strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
	}
	return 0, fmt.Errorf("not a number: %s", v.Raw)
}

// parseMonths reads a band bound. Only an absent (or null) bound defaults
// to 0; anything present must be a non-negative integer.
func parseMonths(v gjson.Result) (int, error) {
	if !v.Exists() || v.Type == gjson.Null {
		return 0, nil
	}
	n, err := parseInt(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative bound %d", n)
	}
	return n, nil
}
