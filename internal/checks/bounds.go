package checks

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

// Bounds is a numeric range hint for one column. Nil means unbounded.
type Bounds struct {
	Min *float64
	Max *float64
}

// ExtractBounds derives per-column numeric ranges from CHECK expressions.
// BETWEEN gives both ends; strict comparisons are tightened by one.
// Multiple constraints merge to the tightest range.
func ExtractBounds(expressions []string) map[string]Bounds {
	bounds := make(map[string]Bounds)
	for _, expr := range expressions {
		for _, part := range conjuncts(expr) {
			applyBound(bounds, part)
		}
	}
	return bounds
}

func conjuncts(expr string) []string {
	expr = normalizeExpression(expr)
	parts := splitConjunction(expr)
	if len(parts) < 2 {
		return []string{expr}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, conjuncts(p)...)
	}
	return out
}

func applyBound(bounds map[string]Bounds, part string) {
	if m, ok := parseBetween(part); ok {
		b := m.(BetweenMatch)
		lo, errLo := strconv.ParseFloat(b.Min, 64)
		hi, errHi := strconv.ParseFloat(b.Max, 64)
		if errLo == nil && errHi == nil {
			merge(bounds, b.Column, &lo, &hi)
		}
		return
	}
	m, ok := parseComparison(part)
	if !ok {
		return
	}
	c := m.(ComparisonMatch)
	v, err := strconv.ParseFloat(normalizeLiteral(c.RHS), 64)
	if err != nil {
		return
	}
	switch c.Op {
	case ">=":
		merge(bounds, c.Column, &v, nil)
	case ">":
		v++
		merge(bounds, c.Column, &v, nil)
	case "<=":
		merge(bounds, c.Column, nil, &v)
	case "<":
		v--
		merge(bounds, c.Column, nil, &v)
	}
}

func merge(bounds map[string]Bounds, column string, lo, hi *float64) {
	b := bounds[column]
	if lo != nil && (b.Min == nil || *lo > *b.Min) {
		v := *lo
		b.Min = &v
	}
	if hi != nil && (b.Max == nil || *hi < *b.Max) {
		v := *hi
		b.Max = &v
	}
	bounds[column] = b
}

// Apply clamps numeric values into the range. Ints are rounded after clamping.
func (b Bounds) Apply(v domain.Value) domain.Value {
	switch v.Kind() {
	case domain.KindInt:
		f, _ := v.Float()
		return domain.IntValue(int64(math.Round(b.clamp(f))))
	case domain.KindFloat:
		f, _ := v.Float()
		return domain.FloatValue(b.clamp(f))
	}
	return v
}

func (b Bounds) clamp(f float64) float64 {
	if b.Min != nil && f < *b.Min {
		f = *b.Min
	}
	if b.Max != nil && f > *b.Max {
		f = *b.Max
	}
	return f
}

var (
	reColumnVsCurrentDate = regexp.MustCompile(`(?i)\(?(\w+)\)?(?:::\w+)?\s*(<=|>=|<|>|=)\s*\(?current_date`)
	reCurrentDateVsColumn = regexp.MustCompile(`(?i)current_date\)?\s*(<=|>=|<|>|=)\s*\(?(\w+)`)
	rePositionColumn      = regexp.MustCompile(`(?i)position\s*\(\(?\s*'[^']*'(?:::\w+)?\s*\)?\s+in\s+\(?\s*(\w+)\s*\)?`)
)

// CurrentDateColumns names the columns compared against current_date.
func CurrentDateColumns(expressions []string) map[string]struct{} {
	cols := make(map[string]struct{})
	for _, expr := range expressions {
		for _, m := range reColumnVsCurrentDate.FindAllStringSubmatch(expr, -1) {
			cols[strings.ToLower(m[1])] = struct{}{}
		}
		for _, m := range reCurrentDateVsColumn.FindAllStringSubmatch(expr, -1) {
			cols[strings.ToLower(m[2])] = struct{}{}
		}
	}
	return cols
}

// EmailColumns names the columns searched by position(... in col).
func EmailColumns(expressions []string) map[string]struct{} {
	cols := make(map[string]struct{})
	for _, expr := range expressions {
		for _, m := range rePositionColumn.FindAllStringSubmatch(expr, -1) {
			cols[strings.ToLower(m[1])] = struct{}{}
		}
	}
	return cols
}
