// Package checks evaluates the subset of SQL CHECK expressions that
// introspection typically produces for simple column constraints.
package checks

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmrzaf/datalchemy/internal/domain"
	"github.com/mmrzaf/datalchemy/internal/timeutil"
)

type Outcome int

const (
	Passed Outcome = iota
	Failed
	Unsupported
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	}
	return "unsupported"
}

// Match is a recognised expression shape.
type Match interface {
	eval(ev *evaluator) Outcome
}

type AndMatch struct {
	Parts []string
}

type NullGuardMatch struct {
	Column string
	Rest   string
}

type NotNullMatch struct {
	Column string
}

// InMatch covers both IN (...) and = ANY (ARRAY[...]).
type InMatch struct {
	Column string
	Values []string
}

type BetweenMatch struct {
	Column string
	Min    string
	Max    string
}

// ComparisonMatch keeps the raw right-hand side so quoted text and date
// literals can be told apart from column references.
type ComparisonMatch struct {
	Column string
	Op     string
	RHS    string
}

type PositionMatch struct {
	Needle string
	Column string
	Op     string
	Value  int64
}

type parser func(expr string) (Match, bool)

// parsers are tried in order; the first hit wins.
var parsers = []parser{
	parseAnd,
	parseNullGuard,
	parseNotNull,
	parseAnyArray,
	parseInList,
	parseBetween,
	parseComparison,
	parsePosition,
}

const (
	colPat = `\(?\s*(\w+)\s*\)?(?:::\w+(?:\s+varying)?)?`
	opPat  = `(=|>=|<=|<>|!=|>|<)`
)

var (
	reNullGuard  = regexp.MustCompile(`(?is)^\s*` + colPat + `\s+is\s+null\s+or\s+(.+)$`)
	reNotNull    = regexp.MustCompile(`(?i)^\s*` + colPat + `\s+is\s+not\s+null\s*$`)
	reAnyArray   = regexp.MustCompile(`(?i)^\s*` + colPat + `\s*=\s*any\s*\(\s*\(?\s*array\s*\[([^\]]+)\]\s*\)?(?:::[\w\s\[\]]+)?\s*\)\s*$`)
	reInList     = regexp.MustCompile(`(?i)^\s*` + colPat + `\s+in\s*\(([^\)]+)\)\s*$`)
	reBetween    = regexp.MustCompile(`(?i)^\s*` + colPat + `\s+between\s+(\S+)\s+and\s+(\S+)\s*$`)
	reComparison = regexp.MustCompile(`(?i)^\s*` + colPat + `\s*` + opPat + `\s*('[^']*'(?:::[\w\s]+)?|\S+)\s*$`)
	rePosition   = regexp.MustCompile(`(?i)^\s*position\s*\(\(?\s*'([^']*)'(?:::\w+)?\s*\)?\s+in\s+\(?\s*(\w+)\s*\)?(?:::\w+)?\s*\)\s*` + opPat + `\s*\(?(\d+)\)?\s*$`)
	reCheckWord  = regexp.MustCompile(`(?i)^check\b`)
)

// Parse normalises expr and returns the first matching shape.
func Parse(expr string) (Match, bool) {
	expr = normalizeExpression(expr)
	for _, p := range parsers {
		if m, ok := p(expr); ok {
			return m, true
		}
	}
	return nil, false
}

// Evaluate checks expr against row. Row keys are lowercased column names.
// A null operand passes, matching SQL where a CHECK that evaluates to
// unknown is satisfied.
func Evaluate(expr string, row domain.Row, baseDate time.Time) Outcome {
	ev := &evaluator{row: row, baseDate: timeutil.StartOfDay(baseDate)}
	return ev.evaluate(expr)
}

type evaluator struct {
	row      domain.Row
	baseDate time.Time
}

func (ev *evaluator) evaluate(expr string) Outcome {
	m, ok := Parse(expr)
	if !ok {
		return Unsupported
	}
	return m.eval(ev)
}

func (ev *evaluator) value(column string) (domain.Value, bool) {
	v, ok := ev.row[strings.ToLower(column)]
	return v, ok
}

func normalizeExpression(expr string) string {
	expr = strings.TrimSpace(expr)
	if reCheckWord.MatchString(expr) {
		expr = strings.TrimSpace(expr[5:])
	}
	for enclosedByParens(expr) {
		expr = strings.TrimSpace(expr[1 : len(expr)-1])
	}
	return expr
}

// enclosedByParens reports whether the first '(' closes at the final byte.
func enclosedByParens(expr string) bool {
	if len(expr) < 2 || expr[0] != '(' || expr[len(expr)-1] != ')' {
		return false
	}
	depth := 0
	inQuote := false
	for i := 0; i < len(expr); i++ {
		switch c := expr[i]; {
		case c == '\'':
			inQuote = !inQuote
		case inQuote:
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 && i != len(expr)-1 {
				return false
			}
		}
	}
	return depth == 0
}

// splitConjunction splits on top-level AND, leaving the AND that belongs to
// a BETWEEN in place. Literal case is preserved.
func splitConjunction(expr string) []string {
	var parts []string
	depth := 0
	inQuote := false
	pendingBetween := false
	start := 0

	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			continue
		case inQuote:
			continue
		case c == '(':
			depth++
			continue
		case c == ')':
			depth--
			continue
		}
		if depth != 0 || !wordBoundary(expr, i) {
			continue
		}
		switch {
		case hasWordAt(expr, i, "between"):
			pendingBetween = true
		case hasWordAt(expr, i, "and"):
			if pendingBetween {
				pendingBetween = false
				continue
			}
			if part := strings.TrimSpace(expr[start:i]); part != "" {
				parts = append(parts, part)
			}
			start = i + len("and")
		}
	}
	if part := strings.TrimSpace(expr[start:]); part != "" {
		parts = append(parts, part)
	}
	return parts
}

func wordBoundary(s string, i int) bool {
	return i == 0 || !isWordByte(s[i-1])
}

func hasWordAt(s string, i int, word string) bool {
	end := i + len(word)
	if end > len(s) || !strings.EqualFold(s[i:end], word) {
		return false
	}
	return end == len(s) || !isWordByte(s[end])
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func parseAnd(expr string) (Match, bool) {
	parts := splitConjunction(expr)
	if len(parts) < 2 {
		return nil, false
	}
	return AndMatch{Parts: parts}, true
}

func parseNullGuard(expr string) (Match, bool) {
	m := reNullGuard.FindStringSubmatch(expr)
	if m == nil {
		return nil, false
	}
	return NullGuardMatch{Column: strings.ToLower(m[1]), Rest: strings.TrimSpace(m[2])}, true
}

func parseNotNull(expr string) (Match, bool) {
	m := reNotNull.FindStringSubmatch(expr)
	if m == nil {
		return nil, false
	}
	return NotNullMatch{Column: strings.ToLower(m[1])}, true
}

func parseAnyArray(expr string) (Match, bool) {
	m := reAnyArray.FindStringSubmatch(expr)
	if m == nil {
		return nil, false
	}
	return InMatch{Column: strings.ToLower(m[1]), Values: splitLiterals(m[2])}, true
}

func parseInList(expr string) (Match, bool) {
	m := reInList.FindStringSubmatch(expr)
	if m == nil {
		return nil, false
	}
	return InMatch{Column: strings.ToLower(m[1]), Values: splitLiterals(m[2])}, true
}

func parseBetween(expr string) (Match, bool) {
	m := reBetween.FindStringSubmatch(expr)
	if m == nil {
		return nil, false
	}
	return BetweenMatch{Column: strings.ToLower(m[1]), Min: normalizeLiteral(m[2]), Max: normalizeLiteral(m[3])}, true
}

func parseComparison(expr string) (Match, bool) {
	m := reComparison.FindStringSubmatch(expr)
	if m == nil {
		return nil, false
	}
	return ComparisonMatch{Column: strings.ToLower(m[1]), Op: m[2], RHS: strings.TrimSpace(m[3])}, true
}

func parsePosition(expr string) (Match, bool) {
	m := rePosition.FindStringSubmatch(expr)
	if m == nil {
		return nil, false
	}
	n, err := strconv.ParseInt(m[4], 10, 64)
	if err != nil {
		return nil, false
	}
	return PositionMatch{Needle: m[1], Column: strings.ToLower(m[2]), Op: m[3], Value: n}, true
}

func splitLiterals(list string) []string {
	raw := strings.Split(list, ",")
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		out = append(out, normalizeLiteral(v))
	}
	return out
}

// normalizeLiteral strips surrounding parentheses, a ::cast and quotes.
func normalizeLiteral(v string) string {
	v = stripCast(v)
	v = stripCast(strings.Trim(v, "()"))
	if unq, ok := unquote(v); ok {
		return unq
	}
	return v
}

func stripCast(v string) string {
	v = strings.TrimSpace(v)
	if idx := strings.LastIndex(v, "::"); idx >= 0 && !strings.Contains(v[idx:], "'") {
		v = strings.TrimSpace(v[:idx])
	}
	return v
}

func unquote(v string) (string, bool) {
	if len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'' {
		return v[1 : len(v)-1], true
	}
	return "", false
}

func (m AndMatch) eval(ev *evaluator) Outcome {
	for _, part := range m.Parts {
		if out := ev.evaluate(part); out != Passed {
			return out
		}
	}
	return Passed
}

func (m NullGuardMatch) eval(ev *evaluator) Outcome {
	if v, ok := ev.value(m.Column); ok && v.IsNull() {
		return Passed
	}
	return ev.evaluate(m.Rest)
}

func (m NotNullMatch) eval(ev *evaluator) Outcome {
	v, ok := ev.value(m.Column)
	if !ok {
		return Unsupported
	}
	if v.IsNull() {
		return Failed
	}
	return Passed
}

func (m InMatch) eval(ev *evaluator) Outcome {
	v, ok := ev.value(m.Column)
	if !ok {
		return Unsupported
	}
	if v.IsNull() {
		return Passed
	}
	var candidate string
	switch v.Kind() {
	case domain.KindText, domain.KindUUID, domain.KindInt:
		candidate = v.String()
	default:
		return Unsupported
	}
	for _, allowed := range m.Values {
		if allowed == candidate {
			return Passed
		}
	}
	return Failed
}

func (m BetweenMatch) eval(ev *evaluator) Outcome {
	v, ok := ev.value(m.Column)
	if !ok {
		return Unsupported
	}
	if v.IsNull() {
		return Passed
	}
	if num, ok := v.Float(); ok {
		lo, errLo := strconv.ParseFloat(m.Min, 64)
		hi, errHi := strconv.ParseFloat(m.Max, 64)
		if errLo == nil && errHi == nil {
			return outcome(num >= lo && num <= hi)
		}
	}
	if d, ok := v.Date(); ok {
		lo, okLo := ev.dateLiteral(m.Min)
		hi, okHi := ev.dateLiteral(m.Max)
		if okLo && okHi {
			return outcome(!d.Before(lo) && !d.After(hi))
		}
	}
	return Unsupported
}

func (m ComparisonMatch) eval(ev *evaluator) Outcome {
	left, ok := ev.value(m.Column)
	if !ok {
		return Unsupported
	}
	if left.IsNull() {
		return Passed
	}
	if right, ok := ev.value(normalizeLiteral(m.RHS)); ok && right.IsNull() {
		return Passed
	}

	if ts, ok := left.Timestamp(); ok {
		if right, ok := ev.value(normalizeLiteral(m.RHS)); ok {
			if rts, ok := right.Timestamp(); ok {
				return compareInt(ts.Unix(), rts.Unix(), m.Op)
			}
		}
	}

	if num, ok := left.Float(); ok {
		if rhs, ok := ev.numericOperand(m.RHS); ok {
			return compareFloat(num, rhs, m.Op)
		}
	}

	if d, ok := left.Date(); ok {
		if rhs, ok := ev.dateOperand(m.RHS); ok {
			return compareInt(d.Unix(), rhs.Unix(), m.Op)
		}
	}

	if text, ok := left.Text(); ok {
		if rhs, ok := unquote(stripCast(m.RHS)); ok {
			switch m.Op {
			case "=":
				return outcome(text == rhs)
			case "<>", "!=":
				return outcome(text != rhs)
			}
			return Failed
		}
	}

	return Unsupported
}

func (m PositionMatch) eval(ev *evaluator) Outcome {
	v, ok := ev.value(m.Column)
	if !ok {
		return Unsupported
	}
	if v.IsNull() {
		return Passed
	}
	text, ok := v.Text()
	if !ok {
		return Unsupported
	}
	var pos int64
	if idx := strings.Index(text, m.Needle); idx >= 0 {
		pos = int64(utf8.RuneCountInString(text[:idx])) + 1
	}
	return compareInt(pos, m.Value, m.Op)
}

func (ev *evaluator) numericOperand(raw string) (float64, bool) {
	lit := normalizeLiteral(raw)
	if f, err := strconv.ParseFloat(lit, 64); err == nil {
		return f, true
	}
	if v, ok := ev.value(lit); ok {
		return v.Float()
	}
	return 0, false
}

func (ev *evaluator) dateOperand(raw string) (time.Time, bool) {
	if d, ok := ev.dateLiteral(raw); ok {
		return d, true
	}
	if v, ok := ev.value(normalizeLiteral(raw)); ok {
		return v.Date()
	}
	return time.Time{}, false
}

func (ev *evaluator) dateLiteral(raw string) (time.Time, bool) {
	lit := normalizeLiteral(raw)
	if strings.EqualFold(lit, "current_date") {
		return ev.baseDate, true
	}
	d, err := timeutil.ParseDate(lit)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func outcome(pass bool) Outcome {
	if pass {
		return Passed
	}
	return Failed
}

func compareFloat(left, right float64, op string) Outcome {
	switch op {
	case ">":
		return outcome(left > right)
	case ">=":
		return outcome(left >= right)
	case "<":
		return outcome(left < right)
	case "<=":
		return outcome(left <= right)
	case "=":
		return outcome(math.Abs(left-right) < epsilon)
	case "<>", "!=":
		return outcome(math.Abs(left-right) >= epsilon)
	}
	return Failed
}

const epsilon = 2.220446049250313e-16

func compareInt(left, right int64, op string) Outcome {
	switch op {
	case ">":
		return outcome(left > right)
	case ">=":
		return outcome(left >= right)
	case "<":
		return outcome(left < right)
	case "<=":
		return outcome(left <= right)
	case "=":
		return outcome(left == right)
	case "<>", "!=":
		return outcome(left != right)
	}
	return Failed
}
