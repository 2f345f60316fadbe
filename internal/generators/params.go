package generators

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmrzaf/datalchemy/internal/domain"
	"github.com/mmrzaf/datalchemy/internal/timeutil"
)

type ParamKind string

const (
	KindBool       ParamKind = "bool"
	KindInt        ParamKind = "int"
	KindFloat      ParamKind = "float"
	KindString     ParamKind = "string"
	KindDate       ParamKind = "date"
	KindTime       ParamKind = "time"
	KindTimestamp  ParamKind = "timestamp"
	KindStringList ParamKind = "string_list"
	KindList       ParamKind = "list"
)

type ParamSpec struct {
	Key      string    `json:"key"`
	Kind     ParamKind `json:"kind"`
	Required bool      `json:"required"`
}

func Optional(key string, kind ParamKind) ParamSpec {
	return ParamSpec{Key: key, Kind: kind}
}

func Required(key string, kind ParamKind) ParamSpec {
	return ParamSpec{Key: key, Kind: kind, Required: true}
}

// Params is a validated param object. Values keep their decoded JSON or
// YAML form; the getters normalise numeric types.
type Params map[string]interface{}

// ValidateParams rejects non-objects, unknown keys, kind mismatches and
// missing required keys. Errors wrap domain.ErrInvalidPlan.
func ValidateParams(id string, raw interface{}, specs []ParamSpec) (Params, error) {
	var params Params
	switch v := raw.(type) {
	case nil:
		params = Params{}
	case Params:
		params = v
	case map[string]interface{}:
		params = Params(v)
	default:
		return nil, domain.InvalidPlanf("%s: params must be a JSON object", id)
	}

	for key, value := range params {
		spec, ok := findSpec(specs, key)
		if !ok {
			return nil, domain.InvalidPlanf("%s: unknown param '%s'", id, key)
		}
		if !validKind(spec.Kind, value) {
			return nil, domain.InvalidPlanf("%s: invalid value for param '%s'", id, key)
		}
	}
	for _, spec := range specs {
		if _, ok := params[spec.Key]; spec.Required && !ok {
			return nil, domain.InvalidPlanf("%s: missing required param '%s'", id, spec.Key)
		}
	}
	return params, nil
}

func findSpec(specs []ParamSpec, key string) (ParamSpec, bool) {
	for _, s := range specs {
		if s.Key == key {
			return s, true
		}
	}
	return ParamSpec{}, false
}

func validKind(kind ParamKind, v interface{}) bool {
	switch kind {
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindInt:
		_, ok := toInt64(v)
		return ok
	case KindFloat:
		_, ok := toFloat64(v)
		return ok
	case KindString:
		_, ok := v.(string)
		return ok
	case KindDate:
		s, ok := v.(string)
		if !ok {
			return false
		}
		_, err := parseDateParam(s, time.Time{})
		return err == nil
	case KindTime:
		s, ok := v.(string)
		if !ok {
			return false
		}
		_, err := timeutil.ParseClock(s)
		return err == nil
	case KindTimestamp:
		s, ok := v.(string)
		if !ok {
			return false
		}
		_, err := parseTimestampParam(s, time.Time{})
		return err == nil
	case KindStringList:
		_, ok := toStringList(v)
		return ok
	case KindList:
		_, ok := v.([]interface{})
		return ok
	}
	return false
}

func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

func (p Params) Int(key string) (int64, bool) {
	return toInt64(p[key])
}

func (p Params) IntOr(key string, def int64) int64 {
	if v, ok := p.Int(key); ok {
		return v
	}
	return def
}

func (p Params) Float(key string) (float64, bool) {
	return toFloat64(p[key])
}

func (p Params) FloatOr(key string, def float64) float64 {
	if v, ok := p.Float(key); ok {
		return v
	}
	return def
}

func (p Params) Bool(key string) (bool, bool) {
	v, ok := p[key].(bool)
	return v, ok
}

func (p Params) String(key string) (string, bool) {
	v, ok := p[key].(string)
	return v, ok
}

func (p Params) StringOr(key, def string) string {
	if v, ok := p.String(key); ok {
		return v
	}
	return def
}

func (p Params) StringList(key string) ([]string, bool) {
	return toStringList(p[key])
}

func (p Params) List(key string) ([]interface{}, bool) {
	v, ok := p[key].([]interface{})
	return v, ok
}

// Date reads a date param relative to base; see parseDateParam.
func (p Params) Date(key string, base time.Time) (time.Time, bool) {
	s, ok := p.String(key)
	if !ok {
		return time.Time{}, false
	}
	d, err := parseDateParam(s, base)
	return d, err == nil
}

func (p Params) Clock(key string) (time.Time, bool) {
	s, ok := p.String(key)
	if !ok {
		return time.Time{}, false
	}
	c, err := timeutil.ParseClock(s)
	return c, err == nil
}

func (p Params) Timestamp(key string, base time.Time) (time.Time, bool) {
	s, ok := p.String(key)
	if !ok {
		return time.Time{}, false
	}
	t, err := parseTimestampParam(s, base)
	return t, err == nil
}

// parseDateParam accepts 2006-01-02 or an offset like "-30d" from base.
func parseDateParam(s string, base time.Time) (time.Time, error) {
	if d, err := timeutil.ParseDate(s); err == nil {
		return d, nil
	}
	t, err := relativeOnly(s, base)
	if err != nil {
		return time.Time{}, err
	}
	return timeutil.StartOfDay(t), nil
}

func parseTimestampParam(s string, base time.Time) (time.Time, error) {
	if t, err := timeutil.ParseTimestamp(s); err == nil {
		return t, nil
	}
	return relativeOnly(s, base)
}

func relativeOnly(s string, base time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "+") && !strings.HasPrefix(s, "-") {
		return time.Time{}, domain.InvalidPlanf("invalid date %q", s)
	}
	return timeutil.ParseRelativeTime(s, base)
}

func toInt64(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int64:
		return val, true
	case int32:
		return int64(val), true
	case uint64:
		if val > math.MaxInt64 {
			return 0, false
		}
		return int64(val), true
	case float64:
		if val != math.Trunc(val) || math.IsInf(val, 0) {
			return 0, false
		}
		return int64(val), true
	}
	return 0, false
}

func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case uint64:
		return float64(val), true
	}
	return 0, false
}

func toStringList(v interface{}) ([]string, bool) {
	switch val := v.(type) {
	case []string:
		return val, true
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// TextLimits bounds generated text. Nil pointers mean no limit.
type TextLimits struct {
	MinLen     *int
	MaxLen     *int
	AllowEmpty bool
	SchemaMax  *int
	Pattern    *regexp.Regexp
	Charset    string
}

var textLimitParams = []ParamSpec{
	Optional("min_len", KindInt),
	Optional("max_len", KindInt),
	Optional("pattern", KindString),
	Optional("charset", KindString),
	Optional("allow_empty", KindBool),
}

func NewTextLimits(id string, params Params, column *domain.Column) (*TextLimits, error) {
	limits := &TextLimits{}
	if v, ok := params.Int("min_len"); ok {
		if v < 0 {
			return nil, domain.InvalidPlanf("%s: min_len must be >= 0", id)
		}
		n := int(v)
		limits.MinLen = &n
	}
	if v, ok := params.Int("max_len"); ok {
		if v < 0 {
			return nil, domain.InvalidPlanf("%s: max_len must be >= 0", id)
		}
		n := int(v)
		limits.MaxLen = &n
	}
	limits.AllowEmpty, _ = params.Bool("allow_empty")
	if column != nil {
		if n, ok := column.ColumnType.MaxLength(); ok {
			limits.SchemaMax = &n
		}
	}
	if limits.MinLen != nil && limits.MaxLen != nil && *limits.MinLen > *limits.MaxLen {
		return nil, domain.InvalidPlanf("%s: min_len must be <= max_len", id)
	}
	if limits.MaxLen != nil && limits.SchemaMax != nil && *limits.MaxLen > *limits.SchemaMax {
		return nil, domain.InvalidPlanf("%s: max_len exceeds schema limit", id)
	}
	if pattern, ok := params.String("pattern"); ok {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, domain.InvalidPlanf("%s: invalid pattern: %v", id, err)
		}
		limits.Pattern = re
	}
	if charset, ok := params.String("charset"); ok {
		if charset == "" {
			return nil, domain.InvalidPlanf("%s: charset must not be empty", id)
		}
		limits.Charset = charset
	}
	return limits, nil
}

// Check validates value against the limits.
func (l *TextLimits) Check(id, value string) error {
	n := utf8.RuneCountInString(value)
	if !l.AllowEmpty && value == "" {
		return domain.InvalidPlanf("%s: empty text not allowed", id)
	}
	if l.MinLen != nil && n < *l.MinLen {
		return domain.InvalidPlanf("%s: value shorter than min_len", id)
	}
	if l.MaxLen != nil && n > *l.MaxLen {
		return domain.InvalidPlanf("%s: value exceeds max_len", id)
	}
	if l.SchemaMax != nil && n > *l.SchemaMax {
		return domain.InvalidPlanf("%s: value exceeds schema limit", id)
	}
	if l.Pattern != nil && !l.Pattern.MatchString(value) {
		return domain.InvalidPlanf("%s: value does not match pattern", id)
	}
	if l.Charset != "" {
		for _, r := range value {
			if !strings.ContainsRune(l.Charset, r) {
				return domain.InvalidPlanf("%s: value contains characters outside charset", id)
			}
		}
	}
	return nil
}
