package generators

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

type NullRateTransform struct{}

func (t *NullRateTransform) ID() string { return "transform.null_rate" }

func (t *NullRateTransform) Params() []ParamSpec {
	return []ParamSpec{Required("rate", KindFloat)}
}

func (t *NullRateTransform) Validate(params Params, column *domain.Column) error {
	rate, _ := params.Float("rate")
	if rate < 0 || rate > 1 {
		return domain.InvalidPlanf("%s rate must be between 0 and 1", t.ID())
	}
	if rate > 0 && column != nil && !column.IsNullable {
		return domain.InvalidPlanf("%s cannot null NOT NULL column %s", t.ID(), column.Name)
	}
	return nil
}

func (t *NullRateTransform) Apply(input domain.Value, ctx *TransformContext, params Params, rng *rand.Rand) (domain.Value, error) {
	if input.IsNull() {
		return input, nil
	}
	if err := t.Validate(params, ctx.Column); err != nil {
		return input, err
	}
	rate, _ := params.Float("rate")
	if rng.Float64() < rate {
		return domain.Null(), nil
	}
	return input, nil
}

type TruncateTransform struct{}

func (t *TruncateTransform) ID() string { return "transform.truncate" }

func (t *TruncateTransform) Params() []ParamSpec {
	return []ParamSpec{Required("max_len", KindInt)}
}

func (t *TruncateTransform) Validate(params Params, _ *domain.Column) error {
	if n, _ := params.Int("max_len"); n < 0 {
		return domain.InvalidPlanf("%s max_len must be >= 0", t.ID())
	}
	return nil
}

func (t *TruncateTransform) Apply(input domain.Value, _ *TransformContext, params Params, _ *rand.Rand) (domain.Value, error) {
	if input.IsNull() {
		return input, nil
	}
	s, ok := input.Text()
	if !ok {
		return input, domain.InvalidPlanf("%s applies to text values, got %s", t.ID(), input.Kind())
	}
	n, _ := params.Int("max_len")
	out := truncate(s, int(n))
	if input.Kind() == domain.KindUUID {
		return domain.UUIDValue(out), nil
	}
	return domain.TextValue(out), nil
}

// FormatTransform renders temporal values with a strftime-style layout, or
// substitutes the value into a template.
type FormatTransform struct{}

func (t *FormatTransform) ID() string { return "transform.format" }

func (t *FormatTransform) Params() []ParamSpec {
	return []ParamSpec{Optional("format", KindString), Optional("template", KindString)}
}

func (t *FormatTransform) Validate(params Params, _ *domain.Column) error {
	if !params.Has("format") && !params.Has("template") {
		return domain.InvalidPlanf("%s requires format or template", t.ID())
	}
	return nil
}

func (t *FormatTransform) Apply(input domain.Value, _ *TransformContext, params Params, _ *rand.Rand) (domain.Value, error) {
	if input.IsNull() {
		return input, nil
	}
	if err := t.Validate(params, nil); err != nil {
		return input, err
	}
	out := input.String()
	if format, ok := params.String("format"); ok {
		tm, okTime := input.Timestamp()
		switch input.Kind() {
		case domain.KindDate:
			tm, okTime = input.Date()
		case domain.KindTime:
			tm, okTime = input.Clock()
		}
		if !okTime {
			return input, domain.InvalidPlanf("%s format applies to date, time or timestamp values, got %s", t.ID(), input.Kind())
		}
		out = tm.Format(goLayout(format))
	}
	if template, ok := params.String("template"); ok {
		out = strings.ReplaceAll(template, "{value}", out)
	}
	return domain.TextValue(out), nil
}

var strftimeTokens = strings.NewReplacer(
	"%Y", "2006", "%m", "01", "%d", "02",
	"%H", "15", "%M", "04", "%S", "05",
	"%y", "06", "%b", "Jan", "%B", "January",
	"%a", "Mon", "%A", "Monday", "%%", "%",
)

// goLayout converts strftime tokens into a Go time layout. Layouts without
// tokens are used as Go layouts directly.
func goLayout(format string) string {
	if !strings.Contains(format, "%") {
		return format
	}
	return strftimeTokens.Replace(format)
}

type PrefixSuffixTransform struct{}

func (t *PrefixSuffixTransform) ID() string { return "transform.prefix_suffix" }

func (t *PrefixSuffixTransform) Params() []ParamSpec {
	return []ParamSpec{Optional("prefix", KindString), Optional("suffix", KindString)}
}

func (t *PrefixSuffixTransform) Apply(input domain.Value, _ *TransformContext, params Params, _ *rand.Rand) (domain.Value, error) {
	if input.IsNull() {
		return input, nil
	}
	s, ok := input.Text()
	if !ok {
		return input, domain.InvalidPlanf("%s applies to text values, got %s", t.ID(), input.Kind())
	}
	return domain.TextValue(params.StringOr("prefix", "") + s + params.StringOr("suffix", "")), nil
}

type CasingTransform struct{}

func (t *CasingTransform) ID() string { return "transform.casing" }

func (t *CasingTransform) Params() []ParamSpec {
	return []ParamSpec{Required("mode", KindString)}
}

func (t *CasingTransform) Validate(params Params, _ *domain.Column) error {
	switch mode, _ := params.String("mode"); mode {
	case "upper", "lower", "title":
		return nil
	default:
		return domain.InvalidPlanf("%s unknown mode %q", t.ID(), mode)
	}
}

func (t *CasingTransform) Apply(input domain.Value, _ *TransformContext, params Params, _ *rand.Rand) (domain.Value, error) {
	if input.IsNull() {
		return input, nil
	}
	if err := t.Validate(params, nil); err != nil {
		return input, err
	}
	s, ok := input.Text()
	if !ok {
		return input, domain.InvalidPlanf("%s applies to text values, got %s", t.ID(), input.Kind())
	}
	switch mode, _ := params.String("mode"); mode {
	case "upper":
		s = strings.ToUpper(s)
	case "lower":
		s = strings.ToLower(s)
	default:
		s = titleCase(s)
	}
	return domain.TextValue(s), nil
}

func titleCase(s string) string {
	var sb strings.Builder
	start := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			start = true
			sb.WriteRune(r)
			continue
		}
		if start {
			sb.WriteRune(unicode.ToUpper(r))
		} else {
			sb.WriteRune(unicode.ToLower(r))
		}
		start = false
	}
	return sb.String()
}

type weightedChoice struct {
	value  string
	weight float64
}

type WeightedChoiceTransform struct{}

func (t *WeightedChoiceTransform) ID() string { return "transform.weighted_choice" }

func (t *WeightedChoiceTransform) Params() []ParamSpec {
	return []ParamSpec{Required("choices", KindList)}
}

func (t *WeightedChoiceTransform) Validate(params Params, _ *domain.Column) error {
	_, err := t.choices(params)
	return err
}

func (t *WeightedChoiceTransform) choices(params Params) ([]weightedChoice, error) {
	raw, _ := params.List("choices")
	if len(raw) == 0 {
		return nil, domain.InvalidPlanf("%s choices must not be empty", t.ID())
	}
	out := make([]weightedChoice, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, domain.InvalidPlanf("%s choices[%d] must be an object", t.ID(), i)
		}
		v, ok := m["value"]
		if !ok || v == nil {
			return nil, domain.InvalidPlanf("%s choices[%d] requires value", t.ID(), i)
		}
		w, ok := toFloat64(m["weight"])
		if !ok || w <= 0 {
			return nil, domain.InvalidPlanf("%s choices[%d] weight must be > 0", t.ID(), i)
		}
		out = append(out, weightedChoice{value: fmt.Sprint(v), weight: w})
	}
	return out, nil
}

func (t *WeightedChoiceTransform) Apply(_ domain.Value, ctx *TransformContext, params Params, rng *rand.Rand) (domain.Value, error) {
	choices, err := t.choices(params)
	if err != nil {
		return domain.Null(), err
	}
	weights := make([]float64, len(choices))
	for i, c := range choices {
		weights[i] = c.weight
	}
	idx, _ := weightedIndex(rng, weights)
	return LiteralForColumn(ctx.Column, choices[idx].value)
}

type MaskTransform struct{}

func (t *MaskTransform) ID() string { return "transform.mask" }

func (t *MaskTransform) Params() []ParamSpec {
	return []ParamSpec{Required("mode", KindString), Optional("mask_char", KindString)}
}

func (t *MaskTransform) Validate(params Params, _ *domain.Column) error {
	switch mode, _ := params.String("mode"); mode {
	case "hash", "redact", "format_preserving":
	default:
		return domain.InvalidPlanf("%s unknown mode %q", t.ID(), mode)
	}
	if c, ok := params.String("mask_char"); ok && len([]rune(c)) != 1 {
		return domain.InvalidPlanf("%s mask_char must be a single character", t.ID())
	}
	return nil
}

func (t *MaskTransform) Apply(input domain.Value, _ *TransformContext, params Params, _ *rand.Rand) (domain.Value, error) {
	if input.IsNull() {
		return input, nil
	}
	if err := t.Validate(params, nil); err != nil {
		return input, err
	}
	s := input.String()
	switch mode, _ := params.String("mode"); mode {
	case "hash":
		sum := sha256.Sum256([]byte(s))
		return domain.TextValue(hex.EncodeToString(sum[:])), nil
	case "redact":
		return domain.TextValue("***"), nil
	}
	mask := []rune(params.StringOr("mask_char", "*"))[0]
	return domain.TextValue(maskPreserving(s, mask)), nil
}

// maskPreserving hides s while keeping its recognisable shape: email domains,
// the check digits of CPF-like and CNPJ-like numbers, or the edge characters.
func maskPreserving(s string, mask rune) string {
	m := string(mask)
	if at := strings.LastIndex(s, "@"); at > 0 {
		user := []rune(s[:at])
		if len(user) <= 2 {
			return strings.Repeat(m, len(user)) + s[at:]
		}
		return string(user[0]) + strings.Repeat(m, len(user)-2) + string(user[len(user)-1]) + s[at:]
	}
	digits := onlyDigits(s)
	switch len(digits) {
	case 11:
		return fmt.Sprintf("%[1]s%[1]s%[1]s.%[1]s%[1]s%[1]s.%[1]s%[1]s%[1]s-%[2]s", m, digits[9:])
	case 14:
		return fmt.Sprintf("%[1]s%[1]s.%[1]s%[1]s%[1]s.%[1]s%[1]s%[1]s/%[1]s%[1]s%[1]s%[1]s-%[2]s", m, digits[12:])
	}
	r := []rune(s)
	if len(r) <= 2 {
		return strings.Repeat(m, len(r))
	}
	return string(r[0]) + strings.Repeat(m, len(r)-2) + string(r[len(r)-1])
}

func onlyDigits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
