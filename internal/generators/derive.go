package generators

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

// InputColumns lists the same-row columns a derive generator reads.
func InputColumns(params Params) []string {
	cols, _ := params.StringList("input_columns")
	return cols
}

func requireInputs(id string, params Params, min int) error {
	if n := len(InputColumns(params)); n < min {
		return domain.InvalidPlanf("%s requires at least %d input_columns, got %d", id, min, n)
	}
	return nil
}

type EmailFromNameGenerator struct{}

func (g *EmailFromNameGenerator) ID() string { return "derive.email_from_name" }

func (g *EmailFromNameGenerator) Params() []ParamSpec {
	return []ParamSpec{Required("input_columns", KindStringList), Optional("domain", KindString)}
}

func (g *EmailFromNameGenerator) PIITags() []string { return []string{TagEmail} }

func (g *EmailFromNameGenerator) Validate(params Params, _ *domain.Column) error {
	return requireInputs(g.ID(), params, 1)
}

func (g *EmailFromNameGenerator) Generate(ctx *GeneratorContext, params Params, _ *rand.Rand) (domain.Value, error) {
	parts := make([]string, 0, 2)
	for _, col := range InputColumns(params) {
		v, ok := ctx.Lookup(col)
		if !ok || v.IsNull() {
			continue
		}
		if s := slug(v.String()); s != "" {
			parts = append(parts, s)
		}
	}
	local := strings.Join(parts, ".")
	if local == "" {
		local = fmt.Sprintf("user%d", ctx.RowIndex+1)
	}
	return domain.TextValue(truncateToColumn(ctx, local+"@"+params.StringOr("domain", "example.com"))), nil
}

// AfterGenerator offsets its input forward in time, so the target never
// precedes it.
type AfterGenerator struct {
	id string
}

func (g *AfterGenerator) ID() string { return g.id }

func (g *AfterGenerator) Params() []ParamSpec {
	return []ParamSpec{
		Required("input_columns", KindStringList),
		Optional("max_seconds", KindInt),
		Optional("max_days", KindInt),
	}
}

func (g *AfterGenerator) Validate(params Params, _ *domain.Column) error {
	if err := requireInputs(g.id, params, 1); err != nil {
		return err
	}
	if params.IntOr("max_seconds", 0) < 0 || params.IntOr("max_days", 0) < 0 {
		return domain.InvalidPlanf("%s offsets must be >= 0", g.id)
	}
	return nil
}

func (g *AfterGenerator) Generate(ctx *GeneratorContext, params Params, rng *rand.Rand) (domain.Value, error) {
	inputs := InputColumns(params)
	if len(inputs) == 0 {
		return domain.Null(), domain.InvalidPlanf("%s requires input_columns", g.id)
	}
	v, _ := ctx.Lookup(inputs[0])
	switch v.Kind() {
	case domain.KindNull:
		return domain.Null(), nil
	case domain.KindTimestamp:
		t, _ := v.Timestamp()
		offset := intBetween(rng, 0, params.IntOr("max_seconds", 86400))
		return domain.TimestampValue(t.Add(time.Duration(offset) * time.Second)), nil
	case domain.KindDate:
		d, _ := v.Date()
		return domain.DateValue(d.AddDate(0, 0, int(intBetween(rng, 0, params.IntOr("max_days", 30))))), nil
	case domain.KindTime:
		secs := v.SecondsOfDay() + intBetween(rng, 0, params.IntOr("max_seconds", 3600))
		if secs > 86399 {
			secs = 86399
		}
		return domain.TimeOfDay(secs), nil
	}
	return domain.Null(), domain.InvalidPlanf("%s: input %s is %s, want date, time or timestamp", g.id, inputs[0], v.Kind())
}

// MoneyTotalGenerator computes price * qty - discount from its inputs.
type MoneyTotalGenerator struct{}

func (g *MoneyTotalGenerator) ID() string { return "derive.money_total" }

func (g *MoneyTotalGenerator) Params() []ParamSpec {
	return []ParamSpec{Required("input_columns", KindStringList), Optional("scale", KindInt)}
}

func (g *MoneyTotalGenerator) Validate(params Params, _ *domain.Column) error {
	return requireInputs(g.ID(), params, 2)
}

func (g *MoneyTotalGenerator) Generate(ctx *GeneratorContext, params Params, _ *rand.Rand) (domain.Value, error) {
	inputs := InputColumns(params)
	if len(inputs) < 2 {
		return domain.Null(), domain.InvalidPlanf("%s requires price and qty input_columns", g.ID())
	}
	nums := make([]float64, len(inputs))
	for i, col := range inputs {
		v, _ := ctx.Lookup(col)
		if v.IsNull() {
			return domain.Null(), nil
		}
		f, ok := v.Float()
		if !ok {
			return domain.Null(), domain.InvalidPlanf("%s: input %s is %s, want a number", g.ID(), col, v.Kind())
		}
		nums[i] = f
	}
	total := nums[0] * nums[1]
	if len(nums) > 2 {
		total -= nums[2]
	}
	if ctx.Column != nil && ctx.Column.ColumnType.Class() == domain.TypeInteger {
		return domain.IntValue(int64(math.Round(total))), nil
	}
	return domain.FloatValue(roundTo(total, decimalScale(ctx, params))), nil
}
