package generators

import (
	"math/rand"
	"time"

	"github.com/mmrzaf/datalchemy/internal/domain"
	"github.com/mmrzaf/datalchemy/internal/timeutil"
)

const day = 24 * time.Hour

type DateRangeGenerator struct {
	id string
}

func (g *DateRangeGenerator) ID() string { return g.id }

func (g *DateRangeGenerator) Params() []ParamSpec {
	return []ParamSpec{Optional("min", KindDate), Optional("max", KindDate)}
}

func (g *DateRangeGenerator) Validate(params Params, _ *domain.Column) error {
	_, _, err := g.bounds(params, domain.DefaultBaseDate)
	return err
}

func (g *DateRangeGenerator) bounds(params Params, base time.Time) (time.Time, time.Time, error) {
	base = timeutil.StartOfDay(base)
	min, ok := params.Date("min", base)
	if !ok {
		min = base
	}
	max, ok := params.Date("max", base)
	if !ok {
		max = base.Add(365 * day)
	}
	if min.After(max) {
		return min, max, domain.InvalidPlanf("%s min must be <= max", g.id)
	}
	return min, max, nil
}

func (g *DateRangeGenerator) Generate(ctx *GeneratorContext, params Params, rng *rand.Rand) (domain.Value, error) {
	min, max, err := g.bounds(params, ctx.BaseDate)
	if err != nil {
		return domain.Null(), err
	}
	days := int64(max.Sub(min) / day)
	return domain.DateValue(min.Add(time.Duration(intBetween(rng, 0, days)) * day)), nil
}

func (g *DateRangeGenerator) GenerateUnique(ctx *GeneratorContext, _ Params, index int64) (domain.Value, error) {
	return UniqueDate(ctx.BaseDate, index), nil
}

type TimeRangeGenerator struct {
	id string
}

func (g *TimeRangeGenerator) ID() string { return g.id }

func (g *TimeRangeGenerator) Params() []ParamSpec {
	return []ParamSpec{Optional("min", KindTime), Optional("max", KindTime)}
}

func (g *TimeRangeGenerator) Validate(params Params, _ *domain.Column) error {
	_, _, err := g.bounds(params)
	return err
}

func (g *TimeRangeGenerator) bounds(params Params) (int64, int64, error) {
	var min, max int64 = 0, 86399
	if c, ok := params.Clock("min"); ok {
		min = timeutil.SecondsOfDay(c)
	}
	if c, ok := params.Clock("max"); ok {
		max = timeutil.SecondsOfDay(c)
	}
	if min > max {
		return 0, 0, domain.InvalidPlanf("%s min must be <= max", g.id)
	}
	return min, max, nil
}

func (g *TimeRangeGenerator) Generate(_ *GeneratorContext, params Params, rng *rand.Rand) (domain.Value, error) {
	min, max, err := g.bounds(params)
	if err != nil {
		return domain.Null(), err
	}
	return domain.TimeOfDay(intBetween(rng, min, max)), nil
}

func (g *TimeRangeGenerator) GenerateUnique(_ *GeneratorContext, _ Params, index int64) (domain.Value, error) {
	return domain.TimeOfDay(index % 86400), nil
}

type TimestampRangeGenerator struct {
	id string
}

func (g *TimestampRangeGenerator) ID() string { return g.id }

func (g *TimestampRangeGenerator) Params() []ParamSpec {
	return []ParamSpec{Optional("min", KindTimestamp), Optional("max", KindTimestamp)}
}

func (g *TimestampRangeGenerator) Validate(params Params, _ *domain.Column) error {
	_, _, err := g.bounds(params, domain.DefaultBaseDate)
	return err
}

func (g *TimestampRangeGenerator) bounds(params Params, base time.Time) (time.Time, time.Time, error) {
	base = timeutil.StartOfDay(base)
	min, ok := params.Timestamp("min", base)
	if !ok {
		min = base
	}
	max, ok := params.Timestamp("max", base)
	if !ok {
		max = base.Add(366*day - time.Second)
	}
	if min.After(max) {
		return min, max, domain.InvalidPlanf("%s min must be <= max", g.id)
	}
	return min, max, nil
}

func (g *TimestampRangeGenerator) Generate(ctx *GeneratorContext, params Params, rng *rand.Rand) (domain.Value, error) {
	min, max, err := g.bounds(params, ctx.BaseDate)
	if err != nil {
		return domain.Null(), err
	}
	secs := int64(max.Sub(min) / time.Second)
	return domain.TimestampValue(min.Add(time.Duration(intBetween(rng, 0, secs)) * time.Second)), nil
}

func (g *TimestampRangeGenerator) GenerateUnique(ctx *GeneratorContext, _ Params, index int64) (domain.Value, error) {
	return UniqueTimestamp(ctx.BaseDate, index), nil
}

// TimestampSeriesGenerator emits start + row*step, so rows come out evenly spaced.
type TimestampSeriesGenerator struct{}

func (g *TimestampSeriesGenerator) ID() string { return "primitive.timestamp.series" }

func (g *TimestampSeriesGenerator) Params() []ParamSpec {
	return []ParamSpec{Optional("start", KindTimestamp), Optional("step", KindString)}
}

func (g *TimestampSeriesGenerator) Validate(params Params, _ *domain.Column) error {
	_, err := g.step(params)
	return err
}

func (g *TimestampSeriesGenerator) step(params Params) (time.Duration, error) {
	raw := params.StringOr("step", "1h")
	d, err := timeutil.ParseDuration(raw)
	if err != nil {
		return 0, domain.InvalidPlanf("%s invalid step %q: %v", g.ID(), raw, err)
	}
	if d <= 0 {
		return 0, domain.InvalidPlanf("%s step must be positive", g.ID())
	}
	return d, nil
}

func (g *TimestampSeriesGenerator) Generate(ctx *GeneratorContext, params Params, _ *rand.Rand) (domain.Value, error) {
	return g.GenerateUnique(ctx, params, ctx.RowIndex)
}

func (g *TimestampSeriesGenerator) GenerateUnique(ctx *GeneratorContext, params Params, index int64) (domain.Value, error) {
	step, err := g.step(params)
	if err != nil {
		return domain.Null(), err
	}
	base := timeutil.StartOfDay(ctx.BaseDate)
	start, ok := params.Timestamp("start", base)
	if !ok {
		start = base
	}
	return domain.TimestampValue(start.Add(time.Duration(index) * step)), nil
}

// UniqueDate is base + index days.
func UniqueDate(base time.Time, index int64) domain.Value {
	return domain.DateValue(timeutil.StartOfDay(base).AddDate(0, 0, int(index)))
}

// UniqueTimestamp is base + index days at noon.
func UniqueTimestamp(base time.Time, index int64) domain.Value {
	return domain.TimestampValue(timeutil.Noon(base).AddDate(0, 0, int(index)))
}
