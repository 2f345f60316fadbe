package generators

import (
	"math"
	"math/rand"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

// FloatRangeGenerator draws uniformly from [min, max]. A non-negative scale
// rounds the result, as money generators do.
type FloatRangeGenerator struct {
	id     string
	defMin float64
	defMax float64
	scale  int
	tags   []string
}

func (g *FloatRangeGenerator) ID() string { return g.id }

func (g *FloatRangeGenerator) PIITags() []string { return g.tags }

func (g *FloatRangeGenerator) Params() []ParamSpec {
	return []ParamSpec{Optional("min", KindFloat), Optional("max", KindFloat)}
}

func (g *FloatRangeGenerator) Validate(params Params, _ *domain.Column) error {
	_, _, err := floatBounds(g.id, params, g.defMin, g.defMax)
	return err
}

func (g *FloatRangeGenerator) Generate(_ *GeneratorContext, params Params, rng *rand.Rand) (domain.Value, error) {
	min, max, err := floatBounds(g.id, params, g.defMin, g.defMax)
	if err != nil {
		return domain.Null(), err
	}
	return domain.FloatValue(g.round(floatBetween(rng, min, max))), nil
}

func (g *FloatRangeGenerator) GenerateUnique(ctx *GeneratorContext, params Params, index int64) (domain.Value, error) {
	return domain.FloatValue(g.round(uniqueFloat(ctx, params, g.defMin, index))), nil
}

func (g *FloatRangeGenerator) round(v float64) float64 {
	if g.scale < 0 {
		return v
	}
	return roundTo(v, g.scale)
}

type DecimalNumericGenerator struct{}

func (g *DecimalNumericGenerator) ID() string { return "primitive.decimal.numeric" }

func (g *DecimalNumericGenerator) Params() []ParamSpec {
	return []ParamSpec{Optional("min", KindFloat), Optional("max", KindFloat), Optional("scale", KindInt)}
}

func (g *DecimalNumericGenerator) Validate(params Params, _ *domain.Column) error {
	if _, _, err := floatBounds(g.ID(), params, 0, 10000); err != nil {
		return err
	}
	if s, ok := params.Int("scale"); ok && s < 0 {
		return domain.InvalidPlanf("%s scale must be >= 0", g.ID())
	}
	return nil
}

func (g *DecimalNumericGenerator) Generate(ctx *GeneratorContext, params Params, rng *rand.Rand) (domain.Value, error) {
	min, max, err := floatBounds(g.ID(), params, 0, 10000)
	if err != nil {
		return domain.Null(), err
	}
	return domain.FloatValue(roundTo(floatBetween(rng, min, max), decimalScale(ctx, params))), nil
}

func (g *DecimalNumericGenerator) GenerateUnique(ctx *GeneratorContext, params Params, index int64) (domain.Value, error) {
	return domain.FloatValue(roundTo(uniqueFloat(ctx, params, 0, index), decimalScale(ctx, params))), nil
}

// decimalScale prefers the scale param, then the column's numeric scale, then 2.
func decimalScale(ctx *GeneratorContext, params Params) int {
	if s, ok := params.Int("scale"); ok && s >= 0 {
		return int(s)
	}
	if ctx != nil && ctx.Column != nil {
		if s, ok := ctx.Column.ColumnType.Scale(); ok && s >= 0 {
			return s
		}
	}
	return 2
}

func floatBounds(id string, params Params, defMin, defMax float64) (float64, float64, error) {
	min := params.FloatOr("min", defMin)
	max := params.FloatOr("max", defMax)
	if min > max {
		return 0, 0, domain.InvalidPlanf("%s min must be <= max", id)
	}
	return min, max, nil
}

// uniqueFloat is min+index+1 capped at max. A lower range hint above min
// starts the walk at the hint itself.
func uniqueFloat(ctx *GeneratorContext, params Params, defMin float64, index int64) float64 {
	min := params.FloatOr("min", defMin)
	max := params.FloatOr("max", math.MaxFloat64)
	if ctx != nil {
		if ctx.MinHint != nil && *ctx.MinHint-1 > min {
			min = *ctx.MinHint - 1
		}
		if ctx.MaxHint != nil && *ctx.MaxHint < max {
			max = *ctx.MaxHint
		}
	}
	v := min + float64(index) + 1
	if v > max {
		v = max
	}
	return v
}

func roundTo(v float64, scale int) float64 {
	factor := math.Pow(10, float64(scale))
	return math.Round(v*factor) / factor
}
