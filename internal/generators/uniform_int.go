package generators

import (
	"math"
	"math/rand"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

// IntRangeGenerator draws uniformly from [min, max]; defMin and defMax apply
// when the params leave a bound out.
type IntRangeGenerator struct {
	id     string
	defMin int64
	defMax int64
	tags   []string
}

func (g *IntRangeGenerator) ID() string { return g.id }

func (g *IntRangeGenerator) PIITags() []string { return g.tags }

func (g *IntRangeGenerator) Params() []ParamSpec {
	return []ParamSpec{Optional("min", KindInt), Optional("max", KindInt)}
}

func (g *IntRangeGenerator) Validate(params Params, _ *domain.Column) error {
	_, _, err := g.bounds(params)
	return err
}

func (g *IntRangeGenerator) bounds(params Params) (int64, int64, error) {
	min := params.IntOr("min", g.defMin)
	max := params.IntOr("max", g.defMax)
	if min > max {
		return 0, 0, domain.InvalidPlanf("%s min must be <= max", g.id)
	}
	return min, max, nil
}

func (g *IntRangeGenerator) Generate(_ *GeneratorContext, params Params, rng *rand.Rand) (domain.Value, error) {
	min, max, err := g.bounds(params)
	if err != nil {
		return domain.Null(), err
	}
	return domain.IntValue(intBetween(rng, min, max)), nil
}

// GenerateUnique walks upward from min and saturates at max. Both ends are
// narrowed to the context's range hints first.
func (g *IntRangeGenerator) GenerateUnique(ctx *GeneratorContext, params Params, index int64) (domain.Value, error) {
	min := params.IntOr("min", g.defMin)
	max := params.IntOr("max", math.MaxInt64)
	if ctx != nil {
		if ctx.MinHint != nil && *ctx.MinHint-1 > float64(min) {
			min = int64(math.Ceil(*ctx.MinHint)) - 1
		}
		if ctx.MaxHint != nil && *ctx.MaxHint < float64(max) {
			max = int64(math.Floor(*ctx.MaxHint))
		}
	}
	return domain.IntValue(saturatingStep(min, index+1, 1, max)), nil
}

type IntSequenceHintGenerator struct{}

func (g *IntSequenceHintGenerator) ID() string { return "primitive.int.sequence_hint" }

func (g *IntSequenceHintGenerator) Params() []ParamSpec {
	return []ParamSpec{Optional("start", KindInt), Optional("step", KindInt), Optional("max", KindInt)}
}

func (g *IntSequenceHintGenerator) Validate(params Params, _ *domain.Column) error {
	if params.IntOr("step", 1) == 0 {
		return domain.InvalidPlanf("%s step must be non-zero", g.ID())
	}
	return nil
}

func (g *IntSequenceHintGenerator) Generate(ctx *GeneratorContext, params Params, _ *rand.Rand) (domain.Value, error) {
	if err := g.Validate(params, nil); err != nil {
		return domain.Null(), err
	}
	return g.GenerateUnique(ctx, params, ctx.RowIndex)
}

func (g *IntSequenceHintGenerator) GenerateUnique(_ *GeneratorContext, params Params, index int64) (domain.Value, error) {
	start := params.IntOr("start", 1)
	step := params.IntOr("step", 1)
	max := params.IntOr("max", math.MaxInt64)
	return domain.IntValue(saturatingStep(start, index, step, max)), nil
}

// saturatingStep computes start + n*step without overflowing, then caps at max.
func saturatingStep(start, n, step, max int64) int64 {
	prod := float64(n) * float64(step)
	sum := float64(start) + prod
	var v int64
	switch {
	case sum >= math.MaxInt64:
		v = math.MaxInt64
	case sum <= math.MinInt64:
		v = math.MinInt64
	default:
		v = start + n*step
	}
	if v > max {
		v = max
	}
	return v
}
