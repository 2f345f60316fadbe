package generators

import (
	"math/rand"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

// NormalGenerator draws from N(mean, std) and optionally clips to [min, max].
type NormalGenerator struct{}

func (g *NormalGenerator) ID() string { return "primitive.float.normal" }

func (g *NormalGenerator) Params() []ParamSpec {
	return []ParamSpec{
		Required("mean", KindFloat),
		Required("std", KindFloat),
		Optional("min", KindFloat),
		Optional("max", KindFloat),
	}
}

func (g *NormalGenerator) Validate(params Params, _ *domain.Column) error {
	if std, _ := params.Float("std"); std < 0 {
		return domain.InvalidPlanf("%s std must be >= 0", g.ID())
	}
	min, hasMin := params.Float("min")
	max, hasMax := params.Float("max")
	if hasMin && hasMax && min > max {
		return domain.InvalidPlanf("%s min must be <= max", g.ID())
	}
	return nil
}

func (g *NormalGenerator) Generate(_ *GeneratorContext, params Params, rng *rand.Rand) (domain.Value, error) {
	if err := g.Validate(params, nil); err != nil {
		return domain.Null(), err
	}
	mean, _ := params.Float("mean")
	std, _ := params.Float("std")
	v := rng.NormFloat64()*std + mean
	if min, ok := params.Float("min"); ok && v < min {
		v = min
	}
	if max, ok := params.Float("max"); ok && v > max {
		v = max
	}
	return domain.FloatValue(v), nil
}
