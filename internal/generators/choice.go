package generators

import (
	"math/rand"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

// ValueSetGenerator picks uniformly from a fixed list of labels.
type ValueSetGenerator struct {
	id     string
	values []string
	tags   []string
}

func (g *ValueSetGenerator) ID() string { return g.id }

func (g *ValueSetGenerator) Params() []ParamSpec { return nil }

func (g *ValueSetGenerator) PIITags() []string { return g.tags }

func (g *ValueSetGenerator) Generate(ctx *GeneratorContext, _ Params, rng *rand.Rand) (domain.Value, error) {
	return domain.TextValue(truncateToColumn(ctx, pick(rng, g.values))), nil
}

// ChoiceGenerator picks from the values param, optionally weighted.
type ChoiceGenerator struct{}

func (g *ChoiceGenerator) ID() string { return "primitive.choice" }

func (g *ChoiceGenerator) Params() []ParamSpec {
	return []ParamSpec{Required("values", KindStringList), Optional("weights", KindList)}
}

func (g *ChoiceGenerator) Validate(params Params, column *domain.Column) error {
	values, _, err := g.options(params)
	if err != nil {
		return err
	}
	for _, v := range values {
		if _, err := LiteralForColumn(column, v); err != nil {
			return domain.InvalidPlanf("%s: value %q does not fit the column: %v", g.ID(), v, err)
		}
	}
	return nil
}

func (g *ChoiceGenerator) options(params Params) ([]string, []float64, error) {
	values, _ := params.StringList("values")
	if len(values) == 0 {
		return nil, nil, domain.InvalidPlanf("%s: 'values' cannot be empty", g.ID())
	}
	raw, ok := params.List("weights")
	if !ok {
		return values, nil, nil
	}
	if len(raw) != len(values) {
		return nil, nil, domain.InvalidPlanf("%s: 'weights' and 'values' must have the same length", g.ID())
	}
	weights := make([]float64, len(raw))
	for i, w := range raw {
		f, ok := toFloat64(w)
		if !ok || f < 0 {
			return nil, nil, domain.InvalidPlanf("%s: invalid weight %v", g.ID(), w)
		}
		weights[i] = f
	}
	return values, weights, nil
}

func (g *ChoiceGenerator) Generate(ctx *GeneratorContext, params Params, rng *rand.Rand) (domain.Value, error) {
	values, weights, err := g.options(params)
	if err != nil {
		return domain.Null(), err
	}
	choice := values[rng.Intn(len(values))]
	if weights != nil {
		idx, ok := weightedIndex(rng, weights)
		if !ok {
			return domain.Null(), domain.InvalidPlanf("%s: total weight is zero", g.ID())
		}
		choice = values[idx]
	}
	return LiteralForColumn(ctx.Column, choice)
}

// weightedIndex rolls in [0, total) and walks the weights, subtracting as it goes.
func weightedIndex(rng *rand.Rand, weights []float64) (int, bool) {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0, false
	}
	roll := rng.Float64() * total
	for i, w := range weights {
		if roll <= w {
			return i, true
		}
		roll -= w
	}
	return len(weights) - 1, true
}

type BoolGenerator struct {
	id string
}

func (g *BoolGenerator) ID() string { return g.id }

func (g *BoolGenerator) Params() []ParamSpec { return nil }

func (g *BoolGenerator) Generate(_ *GeneratorContext, _ Params, rng *rand.Rand) (domain.Value, error) {
	return domain.BoolValue(rng.Float64() < 0.5), nil
}

// EnumGenerator picks one of the column's enum labels.
type EnumGenerator struct{}

func (g *EnumGenerator) ID() string { return "primitive.enum" }

func (g *EnumGenerator) Params() []ParamSpec { return nil }

func (g *EnumGenerator) Generate(ctx *GeneratorContext, _ Params, rng *rand.Rand) (domain.Value, error) {
	if !ctx.IsEnum {
		return domain.Null(), domain.InvalidPlanf("%s requires an enum column", g.ID())
	}
	if len(ctx.EnumValues) == 0 {
		return domain.TextValue("unknown"), nil
	}
	return domain.TextValue(pick(rng, ctx.EnumValues)), nil
}
