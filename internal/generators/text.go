package generators

import (
	"fmt"
	"math/rand"
	"regexp/syntax"
	"strings"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

var loremWords = strings.Fields("lorem ipsum dolor sit amet consectetur adipiscing elit sed do eiusmod tempor incididunt ut labore et dolore magna aliqua")

type LoremGenerator struct {
	id string
}

func (g *LoremGenerator) ID() string { return g.id }

func (g *LoremGenerator) Params() []ParamSpec {
	return []ParamSpec{Optional("words", KindInt), Optional("min_words", KindInt), Optional("max_words", KindInt)}
}

func (g *LoremGenerator) Validate(params Params, _ *domain.Column) error {
	_, _, err := g.wordRange(params)
	return err
}

func (g *LoremGenerator) wordRange(params Params) (int64, int64, error) {
	if n, ok := params.Int("words"); ok {
		if n < 1 {
			return 0, 0, domain.InvalidPlanf("%s words must be >= 1", g.id)
		}
		return n, n, nil
	}
	min := params.IntOr("min_words", 3)
	max := params.IntOr("max_words", 8)
	if min < 1 || min > max {
		return 0, 0, domain.InvalidPlanf("%s requires 1 <= min_words <= max_words", g.id)
	}
	return min, max, nil
}

func (g *LoremGenerator) Generate(ctx *GeneratorContext, params Params, rng *rand.Rand) (domain.Value, error) {
	min, max, err := g.wordRange(params)
	if err != nil {
		return domain.Null(), err
	}
	n := intBetween(rng, min, max)
	words := make([]string, n)
	for i := range words {
		words[i] = pick(rng, loremWords)
	}
	return domain.TextValue(truncateToColumn(ctx, strings.Join(words, " "))), nil
}

func (g *LoremGenerator) GenerateUnique(ctx *GeneratorContext, _ Params, index int64) (domain.Value, error) {
	return uniqueColumnText(ctx, index), nil
}

// PatternGenerator produces strings matching a regular expression.
type PatternGenerator struct{}

func (g *PatternGenerator) ID() string { return "primitive.text.pattern" }

func (g *PatternGenerator) Params() []ParamSpec {
	return []ParamSpec{Required("pattern", KindString), Optional("max_repeat", KindInt)}
}

func (g *PatternGenerator) Validate(params Params, _ *domain.Column) error {
	_, err := g.compile(params)
	if err != nil {
		return err
	}
	if params.IntOr("max_repeat", 32) < 0 {
		return domain.InvalidPlanf("%s max_repeat must be >= 0", g.ID())
	}
	return nil
}

func (g *PatternGenerator) compile(params Params) (*syntax.Regexp, error) {
	pattern, _ := params.String("pattern")
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, domain.InvalidPlanf("%s invalid pattern: %v", g.ID(), err)
	}
	return re, nil
}

func (g *PatternGenerator) Generate(ctx *GeneratorContext, params Params, rng *rand.Rand) (domain.Value, error) {
	re, err := g.compile(params)
	if err != nil {
		return domain.Null(), err
	}
	var sb strings.Builder
	expand(&sb, re, rng, params.IntOr("max_repeat", 32))
	return domain.TextValue(truncateToColumn(ctx, sb.String())), nil
}

func (g *PatternGenerator) GenerateUnique(ctx *GeneratorContext, _ Params, index int64) (domain.Value, error) {
	return uniqueColumnText(ctx, index), nil
}

func expand(sb *strings.Builder, re *syntax.Regexp, rng *rand.Rand, maxRepeat int64) {
	switch re.Op {
	case syntax.OpLiteral:
		for _, r := range re.Rune {
			sb.WriteRune(r)
		}
	case syntax.OpCharClass:
		sb.WriteRune(pickFromClass(rng, re.Rune))
	case syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		sb.WriteRune(rune(intBetween(rng, 'a', 'z')))
	case syntax.OpCapture:
		expand(sb, re.Sub[0], rng, maxRepeat)
	case syntax.OpConcat:
		for _, sub := range re.Sub {
			expand(sb, sub, rng, maxRepeat)
		}
	case syntax.OpAlternate:
		expand(sb, re.Sub[rng.Intn(len(re.Sub))], rng, maxRepeat)
	case syntax.OpStar:
		repeat(sb, re.Sub[0], rng, maxRepeat, 0, maxRepeat)
	case syntax.OpPlus:
		repeat(sb, re.Sub[0], rng, maxRepeat, 1, maxRepeat)
	case syntax.OpQuest:
		repeat(sb, re.Sub[0], rng, maxRepeat, 0, 1)
	case syntax.OpRepeat:
		max := int64(re.Max)
		if re.Max < 0 {
			max = int64(re.Min) + maxRepeat
		}
		repeat(sb, re.Sub[0], rng, maxRepeat, int64(re.Min), max)
	}
	// Anchors, word boundaries and empty matches emit nothing.
}

func repeat(sb *strings.Builder, re *syntax.Regexp, rng *rand.Rand, maxRepeat, min, max int64) {
	if max < min {
		max = min
	}
	n := intBetween(rng, min, max)
	for i := int64(0); i < n; i++ {
		expand(sb, re, rng, maxRepeat)
	}
}

// pickFromClass picks a rune from [lo, hi] pairs, preferring printable ASCII
// when the class contains any.
func pickFromClass(rng *rand.Rand, ranges []rune) rune {
	ascii := make([]rune, 0, len(ranges))
	for i := 0; i+1 < len(ranges); i += 2 {
		lo, hi := ranges[i], ranges[i+1]
		if lo < ' ' {
			lo = ' '
		}
		if hi > '~' {
			hi = '~'
		}
		if lo <= hi {
			ascii = append(ascii, lo, hi)
		}
	}
	if len(ascii) > 0 {
		ranges = ascii
	}
	var total int64
	for i := 0; i+1 < len(ranges); i += 2 {
		total += int64(ranges[i+1]-ranges[i]) + 1
	}
	if total == 0 {
		return 'x'
	}
	n := rng.Int63n(total)
	for i := 0; i+1 < len(ranges); i += 2 {
		size := int64(ranges[i+1]-ranges[i]) + 1
		if n < size {
			return ranges[i] + rune(n)
		}
		n -= size
	}
	return ranges[0]
}

// uniqueColumnText is "<column>_<index+1>", truncated to the column length.
func uniqueColumnText(ctx *GeneratorContext, index int64) domain.Value {
	name := "value"
	if ctx.Column != nil {
		name = ctx.Column.Name
	}
	return domain.TextValue(truncateToColumn(ctx, fmt.Sprintf("%s_%d", name, index+1)))
}

// UniqueText is the type-level unique text, "value_00001" style.
func UniqueText(ctx *GeneratorContext, index int64) domain.Value {
	return domain.TextValue(truncateToColumn(ctx, fmt.Sprintf("value_%05d", index+1)))
}
