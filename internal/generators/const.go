package generators

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mmrzaf/datalchemy/internal/domain"
	"github.com/mmrzaf/datalchemy/internal/timeutil"
)

// ConstGenerator emits the same literal for every row, typed by the column.
type ConstGenerator struct{}

func (g *ConstGenerator) ID() string { return "primitive.const" }

func (g *ConstGenerator) Params() []ParamSpec {
	return []ParamSpec{Required("value", KindString)}
}

func (g *ConstGenerator) Validate(params Params, column *domain.Column) error {
	s, _ := params.String("value")
	_, err := LiteralForColumn(column, s)
	if err != nil {
		return domain.InvalidPlanf("%s: %v", g.ID(), err)
	}
	return nil
}

func (g *ConstGenerator) Generate(ctx *GeneratorContext, params Params, _ *rand.Rand) (domain.Value, error) {
	s, _ := params.String("value")
	v, err := LiteralForColumn(ctx.Column, s)
	if err != nil {
		return domain.Null(), domain.InvalidPlanf("%s: %v", g.ID(), err)
	}
	return v, nil
}

// LiteralForColumn converts a textual literal into a value of the column's type.
func LiteralForColumn(column *domain.Column, s string) (domain.Value, error) {
	if column == nil {
		return domain.TextValue(s), nil
	}
	s = strings.TrimSpace(s)
	switch column.ColumnType.Class() {
	case domain.TypeInteger:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return domain.Null(), err
		}
		return domain.IntValue(i), nil
	case domain.TypeNumeric, domain.TypeFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.Null(), err
		}
		return domain.FloatValue(f), nil
	case domain.TypeBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return domain.Null(), err
		}
		return domain.BoolValue(b), nil
	case domain.TypeUUID:
		u, err := uuid.Parse(s)
		if err != nil {
			return domain.Null(), err
		}
		return domain.UUIDValue(u.String()), nil
	case domain.TypeDate:
		d, err := timeutil.ParseDate(s)
		if err != nil {
			return domain.Null(), err
		}
		return domain.DateValue(d), nil
	case domain.TypeTime:
		c, err := timeutil.ParseClock(s)
		if err != nil {
			return domain.Null(), err
		}
		return domain.TimeValue(c), nil
	case domain.TypeTimestamp:
		t, err := timeutil.ParseTimestamp(s)
		if err != nil {
			return domain.Null(), err
		}
		return domain.TimestampValue(t), nil
	}
	return domain.TextValue(s), nil
}
