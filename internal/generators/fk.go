package generators

import (
	"math/rand"
	"strings"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

// FKGenerator picks a value from the parent table of the foreign key that
// contains the target column.
type FKGenerator struct{}

func (g *FKGenerator) ID() string { return "derive.fk" }

func (g *FKGenerator) Params() []ParamSpec {
	return []ParamSpec{Optional("input_columns", KindStringList)}
}

func (g *FKGenerator) Generate(ctx *GeneratorContext, _ Params, rng *rand.Rand) (domain.Value, error) {
	if ctx.Foreign == nil {
		return domain.Null(), domain.Unsupportedf("%s requires foreign key context", g.ID())
	}
	fk, ref, ok := ReferencedColumn(ctx.ForeignKeys, ctx.Column.Name)
	if !ok {
		return domain.Null(), domain.InvalidPlanf("%s: column %s is not part of a foreign key", g.ID(), ctx.Column.Name)
	}
	return ctx.Foreign.PickFK(rng, fk.ReferencedSchema, fk.ReferencedTable, ref)
}

// ReferencedColumn finds the FK containing column and the parent column at the
// same position.
func ReferencedColumn(fks []domain.Constraint, column string) (domain.Constraint, string, bool) {
	for _, fk := range fks {
		for i, c := range fk.Columns {
			if strings.EqualFold(c, column) && i < len(fk.ReferencedColumns) {
				return fk, fk.ReferencedColumns[i], true
			}
		}
	}
	return domain.Constraint{}, "", false
}

// ParentValueGenerator copies a column from the parent row referenced by the
// first input column.
type ParentValueGenerator struct{}

func (g *ParentValueGenerator) ID() string { return "derive.parent_value" }

func (g *ParentValueGenerator) Params() []ParamSpec {
	return []ParamSpec{
		Required("input_columns", KindStringList),
		Required("parent_schema", KindString),
		Required("parent_table", KindString),
		Required("parent_column", KindString),
	}
}

func (g *ParentValueGenerator) Validate(params Params, _ *domain.Column) error {
	if len(InputColumns(params)) == 0 {
		return domain.InvalidPlanf("%s requires input_columns", g.ID())
	}
	return nil
}

func (g *ParentValueGenerator) Generate(ctx *GeneratorContext, params Params, _ *rand.Rand) (domain.Value, error) {
	if ctx.Foreign == nil {
		return domain.Null(), domain.Unsupportedf("%s requires foreign key context", g.ID())
	}
	inputs := InputColumns(params)
	if len(inputs) == 0 {
		return domain.Null(), domain.InvalidPlanf("%s requires input_columns", g.ID())
	}
	key, ok := ctx.Lookup(inputs[0])
	if !ok {
		return domain.Null(), domain.InvalidPlanf("%s: input column %s has no value yet", g.ID(), inputs[0])
	}
	if key.IsNull() {
		return domain.Null(), nil
	}
	schema, _ := params.String("parent_schema")
	table, _ := params.String("parent_table")
	column, _ := params.String("parent_column")
	v, ok := ctx.Foreign.LookupParent(schema, table, key, column)
	if !ok {
		return domain.Null(), domain.Unsupportedf("%s: no parent row in %s for key %s", g.ID(), domain.TableKey(schema, table), key.String())
	}
	return v, nil
}
