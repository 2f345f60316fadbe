package generators

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

type stubResolver struct {
	picked  []string
	parents map[string]domain.Value
}

func (s *stubResolver) PickFK(_ *rand.Rand, schema, table, column string) (domain.Value, error) {
	s.picked = append(s.picked, domain.ColumnKey(schema, table, column))
	return domain.IntValue(7), nil
}

func (s *stubResolver) LookupParent(schema, table string, key domain.Value, column string) (domain.Value, bool) {
	v, ok := s.parents[domain.TableKey(schema, table)+"/"+key.Key()+"/"+column]
	return v, ok
}

func TestEmailFromName(t *testing.T) {
	gen := &EmailFromNameGenerator{}
	p := params(t, gen, map[string]interface{}{"input_columns": []interface{}{"first_name", "last_name"}, "domain": "corp.test"})
	ctx := newCtx(textColumn("email", nil))
	ctx.Row = domain.Row{"first_name": domain.TextValue("Ana Maria"), "last_name": domain.TextValue("Silva")}
	v, err := gen.Generate(ctx, p, nil)
	require.NoError(t, err)
	assert.Equal(t, "ana.maria.silva@corp.test", v.String())

	ctx.Row = domain.Row{"first_name": domain.Null()}
	ctx.RowIndex = 4
	v, err = gen.Generate(ctx, p, nil)
	require.NoError(t, err)
	assert.Equal(t, "user5@corp.test", v.String())
}

func TestUpdatedAfterCreated(t *testing.T) {
	gen := &AfterGenerator{id: "derive.updated_after_created"}
	p := params(t, gen, map[string]interface{}{"input_columns": []interface{}{"created_at"}, "max_seconds": 60})
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	ctx := newCtx(typedColumn("updated_at", "timestamp"))
	ctx.Row = domain.Row{"created_at": domain.TimestampValue(created)}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		v, err := gen.Generate(ctx, p, rng)
		require.NoError(t, err)
		ts, ok := v.Timestamp()
		require.True(t, ok)
		assert.False(t, ts.Before(created))
		assert.False(t, ts.After(created.Add(time.Minute)))
	}

	ctx.Row = domain.Row{"created_at": domain.TimeOfDay(86390)}
	v, err := gen.Generate(ctx, params(t, gen, map[string]interface{}{"input_columns": []interface{}{"created_at"}}), rng)
	require.NoError(t, err)
	assert.LessOrEqual(t, v.SecondsOfDay(), int64(86399))

	ctx.Row = domain.Row{"created_at": domain.Null()}
	v, err = gen.Generate(ctx, p, rng)
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	ctx.Row = domain.Row{"created_at": domain.IntValue(1)}
	_, err = gen.Generate(ctx, p, rng)
	assert.True(t, domain.IsInvalidPlan(err))
}

func TestMoneyTotal(t *testing.T) {
	gen := &MoneyTotalGenerator{}
	p := params(t, gen, map[string]interface{}{"input_columns": []interface{}{"price", "qty", "discount"}})
	col := typedColumn("total", "numeric")
	col.ColumnType.NumericScale = intPtr(2)
	ctx := newCtx(col)
	ctx.Row = domain.Row{"price": domain.FloatValue(10.25), "qty": domain.IntValue(3), "discount": domain.FloatValue(0.75)}
	v, err := gen.Generate(ctx, p, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.FloatValue(30), v)

	assert.Error(t, gen.Validate(params(t, gen, map[string]interface{}{"input_columns": []interface{}{"price"}}), nil))

	ctx.Row["qty"] = domain.TextValue("x")
	_, err = gen.Generate(ctx, p, nil)
	assert.True(t, domain.IsInvalidPlan(err))
}

func TestFKPicksFromReferencedColumn(t *testing.T) {
	resolver := &stubResolver{}
	ctx := newCtx(typedColumn("customer_id", "int4"))
	ctx.ForeignKeys = []domain.Constraint{{
		Kind:              domain.ConstraintForeignKey,
		Columns:           []string{"customer_id"},
		ReferencedSchema:  "public",
		ReferencedTable:   "customers",
		ReferencedColumns: []string{"id"},
	}}
	ctx.Foreign = resolver

	v, err := (&FKGenerator{}).Generate(ctx, nil, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, domain.IntValue(7), v)
	assert.Equal(t, []string{"public.customers.id"}, resolver.picked)

	ctx.Column = typedColumn("other", "int4")
	_, err = (&FKGenerator{}).Generate(ctx, nil, nil)
	assert.True(t, domain.IsInvalidPlan(err))

	ctx.Foreign = nil
	_, err = (&FKGenerator{}).Generate(ctx, nil, nil)
	assert.True(t, domain.IsUnsupported(err))
}

func TestParentValue(t *testing.T) {
	gen := &ParentValueGenerator{}
	p := params(t, gen, map[string]interface{}{
		"input_columns": []interface{}{"customer_id"},
		"parent_schema": "public",
		"parent_table":  "customers",
		"parent_column": "region",
	})
	resolver := &stubResolver{parents: map[string]domain.Value{"public.customers/3/region": domain.TextValue("south")}}
	ctx := newCtx(textColumn("region", nil))
	ctx.Foreign = resolver
	ctx.Row = domain.Row{"customer_id": domain.IntValue(3)}

	v, err := gen.Generate(ctx, p, nil)
	require.NoError(t, err)
	assert.Equal(t, "south", v.String())

	ctx.Row = domain.Row{"customer_id": domain.IntValue(4)}
	_, err = gen.Generate(ctx, p, nil)
	assert.True(t, domain.IsUnsupported(err))
}
