package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

func fk(parent string) domain.Constraint {
	return domain.Constraint{Kind: domain.ConstraintForeignKey, Columns: []string{parent + "_id"}, ReferencedSchema: "public", ReferencedTable: parent, ReferencedColumns: []string{"id"}}
}

func schemaOf(tables ...domain.Table) *domain.DatabaseSchema {
	return &domain.DatabaseSchema{Engine: "postgres", Schemas: []domain.Schema{{Name: "public", Tables: tables}}}
}

func planOf(targets ...domain.Target) *domain.Plan {
	return &domain.Plan{PlanVersion: domain.PlanVersion, Targets: targets}
}

func target(table string, rows int64) domain.Target {
	return domain.Target{Schema: "public", Table: table, Rows: rows}
}

// customers <- orders <- order_items, plus an unrelated audit table.
func chain() *domain.DatabaseSchema {
	return schemaOf(
		domain.Table{Name: "order_items", Constraints: []domain.Constraint{fk("orders")}},
		domain.Table{Name: "orders", Constraints: []domain.Constraint{fk("customers")}},
		domain.Table{Name: "customers"},
		domain.Table{Name: "audit"},
	)
}

func TestPlanTablesOrdersParentsFirst(t *testing.T) {
	tasks, err := PlanTables(chain(), planOf(target("order_items", 30), target("customers", 5), target("orders", 10)), false)
	require.NoError(t, err)
	assert.Equal(t, []domain.GenerationTask{
		{Schema: "public", Table: "customers", Rows: 5},
		{Schema: "public", Table: "orders", Rows: 10},
		{Schema: "public", Table: "order_items", Rows: 30},
	}, tasks)
}

func TestPlanTablesMergesDuplicateTargetsWithMax(t *testing.T) {
	tasks, err := PlanTables(chain(), planOf(target("customers", 5), target("customers", 9), target("customers", 2)), false)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, int64(9), tasks[0].Rows)
}

func TestPlanTablesPropagatesToParents(t *testing.T) {
	tasks, err := PlanTables(chain(), planOf(target("order_items", 30)), true)
	require.NoError(t, err)
	assert.Equal(t, []domain.GenerationTask{
		{Schema: "public", Table: "customers", Rows: 30},
		{Schema: "public", Table: "orders", Rows: 30},
		{Schema: "public", Table: "order_items", Rows: 30},
	}, tasks)
}

func TestPlanTablesKeepsExplicitParentCounts(t *testing.T) {
	tasks, err := PlanTables(chain(), planOf(target("order_items", 30), target("orders", 4)), true)
	require.NoError(t, err)
	assert.Equal(t, []domain.GenerationTask{
		{Schema: "public", Table: "customers", Rows: 4},
		{Schema: "public", Table: "orders", Rows: 4},
		{Schema: "public", Table: "order_items", Rows: 30},
	}, tasks)
}

func TestPlanTablesWithoutPropagationSkipsParents(t *testing.T) {
	tasks, err := PlanTables(chain(), planOf(target("order_items", 3)), false)
	require.NoError(t, err)
	assert.Equal(t, []domain.GenerationTask{{Schema: "public", Table: "order_items", Rows: 3}}, tasks)
}

func TestPlanTablesRejectsCycles(t *testing.T) {
	schema := schemaOf(
		domain.Table{Name: "a", Constraints: []domain.Constraint{fk("b")}},
		domain.Table{Name: "b", Constraints: []domain.Constraint{fk("a")}},
	)
	_, err := PlanTables(schema, planOf(target("a", 1)), false)
	require.Error(t, err)
	assert.True(t, domain.IsUnsupported(err))
	assert.Contains(t, err.Error(), "cyclic FK graph")
}

func TestPlanTablesRequiresTargets(t *testing.T) {
	_, err := PlanTables(chain(), planOf(), true)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidPlan(err))
	assert.Contains(t, err.Error(), "no generation targets resolved")
}
