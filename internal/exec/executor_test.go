package exec

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/datalchemy/internal/assets"
	"github.com/mmrzaf/datalchemy/internal/domain"
	"github.com/mmrzaf/datalchemy/internal/output"
	"github.com/mmrzaf/datalchemy/internal/registry"
)

func col(pos int, name, udt string, nullable bool) domain.Column {
	return domain.Column{OrdinalPosition: pos, Name: name, IsNullable: nullable, ColumnType: domain.ColumnType{DataType: udt, UDTName: udt}}
}

func pk(cols ...string) domain.Constraint {
	return domain.Constraint{Kind: domain.ConstraintPrimaryKey, Columns: cols}
}

func usersOrdersSchema() *domain.DatabaseSchema {
	return &domain.DatabaseSchema{
		SchemaVersion: "0.2",
		Engine:        "postgres",
		Schemas: []domain.Schema{{
			Name: "public",
			Tables: []domain.Table{
				{
					Name: "users",
					Columns: []domain.Column{
						col(1, "id", "uuid", false),
						col(2, "email", "text", false),
						col(3, "age", "int4", false),
					},
					Constraints: []domain.Constraint{
						pk("id"),
						{Kind: domain.ConstraintUnique, Name: "users_email_key", Columns: []string{"email"}},
						{Kind: domain.ConstraintCheck, Name: "users_age_check", Expression: "(age BETWEEN 18 AND 65)"},
					},
				},
				{
					Name: "orders",
					Columns: []domain.Column{
						col(1, "id", "int4", false),
						col(2, "user_id", "uuid", false),
						col(3, "note", "text", true),
					},
					Constraints: []domain.Constraint{
						pk("id"),
						{
							Kind:              domain.ConstraintForeignKey,
							Name:              "orders_user_id_fkey",
							Columns:           []string{"user_id"},
							ReferencedSchema:  "public",
							ReferencedTable:   "users",
							ReferencedColumns: []string{"id"},
						},
					},
				},
			},
		}},
	}
}

func usersOrdersPlan() *domain.Plan {
	return &domain.Plan{
		PlanVersion: domain.PlanVersion,
		Seed:        42,
		SchemaRef:   domain.SchemaRef{SchemaVersion: "0.2", Engine: "postgres"},
		Targets: []domain.Target{
			{Schema: "public", Table: "users", Rows: 10},
			{Schema: "public", Table: "orders", Rows: 30},
		},
		Rules: []domain.Rule{{
			Type:      domain.RuleColumnGenerator,
			Schema:    "public",
			Table:     "users",
			Column:    "email",
			Generator: &domain.GeneratorRef{ID: "semantic.person.email"},
		}},
	}
}

func newTestExecutor(t *testing.T, opts Options) *Executor {
	t.Helper()
	opts.OutDir = t.TempDir()
	return NewExecutor(registry.DefaultGeneratorRegistry(assets.NewLoader(t.TempDir())), nil, opts)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func column(records [][]string, name string) []string {
	idx := -1
	for i, h := range records[0] {
		if h == name {
			idx = i
		}
	}
	out := make([]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		out = append(out, rec[idx])
	}
	return out
}

func TestExecuteWritesArtifacts(t *testing.T) {
	e := newTestExecutor(t, DefaultOptions())
	res, err := e.Execute(context.Background(), usersOrdersSchema(), usersOrdersPlan())
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^\d{8}T\d{6}Z__run_[0-9a-f-]{36}$`), filepath.Base(res.RunDir))
	for _, name := range []string{output.ResolvedPlanFile, output.ReportFile, "public.users.csv", "public.orders.csv"} {
		_, err := os.Stat(filepath.Join(res.RunDir, name))
		assert.NoError(t, err, name)
	}

	require.Len(t, res.Report.Tables, 2)
	assert.Equal(t, "users", res.Report.Tables[0].Table)
	assert.Equal(t, int64(10), res.Report.Tables[0].RowsGenerated)
	assert.Equal(t, int64(30), res.Report.Tables[1].RowsGenerated)
	assert.Equal(t, int64(10), res.Report.GeneratorUsage["semantic.person.email"])
	assert.Contains(t, res.Report.PIIColumnsTouched, "public.users.email:pii.email")
	assert.NotNil(t, res.Report.FinishedAt)
}

func TestExecuteUsesGivenRunIDAndStrictOverride(t *testing.T) {
	on, off := true, false
	plan := usersOrdersPlan()
	plan.Options = &domain.PlanOptions{Strict: &on}
	opts := DefaultOptions()
	opts.RunID = "3f2c55a4-8f0e-4d43-9e9b-0d6f1f1b7c21"
	opts.StrictOverride = &off

	res, err := newTestExecutor(t, opts).Execute(context.Background(), usersOrdersSchema(), plan)
	require.NoError(t, err)
	assert.Equal(t, opts.RunID, res.RunID)
	assert.Equal(t, opts.RunID, res.Report.RunID)
	assert.True(t, strings.HasSuffix(res.RunDir, "__run_"+opts.RunID))
	assert.False(t, res.Strict)
}

func TestExecuteIsDeterministic(t *testing.T) {
	first, err := newTestExecutor(t, DefaultOptions()).Execute(context.Background(), usersOrdersSchema(), usersOrdersPlan())
	require.NoError(t, err)
	second, err := newTestExecutor(t, DefaultOptions()).Execute(context.Background(), usersOrdersSchema(), usersOrdersPlan())
	require.NoError(t, err)

	for _, name := range []string{"public.users.csv", "public.orders.csv"} {
		a, err := os.ReadFile(filepath.Join(first.RunDir, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(second.RunDir, name))
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b), name)
	}
}

func TestExecuteSeedChangesOutput(t *testing.T) {
	plan := usersOrdersPlan()
	first, err := newTestExecutor(t, DefaultOptions()).Execute(context.Background(), usersOrdersSchema(), plan)
	require.NoError(t, err)
	plan.Seed = 7
	second, err := newTestExecutor(t, DefaultOptions()).Execute(context.Background(), usersOrdersSchema(), plan)
	require.NoError(t, err)

	a, _ := os.ReadFile(filepath.Join(first.RunDir, "public.orders.csv"))
	b, _ := os.ReadFile(filepath.Join(second.RunDir, "public.orders.csv"))
	assert.NotEqual(t, string(a), string(b))
}

func TestUniqueEmails(t *testing.T) {
	plan := usersOrdersPlan()
	plan.Targets = []domain.Target{{Schema: "public", Table: "users", Rows: 50}}

	res, err := newTestExecutor(t, DefaultOptions()).Execute(context.Background(), usersOrdersSchema(), plan)
	require.NoError(t, err)

	emails := column(readCSV(t, filepath.Join(res.RunDir, "public.users.csv")), "email")
	require.Len(t, emails, 50)
	seen := map[string]bool{}
	for _, e := range emails {
		require.NotEmpty(t, e)
		seen[e] = true
	}
	assert.Len(t, seen, 50)
}

func TestForeignKeysReferenceParentRows(t *testing.T) {
	res, err := newTestExecutor(t, DefaultOptions()).Execute(context.Background(), usersOrdersSchema(), usersOrdersPlan())
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, id := range column(readCSV(t, filepath.Join(res.RunDir, "public.users.csv")), "id") {
		ids[id] = true
	}
	require.Len(t, ids, 10)

	userIDs := column(readCSV(t, filepath.Join(res.RunDir, "public.orders.csv")), "user_id")
	require.Len(t, userIDs, 30)
	for _, id := range userIDs {
		assert.True(t, ids[id], "orphan user_id %s", id)
	}
}

func TestCheckBoundsClampValues(t *testing.T) {
	res, err := newTestExecutor(t, DefaultOptions()).Execute(context.Background(), usersOrdersSchema(), usersOrdersPlan())
	require.NoError(t, err)

	for _, raw := range column(readCSV(t, filepath.Join(res.RunDir, "public.users.csv")), "age") {
		age, err := strconv.Atoi(raw)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, age, 18)
		assert.LessOrEqual(t, age, 65)
	}
}

func TestAutoGenerateParents(t *testing.T) {
	plan := usersOrdersPlan()
	plan.Targets = []domain.Target{{Schema: "public", Table: "orders", Rows: 5}}

	res, err := newTestExecutor(t, DefaultOptions()).Execute(context.Background(), usersOrdersSchema(), plan)
	require.NoError(t, err)
	require.Len(t, res.Tasks, 2)
	assert.Equal(t, domain.GenerationTask{Schema: "public", Table: "users", Rows: 5}, res.Tasks[0])
}

func TestMissingParentRowsFail(t *testing.T) {
	plan := usersOrdersPlan()
	plan.Targets = []domain.Target{{Schema: "public", Table: "orders", Rows: 5}}
	off := false
	plan.Options = &domain.PlanOptions{AutoGenerateParents: &off}

	res, err := newTestExecutor(t, DefaultOptions()).Execute(context.Background(), usersOrdersSchema(), plan)
	require.Error(t, err)
	assert.True(t, domain.IsUnsupported(err))
	_, statErr := os.Stat(filepath.Join(res.RunDir, "public.orders.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestNotNullColumnsNeverNull(t *testing.T) {
	schema := &domain.DatabaseSchema{Schemas: []domain.Schema{{
		Name: "public",
		Tables: []domain.Table{{
			Name: "notes",
			Columns: []domain.Column{
				col(1, "body", "text", false),
				col(2, "extra", "text", true),
			},
		}},
	}}}
	plan := &domain.Plan{PlanVersion: domain.PlanVersion, Seed: 3, Targets: []domain.Target{{Schema: "public", Table: "notes", Rows: 200}}}

	res, err := newTestExecutor(t, DefaultOptions()).Execute(context.Background(), schema, plan)
	require.NoError(t, err)

	records := readCSV(t, filepath.Join(res.RunDir, "public.notes.csv"))
	nulls := 0
	for _, v := range column(records, "body") {
		assert.NotEmpty(t, v)
	}
	for _, v := range column(records, "extra") {
		if v == "" {
			nulls++
		}
	}
	assert.Greater(t, nulls, 0)
	assert.Less(t, nulls, 100)
}

func TestColumnCheckAcceptsNullOtherSide(t *testing.T) {
	schema := &domain.DatabaseSchema{Schemas: []domain.Schema{{
		Name: "public",
		Tables: []domain.Table{{
			Name: "events",
			Columns: []domain.Column{
				col(1, "id", "int4", false),
				col(2, "started", "date", true),
				col(3, "ended", "date", false),
			},
			Constraints: []domain.Constraint{
				pk("id"),
				{Kind: domain.ConstraintCheck, Name: "events_range_check", Expression: "(ended >= started)"},
			},
		}},
	}}}
	plan := &domain.Plan{PlanVersion: domain.PlanVersion, Seed: 9, Targets: []domain.Target{{Schema: "public", Table: "events", Rows: 200}}}

	res, err := newTestExecutor(t, DefaultOptions()).Execute(context.Background(), schema, plan)
	require.NoError(t, err)

	records := readCSV(t, filepath.Join(res.RunDir, "public.events.csv"))
	started, ended := column(records, "started"), column(records, "ended")
	require.Len(t, started, 200)
	nulls := 0
	for i := range started {
		if started[i] == "" {
			nulls++
			continue
		}
		assert.GreaterOrEqual(t, ended[i], started[i])
	}
	assert.Greater(t, nulls, 0)
}

func TestUniqueSynthesisRespectsCheckBounds(t *testing.T) {
	schema := &domain.DatabaseSchema{Schemas: []domain.Schema{{
		Name: "public",
		Tables: []domain.Table{{
			Name: "codes",
			Columns: []domain.Column{
				col(1, "code", "int4", false),
				col(2, "rank", "int4", false),
				col(3, "score", "float8", false),
			},
			Constraints: []domain.Constraint{
				pk("code"),
				{Kind: domain.ConstraintUnique, Columns: []string{"rank"}},
				{Kind: domain.ConstraintUnique, Columns: []string{"score"}},
				{Kind: domain.ConstraintCheck, Expression: "(code >= 1000)"},
				{Kind: domain.ConstraintCheck, Expression: "(rank BETWEEN 50 AND 100)"},
				{Kind: domain.ConstraintCheck, Expression: "(score > (10)::numeric)"},
			},
		}},
	}}}
	plan := &domain.Plan{
		PlanVersion: domain.PlanVersion,
		Seed:        4,
		Targets:     []domain.Target{{Schema: "public", Table: "codes", Rows: 5}},
		Rules: []domain.Rule{{
			Type:      domain.RuleColumnGenerator,
			Schema:    "public",
			Table:     "codes",
			Column:    "rank",
			Generator: &domain.GeneratorRef{ID: "primitive.int.range"},
		}},
	}

	res, err := newTestExecutor(t, DefaultOptions()).Execute(context.Background(), schema, plan)
	require.NoError(t, err)

	records := readCSV(t, filepath.Join(res.RunDir, "public.codes.csv"))
	assert.Equal(t, []string{"1000", "1001", "1002", "1003", "1004"}, column(records, "code"))
	assert.Equal(t, []string{"50", "51", "52", "53", "54"}, column(records, "rank"))
	assert.Equal(t, []string{"11", "12", "13", "14", "15"}, column(records, "score"))
}

func flagSchema() *domain.DatabaseSchema {
	return &domain.DatabaseSchema{Schemas: []domain.Schema{{
		Name: "public",
		Tables: []domain.Table{{
			Name:        "flags",
			Columns:     []domain.Column{col(1, "on", "bool", false)},
			Constraints: []domain.Constraint{pk("on")},
		}},
	}}}
}

func TestExhaustedAttemptsFailWithoutStrict(t *testing.T) {
	plan := &domain.Plan{PlanVersion: domain.PlanVersion, Seed: 1, Targets: []domain.Target{{Schema: "public", Table: "flags", Rows: 3}}}
	e := newTestExecutor(t, Options{MaxAttemptsRow: 3, MaxAttemptsTable: 2})

	res, err := e.Execute(context.Background(), flagSchema(), plan)
	require.Error(t, err)
	assert.True(t, domain.IsUnsupported(err))
	assert.Contains(t, err.Error(), "within 2 table attempts")

	require.NotNil(t, res)
	assert.Empty(t, res.Report.Tables)
	require.NotEmpty(t, res.Report.Unsupported)
	assert.Equal(t, "generation_failed", res.Report.Unsupported[len(res.Report.Unsupported)-1].Code)
	_, statErr := os.Stat(filepath.Join(res.RunDir, output.ReportFile))
	assert.NoError(t, statErr)
}

func TestStrictFailsOnFirstExhaustedRow(t *testing.T) {
	plan := &domain.Plan{PlanVersion: domain.PlanVersion, Seed: 1, Targets: []domain.Target{{Schema: "public", Table: "flags", Rows: 3}}}
	e := newTestExecutor(t, Options{Strict: true, MaxAttemptsRow: 3, MaxAttemptsTable: 2})

	_, err := e.Execute(context.Background(), flagSchema(), plan)
	require.Error(t, err)
	assert.True(t, domain.IsUnsupported(err))
	assert.Contains(t, err.Error(), "row 2")
	assert.NotContains(t, err.Error(), "table attempts")
}

func TestCyclicSchemaFailsBeforeGeneration(t *testing.T) {
	fk := func(name, child, parent string) domain.Constraint {
		return domain.Constraint{Kind: domain.ConstraintForeignKey, Name: name, Columns: []string{child}, ReferencedSchema: "public", ReferencedTable: parent, ReferencedColumns: []string{"id"}}
	}
	schema := &domain.DatabaseSchema{Schemas: []domain.Schema{{
		Name: "public",
		Tables: []domain.Table{
			{Name: "a", Columns: []domain.Column{col(1, "id", "int4", false), col(2, "b_id", "int4", true)}, Constraints: []domain.Constraint{pk("id"), fk("a_b", "b_id", "b")}},
			{Name: "b", Columns: []domain.Column{col(1, "id", "int4", false), col(2, "a_id", "int4", true)}, Constraints: []domain.Constraint{pk("id"), fk("b_a", "a_id", "a")}},
		},
	}}}
	plan := &domain.Plan{PlanVersion: domain.PlanVersion, Targets: []domain.Target{{Schema: "public", Table: "a", Rows: 1}}}

	res, err := newTestExecutor(t, DefaultOptions()).Execute(context.Background(), schema, plan)
	require.Error(t, err)
	assert.True(t, domain.IsUnsupported(err))
	assert.Empty(t, res.Tasks)
}

func TestUnknownGeneratorFallsBackUnlessStrict(t *testing.T) {
	plan := usersOrdersPlan()
	plan.Targets = []domain.Target{{Schema: "public", Table: "users", Rows: 3}}
	plan.Rules = append(plan.Rules, domain.Rule{
		Type: domain.RuleColumnGenerator, Schema: "public", Table: "users", Column: "age",
		Generator: &domain.GeneratorRef{ID: "primitive.nope"},
	})

	res, err := newTestExecutor(t, DefaultOptions()).Execute(context.Background(), usersOrdersSchema(), plan)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Report.UnknownGeneratorIDCount)
	assert.Equal(t, int64(1), res.Report.WarningsByCode["unknown_generator"])

	_, err = newTestExecutor(t, Options{Strict: true}).Execute(context.Background(), usersOrdersSchema(), plan)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidPlan(err))
}

func TestNullRateOnNotNullColumnIsInvalid(t *testing.T) {
	plan := usersOrdersPlan()
	plan.Rules[0].Transforms = []domain.TransformRule{{Transform: "transform.null_rate", Params: map[string]interface{}{"rate": 0.5}}}

	_, err := newTestExecutor(t, DefaultOptions()).Execute(context.Background(), usersOrdersSchema(), plan)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidPlan(err))
}

func TestFKDisableWithoutFlagWarns(t *testing.T) {
	plan := usersOrdersPlan()
	plan.Rules = append(plan.Rules, domain.Rule{Type: domain.RuleForeignKeyStrategy, Schema: "public", Table: "orders", Mode: string(domain.FKDisable)})

	res, err := newTestExecutor(t, DefaultOptions()).Execute(context.Background(), usersOrdersSchema(), plan)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Report.WarningsByCode["fk_disable_without_flag"])
}

func TestCheckWarnModeAcceptsFailures(t *testing.T) {
	schema := usersOrdersSchema()
	users := &schema.Schemas[0].Tables[0]
	users.Constraints = append(users.Constraints, domain.Constraint{Kind: domain.ConstraintCheck, Name: "users_email_check", Expression: "email = 'never'"})
	plan := usersOrdersPlan()
	plan.Rules = append(plan.Rules, domain.Rule{Type: domain.RuleConstraintPolicy, Schema: "public", Table: "users", Constraint: domain.PolicyCheck, Mode: string(domain.ModeWarn)})

	res, err := newTestExecutor(t, DefaultOptions()).Execute(context.Background(), schema, plan)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Report.WarningsByCode["check_failed_warn"])
}

func TestUnsupportedCheckUnderEnforceFails(t *testing.T) {
	schema := usersOrdersSchema()
	users := &schema.Schemas[0].Tables[0]
	users.Constraints = append(users.Constraints, domain.Constraint{Kind: domain.ConstraintCheck, Name: "weird", Expression: "length(email) > 3 OR age < 0"})

	_, err := newTestExecutor(t, DefaultOptions()).Execute(context.Background(), schema, usersOrdersPlan())
	require.Error(t, err)
	assert.True(t, domain.IsUnsupported(err))
}

func TestDeriveColumnsRunAfterInputs(t *testing.T) {
	schema := &domain.DatabaseSchema{Schemas: []domain.Schema{{
		Name: "public",
		Tables: []domain.Table{{
			Name: "people",
			Columns: []domain.Column{
				col(1, "email", "text", false),
				col(2, "name", "text", false),
			},
		}},
	}}}
	plan := &domain.Plan{
		PlanVersion: domain.PlanVersion,
		Seed:        9,
		Targets:     []domain.Target{{Schema: "public", Table: "people", Rows: 20}},
		Rules: []domain.Rule{
			{Type: domain.RuleColumnGenerator, Schema: "public", Table: "people", Column: "name", Generator: &domain.GeneratorRef{ID: "semantic.br.name"}},
			{
				Type: domain.RuleColumnGenerator, Schema: "public", Table: "people", Column: "email",
				Generator: &domain.GeneratorRef{ID: "derive.email_from_name", Params: map[string]interface{}{"input_columns": []interface{}{"name"}}},
			},
		},
	}

	res, err := newTestExecutor(t, DefaultOptions()).Execute(context.Background(), schema, plan)
	require.NoError(t, err)
	for _, email := range column(readCSV(t, filepath.Join(res.RunDir, "public.people.csv")), "email") {
		assert.Regexp(t, `^[a-z0-9.]+@example\.com$`, email)
		assert.NotRegexp(t, `^user\d+@`, email)
	}
}

func TestDeriveCycleIsInvalid(t *testing.T) {
	schema := &domain.DatabaseSchema{Schemas: []domain.Schema{{
		Name:   "public",
		Tables: []domain.Table{{Name: "t", Columns: []domain.Column{col(1, "a", "text", false), col(2, "b", "text", false)}}},
	}}}
	derive := func(column, input string) domain.Rule {
		return domain.Rule{
			Type: domain.RuleColumnGenerator, Schema: "public", Table: "t", Column: column,
			Generator: &domain.GeneratorRef{ID: "derive.email_from_name", Params: map[string]interface{}{"input_columns": []interface{}{input}}},
		}
	}
	plan := &domain.Plan{
		PlanVersion: domain.PlanVersion,
		Targets:     []domain.Target{{Schema: "public", Table: "t", Rows: 1}},
		Rules:       []domain.Rule{derive("a", "b"), derive("b", "a")},
	}

	_, err := newTestExecutor(t, DefaultOptions()).Execute(context.Background(), schema, plan)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidPlan(err))
}

func TestDefaultsAndCurrentDate(t *testing.T) {
	status := col(2, "status", "varchar", false)
	status.Default = "'active'::character varying"
	schema := &domain.DatabaseSchema{Schemas: []domain.Schema{{
		Name: "public",
		Tables: []domain.Table{{
			Name:    "accounts",
			Columns: []domain.Column{col(1, "id", "int4", false), status, col(3, "opened", "date", false)},
			Constraints: []domain.Constraint{
				pk("id"),
				{Kind: domain.ConstraintCheck, Name: "opened_past", Expression: "(opened <= CURRENT_DATE)"},
			},
		}},
	}}}
	plan := &domain.Plan{PlanVersion: domain.PlanVersion, Targets: []domain.Target{{Schema: "public", Table: "accounts", Rows: 5}}}

	res, err := newTestExecutor(t, DefaultOptions()).Execute(context.Background(), schema, plan)
	require.NoError(t, err)

	records := readCSV(t, filepath.Join(res.RunDir, "public.accounts.csv"))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, column(records, "id"))
	for _, s := range column(records, "status") {
		assert.Equal(t, "active", s)
	}
	for _, d := range column(records, "opened") {
		assert.Equal(t, "2024-01-01", d)
	}
}

func TestSQLiteExport(t *testing.T) {
	opts := DefaultOptions()
	opts.SQLiteExport = true
	res, err := newTestExecutor(t, opts).Execute(context.Background(), usersOrdersSchema(), usersOrdersPlan())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(res.RunDir, output.SQLiteFile))
	assert.NoError(t, err)
}

func TestNormalizeDefault(t *testing.T) {
	cases := map[string]string{
		"'active'::character varying": "'active'",
		"(0)::numeric":                "0",
		"now()":                       "now()",
		"('it''s'::text)":             "'it''s'",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeDefault(in), in)
	}
}
