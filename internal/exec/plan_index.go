package exec

import (
	"fmt"
	"strings"

	"github.com/mmrzaf/datalchemy/internal/domain"
	"github.com/mmrzaf/datalchemy/internal/generators"
	"github.com/mmrzaf/datalchemy/internal/registry"
)

// columnRule is a column_generator rule with its generator resolved and
// params checked. gen is nil when the id is unknown and the engine falls back
// to the column default.
type columnRule struct {
	generatorID string
	gen         generators.Generator
	params      generators.Params
	locale      string
	inputs      []string
	transforms  []transformStep
}

func (r *columnRule) derive() bool {
	return r.gen != nil && generators.IsDerive(r.generatorID)
}

type transformStep struct {
	id     string
	t      generators.Transform
	params generators.Params
}

type planIndex struct {
	columns        map[string]*columnRule
	checkModes     map[string]domain.ConstraintMode
	fkModes        map[string]domain.FKMode
	allowFKDisable bool
}

func columnRuleKey(schema, table, column string) string {
	return domain.ColumnKey(schema, table, strings.ToLower(column))
}

func (p *planIndex) column(schema, table, column string) *columnRule {
	return p.columns[columnRuleKey(schema, table, column)]
}

func (p *planIndex) checkMode(schema, table string) domain.ConstraintMode {
	if m, ok := p.checkModes[domain.TableKey(schema, table)]; ok {
		return m
	}
	return domain.ModeEnforce
}

func (p *planIndex) fkMode(schema, table string) domain.FKMode {
	if m, ok := p.fkModes[domain.TableKey(schema, table)]; ok {
		return m
	}
	return domain.FKRespect
}

// buildPlanIndex resolves every rule once before generation. Unknown
// generator and transform ids are InvalidPlan in strict mode and warnings
// otherwise.
func buildPlanIndex(schema *domain.DatabaseSchema, plan *domain.Plan, reg *registry.GeneratorRegistry, strict bool, report *domain.GenerationReport) (*planIndex, error) {
	idx := &planIndex{
		columns:        make(map[string]*columnRule),
		checkModes:     make(map[string]domain.ConstraintMode),
		fkModes:        make(map[string]domain.FKMode),
		allowFKDisable: plan.AllowFKDisable(),
	}

	for i := range plan.Rules {
		rule := &plan.Rules[i]
		path := fmt.Sprintf("rules[%d]", i)
		switch rule.Type {
		case domain.RuleColumnGenerator:
			cr, err := resolveColumnRule(schema, plan, rule, path, reg, strict, report)
			if err != nil {
				return nil, err
			}
			key := columnRuleKey(rule.Schema, rule.Table, rule.Column)
			if _, dup := idx.columns[key]; dup {
				return nil, domain.InvalidPlanf("%s: duplicate column_generator rule for %s", path, key)
			}
			idx.columns[key] = cr
		case domain.RuleConstraintPolicy:
			mode := domain.ConstraintMode(rule.Mode)
			switch mode {
			case domain.ModeEnforce, domain.ModeWarn, domain.ModeIgnore:
			default:
				return nil, domain.InvalidPlanf("%s.mode: unknown constraint mode '%s'", path, rule.Mode)
			}
			if rule.Constraint == domain.PolicyCheck {
				idx.checkModes[domain.TableKey(rule.Schema, rule.Table)] = mode
			}
		case domain.RuleForeignKeyStrategy:
			mode := domain.FKMode(rule.Mode)
			if mode != domain.FKRespect && mode != domain.FKDisable {
				return nil, domain.InvalidPlanf("%s.mode: unknown foreign key mode '%s'", path, rule.Mode)
			}
			idx.fkModes[domain.TableKey(rule.Schema, rule.Table)] = mode
		default:
			return nil, domain.InvalidPlanf("%s.type: unknown rule type '%s'", path, rule.Type)
		}
	}
	return idx, nil
}

func resolveColumnRule(schema *domain.DatabaseSchema, plan *domain.Plan, rule *domain.Rule, path string, reg *registry.GeneratorRegistry, strict bool, report *domain.GenerationReport) (*columnRule, error) {
	table, ok := schema.FindTable(rule.Schema, rule.Table)
	if !ok {
		return nil, domain.InvalidPlanf("%s: table %s not found", path, domain.TableKey(rule.Schema, rule.Table))
	}
	column, ok := table.FindColumn(rule.Column)
	if !ok {
		return nil, domain.InvalidPlanf("%s: column %s not found", path, domain.ColumnKey(rule.Schema, rule.Table, rule.Column))
	}
	id := rule.GeneratorID()
	if id == "" {
		return nil, domain.InvalidPlanf("%s.generator: generator is required", path)
	}

	cr := &columnRule{generatorID: id, locale: rule.GeneratorLocale()}
	if cr.locale == "" {
		cr.locale = plan.GlobalLocale()
	}

	gen, err := reg.Get(id)
	switch {
	case err != nil && strict:
		return nil, domain.InvalidPlanf("%s.generator: unknown generator id '%s'", path, id)
	case err != nil:
		report.UnknownGeneratorIDCount++
		report.AddWarning(domain.Issue{
			Code:        "unknown_generator",
			Message:     fmt.Sprintf("unknown generator id '%s', using column default", id),
			Path:        path + ".generator",
			Schema:      rule.Schema,
			Table:       rule.Table,
			Column:      column.Name,
			GeneratorID: id,
		})
	default:
		params, err := generators.ValidateParams(id, rule.GeneratorParams(), gen.Params())
		if err != nil {
			return nil, fmt.Errorf("%s.generator.params: %w", path, err)
		}
		if v, ok := gen.(generators.Validator); ok {
			if err := v.Validate(params, column); err != nil {
				return nil, fmt.Errorf("%s.generator.params: %w", path, err)
			}
		}
		cr.gen = gen
		cr.params = params
		if generators.IsDerive(id) {
			cr.inputs = generators.InputColumns(params)
		}
	}

	for j, tr := range rule.Transforms {
		tpath := fmt.Sprintf("%s.transforms[%d]", path, j)
		t, err := reg.GetTransform(tr.Transform)
		if err != nil {
			if strict {
				return nil, domain.InvalidPlanf("%s.transform: unknown transform id '%s'", tpath, tr.Transform)
			}
			report.AddWarning(domain.Issue{
				Code:    "unknown_transform",
				Message: fmt.Sprintf("unknown transform id '%s', skipped", tr.Transform),
				Path:    tpath + ".transform",
				Schema:  rule.Schema,
				Table:   rule.Table,
				Column:  column.Name,
			})
			continue
		}
		params, err := generators.ValidateParams(tr.Transform, tr.Params, t.Params())
		if err != nil {
			return nil, fmt.Errorf("%s.params: %w", tpath, err)
		}
		if v, ok := t.(generators.Validator); ok {
			if err := v.Validate(params, column); err != nil {
				return nil, fmt.Errorf("%s.params: %w", tpath, err)
			}
		}
		cr.transforms = append(cr.transforms, transformStep{id: tr.Transform, t: t, params: params})
	}
	return cr, nil
}

// normalizePlan folds legacy rule params into generator specs so the
// resolved plan records exactly what ran.
func normalizePlan(plan *domain.Plan) *domain.Plan {
	out := *plan
	out.Rules = make([]domain.Rule, len(plan.Rules))
	for i, rule := range plan.Rules {
		if rule.Type == domain.RuleColumnGenerator && rule.Generator != nil {
			rule.Generator = &domain.GeneratorRef{
				ID:     rule.Generator.ID,
				Locale: rule.Generator.Locale,
				Params: rule.GeneratorParams(),
			}
			rule.Params = nil
		}
		out.Rules[i] = rule
	}
	return &out
}
