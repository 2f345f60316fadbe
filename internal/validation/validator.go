package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mmrzaf/datalchemy/internal/domain"
	"github.com/mmrzaf/datalchemy/internal/generators"
	"github.com/mmrzaf/datalchemy/internal/registry"
)

type Validator struct {
	genRegistry *registry.GeneratorRegistry
}

func NewValidator(genRegistry *registry.GeneratorRegistry) *Validator {
	return &Validator{genRegistry: genRegistry}
}

// PathError is a plan validation failure at a JSON-path-like location such as
// "rules[2].generator".
type PathError struct {
	Path string
	Msg  string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %s: %s", domain.ErrInvalidPlan, e.Path, e.Msg)
}

func (e *PathError) Unwrap() error { return domain.ErrInvalidPlan }

func pathErr(path, format string, args ...interface{}) error {
	return &PathError{Path: path, Msg: fmt.Sprintf(format, args...)}
}

// ErrorPath returns the path of a PathError in err's chain, or "".
func ErrorPath(err error) string {
	var pe *PathError
	if errors.As(err, &pe) {
		return pe.Path
	}
	return ""
}

// identifier validation: allow simple SQL identifiers only (prevents injection via table/column names).
var (
	identRe       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reservedWords = map[string]struct{}{
		"add": {}, "all": {}, "alter": {}, "and": {}, "any": {}, "as": {},
		"asc": {}, "between": {}, "by": {}, "case": {}, "check": {},
		"column": {}, "constraint": {}, "create": {}, "cross": {}, "current_date": {},
		"current_time": {}, "current_timestamp": {}, "database": {}, "default": {}, "delete": {},
		"desc": {}, "distinct": {}, "do": {}, "drop": {}, "else": {},
		"end": {}, "except": {}, "exists": {}, "false": {}, "for": {},
		"foreign": {}, "from": {}, "full": {}, "grant": {}, "group": {},
		"having": {}, "in": {}, "index": {}, "inner": {}, "insert": {},
		"intersect": {}, "into": {}, "is": {}, "join": {}, "key": {},
		"left": {}, "like": {}, "limit": {}, "natural": {}, "not": {},
		"null": {}, "offset": {}, "on": {}, "or": {}, "order": {},
		"outer": {}, "primary": {}, "references": {}, "returning": {}, "revoke": {},
		"right": {}, "schema": {}, "select": {}, "set": {}, "table": {},
		"then": {}, "to": {}, "true": {}, "truncate": {}, "union": {},
		"unique": {}, "update": {}, "user": {}, "using": {}, "values": {},
		"view": {}, "when": {}, "where": {}, "with": {},
	}
)

// IsValidIdentifier accepts unquoted, non-reserved SQL identifiers.
func IsValidIdentifier(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if !identRe.MatchString(s) {
		return false
	}
	if _, ok := reservedWords[strings.ToLower(s)]; ok {
		return false
	}
	return true
}

// ValidatePlan checks plan against schema. Unknown generator and transform ids
// are only rejected when strict; otherwise the engine falls back and warns.
func (v *Validator) ValidatePlan(schema *domain.DatabaseSchema, plan *domain.Plan, strict bool) error {
	if plan == nil {
		return pathErr("plan", "plan is required")
	}
	if schema == nil {
		return pathErr("schema", "schema is required")
	}
	if plan.PlanVersion != domain.PlanVersion {
		return pathErr("plan_version", "unsupported plan version %q", plan.PlanVersion)
	}
	if plan.SchemaRef.Engine != "" && schema.Engine != "" && !strings.EqualFold(plan.SchemaRef.Engine, schema.Engine) {
		return pathErr("schema_ref.engine", "plan targets %s but schema is %s", plan.SchemaRef.Engine, schema.Engine)
	}
	if plan.SchemaRef.SchemaFingerprint != "" && schema.SchemaFingerprint != "" && plan.SchemaRef.SchemaFingerprint != schema.SchemaFingerprint {
		return pathErr("schema_ref.schema_fingerprint", "fingerprint does not match the schema")
	}

	for i, target := range plan.Targets {
		path := fmt.Sprintf("targets[%d]", i)
		if _, ok := schema.FindTable(target.Schema, target.Table); !ok {
			return pathErr(path, "table %s not found", domain.TableKey(target.Schema, target.Table))
		}
		if target.Rows < 0 {
			return pathErr(path+".rows", "rows must be >= 0, got %d", target.Rows)
		}
	}

	seen := make(map[string]int)
	for i := range plan.Rules {
		rule := &plan.Rules[i]
		path := fmt.Sprintf("rules[%d]", i)
		table, ok := schema.FindTable(rule.Schema, rule.Table)
		if !ok {
			return pathErr(path, "table %s not found", domain.TableKey(rule.Schema, rule.Table))
		}
		var err error
		switch rule.Type {
		case domain.RuleColumnGenerator:
			key := strings.ToLower(domain.ColumnKey(rule.Schema, rule.Table, rule.Column))
			if prev, dup := seen[key]; dup {
				return pathErr(path+".column", "column already has a generator at rules[%d]", prev)
			}
			seen[key] = i
			err = v.validateColumnRule(plan, schema, table, rule, path, strict)
		case domain.RuleConstraintPolicy:
			err = validatePolicy(rule, path)
		case domain.RuleForeignKeyStrategy:
			if domain.FKMode(rule.Mode) != domain.FKRespect && domain.FKMode(rule.Mode) != domain.FKDisable {
				err = pathErr(path+".mode", "invalid foreign key mode %q", rule.Mode)
			}
		default:
			err = pathErr(path+".type", "unknown rule type %q", rule.Type)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func validatePolicy(rule *domain.Rule, path string) error {
	switch rule.Constraint {
	case domain.PolicyCheck, domain.PolicyUnique, domain.PolicyNotNull, domain.PolicyPrimaryKey, domain.PolicyForeignKey:
	default:
		return pathErr(path+".constraint", "unknown constraint %q", rule.Constraint)
	}
	switch domain.ConstraintMode(rule.Mode) {
	case domain.ModeEnforce, domain.ModeWarn, domain.ModeIgnore:
		return nil
	}
	return pathErr(path+".mode", "invalid constraint mode %q", rule.Mode)
}

func (v *Validator) validateColumnRule(plan *domain.Plan, schema *domain.DatabaseSchema, table *domain.Table, rule *domain.Rule, path string, strict bool) error {
	column, ok := table.FindColumn(rule.Column)
	if !ok {
		return pathErr(path+".column", "column %s not found in %s", rule.Column, domain.TableKey(rule.Schema, rule.Table))
	}
	id := rule.GeneratorID()
	if id == "" {
		return pathErr(path+".generator", "generator is required")
	}
	gen, err := v.genRegistry.Get(id)
	if err != nil {
		if strict {
			return pathErr(path+".generator", "unknown generator %q", id)
		}
	} else {
		if err := validateGenerator(gen, plan, schema, table, column, rule, path); err != nil {
			return err
		}
	}
	for j, tr := range rule.Transforms {
		tpath := fmt.Sprintf("%s.transforms[%d]", path, j)
		t, err := v.genRegistry.GetTransform(tr.Transform)
		if err != nil {
			if strict {
				return pathErr(tpath+".transform", "unknown transform %q", tr.Transform)
			}
			continue
		}
		params, err := generators.ValidateParams(tr.Transform, tr.Params, t.Params())
		if err != nil {
			return pathErr(tpath+".params", "%s", stripKind(err))
		}
		if val, ok := t.(generators.Validator); ok {
			if err := val.Validate(params, column); err != nil {
				return pathErr(tpath+".params", "%s", stripKind(err))
			}
		}
	}
	return nil
}

func validateGenerator(gen generators.Generator, plan *domain.Plan, schema *domain.DatabaseSchema, table *domain.Table, column *domain.Column, rule *domain.Rule, path string) error {
	id := gen.ID()
	params, err := generators.ValidateParams(id, rule.GeneratorParams(), gen.Params())
	if err != nil {
		return pathErr(path+".generator.params", "%s", stripKind(err))
	}
	if val, ok := gen.(generators.Validator); ok {
		if err := val.Validate(params, column); err != nil {
			return pathErr(path+".generator.params", "%s", stripKind(err))
		}
	}
	locale := rule.GeneratorLocale()
	if locale == "" {
		locale = plan.GlobalLocale()
	}
	if la, ok := gen.(generators.LocaleAware); ok && !la.SupportsLocale(locale) {
		return pathErr(path+".generator.locale", "%s does not support locale %q", id, locale)
	}
	if generators.IsDerive(id) {
		for k, input := range generators.InputColumns(params) {
			if _, ok := table.FindColumn(input); !ok {
				return pathErr(fmt.Sprintf("%s.generator.params.input_columns[%d]", path, k), "column %s not found", input)
			}
		}
	}
	if id == "derive.parent_value" {
		ps, _ := params.String("parent_schema")
		pt, _ := params.String("parent_table")
		pc, _ := params.String("parent_column")
		parent, ok := schema.FindTable(ps, pt)
		if !ok {
			return pathErr(path+".generator.params.parent_table", "table %s not found", domain.TableKey(ps, pt))
		}
		if _, ok := parent.FindColumn(pc); !ok {
			return pathErr(path+".generator.params.parent_column", "column %s not found in %s", pc, domain.TableKey(ps, pt))
		}
	}
	if id == "derive.fk" {
		if _, _, ok := generators.ReferencedColumn(table.ForeignKeys(), column.Name); !ok {
			return pathErr(path+".generator", "column %s is not part of a foreign key", column.Name)
		}
	}
	return nil
}

// stripKind drops the "invalid plan: " prefix so path errors do not repeat it.
func stripKind(err error) string {
	return strings.TrimPrefix(err.Error(), domain.ErrInvalidPlan.Error()+": ")
}
