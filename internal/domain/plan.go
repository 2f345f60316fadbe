package domain

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

const PlanVersion = "0.1"

type Plan struct {
	PlanVersion      string            `json:"plan_version" yaml:"plan_version"`
	Seed             uint64            `json:"seed" yaml:"seed"`
	SchemaRef        SchemaRef         `json:"schema_ref" yaml:"schema_ref"`
	Global           *PlanGlobal       `json:"global,omitempty" yaml:"global,omitempty"`
	Targets          []Target          `json:"targets" yaml:"targets"`
	Rules            []Rule            `json:"rules" yaml:"rules"`
	RulesUnsupported []UnsupportedRule `json:"rules_unsupported,omitempty" yaml:"rules_unsupported,omitempty"`
	Options          *PlanOptions      `json:"options,omitempty" yaml:"options,omitempty"`
}

type SchemaRef struct {
	SchemaVersion     string `json:"schema_version" yaml:"schema_version"`
	SchemaFingerprint string `json:"schema_fingerprint,omitempty" yaml:"schema_fingerprint,omitempty"`
	Engine            string `json:"engine" yaml:"engine"`
}

type PlanGlobal struct {
	Locale string `json:"locale,omitempty" yaml:"locale,omitempty"`
}

type PlanOptions struct {
	AllowFKDisable      *bool `json:"allow_fk_disable,omitempty" yaml:"allow_fk_disable,omitempty"`
	Strict              *bool `json:"strict,omitempty" yaml:"strict,omitempty"`
	AutoGenerateParents *bool `json:"auto_generate_parents,omitempty" yaml:"auto_generate_parents,omitempty"`
}

type Target struct {
	Schema   string          `json:"schema" yaml:"schema"`
	Table    string          `json:"table" yaml:"table"`
	Rows     int64           `json:"rows" yaml:"rows"`
	Strategy *TargetStrategy `json:"strategy,omitempty" yaml:"strategy,omitempty"`
}

type TargetStrategy struct {
	InsertOrder string `json:"insert_order,omitempty" yaml:"insert_order,omitempty"`
	BatchSize   int    `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`
}

type RuleType string

const (
	RuleColumnGenerator    RuleType = "column_generator"
	RuleConstraintPolicy   RuleType = "constraint_policy"
	RuleForeignKeyStrategy RuleType = "foreign_key_strategy"
)

type PolicyKind string

const (
	PolicyCheck      PolicyKind = "check"
	PolicyUnique     PolicyKind = "unique"
	PolicyNotNull    PolicyKind = "not_null"
	PolicyPrimaryKey PolicyKind = "primary_key"
	PolicyForeignKey PolicyKind = "foreign_key"
)

type ConstraintMode string

const (
	ModeEnforce ConstraintMode = "enforce"
	ModeWarn    ConstraintMode = "warn"
	ModeIgnore  ConstraintMode = "ignore"
)

type FKMode string

const (
	FKRespect FKMode = "respect"
	FKDisable FKMode = "disable"
)

// Rule is a flattened form of the type-tagged rule union.
// Mode holds a ConstraintMode for constraint_policy and an FKMode for
// foreign_key_strategy.
type Rule struct {
	Type       RuleType               `json:"type" yaml:"type"`
	Schema     string                 `json:"schema" yaml:"schema"`
	Table      string                 `json:"table" yaml:"table"`
	Column     string                 `json:"column,omitempty" yaml:"column,omitempty"`
	Generator  *GeneratorRef          `json:"generator,omitempty" yaml:"generator,omitempty"`
	Params     map[string]interface{} `json:"params,omitempty" yaml:"params,omitempty"`
	Transforms []TransformRule        `json:"transforms,omitempty" yaml:"transforms,omitempty"`
	Constraint PolicyKind             `json:"constraint,omitempty" yaml:"constraint,omitempty"`
	Mode       string                 `json:"mode,omitempty" yaml:"mode,omitempty"`
}

type TransformRule struct {
	Transform string                 `json:"transform" yaml:"transform"`
	Params    map[string]interface{} `json:"params,omitempty" yaml:"params,omitempty"`
}

type UnsupportedRule struct {
	Description string         `json:"description" yaml:"description"`
	Reason      string         `json:"reason" yaml:"reason"`
	Reference   *RuleReference `json:"reference,omitempty" yaml:"reference,omitempty"`
}

type RuleReference struct {
	Schema string `json:"schema" yaml:"schema"`
	Table  string `json:"table" yaml:"table"`
	Column string `json:"column,omitempty" yaml:"column,omitempty"`
}

// GeneratorRef accepts either a bare generator id or a full {id, locale, params} spec.
type GeneratorRef struct {
	ID     string                 `json:"id" yaml:"id"`
	Locale string                 `json:"locale,omitempty" yaml:"locale,omitempty"`
	Params map[string]interface{} `json:"params,omitempty" yaml:"params,omitempty"`
}

type generatorSpec GeneratorRef

func (g *GeneratorRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*g = GeneratorRef{ID: id}
		return nil
	}
	var spec generatorSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return fmt.Errorf("generator must be a string id or an object: %w", err)
	}
	*g = GeneratorRef(spec)
	return nil
}

func (g *GeneratorRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*g = GeneratorRef{ID: node.Value}
		return nil
	}
	var spec generatorSpec
	if err := node.Decode(&spec); err != nil {
		return fmt.Errorf("generator must be a string id or a mapping: %w", err)
	}
	*g = GeneratorRef(spec)
	return nil
}

// GeneratorID returns the rule's generator id or "" for non-generator rules.
func (r *Rule) GeneratorID() string {
	if r.Generator == nil {
		return ""
	}
	return r.Generator.ID
}

// GeneratorParams prefers generator.params over the legacy rule-level params.
func (r *Rule) GeneratorParams() map[string]interface{} {
	if r.Generator != nil && r.Generator.Params != nil {
		return r.Generator.Params
	}
	return r.Params
}

func (r *Rule) GeneratorLocale() string {
	if r.Generator == nil {
		return ""
	}
	return r.Generator.Locale
}

func (p *Plan) Strict() (bool, bool) {
	if p.Options == nil || p.Options.Strict == nil {
		return false, false
	}
	return *p.Options.Strict, true
}

func (p *Plan) AllowFKDisable() bool {
	return p.Options != nil && p.Options.AllowFKDisable != nil && *p.Options.AllowFKDisable
}

func (p *Plan) AutoGenerateParents() (bool, bool) {
	if p.Options == nil || p.Options.AutoGenerateParents == nil {
		return false, false
	}
	return *p.Options.AutoGenerateParents, true
}

func (p *Plan) GlobalLocale() string {
	if p.Global == nil {
		return ""
	}
	return p.Global.Locale
}
