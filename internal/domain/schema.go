package domain

import (
	"sort"
	"strings"
)

// DatabaseSchema is the canonical snapshot produced by introspection.
type DatabaseSchema struct {
	SchemaVersion     string     `json:"schema_version" yaml:"schema_version"`
	Engine            string     `json:"engine" yaml:"engine"`
	Database          string     `json:"database,omitempty" yaml:"database,omitempty"`
	Schemas           []Schema   `json:"schemas" yaml:"schemas"`
	Enums             []EnumType `json:"enums" yaml:"enums"`
	SchemaFingerprint string     `json:"schema_fingerprint,omitempty" yaml:"schema_fingerprint,omitempty"`
}

type Schema struct {
	Name   string  `json:"name" yaml:"name"`
	Tables []Table `json:"tables" yaml:"tables"`
}

type TableKind string

const (
	TableKindTable            TableKind = "table"
	TableKindPartitionedTable TableKind = "partitioned_table"
	TableKindView             TableKind = "view"
	TableKindMaterializedView TableKind = "materialized_view"
	TableKindForeignTable     TableKind = "foreign_table"
)

type Table struct {
	Name        string       `json:"name" yaml:"name"`
	Kind        TableKind    `json:"kind" yaml:"kind"`
	Comment     string       `json:"comment,omitempty" yaml:"comment,omitempty"`
	Columns     []Column     `json:"columns" yaml:"columns"`
	Constraints []Constraint `json:"constraints" yaml:"constraints"`
	Indexes     []Index      `json:"indexes" yaml:"indexes"`
}

type Column struct {
	OrdinalPosition int                  `json:"ordinal_position" yaml:"ordinal_position"`
	Name            string               `json:"name" yaml:"name"`
	ColumnType      ColumnType           `json:"column_type" yaml:"column_type"`
	IsNullable      bool                 `json:"is_nullable" yaml:"is_nullable"`
	Default         string               `json:"default,omitempty" yaml:"default,omitempty"`
	Identity        string               `json:"identity,omitempty" yaml:"identity,omitempty"`
	Generated       *GeneratedExpression `json:"generated,omitempty" yaml:"generated,omitempty"`
	Comment         string               `json:"comment,omitempty" yaml:"comment,omitempty"`
}

type ColumnType struct {
	DataType           string `json:"data_type" yaml:"data_type"`
	UDTSchema          string `json:"udt_schema" yaml:"udt_schema"`
	UDTName            string `json:"udt_name" yaml:"udt_name"`
	CharacterMaxLength *int   `json:"character_max_length,omitempty" yaml:"character_max_length,omitempty"`
	NumericPrecision   *int   `json:"numeric_precision,omitempty" yaml:"numeric_precision,omitempty"`
	NumericScale       *int   `json:"numeric_scale,omitempty" yaml:"numeric_scale,omitempty"`
	Collation          string `json:"collation,omitempty" yaml:"collation,omitempty"`
}

type GeneratedExpression struct {
	Kind       string `json:"kind" yaml:"kind"`
	Expression string `json:"expression,omitempty" yaml:"expression,omitempty"`
}

type EnumType struct {
	Schema string   `json:"schema" yaml:"schema"`
	Name   string   `json:"name" yaml:"name"`
	Labels []string `json:"labels" yaml:"labels"`
}

type ConstraintKind string

const (
	ConstraintPrimaryKey ConstraintKind = "primary_key"
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintCheck      ConstraintKind = "check"
)

// Constraint is a flattened form of the kind-tagged constraint union.
// Only the fields relevant to Kind are populated.
type Constraint struct {
	Kind              ConstraintKind `json:"kind" yaml:"kind"`
	Name              string         `json:"name,omitempty" yaml:"name,omitempty"`
	Columns           []string       `json:"columns,omitempty" yaml:"columns,omitempty"`
	Expression        string         `json:"expression,omitempty" yaml:"expression,omitempty"`
	ReferencedSchema  string         `json:"referenced_schema,omitempty" yaml:"referenced_schema,omitempty"`
	ReferencedTable   string         `json:"referenced_table,omitempty" yaml:"referenced_table,omitempty"`
	ReferencedColumns []string       `json:"referenced_columns,omitempty" yaml:"referenced_columns,omitempty"`
	OnUpdate          string         `json:"on_update,omitempty" yaml:"on_update,omitempty"`
	OnDelete          string         `json:"on_delete,omitempty" yaml:"on_delete,omitempty"`
	MatchType         string         `json:"match_type,omitempty" yaml:"match_type,omitempty"`
	IsDeferrable      bool           `json:"is_deferrable,omitempty" yaml:"is_deferrable,omitempty"`
	InitiallyDeferred bool           `json:"initially_deferred,omitempty" yaml:"initially_deferred,omitempty"`
}

type Index struct {
	Name       string `json:"name" yaml:"name"`
	IsUnique   bool   `json:"is_unique" yaml:"is_unique"`
	IsPrimary  bool   `json:"is_primary" yaml:"is_primary"`
	IsValid    bool   `json:"is_valid" yaml:"is_valid"`
	Method     string `json:"method" yaml:"method"`
	Definition string `json:"definition" yaml:"definition"`
}

// TableKey is the "schema.table" identifier used across planning and reporting.
func TableKey(schema, table string) string {
	return schema + "." + table
}

// ColumnKey is the "schema.table.column" identifier used by plan rules.
func ColumnKey(schema, table, column string) string {
	return schema + "." + table + "." + column
}

func (s *DatabaseSchema) FindTable(schema, table string) (*Table, bool) {
	for i := range s.Schemas {
		if s.Schemas[i].Name != schema {
			continue
		}
		for j := range s.Schemas[i].Tables {
			if s.Schemas[i].Tables[j].Name == table {
				return &s.Schemas[i].Tables[j], true
			}
		}
	}
	return nil, false
}

func (s *DatabaseSchema) FindEnum(schema, name string) (*EnumType, bool) {
	for i := range s.Enums {
		if s.Enums[i].Schema == schema && s.Enums[i].Name == name {
			return &s.Enums[i], true
		}
	}
	return nil, false
}

func (t *Table) FindColumn(name string) (*Column, bool) {
	for i := range t.Columns {
		if strings.EqualFold(t.Columns[i].Name, name) {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// OrderedColumns returns the table columns sorted by ordinal position.
func (t *Table) OrderedColumns() []Column {
	cols := make([]Column, len(t.Columns))
	copy(cols, t.Columns)
	sort.SliceStable(cols, func(i, j int) bool {
		return cols[i].OrdinalPosition < cols[j].OrdinalPosition
	})
	return cols
}

func (t *Table) ConstraintsOf(kind ConstraintKind) []Constraint {
	out := make([]Constraint, 0)
	for _, c := range t.Constraints {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

func (t *Table) ForeignKeys() []Constraint {
	return t.ConstraintsOf(ConstraintForeignKey)
}

// NormalizedType is the lowercased udt name, falling back to data_type.
func (c ColumnType) NormalizedType() string {
	if c.UDTName != "" {
		return strings.ToLower(c.UDTName)
	}
	return strings.ToLower(c.DataType)
}

func (c ColumnType) MaxLength() (int, bool) {
	if c.CharacterMaxLength == nil || *c.CharacterMaxLength < 0 {
		return 0, false
	}
	return *c.CharacterMaxLength, true
}

func (c ColumnType) Scale() (int, bool) {
	if c.NumericScale == nil {
		return 0, false
	}
	return *c.NumericScale, true
}

// TypeClass groups Postgres type names into the value families the generator understands.
type TypeClass int

const (
	TypeOther TypeClass = iota
	TypeInteger
	TypeNumeric
	TypeFloat
	TypeBool
	TypeText
	TypeUUID
	TypeDate
	TypeTime
	TypeTimestamp
)

func (c ColumnType) Class() TypeClass {
	switch c.NormalizedType() {
	case "int2", "int4", "int8", "smallint", "integer", "bigint", "serial", "bigserial", "smallserial":
		return TypeInteger
	case "numeric", "decimal":
		return TypeNumeric
	case "float4", "float8", "real", "double precision":
		return TypeFloat
	case "bool", "boolean":
		return TypeBool
	case "uuid":
		return TypeUUID
	case "date":
		return TypeDate
	case "time", "timetz", "time without time zone", "time with time zone":
		return TypeTime
	case "timestamp", "timestamptz", "timestamp without time zone", "timestamp with time zone":
		return TypeTimestamp
	case "text", "varchar", "bpchar", "char", "character varying", "character", "citext", "name":
		return TypeText
	}
	return TypeOther
}
