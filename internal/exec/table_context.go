package exec

import (
	"sort"
	"strings"

	"github.com/mmrzaf/datalchemy/internal/checks"
	"github.com/mmrzaf/datalchemy/internal/domain"
)

// tableContext is built once per table and read-only during generation.
type tableContext struct {
	schema  string
	key     string
	table   *domain.Table
	columns []domain.Column
	// order is the column population order: plain columns by ordinal, then
	// derive columns after their inputs.
	order []*domain.Column

	primaryKeys   [][]string
	uniques       [][]string
	uniqueColumns map[string]bool
	fkColumns     map[string]bool
	checks        []domain.Constraint
	fks           []domain.Constraint
	bounds        map[string]checks.Bounds
	currentDate   map[string]struct{}
	emailColumns  map[string]struct{}
	enums         map[string][]string

	checkMode domain.ConstraintMode
	fkMode    domain.FKMode
}

func newTableContext(db *domain.DatabaseSchema, schema string, table *domain.Table, idx *planIndex) (*tableContext, error) {
	tc := &tableContext{
		schema:        schema,
		key:           domain.TableKey(schema, table.Name),
		table:         table,
		columns:       table.OrderedColumns(),
		uniqueColumns: make(map[string]bool),
		fkColumns:     make(map[string]bool),
		enums:         make(map[string][]string),
		checkMode:     idx.checkMode(schema, table.Name),
		fkMode:        idx.fkMode(schema, table.Name),
	}

	var expressions []string
	for _, c := range table.Constraints {
		switch c.Kind {
		case domain.ConstraintPrimaryKey:
			tc.primaryKeys = append(tc.primaryKeys, lowerAll(c.Columns))
			markAll(tc.uniqueColumns, c.Columns)
		case domain.ConstraintUnique:
			tc.uniques = append(tc.uniques, lowerAll(c.Columns))
			markAll(tc.uniqueColumns, c.Columns)
		case domain.ConstraintCheck:
			tc.checks = append(tc.checks, c)
			expressions = append(expressions, c.Expression)
		case domain.ConstraintForeignKey:
			if c.ReferencedSchema == "" {
				c.ReferencedSchema = schema
			}
			tc.fks = append(tc.fks, c)
			markAll(tc.fkColumns, c.Columns)
		}
	}

	if tc.checkMode != domain.ModeIgnore {
		tc.bounds = checks.ExtractBounds(expressions)
	} else {
		tc.bounds = map[string]checks.Bounds{}
	}
	tc.currentDate = checks.CurrentDateColumns(expressions)
	tc.emailColumns = checks.EmailColumns(expressions)

	for i := range tc.columns {
		ct := tc.columns[i].ColumnType
		if e, ok := db.FindEnum(ct.UDTSchema, ct.UDTName); ok {
			tc.enums[strings.ToLower(tc.columns[i].Name)] = e.Labels
		}
	}

	order, err := columnOrder(tc, idx)
	if err != nil {
		return nil, err
	}
	tc.order = order
	return tc, nil
}

func lowerAll(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = strings.ToLower(c)
	}
	return out
}

func markAll(set map[string]bool, cols []string) {
	for _, c := range cols {
		set[strings.ToLower(c)] = true
	}
}

// columnOrder puts derive columns after the columns they read. Derive columns
// are sorted topologically over input_columns with ties broken by ordinal
// position then name.
func columnOrder(tc *tableContext, idx *planIndex) ([]*domain.Column, error) {
	var order, derived []*domain.Column
	for i := range tc.columns {
		col := &tc.columns[i]
		if r := idx.column(tc.schema, tc.table.Name, col.Name); r != nil && r.derive() {
			derived = append(derived, col)
			continue
		}
		order = append(order, col)
	}
	if len(derived) == 0 {
		return order, nil
	}

	byName := make(map[string]*domain.Column, len(derived))
	indegree := make(map[string]int, len(derived))
	for _, col := range derived {
		name := strings.ToLower(col.Name)
		byName[name] = col
		indegree[name] = 0
	}
	dependents := make(map[string][]string)
	for _, col := range derived {
		name := strings.ToLower(col.Name)
		for _, input := range idx.column(tc.schema, tc.table.Name, col.Name).inputs {
			in := strings.ToLower(input)
			if _, ok := tc.table.FindColumn(in); !ok {
				return nil, domain.InvalidPlanf("input column '%s' not found for %s", input, domain.ColumnKey(tc.schema, tc.table.Name, col.Name))
			}
			if _, ok := indegree[in]; ok {
				indegree[name]++
				dependents[in] = append(dependents[in], name)
			}
		}
	}

	var ready []*domain.Column
	for name, d := range indegree {
		if d == 0 {
			ready = append(ready, byName[name])
		}
	}
	emitted := 0
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool {
			if ready[i].OrdinalPosition != ready[j].OrdinalPosition {
				return ready[i].OrdinalPosition < ready[j].OrdinalPosition
			}
			return strings.ToLower(ready[i].Name) < strings.ToLower(ready[j].Name)
		})
		col := ready[0]
		ready = ready[1:]
		order = append(order, col)
		emitted++
		for _, child := range dependents[strings.ToLower(col.Name)] {
			indegree[child]--
			if indegree[child] == 0 {
				ready = append(ready, byName[child])
			}
		}
	}
	if emitted != len(derived) {
		return nil, domain.InvalidPlanf("cyclic derive dependencies in %s", tc.key)
	}
	return order, nil
}

// uniqueSet tracks composite keys seen for one PK or UNIQUE constraint.
// Rows with a null column are exempt from UNIQUE but not from PK.
type uniqueSet struct {
	columns []string
	primary bool
	seen    map[string]struct{}
}

func (tc *tableContext) newUniqueSets() []*uniqueSet {
	sets := make([]*uniqueSet, 0, len(tc.primaryKeys)+len(tc.uniques))
	for _, cols := range tc.primaryKeys {
		sets = append(sets, &uniqueSet{columns: cols, primary: true, seen: make(map[string]struct{})})
	}
	for _, cols := range tc.uniques {
		sets = append(sets, &uniqueSet{columns: cols, seen: make(map[string]struct{})})
	}
	return sets
}

func (s *uniqueSet) key(row domain.Row) (string, bool) {
	parts := make([]string, len(s.columns))
	for i, c := range s.columns {
		v := row[c]
		if v.IsNull() && !s.primary {
			return "", false
		}
		parts[i] = v.Key()
	}
	return strings.Join(parts, "\x1f"), true
}

// admitUnique records the row's keys only if none of them collide.
func admitUnique(sets []*uniqueSet, row domain.Row) error {
	keys := make([]string, len(sets))
	tracked := make([]bool, len(sets))
	for i, s := range sets {
		k, ok := s.key(row)
		if !ok {
			continue
		}
		if _, dup := s.seen[k]; dup {
			return domain.Unsupportedf("duplicate key for columns %s", strings.Join(s.columns, ", "))
		}
		keys[i], tracked[i] = k, true
	}
	for i, s := range sets {
		if tracked[i] {
			s.seen[keys[i]] = struct{}{}
		}
	}
	return nil
}

func (tc *tableContext) columnKey(col *domain.Column) string {
	return domain.ColumnKey(tc.schema, tc.table.Name, col.Name)
}
