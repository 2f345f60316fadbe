// Package foreign keeps generated parent rows so child tables can reference them.
package foreign

import (
	"math/rand"
	"strings"
	"sync"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

type tableData struct {
	rows    []domain.Row
	columns map[string][]domain.Value
	byPK    map[string]domain.Row
}

// Context is an in-memory store of finished tables. Ingest is called once per
// table after it is generated; reads are safe for concurrent use.
type Context struct {
	mu     sync.RWMutex
	tables map[string]*tableData
}

func NewContext() *Context {
	return &Context{tables: make(map[string]*tableData)}
}

func key(schema, table string) string {
	return strings.ToLower(domain.TableKey(schema, table))
}

// Ingest records rows for table. Rows are indexed by primary key when the
// table has a single-column primary key.
func (c *Context) Ingest(schema string, table *domain.Table, rows []domain.Row) {
	data := &tableData{
		rows:    rows,
		columns: make(map[string][]domain.Value),
		byPK:    make(map[string]domain.Row),
	}
	pk := singlePK(table)
	for _, row := range rows {
		for _, col := range table.Columns {
			name := strings.ToLower(col.Name)
			if v, ok := row[name]; ok {
				data.columns[name] = append(data.columns[name], v)
			}
		}
		if pk != "" {
			if v, ok := row[pk]; ok {
				data.byPK[v.Key()] = row
			}
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[key(schema, table.Name)] = data
}

func singlePK(table *domain.Table) string {
	pks := table.ConstraintsOf(domain.ConstraintPrimaryKey)
	if len(pks) == 0 || len(pks[0].Columns) != 1 {
		return ""
	}
	return strings.ToLower(pks[0].Columns[0])
}

func (c *Context) table(schema, table string) (*tableData, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.tables[key(schema, table)]
	return data, ok
}

// RowCount reports how many rows were ingested for a table.
func (c *Context) RowCount(schema, table string) int {
	data, ok := c.table(schema, table)
	if !ok {
		return 0
	}
	return len(data.rows)
}

// PickRow returns a uniformly random parent row.
func (c *Context) PickRow(rng *rand.Rand, schema, table string) (domain.Row, error) {
	data, ok := c.table(schema, table)
	if !ok || len(data.rows) == 0 {
		return nil, domain.Unsupportedf("no parent rows for %s", domain.TableKey(schema, table))
	}
	return data.rows[rng.Intn(len(data.rows))], nil
}

// PickFK returns a uniformly random value of a parent column.
func (c *Context) PickFK(rng *rand.Rand, schema, table, column string) (domain.Value, error) {
	data, ok := c.table(schema, table)
	if !ok {
		return domain.Null(), domain.Unsupportedf("no parent rows for fk %s", domain.ColumnKey(schema, table, column))
	}
	values := data.columns[strings.ToLower(column)]
	if len(values) == 0 {
		return domain.Null(), domain.Unsupportedf("no parent rows for fk %s", domain.ColumnKey(schema, table, column))
	}
	return values[rng.Intn(len(values))], nil
}

// LookupParent finds the parent row whose primary key equals pk and returns
// one of its columns.
func (c *Context) LookupParent(schema, table string, pk domain.Value, column string) (domain.Value, bool) {
	data, ok := c.table(schema, table)
	if !ok {
		return domain.Null(), false
	}
	row, ok := data.byPK[pk.Key()]
	if !ok {
		return domain.Null(), false
	}
	v, ok := row[strings.ToLower(column)]
	return v, ok
}
