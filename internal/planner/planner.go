// Package planner resolves plan targets into an ordered list of table tasks.
package planner

import (
	"sort"
	"strings"

	"github.com/mmrzaf/datalchemy/internal/domain"
	"github.com/mmrzaf/datalchemy/internal/validation"
)

// PlanTables merges targets, optionally pulls in FK parents, and orders the
// result parents-first.
//
// Duplicate targets keep the largest row count. With autoGenerateParents, an
// untargeted parent gets the largest count among its children, propagated
// transitively; explicit targets keep their own count.
func PlanTables(schema *domain.DatabaseSchema, plan *domain.Plan, autoGenerateParents bool) ([]domain.GenerationTask, error) {
	rows := make(map[string]int64)
	explicit := make(map[string]bool)
	for _, t := range plan.Targets {
		key := domain.TableKey(t.Schema, t.Table)
		if cur, ok := rows[key]; !ok || t.Rows > cur {
			rows[key] = t.Rows
		}
		explicit[key] = true
	}

	if autoGenerateParents {
		propagateToParents(schema, rows, explicit)
	}

	report := validation.BuildFKGraph(schema)
	if report.HasCycle() {
		return nil, domain.Unsupportedf("cyclic FK graph")
	}

	tasks := make([]domain.GenerationTask, 0, len(rows))
	for _, key := range report.TopoOrder {
		n, ok := rows[key]
		if !ok {
			continue
		}
		schemaName, tableName := splitKey(key)
		tasks = append(tasks, domain.GenerationTask{Schema: schemaName, Table: tableName, Rows: n})
	}
	if len(tasks) == 0 {
		return nil, domain.InvalidPlanf("no generation targets resolved")
	}
	return tasks, nil
}

func propagateToParents(schema *domain.DatabaseSchema, rows map[string]int64, explicit map[string]bool) {
	parents := parentMap(schema)

	queue := make([]string, 0, len(rows))
	for key := range rows {
		queue = append(queue, key)
	}
	sort.Strings(queue)

	for len(queue) > 0 {
		child := queue[0]
		queue = queue[1:]
		for _, parent := range parents[child] {
			if explicit[parent] || parent == child {
				continue
			}
			if cur, ok := rows[parent]; !ok || rows[child] > cur {
				rows[parent] = rows[child]
				queue = append(queue, parent)
			}
		}
	}
}

// parentMap lists each table's FK parents in sorted order.
func parentMap(schema *domain.DatabaseSchema) map[string][]string {
	out := make(map[string][]string)
	for _, s := range schema.Schemas {
		for _, t := range s.Tables {
			child := domain.TableKey(s.Name, t.Name)
			seen := make(map[string]bool)
			for _, fk := range t.ForeignKeys() {
				parent := domain.TableKey(fk.ReferencedSchema, fk.ReferencedTable)
				if !seen[parent] {
					seen[parent] = true
					out[child] = append(out[child], parent)
				}
			}
			sort.Strings(out[child])
		}
	}
	return out
}

func splitKey(key string) (string, string) {
	schema, table, _ := strings.Cut(key, ".")
	return schema, table
}
