package validation

import (
	"sort"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

type FKEdge struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

// FKGraphReport describes table dependencies. Exactly one of TopoOrder and
// Cycle is set.
type FKGraphReport struct {
	Nodes     []string `json:"nodes"`
	Edges     []FKEdge `json:"edges"`
	TopoOrder []string `json:"topo_order,omitempty"`
	Cycle     []string `json:"cycle,omitempty"`
}

func (r FKGraphReport) HasCycle() bool { return r.Cycle != nil }

// BuildFKGraph orders tables parents-first with Kahn's algorithm. Ready nodes
// are taken in sorted order, so the result is deterministic. A self-referencing
// table counts as a cycle.
func BuildFKGraph(schema *domain.DatabaseSchema) FKGraphReport {
	children := make(map[string]map[string]struct{})
	addNode := func(key string) {
		if _, ok := children[key]; !ok {
			children[key] = make(map[string]struct{})
		}
	}
	for _, s := range schema.Schemas {
		for _, t := range s.Tables {
			child := domain.TableKey(s.Name, t.Name)
			addNode(child)
			for _, fk := range t.ForeignKeys() {
				parent := domain.TableKey(fk.ReferencedSchema, fk.ReferencedTable)
				addNode(parent)
				children[parent][child] = struct{}{}
			}
		}
	}

	report := FKGraphReport{Nodes: make([]string, 0, len(children)), Edges: make([]FKEdge, 0)}
	inDegree := make(map[string]int, len(children))
	for node := range children {
		report.Nodes = append(report.Nodes, node)
		if _, ok := inDegree[node]; !ok {
			inDegree[node] = 0
		}
		for child := range children[node] {
			inDegree[child]++
			report.Edges = append(report.Edges, FKEdge{Parent: node, Child: child})
		}
	}
	sort.Strings(report.Nodes)
	sort.Slice(report.Edges, func(i, j int) bool {
		if report.Edges[i].Parent != report.Edges[j].Parent {
			return report.Edges[i].Parent < report.Edges[j].Parent
		}
		return report.Edges[i].Child < report.Edges[j].Child
	})

	ready := make([]string, 0)
	for _, node := range report.Nodes {
		if inDegree[node] == 0 {
			ready = append(ready, node)
		}
	}

	order := make([]string, 0, len(report.Nodes))
	for len(ready) > 0 {
		node := ready[0]
		ready = ready[1:]
		order = append(order, node)

		for child := range children[node] {
			inDegree[child]--
			if inDegree[child] == 0 {
				ready = append(ready, child)
			}
		}
		sort.Strings(ready)
	}

	if len(order) == len(report.Nodes) {
		report.TopoOrder = order
		return report
	}
	report.Cycle = make([]string, 0)
	for _, node := range report.Nodes {
		if inDegree[node] > 0 {
			report.Cycle = append(report.Cycle, node)
		}
	}
	return report
}
