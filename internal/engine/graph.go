package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/learnos/backend/internal/models"
)

// GraphError aggregates everything wrong with a candidate graph so a
// rejected decomposition can be reported in one shot.
type GraphError struct {
	Errors []string
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("invalid concept graph: %s", strings.Join(e.Errors, "; "))
}

// ValidateGraph checks a graph at construction time. A graph is accepted
// only when every node has a non-empty name matching its map key, every
// prerequisite resolves to a node in the graph, and the prerequisite edges
// form a DAG. A dangling prerequisite would otherwise soft-lock its
// dependent forever, since the missing name can never enter the mastered
// set — so it is rejected here, not discovered mid-session.
func ValidateGraph(graph *models.ConceptGraph) error {
	var errs []string

	for name, node := range graph.Nodes {
		if name == "" {
			errs = append(errs, "empty concept name")
			continue
		}
		if node.Concept != name {
			errs = append(errs, fmt.Sprintf("node %q keyed under %q", node.Concept, name))
		}
		for _, prereq := range node.Prerequisites {
			if prereq == name {
				errs = append(errs, fmt.Sprintf("concept %q lists itself as a prerequisite", name))
				continue
			}
			if _, ok := graph.Nodes[prereq]; !ok {
				errs = append(errs, fmt.Sprintf("concept %q requires unknown prerequisite %q", name, prereq))
			}
		}
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return &GraphError{Errors: errs}
	}

	if cyclic := findCycleMembers(graph); len(cyclic) > 0 {
		return &GraphError{Errors: []string{
			fmt.Sprintf("prerequisite cycle involving: %s", strings.Join(cyclic, ", ")),
		}}
	}

	return nil
}

// findCycleMembers runs Kahn's algorithm and returns the concepts left
// unprocessed — non-empty exactly when the graph has a cycle.
func findCycleMembers(graph *models.ConceptGraph) []string {
	inDegree := make(map[string]int, len(graph.Nodes))
	dependents := make(map[string][]string)
	for name, node := range graph.Nodes {
		inDegree[name] = len(node.Prerequisites)
		for _, prereq := range node.Prerequisites {
			dependents[prereq] = append(dependents[prereq], name)
		}
	}

	var queue []string
	for name, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	processed := 0
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		processed++

		for _, dep := range dependents[name] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if processed == len(graph.Nodes) {
		return nil
	}

	var cyclic []string
	for name, deg := range inDegree {
		if deg > 0 {
			cyclic = append(cyclic, name)
		}
	}
	sort.Strings(cyclic)
	return cyclic
}

// BuildEdges derives the explicit (prerequisite, dependent) edge list from
// node prerequisites, ordered by dependent name then declared prerequisite
// order. Kept on the graph for display and debugging; nodes stay the source
// of truth.
func BuildEdges(nodes map[string]models.ConceptNode) []models.Edge {
	names := sortedNames(nodes)

	var edges []models.Edge
	for _, name := range names {
		for _, prereq := range nodes[name].Prerequisites {
			edges = append(edges, models.Edge{Prerequisite: prereq, Dependent: name})
		}
	}
	return edges
}

// DependentCounts returns, for each concept, how many other concepts list it
// as a direct prerequisite. Duplicate prerequisite entries within one node
// count once.
func DependentCounts(graph *models.ConceptGraph) map[string]int {
	counts := make(map[string]int, len(graph.Nodes))
	for name := range graph.Nodes {
		counts[name] = 0
	}
	for _, node := range graph.Nodes {
		seen := make(map[string]bool, len(node.Prerequisites))
		for _, prereq := range node.Prerequisites {
			if seen[prereq] {
				continue
			}
			seen[prereq] = true
			counts[prereq]++
		}
	}
	return counts
}

func sortedNames(nodes map[string]models.ConceptNode) []string {
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
