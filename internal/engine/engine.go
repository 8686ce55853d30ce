// Package engine computes derived views over a concept graph and a
// learner's mastery snapshot: which concepts are open, which are blocked and
// why, what to teach next, and how far along the goal is. Every operation is
// a pure function of its inputs, so calls are safe from concurrent requests
// as long as each receives an immutable graph and a consistent mastery
// snapshot.
package engine

import (
	"sort"

	"github.com/learnos/backend/internal/models"
)

// SelectionWeights parameterize the next-concept score. Lower scores win, so
// positive weights push a concept later and the dependents weight pulls
// high-leverage concepts earlier.
type SelectionWeights struct {
	Difficulty float64
	Attempts   float64
	Dependents float64
}

// DefaultWeights favor easy, unattempted concepts that unblock the most
// downstream work.
func DefaultWeights() SelectionWeights {
	return SelectionWeights{Difficulty: 100, Attempts: 10, Dependents: 5}
}

type Engine struct {
	weights SelectionWeights
}

func New() *Engine {
	return &Engine{weights: DefaultWeights()}
}

func NewWithWeights(w SelectionWeights) *Engine {
	return &Engine{weights: w}
}

// MasteredSet extracts the set of mastered concept names from a mastery
// snapshot.
func MasteredSet(states []models.MasteryState) map[string]bool {
	mastered := make(map[string]bool)
	for _, s := range states {
		if s.Mastered {
			mastered[s.Concept] = true
		}
	}
	return mastered
}

// AvailableConcepts returns every unmastered concept whose prerequisites are
// all mastered, sorted by name. A concept with no prerequisites is always
// available until mastered.
func (e *Engine) AvailableConcepts(graph *models.ConceptGraph, mastered map[string]bool) []string {
	available := make([]string, 0)
	for name, node := range graph.Nodes {
		if mastered[name] {
			continue
		}
		if prerequisitesMet(node, mastered) {
			available = append(available, name)
		}
	}
	sort.Strings(available)
	return available
}

// BlockedConcepts returns every unmastered concept with at least one unmet
// prerequisite, mapped to its unmet prerequisites in declared order. Blocked
// and available are disjoint; together with the mastered set they cover the
// whole graph.
func (e *Engine) BlockedConcepts(graph *models.ConceptGraph, mastered map[string]bool) map[string][]string {
	blocked := make(map[string][]string)
	for name, node := range graph.Nodes {
		if mastered[name] {
			continue
		}
		var unmet []string
		for _, prereq := range node.Prerequisites {
			if !mastered[prereq] {
				unmet = append(unmet, prereq)
			}
		}
		if len(unmet) > 0 {
			blocked[name] = unmet
		}
	}
	return blocked
}

// SelectNextConcept picks the concept to teach next from the available set.
// Returns false when nothing is available, which callers treat as goal
// complete. Score = difficulty*Wd + attempts*Wa - dependents*Wp; lowest
// wins. The sort is stable over name-sorted input, so equal scores resolve
// deterministically.
func (e *Engine) SelectNextConcept(graph *models.ConceptGraph, available []string, states []models.MasteryState) (string, bool) {
	if len(available) == 0 {
		return "", false
	}

	attempts := make(map[string]int, len(states))
	for _, s := range states {
		attempts[s.Concept] = s.Attempts
	}
	dependents := DependentCounts(graph)

	candidates := make([]string, len(available))
	copy(candidates, available)
	sort.Strings(candidates)

	scores := make(map[string]float64, len(candidates))
	for _, name := range candidates {
		node := graph.Nodes[name]
		scores[name] = node.DifficultyScore*e.weights.Difficulty +
			float64(attempts[name])*e.weights.Attempts -
			float64(dependents[name])*e.weights.Dependents
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return scores[candidates[i]] < scores[candidates[j]]
	})

	return candidates[0], true
}

// Progress returns the mastered share of the graph as a percentage. An empty
// graph reports 0 rather than dividing by zero.
func (e *Engine) Progress(graph *models.ConceptGraph, mastered map[string]bool) float64 {
	if len(graph.Nodes) == 0 {
		return 0
	}
	count := 0
	for name := range graph.Nodes {
		if mastered[name] {
			count++
		}
	}
	return float64(count) / float64(len(graph.Nodes)) * 100
}

// ValidatePrerequisites reports whether a concept's prerequisites are all
// mastered, along with the missing ones in declared order. An unknown
// concept yields (false, nil) — a lookup miss, not a fault.
func (e *Engine) ValidatePrerequisites(graph *models.ConceptGraph, concept string, mastered map[string]bool) (bool, []string) {
	node, ok := graph.Nodes[concept]
	if !ok {
		return false, nil
	}
	var missing []string
	for _, prereq := range node.Prerequisites {
		if !mastered[prereq] {
			missing = append(missing, prereq)
		}
	}
	return len(missing) == 0, missing
}

// ConceptMetadata looks up the full node for a concept.
func (e *Engine) ConceptMetadata(graph *models.ConceptGraph, concept string) (models.ConceptNode, bool) {
	node, ok := graph.Nodes[concept]
	return node, ok
}

func prerequisitesMet(node models.ConceptNode, mastered map[string]bool) bool {
	for _, prereq := range node.Prerequisites {
		if !mastered[prereq] {
			return false
		}
	}
	return true
}
