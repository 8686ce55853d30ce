package engine

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/learnos/backend/internal/models"
)

func node(name string, difficulty float64, prereqs ...string) models.ConceptNode {
	return models.ConceptNode{
		Concept:              name,
		Prerequisites:        prereqs,
		DifficultyScore:      difficulty,
		EstimatedTimeMinutes: 20,
		ConfidenceThreshold:  0.8,
	}
}

func graphOf(nodes ...models.ConceptNode) *models.ConceptGraph {
	m := make(map[string]models.ConceptNode, len(nodes))
	for _, n := range nodes {
		m[n.Concept] = n
	}
	return &models.ConceptGraph{
		ID:        "g-test",
		Goal:      "test goal",
		Nodes:     m,
		Edges:     BuildEdges(m),
		CreatedAt: time.Now(),
	}
}

// chainGraph is A -> B -> C with C also requiring A directly.
func chainGraph() *models.ConceptGraph {
	return graphOf(
		node("A", 0.3),
		node("B", 0.4, "A"),
		node("C", 0.5, "A", "B"),
	)
}

func masteredSet(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func TestAvailableConceptsEmptyMastery(t *testing.T) {
	e := New()
	g := chainGraph()

	available := e.AvailableConcepts(g, masteredSet())
	if !reflect.DeepEqual(available, []string{"A"}) {
		t.Errorf("available = %v, want [A]", available)
	}

	blocked := e.BlockedConcepts(g, masteredSet())
	want := map[string][]string{"B": {"A"}, "C": {"A", "B"}}
	if !reflect.DeepEqual(blocked, want) {
		t.Errorf("blocked = %v, want %v", blocked, want)
	}

	next, ok := e.SelectNextConcept(g, available, nil)
	if !ok || next != "A" {
		t.Errorf("next = %q (ok=%v), want A", next, ok)
	}

	if p := e.Progress(g, masteredSet()); p != 0 {
		t.Errorf("progress = %f, want 0", p)
	}
}

func TestAvailableConceptsPartialMastery(t *testing.T) {
	e := New()
	g := chainGraph()
	m := masteredSet("A")

	available := e.AvailableConcepts(g, m)
	if !reflect.DeepEqual(available, []string{"B"}) {
		t.Errorf("available = %v, want [B]", available)
	}

	blocked := e.BlockedConcepts(g, m)
	want := map[string][]string{"C": {"B"}}
	if !reflect.DeepEqual(blocked, want) {
		t.Errorf("blocked = %v, want %v", blocked, want)
	}

	next, ok := e.SelectNextConcept(g, available, nil)
	if !ok || next != "B" {
		t.Errorf("next = %q (ok=%v), want B", next, ok)
	}

	if p := e.Progress(g, m); math.Abs(p-100.0/3.0) > 0.01 {
		t.Errorf("progress = %f, want ~33.3", p)
	}
}

func TestAllMastered(t *testing.T) {
	e := New()
	g := chainGraph()
	m := masteredSet("A", "B", "C")

	if available := e.AvailableConcepts(g, m); len(available) != 0 {
		t.Errorf("available = %v, want empty", available)
	}
	if blocked := e.BlockedConcepts(g, m); len(blocked) != 0 {
		t.Errorf("blocked = %v, want empty", blocked)
	}
	if next, ok := e.SelectNextConcept(g, nil, nil); ok {
		t.Errorf("next = %q, want none", next)
	}
	if p := e.Progress(g, m); p != 100 {
		t.Errorf("progress = %f, want 100", p)
	}
}

func TestEmptyGraph(t *testing.T) {
	e := New()
	g := graphOf()

	if available := e.AvailableConcepts(g, masteredSet()); len(available) != 0 {
		t.Errorf("available = %v, want empty", available)
	}
	if blocked := e.BlockedConcepts(g, masteredSet()); len(blocked) != 0 {
		t.Errorf("blocked = %v, want empty", blocked)
	}
	if next, ok := e.SelectNextConcept(g, nil, nil); ok {
		t.Errorf("next = %q, want none", next)
	}
	if p := e.Progress(g, masteredSet()); p != 0 {
		t.Errorf("progress = %f, want 0 (no division by zero)", p)
	}
}

func TestSelectNextFavorsHighLeverage(t *testing.T) {
	// X: difficulty 0.2, no dependents -> score 20.
	// Y: difficulty 0.2, two dependents -> score 10. Lower wins.
	e := New()
	g := graphOf(
		node("X", 0.2),
		node("Y", 0.2),
		node("D1", 0.5, "Y"),
		node("D2", 0.5, "Y"),
	)

	next, ok := e.SelectNextConcept(g, []string{"X", "Y"}, nil)
	if !ok || next != "Y" {
		t.Errorf("next = %q (ok=%v), want Y (higher dependency count)", next, ok)
	}
}

func TestSelectNextPenalizesAttempts(t *testing.T) {
	e := New()
	g := graphOf(node("X", 0.2), node("Y", 0.2))

	// Two attempts on Y push its score from 20 to 40; X wins.
	states := []models.MasteryState{{Concept: "Y", Attempts: 2}}
	next, ok := e.SelectNextConcept(g, []string{"X", "Y"}, states)
	if !ok || next != "X" {
		t.Errorf("next = %q (ok=%v), want X (fewer attempts)", next, ok)
	}
}

func TestSelectNextTieBreaksDeterministically(t *testing.T) {
	e := New()
	g := graphOf(node("banana", 0.3), node("apple", 0.3), node("cherry", 0.3))
	available := []string{"cherry", "banana", "apple"}

	first, _ := e.SelectNextConcept(g, available, nil)
	for i := 0; i < 10; i++ {
		got, _ := e.SelectNextConcept(g, available, nil)
		if got != first {
			t.Fatalf("selection not deterministic: %q then %q", first, got)
		}
	}
	if first != "apple" {
		t.Errorf("tie broke to %q, want apple (name order)", first)
	}
}

func TestSelectNextRespectsWeights(t *testing.T) {
	g := graphOf(node("easy", 0.1), node("hard", 0.9), node("dep", 0.5, "hard"))

	// Default weights: easy wins (10 vs 90-5=85).
	next, _ := New().SelectNextConcept(g, []string{"easy", "hard"}, nil)
	if next != "easy" {
		t.Errorf("default weights: next = %q, want easy", next)
	}

	// Crank the dependents weight: hard now unblocks dep cheaply enough to win.
	e := NewWithWeights(SelectionWeights{Difficulty: 100, Attempts: 10, Dependents: 100})
	next, _ = e.SelectNextConcept(g, []string{"easy", "hard"}, nil)
	if next != "hard" {
		t.Errorf("dependents-heavy weights: next = %q, want hard", next)
	}
}

func TestSelectNextStaysWithinAvailable(t *testing.T) {
	e := New()
	g := chainGraph()

	available := e.AvailableConcepts(g, masteredSet())
	next, ok := e.SelectNextConcept(g, available, nil)
	if !ok {
		t.Fatal("expected a selection")
	}
	found := false
	for _, a := range available {
		if a == next {
			found = true
		}
	}
	if !found {
		t.Errorf("selected %q outside available set %v", next, available)
	}
}

func TestPartitionProperty(t *testing.T) {
	e := New()
	g := graphOf(
		node("A", 0.2),
		node("B", 0.3, "A"),
		node("C", 0.4, "A"),
		node("D", 0.5, "B", "C"),
		node("E", 0.6, "D"),
	)

	masterySets := []map[string]bool{
		masteredSet(),
		masteredSet("A"),
		masteredSet("A", "B"),
		masteredSet("A", "B", "C"),
		masteredSet("A", "B", "C", "D"),
		masteredSet("A", "B", "C", "D", "E"),
	}

	for _, m := range masterySets {
		available := e.AvailableConcepts(g, m)
		blocked := e.BlockedConcepts(g, m)

		for _, a := range available {
			if _, isBlocked := blocked[a]; isBlocked {
				t.Errorf("mastered=%v: %q both available and blocked", m, a)
			}
		}

		total := len(available) + len(blocked)
		for name := range g.Nodes {
			if m[name] {
				total++
			}
		}
		if total != len(g.Nodes) {
			t.Errorf("mastered=%v: partition covers %d of %d concepts", m, total, len(g.Nodes))
		}
	}
}

func TestAvailabilityMonotonic(t *testing.T) {
	e := New()
	g := graphOf(
		node("A", 0.2),
		node("B", 0.3, "A"),
		node("C", 0.4, "B"),
	)

	small := masteredSet("A")
	large := masteredSet("A", "B")

	availLarge := make(map[string]bool)
	for _, a := range e.AvailableConcepts(g, large) {
		availLarge[a] = true
	}

	// Anything available under the smaller set stays available under the
	// larger one unless it was itself mastered.
	for _, a := range e.AvailableConcepts(g, small) {
		if large[a] {
			continue
		}
		if !availLarge[a] {
			t.Errorf("%q lost availability when mastery grew", a)
		}
	}
}

func TestAvailableIdempotent(t *testing.T) {
	e := New()
	g := chainGraph()
	m := masteredSet("A")

	first := e.AvailableConcepts(g, m)
	second := e.AvailableConcepts(g, m)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated calls differ: %v vs %v", first, second)
	}
}

func TestValidatePrerequisites(t *testing.T) {
	e := New()
	g := chainGraph()

	ok, missing := e.ValidatePrerequisites(g, "C", masteredSet("A"))
	if ok {
		t.Error("C should not validate with only A mastered")
	}
	if !reflect.DeepEqual(missing, []string{"B"}) {
		t.Errorf("missing = %v, want [B]", missing)
	}

	ok, missing = e.ValidatePrerequisites(g, "C", masteredSet("A", "B"))
	if !ok || len(missing) != 0 {
		t.Errorf("C should validate with A and B mastered, got ok=%v missing=%v", ok, missing)
	}

	// Unknown concept is a lookup miss, not a fault.
	ok, missing = e.ValidatePrerequisites(g, "Z", masteredSet())
	if ok || missing != nil {
		t.Errorf("unknown concept: got ok=%v missing=%v, want false/nil", ok, missing)
	}
}

func TestConceptMetadata(t *testing.T) {
	e := New()
	g := chainGraph()

	got, ok := e.ConceptMetadata(g, "B")
	if !ok || got.Concept != "B" || got.DifficultyScore != 0.4 {
		t.Errorf("metadata for B = %+v (ok=%v)", got, ok)
	}

	if _, ok := e.ConceptMetadata(g, "missing"); ok {
		t.Error("metadata lookup for unknown concept should miss")
	}
}

func TestMasteredSet(t *testing.T) {
	states := []models.MasteryState{
		{Concept: "A", Mastered: true},
		{Concept: "B", Mastered: false, Attempts: 3},
		{Concept: "C", Mastered: true},
	}
	got := MasteredSet(states)
	if !got["A"] || got["B"] || !got["C"] {
		t.Errorf("MasteredSet = %v", got)
	}
}
