package decompose

import (
	"context"
	"testing"

	"github.com/learnos/backend/internal/engine"
	"github.com/learnos/backend/internal/models"
)

func TestMockDecomposeRL(t *testing.T) {
	d := &Decomposer{llm: NewMockClient(), model: "mock"}

	graph, resp, err := d.Decompose(context.Background(), "Train a reinforcement learning agent")
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}
	if resp == nil || resp.Content == "" {
		t.Error("expected raw response to be returned")
	}

	if _, ok := graph.Nodes["Q-Learning"]; !ok {
		t.Errorf("RL decomposition missing Q-Learning, got %d nodes", len(graph.Nodes))
	}

	// Every generated graph must already be valid.
	if err := engine.ValidateGraph(graph); err != nil {
		t.Errorf("mock decomposition produced invalid graph: %v", err)
	}
}

func TestMockDecomposeGeneric(t *testing.T) {
	d := &Decomposer{llm: NewMockClient(), model: "mock"}

	graph, _, err := d.Decompose(context.Background(), "Learn watercolor painting")
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}

	if _, ok := graph.Nodes["Fundamentals of Learn watercolor painting"]; !ok {
		t.Errorf("generic decomposition should name the goal, got nodes %v", nodeNames(graph.Nodes))
	}
}

func TestMockDecomposeSelectsByKeyword(t *testing.T) {
	d := &Decomposer{llm: NewMockClient(), model: "mock"}

	tests := []struct {
		goal     string
		expected string
	}{
		{"understand deep learning architectures", "Backpropagation"},
		{"get started with machine learning", "Supervised Learning"},
	}

	for _, tt := range tests {
		graph, _, err := d.Decompose(context.Background(), tt.goal)
		if err != nil {
			t.Fatalf("Decompose(%q) failed: %v", tt.goal, err)
		}
		if _, ok := graph.Nodes[tt.expected]; !ok {
			t.Errorf("goal %q: missing %q, got %v", tt.goal, tt.expected, nodeNames(graph.Nodes))
		}
	}
}

func nodeNames(nodes map[string]models.ConceptNode) []string {
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	return names
}
