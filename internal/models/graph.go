package models

import "time"

// ConceptNode is one learnable unit in a concept graph.
type ConceptNode struct {
	Concept              string   `json:"concept"`
	Prerequisites        []string `json:"prerequisites"`
	DifficultyScore      float64  `json:"difficulty_score"`       // 0.0 - 1.0
	EstimatedTimeMinutes int      `json:"estimated_time_minutes"`
	ConfidenceThreshold  float64  `json:"confidence_threshold"` // 0.0 - 1.0, default 0.8
	Misconceptions       []string `json:"misconceptions"`
	Examples             []string `json:"examples"`
	TransferTests        []string `json:"transfer_tests"`
}

// Edge is a (prerequisite, dependent) pair, kept explicitly for display.
type Edge struct {
	Prerequisite string `json:"prerequisite"`
	Dependent    string `json:"dependent"`
}

// ConceptGraph is the prerequisite DAG decomposed from a learning goal.
// Immutable once built and persisted.
type ConceptGraph struct {
	ID        string                 `json:"id"`
	Goal      string                 `json:"goal"`
	Nodes     map[string]ConceptNode `json:"nodes"`
	Edges     []Edge                 `json:"edges"`
	CreatedAt time.Time              `json:"created_at"`
}

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalArchived  GoalStatus = "archived"
)

type LearningGoal struct {
	ID        string     `json:"id"`
	UserID    int64      `json:"user_id"`
	Goal      string     `json:"goal"`
	GraphID   *string    `json:"graph_id,omitempty"`
	Status    GoalStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// ── API Request/Response Types ────────────────────────────

type CreateGoalRequest struct {
	Goal string `json:"goal"`
}

type CreateGoalResponse struct {
	GoalID   string       `json:"goal_id"`
	GraphID  string       `json:"graph_id"`
	Graph    ConceptGraph `json:"graph"`
	Concepts []string     `json:"concepts"`
}

type GraphResponse struct {
	Graph ConceptGraph `json:"graph"`
	Goal  string       `json:"goal"`
}
