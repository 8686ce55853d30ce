package goals

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/learnos/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateGoal(userID int64, goal string) (*models.LearningGoal, error) {
	g := &models.LearningGoal{
		ID:     uuid.NewString(),
		UserID: userID,
		Goal:   goal,
		Status: models.GoalActive,
	}

	err := s.db.QueryRow(
		`INSERT INTO learning_goals (id, user_id, goal, status, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		g.ID, g.UserID, g.Goal, g.Status, time.Now(),
	).Scan(&g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	return g, nil
}

func (s *Store) GetGoal(goalID string) (*models.LearningGoal, error) {
	var g models.LearningGoal
	err := s.db.QueryRow(
		`SELECT id, user_id, goal, graph_id, status, created_at
		 FROM learning_goals WHERE id = $1`,
		goalID,
	).Scan(&g.ID, &g.UserID, &g.Goal, &g.GraphID, &g.Status, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return &g, nil
}

func (s *Store) LinkGraph(goalID, graphID string) error {
	_, err := s.db.Exec(
		`UPDATE learning_goals SET graph_id = $1 WHERE id = $2`,
		graphID, goalID,
	)
	if err != nil {
		return fmt.Errorf("link graph: %w", err)
	}
	return nil
}

func (s *Store) UpdateGoalStatus(goalID string, status models.GoalStatus) error {
	_, err := s.db.Exec(
		`UPDATE learning_goals SET status = $1 WHERE id = $2`,
		status, goalID,
	)
	return err
}

// SaveGraph persists an immutable graph. Nodes and edges are stored as
// JSONB; the graph is never updated after this insert.
func (s *Store) SaveGraph(graph *models.ConceptGraph) error {
	nodesJSON, err := json.Marshal(graph.Nodes)
	if err != nil {
		return fmt.Errorf("marshal nodes: %w", err)
	}
	edgesJSON, err := json.Marshal(graph.Edges)
	if err != nil {
		return fmt.Errorf("marshal edges: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO concept_graphs (id, goal, nodes, edges, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		graph.ID, graph.Goal, nodesJSON, edgesJSON, graph.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	return nil
}

func (s *Store) GetGraph(graphID string) (*models.ConceptGraph, error) {
	var graph models.ConceptGraph
	var nodesJSON, edgesJSON []byte

	err := s.db.QueryRow(
		`SELECT id, goal, nodes, edges, created_at FROM concept_graphs WHERE id = $1`,
		graphID,
	).Scan(&graph.ID, &graph.Goal, &nodesJSON, &edgesJSON, &graph.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get graph: %w", err)
	}

	if err := json.Unmarshal(nodesJSON, &graph.Nodes); err != nil {
		return nil, fmt.Errorf("unmarshal nodes: %w", err)
	}
	if err := json.Unmarshal(edgesJSON, &graph.Edges); err != nil {
		return nil, fmt.Errorf("unmarshal edges: %w", err)
	}

	return &graph, nil
}
