package sessions

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

func (s *Store) CreateSession(userID int64, goalID, graphID, firstConcept string) (*models.LearningSession, error) {
	sess := &models.LearningSession{
		ID:      uuid.NewString(),
		UserID:  userID,
		GoalID:  goalID,
		GraphID: graphID,
	}
	if firstConcept != "" {
		sess.CurrentConcept = &firstConcept
	}

	err := s.db.QueryRow(
		`INSERT INTO learning_sessions (id, user_id, goal_id, graph_id, current_concept)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING started_at, last_interaction`,
		sess.ID, sess.UserID, sess.GoalID, sess.GraphID, sess.CurrentConcept,
	).Scan(&sess.StartedAt, &sess.LastInteraction)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

func (s *Store) GetSession(sessionID string) (*models.LearningSession, error) {
	var sess models.LearningSession
	err := s.db.QueryRow(
		`SELECT id, user_id, goal_id, graph_id, current_concept, started_at, last_interaction, completed
		 FROM learning_sessions WHERE id = $1`,
		sessionID,
	).Scan(&sess.ID, &sess.UserID, &sess.GoalID, &sess.GraphID, &sess.CurrentConcept,
		&sess.StartedAt, &sess.LastInteraction, &sess.Completed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

// UpdateSession advances the session pointer. currentConcept nil marks the
// session complete.
func (s *Store) UpdateSession(sessionID string, currentConcept *string, completed bool) error {
	_, err := s.db.Exec(
		`UPDATE learning_sessions
		 SET current_concept = $1, completed = $2, last_interaction = $3
		 WHERE id = $4`,
		currentConcept, completed, time.Now(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func (s *Store) AddInteraction(ev *models.InteractionEvent) error {
	var metadataJSON []byte
	if ev.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(ev.Metadata)
		if err != nil {
			return fmt.Errorf("marshal interaction metadata: %w", err)
		}
	}

	err := s.db.QueryRow(
		`INSERT INTO interaction_events (session_id, concept, event_type, response, time_to_respond_seconds, correct, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		ev.SessionID, ev.Concept, ev.EventType, ev.Response, ev.TimeToRespondSeconds, ev.Correct, metadataJSON,
	).Scan(&ev.ID, &ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("add interaction: %w", err)
	}
	return nil
}

// ListInteractions returns a session's events oldest first.
func (s *Store) ListInteractions(sessionID string) ([]models.InteractionEvent, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, concept, event_type, response, time_to_respond_seconds, correct, metadata, created_at
		 FROM interaction_events
		 WHERE session_id = $1
		 ORDER BY created_at, id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	defer rows.Close()

	var events []models.InteractionEvent
	for rows.Next() {
		var ev models.InteractionEvent
		var metadataJSON []byte
		if err := rows.Scan(&ev.ID, &ev.SessionID, &ev.Concept, &ev.EventType, &ev.Response,
			&ev.TimeToRespondSeconds, &ev.Correct, &metadataJSON, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &ev.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal interaction metadata: %w", err)
			}
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// LatestSessionForGoal returns the most recently active session for a
// (user, goal) pair, or nil when none exists. Used for engagement reporting.
func (s *Store) LatestSessionForGoal(userID int64, goalID string) (*models.LearningSession, error) {
	var sess models.LearningSession
	err := s.db.QueryRow(
		`SELECT id, user_id, goal_id, graph_id, current_concept, started_at, last_interaction, completed
		 FROM learning_sessions
		 WHERE user_id = $1 AND goal_id = $2
		 ORDER BY last_interaction DESC
		 LIMIT 1`,
		userID, goalID,
	).Scan(&sess.ID, &sess.UserID, &sess.GoalID, &sess.GraphID, &sess.CurrentConcept,
		&sess.StartedAt, &sess.LastInteraction, &sess.Completed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest session: %w", err)
	}
	return &sess, nil
}
