// Package mastery owns MasteryState persistence. It is the only writer of
// mastery records; the engine only ever sees snapshots read through List.
package mastery

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/learnos/backend/internal/models"
)

type Store struct {
	db *sql.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, locks: make(map[string]*sync.Mutex)}
}

// keyLock returns the mutex serializing writes for one
// (user, goal, concept) key. Two racing evaluations of the same concept
// would otherwise interleave their read-modify-write and lose an attempt
// increment. Locks are never released from the map; the population is
// bounded by concepts actually attempted.
func (s *Store) keyLock(userID int64, goalID, concept string) *sync.Mutex {
	key := fmt.Sprintf("%d:%s:%s", userID, goalID, concept)

	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[key] = l
	return l
}

// List returns the full mastery snapshot for a (user, goal) pair. Callers
// pass this to the engine once per computation and never re-read mid-flight.
func (s *Store) List(userID int64, goalID string) ([]models.MasteryState, error) {
	rows, err := s.db.Query(
		`SELECT user_id, goal_id, concept, confidence, attempts, mastered, last_attempted, mastered_at
		 FROM mastery_states
		 WHERE user_id = $1 AND goal_id = $2
		 ORDER BY concept`,
		userID, goalID,
	)
	if err != nil {
		return nil, fmt.Errorf("list mastery states: %w", err)
	}
	defer rows.Close()

	var states []models.MasteryState
	for rows.Next() {
		var m models.MasteryState
		if err := rows.Scan(&m.UserID, &m.GoalID, &m.Concept, &m.Confidence, &m.Attempts,
			&m.Mastered, &m.LastAttempted, &m.MasteredAt); err != nil {
			return nil, fmt.Errorf("scan mastery state: %w", err)
		}
		states = append(states, m)
	}
	return states, rows.Err()
}

// Get returns the record for one concept, or nil if the learner has never
// interacted with it.
func (s *Store) Get(userID int64, goalID, concept string) (*models.MasteryState, error) {
	var m models.MasteryState
	err := s.db.QueryRow(
		`SELECT user_id, goal_id, concept, confidence, attempts, mastered, last_attempted, mastered_at
		 FROM mastery_states
		 WHERE user_id = $1 AND goal_id = $2 AND concept = $3`,
		userID, goalID, concept,
	).Scan(&m.UserID, &m.GoalID, &m.Concept, &m.Confidence, &m.Attempts,
		&m.Mastered, &m.LastAttempted, &m.MasteredAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mastery state: %w", err)
	}
	return &m, nil
}

// EnsureExists lazily creates the default record for a concept on first
// contact. Safe to call repeatedly.
func (s *Store) EnsureExists(userID int64, goalID, concept string) error {
	_, err := s.db.Exec(
		`INSERT INTO mastery_states (user_id, goal_id, concept)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, goal_id, concept) DO NOTHING`,
		userID, goalID, concept,
	)
	if err != nil {
		return fmt.Errorf("ensure mastery state: %w", err)
	}
	return nil
}

// ApplyEvaluation runs the mastery state machine for one evaluated response
// and persists the result, serialized per key.
func (s *Store) ApplyEvaluation(userID int64, goalID, concept string, score, threshold float64) (*models.MasteryState, error) {
	lock := s.keyLock(userID, goalID, concept)
	lock.Lock()
	defer lock.Unlock()

	m, err := s.Get(userID, goalID, concept)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = models.NewMasteryState(userID, goalID, concept)
	}

	m.ApplyEvaluation(score, threshold, time.Now().UTC())

	if err := s.upsert(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) upsert(m *models.MasteryState) error {
	_, err := s.db.Exec(
		`INSERT INTO mastery_states (user_id, goal_id, concept, confidence, attempts, mastered, last_attempted, mastered_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id, goal_id, concept) DO UPDATE SET
		   confidence = EXCLUDED.confidence,
		   attempts = EXCLUDED.attempts,
		   mastered = mastery_states.mastered OR EXCLUDED.mastered,
		   last_attempted = EXCLUDED.last_attempted,
		   mastered_at = COALESCE(mastery_states.mastered_at, EXCLUDED.mastered_at)`,
		m.UserID, m.GoalID, m.Concept, m.Confidence, m.Attempts, m.Mastered, m.LastAttempted, m.MasteredAt,
	)
	if err != nil {
		return fmt.Errorf("upsert mastery state: %w", err)
	}
	return nil
}
