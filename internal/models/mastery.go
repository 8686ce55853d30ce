package models

import "time"

// MasteryState tracks one learner's standing on one concept within a goal.
// At most one live record per (user_id, goal_id, concept).
type MasteryState struct {
	UserID        int64      `json:"user_id"`
	GoalID        string     `json:"goal_id"`
	Concept       string     `json:"concept"`
	Confidence    float64    `json:"confidence"` // latest evaluation score, 0.0 - 1.0
	Attempts      int        `json:"attempts"`
	Mastered      bool       `json:"mastered"`
	LastAttempted *time.Time `json:"last_attempted,omitempty"`
	MasteredAt    *time.Time `json:"mastered_at,omitempty"`
}

// NewMasteryState returns the lazy-init record for a concept the learner
// has not interacted with yet.
func NewMasteryState(userID int64, goalID, concept string) *MasteryState {
	return &MasteryState{
		UserID:  userID,
		GoalID:  goalID,
		Concept: concept,
	}
}

// ApplyEvaluation advances the mastery state machine for one evaluated
// response. Attempts only grow, confidence is overwritten with the latest
// score, and mastered flips true once the score meets the threshold —
// a mastered record never reverts.
func (m *MasteryState) ApplyEvaluation(score float64, threshold float64, now time.Time) {
	m.Attempts++
	m.Confidence = score
	m.LastAttempted = &now

	if !m.Mastered && score >= threshold {
		m.Mastered = true
		m.MasteredAt = &now
	}
}
