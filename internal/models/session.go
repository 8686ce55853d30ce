package models

import "time"

type Modality string

const (
	ModalityText        Modality = "text"
	ModalityDiagram     Modality = "diagram"
	ModalityCode        Modality = "code"
	ModalityInteractive Modality = "interactive_question"
)

// LearningContent is one unit of teaching material handed to the learner.
type LearningContent struct {
	Concept  string            `json:"concept"`
	Modality Modality          `json:"modality"`
	Content  string            `json:"content"`
	Question string            `json:"question,omitempty"`
	Context  map[string]string `json:"context,omitempty"`
}

// InteractionEvent records one learner action within a session.
type InteractionEvent struct {
	ID                   int64             `json:"id"`
	SessionID            string            `json:"session_id"`
	Concept              string            `json:"concept"`
	EventType            string            `json:"event_type"`
	Response             *string           `json:"response,omitempty"`
	TimeToRespondSeconds *float64          `json:"time_to_respond_seconds,omitempty"`
	Correct              *bool             `json:"correct,omitempty"`
	Metadata             map[string]string `json:"metadata,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
}

type LearningSession struct {
	ID              string    `json:"id"`
	UserID          int64     `json:"user_id"`
	GoalID          string    `json:"goal_id"`
	GraphID         string    `json:"graph_id"`
	CurrentConcept  *string   `json:"current_concept,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	LastInteraction time.Time `json:"last_interaction"`
	Completed       bool      `json:"completed"`
}

// ── API Request/Response Types ────────────────────────────

type StartSessionRequest struct {
	GoalID string `json:"goal_id"`
}

type StartSessionResponse struct {
	SessionID    string           `json:"session_id,omitempty"`
	FirstConcept string           `json:"first_concept,omitempty"`
	Content      *LearningContent `json:"content,omitempty"`
	Progress     float64          `json:"progress"`
	Completed    bool             `json:"completed"`
	Message      string           `json:"message,omitempty"`
}

type InteractRequest struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

// InteractResponse covers the three outcomes of an interaction: stay on the
// current concept with feedback, advance to a newly unlocked concept, or
// finish the goal.
type InteractResponse struct {
	SessionID          string            `json:"session_id"`
	Completed          bool              `json:"completed,omitempty"`
	Message            string            `json:"message,omitempty"`
	CurrentConcept     string            `json:"current_concept,omitempty"`
	ConceptMastered    bool              `json:"concept_mastered,omitempty"`
	NewConcept         string            `json:"new_concept,omitempty"`
	Passed             bool              `json:"passed"`
	ReasoningQuality   float64           `json:"reasoning_quality"`
	Feedback           string            `json:"feedback,omitempty"`
	FollowUpQuestion   string            `json:"follow_up_question,omitempty"`
	AdaptationApplied  string            `json:"adaptation_applied,omitempty"`
	EvaluationDetails  map[string]string `json:"evaluation_breakdown,omitempty"`
	NextContent        *LearningContent  `json:"next_content,omitempty"`
	ProgressPercentage float64           `json:"progress_percentage"`
}

type SessionStateResponse struct {
	SessionID          string           `json:"session_id"`
	CurrentConcept     string           `json:"current_concept,omitempty"`
	Completed          bool             `json:"completed"`
	ProgressPercentage float64          `json:"progress_percentage"`
	MasteredConcepts   []string         `json:"mastered_concepts"`
	NextContent        *LearningContent `json:"next_content,omitempty"`
}
