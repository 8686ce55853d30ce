package models

type ConceptStatus string

const (
	StatusMastered  ConceptStatus = "mastered"
	StatusAvailable ConceptStatus = "available"
	StatusBlocked   ConceptStatus = "blocked"
)

type ConceptDetail struct {
	Concept       string        `json:"concept"`
	Status        ConceptStatus `json:"status"`
	Confidence    float64       `json:"confidence"`
	Attempts      int           `json:"attempts"`
	Difficulty    float64       `json:"difficulty"`
	EstimatedTime int           `json:"estimated_time"`
}

type ProgressResponse struct {
	Goal               string              `json:"goal"`
	ProgressPercentage float64             `json:"progress_percentage"`
	MasteredConcepts   []string            `json:"mastered_concepts"`
	AvailableConcepts  []string            `json:"available_concepts"`
	BlockedConcepts    map[string][]string `json:"blocked_concepts"`
	EngagementScore    float64             `json:"engagement_score"`
	ConceptDetails     []ConceptDetail     `json:"concept_details"`
	TotalConcepts      int                 `json:"total_concepts"`
	NextConcept        string              `json:"next_concept,omitempty"`
}
