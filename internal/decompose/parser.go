package decompose

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/learnos/backend/internal/models"
)

const defaultConfidenceThreshold = 0.8

type decompositionPayload struct {
	Concepts []models.ConceptNode `json:"concepts"`
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// ParseGraphResponse parses and field-validates the LLM's decomposition.
// Structural graph checks (dangling prerequisites, cycles) happen later in
// BuildGraph; this stage only rejects malformed nodes.
func ParseGraphResponse(responseBody string) ([]models.ConceptNode, error) {
	cleaned := stripCodeFences(responseBody)

	var payload decompositionPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if err := validateNodes(payload.Concepts); err != nil {
		return nil, err
	}

	for i := range payload.Concepts {
		if payload.Concepts[i].ConfidenceThreshold == 0 {
			payload.Concepts[i].ConfidenceThreshold = defaultConfidenceThreshold
		}
		if payload.Concepts[i].Prerequisites == nil {
			payload.Concepts[i].Prerequisites = []string{}
		}
	}

	return payload.Concepts, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

func validateNodes(nodes []models.ConceptNode) error {
	var errs []string

	if len(nodes) == 0 {
		return &ValidationError{Errors: []string{"no concepts in decomposition"}}
	}

	for i, n := range nodes {
		cNum := i + 1

		if strings.TrimSpace(n.Concept) == "" {
			errs = append(errs, fmt.Sprintf("concept %d: empty name", cNum))
		}
		if n.DifficultyScore < 0 || n.DifficultyScore > 1 {
			errs = append(errs, fmt.Sprintf("concept %d (%s): difficulty_score %.2f outside [0, 1]", cNum, n.Concept, n.DifficultyScore))
		}
		if n.EstimatedTimeMinutes <= 0 {
			errs = append(errs, fmt.Sprintf("concept %d (%s): estimated_time_minutes %d must be positive", cNum, n.Concept, n.EstimatedTimeMinutes))
		}
		if n.ConfidenceThreshold < 0 || n.ConfidenceThreshold > 1 {
			errs = append(errs, fmt.Sprintf("concept %d (%s): confidence_threshold %.2f outside [0, 1]", cNum, n.Concept, n.ConfidenceThreshold))
		}
		for _, prereq := range n.Prerequisites {
			if strings.TrimSpace(prereq) == "" {
				errs = append(errs, fmt.Sprintf("concept %d (%s): empty prerequisite name", cNum, n.Concept))
			}
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}
