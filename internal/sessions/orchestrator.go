package sessions

import (
	"fmt"
	"strings"

	"github.com/learnos/backend/internal/models"
)

// Orchestrator decides how to present a concept: which modality, how deep,
// and what the recall question is. Content is assembled from the concept
// node's own metadata (misconceptions, examples, transfer tests).
type Orchestrator struct {
	modalityOrder []models.Modality
}

func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		modalityOrder: []models.Modality{
			models.ModalityText,
			models.ModalityCode,
			models.ModalityInteractive,
		},
	}
}

// SelectModality picks a presentation mode from the learner's history.
// First exposure is always text. A struggling learner (several attempts,
// low confidence) gets switched to whatever the signals suggest; otherwise
// the modalities cycle so repeated attempts don't repeat the presentation.
func (o *Orchestrator) SelectModality(m *models.MasteryState, signals Signals) models.Modality {
	if m == nil || m.Attempts == 0 {
		return models.ModalityText
	}

	if m.Attempts > 2 && m.Confidence < 0.5 {
		switch {
		case signals.PrefersVisual:
			return models.ModalityDiagram
		case signals.PrefersCode:
			return models.ModalityCode
		default:
			return models.ModalityText
		}
	}

	return o.modalityOrder[m.Attempts%len(o.modalityOrder)]
}

// GenerateContent builds the learning content for one concept attempt.
func (o *Orchestrator) GenerateContent(node models.ConceptNode, m *models.MasteryState, signals Signals) models.LearningContent {
	switch o.SelectModality(m, signals) {
	case models.ModalityCode:
		return o.codeExample(node)
	case models.ModalityInteractive:
		return o.interactiveQuestion(node, m)
	case models.ModalityDiagram:
		return o.diagramContent(node)
	default:
		return o.textExplanation(node, m)
	}
}

// DepthLevel reports how deep the presentation should go: surface on first
// contact, deeper as attempts accumulate.
func (o *Orchestrator) DepthLevel(m *models.MasteryState) string {
	switch {
	case m == nil || m.Attempts == 0:
		return "surface"
	case m.Attempts < 3:
		return "medium"
	default:
		return "deep"
	}
}

func (o *Orchestrator) textExplanation(node models.ConceptNode, m *models.MasteryState) models.LearningContent {
	var parts []string
	parts = append(parts, fmt.Sprintf("# %s\n", node.Concept), "\n**Core Idea:**")

	if len(node.Prerequisites) > 0 {
		parts = append(parts, fmt.Sprintf("\nBuilds on: %s\n", strings.Join(node.Prerequisites, ", ")))
	}

	// Surface a misconception on retries, walking the list as attempts grow.
	if m != nil && m.Attempts > 0 && len(node.Misconceptions) > 0 {
		idx := m.Attempts - 1
		if idx >= len(node.Misconceptions) {
			idx = len(node.Misconceptions) - 1
		}
		parts = append(parts, fmt.Sprintf("\n**Common Misconception:** %s\n", node.Misconceptions[idx]))
	}

	if len(node.Examples) > 0 {
		parts = append(parts, fmt.Sprintf("\n**Example:** %s\n", node.Examples[0]))
	}

	return models.LearningContent{
		Concept:  node.Concept,
		Modality: models.ModalityText,
		Content:  strings.Join(parts, "\n"),
		Question: fmt.Sprintf("Explain %s in your own words. Why does it matter?", node.Concept),
		Context: map[string]string{
			"estimated_time": "3",
			"difficulty":     fmt.Sprintf("%.2f", node.DifficultyScore),
		},
	}
}

func (o *Orchestrator) codeExample(node models.ConceptNode) models.LearningContent {
	content := fmt.Sprintf("// %s implementation example", node.Concept)
	if len(node.Examples) > 0 {
		content += "\n// Work through: " + node.Examples[0]
	}

	return models.LearningContent{
		Concept:  node.Concept,
		Modality: models.ModalityCode,
		Content:  content,
		Question: "Trace through this code. What happens at each step? Modify it for a different scenario.",
		Context:  map[string]string{"language": "go"},
	}
}

func (o *Orchestrator) interactiveQuestion(node models.ConceptNode, m *models.MasteryState) models.LearningContent {
	challenge := fmt.Sprintf("Apply %s to solve a novel problem.", node.Concept)
	if len(node.TransferTests) > 0 {
		// Rotate through transfer tests by attempt so retries see new
		// challenges, deterministically.
		idx := 0
		if m != nil {
			idx = m.Attempts % len(node.TransferTests)
		}
		challenge = node.TransferTests[idx]
	}

	return models.LearningContent{
		Concept:  node.Concept,
		Modality: models.ModalityInteractive,
		Content:  fmt.Sprintf("**Challenge:** %s", challenge),
		Question: "Solve this step-by-step. Explain your reasoning.",
		Context:  map[string]string{"requires_application": "true"},
	}
}

func (o *Orchestrator) diagramContent(node models.ConceptNode) models.LearningContent {
	return models.LearningContent{
		Concept:  node.Concept,
		Modality: models.ModalityDiagram,
		Content:  fmt.Sprintf("[Visual representation of %s]", node.Concept),
		Question: "Explain what each component represents.",
		Context:  map[string]string{"visual": "true"},
	}
}
