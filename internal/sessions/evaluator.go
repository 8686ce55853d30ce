package sessions

import (
	"fmt"
	"strings"
)

// DefaultPassThreshold is the reasoning-quality score at which a concept is
// considered mastered.
const DefaultPassThreshold = 0.7

// Evaluator scores a learner's free-text response with Socratic heuristics:
// instead of grading an answer key, it looks for explanation, reasoning
// markers, and concrete examples. An LLM-based evaluator would plug in at
// the same boundary.
type Evaluator struct {
	PassThreshold float64
}

func NewEvaluator() *Evaluator {
	return &Evaluator{PassThreshold: DefaultPassThreshold}
}

// Evaluation is the outcome of scoring one response.
type Evaluation struct {
	ReasoningQuality float64
	Passed           bool
	FollowUpQuestion string
	Feedback         string
	Breakdown        map[string]string
}

var reasoningIndicators = []string{"because", "therefore", "since", "thus", "which means", "leads to", "results in"}
var exampleIndicators = []string{"example", "for instance", "such as", "like", "consider"}
var vagueTerms = []string{"thing", "stuff", "just", "basically", "simply"}

// Evaluate scores a response for one concept. questionHistory lists the
// Socratic question types already asked, so follow-ups progress instead of
// repeating.
func (e *Evaluator) Evaluate(concept, response string, questionHistory []string) Evaluation {
	quality := scoreResponse(concept, response)
	passed := quality >= e.PassThreshold

	ev := Evaluation{
		ReasoningQuality: quality,
		Passed:           passed,
		Feedback:         feedback(concept, quality, passed),
		Breakdown:        breakdown(response),
	}
	if !passed {
		ev.FollowUpQuestion = followUp(concept, quality, questionHistory)
	}
	return ev
}

// scoreResponse is a weighted blend of five signals: detail, concept
// terminology, reasoning markers, example markers, and a vagueness penalty.
func scoreResponse(concept, response string) float64 {
	if len(strings.TrimSpace(response)) < 20 {
		return 0.1
	}

	lower := strings.ToLower(response)
	words := strings.Fields(response)

	lengthScore := float64(len(words)) / 50
	if lengthScore > 1 {
		lengthScore = 1
	}

	conceptTerms := strings.Fields(strings.ToLower(concept))
	termHits := 0
	for _, term := range conceptTerms {
		if strings.Contains(lower, term) {
			termHits++
		}
	}
	terminologyScore := float64(termHits) / float64(max(1, len(conceptTerms)))

	reasoningScore := float64(countContained(lower, reasoningIndicators)) / 2
	if reasoningScore > 1 {
		reasoningScore = 1
	}

	exampleScore := float64(countContained(lower, exampleIndicators))
	if exampleScore > 1 {
		exampleScore = 1
	}

	clarityScore := 1.0 - float64(countContained(lower, vagueTerms))*0.1
	if clarityScore < 0 {
		clarityScore = 0
	}

	return lengthScore*0.15 + terminologyScore*0.25 + reasoningScore*0.25 +
		exampleScore*0.20 + clarityScore*0.15
}

// followUp picks the next Socratic question, working through explanation →
// why → what-if → transfer while dipping down to remedial prompts when the
// response was weak.
func followUp(concept string, quality float64, questionHistory []string) string {
	asked := make(map[string]bool, len(questionHistory))
	for _, q := range questionHistory {
		asked[q] = true
	}

	if !asked["explanation"] {
		return fmt.Sprintf("Explain %s in your own words, as if teaching someone unfamiliar with it.", concept)
	}
	if quality < 0.3 {
		return fmt.Sprintf("What is the single most important idea behind %s?", concept)
	}
	if !asked["why"] {
		return fmt.Sprintf("Why is %s important? What problem does it solve?", concept)
	}
	if quality < 0.5 {
		return fmt.Sprintf("Give a concrete example of %s in action.", concept)
	}
	if !asked["what_if"] {
		return fmt.Sprintf("What if we removed a key component from %s? What would break?", concept)
	}
	if !asked["transfer"] {
		return fmt.Sprintf("How would you apply %s to a completely different domain?", concept)
	}
	return fmt.Sprintf("What's a common misconception about %s, and why is it wrong?", concept)
}

func feedback(concept string, quality float64, passed bool) string {
	if passed {
		return fmt.Sprintf("Strong explanation of %s. You've demonstrated clear understanding of the core principles and their application.", concept)
	}
	switch {
	case quality < 0.3:
		return fmt.Sprintf("Your response is too brief or vague. Try to explain the core mechanism of %s in more detail.", concept)
	case quality < 0.5:
		return fmt.Sprintf("You're on the right track, but need more depth. Explain WHY %s works the way it does.", concept)
	case quality < 0.7:
		return fmt.Sprintf("Good start. To strengthen your answer, provide a concrete example showing %s in action.", concept)
	default:
		return "Close! Clarify your reasoning one more time."
	}
}

func breakdown(response string) map[string]string {
	lower := strings.ToLower(response)

	hasReasoning := "no"
	if containsAny(lower, []string{"because", "therefore", "since"}) {
		hasReasoning = "yes"
	}
	hasExamples := "no"
	if containsAny(lower, []string{"example", "for instance"}) {
		hasExamples = "yes"
	}
	depth := "detailed"
	if len(strings.Fields(response)) < 30 {
		depth = "surface"
	}
	clarity := "clear"
	if containsAny(lower, []string{"thing", "stuff"}) {
		clarity = "vague"
	}

	return map[string]string{
		"has_reasoning": hasReasoning,
		"has_examples":  hasExamples,
		"depth":         depth,
		"clarity":       clarity,
	}
}

func countContained(s string, terms []string) int {
	count := 0
	for _, t := range terms {
		if strings.Contains(s, t) {
			count++
		}
	}
	return count
}

func containsAny(s string, terms []string) bool {
	return countContained(s, terms) > 0
}
