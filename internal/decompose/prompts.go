package decompose

import "fmt"

// DecompositionSystemPrompt frames the model as a curriculum designer that
// emits strictly structured JSON.
func DecompositionSystemPrompt() string {
	return `You are an expert curriculum designer. You decompose a learner's
stated goal into the minimal set of concepts they must master, ordered by
prerequisite structure.

You respond with ONLY a JSON object — no prose, no markdown fences — in
exactly this shape:

{
  "concepts": [
    {
      "concept": "Concept Name",
      "prerequisites": ["Earlier Concept"],
      "difficulty_score": 0.4,
      "estimated_time_minutes": 25,
      "confidence_threshold": 0.8,
      "misconceptions": ["A common wrong belief about this concept"],
      "examples": ["A concrete example"],
      "transfer_tests": ["A task applying the concept to a new domain"]
    }
  ]
}

STRUCTURAL RULES:
- 5 to 12 concepts for a substantial goal; fewer for a narrow one
- Every name in any "prerequisites" list MUST appear as a "concept" entry
- Prerequisite edges must form a DAG — no concept may depend on itself,
  directly or through a chain
- At least one concept must have an empty prerequisites list
- difficulty_score is a real number in [0, 1]; foundational concepts lower,
  capstone concepts higher
- estimated_time_minutes is a positive integer, typically 15-45
- confidence_threshold is in [0, 1]; use 0.8 unless the concept is safety-
  critical to later material
- Give each concept 2-3 misconceptions, 2-3 examples, and 1-2 transfer_tests`
}

// BuildDecompositionUserPrompt asks for the decomposition of one goal.
func BuildDecompositionUserPrompt(goal string) string {
	return fmt.Sprintf(`Decompose this learning goal into a concept dependency graph:

GOAL: %s

Remember: respond with only the JSON object.`, goal)
}
