package sessions

import (
	"strings"
	"testing"
)

func TestEvaluateShortResponseFloors(t *testing.T) {
	e := NewEvaluator()

	ev := e.Evaluate("Q-Learning", "idk", nil)

	if ev.ReasoningQuality != 0.1 {
		t.Errorf("expected floor score 0.1, got %.2f", ev.ReasoningQuality)
	}
	if ev.Passed {
		t.Error("short response should not pass")
	}
	if ev.FollowUpQuestion == "" {
		t.Error("failing response should get a follow-up question")
	}
}

func TestEvaluateStrongResponsePasses(t *testing.T) {
	e := NewEvaluator()

	response := "Q-Learning works because the agent updates its Q values from experienced rewards, " +
		"therefore it converges toward the optimal policy without a model of the environment. " +
		"For example, a robot learning to navigate a maze updates its table after each move, " +
		"which means early random exploration gradually becomes directed behavior, and since " +
		"the update rule bootstraps from the next state's best value, learning propagates backwards."

	ev := e.Evaluate("Q-Learning", response, nil)

	if !ev.Passed {
		t.Errorf("expected pass, got quality %.2f", ev.ReasoningQuality)
	}
	if ev.FollowUpQuestion != "" {
		t.Error("passing response should not get a follow-up")
	}
	if !strings.Contains(ev.Feedback, "Q-Learning") {
		t.Errorf("feedback should mention the concept, got %q", ev.Feedback)
	}
}

func TestEvaluateVagueResponsePenalized(t *testing.T) {
	precise := "The value function estimates expected return because future rewards are discounted, " +
		"therefore the agent can compare states before acting on them."
	vague := "The thing basically just does stuff with the states, it simply sort of handles " +
		"the values somehow and the stuff works out."

	ps := scoreResponse("Value Functions", precise)
	vs := scoreResponse("Value Functions", vague)

	if vs >= ps {
		t.Errorf("vague response (%.2f) should score below precise response (%.2f)", vs, ps)
	}
}

func TestFollowUpProgression(t *testing.T) {
	tests := []struct {
		name    string
		quality float64
		history []string
		want    string
	}{
		{"first ask is explanation", 0.6, nil, "Explain"},
		{"weak answer drops to core idea", 0.2, []string{"explanation"}, "single most important"},
		{"decent answer moves to why", 0.6, []string{"explanation"}, "Why is"},
		{"middling answer asks for example", 0.45, []string{"explanation", "why"}, "concrete example"},
		{"good answer escalates to what-if", 0.6, []string{"explanation", "why"}, "What if"},
		{"then transfer", 0.6, []string{"explanation", "why", "what_if"}, "different domain"},
		{"exhausted history asks misconception", 0.6, []string{"explanation", "why", "what_if", "transfer"}, "misconception"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := followUp("Policy Gradients", tt.quality, tt.history)
			if !strings.Contains(got, tt.want) {
				t.Errorf("followUp(%v, %.2f) = %q, want substring %q", tt.history, tt.quality, got, tt.want)
			}
		})
	}
}

func TestBreakdownFlags(t *testing.T) {
	b := breakdown("It works because the agent explores. For instance, epsilon-greedy picks " +
		"random actions occasionally so the estimates keep improving over time across states.")

	if b["has_reasoning"] != "yes" {
		t.Errorf("expected reasoning detected, got %q", b["has_reasoning"])
	}
	if b["has_examples"] != "yes" {
		t.Errorf("expected examples detected, got %q", b["has_examples"])
	}
	if b["clarity"] != "clear" {
		t.Errorf("expected clear, got %q", b["clarity"])
	}

	b = breakdown("stuff happens")
	if b["depth"] != "surface" {
		t.Errorf("expected surface depth, got %q", b["depth"])
	}
	if b["clarity"] != "vague" {
		t.Errorf("expected vague, got %q", b["clarity"])
	}
}
