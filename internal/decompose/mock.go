package decompose

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/learnos/backend/internal/models"
)

// MockClient serves canned decompositions for local development, keyed off
// the goal text in the prompt. No network, no key.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	goal := strings.ToLower(userPrompt)

	var concepts []models.ConceptNode
	switch {
	case strings.Contains(goal, "reinforcement learning") || strings.Contains(goal, "rl agent"):
		concepts = rlConcepts()
	case strings.Contains(goal, "neural network") || strings.Contains(goal, "deep learning"):
		concepts = deepLearningConcepts()
	case strings.Contains(goal, "machine learning") || strings.Contains(goal, " ml"):
		concepts = mlConcepts()
	default:
		concepts = genericConcepts(extractGoal(userPrompt))
	}

	body, err := json.Marshal(decompositionPayload{Concepts: concepts})
	if err != nil {
		return nil, err
	}

	return &LLMResponse{
		Content:      string(body),
		PromptTokens: 400,
		OutputTokens: 1200,
	}, nil
}

// extractGoal pulls the goal line back out of the user prompt for the
// generic template.
func extractGoal(userPrompt string) string {
	for _, line := range strings.Split(userPrompt, "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "GOAL:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return "the goal"
}

func rlConcepts() []models.ConceptNode {
	return []models.ConceptNode{
		{
			Concept:              "Markov Decision Process",
			Prerequisites:        []string{},
			DifficultyScore:      0.3,
			EstimatedTimeMinutes: 20,
			ConfidenceThreshold:  0.8,
			Misconceptions: []string{
				"MDP assumes full observability",
				"States must be discrete",
				"Reward always comes from environment",
			},
			Examples: []string{
				"Grid world navigation",
				"Robot arm control",
				"Chess game states",
			},
			TransferTests: []string{
				"Design MDP for elevator scheduling",
				"Identify states for autonomous driving",
			},
		},
		{
			Concept:              "Value Functions",
			Prerequisites:        []string{"Markov Decision Process"},
			DifficultyScore:      0.4,
			EstimatedTimeMinutes: 25,
			ConfidenceThreshold:  0.8,
			Misconceptions: []string{
				"Value is immediate reward",
				"Q-value and V-value are the same",
				"Values don't depend on policy",
			},
			Examples: []string{
				"V(s) in grid world",
				"Q(s,a) for action selection",
				"Optimal vs. arbitrary policy values",
			},
			TransferTests: []string{
				"Calculate V* for simple MDP",
				"Explain why Q* enables optimal action selection",
			},
		},
		{
			Concept:              "Bellman Equations",
			Prerequisites:        []string{"Value Functions"},
			DifficultyScore:      0.5,
			EstimatedTimeMinutes: 30,
			ConfidenceThreshold:  0.85,
			Misconceptions: []string{
				"Bellman equation is only for deterministic transitions",
				"Expectation is over states, not actions",
				"Discount factor is optional",
			},
			Examples: []string{
				"Bellman expectation equation derivation",
				"Bellman optimality equation",
				"Iterative value calculation",
			},
			TransferTests: []string{
				"Derive Bellman for custom MDP",
				"Explain role of discount factor with examples",
			},
		},
		{
			Concept:              "Q-Learning",
			Prerequisites:        []string{"Bellman Equations"},
			DifficultyScore:      0.6,
			EstimatedTimeMinutes: 35,
			ConfidenceThreshold:  0.85,
			Misconceptions: []string{
				"Q-learning requires model of environment",
				"Learning rate should be constant",
				"Q-learning converges without exploration",
			},
			Examples: []string{
				"Q-table update rule",
				"Epsilon-greedy exploration",
				"Simple grid world implementation",
			},
			TransferTests: []string{
				"Implement Q-learning for cliff walking",
				"Explain exploration-exploitation tradeoff",
			},
		},
		{
			Concept:              "Neural Networks",
			Prerequisites:        []string{},
			DifficultyScore:      0.4,
			EstimatedTimeMinutes: 30,
			ConfidenceThreshold:  0.8,
			Misconceptions: []string{
				"More layers always better",
				"Activation functions are optional",
				"Backpropagation requires calculus knowledge",
			},
			Examples: []string{
				"Multi-layer perceptron",
				"Forward and backward pass",
				"Common activation functions",
			},
			TransferTests: []string{
				"Design network for binary classification",
				"Explain vanishing gradient problem",
			},
		},
		{
			Concept:              "Deep Q-Networks",
			Prerequisites:        []string{"Q-Learning", "Neural Networks"},
			DifficultyScore:      0.7,
			EstimatedTimeMinutes: 40,
			ConfidenceThreshold:  0.8,
			Misconceptions: []string{
				"DQN just replaces Q-table with neural net",
				"Experience replay slows learning",
				"Target network is for stability, not accuracy",
			},
			Examples: []string{
				"Atari game playing",
				"Experience replay buffer",
				"Target network updates",
			},
			TransferTests: []string{
				"Design DQN architecture for CartPole",
				"Explain why vanilla Q-learning fails with function approximation",
			},
		},
		{
			Concept:              "Policy Gradients",
			Prerequisites:        []string{"Value Functions"},
			DifficultyScore:      0.7,
			EstimatedTimeMinutes: 45,
			ConfidenceThreshold:  0.85,
			Misconceptions: []string{
				"Policy gradient methods don't use value functions",
				"REINFORCE has low variance",
				"Baseline must be value function",
			},
			Examples: []string{
				"REINFORCE algorithm",
				"Actor-critic methods",
				"Advantage estimation",
			},
			TransferTests: []string{
				"Derive policy gradient theorem",
				"Implement REINFORCE for simple task",
			},
		},
	}
}

func deepLearningConcepts() []models.ConceptNode {
	return []models.ConceptNode{
		{
			Concept:              "Neural Network Fundamentals",
			Prerequisites:        []string{},
			DifficultyScore:      0.3,
			EstimatedTimeMinutes: 25,
			ConfidenceThreshold:  0.8,
			Misconceptions:       []string{"Networks memorize, not generalize", "Deeper is always better"},
			Examples:             []string{"Perceptron", "Activation functions", "Forward pass"},
			TransferTests:        []string{"Build 2-layer network from scratch"},
		},
		{
			Concept:              "Backpropagation",
			Prerequisites:        []string{"Neural Network Fundamentals"},
			DifficultyScore:      0.5,
			EstimatedTimeMinutes: 35,
			ConfidenceThreshold:  0.85,
			Misconceptions:       []string{"Backprop requires symbolic differentiation", "All gradients same magnitude"},
			Examples:             []string{"Chain rule", "Gradient computation", "Weight updates"},
			TransferTests:        []string{"Compute gradients for simple network manually"},
		},
	}
}

func mlConcepts() []models.ConceptNode {
	return []models.ConceptNode{
		{
			Concept:              "Supervised Learning",
			Prerequisites:        []string{},
			DifficultyScore:      0.2,
			EstimatedTimeMinutes: 20,
			ConfidenceThreshold:  0.75,
			Misconceptions:       []string{"More data always better", "Complex models always overfit"},
			Examples:             []string{"Classification", "Regression", "Training data"},
			TransferTests:        []string{"Identify supervised tasks in real scenarios"},
		},
	}
}

func genericConcepts(goal string) []models.ConceptNode {
	return []models.ConceptNode{
		{
			Concept:              "Fundamentals of " + goal,
			Prerequisites:        []string{},
			DifficultyScore:      0.3,
			EstimatedTimeMinutes: 20,
			ConfidenceThreshold:  0.8,
			Misconceptions:       []string{"Common beginner mistakes"},
			Examples:             []string{"Core definitions", "Basic principles"},
			TransferTests:        []string{"Apply concepts to new scenario"},
		},
	}
}
