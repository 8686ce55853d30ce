package decompose

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/google/uuid"
	"github.com/learnos/backend/internal/engine"
	"github.com/learnos/backend/internal/models"
)

// LLMClient is the interface both decomposer backends satisfy.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// Decomposer turns a natural-language learning goal into a validated
// concept graph.
type Decomposer struct {
	llm   LLMClient
	model string
}

func NewDecomposer() *Decomposer {
	var llm LLMClient
	model := "mock"

	if os.Getenv("USE_CLI_DECOMPOSER") == "true" {
		cliPath := os.Getenv("CLAUDE_CLI_PATH")
		if cliPath == "" {
			cliPath = "claude"
		}
		llm = NewCLIClient(cliPath)
		model = "claude-cli"
		log.Println("Decomposer using Claude CLI (local plan)")
	} else if os.Getenv("MOCK_DECOMPOSER") == "true" {
		llm = NewMockClient()
		log.Println("Decomposer using built-in concept templates")
	} else {
		model = os.Getenv("ANTHROPIC_MODEL")
		if model == "" {
			model = "claude-opus-4-5-20251101"
		}
		llm = NewAPIClient(model)
		log.Println("Decomposer using Anthropic API:", model)
	}

	return &Decomposer{llm: llm, model: model}
}

func (d *Decomposer) ModelName() string {
	return d.model
}

// Decompose generates the concept graph for a goal. The graph is validated
// before it is returned; a malformed decomposition (dangling prerequisite,
// cycle, bad field) is an error, never a stored graph.
func (d *Decomposer) Decompose(ctx context.Context, goal string) (*models.ConceptGraph, *LLMResponse, error) {
	systemPrompt := DecompositionSystemPrompt()
	userPrompt := BuildDecompositionUserPrompt(goal)

	resp, err := d.llm.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, nil, fmt.Errorf("decompose goal: %w", err)
	}

	nodes, err := ParseGraphResponse(resp.Content)
	if err != nil {
		return nil, resp, fmt.Errorf("parse decomposition: %w", err)
	}

	graph, err := BuildGraph(goal, nodes)
	if err != nil {
		return nil, resp, err
	}

	return graph, resp, nil
}

// BuildGraph assembles and validates a concept graph from parsed nodes.
func BuildGraph(goal string, nodes []models.ConceptNode) (*models.ConceptGraph, error) {
	nodeMap := make(map[string]models.ConceptNode, len(nodes))
	for _, n := range nodes {
		if _, exists := nodeMap[n.Concept]; exists {
			return nil, &engine.GraphError{Errors: []string{fmt.Sprintf("duplicate concept %q", n.Concept)}}
		}
		nodeMap[n.Concept] = n
	}

	graph := &models.ConceptGraph{
		ID:        uuid.NewString(),
		Goal:      goal,
		Nodes:     nodeMap,
		Edges:     engine.BuildEdges(nodeMap),
		CreatedAt: time.Now().UTC(),
	}

	if err := engine.ValidateGraph(graph); err != nil {
		return nil, err
	}

	return graph, nil
}

// ── APIClient — Anthropic SDK (Production) ─────────────────

type APIClient struct {
	client *anthropic.Client
	model  string
}

func NewAPIClient(model string) *APIClient {
	client := anthropic.NewClient(
		option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
	)
	return &APIClient{client: &client, model: model}
}

func (c *APIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   8192,
		Temperature: param.NewOpt(0.4),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &LLMResponse{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

func (c *APIClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("Retrying Anthropic API call in %v (attempt %d)", sleepDuration, attempt+1)
			time.Sleep(sleepDuration)
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		log.Printf("Anthropic API attempt %d failed: %v", attempt+1, err)
	}
	return nil, fmt.Errorf("anthropic API failed after retries: %w", lastErr)
}
