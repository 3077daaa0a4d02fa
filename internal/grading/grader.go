package grading

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/skillprobe/internal/llm"
)

// Config bounds the grading request.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns grading defaults. Temperature stays at zero so
// repeated grading of the same answer is as stable as the model allows.
func DefaultConfig() Config {
	return Config{
		MaxTokens: 1024,
	}
}

// Grader grades answers using the LLM provider.
type Grader struct {
	provider llm.Provider
	config   Config
}

// New creates a Grader with the given provider and config.
func New(provider llm.Provider, cfg Config) *Grader {
	return &Grader{provider: provider, config: cfg}
}

// Grade submits one answer for grading and applies deterministic aggregation
// to the structured draft.
func (g *Grader) Grade(ctx context.Context, in Input) (*Grade, error) {
	ctx = llm.WithPurpose(ctx, "grading")

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(in)},
		},
		Schema:      GradeSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("grading failed: %w", err)
	}

	var draft Draft
	if err := json.Unmarshal(resp.Content, &draft); err != nil {
		return nil, fmt.Errorf("failed to parse grade response: %w", err)
	}

	grade := Aggregate(draft)
	return &grade, nil
}
