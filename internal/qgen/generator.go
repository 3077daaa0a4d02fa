package qgen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/skillprobe/internal/llm"
)

// Config bounds the drafting request.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns drafting defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   512,
		Temperature: 0.7,
	}
}

// Generator drafts questions using the LLM provider.
type Generator struct {
	provider llm.Provider
	config   Config
}

// New creates a Generator with the given provider and config.
func New(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, config: cfg}
}

// Draft produces a single question for the given input.
func (g *Generator) Draft(ctx context.Context, in DraftInput) (*Question, error) {
	ctx = llm.WithPurpose(ctx, "question-gen")

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(in)},
		},
		Schema:      QuestionSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("question draft failed: %w", err)
	}

	var q Question
	if err := json.Unmarshal(resp.Content, &q); err != nil {
		return nil, fmt.Errorf("failed to parse question response: %w", err)
	}

	// Some models mislabel the skill in structured output; the request is
	// authoritative, so correct it in place rather than failing the turn.
	if q.Skill != in.Skill {
		q.Skill = in.Skill
	}
	if q.Difficulty < 1 || q.Difficulty > 5 {
		q.Difficulty = in.Difficulty
	}

	return &q, nil
}
