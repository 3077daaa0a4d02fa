// Package simulate produces synthetic candidate answers so interviews can be
// exercised end to end without a human in the loop.
package simulate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/skillprobe/internal/llm"
)

const systemPrompt = `You are role-playing a job candidate in a technical interview.

Rules:
- Answer the question as the candidate persona would, in first person.
- Keep the answer under 150 words, conversational but technical.
- Stay consistent with the answers already given this session.
- Do not mention that you are simulated or role-playing.`

// answerSchema keeps the simulated answer structured so the same validation
// path applies as for real model output.
var answerSchema = &llm.Schema{
	Name:        "simulated-answer",
	Description: "A candidate's spoken answer to one interview question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer": map[string]any{
				"type":        "string",
				"description": "The candidate's answer, first person, under 150 words",
			},
		},
		"required":             []any{"answer"},
		"additionalProperties": false,
	},
}

// Input describes one question put to the simulated candidate.
type Input struct {
	Skill    string
	Question string

	// Persona describes the simulated candidate, e.g. "mid-level ML
	// engineer, strong on PyTorch, weak on deployment".
	Persona string

	// History holds formatted question/answer lines from earlier turns.
	History []string
}

// Simulator answers interview questions in character.
type Simulator struct {
	provider llm.Provider
}

// New creates a Simulator backed by the given provider.
func New(provider llm.Provider) *Simulator {
	return &Simulator{provider: provider}
}

// Answer produces the candidate's answer to one question.
func (s *Simulator) Answer(ctx context.Context, in Input) (string, error) {
	ctx = llm.WithPurpose(ctx, "answer-sim")

	var b strings.Builder
	fmt.Fprintf(&b, "Persona: %s\n", orDefault(in.Persona, "a mid-level engineer with hands-on experience"))
	fmt.Fprintf(&b, "Skill being probed: %s\n", in.Skill)

	b.WriteString("\nEarlier in this interview:\n")
	if len(in.History) == 0 {
		b.WriteString("Nothing yet.")
	} else {
		b.WriteString(strings.Join(in.History, "\n"))
	}

	b.WriteString("\n\nInterviewer asks:\n")
	b.WriteString(in.Question)

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: b.String()},
		},
		Schema:      answerSchema,
		MaxTokens:   512,
		Temperature: 0.8,
	})
	if err != nil {
		return "", fmt.Errorf("answer simulation failed: %w", err)
	}

	var out struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("failed to parse simulated answer: %w", err)
	}
	return out.Answer, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
