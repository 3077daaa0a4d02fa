package qgen

import "github.com/abhisek/skillprobe/internal/llm"

// QuestionSchema defines the JSON schema for LLM question drafts.
var QuestionSchema = &llm.Schema{
	Name:        "interview-question",
	Description: "A single skill-probing interview question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"skill": map[string]any{
				"type":        "string",
				"description": "The skill this question targets, echoed from the request",
			},
			"text": map[string]any{
				"type":        "string",
				"description": "The question shown to the candidate, answerable in under 2 minutes",
			},
			"difficulty": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"maximum":     5,
				"description": "Difficulty from 1 (easy) to 5 (expert)",
			},
		},
		"required":             []any{"skill", "text", "difficulty"},
		"additionalProperties": false,
	},
}
