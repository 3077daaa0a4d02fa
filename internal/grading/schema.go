package grading

import "github.com/abhisek/skillprobe/internal/llm"

func aspectSchema(desc string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"maximum":     5,
				"description": desc,
			},
			"notes": map[string]any{
				"type":        "string",
				"description": "One short note justifying the score",
			},
		},
		"required":             []any{"score", "notes"},
		"additionalProperties": false,
	}
}

// GradeSchema defines the JSON schema for LLM grading responses.
var GradeSchema = &llm.Schema{
	Name:        "answer-grade",
	Description: "A rubric-based grade for one interview answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reasoning": map[string]any{
				"type":        "string",
				"description": "2-3 sentence justification referencing specific points in the answer",
			},
			"factual_error": map[string]any{
				"type":        "boolean",
				"description": "True only when the answer states something concretely wrong",
			},
			"aspects": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"coverage":        aspectSchema("Did the answer address what the question asked"),
					"technical_depth": aspectSchema("Depth of understanding shown"),
					"evidence":        aspectSchema("Concrete examples, specifics, and rationale"),
					"communication":   aspectSchema("Clarity and structure of the response"),
				},
				"required":             []any{"coverage", "technical_depth", "evidence", "communication"},
				"additionalProperties": false,
			},
		},
		"required":             []any{"reasoning", "factual_error", "aspects"},
		"additionalProperties": false,
	},
}
