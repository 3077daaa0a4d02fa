// Package llm abstracts the text-generation backends used for drafting
// interview questions, grading answers, and simulating candidates.
//
// All traffic goes through the Provider interface. Concrete providers
// (Anthropic, OpenAI, OpenRouter, Gemini) translate the neutral Request
// into their SDK's shape and normalise errors into this package's typed
// errors so retry behavior is uniform. Structured output is requested via
// a JSON Schema and re-validated locally before being returned.
package llm

import (
	"context"
	"encoding/json"
)

// Provider sends a prompt to an LLM and returns structured JSON.
type Provider interface {
	// Generate sends the request. When req.Schema is set the provider uses
	// its native structured-output mechanism and the response Content is
	// the schema-validated JSON object.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the configured model identifier.
	ModelID() string
}

// Request describes a single LLM call.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Messages is the conversation. Interview prompts are single-turn, so
	// this usually holds one user message.
	Messages []Message

	// Schema, when set, constrains the response to the given JSON Schema.
	// When nil the response Content is the raw text.
	Schema *Schema

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature in [0,1]; zero means deterministic.
	Temperature float64
}

// Message is one turn of conversation.
type Message struct {
	Role    Role
	Content string
}

// Role identifies the message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema the response must conform to.
type Schema struct {
	// Name identifies the schema (tool name for Anthropic, schema name for
	// OpenAI). Kebab-case, e.g. "interview-question".
	Name string

	// Description tells the model what the schema represents.
	Description string

	// Definition is the JSON Schema as a map.
	Definition map[string]any
}

// Response is the model's output.
type Response struct {
	// Content is validated JSON when a Schema was requested, otherwise the
	// raw text wrapped as a JSON string.
	Content json.RawMessage

	// Usage reports token consumption.
	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalised to "end", "max_tokens", or "error".
	StopReason string
}

// Usage tracks token counts for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
