package simulate

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/skillprobe/internal/llm"
)

func TestAnswer_ReturnsText(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`{"answer":"I usually reach for DataLoader with num_workers tuned to the host."}`)},
	)
	s := New(mock)

	got, err := s.Answer(context.Background(), Input{
		Skill:    "pytorch",
		Question: "How do you speed up input pipelines?",
		Persona:  "senior ML engineer",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "DataLoader") {
		t.Fatalf("unexpected answer: %q", got)
	}
}

func TestAnswer_PromptCarriesPersonaAndHistory(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`{"answer":"ok"}`)},
	)
	s := New(mock)

	_, err := s.Answer(context.Background(), Input{
		Skill:    "pandas",
		Question: "Q2",
		Persona:  "junior analyst",
		History:  []string{"Q1: What is a groupby? A: split-apply-combine"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := mock.Calls[0].Messages[0].Content
	for _, want := range []string{"junior analyst", "pandas", "split-apply-combine", "Q2"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("prompt missing %q:\n%s", want, msg)
		}
	}
}

func TestAnswer_DefaultPersona(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`{"answer":"ok"}`)},
	)
	s := New(mock)

	_, err := s.Answer(context.Background(), Input{Skill: "pytorch", Question: "Q"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(mock.Calls[0].Messages[0].Content, "mid-level engineer") {
		t.Fatal("expected default persona in prompt")
	}
}

func TestAnswer_ProviderErrorPropagates(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}},
	)
	s := New(mock)

	if _, err := s.Answer(context.Background(), Input{Skill: "pytorch", Question: "Q"}); err == nil {
		t.Fatal("expected error")
	}
}
