package qgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are designing technical interview questions to assess a candidate's practical skills.

Rules:
- Generate exactly one question targeting the given skill at the given difficulty (1=easy, 5=expert).
- When previous question, answer, and grader reasoning are present, ask a natural follow-up that builds on the candidate's response.
- The question should feel like a friendly conversation while still probing practical expertise.
- Keep it concise and focused: answerable in under 2 minutes.
- If there is no previous question or answer, ask an initial question that matches the apparent skill level from the profile evidence.
- Do not repeat a question already covered in the recent turn history.`

// buildUserMessage constructs the drafting request for one skill.
func buildUserMessage(in DraftInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Skill: %s\n", in.Skill)
	fmt.Fprintf(&b, "Difficulty: %d\n", in.Difficulty)
	if in.LastScore != nil {
		fmt.Fprintf(&b, "Last score: %d/5\n", *in.LastScore)
	} else {
		b.WriteString("Last score: N/A\n")
	}

	b.WriteString("\nPrevious question: ")
	b.WriteString(orNone(in.PrevQuestion))
	b.WriteString("\nPrevious answer summary: ")
	b.WriteString(orNone(in.PrevAnswer))
	b.WriteString("\nGrader reasoning: ")
	b.WriteString(orNone(in.PrevReasoning))

	b.WriteString("\n\nRecent turn history for this skill:\n")
	if len(in.RecentHistory) == 0 {
		b.WriteString("None")
	} else {
		b.WriteString(strings.Join(in.RecentHistory, "\n"))
	}

	b.WriteString("\n\nEvidence from candidate profile:\n")
	if len(in.Evidence) == 0 {
		b.WriteString("None")
	} else {
		b.WriteString(strings.Join(in.Evidence, "\n"))
	}

	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
