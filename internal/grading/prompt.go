package grading

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are grading technical interview responses. Be strict and conservative.

Rubric (1-5, applied per aspect):
1 - Incorrect or irrelevant answer showing minimal understanding
2 - Partially correct but with significant gaps or misconceptions
3 - Mostly correct with minor issues; meets basic expectations
4 - Strong answer demonstrating clear understanding and good communication
5 - Excellent answer showing deep knowledge, clear explanation, and technical precision

Rules:
- Consider ONLY technical correctness and completeness relative to the question. Do NOT reward confidence, verbosity, or buzzwords if the content is wrong.
- If the answer is generic, hand-wavy, off-topic, or fails to address core aspects of the question, score the relevant aspects 1 or 2.
- Penalize misconceptions and failure to provide key steps, definitions, or rationale.
- Set factual_error only when the answer states something concretely and verifiably wrong, not merely incomplete.
- Score each aspect independently: coverage (did they address the question), technical_depth (depth of understanding), evidence (concrete examples, specifics, rationale), communication (clear, structured response).
- Keep the reasoning to 2-3 sentences referencing specific correct or incorrect points.`

// buildUserMessage constructs the grading request for one answer.
func buildUserMessage(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Skill: %s\n", in.Skill)
	fmt.Fprintf(&b, "Question (difficulty %d/5): %s\n", in.Difficulty, in.Question)
	b.WriteString("\nCandidate response:\n")
	if in.Answer == "" {
		b.WriteString("(no answer given)")
	} else {
		b.WriteString(in.Answer)
	}

	return b.String()
}
