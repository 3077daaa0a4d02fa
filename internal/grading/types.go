// Package grading turns free-text interview answers into 1-5 scores using an
// LLM grader with a deterministic aspect-aggregation step on top.
package grading

// AspectScore is one rubric dimension of a graded answer.
type AspectScore struct {
	Score int    `json:"score"`
	Notes string `json:"notes,omitempty"`
}

// Aspects breaks a grade down by rubric dimension.
type Aspects struct {
	Coverage       AspectScore `json:"coverage"`
	TechnicalDepth AspectScore `json:"technical_depth"`
	Evidence       AspectScore `json:"evidence"`
	Communication  AspectScore `json:"communication"`
}

// Draft is the raw structured output from the grading model, before
// deterministic aggregation.
type Draft struct {
	Reasoning    string  `json:"reasoning"`
	FactualError bool    `json:"factual_error"`
	Aspects      Aspects `json:"aspects"`
}

// Grade is the final graded result for one answer.
type Grade struct {
	Score        int     `json:"score"`
	Reasoning    string  `json:"reasoning"`
	FactualError bool    `json:"factual_error"`
	Aspects      Aspects `json:"aspects"`
}

// Input describes the answer to grade.
type Input struct {
	Skill      string
	Difficulty int
	Question   string
	Answer     string
}
