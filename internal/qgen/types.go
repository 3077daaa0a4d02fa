// Package qgen drafts skill-probing interview questions with an LLM.
package qgen

// Question is a single interview question targeting one skill.
type Question struct {
	Skill      string `json:"skill"`
	Text       string `json:"text"`
	Difficulty int    `json:"difficulty"`
}

// DraftInput carries everything the generator needs to draft one question.
type DraftInput struct {
	Skill      string
	Difficulty int

	// Evidence holds resume or profile spans that mention the skill.
	Evidence []string

	// Previous turn context for follow-up questions. All empty on the
	// first question for a skill.
	PrevQuestion  string
	PrevAnswer    string
	PrevReasoning string
	LastScore     *int

	// RecentHistory holds formatted lines from earlier answered turns on
	// this skill, oldest first.
	RecentHistory []string
}
