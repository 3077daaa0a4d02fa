// Package interview drives adaptive skill-probing sessions: a bounded
// turn loop that selects the next skill under an upper-confidence-bound
// policy, grades answers, and updates per-skill proficiency beliefs until
// the session terminates.
package interview

import (
	"encoding/json"
	"fmt"

	"github.com/abhisek/skillprobe/internal/belief"
	"github.com/abhisek/skillprobe/internal/grading"
	"github.com/abhisek/skillprobe/internal/policy"
	"github.com/abhisek/skillprobe/internal/qgen"
)

const (
	// lowScoreCutoff marks a skill inactive: any score below it retires
	// the skill for the rest of the session.
	lowScoreCutoff = 2

	// historyLimit bounds the ledger's turn history (FIFO eviction).
	historyLimit = 10

	// recentHistoryPerSkill bounds how many answered turns feed back into
	// the next question prompt for a skill.
	recentHistoryPerSkill = 3

	// answerTruncateLimit caps answer text when quoted in prompts.
	answerTruncateLimit = 240

	baselineDifficulty = 3
)

// Config holds the tunable limits for one session.
type Config struct {
	MaxTurns             int         `json:"max_turns"`
	MinQuestionsPerSkill int         `json:"min_questions_per_skill"`
	VerifyLowerBound     float64     `json:"verify_lower_bound"`
	ZScore               float64     `json:"z_score"`
	ExplorationC         float64     `json:"exploration_c"`
	SelectionMode        policy.Mode `json:"selection_mode"`

	// RevokeVerified controls whether a verified skill loses the status
	// when a later answer drops its lower bound back below threshold.
	RevokeVerified bool `json:"revoke_verified"`
}

// DefaultConfig returns the standard session limits.
func DefaultConfig() Config {
	return Config{
		MaxTurns:             8,
		MinQuestionsPerSkill: 2,
		VerifyLowerBound:     3.75,
		ZScore:               1.96,
		ExplorationC:         1.0,
		SelectionMode:        policy.ModeUCB1,
		RevokeVerified:       true,
	}
}

// HistoryEntry records one turn for audit and prompt context.
type HistoryEntry struct {
	Turn       int    `json:"turn"`
	Skill      string `json:"skill"`
	Question   string `json:"question"`
	Difficulty int    `json:"difficulty"`
	Answered   bool   `json:"answered"`
	Answer     string `json:"answer,omitempty"`
	Score      int    `json:"score,omitempty"`
	Reasoning  string `json:"reasoning,omitempty"`
}

// Ledger is the aggregate root for one session. It is owned by exactly one
// Interviewer and mutated only between RunTurn calls; it is never shared
// across sessions.
type Ledger struct {
	SessionID string                    `json:"session_id"`
	Skills    []string                  `json:"skills"`
	Beliefs   map[string]*belief.Belief `json:"beliefs"`
	Spans     map[string][]string       `json:"spans,omitempty"`

	Pool            map[string]*qgen.Question `json:"pool,omitempty"`
	CurrentQuestion *qgen.Question            `json:"current_question,omitempty"`
	LastGrade       *grading.Grade            `json:"last_grade,omitempty"`
	LastAnswer      string                    `json:"last_answer,omitempty"`
	AwaitingAnswer  bool                      `json:"awaiting_answer"`

	Turn     int             `json:"turn"`
	Config   Config          `json:"config"`
	Inactive map[string]bool `json:"inactive"`
	Verified map[string]bool `json:"verified"`

	Logs      []string       `json:"logs"`
	History   []HistoryEntry `json:"history"`
	Summaries []SkillSummary `json:"summaries,omitempty"`
}

// NewLedger creates a session ledger with prior-seeded beliefs for every
// skill.
func NewLedger(sessionID string, skills []string, spans map[string][]string, cfg Config) *Ledger {
	l := &Ledger{
		SessionID: sessionID,
		Skills:    skills,
		Beliefs:   make(map[string]*belief.Belief, len(skills)),
		Spans:     spans,
		Pool:      make(map[string]*qgen.Question),
		Config:    cfg,
		Inactive:  make(map[string]bool),
		Verified:  make(map[string]bool),
	}
	for _, s := range skills {
		b := belief.New()
		b.ComputeBounds(cfg.ZScore, true)
		l.Beliefs[s] = b
	}
	l.recomputeSummaries()
	return l
}

// Marshal serializes the ledger for persistence.
func (l *Ledger) Marshal() ([]byte, error) {
	return json.Marshal(l)
}

// LoadLedger deserializes a persisted ledger.
func LoadLedger(data []byte) (*Ledger, error) {
	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse ledger: %w", err)
	}
	if l.Pool == nil {
		l.Pool = make(map[string]*qgen.Question)
	}
	if l.Inactive == nil {
		l.Inactive = make(map[string]bool)
	}
	if l.Verified == nil {
		l.Verified = make(map[string]bool)
	}
	return &l, nil
}

// ActiveSkills returns the skills not yet marked inactive, in ledger order.
func (l *Ledger) ActiveSkills() []string {
	var out []string
	for _, s := range l.Skills {
		if !l.Inactive[s] {
			out = append(out, s)
		}
	}
	return out
}

// AllVerified reports whether every skill has been verified.
func (l *Ledger) AllVerified() bool {
	if len(l.Skills) == 0 {
		return false
	}
	for _, s := range l.Skills {
		if !l.Verified[s] {
			return false
		}
	}
	return true
}

// AppendLog adds a line to the session's append-only audit log.
func (l *Ledger) AppendLog(format string, args ...any) {
	l.Logs = append(l.Logs, fmt.Sprintf(format, args...))
}

// addHistory appends a turn record, evicting the oldest past the window.
func (l *Ledger) addHistory(e HistoryEntry) {
	l.History = append(l.History, e)
	if len(l.History) > historyLimit {
		l.History = l.History[len(l.History)-historyLimit:]
	}
}

// latestHistory returns the most recent history entry, or nil.
func (l *Ledger) latestHistory() *HistoryEntry {
	if len(l.History) == 0 {
		return nil
	}
	return &l.History[len(l.History)-1]
}

// recentHistoryFor formats the last answered turns for a skill, oldest
// first, answers truncated for prompt economy.
func (l *Ledger) recentHistoryFor(skill string) []string {
	var lines []string
	for _, e := range l.History {
		if e.Skill != skill || !e.Answered {
			continue
		}
		lines = append(lines, fmt.Sprintf("Q: %s | A: %s | score %d/5",
			e.Question, truncate(e.Answer, answerTruncateLimit), e.Score))
	}
	if len(lines) > recentHistoryPerSkill {
		lines = lines[len(lines)-recentHistoryPerSkill:]
	}
	return lines
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
