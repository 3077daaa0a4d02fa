package interview

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/skillprobe/internal/grading"
	"github.com/abhisek/skillprobe/internal/policy"
	"github.com/abhisek/skillprobe/internal/qgen"
)

// ErrNoPendingQuestion is returned when an answer arrives without a question
// outstanding.
var ErrNoPendingQuestion = errors.New("no pending question to answer")

// QuestionGenerator drafts one question per call.
type QuestionGenerator interface {
	Draft(ctx context.Context, in qgen.DraftInput) (*qgen.Question, error)
}

// AnswerGrader grades one answer per call.
type AnswerGrader interface {
	Grade(ctx context.Context, in grading.Input) (*grading.Grade, error)
}

// Interviewer owns one session's ledger and drives its turn cycle.
type Interviewer struct {
	ledger *Ledger
	gen    QuestionGenerator
	grader AnswerGrader
}

// New creates an Interviewer around an existing ledger.
func New(ledger *Ledger, gen QuestionGenerator, grader AnswerGrader) *Interviewer {
	return &Interviewer{ledger: ledger, gen: gen, grader: grader}
}

// Ledger returns the session ledger.
func (iv *Interviewer) Ledger() *Ledger {
	return iv.ledger
}

// Generate seeds the question pool with one draft per skill. Drafts run
// concurrently since each writes only its own pool slot. Per-skill failures
// are non-fatal: the skill is skipped with a log entry and the selector will
// draft on demand later.
func (iv *Interviewer) Generate(ctx context.Context) {
	l := iv.ledger
	skills := l.Skills

	questions := make([]*qgen.Question, len(skills))
	drafted := make([]error, len(skills))

	var g errgroup.Group
	for i, skill := range skills {
		g.Go(func() error {
			q, err := iv.gen.Draft(ctx, iv.draftInput(skill, baselineDifficulty))
			questions[i] = q
			drafted[i] = err
			return nil
		})
	}
	g.Wait()

	seeded := 0
	for i, skill := range skills {
		if drafted[i] != nil {
			l.AppendLog("generate -> failed for %s: %v", skill, drafted[i])
			continue
		}
		l.Pool[skill] = questions[i]
		seeded++
	}
	l.AppendLog("generate -> seeded %d questions", seeded)
}

// SelectQuestion picks the next skill to probe and installs its question as
// the pending one. A pooled question is preferred; otherwise one is drafted
// on demand, which is the only way this step can fail.
func (iv *Interviewer) SelectQuestion(ctx context.Context) error {
	l := iv.ledger

	candidates := l.ActiveSkills()
	if len(candidates) == 0 {
		// Contract guard: callers should have stopped the session, but an
		// empty candidate set must never reach the policy.
		candidates = l.Skills
		l.AppendLog("select -> no active skills, falling back to full set")
	}

	res, err := policy.Select(candidates, l.Beliefs, l.Config.ExplorationC, l.Config.SelectionMode)
	if err != nil {
		return fmt.Errorf("selection failed: %w", err)
	}
	l.Logs = append(l.Logs, res.Logs...)

	difficulty := iv.nextDifficulty()

	q := l.Pool[res.Skill]
	if q != nil {
		delete(l.Pool, res.Skill)
		q.Difficulty = difficulty
	} else {
		q, err = iv.gen.Draft(ctx, iv.draftInput(res.Skill, difficulty))
		if err != nil {
			return fmt.Errorf("on-demand draft for %s: %w", res.Skill, err)
		}
	}

	l.CurrentQuestion = q
	l.AwaitingAnswer = true
	l.addHistory(HistoryEntry{
		Turn:       l.Turn,
		Skill:      q.Skill,
		Question:   q.Text,
		Difficulty: q.Difficulty,
	})
	l.AppendLog("select -> %s (difficulty %d, ucb %.3f)", res.Skill, difficulty, res.Score)
	return nil
}

// Ask exposes the pending question to the surrounding system. Log only; no
// belief mutation.
func (iv *Interviewer) Ask() {
	l := iv.ledger
	if l.CurrentQuestion == nil {
		return
	}
	l.AppendLog("ask [%s] %s", l.CurrentQuestion.Skill, l.CurrentQuestion.Text)
}

// GradeAnswer submits the pending answer for grading. Failure is fatal to
// the turn and leaves the ledger untouched so the same answer can be
// resubmitted.
func (iv *Interviewer) GradeAnswer(ctx context.Context, answer string) (*grading.Grade, error) {
	l := iv.ledger
	q := l.CurrentQuestion
	if q == nil || !l.AwaitingAnswer {
		return nil, ErrNoPendingQuestion
	}

	grade, err := iv.grader.Grade(ctx, grading.Input{
		Skill:      q.Skill,
		Difficulty: q.Difficulty,
		Question:   q.Text,
		Answer:     answer,
	})
	if err != nil {
		return nil, err
	}

	l.LastGrade = grade
	l.LastAnswer = answer
	l.AwaitingAnswer = false
	l.AppendLog("grade -> %d (%s)", grade.Score, grade.Reasoning)
	return grade, nil
}

// Update folds the last grade into the answered skill's belief, refreshes
// its status, and closes out the turn.
func (iv *Interviewer) Update() {
	l := iv.ledger
	q := l.CurrentQuestion
	grade := l.LastGrade
	if q == nil || grade == nil {
		return
	}

	skill := q.Skill
	b := l.Beliefs[skill]
	b.Observe(float64(grade.Score))
	b.ComputeBounds(l.Config.ZScore, true)

	if grade.Score < lowScoreCutoff && !l.Inactive[skill] {
		l.Inactive[skill] = true
		l.AppendLog("update -> %s marked inactive (score %d)", skill, grade.Score)
	}

	verified := b.MeetsVerification(l.Config.VerifyLowerBound, l.Config.MinQuestionsPerSkill)
	switch {
	case verified && !l.Verified[skill]:
		l.Verified[skill] = true
		l.AppendLog("update -> %s verified (lcb %.2f)", skill, b.Lower)
	case !verified && l.Verified[skill] && l.Config.RevokeVerified:
		delete(l.Verified, skill)
		l.AppendLog("update -> %s verification revoked (lcb %.2f)", skill, b.Lower)
	}

	if e := l.latestHistory(); e != nil && e.Skill == skill && !e.Answered {
		e.Answered = true
		e.Answer = l.LastAnswer
		e.Score = grade.Score
		e.Reasoning = grade.Reasoning
	}

	l.Turn++
	l.recomputeSummaries()
	l.AppendLog("update -> %s n=%d mean=%.2f se=%.2f lcb=%.2f turn=%d",
		skill, b.RealObservations(), b.Mean, b.StdErr, b.Lower, l.Turn)
}

// Decide evaluates the terminal condition.
func (iv *Interviewer) Decide() State {
	l := iv.ledger
	if reason, done := l.TerminalReason(); done {
		l.AppendLog("decide -> terminal (%s)", reason)
		return StateTerminal
	}
	l.AppendLog("decide -> continue (turn %d/%d)", l.Turn, l.Config.MaxTurns)
	return StateContinue
}

// RunTurn advances the session. With no pending answer it runs the front
// half of the cycle (seed the pool on the first call, then select and ask)
// and returns with a question outstanding. With an answer it runs the back
// half (grade, update, decide) and, when the session continues, immediately
// selects the next question so the caller always sees either a pending
// question or a terminal ledger.
func (iv *Interviewer) RunTurn(ctx context.Context, answer *string) (*Ledger, error) {
	l := iv.ledger

	if _, done := l.TerminalReason(); done {
		return l, nil
	}

	if !l.AwaitingAnswer {
		if l.Turn == 0 && l.CurrentQuestion == nil {
			iv.Generate(ctx)
		}
		if err := iv.SelectQuestion(ctx); err != nil {
			return l, err
		}
		iv.Ask()
		return l, nil
	}

	if answer == nil {
		return l, nil
	}

	if _, err := iv.GradeAnswer(ctx, *answer); err != nil {
		return l, fmt.Errorf("turn failed, no progress made: %w", err)
	}
	iv.Update()

	if iv.Decide() == StateTerminal {
		return l, nil
	}

	if err := iv.SelectQuestion(ctx); err != nil {
		return l, err
	}
	iv.Ask()
	return l, nil
}

// nextDifficulty derives the next question's difficulty from the last grade:
// one above baseline after a strong answer, one below after a weak one.
func (iv *Interviewer) nextDifficulty() int {
	grade := iv.ledger.LastGrade
	d := baselineDifficulty
	if grade != nil {
		switch {
		case grade.Score >= 4:
			d = baselineDifficulty + 1
		case grade.Score <= 2:
			d = baselineDifficulty - 1
		}
	}
	if d < 1 {
		d = 1
	}
	if d > 5 {
		d = 5
	}
	return d
}

// draftInput assembles the generator request for one skill.
func (iv *Interviewer) draftInput(skill string, difficulty int) qgen.DraftInput {
	l := iv.ledger

	in := qgen.DraftInput{
		Skill:         skill,
		Difficulty:    difficulty,
		Evidence:      l.Spans[skill],
		RecentHistory: l.recentHistoryFor(skill),
	}
	if l.CurrentQuestion != nil {
		in.PrevQuestion = l.CurrentQuestion.Text
	}
	in.PrevAnswer = truncate(l.LastAnswer, answerTruncateLimit)
	if l.LastGrade != nil {
		in.PrevReasoning = l.LastGrade.Reasoning
		score := l.LastGrade.Score
		in.LastScore = &score
	}
	return in
}
