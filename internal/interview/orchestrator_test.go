package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/abhisek/skillprobe/internal/grading"
	"github.com/abhisek/skillprobe/internal/qgen"
)

type fakeGen struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []qgen.DraftInput
}

func (g *fakeGen) Draft(_ context.Context, in qgen.DraftInput) (*qgen.Question, error) {
	g.mu.Lock()
	g.calls = append(g.calls, in)
	shouldFail := g.fail[in.Skill]
	g.mu.Unlock()

	if shouldFail {
		return nil, errors.New("draft failed")
	}
	return &qgen.Question{
		Skill:      in.Skill,
		Text:       "Tell me about " + in.Skill,
		Difficulty: in.Difficulty,
	}, nil
}

type fakeGrader struct {
	err      error
	scoreFor func(skill string) int
}

func (g *fakeGrader) Grade(_ context.Context, in grading.Input) (*grading.Grade, error) {
	if g.err != nil {
		return nil, g.err
	}
	score := 3
	if g.scoreFor != nil {
		score = g.scoreFor(in.Skill)
	}
	return &grading.Grade{Score: score, Reasoning: "graded"}, nil
}

func constGrader(score int) *fakeGrader {
	return &fakeGrader{scoreFor: func(string) int { return score }}
}

func newSession(t *testing.T, skills []string, cfg Config, grader *fakeGrader) (*Interviewer, *fakeGen) {
	t.Helper()
	gen := &fakeGen{fail: map[string]bool{}}
	l := NewLedger("test-session", skills, nil, cfg)
	return New(l, gen, grader), gen
}

// runToTerminal answers every question with the same text until the session
// stops, guarding against runaway loops.
func runToTerminal(t *testing.T, iv *Interviewer) *Ledger {
	t.Helper()
	ctx := context.Background()

	l, err := iv.RunTurn(ctx, nil)
	if err != nil {
		t.Fatalf("opening turn: %v", err)
	}

	for i := 0; i < 50; i++ {
		if _, done := l.TerminalReason(); done {
			return l
		}
		answer := "an answer about " + l.CurrentQuestion.Skill
		l, err = iv.RunTurn(ctx, &answer)
		if err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
	}
	t.Fatal("session did not terminate within 50 turns")
	return nil
}

func TestRunTurn_TerminatesAtMaxTurns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTurns = 5
	cfg.MinQuestionsPerSkill = 1

	iv, _ := newSession(t, []string{"pytorch", "pandas"}, cfg, constGrader(5))
	l := runToTerminal(t, iv)

	if l.Turn != 5 {
		t.Fatalf("expected termination at turn 5, got %d", l.Turn)
	}
	reason, done := l.TerminalReason()
	if !done || reason != ReasonMaxTurns {
		t.Fatalf("expected max-turns terminal, got %q done=%t", reason, done)
	}

	// Exploration must touch both skills within the first two turns.
	seen := map[string]bool{}
	for _, e := range l.History[:2] {
		seen[e.Skill] = true
	}
	if !seen["pytorch"] || !seen["pandas"] {
		t.Fatalf("expected both skills probed in first two turns, history: %+v", l.History[:2])
	}
}

func TestRunTurn_OpeningHalfCycle(t *testing.T) {
	iv, gen := newSession(t, []string{"pytorch", "pandas"}, DefaultConfig(), constGrader(3))

	l, err := iv.RunTurn(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !l.AwaitingAnswer || l.CurrentQuestion == nil {
		t.Fatal("expected a pending question after the opening turn")
	}
	if l.Turn != 0 {
		t.Fatalf("turn must not advance before an answer, got %d", l.Turn)
	}

	// Pool was seeded once per skill, then the selected skill consumed its
	// pooled question.
	gen.mu.Lock()
	drafts := len(gen.calls)
	gen.mu.Unlock()
	if drafts != 2 {
		t.Fatalf("expected 2 pool drafts, got %d", drafts)
	}
	if len(l.Pool) != 1 {
		t.Fatalf("expected 1 pooled question left, got %d", len(l.Pool))
	}
}

func TestRunTurn_NilAnswerWhileAwaitingIsNoProgress(t *testing.T) {
	iv, _ := newSession(t, []string{"pytorch"}, DefaultConfig(), constGrader(3))
	ctx := context.Background()

	l, err := iv.RunTurn(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	q := l.CurrentQuestion

	l, err = iv.RunTurn(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if l.Turn != 0 || l.CurrentQuestion != q {
		t.Fatal("expected no progress without an answer")
	}
}

func TestRunTurn_LowScoreDeactivatesSticky(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTurns = 6
	grader := &fakeGrader{scoreFor: func(skill string) int {
		if skill == "a" {
			return 1
		}
		return 3
	}}

	iv, _ := newSession(t, []string{"a", "b"}, cfg, grader)
	l := runToTerminal(t, iv)

	if !l.Inactive["a"] {
		t.Fatal("expected skill a inactive after score 1")
	}
	// After deactivation, a is never selected again.
	sawAAfter := false
	deactivated := false
	for _, e := range l.History {
		if deactivated && e.Skill == "a" {
			sawAAfter = true
		}
		if e.Skill == "a" && e.Answered && e.Score == 1 {
			deactivated = true
		}
	}
	if sawAAfter {
		t.Fatalf("inactive skill was selected again: %+v", l.History)
	}

	for _, s := range l.Summaries {
		if s.Skill == "a" && s.Status != StatusInactive {
			t.Fatalf("expected inactive status for a, got %s", s.Status)
		}
	}
}

func TestRunTurn_AllInactiveTerminates(t *testing.T) {
	iv, _ := newSession(t, []string{"only"}, DefaultConfig(), constGrader(1))
	l := runToTerminal(t, iv)

	reason, done := l.TerminalReason()
	if !done || reason != ReasonNoneActive {
		t.Fatalf("expected none-active terminal, got %q", reason)
	}
	if l.Turn != 1 {
		t.Fatalf("expected termination after 1 turn, got %d", l.Turn)
	}
}

func TestRunTurn_AllVerifiedTerminates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VerifyLowerBound = 2.0
	cfg.ZScore = 1.0
	cfg.MinQuestionsPerSkill = 2

	iv, _ := newSession(t, []string{"pytorch"}, cfg, constGrader(5))
	l := runToTerminal(t, iv)

	reason, _ := l.TerminalReason()
	if reason != ReasonAllVerified {
		t.Fatalf("expected all-verified terminal, got %q", reason)
	}
	if !l.Verified["pytorch"] {
		t.Fatal("expected pytorch verified")
	}
	if l.Turn != 2 {
		t.Fatalf("expected verification at turn 2, got %d", l.Turn)
	}
	if l.Summaries[0].Status != StatusVerified {
		t.Fatalf("expected verified summary, got %s", l.Summaries[0].Status)
	}
}

func TestRunTurn_GradingFailureLeavesLedgerUntouched(t *testing.T) {
	grader := constGrader(4)
	iv, _ := newSession(t, []string{"pytorch"}, DefaultConfig(), grader)
	ctx := context.Background()

	l, err := iv.RunTurn(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	q := l.CurrentQuestion

	grader.err = errors.New("grader down")
	answer := "my answer"
	_, err = iv.RunTurn(ctx, &answer)
	if err == nil {
		t.Fatal("expected turn failure")
	}
	if !strings.Contains(err.Error(), "no progress made") {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Turn != 0 || !l.AwaitingAnswer || l.CurrentQuestion != q || l.LastGrade != nil {
		t.Fatal("ledger must stay in its pre-grade state after a grading failure")
	}

	// Retrying the same answer works once the grader recovers.
	grader.err = nil
	l, err = iv.RunTurn(ctx, &answer)
	if err != nil {
		t.Fatal(err)
	}
	if l.Turn != 1 {
		t.Fatalf("expected turn 1 after retry, got %d", l.Turn)
	}
	if l.History[0].Answer != "my answer" || l.History[0].Score != 4 {
		t.Fatalf("history not updated: %+v", l.History[0])
	}
}

func TestRunTurn_GenerationFailureIsNonFatal(t *testing.T) {
	iv, gen := newSession(t, []string{"a", "b"}, DefaultConfig(), constGrader(3))
	gen.fail["b"] = true

	l, err := iv.RunTurn(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if l.CurrentQuestion == nil {
		t.Fatal("expected a question despite a pooling failure")
	}

	joined := strings.Join(l.Logs, "\n")
	if !strings.Contains(joined, "failed for b") {
		t.Fatalf("expected pooling failure logged, got:\n%s", joined)
	}
}

func TestRunTurn_DifficultyFollowsLastScore(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTurns = 10
	iv, _ := newSession(t, []string{"pytorch"}, cfg, constGrader(5))
	ctx := context.Background()

	l, err := iv.RunTurn(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if l.CurrentQuestion.Difficulty != baselineDifficulty {
		t.Fatalf("expected baseline difficulty, got %d", l.CurrentQuestion.Difficulty)
	}

	answer := "strong answer"
	l, err = iv.RunTurn(ctx, &answer)
	if err != nil {
		t.Fatal(err)
	}
	if l.CurrentQuestion.Difficulty != baselineDifficulty+1 {
		t.Fatalf("expected difficulty %d after a 5, got %d",
			baselineDifficulty+1, l.CurrentQuestion.Difficulty)
	}
}

func TestUpdate_VerificationRevocable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VerifyLowerBound = 2.8
	cfg.ZScore = 1.0
	cfg.MinQuestionsPerSkill = 2
	cfg.RevokeVerified = true

	l := NewLedger("s", []string{"pytorch", "pandas"}, nil, cfg)
	iv := New(l, &fakeGen{}, nil)

	feed := func(score int) {
		l.CurrentQuestion = &qgen.Question{Skill: "pytorch", Text: "Q", Difficulty: 3}
		l.LastGrade = &grading.Grade{Score: score, Reasoning: "r"}
		iv.Update()
	}

	feed(5)
	feed(5)
	if !l.Verified["pytorch"] {
		t.Fatal("expected pytorch verified after two 5s")
	}

	feed(2)
	if l.Verified["pytorch"] {
		t.Fatal("expected verification revoked after the bound dropped")
	}
}

func TestUpdate_VerificationMonotonicWhenConfigured(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VerifyLowerBound = 2.8
	cfg.ZScore = 1.0
	cfg.MinQuestionsPerSkill = 2
	cfg.RevokeVerified = false

	l := NewLedger("s", []string{"pytorch", "pandas"}, nil, cfg)
	iv := New(l, &fakeGen{}, nil)

	feed := func(score int) {
		l.CurrentQuestion = &qgen.Question{Skill: "pytorch", Text: "Q", Difficulty: 3}
		l.LastGrade = &grading.Grade{Score: score, Reasoning: "r"}
		iv.Update()
	}

	feed(5)
	feed(5)
	feed(2)
	if !l.Verified["pytorch"] {
		t.Fatal("expected verification to stick when revocation is off")
	}
}

func TestGradeAnswer_NoPendingQuestion(t *testing.T) {
	iv, _ := newSession(t, []string{"pytorch"}, DefaultConfig(), constGrader(3))
	_, err := iv.GradeAnswer(context.Background(), "answer")
	if !errors.Is(err, ErrNoPendingQuestion) {
		t.Fatalf("expected ErrNoPendingQuestion, got %v", err)
	}
}

func TestRunTurn_TerminalIsStable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTurns = 1
	iv, _ := newSession(t, []string{"pytorch"}, cfg, constGrader(3))
	l := runToTerminal(t, iv)

	answer := "late answer"
	l2, err := iv.RunTurn(context.Background(), &answer)
	if err != nil {
		t.Fatal(err)
	}
	if l2.Turn != l.Turn {
		t.Fatal("terminal session must not advance")
	}
}

func TestDraftInput_CarriesFollowUpContext(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTurns = 10
	spans := map[string][]string{"pytorch": {"trained CNNs"}}

	gen := &fakeGen{fail: map[string]bool{}}
	l := NewLedger("s", []string{"pytorch"}, spans, cfg)
	iv := New(l, gen, constGrader(5))
	ctx := context.Background()

	if _, err := iv.RunTurn(ctx, nil); err != nil {
		t.Fatal(err)
	}
	long := strings.Repeat("x", 500)
	if _, err := iv.RunTurn(ctx, &long); err != nil {
		t.Fatal(err)
	}

	// The second turn's on-demand draft (pool already drained) must carry
	// the previous exchange.
	gen.mu.Lock()
	last := gen.calls[len(gen.calls)-1]
	gen.mu.Unlock()

	if last.PrevQuestion == "" || last.PrevReasoning != "graded" {
		t.Fatalf("missing follow-up context: %+v", last)
	}
	if len(last.PrevAnswer) != answerTruncateLimit+3 {
		t.Fatalf("expected truncated answer, got %d chars", len(last.PrevAnswer))
	}
	if last.LastScore == nil || *last.LastScore != 5 {
		t.Fatal("expected last score 5")
	}
	if len(last.Evidence) != 1 || last.Evidence[0] != "trained CNNs" {
		t.Fatalf("expected evidence spans, got %v", last.Evidence)
	}
	if len(last.RecentHistory) != 1 {
		t.Fatalf("expected 1 history line, got %v", last.RecentHistory)
	}
}

func TestLedger_HistoryBounded(t *testing.T) {
	l := NewLedger("s", []string{"a"}, nil, DefaultConfig())
	for i := range 14 {
		l.addHistory(HistoryEntry{Turn: i, Skill: "a", Question: fmt.Sprintf("q%d", i)})
	}
	if len(l.History) != historyLimit {
		t.Fatalf("expected %d entries, got %d", historyLimit, len(l.History))
	}
	if l.History[0].Turn != 4 {
		t.Fatalf("expected oldest entries evicted, first turn = %d", l.History[0].Turn)
	}
}

func TestLedger_RecentHistoryLimitsAndTruncates(t *testing.T) {
	l := NewLedger("s", []string{"a"}, nil, DefaultConfig())
	for i := range 5 {
		l.addHistory(HistoryEntry{
			Turn: i, Skill: "a", Question: fmt.Sprintf("q%d", i),
			Answered: true, Answer: strings.Repeat("y", 300), Score: 3,
		})
	}
	l.addHistory(HistoryEntry{Turn: 5, Skill: "a", Question: "unanswered"})

	lines := l.recentHistoryFor("a")
	if len(lines) != recentHistoryPerSkill {
		t.Fatalf("expected %d lines, got %d", recentHistoryPerSkill, len(lines))
	}
	if !strings.Contains(lines[0], "q2") {
		t.Fatalf("expected oldest kept line to be q2: %v", lines)
	}
	if !strings.Contains(lines[0], "...") {
		t.Fatal("expected truncated answer marker")
	}
	for _, line := range lines {
		if strings.Contains(line, "unanswered") {
			t.Fatal("unanswered turns must not appear in prompt history")
		}
	}
}

func TestLedger_MarshalRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	iv, _ := newSession(t, []string{"pytorch", "pandas"}, cfg, constGrader(4))
	ctx := context.Background()

	if _, err := iv.RunTurn(ctx, nil); err != nil {
		t.Fatal(err)
	}
	answer := "answer one"
	l, err := iv.RunTurn(ctx, &answer)
	if err != nil {
		t.Fatal(err)
	}

	data, err := l.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	got, err := LoadLedger(data)
	if err != nil {
		t.Fatal(err)
	}

	if got.SessionID != l.SessionID || got.Turn != l.Turn {
		t.Fatal("session identity lost in round trip")
	}
	if got.Beliefs["pytorch"].Mean != l.Beliefs["pytorch"].Mean {
		t.Fatal("beliefs lost in round trip")
	}
	if got.CurrentQuestion == nil || got.CurrentQuestion.Text != l.CurrentQuestion.Text {
		t.Fatal("pending question lost in round trip")
	}
	if !got.AwaitingAnswer {
		t.Fatal("awaiting flag lost in round trip")
	}
	if len(got.History) != len(l.History) {
		t.Fatal("history lost in round trip")
	}
}

func TestNextState_Transitions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTurns = 2
	l := NewLedger("s", []string{"a"}, nil, cfg)

	steps := []struct {
		from, to State
	}{
		{StateAwaitingGeneration, StateAwaitingSelection},
		{StateAwaitingSelection, StateAwaitingQuestionDelivery},
		{StateAwaitingQuestionDelivery, StateAwaitingAnswer},
		{StateAwaitingGrade, StateAwaitingUpdate},
		{StateContinue, StateAwaitingSelection},
	}
	for _, s := range steps {
		if got := NextState(s.from, l); got != s.to {
			t.Errorf("NextState(%s) = %s, want %s", s.from, got, s.to)
		}
	}

	// Awaiting-answer holds until the answer lands.
	l.AwaitingAnswer = true
	if got := NextState(StateAwaitingAnswer, l); got != StateAwaitingAnswer {
		t.Errorf("expected hold in awaiting-answer, got %s", got)
	}
	l.AwaitingAnswer = false
	if got := NextState(StateAwaitingAnswer, l); got != StateAwaitingGrade {
		t.Errorf("expected advance to awaiting-grade, got %s", got)
	}

	// Update branches on the terminal condition.
	if got := NextState(StateAwaitingUpdate, l); got != StateContinue {
		t.Errorf("expected continue, got %s", got)
	}
	l.Turn = 2
	if got := NextState(StateAwaitingUpdate, l); got != StateTerminal {
		t.Errorf("expected terminal at max turns, got %s", got)
	}
}
