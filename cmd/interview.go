package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/skillprobe/internal/grading"
	"github.com/abhisek/skillprobe/internal/interview"
	"github.com/abhisek/skillprobe/internal/llm"
	"github.com/abhisek/skillprobe/internal/policy"
	"github.com/abhisek/skillprobe/internal/profile"
	"github.com/abhisek/skillprobe/internal/qgen"
	"github.com/abhisek/skillprobe/internal/simulate"
	"github.com/abhisek/skillprobe/internal/store"
)

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Start or resume an adaptive interview",
	Long: "Runs the interview loop: each turn the next skill is chosen by an\n" +
		"upper-confidence-bound policy, a question is asked, and the graded answer\n" +
		"updates the skill's belief. Answers come from stdin, or from a simulated\n" +
		"candidate with --simulate. Type \"quit\" to stop; the session is saved\n" +
		"after every turn and can be resumed with --session.",
	RunE: runInterview,
}

func init() {
	interviewCmd.Flags().String("profile", "", "Path to a candidate profile JSON file")
	interviewCmd.Flags().String("skills", "", "Comma-separated skill list (alternative to --profile)")
	interviewCmd.Flags().String("session", "", "Session ID to resume (or name a new one)")
	interviewCmd.Flags().Bool("simulate", false, "Answer questions with a simulated candidate")
	interviewCmd.Flags().String("persona", "", "Persona for the simulated candidate")
	interviewCmd.Flags().Int("max-turns", 0, "Override the turn budget")
	interviewCmd.Flags().Int("min-questions", 0, "Override the per-skill verification minimum")
	interviewCmd.Flags().Float64("verify-lcb", 0, "Override the verification lower-bound threshold")
	interviewCmd.Flags().Float64("exploration", 0, "Override the exploration constant")
	interviewCmd.Flags().String("mode", "", "Selection mode: ucb1 or se")
	interviewCmd.Flags().Bool("keep-verified", false, "Never revoke verified status once granted")
}

func runInterview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := openStore(cmd)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	provider, err := buildProvider(ctx, st)
	if err != nil {
		return err
	}

	ledger, err := loadOrCreateLedger(cmd, st)
	if err != nil {
		return err
	}

	gen := qgen.New(provider, qgen.DefaultConfig())
	grader := grading.New(provider, grading.DefaultConfig())
	iv := interview.New(ledger, gen, grader)

	simulated, _ := cmd.Flags().GetBool("simulate")
	persona, _ := cmd.Flags().GetString("persona")
	var sim *simulate.Simulator
	if simulated {
		sim = simulate.New(provider)
	}

	fmt.Printf("Session %s — probing: %s\n", ledger.SessionID, strings.Join(ledger.Skills, ", "))

	reader := bufio.NewReader(os.Stdin)
	var answer *string
	for {
		l, err := iv.RunTurn(ctx, answer)
		if saveErr := saveLedger(ctx, st, l); saveErr != nil {
			return saveErr
		}
		if err != nil {
			return err
		}

		if answer != nil && l.LastGrade != nil {
			g := l.LastGrade
			fmt.Printf("\nScore: %d/5 — %s\n", g.Score, g.Reasoning)
		}
		answer = nil

		if reason, done := l.TerminalReason(); done {
			fmt.Printf("\nInterview finished (%s) after %d turns.\n\n", reason, l.Turn)
			printSummaries(l)
			return nil
		}

		q := l.CurrentQuestion
		fmt.Printf("\n[%s] (difficulty %d/5)\n%s\n", q.Skill, q.Difficulty, q.Text)

		var text string
		if sim != nil {
			text, err = sim.Answer(ctx, simulate.Input{
				Skill:    q.Skill,
				Question: q.Text,
				Persona:  persona,
				History:  answeredHistory(l),
			})
			if err != nil {
				return err
			}
			fmt.Printf("> %s\n", text)
		} else {
			fmt.Print("> ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			text = strings.TrimSpace(line)
			if text == "quit" {
				fmt.Println("Session saved. Resume with --session", l.SessionID)
				return nil
			}
		}
		answer = &text
	}
}

// buildProvider picks the LLM backend from SKILLPROBE_* variables, falling
// back to whichever standard API key env var is set.
func buildProvider(ctx context.Context, st *store.Store) (llm.Provider, error) {
	cfg := llm.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			return nil, fmt.Errorf("no LLM provider configured: %w", err)
		}
		cfg = discovered
	}
	return llm.NewProvider(ctx, cfg, st.EventRepo())
}

// loadOrCreateLedger resumes the named session if stored, otherwise builds a
// fresh ledger from --profile or --skills.
func loadOrCreateLedger(cmd *cobra.Command, st *store.Store) (*interview.Ledger, error) {
	sessionID, _ := cmd.Flags().GetString("session")

	if sessionID != "" {
		data, err := st.Sessions().Load(cmd.Context(), sessionID)
		if err == nil {
			return interview.LoadLedger(data)
		}
		if !errors.Is(err, store.ErrSessionNotFound) {
			return nil, err
		}
	}

	skills, spans, err := resolveSkills(cmd)
	if err != nil {
		return nil, err
	}

	cfg := interview.DefaultConfig()
	if v, _ := cmd.Flags().GetInt("max-turns"); v > 0 {
		cfg.MaxTurns = v
	}
	if v, _ := cmd.Flags().GetInt("min-questions"); v > 0 {
		cfg.MinQuestionsPerSkill = v
	}
	if v, _ := cmd.Flags().GetFloat64("verify-lcb"); v > 0 {
		cfg.VerifyLowerBound = v
	}
	if v, _ := cmd.Flags().GetFloat64("exploration"); v > 0 {
		cfg.ExplorationC = v
	}
	if v, _ := cmd.Flags().GetString("mode"); v != "" {
		cfg.SelectionMode = policy.Mode(v)
	}
	if keep, _ := cmd.Flags().GetBool("keep-verified"); keep {
		cfg.RevokeVerified = false
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return interview.NewLedger(sessionID, skills, spans, cfg), nil
}

// resolveSkills derives the skill list and evidence spans from --profile or
// --skills.
func resolveSkills(cmd *cobra.Command) ([]string, map[string][]string, error) {
	profilePath, _ := cmd.Flags().GetString("profile")
	skillList, _ := cmd.Flags().GetString("skills")

	if profilePath != "" {
		p, err := profile.Load(profilePath)
		if err != nil {
			return nil, nil, err
		}
		return p.DeriveSkills(), p.BuildSpans(), nil
	}

	if skillList != "" {
		var skills []string
		for _, s := range strings.Split(skillList, ",") {
			if s = strings.TrimSpace(strings.ToLower(s)); s != "" {
				skills = append(skills, s)
			}
		}
		if len(skills) > 0 {
			return skills, nil, nil
		}
	}

	return nil, nil, errors.New("a new session needs --profile or --skills")
}

func saveLedger(ctx context.Context, st *store.Store, l *interview.Ledger) error {
	data, err := l.Marshal()
	if err != nil {
		return err
	}
	return st.Sessions().Save(ctx, l.SessionID, data)
}

// answeredHistory formats the answered turns for the simulated candidate so
// its answers stay consistent across the session.
func answeredHistory(l *interview.Ledger) []string {
	var lines []string
	for _, e := range l.History {
		if !e.Answered {
			continue
		}
		lines = append(lines, fmt.Sprintf("Q: %s\nA: %s", e.Question, e.Answer))
	}
	return lines
}
