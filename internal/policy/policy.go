// Package policy chooses which skill to probe next.
//
// The default rule is UCB1: each candidate scores its posterior mean plus an
// exploration bonus that shrinks as the skill accumulates real observations.
// Skills with no evidence get the maximal bonus, so every skill is probed at
// least once early in a session. An alternative mode scales the bonus by the
// belief's standard error instead.
package policy

import (
	"errors"
	"fmt"
	"math"

	"github.com/abhisek/skillprobe/internal/belief"
)

// Mode selects the exploration-bonus formula.
type Mode string

const (
	// ModeUCB1 uses the classic sqrt(ln T / n) bonus.
	ModeUCB1 Mode = "ucb1"

	// ModeStdErr scales the bonus by the belief's standard error.
	ModeStdErr Mode = "se"
)

// ErrNoCandidates is returned when Select is called with no skills.
var ErrNoCandidates = errors.New("selection requires at least one candidate skill")

// Candidate is the audit record for one skill considered during selection.
type Candidate struct {
	Skill   string
	Mean    float64
	RealObs int
	Bonus   float64
	Score   float64
}

// Result carries the selected skill plus the full audit trail.
type Result struct {
	Skill      string
	Score      float64
	Candidates []Candidate
	Logs       []string
}

// Select picks one skill from the candidates. The skills slice fixes the
// evaluation order: ties go to the earlier entry. Beliefs must contain an
// entry for every listed skill; missing entries are seeded with the prior.
func Select(skills []string, beliefs map[string]*belief.Belief, c float64, mode Mode) (*Result, error) {
	if len(skills) == 0 {
		return nil, ErrNoCandidates
	}
	if mode == "" {
		mode = ModeUCB1
	}

	totalReal := belief.TotalRealObservations(beliefs)
	t := totalReal + 1
	if t < 2 {
		t = 2
	}

	res := &Result{
		Logs: []string{fmt.Sprintf("select mode=%s C=%g t=%d", mode, c, t)},
	}

	best := math.Inf(-1)
	bestUnseen := false
	for _, skill := range skills {
		b := beliefs[skill]
		if b == nil {
			b = belief.New()
			beliefs[skill] = b
		}
		b.EnsurePrior()

		realN := b.RealObservations()
		var bonus float64
		switch mode {
		case ModeStdErr:
			if b.StdErr == 0 {
				b.ComputeBounds(1.96, false)
			}
			bonus = c * b.StdErr
		default:
			n := realN
			if n < 1 {
				n = 1
			}
			bonus = c * math.Sqrt(math.Log(float64(t))/float64(n))
		}

		score := b.Mean + bonus
		cand := Candidate{
			Skill:   skill,
			Mean:    b.Mean,
			RealObs: realN,
			Bonus:   bonus,
			Score:   score,
		}
		res.Candidates = append(res.Candidates, cand)
		res.Logs = append(res.Logs, fmt.Sprintf(
			"UCB[%s] mean=%.2f real_n=%d bonus=%.3f -> %.3f",
			skill, cand.Mean, cand.RealObs, cand.Bonus, cand.Score))

		// A skill with no real observations is probed before the formula
		// gets a say, so every skill is seen at least once early. Within
		// each class, strict inequality keeps the first-seen skill on ties.
		unseen := realN == 0
		if (unseen && !bestUnseen) || (unseen == bestUnseen && score > best) {
			best = score
			bestUnseen = unseen
			res.Skill = skill
			res.Score = score
		}
	}

	res.Logs = append(res.Logs, fmt.Sprintf("selected %s (score=%.3f)", res.Skill, res.Score))
	return res, nil
}
