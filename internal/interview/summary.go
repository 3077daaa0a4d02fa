package interview

// Skill status labels.
const (
	StatusProbing  = "probing"
	StatusVerified = "verified"
	StatusInactive = "inactive"
)

// SkillSummary is the read-only reporting view of one skill's belief.
type SkillSummary struct {
	Skill   string  `json:"skill"`
	Status  string  `json:"status"`
	RealObs int     `json:"n"`
	Mean    float64 `json:"mean"`
	StdErr  float64 `json:"se"`
	Lower   float64 `json:"lcb"`
}

// recomputeSummaries rebuilds the per-skill summaries in skill order.
func (l *Ledger) recomputeSummaries() {
	out := make([]SkillSummary, 0, len(l.Skills))
	for _, s := range l.Skills {
		b := l.Beliefs[s]
		if b == nil {
			continue
		}

		status := StatusProbing
		switch {
		case l.Verified[s]:
			status = StatusVerified
		case l.Inactive[s]:
			status = StatusInactive
		}

		out = append(out, SkillSummary{
			Skill:   s,
			Status:  status,
			RealObs: b.RealObservations(),
			Mean:    b.Mean,
			StdErr:  b.StdErr,
			Lower:   b.Lower,
		})
	}
	l.Summaries = out
}
