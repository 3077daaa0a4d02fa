// Package belief maintains per-skill proficiency estimates.
//
// Each skill carries a Belief: a running mean and Welford M2 accumulator
// over graded answers on the 1-5 rubric, seeded with a small prior so the
// estimate is never degenerate before real evidence arrives. Confidence
// bounds derived from the Belief drive both question selection and
// verification decisions.
package belief

import "math"

const (
	// PriorMean is the neutral midpoint the prior pseudo-observations sit at.
	PriorMean = 2.5

	// PriorVariance is the assumed score variance on the 1-5 rubric before
	// any real evidence exists.
	PriorVariance = 1.5

	// PriorStrength is the number of pseudo-observations injected at creation.
	PriorStrength = 2

	// SEFloor is the minimum standard error while the sample is tiny.
	SEFloor = 0.25

	// SEFloorMinReal keeps the floor active until this many real observations.
	SEFloorMinReal = 2
)

// Belief is the statistical record for a single skill. Count includes the
// prior pseudo-observations; SumSqDev is the Welford M2 accumulator and is
// never negative. StdErr and the bounds are derived fields refreshed by
// ComputeBounds.
type Belief struct {
	Count    int     `json:"n"`
	Mean     float64 `json:"mean"`
	SumSqDev float64 `json:"m2"`
	PriorVar float64 `json:"prior_var"`
	StdErr   float64 `json:"se"`
	Lower    float64 `json:"lcb"`
	Upper    float64 `json:"ucb"`
}

// New returns a Belief seeded with the prior: PriorStrength pseudo-samples
// at PriorMean contributing PriorStrength*PriorVariance to M2.
func New() *Belief {
	b := &Belief{}
	b.EnsurePrior()
	return b
}

// EnsurePrior initialises the prior fields if the record is empty. Safe to
// call on an already-seeded Belief.
func (b *Belief) EnsurePrior() {
	if b.Count == 0 {
		b.Count = PriorStrength
		b.Mean = PriorMean
		b.SumSqDev = PriorStrength * PriorVariance
	}
	if b.PriorVar == 0 {
		b.PriorVar = PriorVariance
	}
}

// Observe folds a single graded score into the running statistics using
// Welford's single-pass update. M2 is clamped at zero to absorb
// floating-point drift. Always succeeds.
func (b *Belief) Observe(score float64) {
	b.EnsurePrior()

	b.Count++
	delta := score - b.Mean
	b.Mean += delta / float64(b.Count)
	b.SumSqDev += delta * (score - b.Mean)
	if b.SumSqDev < 0 {
		b.SumSqDev = 0
	}
}

// RealObservations returns the number of graded answers beyond the prior
// pseudo-counts. Never negative.
func (b *Belief) RealObservations() int {
	b.EnsurePrior()
	n := b.Count - PriorStrength
	if n < 0 {
		return 0
	}
	return n
}

// ComputeBounds refreshes StdErr, Lower and, when withUpper is set, Upper
// from the current statistics and the given z multiplier. Idempotent: the
// running statistics are read, never written.
func (b *Belief) ComputeBounds(z float64, withUpper bool) {
	b.EnsurePrior()

	denom := b.Count - 1
	if denom < 1 {
		denom = 1
	}
	variance := b.SumSqDev / float64(denom)
	if variance < 0 {
		variance = 0
	}

	n := b.Count
	if n < 1 {
		n = 1
	}
	se := math.Sqrt(variance / float64(n))

	// Guard against overconfident bounds from sparse data.
	if b.RealObservations() < SEFloorMinReal && se < SEFloor {
		se = SEFloor
	}

	b.StdErr = se
	b.Lower = b.Mean - z*se
	if withUpper {
		b.Upper = b.Mean + z*se
	}
}

// MeetsVerification reports whether the skill has enough real evidence and
// its lower confidence bound clears the threshold. Pure; reads the Lower
// field as last computed.
func (b *Belief) MeetsVerification(threshold float64, minReal int) bool {
	return b.RealObservations() >= minReal && b.Lower >= threshold
}

// TotalRealObservations sums real (non-prior) observations across skills.
func TotalRealObservations(beliefs map[string]*Belief) int {
	total := 0
	for _, b := range beliefs {
		total += b.RealObservations()
	}
	return total
}
