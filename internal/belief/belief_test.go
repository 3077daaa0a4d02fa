package belief

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// twoPass computes mean and M2 over the full observation set the slow way:
// prior pseudo-samples at PriorMean (contributing PriorStrength*PriorVariance
// to M2) plus the real scores.
func twoPass(scores []float64) (mean, m2 float64) {
	n := PriorStrength + len(scores)
	sum := PriorMean * PriorStrength
	for _, s := range scores {
		sum += s
	}
	mean = sum / float64(n)

	m2 = PriorStrength * PriorVariance
	m2 += PriorStrength * (PriorMean - mean) * (PriorMean - mean)
	for _, s := range scores {
		m2 += (s - mean) * (s - mean)
	}
	return mean, m2
}

func TestNew_SeedsPrior(t *testing.T) {
	b := New()
	if b.Count != PriorStrength {
		t.Errorf("Count = %d, want %d", b.Count, PriorStrength)
	}
	if !almostEqual(b.Mean, PriorMean) {
		t.Errorf("Mean = %f, want %f", b.Mean, PriorMean)
	}
	if !almostEqual(b.SumSqDev, PriorStrength*PriorVariance) {
		t.Errorf("SumSqDev = %f, want %f", b.SumSqDev, float64(PriorStrength*PriorVariance))
	}
	if b.RealObservations() != 0 {
		t.Errorf("RealObservations = %d, want 0", b.RealObservations())
	}
}

func TestEnsurePrior_Idempotent(t *testing.T) {
	b := New()
	b.Observe(4)
	count, mean, m2 := b.Count, b.Mean, b.SumSqDev
	b.EnsurePrior()
	if b.Count != count || b.Mean != mean || b.SumSqDev != m2 {
		t.Error("EnsurePrior mutated an already-seeded belief")
	}
}

func TestObserve_MatchesTwoPass(t *testing.T) {
	sequences := [][]float64{
		{3},
		{5, 5, 5},
		{1, 5, 3, 4, 2},
		{4.0, 4.2, 4.4},
		{2, 2, 2, 2, 2, 2, 2, 2},
	}

	for _, scores := range sequences {
		b := New()
		for _, s := range scores {
			b.Observe(s)
		}

		wantMean, wantM2 := twoPass(scores)
		if !almostEqual(b.Mean, wantMean) {
			t.Errorf("scores %v: Mean = %f, want %f", scores, b.Mean, wantMean)
		}
		if !almostEqual(b.SumSqDev, wantM2) {
			t.Errorf("scores %v: SumSqDev = %f, want %f", scores, b.SumSqDev, wantM2)
		}
		if b.Count != PriorStrength+len(scores) {
			t.Errorf("scores %v: Count = %d, want %d", scores, b.Count, PriorStrength+len(scores))
		}
	}
}

func TestObserve_SumSqDevNeverNegative(t *testing.T) {
	b := New()
	// Constant scores drive the variance toward zero; M2 must stay >= 0
	// through any amount of floating-point drift.
	for i := 0; i < 500; i++ {
		b.Observe(3.3)
		if b.SumSqDev < 0 {
			t.Fatalf("SumSqDev went negative after %d updates: %g", i+1, b.SumSqDev)
		}
	}
}

func TestComputeBounds_ZeroZ(t *testing.T) {
	b := New()
	for _, s := range []float64{4, 3, 5, 4} {
		b.Observe(s)
	}
	b.ComputeBounds(0, true)
	if !almostEqual(b.Lower, b.Mean) || !almostEqual(b.Upper, b.Mean) {
		t.Errorf("z=0: lcb=%f ucb=%f, both want mean=%f", b.Lower, b.Upper, b.Mean)
	}
}

func TestComputeBounds_Idempotent(t *testing.T) {
	b := New()
	b.Observe(4)
	b.Observe(5)
	b.ComputeBounds(1.96, true)
	se, lo, hi := b.StdErr, b.Lower, b.Upper
	b.ComputeBounds(1.96, true)
	if b.StdErr != se || b.Lower != lo || b.Upper != hi {
		t.Errorf("second ComputeBounds changed results: se %f→%f lcb %f→%f ucb %f→%f",
			se, b.StdErr, lo, b.Lower, hi, b.Upper)
	}
}

func TestComputeBounds_FloorOnSparseData(t *testing.T) {
	b := New()
	b.Observe(3)
	b.ComputeBounds(1.96, false)
	if b.StdErr < SEFloor-epsilon {
		t.Errorf("StdErr = %f with 1 real observation, want >= floor %f", b.StdErr, SEFloor)
	}

	// Many consistent observations shrink SE below the floor once the
	// guard count is passed.
	for i := 0; i < 40; i++ {
		b.Observe(3)
	}
	b.ComputeBounds(1.96, false)
	if b.StdErr >= SEFloor {
		t.Errorf("StdErr = %f after 41 real observations, want below floor", b.StdErr)
	}
}

func TestComputeBounds_TightenWithConsistentData(t *testing.T) {
	b := New()
	for i := 0; i < 3; i++ {
		b.Observe(4)
	}
	b.ComputeBounds(1.96, true)
	prevLower, prevUpper := b.Lower, b.Upper

	// More observations at the same score: the interval only narrows.
	for i := 0; i < 10; i++ {
		b.Observe(4)
		b.ComputeBounds(1.96, true)
		if b.Lower < prevLower-epsilon {
			t.Fatalf("lower bound regressed: %f -> %f", prevLower, b.Lower)
		}
		if b.Upper > prevUpper+epsilon {
			t.Fatalf("upper bound widened: %f -> %f", prevUpper, b.Upper)
		}
		prevLower, prevUpper = b.Lower, b.Upper
	}
}

func TestMeetsVerification(t *testing.T) {
	b := New()
	for _, s := range []float64{4.0, 4.2, 4.4} {
		b.Observe(s)
	}
	b.ComputeBounds(1.0, false)

	if !b.MeetsVerification(2.9, 2) {
		t.Errorf("want verified: lcb=%f real=%d against threshold 2.9 min 2", b.Lower, b.RealObservations())
	}
	if b.MeetsVerification(3.5, 4) {
		t.Error("want not verified with min_observations=4 and only 3 real samples")
	}
}

func TestTotalRealObservations(t *testing.T) {
	a := New()
	a.Observe(4)
	a.Observe(5)
	c := New()
	c.Observe(3)

	total := TotalRealObservations(map[string]*Belief{"a": a, "b": New(), "c": c})
	if total != 3 {
		t.Errorf("TotalRealObservations = %d, want 3", total)
	}
}
