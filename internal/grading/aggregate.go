package grading

import "math"

// Aspect weights for the final score. Depth counts slightly more than
// coverage and evidence; communication slightly less.
const (
	weightCoverage      = 1.0
	weightDepth         = 1.2
	weightEvidence      = 1.0
	weightCommunication = 0.6
)

// Aggregate derives the final Grade from a model draft.
//
// A factual error forces every aspect and the final score to 1. Otherwise the
// score is the weighted average of the aspect scores, rounded half-up and
// clamped to [1,5], with a cap at 2 when any single aspect scored 2 or below.
func Aggregate(d Draft) Grade {
	if d.FactualError {
		one := func(a AspectScore) AspectScore {
			a.Score = 1
			return a
		}
		return Grade{
			Score:        1,
			Reasoning:    d.Reasoning,
			FactualError: true,
			Aspects: Aspects{
				Coverage:       one(d.Aspects.Coverage),
				TechnicalDepth: one(d.Aspects.TechnicalDepth),
				Evidence:       one(d.Aspects.Evidence),
				Communication:  one(d.Aspects.Communication),
			},
		}
	}

	weighted := weightCoverage*float64(d.Aspects.Coverage.Score) +
		weightDepth*float64(d.Aspects.TechnicalDepth.Score) +
		weightEvidence*float64(d.Aspects.Evidence.Score) +
		weightCommunication*float64(d.Aspects.Communication.Score)
	total := weightCoverage + weightDepth + weightEvidence + weightCommunication

	score := int(math.Floor(weighted/total + 0.5))
	if score < 1 {
		score = 1
	}
	if score > 5 {
		score = 5
	}

	// One weak aspect caps the whole answer; strong prose elsewhere must not
	// hide a real gap.
	if lowestAspect(d.Aspects) <= 2 && score > 2 {
		score = 2
	}

	return Grade{
		Score:        score,
		Reasoning:    d.Reasoning,
		FactualError: false,
		Aspects:      d.Aspects,
	}
}

func lowestAspect(a Aspects) int {
	low := a.Coverage.Score
	for _, s := range []int{a.TechnicalDepth.Score, a.Evidence.Score, a.Communication.Score} {
		if s < low {
			low = s
		}
	}
	return low
}
