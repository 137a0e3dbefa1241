package sampling

import (
	"math"

	"github.com/openagora/agora-backend/internal/types"
)

// z-score for a 95% confidence interval.
const ciZ = 1.96

// ucbScore is the exploitation/vetting signal: the posterior mean plus an
// optimistic confidence bonus, mapped from [-1,1] onto [0,1]. It may exceed 1
// before the combiner's final clamp; an over-unity value means "needs
// verification now".
func ucbScore(stats types.ProposalStats, temporal float64, cfg Config) float64 {
	ucb := stats.PosteriorMean + cfg.ExplorationKappa*stats.SEM*temporal
	return (ucb + 1) / 2
}

// thompsonScore draws once from the proposal's believed score distribution.
// High-certainty proposals sample tightly around their mean, uncertain ones
// sample broadly. This is the exploration arm.
func thompsonScore(r Rand, stats types.ProposalStats, temporal float64) float64 {
	sample := stats.PosteriorMean + normFloat64(r)*(stats.SEM*temporal)
	return clamp01((sample + 1) / 2)
}

// recoveryScore counters early-vote burial. A proposal whose mean is negative
// but statistically indistinguishable from zero gets a real second chance; a
// confidently negative one keeps only a small residual.
func recoveryScore(stats types.ProposalStats, cfg Config) float64 {
	if stats.PosteriorMean >= 0 {
		return 0
	}
	ratio := stats.SEM / cfg.TargetSEM
	if ratio > 2 {
		ratio = 2
	}
	upper := stats.PosteriorMean + ciZ*stats.SEM
	if upper > 0 {
		return math.Min(1, ratio*0.8)
	}
	return math.Min(0.5, ratio*0.3)
}

// proximityScore rewards proposals whose 95% CI straddles zero: their sign is
// still undetermined and evaluations there resolve the most ranking ambiguity.
func proximityScore(stats types.ProposalStats) float64 {
	lower := stats.PosteriorMean - ciZ*stats.SEM
	upper := stats.PosteriorMean + ciZ*stats.SEM
	if lower >= 0 || upper <= 0 {
		return 0
	}
	return (1 - math.Min(1, math.Abs(stats.PosteriorMean)/stats.SEM)) * 0.8
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
