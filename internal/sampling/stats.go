package sampling

import (
	"math"

	"github.com/openagora/agora-backend/internal/types"
)

// ComputeStats turns a raw evaluation aggregate into a Bayesian estimate.
// The posterior mean blends a prior pseudo-count into the sample mean so a
// single early vote cannot produce an extreme, over-confident estimate, and
// the SEM is floored so near-zero observed variance never reads as certainty.
func ComputeStats(sum, sumSquared float64, n int, cfg Config) types.ProposalStats {
	if n <= 0 {
		return types.ProposalStats{
			Mean:                0,
			PosteriorMean:       cfg.PriorMean,
			Variance:            0,
			SEM:                 BaseUncertainty,
			EvaluationCount:     0,
			EffectiveSampleSize: cfg.PriorStrength,
		}
	}

	fn := float64(n)
	rawMean := sum / fn
	effectiveN := fn + cfg.PriorStrength
	posteriorMean := (cfg.PriorStrength*cfg.PriorMean + sum) / effectiveN

	// sumSquared/n - mean^2 can dip below zero from floating cancellation.
	variance := sumSquared/fn - rawMean*rawMean
	if variance < 0 {
		variance = 0
	}

	var sem float64
	if n > 1 {
		stdDev := math.Sqrt(variance)
		if stdDev < BaseUncertainty/2 {
			stdDev = BaseUncertainty / 2
		}
		sem = stdDev / math.Sqrt(effectiveN)
	} else {
		sem = BaseUncertainty / math.Sqrt(effectiveN)
	}
	if sem < MinSEM {
		sem = MinSEM
	}

	return types.ProposalStats{
		Mean:                rawMean,
		PosteriorMean:       posteriorMean,
		Variance:            variance,
		SEM:                 sem,
		EvaluationCount:     n,
		EffectiveSampleSize: effectiveN,
	}
}
