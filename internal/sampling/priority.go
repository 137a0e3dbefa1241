package sampling

import "github.com/openagora/agora-backend/internal/types"

// Blend weights for the priority combiner. Tunable design constants, not
// user-exposed config.
const (
	ucbWeight       = 0.55
	thompsonWeight  = 0.45
	recoveryWeight  = 0.15
	proximityWeight = 0.10
)

// combinePriority blends the UCB, Thompson, recovery and proximity signals
// into one score in [ExplorationFloor, 1]. Stable proposals get a small
// randomized tiebreaker in [0.05, 0.10] instead, so they still surface
// occasionally without starving variety.
func combinePriority(r Rand, stats types.ProposalStats, temporal float64, stable bool, cfg Config) float64 {
	if stable {
		return 0.05 + r.Float64()*0.05
	}

	base := ucbWeight*ucbScore(stats, temporal, cfg) + thompsonWeight*thompsonScore(r, stats, temporal)
	withBonus := base + recoveryWeight*recoveryScore(stats, cfg) + proximityWeight*proximityScore(stats)

	if withBonus > 1 {
		withBonus = 1
	}
	if withBonus < cfg.ExplorationFloor {
		withBonus = cfg.ExplorationFloor
	}
	return withBonus
}
