package sampling

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/openagora/agora-backend/internal/types"
)

// Weights for the legacy weighted-sum priority. Predates the Bayesian model;
// kept only behind Config.LegacyPriority.
const (
	legacyBaseWeight        = 0.35
	legacyUncertaintyWeight = 0.30
	legacyRecencyWeight     = 0.15
	legacyTopMeanWeight     = 0.20
)

// percentileRanks ranks proposals with at least one evaluation by raw mean,
// ascending, assigning index/(n-1). A single ranked proposal gets 0.5, and
// unevaluated proposals default to the same neutral 0.5.
func percentileRanks(proposals []types.ProposalAggregate) map[uuid.UUID]float64 {
	ranks := make(map[uuid.UUID]float64, len(proposals))

	type ranked struct {
		id   uuid.UUID
		mean float64
	}
	evaluated := make([]ranked, 0, len(proposals))
	for _, p := range proposals {
		if p.NumberOfEvaluators < 1 {
			ranks[p.ID] = 0.5
			continue
		}
		evaluated = append(evaluated, ranked{id: p.ID, mean: p.SumEvaluations / float64(p.NumberOfEvaluators)})
	}

	sort.SliceStable(evaluated, func(i, j int) bool { return evaluated[i].mean < evaluated[j].mean })

	n := len(evaluated)
	for i, e := range evaluated {
		if n == 1 {
			ranks[e.id] = 0.5
		} else {
			ranks[e.id] = float64(i) / float64(n-1)
		}
	}
	return ranks
}

// legacyPriority is the old single-factor formula: a weighted sum of the
// normalized mean, remaining uncertainty, recency and the cross-proposal
// top-mean percentile.
func legacyPriority(stats types.ProposalStats, temporal, percentile float64, cfg Config) float64 {
	base := (stats.Mean + 1) / 2
	uncertainty := math.Min(1, stats.SEM/BaseUncertainty)
	recency := temporal - 1 // 0 for old proposals, up to 1 for brand new

	score := legacyBaseWeight*base +
		legacyUncertaintyWeight*uncertainty +
		legacyRecencyWeight*recency +
		legacyTopMeanWeight*percentile

	if score < cfg.ExplorationFloor {
		score = cfg.ExplorationFloor
	}
	return clamp01(score)
}
