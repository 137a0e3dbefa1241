package sampling

import "github.com/openagora/agora-backend/internal/types"

// isStable is the terminal-state test: enough evaluations AND low enough
// uncertainty. Both are required — many votes with irreducible high variance
// never settle a proposal.
func isStable(stats types.ProposalStats, cfg Config) bool {
	return stats.EvaluationCount >= cfg.TargetEvaluations && stats.SEM < cfg.TargetSEM
}
