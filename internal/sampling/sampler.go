package sampling

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/openagora/agora-backend/internal/logger"
	"github.com/openagora/agora-backend/internal/types"
)

// Sampler decides which proposals a user should evaluate next. It is purely
// computational: every call works on the aggregate snapshot the caller passes
// in, holds no cross-call state beyond its config, and is safe for concurrent
// use. Config updates swap an immutable copy, so scoring calls in flight keep
// a consistent view.
type Sampler struct {
	log *logger.Logger
	rng Rand
	now func() time.Time
	cfg atomic.Pointer[Config]
}

type Option func(*Sampler)

// WithRand injects the uniform randomness source. Tests pass a seeded one.
func WithRand(r Rand) Option {
	return func(s *Sampler) { s.rng = r }
}

// WithClock injects the time source used for recency calculations.
func WithClock(now func() time.Time) Option {
	return func(s *Sampler) { s.now = now }
}

func NewSampler(baseLog *logger.Logger, cfg Config, opts ...Option) (*Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Sampler{
		log: baseLog.With("component", "Sampler"),
		rng: NewRand(),
		now: time.Now,
	}
	s.cfg.Store(&cfg)
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the current configuration snapshot.
func (s *Sampler) Config() Config {
	return *s.cfg.Load()
}

// UpdateConfig applies a partial update copy-on-write. Scoring calls that
// started before the swap finish under the old config.
func (s *Sampler) UpdateConfig(patch ConfigPatch) (Config, error) {
	for {
		cur := s.cfg.Load()
		next, err := cur.Apply(patch)
		if err != nil {
			return *cur, err
		}
		if s.cfg.CompareAndSwap(cur, &next) {
			s.log.Info("Sampling config updated",
				"targetEvaluations", next.TargetEvaluations,
				"targetSEM", next.TargetSEM,
				"explorationKappa", next.ExplorationKappa,
				"legacyPriority", next.LegacyPriority)
			return next, nil
		}
	}
}

// ComputeStats derives the Bayesian estimate for one aggregate under the
// current config.
func (s *Sampler) ComputeStats(agg types.ProposalAggregate) types.ProposalStats {
	return ComputeStats(agg.SumEvaluations, agg.SumSquaredEvaluations, agg.NumberOfEvaluators, s.Config())
}

// ScoreProposal scores a single proposal: priority, derived stats and the
// stability flag. The Thompson component draws fresh randomness per call.
func (s *Sampler) ScoreProposal(agg types.ProposalAggregate) types.ScoredProposal {
	cfg := s.Config()
	return s.scoreOne(agg, cfg, s.now())
}

func (s *Sampler) scoreOne(agg types.ProposalAggregate, cfg Config, now time.Time) types.ScoredProposal {
	stats := ComputeStats(agg.SumEvaluations, agg.SumSquaredEvaluations, agg.NumberOfEvaluators, cfg)
	temporal := temporalMultiplier(agg.CreatedAt, now, cfg)
	stable := isStable(stats, cfg)
	return types.ScoredProposal{
		ProposalID: agg.ID,
		Priority:   combinePriority(s.rng, stats, temporal, stable, cfg),
		Stats:      stats,
		IsStable:   stable,
	}
}

// SelectBatch picks the next count proposals for a user: proposals already
// evaluated by that user and proposals scored as stable are dropped, the rest
// are scored and returned in descending priority order. Ties keep input
// order. count <= 0 and empty input both yield an empty, well-formed result.
func (s *Sampler) SelectBatch(proposals []types.ProposalAggregate, evaluatedIDs map[uuid.UUID]struct{}, count int) types.SelectionResult {
	cfg := s.Config()
	now := s.now()

	var ranks map[uuid.UUID]float64
	if cfg.LegacyPriority {
		ranks = percentileRanks(proposals)
	}

	stableCount := 0
	candidates := make([]types.ScoredProposal, 0, len(proposals))
	for _, p := range proposals {
		stats := ComputeStats(p.SumEvaluations, p.SumSquaredEvaluations, p.NumberOfEvaluators, cfg)
		stable := isStable(stats, cfg)
		if stable {
			stableCount++
			continue
		}
		if _, done := evaluatedIDs[p.ID]; done {
			continue
		}
		temporal := temporalMultiplier(p.CreatedAt, now, cfg)
		var priority float64
		if cfg.LegacyPriority {
			priority = legacyPriority(stats, temporal, ranks[p.ID], cfg)
		} else {
			priority = combinePriority(s.rng, stats, temporal, false, cfg)
		}
		candidates = append(candidates, types.ScoredProposal{
			ProposalID: p.ID,
			Priority:   priority,
			Stats:      stats,
			IsStable:   false,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority > candidates[j].Priority
	})

	if count < 0 {
		count = 0
	}
	take := count
	if take > len(candidates) {
		take = len(candidates)
	}

	selected := make([]uuid.UUID, 0, take)
	for _, c := range candidates[:take] {
		selected = append(selected, c.ProposalID)
	}

	remaining := len(candidates) - count
	if remaining < 0 {
		remaining = 0
	}

	return types.SelectionResult{
		Selected: selected,
		Scored:   candidates[:take],
		HasMore:  len(candidates) > count,
		Stats: types.BatchStats{
			TotalCount:     len(proposals),
			EvaluatedCount: len(evaluatedIDs),
			StableCount:    stableCount,
			RemainingCount: remaining,
		},
	}
}
