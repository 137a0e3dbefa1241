package sampling

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/openagora/agora-backend/internal/logger"
	"github.com/openagora/agora-backend/internal/types"
)

func newTestSampler(t *testing.T, cfg Config, opts ...Option) *Sampler {
	t.Helper()
	opts = append([]Option{WithRand(NewSeededRand(1))}, opts...)
	s, err := NewSampler(logger.NewNop(), cfg, opts...)
	if err != nil {
		t.Fatalf("NewSampler: %v", err)
	}
	return s
}

func fixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

func TestScoreProposalFreshProposalFavored(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestSampler(t, DefaultConfig(), WithClock(fixedClock(now)))

	scored := s.ScoreProposal(types.ProposalAggregate{ID: uuid.New(), CreatedAt: now})
	if scored.IsStable {
		t.Fatalf("fresh proposal marked stable")
	}
	if scored.Priority <= 0.5 {
		t.Fatalf("fresh proposal priority=%g, want > 0.5", scored.Priority)
	}
}

func TestScoreProposalStability(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	old := now.Add(-30 * 24 * time.Hour)
	s := newTestSampler(t, DefaultConfig(), WithClock(fixedClock(now)))

	cases := []struct {
		name       string
		agg        types.ProposalAggregate
		wantStable bool
	}{
		{
			name:       "thirty_consistent_votes",
			agg:        types.ProposalAggregate{ID: uuid.New(), SumEvaluations: 15, SumSquaredEvaluations: 7.5, NumberOfEvaluators: 30, CreatedAt: old},
			wantStable: true,
		},
		{
			name:       "under_target_count_regardless_of_variance",
			agg:        types.ProposalAggregate{ID: uuid.New(), SumEvaluations: 14.5, SumSquaredEvaluations: 7.25, NumberOfEvaluators: 29, CreatedAt: old},
			wantStable: false,
		},
		{
			name:       "many_votes_high_variance",
			agg:        types.ProposalAggregate{ID: uuid.New(), SumEvaluations: 0, SumSquaredEvaluations: 40, NumberOfEvaluators: 40, CreatedAt: old},
			wantStable: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scored := s.ScoreProposal(tc.agg)
			if scored.IsStable != tc.wantStable {
				t.Fatalf("isStable=%v (sem=%g, n=%d), want %v",
					scored.IsStable, scored.Stats.SEM, scored.Stats.EvaluationCount, tc.wantStable)
			}
		})
	}
}

func TestSelectBatchExcludesEvaluatedAndStable(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	old := now.Add(-10 * 24 * time.Hour)
	s := newTestSampler(t, DefaultConfig(), WithClock(fixedClock(now)))

	evaluatedID := uuid.New()
	stableID := uuid.New()
	openA := uuid.New()
	openB := uuid.New()
	proposals := []types.ProposalAggregate{
		{ID: evaluatedID, SumEvaluations: 2, SumSquaredEvaluations: 1.5, NumberOfEvaluators: 5, CreatedAt: old},
		{ID: stableID, SumEvaluations: 15, SumSquaredEvaluations: 7.5, NumberOfEvaluators: 30, CreatedAt: old},
		{ID: openA, SumEvaluations: 1, SumSquaredEvaluations: 0.5, NumberOfEvaluators: 4, CreatedAt: old},
		{ID: openB, CreatedAt: now},
	}
	evaluated := map[uuid.UUID]struct{}{evaluatedID: {}}

	result := s.SelectBatch(proposals, evaluated, 10)

	for _, id := range result.Selected {
		if id == evaluatedID {
			t.Fatalf("batch contains already-evaluated proposal")
		}
		if id == stableID {
			t.Fatalf("batch contains stable proposal")
		}
	}
	if len(result.Selected) != 2 {
		t.Fatalf("selected %d proposals, want 2", len(result.Selected))
	}
	if result.HasMore {
		t.Fatalf("hasMore=true with all candidates returned")
	}
	if result.Stats.TotalCount != 4 || result.Stats.EvaluatedCount != 1 || result.Stats.StableCount != 1 {
		t.Fatalf("batch stats=%+v, want total=4 evaluated=1 stable=1", result.Stats)
	}
}

func TestSelectBatchTruncationAndRemaining(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	old := now.Add(-5 * 24 * time.Hour)
	s := newTestSampler(t, DefaultConfig(), WithClock(fixedClock(now)))

	proposals := make([]types.ProposalAggregate, 0, 4)
	for i := 0; i < 4; i++ {
		proposals = append(proposals, types.ProposalAggregate{
			ID:                    uuid.New(),
			SumEvaluations:        float64(i) * 0.5,
			SumSquaredEvaluations: float64(i) * 0.5,
			NumberOfEvaluators:    i,
			CreatedAt:             old,
		})
	}

	result := s.SelectBatch(proposals, nil, 2)

	if len(result.Selected) != 2 {
		t.Fatalf("selected %d, want 2", len(result.Selected))
	}
	if !result.HasMore {
		t.Fatalf("hasMore=false, want true with 4 candidates and count=2")
	}
	if result.Stats.RemainingCount != 2 {
		t.Fatalf("remainingCount=%d, want 2", result.Stats.RemainingCount)
	}
}

func TestSelectBatchOrderedByPriority(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	old := now.Add(-3 * 24 * time.Hour)
	s := newTestSampler(t, DefaultConfig(), WithClock(fixedClock(now)))

	proposals := make([]types.ProposalAggregate, 0, 8)
	for i := 0; i < 8; i++ {
		proposals = append(proposals, types.ProposalAggregate{
			ID:                    uuid.New(),
			SumEvaluations:        float64(i%5) - 2,
			SumSquaredEvaluations: float64(i % 5),
			NumberOfEvaluators:    i % 5,
			CreatedAt:             old,
		})
	}

	result := s.SelectBatch(proposals, nil, 8)
	for i := 1; i < len(result.Scored); i++ {
		if result.Scored[i].Priority > result.Scored[i-1].Priority {
			t.Fatalf("batch not in descending priority order at index %d", i)
		}
	}
}

func TestSelectBatchDegenerateInputs(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestSampler(t, DefaultConfig(), WithClock(fixedClock(now)))

	empty := s.SelectBatch(nil, nil, 5)
	if len(empty.Selected) != 0 || empty.HasMore {
		t.Fatalf("empty input gave %d selected, hasMore=%v", len(empty.Selected), empty.HasMore)
	}

	proposals := []types.ProposalAggregate{{ID: uuid.New(), CreatedAt: now}}
	zero := s.SelectBatch(proposals, nil, 0)
	if len(zero.Selected) != 0 {
		t.Fatalf("count=0 gave %d selected", len(zero.Selected))
	}
	if !zero.HasMore {
		t.Fatalf("count=0 with one candidate should report hasMore")
	}
	if zero.Stats.RemainingCount != 1 {
		t.Fatalf("remainingCount=%d, want 1", zero.Stats.RemainingCount)
	}

	negative := s.SelectBatch(proposals, nil, -3)
	if len(negative.Selected) != 0 {
		t.Fatalf("count=-3 gave %d selected", len(negative.Selected))
	}
}

func TestSelectBatchRecencyAdvantage(t *testing.T) {
	// Same aggregates, different ages: the newer proposal must rank first.
	// A scripted z~=0 draw removes Thompson noise so the UCB term decides.
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestSampler(t, DefaultConfig(), WithClock(fixedClock(now)), WithRand(constRand{v: 0.25}))

	fresh := uuid.New()
	stale := uuid.New()
	proposals := []types.ProposalAggregate{
		{ID: stale, SumEvaluations: 1, SumSquaredEvaluations: 0.5, NumberOfEvaluators: 4, CreatedAt: now.Add(-48 * time.Hour)},
		{ID: fresh, SumEvaluations: 1, SumSquaredEvaluations: 0.5, NumberOfEvaluators: 4, CreatedAt: now},
	}

	result := s.SelectBatch(proposals, nil, 2)
	if len(result.Selected) != 2 {
		t.Fatalf("selected %d, want 2", len(result.Selected))
	}
	if result.Selected[0] != fresh {
		t.Fatalf("newer proposal not ranked first")
	}
}

func TestSamplerComputeStatsUsesCurrentConfig(t *testing.T) {
	s := newTestSampler(t, DefaultConfig())
	agg := types.ProposalAggregate{ID: uuid.New(), SumEvaluations: 1, SumSquaredEvaluations: 1, NumberOfEvaluators: 1}

	stats := s.ComputeStats(agg)
	if stats.EffectiveSampleSize != 3 {
		t.Fatalf("effectiveSampleSize=%g, want n+priorStrength=3", stats.EffectiveSampleSize)
	}

	strength := 8.0
	if _, err := s.UpdateConfig(ConfigPatch{PriorStrength: &strength}); err != nil {
		t.Fatalf("UpdateConfig: %v", err)
	}
	if got := s.ComputeStats(agg); got.EffectiveSampleSize != 9 {
		t.Fatalf("effectiveSampleSize=%g after update, want 9", got.EffectiveSampleSize)
	}
}

func TestUpdateConfigCopyOnWrite(t *testing.T) {
	s := newTestSampler(t, DefaultConfig())

	kappa := 2.5
	updated, err := s.UpdateConfig(ConfigPatch{ExplorationKappa: &kappa})
	if err != nil {
		t.Fatalf("UpdateConfig: %v", err)
	}
	if updated.ExplorationKappa != 2.5 {
		t.Fatalf("explorationKappa=%g, want 2.5", updated.ExplorationKappa)
	}

	bad := -1.0
	if _, err := s.UpdateConfig(ConfigPatch{TargetSEM: &bad}); err == nil {
		t.Fatalf("invalid patch accepted")
	}
	if got := s.Config(); got.TargetSEM != DefaultConfig().TargetSEM {
		t.Fatalf("rejected patch mutated config: targetSEM=%g", got.TargetSEM)
	}
}

func TestUpdateConfigLegacyExplorationWeight(t *testing.T) {
	s := newTestSampler(t, DefaultConfig())

	weight := 0.4
	updated, err := s.UpdateConfig(ConfigPatch{ExplorationWeight: &weight})
	if err != nil {
		t.Fatalf("UpdateConfig: %v", err)
	}
	if updated.ExplorationKappa != 2.0 {
		t.Fatalf("explorationKappa=%g, want weight*5=2.0", updated.ExplorationKappa)
	}

	// Explicit kappa wins over the legacy field.
	kappa := 1.0
	updated, err = s.UpdateConfig(ConfigPatch{ExplorationKappa: &kappa, ExplorationWeight: &weight})
	if err != nil {
		t.Fatalf("UpdateConfig: %v", err)
	}
	if updated.ExplorationKappa != 1.0 {
		t.Fatalf("explorationKappa=%g, want explicit 1.0", updated.ExplorationKappa)
	}
}
