package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/openagora/agora-backend/internal/logger"
	"github.com/openagora/agora-backend/internal/sampling"
	"github.com/openagora/agora-backend/internal/store"
	"github.com/openagora/agora-backend/internal/types"
)

type SamplingService interface {
	NextBatch(ctx context.Context, userID uuid.UUID, count int) (types.SelectionResult, error)
	ScoreProposal(ctx context.Context, proposalID uuid.UUID) (types.ScoredProposal, error)
	Config(ctx context.Context) sampling.Config
	UpdateConfig(ctx context.Context, patch sampling.ConfigPatch) (sampling.Config, error)
}

type samplingService struct {
	log       *logger.Logger
	sampler   *sampling.Sampler
	proposals store.ProposalStore
	evals     store.EvaluationStore
}

func NewSamplingService(baseLog *logger.Logger, sampler *sampling.Sampler, proposals store.ProposalStore, evals store.EvaluationStore) SamplingService {
	return &samplingService{
		log:       baseLog.With("service", "SamplingService"),
		sampler:   sampler,
		proposals: proposals,
		evals:     evals,
	}
}

// NextBatch snapshots the proposal aggregates and the user's evaluated set,
// then runs one selection pass over them.
func (ss *samplingService) NextBatch(ctx context.Context, userID uuid.UUID, count int) (types.SelectionResult, error) {
	aggregates, err := ss.proposals.ListAggregates(ctx)
	if err != nil {
		return types.SelectionResult{}, err
	}
	evaluated, err := ss.evals.EvaluatedProposalIDs(ctx, userID)
	if err != nil {
		return types.SelectionResult{}, err
	}

	result := ss.sampler.SelectBatch(aggregates, evaluated, count)
	ss.log.Debug("Selected proposal batch",
		"user_id", userID,
		"requested", count,
		"selected", len(result.Selected),
		"has_more", result.HasMore,
		"total", result.Stats.TotalCount,
		"evaluated", result.Stats.EvaluatedCount,
		"stable", result.Stats.StableCount,
		"remaining", result.Stats.RemainingCount)
	return result, nil
}

func (ss *samplingService) ScoreProposal(ctx context.Context, proposalID uuid.UUID) (types.ScoredProposal, error) {
	agg, err := ss.proposals.GetAggregate(ctx, proposalID)
	if err != nil {
		return types.ScoredProposal{}, err
	}
	return ss.sampler.ScoreProposal(agg), nil
}

func (ss *samplingService) Config(ctx context.Context) sampling.Config {
	return ss.sampler.Config()
}

func (ss *samplingService) UpdateConfig(ctx context.Context, patch sampling.ConfigPatch) (sampling.Config, error) {
	cfg, err := ss.sampler.UpdateConfig(patch)
	if err != nil {
		ss.log.Warn("Rejected sampling config update", "error", err)
		return cfg, err
	}
	return cfg, nil
}
