package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/openagora/agora-backend/internal/types"
)

// The document database owning proposals and evaluations lives outside this
// service. These interfaces are the collaborator contract: aggregates are
// maintained incrementally by the owner (never recomputed from raw vote
// logs), and the evaluated-ID set is current for the requesting user at call
// time. Consistency under concurrent writes is the owner's problem.

var ErrNotFound = errors.New("proposal not found")

type ProposalStore interface {
	ListAggregates(ctx context.Context) ([]types.ProposalAggregate, error)
	GetAggregate(ctx context.Context, proposalID uuid.UUID) (types.ProposalAggregate, error)
}

type EvaluationStore interface {
	EvaluatedProposalIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error)
}
