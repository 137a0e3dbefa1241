package types

import (
	"time"

	"github.com/google/uuid"
)

// ProposalAggregate is the read-only evaluation snapshot the document store
// maintains incrementally for every proposal. The sampler never mutates it.
type ProposalAggregate struct {
	ID                    uuid.UUID `json:"id"`
	SumEvaluations        float64   `json:"sumEvaluations"`
	SumSquaredEvaluations float64   `json:"sumSquaredEvaluations"`
	NumberOfEvaluators    int       `json:"numberOfEvaluators"`
	CreatedAt             time.Time `json:"createdAt"`
}

// ProposalStats is recomputed from an aggregate on every call and never persisted.
type ProposalStats struct {
	Mean                float64 `json:"mean"`
	PosteriorMean       float64 `json:"posteriorMean"`
	Variance            float64 `json:"variance"`
	SEM                 float64 `json:"sem"`
	EvaluationCount     int     `json:"evaluationCount"`
	EffectiveSampleSize float64 `json:"effectiveSampleSize"`
}

type ScoredProposal struct {
	ProposalID uuid.UUID     `json:"proposalId"`
	Priority   float64       `json:"priority"`
	Stats      ProposalStats `json:"stats"`
	IsStable   bool          `json:"isStable"`
}

// BatchStats describes one selection pass. Purely diagnostic.
type BatchStats struct {
	TotalCount     int `json:"totalCount"`
	EvaluatedCount int `json:"evaluatedCount"`
	StableCount    int `json:"stableCount"`
	RemainingCount int `json:"remainingCount"`
}

// SelectionResult is the batch selector's output: ordered proposal IDs plus
// the scored details backing the ordering.
type SelectionResult struct {
	Selected []uuid.UUID      `json:"selected"`
	Scored   []ScoredProposal `json:"scored"`
	HasMore  bool             `json:"hasMore"`
	Stats    BatchStats       `json:"stats"`
}
