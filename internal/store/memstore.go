package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openagora/agora-backend/internal/types"
)

// MemStore is the in-memory implementation used by tests and local runs. It
// keeps the same incremental-aggregate discipline the real document store
// follows: one evaluation updates sum, sum of squares and count atomically.
type MemStore struct {
	mu        sync.RWMutex
	proposals map[uuid.UUID]types.ProposalAggregate
	order     []uuid.UUID
	evaluated map[uuid.UUID]map[uuid.UUID]struct{} // userID -> proposal set
}

func NewMemStore() *MemStore {
	return &MemStore{
		proposals: make(map[uuid.UUID]types.ProposalAggregate),
		evaluated: make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

// AddProposal registers a fresh proposal with an empty aggregate and returns
// its ID.
func (m *MemStore) AddProposal(createdAt time.Time) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.proposals[id] = types.ProposalAggregate{ID: id, CreatedAt: createdAt}
	m.order = append(m.order, id)
	return id
}

// SeedProposal inserts a proposal with a prebuilt aggregate. Test helper.
func (m *MemStore) SeedProposal(agg types.ProposalAggregate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.proposals[agg.ID]; !exists {
		m.order = append(m.order, agg.ID)
	}
	m.proposals[agg.ID] = agg
}

// RecordEvaluation folds one score in [-1,1] into the proposal's aggregate
// and marks the proposal evaluated for the user.
func (m *MemStore) RecordEvaluation(ctx context.Context, userID, proposalID uuid.UUID, score float64) error {
	if score < -1 || score > 1 {
		return fmt.Errorf("evaluation score must be in [-1,1], got %g", score)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	agg, ok := m.proposals[proposalID]
	if !ok {
		return ErrNotFound
	}
	agg.SumEvaluations += score
	agg.SumSquaredEvaluations += score * score
	agg.NumberOfEvaluators++
	m.proposals[proposalID] = agg

	set, ok := m.evaluated[userID]
	if !ok {
		set = make(map[uuid.UUID]struct{})
		m.evaluated[userID] = set
	}
	set[proposalID] = struct{}{}
	return nil
}

func (m *MemStore) ListAggregates(ctx context.Context) ([]types.ProposalAggregate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.ProposalAggregate, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.proposals[id])
	}
	return out, nil
}

func (m *MemStore) GetAggregate(ctx context.Context, proposalID uuid.UUID) (types.ProposalAggregate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	agg, ok := m.proposals[proposalID]
	if !ok {
		return types.ProposalAggregate{}, ErrNotFound
	}
	return agg, nil
}

func (m *MemStore) EvaluatedProposalIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[uuid.UUID]struct{}, len(m.evaluated[userID]))
	for id := range m.evaluated[userID] {
		out[id] = struct{}{}
	}
	return out, nil
}

var (
	_ ProposalStore   = (*MemStore)(nil)
	_ EvaluationStore = (*MemStore)(nil)
)
