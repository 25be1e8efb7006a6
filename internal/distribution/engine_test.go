package distribution

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"lead-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store with transaction semantics: each
// WithinTx call runs serialized and rolls back on error.
type memStore struct {
	mu      sync.Mutex
	leads   map[int]*models.Lead
	brokers []*models.Broker
	ledger  []*models.LeadDistribution
}

func newMemStore() *memStore {
	return &memStore{leads: make(map[int]*models.Lead)}
}

func (s *memStore) addLead(id int) {
	s.leads[id] = &models.Lead{ID: id, Status: models.LeadStatusNew}
}

func (s *memStore) addBroker(id, userID, order, maxPerDay int, active bool) {
	s.brokers = append(s.brokers, &models.Broker{
		ID:                id,
		UserID:            userID,
		DistributionOrder: order,
		IsActive:          active,
		MaxLeadsPerDay:    maxPerDay,
	})
}

func (s *memStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()
	if err := fn(&memTx{store: s}); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

type memState struct {
	leads  map[int]models.Lead
	ledger []*models.LeadDistribution
}

func (s *memStore) snapshot() memState {
	leads := make(map[int]models.Lead, len(s.leads))
	for id, l := range s.leads {
		leads[id] = *l
	}
	ledger := make([]*models.LeadDistribution, len(s.ledger))
	copy(ledger, s.ledger)
	return memState{leads: leads, ledger: ledger}
}

func (s *memStore) restore(st memState) {
	for id := range s.leads {
		l := st.leads[id]
		s.leads[id] = &l
	}
	s.ledger = st.ledger
}

type memTx struct {
	store *memStore
}

func (t *memTx) GetLeadForUpdate(ctx context.Context, leadID int) (*models.Lead, error) {
	lead, ok := t.store.leads[leadID]
	if !ok {
		return nil, ErrLeadNotFound
	}
	cp := *lead
	return &cp, nil
}

func (t *memTx) ActiveBrokersForUpdate(ctx context.Context) ([]*models.Broker, error) {
	var out []*models.Broker
	for _, b := range t.store.brokers {
		if b.IsActive {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DistributionOrder != out[j].DistributionOrder {
			return out[i].DistributionOrder < out[j].DistributionOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (t *memTx) CountAssignedSince(ctx context.Context, brokerUserID int, since time.Time) (int, error) {
	n := 0
	for _, d := range t.store.ledger {
		if d.BrokerID == brokerUserID && !d.DistributedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (t *memTx) MarkLeadAssigned(ctx context.Context, leadID, brokerUserID int, at time.Time) error {
	lead, ok := t.store.leads[leadID]
	if !ok {
		return ErrLeadNotFound
	}
	id := brokerUserID
	lead.AssignedBrokerID = &id
	if lead.AssignedAt == nil {
		stamp := at
		lead.AssignedAt = &stamp
	}
	return nil
}

func (t *memTx) RecordAssignment(ctx context.Context, d *models.LeadDistribution) error {
	d.ID = len(t.store.ledger) + 1
	t.store.ledger = append(t.store.ledger, d)
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestDistributePicksLowestOrder(t *testing.T) {
	store := newMemStore()
	store.addLead(1)
	store.addBroker(10, 100, 2, 5, true)
	store.addBroker(11, 101, 0, 5, true)
	store.addBroker(12, 102, 1, 5, true)

	engine := NewEngine(store)
	winner, err := engine.Distribute(context.Background(), 1)

	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, 101, winner.UserID)
	assert.Equal(t, 101, *store.leads[1].AssignedBrokerID)

	require.Len(t, store.ledger, 1)
	assert.Equal(t, models.DistributionAutomatic, store.ledger[0].DistributionMethod)
	assert.Equal(t, 101, store.ledger[0].BrokerID)
}

func TestDistributeBreaksTiesByID(t *testing.T) {
	store := newMemStore()
	store.addLead(1)
	store.addBroker(20, 200, 1, 5, true)
	store.addBroker(15, 150, 1, 5, true)

	engine := NewEngine(store)
	winner, err := engine.Distribute(context.Background(), 1)

	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, 15, winner.ID)
}

func TestDistributeSkipsInactiveBrokers(t *testing.T) {
	store := newMemStore()
	store.addLead(1)
	store.addBroker(10, 100, 0, 5, false)
	store.addBroker(11, 101, 1, 5, true)

	engine := NewEngine(store)
	winner, err := engine.Distribute(context.Background(), 1)

	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, 101, winner.UserID)
}

func TestDistributeRespectsDailyQuota(t *testing.T) {
	store := newMemStore()
	store.addBroker(10, 100, 0, 2, true)
	store.addBroker(11, 101, 1, 2, true)

	engine := NewEngine(store)
	ctx := context.Background()

	// Two brokers with capacity 2 each: assignments go first broker
	// until full, then second, then nobody
	expected := []int{100, 100, 101, 101}
	for i, want := range expected {
		leadID := i + 1
		store.addLead(leadID)
		winner, err := engine.Distribute(ctx, leadID)
		require.NoError(t, err)
		require.NotNil(t, winner, "lead %d should be assigned", leadID)
		assert.Equal(t, want, winner.UserID, "lead %d", leadID)
	}

	store.addLead(5)
	winner, err := engine.Distribute(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, winner)
	assert.Nil(t, store.leads[5].AssignedBrokerID)
	assert.Len(t, store.ledger, 4)
}

func TestDistributeQuotaBoundaryIsStrict(t *testing.T) {
	store := newMemStore()
	store.addBroker(10, 100, 0, 1, true)

	engine := NewEngine(store)
	ctx := context.Background()

	store.addLead(1)
	winner, err := engine.Distribute(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, winner)

	// Count now equals the cap, next lead must not be assigned
	store.addLead(2)
	winner, err = engine.Distribute(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, winner)
}

func TestDistributeRosterExhaustedLeavesNoTrace(t *testing.T) {
	store := newMemStore()
	store.addLead(1)
	store.addBroker(10, 100, 0, 0, true)

	engine := NewEngine(store)
	winner, err := engine.Distribute(context.Background(), 1)

	require.NoError(t, err)
	assert.Nil(t, winner)
	assert.Nil(t, store.leads[1].AssignedBrokerID)
	assert.Nil(t, store.leads[1].AssignedAt)
	assert.Empty(t, store.ledger)
}

func TestDistributeEmptyRoster(t *testing.T) {
	store := newMemStore()
	store.addLead(1)

	engine := NewEngine(store)
	winner, err := engine.Distribute(context.Background(), 1)

	require.NoError(t, err)
	assert.Nil(t, winner)
	assert.Empty(t, store.ledger)
}

func TestDistributeQuotaResetsAtUTCMidnight(t *testing.T) {
	store := newMemStore()
	store.addBroker(10, 100, 0, 1, true)

	engine := NewEngine(store)
	ctx := context.Background()

	day1 := time.Date(2025, 3, 10, 23, 50, 0, 0, time.UTC)
	engine.Now = fixedClock(day1)

	store.addLead(1)
	winner, err := engine.Distribute(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, winner)

	// Still the same UTC day, broker is full
	store.addLead(2)
	winner, err = engine.Distribute(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, winner)

	// Twenty minutes later it is a new UTC day
	engine.Now = fixedClock(day1.Add(20 * time.Minute))
	winner, err = engine.Distribute(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, 100, winner.UserID)
}

func TestDistributeUnknownLead(t *testing.T) {
	store := newMemStore()
	store.addBroker(10, 100, 0, 5, true)

	engine := NewEngine(store)
	winner, err := engine.Distribute(context.Background(), 42)

	assert.ErrorIs(t, err, ErrLeadNotFound)
	assert.Nil(t, winner)
	assert.Empty(t, store.ledger)
}

func TestDistributeAlreadyAssigned(t *testing.T) {
	store := newMemStore()
	store.addLead(1)
	store.addBroker(10, 100, 0, 5, true)

	engine := NewEngine(store)
	ctx := context.Background()

	_, err := engine.Distribute(ctx, 1)
	require.NoError(t, err)

	_, err = engine.Distribute(ctx, 1)
	assert.ErrorIs(t, err, ErrAlreadyAssigned)
	assert.Len(t, store.ledger, 1)
}

func TestDistributeConcurrentSingleWinner(t *testing.T) {
	store := newMemStore()
	store.addLead(1)
	store.addBroker(10, 100, 0, 50, true)

	engine := NewEngine(store)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	wins := make(chan int, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			winner, err := engine.Distribute(ctx, 1)
			if err == nil && winner != nil {
				wins <- winner.UserID
			}
		}()
	}
	wg.Wait()
	close(wins)

	total := 0
	for range wins {
		total++
	}
	assert.Equal(t, 1, total, "exactly one distribution must win")
	assert.Len(t, store.ledger, 1)
}

func TestAssignRecordsManualEntry(t *testing.T) {
	store := newMemStore()
	store.addLead(1)
	store.addBroker(10, 100, 0, 1, true)

	engine := NewEngine(store)
	ctx := context.Background()

	// Manual assignment ignores quota entirely
	for i := 0; i < 3; i++ {
		store.addLead(i + 2)
		require.NoError(t, engine.Assign(ctx, i+2, 100))
	}

	require.Len(t, store.ledger, 3)
	for _, d := range store.ledger {
		assert.Equal(t, models.DistributionManual, d.DistributionMethod)
	}
}

func TestAssignSameBrokerIsNoOp(t *testing.T) {
	store := newMemStore()
	store.addLead(1)

	engine := NewEngine(store)
	ctx := context.Background()

	require.NoError(t, engine.Assign(ctx, 1, 100))
	require.NoError(t, engine.Assign(ctx, 1, 100))

	assert.Len(t, store.ledger, 1)
}

func TestManualEntriesCountTowardQuota(t *testing.T) {
	store := newMemStore()
	store.addLead(1)
	store.addLead(2)
	store.addBroker(10, 100, 0, 1, true)

	engine := NewEngine(store)
	ctx := context.Background()

	require.NoError(t, engine.Assign(ctx, 1, 100))

	// The manual entry consumed the broker's single daily slot
	winner, err := engine.Distribute(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, winner)
}

func TestAssignedAtStampedOnceOnly(t *testing.T) {
	store := newMemStore()
	store.addLead(1)

	first := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	engine := NewEngine(store)
	engine.Now = fixedClock(first)

	require.NoError(t, engine.Assign(context.Background(), 1, 100))
	require.NotNil(t, store.leads[1].AssignedAt)
	assert.Equal(t, first, *store.leads[1].AssignedAt)

	// Reassignment later keeps the original first-assignment stamp
	engine.Now = fixedClock(first.Add(2 * time.Hour))
	require.NoError(t, engine.Assign(context.Background(), 1, 101))
	assert.Equal(t, first, *store.leads[1].AssignedAt)
	assert.Equal(t, 101, *store.leads[1].AssignedBrokerID)
}
