package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Harshita2766/planpull-backend/internal/models"
)

// Memory is an in-process Store.
//
// mu guards the maps and is only held for lookups and pointer swaps. Writers on a
// poll additionally hold that poll's entry in pollLocks for the whole
// read-modify-write, so mutations on different polls never wait on each other.
type Memory struct {
	mu        sync.RWMutex
	groups    map[int64]*models.Group
	polls     map[int64]*models.Poll
	pollLocks map[int64]*sync.Mutex
	events    map[uuid.UUID]models.VoteEvent
	eventLog  []uuid.UUID
	nextGroup int64
	nextPoll  int64
	now       func() time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		groups:    make(map[int64]*models.Group),
		polls:     make(map[int64]*models.Poll),
		pollLocks: make(map[int64]*sync.Mutex),
		events:    make(map[uuid.UUID]models.VoteEvent),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateGroup stores a copy of g.
func (m *Memory) CreateGroup(_ context.Context, g *models.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextGroup++
	g.ID = m.nextGroup
	g.CreatedAt = m.now()
	m.groups[g.ID] = g.Clone()
	return nil
}

// GetGroup returns a copy of the group.
func (m *Memory) GetGroup(_ context.Context, id int64) (*models.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[id]
	if !ok {
		return nil, ErrNotFound
	}
	return g.Clone(), nil
}

// AddMembers appends new members in the given order.
func (m *Memory) AddMembers(_ context.Context, id int64, members []string) (*models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	if !ok {
		return nil, ErrNotFound
	}
	next := g.Clone()
	for _, u := range members {
		if !next.HasMember(u) {
			next.Members = append(next.Members, u)
		}
	}
	m.groups[id] = next
	return next.Clone(), nil
}

// CreatePoll stores a copy of p after checking its group exists.
func (m *Memory) CreatePoll(_ context.Context, p *models.Poll) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[p.GroupID]; !ok {
		return ErrNotFound
	}
	m.nextPoll++
	p.ID = m.nextPoll
	p.CreatedAt = m.now()
	m.polls[p.ID] = p.Clone()
	m.pollLocks[p.ID] = &sync.Mutex{}
	return nil
}

// GetPoll returns a copy of the last committed state of the poll.
func (m *Memory) GetPoll(_ context.Context, id int64) (*models.Poll, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.polls[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

// UpdatePoll applies mutate to a copy and swaps it in when mutate succeeds.
func (m *Memory) UpdatePoll(ctx context.Context, id int64, mutate PollMutation) (*models.Poll, error) {
	m.mu.RLock()
	lock, ok := m.pollLocks[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	next := m.polls[id].Clone()
	m.mu.RUnlock()

	if err := mutate(next); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.polls[id] = next
	m.mu.Unlock()
	return next.Clone(), nil
}

// RecordVoteEvent stores ev once per JobID.
func (m *Memory) RecordVoteEvent(_ context.Context, ev models.VoteEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.events[ev.JobID]; dup {
		return nil
	}
	m.events[ev.JobID] = ev
	m.eventLog = append(m.eventLog, ev.JobID)
	return nil
}

// VoteEvents returns recorded events for a poll in recording order.
func (m *Memory) VoteEvents(pollID int64) []models.VoteEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.VoteEvent
	for _, id := range m.eventLog {
		if ev := m.events[id]; ev.PollID == pollID {
			out = append(out, ev)
		}
	}
	return out
}
