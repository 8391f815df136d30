// Package store persists groups, polls and vote events.
//
// Two engines implement Store: Postgres for deployments and Memory for tests and
// single-process setups. Vote mutations go through UpdatePoll only, which applies
// a mutation as one serialized, all-or-nothing unit per poll.
package store

import (
	"context"
	"errors"

	"github.com/Harshita2766/planpull-backend/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// PollMutation mutates a private copy of a poll. Returning an error discards the
// copy and leaves the stored poll unchanged.
type PollMutation func(p *models.Poll) error

// GroupStore persists groups and their members.
type GroupStore interface {
	// CreateGroup inserts g and sets its ID and CreatedAt.
	CreateGroup(ctx context.Context, g *models.Group) error
	GetGroup(ctx context.Context, id int64) (*models.Group, error)
	// AddMembers appends members not already present and returns the updated group.
	AddMembers(ctx context.Context, id int64, members []string) (*models.Group, error)
}

// PollStore persists polls and their options.
type PollStore interface {
	// CreatePoll inserts p and sets its ID and CreatedAt. It returns ErrNotFound
	// if p.GroupID does not reference a group.
	CreatePoll(ctx context.Context, p *models.Poll) error
	GetPoll(ctx context.Context, id int64) (*models.Poll, error)
	// UpdatePoll runs mutate under the poll's writer lock and commits the result
	// atomically. Readers observe either the previous or the new state.
	UpdatePoll(ctx context.Context, id int64, mutate PollMutation) (*models.Poll, error)
}

// EventStore persists the vote audit trail.
type EventStore interface {
	// RecordVoteEvent stores ev. Recording the same JobID twice is a no-op.
	RecordVoteEvent(ctx context.Context, ev models.VoteEvent) error
}

// Store is the full persistence surface used by the server.
type Store interface {
	GroupStore
	PollStore
	EventStore
}
