package models

import (
	"time"

	"github.com/google/uuid"
)

// Poll is a question with a fixed, ordered set of options, owned by a group.
type Poll struct {
	ID        int64        `json:"id"`
	GroupID   int64        `json:"group_id"`
	Question  string       `json:"question"`
	Options   []PollOption `json:"options"`
	CreatedAt time.Time    `json:"created_at"`
}

// PollOption is one selectable answer and the users who currently hold it,
// in the order their votes arrived.
type PollOption struct {
	Text  string   `json:"text"`
	Votes []string `json:"votes"`
}

// Clone returns a deep copy of p. Vote slices are never nil in the copy.
func (p *Poll) Clone() *Poll {
	cp := *p
	cp.Options = make([]PollOption, len(p.Options))
	for i, o := range p.Options {
		cp.Options[i] = PollOption{Text: o.Text, Votes: append(make([]string, 0, len(o.Votes)), o.Votes...)}
	}
	return &cp
}

// OptionOf returns the index of the option holding userID's vote, or -1.
func (p *Poll) OptionOf(userID string) int {
	for i, o := range p.Options {
		for _, v := range o.Votes {
			if v == userID {
				return i
			}
		}
	}
	return -1
}

// VoteEvent records one committed change of a user's vote on a poll.
type VoteEvent struct {
	JobID         uuid.UUID `json:"job_id"`
	PollID        int64     `json:"poll_id"`
	UserID        string    `json:"user_id"`
	OptionIndex   int       `json:"option_index"`
	PreviousIndex *int      `json:"previous_index,omitempty"`
	CastAt        time.Time `json:"cast_at"`
}
