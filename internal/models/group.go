package models

import "time"

// Group is a named set of users with one designated creator.
// The creator is always present in Members.
type Group struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Creator   string    `json:"creator"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// HasMember reports whether userID is already in the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with g.
func (g *Group) Clone() *Group {
	cp := *g
	cp.Members = append([]string(nil), g.Members...)
	return &cp
}
