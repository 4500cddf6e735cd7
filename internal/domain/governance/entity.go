package governance

import (
	"time"

	"github.com/google/uuid"
)

// MemberRole represents a member's role inside a group
type MemberRole string

const (
	RoleMember MemberRole = "member"
	RoleAdmin  MemberRole = "admin"
)

// PollStatus represents poll lifecycle state
type PollStatus string

const (
	PollOpen   PollStatus = "open"
	PollClosed PollStatus = "closed"
)

// Group is an investment group around one property
type Group struct {
	ID         uuid.UUID `db:"id"`
	PropertyID uuid.UUID `db:"property_id"`
	Name       string    `db:"name"`
	CreatorID  uuid.UUID `db:"creator_id"`
	CreatedAt  time.Time `db:"created_at"`
}

// Member is one user's membership in a group
type Member struct {
	GroupID  uuid.UUID  `db:"group_id"`
	UserID   uuid.UUID  `db:"user_id"`
	Role     MemberRole `db:"role"`
	JoinedAt time.Time  `db:"joined_at"`
}

// Poll is a question put to a group's members
type Poll struct {
	ID        uuid.UUID  `db:"id"`
	GroupID   uuid.UUID  `db:"group_id"`
	Question  string     `db:"question"`
	Status    PollStatus `db:"status"`
	ClosesAt  time.Time  `db:"closes_at"`
	CreatedAt time.Time  `db:"created_at"`
}

// IsOpen reports whether votes are still accepted at the given time
func (p *Poll) IsOpen(now time.Time) bool {
	return p.Status == PollOpen && now.Before(p.ClosesAt)
}

// Option is one answer a poll offers
type Option struct {
	ID       uuid.UUID `db:"id"`
	PollID   uuid.UUID `db:"poll_id"`
	Text     string    `db:"text"`
	Position int       `db:"position"`
}

// Vote is one member's choice, at most one per poll
type Vote struct {
	PollID    uuid.UUID `db:"poll_id"`
	OptionID  uuid.UUID `db:"option_id"`
	UserID    uuid.UUID `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

// OptionResult is the tallied outcome for one option
type OptionResult struct {
	OptionID uuid.UUID `json:"option_id"`
	Text     string    `json:"text"`
	Votes    int       `json:"votes"`
	Percent  float64   `json:"percent"`
}

// Results is the tallied outcome of a poll
type Results struct {
	PollID     uuid.UUID      `json:"poll_id"`
	Question   string         `json:"question"`
	Status     PollStatus     `json:"status"`
	TotalVotes int            `json:"total_votes"`
	Options    []OptionResult `json:"options"`
}
