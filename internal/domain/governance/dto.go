package governance

import "time"

// CreateGroupRequest opens an investment group around a property
type CreateGroupRequest struct {
	PropertyID string `json:"property_id" validate:"required,uuid"`
	Name       string `json:"name" validate:"required,min=3,max=120"`
}

// CreatePollRequest opens a poll for a group
type CreatePollRequest struct {
	Question string   `json:"question" validate:"required,min=5,max=500"`
	Options  []string `json:"options" validate:"required,min=2,max=10,dive,required,max=200"`
	ClosesAt string   `json:"closes_at" validate:"required"`
}

// CastVoteRequest records a member's choice
type CastVoteRequest struct {
	OptionID string `json:"option_id" validate:"required,uuid"`
}

// GroupResponse is the API shape of a group
type GroupResponse struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	Name       string    `json:"name"`
	CreatorID  string    `json:"creator_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// OptionResponse is the API shape of a poll option
type OptionResponse struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Position int    `json:"position"`
}

// PollResponse is the API shape of a poll
type PollResponse struct {
	ID        string           `json:"id"`
	GroupID   string           `json:"group_id"`
	Question  string           `json:"question"`
	Status    PollStatus       `json:"status"`
	ClosesAt  time.Time        `json:"closes_at"`
	CreatedAt time.Time        `json:"created_at"`
	Options   []OptionResponse `json:"options,omitempty"`
}

// ToGroupResponse converts entity to API response
func ToGroupResponse(g *Group) *GroupResponse {
	return &GroupResponse{
		ID:         g.ID.String(),
		PropertyID: g.PropertyID.String(),
		Name:       g.Name,
		CreatorID:  g.CreatorID.String(),
		CreatedAt:  g.CreatedAt,
	}
}

// ToPollResponse converts entity to API response
func ToPollResponse(p *Poll, options []Option) *PollResponse {
	resp := &PollResponse{
		ID:        p.ID.String(),
		GroupID:   p.GroupID.String(),
		Question:  p.Question,
		Status:    p.Status,
		ClosesAt:  p.ClosesAt,
		CreatedAt: p.CreatedAt,
	}
	for _, opt := range options {
		resp.Options = append(resp.Options, OptionResponse{
			ID:       opt.ID.String(),
			Text:     opt.Text,
			Position: opt.Position,
		})
	}
	return resp
}
