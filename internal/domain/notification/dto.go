package notification

import (
	"time"

	"github.com/google/uuid"
)

// Response is the API shape of a notification. The same payload is
// delivered over the WebSocket stream.
type Response struct {
	ID        uuid.UUID  `json:"id"`
	Type      Type       `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	EntityID  *uuid.UUID `json:"entity_id,omitempty"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToResponse converts a notification to its API shape
func (n *Notification) ToResponse() *Response {
	resp := &Response{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	if n.EntityID.Valid {
		id := n.EntityID.UUID
		resp.EntityID = &id
	}
	return resp
}
