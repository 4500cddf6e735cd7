package kyc

import "time"

// RejectRequest fails a verification with a reason
type RejectRequest struct {
	Reason string `json:"reason" validate:"required,min=5,max=500"`
}

// Response is the API shape of a verification
type Response struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	DocumentType DocumentType `json:"document_type"`
	Status       Status       `json:"status"`
	Reason       string       `json:"reason,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ToResponse converts entity to API response
func ToResponse(v *Verification) *Response {
	resp := &Response{
		ID:           v.ID.String(),
		UserID:       v.UserID.String(),
		DocumentType: v.DocumentType,
		Status:       v.Status,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
	if v.Reason.Valid {
		resp.Reason = v.Reason.String
	}
	return resp
}
