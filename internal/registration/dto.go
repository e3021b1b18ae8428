// AngelaMos | 2026
// dto.go

package registration

import (
	"time"
)

type BookRequest struct {
	PaymentType *string `json:"payment_type"`
}

type AdminAddRequest struct {
	UserID      string `json:"user_id"      validate:"required,uuid"`
	PaymentType string `json:"payment_type"`
}

type RegistrationResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	SessionID   string    `json:"session_id"`
	PaymentType *string   `json:"payment_type"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToRegistrationResponse(r *Registration, status Status) RegistrationResponse {
	return RegistrationResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		SessionID:   r.SessionID,
		PaymentType: r.PaymentType,
		Status:      status,
		CreatedAt:   r.CreatedAt,
	}
}
