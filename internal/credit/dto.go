// AngelaMos | 2026
// dto.go

package credit

import (
	"time"
)

type AddCreditRequest struct {
	Amount Amount `json:"amount"`
}

type CreditResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Amount    Amount    `json:"amount"`
	Reason    Reason    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

type BalanceResponse struct {
	UserID  string  `json:"user_id"`
	Balance Amount `json:"balance"`
}

type LinkedRegistration struct {
	RegistrationID string     `json:"registration_id"`
	Status         string     `json:"status,omitempty"`
	PaymentType    *string    `json:"payment_type"`
	SessionID      string     `json:"session_id,omitempty"`
	StartTS        *time.Time `json:"start_ts,omitempty"`
	EndTS          *time.Time `json:"end_ts,omitempty"`
	ActivityID     string     `json:"activity_id,omitempty"`
	ActivityName   string     `json:"activity_name,omitempty"`
}

type HistoryEntry struct {
	CreditResponse
	Registration *LinkedRegistration `json:"registration"`
}

func ToCreditResponse(c *Credit) CreditResponse {
	return CreditResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		Amount:    c.Amount,
		Reason:    c.Reason,
		CreatedAt: c.CreatedAt,
	}
}

func ToHistory(rows []HistoryRow) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		entry := HistoryEntry{CreditResponse: ToCreditResponse(&row.Credit)}

		if row.RegistrationID != nil {
			entry.Registration = &LinkedRegistration{
				RegistrationID: *row.RegistrationID,
				Status:         deref(row.Status),
				PaymentType:    row.PaymentType,
				SessionID:      deref(row.SessionID),
				StartTS:        row.StartTS,
				EndTS:          row.EndTS,
				ActivityID:     deref(row.ActivityID),
				ActivityName:   deref(row.ActivityName),
			}
		}

		entries = append(entries, entry)
	}
	return entries
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
