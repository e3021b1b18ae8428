// AngelaMos | 2026
// dto.go

package account

import (
	"time"

	"github.com/manufacto/booking/internal/credit"
	"github.com/manufacto/booking/internal/registration"
	"github.com/manufacto/booking/internal/user"
)

type RegistrationView struct {
	ID           string              `json:"id"`
	SessionID    string              `json:"session_id"`
	ActivityID   string              `json:"activity_id"`
	ActivityName string              `json:"activity_name"`
	StartTS      time.Time           `json:"start_ts"`
	EndTS        time.Time           `json:"end_ts"`
	PaymentType  *string             `json:"payment_type"`
	Status       registration.Status `json:"status"`
	StatusAt     *time.Time          `json:"status_at"`
}

// View is everything a member sees on their account page. Admins get the
// same view as a user dossier.
type View struct {
	User      user.UserResponse     `json:"user"`
	Balance   credit.Amount         `json:"balance"`
	Upcoming  []RegistrationView    `json:"upcoming"`
	Past      []RegistrationView    `json:"past"`
	Cancelled []RegistrationView    `json:"cancelled"`
	Credits   []credit.HistoryEntry `json:"credits"`
}
