// AngelaMos | 2026
// dto.go

package catalog

import (
	"github.com/manufacto/booking/internal/activity"
	"github.com/manufacto/booking/internal/registration"
	"github.com/manufacto/booking/internal/session"
)

// SessionView is a bookable session with its live capacity.
type SessionView struct {
	session.SessionResponse
	registration.Capacity
}

type Attendee struct {
	RegistrationID string  `json:"registration_id"`
	UserID         string  `json:"user_id"`
	DisplayName    string  `json:"display_name"`
	PaymentType    *string `json:"payment_type"`
}

type BoardSession struct {
	SessionView
	Attendees []Attendee `json:"attendees"`
}

type BoardDay struct {
	Date     string         `json:"date"`
	Sessions []BoardSession `json:"sessions"`
}

type BoardActivity struct {
	activity.ActivityResponse
	Days []BoardDay `json:"days"`
}
