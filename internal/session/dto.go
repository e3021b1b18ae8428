// AngelaMos | 2026
// dto.go

package session

import (
	"time"
)

type CreateSessionRequest struct {
	ActivityID       string    `json:"activity_id"       validate:"required,uuid"`
	StartTS          time.Time `json:"start_ts"          validate:"required"`
	EndTS            time.Time `json:"end_ts"            validate:"required"`
	MaxRegistrations *int      `json:"max_registrations" validate:"omitempty,min=0"`
	// Recurrence is an optional RFC 5545 RRULE such as
	// "FREQ=WEEKLY;BYDAY=TU;COUNT=10". Its start is the session start.
	Recurrence string `json:"recurrence" validate:"max=500"`
}

type UpdateSessionRequest struct {
	StartTS          time.Time `json:"start_ts"          validate:"required"`
	EndTS            time.Time `json:"end_ts"            validate:"required"`
	MaxRegistrations *int      `json:"max_registrations" validate:"omitempty,min=0"`
}

// DuplicateWeekRequest offsets are in weeks from the current local week:
// -1 is last week, 0 this week.
type DuplicateWeekRequest struct {
	SourceOffset *int `json:"source_offset"`
	TargetOffset *int `json:"target_offset"`
}

func (r DuplicateWeekRequest) Offsets() (source, target int) {
	source, target = -1, 0
	if r.SourceOffset != nil {
		source = *r.SourceOffset
	}
	if r.TargetOffset != nil {
		target = *r.TargetOffset
	}
	return source, target
}

type SessionResponse struct {
	ID               string    `json:"id"`
	ActivityID       string    `json:"activity_id"`
	StartTS          time.Time `json:"start_ts"`
	EndTS            time.Time `json:"end_ts"`
	MaxRegistrations *int      `json:"max_registrations"`
}

type WeekResponse struct {
	WeekStart time.Time         `json:"week_start"`
	WeekEnd   time.Time         `json:"week_end"`
	Sessions  []SessionResponse `json:"sessions"`
}

type DuplicateWeekResponse struct {
	Created  int               `json:"created"`
	Sessions []SessionResponse `json:"sessions"`
}

func ToSessionResponse(s *Session) SessionResponse {
	return SessionResponse{
		ID:               s.ID,
		ActivityID:       s.ActivityID,
		StartTS:          s.StartTS,
		EndTS:            s.EndTS,
		MaxRegistrations: s.MaxRegistrations,
	}
}

func ToSessionResponseList(sessions []Session) []SessionResponse {
	out := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, ToSessionResponse(&sessions[i]))
	}
	return out
}
