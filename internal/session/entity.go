// AngelaMos | 2026
// entity.go

package session

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type Session struct {
	ID               string    `db:"id"`
	ActivityID       string    `db:"activity_id"`
	StartTS          time.Time `db:"start_ts"`
	EndTS            time.Time `db:"end_ts"`
	MaxRegistrations *int      `db:"max_registrations"`
	CreatedAt        time.Time `db:"created_at"`
}

// IsUnlimited reports a session without a registration cap.
func (s *Session) IsUnlimited() bool {
	return s.MaxRegistrations == nil
}

func (s *Session) HasStarted(now time.Time) bool {
	return !s.StartTS.After(now)
}

func (s *Session) Duration() time.Duration {
	return s.EndTS.Sub(s.StartTS)
}

func (s *Session) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.ActivityID, validation.Required.Error("L'activité est requise")),
		validation.Field(&s.StartTS, validation.Required.Error("La date de début est requise")),
		validation.Field(&s.EndTS,
			validation.Required.Error("La date de fin est requise"),
			validation.By(s.endsAfterStart),
		),
		validation.Field(&s.MaxRegistrations,
			validation.Min(0).Error("Le nombre maximum d'inscriptions doit être positif"),
		),
	)
}

func (s *Session) endsAfterStart(any) error {
	if !s.EndTS.After(s.StartTS) {
		return errors.New(MsgEndBeforeStart)
	}
	return nil
}

const (
	MsgNotFound        = "Session introuvable"
	MsgEndBeforeStart  = "La fin de la session doit être après son début"
	MsgNoSessionInWeek = "Aucune session trouvée dans la semaine sélectionnée"
)
