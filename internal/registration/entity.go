// AngelaMos | 2026
// entity.go

package registration

import (
	"slices"
	"time"

	"github.com/manufacto/booking/internal/session"
)

const (
	PaymentCredit = "credit"
	PaymentStripe = "stripe"
	PaymentCash   = "cash"
	PaymentFree   = "free"
)

var paymentTypes = []string{PaymentCredit, PaymentStripe, PaymentCash, PaymentFree}

func ValidPaymentType(p string) bool {
	return slices.Contains(paymentTypes, p)
}

type Registration struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	SessionID   string    `db:"session_id"`
	PaymentType *string   `db:"payment_type"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r *Registration) PaidWithCredits() bool {
	return r.PaymentType != nil && *r.PaymentType == PaymentCredit
}

// LockedSession is a session row read under FOR UPDATE together with the
// credit cost of its activity.
type LockedSession struct {
	session.Session
	NbCredits *int `db:"nb_credits"`
}

func (s *LockedSession) CreditCost() int {
	if s.NbCredits == nil {
		return 0
	}
	return *s.NbCredits
}

const (
	MsgBookingFailed       = "Votre inscription n'a pas pu être enregistrée."
	MsgBookingConfirmed    = "Inscription confirmée ! Nous vous attendons à l'atelier."
	MsgSessionPast         = "Cette session est déjà passée"
	MsgAlreadyRegistered   = "Vous êtes déjà inscrit à cette session"
	MsgSessionFull         = "Cette session est complète"
	MsgInsufficientCredits = "Crédits insuffisants"
	MsgPaymentTypeRequired = "Le type de paiement est requis"
	MsgPaymentTypeInvalid  = "Type de paiement invalide"
	MsgNotFound            = "Réservation introuvable"
	MsgAlreadyCancelled    = "Cette réservation est déjà annulée"
	MsgCancelled           = "Réservation annulée"
)
