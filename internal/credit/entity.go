// AngelaMos | 2026
// entity.go

package credit

import (
	"time"
)

type Reason string

const (
	ReasonTopUp   Reason = "top_up"
	ReasonBooking Reason = "booking"
	ReasonRefund  Reason = "refund"
)

type Credit struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Amount    Amount    `db:"amount"`
	Reason    Reason    `db:"reason"`
	CreatedAt time.Time `db:"created_at"`
}

// HistoryRow is a credit row with the registration it paid for or
// refunded, if any.
type HistoryRow struct {
	Credit
	RegistrationID *string    `db:"registration_id"`
	Status         *string    `db:"status"`
	PaymentType    *string    `db:"payment_type"`
	SessionID      *string    `db:"session_id"`
	StartTS        *time.Time `db:"start_ts"`
	EndTS          *time.Time `db:"end_ts"`
	ActivityID     *string    `db:"activity_id"`
	ActivityName   *string    `db:"activity_name"`
}

const MsgAmountNotPositive = "Le montant doit être supérieur à 0"
