// AngelaMos | 2026
// ledger.go

package registration

import (
	"time"
)

type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusActive    Status = "ACTIVE"
	StatusCancelled Status = "CANCELLED"
)

// IsActive reports whether status counts against capacity. Anything but
// CANCELLED is active.
func (s Status) IsActive() bool {
	return s != StatusCancelled
}

// StatusEntry is one append-only row of a registration's status ledger.
type StatusEntry struct {
	ID             string    `db:"id"`
	Seq            int64     `db:"seq"`
	RegistrationID string    `db:"registration_id"`
	Status         Status    `db:"status"`
	CreditID       *string   `db:"credit_id"`
	CreatedAt      time.Time `db:"created_at"`
}

func (e *StatusEntry) after(o *StatusEntry) bool {
	if e.CreatedAt.Equal(o.CreatedAt) {
		return e.Seq > o.Seq
	}
	return e.CreatedAt.After(o.CreatedAt)
}

// Latest returns the entry with the greatest CreatedAt, ties broken by the
// greater Seq, or nil when entries is empty.
func Latest(entries []StatusEntry) *StatusEntry {
	var latest *StatusEntry
	for i := range entries {
		if latest == nil || entries[i].after(latest) {
			latest = &entries[i]
		}
	}
	return latest
}

// EffectiveStatus is the status of the latest entry. A registration
// without any entry is active.
func EffectiveStatus(entries []StatusEntry) Status {
	if latest := Latest(entries); latest != nil {
		return latest.Status
	}
	return StatusActive
}

// Ledger groups status entries by registration id.
type Ledger map[string][]StatusEntry

func NewLedger(entries []StatusEntry) Ledger {
	l := make(Ledger)
	for _, e := range entries {
		l[e.RegistrationID] = append(l[e.RegistrationID], e)
	}
	return l
}

func (l Ledger) Status(registrationID string) Status {
	return EffectiveStatus(l[registrationID])
}

func (l Ledger) IsActive(registrationID string) bool {
	return l.Status(registrationID).IsActive()
}

func (l Ledger) Latest(registrationID string) *StatusEntry {
	return Latest(l[registrationID])
}

// DebitCreditID returns the credit row debited when the registration was
// booked, if any.
func (l Ledger) DebitCreditID(registrationID string) *string {
	for _, e := range l[registrationID] {
		if e.CreditID != nil && e.Status != StatusCancelled {
			return e.CreditID
		}
	}
	return nil
}
