// AngelaMos | 2026
// capacity.go

package registration

import (
	"github.com/manufacto/booking/internal/session"
)

type Capacity struct {
	Registered int  `json:"registered_count"`
	IsFull     bool `json:"is_full"`
	Available  *int `json:"available"`
}

// CapacityOf derives the capacity fields of a session capped at maxRegs
// (nil means unlimited) holding registered active registrations.
func CapacityOf(maxRegs *int, registered int) Capacity {
	c := Capacity{Registered: registered}
	if maxRegs == nil {
		return c
	}

	available := max(0, *maxRegs-registered)
	c.IsFull = registered >= *maxRegs
	c.Available = &available
	return c
}

// CountActive counts the registrations whose effective status is active.
func CountActive(regs []Registration, ledger Ledger) int {
	n := 0
	for _, r := range regs {
		if ledger.IsActive(r.ID) {
			n++
		}
	}
	return n
}

// Tally computes the capacity of every session from its registrations and
// their status rows. Sessions without registrations report zero.
func Tally(sessions []session.Session, regs []Registration, ledger Ledger) map[string]Capacity {
	bySession := make(map[string][]Registration, len(sessions))
	for _, r := range regs {
		bySession[r.SessionID] = append(bySession[r.SessionID], r)
	}

	out := make(map[string]Capacity, len(sessions))
	for _, s := range sessions {
		out[s.ID] = CapacityOf(s.MaxRegistrations, CountActive(bySession[s.ID], ledger))
	}
	return out
}
