// AngelaMos | 2026
// fake_test.go

package registration

import (
	"context"
	"sync"
	"time"

	"github.com/manufacto/booking/internal/core"
	"github.com/manufacto/booking/internal/credit"
	"github.com/manufacto/booking/internal/session"
)

// store is an in-memory Repository. RunInTx holds txMu for the whole
// callback, which serializes transactions like the session row lock does.
type store struct {
	txMu     sync.Mutex
	mu       sync.Mutex
	sessions map[string]LockedSession
	users    map[string]bool
	regs     []Registration
	statuses []StatusEntry
	credits  []credit.Credit
	seq      int64
	clock    time.Time
}

func newStore() *store {
	return &store{
		sessions: map[string]LockedSession{},
		users:    map[string]bool{},
		clock:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (s *store) addSession(id string, start time.Time, maxRegs, nbCredits *int) {
	s.sessions[id] = LockedSession{
		Session: session.Session{
			ID:               id,
			ActivityID:       "act-" + id,
			StartTS:          start,
			EndTS:            start.Add(2 * time.Hour),
			MaxRegistrations: maxRegs,
		},
		NbCredits: nbCredits,
	}
}

// addUser registers id with one top-up per amount; amounts go through
// credit.ParseAmount, so "0.1" and 5 both work.
func (s *store) addUser(id string, amounts ...any) {
	s.users[id] = true
	for i, a := range amounts {
		s.credits = append(s.credits, credit.Credit{
			ID:     id + "-topup-" + string(rune('a'+i)),
			UserID: id,
			Amount: credit.ParseAmount(a),
			Reason: credit.ReasonTopUp,
		})
	}
}

func (s *store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *store) RunInTx(_ context.Context, fn func(tx Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(s)
}

func (s *store) LockSession(_ context.Context, id string) (*LockedSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &sess, nil
}

func (s *store) GetByID(_ context.Context, id string) (*Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.regs {
		if r.ID == id {
			cp := r
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *store) ListBySession(ctx context.Context, id string) ([]Registration, error) {
	return s.ListBySessions(ctx, []string{id})
}

func (s *store) ListBySessions(_ context.Context, ids []string) ([]Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	var out []Registration
	for _, r := range s.regs {
		if wanted[r.SessionID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *store) ListByUser(_ context.Context, userID string) ([]Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Registration
	for _, r := range s.regs {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *store) ListStatuses(_ context.Context, ids []string) ([]StatusEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	var out []StatusEntry
	for _, e := range s.statuses {
		if wanted[e.RegistrationID] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *store) Create(_ context.Context, reg *Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.users[reg.UserID] {
		return core.ErrNotFound
	}
	reg.CreatedAt = s.tick()
	s.regs = append(s.regs, *reg)
	return nil
}

func (s *store) AppendStatus(_ context.Context, e *StatusEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	e.Seq = s.seq
	e.CreatedAt = s.tick()
	s.statuses = append(s.statuses, *e)
	return nil
}

func (s *store) Credits() credit.Repository {
	return creditStore{s}
}

func (s *store) balance(userID string) credit.Amount {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total credit.Amount
	for _, c := range s.credits {
		if c.UserID == userID {
			total = total.Add(c.Amount)
		}
	}
	return total
}

type creditStore struct {
	s *store
}

func (c creditStore) Insert(_ context.Context, cr *credit.Credit) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	cr.CreatedAt = c.s.tick()
	c.s.credits = append(c.s.credits, *cr)
	return nil
}

func (c creditStore) GetByID(_ context.Context, id string) (*credit.Credit, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	for _, cr := range c.s.credits {
		if cr.ID == id {
			cp := cr
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (c creditStore) ListByUser(_ context.Context, userID string) ([]credit.Credit, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	var out []credit.Credit
	for _, cr := range c.s.credits {
		if cr.UserID == userID {
			out = append(out, cr)
		}
	}
	return out, nil
}

func (c creditStore) ListByUsers(ctx context.Context, ids []string) ([]credit.Credit, error) {
	var out []credit.Credit
	for _, id := range ids {
		credits, _ := c.ListByUser(ctx, id) //nolint:errcheck // in-memory
		out = append(out, credits...)
	}
	return out, nil
}

func (c creditStore) History(context.Context, string) ([]credit.HistoryRow, error) {
	return nil, nil
}

func (c creditStore) LockAccount(_ context.Context, userID string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if !c.s.users[userID] {
		return core.ErrNotFound
	}
	return nil
}

func intPtr(n int) *int {
	return &n
}

func strPtr(s string) *string {
	return &s
}
