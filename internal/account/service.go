// AngelaMos | 2026
// service.go

package account

import (
	"context"
	"sort"
	"time"

	"github.com/manufacto/booking/internal/activity"
	"github.com/manufacto/booking/internal/core"
	"github.com/manufacto/booking/internal/credit"
	"github.com/manufacto/booking/internal/registration"
	"github.com/manufacto/booking/internal/session"
	"github.com/manufacto/booking/internal/user"
)

type UserReader interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
}

type RegistrationReader interface {
	ForUser(
		ctx context.Context,
		userID string,
	) ([]registration.Registration, registration.Ledger, error)
}

type SessionReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]session.Session, error)
}

type ActivityReader interface {
	List(ctx context.Context) ([]activity.Activity, error)
}

type CreditReader interface {
	Balance(ctx context.Context, userID string) (credit.Amount, error)
	History(ctx context.Context, userID string) ([]credit.HistoryEntry, error)
}

type Service struct {
	users         UserReader
	registrations RegistrationReader
	sessions      SessionReader
	activities    ActivityReader
	credits       CreditReader
	cache         *core.ViewCache
	now           func() time.Time
}

func NewService(
	users UserReader,
	registrations RegistrationReader,
	sessions SessionReader,
	activities ActivityReader,
	credits CreditReader,
	cache *core.ViewCache,
) *Service {
	return &Service{
		users:         users,
		registrations: registrations,
		sessions:      sessions,
		activities:    activities,
		credits:       credits,
		cache:         cache,
		now:           time.Now,
	}
}

// Account returns the account view of userID, cached until the next
// booking, cancellation or top-up of that user, or until one of its upcoming
// sessions starts, whichever comes first.
func (s *Service) Account(ctx context.Context, userID string) (*View, error) {
	return core.CachedViewFor(ctx, s.cache, core.ViewAccount(userID),
		func(ctx context.Context) (*View, core.Freshness, error) {
			view, err := s.build(ctx, userID)
			if err != nil {
				return nil, core.Freshness{}, err
			}
			return view, core.Freshness{Until: view.nextStart()}, nil
		})
}

// Dossier is the account view of userID as seen by an admin. It always
// reads through.
func (s *Service) Dossier(ctx context.Context, userID string) (*View, error) {
	return s.build(ctx, userID)
}

func (s *Service) build(ctx context.Context, userID string) (*View, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	regs, ledger, err := s.registrations.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessionsOf(ctx, regs)
	if err != nil {
		return nil, err
	}

	names, err := s.activityNames(ctx)
	if err != nil {
		return nil, err
	}

	balance, err := s.credits.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	history, err := s.credits.History(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &View{
		User:      user.ToUserResponse(u),
		Balance:   balance,
		Upcoming:  []RegistrationView{},
		Past:      []RegistrationView{},
		Cancelled: []RegistrationView{},
		Credits:   history,
	}

	now := s.now()
	for _, r := range SortByLatestStatus(regs, ledger) {
		sess, ok := sessions[r.SessionID]
		if !ok {
			continue
		}

		rv := RegistrationView{
			ID:           r.ID,
			SessionID:    sess.ID,
			ActivityID:   sess.ActivityID,
			ActivityName: names[sess.ActivityID],
			StartTS:      sess.StartTS,
			EndTS:        sess.EndTS,
			PaymentType:  r.PaymentType,
			Status:       ledger.Status(r.ID),
		}
		if latest := ledger.Latest(r.ID); latest != nil {
			at := latest.CreatedAt
			rv.StatusAt = &at
		}

		switch {
		case !rv.Status.IsActive():
			view.Cancelled = append(view.Cancelled, rv)
		case sess.StartTS.Before(now):
			view.Past = append(view.Past, rv)
		default:
			view.Upcoming = append(view.Upcoming, rv)
		}
	}

	return view, nil
}

// nextStart is when the first upcoming registration moves to past, or
// zero when there is none.
func (v *View) nextStart() time.Time {
	var next time.Time
	for _, rv := range v.Upcoming {
		if next.IsZero() || rv.StartTS.Before(next) {
			next = rv.StartTS
		}
	}
	return next
}

func (s *Service) sessionsOf(
	ctx context.Context,
	regs []registration.Registration,
) (map[string]session.Session, error) {
	ids := make([]string, 0, len(regs))
	for _, r := range regs {
		ids = append(ids, r.SessionID)
	}

	sessions, err := s.sessions.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]session.Session, len(sessions))
	for _, sess := range sessions {
		byID[sess.ID] = sess
	}
	return byID, nil
}

func (s *Service) activityNames(ctx context.Context) (map[string]string, error) {
	activities, err := s.activities.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(activities))
	for _, a := range activities {
		names[a.ID] = a.Name
	}
	return names, nil
}

// SortByLatestStatus orders registrations by the time of their latest
// status, newest first. Registrations without a status come last, ordered
// by id.
func SortByLatestStatus(
	regs []registration.Registration,
	ledger registration.Ledger,
) []registration.Registration {
	sorted := make([]registration.Registration, len(regs))
	copy(sorted, regs)

	statusTime := func(id string) time.Time {
		if latest := ledger.Latest(id); latest != nil {
			return latest.CreatedAt
		}
		return time.Time{}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := statusTime(sorted[i].ID), statusTime(sorted[j].ID)
		if ti.Equal(tj) {
			return sorted[i].ID < sorted[j].ID
		}
		return ti.After(tj)
	})

	return sorted
}
