// AngelaMos | 2026
// service.go

package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/manufacto/booking/internal/activity"
	"github.com/manufacto/booking/internal/core"
	"github.com/manufacto/booking/internal/registration"
	"github.com/manufacto/booking/internal/session"
	"github.com/manufacto/booking/internal/user"
)

type ActivityReader interface {
	Get(ctx context.Context, id string) (*activity.Activity, error)
	List(ctx context.Context) ([]activity.Activity, error)
}

type SessionReader interface {
	Upcoming(ctx context.Context, activityID string) ([]session.Session, error)
	ListAll(ctx context.Context) ([]session.Session, error)
}

type RegistrationReader interface {
	Capacities(
		ctx context.Context,
		sessions []session.Session,
	) (map[string]registration.Capacity, error)
	ActiveBySession(
		ctx context.Context,
		sessionIDs []string,
	) (map[string][]registration.Registration, error)
}

type UserDirectory interface {
	UsersByID(ctx context.Context, ids []string) (map[string]user.User, error)
}

type Service struct {
	activities    ActivityReader
	sessions      SessionReader
	registrations RegistrationReader
	users         UserDirectory
	cache         *core.ViewCache
	loc           *time.Location
	logger        *slog.Logger
}

func NewService(
	activities ActivityReader,
	sessions SessionReader,
	registrations RegistrationReader,
	users UserDirectory,
	cache *core.ViewCache,
	loc *time.Location,
	logger *slog.Logger,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		activities:    activities,
		sessions:      sessions,
		registrations: registrations,
		users:         users,
		cache:         cache,
		loc:           loc,
		logger:        logger,
	}
}

func sessionsView(activityID string) string {
	return core.ViewCatalog(activityID) + "/sessions"
}

const boardView = core.ViewAdmin + "/board"

// AvailableSessions lists the sessions of activityID that have not started
// with their capacity. When registrations cannot be read the sessions are
// shown with no known registration and the view is not kept in cache.
func (s *Service) AvailableSessions(ctx context.Context, activityID string) ([]SessionView, error) {
	if _, err := s.activities.Get(ctx, activityID); err != nil {
		return nil, err
	}

	return core.CachedViewFor(ctx, s.cache, sessionsView(activityID),
		func(ctx context.Context) ([]SessionView, core.Freshness, error) {
			return s.availableSessions(ctx, activityID)
		})
}

// availableSessions builds the listing, which stays valid until its first
// session starts.
func (s *Service) availableSessions(
	ctx context.Context,
	activityID string,
) ([]SessionView, core.Freshness, error) {
	sessions, err := s.sessions.Upcoming(ctx, activityID)
	if err != nil {
		return nil, core.Freshness{}, err
	}

	var fresh core.Freshness
	for i := range sessions {
		if fresh.Until.IsZero() || sessions[i].StartTS.Before(fresh.Until) {
			fresh.Until = sessions[i].StartTS
		}
	}

	capacities, err := s.registrations.Capacities(ctx, sessions)
	if err != nil {
		s.logger.WarnContext(ctx, "session capacity unavailable",
			"activity_id", activityID,
			"error", err,
		)
		fresh.Skip = true
		capacities = nil
	}

	return withCapacity(sessions, capacities), fresh, nil
}

func withCapacity(
	sessions []session.Session,
	capacities map[string]registration.Capacity,
) []SessionView {
	views := make([]SessionView, 0, len(sessions))
	for i := range sessions {
		sess := &sessions[i]

		c, ok := capacities[sess.ID]
		if !ok {
			c = registration.CapacityOf(sess.MaxRegistrations, 0)
		}

		views = append(views, SessionView{
			SessionResponse: session.ToSessionResponse(sess),
			Capacity:        c,
		})
	}
	return views
}

// Board lists every activity with its sessions grouped by local date and
// the members registered on each.
func (s *Service) Board(ctx context.Context) ([]BoardActivity, error) {
	return core.CachedView(ctx, s.cache, boardView, s.board)
}

func (s *Service) board(ctx context.Context) ([]BoardActivity, error) {
	activities, err := s.activities.List(ctx)
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessions.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(sessions))
	for i, sess := range sessions {
		ids[i] = sess.ID
	}

	active, err := s.registrations.ActiveBySession(ctx, ids)
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, 0)
	seen := make(map[string]bool)
	for _, regs := range active {
		for _, r := range regs {
			if !seen[r.UserID] {
				seen[r.UserID] = true
				userIDs = append(userIDs, r.UserID)
			}
		}
	}

	users, err := s.users.UsersByID(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	byActivity := make(map[string][]session.Session)
	for _, sess := range sessions {
		byActivity[sess.ActivityID] = append(byActivity[sess.ActivityID], sess)
	}

	board := make([]BoardActivity, 0, len(activities))
	for i := range activities {
		a := &activities[i]
		board = append(board, BoardActivity{
			ActivityResponse: activity.ToActivityResponse(a),
			Days:             s.days(byActivity[a.ID], active, users),
		})
	}

	return board, nil
}

// days groups sessions, already sorted by start, by their local date.
func (s *Service) days(
	sessions []session.Session,
	active map[string][]registration.Registration,
	users map[string]user.User,
) []BoardDay {
	days := make([]BoardDay, 0)

	for i := range sessions {
		sess := &sessions[i]
		regs := active[sess.ID]

		attendees := make([]Attendee, 0, len(regs))
		for _, r := range regs {
			name := r.UserID
			if u, ok := users[r.UserID]; ok {
				name = u.DisplayName()
			}
			attendees = append(attendees, Attendee{
				RegistrationID: r.ID,
				UserID:         r.UserID,
				DisplayName:    name,
				PaymentType:    r.PaymentType,
			})
		}

		entry := BoardSession{
			SessionView: SessionView{
				SessionResponse: session.ToSessionResponse(sess),
				Capacity:        registration.CapacityOf(sess.MaxRegistrations, len(regs)),
			},
			Attendees: attendees,
		}

		date := sess.StartTS.In(s.loc).Format(time.DateOnly)
		if n := len(days); n > 0 && days[n-1].Date == date {
			days[n-1].Sessions = append(days[n-1].Sessions, entry)
			continue
		}
		days = append(days, BoardDay{Date: date, Sessions: []BoardSession{entry}})
	}

	return days
}
