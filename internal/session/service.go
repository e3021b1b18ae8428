// AngelaMos | 2026
// service.go

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/manufacto/booking/internal/activity"
	"github.com/manufacto/booking/internal/config"
	"github.com/manufacto/booking/internal/core"
)

var (
	ErrSessionNotFound = core.NotFoundError(MsgNotFound)
	ErrNoSessionInWeek = core.NotFoundError(MsgNoSessionInWeek)
	ErrInvalidRule     = core.ValidationError("Règle de récurrence invalide")
)

type ActivityLookup interface {
	Get(ctx context.Context, id string) (*activity.Activity, error)
}

type Service struct {
	repo          Repository
	activities    ActivityLookup
	cache         *core.ViewCache
	loc           *time.Location
	maxRecurrence int
	now           func() time.Time
}

func NewService(
	repo Repository,
	activities ActivityLookup,
	cache *core.ViewCache,
	cfg config.BookingConfig,
) *Service {
	return &Service{
		repo:          repo,
		activities:    activities,
		cache:         cache,
		loc:           cfg.Location(),
		maxRecurrence: max(cfg.MaxRecurrence, 1),
		now:           time.Now,
	}
}

func notFound(err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrSessionNotFound, err)
	}
	return err
}

func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return sess, nil
}

// Create stores one session, or one per occurrence of req.Recurrence with
// the duration of the first.
func (s *Service) Create(ctx context.Context, req CreateSessionRequest) ([]Session, error) {
	if _, err := s.activities.Get(ctx, req.ActivityID); err != nil {
		return nil, err
	}

	first := Session{
		ID:               uuid.New().String(),
		ActivityID:       req.ActivityID,
		StartTS:          req.StartTS,
		EndTS:            req.EndTS,
		MaxRegistrations: req.MaxRegistrations,
	}
	if err := first.Validate(); err != nil {
		return nil, core.InvalidEntity(err)
	}

	sessions := []Session{first}
	if strings.TrimSpace(req.Recurrence) != "" {
		starts, err := s.expand(req.StartTS, req.Recurrence)
		if err != nil {
			return nil, err
		}

		duration := first.Duration()
		sessions = make([]Session, 0, len(starts))
		for _, start := range starts {
			sessions = append(sessions, Session{
				ID:               uuid.New().String(),
				ActivityID:       req.ActivityID,
				StartTS:          start,
				EndTS:            start.Add(duration),
				MaxRegistrations: req.MaxRegistrations,
			})
		}
	}

	if err := s.repo.CreateBatch(ctx, sessions); err != nil {
		return nil, err
	}

	s.revalidate(ctx, req.ActivityID)
	return sessions, nil
}

// expand lists the occurrence starts of rule from start, in local time so
// that a weekly rule keeps its wall clock across DST changes. Rules without
// COUNT, or with a larger one, stop at maxRecurrence occurrences.
func (s *Service) expand(start time.Time, rule string) ([]time.Time, error) {
	rule = strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:")

	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}

	opt.Dtstart = start.In(s.loc)
	if opt.Count <= 0 || opt.Count > s.maxRecurrence {
		opt.Count = s.maxRecurrence
	}

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}

	starts := r.All()
	if len(starts) == 0 {
		return nil, ErrInvalidRule
	}

	return starts, nil
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdateSessionRequest,
) (*Session, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	sess.StartTS = req.StartTS
	sess.EndTS = req.EndTS
	sess.MaxRegistrations = req.MaxRegistrations

	if err := sess.Validate(); err != nil {
		return nil, core.InvalidEntity(err)
	}

	if err := s.repo.Update(ctx, sess); err != nil {
		return nil, notFound(err)
	}

	s.revalidate(ctx, sess.ActivityID)
	return sess, nil
}

// Week returns the sessions of activityID starting in the local week
// offset weeks away from the current one, with the window bounds.
func (s *Service) Week(
	ctx context.Context,
	activityID string,
	offset int,
) (time.Time, time.Time, []Session, error) {
	from, to := WeekWindow(s.now(), s.loc, offset)

	sessions, err := s.repo.ListByActivityBetween(ctx, activityID, from, to)
	if err != nil {
		return from, to, nil, err
	}

	return from, to, sessions, nil
}

func (s *Service) PreviousWeekSessions(
	ctx context.Context,
	activityID string,
	offset int,
) ([]Session, error) {
	_, _, sessions, err := s.Week(ctx, activityID, offset)
	return sessions, err
}

// DuplicateWeek copies every session of the source week into the target
// week. Nothing checks for sessions already present in the target week;
// running it twice creates two copies.
func (s *Service) DuplicateWeek(
	ctx context.Context,
	activityID string,
	sourceOffset, targetOffset int,
) ([]Session, error) {
	if _, err := s.activities.Get(ctx, activityID); err != nil {
		return nil, err
	}

	source, err := s.PreviousWeekSessions(ctx, activityID, sourceOffset)
	if err != nil {
		return nil, err
	}
	if len(source) == 0 {
		return nil, ErrNoSessionInWeek
	}

	weeks := targetOffset - sourceOffset
	created := make([]Session, 0, len(source))
	for _, src := range source {
		created = append(created, Session{
			ID:               uuid.New().String(),
			ActivityID:       activityID,
			StartTS:          ShiftWeeks(src.StartTS, s.loc, weeks),
			EndTS:            ShiftWeeks(src.EndTS, s.loc, weeks),
			MaxRegistrations: src.MaxRegistrations,
		})
	}

	if err := s.repo.CreateBatch(ctx, created); err != nil {
		return nil, err
	}

	s.revalidate(ctx, activityID)
	return created, nil
}

// Upcoming lists the sessions of activityID that have not started.
func (s *Service) Upcoming(ctx context.Context, activityID string) ([]Session, error) {
	return s.repo.ListUpcoming(ctx, activityID, s.now())
}

func (s *Service) ListAll(ctx context.Context) ([]Session, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) ListByIDs(ctx context.Context, ids []string) ([]Session, error) {
	return s.repo.ListByIDs(ctx, ids)
}

func (s *Service) revalidate(ctx context.Context, activityID string) {
	s.cache.Revalidate(ctx, core.ViewCatalog(activityID), core.ViewAdmin)
}
