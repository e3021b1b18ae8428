// AngelaMos | 2026
// service.go

package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/manufacto/booking/internal/core"
)

var (
	ErrActivityNotFound = core.NotFoundError(MsgNotFound)
	ErrHasSessions      = core.ConflictError("ACTIVITY_HAS_SESSIONS", MsgHasSessions)
)

type Service struct {
	repo  Repository
	cache *core.ViewCache
}

func NewService(repo Repository, cache *core.ViewCache) *Service {
	return &Service{repo: repo, cache: cache}
}

func notFound(err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrActivityNotFound, err)
	}
	return err
}

func (s *Service) Get(ctx context.Context, id string) (*Activity, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// List returns every activity ordered by type then name.
func (s *Service) List(ctx context.Context) ([]Activity, error) {
	return s.repo.List(ctx)
}

// ListCached is List behind the public view cache.
func (s *Service) ListCached(ctx context.Context) ([]ActivityResponse, error) {
	return core.CachedView(ctx, s.cache, core.ViewActivities,
		func(ctx context.Context) ([]ActivityResponse, error) {
			activities, err := s.repo.List(ctx)
			if err != nil {
				return nil, err
			}
			return ToActivityResponseList(activities), nil
		})
}

func (s *Service) Create(ctx context.Context, req ActivityRequest) (*Activity, error) {
	a := &Activity{ID: uuid.New().String()}
	apply(a, req)

	if err := a.Validate(); err != nil {
		return nil, core.InvalidEntity(err)
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.cache.Revalidate(ctx, core.ViewActivities, core.ViewAdmin)
	return a, nil
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req ActivityRequest,
) (*Activity, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	apply(a, req)

	if err := a.Validate(); err != nil {
		return nil, core.InvalidEntity(err)
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, notFound(err)
	}

	s.cache.Revalidate(ctx, core.ViewActivities, core.ViewAdmin)
	return a, nil
}

// Delete refuses while any session, past or future, references the
// activity.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return notFound(err)
	}

	hasSessions, err := s.repo.HasSessions(ctx, id)
	if err != nil {
		return err
	}
	if hasSessions {
		return ErrHasSessions
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, core.ErrConflict) {
			return fmt.Errorf("%w: %w", ErrHasSessions, err)
		}
		return notFound(err)
	}

	s.cache.Revalidate(ctx, core.ViewActivities, core.ViewAdmin)
	return nil
}

func apply(a *Activity, req ActivityRequest) {
	a.Name = strings.TrimSpace(req.Name)
	a.Type = strings.TrimSpace(req.Type)
	a.NbCredits = req.NbCredits
	a.Price = req.Price
	a.Description = strings.TrimSpace(req.Description)
}
