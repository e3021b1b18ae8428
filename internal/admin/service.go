// AngelaMos | 2026
// service.go

package admin

import (
	"context"
	"time"

	"github.com/manufacto/booking/internal/credit"
	"github.com/manufacto/booking/internal/user"
)

type UserLister interface {
	ListUsers(ctx context.Context, params user.ListUsersParams) ([]user.User, int, error)
}

type BalanceReader interface {
	Balances(ctx context.Context, userIDs []string) (map[string]credit.Amount, error)
}

type Service struct {
	repo     Repository
	users    UserLister
	balances BalanceReader
	now      func() time.Time
}

func NewService(repo Repository, users UserLister, balances BalanceReader) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		balances: balances,
		now:      time.Now,
	}
}

// Users lists one page of members with their credit balance.
func (s *Service) Users(
	ctx context.Context,
	params user.ListUsersParams,
) ([]UserOverview, int, error) {
	params.Normalize()

	users, total, err := s.users.ListUsers(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	balances, err := s.balances.Balances(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]UserOverview, 0, len(users))
	for i := range users {
		u := &users[i]
		out = append(out, UserOverview{
			UserResponse: user.ToUserResponse(u),
			DisplayName:  u.DisplayName(),
			Balance:      balances[u.ID],
		})
	}

	return out, total, nil
}

func (s *Service) Counts(ctx context.Context) (*Counts, error) {
	return s.repo.Counts(ctx, s.now())
}
