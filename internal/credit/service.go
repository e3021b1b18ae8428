// AngelaMos | 2026
// service.go

package credit

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/manufacto/booking/internal/core"
)

var (
	ErrAmountNotPositive = core.ValidationError(MsgAmountNotPositive)
	ErrUserNotFound      = core.NotFoundError("Utilisateur introuvable")
)

type UserChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo  Repository
	users UserChecker
	cache *core.ViewCache
}

func NewService(repo Repository, users UserChecker, cache *core.ViewCache) *Service {
	return &Service{repo: repo, users: users, cache: cache}
}

func (s *Service) Balance(ctx context.Context, userID string) (Amount, error) {
	return BalanceOf(ctx, s.repo, userID)
}

// Balances returns the balance of every user in userIDs; users without
// credit rows map to 0.
func (s *Service) Balances(ctx context.Context, userIDs []string) (map[string]Amount, error) {
	credits, err := s.repo.ListByUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	balances := make(map[string]Amount, len(userIDs))
	for _, id := range userIDs {
		balances[id] = Amount{}
	}
	for _, c := range credits {
		balances[c.UserID] = balances[c.UserID].Add(c.Amount)
	}

	return balances, nil
}

// AddCredit records an admin top-up.
func (s *Service) AddCredit(ctx context.Context, userID string, amount Amount) (*Credit, error) {
	if !amount.IsPositive() {
		return nil, ErrAmountNotPositive
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	c := &Credit{
		ID:     uuid.New().String(),
		UserID: userID,
		Amount: amount,
		Reason: ReasonTopUp,
	}

	if err := s.repo.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("add credit: %w", err)
	}

	s.cache.Revalidate(ctx, core.ViewAccount(userID), core.ViewAdmin)
	return c, nil
}

func (s *Service) History(ctx context.Context, userID string) ([]HistoryEntry, error) {
	rows, err := s.repo.History(ctx, userID)
	if err != nil {
		return nil, err
	}

	return ToHistory(rows), nil
}
