// AngelaMos | 2026
// service_test.go

package credit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manufacto/booking/internal/core"
)

type fakeRepo struct {
	mu      sync.Mutex
	credits []Credit
}

func (r *fakeRepo) Insert(_ context.Context, c *Credit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.CreatedAt = time.Now()
	r.credits = append(r.credits, *c)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Credit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.credits {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (r *fakeRepo) ListByUser(_ context.Context, userID string) ([]Credit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Credit
	for i := len(r.credits) - 1; i >= 0; i-- {
		if r.credits[i].UserID == userID {
			out = append(out, r.credits[i])
		}
	}
	return out, nil
}

func (r *fakeRepo) ListByUsers(_ context.Context, userIDs []string) ([]Credit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}
	var out []Credit
	for _, c := range r.credits {
		if wanted[c.UserID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeRepo) History(ctx context.Context, userID string) ([]HistoryRow, error) {
	credits, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows := make([]HistoryRow, 0, len(credits))
	for _, c := range credits {
		rows = append(rows, HistoryRow{Credit: c})
	}
	return rows, nil
}

func (r *fakeRepo) LockAccount(context.Context, string) error {
	return nil
}

type fakeUsers map[string]bool

func (u fakeUsers) Exists(_ context.Context, id string) (bool, error) {
	return u[id], nil
}

func TestAddCredit(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, fakeUsers{"u1": true}, nil)
	ctx := context.Background()

	c, err := svc.AddCredit(ctx, "u1", NewAmount(5))
	require.NoError(t, err)
	assert.Equal(t, ReasonTopUp, c.Reason)
	assert.NotEmpty(t, c.ID)

	_, err = svc.AddCredit(ctx, "u1", ParseAmount("2.5"))
	require.NoError(t, err)

	balance, err := svc.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "7.5", balance.String())
}

func TestAddCreditRejects(t *testing.T) {
	svc := NewService(&fakeRepo{}, fakeUsers{"u1": true}, nil)
	ctx := context.Background()

	for _, amount := range []Amount{{}, NewAmount(-1)} {
		_, err := svc.AddCredit(ctx, "u1", amount)
		require.ErrorIs(t, err, ErrAmountNotPositive)

		appErr, ok := core.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
		assert.Equal(t, MsgAmountNotPositive, appErr.Message)
	}

	_, err := svc.AddCredit(ctx, "ghost", NewAmount(3))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestBalances(t *testing.T) {
	repo := &fakeRepo{credits: []Credit{
		{ID: "c1", UserID: "u1", Amount: NewAmount(5)},
		{ID: "c2", UserID: "u1", Amount: NewAmount(-3)},
		{ID: "c3", UserID: "u2", Amount: NewAmount(2)},
	}}
	svc := NewService(repo, fakeUsers{}, nil)

	balances, err := svc.Balances(context.Background(), []string{"u1", "u2", "u3"})
	require.NoError(t, err)
	got := map[string]string{}
	for id, b := range balances {
		got[id] = b.String()
	}
	assert.Equal(t, map[string]string{"u1": "2", "u2": "2", "u3": "0"}, got)
}

const memberID = "8a7b6c5d-4e3f-4a1b-9c8d-7e6f5a4b3c2d"

func TestAddCreditHandlerAcceptsStringAmount(t *testing.T) {
	repo := &fakeRepo{}
	h := NewHandler(NewService(repo, fakeUsers{memberID: true}, nil))

	r := chi.NewRouter()
	h.RegisterAdminRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/users/"+memberID+"/credits",
		strings.NewReader(`{"amount": "4"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.credits, 1)
	assert.Equal(t, "4", repo.credits[0].Amount.String())

	req = httptest.NewRequest(http.MethodPost, "/users/"+memberID+"/credits",
		strings.NewReader(`{"amount": "zero"}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgAmountNotPositive)
}

func TestCreditHandlersMalformedUserID(t *testing.T) {
	repo := &fakeRepo{}
	r := chi.NewRouter()
	NewHandler(NewService(repo, fakeUsers{"u1": true}, nil)).RegisterAdminRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users/u1/credits",
		strings.NewReader(`{"amount": 4}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Utilisateur introuvable")
	assert.Empty(t, repo.credits)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/u1/credits", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
