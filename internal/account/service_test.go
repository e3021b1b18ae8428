// AngelaMos | 2026
// service_test.go

package account

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manufacto/booking/internal/activity"
	"github.com/manufacto/booking/internal/credit"
	"github.com/manufacto/booking/internal/registration"
	"github.com/manufacto/booking/internal/session"
	"github.com/manufacto/booking/internal/user"
)

type fakeUsers map[string]*user.User

func (f fakeUsers) GetUser(_ context.Context, id string) (*user.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound
}

type fakeRegistrations struct {
	regs    []registration.Registration
	entries []registration.StatusEntry
}

func (f fakeRegistrations) ForUser(
	_ context.Context,
	userID string,
) ([]registration.Registration, registration.Ledger, error) {
	var out []registration.Registration
	for _, r := range f.regs {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, registration.NewLedger(f.entries), nil
}

type fakeSessions []session.Session

func (f fakeSessions) ListByIDs(context.Context, []string) ([]session.Session, error) {
	return f, nil
}

type fakeActivities []activity.Activity

func (f fakeActivities) List(context.Context) ([]activity.Activity, error) {
	return f, nil
}

type fakeCredits struct{}

func (fakeCredits) Balance(context.Context, string) (credit.Amount, error) {
	return credit.NewAmount(4), nil
}

func (fakeCredits) History(context.Context, string) ([]credit.HistoryEntry, error) {
	return []credit.HistoryEntry{{CreditResponse: credit.CreditResponse{ID: "c1", Amount: credit.NewAmount(4)}}}, nil
}

var (
	now = time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	t0  = now.Add(-72 * time.Hour)
	t1  = now.Add(-48 * time.Hour)
)

func newTestService() *Service {
	svc := NewService(
		fakeUsers{"u": {ID: "u", Email: "u@example.com", Role: user.RoleUser}},
		fakeRegistrations{
			regs: []registration.Registration{
				{ID: "r-cancelled", UserID: "u", SessionID: "future"},
				{ID: "r-upcoming", UserID: "u", SessionID: "future2"},
				{ID: "r-past", UserID: "u", SessionID: "past"},
				{ID: "r-nostatus", UserID: "u", SessionID: "future"},
			},
			entries: []registration.StatusEntry{
				{RegistrationID: "r-cancelled", Seq: 1, Status: registration.StatusConfirmed, CreatedAt: t0},
				{RegistrationID: "r-cancelled", Seq: 4, Status: registration.StatusCancelled, CreatedAt: t1},
				{RegistrationID: "r-upcoming", Seq: 2, Status: registration.StatusConfirmed, CreatedAt: t1.Add(time.Hour)},
				{RegistrationID: "r-past", Seq: 3, Status: registration.StatusConfirmed, CreatedAt: t0},
			},
		},
		fakeSessions{
			{ID: "future", ActivityID: "a", StartTS: now.Add(24 * time.Hour)},
			{ID: "future2", ActivityID: "a", StartTS: now.Add(48 * time.Hour)},
			{ID: "past", ActivityID: "a", StartTS: now.Add(-24 * time.Hour)},
		},
		fakeActivities{{ID: "a", Name: "Couture"}},
		fakeCredits{},
		nil,
	)
	svc.now = func() time.Time { return now }
	return svc
}

func ids(views []RegistrationView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

func TestAccountSplitsByEffectiveStatus(t *testing.T) {
	view, err := newTestService().Account(context.Background(), "u")
	require.NoError(t, err)

	assert.Equal(t, []string{"r-cancelled"}, ids(view.Cancelled))
	assert.Equal(t, []string{"r-upcoming", "r-nostatus"}, ids(view.Upcoming))
	assert.Equal(t, []string{"r-past"}, ids(view.Past))

	assert.Equal(t, registration.StatusActive, view.Upcoming[1].Status)
	assert.Nil(t, view.Upcoming[1].StatusAt)
	assert.Equal(t, "Couture", view.Past[0].ActivityName)
	assert.Equal(t, "4", view.Balance.String())
	assert.Len(t, view.Credits, 1)
}

func TestAccountViewExpiresAtNextUpcomingStart(t *testing.T) {
	svc := newTestService()
	view, err := svc.build(context.Background(), "u")
	require.NoError(t, err)

	assert.Equal(t, now.Add(24*time.Hour), view.nextStart())
	assert.True(t, (&View{}).nextStart().IsZero())
}

func TestSortByLatestStatus(t *testing.T) {
	regs := []registration.Registration{{ID: "b"}, {ID: "x"}, {ID: "a"}, {ID: "y"}}
	ledger := registration.NewLedger([]registration.StatusEntry{
		{RegistrationID: "x", Seq: 1, CreatedAt: t0},
		{RegistrationID: "y", Seq: 2, CreatedAt: t1},
	})

	sorted := SortByLatestStatus(regs, ledger)

	got := make([]string, 0, len(sorted))
	for _, r := range sorted {
		got = append(got, r.ID)
	}
	assert.Equal(t, []string{"y", "x", "a", "b"}, got)
	assert.Equal(t, "b", regs[0].ID, "input is not reordered")
}

func TestDossierHandlerUnknownUser(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(newTestService()).RegisterAdminRoutes(r)

	for _, id := range []string{"ghost", "1e2d3c4b-5a69-4788-9a1b-2c3d4e5f6a7b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/"+id+"/dossier", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		assert.Contains(t, rec.Body.String(), "Utilisateur introuvable")
	}
}
