// AngelaMos | 2026
// service_test.go

package activity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manufacto/booking/internal/core"
)

type fakeRepo struct {
	activities map[string]*Activity
	sessions   map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{activities: map[string]*Activity{}, sessions: map[string]bool{}}
}

func (r *fakeRepo) Create(_ context.Context, a *Activity) error {
	cp := *a
	r.activities[a.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Activity, error) {
	a, ok := r.activities[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) List(_ context.Context) ([]Activity, error) {
	out := make([]Activity, 0, len(r.activities))
	for _, a := range r.activities {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, a *Activity) error {
	if _, ok := r.activities[a.ID]; !ok {
		return core.ErrNotFound
	}
	cp := *a
	r.activities[a.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.activities[id]; !ok {
		return core.ErrNotFound
	}
	delete(r.activities, id)
	return nil
}

func (r *fakeRepo) HasSessions(_ context.Context, id string) (bool, error) {
	return r.sessions[id], nil
}

func intPtr(v int) *int { return &v }

func TestCreateRequiresType(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	_, err := svc.Create(context.Background(), ActivityRequest{Name: "Couture"})
	require.Error(t, err)

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	assert.Equal(t, MsgTypeRequired, appErr.Message)
}

func TestCreateRejectsNegativeCredits(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	_, err := svc.Create(context.Background(), ActivityRequest{
		Name: "Couture", Type: "atelier", NbCredits: intPtr(-1),
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestListOrderedByTypeThenName(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)
	ctx := context.Background()

	for _, req := range []ActivityRequest{
		{Name: "Tournage", Type: "cours"},
		{Name: "Couture", Type: "atelier"},
		{Name: "Bois", Type: "atelier"},
	} {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	list, err := svc.ListCached(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Bois", "Couture", "Tournage"},
		[]string{list[0].Name, list[1].Name, list[2].Name})
}

func TestDeleteGuards(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	a, err := svc.Create(ctx, ActivityRequest{Name: "Couture", Type: "atelier"})
	require.NoError(t, err)

	repo.sessions[a.ID] = true
	assert.ErrorIs(t, svc.Delete(ctx, a.ID), ErrHasSessions)

	repo.sessions[a.ID] = false
	require.NoError(t, svc.Delete(ctx, a.ID))
	assert.ErrorIs(t, svc.Delete(ctx, a.ID), ErrActivityNotFound)
}

func TestHandlerNotFoundMessage(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(NewService(newFakeRepo(), nil)).RegisterRoutes(r)

	for _, id := range []string{"missing", "7c1d2e3f-4a5b-4c6d-8e7f-9a0b1c2d3e4f"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/activities/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, id)

		var body core.Response
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.NotNil(t, body.Error)
		assert.Equal(t, MsgNotFound, body.Error.Message)
	}
}

func TestHandlerMalformedIDSkipsStore(t *testing.T) {
	repo := newFakeRepo()
	repo.activities["abc"] = &Activity{ID: "abc", Name: "000", Type: "atelier"}
	r := chi.NewRouter()
	NewHandler(NewService(repo, nil)).RegisterAdminRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/activities/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, repo.activities, "abc")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/activities/abc",
		strings.NewReader(`{"name":"Couture","type":"atelier"}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "000", repo.activities["abc"].Name)
}

func TestHandlerCreate(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(NewService(newFakeRepo(), nil)).RegisterAdminRoutes(r)

	body := `{"name":"Couture","type":"atelier","nb_credits":3,"price":25.5}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/activities", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data ActivityResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Couture", resp.Data.Name)
	require.NotNil(t, resp.Data.NbCredits)
	assert.Equal(t, 3, *resp.Data.NbCredits)
}
