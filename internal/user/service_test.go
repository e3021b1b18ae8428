// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manufacto/booking/internal/core"
)

type fakeRepo struct {
	mu    sync.Mutex
	users map[string]*User
}

func newFakeRepo(users ...*User) *fakeRepo {
	r := &fakeRepo{users: map[string]*User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email && existing.DeletedAt == nil {
			return core.ErrDuplicateKey
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeRepo) find(match func(*User) bool) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.DeletedAt == nil && match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	return r.find(func(u *User) bool { return u.ID == id })
}

func (r *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	return r.find(func(u *User) bool { return u.Email == email })
}

func (r *fakeRepo) GetByInviteHash(_ context.Context, hash string) (*User, error) {
	return r.find(func(u *User) bool {
		return u.InviteTokenHash != nil && *u.InviteTokenHash == hash
	})
}

func (r *fakeRepo) ListByIDs(_ context.Context, ids []string) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return core.ErrNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeRepo) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = hash
	u.InviteTokenHash = nil
	u.InviteExpiresAt = nil
	return nil
}

func (r *fakeRepo) IncrementTokenVersion(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.TokenVersion++
	return nil
}

func (r *fakeRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return core.ErrNotFound
	}
	now := time.Now()
	u.DeletedAt = &now
	return nil
}

func (r *fakeRepo) List(_ context.Context, _ ListUsersParams) ([]User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []User
	for _, u := range r.users {
		if u.DeletedAt == nil {
			out = append(out, *u)
		}
	}
	return out, len(out), nil
}

func (r *fakeRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func TestCreateInvited(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, time.Hour)

	u, invite, err := svc.CreateInvited(context.Background(), CreateUserRequest{
		Email:     " Alice@Example.com ",
		FirstName: "Alice",
		LastName:  "Martin",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", u.Email)
	assert.True(t, u.IsInvited())
	assert.NotEmpty(t, invite.Token)
	assert.Equal(t, core.HashToken(invite.Token), *u.InviteTokenHash)
	assert.WithinDuration(t, time.Now().Add(time.Hour), invite.ExpiresAt, time.Minute)

	found, err := svc.GetByInviteHash(context.Background(), core.HashToken(invite.Token))
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
}

func TestCreateInvitedDuplicateEmail(t *testing.T) {
	repo := newFakeRepo(&User{ID: "u1", Email: "bob@example.com", Role: RoleUser})
	svc := NewService(repo, time.Hour)

	_, _, err := svc.CreateInvited(context.Background(), CreateUserRequest{
		Email: "bob@example.com", FirstName: "Bob", LastName: "Durand",
	})
	require.Error(t, err)

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.StatusCode)
	assert.True(t, errors.Is(err, core.ErrDuplicateKey))
}

func TestSetRole(t *testing.T) {
	admin := &User{ID: "admin", Email: "a@example.com", Role: RoleAdmin}
	member := &User{ID: "member", Email: "m@example.com", Role: RoleUser}

	tests := []struct {
		name      string
		requester string
		target    string
		role      string
		wantErr   error
		wantRole  string
	}{
		{"promote member", "admin", "member", RoleAdmin, nil, RoleAdmin},
		{"self demotion refused", "admin", "admin", RoleUser, ErrSelfDemotion, ""},
		{"invalid role", "admin", "member", "owner", core.ErrInvalidInput, ""},
		{"unknown user", "admin", "ghost", RoleAdmin, ErrUserNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, m := *admin, *member
			svc := NewService(newFakeRepo(&a, &m), time.Hour)

			u, err := svc.SetRole(context.Background(), tt.requester, tt.target, tt.role)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, u.Role)
		})
	}
}

func TestSetRoleBumpsTokenVersion(t *testing.T) {
	repo := newFakeRepo(&User{ID: "m", Email: "m@example.com", Role: RoleUser})
	svc := NewService(repo, time.Hour)

	_, err := svc.SetRole(context.Background(), "admin", "m", RoleAdmin)
	require.NoError(t, err)

	u, err := repo.GetByID(context.Background(), "m")
	require.NoError(t, err)
	assert.Equal(t, 1, u.TokenVersion)
}

func TestDeleteUser(t *testing.T) {
	repo := newFakeRepo(
		&User{ID: "admin", Email: "a@example.com", Role: RoleAdmin},
		&User{ID: "member", Email: "m@example.com", Role: RoleUser},
	)
	svc := NewService(repo, time.Hour)
	ctx := context.Background()

	assert.ErrorIs(t, svc.DeleteUser(ctx, "admin"), ErrDeleteAdmin)
	require.NoError(t, svc.DeleteUser(ctx, "member"))
	assert.ErrorIs(t, svc.DeleteUser(ctx, "member"), ErrUserNotFound)

	exists, err := svc.Exists(ctx, "member")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Alice Martin", DisplayName("Alice", "Martin", "a@example.com"))
	assert.Equal(t, "Alice", DisplayName("Alice", "", "a@example.com"))
	assert.Equal(t, "a@example.com", DisplayName(" ", "", "a@example.com"))
}
