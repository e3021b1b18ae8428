// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manufacto/booking/internal/config"
	"github.com/manufacto/booking/internal/core"
)

type fakeTokens struct {
	mu     sync.Mutex
	tokens map[string]*RefreshToken
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{tokens: map[string]*RefreshToken{}}
}

func (f *fakeTokens) Create(_ context.Context, t *RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.CreatedAt = time.Now()
	cp := *t
	f.tokens[t.ID] = &cp
	return nil
}

func (f *fakeTokens) FindByHash(_ context.Context, hash string) (*RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.TokenHash == hash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeTokens) FindByID(_ context.Context, id string) (*RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokens) Rotate(_ context.Context, usedID string, next *RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	used, ok := f.tokens[usedID]
	if !ok || used.IsUsed || used.RevokedAt != nil {
		return core.ErrConflict
	}
	now := time.Now()
	used.IsUsed = true
	used.UsedAt = &now
	used.ReplacedByID = &next.ID
	cp := *next
	f.tokens[next.ID] = &cp
	return nil
}

func (f *fakeTokens) RevokeByID(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[id]
	if !ok || t.RevokedAt != nil {
		return core.ErrNotFound
	}
	now := time.Now()
	t.RevokedAt = &now
	return nil
}

func (f *fakeTokens) revoke(match func(*RefreshToken) bool) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	now := time.Now()
	for _, t := range f.tokens {
		if match(t) && t.RevokedAt == nil {
			t.RevokedAt = &now
			n++
		}
	}
	return n
}

func (f *fakeTokens) RevokeFamily(_ context.Context, familyID string) (int64, error) {
	return f.revoke(func(t *RefreshToken) bool { return t.FamilyID == familyID }), nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID string) (int64, error) {
	return f.revoke(func(t *RefreshToken) bool { return t.UserID == userID }), nil
}

func (f *fakeTokens) ListDevices(_ context.Context, userID string, now time.Time) ([]RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []RefreshToken
	for _, t := range f.tokens {
		if t.UserID == userID && t.State(now) == TokenUsable {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTokens) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, t := range f.tokens {
		if t.ExpiresAt.Before(before) {
			delete(f.tokens, id)
			n++
		}
	}
	return n, nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*UserInfo
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]*UserInfo{}}
}

func (f *fakeUsers) find(match func(*UserInfo) bool) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	return f.find(func(u *UserInfo) bool { return u.Email == email })
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	return f.find(func(u *UserInfo) bool { return u.ID == id })
}

func (f *fakeUsers) GetByInviteHash(_ context.Context, hash string) (*UserInfo, error) {
	return f.find(func(u *UserInfo) bool { return u.PasswordHash == "" && u.Email == "invite:"+hash })
}

func (f *fakeUsers) Create(
	_ context.Context,
	email, hash, first, last string,
) (*UserInfo, error) {
	if _, err := f.GetByEmail(context.Background(), email); err == nil {
		return nil, core.ErrDuplicateKey
	}
	u := &UserInfo{
		ID: uuid.New().String(), Email: email, PasswordHash: hash,
		FirstName: first, LastName: last, Role: "user",
	}
	f.mu.Lock()
	f.users[u.ID] = u
	f.mu.Unlock()
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) IncrementTokenVersion(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.TokenVersion++
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = hash
	u.InviteExpiresAt = nil
	return nil
}

func (f *fakeUsers) set(id string, fn func(u *UserInfo)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.users[id])
}

func newTestJWT(t *testing.T) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	priv := filepath.Join(dir, "private.pem")
	pub := filepath.Join(dir, "public.pem")
	require.NoError(t, GenerateKeyPair(priv, pub))

	m, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:     priv,
		PublicKeyPath:      pub,
		AccessTokenExpire:  15 * time.Minute,
		RefreshTokenExpire: 24 * time.Hour,
		Issuer:             "manufacto",
		Audience:           "manufacto-api",
	})
	require.NoError(t, err)
	return m
}

type fixture struct {
	svc    *Service
	tokens *fakeTokens
	users  *fakeUsers
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	tokens, users := newFakeTokens(), newFakeUsers()
	return fixture{
		svc:    NewService(tokens, newTestJWT(t), users, nil),
		tokens: tokens,
		users:  users,
	}
}

var laptop = Client{UserAgent: "laptop", IPAddress: "10.0.0.1"}

func register(t *testing.T, f fixture, email string) *AuthResponse {
	t.Helper()
	resp, err := f.svc.Register(context.Background(), RegisterRequest{
		Email: email, Password: "correct horse", FirstName: "Alice", LastName: "Martin",
	}, laptop)
	require.NoError(t, err)
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp := register(t, f, "alice@example.com")
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.Tokens.AccessToken)

	_, err := f.svc.Register(ctx, RegisterRequest{
		Email: "alice@example.com", Password: "another pass", FirstName: "A", LastName: "B",
	}, laptop)
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "alice@example.com", Password: "wrong pass"}, laptop)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "whatever1"}, laptop)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	logged, err := f.svc.Login(ctx, LoginRequest{Email: "alice@example.com", Password: "correct horse"}, laptop)
	require.NoError(t, err)

	claims, err := f.svc.VerifyAccessToken(ctx, logged.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestRefreshRotatesAndDetectsReuse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := register(t, f, "bob@example.com")

	second, err := f.svc.Refresh(ctx, first.Tokens.RefreshToken, laptop)
	require.NoError(t, err)
	assert.NotEqual(t, first.Tokens.RefreshToken, second.Tokens.RefreshToken)

	_, err = f.svc.Refresh(ctx, first.Tokens.RefreshToken, laptop)
	assert.ErrorIs(t, err, ErrTokenReuse)

	// The whole family is gone, including the token issued by rotation.
	_, err = f.svc.Refresh(ctx, second.Tokens.RefreshToken, laptop)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	_, err = f.svc.Refresh(ctx, "not-a-token", laptop)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyAccessTokenFollowsAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp := register(t, f, "carol@example.com")
	token := resp.Tokens.AccessToken

	f.users.set(resp.User.ID, func(u *UserInfo) { u.Role = "admin" })
	claims, err := f.svc.VerifyAccessToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)

	require.NoError(t, f.svc.LogoutAll(ctx, resp.User.ID))
	_, err = f.svc.VerifyAccessToken(ctx, token)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	devices, err := f.svc.Devices(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Empty(t, devices)
}

func TestVerifyAccessTokenRejectsGarbage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.VerifyAccessToken(context.Background(), "a.b.c")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestAcceptInvitation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	invite, err := core.NewInviteToken(time.Hour)
	require.NoError(t, err)

	f.users.users["invited"] = &UserInfo{
		ID: "invited", Email: "invite:" + invite.Hash, Role: "user",
		InviteExpiresAt: &invite.ExpiresAt,
	}

	_, err = f.svc.Login(ctx, LoginRequest{Email: "invite:" + invite.Hash, Password: "anything1"}, laptop)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := f.svc.AcceptInvitation(ctx, AcceptInvitationRequest{
		Token: invite.Token, Password: "fresh password",
	}, laptop)
	require.NoError(t, err)
	assert.Equal(t, "invited", resp.User.ID)

	_, err = f.svc.AcceptInvitation(ctx, AcceptInvitationRequest{
		Token: invite.Token, Password: "second try",
	}, laptop)
	assert.ErrorIs(t, err, ErrInvitationInvalid)
}

func TestAcceptInvitationExpired(t *testing.T) {
	f := newFixture(t)

	invite, err := core.NewInviteToken(time.Hour)
	require.NoError(t, err)
	f.users.users["late"] = &UserInfo{
		ID: "late", Email: "invite:" + invite.Hash, InviteExpiresAt: &invite.ExpiresAt,
	}
	f.svc.now = func() time.Time { return invite.ExpiresAt.Add(time.Second) }

	_, err = f.svc.AcceptInvitation(context.Background(), AcceptInvitationRequest{
		Token: invite.Token, Password: "too late now",
	}, laptop)
	assert.ErrorIs(t, err, ErrInvitationInvalid)
}

func TestRevokeDeviceOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := register(t, f, "alice@example.com")
	bob := register(t, f, "bob@example.com")

	devices, err := f.svc.Devices(ctx, alice.User.ID)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "laptop", devices[0].UserAgent)

	assert.ErrorIs(t, f.svc.RevokeDevice(ctx, bob.User.ID, devices[0].ID), ErrForeignDevice)
	assert.ErrorIs(t, f.svc.RevokeDevice(ctx, alice.User.ID, "missing"), ErrDeviceNotFound)
	require.NoError(t, f.svc.RevokeDevice(ctx, alice.User.ID, devices[0].ID))
}

func TestChangePasswordSignsOutEverywhere(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp := register(t, f, "dan@example.com")

	err := f.svc.ChangePassword(ctx, resp.User.ID, ChangePasswordRequest{
		CurrentPassword: "wrong one", NewPassword: "brand new pass",
	})
	assert.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, f.svc.ChangePassword(ctx, resp.User.ID, ChangePasswordRequest{
		CurrentPassword: "correct horse", NewPassword: "brand new pass",
	}))

	_, err = f.svc.Refresh(ctx, resp.Tokens.RefreshToken, laptop)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestPurgeExpiredTokens(t *testing.T) {
	f := newFixture(t)
	now := time.Now()

	f.tokens.tokens["old"] = &RefreshToken{ID: "old", ExpiresAt: now.Add(-48 * time.Hour)}
	f.tokens.tokens["grace"] = &RefreshToken{ID: "grace", ExpiresAt: now.Add(-time.Hour)}
	f.tokens.tokens["live"] = &RefreshToken{ID: "live", ExpiresAt: now.Add(time.Hour)}

	n, err := f.svc.PurgeExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Len(t, f.tokens.tokens, 2)
}

func TestTokenState(t *testing.T) {
	now := time.Now()
	revoked := now.Add(-time.Minute)

	assert.Equal(t, TokenUsable, (&RefreshToken{ExpiresAt: now.Add(time.Hour)}).State(now))
	assert.Equal(t, TokenExpired, (&RefreshToken{ExpiresAt: now}).State(now))
	assert.Equal(t, TokenRevoked, (&RefreshToken{ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked}).State(now))
	assert.Equal(t, TokenReused, (&RefreshToken{ExpiresAt: now.Add(time.Hour), IsUsed: true}).State(now))
}
