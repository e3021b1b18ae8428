// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/manufacto/booking/internal/core"
)

type stubVerifier struct {
	claims *AccessTokenClaims
	err    error
}

func (s stubVerifier) VerifyAccessToken(
	_ context.Context,
	_ string,
) (*AccessTokenClaims, error) {
	return s.claims, s.err
}

func guarded(verifier TokenVerifier, reached *bool) http.Handler {
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*reached = true
		w.WriteHeader(http.StatusOK)
	})
	return Authenticator(verifier)(RequireAdmin(final))
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		claims  *AccessTokenClaims
		err     error
		status  int
		reached bool
	}{
		{
			name:   "missing token",
			status: http.StatusUnauthorized,
		},
		{
			name:   "invalid token",
			header: "Bearer broken",
			err:    core.ErrTokenInvalid,
			status: http.StatusUnauthorized,
		},
		{
			name:   "member role",
			header: "Bearer member",
			claims: &AccessTokenClaims{UserID: "u-1", Role: "user"},
			status: http.StatusForbidden,
		},
		{
			name:   "no role claim",
			header: "Bearer anonymous",
			claims: &AccessTokenClaims{UserID: "u-2"},
			status: http.StatusUnauthorized,
		},
		{
			name:    "admin role",
			header:  "Bearer admin",
			claims:  &AccessTokenClaims{UserID: "u-3", Role: RoleAdmin},
			status:  http.StatusOK,
			reached: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			h := guarded(stubVerifier{claims: tt.claims, err: tt.err}, &reached)

			req := httptest.NewRequest(http.MethodGet, "/v1/admin/users", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.reached, reached)
		})
	}
}

func TestAuthenticatorStoresClaims(t *testing.T) {
	claims := &AccessTokenClaims{UserID: "u-9", Role: "user", JTI: "jti-1"}

	var gotID, gotRole string
	var gotClaims *AccessTokenClaims
	h := Authenticator(stubVerifier{claims: claims})(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			gotID = GetUserID(r.Context())
			gotRole = GetUserRole(r.Context())
			gotClaims = GetClaims(r.Context())
		},
	))

	req := httptest.NewRequest(http.MethodGet, "/v1/account", nil)
	req.Header.Set("Authorization", "bearer token")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "u-9", gotID)
	assert.Equal(t, "user", gotRole)
	assert.Same(t, claims, gotClaims)
}

func TestAuthenticatorStoreFailure(t *testing.T) {
	reached := false
	h := guarded(stubVerifier{err: errors.New("connection refused")}, &reached)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/users", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, reached)
}

func TestExtractToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
	}

	for header, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		assert.Equal(t, want, ExtractToken(req), header)
	}
}
