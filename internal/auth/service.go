// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/manufacto/booking/internal/core"
	"github.com/manufacto/booking/internal/middleware"
)

var (
	ErrInvalidCredentials = core.UnauthorizedError("E-mail ou mot de passe incorrect")
	ErrWrongPassword      = core.UnauthorizedError("Le mot de passe actuel est incorrect")
	ErrEmailExists        = core.ConflictError(
		"EMAIL_EXISTS",
		"Un compte avec cet e-mail existe déjà. "+
			"Veuillez vous connecter ou réinitialiser votre mot de passe.",
	)
	ErrInvitationInvalid = core.NewAppError(
		core.ErrTokenInvalid,
		"Cette invitation est invalide ou a expiré",
		http.StatusBadRequest,
		"INVITATION_INVALID",
	)
	ErrTokenReuse = core.NewAppError(
		core.ErrTokenRevoked,
		"Jeton déjà utilisé : toutes les connexions de cet appareil ont été fermées",
		http.StatusUnauthorized,
		"TOKEN_REUSE_DETECTED",
	)
	ErrDeviceNotFound = core.NotFoundError("Appareil introuvable")
	ErrForeignDevice  = core.ForbiddenError("Cet appareil appartient à un autre compte")
)

// expiredTokenRetention keeps expired refresh tokens around long enough to
// recognise a late reuse.
const expiredTokenRetention = 24 * time.Hour

type UserInfo struct {
	ID              string
	Email           string
	FirstName       string
	LastName        string
	PasswordHash    string
	Role            string
	TokenVersion    int
	InviteExpiresAt *time.Time
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	GetByInviteHash(ctx context.Context, tokenHash string) (*UserInfo, error)
	Create(
		ctx context.Context,
		email, passwordHash, firstName, lastName string,
	) (*UserInfo, error)
	IncrementTokenVersion(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type Service struct {
	repo  Repository
	jwt   *JWTManager
	users UserProvider
	redis redis.UniversalClient
	now   func() time.Time
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	users UserProvider,
	redisClient redis.UniversalClient,
) *Service {
	return &Service{
		repo:  repo,
		jwt:   jwt,
		users: users,
		redis: redisClient,
		now:   time.Now,
	}
}

// storedHash is nil for invited accounts that have not chosen a password.
func storedHash(u *UserInfo) *string {
	if u.PasswordHash == "" {
		return nil
	}
	return &u.PasswordHash
}

func (s *Service) Login(ctx context.Context, req LoginRequest, client Client) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, core.ErrNotFound) {
		//nolint:errcheck // constant-time path for unknown e-mails
		_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	valid, rehash, err := core.VerifyPasswordTimingSafe(req.Password, storedHash(user))
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	if rehash != "" {
		if err := s.users.UpdatePassword(ctx, user.ID, rehash); err != nil {
			slog.WarnContext(ctx, "password rehash not saved", "user_id", user.ID, "error", err)
		}
	}

	return s.signIn(ctx, user, client)
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	client Client,
) (*AuthResponse, error) {
	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user, err := s.users.Create(ctx, req.Email, hash, req.FirstName, req.LastName)
	if errors.Is(err, core.ErrDuplicateKey) {
		return nil, fmt.Errorf("%w: %w", ErrEmailExists, err)
	}
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	return s.signIn(ctx, user, client)
}

// AcceptInvitation sets the first password of an account created by an
// admin and signs the member in.
func (s *Service) AcceptInvitation(
	ctx context.Context,
	req AcceptInvitationRequest,
	client Client,
) (*AuthResponse, error) {
	user, err := s.users.GetByInviteHash(ctx, core.HashToken(req.Token))
	if errors.Is(err, core.ErrNotFound) {
		return nil, ErrInvitationInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("accept invitation: %w", err)
	}

	if user.InviteExpiresAt == nil || !s.now().Before(*user.InviteExpiresAt) {
		return nil, ErrInvitationInvalid
	}

	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("accept invitation: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return nil, fmt.Errorf("accept invitation: %w", err)
	}

	user.PasswordHash = hash
	user.InviteExpiresAt = nil

	return s.signIn(ctx, user, client)
}

// Refresh exchanges a refresh token for a new pair. Presenting a token
// that was already exchanged revokes every token of its family.
func (s *Service) Refresh(
	ctx context.Context,
	refreshToken string,
	client Client,
) (*AuthResponse, error) {
	stored, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
	if errors.Is(err, core.ErrNotFound) {
		return nil, core.TokenInvalidError()
	}
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	switch stored.State(s.now()) {
	case TokenReused:
		return nil, s.revokeFamily(ctx, stored)
	case TokenRevoked:
		return nil, core.TokenRevokedError()
	case TokenExpired:
		return nil, core.TokenExpiredError()
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, core.TokenRevokedError()
	}
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	resp, next, err := s.issue(user, client, stored.FamilyID)
	if err != nil {
		return nil, err
	}

	err = s.repo.Rotate(ctx, stored.ID, next)
	if errors.Is(err, core.ErrConflict) {
		// A concurrent exchange of the same token won.
		return nil, s.revokeFamily(ctx, stored)
	}
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	return resp, nil
}

func (s *Service) revokeFamily(ctx context.Context, token *RefreshToken) error {
	n, err := s.repo.RevokeFamily(ctx, token.FamilyID)
	if err != nil {
		slog.ErrorContext(ctx, "token family revocation failed",
			"family_id", token.FamilyID, "error", err)
	} else {
		slog.WarnContext(ctx, "refresh token reuse",
			"user_id", token.UserID, "family_id", token.FamilyID, "revoked", n)
	}
	return ErrTokenReuse
}

// Logout revokes the refresh token, when given, and blacklists the access
// token of the request until it would have expired anyway.
func (s *Service) Logout(
	ctx context.Context,
	refreshToken string,
	claims *middleware.AccessTokenClaims,
) error {
	if claims == nil {
		return core.UnauthorizedError("")
	}

	if err := s.RevokeAccessToken(ctx, claims.JTI, claims.ExpiresAt); err != nil {
		slog.WarnContext(ctx, "access token blacklist failed", "error", err)
	}

	if refreshToken == "" {
		return nil
	}

	stored, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	if stored.UserID != claims.UserID {
		return ErrForeignDevice
	}

	if err := s.repo.RevokeByID(ctx, stored.ID); err != nil &&
		!errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

// LogoutAll closes every device of userID and invalidates the access
// tokens already issued to it.
func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	n, err := s.repo.RevokeAllForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("logout all: %w", err)
	}

	if err := s.users.IncrementTokenVersion(ctx, userID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}

	slog.InfoContext(ctx, "user signed out everywhere", "user_id", userID, "devices", n)
	return nil
}

func blacklistKey(jti string) string {
	return "blacklist:" + jti
}

func (s *Service) RevokeAccessToken(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.redis == nil || jti == "" {
		return nil
	}

	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	if err := s.redis.Set(ctx, blacklistKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	return nil
}

func (s *Service) isBlacklisted(ctx context.Context, jti string) (bool, error) {
	if s.redis == nil || jti == "" {
		return false, nil
	}

	n, err := s.redis.Exists(ctx, blacklistKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}

	return n > 0, nil
}

// VerifyAccessToken implements middleware.TokenVerifier. The token must
// carry the account's current token version, so a role change, a deletion
// or a logout everywhere takes effect on the next request. The role in the
// returned claims is the stored one. A blacklist outage is logged and
// tolerated.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.ParseAccessToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.isBlacklisted(ctx, claims.JTI)
	if err != nil {
		slog.WarnContext(ctx, "access token blacklist unavailable", "error", err)
	}
	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("verify token: account gone: %w", core.ErrTokenRevoked)
	}
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}

	if user.TokenVersion != claims.TokenVersion {
		return nil, fmt.Errorf("verify token: stale version: %w", core.ErrTokenRevoked)
	}

	claims.Role = user.Role
	return claims, nil
}

func (s *Service) Devices(ctx context.Context, userID string) ([]DeviceInfo, error) {
	tokens, err := s.repo.ListDevices(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}

	devices := make([]DeviceInfo, 0, len(tokens))
	for i := range tokens {
		devices = append(devices, tokens[i].Device())
	}
	return devices, nil
}

func (s *Service) RevokeDevice(ctx context.Context, userID, deviceID string) error {
	token, err := s.repo.FindByID(ctx, deviceID)
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrDeviceNotFound, err)
	}
	if err != nil {
		return fmt.Errorf("revoke device: %w", err)
	}

	if token.UserID != userID {
		return ErrForeignDevice
	}

	if err := s.repo.RevokeByID(ctx, deviceID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("%w: %w", ErrDeviceNotFound, err)
		}
		return fmt.Errorf("revoke device: %w", err)
	}

	return nil
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID string,
	req ChangePasswordRequest,
) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	valid, _, err := core.VerifyPasswordTimingSafe(req.CurrentPassword, storedHash(user))
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if !valid {
		return ErrWrongPassword
	}

	hash, err := core.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	return s.LogoutAll(ctx, userID)
}

func (s *Service) CurrentUser(ctx context.Context, userID string) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// PurgeExpiredTokens deletes refresh tokens expired for longer than the
// retention window.
func (s *Service) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now().Add(-expiredTokenRetention))
}

// issue builds a token pair for user. familyID is empty for a fresh login.
func (s *Service) issue(
	user *UserInfo,
	client Client,
	familyID string,
) (*AuthResponse, *RefreshToken, error) {
	access, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID:       user.ID,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("issue tokens: %w", err)
	}

	refresh, err := s.jwt.CreateRefreshToken(familyID)
	if err != nil {
		return nil, nil, fmt.Errorf("issue tokens: %w", err)
	}

	stored := &RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: refresh.Hash,
		FamilyID:  refresh.FamilyID,
		ExpiresAt: refresh.ExpiresAt,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
	}

	ttl := s.jwt.AccessTokenTTL()

	return &AuthResponse{
		User: toUserResponse(user),
		Tokens: TokenResponse{
			AccessToken:  access,
			RefreshToken: refresh.Token,
			TokenType:    "Bearer",
			ExpiresIn:    int(ttl / time.Second),
			ExpiresAt:    s.now().Add(ttl),
		},
	}, stored, nil
}

func (s *Service) signIn(
	ctx context.Context,
	user *UserInfo,
	client Client,
) (*AuthResponse, error) {
	resp, stored, err := s.issue(user, client, "")
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, stored); err != nil {
		return nil, err
	}

	return resp, nil
}

var _ middleware.TokenVerifier = (*Service)(nil)
