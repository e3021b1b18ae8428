// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/manufacto/booking/internal/auth"
	"github.com/manufacto/booking/internal/core"
)

var (
	ErrUserNotFound = core.NotFoundError("Utilisateur introuvable")
	ErrEmailTaken   = core.ConflictError(
		"EMAIL_EXISTS",
		"Un compte avec cet e-mail existe déjà.",
	)
	ErrSelfDemotion = core.ForbiddenError(
		"Vous ne pouvez pas retirer vos propres droits d'administrateur",
	)
	ErrDeleteAdmin = core.ForbiddenError(
		"Impossible de supprimer un administrateur",
	)
)

type Service struct {
	repo      Repository
	inviteTTL time.Duration
}

func NewService(repo Repository, inviteTTL time.Duration) *Service {
	return &Service{repo: repo, inviteTTL: inviteTTL}
}

func notFound(err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrUserNotFound, err)
	}
	return err
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByInviteHash(
	ctx context.Context,
	tokenHash string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByInviteHash(ctx, tokenHash)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, firstName, lastName string,
) (*auth.UserInfo, error) {
	user := &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Role:         RoleUser,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID string,
) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

// CreateInvited creates an account without a password on behalf of an
// admin. The returned token is the only copy of the invitation secret.
func (s *Service) CreateInvited(
	ctx context.Context,
	req CreateUserRequest,
) (*User, *core.InviteToken, error) {
	invite, err := core.NewInviteToken(s.inviteTTL)
	if err != nil {
		return nil, nil, err
	}

	user := &User{
		ID:              uuid.New().String(),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Role:            RoleUser,
		InviteTokenHash: &invite.Hash,
		InviteExpiresAt: &invite.ExpiresAt,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, nil, fmt.Errorf("%w: %w", ErrEmailTaken, err)
		}
		return nil, nil, err
	}

	return user, invite, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

// Exists reports whether id names a live account.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UsersByID returns the accounts among ids keyed by id, deleted ones
// included so historical registrations keep a name.
func (s *Service) UsersByID(
	ctx context.Context,
	ids []string,
) (map[string]User, error) {
	users, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

func (s *Service) UpdateUser(
	ctx context.Context,
	id string,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, notFound(err)
	}

	return user, nil
}

// SetRole makes or removes an admin. An admin cannot demote themselves,
// which keeps at least the acting admin in place.
func (s *Service) SetRole(
	ctx context.Context,
	requesterID, targetID, role string,
) (*User, error) {
	if role != RoleUser && role != RoleAdmin {
		return nil, fmt.Errorf(
			"update role: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	if requesterID == targetID && role != RoleAdmin {
		return nil, ErrSelfDemotion
	}

	user, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, notFound(err)
	}

	if user.Role == role {
		return user, nil
	}

	user.Role = role

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, notFound(err)
	}

	// Outstanding access tokens carry the old role.
	if err := s.repo.IncrementTokenVersion(ctx, user.ID); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.GetUser(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateUserRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	return s.UpdateUser(ctx, userID, req)
}

func (s *Service) DeleteMe(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("delete me: %w", core.ErrUnauthorized)
	}

	return notFound(s.repo.SoftDelete(ctx, userID))
}

// DeleteUser soft deletes a member account. Admin accounts must be demoted
// first.
func (s *Service) DeleteUser(ctx context.Context, targetID string) error {
	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return notFound(err)
	}

	if target.IsAdmin() {
		return ErrDeleteAdmin
	}

	return notFound(s.repo.SoftDelete(ctx, targetID))
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		PasswordHash:    u.PasswordHash,
		Role:            u.Role,
		TokenVersion:    u.TokenVersion,
		InviteExpiresAt: u.InviteExpiresAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)
