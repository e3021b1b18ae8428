// AngelaMos | 2026
// service.go

package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/manufacto/booking/internal/config"
	"github.com/manufacto/booking/internal/core"
	"github.com/manufacto/booking/internal/credit"
	"github.com/manufacto/booking/internal/session"
)

var (
	ErrSessionNotFound      = core.NotFoundError(session.MsgNotFound)
	ErrUserNotFound         = core.NotFoundError("Utilisateur introuvable")
	ErrSessionPast          = core.ConflictError("SESSION_PAST", MsgSessionPast)
	ErrAlreadyRegistered    = core.ConflictError("ALREADY_REGISTERED", MsgAlreadyRegistered)
	ErrSessionFull          = core.ConflictError("SESSION_FULL", MsgSessionFull)
	ErrInsufficientCredits  = core.ConflictError("INSUFFICIENT_CREDITS", MsgInsufficientCredits)
	ErrPaymentTypeRequired  = core.ValidationError(MsgPaymentTypeRequired)
	ErrPaymentTypeInvalid   = core.ValidationError(MsgPaymentTypeInvalid)
	ErrRegistrationNotFound = core.NotFoundError(MsgNotFound)
	ErrAlreadyCancelled     = core.ConflictError("ALREADY_CANCELLED", MsgAlreadyCancelled)
)

type Service struct {
	repo         Repository
	cache        *core.ViewCache
	debitCredits bool
	now          func() time.Time
}

func NewService(repo Repository, cache *core.ViewCache, cfg config.BookingConfig) *Service {
	return &Service{
		repo:         repo,
		cache:        cache,
		debitCredits: cfg.DebitCredits,
		now:          time.Now,
	}
}

type bookingRequest struct {
	sessionID   string
	userID      string
	paymentType *string
	selfService bool
}

// Book registers userID on sessionID. The session must not have started.
func (s *Service) Book(
	ctx context.Context,
	sessionID, userID string,
	paymentType *string,
) (*Registration, error) {
	if userID == "" {
		return nil, fmt.Errorf("book session: %w", core.ErrUnauthorized)
	}
	if paymentType != nil && !ValidPaymentType(*paymentType) {
		return nil, ErrPaymentTypeInvalid
	}

	return s.book(ctx, bookingRequest{
		sessionID:   sessionID,
		userID:      userID,
		paymentType: paymentType,
		selfService: true,
	})
}

// AdminAdd registers userID on sessionID on behalf of an admin. Past
// sessions are accepted.
func (s *Service) AdminAdd(
	ctx context.Context,
	sessionID, userID, paymentType string,
) (*Registration, error) {
	if paymentType == "" {
		return nil, ErrPaymentTypeRequired
	}
	if !ValidPaymentType(paymentType) {
		return nil, ErrPaymentTypeInvalid
	}

	return s.book(ctx, bookingRequest{
		sessionID:   sessionID,
		userID:      userID,
		paymentType: &paymentType,
	})
}

func (s *Service) book(ctx context.Context, req bookingRequest) (*Registration, error) {
	ctx, span := core.StartSpan(ctx, "registration.book",
		core.AttrSessionID.String(req.sessionID),
		attribute.Bool("registration.self_service", req.selfService),
	)
	var err error
	defer func() { core.EndSpan(span, err) }()

	var (
		reg        *Registration
		activityID string
	)

	err = s.repo.RunInTx(ctx, func(tx Repository) error {
		sess, err := tx.LockSession(ctx, req.sessionID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("%w: %w", ErrSessionNotFound, err)
			}
			return err
		}
		activityID = sess.ActivityID

		if req.selfService && sess.HasStarted(s.now()) {
			return ErrSessionPast
		}

		regs, err := tx.ListBySession(ctx, sess.ID)
		if err != nil {
			return err
		}
		ledger, err := ledgerOf(ctx, tx, regs)
		if err != nil {
			return err
		}

		for _, r := range regs {
			if r.UserID == req.userID && ledger.IsActive(r.ID) {
				return ErrAlreadyRegistered
			}
		}

		if CapacityOf(sess.MaxRegistrations, CountActive(regs, ledger)).IsFull {
			return ErrSessionFull
		}

		reg = &Registration{
			ID:          uuid.New().String(),
			UserID:      req.userID,
			SessionID:   sess.ID,
			PaymentType: req.paymentType,
		}

		var debit *credit.Credit
		if reg.PaidWithCredits() {
			debit, err = s.chargeCredits(ctx, tx, reg, sess.CreditCost())
			if err != nil {
				return err
			}
		}

		if err := tx.Create(ctx, reg); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("%w: %w", ErrUserNotFound, err)
			}
			return err
		}

		confirmed := &StatusEntry{
			ID:             uuid.New().String(),
			RegistrationID: reg.ID,
			Status:         StatusConfirmed,
		}

		if debit != nil {
			debit.Reason = credit.ReasonBooking
			if err := tx.Credits().Insert(ctx, debit); err != nil {
				return err
			}
			confirmed.CreditID = &debit.ID
		}

		return tx.AppendStatus(ctx, confirmed)
	})
	if err != nil {
		return nil, err
	}

	s.revalidate(ctx, activityID, reg.UserID)
	return reg, nil
}

// chargeCredits checks the balance of the registering user against cost
// and returns the debit row to store when debiting is enabled. The user row
// is locked after the session row.
func (s *Service) chargeCredits(
	ctx context.Context,
	tx Repository,
	reg *Registration,
	cost int,
) (*credit.Credit, error) {
	if err := tx.Credits().LockAccount(ctx, reg.UserID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrUserNotFound, err)
		}
		return nil, err
	}

	balance, err := credit.BalanceOf(ctx, tx.Credits(), reg.UserID)
	if err != nil {
		return nil, err
	}

	if balance.LessThan(credit.NewAmount(int64(cost))) {
		return nil, ErrInsufficientCredits
	}

	if !s.debitCredits || cost == 0 {
		return nil, nil
	}

	return &credit.Credit{
		ID:     uuid.New().String(),
		UserID: reg.UserID,
		Amount: credit.NewAmount(int64(-cost)),
	}, nil
}

// Cancel cancels a registration owned by userID. Registrations of other
// users are reported as not found.
func (s *Service) Cancel(ctx context.Context, registrationID, userID string) (*Registration, error) {
	if userID == "" {
		return nil, fmt.Errorf("cancel registration: %w", core.ErrUnauthorized)
	}
	return s.cancel(ctx, registrationID, userID)
}

// AdminRemove cancels any registration.
func (s *Service) AdminRemove(ctx context.Context, registrationID string) (*Registration, error) {
	return s.cancel(ctx, registrationID, "")
}

func (s *Service) cancel(ctx context.Context, registrationID, ownerID string) (*Registration, error) {
	ctx, span := core.StartSpan(ctx, "registration.cancel",
		core.AttrRegistrationID.String(registrationID),
	)
	var err error
	defer func() { core.EndSpan(span, err) }()

	var (
		reg        *Registration
		activityID string
	)

	err = s.repo.RunInTx(ctx, func(tx Repository) error {
		found, err := tx.GetByID(ctx, registrationID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("%w: %w", ErrRegistrationNotFound, err)
			}
			return err
		}
		if ownerID != "" && found.UserID != ownerID {
			return ErrRegistrationNotFound
		}
		reg = found

		sess, err := tx.LockSession(ctx, reg.SessionID)
		if err != nil {
			return err
		}
		activityID = sess.ActivityID

		ledger, err := ledgerOf(ctx, tx, []Registration{*reg})
		if err != nil {
			return err
		}
		if !ledger.IsActive(reg.ID) {
			return ErrAlreadyCancelled
		}

		cancelled := &StatusEntry{
			ID:             uuid.New().String(),
			RegistrationID: reg.ID,
			Status:         StatusCancelled,
		}

		if !sess.HasStarted(s.now()) {
			refund, err := refundFor(ctx, tx, ledger.DebitCreditID(reg.ID))
			if err != nil {
				return err
			}
			if refund != nil {
				cancelled.CreditID = &refund.ID
			}
		}

		return tx.AppendStatus(ctx, cancelled)
	})
	if err != nil {
		return nil, err
	}

	s.revalidate(ctx, activityID, reg.UserID)
	return reg, nil
}

// refundFor stores the credit row reversing the debit debitID, if the
// debit exists and took credits.
func refundFor(ctx context.Context, tx Repository, debitID *string) (*credit.Credit, error) {
	if debitID == nil {
		return nil, nil
	}

	debit, err := tx.Credits().GetByID(ctx, *debitID)
	if err != nil {
		return nil, err
	}
	if !debit.Amount.IsNegative() {
		return nil, nil
	}

	refund := &credit.Credit{
		ID:     uuid.New().String(),
		UserID: debit.UserID,
		Amount: debit.Amount.Neg(),
		Reason: credit.ReasonRefund,
	}
	if err := tx.Credits().Insert(ctx, refund); err != nil {
		return nil, err
	}

	core.AddSpanEvent(ctx, "credit.refund",
		core.AttrCreditID.String(refund.ID),
		core.AttrCreditAmount.Float64(refund.Amount.Float64()),
	)

	return refund, nil
}

func ledgerOf(ctx context.Context, repo Repository, regs []Registration) (Ledger, error) {
	if len(regs) == 0 {
		return Ledger{}, nil
	}

	ids := make([]string, len(regs))
	for i, r := range regs {
		ids[i] = r.ID
	}

	entries, err := repo.ListStatuses(ctx, ids)
	if err != nil {
		return nil, err
	}
	return NewLedger(entries), nil
}

func (s *Service) revalidate(ctx context.Context, activityID, userID string) {
	s.cache.Revalidate(ctx,
		core.ViewCatalog(activityID),
		core.ViewAccount(userID),
		core.ViewAdmin,
	)
}

// Capacities returns the capacity of each session.
func (s *Service) Capacities(
	ctx context.Context,
	sessions []session.Session,
) (map[string]Capacity, error) {
	ids := make([]string, len(sessions))
	for i, sess := range sessions {
		ids[i] = sess.ID
	}

	regs, err := s.repo.ListBySessions(ctx, ids)
	if err != nil {
		return nil, err
	}
	ledger, err := ledgerOf(ctx, s.repo, regs)
	if err != nil {
		return nil, err
	}

	return Tally(sessions, regs, ledger), nil
}

// ActiveBySession returns the active registrations of each session, in
// booking order.
func (s *Service) ActiveBySession(
	ctx context.Context,
	sessionIDs []string,
) (map[string][]Registration, error) {
	regs, err := s.repo.ListBySessions(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}
	ledger, err := ledgerOf(ctx, s.repo, regs)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]Registration, len(sessionIDs))
	for _, r := range regs {
		if ledger.IsActive(r.ID) {
			out[r.SessionID] = append(out[r.SessionID], r)
		}
	}
	return out, nil
}

// ForUser returns every registration of userID with its ledger.
func (s *Service) ForUser(ctx context.Context, userID string) ([]Registration, Ledger, error) {
	regs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	ledger, err := ledgerOf(ctx, s.repo, regs)
	if err != nil {
		return nil, nil, err
	}
	return regs, ledger, nil
}
