// AngelaMos | 2026
// repository.go

package registration

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/manufacto/booking/internal/core"
	"github.com/manufacto/booking/internal/credit"
)

type Repository interface {
	// RunInTx calls fn with a repository bound to one transaction. Calling
	// it on a transaction-bound repository reuses the transaction.
	RunInTx(ctx context.Context, fn func(tx Repository) error) error
	// LockSession reads the session row FOR UPDATE. Bookings and
	// cancellations of one session are serialized on this lock.
	LockSession(ctx context.Context, sessionID string) (*LockedSession, error)
	GetByID(ctx context.Context, id string) (*Registration, error)
	ListBySession(ctx context.Context, sessionID string) ([]Registration, error)
	ListBySessions(ctx context.Context, sessionIDs []string) ([]Registration, error)
	ListByUser(ctx context.Context, userID string) ([]Registration, error)
	ListStatuses(ctx context.Context, registrationIDs []string) ([]StatusEntry, error)
	Create(ctx context.Context, reg *Registration) error
	AppendStatus(ctx context.Context, entry *StatusEntry) error
	Credits() credit.Repository
}

type repository struct {
	db      core.DBTX
	begin   core.TxBeginner
	credits credit.Repository
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{
		db:      db,
		begin:   db,
		credits: credit.NewRepository(db),
	}
}

func (r *repository) RunInTx(ctx context.Context, fn func(tx Repository) error) error {
	if r.begin == nil {
		return fn(r)
	}

	return core.InTx(ctx, r.begin, func(tx *sqlx.Tx) error {
		return fn(&repository{db: tx, credits: credit.NewRepository(tx)})
	})
}

func (r *repository) Credits() credit.Repository {
	return r.credits
}

const registrationColumns = `id, user_id, session_id, payment_type, created_at`

func (r *repository) LockSession(ctx context.Context, sessionID string) (*LockedSession, error) {
	query := `
		SELECT s.id, s.activity_id, s.start_ts, s.end_ts, s.max_registrations,
		       s.created_at, a.nb_credits
		FROM session s
		JOIN activity a ON a.id = s.activity_id
		WHERE s.id = $1
		FOR UPDATE OF s`

	var s LockedSession
	err := r.db.GetContext(ctx, &s, query, sessionID)
	if core.IsNoRows(err) {
		return nil, fmt.Errorf("lock session: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lock session: %w", err)
	}

	return &s, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Registration, error) {
	query := "SELECT " + registrationColumns + " FROM registration WHERE id = $1"

	var reg Registration
	err := r.db.GetContext(ctx, &reg, query, id)
	if core.IsNoRows(err) {
		return nil, fmt.Errorf("get registration: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get registration: %w", err)
	}

	return &reg, nil
}

func (r *repository) ListBySession(ctx context.Context, sessionID string) ([]Registration, error) {
	return r.ListBySessions(ctx, []string{sessionID})
}

func (r *repository) ListBySessions(
	ctx context.Context,
	sessionIDs []string,
) ([]Registration, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}

	query := "SELECT " + registrationColumns + `
		FROM registration
		WHERE session_id = ANY($1::uuid[])
		ORDER BY created_at, id`

	var regs []Registration
	if err := r.db.SelectContext(ctx, &regs, query, sessionIDs); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	return regs, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]Registration, error) {
	query := "SELECT " + registrationColumns + `
		FROM registration
		WHERE user_id = $1
		ORDER BY created_at DESC, id`

	var regs []Registration
	if err := r.db.SelectContext(ctx, &regs, query, userID); err != nil {
		return nil, fmt.Errorf("list user registrations: %w", err)
	}

	return regs, nil
}

func (r *repository) ListStatuses(
	ctx context.Context,
	registrationIDs []string,
) ([]StatusEntry, error) {
	if len(registrationIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, seq, registration_id, status, credit_id, created_at
		FROM registration_status
		WHERE registration_id = ANY($1::uuid[])
		ORDER BY created_at, seq`

	var entries []StatusEntry
	if err := r.db.SelectContext(ctx, &entries, query, registrationIDs); err != nil {
		return nil, fmt.Errorf("list registration statuses: %w", err)
	}

	return entries, nil
}

func (r *repository) Create(ctx context.Context, reg *Registration) error {
	query := `
		INSERT INTO registration (id, user_id, session_id, payment_type)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRowxContext(ctx, query, reg.ID, reg.UserID, reg.SessionID, reg.PaymentType).
		Scan(&reg.CreatedAt)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("create registration: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create registration: %w", err)
	}

	return nil
}

// AppendStatus inserts a status row. Existing rows are never touched.
func (r *repository) AppendStatus(ctx context.Context, entry *StatusEntry) error {
	query := `
		INSERT INTO registration_status (id, registration_id, status, credit_id)
		VALUES ($1, $2, $3, $4)
		RETURNING seq, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		entry.ID, entry.RegistrationID, entry.Status, entry.CreditID,
	).Scan(&entry.Seq, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append registration status: %w", err)
	}

	return nil
}
